package energy

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/auth"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/communication"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/logger"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/users"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentResetter clears task assignments pointing at a window. It is
// implemented by the task repository; declaring it here avoids an import
// cycle between the energy and tasks packages.
type AssignmentResetter interface {
	UnassignFromWindow(ctx context.Context, windowID string, userID string) error
}

// Handler handles all energy window related API calls
type Handler struct {
	WindowRepository WindowRepositoryInterface
	UserRepository   users.UserRepositoryInterface
	UserCache        users.UserCacheInterface
	TaskAssignments  AssignmentResetter
	Logger           logger.Interface
	ResponseManager  *communication.ResponseManager
}

// WindowAdd is the route for adding an energy window
func (handler *Handler) WindowAdd(writer http.ResponseWriter, request *http.Request) {
	window := Window{}

	err := json.NewDecoder(request.Body).Decode(&window)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Wrong format", err)
		return
	}

	userID, err := primitive.ObjectIDFromHex(request.Context().Value(auth.KeyUserID).(string))
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"UserID malformed", err)
		return
	}

	_, err = users.FindCachedByID(request.Context(), handler.UserCache, handler.UserRepository, userID.Hex())
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Could not find user", err)
		return
	}

	window.UserID = userID

	err = window.Validate()
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, err.Error(), err)
		return
	}

	err = handler.WindowRepository.Add(request.Context(), &window)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Persisting window in database did not work", err)
		return
	}

	handler.ResponseManager.Respond(writer, &window)
}

// GetAllWindows is the route for getting all windows of a user
func (handler *Handler) GetAllWindows(writer http.ResponseWriter, request *http.Request) {
	userID := request.Context().Value(auth.KeyUserID).(string)

	windows, err := handler.WindowRepository.FindAll(request.Context(), userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError, "Problem in query", err)
		return
	}

	if windows == nil {
		windows = make([]Window, 0)
	}

	handler.ResponseManager.Respond(writer, windows)
}

// WindowGet gets a single window
func (handler *Handler) WindowGet(writer http.ResponseWriter, request *http.Request) {
	userID := request.Context().Value(auth.KeyUserID).(string)
	windowID := mux.Vars(request)["windowID"]

	window, err := handler.WindowRepository.FindByID(request.Context(), windowID, userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusNotFound, "Couldn't find window", err)
		return
	}

	handler.ResponseManager.Respond(writer, window)
}

// WindowUpdate is the route for updating a window
func (handler *Handler) WindowUpdate(writer http.ResponseWriter, request *http.Request) {
	userID := request.Context().Value(auth.KeyUserID).(string)
	windowID := mux.Vars(request)["windowID"]

	window, err := handler.WindowRepository.FindByID(request.Context(), windowID, userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusNotFound, "Couldn't find window", err)
		return
	}

	err = json.NewDecoder(request.Body).Decode(window)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Wrong format", err)
		return
	}

	err = window.Validate()
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, err.Error(), err)
		return
	}

	err = handler.WindowRepository.Update(request.Context(), window)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError, "Could not persist window", err)
		return
	}

	handler.ResponseManager.Respond(writer, window)
}

// WindowDelete deletes a window and unassigns the tasks that pointed at it
func (handler *Handler) WindowDelete(writer http.ResponseWriter, request *http.Request) {
	userID := request.Context().Value(auth.KeyUserID).(string)
	windowID := mux.Vars(request)["windowID"]

	_, err := handler.WindowRepository.FindByID(request.Context(), windowID, userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusNotFound, "Couldn't find window", err)
		return
	}

	err = handler.TaskAssignments.UnassignFromWindow(request.Context(), windowID, userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Could not unassign tasks from window", err)
		return
	}

	err = handler.WindowRepository.Remove(request.Context(), windowID, userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Could not delete window", err)
		return
	}

	handler.ResponseManager.RespondWithNoContent(writer)
}
