package tasks

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/auth"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/communication"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/logger"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/users"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler handles all task related API calls
type Handler struct {
	TaskRepository  TaskRepositoryInterface
	UserRepository  users.UserRepositoryInterface
	UserCache       users.UserCacheInterface
	Logger          logger.Interface
	ResponseManager *communication.ResponseManager
}

// TaskAdd is the route for adding a task
func (handler *Handler) TaskAdd(writer http.ResponseWriter, request *http.Request) {
	task := Task{}

	err := json.NewDecoder(request.Body).Decode(&task)
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

	task.UserID = userID
	task.IsDone = false
	task.AssignedWindowID = nil

	if task.EstimatedDuration == 0 {
		task.EstimatedDuration = DefaultDuration
	}

	v := validator.New()
	err = v.Struct(task)
	if err != nil {
		for _, e := range err.(validator.ValidationErrors) {
			handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, e.Error(), e)
			return
		}
	}

	err = task.Validate()
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, err.Error(), err)
		return
	}

	err = handler.TaskRepository.Add(request.Context(), &task)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Persisting task in database did not work", err)
		return
	}

	handler.ResponseManager.Respond(writer, &task)
}

// GetAllTasks is the route for getting all tasks of a user
func (handler *Handler) GetAllTasks(writer http.ResponseWriter, request *http.Request) {
	userID := request.Context().Value(auth.KeyUserID).(string)

	tasks, err := handler.TaskRepository.FindAll(request.Context(), userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError, "Problem in query", err)
		return
	}

	if tasks == nil {
		tasks = make([]Task, 0)
	}

	handler.ResponseManager.Respond(writer, tasks)
}

// TaskGet gets a single task
func (handler *Handler) TaskGet(writer http.ResponseWriter, request *http.Request) {
	userID := request.Context().Value(auth.KeyUserID).(string)
	taskID := mux.Vars(request)["taskID"]

	task, err := handler.TaskRepository.FindByID(request.Context(), taskID, userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusNotFound, "Couldn't find task", err)
		return
	}

	handler.ResponseManager.Respond(writer, task)
}

// TaskUpdate is the route for updating a task
func (handler *Handler) TaskUpdate(writer http.ResponseWriter, request *http.Request) {
	userID := request.Context().Value(auth.KeyUserID).(string)
	taskID := mux.Vars(request)["taskID"]

	task, err := handler.TaskRepository.FindByID(request.Context(), taskID, userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusNotFound, "Couldn't find task", err)
		return
	}

	err = json.NewDecoder(request.Body).Decode(task)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Wrong format", err)
		return
	}

	err = task.Validate()
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, err.Error(), err)
		return
	}

	err = handler.TaskRepository.Update(request.Context(), task)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError, "Could not persist task", err)
		return
	}

	handler.ResponseManager.Respond(writer, task)
}

// TaskDelete deletes a task
func (handler *Handler) TaskDelete(writer http.ResponseWriter, request *http.Request) {
	userID := request.Context().Value(auth.KeyUserID).(string)
	taskID := mux.Vars(request)["taskID"]

	_, err := handler.TaskRepository.FindByID(request.Context(), taskID, userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusNotFound, "Couldn't find task", err)
		return
	}

	err = handler.TaskRepository.Delete(request.Context(), taskID, userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Could not delete task", err)
		return
	}

	handler.ResponseManager.RespondWithNoContent(writer)
}
