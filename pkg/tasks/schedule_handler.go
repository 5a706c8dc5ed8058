package tasks

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/auth"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/communication"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/energy"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/locking"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// scheduleLockDuration is how long a schedule run may hold a user's lock
const scheduleLockDuration = time.Minute

// WindowSchedule is one energy window with the tasks scheduled into it
type WindowSchedule struct {
	Window energy.Window `json:"window"`
	Tasks  []Task        `json:"tasks"`
}

// ScheduleView is the weekly schedule of a user
type ScheduleView struct {
	Windows         []WindowSchedule `json:"windows"`
	UnassignedTasks []Task           `json:"unassignedTasks"`
	Message         string           `json:"message"`
	MessageType     string           `json:"messageType"`
}

// ScheduleHandler handles all schedule related API calls
type ScheduleHandler struct {
	TaskRepository   TaskRepositoryInterface
	WindowRepository energy.WindowRepositoryInterface
	Locker           locking.LockerInterface
	Logger           logger.Interface
	ResponseManager  *communication.ResponseManager
}

// ScheduleGenerate runs the allocation over the user's windows and open
// tasks and persists the decisions. Only one run per user at a time.
func (handler *ScheduleHandler) ScheduleGenerate(writer http.ResponseWriter, request *http.Request) {
	userID := request.Context().Value(auth.KeyUserID).(string)

	lock, err := handler.Locker.Acquire(request.Context(), "schedule-"+userID, scheduleLockDuration, true)
	if err != nil {
		if errors.Is(err, locking.ErrLockAlreadyHeld) {
			handler.ResponseManager.RespondWithError(writer, http.StatusConflict, "", communication.ErrScheduleRunInProgress)
			return
		}

		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Could not acquire lock for schedule run", err)
		return
	}

	defer func(lock locking.LockInterface) {
		err := lock.Release(request.Context())
		if err != nil {
			handler.Logger.Warning("Could not release schedule lock", err)
		}
	}(lock)

	windows, err := handler.WindowRepository.FindAll(request.Context(), userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError, "Problem in query", err)
		return
	}

	taskList, err := handler.TaskRepository.FindSchedulable(request.Context(), userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError, "Problem in query", err)
		return
	}

	allTasks, err := handler.TaskRepository.FindAll(request.Context(), userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError, "Problem in query", err)
		return
	}

	// Assignments from earlier runs keep their window space
	used := make(map[primitive.ObjectID]int)
	for _, task := range allTasks {
		if task.IsDone || task.AssignedWindowID == nil {
			continue
		}
		used[*task.AssignedWindowID] += task.EstimatedDuration
	}

	result, err := Allocate(windows, taskList, used)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Schedule run failed", err)
		return
	}

	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"UserID malformed", err)
		return
	}

	group, groupCtx := errgroup.WithContext(request.Context())
	for _, decision := range result.Decisions {
		if decision.WindowID == nil {
			continue
		}

		decision := decision
		group.Go(func() error {
			return handler.TaskRepository.AssignWindow(groupCtx, decision.TaskID, userObjectID, decision.WindowID)
		})
	}

	err = group.Wait()
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Could not persist schedule", err)
		return
	}

	handler.ResponseManager.Respond(writer, result)
}

// ScheduleClear removes all task assignments of a user so the next run
// starts from a clean slate
func (handler *ScheduleHandler) ScheduleClear(writer http.ResponseWriter, request *http.Request) {
	userID := request.Context().Value(auth.KeyUserID).(string)

	lock, err := handler.Locker.Acquire(request.Context(), "schedule-"+userID, scheduleLockDuration, true)
	if err != nil {
		if errors.Is(err, locking.ErrLockAlreadyHeld) {
			handler.ResponseManager.RespondWithError(writer, http.StatusConflict, "", communication.ErrScheduleRunInProgress)
			return
		}

		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Could not acquire lock for schedule run", err)
		return
	}

	defer func(lock locking.LockInterface) {
		err := lock.Release(request.Context())
		if err != nil {
			handler.Logger.Warning("Could not release schedule lock", err)
		}
	}(lock)

	err = handler.TaskRepository.ClearAssignments(request.Context(), userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Could not clear schedule", err)
		return
	}

	handler.ResponseManager.Respond(writer, map[string]string{
		"message": "Schedule cleared. Tasks are ready to be rescheduled.",
	})
}

// ScheduleGet returns the user's week: every window with the tasks placed
// into it, plus the tasks still waiting for a window
func (handler *ScheduleHandler) ScheduleGet(writer http.ResponseWriter, request *http.Request) {
	userID := request.Context().Value(auth.KeyUserID).(string)

	windows, err := handler.WindowRepository.FindAll(request.Context(), userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError, "Problem in query", err)
		return
	}

	taskList, err := handler.TaskRepository.FindAll(request.Context(), userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError, "Problem in query", err)
		return
	}

	tasksByWindow := make(map[primitive.ObjectID][]Task)
	unassigned := make([]Task, 0)
	assignedCount := 0

	for _, task := range taskList {
		if task.IsDone {
			continue
		}

		if task.AssignedWindowID != nil {
			tasksByWindow[*task.AssignedWindowID] = append(tasksByWindow[*task.AssignedWindowID], task)
			assignedCount++
			continue
		}

		unassigned = append(unassigned, task)
	}

	view := ScheduleView{
		Windows:         make([]WindowSchedule, 0, len(windows)),
		UnassignedTasks: unassigned,
	}

	for _, window := range windows {
		windowTasks := tasksByWindow[window.ID]
		if windowTasks == nil {
			windowTasks = make([]Task, 0)
		}

		view.Windows = append(view.Windows, WindowSchedule{Window: window, Tasks: windowTasks})
	}

	view.Message, view.MessageType = scheduleViewMessage(len(windows), assignedCount, len(unassigned))

	handler.ResponseManager.Respond(writer, view)
}

func scheduleViewMessage(windowCount int, assigned int, unassigned int) (string, string) {
	switch {
	case windowCount == 0:
		return "Define your energy windows to get started with scheduling.", "info"
	case assigned == 0 && unassigned == 0:
		return "Your schedule is clear. Add tasks when you're ready.", "success"
	case assigned == 0:
		return "These tasks are waiting to be scheduled. Run a schedule generation to assign them.", "info"
	case unassigned == 0:
		return fmt.Sprintf("All set! %d task(s) are scheduled to match your energy.", assigned), "success"
	}

	return fmt.Sprintf("%d task(s) scheduled. %d task(s) still need a window.", assigned, unassigned), "warning"
}
