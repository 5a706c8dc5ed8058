package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/taskrhythm-app/taskrhythm-backend/pkg/auth"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/communication"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/date"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/energy"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/locking"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newScheduleHandler(taskRepository *MockTaskRepository, windowRepository *energy.MockWindowRepository) *ScheduleHandler {
	log := logger.Logger{}
	return &ScheduleHandler{
		TaskRepository:   taskRepository,
		WindowRepository: windowRepository,
		Locker:           locking.NewLockerMemory(),
		Logger:           log,
		ResponseManager:  &communication.ResponseManager{Logger: log},
	}
}

func authenticatedRequest(method string, target string, userID primitive.ObjectID) *http.Request {
	request := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(request.Context(), auth.KeyUserID, userID.Hex())
	return request.WithContext(ctx)
}

func TestScheduleHandler_ScheduleGenerate(t *testing.T) {
	userID := primitive.NewObjectID()

	windowRepository := &energy.MockWindowRepository{}
	window := &energy.Window{UserID: userID, Day: date.Monday, Start: 540, End: 660, Level: energy.LevelHigh}
	err := windowRepository.Add(context.Background(), window)
	if err != nil {
		t.Fatal(err)
	}

	taskRepository := &MockTaskRepository{}
	fitting := &Task{UserID: userID, Name: "Write report", Effort: EffortHigh, EstimatedDuration: 90}
	tooBig := &Task{UserID: userID, Name: "Paint the house", Effort: EffortHigh, EstimatedDuration: 600}
	for _, task := range []*Task{fitting, tooBig} {
		err = taskRepository.Add(context.Background(), task)
		if err != nil {
			t.Fatal(err)
		}
	}

	handler := newScheduleHandler(taskRepository, windowRepository)

	recorder := httptest.NewRecorder()
	handler.ScheduleGenerate(recorder, authenticatedRequest(http.MethodPost, "/v1/schedule/generate", userID))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}

	var result AllocationResult
	err = json.Unmarshal(recorder.Body.Bytes(), &result)
	if err != nil {
		t.Fatal(err)
	}

	if result.AssignedCount != 1 || result.UnassignedCount != 1 {
		t.Errorf("counts = %d assigned / %d unassigned, want 1/1", result.AssignedCount, result.UnassignedCount)
	}

	if fitting.AssignedWindowID == nil || *fitting.AssignedWindowID != window.ID {
		t.Errorf("the fitting task should be persisted into the window")
	}

	if tooBig.AssignedWindowID != nil {
		t.Errorf("the oversized task must stay unassigned")
	}
}

func TestScheduleHandler_ScheduleGenerate_SkipsAssignedTasks(t *testing.T) {
	userID := primitive.NewObjectID()

	windowRepository := &energy.MockWindowRepository{}
	window := &energy.Window{UserID: userID, Day: date.Monday, Start: 540, End: 660, Level: energy.LevelMedium}
	err := windowRepository.Add(context.Background(), window)
	if err != nil {
		t.Fatal(err)
	}

	taskRepository := &MockTaskRepository{}
	placed := &Task{UserID: userID, Name: "Already placed", Effort: EffortMedium, EstimatedDuration: 100}
	open := &Task{UserID: userID, Name: "Still open", Effort: EffortMedium, EstimatedDuration: 100}
	for _, task := range []*Task{placed, open} {
		err = taskRepository.Add(context.Background(), task)
		if err != nil {
			t.Fatal(err)
		}
	}
	placed.AssignedWindowID = &window.ID

	handler := newScheduleHandler(taskRepository, windowRepository)

	recorder := httptest.NewRecorder()
	handler.ScheduleGenerate(recorder, authenticatedRequest(http.MethodPost, "/v1/schedule/generate", userID))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}

	var result AllocationResult
	err = json.Unmarshal(recorder.Body.Bytes(), &result)
	if err != nil {
		t.Fatal(err)
	}

	// Only the open task goes through the run; the already placed one is
	// untouched and its minutes still count against the window
	if len(result.Decisions) != 1 || result.Decisions[0].TaskID != open.ID {
		t.Errorf("only the open task should be decided on, got %+v", result.Decisions)
	}

	if result.Decisions[0].WindowID != nil {
		t.Errorf("the open task must not land in a window filled by an earlier run")
	}

	if open.AssignedWindowID != nil {
		t.Errorf("no assignment may be persisted for the open task")
	}

	if placed.AssignedWindowID == nil || *placed.AssignedWindowID != window.ID {
		t.Errorf("an assigned task must keep its window")
	}

	load := 0
	for _, task := range taskRepository.Tasks {
		if task.AssignedWindowID != nil && *task.AssignedWindowID == window.ID {
			load += task.EstimatedDuration
		}
	}
	if load > window.Capacity() {
		t.Errorf("window load = %d exceeds capacity %d", load, window.Capacity())
	}
}

func TestScheduleHandler_ScheduleGenerate_SecondRunFillsLeftover(t *testing.T) {
	userID := primitive.NewObjectID()

	windowRepository := &energy.MockWindowRepository{}
	window := &energy.Window{UserID: userID, Day: date.Monday, Start: 540, End: 660, Level: energy.LevelMedium}
	err := windowRepository.Add(context.Background(), window)
	if err != nil {
		t.Fatal(err)
	}

	taskRepository := &MockTaskRepository{}
	placed := &Task{UserID: userID, Name: "From run one", Effort: EffortMedium, EstimatedDuration: 90}
	open := &Task{UserID: userID, Name: "Added later", Effort: EffortMedium, EstimatedDuration: 30}
	for _, task := range []*Task{placed, open} {
		err = taskRepository.Add(context.Background(), task)
		if err != nil {
			t.Fatal(err)
		}
	}
	placed.AssignedWindowID = &window.ID

	handler := newScheduleHandler(taskRepository, windowRepository)

	recorder := httptest.NewRecorder()
	handler.ScheduleGenerate(recorder, authenticatedRequest(http.MethodPost, "/v1/schedule/generate", userID))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}

	// 90 of 120 minutes are taken, the 30 minute task fits the leftover
	if open.AssignedWindowID == nil || *open.AssignedWindowID != window.ID {
		t.Errorf("the open task should fill the window's leftover minutes")
	}
}

func TestScheduleHandler_ScheduleGenerate_LockHeld(t *testing.T) {
	userID := primitive.NewObjectID()

	handler := newScheduleHandler(&MockTaskRepository{}, &energy.MockWindowRepository{})

	lock, err := handler.Locker.Acquire(context.Background(), "schedule-"+userID.Hex(), time.Minute, true)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		err := lock.Release(context.Background())
		if err != nil {
			t.Fatal(err)
		}
	}()

	recorder := httptest.NewRecorder()
	handler.ScheduleGenerate(recorder, authenticatedRequest(http.MethodPost, "/v1/schedule/generate", userID))

	if recorder.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", recorder.Code, http.StatusConflict)
	}
}

func TestScheduleHandler_ScheduleClear(t *testing.T) {
	userID := primitive.NewObjectID()

	windowRepository := &energy.MockWindowRepository{}
	window := &energy.Window{UserID: userID, Day: date.Monday, Start: 540, End: 660, Level: energy.LevelMedium}
	err := windowRepository.Add(context.Background(), window)
	if err != nil {
		t.Fatal(err)
	}

	taskRepository := &MockTaskRepository{}
	task := &Task{UserID: userID, Name: "Scheduled task", Effort: EffortMedium, EstimatedDuration: 60}
	err = taskRepository.Add(context.Background(), task)
	if err != nil {
		t.Fatal(err)
	}
	task.AssignedWindowID = &window.ID

	handler := newScheduleHandler(taskRepository, windowRepository)

	recorder := httptest.NewRecorder()
	handler.ScheduleClear(recorder, authenticatedRequest(http.MethodPost, "/v1/schedule/clear", userID))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}

	if task.AssignedWindowID != nil {
		t.Errorf("clearing the schedule must unassign the task")
	}
}

func TestScheduleHandler_ScheduleGet(t *testing.T) {
	userID := primitive.NewObjectID()

	windowRepository := &energy.MockWindowRepository{}
	morning := &energy.Window{UserID: userID, Day: date.Monday, Start: 540, End: 660, Level: energy.LevelHigh}
	evening := &energy.Window{UserID: userID, Day: date.Wednesday, Start: 1080, End: 1200, Level: energy.LevelLow}
	for _, window := range []*energy.Window{morning, evening} {
		err := windowRepository.Add(context.Background(), window)
		if err != nil {
			t.Fatal(err)
		}
	}

	taskRepository := &MockTaskRepository{}
	assigned := &Task{UserID: userID, Name: "Deep work", Effort: EffortHigh, EstimatedDuration: 90}
	waiting := &Task{UserID: userID, Name: "Waiting", Effort: EffortLow, EstimatedDuration: 30}
	done := &Task{UserID: userID, Name: "Done", Effort: EffortLow, EstimatedDuration: 30, IsDone: true}
	for _, task := range []*Task{assigned, waiting, done} {
		err := taskRepository.Add(context.Background(), task)
		if err != nil {
			t.Fatal(err)
		}
	}
	assigned.AssignedWindowID = &morning.ID

	handler := newScheduleHandler(taskRepository, windowRepository)

	recorder := httptest.NewRecorder()
	handler.ScheduleGet(recorder, authenticatedRequest(http.MethodGet, "/v1/schedule", userID))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}

	var view ScheduleView
	err := json.Unmarshal(recorder.Body.Bytes(), &view)
	if err != nil {
		t.Fatal(err)
	}

	if len(view.Windows) != 2 {
		t.Fatalf("view should list both windows, got %d", len(view.Windows))
	}

	if len(view.Windows[0].Tasks) != 1 || view.Windows[0].Tasks[0].ID != assigned.ID {
		t.Errorf("the morning window should hold the assigned task")
	}

	if len(view.Windows[1].Tasks) != 0 {
		t.Errorf("the evening window should be empty")
	}

	if len(view.UnassignedTasks) != 1 || view.UnassignedTasks[0].ID != waiting.ID {
		t.Errorf("completed tasks stay out of the view, only the waiting task is unassigned")
	}

	if view.MessageType != "warning" {
		t.Errorf("message type = %q, want warning", view.MessageType)
	}
}

func Test_scheduleViewMessage(t *testing.T) {
	var messageTests = []struct {
		name       string
		windows    int
		assigned   int
		unassigned int
		wantType   string
	}{
		{"no windows", 0, 0, 2, "info"},
		{"empty week", 2, 0, 0, "success"},
		{"nothing assigned", 2, 0, 3, "info"},
		{"everything assigned", 2, 3, 0, "success"},
		{"partially assigned", 2, 2, 1, "warning"},
	}

	for _, tt := range messageTests {
		t.Run(tt.name, func(t *testing.T) {
			message, messageType := scheduleViewMessage(tt.windows, tt.assigned, tt.unassigned)
			if messageType != tt.wantType {
				t.Errorf("message type = %q, want %q", messageType, tt.wantType)
			}
			if message == "" {
				t.Error("the view always carries a message")
			}
		})
	}
}
