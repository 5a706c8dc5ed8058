package tasks

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockTaskRepository is a task repository for testing
type MockTaskRepository struct {
	Tasks []*Task
}

// Add adds a task
func (m *MockTaskRepository) Add(_ context.Context, task *Task) error {
	task.CreatedAt = time.Now()
	task.LastModifiedAt = time.Now()
	task.ID = primitive.NewObjectID()
	m.Tasks = append(m.Tasks, task)
	return nil
}

// FindByID finds a specific task by ID
func (m *MockTaskRepository) FindByID(_ context.Context, taskID string, userID string) (*Task, error) {
	taskObjectID, _ := primitive.ObjectIDFromHex(taskID)
	userObjectID, _ := primitive.ObjectIDFromHex(userID)
	for _, t := range m.Tasks {
		if t.ID == taskObjectID && t.UserID == userObjectID {
			return t, nil
		}
	}

	return nil, errors.New("no task found")
}

// FindAll finds all tasks of a user, newest first
func (m *MockTaskRepository) FindAll(_ context.Context, userID string) ([]Task, error) {
	userObjectID, _ := primitive.ObjectIDFromHex(userID)

	var tasks []Task
	for _, t := range m.Tasks {
		if t.UserID == userObjectID {
			tasks = append(tasks, *t)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	return tasks, nil
}

// FindSchedulable finds the tasks of a user that are not done and not yet
// assigned to a window
func (m *MockTaskRepository) FindSchedulable(_ context.Context, userID string) ([]Task, error) {
	userObjectID, _ := primitive.ObjectIDFromHex(userID)

	var tasks []Task
	for _, t := range m.Tasks {
		if t.UserID == userObjectID && !t.IsDone && t.AssignedWindowID == nil {
			tasks = append(tasks, *t)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})

	return tasks, nil
}

// Update updates a task
func (m *MockTaskRepository) Update(_ context.Context, task *Task) error {
	for i, t := range m.Tasks {
		if t.ID == task.ID && t.UserID == task.UserID {
			m.Tasks[i] = task
			return nil
		}
	}

	return errors.New("no task found")
}

// Delete deletes a task of a user
func (m *MockTaskRepository) Delete(_ context.Context, taskID string, userID string) error {
	taskObjectID, _ := primitive.ObjectIDFromHex(taskID)
	userObjectID, _ := primitive.ObjectIDFromHex(userID)
	for i, t := range m.Tasks {
		if t.ID == taskObjectID && t.UserID == userObjectID {
			m.Tasks = append(m.Tasks[:i], m.Tasks[i+1:]...)
			return nil
		}
	}

	return errors.New("no task found")
}

// AssignWindow sets or clears the window a task is scheduled into
func (m *MockTaskRepository) AssignWindow(_ context.Context, taskID primitive.ObjectID, userID primitive.ObjectID, windowID *primitive.ObjectID) error {
	for _, t := range m.Tasks {
		if t.ID == taskID && t.UserID == userID {
			t.AssignedWindowID = windowID
			t.LastModifiedAt = time.Now()
			return nil
		}
	}

	return errors.New("no task found")
}

// ClearAssignments unassigns every task of a user
func (m *MockTaskRepository) ClearAssignments(_ context.Context, userID string) error {
	userObjectID, _ := primitive.ObjectIDFromHex(userID)
	for _, t := range m.Tasks {
		if t.UserID == userObjectID {
			t.AssignedWindowID = nil
		}
	}

	return nil
}

// UnassignFromWindow unassigns all tasks that point at a single window
func (m *MockTaskRepository) UnassignFromWindow(_ context.Context, windowID string, userID string) error {
	windowObjectID, _ := primitive.ObjectIDFromHex(windowID)
	userObjectID, _ := primitive.ObjectIDFromHex(userID)
	for _, t := range m.Tasks {
		if t.UserID == userObjectID && t.AssignedWindowID != nil && *t.AssignedWindowID == windowObjectID {
			t.AssignedWindowID = nil
		}
	}

	return nil
}
