package energy

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockWindowRepository is a window repository for testing
type MockWindowRepository struct {
	Windows []*Window
}

// Add adds a window
func (m *MockWindowRepository) Add(_ context.Context, window *Window) error {
	window.CreatedAt = time.Now()
	window.LastModifiedAt = time.Now()
	window.ID = primitive.NewObjectID()
	m.Windows = append(m.Windows, window)
	return nil
}

// FindByID finds a single window of a user
func (m *MockWindowRepository) FindByID(_ context.Context, windowID string, userID string) (*Window, error) {
	windowObjectID, _ := primitive.ObjectIDFromHex(windowID)
	userObjectID, _ := primitive.ObjectIDFromHex(userID)
	for _, w := range m.Windows {
		if w.ID == windowObjectID && w.UserID == userObjectID {
			return w, nil
		}
	}

	return nil, errors.New("no window found")
}

// FindAll finds all windows of a user, sorted by day of week and start time
func (m *MockWindowRepository) FindAll(_ context.Context, userID string) ([]Window, error) {
	userObjectID, _ := primitive.ObjectIDFromHex(userID)

	var windows []Window
	for _, w := range m.Windows {
		if w.UserID == userObjectID {
			windows = append(windows, *w)
		}
	}

	sort.SliceStable(windows, func(i, j int) bool {
		if windows[i].Day != windows[j].Day {
			return windows[i].Day < windows[j].Day
		}
		return windows[i].Start < windows[j].Start
	})

	return windows, nil
}

// Update updates a window
func (m *MockWindowRepository) Update(_ context.Context, window *Window) error {
	for i, w := range m.Windows {
		if w.ID == window.ID && w.UserID == window.UserID {
			m.Windows[i] = window
			return nil
		}
	}

	return errors.New("no window found")
}

// Remove deletes a window of a user
func (m *MockWindowRepository) Remove(_ context.Context, windowID string, userID string) error {
	windowObjectID, _ := primitive.ObjectIDFromHex(windowID)
	userObjectID, _ := primitive.ObjectIDFromHex(userID)
	for i, w := range m.Windows {
		if w.ID == windowObjectID && w.UserID == userObjectID {
			m.Windows = append(m.Windows[:i], m.Windows[i+1:]...)
			return nil
		}
	}

	return errors.New("no window found")
}
