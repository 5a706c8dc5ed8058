package energy

import (
	"time"

	"github.com/pkg/errors"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/date"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Window is the model for a recurring weekly energy window
type Window struct {
	ID             primitive.ObjectID `json:"id" bson:"_id"`
	UserID         primitive.ObjectID `json:"userId" bson:"userId"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	LastModifiedAt time.Time          `json:"lastModifiedAt" bson:"lastModifiedAt"`

	Day   date.Day   `json:"dayOfWeek" bson:"dayOfWeek"`
	Start date.Clock `json:"timeStart" bson:"timeStart"`
	End   date.Clock `json:"timeEnd" bson:"timeEnd"`
	Level Level      `json:"energyLevel" bson:"energyLevel"`
}

// Capacity is the length of the window in minutes. It never changes for a
// stored window; remaining capacity during an allocation run is tracked
// separately by the allocator.
func (w *Window) Capacity() int {
	return w.End.Minutes() - w.Start.Minutes()
}

// Validate checks the invariants a stored window has to hold
func (w *Window) Validate() error {
	if !w.Day.IsValid() {
		return errors.Errorf("%d is not a day of the week", int(w.Day))
	}

	if !w.Start.IsValid() || !w.End.IsValid() {
		return errors.New("window times must lie within a single day")
	}

	if w.End <= w.Start {
		return errors.New("window end must be after its start")
	}

	if !w.Level.IsValid() {
		return errors.Errorf("%d is not an energy level", int(w.Level))
	}

	return nil
}
