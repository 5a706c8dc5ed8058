package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultDuration is the estimated duration in minutes substituted by the
// handlers when a task is created without an estimate. The allocator itself
// requires a positive duration.
const DefaultDuration = 60

// Effort is the effort level of a task. It is a closed enum so the
// effort-to-energy preference table stays exhaustive.
type Effort int

const (
	// EffortLow is for light tasks
	EffortLow Effort = iota
	// EffortMedium is for regular tasks
	EffortMedium
	// EffortHigh is for demanding tasks
	EffortHigh
)

var effortNames = [...]string{"low", "medium", "high"}

// ParseEffort parses an effort name like "high" into an Effort
func ParseEffort(name string) (Effort, error) {
	for i, n := range effortNames {
		if n == name {
			return Effort(i), nil
		}
	}

	return 0, fmt.Errorf("%s is not an effort level", name)
}

// IsValid reports whether e is one of the defined efforts
func (e Effort) IsValid() bool {
	return e >= EffortLow && e <= EffortHigh
}

// String returns the effort name
func (e Effort) String() string {
	if !e.IsValid() {
		return fmt.Sprintf("Effort(%d)", int(e))
	}

	return effortNames[e]
}

// MarshalJSON marshals an Effort into its name
func (e Effort) MarshalJSON() ([]byte, error) {
	if !e.IsValid() {
		return nil, fmt.Errorf("invalid effort level %d", int(e))
	}

	return json.Marshal(e.String())
}

// UnmarshalJSON unmarshals an effort name into an Effort
func (e *Effort) UnmarshalJSON(data []byte) error {
	var name string
	err := json.Unmarshal(data, &name)
	if err != nil {
		return err
	}

	effort, err := ParseEffort(name)
	if err != nil {
		return err
	}

	*e = effort
	return nil
}

// Task is the model for a task
type Task struct {
	ID             primitive.ObjectID `json:"id" bson:"_id"`
	UserID         primitive.ObjectID `json:"userId" bson:"userId"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	LastModifiedAt time.Time          `json:"lastModifiedAt" bson:"lastModifiedAt"`
	Name           string             `json:"name" bson:"name" validate:"required"`
	Description    string             `json:"description" bson:"description"`
	IsDone         bool               `json:"isDone" bson:"isDone"`

	Effort            Effort              `json:"effortLevel" bson:"effortLevel"`
	EstimatedDuration int                 `json:"estimatedDuration" bson:"estimatedDuration"`
	Deadline          *time.Time          `json:"deadline" bson:"deadline"`
	AssignedWindowID  *primitive.ObjectID `json:"assignedWindowId" bson:"assignedWindowId"`
}

// Validate checks the invariants a stored task has to hold
func (t *Task) Validate() error {
	if !t.Effort.IsValid() {
		return fmt.Errorf("%d is not an effort level", int(t.Effort))
	}

	if t.EstimatedDuration <= 0 {
		return fmt.Errorf("estimated duration must be a positive number of minutes")
	}

	return nil
}
