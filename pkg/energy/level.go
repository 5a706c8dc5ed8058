package energy

import (
	"encoding/json"
	"fmt"
)

// Level is the energy level of a window. It is a closed enum so the
// effort-to-energy preference table stays exhaustive.
type Level int

const (
	// LevelLow marks a window for light work
	LevelLow Level = iota
	// LevelMedium marks a window for regular work
	LevelMedium
	// LevelHigh marks a window for deep work
	LevelHigh
)

var levelNames = [...]string{"low", "medium", "high"}

// ParseLevel parses a level name like "medium" into a Level
func ParseLevel(name string) (Level, error) {
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}

	return 0, fmt.Errorf("%s is not an energy level", name)
}

// IsValid reports whether l is one of the defined levels
func (l Level) IsValid() bool {
	return l >= LevelLow && l <= LevelHigh
}

// String returns the level name
func (l Level) String() string {
	if !l.IsValid() {
		return fmt.Sprintf("Level(%d)", int(l))
	}

	return levelNames[l]
}

// MarshalJSON marshals a Level into its name
func (l Level) MarshalJSON() ([]byte, error) {
	if !l.IsValid() {
		return nil, fmt.Errorf("invalid energy level %d", int(l))
	}

	return json.Marshal(l.String())
}

// UnmarshalJSON unmarshals a level name into a Level
func (l *Level) UnmarshalJSON(data []byte) error {
	var name string
	err := json.Unmarshal(data, &name)
	if err != nil {
		return err
	}

	level, err := ParseLevel(name)
	if err != nil {
		return err
	}

	*l = level
	return nil
}
