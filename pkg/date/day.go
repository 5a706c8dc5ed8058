package date

import (
	"encoding/json"
	"fmt"
)

// Day is a day of the week. The zero value is Monday so that sorting
// windows by Day puts them in week order, not in time.Weekday order
// which starts on Sunday.
type Day int

const (
	// Monday is the first day of the week
	Monday Day = iota
	// Tuesday is the second day of the week
	Tuesday
	// Wednesday is the third day of the week
	Wednesday
	// Thursday is the fourth day of the week
	Thursday
	// Friday is the fifth day of the week
	Friday
	// Saturday is the sixth day of the week
	Saturday
	// Sunday is the last day of the week
	Sunday
)

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ParseDay parses a day name like "Monday" into a Day
func ParseDay(name string) (Day, error) {
	for i, n := range dayNames {
		if n == name {
			return Day(i), nil
		}
	}

	return 0, fmt.Errorf("%s is not a day of the week", name)
}

// IsValid reports whether d is one of the seven defined days
func (d Day) IsValid() bool {
	return d >= Monday && d <= Sunday
}

// String returns the day name
func (d Day) String() string {
	if !d.IsValid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}

	return dayNames[d]
}

// MarshalJSON marshals a Day into its name
func (d Day) MarshalJSON() ([]byte, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("invalid day %d", int(d))
	}

	return json.Marshal(d.String())
}

// UnmarshalJSON unmarshals a day name into a Day
func (d *Day) UnmarshalJSON(data []byte) error {
	var name string
	err := json.Unmarshal(data, &name)
	if err != nil {
		return err
	}

	day, err := ParseDay(name)
	if err != nil {
		return err
	}

	*d = day
	return nil
}
