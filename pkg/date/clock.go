package date

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the number of minutes in one day
const MinutesPerDay = 24 * 60

// Clock is a time of day stored as minutes since midnight. It carries no
// date and no location, which keeps window arithmetic plain integer math.
type Clock int

// ParseClock parses a clock string like "09:30" into a Clock
func ParseClock(value string) (Clock, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%s is not a valid clock time", value)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid clock time", value)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid clock time", value)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%s is not a valid clock time", value)
	}

	return Clock(hour*60 + minute), nil
}

// IsValid reports whether c lies within a single day
func (c Clock) IsValid() bool {
	return c >= 0 && c < MinutesPerDay
}

// Minutes returns the minutes since midnight
func (c Clock) Minutes() int {
	return int(c)
}

// String formats a Clock as "15:04"
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// MarshalJSON marshals a Clock into a "15:04" string
func (c Clock) MarshalJSON() ([]byte, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("invalid clock time %d", int(c))
	}

	return json.Marshal(c.String())
}

// UnmarshalJSON unmarshals a "15:04" string into a Clock
func (c *Clock) UnmarshalJSON(data []byte) error {
	var value string
	err := json.Unmarshal(data, &value)
	if err != nil {
		return err
	}

	clock, err := ParseClock(value)
	if err != nil {
		return err
	}

	*c = clock
	return nil
}
