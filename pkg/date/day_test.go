package date

import (
	"encoding/json"
	"sort"
	"testing"
)

func TestParseDay(t *testing.T) {
	var dayTests = []struct {
		in      string
		out     Day
		wantErr bool
	}{
		{"Monday", Monday, false},
		{"Sunday", Sunday, false},
		{"monday", 0, true},
		{"Funday", 0, true},
		{"", 0, true},
	}

	for _, tt := range dayTests {
		got, err := ParseDay(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDay(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.out {
			t.Errorf("ParseDay(%q) = %v, want %v", tt.in, got, tt.out)
		}
	}
}

func TestDay_WeekOrder(t *testing.T) {
	days := []Day{Sunday, Wednesday, Monday, Saturday}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	want := []Day{Monday, Wednesday, Saturday, Sunday}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("sorted days = %v, want %v", days, want)
		}
	}
}

func TestDay_UnmarshalJSON(t *testing.T) {
	var day Day
	err := json.Unmarshal([]byte(`"Friday"`), &day)
	if err != nil {
		t.Fatal(err)
	}

	if day != Friday {
		t.Errorf("unmarshalled day = %v, want %v", day, Friday)
	}

	err = json.Unmarshal([]byte(`"someday"`), &day)
	if err == nil {
		t.Error("unmarshalling an unknown day name should fail")
	}
}
