package date

import (
	"encoding/json"
	"testing"
)

func TestParseClock(t *testing.T) {
	var clockTests = []struct {
		in      string
		out     Clock
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"-1:00", 0, true},
		{"09:30junk", 0, true},
		{"09:30:00", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}

	for _, tt := range clockTests {
		got, err := ParseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.out {
			t.Errorf("ParseClock(%q) = %v, want %v", tt.in, got, tt.out)
		}
	}
}

func TestClock_String(t *testing.T) {
	var stringTests = []struct {
		in  Clock
		out string
	}{
		{0, "00:00"},
		{570, "09:30"},
		{1439, "23:59"},
	}

	for _, tt := range stringTests {
		if got := tt.in.String(); got != tt.out {
			t.Errorf("Clock(%d).String() = %q, want %q", int(tt.in), got, tt.out)
		}
	}
}

func TestClock_JSONRoundtrip(t *testing.T) {
	in := Clock(510)

	binary, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	if string(binary) != `"08:30"` {
		t.Errorf("marshalled clock = %s, want \"08:30\"", binary)
	}

	var out Clock
	err = json.Unmarshal(binary, &out)
	if err != nil {
		t.Fatal(err)
	}

	if out != in {
		t.Errorf("roundtripped clock = %v, want %v", out, in)
	}
}
