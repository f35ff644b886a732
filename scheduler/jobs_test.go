package scheduler

import (
	"testing"
	"time"
)

func TestIsMarketOpenAt(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"weekday mid-session", time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC), true}, // Monday
		{"weekday open", time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC), true},
		{"weekday before open", time.Date(2025, 6, 2, 9, 59, 0, 0, time.UTC), false},
		{"weekday at close", time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC), false},
		{"saturday", time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC), false},
		{"sunday", time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC), false},
	}

	for _, tc := range cases {
		if got := isMarketOpenAt(tc.at); got != tc.want {
			t.Errorf("%s: isMarketOpenAt(%v) = %v, want %v", tc.name, tc.at, got, tc.want)
		}
	}
}
