package services

import (
	"testing"
	"time"

	"stock-alert-backend/models"
)

func TestListingDue(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		status string
		date   time.Time
		want   bool
	}{
		{"announced and past", models.IPOStatusAnnounced, now.AddDate(0, 0, -1), true},
		{"announced and future", models.IPOStatusAnnounced, now.AddDate(0, 0, 7), false},
		{"already listed", models.IPOStatusListed, now.AddDate(0, 0, -1), false},
		{"cancelled", models.IPOStatusCancelled, now.AddDate(0, 0, -1), false},
	}

	for _, tc := range cases {
		ipo := &models.IPOAnnouncement{Status: tc.status, ListingDate: tc.date}
		if got := listingDue(ipo, now); got != tc.want {
			t.Errorf("%s: listingDue = %v, want %v", tc.name, got, tc.want)
		}
	}
}
