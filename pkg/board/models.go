package board

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of announcement dates.
const DateLayout = "2006-01-02"

// User is a logged in teacher as returned by the auth endpoints.
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role,omitempty"`
}

// Announcement is a board message. StartDate is nil when the announcement
// is active immediately.
type Announcement struct {
	ID            string  `json:"id"`
	Message       string  `json:"message"`
	StartDate     *string `json:"start_date"`
	EndDate       string  `json:"end_date"`
	CreatedAt     string  `json:"created_at,omitempty"`
	CreatedBy     string  `json:"created_by,omitempty"`
	CreatedByName string  `json:"created_by_name,omitempty"`
}

// Status returns "expired", "scheduled" or "active" for day, using the same
// date window the server applies to the public list.
func (a Announcement) Status(day time.Time) string {
	today := day.Format(DateLayout)
	if a.EndDate < today {
		return "expired"
	}
	if a.StartDate != nil && *a.StartDate != "" && *a.StartDate > today {
		return "scheduled"
	}
	return "active"
}

// AnnouncementInput is the create/update payload.
type AnnouncementInput struct {
	Message   string  `json:"message"`
	StartDate *string `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

var errInvalidAnnouncement = errors.New("invalid announcement")

// Validate mirrors the server side checks so obviously bad input never
// leaves the client.
func (in AnnouncementInput) Validate() error {
	if strings.TrimSpace(in.Message) == "" {
		return fmt.Errorf("%w: message is required", errInvalidAnnouncement)
	}
	end, err := time.Parse(DateLayout, in.EndDate)
	if err != nil {
		return fmt.Errorf("%w: end date %q must be YYYY-MM-DD", errInvalidAnnouncement, in.EndDate)
	}
	if in.StartDate == nil || *in.StartDate == "" {
		return nil
	}
	start, err := time.Parse(DateLayout, *in.StartDate)
	if err != nil {
		return fmt.Errorf("%w: start date %q must be YYYY-MM-DD", errInvalidAnnouncement, *in.StartDate)
	}
	if start.After(end) {
		return fmt.Errorf("%w: start date cannot be after end date", errInvalidAnnouncement)
	}
	return nil
}
