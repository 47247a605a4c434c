package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mergington/signupboard/pkg/activities"
	"github.com/mergington/signupboard/pkg/app"
	"github.com/mergington/signupboard/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleView() []activities.ViewItem {
	chess := activities.Activity{
		Name:            "Chess Club",
		Description:     "Learn strategies and compete in chess tournaments",
		ScheduleDetails: &activities.ScheduleDetails{Days: []string{"Monday", "Friday"}, StartTime: "15:15", EndTime: "16:45"},
		MaxParticipants: 2,
		Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
	}
	art := activities.Activity{
		Name:            "Art Club",
		Description:     "Painting",
		Schedule:        "Thursdays, 3:15 PM - 5:00 PM",
		MaxParticipants: 15,
	}
	return []activities.ViewItem{
		{Name: chess.Name, Activity: chess, Category: activities.CategoryAcademic},
		{Name: art.Name, Activity: art, Category: activities.CategoryArts},
	}
}

func TestPrintViewFlags(t *testing.T) {
	var buf bytes.Buffer
	err := PrintView(&buf, sampleView(), OutputOptions{Flags: "ncsf", Delimiter: " | "})
	require.NoError(t, err)

	assert.Equal(t,
		"Chess Club | academic | Monday, Friday, 3:15 PM - 4:45 PM | 0\n"+
			"Art Club | arts | Thursdays, 3:15 PM - 5:00 PM | 15\n",
		buf.String())
}

func TestPrintViewParticipants(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintView(&buf, sampleView()[:1], OutputOptions{Flags: "p", Delimiter: ";"}))
	assert.Equal(t, "michael@mergington.edu,daniel@mergington.edu\n", buf.String())
}

func TestPrintViewDefaultsToName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintView(&buf, sampleView(), OutputOptions{}))
	assert.Equal(t, "Chess Club\nArt Club\n", buf.String())
}

func TestPrintViewInvalidFlag(t *testing.T) {
	var buf bytes.Buffer
	err := PrintView(&buf, sampleView(), OutputOptions{Flags: "nx", Delimiter: " "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output flag")
}

func TestPrintViewMalformedSchedule(t *testing.T) {
	items := sampleView()
	items[0].Activity.ScheduleDetails.EndTime = ""
	var buf bytes.Buffer
	err := PrintView(&buf, items, OutputOptions{Flags: "s"})
	assert.ErrorIs(t, err, activities.ErrMalformedSchedule)
}

func TestEmptyViewAffordance(t *testing.T) {
	var lines, cards bytes.Buffer
	require.NoError(t, PrintView(&lines, []activities.ViewItem{}, DefaultOutputOptions))
	require.NoError(t, PrintCards(&cards, nil, true))
	assert.Equal(t, NoActivitiesMessage+"\n", lines.String())
	assert.Equal(t, NoActivitiesMessage+"\n", cards.String())
}

func TestPrintCards(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintCards(&buf, sampleView(), true))
	out := buf.String()

	assert.Contains(t, out, "Chess Club [academic]\n")
	assert.Contains(t, out, "  Schedule: Monday, Friday, 3:15 PM - 4:45 PM\n")
	assert.Contains(t, out, "Full")
	assert.Contains(t, out, "  - michael@mergington.edu\n")
	assert.Contains(t, out, "Art Club [arts]\n")
	assert.Contains(t, out, "  15 spots left (0/15)\n")
	assert.Contains(t, out, "  No participants yet\n")
	assert.Less(t, strings.Index(out, "Chess Club"), strings.Index(out, "Art Club"))
}

func TestPrintCardsHidesParticipants(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintCards(&buf, sampleView(), false))
	assert.NotContains(t, buf.String(), "michael@mergington.edu")
}

func TestPrintAnnouncements(t *testing.T) {
	start := "2020-01-01"
	list := []board.Announcement{
		{ID: "a1", Message: "Club fair on Friday", StartDate: &start, EndDate: "2099-12-31", CreatedBy: "mrodriguez", CreatedByName: "Mr. Rodriguez"},
		{ID: "a2", Message: "Old news", EndDate: "2000-01-01", CreatedBy: "mchen"},
	}

	var active bytes.Buffer
	require.NoError(t, PrintAnnouncements(&active, list[:1], false))
	assert.Contains(t, active.String(), "Club fair on Friday")

	var table bytes.Buffer
	require.NoError(t, PrintAnnouncements(&table, list, true))
	out := table.String()
	assert.True(t, strings.HasPrefix(out, "ID"))
	assert.Contains(t, out, "active")
	assert.Contains(t, out, "expired")
	assert.Contains(t, out, "Mr. Rodriguez")
	assert.Contains(t, out, "mchen")

	var none bytes.Buffer
	require.NoError(t, PrintAnnouncements(&none, nil, true))
	assert.Equal(t, "No announcements\n", none.String())
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, app.Banner{Kind: app.BannerError, Message: "boom"})
	assert.Equal(t, colorRed+"boom"+colorReset+"\n", buf.String())
}
