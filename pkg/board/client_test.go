package board

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestNewClientValidatesURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "not a url"})
	assert.Error(t, err)

	c, err := NewClient(Config{})
	require.NoError(t, err)
	assert.Equal(t, DEFAULT_API_URL, c.baseURL)
}

func TestListActivities(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/activities", r.URL.Path)
		assert.Equal(t, "Monday", r.URL.Query().Get("day"))
		assert.Equal(t, "06:00", r.URL.Query().Get("start_time"))
		writeJSON(w, http.StatusOK, `{
			"Gym Class": {"description": "Physical education", "schedule": "Mondays", "max_participants": 30, "participants": []},
			"Art Club": {"description": "Painting", "schedule_details": {"days": ["Monday"], "start_time": "06:30", "end_time": "07:45"}, "max_participants": 15, "participants": ["a@mergington.edu"]}
		}`)
	})

	q := url.Values{}
	q.Set("day", "Monday")
	q.Set("start_time", "06:00")
	coll, err := c.ListActivities(context.Background(), q)
	require.NoError(t, err)
	items := coll.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Gym Class", items[0].Name)
	assert.Equal(t, "Art Club", items[1].Name)
}

func TestListActivitiesMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `["nope"]`)
	})

	_, err := c.ListActivities(context.Background(), nil)
	var malformed *MalformedDataError
	assert.ErrorAs(t, err, &malformed)
}

func TestSignupEscapesActivityAndSendsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/activities/Chess Club/signup", r.URL.Path)
		assert.Equal(t, "/activities/Chess%20Club/signup", r.URL.EscapedPath())
		assert.Equal(t, "new+kid@mergington.edu", r.URL.Query().Get("email"))
		assert.Equal(t, "mrodriguez", r.URL.Query().Get("teacher_username"))
		writeJSON(w, http.StatusOK, `{"message": "Signed up new+kid@mergington.edu for Chess Club"}`)
	})

	msg, err := c.Signup(context.Background(), "Chess Club", "new+kid@mergington.edu", "mrodriguez")
	require.NoError(t, err)
	assert.Equal(t, "Signed up new+kid@mergington.edu for Chess Club", msg)
}

func TestUnregisterRejected(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/activities/Chess Club/unregister", r.URL.Path)
		writeJSON(w, http.StatusBadRequest, `{"detail": "Student is not signed up for this activity"}`)
	})

	_, err := c.Unregister(context.Background(), "Chess Club", "x@mergington.edu", "mrodriguez")
	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, http.StatusBadRequest, rej.Status)
	assert.Equal(t, "Student is not signed up for this activity", rej.Detail)
	assert.Equal(t, "Student is not signed up for this activity", UserMessage(err, "fallback"))
	assert.Equal(t, 1, calls)
}

func TestWritesAreNeverRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusServiceUnavailable, `{}`)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Retries: 3})
	require.NoError(t, err)
	c.read.RetryWaitMin, c.read.RetryWaitMax = 0, 0

	_, err = c.Signup(context.Background(), "Chess Club", "x@mergington.edu", "t")
	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "fallback", UserMessage(err, "fallback"))

	calls = 0
	_, err = c.ListActivities(context.Background(), nil)
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, 4, calls)
}

func TestValidationDetailArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, `{"detail": [{"loc": ["query", "email"], "msg": "field required", "type": "value_error.missing"}]}`)
	})

	_, err := c.Signup(context.Background(), "Chess Club", "", "t")
	assert.Equal(t, "field required", UserMessage(err, "fallback"))
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: base})
	require.NoError(t, err)

	_, err = c.ActiveAnnouncements(context.Background())
	var nerr *NetworkError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, GenericNetworkMessage, UserMessage(err, "fallback"))
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		if r.URL.Query().Get("password") != "secret" {
			writeJSON(w, http.StatusUnauthorized, `{"detail": "Invalid username or password"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"username": "mrodriguez", "display_name": "Mr. Rodriguez", "role": "teacher"}`)
	})

	u, err := c.Login(context.Background(), "mrodriguez", "secret")
	require.NoError(t, err)
	assert.Equal(t, User{Username: "mrodriguez", DisplayName: "Mr. Rodriguez", Role: "teacher"}, u)

	_, err = c.Login(context.Background(), "mrodriguez", "wrong")
	assert.Equal(t, "Invalid username or password", UserMessage(err, "fallback"))
}

func TestCheckSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/check-session", r.URL.Path)
		if r.URL.Query().Get("username") == "ghost" {
			writeJSON(w, http.StatusNotFound, `{"detail": "Teacher not found"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"username": "mchen", "display_name": "Ms. Chen"}`)
	})

	u, err := c.CheckSession(context.Background(), "mchen")
	require.NoError(t, err)
	assert.Equal(t, "Ms. Chen", u.DisplayName)

	_, err = c.CheckSession(context.Background(), "ghost")
	assert.True(t, errors.Is(err, ErrSessionInvalid))
	var rej *RejectionError
	assert.ErrorAs(t, err, &rej)
}

func TestAnnouncementsCRUD(t *testing.T) {
	start := "2026-10-01"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/announcements/":
			writeJSON(w, http.StatusOK, `[{"id": "a1", "message": "Welcome back!", "start_date": null, "end_date": "2026-12-31"}]`)
		case r.Method == http.MethodGet && r.URL.Path == "/announcements/all":
			assert.Equal(t, "mchen", r.URL.Query().Get("teacher_username"))
			writeJSON(w, http.StatusOK, `[{"id": "a1", "message": "Welcome back!", "start_date": null, "end_date": "2026-12-31", "created_by_name": "Ms. Chen", "created_at": "2026-09-01T08:00:00"}]`)
		case r.Method == http.MethodPost && r.URL.Path == "/announcements/":
			var in AnnouncementInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "Club fair", in.Message)
			require.NotNil(t, in.StartDate)
			assert.Equal(t, start, *in.StartDate)
			writeJSON(w, http.StatusOK, `{"id": "a2", "message": "Club fair", "start_date": "2026-10-01", "end_date": "2026-10-31", "created_by_name": "Ms. Chen"}`)
		case r.Method == http.MethodPut && r.URL.Path == "/announcements/a2":
			writeJSON(w, http.StatusOK, `{"id": "a2", "message": "Club fair moved", "start_date": "2026-10-01", "end_date": "2026-10-31"}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/announcements/a2":
			writeJSON(w, http.StatusOK, `{"message": "Announcement deleted successfully"}`)
		default:
			writeJSON(w, http.StatusNotFound, `{"detail": "Not Found"}`)
		}
	})
	ctx := context.Background()

	active, err := c.ActiveAnnouncements(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Nil(t, active[0].StartDate)

	all, err := c.AllAnnouncements(ctx, "mchen")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Ms. Chen", all[0].CreatedByName)

	created, err := c.CreateAnnouncement(ctx, "mchen", AnnouncementInput{Message: "Club fair", StartDate: &start, EndDate: "2026-10-31"})
	require.NoError(t, err)
	assert.Equal(t, "a2", created.ID)

	updated, err := c.UpdateAnnouncement(ctx, "mchen", "a2", AnnouncementInput{Message: "Club fair moved", StartDate: &start, EndDate: "2026-10-31"})
	require.NoError(t, err)
	assert.Equal(t, "Club fair moved", updated.Message)

	msg, err := c.DeleteAnnouncement(ctx, "mchen", "a2")
	require.NoError(t, err)
	assert.Equal(t, "Announcement deleted successfully", msg)
}

func TestCreateAnnouncementValidatesBeforeSending(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("request should not be sent")
	})
	start := "2026-11-02"

	_, err := c.CreateAnnouncement(context.Background(), "mchen", AnnouncementInput{Message: "x", StartDate: &start, EndDate: "2026-11-01"})
	assert.ErrorIs(t, err, errInvalidAnnouncement)

	_, err = c.CreateAnnouncement(context.Background(), "mchen", AnnouncementInput{Message: " ", EndDate: "2026-11-01"})
	assert.ErrorIs(t, err, errInvalidAnnouncement)

	_, err = c.CreateAnnouncement(context.Background(), "mchen", AnnouncementInput{Message: "x", EndDate: "11/01/2026"})
	assert.ErrorIs(t, err, errInvalidAnnouncement)
}

func TestAnnouncementStatus(t *testing.T) {
	day := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	future := "2026-10-20"

	assert.Equal(t, "active", Announcement{EndDate: "2026-10-16"}.Status(day))
	assert.Equal(t, "expired", Announcement{EndDate: "2026-10-15"}.Status(day))
	assert.Equal(t, "scheduled", Announcement{StartDate: &future, EndDate: "2026-10-30"}.Status(day))
}

func TestHTMLErrorPageTitleIsDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html><head><title>502 Bad Gateway</title></head></html>")
	})

	_, err := c.ActiveAnnouncements(context.Background())
	assert.Equal(t, "502 Bad Gateway", UserMessage(err, "fallback"))
}
