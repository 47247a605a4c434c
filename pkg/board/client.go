// Package board is the client for the signup board REST API.
package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/mergington/signupboard/pkg/activities"
	"github.com/mergington/signupboard/pkg/whttp"
	"github.com/tidwall/gjson"
)

const DEFAULT_API_URL = "http://localhost:8000"

// Config carries the connection settings for the board API.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Retries applies to GET requests only. Writes are never retried.
	Retries int
	Proxy   string
}

// Client talks to the board API.
type Client struct {
	baseURL string
	read    *retryablehttp.Client
	write   *retryablehttp.Client
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DEFAULT_API_URL
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q", cfg.BaseURL)
	}

	read, err := whttp.NewClient(whttp.ClientOptions{Timeout: cfg.Timeout, RetryMax: cfg.Retries, Proxy: cfg.Proxy})
	if err != nil {
		return nil, err
	}
	write, err := whttp.NewClient(whttp.ClientOptions{Timeout: cfg.Timeout, Proxy: cfg.Proxy, Jar: read.HTTPClient.Jar})
	if err != nil {
		return nil, err
	}
	write.CheckRetry = func(ctx context.Context, _ *http.Response, _ error) (bool, error) {
		return false, ctx.Err()
	}

	return &Client{baseURL: base, read: read, write: write}, nil
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// call performs the request and turns transport failures and non-2xx
// answers into typed errors.
func (c *Client) call(ctx context.Context, op, method, path string, q url.Values, payload interface{}) (*whttp.WHTTPRes, error) {
	req := &whttp.WHTTPReq{Method: method, URL: c.endpoint(path, q)}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encoding request: %w", op, err)
		}
		req.Body = body
		req.Headers = append(req.Headers, whttp.WHTTPHeader{Name: "Content-Type", Value: "application/json"})
	}

	client := c.write
	if method == http.MethodGet {
		client = c.read
	}

	res, err := whttp.SendHTTPRequest(ctx, req, client)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	if !res.IsSuccess() {
		return nil, newRejection(op, res)
	}
	return res, nil
}

func decode(op string, res *whttp.WHTTPRes, v interface{}) error {
	if err := json.Unmarshal([]byte(res.BodyString), v); err != nil {
		return &MalformedDataError{Op: op, Err: err}
	}
	return nil
}

func messageOf(res *whttp.WHTTPRes) string {
	return gjson.Get(res.BodyString, "message").String()
}

// ListActivities fetches the activity collection. query carries the
// upstream half of the filter (day, start_time, end_time).
func (c *Client) ListActivities(ctx context.Context, query url.Values) (activities.Collection, error) {
	const op = "list activities"
	res, err := c.call(ctx, op, http.MethodGet, "/activities", query, nil)
	if err != nil {
		return activities.Collection{}, err
	}
	coll, err := activities.ParseCollection([]byte(res.BodyString))
	if err != nil {
		return activities.Collection{}, &MalformedDataError{Op: op, Err: err}
	}
	return coll, nil
}

func (c *Client) enrollment(ctx context.Context, op, action, activity, email, teacher string) (string, error) {
	q := url.Values{}
	q.Set("email", email)
	q.Set("teacher_username", teacher)
	res, err := c.call(ctx, op, http.MethodPost, "/activities/"+url.PathEscape(activity)+"/"+action, q, nil)
	if err != nil {
		return "", err
	}
	return messageOf(res), nil
}

// Signup enrolls email in activity on behalf of teacher.
func (c *Client) Signup(ctx context.Context, activity, email, teacher string) (string, error) {
	return c.enrollment(ctx, "signup", "signup", activity, email, teacher)
}

// Unregister removes email from activity on behalf of teacher.
func (c *Client) Unregister(ctx context.Context, activity, email, teacher string) (string, error) {
	return c.enrollment(ctx, "unregister", "unregister", activity, email, teacher)
}

// Login authenticates a teacher.
func (c *Client) Login(ctx context.Context, username, password string) (User, error) {
	const op = "login"
	q := url.Values{}
	q.Set("username", username)
	q.Set("password", password)
	res, err := c.call(ctx, op, http.MethodPost, "/auth/login", q, nil)
	if err != nil {
		return User{}, err
	}
	var u User
	if err := decode(op, res, &u); err != nil {
		return User{}, err
	}
	if u.Username == "" {
		return User{}, &MalformedDataError{Op: op, Err: errors.New("missing username")}
	}
	return u, nil
}

// CheckSession re-validates a stored username. Any rejection is reported
// as ErrSessionInvalid; network failures are not.
func (c *Client) CheckSession(ctx context.Context, username string) (User, error) {
	const op = "check session"
	q := url.Values{}
	q.Set("username", username)
	res, err := c.call(ctx, op, http.MethodGet, "/auth/check-session", q, nil)
	if err != nil {
		var rej *RejectionError
		if errors.As(err, &rej) {
			return User{}, fmt.Errorf("%w: %w", ErrSessionInvalid, err)
		}
		return User{}, err
	}
	var u User
	if err := decode(op, res, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// ActiveAnnouncements returns the announcements currently on display.
func (c *Client) ActiveAnnouncements(ctx context.Context) ([]Announcement, error) {
	const op = "list announcements"
	res, err := c.call(ctx, op, http.MethodGet, "/announcements/", nil, nil)
	if err != nil {
		return nil, err
	}
	out := []Announcement{}
	if err := decode(op, res, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AllAnnouncements returns every announcement for the management view.
func (c *Client) AllAnnouncements(ctx context.Context, teacher string) ([]Announcement, error) {
	const op = "list all announcements"
	res, err := c.call(ctx, op, http.MethodGet, "/announcements/all", teacherQuery(teacher), nil)
	if err != nil {
		return nil, err
	}
	out := []Announcement{}
	if err := decode(op, res, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAnnouncement posts a new announcement.
func (c *Client) CreateAnnouncement(ctx context.Context, teacher string, in AnnouncementInput) (Announcement, error) {
	const op = "create announcement"
	if err := in.Validate(); err != nil {
		return Announcement{}, err
	}
	res, err := c.call(ctx, op, http.MethodPost, "/announcements/", teacherQuery(teacher), in)
	if err != nil {
		return Announcement{}, err
	}
	var a Announcement
	if err := decode(op, res, &a); err != nil {
		return Announcement{}, err
	}
	return a, nil
}

// UpdateAnnouncement replaces the fields of announcement id.
func (c *Client) UpdateAnnouncement(ctx context.Context, teacher, id string, in AnnouncementInput) (Announcement, error) {
	const op = "update announcement"
	if err := in.Validate(); err != nil {
		return Announcement{}, err
	}
	res, err := c.call(ctx, op, http.MethodPut, "/announcements/"+url.PathEscape(id), teacherQuery(teacher), in)
	if err != nil {
		return Announcement{}, err
	}
	var a Announcement
	if err := decode(op, res, &a); err != nil {
		return Announcement{}, err
	}
	return a, nil
}

// DeleteAnnouncement removes announcement id.
func (c *Client) DeleteAnnouncement(ctx context.Context, teacher, id string) (string, error) {
	res, err := c.call(ctx, "delete announcement", http.MethodDelete, "/announcements/"+url.PathEscape(id), teacherQuery(teacher), nil)
	if err != nil {
		return "", err
	}
	return messageOf(res), nil
}

func teacherQuery(teacher string) url.Values {
	q := url.Values{}
	q.Set("teacher_username", teacher)
	return q
}
