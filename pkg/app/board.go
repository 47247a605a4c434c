// Package app owns the signup board application state and the
// orchestration around it: fetching, filter changes, session handling and
// the confirm/submit/refetch flow of user actions.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/mergington/signupboard/pkg/activities"
	"github.com/mergington/signupboard/pkg/board"
	"github.com/mergington/signupboard/pkg/session"
)

// ErrNotAuthenticated is returned by teacher-only actions when nobody is
// logged in.
var ErrNotAuthenticated = errors.New("you must be logged in as a teacher")

// API is the upstream board. *board.Client implements it.
type API interface {
	ListActivities(ctx context.Context, query url.Values) (activities.Collection, error)
	Signup(ctx context.Context, activity, email, teacher string) (string, error)
	Unregister(ctx context.Context, activity, email, teacher string) (string, error)
	Login(ctx context.Context, username, password string) (board.User, error)
	CheckSession(ctx context.Context, username string) (board.User, error)
	ActiveAnnouncements(ctx context.Context) ([]board.Announcement, error)
	AllAnnouncements(ctx context.Context, teacher string) ([]board.Announcement, error)
	CreateAnnouncement(ctx context.Context, teacher string, in board.AnnouncementInput) (board.Announcement, error)
	UpdateAnnouncement(ctx context.Context, teacher, id string, in board.AnnouncementInput) (board.Announcement, error)
	DeleteAnnouncement(ctx context.Context, teacher, id string) (string, error)
}

// SessionStore is the durable user slot. *session.Store implements it.
type SessionStore interface {
	Load(ctx context.Context) (*board.User, error)
	Save(ctx context.Context, u board.User) error
	Clear(ctx context.Context) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Logger abstracts logging so callers can use logrus or anything with the
// same methods.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Config holds everything NewBoard needs. API is required.
type Config struct {
	API       API
	Store     SessionStore // optional; nil = nothing persisted
	Confirmer Confirmer    // optional; nil = destructive actions are declined
	Notifier  Notifier     // optional
	Log       Logger       // optional
	Criteria  *activities.FilterCriteria

	// OnTransition observes action phase changes.
	OnTransition func(action string, from, to Phase)
}

// Board is the controller in front of the application state.
type Board struct {
	api          API
	store        SessionStore
	confirmer    Confirmer
	notifier     Notifier
	log          Logger
	onTransition func(action string, from, to Phase)

	state *State
}

func NewBoard(cfg Config) *Board {
	criteria := activities.DefaultCriteria()
	if cfg.Criteria != nil {
		criteria = *cfg.Criteria
	}
	b := &Board{
		api:          cfg.API,
		store:        cfg.Store,
		confirmer:    cfg.Confirmer,
		notifier:     cfg.Notifier,
		log:          cfg.Log,
		onTransition: cfg.OnTransition,
		state:        newState(criteria),
	}
	if b.log == nil {
		b.log = nopLogger{}
	}
	return b
}

// State exposes the read side of the application state.
func (b *Board) State() *State { return b.state }

func (b *Board) notify(banner Banner) {
	if b.notifier != nil {
		b.notifier.Notify(banner)
	}
}

// Refresh invalidates the activity collection and refetches it with the
// current remote criteria.
func (b *Board) Refresh(ctx context.Context) error {
	criteria := b.state.Criteria()
	ticket := b.state.issue(slotActivities)

	coll, err := b.api.ListActivities(ctx, activities.RemoteQuery(criteria))
	if err != nil {
		b.log.Warnf("Failed to fetch activities: %v", err)
		b.notify(Banner{Kind: BannerError, Message: board.UserMessage(err, "Failed to load activities. Please try again later.")})
		return err
	}
	if !b.state.setActivities(ticket, coll) {
		b.log.Debugf("Dropping stale %s response (ticket %d)", slotActivities, ticket)
	}
	return nil
}

// RefreshAnnouncements refetches the active announcements.
func (b *Board) RefreshAnnouncements(ctx context.Context) error {
	ticket := b.state.issue(slotAnnouncements)

	list, err := b.api.ActiveAnnouncements(ctx)
	if err != nil {
		b.log.Warnf("Failed to fetch announcements: %v", err)
		return err
	}
	if !b.state.setAnnouncements(ticket, list) {
		b.log.Debugf("Dropping stale %s response (ticket %d)", slotAnnouncements, ticket)
	}
	return nil
}

// View builds the visible activity list from the cached collection.
func (b *Board) View() ([]activities.ViewItem, error) {
	coll, _ := b.state.Activities()
	return activities.BuildView(coll, b.state.Criteria())
}

// SetCategory changes a locally applied criterion; no refetch.
func (b *Board) SetCategory(c activities.Category) {
	b.state.updateCriteria(func(fc *activities.FilterCriteria) { fc.Category = c })
}

// SetSearch changes a locally applied criterion; no refetch.
func (b *Board) SetSearch(text string) {
	b.state.updateCriteria(func(fc *activities.FilterCriteria) { fc.SearchText = text })
}

// SetDay changes the upstream day filter and refetches.
func (b *Board) SetDay(ctx context.Context, day string) error {
	return b.ApplyCriteria(ctx, func(fc *activities.FilterCriteria) { fc.Day = day })
}

// SetTimeRange changes the time range. Switching between weekend and no
// range only re-filters locally; morning and afternoon refetch.
func (b *Board) SetTimeRange(ctx context.Context, tr activities.TimeRange) error {
	return b.ApplyCriteria(ctx, func(fc *activities.FilterCriteria) { fc.TimeRange = tr })
}

// ResetCriteria restores the default filter.
func (b *Board) ResetCriteria(ctx context.Context) error {
	return b.ApplyCriteria(ctx, func(fc *activities.FilterCriteria) { *fc = activities.DefaultCriteria() })
}

// ApplyCriteria updates the filter and refetches when the upstream half
// changed or nothing has been fetched yet.
func (b *Board) ApplyCriteria(ctx context.Context, fn func(*activities.FilterCriteria)) error {
	before, after := b.state.updateCriteria(fn)
	if _, loaded := b.state.Activities(); loaded && activities.SameRemote(before, after) {
		return nil
	}
	return b.Refresh(ctx)
}

// Bootstrap runs the independent startup fetches concurrently. Each one
// writes its own slot; all errors are returned joined.
func (b *Board) Bootstrap(ctx context.Context) error {
	fetches := []func(context.Context) error{
		b.Refresh,
		b.RefreshAnnouncements,
		b.RestoreSession,
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, fetch := range fetches {
		wg.Add(1)
		go func(fetch func(context.Context) error) {
			defer wg.Done()
			if err := fetch(ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(fetch)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// RestoreSession re-validates the stored user. An invalid session clears
// the slot; a network failure keeps the stored user as is.
func (b *Board) RestoreSession(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	ticket := b.state.issue(slotUser)

	stored, err := b.store.Load(ctx)
	if errors.Is(err, session.ErrCorruptSlot) {
		b.log.Warnf("Discarding corrupt stored session")
		b.clearStore(ctx)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading stored session: %w", err)
	}
	if stored == nil {
		return nil
	}

	fresh, err := b.api.CheckSession(ctx, stored.Username)
	switch {
	case errors.Is(err, board.ErrSessionInvalid):
		b.log.Infof("Stored session for %s is no longer valid, logging out", stored.Username)
		if b.state.setUser(ticket, nil) {
			b.clearStore(ctx)
		}
		return nil
	case err != nil:
		b.log.Warnf("Could not validate stored session: %v", err)
		b.state.setUser(ticket, stored)
		return err
	}

	if fresh.Username == "" {
		fresh = *stored
	}
	if b.state.setUser(ticket, &fresh) {
		b.saveStore(ctx, fresh)
	}
	return nil
}

// Login authenticates and persists the user.
func (b *Board) Login(ctx context.Context, username, password string) (board.User, error) {
	ticket := b.state.issue(slotUser)

	u, err := b.api.Login(ctx, username, password)
	if err != nil {
		b.log.Warnf("Login failed: %v", err)
		b.notify(Banner{Kind: BannerError, Message: board.UserMessage(err, "Invalid username or password")})
		return board.User{}, err
	}
	if b.state.setUser(ticket, &u) {
		b.saveStore(ctx, u)
	}
	b.notify(Banner{Kind: BannerSuccess, Message: "Welcome, " + displayName(u)})
	return u, nil
}

// Logout forgets the user locally and in the durable slot.
func (b *Board) Logout(ctx context.Context) {
	ticket := b.state.issue(slotUser)
	b.state.setUser(ticket, nil)
	b.clearStore(ctx)
	b.notify(Banner{Kind: BannerInfo, Message: "Logged out"})
}

func (b *Board) saveStore(ctx context.Context, u board.User) {
	if b.store == nil {
		return
	}
	if err := b.store.Save(ctx, u); err != nil {
		b.log.Warnf("Could not persist session: %v", err)
	}
}

func (b *Board) clearStore(ctx context.Context) {
	if b.store == nil {
		return
	}
	if err := b.store.Clear(ctx); err != nil {
		b.log.Warnf("Could not clear stored session: %v", err)
	}
}

func displayName(u board.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func (b *Board) teacher() (string, error) {
	u := b.state.User()
	if u == nil {
		b.notify(Banner{Kind: BannerError, Message: "You must be logged in as a teacher to do that."})
		return "", ErrNotAuthenticated
	}
	return u.Username, nil
}

// Signup enrolls email in activity and refetches the activities.
func (b *Board) Signup(ctx context.Context, activity, email string) (string, error) {
	teacher, err := b.teacher()
	if err != nil {
		return "", err
	}
	email = strings.TrimSpace(email)
	return b.run(ctx, action{
		name:     "signup",
		fallback: "Failed to sign up. Please try again.",
		submit: func(ctx context.Context) (string, error) {
			return b.api.Signup(ctx, activity, email, teacher)
		},
		invalidate: b.Refresh,
	})
}

// Unregister asks for confirmation, removes email from activity and
// refetches the activities.
func (b *Board) Unregister(ctx context.Context, activity, email string) (string, error) {
	teacher, err := b.teacher()
	if err != nil {
		return "", err
	}
	return b.run(ctx, action{
		name:        "unregister",
		destructive: true,
		prompt:      fmt.Sprintf("Unregister %s from %s?", email, activity),
		fallback:    "Failed to unregister. Please try again.",
		submit: func(ctx context.Context) (string, error) {
			return b.api.Unregister(ctx, activity, email, teacher)
		},
		invalidate: b.Refresh,
	})
}

// ManagedAnnouncements lists every announcement for a logged in teacher.
func (b *Board) ManagedAnnouncements(ctx context.Context) ([]board.Announcement, error) {
	teacher, err := b.teacher()
	if err != nil {
		return nil, err
	}
	list, err := b.api.AllAnnouncements(ctx, teacher)
	if err != nil {
		b.log.Warnf("Failed to fetch announcements: %v", err)
		b.notify(Banner{Kind: BannerError, Message: board.UserMessage(err, "Failed to load announcements.")})
		return nil, err
	}
	return list, nil
}

// CreateAnnouncement publishes a new announcement.
func (b *Board) CreateAnnouncement(ctx context.Context, in board.AnnouncementInput) (string, error) {
	teacher, err := b.teacher()
	if err != nil {
		return "", err
	}
	return b.run(ctx, action{
		name:     "create announcement",
		fallback: "Failed to save announcement.",
		submit: func(ctx context.Context) (string, error) {
			a, err := b.api.CreateAnnouncement(ctx, teacher, in)
			if err != nil {
				return "", err
			}
			return "Announcement created (" + a.ID + ")", nil
		},
		invalidate: b.RefreshAnnouncements,
	})
}

// UpdateAnnouncement edits announcement id.
func (b *Board) UpdateAnnouncement(ctx context.Context, id string, in board.AnnouncementInput) (string, error) {
	teacher, err := b.teacher()
	if err != nil {
		return "", err
	}
	return b.run(ctx, action{
		name:     "update announcement",
		fallback: "Failed to save announcement.",
		submit: func(ctx context.Context) (string, error) {
			if _, err := b.api.UpdateAnnouncement(ctx, teacher, id, in); err != nil {
				return "", err
			}
			return "Announcement updated", nil
		},
		invalidate: b.RefreshAnnouncements,
	})
}

// DeleteAnnouncement asks for confirmation and deletes announcement id.
func (b *Board) DeleteAnnouncement(ctx context.Context, id string) (string, error) {
	teacher, err := b.teacher()
	if err != nil {
		return "", err
	}
	return b.run(ctx, action{
		name:        "delete announcement",
		destructive: true,
		prompt:      "Delete announcement " + id + "?",
		fallback:    "Failed to delete announcement.",
		submit: func(ctx context.Context) (string, error) {
			return b.api.DeleteAnnouncement(ctx, teacher, id)
		},
		invalidate: b.RefreshAnnouncements,
	})
}
