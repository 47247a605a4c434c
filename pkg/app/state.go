package app

import (
	"sync"

	"github.com/mergington/signupboard/pkg/activities"
	"github.com/mergington/signupboard/pkg/board"
)

// slot identifies one independently refreshed part of the state.
type slot int

const (
	slotActivities slot = iota
	slotAnnouncements
	slotUser
	slotCount
)

func (s slot) String() string {
	switch s {
	case slotActivities:
		return "activities"
	case slotAnnouncements:
		return "announcements"
	case slotUser:
		return "user"
	}
	return "unknown"
}

// State is the application state owned by a Board. Each slot is written by
// exactly one kind of fetch; a write carries the ticket issued when its
// request started and is dropped if a newer request was issued since.
type State struct {
	mu sync.Mutex

	criteria      activities.FilterCriteria
	activities    activities.Collection
	loaded        bool
	announcements []board.Announcement
	user          *board.User

	issued [slotCount]uint64
}

func newState(c activities.FilterCriteria) *State {
	return &State{criteria: c}
}

// issue hands out the ticket for a new request on s.
func (st *State) issue(s slot) uint64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.issued[s]++
	return st.issued[s]
}

func (st *State) currentLocked(s slot, ticket uint64) bool {
	return st.issued[s] == ticket
}

func (st *State) setActivities(ticket uint64, c activities.Collection) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.currentLocked(slotActivities, ticket) {
		return false
	}
	st.activities = c
	st.loaded = true
	return true
}

func (st *State) setAnnouncements(ticket uint64, list []board.Announcement) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.currentLocked(slotAnnouncements, ticket) {
		return false
	}
	st.announcements = list
	return true
}

func (st *State) setUser(ticket uint64, u *board.User) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.currentLocked(slotUser, ticket) {
		return false
	}
	st.user = u
	return true
}

func (st *State) updateCriteria(fn func(*activities.FilterCriteria)) (before, after activities.FilterCriteria) {
	st.mu.Lock()
	defer st.mu.Unlock()
	before = st.criteria
	fn(&st.criteria)
	return before, st.criteria
}

// Criteria returns the current filter.
func (st *State) Criteria() activities.FilterCriteria {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.criteria
}

// Activities returns the last accepted collection and whether any fetch
// has landed yet.
func (st *State) Activities() (activities.Collection, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.activities, st.loaded
}

// Announcements returns the last accepted active announcements.
func (st *State) Announcements() []board.Announcement {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]board.Announcement(nil), st.announcements...)
}

// User returns the logged in user, or nil.
func (st *State) User() *board.User {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.user == nil {
		return nil
	}
	u := *st.user
	return &u
}
