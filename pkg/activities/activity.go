// Package activities holds the activity model and the pure filtering and
// formatting functions that turn a fetched activity collection into the
// list of cards shown to the user.
package activities

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMalformedCollection is returned when the upstream activity payload is
// not a JSON object of activity records.
var ErrMalformedCollection = errors.New("malformed activity collection")

// ScheduleDetails is the structured schedule representation.
type ScheduleDetails struct {
	Days      []string `json:"days"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
}

// Activity is a single extracurricular offering. Name is the collection key
// and is not part of the record body.
type Activity struct {
	Name            string           `json:"-"`
	Description     string           `json:"description"`
	Schedule        string           `json:"schedule,omitempty"`
	ScheduleDetails *ScheduleDetails `json:"schedule_details,omitempty"`
	MaxParticipants int              `json:"max_participants"`
	Participants    []string         `json:"participants"`
}

// SpotsLeft returns how many participants can still enroll.
func (a Activity) SpotsLeft() int {
	left := a.MaxParticipants - len(a.Participants)
	if left < 0 {
		return 0
	}
	return left
}

// IsFull reports whether no spots are left.
func (a Activity) IsFull() bool {
	return a.SpotsLeft() == 0
}

// Collection maps activity names to activities and remembers the order in
// which they were received.
type Collection struct {
	names  []string
	byName map[string]Activity
}

// NewCollection builds a collection from the given activities, in order.
func NewCollection(items ...Activity) Collection {
	var c Collection
	for _, a := range items {
		c.Add(a)
	}
	return c
}

// Add inserts a. An activity with the same name keeps its position and
// takes the new value.
func (c *Collection) Add(a Activity) {
	if c.byName == nil {
		c.byName = make(map[string]Activity)
	}
	if _, ok := c.byName[a.Name]; !ok {
		c.names = append(c.names, a.Name)
	}
	c.byName[a.Name] = a
}

// Len returns the number of activities.
func (c Collection) Len() int { return len(c.names) }

// Get looks up an activity by name.
func (c Collection) Get(name string) (Activity, bool) {
	a, ok := c.byName[name]
	return a, ok
}

// Items returns the activities in insertion order.
func (c Collection) Items() []Activity {
	out := make([]Activity, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.byName[n])
	}
	return out
}

// ParseCollection decodes the upstream name -> activity JSON object. Object
// key order is preserved, which a plain map decode would lose.
func ParseCollection(body []byte) (Collection, error) {
	if !gjson.ValidBytes(body) {
		return Collection{}, fmt.Errorf("%w: invalid JSON", ErrMalformedCollection)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return Collection{}, fmt.Errorf("%w: expected an object, got %s", ErrMalformedCollection, root.Type)
	}

	var (
		c   Collection
		err error
	)
	root.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			err = fmt.Errorf("%w: activity %q is not an object", ErrMalformedCollection, key.String())
			return false
		}
		var a Activity
		if uerr := json.Unmarshal([]byte(value.Raw), &a); uerr != nil {
			err = fmt.Errorf("%w: activity %q: %v", ErrMalformedCollection, key.String(), uerr)
			return false
		}
		a.Name = key.String()
		c.Add(a)
		return true
	})
	if err != nil {
		return Collection{}, err
	}
	return c, nil
}
