package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/mergington/signupboard/pkg/board"
)

// Phase is a step of the pending action state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingConfirmation
	PhaseSubmitting
	PhaseSuccess
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingConfirmation:
		return "awaiting-confirmation"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

var transitions = map[Phase][]Phase{
	PhaseIdle:                 {PhaseAwaitingConfirmation, PhaseSubmitting},
	PhaseAwaitingConfirmation: {PhaseSubmitting, PhaseIdle},
	PhaseSubmitting:           {PhaseSuccess, PhaseFailed},
	PhaseSuccess:              {PhaseIdle},
	PhaseFailed:               {PhaseIdle},
}

// ErrCancelled is returned when the user declines a destructive action.
var ErrCancelled = errors.New("action cancelled")

// action describes one user initiated write.
type action struct {
	name        string
	destructive bool
	prompt      string
	fallback    string
	submit      func(ctx context.Context) (string, error)
	// invalidate refetches whatever the action changed.
	invalidate func(ctx context.Context) error
}

type flow struct {
	b     *Board
	name  string
	phase Phase
}

func (f *flow) to(next Phase) {
	for _, p := range transitions[f.phase] {
		if p == next {
			f.b.log.Debugf("%s: %s -> %s", f.name, f.phase, next)
			if f.b.onTransition != nil {
				f.b.onTransition(f.name, f.phase, next)
			}
			f.phase = next
			return
		}
	}
	panic(fmt.Sprintf("%s: illegal transition %s -> %s", f.name, f.phase, next))
}

// run drives a through Idle -> [AwaitingConfirmation] -> Submitting ->
// Success|Failed -> Idle.
func (b *Board) run(ctx context.Context, a action) (string, error) {
	f := &flow{b: b, name: a.name, phase: PhaseIdle}

	if a.destructive {
		f.to(PhaseAwaitingConfirmation)
		ok, err := b.confirm(ctx, a.prompt)
		if err != nil || !ok {
			f.to(PhaseIdle)
			if err != nil {
				return "", err
			}
			return "", ErrCancelled
		}
	}

	f.to(PhaseSubmitting)
	msg, err := a.submit(ctx)
	if err != nil {
		f.to(PhaseFailed)
		b.log.Warnf("%s failed: %v", a.name, err)
		b.notify(Banner{Kind: BannerError, Message: board.UserMessage(err, a.fallback)})
		f.to(PhaseIdle)
		return "", err
	}

	f.to(PhaseSuccess)
	if msg != "" {
		b.notify(Banner{Kind: BannerSuccess, Message: msg})
	}
	if a.invalidate != nil {
		// Refetch failures are reported by the refresh itself; the write
		// already happened.
		_ = a.invalidate(ctx)
	}
	f.to(PhaseIdle)
	return msg, nil
}

func (b *Board) confirm(ctx context.Context, prompt string) (bool, error) {
	if b.confirmer == nil {
		return false, nil
	}
	return b.confirmer.Confirm(ctx, prompt)
}
