// Package session runs the prompt / reveal / rate loop over due items.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/conorfennell/orgdrill/internal/domain"
)

var (
	ErrInvalidChoice = errors.New("session: choice not offered in current state")
	ErrBusy          = errors.New("session: an item is already being presented")
	ErrOver          = errors.New("session: session has been quit")
)

// Choice is one of the actions offered to the learner.
type Choice string

const (
	Reveal  Choice = "reveal"
	Skip    Choice = "skip"
	Quit    Choice = "quit"
	Success Choice = "success"
	Failure Choice = "failure"
)

// State of the machine between items and while presenting one.
type State int

const (
	Idle State = iota
	Prompt
	Revealed
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Prompt:
		return "prompt"
	case Revealed:
		return "revealed"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	promptChoices   = []Choice{Reveal, Skip, Quit}
	revealedChoices = []Choice{Success, Failure, Quit}
)

// Recorder persists ratings.
type Recorder interface {
	SaveRating(ctx context.Context, r domain.Rating) error
}

// Card is what a display shows: the front of an item while prompting, the
// back once revealed.
type Card struct {
	Ref      domain.Ref
	Text     string
	Revealed bool
}

// Step is the result of one choice.
type Step struct {
	State   State
	Outcome domain.Outcome // set when a rating was saved
	Card    *Card          // set when the back was revealed
}

// Machine tracks one item at a time and saves at most one rating for it.
type Machine struct {
	recorder Recorder
	now      func() time.Time
	state    State
	item     domain.Item
}

// NewMachine creates an idle machine. now is read for every rating.
func NewMachine(rec Recorder, now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{recorder: rec, now: now}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Choices returns the actions offered in the current state.
func (m *Machine) Choices() []Choice {
	switch m.state {
	case Prompt:
		return slices.Clone(promptChoices)
	case Revealed:
		return slices.Clone(revealedChoices)
	default:
		return nil
	}
}

// Present moves an idle machine to Prompt for item and returns its front.
func (m *Machine) Present(item domain.Item) (Card, error) {
	switch m.state {
	case Done:
		return Card{}, ErrOver
	case Prompt, Revealed:
		return Card{}, ErrBusy
	}
	m.item = item
	m.state = Prompt
	return Card{Ref: item.Ref(), Text: item.Front()}, nil
}

// Choose applies c. A rating write failure leaves the machine where it was
// and is returned; callers treat it as fatal.
func (m *Machine) Choose(ctx context.Context, c Choice) (Step, error) {
	if !slices.Contains(m.Choices(), c) {
		return Step{State: m.state}, fmt.Errorf("%w: %q in state %s", ErrInvalidChoice, c, m.state)
	}

	switch c {
	case Quit:
		m.item = nil
		m.state = Done
		return Step{State: m.state}, nil
	case Reveal:
		m.state = Revealed
		card := Card{Ref: m.item.Ref(), Text: m.item.Back(), Revealed: true}
		return Step{State: m.state, Card: &card}, nil
	case Skip:
		return m.rate(ctx, domain.Skip)
	case Success:
		return m.rate(ctx, domain.Success)
	default:
		return m.rate(ctx, domain.Failure)
	}
}

func (m *Machine) rate(ctx context.Context, outcome domain.Outcome) (Step, error) {
	r := domain.Rating{Date: m.now(), ItemID: m.item.Ref().ID, Outcome: outcome}
	if err := m.recorder.SaveRating(ctx, r); err != nil {
		return Step{State: m.state}, fmt.Errorf("failed to record %s for %s: %w", outcome, r.ItemID, err)
	}
	m.item = nil
	m.state = Idle
	return Step{State: m.state, Outcome: outcome}, nil
}
