package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/conorfennell/orgdrill/internal/domain"
)

// Display shows cards and collects the learner's choices.
type Display interface {
	Show(ctx context.Context, card Card) error
	Ask(ctx context.Context, choices []Choice) (Choice, error)
}

// Result is what happened to one presented item. Outcome is empty when the
// learner quit on it.
type Result struct {
	Ref     domain.Ref
	Outcome domain.Outcome
	Quit    bool
}

// Stats are the counters kept across Review calls.
type Stats struct {
	Presented int
	Success   int
	Failure   int
	Skipped   int
	Quit      bool
}

// Rated is the number of presentations that ended with a rating.
func (s Stats) Rated() int { return s.Success + s.Failure + s.Skipped }

// Session drives a Machine through a Display.
type Session struct {
	machine *Machine
	display Display
	stats   Stats
}

// New creates a session that saves ratings to rec, timestamped by now.
func New(display Display, rec Recorder, now func() time.Time) *Session {
	return &Session{machine: NewMachine(rec, now), display: display}
}

// Stats returns the counters accumulated so far.
func (s *Session) Stats() Stats { return s.stats }

// Review presents items in order until they run out or the learner quits.
// Once quit, further calls present nothing.
func (s *Session) Review(ctx context.Context, items []domain.Item) ([]Result, error) {
	var results []Result
	for _, item := range items {
		if s.stats.Quit {
			break
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.present(ctx, item)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Session) present(ctx context.Context, item domain.Item) (Result, error) {
	card, err := s.machine.Present(item)
	if err != nil {
		return Result{}, err
	}
	res := Result{Ref: card.Ref}
	if err := s.display.Show(ctx, card); err != nil {
		return res, err
	}
	s.stats.Presented++

	for {
		choice, err := s.display.Ask(ctx, s.machine.Choices())
		if err != nil {
			return res, err
		}
		step, err := s.machine.Choose(ctx, choice)
		if errors.Is(err, ErrInvalidChoice) {
			slog.Debug("ignoring choice", "choice", choice, "state", s.machine.State())
			continue
		}
		if err != nil {
			return res, err
		}

		switch {
		case step.Card != nil:
			if err := s.display.Show(ctx, *step.Card); err != nil {
				return res, err
			}
		case step.State == Done:
			s.stats.Quit = true
			res.Quit = true
			return res, nil
		default:
			res.Outcome = step.Outcome
			s.count(step.Outcome)
			return res, nil
		}
	}
}

func (s *Session) count(o domain.Outcome) {
	switch o {
	case domain.Success:
		s.stats.Success++
	case domain.Failure:
		s.stats.Failure++
	case domain.Skip:
		s.stats.Skipped++
	}
}
