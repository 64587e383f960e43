// Package schedule decides when an item is due again. Each success since the
// last failure doubles the wait (1, 2, 4, 8... days); a failure resets it.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/conorfennell/orgdrill/internal/domain"
)

// Day is the base interval unit.
const Day = 24 * time.Hour

// maxExponent keeps Day << exponent inside time.Duration (about 179 years).
const maxExponent = 16

// Epoch is the due date of an item with no success since its last failure.
var Epoch = time.Unix(0, 0).UTC()

// History gives the ratings of an item in ascending date order.
type History interface {
	RatingsFor(ctx context.Context, itemID string) ([]domain.Rating, error)
}

// Streak summarizes the ratings that count toward the current interval.
type Streak struct {
	Successes   int
	LastSuccess time.Time
}

// CurrentStreak counts the successes after the last failure. Skips are
// neutral.
func CurrentStreak(ratings []domain.Rating) Streak {
	start := 0
	for i := len(ratings) - 1; i >= 0; i-- {
		if ratings[i].Outcome == domain.Failure {
			start = i + 1
			break
		}
	}

	var s Streak
	for _, r := range ratings[start:] {
		if r.Outcome == domain.Success {
			s.Successes++
			s.LastSuccess = r.Date
		}
	}
	return s
}

// Interval is the wait after n consecutive successes: 2^(n-1) days.
func Interval(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	exp := n - 1
	if exp > maxExponent {
		exp = maxExponent
	}
	return Day << exp
}

// NextDue returns the time from which the item is due.
func NextDue(ratings []domain.Rating) time.Time {
	s := CurrentStreak(ratings)
	if s.Successes == 0 {
		return Epoch
	}
	return s.LastSuccess.Add(Interval(s.Successes))
}

// IsDue reports whether an item with these ratings is due at now. The
// boundary itself counts as due.
func IsDue(ratings []domain.Rating, now time.Time) bool {
	return !NextDue(ratings).After(now)
}

// Scheduler answers due-ness questions from a rating history.
type Scheduler struct {
	history History
}

// New creates a Scheduler reading from h.
func New(h History) *Scheduler {
	return &Scheduler{history: h}
}

// IsDue fetches the item's ratings and reports whether it is due at now.
// A history error is returned as is; there is no fallback answer.
func (s *Scheduler) IsDue(ctx context.Context, itemID string, now time.Time) (bool, error) {
	ratings, err := s.history.RatingsFor(ctx, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to read ratings for %s: %w", itemID, err)
	}
	return IsDue(ratings, now), nil
}
