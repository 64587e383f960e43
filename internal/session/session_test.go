package session

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/orgdrill/internal/domain"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return t0 }

type memRecorder struct {
	ratings []domain.Rating
	err     error
}

func (r *memRecorder) SaveRating(ctx context.Context, rating domain.Rating) error {
	if r.err != nil {
		return r.err
	}
	r.ratings = append(r.ratings, rating)
	return nil
}

// scriptDisplay answers from a fixed script and records what it showed.
type scriptDisplay struct {
	script []Choice
	shown  []Card
	asked  [][]Choice
}

func (d *scriptDisplay) Show(ctx context.Context, card Card) error {
	d.shown = append(d.shown, card)
	return nil
}

func (d *scriptDisplay) Ask(ctx context.Context, choices []Choice) (Choice, error) {
	d.asked = append(d.asked, choices)
	if len(d.script) == 0 {
		return "", errors.New("script exhausted")
	}
	c := d.script[0]
	d.script = d.script[1:]
	return c, nil
}

func exercise(q, a string) domain.Item {
	return domain.Exercise{ID: uuid.NewString(), Subject: "Doc / " + q, Question: q, Answer: a}
}

func TestMachineTransitions(t *testing.T) {
	ctx := context.Background()
	rec := &memRecorder{}
	m := NewMachine(rec, clock)
	item := exercise("Q", "A")

	assert.Equal(t, Idle, m.State())
	assert.Nil(t, m.Choices())

	card, err := m.Present(item)
	require.NoError(t, err)
	assert.Equal(t, "Q", card.Text)
	assert.False(t, card.Revealed)
	assert.Equal(t, []Choice{Reveal, Skip, Quit}, m.Choices())

	_, err = m.Present(item)
	assert.ErrorIs(t, err, ErrBusy)

	_, err = m.Choose(ctx, Success)
	assert.ErrorIs(t, err, ErrInvalidChoice)
	assert.Equal(t, Prompt, m.State())

	step, err := m.Choose(ctx, Reveal)
	require.NoError(t, err)
	require.NotNil(t, step.Card)
	assert.Equal(t, "A", step.Card.Text)
	assert.Equal(t, []Choice{Success, Failure, Quit}, m.Choices())
	assert.Empty(t, rec.ratings)

	step, err = m.Choose(ctx, Failure)
	require.NoError(t, err)
	assert.Equal(t, Idle, step.State)
	assert.Equal(t, domain.Failure, step.Outcome)
	require.Len(t, rec.ratings, 1)
	assert.Equal(t, domain.Rating{Date: t0, ItemID: item.Ref().ID, Outcome: domain.Failure}, rec.ratings[0])

	_, err = m.Present(item)
	require.NoError(t, err)
	step, err = m.Choose(ctx, Quit)
	require.NoError(t, err)
	assert.Equal(t, Done, step.State)
	_, err = m.Present(item)
	assert.ErrorIs(t, err, ErrOver)
	assert.Len(t, rec.ratings, 1)
}

func TestMachineRecorderFailure(t *testing.T) {
	rec := &memRecorder{err: domain.ErrInvalidID}
	m := NewMachine(rec, clock)
	_, err := m.Present(exercise("Q", "A"))
	require.NoError(t, err)

	_, err = m.Choose(context.Background(), Skip)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	assert.Equal(t, Prompt, m.State())
}

func TestReview(t *testing.T) {
	ctx := context.Background()
	items := []domain.Item{
		exercise("Q1", "A1"),
		domain.Definition{ID: uuid.NewString(), Subject: "Doc / Term", Content: "* Term\nmeaning"},
		exercise("Q3", "A3"),
		exercise("Q4", "A4"),
	}
	rec := &memRecorder{}
	display := &scriptDisplay{script: []Choice{
		Reveal, Success, // Q1
		Success, Reveal, Failure, // Term, with an invalid first choice
		Skip,          // Q3
		Reveal, Quit, // Q4
	}}
	s := New(display, rec, clock)

	results, err := s.Review(ctx, items)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, domain.Success, results[0].Outcome)
	assert.Equal(t, domain.Failure, results[1].Outcome)
	assert.Equal(t, domain.Skip, results[2].Outcome)
	assert.True(t, results[3].Quit)
	assert.Empty(t, results[3].Outcome)

	require.Len(t, rec.ratings, 3)
	assert.Equal(t, Stats{Presented: 4, Success: 1, Failure: 1, Skipped: 1, Quit: true}, s.Stats())

	// Definition front is the fixed question, back is the content.
	assert.Equal(t, domain.DefinitionQuestion, display.shown[2].Text)
	assert.Equal(t, "* Term\nmeaning", display.shown[3].Text)

	more, err := s.Review(ctx, []domain.Item{exercise("Q5", "A5")})
	require.NoError(t, err)
	assert.Empty(t, more, "nothing is presented after quit")
}

func TestReviewDisplayError(t *testing.T) {
	s := New(&scriptDisplay{}, &memRecorder{}, clock)
	_, err := s.Review(context.Background(), []domain.Item{exercise("Q", "A")})
	assert.Error(t, err)
}

func TestReviewCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &memRecorder{}
	s := New(&scriptDisplay{script: []Choice{Skip}}, rec, clock)
	_, err := s.Review(ctx, []domain.Item{exercise("Q", "A")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.ratings)
}

// randomDisplay picks one of reveal->success, reveal->failure, skip, quit.
type randomDisplay struct {
	rng      *rand.Rand
	pending  Choice
	terminal map[Choice]int
}

func (d *randomDisplay) Show(ctx context.Context, card Card) error { return nil }

func (d *randomDisplay) Ask(ctx context.Context, choices []Choice) (Choice, error) {
	if d.pending != "" {
		c := d.pending
		d.pending = ""
		d.terminal[c]++
		return c, nil
	}
	switch d.rng.Intn(4) {
	case 0:
		d.pending = Success
		return Reveal, nil
	case 1:
		d.pending = Failure
		return Reveal, nil
	case 2:
		d.terminal[Skip]++
		return Skip, nil
	default:
		d.terminal[Quit]++
		return Quit, nil
	}
}

func TestSessionSavesAtMostOneRatingPerPresentation(t *testing.T) {
	ctx := context.Background()
	rec := &memRecorder{}
	display := &randomDisplay{rng: rand.New(rand.NewSource(42)), terminal: map[Choice]int{}}

	presented := 0
	for presented < 100 {
		items := make([]domain.Item, 7)
		for i := range items {
			items[i] = exercise("Q", "A")
		}
		s := New(display, rec, clock)
		_, err := s.Review(ctx, items)
		require.NoError(t, err)
		presented += s.Stats().Presented
	}

	rated := display.terminal[Success] + display.terminal[Failure] + display.terminal[Skip]
	assert.Equal(t, rated, len(rec.ratings))
	assert.Equal(t, presented, rated+display.terminal[Quit])
	assert.LessOrEqual(t, len(rec.ratings), presented)

	seen := map[string]bool{}
	for _, r := range rec.ratings {
		assert.False(t, seen[r.ItemID], "at most one rating per presented item")
		seen[r.ItemID] = true
	}
}
