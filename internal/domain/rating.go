package domain

import (
	"encoding"
	"fmt"
	"time"
)

// Outcome is the result of presenting an item once.
type Outcome string

const (
	Success Outcome = "success"
	Failure Outcome = "failure"
	Skip    Outcome = "skip"
)

var (
	_ fmt.Stringer             = Outcome("")
	_ encoding.TextMarshaler   = Outcome("")
	_ encoding.TextUnmarshaler = (*Outcome)(nil)
)

func (o Outcome) String() string { return string(o) }

// IsValid reports whether o is one of Success, Failure or Skip.
func (o Outcome) IsValid() bool {
	switch o {
	case Success, Failure, Skip:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	if !o.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRating, string(o))
	}
	return []byte(o), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	v := Outcome(text)
	if !v.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRating, text)
	}
	*o = v
	return nil
}

// Rating records a single outcome for an item.
type Rating struct {
	Date    time.Time
	ItemID  string  `validate:"required,uuid"`
	Outcome Outcome `validate:"required,oneof=success failure skip"`
}
