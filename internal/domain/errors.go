package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Check with errors.Is.
var (
	ErrMalformedItem      = errors.New("orgdrill: malformed item")
	ErrInvalidRating      = errors.New("orgdrill: invalid rating value")
	ErrInvalidID          = errors.New("orgdrill: invalid item id")
	ErrStoreUnavailable   = errors.New("orgdrill: rating store unavailable")
	ErrLocatorUnavailable = errors.New("orgdrill: file locator unavailable")
)

// Rules reported by MalformedItemError.
const (
	RuleMissingID       = "missing ID"
	RuleInvalidID       = "invalid ID"
	RuleNoSubheadings   = "no question/answer subheadings"
	RuleNoAnswer        = "no answer subheading"
	RuleEmptyQuestion   = "empty question"
	RuleEmptyAnswer     = "empty answer"
	RuleEmptyDefinition = "empty content"
)

// MalformedItemError describes a node that claims to be an item but breaks
// its structural rules.
type MalformedItemError struct {
	Kind    Kind
	Subject string
	ID      string
	Rule    string
}

func (e *MalformedItemError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("malformed %s %q (id %s): %s", e.Kind, e.Subject, e.ID, e.Rule)
	}
	return fmt.Sprintf("malformed %s %q: %s", e.Kind, e.Subject, e.Rule)
}

func (e *MalformedItemError) Unwrap() error { return ErrMalformedItem }
