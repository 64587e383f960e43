// Package extract turns outline trees into learning items.
package extract

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/conorfennell/orgdrill/internal/domain"
	"github.com/conorfennell/orgdrill/internal/outline"
)

// SubjectSeparator joins the titles that make up an item's subject.
const SubjectSeparator = " / "

// Types names the TYPE property values that mark items.
type Types struct {
	Exercise   string
	Definition string
}

// Items walks root depth-first and returns its items, descendants before
// ancestors. Any node whose TYPE matches but whose structure is wrong stops
// the walk with a *domain.MalformedItemError.
func Items(root *outline.Node, types Types) ([]domain.Item, error) {
	var items []domain.Item
	if err := walk(root, nil, types, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func walk(n *outline.Node, lineage []string, types Types, items *[]domain.Item) error {
	if n.Title != "" {
		lineage = append(slices.Clip(lineage), n.Title)
	}
	for _, c := range n.Children {
		if err := walk(c, lineage, types, items); err != nil {
			return err
		}
	}

	item, err := classify(n, strings.Join(lineage, SubjectSeparator), types)
	if err != nil {
		return err
	}
	if item != nil {
		*items = append(*items, item)
	}
	return nil
}

func classify(n *outline.Node, subject string, types Types) (domain.Item, error) {
	typ, _ := n.Property("TYPE")
	switch {
	case matchesType(typ, types.Exercise):
		return exercise(n, subject)
	case matchesType(typ, types.Definition):
		return definition(n, subject)
	default:
		return nil, nil
	}
}

func exercise(n *outline.Node, subject string) (domain.Item, error) {
	id, err := itemID(n, domain.KindExercise, subject)
	if err != nil {
		return nil, err
	}
	malformed := func(rule string) error {
		return &domain.MalformedItemError{Kind: domain.KindExercise, Subject: subject, ID: id, Rule: rule}
	}

	headings := n.Headings()
	switch len(headings) {
	case 0:
		return nil, malformed(domain.RuleNoSubheadings)
	case 1:
		return nil, malformed(domain.RuleNoAnswer)
	}

	e := domain.Exercise{
		ID:       id,
		Subject:  subject,
		Question: headings[0].Render(),
		Answer:   headings[1].Render(),
	}
	if strings.TrimSpace(strings.Trim(e.Question, "*")) == "" {
		return nil, malformed(domain.RuleEmptyQuestion)
	}
	if strings.TrimSpace(strings.Trim(e.Answer, "*")) == "" {
		return nil, malformed(domain.RuleEmptyAnswer)
	}
	return e, nil
}

func definition(n *outline.Node, subject string) (domain.Item, error) {
	id, err := itemID(n, domain.KindDefinition, subject)
	if err != nil {
		return nil, err
	}
	d := domain.Definition{ID: id, Subject: subject, Content: n.Render()}
	if strings.TrimSpace(strings.Trim(d.Content, "*")) == "" {
		return nil, &domain.MalformedItemError{Kind: domain.KindDefinition, Subject: subject, ID: id, Rule: domain.RuleEmptyDefinition}
	}
	return d, nil
}

// itemID returns the node's ID property in canonical lower-case form.
func itemID(n *outline.Node, kind domain.Kind, subject string) (string, error) {
	raw, ok := n.Property("ID")
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return "", &domain.MalformedItemError{Kind: kind, Subject: subject, Rule: domain.RuleMissingID}
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return "", &domain.MalformedItemError{Kind: kind, Subject: subject, ID: raw, Rule: domain.RuleInvalidID}
	}
	return u.String(), nil
}

// matchesType accepts either the bare type id or an org link to it,
// e.g. [[id:TYPE-ID][Exercise]].
func matchesType(value, typeID string) bool {
	value = strings.TrimSpace(value)
	if typeID == "" || value == "" {
		return false
	}
	if value == typeID {
		return true
	}
	rest, ok := strings.CutPrefix(value, "[[")
	if !ok {
		return false
	}
	end := strings.Index(rest, "]")
	if end < 0 {
		return false
	}
	target := rest[:end]
	return target == typeID || target == "id:"+typeID
}
