package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/conorfennell/orgdrill/internal/domain"
	"github.com/conorfennell/orgdrill/internal/outline"
	"github.com/conorfennell/orgdrill/internal/parser"
)

const (
	exID  = "5f0c9a52-3c1b-4b8e-9d2a-7e6f5a4b3c2d"
	defID = "c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f"
)

var types = Types{Exercise: "ex", Definition: "def"}

func heading(level int, title string, body []string, children ...*outline.Node) *outline.Node {
	return &outline.Node{Kind: outline.Heading, Level: level, Title: title, Headline: title, Body: body, Children: children}
}

func withProps(n *outline.Node, kv ...string) *outline.Node {
	n.Properties = map[string]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Properties[kv[i]] = kv[i+1]
	}
	return n
}

func TestItemsExerciseRoundTrip(t *testing.T) {
	ex := withProps(heading(2, "Exercise", nil,
		heading(3, "Q", []string{"What is 2+2?"}),
		heading(3, "A", []string{"4"}),
	), "TYPE", "ex", "ID", exID)
	root := &outline.Node{Kind: outline.Document, Title: "Title", Children: []*outline.Node{
		heading(1, "Section", nil, ex),
	}}

	items, err := Items(root, types)
	if err != nil {
		t.Fatalf("Items() returned an unexpected error: %v", err)
	}

	want := []domain.Item{domain.Exercise{
		ID:       exID,
		Subject:  "Title / Section / Exercise",
		Question: "* Q\nWhat is 2+2?",
		Answer:   "* A\n4",
	}}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("Items() mismatch (-want +got):\n%s", diff)
	}
}

func TestItemsStructuralStrictness(t *testing.T) {
	testCases := []struct {
		name string
		node *outline.Node
		rule string
	}{
		{
			name: "Exercise without subheadings",
			node: withProps(heading(1, "Ex", []string{"body"}), "TYPE", "ex", "ID", exID),
			rule: domain.RuleNoSubheadings,
		},
		{
			name: "Exercise with one subheading",
			node: withProps(heading(1, "Ex", nil, heading(2, "Q", nil)), "TYPE", "ex", "ID", exID),
			rule: domain.RuleNoAnswer,
		},
		{
			name: "Exercise without ID",
			node: withProps(heading(1, "Ex", nil, heading(2, "Q", nil), heading(2, "A", nil)), "TYPE", "ex"),
			rule: domain.RuleMissingID,
		},
		{
			name: "Exercise with blank ID",
			node: withProps(heading(1, "Ex", nil, heading(2, "Q", nil), heading(2, "A", nil)), "TYPE", "ex", "ID", "  "),
			rule: domain.RuleMissingID,
		},
		{
			name: "Exercise with non-UUID ID",
			node: withProps(heading(1, "Ex", nil, heading(2, "Q", nil), heading(2, "A", nil)), "TYPE", "ex", "ID", "abc"),
			rule: domain.RuleInvalidID,
		},
		{
			name: "Definition without ID",
			node: withProps(heading(1, "Def", []string{"content"}), "TYPE", "def"),
			rule: domain.RuleMissingID,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := &outline.Node{Kind: outline.Document, Children: []*outline.Node{tc.node}}
			items, err := Items(root, types)
			if items != nil {
				t.Errorf("Expected no items on error, but got %d", len(items))
			}
			if !errors.Is(err, domain.ErrMalformedItem) {
				t.Fatalf("Expected ErrMalformedItem, but got %v", err)
			}
			var malformed *domain.MalformedItemError
			if !errors.As(err, &malformed) {
				t.Fatalf("Expected *MalformedItemError, but got %T", err)
			}
			if malformed.Rule != tc.rule {
				t.Errorf("Expected rule %q, but got %q", tc.rule, malformed.Rule)
			}
		})
	}
}

func TestItemsLeavesFirstAndNested(t *testing.T) {
	input := `#+title: Doc
* Outer
:PROPERTIES:
:TYPE: ex
:ID: 5F0C9A52-3C1B-4B8E-9D2A-7E6F5A4B3C2D
:END:
** Question
What is a definition?
*** Term
:PROPERTIES:
:TYPE: [[id:def][Definition]]
:ID: c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f
:END:
A nested definition.
** Answer
Something.
** Extra
ignored for extraction
* Plain
:PROPERTIES:
:TYPE: note
:END:
`
	root, err := parser.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() returned an unexpected error: %v", err)
	}
	items, err := Items(root, types)
	if err != nil {
		t.Fatalf("Items() returned an unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, but got %d", len(items))
	}

	def, ok := items[0].(domain.Definition)
	if !ok {
		t.Fatalf("Expected the nested definition first, but got %T", items[0])
	}
	if def.Subject != "Doc / Outer / Question / Term" {
		t.Errorf("Expected definition subject 'Doc / Outer / Question / Term', but got %q", def.Subject)
	}
	if def.Content != "* Term\nA nested definition." {
		t.Errorf("Unexpected definition content %q", def.Content)
	}

	ex, ok := items[1].(domain.Exercise)
	if !ok {
		t.Fatalf("Expected the exercise second, but got %T", items[1])
	}
	if ex.ID != exID {
		t.Errorf("Expected canonical lower-case ID %q, but got %q", exID, ex.ID)
	}
	wantQ := "* Question\nWhat is a definition?\n** Term\nA nested definition."
	if ex.Question != wantQ {
		t.Errorf("Expected question %q, but got %q", wantQ, ex.Question)
	}
	if strings.Contains(ex.Answer, "Extra") {
		t.Errorf("Expected the third subheading to stay out of the answer, got %q", ex.Answer)
	}
}

func TestMatchesType(t *testing.T) {
	testCases := []struct {
		value  string
		typeID string
		want   bool
	}{
		{"ex", "ex", true},
		{" ex ", "ex", true},
		{"[[id:ex][Exercise]]", "ex", true},
		{"[[ex]]", "ex", true},
		{"[[id:other][Exercise]]", "ex", false},
		{"exercise", "ex", false},
		{"", "", false},
		{"ex", "", false},
		{"[[id:ex", "ex", false},
	}
	for _, tc := range testCases {
		if got := matchesType(tc.value, tc.typeID); got != tc.want {
			t.Errorf("matchesType(%q, %q) = %v, want %v", tc.value, tc.typeID, got, tc.want)
		}
	}
}
