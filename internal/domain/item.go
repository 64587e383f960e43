package domain

// DefinitionQuestion is the fixed prompt shown for a Definition.
const DefinitionQuestion = "Recall the definition."

// Kind distinguishes the two item variants.
type Kind int

const (
	KindExercise Kind = iota + 1
	KindDefinition
)

func (k Kind) String() string {
	switch k {
	case KindExercise:
		return "exercise"
	case KindDefinition:
		return "definition"
	default:
		return "unknown"
	}
}

// Item is a learning item extracted from an outline document.
// Front is what the learner sees first, Back is revealed on request.
type Item interface {
	Ref() Ref
	Front() string
	Back() string
}

// Ref identifies an item and its position in the source document.
type Ref struct {
	ID      string
	Subject string
	Kind    Kind
}

// Exercise is a question/answer pair.
type Exercise struct {
	ID       string
	Subject  string
	Question string
	Answer   string
}

func (e Exercise) Ref() Ref {
	return Ref{ID: e.ID, Subject: e.Subject, Kind: KindExercise}
}

func (e Exercise) Front() string { return e.Question }
func (e Exercise) Back() string  { return e.Answer }

// Definition is a single block of content to be recalled as a whole.
type Definition struct {
	ID      string
	Subject string
	Content string
}

func (d Definition) Ref() Ref {
	return Ref{ID: d.ID, Subject: d.Subject, Kind: KindDefinition}
}

func (d Definition) Front() string { return DefinitionQuestion }
func (d Definition) Back() string  { return d.Content }

// AsExercise returns the exercise a definition reduces to.
func (d Definition) AsExercise() Exercise {
	return Exercise{
		ID:       d.ID,
		Subject:  d.Subject,
		Question: DefinitionQuestion,
		Answer:   d.Content,
	}
}
