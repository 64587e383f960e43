package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/conorfennell/orgdrill/internal/session"
)

type (
	cardMsg   session.Card
	askMsg    []session.Choice
	statusMsg string
)

// Model is the bubbletea model behind Display. It shows the current card
// and forwards at most one choice per ask on choices.
type Model struct {
	keys     KeyMap
	help     help.Model
	styles   Styles
	renderer *Renderer
	choices  chan<- session.Choice

	card   *session.Card
	asking []session.Choice
	status string
	width  int
}

// NewModel creates a model that sends chosen actions on choices. choices
// should be buffered.
func NewModel(keys KeyMap, styles Styles, renderer *Renderer, choices chan<- session.Choice) Model {
	return Model{
		keys:     keys,
		help:     help.New(),
		styles:   styles,
		renderer: renderer,
		choices:  choices,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	case cardMsg:
		card := session.Card(msg)
		m.card = &card
		m.status = ""
	case askMsg:
		m.asking = []session.Choice(msg)
	case statusMsg:
		m.status = string(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.choose(session.Quit)
			return m, tea.Quit
		}
		for _, c := range m.asking {
			if key.Matches(msg, m.keys.For(c)) {
				m.choose(c)
				break
			}
		}
	}
	return m, nil
}

func (m *Model) choose(c session.Choice) {
	if !slices.Contains(m.asking, c) {
		return
	}
	m.asking = nil
	select {
	case m.choices <- c:
	default:
	}
}

func (m Model) View() string {
	var sb strings.Builder
	if m.card != nil {
		sb.WriteString(m.styles.Subject.Render(m.card.Ref.Subject))
		sb.WriteString("  ")
		sb.WriteString(m.styles.ID.Render(m.card.Ref.ID))
		sb.WriteString("\n")
		label := "question"
		if m.card.Revealed {
			label = "answer"
		}
		sb.WriteString(m.styles.Label.Render(m.card.Ref.Kind.String() + " " + label))
		sb.WriteString("\n")

		body := m.renderer.Render(m.card.Text)
		card := m.styles.Card
		if m.width > 4 {
			card = card.Width(m.width - 2)
		}
		sb.WriteString(card.Render(body))
		sb.WriteString("\n")
	}
	if m.status != "" {
		sb.WriteString(m.styles.Status.Render(m.status))
		sb.WriteString("\n")
	}
	if len(m.asking) > 0 {
		sb.WriteString(m.help.ShortHelpView(m.keys.Bindings(m.asking)))
		sb.WriteString("\n")
	}
	return sb.String()
}
