package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/conorfennell/orgdrill/internal/session"
)

// LineDisplay is a line-oriented display for pipes and dumb terminals. A
// choice is picked by typing one of its keys or its name and pressing enter.
type LineDisplay struct {
	in     *bufio.Reader
	out    io.Writer
	keys   KeyMap
	styles Styles
}

// NewLineDisplay creates a display reading from in and writing to out.
// Styles are rendered without colour.
func NewLineDisplay(in io.Reader, out io.Writer, keys KeyMap) *LineDisplay {
	r := lipgloss.NewRenderer(out)
	return &LineDisplay{
		in:   bufio.NewReader(in),
		out:  out,
		keys: keys,
		styles: Styles{
			Subject: r.NewStyle().Bold(true),
			ID:      r.NewStyle(),
			Label:   r.NewStyle(),
			Card:    r.NewStyle(),
			Status:  r.NewStyle(),
		},
	}
}

func (d *LineDisplay) Show(ctx context.Context, card session.Card) error {
	label := "question"
	if card.Revealed {
		label = "answer"
	}
	_, err := fmt.Fprintf(d.out, "\n%s (%s)\n[%s %s]\n%s\n",
		d.styles.Subject.Render(card.Ref.Subject),
		d.styles.ID.Render(card.Ref.ID),
		card.Ref.Kind, label,
		card.Text,
	)
	return err
}

// Ask prompts until a line names one of choices. End of input counts as
// quitting.
func (d *LineDisplay) Ask(ctx context.Context, choices []session.Choice) (session.Choice, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if _, err := fmt.Fprintf(d.out, "%s> ", d.prompt(choices)); err != nil {
			return "", err
		}
		line, err := d.in.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read choice: %w", err)
		}
		if err == io.EOF && line == "" {
			fmt.Fprintln(d.out)
			return session.Quit, nil
		}
		line = strings.TrimRight(line, "\r\n")
		if c, ok := d.match(line, choices); ok {
			return c, nil
		}
		if err == io.EOF {
			fmt.Fprintln(d.out)
			return session.Quit, nil
		}
	}
}

// Notify prints a status line.
func (d *LineDisplay) Notify(msg string) {
	fmt.Fprintln(d.out, d.styles.Status.Render(msg))
}

func (d *LineDisplay) prompt(choices []session.Choice) string {
	parts := make([]string, 0, len(choices))
	for _, c := range choices {
		h := d.keys.For(c).Help()
		parts = append(parts, fmt.Sprintf("%s=%s", h.Key, h.Desc))
	}
	return strings.Join(parts, " ")
}

func (d *LineDisplay) match(line string, choices []session.Choice) (session.Choice, bool) {
	trimmed := strings.TrimSpace(line)
	for _, c := range choices {
		if strings.EqualFold(trimmed, string(c)) {
			return c, true
		}
		for _, k := range d.keys.For(c).Keys() {
			if line == k || (trimmed != "" && (trimmed == k || trimmed == keyName(k))) {
				return c, true
			}
		}
	}
	return "", false
}
