package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/conorfennell/orgdrill/internal/session"
)

// ErrClosed is returned by a Display whose program is no longer running.
var ErrClosed = errors.New("tui: display closed")

// Display runs a bubbletea program and lets a synchronous session talk to
// it: Show and Notify send messages in, Ask waits for the model's answer.
type Display struct {
	program *tea.Program
	choices chan session.Choice
	done    chan struct{}
	err     error
}

// NewDisplay creates a display; call Start before use and Close after.
func NewDisplay(keys KeyMap, styles Styles, renderer *Renderer, opts ...tea.ProgramOption) *Display {
	choices := make(chan session.Choice, 1)
	return &Display{
		program: tea.NewProgram(NewModel(keys, styles, renderer, choices), opts...),
		choices: choices,
		done:    make(chan struct{}),
	}
}

// Start runs the program in the background.
func (d *Display) Start() {
	go func() {
		defer close(d.done)
		_, d.err = d.program.Run()
	}()
}

// Show replaces the card on screen.
func (d *Display) Show(ctx context.Context, card session.Card) error {
	select {
	case <-d.done:
		return ErrClosed
	default:
	}
	d.program.Send(cardMsg(card))
	return nil
}

// Ask offers choices and blocks until one is picked. If the program ends
// while waiting, the learner is treated as having quit.
func (d *Display) Ask(ctx context.Context, choices []session.Choice) (session.Choice, error) {
	select {
	case <-d.done:
		return session.Quit, nil
	default:
	}
	d.program.Send(askMsg(choices))
	select {
	case c := <-d.choices:
		return c, nil
	case <-d.done:
		return session.Quit, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Notify shows a status line under the card.
func (d *Display) Notify(msg string) {
	select {
	case <-d.done:
	default:
		d.program.Send(statusMsg(msg))
	}
}

// Close stops the program and waits for it to exit.
func (d *Display) Close() error {
	d.program.Quit()
	<-d.done
	if errors.Is(d.err, tea.ErrProgramKilled) {
		return nil
	}
	return d.err
}
