package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
)

var (
	orgHeadingRe  = regexp.MustCompile(`^(\*+)[ \t]+`)
	orgBeginSrcRe = regexp.MustCompile(`(?i)^\s*#\+begin_(src|example)\s*(\S*)`)
	orgEndSrcRe   = regexp.MustCompile(`(?i)^\s*#\+end_(src|example)`)
	orgQuoteRe    = regexp.MustCompile(`(?i)^\s*#\+(begin|end)_quote`)
)

// OrgToMarkdown converts the org constructs items are made of into markdown:
// headings and source blocks. Other text passes through.
func OrgToMarkdown(org string) string {
	lines := strings.Split(org, "\n")
	inBlock := false
	for i, line := range lines {
		switch {
		case inBlock && orgEndSrcRe.MatchString(line):
			lines[i] = "```"
			inBlock = false
		case inBlock:
		case orgBeginSrcRe.MatchString(line):
			m := orgBeginSrcRe.FindStringSubmatch(line)
			lines[i] = "```" + m[2]
			inBlock = true
		case orgQuoteRe.MatchString(line):
			lines[i] = ""
		default:
			if m := orgHeadingRe.FindStringSubmatch(line); m != nil {
				depth := min(len(m[1]), 6)
				lines[i] = strings.Repeat("#", depth) + " " + line[len(m[0]):]
			}
		}
	}
	return strings.Join(lines, "\n")
}

// Renderer turns item text into terminal output. It falls back to the raw
// text when glamour is unavailable or fails.
type Renderer struct {
	term *glamour.TermRenderer
}

// NewRenderer creates a renderer wrapping at width columns.
func NewRenderer(width int) *Renderer {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return &Renderer{}
	}
	return &Renderer{term: r}
}

// Render renders org text.
func (r *Renderer) Render(org string) string {
	if r == nil || r.term == nil {
		return org
	}
	out, err := r.term.Render(OrgToMarkdown(org))
	if err != nil {
		return org
	}
	return strings.Trim(out, "\n")
}
