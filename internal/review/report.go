package review

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/conorfennell/orgdrill/internal/domain"
	"github.com/conorfennell/orgdrill/internal/session"
)

// Report is the account of a run: one line per notable step plus totals.
type Report struct {
	Lines []string

	Files        int
	FilesSkipped int
	Items        int
	Duplicates   int
	Due          int
	Presented    int
	Success      int
	Failure      int
	Skipped      int
	Quit         bool
}

// Logf appends a line to the report and logs it.
func (r *Report) Logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	r.Lines = append(r.Lines, line)
	slog.Debug(line)
}

func (r *Report) record(results []session.Result) {
	for _, res := range results {
		r.Presented++
		outcome := string(res.Outcome)
		if res.Quit {
			outcome = "quit"
		}
		r.Logf("%s %q: %s", res.Ref.ID, res.Ref.Subject, outcome)
		switch {
		case res.Quit:
			r.Quit = true
		case res.Outcome == domain.Success:
			r.Success++
		case res.Outcome == domain.Failure:
			r.Failure++
		case res.Outcome == domain.Skip:
			r.Skipped++
		}
	}
}

// Summary is the one-line totals of the run.
func (r *Report) Summary() string {
	s := fmt.Sprintf("%d files, %d items, %d due, %d presented (%d recalled, %d forgotten, %d skipped)",
		r.Files, r.Items, r.Due, r.Presented, r.Success, r.Failure, r.Skipped)
	if r.FilesSkipped > 0 {
		s += fmt.Sprintf(", %d files skipped", r.FilesSkipped)
	}
	if r.Duplicates > 0 {
		s += fmt.Sprintf(", %d duplicate ids", r.Duplicates)
	}
	if r.Quit {
		s += ", quit early"
	}
	return s
}

func (r *Report) String() string {
	var sb strings.Builder
	for _, line := range r.Lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(r.Summary())
	return sb.String()
}
