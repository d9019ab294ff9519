package pipeline

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/text"

	"mostviewed/internal/models"
)

// Reporter receives progress as a run moves through its stages.
type Reporter interface {
	StageStarted(stage Stage, message string)
	StageFinished(stage Stage, message string)
	Notice(notice models.Notice)
}

type nopReporter struct{}

func (nopReporter) StageStarted(Stage, string)  {}
func (nopReporter) StageFinished(Stage, string) {}
func (nopReporter) Notice(models.Notice)        {}

// statusLine is a transient wait or done indicator.
type statusLine struct {
	stage Stage
	text  string
}

// ConsoleReporter prints stage indicators and notices to a terminal.
//
// With ansi set, indicators stay in a status area at the bottom of the output
// and Clear erases them. Notices and anything written through Write are
// printed above the status area and are never erased, so a logger sharing the
// same terminal should write through the reporter.
type ConsoleReporter struct {
	w      io.Writer
	status []statusLine
	ansi   bool
	mu     sync.Mutex
}

// NewConsoleReporter writes to w.
func NewConsoleReporter(w io.Writer, ansi bool) *ConsoleReporter {
	return &ConsoleReporter{w: w, ansi: ansi}
}

func (r *ConsoleReporter) paint(colors text.Colors, s string) string {
	if !r.ansi {
		return s
	}

	return colors.Sprint(s)
}

// Write prints p above the status area.
func (r *ConsoleReporter) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ansi {
		return r.w.Write(p)
	}

	r.eraseStatus()
	n, err := r.w.Write(p)
	r.drawStatus()

	return n, err
}

// StageStarted shows the wait message.
func (r *ConsoleReporter) StageStarted(stage Stage, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := r.paint(text.Colors{text.FgYellow}, "⏳ "+message)

	if !r.ansi {
		fmt.Fprintln(r.w, line)
		return
	}

	r.eraseStatus()
	r.status = append(r.status, statusLine{stage: stage, text: line})
	r.drawStatus()
}

// StageFinished replaces the wait message of stage with the done message.
// An empty message only removes the wait message.
func (r *ConsoleReporter) StageFinished(stage Stage, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := r.paint(text.Colors{text.FgGreen}, "✅ "+message)

	if !r.ansi {
		if message != "" {
			fmt.Fprintln(r.w, line)
		}

		return
	}

	r.eraseStatus()

	kept := r.status[:0]
	for _, s := range r.status {
		if s.stage != stage {
			kept = append(kept, s)
		}
	}

	r.status = kept

	if message != "" {
		r.status = append(r.status, statusLine{stage: stage, text: line})
	}

	r.drawStatus()
}

// Notice prints a warning or an error above the status area.
func (r *ConsoleReporter) Notice(n models.Notice) {
	var line string

	switch n.Level {
	case models.NoticeError:
		line = r.paint(text.Colors{text.Bold, text.FgRed}, "❌ "+n.Message)
	case models.NoticeWarning:
		line = r.paint(text.Colors{text.FgHiYellow}, "⚠️  "+n.Message)
	default:
		line = "ℹ️  " + n.Message
	}

	if n.Detail != "" {
		line += "\n" + indent(n.Detail)
	}

	_, _ = r.Write([]byte(line + "\n"))
}

// Clear erases the status area. It does nothing without ansi.
func (r *ConsoleReporter) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ansi {
		return
	}

	r.eraseStatus()
	r.status = nil
}

func (r *ConsoleReporter) eraseStatus() {
	if len(r.status) > 0 {
		fmt.Fprintf(r.w, "\033[%dA\033[J", len(r.status))
	}
}

func (r *ConsoleReporter) drawStatus() {
	for _, s := range r.status {
		fmt.Fprintln(r.w, s.text)
	}
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}

	return strings.Join(lines, "\n")
}
