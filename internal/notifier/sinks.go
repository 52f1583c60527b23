package notifier

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"codeberg.org/eventnotify/server/internal/resolver"
)

var (
	colorSuccess = lipgloss.Color("#23D160")
	colorDanger  = lipgloss.Color("#FF3860")
)

// writes notifications as styled lines, one per call
type TerminalSink struct {
	mu      sync.Mutex
	w       io.Writer
	success lipgloss.Style
	danger  lipgloss.Style
}

// colors follow the writer's capabilities; plain disables styling entirely
func NewTerminalSink(w io.Writer, plain bool) *TerminalSink {
	renderer := lipgloss.NewRenderer(w)

	sink := &TerminalSink{
		w:       w,
		success: renderer.NewStyle(),
		danger:  renderer.NewStyle(),
	}

	if !plain {
		sink.success = sink.success.Foreground(colorSuccess)
		sink.danger = sink.danger.Foreground(colorDanger)
	}

	return sink
}

func (s *TerminalSink) ShowSuccess(message string) {
	s.write(s.success, "✓", message)
}

func (s *TerminalSink) ShowError(message string) {
	s.write(s.danger, "✗", message)
}

func (s *TerminalSink) write(style lipgloss.Style, icon, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintln(s.w, style.Render(icon+" "+message)) //nolint:errcheck // best-effort terminal output
}

// writes notifications to a structured logger
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(l *slog.Logger) *LogSink {
	return &LogSink{logger: l}
}

func (s *LogSink) ShowSuccess(message string) {
	s.logger.Info("notification", "type", KindSuccess, "message", message)
}

func (s *LogSink) ShowError(message string) {
	s.logger.Warn("notification", "type", KindDanger, "message", message)
}

// fans every call out to several sinks, in order
type Multi []Sink

func (m Multi) ShowSuccess(message string) {
	for _, sink := range m {
		sink.ShowSuccess(message)
	}
}

func (m Multi) ShowError(message string) {
	for _, sink := range m {
		sink.ShowError(message)
	}
}

// forwards the result to every sink, falling back to ShowError for plain sinks.
// every sink is called even after a failure.
func (m Multi) ShowResult(result resolver.Result, message string) error {
	var errs []error

	for _, sink := range m {
		if rs, ok := sink.(ResultSink); ok {
			errs = append(errs, rs.ShowResult(result, message))
			continue
		}

		sink.ShowError(message)
	}

	return errors.Join(errs...)
}

// one captured sink call
type Entry struct {
	Kind    Kind
	Message string
}

// captures sink calls in memory
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) ShowSuccess(message string) {
	r.record(KindSuccess, message)
}

func (r *Recorder) ShowError(message string) {
	r.record(KindDanger, message)
}

func (r *Recorder) record(kind Kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Kind: kind, Message: message})
}

// returns a copy of the captured calls
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
