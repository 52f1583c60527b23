package notifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/eventnotify/server/internal/i18n"
	"codeberg.org/eventnotify/server/internal/logger"
	"codeberg.org/eventnotify/server/internal/resolver"
)

type published struct {
	channel string
	n       Notification
}

type capturePublisher struct {
	mu    sync.Mutex
	items []published
	err   error
}

func (p *capturePublisher) Publish(channel string, n Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.items = append(p.items, published{channel: channel, n: n})
	return p.err
}

func TestNew_AppliesDefaults(t *testing.T) {
	n := New(KindSuccess, "Saved")

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, KindSuccess, n.Type)
	assert.Equal(t, "Saved", n.Message)
	assert.Equal(t, 5000, n.Duration)
	assert.Equal(t, "is-bottom-right", n.Position)
	assert.True(t, n.HasIcon)
	assert.False(t, n.CreatedAt.IsZero())
	assert.NotEqual(t, n.ID, New(KindSuccess, "Saved").ID)
}

func TestNotification_JSON(t *testing.T) {
	n := New(KindDanger, "Page not found")

	data, err := json.Marshal(n)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Equal(t, "is-danger", fields["type"])
	assert.Equal(t, float64(5000), fields["duration"])
	assert.NotContains(t, fields, "suggest_refresh")
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"success":    KindSuccess,
		"is-success": KindSuccess,
		"error":      KindDanger,
		"danger":     KindDanger,
		"is-danger":  KindDanger,
	}

	for in, want := range tests {
		got, ok := ParseKind(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseKind("warning")
	assert.False(t, ok)
}

func TestNotifier_PublishesToChannel(t *testing.T) {
	pub := &capturePublisher{}
	n := NewNotifier(pub, "user-1")

	n.ShowSuccess("Saved")
	n.ShowError("Failed")

	require.Len(t, pub.items, 2)
	assert.Equal(t, "user-1", pub.items[0].channel)
	assert.Equal(t, KindSuccess, pub.items[0].n.Type)
	assert.Equal(t, "Saved", pub.items[0].n.Message)
	assert.Equal(t, KindDanger, pub.items[1].n.Type)
}

func TestNotifier_DefaultsToBroadcast(t *testing.T) {
	pub := &capturePublisher{}

	NewNotifier(pub, "").ShowSuccess("hello")

	require.Len(t, pub.items, 1)
	assert.Equal(t, BroadcastChannel, pub.items[0].channel)
}

func TestNotifier_LogsPublishFailures(t *testing.T) {
	var buf bytes.Buffer
	defer logger.SetDefault(logger.New("development", "", &buf))()

	pub := &capturePublisher{err: errors.New("hub closed")}

	assert.NotPanics(t, func() { NewNotifier(pub, "c").ShowError("x") })
	assert.Contains(t, buf.String(), "failed to publish notification")
	assert.Contains(t, buf.String(), "hub closed")
}

func TestPublisherFunc(t *testing.T) {
	var got string

	p := PublisherFunc(func(channel string, n Notification) error {
		got = channel + ":" + n.Message
		return nil
	})

	require.NoError(t, p.Publish("c", New(KindSuccess, "m")))
	assert.Equal(t, "c:m", got)
}

func TestReporter_AppendsRefreshSuggestion(t *testing.T) {
	rec := &Recorder{}
	rep := NewReporter(resolver.NewDefault(i18n.Identity), rec)

	result, err := rep.ReportError("Event not found")

	require.NoError(t, err)
	assert.Equal(t, resolver.Result{Message: "Event not found.", SuggestRefresh: true}, result)
	assert.Equal(t, []Entry{
		{Kind: KindDanger, Message: "Event not found. Please refresh the page and retry."},
	}, rec.Entries())
}

func TestReporter_NoSuggestionWhenSuppressed(t *testing.T) {
	rec := &Recorder{}
	rep := NewReporter(resolver.NewDefault(i18n.Identity), rec)

	_, err := rep.ReportError("Event with UUID abc-123 not found")

	require.NoError(t, err)
	assert.Equal(t, []Entry{{Kind: KindDanger, Message: "Page not found"}}, rec.Entries())
}

func TestReporter_NilError(t *testing.T) {
	rec := &Recorder{}
	rep := NewReporter(resolver.NewDefault(i18n.Identity), rec)

	result, err := rep.ReportErr(nil)

	require.NoError(t, err)
	assert.True(t, result.SuggestRefresh)
	assert.Equal(t, "An error has occurred. Please refresh the page and retry.", rec.Entries()[0].Message)
}

func TestReporter_NotifierKeepsRefreshFlag(t *testing.T) {
	pub := &capturePublisher{}
	rep := NewReporter(resolver.NewDefault(i18n.Identity), NewNotifier(pub, "u"))

	_, err := rep.ReportErr(errors.New("Participant already has role rejected"))
	require.NoError(t, err)

	require.Len(t, pub.items, 1)
	assert.True(t, pub.items[0].n.SuggestRefresh)
	assert.Equal(t, KindDanger, pub.items[0].n.Type)
	assert.Equal(t, "Participant already was rejected. Please refresh the page and retry.", pub.items[0].n.Message)
}

func TestReporter_ReturnsPublishFailure(t *testing.T) {
	pub := &capturePublisher{err: errors.New("hub closed")}
	rep := NewReporter(resolver.NewDefault(i18n.Identity), NewNotifier(pub, "u"))

	result, err := rep.ReportError("Event not found")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "hub closed")
	assert.Equal(t, "Event not found.", result.Message)
}

func TestReporter_MultiKeepsRefreshFlag(t *testing.T) {
	pub := &capturePublisher{}
	rec := &Recorder{}
	rep := NewReporter(resolver.NewDefault(i18n.Identity), Multi{NewNotifier(pub, "u"), rec})

	_, err := rep.ReportError("Event with UUID abc-123 not found")
	require.NoError(t, err)

	require.Len(t, pub.items, 1)
	assert.False(t, pub.items[0].n.SuggestRefresh)

	_, err = rep.ReportError("Event not found")
	require.NoError(t, err)

	require.Len(t, pub.items, 2)
	assert.True(t, pub.items[1].n.SuggestRefresh)
	assert.Equal(t, []Entry{
		{Kind: KindDanger, Message: "Page not found"},
		{Kind: KindDanger, Message: "Event not found. Please refresh the page and retry."},
	}, rec.Entries())
}

func TestMulti_ShowResultCallsEverySink(t *testing.T) {
	failing := NewNotifier(&capturePublisher{err: errors.New("redis down")}, "a")
	ok := &capturePublisher{}
	rec := &Recorder{}

	err := Multi{failing, NewNotifier(ok, "b"), rec}.ShowResult(resolver.Result{Message: "m"}, "m")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	assert.Len(t, ok.items, 1)
	assert.Len(t, rec.Entries(), 1)
}

func TestTerminalSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTerminalSink(&buf, true)

	sink.ShowSuccess("Saved")
	sink.ShowError("Page not found")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "✓ Saved")
	assert.Contains(t, lines[1], "✗ Page not found")
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(logger.New("development", "", &buf))

	sink.ShowSuccess("Saved")
	sink.ShowError("Oops")

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "message=Saved")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "type=is-danger")
}

func TestMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, b}

	m.ShowSuccess("one")
	m.ShowError("two")

	want := []Entry{{KindSuccess, "one"}, {KindDanger, "two"}}
	assert.Equal(t, want, a.Entries())
	assert.Equal(t, want, b.Entries())
}

func TestRecorder_EntriesIsCopy(t *testing.T) {
	rec := &Recorder{}
	rec.ShowSuccess("a")

	entries := rec.Entries()
	entries[0].Message = "changed"

	assert.Equal(t, "a", rec.Entries()[0].Message)
}
