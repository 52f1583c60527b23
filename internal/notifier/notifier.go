// Package notifier displays success and error messages to users.
//
// A Sink is the two-method contract UI code depends on. Notifier adapts a Publisher
// (the websocket hub, the Redis relay) to that contract for a single channel, and
// Reporter joins a resolver to a Sink so raw backend errors reach users localized.
package notifier

import (
	"fmt"

	"codeberg.org/eventnotify/server/internal/logger"
	"codeberg.org/eventnotify/server/internal/resolver"
)

// displays transient success and error messages
type Sink interface {
	ShowSuccess(message string)
	ShowError(message string)
}

// delivers a notification to every subscriber of channel
type Publisher interface {
	Publish(channel string, n Notification) error
}

// adapts a plain function to Publisher
type PublisherFunc func(channel string, n Notification) error

func (f PublisherFunc) Publish(channel string, n Notification) error {
	return f(channel, n)
}

// a Sink that can carry the resolver's refresh flag and report delivery failures.
// Reporter prefers it over ShowError when the sink implements it.
type ResultSink interface {
	Sink
	ShowResult(result resolver.Result, message string) error
}

// a Sink that publishes to one channel
type Notifier struct {
	publisher Publisher
	channel   string
}

func NewNotifier(publisher Publisher, channel string) *Notifier {
	if channel == "" {
		channel = BroadcastChannel
	}

	return &Notifier{publisher: publisher, channel: channel}
}

func (n *Notifier) ShowSuccess(message string) {
	n.publishOrLog(New(KindSuccess, message))
}

func (n *Notifier) ShowError(message string) {
	n.publishOrLog(New(KindDanger, message))
}

// publishes message as an error notification flagged with the result's refresh hint
func (n *Notifier) ShowResult(result resolver.Result, message string) error {
	notification := New(KindDanger, message)
	notification.SuggestRefresh = result.SuggestRefresh

	return n.publish(notification)
}

func (n *Notifier) publish(notification Notification) error {
	if err := n.publisher.Publish(n.channel, notification); err != nil {
		return fmt.Errorf("failed to publish notification to %s: %w", n.channel, err)
	}

	return nil
}

// Sink methods have no error return, so failures end up in the log
func (n *Notifier) publishOrLog(notification Notification) {
	if err := n.publish(notification); err != nil {
		logger.ErrorErr(err, "failed to publish notification",
			"channel", n.channel,
			"notification_id", notification.ID,
			"type", notification.Type,
		)
	}
}

// sends resolved backend errors to a sink
type Reporter struct {
	resolver *resolver.Resolver
	sink     Sink
}

func NewReporter(r *resolver.Resolver, sink Sink) *Reporter {
	return &Reporter{resolver: r, sink: sink}
}

// resolves raw and shows it as an error, appending the refresh hint when suggested.
// the result is returned even when the sink failed to deliver it.
func (r *Reporter) ReportError(raw string) (resolver.Result, error) {
	result := r.resolver.Resolve(raw)
	return result, r.show(result)
}

// like ReportError for a Go error; nil shows the default message
func (r *Reporter) ReportErr(err error) (resolver.Result, error) {
	result := r.resolver.ResolveError(err)
	return result, r.show(result)
}

func (r *Reporter) show(result resolver.Result) error {
	message := result.Display(r.resolver.RefreshSuggestion())

	if rs, ok := r.sink.(ResultSink); ok {
		return rs.ShowResult(result, message)
	}

	r.sink.ShowError(message)
	return nil
}
