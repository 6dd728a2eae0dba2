package growl

import (
	"context"
	"log/slog"
	"time"
)

// EventName is the client event dispatched by EmitSink.
const EventName = "pagekit:growl"

// ComingSoonText is the message shown by ComingSoon.
const ComingSoonText = "Coming soon!"

// Severity is the visual category of a banner.
type Severity string

const (
	SeverityNone    Severity = ""
	SeverityInfo    Severity = "info"
	SeverityDanger  Severity = "danger"
	SeveritySuccess Severity = "success"
)

// String returns the severity tag, or "none" for SeverityNone.
func (s Severity) String() string {
	if s == SeverityNone {
		return "none"
	}
	return string(s)
}

// Offset anchors a banner a fixed amount from one edge of the page.
type Offset struct {
	From   string
	Amount int
}

// Options are the display parameters for a banner.
type Options struct {
	Element        string
	Offset         Offset
	Align          string
	Width          int
	Delay          time.Duration
	AllowDismiss   bool
	StackupSpacing int
}

// DefaultOptions returns the options every banner is rendered with.
func DefaultOptions() Options {
	return Options{
		Element:        "body",
		Offset:         Offset{From: "top", Amount: 20},
		Align:          "right",
		Width:          500,
		Delay:          5000 * time.Millisecond,
		AllowDismiss:   false,
		StackupSpacing: 10,
	}
}

// Message is a single banner. It is immutable once handed to a Sink.
type Message struct {
	Text     string
	Severity Severity
	Options  Options
}

// Payload returns the message as the event detail understood by the thin client.
func (m Message) Payload() map[string]any {
	var typ any
	if m.Severity != SeverityNone {
		typ = string(m.Severity)
	}
	return map[string]any{
		"message": m.Text,
		"ele":     m.Options.Element,
		"type":    typ,
		"offset": map[string]any{
			"from":   m.Options.Offset.From,
			"amount": m.Options.Offset.Amount,
		},
		"align":           m.Options.Align,
		"width":           m.Options.Width,
		"delay":           m.Options.Delay.Milliseconds(),
		"allow_dismiss":   m.Options.AllowDismiss,
		"stackup_spacing": m.Options.StackupSpacing,
	}
}

// Sink renders banners on a page.
type Sink interface {
	Render(ctx context.Context, m Message) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, m Message) error

// Render calls f(ctx, m).
func (f SinkFunc) Render(ctx context.Context, m Message) error {
	return f(ctx, m)
}

// Emitter dispatches a named client event.
type Emitter interface {
	Emit(name string, data any) error
}

// EmitSink renders banners by emitting EventName with the message payload.
func EmitSink(e Emitter) Sink {
	return SinkFunc(func(_ context.Context, m Message) error {
		return e.Emit(EventName, m.Payload())
	})
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLogger sets the logger used to report sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// Notifier sends banners to a Sink. It holds no mutable state and is safe
// for concurrent use as long as the Sink is.
type Notifier struct {
	sink   Sink
	opts   Options
	logger *slog.Logger
}

// New creates a Notifier that renders into sink.
func New(sink Sink, opts ...Option) *Notifier {
	n := &Notifier{
		sink:   sink,
		opts:   DefaultOptions(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotifyContext renders message with the given severity and returns the
// sink's error unchanged.
func (n *Notifier) NotifyContext(ctx context.Context, message string, severity Severity) error {
	return n.sink.Render(ctx, Message{
		Text:     message,
		Severity: severity,
		Options:  n.opts,
	})
}

// Notify renders message with the given severity. A sink failure is logged
// and otherwise ignored.
func (n *Notifier) Notify(message string, severity Severity) {
	if err := n.NotifyContext(context.Background(), message, severity); err != nil {
		n.logger.Warn("growl render failed",
			"severity", severity.String(),
			"error", err)
	}
}

// Info shows an info banner.
//
//	n.Info("Draft saved")
func (n *Notifier) Info(message string) {
	n.Notify(message, SeverityInfo)
}

// Error shows a danger banner.
//
//	n.Error("Failed to delete post")
func (n *Notifier) Error(message string) {
	n.Notify(message, SeverityDanger)
}

// Success shows a success banner.
//
//	n.Success("Comment posted")
func (n *Notifier) Success(message string) {
	n.Notify(message, SeveritySuccess)
}

// ComingSoon shows the placeholder banner for features that are not live yet.
func (n *Notifier) ComingSoon() {
	n.Info(ComingSoonText)
}
