package middleware

import (
	"context"

	"github.com/pagekit-dev/pagekit/pkg/growl"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for pagekit.
const defaultTracerName = "pagekit"

// SpanName is the name of the span created for each banner.
const SpanName = "growl.render"

// OTelConfig configures banner tracing.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "pagekit").
	TracerName string

	// TracerProvider supplies the tracer (default: the global provider).
	TracerProvider trace.TracerProvider

	// IncludeMessage records the banner text as an attribute.
	// May contain user data - disabled by default.
	IncludeMessage bool

	// AttributeExtractor adds custom attributes for each banner.
	AttributeExtractor func(msg growl.Message) []attribute.KeyValue
}

// OTelOption configures banner tracing.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeMessage enables recording the banner text.
func WithIncludeMessage(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeMessage = include
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(msg growl.Message) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// Trace wraps next so every banner is rendered inside a span.
func Trace(next growl.Sink, opts ...OTelOption) growl.Sink {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(config.TracerName)

	return growl.SinkFunc(func(ctx context.Context, msg growl.Message) error {
		attrs := []attribute.KeyValue{
			attribute.String("growl.severity", msg.Severity.String()),
			attribute.Int("growl.message_length", len(msg.Text)),
			attribute.Int("growl.width", msg.Options.Width),
			attribute.Int64("growl.delay_ms", msg.Options.Delay.Milliseconds()),
		}
		if config.IncludeMessage {
			attrs = append(attrs, attribute.String("growl.message", msg.Text))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(msg)...)
		}

		ctx, span := tracer.Start(ctx, SpanName,
			trace.WithSpanKind(trace.SpanKindProducer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		err := next.Render(ctx, msg)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}
