// Package middleware instruments page components.
//
// The decorators here wrap a growl.Sink or scrolltop.Events without changing
// their behaviour:
//   - Prometheus metrics for banners, scroll state transitions, activations
//     and live sessions
//   - OpenTelemetry spans for every rendered banner
//
// # Prometheus Metrics
//
//	m := middleware.NewMetrics(middleware.WithNamespace("blog"))
//	sink := m.Sink(growl.EmitSink(session))
//	ctl := scrolltop.New(session, scrolltop.WithOnChange(m.ObserveScroll))
//	detach := ctl.Attach(m.Events(session))
//
// Metrics collected:
//   - pagekit_notifications_total: banners by severity and status
//   - pagekit_scroll_transitions_total: scroll-to-top state changes by state
//   - pagekit_scroll_activations_total: clicks on instrumented click handlers
//   - pagekit_active_sessions: connected live pages
//
// Expose them with promhttp:
//
//	r.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
//	sink := middleware.Trace(growl.EmitSink(session),
//	    middleware.WithTracerName("blog"),
//	)
//
// The tracer comes from the global provider unless WithTracerProvider is set.
// The span is carried on the context handed to the wrapped sink.
package middleware
