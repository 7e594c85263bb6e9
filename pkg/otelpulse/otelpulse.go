// Package otelpulse traces engine activity with OpenTelemetry.
//
// The Tracer implements pulse.Instrumentation. Named transactions become
// spans, and every flush becomes a child span carrying its pass and
// effect counts, so a slow UI update shows up in a trace as a flush with
// the transactions that triggered it.
//
//	tr := otelpulse.New(otelpulse.WithTracerName("my-app"))
//	rt := pulse.NewRuntime(pulse.WithInstrumentation(tr))
//
//	rt.TxNamed("load-profile", func() {
//	    name.Set(p.Name)
//	    email.Set(p.Email)
//	})
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// in your main() before creating the runtime:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	)
//	otel.SetTracerProvider(tp)
package otelpulse

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pulse-dev/pulse/pkg/pulse"
)

// Default tracer name for reactive runtimes.
const defaultTracerName = "pulse"

// Config configures the tracer.
type Config struct {
	// TracerName is the name of the tracer (default: "pulse").
	TracerName string

	// BaseContext is the parent context for root spans
	// (default: context.Background()).
	BaseContext context.Context

	// RecordNodeEvents adds a span event for each signal write, memo
	// recomputation, and effect run inside a traced transaction or
	// flush. Verbose; disabled by default.
	RecordNodeEvents bool
}

// Option configures the tracer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithBaseContext sets the parent context for root spans.
func WithBaseContext(ctx context.Context) Option {
	return func(c *Config) {
		c.BaseContext = ctx
	}
}

// WithNodeEvents enables per-node span events.
func WithNodeEvents(record bool) Option {
	return func(c *Config) {
		c.RecordNodeEvents = record
	}
}

// Tracer records engine activity as OpenTelemetry spans. It implements
// pulse.Instrumentation.
//
// The runtime is single-goroutine, so open spans form a simple stack:
// nested named transactions nest their spans, and a flush span parents
// under whatever transaction is open when it starts.
type Tracer struct {
	tracer           trace.Tracer
	base             context.Context
	recordNodeEvents bool

	// stack of contexts for open spans, innermost last.
	stack []spanEntry
}

type spanEntry struct {
	ctx  context.Context
	span trace.Span
}

var _ pulse.Instrumentation = (*Tracer)(nil)

// New builds a Tracer using the global OpenTelemetry tracer provider.
func New(opts ...Option) *Tracer {
	config := Config{
		TracerName:  defaultTracerName,
		BaseContext: context.Background(),
	}
	for _, opt := range opts {
		opt(&config)
	}

	return &Tracer{
		tracer:           otel.Tracer(config.TracerName),
		base:             config.BaseContext,
		recordNodeEvents: config.RecordNodeEvents,
	}
}

// current returns the context spans should parent under.
func (t *Tracer) current() context.Context {
	if len(t.stack) == 0 {
		return t.base
	}
	return t.stack[len(t.stack)-1].ctx
}

func (t *Tracer) push(ctx context.Context, span trace.Span) {
	t.stack = append(t.stack, spanEntry{ctx: ctx, span: span})
}

func (t *Tracer) pop() (trace.Span, bool) {
	if len(t.stack) == 0 {
		return nil, false
	}
	entry := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return entry.span, true
}

// event adds a span event to the innermost open span, if any.
func (t *Tracer) event(name string, attrs ...attribute.KeyValue) {
	if !t.recordNodeEvents || len(t.stack) == 0 {
		return
	}
	t.stack[len(t.stack)-1].span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SignalWrite implements pulse.Instrumentation.
func (t *Tracer) SignalWrite(name string) {
	t.event("pulse.signal_write", attribute.String("pulse.node", name))
}

// MemoRecompute implements pulse.Instrumentation.
func (t *Tracer) MemoRecompute(name string) {
	t.event("pulse.memo_recompute", attribute.String("pulse.node", name))
}

// EffectRun implements pulse.Instrumentation.
func (t *Tracer) EffectRun(name string) {
	t.event("pulse.effect_run", attribute.String("pulse.node", name))
}

// BatchStart implements pulse.Instrumentation. Opens a span for the named
// transaction.
func (t *Tracer) BatchStart(name string) {
	ctx, span := t.tracer.Start(
		t.current(),
		"pulse.tx "+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("pulse.tx", name)),
	)
	t.push(ctx, span)
}

// BatchEnd implements pulse.Instrumentation. Closes the transaction's
// span.
func (t *Tracer) BatchEnd(name string) {
	if span, ok := t.pop(); ok {
		span.SetStatus(codes.Ok, "")
		span.End()
	}
}

// FlushStart implements pulse.Instrumentation. Opens a flush span under
// the innermost open transaction, or as a root span for bare writes.
func (t *Tracer) FlushStart() {
	ctx, span := t.tracer.Start(
		t.current(),
		"pulse.flush",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	t.push(ctx, span)
}

// FlushEnd implements pulse.Instrumentation. Records the flush's pass and
// effect counts and closes its span.
func (t *Tracer) FlushEnd(passes, effectsRun int) {
	span, ok := t.pop()
	if !ok {
		return
	}
	span.SetAttributes(
		attribute.Int("pulse.flush_passes", passes),
		attribute.Int("pulse.flush_effects", effectsRun),
	)
	span.SetStatus(codes.Ok, "")
	span.End()
}
