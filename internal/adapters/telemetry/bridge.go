// Package telemetry routes OpenTelemetry spans recorded during a build to the logger.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/corejs-upgrade/internal/core/ports"
	"go.trai.ch/corejs-upgrade/internal/engine/upgrader"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge implements sdktrace.SpanProcessor and logs one line per finished
// upgrade span, including requests that resolved without help.
type Bridge struct {
	logger ports.Logger
}

// NewBridge returns a Bridge writing to logger.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart is a no-op; only finished spans are reported.
func (b *Bridge) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd logs the outcome of an upgrade span.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if s.Name() != upgrader.SpanName {
		return
	}

	attrs := make(map[attribute.Key]string, len(s.Attributes()))
	for _, kv := range s.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}

	msg := fmt.Sprintf("resolve %s: %s", attrs[upgrader.AttrRequest], attrs[upgrader.AttrOutcome])
	if rewritten := attrs[upgrader.AttrRewritten]; rewritten != "" && rewritten != attrs[upgrader.AttrRequest] {
		msg += " via " + rewritten
	}
	if rule := attrs[upgrader.AttrRule]; rule != "" {
		msg += " (" + rule + ")"
	}
	msg += fmt.Sprintf(" in %s", s.EndTime().Sub(s.StartTime()))

	b.logger.Info(msg)
}

// Shutdown is a no-op.
func (b *Bridge) Shutdown(context.Context) error { return nil }

// ForceFlush is a no-op.
func (b *Bridge) ForceFlush(context.Context) error { return nil }
