// Package upgrader resolves core-js requests, falling back to the core-js 3
// path when a legacy request does not resolve.
package upgrader

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/corejs-upgrade/internal/core/domain"
	"go.trai.ch/corejs-upgrade/internal/core/ports"
	"go.trai.ch/corejs-upgrade/internal/engine/rewriter"
)

const (
	// TracerName is the instrumentation scope of upgrade spans.
	TracerName = "go.trai.ch/corejs-upgrade/upgrader"
	// SpanName names the span recorded for every upgrade attempt.
	SpanName = "corejs.upgrade"
)

// Span attribute keys.
const (
	AttrRequest   = attribute.Key("corejs.request")
	AttrRewritten = attribute.Key("corejs.rewritten")
	AttrRule      = attribute.Key("corejs.rule")
	AttrOutcome   = attribute.Key("corejs.outcome")
)

// Outcome values recorded on spans.
const (
	OutcomeResolved    = "resolved"
	OutcomeUpgraded    = "upgraded"
	OutcomeUnsupported = "unsupported"
	OutcomeFailed      = "failed"
)

// Upgrader applies the resolve, rewrite, resolve-again policy.
type Upgrader struct {
	resolver ports.ModuleResolver
	logger   ports.Logger
	tracer   trace.Tracer
}

// Option configures an Upgrader.
type Option func(*Upgrader)

// WithTracer sets the tracer used for upgrade spans.
func WithTracer(t trace.Tracer) Option {
	return func(u *Upgrader) {
		u.tracer = t
	}
}

// New creates an Upgrader resolving through resolver.
func New(resolver ports.ModuleResolver, logger ports.Logger, opts ...Option) *Upgrader {
	u := &Upgrader{
		resolver: resolver,
		logger:   logger,
		tracer:   otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upgrade resolves req. When the original request resolves, the returned
// Resolution has Upgraded == false. When it does not, the request is
// rewritten and resolved once more. Any failure after the first attempt
// returns the error of the original resolution, so messages always refer to
// the import the user wrote.
func (u *Upgrader) Upgrade(ctx context.Context, req domain.ResolveRequest) (domain.Resolution, error) {
	ctx, span := u.tracer.Start(ctx, SpanName, trace.WithAttributes(AttrRequest.String(req.Path)))
	defer span.End()

	resolved, originalErr := u.resolver.Resolve(ctx, req)
	if originalErr == nil {
		span.SetAttributes(AttrOutcome.String(OutcomeResolved))
		return domain.Resolution{Path: resolved}, nil
	}

	match := rewriter.Classify(req.Path)
	span.SetAttributes(AttrRule.String(match.Rule))

	if match.Outcome == rewriter.Unsupported {
		span.SetAttributes(AttrOutcome.String(OutcomeUnsupported))
		span.RecordError(originalErr)
		span.SetStatus(codes.Error, "unsupported legacy request")
		u.logger.Warn(fmt.Sprintf("%s has no core-js 3 equivalent (rule %s)", req.Path, match.Rule))
		return domain.Resolution{}, originalErr
	}

	rewritten := match.Path
	span.SetAttributes(AttrRewritten.String(rewritten))

	// An unmatched request comes back unchanged and is still retried once.
	resolved, err := u.resolver.Resolve(ctx, req.WithPath(rewritten))
	if err != nil {
		span.SetAttributes(AttrOutcome.String(OutcomeFailed))
		span.RecordError(originalErr)
		span.SetStatus(codes.Error, "module not found")
		return domain.Resolution{}, originalErr
	}

	if rewritten == req.Path {
		span.SetAttributes(AttrOutcome.String(OutcomeResolved))
		return domain.Resolution{Path: resolved}, nil
	}

	span.SetAttributes(AttrOutcome.String(OutcomeUpgraded))
	u.logger.Info(fmt.Sprintf("upgraded %s -> %s", req.Path, rewritten))

	return domain.Resolution{
		Path:      resolved,
		Rewritten: rewritten,
		Upgraded:  true,
	}, nil
}
