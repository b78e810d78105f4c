package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "profileiq",
		Subsystem: "ai",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of scoring oracle requests",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
	}, []string{"provider", "model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "profileiq",
		Subsystem: "ai",
		Name:      "evaluation_failures_total",
		Help:      "Number of scoring oracle failures",
	}, []string{"provider", "model", "reason"})
)

var tracer = otel.Tracer("github.com/noah-isme/profileiq-api/pkg/ai")

// oracleCall tracks a single request to a provider.
type oracleCall struct {
	provider string
	model    string
	start    time.Time
	span     trace.Span
	logger   zerolog.Logger
}

func startCall(parent context.Context, provider, model string, timeout time.Duration, logger zerolog.Logger) (context.Context, context.CancelFunc, *oracleCall) {
	ctx, span := tracer.Start(parent, provider+".evaluate", trace.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("model", model),
	))
	ctx, cancel := context.WithTimeout(ctx, timeout)

	call := &oracleCall{
		provider: provider,
		model:    model,
		start:    time.Now(),
		span:     span,
		logger:   logger,
	}
	done := func() {
		cancel()
		span.End()
	}

	return ctx, done, call
}

func (c *oracleCall) elapsed() time.Duration {
	elapsed := time.Since(c.start)
	aiDuration.WithLabelValues(c.provider, c.model).Observe(elapsed.Seconds())
	return elapsed
}

// unavailable wraps a transport or status failure as ErrOracleUnavailable.
func (c *oracleCall) unavailable(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: request timed out: %v", ErrOracleUnavailable, err)
	} else {
		err = fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	return c.fail("unavailable", err)
}

func (c *oracleCall) fail(reason string, err error) error {
	aiFailures.WithLabelValues(c.provider, c.model, reason).Inc()
	c.span.RecordError(err)
	c.span.SetStatus(codes.Error, err.Error())
	c.logger.Warn().Err(err).Str("provider", c.provider).Str("model", c.model).Msg("scoring oracle call failed")
	return fmt.Errorf("%s evaluate: %w", c.provider, err)
}

// finish decodes the reply text into the result.
func (c *oracleCall) finish(text string, elapsed time.Duration) (EvaluationResult, error) {
	raw, err := decodeOracleText(text)
	if err != nil {
		return EvaluationResult{}, c.fail("malformed", err)
	}
	c.span.SetAttributes(attribute.Int64("response_time_ms", elapsed.Milliseconds()))
	return EvaluationResult{Raw: raw, Model: c.model, ResponseTime: elapsed}, nil
}
