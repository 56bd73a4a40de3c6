package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// Review decision metrics
	reviewCounter  metric.Int64Counter
	reviewDuration metric.Float64Histogram

	// Hours reconciliation metrics
	reconcileDuration metric.Float64Histogram

	// External sync failure metrics
	syncFailureCounter metric.Int64Counter
)

// InitReviewMetrics initializes review-related metrics
func InitReviewMetrics() error {
	meter := otel.Meter("midnight.review")

	var err error

	// Review decision counter
	reviewCounter, err = meter.Int64Counter(
		"review.decision.count",
		metric.WithDescription("Number of submission review decisions"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return err
	}

	// Review operation duration
	reviewDuration, err = meter.Float64Histogram(
		"review.decision.duration",
		metric.WithDescription("Duration of submission review operations"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	// Hours reconciliation duration
	reconcileDuration, err = meter.Float64Histogram(
		"hours.reconcile.duration",
		metric.WithDescription("Duration of hours reconciliation runs"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	// External sync failure counter
	syncFailureCounter, err = meter.Int64Counter(
		"sync.failure.count",
		metric.WithDescription("Number of external sync failures journaled"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordReviewDecision records a completed review decision
func RecordReviewDecision(ctx context.Context, status string, durationMs float64) {
	if reviewCounter != nil {
		reviewCounter.Add(ctx, 1,
			metric.WithAttributes(attribute.String("status", status)),
		)
	}

	if reviewDuration != nil {
		reviewDuration.Record(ctx, durationMs,
			metric.WithAttributes(attribute.String("status", status)),
		)
	}
}

// RecordReconcile records a hours reconciliation run
func RecordReconcile(ctx context.Context, durationMs float64, projectCount int64) {
	if reconcileDuration != nil {
		reconcileDuration.Record(ctx, durationMs,
			metric.WithAttributes(attribute.Int64("projects", projectCount)),
		)
	}
}

// RecordSyncFailure records an external sync failure by kind
func RecordSyncFailure(ctx context.Context, kind string) {
	if syncFailureCounter != nil {
		syncFailureCounter.Add(ctx, 1,
			metric.WithAttributes(attribute.String("kind", kind)),
		)
	}
}
