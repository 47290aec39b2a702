package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/metric"
)

var (
	initMetricsOnce      sync.Once
	tasksProcessed       metric.Int64Counter
	deploymentsScheduled metric.Int64Counter
	deploymentsCanceled  metric.Int64Counter
	notificationsSent    metric.Int64Counter
	runDuration          metric.Float64Histogram
)

// InitMetrics creates the meter instruments. Safe to call multiple times;
// only runs once. Call after InitMeterProvider.
func InitMetrics(ctx context.Context) error {
	var err error
	initMetricsOnce.Do(func() {
		m := Meter()
		tasksProcessed, err = m.Int64Counter("deploysched_tasks_processed_total", metric.WithDescription("Change tasks processed, by lifecycle outcome"))
		if err != nil {
			return
		}
		deploymentsScheduled, err = m.Int64Counter("deploysched_deployments_scheduled_total", metric.WithDescription("Deployments successfully scheduled"))
		if err != nil {
			return
		}
		deploymentsCanceled, err = m.Int64Counter("deploysched_deployments_canceled_total", metric.WithDescription("Orphan deployments canceled by the authorization pass"))
		if err != nil {
			return
		}
		notificationsSent, err = m.Int64Counter("deploysched_notifications_total", metric.WithDescription("Notifications delivered to the sink"))
		if err != nil {
			return
		}
		runDuration, err = m.Float64Histogram("deploysched_run_duration_seconds", metric.WithDescription("Reconciliation run duration in seconds"))
	})
	return err
}

// RecordTaskOutcome records one processed change task by outcome.
func RecordTaskOutcome(ctx context.Context, outcome string) {
	if tasksProcessed == nil {
		return
	}
	tasksProcessed.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(outcome)))
}

// RecordScheduled records a successfully scheduled deployment.
func RecordScheduled(ctx context.Context, project string) {
	if deploymentsScheduled == nil {
		return
	}
	deploymentsScheduled.Add(ctx, 1, metric.WithAttributes(AttrProject.String(project)))
}

// RecordCanceled records an orphan deployment cancellation.
func RecordCanceled(ctx context.Context, project string) {
	if deploymentsCanceled == nil {
		return
	}
	deploymentsCanceled.Add(ctx, 1, metric.WithAttributes(AttrProject.String(project)))
}

// RecordNotification records one delivered notification.
func RecordNotification(ctx context.Context) {
	if notificationsSent == nil {
		return
	}
	notificationsSent.Add(ctx, 1)
}

// RecordRunDuration records a completed reconciliation run.
func RecordRunDuration(ctx context.Context, seconds float64) {
	if runDuration == nil {
		return
	}
	runDuration.Record(ctx, seconds)
}
