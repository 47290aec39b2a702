// Package engine drives one reconciliation run: the unassign pass, the task
// lifecycle state machine, and the deployment authorization pass.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sunieldevarapu/deployment-scheduler/internal/clock"
	"github.com/sunieldevarapu/deployment-scheduler/internal/notify"
	"github.com/sunieldevarapu/deployment-scheduler/internal/octopus"
	"github.com/sunieldevarapu/deployment-scheduler/internal/otel"
	"github.com/sunieldevarapu/deployment-scheduler/internal/resolve"
	"github.com/sunieldevarapu/deployment-scheduler/internal/snow"
)

// Ticketing is the change-task surface the engine needs.
type Ticketing interface {
	ChangeTasks(ctx context.Context, assigned bool) ([]snow.ChangeTask, error)
	Assign(ctx context.Context, task snow.ChangeTask, toQueue bool) error
	IsStandardChange(ctx context.Context, task snow.ChangeTask) (bool, error)
}

// Deployments is the deployment-system surface the engine needs.
type Deployments interface {
	resolve.ReleaseLister
	Projects(ctx context.Context) ([]octopus.Project, error)
	ServerTasks(ctx context.Context) ([]octopus.ServerTask, error)
	CreateDeployment(ctx context.Context, req octopus.DeploymentRequest) (octopus.Deployment, error)
	CancelTask(ctx context.Context, id string) error
}

// PromotionGate decides production eligibility for a release.
type PromotionGate interface {
	Promotable(ctx context.Context, releaseID string) (bool, error)
}

// Engine reconciles change tasks against the deployment system. All state is
// external; an Engine holds only collaborators and per-run snapshots never
// survive a run.
type Engine struct {
	Ticketing Ticketing
	Deploy    Deployments
	Gate      PromotionGate
	Notifier  notify.Notifier
	Clock     *clock.Normalizer

	// EnvironmentID is the production environment deployments are queued to.
	EnvironmentID string

	Log *slog.Logger
}

func New(t Ticketing, d Deployments, g PromotionGate, n notify.Notifier, c *clock.Normalizer, environmentID string, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		Ticketing:     t,
		Deploy:        d,
		Gate:          g,
		Notifier:      n,
		Clock:         c,
		EnvironmentID: environmentID,
		Log:           log,
	}
}

// Run executes one reconciliation batch. Individual task failures never abort
// the run; a returned error means a wholesale fetch failed and everything was
// deferred to the next cycle.
func (e *Engine) Run(ctx context.Context) error {
	e.unassignStale(ctx)

	unclaimed, err := e.Ticketing.ChangeTasks(ctx, false)
	if err != nil {
		return fmt.Errorf("list unclaimed tasks: %w", err)
	}
	e.Log.Info("retrieved unclaimed tasks", "count", len(unclaimed))

	// Per-run snapshots, shared by every task evaluation in this run.
	catalog, err := e.Deploy.Projects(ctx)
	if err != nil {
		return fmt.Errorf("fetch project catalog: %w", err)
	}
	res := resolve.New(e.Deploy, catalog)

	queued, err := e.Deploy.ServerTasks(ctx)
	if err != nil {
		return fmt.Errorf("fetch server tasks: %w", err)
	}

	// Releases scheduled earlier in this run; the queued snapshot cannot see
	// them, and a release is schedulable at most once per cycle.
	scheduled := make(map[string]bool)

	for _, task := range unclaimed {
		d := e.processTask(ctx, task, res, queued, scheduled)
		otel.RecordTaskOutcome(ctx, string(d.Outcome))
		e.Log.Info("task processed",
			"task", task.Number,
			"outcome", d.Outcome,
			"requeued", d.Requeued)
		e.post(ctx, d.Message)
	}

	// Second pass: authorize what is actually queued against what is claimed.
	claimed, err := e.Ticketing.ChangeTasks(ctx, true)
	if err != nil {
		return fmt.Errorf("list claimed tasks: %w", err)
	}
	inflight, err := e.Deploy.ServerTasks(ctx)
	if err != nil {
		return fmt.Errorf("fetch in-flight deployments: %w", err)
	}
	e.authorize(ctx, claimed, inflight, res)
	return nil
}

// unassignStale returns claimed-but-unprocessed tasks to the queue so this
// run can pick them up. Tasks already carrying the PROCESSED marker have been
// handed off and are left alone, as are immutable standard changes.
func (e *Engine) unassignStale(ctx context.Context) {
	claimed, err := e.Ticketing.ChangeTasks(ctx, true)
	if err != nil {
		e.Log.Warn("unassign pass skipped", "err", err)
		return
	}
	for _, task := range claimed {
		if snow.IsProcessed(task.ShortDescription) {
			continue
		}
		std, err := e.Ticketing.IsStandardChange(ctx, task)
		if err != nil {
			e.Log.Warn("standard-change check failed, deferring", "task", task.Number, "err", err)
			continue
		}
		if std {
			continue
		}
		if err := e.Ticketing.Assign(ctx, task, true); err != nil {
			e.Log.Warn("unassign failed, deferring", "task", task.Number, "err", err)
		}
	}
}

// requeue returns a task to the human queue, logging rather than failing when
// the write does not land; the next cycle retries.
func (e *Engine) requeue(ctx context.Context, task snow.ChangeTask) bool {
	if err := e.Ticketing.Assign(ctx, task, true); err != nil {
		e.Log.Warn("requeue failed", "task", task.Number, "err", err)
		return false
	}
	return true
}

// post delivers a notification, fire-and-forget.
func (e *Engine) post(ctx context.Context, msg string) {
	if msg == "" {
		return
	}
	if err := e.Notifier.Post(ctx, msg); err != nil {
		e.Log.Warn("notification failed", "err", err)
		return
	}
	otel.RecordNotification(ctx)
}
