package engine

import (
	"context"
	"strings"

	"github.com/sunieldevarapu/deployment-scheduler/internal/octopus"
	"github.com/sunieldevarapu/deployment-scheduler/internal/otel"
	"github.com/sunieldevarapu/deployment-scheduler/internal/resolve"
	"github.com/sunieldevarapu/deployment-scheduler/internal/snow"
)

// authorize is the second pass: every queued production deployment must be
// backed by exactly one claimed change task matching on project, release and
// minute-truncated start time, or it is canceled this run.
func (e *Engine) authorize(ctx context.Context, claimed []snow.ChangeTask, inflight []octopus.ServerTask, res *resolve.Resolver) {
	for _, d := range filterProdQueued(inflight) {
		token := res.ReleaseToken(d.Description)
		project := res.ProjectName(d.Description)

		if e.matchesClaimedTask(d, token, project, claimed, res) {
			continue
		}

		e.Log.Info("orphan deployment", "deployment", d.ID, "project", project, "release", token)
		if err := e.Deploy.CancelTask(ctx, d.ID); err != nil {
			e.Log.Warn("cancel failed", "deployment", d.ID, "err", err)
			e.post(ctx, orphanCancelFailedText(d))
		} else {
			otel.RecordCanceled(ctx, project)
			e.post(ctx, orphanCanceledText(d))
		}

		// Any claimed task on the orphan's project goes back to the queue:
		// when only the release number or time changed, the stale claim
		// would otherwise never be retried.
		e.requeueProject(ctx, project, claimed)
	}
}

// matchesClaimedTask looks for a claimed task whose (project, release,
// minute) triple matches the queued deployment.
func (e *Engine) matchesClaimedTask(d octopus.ServerTask, token, project string, claimed []snow.ChangeTask, res *resolve.Resolver) bool {
	queueTime, ok := e.Clock.FromDeploymentClock(d.QueueTime)
	if !ok {
		return false
	}
	for _, task := range claimed {
		if !strings.EqualFold(res.ProjectName(task.ShortDescription), project) {
			continue
		}
		if !strings.EqualFold(res.ReleaseToken(task.ShortDescription), token) {
			continue
		}
		start, ok := e.Clock.ParsePlanned(task.PlannedStart)
		if !ok {
			continue
		}
		if e.Clock.SameMinute(queueTime, start) {
			return true
		}
	}
	return false
}

func (e *Engine) requeueProject(ctx context.Context, project string, claimed []snow.ChangeTask) {
	if project == "" {
		return
	}
	upper := strings.ToUpper(project)
	for _, task := range claimed {
		if strings.Contains(strings.ToUpper(task.ShortDescription), upper) {
			e.requeue(ctx, task)
		}
	}
}

// filterProdQueued narrows server tasks to queued production deployments so
// the pass can never cancel anything else.
func filterProdQueued(inflight []octopus.ServerTask) []octopus.ServerTask {
	var out []octopus.ServerTask
	for _, d := range inflight {
		// Queued implies not canceled; anything else is out of bounds.
		if d.State != octopus.StateQueued {
			continue
		}
		if strings.Contains(d.Description, "Release Approval") {
			continue
		}
		if !strings.Contains(d.Description, "Prod") {
			continue
		}
		out = append(out, d)
	}
	return out
}
