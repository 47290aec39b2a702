package engine

import (
	"context"
	"strings"

	"github.com/sunieldevarapu/deployment-scheduler/internal/intent"
	"github.com/sunieldevarapu/deployment-scheduler/internal/octopus"
	"github.com/sunieldevarapu/deployment-scheduler/internal/otel"
	"github.com/sunieldevarapu/deployment-scheduler/internal/resolve"
	"github.com/sunieldevarapu/deployment-scheduler/internal/snow"
)

// processTask drives one unclaimed task through the lifecycle state machine.
// Side effects are strictly bounded: at most one claim, at most one reversal,
// at most one deployment create, and at most one notification per task.
func (e *Engine) processTask(ctx context.Context, task snow.ChangeTask, res *resolve.Resolver, queued []octopus.ServerTask, scheduled map[string]bool) Decision {
	it := intent.Classify(task.ShortDescription)
	if it != intent.Deploy && it != intent.Skip && it != intent.Manual {
		// Not ours to act on: no state change, no notification.
		return Decision{Outcome: OutcomeIgnored}
	}

	header := e.messageHeader(task)

	if err := e.Ticketing.Assign(ctx, task, false); err != nil {
		e.Log.Warn("claim failed", "task", task.Number, "err", err)
		return Decision{Outcome: OutcomeClaimFailed, Message: claimFailedText(header)}
	}

	switch it {
	case intent.Skip:
		// Override: hand the task back to the humans, claim reversed.
		requeued := e.requeue(ctx, task)
		return Decision{Outcome: OutcomeSkipOverride, Requeued: requeued, Message: skipOverrideText(header)}
	case intent.Manual:
		// Stays claimed so automation will not touch it again; a human takes
		// over from here.
		return Decision{Outcome: OutcomeManualOverride, Message: manualOverrideText(header)}
	}

	token := res.ReleaseToken(task.ShortDescription)
	if token == "" {
		return Decision{Outcome: OutcomeNoReleaseToken, Requeued: e.requeue(ctx, task), Message: noReleaseTokenText(header)}
	}

	projectID := res.ProjectID(task.ShortDescription)
	if projectID == "" {
		return Decision{Outcome: OutcomeProjectNotFound, Requeued: e.requeue(ctx, task), Message: projectNotFoundText(header)}
	}

	rel, found, err := res.Release(ctx, token, projectID)
	if err != nil {
		// Transport failure: defer silently, the next cycle retries.
		e.Log.Warn("release lookup failed, deferring", "task", task.Number, "err", err)
		return Decision{Outcome: OutcomeDeferred, Requeued: e.requeue(ctx, task)}
	}
	if !found {
		return Decision{Outcome: OutcomeReleaseNotFound, Requeued: e.requeue(ctx, task), Message: releaseNotFoundText(header, token)}
	}

	projectName := res.ProjectName(task.ShortDescription)
	if scheduled[scheduleKey(projectName, token)] || alreadyScheduled(token, projectName, queued, res) {
		// Benign duplicate case: the deployment exists (or was created
		// earlier this run), leave the task claimed and just say so.
		return Decision{Outcome: OutcomeAlreadyScheduled, Message: alreadyScheduledText(header)}
	}

	promotable, err := e.Gate.Promotable(ctx, rel.ID)
	if err != nil {
		e.Log.Warn("promotability check failed, deferring", "task", task.Number, "err", err)
		return Decision{Outcome: OutcomeDeferred, Requeued: e.requeue(ctx, task)}
	}
	if !promotable {
		return Decision{Outcome: OutcomeNotPromotable, Requeued: e.requeue(ctx, task), Message: notPromotableText(header, token)}
	}

	req := octopus.DeploymentRequest{
		ReleaseID:       rel.ID,
		ProjectID:       rel.ProjectID,
		ChannelID:       rel.ChannelID,
		EnvironmentID:   e.EnvironmentID,
		QueueTime:       e.Clock.ToDeploymentClock(task.PlannedStart, false),
		QueueTimeExpiry: e.Clock.ToDeploymentClock(task.PlannedStart, true),
	}
	if _, err := e.Deploy.CreateDeployment(ctx, req); err != nil {
		e.Log.Warn("schedule failed", "task", task.Number, "release", rel.Version, "err", err)
		return Decision{Outcome: OutcomeScheduleFailed, Requeued: e.requeue(ctx, task), Message: scheduleFailedText(header)}
	}

	scheduled[scheduleKey(projectName, token)] = true
	otel.RecordScheduled(ctx, projectName)
	return Decision{Outcome: OutcomeScheduled, Message: scheduledText(header)}
}

// scheduleKey identifies a (project, release) pair created earlier in the
// same run. The server-task snapshot is taken once per run and goes stale the
// moment a deployment is created, so a second task naming the same release
// must be caught here instead.
func scheduleKey(project, token string) string {
	return strings.ToUpper(project) + "|" + strings.ToUpper(token)
}

// alreadyScheduled reports whether a queued production deployment for the
// same release and project already exists, using the per-run snapshot.
func alreadyScheduled(token, projectName string, queued []octopus.ServerTask, res *resolve.Resolver) bool {
	if token == "" {
		return false
	}
	for _, st := range queued {
		if st.State != octopus.StateQueued {
			continue
		}
		if strings.Contains(st.Description, "Release Approval") {
			continue
		}
		if !strings.EqualFold(res.ReleaseToken(st.Description), token) {
			continue
		}
		if strings.EqualFold(res.ProjectName(st.Description), projectName) {
			return true
		}
	}
	return false
}
