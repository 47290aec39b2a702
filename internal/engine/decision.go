package engine

// Outcome is where a change task landed in the lifecycle state machine for
// one run.
type Outcome string

const (
	OutcomeIgnored          Outcome = "ignored"
	OutcomeClaimFailed      Outcome = "claim_failed"
	OutcomeSkipOverride     Outcome = "skip_override"
	OutcomeManualOverride   Outcome = "manual_override"
	OutcomeNoReleaseToken   Outcome = "no_release_token"
	OutcomeProjectNotFound  Outcome = "project_not_found"
	OutcomeReleaseNotFound  Outcome = "release_not_found"
	OutcomeAlreadyScheduled Outcome = "already_scheduled"
	OutcomeNotPromotable    Outcome = "not_promotable"
	OutcomeScheduled        Outcome = "scheduled"
	OutcomeScheduleFailed   Outcome = "schedule_failed"
	OutcomeDeferred         Outcome = "deferred"
)

// Decision is the ephemeral result of evaluating one task in one run. It is
// recomputed every run and never persisted.
type Decision struct {
	Outcome Outcome
	// Requeued reports that the task was returned to the human queue for a
	// retry next cycle.
	Requeued bool
	// Message is the notification text; empty means no notification.
	Message string
}
