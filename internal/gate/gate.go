// Package gate decides whether a release may be promoted to production from
// its environment-progression phases.
package gate

import (
	"context"

	"github.com/sunieldevarapu/deployment-scheduler/internal/octopus"
)

// promotionPhases are the phase names that count as a production target.
// "Release Approval" is an approval gate, never a target.
var promotionPhases = map[string]bool{
	"Prod":       true,
	"Production": true,
	"Hotfix":     true,
}

// ProgressionFetcher is the slice of the deployment client the gate needs.
type ProgressionFetcher interface {
	Progression(ctx context.Context, releaseID string) (octopus.Progression, error)
}

// PhasesPromotable reports whether any production phase is reachable: either
// unblocked and currently in progress, or already complete. A completed phase
// counts even when blocked, because completion is historical fact; a current
// phase must be unblocked.
func PhasesPromotable(phases []octopus.Phase) bool {
	for _, p := range phases {
		if !promotionPhases[p.Name] {
			continue
		}
		if !p.Blocked && p.Progress == octopus.ProgressCurrent {
			return true
		}
		if p.Progress == octopus.ProgressComplete {
			return true
		}
	}
	return false
}

// Gate fetches a release's progression and applies PhasesPromotable.
type Gate struct {
	fetcher ProgressionFetcher
}

func New(fetcher ProgressionFetcher) *Gate {
	return &Gate{fetcher: fetcher}
}

// Promotable reports whether the release can be promoted to production. The
// error result is a transport failure; a clean false is a policy outcome.
func (g *Gate) Promotable(ctx context.Context, releaseID string) (bool, error) {
	prog, err := g.fetcher.Progression(ctx, releaseID)
	if err != nil {
		return false, err
	}
	return PhasesPromotable(prog.Phases), nil
}
