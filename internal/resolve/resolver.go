// Package resolve maps free-text descriptions to deployment-system project
// and release identifiers using a per-run catalog snapshot.
package resolve

import (
	"context"
	"strings"

	"github.com/sunieldevarapu/deployment-scheduler/internal/intent"
	"github.com/sunieldevarapu/deployment-scheduler/internal/octopus"
)

// ReleaseLister is the slice of the deployment client the resolver needs.
type ReleaseLister interface {
	Releases(ctx context.Context, projectID string) ([]octopus.Release, error)
}

// Resolver resolves descriptions against a project catalog snapshot taken at
// the start of a run. The catalog may change between runs, so a Resolver must
// never outlive the run it was built for.
type Resolver struct {
	lister  ReleaseLister
	catalog []octopus.Project
	names   []string
}

func New(lister ReleaseLister, catalog []octopus.Project) *Resolver {
	names := make([]string, len(catalog))
	for i, p := range catalog {
		names[i] = p.Name
	}
	return &Resolver{lister: lister, catalog: catalog, names: names}
}

// ProjectID returns the id of the first catalog project whose name appears as
// a substring of the description, or "" when none matches. The substring rule
// (rather than whole-word) is kept for compatibility with existing task
// descriptions; ProjectName deliberately uses the stricter rule.
func (r *Resolver) ProjectID(description string) string {
	upper := strings.ToUpper(description)
	if upper == "" {
		return ""
	}
	for _, p := range r.catalog {
		if p.Name != "" && strings.Contains(upper, strings.ToUpper(p.Name)) {
			return p.ID
		}
	}
	return ""
}

// ProjectName returns the canonical catalog name matched as a whole word in
// the description, or "".
func (r *Resolver) ProjectName(description string) string {
	return intent.ProjectName(description, r.names)
}

// ReleaseToken extracts the release version from a description with the
// catalog's project names stripped first.
func (r *Resolver) ReleaseToken(description string) string {
	return intent.ReleaseToken(description, r.names)
}

// Release finds a release by version within a project. The ok result
// distinguishes a legitimate miss from a transport failure so callers can
// requeue-and-notify versus defer.
func (r *Resolver) Release(ctx context.Context, token, projectID string) (octopus.Release, bool, error) {
	if token == "" || projectID == "" {
		return octopus.Release{}, false, nil
	}
	releases, err := r.lister.Releases(ctx, projectID)
	if err != nil {
		return octopus.Release{}, false, err
	}
	for _, rel := range releases {
		if strings.EqualFold(rel.Version, token) {
			return rel, true, nil
		}
	}
	return octopus.Release{}, false, nil
}
