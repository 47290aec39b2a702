// Package clock converts between the ticketing system's naive UTC timestamps
// and the deployment system's offset-aware timestamps.
package clock

import (
	"strings"
	"time"
)

const (
	// ticketLayout is the naive timestamp format the ticketing system stores
	// (no zone; interpreted as UTC).
	ticketLayout = "2006-01-02 15:04:05"

	displayLayout = "2006-01-02 15:04"

	// DefaultZone is the deployment system's wall-clock zone.
	DefaultZone = "America/Chicago"

	// DefaultExpiryDelta is the window added to a queue time to form its expiry.
	DefaultExpiryDelta = 30 * time.Minute

	// InvalidDisplay is returned by DisplayTime for unparseable input.
	InvalidDisplay = "Invalid Date"
)

// Normalizer converts timestamps into the deployment system's zone. The zero
// value is not usable; construct with New.
type Normalizer struct {
	loc   *time.Location
	delta time.Duration
}

// New returns a Normalizer for the named zone. An empty zone name selects
// DefaultZone; a non-positive delta selects DefaultExpiryDelta.
func New(zone string, delta time.Duration) (*Normalizer, error) {
	if zone == "" {
		zone = DefaultZone
	}
	if delta <= 0 {
		delta = DefaultExpiryDelta
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	return &Normalizer{loc: loc, delta: delta}, nil
}

// ToDeploymentClock renders a naive ticketing timestamp as an RFC 3339
// timestamp in the deployment zone. With addDelta the expiry window is added
// first. Unparseable input yields "".
func (n *Normalizer) ToDeploymentClock(naive string, addDelta bool) string {
	t, ok := n.ParsePlanned(naive)
	if !ok {
		return ""
	}
	if addDelta {
		t = t.Add(n.delta)
	}
	return t.In(n.loc).Format(time.RFC3339)
}

// ParsePlanned parses a naive ticketing timestamp as UTC.
func (n *Normalizer) ParsePlanned(naive string) (time.Time, bool) {
	t, err := time.Parse(ticketLayout, strings.TrimSpace(naive))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FromDeploymentClock parses a deployment-system timestamp (fractional
// seconds tolerated) into the deployment zone.
func (n *Normalizer) FromDeploymentClock(iso string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(iso))
	if err != nil {
		return time.Time{}, false
	}
	return t.In(n.loc), true
}

// DisplayTime renders an offset-aware timestamp for notification text,
// keeping the wall time of the embedded offset. Invalid or empty input yields
// InvalidDisplay rather than an error.
func (n *Normalizer) DisplayTime(iso string) string {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(iso))
	if err != nil {
		return InvalidDisplay
	}
	return t.Format(displayLayout)
}

// SameMinute reports whether two instants fall in the same minute of the
// deployment zone. Used to match queued deployments to planned task starts.
func (n *Normalizer) SameMinute(a, b time.Time) bool {
	return a.In(n.loc).Truncate(time.Minute).Equal(b.In(n.loc).Truncate(time.Minute))
}
