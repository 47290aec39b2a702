package snow

import (
	"regexp"
	"strings"
)

// ProcessedMarker is appended to a task description when the automation
// claims it. The unassign pass uses it to tell handed-off tasks from stale
// claims.
const ProcessedMarker = "PROCESSED"

// standardChangeContentRe marks descriptions that belong to standard changes;
// together with a parent change of type "standard" they are immutable.
var standardChangeContentRe = regexp.MustCompile(`(?i)ssis`)

// IsProcessed reports whether the description carries the marker.
func IsProcessed(description string) bool {
	return strings.Contains(description, ProcessedMarker)
}

// StripProcessed removes every occurrence of the marker and trailing space.
func StripProcessed(description string) string {
	return strings.TrimRightFunc(strings.ReplaceAll(description, ProcessedMarker, ""), func(r rune) bool {
		return r == ' ' || r == '\t'
	})
}

// SetProcessed appends the marker, stripping first so it is never duplicated.
func SetProcessed(description string) string {
	return StripProcessed(description) + " " + ProcessedMarker
}

func hasStandardChangeMarker(description string) bool {
	return standardChangeContentRe.MatchString(description)
}
