// Package intent classifies change-task descriptions into deployment intents
// and extracts release tokens and project names from free text. All functions
// are pure; catalog data is passed in by the caller.
package intent

import (
	"regexp"
	"strings"
)

// Intent is the action a change-task description asks for.
type Intent int

const (
	None Intent = iota
	Ignore
	Deploy
	Skip
	Manual
)

func (i Intent) String() string {
	switch i {
	case Ignore:
		return "ignore"
	case Deploy:
		return "deploy"
	case Skip:
		return "skip"
	case Manual:
		return "manual"
	default:
		return "none"
	}
}

// releaseTokenRe matches version fragments: optional digits, optional dot,
// digits, optional dash, optional trailing letters or dashes. A dotted version
// typically produces several adjacent matches that must be concatenated.
var releaseTokenRe = regexp.MustCompile(`\d*\.?\d+[-]?[-a-zA-Z]*`)

// Classify returns the intent of a description. IGNORE short-circuits every
// other keyword; SKIP and MANUAL take priority over DEPLOY/RELEASE when
// keywords co-occur. Matching is case-insensitive.
func Classify(description string) Intent {
	upper := strings.ToUpper(description)
	switch {
	case upper == "":
		return None
	case strings.Contains(upper, "IGNORE"):
		return Ignore
	case strings.Contains(upper, "SKIP"):
		return Skip
	case strings.Contains(upper, "MANUAL"):
		return Manual
	case strings.Contains(upper, "DEPLOY"), strings.Contains(upper, "RELEASE"):
		return Deploy
	default:
		return None
	}
}

// ReleaseToken extracts the release version from a description. Project names
// are stripped first so a project with digits in its name (for example
// "Service2020") cannot pollute the token. Matches are concatenated in order
// of appearance because the pattern splits dotted versions across matches.
func ReleaseToken(description string, projectNames []string) string {
	stripped := stripProjectName(description, projectNames)

	var token strings.Builder
	for _, m := range releaseTokenRe.FindAllString(stripped, -1) {
		token.WriteString(m)
	}
	return token.String()
}

// ProjectName returns the first catalog name that appears as a whole word in
// the description, or "" when none matches. Matching is case-insensitive and
// the canonical catalog spelling is returned.
func ProjectName(description string, projectNames []string) string {
	for _, name := range projectNames {
		if name == "" {
			continue
		}
		if wholeWord(name).MatchString(description) {
			return name
		}
	}
	return ""
}

// stripProjectName removes the longest whole-word catalog name from the
// description. The longest match wins so that a project whose name is a
// prefix of another ("Order" vs "OrderService") cannot leave fragments behind.
func stripProjectName(description string, projectNames []string) string {
	longest := ""
	for _, name := range projectNames {
		if name == "" || len(name) <= len(longest) {
			continue
		}
		if wholeWord(name).MatchString(description) {
			longest = name
		}
	}
	if longest == "" {
		return description
	}
	re := wholeWord(longest)
	if loc := re.FindStringIndex(description); loc != nil {
		return description[:loc[0]] + description[loc[1]:]
	}
	return description
}

func wholeWord(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
}
