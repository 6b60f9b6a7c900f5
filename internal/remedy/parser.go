package remedy

import "strings"

// Kind tags the outcome of parsing a model response.
type Kind int

const (
	// KindCorrected means the marker pair yielded a corrected file.
	KindCorrected Kind = iota
	// KindNoChange means the model returned the exact no-change sentinel.
	KindNoChange
	// KindGuessed means a corrected file was recovered from unmarked
	// output by heuristic; treat as best-effort.
	KindGuessed
	// KindFailed means no rule matched; no correction may be fabricated.
	KindFailed
)

// Outcome is the parsed model response.
type Outcome struct {
	Kind      Kind
	Corrected string
	Notes     string
}

// parse rules run in priority order; each is total and side-effect-free.
var parseRules = []func(out string) (Outcome, bool){
	markerRule,
	sentinelRule,
	fenceRule,
}

// ParseResponse classifies raw model output. Callers branch on the
// returned tag, never on the string itself.
func ParseResponse(out string) Outcome {
	for _, rule := range parseRules {
		if oc, ok := rule(out); ok {
			return oc
		}
	}
	return Outcome{Kind: KindFailed}
}

// markerRule extracts the content between the start/end markers and keeps
// any trailing text as free-form notes.
func markerRule(out string) (Outcome, bool) {
	_, rest, found := strings.Cut(out, StartMarker)
	if !found {
		return Outcome{}, false
	}
	body, trailer, found := strings.Cut(rest, EndMarker)
	if !found {
		return Outcome{}, false
	}
	corrected := strings.TrimSpace(body)
	if corrected == "" {
		return Outcome{}, false
	}
	return Outcome{
		Kind:      KindCorrected,
		Corrected: corrected,
		Notes:     strings.TrimSpace(trailer),
	}, true
}

func sentinelRule(out string) (Outcome, bool) {
	if strings.TrimSpace(out) != NoChangeToken {
		return Outcome{}, false
	}
	return Outcome{Kind: KindNoChange}, true
}

// fenceRule recovers a file from a response that wrapped it in a single
// fenced code block instead of the markers.
func fenceRule(out string) (Outcome, bool) {
	if strings.Count(out, "```") != 2 {
		return Outcome{}, false
	}
	_, rest, _ := strings.Cut(out, "```")
	body, trailer, _ := strings.Cut(rest, "```")

	// Drop a language tag on the opening fence line.
	if first, remainder, found := strings.Cut(body, "\n"); found && !strings.ContainsAny(strings.TrimSpace(first), " \t") {
		body = remainder
	}

	corrected := strings.TrimSpace(body)
	if corrected == "" {
		return Outcome{}, false
	}
	return Outcome{
		Kind:      KindGuessed,
		Corrected: corrected,
		Notes:     strings.TrimSpace(trailer),
	}, true
}
