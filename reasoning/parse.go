package reasoning

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/poiesic/rankmatch/core"
)

const (
	// DefaultConfidence is used when a reply omits the confidence field.
	DefaultConfidence = 0.5

	// MatchFoundReason replaces an empty reason on a positive verdict.
	MatchFoundReason = "Match found."

	// InconclusiveReason is the reason given for any failed reasoning call.
	InconclusiveReason = "Failed to get conclusive answer from AI."
)

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// verdict mirrors the reply's JSON. Confidence is a pointer to tell a missing
// field from zero.
type verdict struct {
	IsMatch    bool     `json:"is_match"`
	Reason     string   `json:"reason"`
	Confidence *float64 `json:"confidence"`
}

// Inconclusive is the decision returned when no verdict could be obtained.
func Inconclusive() core.Decision {
	return core.Decision{IsMatch: false, Reason: InconclusiveReason, Confidence: 0}
}

// ParseDecision extracts a decision from a model reply, tolerating markdown
// fences, surrounding prose and unquoted keys.
func ParseDecision(reply string) (core.Decision, error) {
	text := strings.TrimSpace(reply)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	object := jsonObject.FindString(text)
	if object == "" {
		return core.Decision{}, ErrNoJSONObject
	}

	var v verdict
	if err := json.Unmarshal([]byte(repairJSON(object)), &v); err != nil {
		return core.Decision{}, fmt.Errorf("parsing verdict: %w", err)
	}

	confidence := DefaultConfidence
	if v.Confidence != nil {
		confidence = min(1, max(0, *v.Confidence))
	}
	reason := v.Reason
	if v.IsMatch && strings.TrimSpace(reason) == "" {
		reason = MatchFoundReason
	}
	return core.Decision{IsMatch: v.IsMatch, Reason: reason, Confidence: confidence}, nil
}
