// Package policy embeds and evaluates the Rego policies that back both the
// registry's before/after-resolution checks and the live-check pipeline's
// RegoAdvisor, via github.com/open-policy-agent/opa/rego.
package policy

import "fmt"

// Level is a PolicyFinding's severity, totally ordered
// information < improvement < violation.
type Level string

const (
	LevelInformation Level = "information"
	LevelImprovement Level = "improvement"
	LevelViolation   Level = "violation"
)

var levelRank = map[Level]int{
	LevelInformation: 0,
	LevelImprovement: 1,
	LevelViolation:   2,
}

// Less reports whether l is strictly lower severity than other.
func (l Level) Less(other Level) bool { return levelRank[l] < levelRank[other] }

// Finding is a single structured observation produced by a policy
// evaluation or a live-check advisor (§4.6/§4.9).
type Finding struct {
	ID         string         `json:"id"`
	Level      Level          `json:"level"`
	Message    string         `json:"message"`
	Context    map[string]any `json:"context,omitempty"`
	SignalType string         `json:"signal_type,omitempty"`
	SignalName string         `json:"signal_name,omitempty"`
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s: %s", f.Level, f.ID, f.Message)
}

// Stage is the point in the pipeline at which a set of policies is
// evaluated (§4.6).
type Stage string

const (
	StageBeforeResolution Stage = "before_resolution"
	StageAfterResolution  Stage = "after_resolution"
	StageLiveCheck        Stage = "live_check"
)

// Package returns the Rego package name a Stage's deny rules must be
// defined under: data.otel.<stage>.deny.
func (s Stage) Package() string { return "otel." + string(s) }
