package models

import "strings"

// TargetID names an upstream collector.
type TargetID string

const (
	TargetPrimary   TargetID = "primary"
	TargetSecondary TargetID = "secondary"
)

// ParseTargetID accepts a target name in any case.
func ParseTargetID(s string) (TargetID, bool) {
	switch id := TargetID(strings.ToLower(strings.TrimSpace(s))); id {
	case TargetPrimary, TargetSecondary:
		return id, true
	default:
		return "", false
	}
}

// TargetPhase is the scheduling state of one upload target.
type TargetPhase string

const (
	PhaseIdle     TargetPhase = "Idle"
	PhaseDue      TargetPhase = "Due"
	PhaseInFlight TargetPhase = "InFlight"
	PhaseSuccess  TargetPhase = "Success"
	PhaseFailed   TargetPhase = "Failed"
)

// UploadTarget is one upstream collector with its own schedule and failure count.
type UploadTarget struct {
	ID                  TargetID    `json:"id"`
	Enabled             bool        `json:"enabled"`
	IntervalMinutes     int         `json:"interval_minutes"`
	Phase               TargetPhase `json:"phase"`
	LastOutcome         string      `json:"last_outcome,omitempty"`
	ConsecutiveFailures int         `json:"consecutive_failures"`
}
