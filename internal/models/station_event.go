package models

import (
	"slices"
	"time"
)

// Station event types.
const (
	EventStartup         = "STARTUP"
	EventDirective       = "DIRECTIVE"
	EventUploadFailed    = "UPLOAD_FAILED"
	EventRebootRequested = "REBOOT_REQUESTED"
	EventStateWrite      = "STATE_WRITE_FAILED"
	EventShutdown        = "SHUTDOWN"
)

// EventTypes lists every type the station records, in lifecycle order.
var EventTypes = []string{
	EventStartup,
	EventDirective,
	EventUploadFailed,
	EventRebootRequested,
	EventStateWrite,
	EventShutdown,
}

func IsEventType(s string) bool {
	return slices.Contains(EventTypes, s)
}

// StationEvent is a single log entry.
type StationEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // STARTUP | DIRECTIVE | UPLOAD_FAILED | ...
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
