package models

import "time"

// RuntimeConfig is the part of the configuration that remote control may change
// while the agent runs. Everything else is fixed after startup.
type RuntimeConfig struct {
	DisplayOn            bool `json:"display_on"`
	DisplayDim           bool `json:"display_dim"`
	SecondaryZoneOn      bool `json:"secondary_zone_on"`
	PrimaryUploadOn      bool `json:"primary_upload_on"`
	PrimaryIntervalMin   int  `json:"primary_interval_min"`
	SecondaryUploadOn    bool `json:"secondary_upload_on"`
	SecondaryIntervalMin int  `json:"secondary_interval_min"`
}

// StateStatus tracks whether the durable copy matches the runtime config.
type StateStatus string

const (
	StateCurrent StateStatus = "Current"
	StateStale   StateStatus = "Stale"
	StateError   StateStatus = "Error"
)

// PersistedState is the durable snapshot of RuntimeConfig.
// It is always written and read as a whole.
type PersistedState struct {
	Status                     StateStatus `json:"status"`
	UpdatedAt                  time.Time   `json:"updated_at"`
	DisplayDim                 bool        `json:"display_dim"`
	DisplayOn                  bool        `json:"display_on"`
	SecondaryZoneOn            bool        `json:"secondary_zone_on"`
	SecondaryUploadOn          bool        `json:"secondary_upload_on"`
	SecondaryUploadIntervalMin int         `json:"secondary_upload_interval_min"`
}

// PersistedFrom captures the durable fields of rc. UpdatedAt is kept in UTC,
// the form every StateStore writes.
func PersistedFrom(rc RuntimeConfig, status StateStatus, at time.Time) PersistedState {
	return PersistedState{
		Status:                     status,
		UpdatedAt:                  at.UTC(),
		DisplayDim:                 rc.DisplayDim,
		DisplayOn:                  rc.DisplayOn,
		SecondaryZoneOn:            rc.SecondaryZoneOn,
		SecondaryUploadOn:          rc.SecondaryUploadOn,
		SecondaryUploadIntervalMin: rc.SecondaryIntervalMin,
	}
}

// ApplyTo copies the durable fields onto rc and returns the result.
func (p PersistedState) ApplyTo(rc RuntimeConfig) RuntimeConfig {
	rc.DisplayDim = p.DisplayDim
	rc.DisplayOn = p.DisplayOn
	rc.SecondaryZoneOn = p.SecondaryZoneOn
	rc.SecondaryUploadOn = p.SecondaryUploadOn
	rc.SecondaryIntervalMin = p.SecondaryUploadIntervalMin
	return rc
}
