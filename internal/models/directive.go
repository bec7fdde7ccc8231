package models

// Directive status codes returned by the primary collector.
const (
	DirectiveStatusOK     = 0
	DirectiveStatusUpdate = 1
)

// ControlDirective is a parsed set of remote configuration instructions.
// Nil pointer fields mean the key was absent.
type ControlDirective struct {
	Status               int   `json:"status"`
	Shutdown             bool  `json:"shutdown,omitempty"`
	Reboot               bool  `json:"reboot,omitempty"`
	StopApp              bool  `json:"stop_app,omitempty"`
	DisplayDim           *bool `json:"display_dim,omitempty"`
	DisplayOn            *bool `json:"display_on,omitempty"`
	SecondaryZoneOn      *bool `json:"secondary_zone_on,omitempty"`
	PrimaryIntervalMin   *int  `json:"primary_interval_min,omitempty"`
	SecondaryIntervalMin *int  `json:"secondary_interval_min,omitempty"`
}

// Empty reports whether the directive carries no mutation and no terminal request.
func (d ControlDirective) Empty() bool {
	return !d.Shutdown && !d.Reboot && !d.StopApp &&
		d.DisplayDim == nil && d.DisplayOn == nil && d.SecondaryZoneOn == nil &&
		d.PrimaryIntervalMin == nil && d.SecondaryIntervalMin == nil
}
