package service

import (
	"weather_station/internal/display"
	"weather_station/internal/logger"
	"weather_station/internal/models"
)

// Minimum interval, in minutes, at which a directive may enable the secondary upload.
const secondaryMinIntervalMin = 15

// Changes lists what a directive altered.
type Changes struct {
	Fields   []string `json:"fields,omitempty"`
	Shutdown bool     `json:"shutdown,omitempty"`
	Reboot   bool     `json:"reboot,omitempty"`
	StopApp  bool     `json:"stop_app,omitempty"`
}

// Any reports whether anything changed or a terminal flag was set.
func (c Changes) Any() bool {
	return len(c.Fields) > 0 || c.Shutdown || c.Reboot || c.StopApp
}

// Daylight holds the local hours of full display brightness, sunrise inclusive.
type Daylight struct {
	Sunrise int
	Sunset  int
}

// LowLight reports whether the display runs dimmed at hour.
func (d Daylight) LowLight(dim bool, hour int) bool {
	return dim || hour >= d.Sunset || hour < d.Sunrise
}

// Applier applies control directives to the engine state. The whole
// directive is applied in one call.
type Applier struct {
	display  display.Driver
	daylight Daylight
	log      *logger.Logger
}

func NewApplier(d display.Driver, daylight Daylight, log *logger.Logger) *Applier {
	return &Applier{display: d, daylight: daylight, log: log}
}

// Apply mutates st according to d, received at local hour. A change to the
// runtime config marks the persisted state Stale.
func (a *Applier) Apply(st *EngineState, d models.ControlDirective, hour int) Changes {
	var ch Changes
	rc := st.Runtime

	if d.Shutdown {
		st.KeepRunning = false
		st.Shutdown = true
		ch.Shutdown = true
		a.log.Infow("directive_shutdown")
	}
	if d.Reboot {
		st.KeepRunning = false
		st.Reboot = true
		ch.Reboot = true
		a.log.Infow("directive_reboot")
	}
	if d.StopApp {
		st.KeepRunning = false
		ch.StopApp = true
		a.log.Infow("directive_stop_app")
	}

	if d.DisplayDim != nil {
		rc.DisplayDim = *d.DisplayDim
		st.LowLight = a.daylight.LowLight(rc.DisplayDim, hour)
		a.display.SetLowLight(st.LowLight)
		a.log.Infow("directive_display_dim", "dim", rc.DisplayDim, "low_light", st.LowLight)
	}
	if d.DisplayOn != nil {
		rc.DisplayOn = *d.DisplayOn
		if rc.DisplayOn {
			a.display.RenderNumber(st.Snapshot.DisplayTemp, DisplayColor(st.Snapshot.DisplayTemp))
		} else {
			a.display.Clear()
		}
		a.log.Infow("directive_display_on", "on", rc.DisplayOn)
	}
	if d.SecondaryZoneOn != nil {
		rc.SecondaryZoneOn = *d.SecondaryZoneOn
		a.log.Infow("directive_secondary_zone", "on", rc.SecondaryZoneOn)
	}
	if d.PrimaryIntervalMin != nil {
		if n := *d.PrimaryIntervalMin; n > 0 {
			rc.PrimaryUploadOn = true
			rc.PrimaryIntervalMin = n
		} else {
			rc.PrimaryUploadOn = false
		}
		a.log.Infow("directive_primary_upload", "on", rc.PrimaryUploadOn, "interval_min", rc.PrimaryIntervalMin)
	}
	if d.SecondaryIntervalMin != nil {
		if n := *d.SecondaryIntervalMin; n >= secondaryMinIntervalMin {
			rc.SecondaryUploadOn = true
			rc.SecondaryIntervalMin = n
		} else {
			rc.SecondaryUploadOn = false
		}
		a.log.Infow("directive_secondary_upload", "on", rc.SecondaryUploadOn, "interval_min", rc.SecondaryIntervalMin)
	}

	ch.Fields = diffRuntime(st.Runtime, rc)
	if len(ch.Fields) > 0 {
		st.Runtime = rc
		st.Persisted.Status = models.StateStale
	}
	return ch
}

func diffRuntime(a, b models.RuntimeConfig) []string {
	var out []string
	if a.DisplayOn != b.DisplayOn {
		out = append(out, "display_on")
	}
	if a.DisplayDim != b.DisplayDim {
		out = append(out, "display_dim")
	}
	if a.SecondaryZoneOn != b.SecondaryZoneOn {
		out = append(out, "secondary_zone_on")
	}
	if a.PrimaryUploadOn != b.PrimaryUploadOn || a.PrimaryIntervalMin != b.PrimaryIntervalMin {
		out = append(out, "primary_upload")
	}
	if a.SecondaryUploadOn != b.SecondaryUploadOn || a.SecondaryIntervalMin != b.SecondaryIntervalMin {
		out = append(out, "secondary_upload")
	}
	return out
}

// DisplayColor is green for positive temperatures and blue otherwise.
func DisplayColor(temp int) models.Color {
	if temp < 1 {
		return models.ColorBlue
	}
	return models.ColorGreen
}
