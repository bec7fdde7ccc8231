package models

import "time"

// Trend is the direction of barometric pressure within the current 15-minute window.
type Trend string

const (
	TrendUp     Trend = "Up"
	TrendDown   Trend = "Down"
	TrendSteady Trend = "Steady"
)

// Thermometer source ids used when no hardware thermometer supplied the value.
const (
	SourceOnboard = "SenseHat"
	SourceNone    = "None"
	SourceNotSet  = "NotSet"
)

// SentinelTemp is reported for a zone that has no usable sensor.
const SentinelTemp = -99.0

// WeatherSnapshot is the computed state for one sampling tick.
// It is always rebuilt and replaced as a whole.
type WeatherSnapshot struct {
	TakenAt           time.Time `json:"taken_at"`
	AirTempC          float64   `json:"air_temp_c"`
	AirTempF          float64   `json:"air_temp_f"`
	AirSensorID       string    `json:"air_sensor_id"`
	SecondaryTempC    float64   `json:"secondary_temp_c"`
	SecondaryTempF    float64   `json:"secondary_temp_f"`
	SecondarySensorID string    `json:"secondary_sensor_id"`
	Humidity          float64   `json:"humidity"`       // %RH
	PressureMb        float64   `json:"pressure_mb"`    // millibar
	PressureInHg      float64   `json:"pressure_in_hg"` // inches of mercury
	DewPointC         float64   `json:"dew_point_c"`
	Trend             Trend     `json:"trend"`
	DisplayTemp       int       `json:"display_temp"`
}
