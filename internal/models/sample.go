package models

// SensorStatus classifies a single raw sensor read.
type SensorStatus int

const (
	SensorOK SensorStatus = iota
	SensorUnavailable
	SensorOutOfRange // thermometer reported the disconnected-wire value
)

func (s SensorStatus) String() string {
	switch s {
	case SensorOK:
		return "Ok"
	case SensorUnavailable:
		return "Unavailable"
	case SensorOutOfRange:
		return "OutOfRange"
	default:
		return "Unknown"
	}
}

// MetricSample is one sensor's instantaneous reading.
type MetricSample struct {
	Value    float64      `json:"value"`
	Status   SensorStatus `json:"status"`
	SourceID string       `json:"source_id"`
}

// OK reports whether the sample carries a usable value.
func (m MetricSample) OK() bool { return m.Status == SensorOK }
