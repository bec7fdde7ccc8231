package models

import "time"

// FailureRecord is the diagnostic row written for a failed primary upload.
type FailureRecord struct {
	LocalTime         time.Time
	UTCTime           time.Time
	Temp              float64
	Humidity          float64
	Pressure          float64
	DewPoint          float64
	SecondaryTemp     float64
	AirSensorID       string
	SecondarySensorID string
}
