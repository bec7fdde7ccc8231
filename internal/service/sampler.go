package service

import (
	"errors"
	"math"
	"time"

	"weather_station/internal/logger"
	"weather_station/internal/models"
)

// ThermometerReader reads a hardware thermometer by id.
type ThermometerReader interface {
	Read(id string) models.MetricSample
}

// OnboardSensor is the combined humidity/pressure board plus the CPU thermal zone.
type OnboardSensor interface {
	Humidity() (float64, error)
	Pressure() (float64, error)
	TemperatureFromHumidity() (float64, error)
	TemperatureFromPressure() (float64, error)
	CPUTemperature() (float64, error)
}

const smoothKeyOnboard = "onboard"

type SamplerConfig struct {
	AirSensorID        string
	SecondarySensorID  string
	UseAirSensor       bool
	OnboardFallback    bool
	CompensationFactor float64
	SI                 bool
}

// Sampler reads every sensor and builds a WeatherSnapshot.
type Sampler struct {
	cfg          SamplerConfig
	thermometers ThermometerReader
	onboard      OnboardSensor
	smoother     *Smoother
	trend        PressureTrend
	log          *logger.Logger
}

func NewSampler(cfg SamplerConfig, thermometers ThermometerReader, onboard OnboardSensor, log *logger.Logger) *Sampler {
	if cfg.CompensationFactor == 0 {
		cfg.CompensationFactor = 0.75
	}
	return &Sampler{
		cfg:          cfg,
		thermometers: thermometers,
		onboard:      onboard,
		smoother:     NewSmoother(smoothKeyOnboard),
		log:          log,
	}
}

// Sample builds the snapshot for now. Sensor flags on notes are raised or
// cleared according to which source supplied each zone.
func (s *Sampler) Sample(now time.Time, rc models.RuntimeConfig, notes *NotificationState) models.WeatherSnapshot {
	snap := models.WeatherSnapshot{TakenAt: now}

	air := s.readThermometer(s.cfg.UseAirSensor, s.cfg.AirSensorID)
	switch {
	case air.OK():
		notes.Clear(models.ChannelAirSensor)
		snap.AirTempC, snap.AirTempF = Round(air.Value, 1), Round(CToF(air.Value), 1)
		snap.AirSensorID = s.cfg.AirSensorID
	case s.cfg.OnboardFallback:
		notes.Raise(models.ChannelAirSensor)
		t := s.onboardTemperature()
		snap.AirTempC, snap.AirTempF = Round(t, 1), Round(CToF(t), 1)
		snap.AirSensorID = models.SourceOnboard
	default:
		snap.AirTempC, snap.AirTempF = models.SentinelTemp, models.SentinelTemp
		snap.AirSensorID = models.SourceNotSet
	}

	sec := s.readThermometer(s.cfg.SecondarySensorID != "", s.cfg.SecondarySensorID)
	switch {
	case sec.OK():
		notes.Clear(models.ChannelSecondarySensor)
		snap.SecondaryTempC, snap.SecondaryTempF = Round(sec.Value, 1), Round(CToF(sec.Value), 1)
		snap.SecondarySensorID = s.cfg.SecondarySensorID
	case rc.SecondaryZoneOn:
		// the onboard reading is taken but the zone reports 0
		notes.Raise(models.ChannelSecondarySensor)
		_ = s.onboardTemperature()
		snap.SecondaryTempC, snap.SecondaryTempF = 0, 0
		snap.SecondarySensorID = models.SourceNone
	default:
		snap.SecondaryTempC, snap.SecondaryTempF = models.SentinelTemp, models.SentinelTemp
		snap.SecondarySensorID = models.SourceNotSet
	}

	snap.Humidity = Round(s.readOnboard("humidity", s.onboard.Humidity), 1)

	dp, err := DewPoint(snap.AirTempC, snap.Humidity)
	if err != nil {
		s.log.Warnw("dew_point_failed",
			"err", err,
			"a1", dewA1,
			"b1", dewB1,
			"humidity", snap.Humidity,
			"temp_c", snap.AirTempC,
		)
	}
	snap.DewPointC = Round(dp, 1)

	pressure := s.readOnboard("pressure", s.onboard.Pressure)
	snap.PressureMb = Round(pressure, 2)
	snap.PressureInHg = Round(MbarToInHg(pressure), 2)
	snap.Trend = s.trend.Update(now.Minute(), snap.PressureMb)

	display := snap.AirTempF
	if s.cfg.SI {
		display = snap.AirTempC
	}
	snap.DisplayTemp = int(math.Round(display))

	return snap
}

func (s *Sampler) readThermometer(enabled bool, id string) models.MetricSample {
	if !enabled || id == "" {
		return models.MetricSample{Status: models.SensorUnavailable, SourceID: id}
	}
	m := s.thermometers.Read(id)
	if !m.OK() {
		s.log.Debugw("thermometer_unavailable", "thermometer_id", id, "status", m.Status.String())
	}
	return m
}

// onboardTemperature averages the board's two temperature sensors,
// compensates for CPU heat and smooths the result.
func (s *Sampler) onboardTemperature() float64 {
	tHum, err1 := s.onboard.TemperatureFromHumidity()
	tPress, err2 := s.onboard.TemperatureFromPressure()
	tCPU, err3 := s.onboard.CPUTemperature()
	if err := errors.Join(err1, err2, err3); err != nil {
		s.log.Warnw("onboard_temperature_failed", "err", err)
		return 0
	}

	t := (tHum + tPress) / 2
	corrected := t - (tCPU-t)/s.cfg.CompensationFactor
	return s.smoother.Push(smoothKeyOnboard, corrected)
}

func (s *Sampler) readOnboard(name string, read func() (float64, error)) float64 {
	v, err := read()
	if err != nil {
		s.log.Warnw("onboard_read_failed", "reading", name, "err", err)
		return 0
	}
	return v
}
