package service

import (
	"context"
	"sync"
	"time"

	"weather_station/internal/models"
	"weather_station/internal/repository"
)

// ---- Test doubles ----

type stubThermometers struct {
	samples map[string]models.MetricSample
	reads   []string
}

func (s *stubThermometers) Read(id string) models.MetricSample {
	s.reads = append(s.reads, id)
	if m, ok := s.samples[id]; ok {
		return m
	}
	return models.MetricSample{Status: models.SensorUnavailable, SourceID: id}
}

type stubOnboard struct {
	humidity, pressure   float64
	tHum, tPress, tCPU   float64
	humErr, pressErr     error
	tempErr              error
	temperatureReadCalls int
}

func (s *stubOnboard) Humidity() (float64, error) { return s.humidity, s.humErr }
func (s *stubOnboard) Pressure() (float64, error) { return s.pressure, s.pressErr }
func (s *stubOnboard) TemperatureFromHumidity() (float64, error) {
	s.temperatureReadCalls++
	return s.tHum, s.tempErr
}
func (s *stubOnboard) TemperatureFromPressure() (float64, error) { return s.tPress, s.tempErr }
func (s *stubOnboard) CPUTemperature() (float64, error)          { return s.tCPU, s.tempErr }

// recordingDisplay counts driver calls.
type recordingDisplay struct {
	numbers  []int
	trends   []models.Trend
	sweeps   [][]models.Channel
	messages []string
	clears   int
	lowLight []bool
}

func (d *recordingDisplay) RenderNumber(v int, _ models.Color) { d.numbers = append(d.numbers, v) }
func (d *recordingDisplay) RenderTrend(t models.Trend)         { d.trends = append(d.trends, t) }
func (d *recordingDisplay) RenderNotificationSweep(c []models.Channel) {
	d.sweeps = append(d.sweeps, append([]models.Channel(nil), c...))
}
func (d *recordingDisplay) ShowMessage(text string, _, _ models.Color) {
	d.messages = append(d.messages, text)
}
func (d *recordingDisplay) Clear()              { d.clears++ }
func (d *recordingDisplay) SetLowLight(on bool) { d.lowLight = append(d.lowLight, on) }

type stubStore struct {
	loadResp models.PersistedState
	loadErr  error
	saveErr  error
	saves    []models.PersistedState
}

func (s *stubStore) Save(_ context.Context, st models.PersistedState) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves = append(s.saves, st)
	return nil
}

func (s *stubStore) Load(context.Context) (models.PersistedState, error) {
	return s.loadResp, s.loadErr
}

type stubEvents struct {
	appends []models.StationEvent
}

func (e *stubEvents) Append(_ context.Context, ev models.StationEvent) error {
	e.appends = append(e.appends, ev)
	return nil
}

func (e *stubEvents) List(context.Context, repository.EventQuery) ([]models.StationEvent, error) {
	return e.appends, nil
}

func (e *stubEvents) types() []string {
	out := make([]string, 0, len(e.appends))
	for _, ev := range e.appends {
		out = append(out, ev.Type)
	}
	return out
}

type stubFailureLog struct {
	records []models.FailureRecord
}

func (f *stubFailureLog) Append(rec models.FailureRecord) error {
	f.records = append(f.records, rec)
	return nil
}

type stubPower struct {
	mu        sync.Mutex
	reboots   int
	shutdowns int
}

func (p *stubPower) Reboot(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reboots++
	return nil
}

func (p *stubPower) Shutdown(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shutdowns++
	return nil
}

// stubUploader returns canned results in order, repeating the last one.
type stubUploader struct {
	target  models.TargetID
	results []UploadResult
	errs    []error
	calls   int
}

func (u *stubUploader) Target() models.TargetID { return u.target }

func (u *stubUploader) Send(context.Context, models.WeatherSnapshot, models.RuntimeConfig) (UploadResult, error) {
	i := u.calls
	u.calls++
	if len(u.errs) > 0 {
		if i >= len(u.errs) {
			i = len(u.errs) - 1
		}
		if u.errs[i] != nil {
			return UploadResult{Target: u.target}, u.errs[i]
		}
	}
	if len(u.results) == 0 {
		return UploadResult{Target: u.target, Outcome: OutcomeAcknowledged}, nil
	}
	if i >= len(u.results) {
		i = len(u.results) - 1
	}
	return u.results[i], nil
}

// fakeClock advances only when the engine sleeps.
type fakeClock struct {
	now    time.Time
	sleeps int
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) {
	c.sleeps++
	if d <= 0 {
		d = time.Second
	}
	c.now = c.now.Add(d)
}

func networkError(target models.TargetID) error {
	return &UploadError{Target: target, Kind: ErrNetwork, Err: context.DeadlineExceeded}
}
