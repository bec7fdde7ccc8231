// Package display defines the LED matrix collaborator. Drivers are best effort
// and never return errors to the engine.
package display

import (
	"sync"

	"weather_station/internal/logger"
	"weather_station/internal/models"
)

// Driver is what the engine needs from the pixel display.
type Driver interface {
	RenderNumber(value int, color models.Color)
	RenderTrend(trend models.Trend)
	RenderNotificationSweep(channels []models.Channel)
	ShowMessage(text string, fg, bg models.Color)
	Clear()
	SetLowLight(on bool)
}

// Frame is the last visible state of a driver.
type Frame struct {
	Number   int              `json:"number"`
	Color    models.Color     `json:"color"`
	Trend    models.Trend     `json:"trend"`
	Notices  []models.Channel `json:"notices,omitempty"`
	Message  string           `json:"message,omitempty"`
	LowLight bool             `json:"low_light"`
	Blank    bool             `json:"blank"`
}

// Logging keeps the last frame in memory and logs every change at debug level.
// It stands in for the LED matrix on hosts without one.
type Logging struct {
	mu    sync.Mutex
	frame Frame
	log   *logger.Logger
}

var _ Driver = (*Logging)(nil)

func NewLogging(log *logger.Logger) *Logging {
	return &Logging{log: log, frame: Frame{Blank: true}}
}

func (l *Logging) RenderNumber(value int, color models.Color) {
	l.mu.Lock()
	l.frame.Number = value
	l.frame.Color = color
	l.frame.Blank = false
	l.mu.Unlock()
	l.log.Debugw("display_number", "value", value, "color", color)
}

func (l *Logging) RenderTrend(trend models.Trend) {
	l.mu.Lock()
	l.frame.Trend = trend
	l.mu.Unlock()
	l.log.Debugw("display_trend", "trend", trend)
}

func (l *Logging) RenderNotificationSweep(channels []models.Channel) {
	l.mu.Lock()
	l.frame.Notices = append([]models.Channel(nil), channels...)
	l.mu.Unlock()
	if len(channels) > 0 {
		l.log.Debugw("display_notifications", "channels", channels)
	}
}

func (l *Logging) ShowMessage(text string, fg, bg models.Color) {
	l.mu.Lock()
	l.frame.Message = text
	l.mu.Unlock()
	l.log.Infow("display_message", "text", text)
}

func (l *Logging) Clear() {
	l.mu.Lock()
	l.frame = Frame{Blank: true, LowLight: l.frame.LowLight}
	l.mu.Unlock()
	l.log.Debugw("display_clear")
}

func (l *Logging) SetLowLight(on bool) {
	l.mu.Lock()
	l.frame.LowLight = on
	l.mu.Unlock()
}

// Frame returns a copy of the current frame.
func (l *Logging) Frame() Frame {
	l.mu.Lock()
	defer l.mu.Unlock()
	f := l.frame
	f.Notices = append([]models.Channel(nil), l.frame.Notices...)
	return f
}

// Nop discards everything.
type Nop struct{}

func (Nop) RenderNumber(int, models.Color)                 {}
func (Nop) RenderTrend(models.Trend)                       {}
func (Nop) RenderNotificationSweep([]models.Channel)       {}
func (Nop) ShowMessage(string, models.Color, models.Color) {}
func (Nop) Clear()                                         {}
func (Nop) SetLowLight(bool)                               {}
