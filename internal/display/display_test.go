package display

import (
	"testing"

	"weather_station/internal/logger"
	"weather_station/internal/models"
)

func TestLogging_TracksFrame(t *testing.T) {
	d := NewLogging(logger.Nop())

	if !d.Frame().Blank {
		t.Fatalf("new driver should start blank")
	}

	d.SetLowLight(true)
	d.RenderNumber(21, models.ColorGreen)
	d.RenderTrend(models.TrendUp)
	d.RenderNotificationSweep([]models.Channel{models.ChannelAirSensor})

	f := d.Frame()
	if f.Blank || f.Number != 21 || f.Color != models.ColorGreen || f.Trend != models.TrendUp {
		t.Fatalf("unexpected frame: %+v", f)
	}
	if len(f.Notices) != 1 || f.Notices[0] != models.ChannelAirSensor {
		t.Fatalf("unexpected notices: %+v", f.Notices)
	}

	d.Clear()
	f = d.Frame()
	if !f.Blank || f.Number != 0 || !f.LowLight {
		t.Fatalf("clear should blank the frame and keep low light: %+v", f)
	}
}
