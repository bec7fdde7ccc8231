package service

import (
	"errors"
	"math"
	"testing"

	"weather_station/internal/models"
)

func TestDewPoint(t *testing.T) {
	tests := []struct {
		name    string
		tempC   float64
		rh      float64
		want    float64
		wantErr bool
	}{
		{name: "reference 20C 50%", tempC: 20, rh: 50, want: 9.261106630534238},
		{name: "reference 10.5C 80%", tempC: 10.5, rh: 80, want: 7.19499598705393},
		{name: "saturated air equals temperature", tempC: 15, rh: 100, want: 15},
		{name: "zero humidity", tempC: 20, rh: 0, wantErr: true},
		{name: "negative humidity", tempC: 20, rh: -5, wantErr: true},
		{name: "pole in temperature term", tempC: -dewB1, rh: 50, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DewPoint(tt.tempC, tt.rh)
			if tt.wantErr {
				if !errors.Is(err, ErrDewPointDomain) {
					t.Fatalf("err = %v, want ErrDewPointDomain", err)
				}
				if got != 0 {
					t.Fatalf("sentinel = %v, want 0", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("DewPoint(%v, %v) = %v, want %v", tt.tempC, tt.rh, got, tt.want)
			}
		})
	}

	if dp, _ := DewPoint(20, 50); Round(dp, 1) != 9.3 {
		t.Fatalf("rounded dew point = %v, want 9.3", Round(dp, 1))
	}
}

func TestConversionsAndRounding(t *testing.T) {
	if got := CToF(100); got != 212 {
		t.Fatalf("CToF(100) = %v", got)
	}
	if got := Round(CToF(21.37), 1); got != 70.5 {
		t.Fatalf("Round(CToF(21.37), 1) = %v, want 70.5", got)
	}
	if got := Round(MbarToInHg(1013.25), 2); got != 29.92 {
		t.Fatalf("inHg = %v, want 29.92", got)
	}
	if got := Round(-2.25, 1); got != -2.3 {
		t.Fatalf("Round(-2.25, 1) = %v, want -2.3", got)
	}
}

func TestPressureTrend(t *testing.T) {
	var p PressureTrend

	steps := []struct {
		minute   int
		pressure float64
		want     models.Trend
	}{
		{minute: 7, pressure: 1012.04, want: models.TrendSteady}, // seeds reference 1012.0
		{minute: 8, pressure: 1012.26, want: models.TrendUp},
		{minute: 14, pressure: 1011.91, want: models.TrendDown},
		{minute: 15, pressure: 1011.91, want: models.TrendSteady}, // new window reference 1011.9
		{minute: 15, pressure: 1013.00, want: models.TrendSteady}, // same boundary minute refreshes
		{minute: 16, pressure: 1012.96, want: models.TrendSteady}, // rounds to 1013.0
		{minute: 29, pressure: 1012.50, want: models.TrendDown},
		{minute: 30, pressure: 1012.50, want: models.TrendSteady},
		{minute: 31, pressure: 1012.60, want: models.TrendUp},
	}

	for i, s := range steps {
		if got := p.Update(s.minute, s.pressure); got != s.want {
			t.Fatalf("step %d (minute %d, %.2f): got %s, want %s", i, s.minute, s.pressure, got, s.want)
		}
	}
}
