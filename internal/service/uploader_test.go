package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"weather_station/internal/logger"
	"weather_station/internal/models"
)

func testSnapshot() models.WeatherSnapshot {
	return models.WeatherSnapshot{
		TakenAt:           time.Date(2024, 3, 9, 23, 30, 5, 0, time.FixedZone("EST", -5*3600)),
		AirTempC:          21.4,
		AirTempF:          70.5,
		AirSensorID:       "28-000001",
		SecondaryTempC:    12.3,
		SecondaryTempF:    54.1,
		SecondarySensorID: "28-000002",
		Humidity:          45.2,
		PressureMb:        1013.2,
		PressureInHg:      29.92,
		DewPointC:         8.9,
		Trend:             models.TrendSteady,
		DisplayTemp:       70,
	}
}

func TestPrimaryPayload(t *testing.T) {
	opts := PrimaryOptions{StationID: "ST1", Timezone: "America/New_York"}
	rc := models.RuntimeConfig{
		DisplayOn:            true,
		SecondaryZoneOn:      true,
		SecondaryUploadOn:    true,
		SecondaryIntervalMin: 15,
	}

	v := PrimaryPayload(opts, testSnapshot(), rc)

	want := map[string]string{
		"si":  "ST1",
		"t":   "70.5",
		"rh":  "45.2",
		"p":   "1013.2",
		"dp":  "8.9",
		"sld": "2024-03-09",
		"slt": "23:30:05",
		"stz": "America/New_York",
		"sud": "2024-03-10",
		"sut": "04:30:05",
		"pid": "28-000001",
		"cf":  "12.3",
		"cid": "28-000002",
		"dd":  "0",
		"do":  "1",
		"co":  "1",
		"wu":  "15",
		"st":  "Current",
	}
	for k, w := range want {
		if got := v.Get(k); got != w {
			t.Errorf("%s = %q, want %q", k, got, w)
		}
	}
	if len(v) != len(want) {
		t.Fatalf("payload has %d keys, want %d: %v", len(v), len(want), v)
	}
}

func TestPrimaryPayload_SIAndSecondaryOff(t *testing.T) {
	opts := PrimaryOptions{StationID: "ST1", SI: true}
	rc := models.RuntimeConfig{SecondaryUploadOn: false, SecondaryIntervalMin: 30}

	v := PrimaryPayload(opts, testSnapshot(), rc)
	if v.Get("t") != "21.4" {
		t.Fatalf("t = %q, want celsius", v.Get("t"))
	}
	if v.Get("wu") != "0" {
		t.Fatalf("wu = %q, want 0 while secondary upload is off", v.Get("wu"))
	}
}

func TestPrimaryUploader_Outcomes(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantOutcome Outcome
		wantStatus  int
		wantKind    ErrorKind
		wantErr     bool
	}{
		{name: "acknowledged", status: 200, body: `{"Status":0}`, wantOutcome: OutcomeAcknowledged},
		{name: "directive", status: 200, body: `{"Status":1,"DisplayOn":"No"}`, wantOutcome: OutcomeDirective, wantStatus: 1},
		{name: "string status", status: 200, body: `{"Status":"0"}`, wantOutcome: OutcomeAcknowledged},
		{name: "rejected", status: 200, body: `{"Status":7}`, wantOutcome: OutcomeRejected, wantStatus: 7},
		{name: "non integer status", status: 200, body: `{"Status":"bad"}`, wantOutcome: OutcomeRejected, wantStatus: -1},
		{name: "ambiguous", status: 200, body: `{"Message":"ok"}`, wantOutcome: OutcomeAmbiguous},
		{name: "not json", status: 200, body: `OK`, wantErr: true, wantKind: ErrParse},
		{name: "json array", status: 200, body: `[1,2]`, wantErr: true, wantKind: ErrParse},
		{name: "bad directive value", status: 200, body: `{"Status":1,"PiServerUploadInterval":"soon"}`, wantErr: true, wantKind: ErrParse},
		{name: "server error", status: 500, body: `oops`, wantErr: true, wantKind: ErrHTTPStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			up, err := NewPrimaryUploader(PrimaryOptions{URL: srv.URL, StationID: "ST1", Timeout: time.Second})
			if err != nil {
				t.Fatalf("NewPrimaryUploader: %v", err)
			}

			res, err := up.Send(context.Background(), testSnapshot(), models.RuntimeConfig{})
			if tt.wantErr {
				kind, ok := UploadErrorKind(err)
				if !ok || kind != tt.wantKind {
					t.Fatalf("err = %v, want kind %s", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Outcome != tt.wantOutcome || res.Status != tt.wantStatus {
				t.Fatalf("got (%s, %d), want (%s, %d)", res.Outcome, res.Status, tt.wantOutcome, tt.wantStatus)
			}
			if res.Target != models.TargetPrimary {
				t.Fatalf("target = %s", res.Target)
			}
			if tt.wantOutcome == OutcomeDirective {
				if res.Directive == nil || res.Directive.DisplayOn == nil || *res.Directive.DisplayOn {
					t.Fatalf("directive = %+v, want DisplayOn=false", res.Directive)
				}
			}
		})
	}
}

func TestPrimaryUploader_MergesBaseQuery(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{"Status":0}`))
	}))
	defer srv.Close()

	up, err := NewPrimaryUploader(PrimaryOptions{URL: srv.URL + "/upload?key=abc", StationID: "ST9"})
	if err != nil {
		t.Fatalf("NewPrimaryUploader: %v", err)
	}
	if _, err := up.Send(context.Background(), testSnapshot(), models.RuntimeConfig{}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Get("key") != "abc" || got.Get("si") != "ST9" {
		t.Fatalf("query = %v", got)
	}
}

func TestPrimaryUploader_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	up, err := NewPrimaryUploader(PrimaryOptions{URL: addr, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewPrimaryUploader: %v", err)
	}
	_, err = up.Send(context.Background(), testSnapshot(), models.RuntimeConfig{})
	if kind, ok := UploadErrorKind(err); !ok || kind != ErrNetwork {
		t.Fatalf("err = %v, want network", err)
	}
	var ue *UploadError
	if !errors.As(err, &ue) || ue.Target != models.TargetPrimary {
		t.Fatalf("err target = %+v", ue)
	}
}

func TestPrimaryUploader_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	up, err := NewPrimaryUploader(PrimaryOptions{URL: srv.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewPrimaryUploader: %v", err)
	}
	_, err = up.Send(context.Background(), testSnapshot(), models.RuntimeConfig{})
	if kind, ok := UploadErrorKind(err); !ok || kind != ErrNetwork {
		t.Fatalf("err = %v, want network", err)
	}
}

func TestParseDirective(t *testing.T) {
	raw := map[string]any{
		"Status":                 float64(1),
		"PiReboot":               "",
		"DisplayDim":             "Yes",
		"DisplayOn":              "No",
		"ColdFrame":              "On",
		"PiServerUploadInterval": float64(5),
		"WUServerUploadInterval": "30",
	}

	d, err := ParseDirective(raw)
	if err != nil {
		t.Fatalf("ParseDirective: %v", err)
	}
	if !d.Reboot || d.Shutdown || d.StopApp {
		t.Fatalf("terminal flags = %+v", d)
	}
	if d.DisplayDim == nil || !*d.DisplayDim {
		t.Fatalf("DisplayDim = %v", d.DisplayDim)
	}
	if d.DisplayOn == nil || *d.DisplayOn {
		t.Fatalf("DisplayOn = %v", d.DisplayOn)
	}
	if d.SecondaryZoneOn == nil || !*d.SecondaryZoneOn {
		t.Fatalf("SecondaryZoneOn = %v", d.SecondaryZoneOn)
	}
	if d.PrimaryIntervalMin == nil || *d.PrimaryIntervalMin != 5 {
		t.Fatalf("PrimaryIntervalMin = %v", d.PrimaryIntervalMin)
	}
	if d.SecondaryIntervalMin == nil || *d.SecondaryIntervalMin != 30 {
		t.Fatalf("SecondaryIntervalMin = %v", d.SecondaryIntervalMin)
	}

	empty, err := ParseDirective(map[string]any{"Status": 1})
	if err != nil || !empty.Empty() {
		t.Fatalf("status-only directive = %+v, %v", empty, err)
	}
}

func TestSecondaryUploader(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte("success\n"))
	}))
	defer srv.Close()

	up, err := NewSecondaryUploader(SecondaryOptions{
		URL:        srv.URL,
		StationID:  "KXX1",
		StationKey: "secret",
		Timeout:    time.Second,
	}, logger.Nop())
	if err != nil {
		t.Fatalf("NewSecondaryUploader: %v", err)
	}

	res, err := up.Send(context.Background(), testSnapshot(), models.RuntimeConfig{})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.Outcome != OutcomeOpaque || res.Target != models.TargetSecondary || res.Body != "success\n" {
		t.Fatalf("result = %+v", res)
	}

	want := map[string]string{
		"action":   "updateraw",
		"ID":       "KXX1",
		"PASSWORD": "secret",
		"dateutc":  "now",
		"tempf":    "70.5",
		"humidity": "45.2",
		"baromin":  "29.92",
	}
	for k, w := range want {
		if got.Get(k) != w {
			t.Errorf("%s = %q, want %q", k, got.Get(k), w)
		}
	}
}

func TestSecondaryUploader_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	up, _ := NewSecondaryUploader(SecondaryOptions{URL: srv.URL}, logger.Nop())
	_, err := up.Send(context.Background(), testSnapshot(), models.RuntimeConfig{})

	var ue *UploadError
	if !errors.As(err, &ue) || ue.Kind != ErrHTTPStatus || ue.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err = %v", err)
	}
}

func TestRateLimited(t *testing.T) {
	next := &stubUploader{target: models.TargetSecondary}
	rl := NewRateLimited(next, time.Hour)

	if rl.Target() != models.TargetSecondary {
		t.Fatalf("Target() = %s", rl.Target())
	}
	if _, err := rl.Send(context.Background(), testSnapshot(), models.RuntimeConfig{}); err != nil {
		t.Fatalf("first send: %v", err)
	}
	_, err := rl.Send(context.Background(), testSnapshot(), models.RuntimeConfig{})
	if !IsThrottled(err) {
		t.Fatalf("second send err = %v, want throttled", err)
	}
	if next.calls != 1 {
		t.Fatalf("wrapped uploader called %d times, want 1", next.calls)
	}
}

func TestRateLimited_NoSpacing(t *testing.T) {
	next := &stubUploader{target: models.TargetPrimary}
	rl := NewRateLimited(next, 0)
	for i := 0; i < 5; i++ {
		if _, err := rl.Send(context.Background(), testSnapshot(), models.RuntimeConfig{}); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if next.calls != 5 {
		t.Fatalf("calls = %d, want 5", next.calls)
	}
}
