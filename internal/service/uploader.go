package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"weather_station/internal/logger"
	"weather_station/internal/models"

	"github.com/spf13/cast"
	"golang.org/x/time/rate"
)

// Outcome classifies a successful upload response.
type Outcome string

const (
	OutcomeAcknowledged Outcome = "Acknowledged" // Status 0
	OutcomeDirective    Outcome = "Directive"    // Status 1, control keys parsed
	OutcomeRejected     Outcome = "Rejected"     // Status present but not 0 or 1
	OutcomeAmbiguous    Outcome = "Ambiguous"    // JSON object without Status
	OutcomeOpaque       Outcome = "Opaque"       // body not interpreted
)

// ErrorKind tags an UploadError so the engine can react per kind.
type ErrorKind int

const (
	ErrNetwork ErrorKind = iota
	ErrParse
	ErrHTTPStatus
	ErrThrottled
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNetwork:
		return "network"
	case ErrParse:
		return "parse"
	case ErrHTTPStatus:
		return "http_status"
	case ErrThrottled:
		return "throttled"
	default:
		return "unknown"
	}
}

// UploadError is returned by every Uploader on failure.
type UploadError struct {
	Target     models.TargetID
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *UploadError) Error() string {
	if e.Kind == ErrHTTPStatus {
		return fmt.Sprintf("%s upload: %s %d: %v", e.Target, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s upload: %s: %v", e.Target, e.Kind, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// UploadErrorKind returns the kind of an UploadError in err's chain.
func UploadErrorKind(err error) (ErrorKind, bool) {
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue.Kind, true
	}
	return 0, false
}

// IsThrottled reports whether err is a rate limiter refusal.
func IsThrottled(err error) bool {
	k, ok := UploadErrorKind(err)
	return ok && k == ErrThrottled
}

// UploadResult describes a successful upload.
type UploadResult struct {
	Target    models.TargetID
	Outcome   Outcome
	Status    int
	Directive *models.ControlDirective
	Body      string
}

// Uploader performs one upload attempt to one target. It never retries.
type Uploader interface {
	Target() models.TargetID
	Send(ctx context.Context, snap models.WeatherSnapshot, rc models.RuntimeConfig) (UploadResult, error)
}

const maxResponseBytes = 64 << 10

var errThrottled = errors.New("minimum spacing between uploads not reached")

// ---- primary ----

type PrimaryOptions struct {
	URL       string
	StationID string
	Timezone  string
	SI        bool
	Timeout   time.Duration
}

// PrimaryUploader sends the full snapshot to the station's own collector and
// interprets the JSON acknowledgment.
type PrimaryUploader struct {
	base   *url.URL
	opts   PrimaryOptions
	client *http.Client
}

var _ Uploader = (*PrimaryUploader)(nil)

func NewPrimaryUploader(opts PrimaryOptions) (*PrimaryUploader, error) {
	base, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse primary url: %w", err)
	}
	return &PrimaryUploader{
		base:   base,
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
	}, nil
}

func (u *PrimaryUploader) Target() models.TargetID { return models.TargetPrimary }

func (u *PrimaryUploader) Send(ctx context.Context, snap models.WeatherSnapshot, rc models.RuntimeConfig) (UploadResult, error) {
	body, err := httpGet(ctx, u.client, models.TargetPrimary, u.base, u.opts.Timeout, PrimaryPayload(u.opts, snap, rc))
	if err != nil {
		return UploadResult{Target: models.TargetPrimary}, err
	}
	return parsePrimaryResponse(body)
}

// PrimaryPayload builds the query sent to the primary collector.
func PrimaryPayload(opts PrimaryOptions, snap models.WeatherSnapshot, rc models.RuntimeConfig) url.Values {
	local := snap.TakenAt
	utc := local.UTC()

	temp := snap.AirTempF
	if opts.SI {
		temp = snap.AirTempC
	}
	wu := 0
	if rc.SecondaryUploadOn {
		wu = rc.SecondaryIntervalMin
	}

	v := url.Values{}
	v.Set("si", opts.StationID)
	v.Set("t", formatFloat(temp))
	v.Set("rh", formatFloat(snap.Humidity))
	v.Set("p", formatFloat(snap.PressureMb))
	v.Set("dp", formatFloat(snap.DewPointC))
	v.Set("sld", local.Format("2006-01-02"))
	v.Set("slt", local.Format("15:04:05"))
	v.Set("stz", opts.Timezone)
	v.Set("sud", utc.Format("2006-01-02"))
	v.Set("sut", utc.Format("15:04:05"))
	v.Set("pid", snap.AirSensorID)
	v.Set("cf", formatFloat(snap.SecondaryTempC))
	v.Set("cid", snap.SecondarySensorID)
	v.Set("dd", flag(rc.DisplayDim))
	v.Set("do", flag(rc.DisplayOn))
	v.Set("co", flag(rc.SecondaryZoneOn))
	v.Set("wu", strconv.Itoa(wu))
	v.Set("st", string(models.StateCurrent))
	return v
}

func parsePrimaryResponse(body []byte) (UploadResult, error) {
	res := UploadResult{Target: models.TargetPrimary, Body: string(body)}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		if err == nil {
			err = errors.New("response is not a JSON object")
		}
		return res, &UploadError{Target: models.TargetPrimary, Kind: ErrParse, Err: err}
	}

	statusRaw, ok := raw["Status"]
	if !ok {
		res.Outcome = OutcomeAmbiguous
		return res, nil
	}

	status, err := cast.ToIntE(statusRaw)
	if err != nil {
		res.Outcome = OutcomeRejected
		res.Status = -1
		return res, nil
	}
	res.Status = status

	switch status {
	case models.DirectiveStatusOK:
		res.Outcome = OutcomeAcknowledged
	case models.DirectiveStatusUpdate:
		d, err := ParseDirective(raw)
		if err != nil {
			return res, &UploadError{Target: models.TargetPrimary, Kind: ErrParse, Err: err}
		}
		res.Outcome = OutcomeDirective
		res.Directive = &d
	default:
		res.Outcome = OutcomeRejected
	}
	return res, nil
}

// Control keys recognized in a Status 1 response.
const (
	keyShutdown          = "PiShutdown"
	keyReboot            = "PiReboot"
	keyStopApp           = "WeatherPiOff"
	keyDisplayDim        = "DisplayDim"
	keyDisplayOn         = "DisplayOn"
	keyPrimaryInterval   = "PiServerUploadInterval"
	keySecondaryZone     = "ColdFrame"
	keySecondaryInterval = "WUServerUploadInterval"
)

// ParseDirective reads the control keys of a response object. Flags are
// presence-only; numeric keys accept numbers or numeric strings.
func ParseDirective(raw map[string]any) (models.ControlDirective, error) {
	d := models.ControlDirective{Status: models.DirectiveStatusUpdate}
	if s, ok := raw["Status"]; ok {
		d.Status = cast.ToInt(s)
	}

	_, d.Shutdown = raw[keyShutdown]
	_, d.Reboot = raw[keyReboot]
	_, d.StopApp = raw[keyStopApp]

	if v, ok := raw[keyDisplayDim]; ok {
		d.DisplayDim = boolPtr(cast.ToString(v) == "Yes")
	}
	if v, ok := raw[keyDisplayOn]; ok {
		d.DisplayOn = boolPtr(cast.ToString(v) == "Yes")
	}
	if v, ok := raw[keySecondaryZone]; ok {
		d.SecondaryZoneOn = boolPtr(cast.ToString(v) == "On")
	}
	if v, ok := raw[keyPrimaryInterval]; ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			return models.ControlDirective{}, fmt.Errorf("%s: %w", keyPrimaryInterval, err)
		}
		d.PrimaryIntervalMin = &n
	}
	if v, ok := raw[keySecondaryInterval]; ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			return models.ControlDirective{}, fmt.Errorf("%s: %w", keySecondaryInterval, err)
		}
		d.SecondaryIntervalMin = &n
	}
	return d, nil
}

// ---- secondary ----

type SecondaryOptions struct {
	URL        string
	StationID  string
	StationKey string
	Timeout    time.Duration
}

// SecondaryUploader sends a reduced payload to the public weather network.
// The response body is logged and otherwise ignored.
type SecondaryUploader struct {
	base   *url.URL
	opts   SecondaryOptions
	client *http.Client
	log    *logger.Logger
}

var _ Uploader = (*SecondaryUploader)(nil)

func NewSecondaryUploader(opts SecondaryOptions, log *logger.Logger) (*SecondaryUploader, error) {
	base, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse secondary url: %w", err)
	}
	return &SecondaryUploader{
		base:   base,
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		log:    log,
	}, nil
}

func (u *SecondaryUploader) Target() models.TargetID { return models.TargetSecondary }

func (u *SecondaryUploader) Send(ctx context.Context, snap models.WeatherSnapshot, _ models.RuntimeConfig) (UploadResult, error) {
	body, err := httpGet(ctx, u.client, models.TargetSecondary, u.base, u.opts.Timeout, SecondaryPayload(u.opts, snap))
	if err != nil {
		return UploadResult{Target: models.TargetSecondary}, err
	}
	u.log.Debugw("secondary_upload_response", "body", string(body))
	return UploadResult{Target: models.TargetSecondary, Outcome: OutcomeOpaque, Body: string(body)}, nil
}

// SecondaryPayload builds the query sent to the secondary collector.
func SecondaryPayload(opts SecondaryOptions, snap models.WeatherSnapshot) url.Values {
	v := url.Values{}
	v.Set("action", "updateraw")
	v.Set("ID", opts.StationID)
	v.Set("PASSWORD", opts.StationKey)
	v.Set("dateutc", "now")
	v.Set("tempf", formatFloat(snap.AirTempF))
	v.Set("humidity", formatFloat(snap.Humidity))
	v.Set("baromin", formatFloat(snap.PressureInHg))
	return v
}

// ---- rate limiting ----

// RateLimited refuses calls that come sooner than the minimum spacing after
// the previous one. A refused call returns an ErrThrottled UploadError
// without reaching the wrapped uploader.
type RateLimited struct {
	next    Uploader
	limiter *rate.Limiter
}

var _ Uploader = (*RateLimited)(nil)

func NewRateLimited(next Uploader, minSpacing time.Duration) *RateLimited {
	limit := rate.Inf
	if minSpacing > 0 {
		limit = rate.Every(minSpacing)
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(limit, 1)}
}

func (r *RateLimited) Target() models.TargetID { return r.next.Target() }

func (r *RateLimited) Send(ctx context.Context, snap models.WeatherSnapshot, rc models.RuntimeConfig) (UploadResult, error) {
	if !r.limiter.Allow() {
		return UploadResult{Target: r.next.Target()}, &UploadError{Target: r.next.Target(), Kind: ErrThrottled, Err: errThrottled}
	}
	return r.next.Send(ctx, snap, rc)
}

// ---- helpers ----

func httpGet(ctx context.Context, client *http.Client, target models.TargetID, base *url.URL, timeout time.Duration, params url.Values) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	u := *base
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &UploadError{Target: target, Kind: ErrNetwork, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &UploadError{Target: target, Kind: ErrNetwork, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &UploadError{Target: target, Kind: ErrNetwork, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UploadError{
			Target:     target,
			Kind:       ErrHTTPStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", http.StatusText(resp.StatusCode)),
		}
	}
	return body, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func boolPtr(b bool) *bool { return &b }
