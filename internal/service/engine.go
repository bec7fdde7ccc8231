package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weather_station/internal/display"
	"weather_station/internal/logger"
	"weather_station/internal/models"
	"weather_station/internal/repository"
	"weather_station/internal/system"
)

const (
	samplingSeconds    = 5
	directiveQueueSize = 8
)

const (
	welcomeText = "Weather Pi"
	goodbyeText = "GoodBye"
)

// ErrDirectiveQueueFull is returned when operator directives arrive faster than
// the engine applies them.
var ErrDirectiveQueueFull = errors.New("directive queue is full")

// EngineState is everything the tick loop mutates. Only the engine goroutine
// touches it.
type EngineState struct {
	Snapshot        models.WeatherSnapshot
	Runtime         models.RuntimeConfig
	Persisted       models.PersistedState
	KeepRunning     bool
	Reboot          bool
	Shutdown        bool
	LastMinute      int
	LastDisplayTemp int
	LowLight        bool
}

// Clock abstracts wall time so the loop can be driven in tests.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock { return systemClock{} }

type EngineConfig struct {
	DisplayIntervalMin int
	Sunrise            int
	Sunset             int
	GoodbyePause       time.Duration
}

// EngineDeps are the collaborators of the engine. Events and FailureLog may be nil.
type EngineDeps struct {
	Sampler    *Sampler
	Uploaders  []Uploader
	Store      repository.StateStore
	Events     repository.EventRepo
	FailureLog repository.FailureLog
	Failures   *FailurePolicy
	Status     *StatusBoard
	Display    display.Driver
	Power      system.Power
	Clock      Clock
	Log        *logger.Logger
}

// Engine runs the once-per-second tick loop.
type Engine struct {
	cfg        EngineConfig
	sampler    *Sampler
	scheduler  *Scheduler
	uploaders  map[models.TargetID]Uploader
	applier    *Applier
	failures   *FailurePolicy
	store      repository.StateStore
	events     repository.EventRepo
	failureLog repository.FailureLog
	status     *StatusBoard
	display    display.Driver
	power      system.Power
	clock      Clock
	log        *logger.Logger

	directives chan models.ControlDirective
	notes      NotificationState
	state      EngineState
}

func NewEngine(cfg EngineConfig, rc models.RuntimeConfig, deps EngineDeps) *Engine {
	if deps.Clock == nil {
		deps.Clock = SystemClock()
	}
	if deps.Display == nil {
		deps.Display = display.Nop{}
	}
	if deps.Status == nil {
		deps.Status = NewStatusBoard()
	}
	if deps.Failures == nil {
		deps.Failures = NewFailurePolicy(0, false, false)
	}

	uploaders := make(map[models.TargetID]Uploader, len(deps.Uploaders))
	for _, u := range deps.Uploaders {
		uploaders[u.Target()] = u
	}

	return &Engine{
		cfg:        cfg,
		sampler:    deps.Sampler,
		scheduler:  NewScheduler(rc),
		uploaders:  uploaders,
		applier:    NewApplier(deps.Display, Daylight{Sunrise: cfg.Sunrise, Sunset: cfg.Sunset}, deps.Log),
		failures:   deps.Failures,
		store:      deps.Store,
		events:     deps.Events,
		failureLog: deps.FailureLog,
		status:     deps.Status,
		display:    deps.Display,
		power:      deps.Power,
		clock:      deps.Clock,
		log:        deps.Log,
		directives: make(chan models.ControlDirective, directiveQueueSize),
		state: EngineState{
			Runtime:     rc,
			Persisted:   models.PersistedFrom(rc, models.StateStale, time.Time{}),
			KeepRunning: true,
		},
	}
}

// Enqueue hands an operator directive to the engine. It is applied at the
// start of the next tick. Safe for concurrent use.
func (e *Engine) Enqueue(d models.ControlDirective) error {
	select {
	case e.directives <- d:
		return nil
	default:
		return ErrDirectiveQueueFull
	}
}

// State returns a copy of the engine state. Not safe while Run is active.
func (e *Engine) State() EngineState { return e.state }

// Start loads the persisted state and shows the welcome frame.
func (e *Engine) Start(ctx context.Context) {
	now := e.clock.Now()
	e.state.LastMinute = (now.Minute() + 59) % 60

	ps, err := e.store.Load(ctx)
	switch {
	case err == nil:
		e.state.Runtime = ps.ApplyTo(e.state.Runtime)
		e.state.Persisted = ps
		e.log.Infow("state_loaded",
			"status", ps.Status,
			"updated_at", ps.UpdatedAt,
			"display_dim", ps.DisplayDim,
			"display_on", ps.DisplayOn,
			"secondary_zone_on", ps.SecondaryZoneOn,
			"secondary_upload_on", ps.SecondaryUploadOn,
			"secondary_upload_interval_min", ps.SecondaryUploadIntervalMin,
		)
	case errors.Is(err, repository.ErrStateNotFound):
		e.state.Persisted = models.PersistedFrom(e.state.Runtime, models.StateStale, now)
		e.log.Infow("state_not_found_using_defaults")
	default:
		e.state.Persisted = models.PersistedFrom(e.state.Runtime, models.StateStale, now)
		e.log.Warnw("state_load_failed_using_defaults", "err", err)
	}
	e.scheduler.Sync(e.state.Runtime)

	e.state.LowLight = false
	e.display.SetLowLight(false)
	e.display.ShowMessage(welcomeText, models.ColorYellow, models.ColorBlue)
	e.display.Clear()
	if e.state.Runtime.DisplayOn {
		e.display.RenderNumber(e.state.LastDisplayTemp, DisplayColor(e.state.LastDisplayTemp))
	}

	e.appendEvent(ctx, now, models.EventStartup, "station started", map[string]any{
		"state_status": e.state.Persisted.Status,
	})
	e.publish(now)
}

// Run calls Start, then ticks once per second until KeepRunning is cleared or
// ctx is cancelled, then performs the exit sequence.
func (e *Engine) Run(ctx context.Context) {
	e.Start(ctx)
	e.log.Infow("engine_loop_started")

	for e.state.KeepRunning {
		if ctx.Err() != nil {
			e.state.KeepRunning = false
			break
		}

		e.Tick(ctx, e.clock.Now())
		if !e.state.KeepRunning {
			break
		}

		now := e.clock.Now()
		e.clock.Sleep(ctx, now.Truncate(time.Second).Add(time.Second).Sub(now))
	}

	e.exit(context.WithoutCancel(ctx))
}

// Tick runs one iteration of the loop for the given wall time.
func (e *Engine) Tick(ctx context.Context, now time.Time) {
	e.drainDirectives(ctx, now)

	if now.Second()%samplingSeconds != 0 {
		return
	}

	e.state.Snapshot = e.sampler.Sample(now, e.state.Runtime, &e.notes)
	e.display.RenderTrend(e.state.Snapshot.Trend)

	if minute := now.Minute(); minute != e.state.LastMinute {
		e.state.LastMinute = minute
		e.refreshDisplay(now)
		e.runUploads(ctx, now)
	}

	e.flushState(ctx, now)
	e.renderNotifications()
	e.publish(now)
}

func (e *Engine) drainDirectives(ctx context.Context, now time.Time) {
	for {
		select {
		case d := <-e.directives:
			e.applyDirective(ctx, now, "operator", d)
		default:
			return
		}
	}
}

func (e *Engine) applyDirective(ctx context.Context, now time.Time, source string, d models.ControlDirective) {
	ch := e.applier.Apply(&e.state, d, now.Hour())
	e.scheduler.Sync(e.state.Runtime)
	if !ch.Any() {
		return
	}
	e.appendEvent(ctx, now, models.EventDirective, fmt.Sprintf("%s directive applied", source), map[string]any{
		"source":  source,
		"changes": ch,
	})
}

func (e *Engine) refreshDisplay(now time.Time) {
	if !IsDue(now.Minute(), e.cfg.DisplayIntervalMin) {
		return
	}

	if on := e.lowLight(now.Hour()); on != e.state.LowLight {
		e.state.LowLight = on
		e.display.SetLowLight(on)
	}

	temp := e.state.Snapshot.DisplayTemp
	if temp != e.state.LastDisplayTemp && e.state.Runtime.DisplayOn {
		e.display.Clear()
		e.display.RenderNumber(temp, DisplayColor(temp))
	}
	e.state.LastDisplayTemp = temp
}

// lowLight is on when dim is requested or the hour is outside daylight.
func (e *Engine) lowLight(hour int) bool {
	return e.applier.daylight.LowLight(e.state.Runtime.DisplayDim, hour)
}

func (e *Engine) runUploads(ctx context.Context, now time.Time) {
	minute := now.Minute()
	for _, id := range []models.TargetID{models.TargetPrimary, models.TargetSecondary} {
		// a primary directive may have changed the secondary schedule
		e.scheduler.Sync(e.state.Runtime)
		if !e.scheduler.Check(id, minute) {
			continue
		}

		u, ok := e.uploaders[id]
		if !ok {
			e.scheduler.Skip(id, "no uploader")
			continue
		}

		switch id {
		case models.TargetPrimary:
			e.uploadPrimary(ctx, now, u)
		case models.TargetSecondary:
			e.uploadSecondary(ctx, now, u)
		}
	}
}

func (e *Engine) uploadPrimary(ctx context.Context, now time.Time, u Uploader) {
	e.notes.Clear(models.ChannelDataLoad)
	e.notes.Clear(models.ChannelPrimaryUpload)

	e.scheduler.Begin(models.TargetPrimary)
	res, err := u.Send(ctx, e.state.Snapshot, e.state.Runtime)
	if err != nil {
		if IsThrottled(err) {
			e.scheduler.Skip(models.TargetPrimary, ErrThrottled.String())
			e.log.Infow("primary_upload_throttled")
			return
		}
		e.primaryFailed(ctx, now, err)
		return
	}

	e.failures.RecordSuccess()
	e.scheduler.Complete(models.TargetPrimary, true, string(res.Outcome))

	switch res.Outcome {
	case OutcomeAcknowledged:
		e.log.Debugw("primary_upload_ok", "status", res.Status)
	case OutcomeDirective:
		e.log.Infow("primary_upload_directive", "body", res.Body)
		e.applyDirective(ctx, now, string(models.TargetPrimary), *res.Directive)
	case OutcomeRejected:
		e.notes.Raise(models.ChannelDataLoad)
		e.log.Warnw("primary_upload_rejected", "status", res.Status, "body", res.Body)
	case OutcomeAmbiguous:
		e.notes.Raise(models.ChannelDataLoad)
		e.log.Warnw("primary_upload_no_status", "body", res.Body)
	}
}

func (e *Engine) primaryFailed(ctx context.Context, now time.Time, err error) {
	kind, _ := UploadErrorKind(err)
	e.scheduler.Complete(models.TargetPrimary, false, kind.String())
	e.notes.Raise(models.ChannelPrimaryUpload)
	e.uploadFailed(ctx, now, models.TargetPrimary, kind, err)

	if e.failures.ShouldRecord(now.Minute()) && e.failureLog != nil {
		snap := e.state.Snapshot
		rec := models.FailureRecord{
			LocalTime:         now,
			UTCTime:           now.UTC(),
			Temp:              snap.AirTempC,
			Humidity:          snap.Humidity,
			Pressure:          snap.PressureMb,
			DewPoint:          snap.DewPointC,
			SecondaryTemp:     snap.SecondaryTempC,
			AirSensorID:       snap.AirSensorID,
			SecondarySensorID: snap.SecondarySensorID,
		}
		if err := e.failureLog.Append(rec); err != nil {
			e.log.Warnw("failure_record_write_failed", "err", err)
		}
	}

	if e.failures.RecordFailure() {
		e.state.KeepRunning = false
		e.state.Reboot = true
		e.log.Errorw("reboot_excessive_upload_failures", "consecutive", e.failures.Consecutive())
		e.appendEvent(ctx, now, models.EventRebootRequested, "excessive primary upload failures", map[string]any{
			"consecutive": e.failures.Consecutive(),
		})
	}
}

func (e *Engine) uploadSecondary(ctx context.Context, now time.Time, u Uploader) {
	e.scheduler.Begin(models.TargetSecondary)
	res, err := u.Send(ctx, e.state.Snapshot, e.state.Runtime)
	if err != nil {
		if IsThrottled(err) {
			e.scheduler.Skip(models.TargetSecondary, ErrThrottled.String())
			e.log.Infow("secondary_upload_throttled")
			return
		}
		kind, _ := UploadErrorKind(err)
		e.scheduler.Complete(models.TargetSecondary, false, kind.String())
		e.notes.Raise(models.ChannelSecondaryUpload)
		e.uploadFailed(ctx, now, models.TargetSecondary, kind, err)
		return
	}

	e.scheduler.Complete(models.TargetSecondary, true, string(res.Outcome))
	e.notes.Clear(models.ChannelSecondaryUpload)
}

// uploadFailed logs a failed attempt and appends it to the event log with the
// target's consecutive failure count.
func (e *Engine) uploadFailed(ctx context.Context, now time.Time, id models.TargetID, kind ErrorKind, err error) {
	tg, _ := e.scheduler.Target(id)
	e.log.Warnw("upload_failed",
		"target", id,
		"kind", kind.String(),
		"consecutive", tg.ConsecutiveFailures,
		"err", err,
	)
	e.appendEvent(ctx, now, models.EventUploadFailed, fmt.Sprintf("%s upload failed", id), map[string]any{
		"target":      id,
		"kind":        kind.String(),
		"consecutive": tg.ConsecutiveFailures,
		"error":       err.Error(),
	})
}

// flushState writes the persisted state when it is Stale. A failed write
// leaves it in Error until the next change.
func (e *Engine) flushState(ctx context.Context, now time.Time) {
	if e.state.Persisted.Status != models.StateStale {
		return
	}

	ps := models.PersistedFrom(e.state.Runtime, models.StateCurrent, now)
	if err := e.store.Save(ctx, ps); err != nil {
		e.state.Persisted.Status = models.StateError
		e.log.Warnw("state_save_failed", "err", err)
		e.appendEvent(ctx, now, models.EventStateWrite, "unable to save state", map[string]any{"error": err.Error()})
		return
	}
	e.state.Persisted = ps
	e.log.Debugw("state_saved", "updated_at", ps.UpdatedAt)
}

func (e *Engine) renderNotifications() {
	if !e.state.Runtime.DisplayOn {
		return
	}
	if active := e.notes.Active(); len(active) > 0 {
		e.display.RenderNotificationSweep(active)
	}
	e.display.RenderNotificationSweep(nil)
}

func (e *Engine) publish(now time.Time) {
	e.status.Publish(StationStatus{
		UpdatedAt:           now,
		Snapshot:            e.state.Snapshot,
		Runtime:             e.state.Runtime,
		Persisted:           e.state.Persisted,
		Notifications:       e.notes.Flags(),
		Targets:             e.scheduler.Targets(),
		ConsecutiveFailures: e.failures.Consecutive(),
		KeepRunning:         e.state.KeepRunning,
		RebootRequested:     e.state.Reboot,
		ShutdownRequested:   e.state.Shutdown,
	})
}

// exit shows the goodbye frame, then calls the power collaborators for any
// terminal flag that was set.
func (e *Engine) exit(ctx context.Context) {
	now := e.clock.Now()
	e.publish(now)
	e.log.Infow("engine_exiting", "reboot", e.state.Reboot, "shutdown", e.state.Shutdown)

	e.display.Clear()
	e.display.ShowMessage(goodbyeText, models.ColorYellow, models.ColorBlue)
	if e.cfg.GoodbyePause > 0 {
		e.clock.Sleep(ctx, e.cfg.GoodbyePause)
	}
	e.display.Clear()

	if e.state.Shutdown {
		e.appendEvent(ctx, now, models.EventShutdown, "shutdown requested", nil)
		if e.power != nil {
			if err := e.power.Shutdown(ctx); err != nil {
				e.log.Errorw("shutdown_failed", "err", err)
			}
		}
	}
	if e.state.Reboot && e.power != nil {
		if err := e.power.Reboot(ctx); err != nil {
			e.log.Errorw("reboot_failed", "err", err)
		}
	}
}

func (e *Engine) appendEvent(ctx context.Context, now time.Time, typ, desc string, meta map[string]any) {
	if e.events == nil {
		return
	}
	ev := models.StationEvent{OccurredAt: now, Type: typ, Description: desc}
	if meta != nil {
		ev.Metadata = meta
	}
	if err := e.events.Append(ctx, ev); err != nil {
		e.log.Debugw("event_append_failed", "type", typ, "err", err)
	}
}
