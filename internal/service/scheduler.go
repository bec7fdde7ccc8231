package service

import "weather_station/internal/models"

// IsDue reports whether a target with the given interval is due at minute.
func IsDue(minute, interval int) bool {
	if interval <= 0 {
		return false
	}
	return minute == 0 || minute%interval == 0
}

// Scheduler tracks the phase of each upload target. Targets are always
// evaluated in a fixed order: primary, then secondary.
type Scheduler struct {
	targets []models.UploadTarget
}

func NewScheduler(rc models.RuntimeConfig) *Scheduler {
	s := &Scheduler{targets: []models.UploadTarget{
		{ID: models.TargetPrimary, Phase: models.PhaseIdle},
		{ID: models.TargetSecondary, Phase: models.PhaseIdle},
	}}
	s.Sync(rc)
	return s
}

// Sync refreshes enabled flags and intervals from the runtime config.
func (s *Scheduler) Sync(rc models.RuntimeConfig) {
	for i := range s.targets {
		t := &s.targets[i]
		switch t.ID {
		case models.TargetPrimary:
			t.Enabled, t.IntervalMinutes = rc.PrimaryUploadOn, rc.PrimaryIntervalMin
		case models.TargetSecondary:
			t.Enabled, t.IntervalMinutes = rc.SecondaryUploadOn, rc.SecondaryIntervalMin
		}
	}
}

// Check moves target id to PhaseDue when it is enabled and due at minute.
func (s *Scheduler) Check(id models.TargetID, minute int) bool {
	t := s.find(id)
	if t == nil || !t.Enabled || !IsDue(minute, t.IntervalMinutes) {
		return false
	}
	t.Phase = models.PhaseDue
	return true
}

// Begin marks a due target as in flight.
func (s *Scheduler) Begin(id models.TargetID) {
	if t := s.find(id); t != nil {
		t.Phase = models.PhaseInFlight
	}
}

// Complete records the attempt outcome, updates the target's failure counter
// and returns the phase the attempt ended in. The target is Idle afterwards.
func (s *Scheduler) Complete(id models.TargetID, ok bool, outcome string) models.TargetPhase {
	t := s.find(id)
	if t == nil {
		return models.PhaseIdle
	}

	end := models.PhaseSuccess
	if ok {
		t.ConsecutiveFailures = 0
	} else {
		end = models.PhaseFailed
		t.ConsecutiveFailures++
	}
	t.LastOutcome = outcome
	t.Phase = models.PhaseIdle
	return end
}

// Skip returns a due target to Idle without counting an attempt.
func (s *Scheduler) Skip(id models.TargetID, reason string) {
	if t := s.find(id); t != nil {
		t.LastOutcome = reason
		t.Phase = models.PhaseIdle
	}
}

// Target returns a copy of target id.
func (s *Scheduler) Target(id models.TargetID) (models.UploadTarget, bool) {
	if t := s.find(id); t != nil {
		return *t, true
	}
	return models.UploadTarget{}, false
}

// Targets returns a copy of all targets in evaluation order.
func (s *Scheduler) Targets() []models.UploadTarget {
	out := make([]models.UploadTarget, len(s.targets))
	copy(out, s.targets)
	return out
}

func (s *Scheduler) find(id models.TargetID) *models.UploadTarget {
	for i := range s.targets {
		if s.targets[i].ID == id {
			return &s.targets[i]
		}
	}
	return nil
}
