package service

import (
	"context"
	"time"

	"weather_station/internal/models"
)

type MonitoringService struct {
	board    *StatusBoard
	defaults models.RuntimeConfig
}

func NewMonitoringService(board *StatusBoard, defaults models.RuntimeConfig) *MonitoringService {
	return &MonitoringService{board: board, defaults: defaults}
}

// GetStatus returns the latest published engine status.
// Before the engine publishes anything it returns a baseline built from the defaults.
func (s *MonitoringService) GetStatus(ctx context.Context) (StationStatus, error) {
	if err := ctx.Err(); err != nil {
		return StationStatus{}, err
	}
	st, ok := s.board.Current()
	if !ok {
		return s.baselineStatus(), nil
	}
	st.UpdatedAt = normalizeToUTC(st.UpdatedAt)
	return st, nil
}

// Watch streams every status the engine publishes after the call. The
// channel is closed once ctx is done. A slow reader only sees the newest status.
func (s *MonitoringService) Watch(ctx context.Context) <-chan StationStatus {
	updates, cancel := s.board.Subscribe()
	out := make(chan StationStatus)
	go func() {
		defer close(out)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case st, ok := <-updates:
				if !ok {
					return
				}
				st.UpdatedAt = normalizeToUTC(st.UpdatedAt)
				select {
				case out <- st:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// baselineStatus is reported while the engine is still starting.
func (s *MonitoringService) baselineStatus() StationStatus {
	now := time.Now().UTC()
	return StationStatus{
		UpdatedAt:     now,
		Runtime:       s.defaults,
		Persisted:     models.PersistedFrom(s.defaults, models.StateStale, now),
		Notifications: (&NotificationState{}).Flags(),
		Targets:       NewScheduler(s.defaults).Targets(),
		KeepRunning:   true,
	}
}
