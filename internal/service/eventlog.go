package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"weather_station/internal/models"
	"weather_station/internal/repository"
)

// ErrInvalidLogFilter wraps every rejection of a log query.
var ErrInvalidLogFilter = errors.New("invalid log filter")

var (
	errInvalidTimeRange = fmt.Errorf("%w: from must not be after to", ErrInvalidLogFilter)
	errUnknownEventType = fmt.Errorf("%w: unknown event type", ErrInvalidLogFilter)
	errUnknownTarget    = fmt.Errorf("%w: unknown upload target", ErrInvalidLogFilter)
)

type EventLogService struct {
	events repository.EventRepo
}

func NewEventLogService(events repository.EventRepo) *EventLogService {
	return &EventLogService{events: events}
}

// List returns the station events matching f, oldest first.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.StationEvent, error) {
	q, err := eventQuery(f)
	if err != nil {
		return nil, err
	}
	return s.events.List(ctx, q)
}

// eventQuery validates f and turns it into a repository query in UTC.
func eventQuery(f LogFilter) (repository.EventQuery, error) {
	q := repository.EventQuery{
		From: normalizeToUTC(f.From),
		To:   normalizeToUTC(f.To),
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return repository.EventQuery{}, errInvalidTimeRange
	}

	if typ := strings.ToUpper(strings.TrimSpace(f.Type)); typ != "" {
		if !models.IsEventType(typ) {
			return repository.EventQuery{}, fmt.Errorf("%w %q", errUnknownEventType, f.Type)
		}
		q.Type = typ
	}

	if strings.TrimSpace(f.Target) != "" {
		id, ok := models.ParseTargetID(f.Target)
		if !ok {
			return repository.EventQuery{}, fmt.Errorf("%w %q", errUnknownTarget, f.Target)
		}
		q.Target = id
	}
	return q, nil
}

// CountByType tallies events per type. Every known type is present, zero or not.
func CountByType(events []models.StationEvent) map[string]int {
	out := make(map[string]int, len(models.EventTypes))
	for _, typ := range models.EventTypes {
		out[typ] = 0
	}
	for _, ev := range events {
		out[ev.Type]++
	}
	return out
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
