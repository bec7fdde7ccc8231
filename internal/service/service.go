package service

import (
	"context"

	"weather_station/internal/models"
	"weather_station/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Control accepts operator directives for the running engine.
type Control interface {
	SubmitDirective(ctx context.Context, raw map[string]any) (models.ControlDirective, error)
}

// Monitoring exposes the latest engine status.
type Monitoring interface {
	GetStatus(ctx context.Context) (StationStatus, error)
	Watch(ctx context.Context) <-chan StationStatus
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.StationEvent, error)
}

// Service aggregates the services used by the HTTP handlers.
type Service struct {
	Control
	Monitoring
	EventLog
	Authorization
}

// NewService wires the repository layer and the running engine into the
// services used by the handlers.
func NewService(repos *repository.Repository, board *StatusBoard, sink DirectiveSink, defaults models.RuntimeConfig, auth AuthConfig) *Service {
	return &Service{
		Control:       NewControlService(sink),
		Monitoring:    NewMonitoringService(board, defaults),
		EventLog:      NewEventLogService(repos.Events),
		Authorization: NewAuthService(repos.Auth, auth),
	}
}
