package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"weather_station/internal/models"
)

// ErrStateNotFound is returned by a StateStore that has never been written.
var ErrStateNotFound = errors.New("persisted state not found")

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.Operator, error)
}

// StateStore keeps the durable snapshot of the runtime configuration.
// Save overwrites the whole snapshot; Load never returns a partial one.
type StateStore interface {
	Save(ctx context.Context, s models.PersistedState) error
	Load(ctx context.Context) (models.PersistedState, error)
}

// EventQuery selects station events. Zero fields do not filter.
type EventQuery struct {
	From   time.Time // inclusive
	To     time.Time // inclusive
	Type   string
	Target models.TargetID // matches the "target" key of the event metadata
}

type EventRepo interface {
	Append(ctx context.Context, e models.StationEvent) error
	List(ctx context.Context, q EventQuery) ([]models.StationEvent, error)
}

// FailureLog records diagnostic rows for failed primary uploads.
type FailureLog interface {
	Append(rec models.FailureRecord) error
}

type Repository struct {
	State  StateStore
	Events EventRepo
	Auth   Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		State:  NewStateSQLite(db),
		Events: NewEventSQLite(db),
		Auth:   NewOperatorRepository(db),
	}
}
