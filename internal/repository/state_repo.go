package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"weather_station/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

var _ StateStore = (*StateSQLite)(nil)

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	stationStateRowID = 1

	upsertStateSQL = `
		INSERT INTO station_state (id, status, updated_at, display_dim, display_on,
			secondary_zone_on, secondary_upload_on, secondary_upload_interval)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			updated_at=excluded.updated_at,
			display_dim=excluded.display_dim,
			display_on=excluded.display_on,
			secondary_zone_on=excluded.secondary_zone_on,
			secondary_upload_on=excluded.secondary_upload_on,
			secondary_upload_interval=excluded.secondary_upload_interval
	`

	selectStateSQL = `
		SELECT status, updated_at, display_dim, display_on,
			secondary_zone_on, secondary_upload_on, secondary_upload_interval
		FROM station_state WHERE id=?
	`
)

// Save upserts the station_state row (id always 1). UpdatedAt is stored in UTC.
func (r *StateSQLite) Save(ctx context.Context, s models.PersistedState) error {
	_, err := r.db.ExecContext(ctx, upsertStateSQL,
		stationStateRowID,
		string(s.Status),
		s.UpdatedAt.UTC(),
		s.DisplayDim,
		s.DisplayOn,
		s.SecondaryZoneOn,
		s.SecondaryUploadOn,
		s.SecondaryUploadIntervalMin,
	)
	if err != nil {
		return fmt.Errorf("save station state: %w", err)
	}
	return nil
}

// Load fetches the single station_state row (id=1).
func (r *StateSQLite) Load(ctx context.Context) (models.PersistedState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, stationStateRowID)

	var (
		s      models.PersistedState
		status string
	)
	if err := row.Scan(
		&status,
		&s.UpdatedAt,
		&s.DisplayDim,
		&s.DisplayOn,
		&s.SecondaryZoneOn,
		&s.SecondaryUploadOn,
		&s.SecondaryUploadIntervalMin,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PersistedState{}, ErrStateNotFound
		}
		return models.PersistedState{}, fmt.Errorf("load station state: %w", err)
	}

	st, err := parseStatus(status)
	if err != nil {
		return models.PersistedState{}, err
	}
	s.Status = st
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

var errBadStatus = errors.New("invalid state status")

func parseStatus(s string) (models.StateStatus, error) {
	switch st := models.StateStatus(s); st {
	case models.StateCurrent, models.StateStale, models.StateError:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", errBadStatus, s)
	}
}
