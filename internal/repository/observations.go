package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Observation is one stored current-weather reading.
type Observation struct {
	ID         int64     `db:"id"`
	RunID      uuid.UUID `db:"run_id"` // shared by every reading taken in one scheduler tick
	City       string    `db:"city"`
	Country    string    `db:"country"`
	Latitude   float64   `db:"latitude"`
	Longitude  float64   `db:"longitude"`
	Temp       float64   `db:"temp"`
	TempMin    float64   `db:"temp_min"`
	TempMax    float64   `db:"temp_max"`
	Payload    []byte    `db:"payload"` // upstream JSON body
	ObservedAt time.Time `db:"observed_at"`
}

type ObservationRepository interface {
	EnsureSchema(ctx context.Context) error
	Insert(ctx context.Context, o *Observation) error
	ListByCity(ctx context.Context, city string, limit int) ([]Observation, error)
	ListByRun(ctx context.Context, runID uuid.UUID) ([]Observation, error)
}

// ErrSchemaMissing is returned when the observations table does not exist yet.
var ErrSchemaMissing = errors.New("observations table does not exist")

const schema = `
CREATE TABLE IF NOT EXISTS observations (
    id          BIGSERIAL PRIMARY KEY,
    run_id      UUID             NOT NULL,
    city        TEXT             NOT NULL,
    country     TEXT             NOT NULL DEFAULT '',
    latitude    DOUBLE PRECISION NOT NULL,
    longitude   DOUBLE PRECISION NOT NULL,
    temp        DOUBLE PRECISION NOT NULL,
    temp_min    DOUBLE PRECISION NOT NULL,
    temp_max    DOUBLE PRECISION NOT NULL,
    payload     JSONB            NOT NULL,
    observed_at TIMESTAMPTZ      NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS observations_city_observed_at_idx ON observations (lower(city), observed_at DESC);
CREATE INDEX IF NOT EXISTS observations_run_id_idx ON observations (run_id);
`

const selectColumns = `id, run_id, city, country, latitude, longitude, temp, temp_min, temp_max, payload, observed_at`

type pgRepo struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewObservationRepository(db *sqlx.DB, logger *zap.Logger) ObservationRepository {
	return &pgRepo{db: db, logger: logger}
}

func (r *pgRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		r.logger.Error("failed to create observations schema", zap.Error(err))
		return err
	}
	return nil
}

// Insert stores o and fills in the generated ID and ObservedAt.
func (r *pgRepo) Insert(ctx context.Context, o *Observation) error {
	const q = `
        INSERT INTO observations (run_id, city, country, latitude, longitude, temp, temp_min, temp_max, payload)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, observed_at;
    `
	row := r.db.QueryRowContext(ctx, q,
		o.RunID, o.City, o.Country, o.Latitude, o.Longitude, o.Temp, o.TempMin, o.TempMax, o.Payload)
	if err := row.Scan(&o.ID, &o.ObservedAt); err != nil {
		// SQLSTATE 42P01: undefined_table
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
			r.logger.Error("observations table missing", zap.Error(err))
			return ErrSchemaMissing
		}
		r.logger.Error("failed to insert observation",
			zap.String("city", o.City),
			zap.String("run_id", o.RunID.String()),
			zap.Error(err),
		)
		return err
	}

	r.logger.Debug("observation stored",
		zap.Int64("id", o.ID),
		zap.String("city", o.City),
		zap.Float64("temp", o.Temp),
	)
	return nil
}

// ListByCity returns up to limit readings for city, newest first. The match ignores case.
func (r *pgRepo) ListByCity(ctx context.Context, city string, limit int) ([]Observation, error) {
	q := `SELECT ` + selectColumns + `
        FROM observations
        WHERE lower(city) = lower($1)
        ORDER BY observed_at DESC
        LIMIT $2;`

	var obs []Observation
	if err := r.db.SelectContext(ctx, &obs, q, city, limit); err != nil {
		r.logger.Error("failed to list observations by city", zap.String("city", city), zap.Error(err))
		return nil, err
	}
	return obs, nil
}

func (r *pgRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]Observation, error) {
	q := `SELECT ` + selectColumns + `
        FROM observations
        WHERE run_id = $1
        ORDER BY id;`

	var obs []Observation
	if err := r.db.SelectContext(ctx, &obs, q, runID); err != nil {
		r.logger.Error("failed to list observations by run", zap.String("run_id", runID.String()), zap.Error(err))
		return nil, err
	}
	return obs, nil
}
