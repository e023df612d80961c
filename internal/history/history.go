// Package history keeps a local sqlite record of every status snapshot, so
// gaps in broker or report delivery do not lose telemetry.
package history

import (
	"context"
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"sync"

	"aurora-pvlogd/internal/errors"
	"aurora-pvlogd/internal/logger"
	"aurora-pvlogd/internal/telemetry"

	_ "github.com/mattn/go-sqlite3"
)

const defaultDirPerm = 0o755

// Recorder persists snapshots.
type Recorder interface {
	Record(ctx context.Context, snap *telemetry.Snapshot) error
	Close() error
}

type Config struct {
	Enabled bool
	DBPath  string
}

func (c Config) Validate() error {
	if c.Enabled && c.DBPath == "" {
		return errors.New().New(ErrInvalidDBPath)
	}

	return nil
}

type noopRecorder struct{}

func (*noopRecorder) Record(_ context.Context, _ *telemetry.Snapshot) error { return nil }
func (*noopRecorder) Close() error                                          { return nil }

type sqliteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRecorder(cfg Config) (Recorder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		logger.Debug().Msg("Snapshot history disabled, using no-op recorder")
		return &noopRecorder{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Str("path", cfg.DBPath).Msg("Snapshot history initialized")

	return &sqliteRecorder{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS snapshots (
            last_update INTEGER PRIMARY KEY,
            energy_today INTEGER,
            energy_total INTEGER,
            last_report_read INTEGER,
            last_report_sent INTEGER,
            p_in REAL,
            p_in_1 REAL,
            p_in_2 REAL,
            grid_voltage REAL,
            grid_frequency REAL,
            temp_inverter REAL,
            temp_booster REAL
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrStorageInit, err)
	}

	return nil
}

func (r *sqliteRecorder) Record(ctx context.Context, snap *telemetry.Snapshot) error {
	errFactory := errors.New()

	if snap == nil {
		return errFactory.New(ErrInvalidSnapshot)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO snapshots (
            last_update, energy_today, energy_total,
            last_report_read, last_report_sent,
            p_in, p_in_1, p_in_2,
            grid_voltage, grid_frequency,
            temp_inverter, temp_booster
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(last_update) DO UPDATE SET
            energy_today = excluded.energy_today,
            energy_total = excluded.energy_total,
            last_report_read = excluded.last_report_read,
            last_report_sent = excluded.last_report_sent,
            p_in = excluded.p_in,
            p_in_1 = excluded.p_in_1,
            p_in_2 = excluded.p_in_2,
            grid_voltage = excluded.grid_voltage,
            grid_frequency = excluded.grid_frequency,
            temp_inverter = excluded.temp_inverter,
            temp_booster = excluded.temp_booster
    `,
		snap.LastUpdate,
		snap.EnergyToday,
		snap.EnergyTotal,
		snap.LastReportRead,
		snap.LastReportSent,
		nullable(snap.PIn),
		nullable(snap.PIn1),
		nullable(snap.PIn2),
		nullable(snap.GridVoltage),
		nullable(snap.GridFrequency),
		nullable(snap.TempInverter),
		nullable(snap.TempBooster),
	)
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	return nil
}

// nullable maps the unavailable sentinel to SQL NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: v, Valid: true}
}
