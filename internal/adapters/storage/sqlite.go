package storage

// sqlite.go: histórico de runs en SQLite.
//
// Estrategia:
//   - `runs`: una fila por ejecución con sus parámetros.
//   - `marks`: una fila por (run, ciclo, strike, tipo). Los precios ausentes son NULL.
//   - Cada ciclo se escribe en una sola transacción: o entra entero o no entra.
//   - Prune automático al arrancar: runs de más de 30 días con sus marks.

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alejandrodnm/optmark/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    currency    TEXT    NOT NULL,
    expiry      TEXT    NOT NULL,
    strikes     TEXT    NOT NULL,
    interval_ms INTEGER NOT NULL,
    iterations  INTEGER NOT NULL,
    started_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS marks (
    run_id      TEXT    NOT NULL,
    cycle       INTEGER NOT NULL,
    ts          INTEGER NOT NULL,
    strike      REAL    NOT NULL,
    option_type TEXT    NOT NULL,
    quoted      REAL,
    computed    REAL,
    PRIMARY KEY (run_id, cycle, strike, option_type)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
`

const retentionRuns = 30 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// StartRun registra los parámetros del run.
func (s *SQLiteStorage) StartRun(ctx context.Context, run domain.Run) error {
	strikes, err := json.Marshal(run.Strikes)
	if err != nil {
		return fmt.Errorf("storage.StartRun: encode strikes: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, currency, expiry, strikes, interval_ms, iterations, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Currency), run.Expiry.Code, string(strikes),
		run.Interval.Milliseconds(), run.Iterations, run.StartedAt.UTC().UnixNano(),
	); err != nil {
		return fmt.Errorf("storage.StartRun: insert run %s: %w", run.ID, err)
	}
	return nil
}

// WriteCycle persiste todas las filas del ciclo en una transacción.
func (s *SQLiteStorage) WriteCycle(ctx context.Context, cycle domain.Cycle) error {
	if len(cycle.Records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.WriteCycle: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO marks (run_id, cycle, ts, strike, option_type, quoted, computed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, cycle, strike, option_type) DO UPDATE SET
			ts       = excluded.ts,
			quoted   = excluded.quoted,
			computed = excluded.computed`)
	if err != nil {
		return fmt.Errorf("storage.WriteCycle: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range cycle.Records {
		if _, err := stmt.ExecContext(ctx,
			cycle.RunID, cycle.Index, r.Timestamp.UTC().UnixNano(), r.Strike, string(r.Kind),
			nullFloat(r.Quoted), nullFloat(r.Computed),
		); err != nil {
			return fmt.Errorf("storage.WriteCycle: insert %v %s: %w", r.Strike, r.Kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.WriteCycle: commit: %w", err)
	}
	return nil
}

// GetCycles devuelve los ciclos de un run ordenados por índice, con las filas
// en el mismo orden en que se emitieron.
func (s *SQLiteStorage) GetCycles(ctx context.Context, runID string) ([]domain.Cycle, error) {
	var currency, expiry string
	err := s.db.QueryRowContext(ctx, `SELECT currency, expiry FROM runs WHERE id = ?`, runID).
		Scan(&currency, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage.GetCycles: run %s: %w", runID, domain.ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("storage.GetCycles: run %s: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT cycle, ts, strike, option_type, quoted, computed
		FROM marks
		WHERE run_id = ?
		ORDER BY cycle ASC, strike ASC, option_type ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetCycles: query: %w", err)
	}
	defer rows.Close()

	var cycles []domain.Cycle
	for rows.Next() {
		var (
			index    int
			tsNanos  int64
			strike   float64
			kind     string
			quoted   sql.NullFloat64
			computed sql.NullFloat64
		)
		if err := rows.Scan(&index, &tsNanos, &strike, &kind, &quoted, &computed); err != nil {
			return nil, fmt.Errorf("storage.GetCycles: scan: %w", err)
		}

		ts := time.Unix(0, tsNanos).UTC()
		if len(cycles) == 0 || cycles[len(cycles)-1].Index != index {
			cycles = append(cycles, domain.Cycle{
				RunID:     runID,
				Index:     index,
				Currency:  domain.Currency(currency),
				Expiry:    expiry,
				Timestamp: ts,
			})
		}
		c := &cycles[len(cycles)-1]
		c.Records = append(c.Records, domain.Record{
			Timestamp: ts,
			Strike:    strike,
			Kind:      domain.OptionKind(kind),
			Quoted:    floatPtr(quoted),
			Computed:  floatPtr(computed),
		})
	}
	return cycles, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld elimina runs fuera de la ventana de retención junto con sus marks.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRuns).UnixNano()
	s.db.ExecContext(ctx, `DELETE FROM marks WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, cutoff)
	s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return domain.PriceOf(v.Float64)
}
