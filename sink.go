package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/pingcap/errors"
	plog "github.com/pingcap/log"
	"go.uber.org/zap"
)

const createResultTable = `
CREATE TABLE IF NOT EXISTS callbench_result (
  run_id char(36) NOT NULL,
  target varchar(64) NOT NULL,
  size double NOT NULL,
  calls bigint NOT NULL,
  elapsed_ns bigint NOT NULL,
  per_call_ns double NOT NULL,
  created_at timestamp NOT NULL DEFAULT CURRENT_TIMESTAMP,
  KEY run_target (run_id, target)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin
`

// ResultSink persists per-round measurements to MySQL. A nil sink is
// valid and means persistence is disabled.
type ResultSink struct {
	DB    *sql.DB
	RunID uuid.UUID
}

// NewResultSink connects to the configured result database. It returns
// (nil, nil) when no database host is configured.
func NewResultSink(cfg *BenchConfig) (*ResultSink, error) {
	if cfg.DBHost == "" {
		return nil, nil
	}

	db, err := sql.Open("mysql", buildSinkDSN(cfg))
	if err != nil {
		return nil, errors.Annotate(err, "open result database failed")
	}
	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Minute)

	sink := &ResultSink{DB: db, RunID: uuid.New()}
	plog.Info("result sink enabled",
		zap.String("host", cfg.DBHost),
		zap.String("db", cfg.DBName),
		zap.String("runID", sink.RunID.String()))
	return sink, nil
}

// buildSinkDSN builds the MySQL DSN for the result sink.
func buildSinkDSN(cfg *BenchConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

// EnsureTable creates the result table if it does not exist.
func (s *ResultSink) EnsureTable(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, createResultTable); err != nil {
		return errors.Annotate(err, "create result table failed")
	}
	return nil
}

// InsertRound stores one round measurement.
func (s *ResultSink) InsertRound(ctx context.Context, round RoundResult) error {
	const insert = `
INSERT INTO callbench_result (run_id, target, size, calls, elapsed_ns, per_call_ns)
VALUES (?, ?, ?, ?, ?, ?)`
	perCall := 0.0
	if round.Calls > 0 {
		perCall = float64(round.Elapsed.Nanoseconds()) / float64(round.Calls)
	}
	_, err := s.DB.ExecContext(ctx, insert,
		s.RunID.String(),
		round.Spec.Name,
		round.Spec.Size,
		round.Calls,
		round.Elapsed.Nanoseconds(),
		perCall)
	if err != nil {
		return errors.Trace(err)
	}
	return nil
}

// Close closes the sink connection.
func (s *ResultSink) Close() {
	if err := s.DB.Close(); err != nil {
		plog.Error("failed to close result sink", zap.Error(err))
	}
}
