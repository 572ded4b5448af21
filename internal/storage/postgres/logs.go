package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bingbr/league-timeline/internal/storage/logs"
)

func (db *Database) CreateLogTable(ctx context.Context) error {
	return db.createTable(ctx, createLogTableSQL, "create timeline_logs table")
}

// WriteLog implements logs.Sink.
func (db *Database) WriteLog(ctx context.Context, rec logs.Record) error {
	if err := db.ensureReady(); err != nil {
		return err
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	if rec.Attrs == nil {
		rec.Attrs = map[string]any{}
	}
	payload, err := json.Marshal(rec.Attrs)
	if err != nil {
		return fmt.Errorf("marshal log attrs: %w", err)
	}
	if _, err := db.pool.Exec(ctx, insertLogSQL,
		rec.Time.UTC(), rec.Level, rec.Message, nullIfEmpty(rec.Command), nullIfEmpty(rec.MatchID), payload,
	); err != nil {
		return fmt.Errorf("insert log record: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

const insertLogSQL = `
INSERT INTO timeline_logs (logged_at, level, message, command, match_id, attrs)
VALUES ($1, $2, $3, $4, $5, $6::jsonb)
`

const createLogTableSQL = `
CREATE TABLE IF NOT EXISTS timeline_logs (
	id bigserial PRIMARY KEY,
	logged_at timestamptz NOT NULL,
	level text NOT NULL,
	message text NOT NULL,
	command text,
	match_id text,
	attrs jsonb NOT NULL DEFAULT '{}'::jsonb
);
CREATE INDEX IF NOT EXISTS timeline_logs_match_id_idx ON timeline_logs (match_id) WHERE match_id IS NOT NULL
`
