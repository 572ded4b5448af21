package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bingbr/league-timeline/internal/timeline"
)

// StoredFirstDrake is a first_drakes row.
type StoredFirstDrake struct {
	MatchID    string
	Summary    timeline.FirstDrakeSummary
	AnalyzedAt time.Time
}

func (db *Database) CreateAnalysisTables(ctx context.Context) error {
	return db.createTable(ctx, createAnalysisTablesSQL, "create analysis tables")
}

// SaveReport replaces everything stored for the report's match: its jungle
// events and, when present, the first-drake summary.
func (db *Database) SaveReport(ctx context.Context, report timeline.Report) error {
	matchID := strings.TrimSpace(report.MatchID)
	if matchID == "" {
		return ErrMatchIDRequired
	}
	analyzedAt := time.Now().UTC()

	return db.withTx(ctx, func(tx pgx.Tx) error {
		b := &pgx.Batch{}
		b.Queue(deleteJungleEventsSQL, matchID)
		b.Queue(deleteFirstDrakeSQL, matchID)
		for seq, ev := range report.JungleEvents {
			if err := queueJungleEvent(b, matchID, seq, ev); err != nil {
				return err
			}
		}
		if report.FirstDrake != nil {
			if err := queueFirstDrake(b, matchID, *report.FirstDrake, analyzedAt); err != nil {
				return err
			}
		}
		if err := executeBatch(ctx, tx, b); err != nil {
			return fmt.Errorf("save report %s: %w", matchID, err)
		}
		return nil
	})
}

func queueJungleEvent(b *pgx.Batch, matchID string, seq int, ev timeline.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal jungle event %d: %w", seq, err)
	}
	var timestamp *int64
	if ts, ok := ev.Timestamp(); ok {
		timestamp = &ts
	}
	monster, _ := ev.String("monsterType")
	clock, _ := ev.String(timeline.ClockField)
	b.Queue(insertJungleEventSQL, matchID, seq, ev.Type(), timestamp, nullIfEmpty(clock), nullIfEmpty(monster), payload)
	return nil
}

func queueFirstDrake(b *pgx.Batch, matchID string, summary timeline.FirstDrakeSummary, analyzedAt time.Time) error {
	position, err := json.Marshal(summary.Position)
	if err != nil {
		return fmt.Errorf("marshal first drake position: %w", err)
	}
	rawKeys, err := json.Marshal(summary.RawKeys)
	if err != nil {
		return fmt.Errorf("marshal first drake raw keys: %w", err)
	}
	assists := summary.AssistingChampions
	if assists == nil {
		assists = []string{}
	}
	b.Queue(upsertFirstDrakeSQL,
		matchID, summary.Clock, summary.Team, summary.Drake,
		summary.KillerParticipantID, summary.KillerChampion, assists,
		position, rawKeys, analyzedAt,
	)
	return nil
}

func (db *Database) FirstDrake(ctx context.Context, matchID string) (StoredFirstDrake, bool, error) {
	if err := db.ensureReady(); err != nil {
		return StoredFirstDrake{}, false, err
	}
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return StoredFirstDrake{}, false, ErrMatchIDRequired
	}

	var (
		row              StoredFirstDrake
		position, rawKey []byte
	)
	err := db.pool.QueryRow(ctx, selectFirstDrakeSQL, matchID).Scan(
		&row.MatchID, &row.Summary.Clock, &row.Summary.Team, &row.Summary.Drake,
		&row.Summary.KillerParticipantID, &row.Summary.KillerChampion, &row.Summary.AssistingChampions,
		&position, &rawKey, &row.AnalyzedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredFirstDrake{}, false, nil
	}
	if err != nil {
		return StoredFirstDrake{}, false, fmt.Errorf("select first drake %s: %w", matchID, err)
	}
	if err := decodeJSONB(position, &row.Summary.Position); err != nil {
		return StoredFirstDrake{}, false, fmt.Errorf("decode first drake position: %w", err)
	}
	if err := decodeJSONB(rawKey, &row.Summary.RawKeys); err != nil {
		return StoredFirstDrake{}, false, fmt.Errorf("decode first drake raw keys: %w", err)
	}
	return row, true, nil
}

// JungleEvents returns the stored events of a match in their saved order.
func (db *Database) JungleEvents(ctx context.Context, matchID string) ([]timeline.Event, error) {
	if err := db.ensureReady(); err != nil {
		return nil, err
	}
	rows, err := db.pool.Query(ctx, selectJungleEventsSQL, strings.TrimSpace(matchID))
	if err != nil {
		return nil, fmt.Errorf("select jungle events: %w", err)
	}
	payloads, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("scan jungle events: %w", err)
	}

	events := make([]timeline.Event, 0, len(payloads))
	for _, payload := range payloads {
		var ev timeline.Event
		if err := decodeJSONB(payload, &ev); err != nil {
			return nil, fmt.Errorf("decode jungle event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func decodeJSONB(data []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(target)
}

const createAnalysisTablesSQL = `
CREATE TABLE IF NOT EXISTS jungle_events (
	match_id text NOT NULL,
	seq integer NOT NULL,
	event_type text NOT NULL,
	timestamp_ms bigint,
	clock text,
	monster_type text,
	payload jsonb NOT NULL,
	PRIMARY KEY (match_id, seq)
);
CREATE TABLE IF NOT EXISTS first_drakes (
	match_id text PRIMARY KEY,
	clock text NOT NULL,
	team text NOT NULL,
	drake text NOT NULL,
	killer_participant_id integer,
	killer_champion text,
	assisting_champions text[] NOT NULL DEFAULT '{}',
	position jsonb,
	raw_keys jsonb NOT NULL DEFAULT '{}'::jsonb,
	analyzed_at timestamptz NOT NULL
)
`

const deleteJungleEventsSQL = `DELETE FROM jungle_events WHERE match_id = $1`

const deleteFirstDrakeSQL = `DELETE FROM first_drakes WHERE match_id = $1`

const insertJungleEventSQL = `
INSERT INTO jungle_events (match_id, seq, event_type, timestamp_ms, clock, monster_type, payload)
VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
`

const upsertFirstDrakeSQL = `
INSERT INTO first_drakes (
	match_id, clock, team, drake, killer_participant_id, killer_champion,
	assisting_champions, position, raw_keys, analyzed_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb, $10)
ON CONFLICT (match_id) DO UPDATE SET
	clock = EXCLUDED.clock,
	team = EXCLUDED.team,
	drake = EXCLUDED.drake,
	killer_participant_id = EXCLUDED.killer_participant_id,
	killer_champion = EXCLUDED.killer_champion,
	assisting_champions = EXCLUDED.assisting_champions,
	position = EXCLUDED.position,
	raw_keys = EXCLUDED.raw_keys,
	analyzed_at = EXCLUDED.analyzed_at
`

const selectFirstDrakeSQL = `
SELECT match_id, clock, team, drake, killer_participant_id, killer_champion,
	assisting_champions, COALESCE(position, 'null'::jsonb), raw_keys, analyzed_at
FROM first_drakes
WHERE match_id = $1
`

const selectJungleEventsSQL = `
SELECT payload FROM jungle_events WHERE match_id = $1 ORDER BY seq
`
