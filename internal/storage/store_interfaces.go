package storage

import (
	"context"

	"github.com/bingbr/league-timeline/internal/storage/logs"
	"github.com/bingbr/league-timeline/internal/storage/postgres"
	"github.com/bingbr/league-timeline/internal/timeline"
)

type ReportStore interface {
	SaveReport(ctx context.Context, report timeline.Report) error
}

type ReportReader interface {
	FirstDrake(ctx context.Context, matchID string) (postgres.StoredFirstDrake, bool, error)
	JungleEvents(ctx context.Context, matchID string) ([]timeline.Event, error)
}

type Store interface {
	ReportStore
	ReportReader
	logs.Sink
	Migrate(ctx context.Context) error
}

var _ Store = (*postgres.Database)(nil)
