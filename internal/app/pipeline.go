package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bingbr/league-timeline/internal/dump"
	"github.com/bingbr/league-timeline/internal/riot"
	"github.com/bingbr/league-timeline/internal/storage/logs"
	"github.com/bingbr/league-timeline/internal/timeline"
)

var (
	errNoPUUIDs   = errors.New("no PUUIDs found from league entries")
	errNoMatches  = errors.New("no recent matches for this player")
	errNoDatabase = errors.New("DATABASE_URL is not set")
)

type matchSelection struct {
	tier    string
	queue   int
	count   int
	puuid   string
	matchID string
}

func (s matchSelection) queueFilter() *int {
	if s.queue <= 0 {
		return nil
	}
	queue := s.queue
	return &queue
}

// pickPUUID returns the requested player or samples one from the tier.
func (r *runner) pickPUUID(ctx context.Context, sel matchSelection) (string, error) {
	if puuid := strings.TrimSpace(sel.puuid); puuid != "" {
		return puuid, nil
	}
	puuids, err := r.client.SamplePUUIDs(ctx, r.platform, 1, riot.PoolOptions{Tier: sel.tier})
	if err != nil {
		return "", err
	}
	if len(puuids) == 0 {
		return "", errNoPUUIDs
	}
	fmt.Fprintf(r.out, "Picked PUUID: %s\n", puuids[0])
	return puuids[0], nil
}

func (r *runner) recentMatchIDs(ctx context.Context, puuid string, sel matchSelection) ([]string, error) {
	return r.client.FetchMatchIDs(ctx, r.continent(), puuid, riot.MatchIDsOptions{
		Count: sel.count,
		Queue: sel.queueFilter(),
	})
}

// pickMatchID returns the requested match, qualifying a bare game id with the
// platform, or the most recent match of a picked player.
func (r *runner) pickMatchID(ctx context.Context, sel matchSelection) (string, error) {
	if id := strings.TrimSpace(sel.matchID); id != "" {
		if gameID, ok := parseGameID(id); ok {
			return riot.BuildMatchID(r.platform, gameID), nil
		}
		return id, nil
	}
	puuid, err := r.pickPUUID(ctx, sel)
	if err != nil {
		return "", err
	}
	ids, err := r.recentMatchIDs(ctx, puuid, sel)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", errNoMatches
	}
	fmt.Fprintf(r.out, "Picked match: %s\n", ids[0])
	return ids[0], nil
}

// fetchMatchPair downloads the match and its timeline concurrently.
func (r *runner) fetchMatchPair(ctx context.Context, matchID string) (timeline.Document, timeline.Document, error) {
	var match, tl timeline.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		match, err = r.client.FetchMatch(gctx, r.continent(), matchID)
		return err
	})
	g.Go(func() error {
		var err error
		tl, err = r.client.FetchTimeline(gctx, r.continent(), matchID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return match, tl, nil
}

func (r *runner) printMetadata(match, tl timeline.Document) error {
	for _, block := range []struct {
		title string
		doc   timeline.Document
	}{
		{"MATCH METADATA (full)", match},
		{"TIMELINE METADATA (full)", tl},
	} {
		metadata := block.doc.Metadata()
		if metadata == nil {
			metadata = map[string]any{}
		}
		data, err := dump.Marshal(metadata)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "\n=== %s ===\n%s", block.title, data)
	}
	return nil
}

func (r *runner) dumpRaw(matchID string, match, tl timeline.Document) error {
	matchPath, err := r.dumpDir.Write(matchID, dump.KindMatch, match)
	if err != nil {
		return err
	}
	timelinePath, err := r.dumpDir.Write(matchID, dump.KindTimeline, tl)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "\nSaved full payloads:\n- %s\n- %s\n", matchPath, timelinePath)
	return nil
}

type analysisMode struct {
	firstDrake bool
	persist    bool
}

// analyze classifies the timeline, writes the dumps and hands the report to
// the configured store and notifier.
func (r *runner) analyze(ctx context.Context, fallbackMatchID string, match, tl timeline.Document, mode analysisMode) (timeline.Report, error) {
	report := r.classifier.Analyze(match, tl)
	if report.MatchID == "" {
		report.MatchID = fallbackMatchID
	}
	logger := r.logger.With(logs.KeyMatchID, report.MatchID)

	events, err := r.query.Filter(report.JungleEvents)
	if err != nil {
		return report, err
	}
	report.JungleEvents = events

	junglePath, err := r.dumpDir.Write(report.MatchID, dump.KindJungleEvents, report.JungleEvents)
	if err != nil {
		return report, err
	}
	fmt.Fprintf(r.out, "\nKept %d jungle/neutral events → %s\n", len(report.JungleEvents), junglePath)
	logger.Info("Jungle events dumped", "count", len(report.JungleEvents), "path", junglePath, "query", r.query.String())

	if r.preview && len(report.JungleEvents) > 0 {
		fmt.Fprintln(r.out, "\n=== PREVIEW (first 8 events) ===")
		if err := dump.WritePreview(r.out, report.JungleEvents); err != nil {
			return report, err
		}
	}

	if mode.firstDrake {
		if err := r.reportFirstDrake(ctx, report); err != nil {
			return report, err
		}
	}

	switch {
	case !mode.persist || r.store == nil:
	case report.MatchID == "":
		logger.Warn("Report not stored: match id unknown")
	default:
		if err := r.store.SaveReport(ctx, report); err != nil {
			return report, fmt.Errorf("save report: %w", err)
		}
		logger.Info("Report stored", "jungle_events", len(report.JungleEvents), "first_drake", report.FirstDrake != nil)
	}
	return report, nil
}

func (r *runner) reportFirstDrake(ctx context.Context, report timeline.Report) error {
	if report.FirstDrake == nil {
		fmt.Fprintf(r.out, "\n%s.\n", capitalize(timeline.ErrNoDrakeKill.Error()))
		return nil
	}

	data, err := dump.Marshal(report.FirstDrake)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "\n=== FIRST DRAKE KILL ===\n%s", data)

	path, err := r.dumpDir.Write(report.MatchID, dump.KindFirstDrake, report.FirstDrake)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "\nFirst drake summary saved → %s\n", path)
	r.logger.Info("First drake found",
		logs.KeyMatchID, report.MatchID,
		"clock", report.FirstDrake.Clock,
		"team", report.FirstDrake.Team,
		"drake", report.FirstDrake.Drake,
	)

	if r.notifier != nil {
		if err := r.notifier.NotifyFirstDrake(ctx, report.MatchID, *report.FirstDrake); err != nil {
			// A failed post should not discard the analysis already on disk.
			r.logger.Warn("Discord notification failed", logs.KeyMatchID, report.MatchID, "error", err)
		}
	}
	return nil
}

func parseGameID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
