package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bingbr/league-timeline/internal/config"
	"github.com/bingbr/league-timeline/internal/dump"
	"github.com/bingbr/league-timeline/internal/notify"
	"github.com/bingbr/league-timeline/internal/riot"
	"github.com/bingbr/league-timeline/internal/storage"
	"github.com/bingbr/league-timeline/internal/storage/logs"
	"github.com/bingbr/league-timeline/internal/storage/postgres"
	"github.com/bingbr/league-timeline/internal/timeline"
)

const (
	dbTimeout             = 5 * time.Second
	dbConnectAttempts     = 3
	dbRetryDelay          = 2 * time.Second
	riotValidationTimeout = 10 * time.Second
)

// runner carries what a single command invocation needs. Optional
// collaborators stay nil when they are not configured.
type runner struct {
	cfg        config.Config
	out        io.Writer
	logger     *slog.Logger
	platform   string
	dumpDir    dump.Dir
	classifier *timeline.Classifier
	query      *timeline.Query
	preview    bool

	client   *riot.Client
	store    storage.Store
	notifier *notify.Notifier

	closers []func()
}

func (r *runner) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// newRunner wires the collaborators for one command. needsRiot controls
// whether a Riot client is built and the API key checked.
func newRunner(ctx context.Context, opts *rootOptions, out, errOut io.Writer, needsRiot bool) (*runner, error) {
	cfg := opts.cfg
	r := &runner{
		cfg:     cfg,
		out:     out,
		dumpDir: dump.Dir(opts.outDir),
		preview: opts.preview,
	}

	platform := riot.NormalizePlatformRegion(opts.platform)
	if platform == "" {
		return nil, fmt.Errorf("unsupported platform %q", opts.platform)
	}
	r.platform = platform

	db, closeDB, err := connectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	r.closers = append(r.closers, closeDB)
	var sink logs.Sink
	if db != nil {
		if err := db.Migrate(ctx); err != nil {
			r.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
		sink, r.store = db, db
	}

	logger, closeLog := setupLogger(cfg, errOut, sink)
	r.logger = logger
	r.closers = append(r.closers, closeLog)

	var strict *bool
	if opts.strictSet {
		strict = &opts.strict
	}
	classifier, loaded, err := config.LoadClassifier(cfg.MonsterCfg, strict)
	if err != nil {
		r.Close()
		return nil, err
	}
	if loaded {
		logger.Debug("Monster vocabulary loaded", "path", cfg.MonsterCfg, "types", len(classifier.MonsterTypes()), "strict", classifier.Strict())
	}
	r.classifier = classifier

	if strings.TrimSpace(opts.where) != "" {
		if r.query, err = timeline.CompileQuery(opts.where); err != nil {
			r.Close()
			return nil, err
		}
	}

	if cfg.DiscordWebhookURL != "" {
		if r.notifier, err = notify.NewWebhookNotifier(cfg.DiscordWebhookURL, opts.notifyOptions...); err != nil {
			r.Close()
			return nil, err
		}
	}

	if needsRiot {
		if err := r.initRiot(ctx, opts); err != nil {
			r.Close()
			return nil, err
		}
	}
	return r, nil
}

func (r *runner) initRiot(ctx context.Context, opts *rootOptions) error {
	if err := r.cfg.RequireRiotAPIKey(); err != nil {
		return err
	}
	limits, loaded, err := riot.LoadRateLimits(r.cfg.RateLimitCfg)
	if err != nil {
		return fmt.Errorf("configure riot rate limits: %w", err)
	}
	if loaded {
		r.logger.Info("Riot rate limits configured", "path", r.cfg.RateLimitCfg)
	}

	clientOpts := append([]riot.Option{riot.WithRateLimits(limits)}, opts.clientOptions...)
	client, err := riot.NewClient(r.cfg.RiotAPIKey, clientOpts...)
	if err != nil {
		return err
	}
	r.client = client
	return r.validateRiotAPIKey(ctx)
}

func (r *runner) validateRiotAPIKey(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, riotValidationTimeout)
	defer cancel()
	if _, err := r.client.FetchChampionRotation(checkCtx, r.platform); err != nil {
		r.logger.Error("Riot API key validation failed", "platform", r.platform, "error", err)
		return fmt.Errorf("validate riot api key: API key not accepted on platform route: %w", err)
	}
	r.logger.Debug("Riot API key validated", "platform", r.platform)
	return nil
}

func (r *runner) continent() string {
	return riot.PlatformContinent(r.platform)
}

func connectDB(ctx context.Context, url string) (*postgres.Database, func(), error) {
	if url == "" {
		return nil, func() {}, nil
	}
	// The database may still be starting when the CLI runs next to it.
	var lastErr error
	for i := range dbConnectAttempts {
		if i > 0 {
			timer := time.NewTimer(dbRetryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, nil, fmt.Errorf("database connection canceled: %w", ctx.Err())
			case <-timer.C:
			}
		}
		tCtx, cancel := context.WithTimeout(ctx, dbTimeout)
		pool, err := postgres.NewPool(tCtx, url)
		cancel()

		if err == nil {
			return postgres.NewDB(pool), pool.Close, nil
		}
		lastErr = err
	}
	return nil, nil, fmt.Errorf("database connection failed after retries: %w", lastErr)
}
