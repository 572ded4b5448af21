// Package app wires the league-timeline command line.
package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bingbr/league-timeline/internal/config"
	"github.com/bingbr/league-timeline/internal/notify"
	"github.com/bingbr/league-timeline/internal/riot"
)

const version = "0.3.0"

type rootOptions struct {
	cfg       config.Config
	platform  string
	outDir    string
	strict    bool
	strictSet bool
	where     string
	preview   bool

	// Test seams.
	clientOptions []riot.Option
	notifyOptions []notify.Option
}

func NewRootCommand(cfg config.Config) *cobra.Command {
	return newRootCommand(&rootOptions{cfg: cfg})
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "league-timeline",
		Short: "Inspect jungle objectives in League of Legends match timelines",
		Long: `league-timeline samples ranked players, downloads their match and timeline
payloads from the Riot API, and extracts the jungle/neutral objective events
and the first drake kill. Results are dumped as JSON and can optionally be
stored in PostgreSQL and posted to a Discord webhook.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.strictSet = cmd.Flags().Changed("strict")
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.platform, "platform", opts.cfg.Platform, "Riot platform route (na1, euw1, kr, ...)")
	flags.StringVar(&opts.outDir, "out", opts.cfg.DumpDir, "Directory for JSON dumps")
	flags.BoolVar(&opts.strict, "strict", false, "Drop MONSTER_KILL events that name no monster")
	flags.StringVar(&opts.where, "where", "", `Expression filter over jungle events, e.g. 'monsterType == "DRAGON"'`)
	flags.BoolVar(&opts.preview, "preview", true, "Print the first jungle events")

	root.AddCommand(
		newLookupCommand(opts),
		newSampleCommand(opts),
		newJungleCommand(opts),
		newFirstDrakeCommand(opts),
		newAnalyzeCommand(opts),
		newStoredCommand(opts),
	)
	return root
}

// Execute runs the CLI and reports failures on stderr.
func Execute(ctx context.Context, cfg config.Config, args []string) error {
	cmd := NewRootCommand(cfg)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return nil
}

func addSelectionFlags(cmd *cobra.Command, sel *matchSelection) {
	cmd.Flags().StringVar(&sel.tier, "tier", "GOLD", "Ranked tier to sample players from")
	cmd.Flags().IntVar(&sel.queue, "queue", riot.RankedSoloQueueID, "Queue id filter for match history (0 for all queues)")
	cmd.Flags().IntVar(&sel.count, "count", 20, "Number of recent match ids to request")
	cmd.Flags().StringVar(&sel.puuid, "puuid", "", "Use this player instead of sampling one")
}
