package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bingbr/league-timeline/internal/dump"
	"github.com/bingbr/league-timeline/internal/riot"
	"github.com/bingbr/league-timeline/internal/storage/logs"
	"github.com/bingbr/league-timeline/internal/timeline"
)

// withRunner builds a runner for cmd and tears it down afterwards.
func withRunner(cmd *cobra.Command, opts *rootOptions, needsRiot bool, fn func(context.Context, *runner) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	r, err := newRunner(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr(), needsRiot)
	if err != nil {
		return err
	}
	defer r.Close()
	r.logger = r.logger.With(logs.KeyCommand, cmd.Name())

	if err := fn(ctx, r); err != nil {
		r.logger.Error("Command failed", "error", err)
		return err
	}
	return nil
}

func newLookupCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <Name#Tag>",
		Short: "Resolve a Riot ID and print the summoner profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameName, tagLine, err := riot.SplitRiotID(args[0])
			if err != nil {
				return fmt.Errorf("%w (e.g. Pinkward#NA1)", err)
			}
			return withRunner(cmd, opts, true, func(ctx context.Context, r *runner) error {
				account, err := r.client.FetchAccountByRiotID(ctx, r.platform, gameName, tagLine)
				if riot.IsNotFound(err) {
					return fmt.Errorf("riot id %s not found", riot.FormatRiotID(gameName, tagLine))
				}
				if err != nil {
					return err
				}
				profile, err := r.client.FetchSummonerByPUUID(ctx, r.platform, account.PUUID)
				if err != nil {
					return fmt.Errorf("failed to fetch summoner by puuid: %w", err)
				}
				entries, err := r.client.FetchLeagueEntriesByPUUID(ctx, r.platform, account.PUUID)
				if err != nil {
					r.logger.Warn("League entries unavailable", "error", err)
				}

				rank := "UNRANKED"
				if entry := riot.QueueEntry(entries, riot.RankedSoloQueue); entry != nil {
					rank = riot.RankedLine(*entry)
				}
				data, err := dump.Marshal(map[string]any{
					"riotId":        riot.FormatRiotID(account.GameName, account.TagLine),
					"puuid":         account.PUUID,
					"summonerLevel": profile.SummonerLevel,
					"profileIconId": profile.ProfileIconID,
					"revisionDate":  profile.RevisionDate,
					"rankedSolo":    rank,
				})
				if err != nil {
					return err
				}
				_, err = r.out.Write(data)
				return err
			})
		},
	}
}

func newSampleCommand(opts *rootOptions) *cobra.Command {
	var sel matchSelection
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Pick a random ranked player and list their recent match ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRunner(cmd, opts, true, func(ctx context.Context, r *runner) error {
				puuid, err := r.pickPUUID(ctx, sel)
				if err != nil {
					return err
				}
				ids, err := r.recentMatchIDs(ctx, puuid, sel)
				if err != nil {
					return err
				}
				data, err := dump.Marshal(map[string]any{"match_count": len(ids), "match_ids": ids})
				if err != nil {
					return err
				}
				_, err = r.out.Write(data)
				return err
			})
		},
	}
	addSelectionFlags(cmd, &sel)
	return cmd
}

func newJungleCommand(opts *rootOptions) *cobra.Command {
	return newFetchCommand(opts, "jungle",
		"Fetch a ranked match and dump its jungle/neutral events",
		analysisMode{})
}

func newFirstDrakeCommand(opts *rootOptions) *cobra.Command {
	return newFetchCommand(opts, "first-drake",
		"Fetch a ranked match and summarize its first drake kill",
		analysisMode{firstDrake: true, persist: true})
}

func newFetchCommand(opts *rootOptions, use, short string, mode analysisMode) *cobra.Command {
	var sel matchSelection
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRunner(cmd, opts, true, func(ctx context.Context, r *runner) error {
				matchID, err := r.pickMatchID(ctx, sel)
				if err != nil {
					return err
				}
				match, tl, err := r.fetchMatchPair(ctx, matchID)
				if err != nil {
					return err
				}
				if err := r.printMetadata(match, tl); err != nil {
					return err
				}
				if err := r.dumpRaw(matchID, match, tl); err != nil {
					return err
				}
				_, err = r.analyze(ctx, matchID, match, tl, mode)
				return err
			})
		},
	}
	addSelectionFlags(cmd, &sel)
	cmd.Flags().StringVar(&sel.matchID, "match-id", "", "Analyze this match (e.g. NA1_5012345678) instead of picking one")
	return cmd
}

func newAnalyzeCommand(opts *rootOptions) *cobra.Command {
	var matchPath, timelinePath string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze previously dumped match and timeline files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tl, err := readDocument(timelinePath)
			if err != nil {
				return err
			}
			match := timeline.Document{}
			if matchPath != "" {
				if match, err = readDocument(matchPath); err != nil {
					return err
				}
			}
			return withRunner(cmd, opts, false, func(ctx context.Context, r *runner) error {
				_, err := r.analyze(ctx, "", match, tl, analysisMode{firstDrake: true, persist: true})
				return err
			})
		},
	}
	cmd.Flags().StringVar(&matchPath, "match", "", "Match JSON file (participants resolve champion names)")
	cmd.Flags().StringVar(&timelinePath, "timeline", "", "Timeline JSON file")
	_ = cmd.MarkFlagRequired("timeline")
	return cmd
}

func newStoredCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stored <matchId>",
		Short: "Print the stored analysis of a match from PostgreSQL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd, opts, false, func(ctx context.Context, r *runner) error {
				if r.store == nil {
					return errNoDatabase
				}
				matchID := args[0]
				if gameID, ok := parseGameID(matchID); ok {
					matchID = riot.BuildMatchID(r.platform, gameID)
				}

				events, err := r.store.JungleEvents(ctx, matchID)
				if err != nil {
					return err
				}
				out := map[string]any{
					"match_id":      matchID,
					"jungle_events": len(events),
					"first_drake":   nil,
				}
				stored, found, err := r.store.FirstDrake(ctx, matchID)
				if err != nil {
					return err
				}
				if found {
					out["first_drake"] = stored.Summary
					out["analyzed_at"] = stored.AnalyzedAt
				}
				if len(events) == 0 && !found {
					return fmt.Errorf("match %s has no stored analysis", matchID)
				}
				data, err := dump.Marshal(out)
				if err != nil {
					return err
				}
				_, err = r.out.Write(data)
				return err
			})
		},
	}
}

func readDocument(path string) (timeline.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := timeline.DecodeDocument(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return doc, nil
}
