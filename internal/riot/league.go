package riot

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"
)

const (
	RankedSoloQueue  = "RANKED_SOLO_5x5"
	defaultPageDelay = 30 * time.Millisecond
	defaultPoolPages = 1
)

var (
	DefaultDivisions = []string{"I", "II", "III", "IV"}

	apexTiers = map[string]struct{}{"MASTER": {}, "GRANDMASTER": {}, "CHALLENGER": {}}
)

type LeagueEntry struct {
	PUUID        string `json:"puuid"`
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	HotStreak    bool   `json:"hotStreak"`
	FreshBlood   bool   `json:"freshBlood"`
}

func (c *Client) FetchLeagueEntries(ctx context.Context, platformRegion, queue, tier, division string, page int) ([]LeagueEntry, error) {
	region, err := requirePlatformRegion(platformRegion)
	if err != nil {
		return nil, err
	}
	if queue = strings.TrimSpace(queue); queue == "" {
		queue = RankedSoloQueue
	}
	tier = strings.ToUpper(strings.TrimSpace(tier))
	division = strings.ToUpper(strings.TrimSpace(division))
	if tier == "" || division == "" {
		return nil, fmt.Errorf("tier and division are required")
	}
	page = max(page, 1)

	endpoint := c.endpoint(region, fmt.Sprintf("/lol/league/v4/entries/%s/%s/%s?page=%d",
		url.PathEscape(queue), url.PathEscape(tier), url.PathEscape(division), page))
	var entries []LeagueEntry
	if err := c.getJSON(ctx, endpoint, &entries); err != nil {
		return nil, fmt.Errorf("fetch league entries %s %s page %d: %w", tier, division, page, err)
	}
	return entries, nil
}

func (c *Client) FetchLeagueEntriesByPUUID(ctx context.Context, platformRegion, puuid string) ([]LeagueEntry, error) {
	region, err := requirePlatformRegion(platformRegion)
	if err != nil {
		return nil, err
	}
	puuid, err = requireNonEmpty("puuid", puuid)
	if err != nil {
		return nil, err
	}

	var entries []LeagueEntry
	if err := c.getJSON(ctx, c.endpoint(region, "/lol/league/v4/entries/by-puuid/"+url.PathEscape(puuid)), &entries); err != nil {
		return nil, fmt.Errorf("fetch league entries by puuid: %w", err)
	}
	return entries, nil
}

// PoolOptions configures PoolPUUIDs. A zero PageDelay uses 30ms; a negative
// one disables the delay.
type PoolOptions struct {
	Queue       string
	Tier        string
	Divisions   []string
	PagesPerDiv int
	PageDelay   time.Duration
}

func (o PoolOptions) withDefaults() PoolOptions {
	if strings.TrimSpace(o.Queue) == "" {
		o.Queue = RankedSoloQueue
	}
	if strings.TrimSpace(o.Tier) == "" {
		o.Tier = "GOLD"
	}
	if len(o.Divisions) == 0 {
		o.Divisions = DefaultDivisions
	}
	if o.PagesPerDiv <= 0 {
		o.PagesPerDiv = defaultPoolPages
	}
	if o.PageDelay < 0 {
		o.PageDelay = 0
	} else if o.PageDelay == 0 {
		o.PageDelay = defaultPageDelay
	}
	return o
}

// PoolPUUIDs collects the PUUIDs listed on a tier's league pages, keeping the
// first occurrence of each. Paging a division stops at the first empty page,
// and every fetched page is followed by a fixed delay.
func (c *Client) PoolPUUIDs(ctx context.Context, platformRegion string, opts PoolOptions) ([]string, error) {
	opts = opts.withDefaults()
	seen := make(map[string]struct{})
	pool := make([]string, 0)
	for _, division := range opts.Divisions {
		for page := 1; page <= opts.PagesPerDiv; page++ {
			entries, err := c.FetchLeagueEntries(ctx, platformRegion, opts.Queue, opts.Tier, division, page)
			if err != nil {
				return nil, err
			}
			if len(entries) == 0 {
				break
			}
			for _, entry := range entries {
				puuid := strings.TrimSpace(entry.PUUID)
				if puuid == "" {
					continue
				}
				if _, ok := seen[puuid]; ok {
					continue
				}
				seen[puuid] = struct{}{}
				pool = append(pool, puuid)
			}
			if err := sleepContext(ctx, opts.PageDelay); err != nil {
				return nil, err
			}
		}
	}
	return pool, nil
}

// SamplePUUIDs draws min(count, len(pool)) distinct PUUIDs from the pool.
func (c *Client) SamplePUUIDs(ctx context.Context, platformRegion string, count int, opts PoolOptions) ([]string, error) {
	pool, err := c.PoolPUUIDs(ctx, platformRegion, opts)
	if err != nil {
		return nil, err
	}
	return SampleStrings(pool, count, nil), nil
}

// SampleStrings returns k distinct members of pool in random order. A nil rng
// uses the global source.
func SampleStrings(pool []string, k int, rng *rand.Rand) []string {
	k = min(max(k, 0), len(pool))
	if k == 0 {
		return []string{}
	}
	perm := rand.Perm
	if rng != nil {
		perm = rng.Perm
	}
	out := make([]string, 0, k)
	for _, idx := range perm(len(pool))[:k] {
		out = append(out, pool[idx])
	}
	return out
}

func QueueEntry(entries []LeagueEntry, queueType string) *LeagueEntry {
	for idx := range entries {
		if entries[idx].QueueType == queueType {
			return &entries[idx]
		}
	}
	return nil
}

// RankedLine renders an entry as "GOLD II 45LP 52% 30W 28L". Apex tiers omit
// the division.
func RankedLine(entry LeagueEntry) string {
	tier := strings.ToUpper(strings.TrimSpace(entry.Tier))
	if tier == "" {
		return "UNRANKED"
	}
	rank := strings.ToUpper(strings.TrimSpace(entry.Rank))
	if _, apex := apexTiers[tier]; apex {
		rank = ""
	}
	head := tier
	if rank != "" {
		head += " " + rank
	}

	total := entry.Wins + entry.Losses
	winRate := 0
	if total > 0 {
		winRate = (entry.Wins*100 + total/2) / total
	}
	return fmt.Sprintf("%s %dLP %d%% %dW %dL", head, entry.LeaguePoints, winRate, entry.Wins, entry.Losses)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
