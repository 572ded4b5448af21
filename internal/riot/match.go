package riot

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bingbr/league-timeline/internal/timeline"
)

const (
	RankedSoloQueueID   = 420
	defaultMatchIDCount = 20
	maxMatchIDCount     = 100
)

// MatchIDsOptions filters the match history query. A nil Queue returns every
// queue.
type MatchIDsOptions struct {
	Start int
	Count int
	Queue *int
}

func (c *Client) FetchMatchIDs(ctx context.Context, continent, puuid string, opts MatchIDsOptions) ([]string, error) {
	continent, err := requireNonEmpty("continent", continent)
	if err != nil {
		return nil, err
	}
	puuid, err = requireNonEmpty("puuid", puuid)
	if err != nil {
		return nil, err
	}

	count := opts.Count
	if count <= 0 {
		count = defaultMatchIDCount
	}
	params := url.Values{}
	params.Set("start", strconv.Itoa(max(opts.Start, 0)))
	params.Set("count", strconv.Itoa(min(count, maxMatchIDCount)))
	if opts.Queue != nil {
		params.Set("queue", strconv.Itoa(*opts.Queue))
	}

	endpoint := c.endpoint(continent, fmt.Sprintf("/lol/match/v5/matches/by-puuid/%s/ids?%s", url.PathEscape(puuid), params.Encode()))
	var ids []string
	if err := c.getJSON(ctx, endpoint, &ids); err != nil {
		return nil, fmt.Errorf("fetch match ids: %w", err)
	}
	return ids, nil
}

func (c *Client) FetchMatch(ctx context.Context, continent, matchID string) (timeline.Document, error) {
	return c.fetchMatchDocument(ctx, continent, matchID, "", "match")
}

func (c *Client) FetchTimeline(ctx context.Context, continent, matchID string) (timeline.Document, error) {
	return c.fetchMatchDocument(ctx, continent, matchID, "/timeline", "timeline")
}

func (c *Client) fetchMatchDocument(ctx context.Context, continent, matchID, suffix, what string) (timeline.Document, error) {
	continent, err := requireNonEmpty("continent", continent)
	if err != nil {
		return nil, err
	}
	matchID, err = requireNonEmpty("match id", matchID)
	if err != nil {
		return nil, err
	}

	endpoint := c.endpoint(continent, "/lol/match/v5/matches/"+url.PathEscape(matchID)+suffix)
	doc := timeline.Document{}
	if err := c.getJSON(ctx, endpoint, &doc); err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", what, matchID, err)
	}
	return doc, nil
}

// BuildMatchID joins a platform id and game id, e.g. NA1_5012345678.
func BuildMatchID(platformID string, gameID int64) string {
	platformID = strings.ToUpper(strings.TrimSpace(platformID))
	if platformID == "" {
		return strconv.FormatInt(gameID, 10)
	}
	return fmt.Sprintf("%s_%d", platformID, gameID)
}
