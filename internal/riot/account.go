package riot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var validPlatformRegions = map[string]struct{}{
	"br1": {}, "eun1": {}, "euw1": {}, "jp1": {}, "kr": {},
	"la1": {}, "la2": {}, "me1": {}, "na1": {}, "oc1": {},
	"pbe1": {}, "ph2": {}, "ru": {}, "sg2": {}, "th2": {},
	"tr1": {}, "tw2": {}, "vn2": {},
}

var (
	ErrRiotIDRequired = errors.New("riot id is required")
	ErrInvalidRiotID  = errors.New("riot id must be in format nickname#tagline")
)

type RiotAccount struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

type SummonerProfile struct {
	PUUID         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	RevisionDate  int64  `json:"revisionDate"`
	SummonerLevel int64  `json:"summonerLevel"`
}

type ChampionRotation struct {
	FreeChampionIDs              []int `json:"freeChampionIds"`
	FreeChampionIDsForNewPlayers []int `json:"freeChampionIdsForNewPlayers"`
	MaxNewPlayerLevel            int   `json:"maxNewPlayerLevel"`
}

func NormalizePlatformRegion(region string) string {
	region = strings.ToLower(strings.TrimSpace(region))
	if _, ok := validPlatformRegions[region]; ok {
		return region
	}
	return ""
}

// PlatformContinent maps a platform route (na1, euw1, ...) to the regional
// route used by the account and match APIs.
func PlatformContinent(region string) string {
	switch NormalizePlatformRegion(region) {
	case "br1", "la1", "la2", "na1", "oc1", "pbe1":
		return "americas"
	case "jp1", "kr":
		return "asia"
	case "euw1", "eun1", "me1", "ru", "tr1":
		return "europe"
	case "ph2", "sg2", "th2", "tw2", "vn2":
		return "sea"
	default:
		return ""
	}
}

func IsNotFound(err error) bool {
	statusErr, ok := errors.AsType[*HTTPStatusError](err)
	return ok && statusErr.StatusCode == http.StatusNotFound
}

func (c *Client) FetchAccountByRiotID(ctx context.Context, platformRegion, gameName, tagLine string) (RiotAccount, error) {
	gameName = strings.TrimSpace(gameName)
	tagLine = strings.TrimPrefix(strings.TrimSpace(tagLine), "#")
	if gameName == "" || tagLine == "" {
		return RiotAccount{}, fmt.Errorf("game name and tag line are required")
	}
	continent := PlatformContinent(platformRegion)
	if continent == "" {
		return RiotAccount{}, fmt.Errorf("unsupported platform region %q", platformRegion)
	}

	endpoint := c.endpoint(continent, fmt.Sprintf("/riot/account/v1/accounts/by-riot-id/%s/%s",
		url.PathEscape(gameName), url.PathEscape(tagLine)))
	var account RiotAccount
	if err := c.getJSON(ctx, endpoint, &account); err != nil {
		return RiotAccount{}, fmt.Errorf("fetch account by riot id: %w", err)
	}
	return account, nil
}

func (c *Client) FetchSummonerByPUUID(ctx context.Context, platformRegion, puuid string) (SummonerProfile, error) {
	region, err := requirePlatformRegion(platformRegion)
	if err != nil {
		return SummonerProfile{}, err
	}
	puuid, err = requireNonEmpty("puuid", puuid)
	if err != nil {
		return SummonerProfile{}, err
	}

	endpoint := c.endpoint(region, "/lol/summoner/v4/summoners/by-puuid/"+url.PathEscape(puuid))
	var profile SummonerProfile
	if err := c.getJSON(ctx, endpoint, &profile); err != nil {
		return SummonerProfile{}, fmt.Errorf("fetch summoner by puuid: %w", err)
	}
	return profile, nil
}

// FetchChampionRotation is the cheapest platform call and doubles as the API
// key check.
func (c *Client) FetchChampionRotation(ctx context.Context, platformRegion string) (ChampionRotation, error) {
	region, err := requirePlatformRegion(platformRegion)
	if err != nil {
		return ChampionRotation{}, err
	}

	var rotation ChampionRotation
	if err := c.getJSON(ctx, c.endpoint(region, "/lol/platform/v3/champion-rotations"), &rotation); err != nil {
		return ChampionRotation{}, fmt.Errorf("fetch champion rotations: %w", err)
	}
	return rotation, nil
}

func requirePlatformRegion(platformRegion string) (string, error) {
	if region := NormalizePlatformRegion(platformRegion); region != "" {
		return region, nil
	}
	return "", fmt.Errorf("unsupported platform region %q", platformRegion)
}

func SplitRiotID(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", ErrRiotIDRequired
	}
	idx := strings.LastIndex(raw, "#")
	if idx <= 0 || idx >= len(raw)-1 {
		return "", "", ErrInvalidRiotID
	}
	gameName := strings.TrimSpace(raw[:idx])
	tagLine := strings.TrimSpace(raw[idx+1:])
	if gameName == "" || tagLine == "" {
		return "", "", ErrInvalidRiotID
	}
	return gameName, tagLine, nil
}

func FormatRiotID(gameName, tagLine string) string {
	return fmt.Sprintf("%s#%s", strings.TrimSpace(gameName), strings.TrimPrefix(strings.TrimSpace(tagLine), "#"))
}
