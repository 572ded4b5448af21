package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/bingbr/league-timeline/internal/config"
	"github.com/bingbr/league-timeline/internal/notify"
	"github.com/bingbr/league-timeline/internal/riot"
)

const testMatchJSON = `{
  "metadata": {"matchId": "NA1_42", "participants": ["p-1"]},
  "info": {"participants": [
    {"participantId": 1, "championName": "Ahri"},
    {"participantId": 2, "championName": "LeeSin"},
    {"participantId": 6, "championName": "Graves"}
  ]}
}`

const testTimelineJSON = `{
  "metadata": {"matchId": "NA1_42"},
  "info": {"frames": [
    {"events": [
      {"type": "ITEM_PURCHASED", "timestamp": 1000},
      {"type": "MONSTER_KILL", "timestamp": 95000, "monsterType": "SCUTTLE_CRAB"},
      {"type": "MONSTER_KILL", "timestamp": 96000}
    ]},
    {"events": [
      {"type": "ELITE_MONSTER_KILL", "timestamp": 420500, "monsterType": "DRAGON", "monsterSubType": "MOUNTAIN_DRAGON", "killerId": 6, "killerTeamId": 200, "assistingParticipantIds": [1]},
      {"type": "ELITE_MONSTER_KILL", "timestamp": 300000, "monsterType": "DRAGON", "monsterSubType": "FIRE_DRAGON", "killerId": 2, "killerTeamId": 100, "assistingParticipantIds": [1, 9]}
    ]}
  ]}
}`

type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (w *lockedBuffer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.Write(p)
}

func (w *lockedBuffer) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.String()
}

// fakeRiot serves one GOLD I player with a single ranked match.
func fakeRiot(t *testing.T) *httptest.Server {
	t.Helper()
	routes := map[string]string{
		"/na1/lol/platform/v3/champion-rotations":                `{"freeChampionIds":[1,2,3],"maxNewPlayerLevel":10}`,
		"/na1/lol/league/v4/entries/RANKED_SOLO_5x5/GOLD/I":      `[{"puuid":"p-1","tier":"GOLD","rank":"I"}]`,
		"/americas/lol/match/v5/matches/by-puuid/p-1/ids":        `["NA1_42","NA1_41"]`,
		"/americas/lol/match/v5/matches/NA1_42":                  testMatchJSON,
		"/americas/lol/match/v5/matches/NA1_42/timeline":         testTimelineJSON,
		"/americas/riot/account/v1/accounts/by-riot-id/Ahri/NA1": `{"puuid":"p-1","gameName":"Ahri","tagLine":"NA1"}`,
		"/na1/lol/summoner/v4/summoners/by-puuid/p-1":            `{"puuid":"p-1","profileIconId":7,"summonerLevel":88}`,
		"/na1/lol/league/v4/entries/by-puuid/p-1":                `[{"queueType":"RANKED_SOLO_5x5","tier":"GOLD","rank":"I","leaguePoints":12,"wins":10,"losses":10}]`,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.EscapedPath()
		body, ok := routes[path]
		if !ok && strings.Contains(path, "/lol/league/v4/entries/RANKED_SOLO_5x5/") {
			body, ok = "[]", true
		}
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func testOptions(t *testing.T, server *httptest.Server) *rootOptions {
	t.Helper()
	opts := &rootOptions{cfg: config.Config{
		RiotAPIKey: "RGAPI-test",
		Platform:   "na1",
		DumpDir:    filepath.Join(t.TempDir(), "dump"),
		MonsterCfg: filepath.Join(t.TempDir(), "monsters.toml"),
		LogLevel:   slog.LevelError,
	}}
	if server != nil {
		opts.clientOptions = []riot.Option{riot.WithHostFormat(server.URL + "/%s")}
	}
	return opts
}

func runCommand(t *testing.T, opts *rootOptions, args ...string) (string, error) {
	t.Helper()
	var out, errOut lockedBuffer
	cmd := newRootCommand(opts)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func readJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func TestFirstDrakeCommand_EndToEnd(t *testing.T) {
	opts := testOptions(t, fakeRiot(t))

	out, err := runCommand(t, opts, "first-drake", "--preview=false")
	if err != nil {
		t.Fatalf("first-drake error = %v\n%s", err, out)
	}
	for _, want := range []string{
		"Picked PUUID: p-1",
		"Picked match: NA1_42",
		"=== MATCH METADATA (full) ===",
		"=== TIMELINE METADATA (full) ===",
		"Kept 4 jungle/neutral events",
		"=== FIRST DRAKE KILL ===",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	var summary map[string]any
	readJSONFile(t, filepath.Join(opts.outDir, "NA1_42.first_drake.json"), &summary)
	if summary["clock"] != "05:00" || summary["team"] != "BLUE" || summary["drake"] != "FIRE" {
		t.Fatalf("unexpected summary: %v", summary)
	}
	if summary["killer_champion"] != "LeeSin" {
		t.Fatalf("killer_champion = %v", summary["killer_champion"])
	}
	assists, _ := summary["assisting_champions"].([]any)
	if len(assists) != 2 || assists[0] != "Ahri" || assists[1] != "p9" {
		t.Fatalf("assisting_champions = %v", summary["assisting_champions"])
	}

	for _, kind := range []string{"match", "timeline", "jungle_events"} {
		if _, err := os.Stat(filepath.Join(opts.outDir, "NA1_42."+kind+".json")); err != nil {
			t.Fatalf("missing %s dump: %v", kind, err)
		}
	}
}

func TestJungleCommand_MatchIDAndFilters(t *testing.T) {
	opts := testOptions(t, fakeRiot(t))

	out, err := runCommand(t, opts, "jungle", "--match-id", "42", "--strict", "--where", `monsterType != "DRAGON"`)
	if err != nil {
		t.Fatalf("jungle error = %v\n%s", err, out)
	}
	if strings.Contains(out, "Picked PUUID") {
		t.Fatalf("--match-id should skip sampling:\n%s", out)
	}
	if !strings.Contains(out, "Kept 1 jungle/neutral events") {
		t.Fatalf("expected one event after strict + where:\n%s", out)
	}
	if strings.Contains(out, "FIRST DRAKE") {
		t.Fatalf("jungle should not summarize drakes:\n%s", out)
	}

	var events []map[string]any
	readJSONFile(t, filepath.Join(opts.outDir, "NA1_42.jungle_events.json"), &events)
	if len(events) != 1 || events[0]["monsterType"] != "SCUTTLE_CRAB" || events[0]["clock"] != "01:35" {
		t.Fatalf("unexpected events: %v", events)
	}
	if !strings.Contains(out, "=== PREVIEW") {
		t.Fatalf("expected preview block:\n%s", out)
	}
}

func TestSampleCommand(t *testing.T) {
	opts := testOptions(t, fakeRiot(t))

	out, err := runCommand(t, opts, "sample", "--queue", "0")
	if err != nil {
		t.Fatalf("sample error = %v", err)
	}
	if !strings.Contains(out, `"match_count": 2`) || !strings.Contains(out, `"NA1_41"`) {
		t.Fatalf("unexpected sample output:\n%s", out)
	}
}

func TestLookupCommand(t *testing.T) {
	opts := testOptions(t, fakeRiot(t))

	out, err := runCommand(t, opts, "lookup", "Ahri#NA1")
	if err != nil {
		t.Fatalf("lookup error = %v", err)
	}
	if !strings.Contains(out, `"summonerLevel": 88`) || !strings.Contains(out, `"rankedSolo": "GOLD I 12LP 50% 10W 10L"`) {
		t.Fatalf("unexpected lookup output:\n%s", out)
	}

	if _, err := runCommand(t, opts, "lookup", "Nobody#NA1"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("lookup(unknown) error = %v, want not found", err)
	}
	if _, err := runCommand(t, opts, "lookup", "no-tag"); err == nil {
		t.Fatalf("lookup(no-tag) should fail")
	}
}

func TestFetchCommandsRequireAPIKey(t *testing.T) {
	opts := testOptions(t, fakeRiot(t))
	opts.cfg.RiotAPIKey = ""

	if _, err := runCommand(t, opts, "jungle"); err == nil || !strings.Contains(err.Error(), "RIOT_API_KEY") {
		t.Fatalf("jungle error = %v, want missing key", err)
	}
}

func TestRejectedAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":{"status_code":403}}`, http.StatusForbidden)
	}))
	defer server.Close()

	_, err := runCommand(t, testOptions(t, server), "sample")
	if err == nil || !strings.Contains(err.Error(), "API key not accepted") {
		t.Fatalf("sample error = %v, want rejected key", err)
	}
}

type recordingWebhook struct {
	embeds []*discordgo.MessageEmbed
}

func (r *recordingWebhook) WebhookExecute(_, _ string, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	r.embeds = append(r.embeds, data.Embeds...)
	return nil, nil
}

func TestAnalyzeCommand_OfflineWithNotifier(t *testing.T) {
	dir := t.TempDir()
	matchPath := filepath.Join(dir, "m.json")
	timelinePath := filepath.Join(dir, "t.json")
	if err := os.WriteFile(matchPath, []byte(testMatchJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(timelinePath, []byte(testTimelineJSON), 0o600); err != nil {
		t.Fatal(err)
	}

	hook := &recordingWebhook{}
	opts := testOptions(t, nil)
	opts.cfg.RiotAPIKey = ""
	opts.cfg.DiscordWebhookURL = "https://discord.com/api/webhooks/1/token"
	opts.notifyOptions = []notify.Option{notify.WithExecutor(hook)}

	out, err := runCommand(t, opts, "analyze", "--match", matchPath, "--timeline", timelinePath, "--preview=false")
	if err != nil {
		t.Fatalf("analyze error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Kept 4 jungle/neutral events") {
		t.Fatalf("lenient analyze should keep the untyped monster kill:\n%s", out)
	}
	if len(hook.embeds) != 1 || hook.embeds[0].Title != "Fire Drake" {
		t.Fatalf("unexpected webhook embeds: %+v", hook.embeds)
	}
	if _, err := os.Stat(filepath.Join(opts.outDir, "NA1_42.first_drake.json")); err != nil {
		t.Fatalf("missing first drake dump: %v", err)
	}
}

func TestAnalyzeCommand_NoDrake(t *testing.T) {
	timelinePath := filepath.Join(t.TempDir(), "t.json")
	if err := os.WriteFile(timelinePath, []byte(`{"metadata":{"matchId":"NA1_7"},"info":{"frames":[{"events":[{"type":"MONSTER_KILL","timestamp":5000,"monsterType":"GROMP"}]}]}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	opts := testOptions(t, nil)

	out, err := runCommand(t, opts, "analyze", "--timeline", timelinePath)
	if err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	if !strings.Contains(out, "No drake kills found in match timeline.") {
		t.Fatalf("expected no-drake message:\n%s", out)
	}
}

func TestAnalyzeCommand_InvalidQuery(t *testing.T) {
	timelinePath := filepath.Join(t.TempDir(), "t.json")
	if err := os.WriteFile(timelinePath, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := runCommand(t, testOptions(t, nil), "analyze", "--timeline", timelinePath, "--where", "timestamp <"); err == nil {
		t.Fatalf("expected query compile error")
	}
}

func TestSetupLogger_WritesRotatingFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "timeline.log")
	var console lockedBuffer
	logger, closeLog := setupLogger(config.Config{LogFile: logPath}, &console, nil)

	logger.Debug("debug only in file", "k", "v")
	logger.Info("both sinks")
	closeLog()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"debug only in file"`) {
		t.Fatalf("log file missing debug record: %s", data)
	}
	if strings.Contains(console.String(), "debug only in file") || !strings.Contains(console.String(), "both sinks") {
		t.Fatalf("unexpected console output: %s", console.String())
	}
}

func TestStoredCommandRequiresDatabase(t *testing.T) {
	_, err := runCommand(t, testOptions(t, nil), "stored", "NA1_42")
	if !errors.Is(err, errNoDatabase) {
		t.Fatalf("stored error = %v, want %v", err, errNoDatabase)
	}
}
