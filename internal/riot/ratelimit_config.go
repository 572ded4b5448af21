package riot

import (
	"errors"
	"fmt"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Rate limit file layout:
//
//	[[riot_rate_limit.defaults]]
//	requests = 20
//	window = "1s"
//
//	[[riot_rate_limit.endpoints]]
//	path = "/lol/league/v4/entries/{queue}/{tier}/{division}"
//	limits = [{ requests = 50, window = "10s" }]
type rateLimitFile struct {
	RiotRateLimit rateLimitSection `toml:"riot_rate_limit"`
}

type rateLimitSection struct {
	Defaults  []rateLimitWindowTOML   `toml:"defaults"`
	Endpoints []rateLimitEndpointTOML `toml:"endpoints"`
}

type rateLimitWindowTOML struct {
	Requests int    `toml:"requests"`
	Window   string `toml:"window"`
	Burst    int    `toml:"burst"`
}

type rateLimitEndpointTOML struct {
	Prefix string                `toml:"prefix"`
	Path   string                `toml:"path"`
	Limits []rateLimitWindowTOML `toml:"limits"`
}

// LoadRateLimits reads a TOML rate limit file. A blank path or a missing file
// reports loaded=false with the development key defaults.
func LoadRateLimits(filePath string) (*RateLimits, bool, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return DefaultRateLimits(), false, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultRateLimits(), false, nil
		}
		return nil, false, fmt.Errorf("read rate limit config %q: %w", filePath, err)
	}

	var file rateLimitFile
	meta, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, false, fmt.Errorf("parse rate limit config %q: %w", filePath, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		slices.Sort(keys)
		return nil, false, fmt.Errorf("parse rate limit config %q: unknown keys: %s", filePath, strings.Join(keys, ", "))
	}

	defaults, err := windowsFromTOML(file.RiotRateLimit.Defaults, "defaults")
	if err != nil {
		return nil, false, fmt.Errorf("rate limit config %q: %w", filePath, err)
	}
	endpoints := make(map[string][]RateLimitWindow, len(file.RiotRateLimit.Endpoints))
	for _, endpoint := range file.RiotRateLimit.Endpoints {
		prefix, err := endpointMatcherPrefix(endpoint)
		if err != nil {
			return nil, false, fmt.Errorf("rate limit config %q: %w", filePath, err)
		}
		windows, err := windowsFromTOML(endpoint.Limits, fmt.Sprintf("endpoint %q", prefix))
		if err != nil {
			return nil, false, fmt.Errorf("rate limit config %q: %w", filePath, err)
		}
		if len(windows) > 0 {
			endpoints[prefix] = windows
		}
	}

	limits, err := NewRateLimits(defaults, endpoints)
	if err != nil {
		return nil, false, fmt.Errorf("rate limit config %q: %w", filePath, err)
	}
	return limits, true, nil
}

func windowsFromTOML(windows []rateLimitWindowTOML, scope string) ([]RateLimitWindow, error) {
	out := make([]RateLimitWindow, 0, len(windows))
	for idx, window := range windows {
		duration, err := time.ParseDuration(strings.TrimSpace(window.Window))
		if err != nil {
			return nil, fmt.Errorf("%s window[%d]: parse duration %q: %w", scope, idx, window.Window, err)
		}
		out = append(out, RateLimitWindow{Requests: window.Requests, Window: duration, Burst: window.Burst})
	}
	return out, nil
}

// endpointMatcherPrefix cuts a templated path at its first placeholder, so
// "/lol/match/v5/matches/{matchId}/timeline" matches every match request.
func endpointMatcherPrefix(endpoint rateLimitEndpointTOML) (string, error) {
	prefix := strings.TrimSpace(endpoint.Prefix)
	if prefix == "" {
		prefix = strings.TrimSpace(endpoint.Path)
	}
	if prefix == "" {
		return "", fmt.Errorf("endpoint rule requires prefix or path")
	}
	if idx := strings.Index(prefix, "{"); idx >= 0 {
		prefix = prefix[:idx]
	}
	prefix = strings.TrimSuffix(prefix, "*")
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if cleaned := path.Clean(prefix); cleaned == "/" {
		return "", fmt.Errorf("endpoint prefix %q is too broad", endpoint.Path)
	}
	return prefix, nil
}
