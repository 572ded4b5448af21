package riot

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultRateLimitBurst = 20

// Development key limits: 20 requests per second and 100 per two minutes.
var defaultRateLimitWindows = []RateLimitWindow{
	{Requests: 20, Window: time.Second, Burst: 20},
	{Requests: 100, Window: 2 * time.Minute, Burst: 20},
}

type RateLimitWindow struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// RateLimits paces outgoing requests. Every request waits on the default
// limiters plus the limiters of the longest matching endpoint prefix.
type RateLimits struct {
	defaults  []*rate.Limiter
	endpoints []endpointLimiter
}

type endpointLimiter struct {
	prefix   string
	limiters []*rate.Limiter
}

func DefaultRateLimits() *RateLimits {
	limits, err := NewRateLimits(defaultRateLimitWindows, nil)
	if err != nil {
		panic(err)
	}
	return limits
}

func NewRateLimits(defaults []RateLimitWindow, endpoints map[string][]RateLimitWindow) (*RateLimits, error) {
	compiledDefaults, err := compileLimiters(defaults)
	if err != nil {
		return nil, fmt.Errorf("compile default limiters: %w", err)
	}
	if len(compiledDefaults) == 0 {
		if compiledDefaults, err = compileLimiters(defaultRateLimitWindows); err != nil {
			return nil, err
		}
	}

	compiledEndpoints := make([]endpointLimiter, 0, len(endpoints))
	for prefix, windows := range endpoints {
		compiled, err := compileLimiters(windows)
		if err != nil {
			return nil, fmt.Errorf("compile endpoint limiter %q: %w", prefix, err)
		}
		if len(compiled) == 0 {
			continue
		}
		compiledEndpoints = append(compiledEndpoints, endpointLimiter{prefix: prefix, limiters: compiled})
	}
	sort.Slice(compiledEndpoints, func(i, j int) bool {
		return len(compiledEndpoints[i].prefix) > len(compiledEndpoints[j].prefix)
	})

	return &RateLimits{defaults: compiledDefaults, endpoints: compiledEndpoints}, nil
}

func (l *RateLimits) Wait(ctx context.Context, endpoint string) error {
	if l == nil {
		return nil
	}
	for _, limiter := range l.limitersFor(endpoint) {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (l *RateLimits) limitersFor(endpoint string) []*rate.Limiter {
	selected := slices.Clone(l.defaults)
	path := endpointPath(endpoint)
	if path == "" {
		return selected
	}
	for _, entry := range l.endpoints {
		if pathMatchesPrefix(path, entry.prefix) {
			selected = append(selected, entry.limiters...)
			break
		}
	}
	return selected
}

func compileLimiters(windows []RateLimitWindow) ([]*rate.Limiter, error) {
	limiters := make([]*rate.Limiter, 0, len(windows))
	for _, window := range windows {
		if window.Requests <= 0 || window.Window <= 0 {
			return nil, fmt.Errorf("invalid limiter window: requests=%d window=%s", window.Requests, window.Window)
		}
		burst := window.Burst
		if burst <= 0 {
			burst = max(1, min(window.Requests, defaultRateLimitBurst))
		}
		limiters = append(limiters, rate.NewLimiter(rate.Every(window.Window/time.Duration(window.Requests)), burst))
	}
	return limiters, nil
}

func endpointPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Path
}

func pathMatchesPrefix(path, prefix string) bool {
	if path == "" || prefix == "" {
		return false
	}
	if strings.HasSuffix(prefix, "/") {
		return strings.HasPrefix(path, prefix)
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
