// Package notify posts analysis results to a Discord webhook.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bingbr/league-timeline/internal/timeline"
)

const (
	defaultUsername = "league-timeline"
	footerText      = "league-timeline"

	colorBlue    = 0x1E90FF
	colorRed     = 0xCC0000
	colorUnknown = 0x95A5A6
)

var (
	ErrInvalidWebhookURL = errors.New("invalid discord webhook url")

	webhookPath = regexp.MustCompile(`^/api(?:/v\d+)?/webhooks/(\d+)/([\w-]+)/?$`)
	titleCaser  = cases.Title(language.English)
)

// WebhookExecutor is the part of *discordgo.Session used to post messages.
type WebhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Notifier struct {
	exec     WebhookExecutor
	id       string
	token    string
	username string
	now      func() time.Time
}

type Option func(*Notifier)

func WithExecutor(exec WebhookExecutor) Option {
	return func(n *Notifier) {
		if exec != nil {
			n.exec = exec
		}
	}
}

func WithUsername(username string) Option {
	return func(n *Notifier) {
		if username = strings.TrimSpace(username); username != "" {
			n.username = username
		}
	}
}

func NewWebhookNotifier(rawURL string, opts ...Option) (*Notifier, error) {
	id, token, err := ParseWebhookURL(rawURL)
	if err != nil {
		return nil, err
	}
	n := &Notifier{id: id, token: token, username: defaultUsername, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	if n.exec == nil {
		// Webhook execution is authorised by the token in the URL, so the
		// session needs no bot token.
		session, err := discordgo.New("")
		if err != nil {
			return nil, fmt.Errorf("create discord session: %w", err)
		}
		n.exec = session
	}
	return n, nil
}

// ParseWebhookURL extracts the webhook id and token from
// https://discord.com/api/webhooks/{id}/{token}.
func ParseWebhookURL(rawURL string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidWebhookURL, err)
	}
	if u.Scheme != "https" || u.Host == "" {
		return "", "", fmt.Errorf("%w: https url required", ErrInvalidWebhookURL)
	}
	m := webhookPath.FindStringSubmatch(u.Path)
	if m == nil {
		return "", "", fmt.Errorf("%w: unexpected path %q", ErrInvalidWebhookURL, u.Path)
	}
	return m[1], m[2], nil
}

func (n *Notifier) NotifyFirstDrake(ctx context.Context, matchID string, summary timeline.FirstDrakeSummary) error {
	if n == nil || n.exec == nil {
		return nil
	}
	embed := FirstDrakeEmbed(matchID, summary)
	embed.Timestamp = n.now().UTC().Format(time.RFC3339)

	params := &discordgo.WebhookParams{
		Username: n.username,
		Embeds:   []*discordgo.MessageEmbed{embed},
	}
	if _, err := n.exec.WebhookExecute(n.id, n.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("post first drake for %s: %w", matchID, err)
	}
	return nil
}

func FirstDrakeEmbed(matchID string, summary timeline.FirstDrakeSummary) *discordgo.MessageEmbed {
	team := displayName(summary.Team)
	drake := displayName(summary.Drake)

	clock := summary.Clock
	if clock == "" {
		clock = "an unknown time"
	}

	killer := "-"
	switch {
	case summary.KillerChampion != nil:
		killer = *summary.KillerChampion
	case summary.KillerParticipantID != nil:
		killer = fmt.Sprintf("p%d", *summary.KillerParticipantID)
	}
	assists := "None"
	if len(summary.AssistingChampions) > 0 {
		assists = strings.Join(summary.AssistingChampions, ", ")
	}

	return &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{Name: "First Drake"},
		Title:  fmt.Sprintf("%s Drake", drake),
		Description: fmt.Sprintf(
			"%s side took the first drake at **%s**.",
			team, clock,
		),
		Color: teamColor(summary.Team),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Match", Value: orDash(matchID), Inline: true},
			{Name: "Killer", Value: killer, Inline: true},
			{Name: "Assists", Value: assists, Inline: false},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: footerText},
	}
}

func displayName(raw string) string {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "_", " "))
	if raw == "" {
		return "Unknown"
	}
	return titleCaser.String(raw)
}

func teamColor(team string) int {
	switch team {
	case timeline.TeamName(timeline.TeamBlue):
		return colorBlue
	case timeline.TeamName(timeline.TeamRed):
		return colorRed
	default:
		return colorUnknown
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
