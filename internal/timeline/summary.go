package timeline

import (
	"errors"
)

const UnknownTeam = "UNKNOWN"

var ErrNoDrakeKill = errors.New("no drake kills found in match timeline")

// SummaryRawKeys are the event fields copied into FirstDrakeSummary.RawKeys.
var SummaryRawKeys = []string{
	"timestamp", "killerId", "killerTeamId", "monsterType", "monsterSubType", "assistingParticipantIds",
}

type FirstDrakeSummary struct {
	Clock               string         `json:"clock"`
	Team                string         `json:"team"`
	Drake               string         `json:"drake"`
	KillerParticipantID *int           `json:"killer_participantId"`
	KillerChampion      *string        `json:"killer_champion"`
	AssistingChampions  []string       `json:"assisting_champions"`
	Position            any            `json:"position"`
	RawKeys             map[string]any `json:"raw_keys"`
}

func SummarizeFirstDrake(ev Event, participants ParticipantMap) FirstDrakeSummary {
	summary := FirstDrakeSummary{
		Team:               UnknownTeam,
		Drake:              DrakeName(ev),
		AssistingChampions: []string{},
		Position:           ev["position"],
		RawKeys:            make(map[string]any, len(SummaryRawKeys)),
	}
	if ts, ok := ev.Timestamp(); ok {
		summary.Clock = FormatClock(ts)
	}
	if teamID, ok := ev.Int("killerTeamId"); ok {
		summary.Team = TeamName(int(teamID))
	}
	if killerID, ok := ev.Int("killerId"); ok {
		id := int(killerID)
		summary.KillerParticipantID = &id
		if name, found := participants.Lookup(id); found {
			summary.KillerChampion = &name
		}
	}
	for _, id := range ev.Ints("assistingParticipantIds") {
		summary.AssistingChampions = append(summary.AssistingChampions, participants.Name(int(id)))
	}
	for _, key := range SummaryRawKeys {
		summary.RawKeys[key] = ev[key]
	}
	return summary
}

// Report is the per-match output consumed by the persistence collaborators.
type Report struct {
	MatchID      string
	JungleEvents []Event
	FirstDrake   *FirstDrakeSummary
}

func (c *Classifier) Analyze(match, tl Document) Report {
	matchID := tl.MatchID()
	if matchID == "" {
		matchID = match.MatchID()
	}
	report := Report{
		MatchID:      matchID,
		JungleEvents: c.FilterJungleEvents(tl),
	}
	if ev, ok := FirstDrakeEvent(tl); ok {
		summary := SummarizeFirstDrake(ev, ParticipantNames(match))
		report.FirstDrake = &summary
	}
	return report
}

func Analyze(match, tl Document) Report {
	return defaultClassifier.Analyze(match, tl)
}
