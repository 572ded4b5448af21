package timeline

import (
	"fmt"
	"strconv"
)

const (
	TeamBlue = 100
	TeamRed  = 200
)

// ParticipantMap maps participant ids (1-10) to display names.
type ParticipantMap map[int]string

func ParticipantNames(match Document) ParticipantMap {
	out := ParticipantMap{}
	for _, raw := range arrayField(match.Info(), "participants") {
		p, ok := asObject(raw)
		if !ok {
			continue
		}
		id, ok := intValue(p["participantId"])
		if !ok {
			continue
		}
		name, ok := firstNonEmpty(p, "championName", "summonerName")
		if !ok {
			name = fallbackName(int(id))
		}
		out[int(id)] = name
	}
	return out
}

func (m ParticipantMap) Lookup(id int) (string, bool) {
	name, ok := m[id]
	return name, ok
}

// Name falls back to the synthesized p<id> label for unknown ids.
func (m ParticipantMap) Name(id int) string {
	if name, ok := m[id]; ok {
		return name
	}
	return fallbackName(id)
}

func TeamName(teamID int) string {
	switch teamID {
	case TeamBlue:
		return "BLUE"
	case TeamRed:
		return "RED"
	default:
		return strconv.Itoa(teamID)
	}
}

func fallbackName(id int) string {
	return fmt.Sprintf("p%d", id)
}
