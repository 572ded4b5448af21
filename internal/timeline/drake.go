package timeline

import (
	"strings"
)

const (
	MonsterDragon = "DRAGON"

	// Events without a timestamp never win over timed ones.
	missingTimestampKey = 1e18
)

// FirstDrakeEvent finds the earliest dragon kill. The returned event is a copy.
func FirstDrakeEvent(doc Document) (Event, bool) {
	var (
		first    Event
		firstKey float64
	)
	for ev := range doc.Events() {
		if ev.Type() != EventEliteMonsterKill {
			continue
		}
		monster, _ := ev.String("monsterType")
		if strings.ToUpper(monster) != MonsterDragon {
			continue
		}
		key := ev.timestampKey(missingTimestampKey)
		if first == nil || key < firstKey {
			first, firstKey = ev, key
		}
	}
	if first == nil {
		return nil, false
	}
	return first.Clone(), true
}

// DrakeName returns the elemental label of a dragon kill, e.g. INFERNAL,
// OCEAN or ELDER.
func DrakeName(ev Event) string {
	sub, ok := firstNonEmpty(ev, "monsterSubType", "monsterTypeName")
	if !ok {
		return MonsterDragon
	}
	return strings.TrimSuffix(strings.ToUpper(sub), "_DRAGON")
}
