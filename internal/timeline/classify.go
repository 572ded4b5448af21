package timeline

import (
	"slices"
	"strings"
)

const (
	EventEliteMonsterKill = "ELITE_MONSTER_KILL"
	EventMonsterKill      = "MONSTER_KILL"
)

// DefaultMonsterTypes lists the jungle camps and objectives recognised for
// MONSTER_KILL events. Identifiers change between game patches; override them
// with WithMonsterTypes.
var DefaultMonsterTypes = []string{
	// Elite objectives
	"DRAGON", "RIFTHERALD", "BARON_NASHOR", "ATAKHAN", "VOIDGRUB",
	// Regular camps
	"BLUE_SENTINEL", "RED_BRAMBLEBACK", "GROMP", "KRUGS", "RAPTORS",
	"MURKWOLVES", "SCUTTLE_CRAB",
}

var defaultClassifier = NewClassifier()

type Classifier struct {
	monsters map[string]struct{}
	strict   bool
}

type Option func(*Classifier)

// WithMonsterTypes replaces the monster allow-list. Blank entries are ignored.
func WithMonsterTypes(types ...string) Option {
	return func(c *Classifier) {
		c.monsters = monsterSet(types)
	}
}

// WithStrict drops MONSTER_KILL events that carry no monster field instead of
// keeping them for review.
func WithStrict(strict bool) Option {
	return func(c *Classifier) {
		c.strict = strict
	}
}

func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{monsters: monsterSet(DefaultMonsterTypes)}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Classifier) Strict() bool {
	return c != nil && c.strict
}

func (c *Classifier) MonsterTypes() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.monsters))
	for name := range c.monsters {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func (c *Classifier) IsJungleEvent(ev Event) bool {
	if c == nil {
		c = defaultClassifier
	}
	switch ev.Type() {
	case EventEliteMonsterKill:
		return true
	case EventMonsterKill:
		monster, ok := firstNonEmpty(ev, "monsterType", "monsterSubType", "monsterTypeName")
		if !ok {
			return !c.strict
		}
		_, known := c.monsters[strings.ToUpper(monster)]
		return known
	default:
		return false
	}
}

func IsJungleEvent(ev Event) bool {
	return defaultClassifier.IsJungleEvent(ev)
}

func monsterSet(types []string) map[string]struct{} {
	set := make(map[string]struct{}, len(types))
	for _, name := range types {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}
