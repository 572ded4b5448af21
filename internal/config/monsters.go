package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/bingbr/league-timeline/internal/timeline"
)

// Monster vocabulary file layout:
//
//	[classifier]
//	monster_types = ["DRAGON", "BARON_NASHOR", "HORDE"]
//	strict = true
type monsterFile struct {
	Classifier monsterSection `toml:"classifier"`
}

type monsterSection struct {
	MonsterTypes []string `toml:"monster_types"`
	Strict       *bool    `toml:"strict"`
}

// LoadClassifier builds a jungle classifier from a TOML file. A blank path or
// a missing file keeps the default vocabulary. strictOverride, when non-nil,
// wins over the file's strict flag.
func LoadClassifier(path string, strictOverride *bool) (*timeline.Classifier, bool, error) {
	var (
		opts   []timeline.Option
		loaded bool
	)

	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, false, fmt.Errorf("read monster config %q: %w", path, err)
		default:
			var file monsterFile
			meta, err := toml.Decode(string(data), &file)
			if err != nil {
				return nil, false, fmt.Errorf("parse monster config %q: %w", path, err)
			}
			if undecoded := meta.Undecoded(); len(undecoded) > 0 {
				keys := make([]string, 0, len(undecoded))
				for _, key := range undecoded {
					keys = append(keys, key.String())
				}
				slices.Sort(keys)
				return nil, false, fmt.Errorf("parse monster config %q: unknown keys: %s", path, strings.Join(keys, ", "))
			}
			if meta.IsDefined("classifier", "monster_types") {
				if len(file.Classifier.MonsterTypes) == 0 {
					return nil, false, fmt.Errorf("monster config %q: monster_types is empty", path)
				}
				opts = append(opts, timeline.WithMonsterTypes(file.Classifier.MonsterTypes...))
			}
			if file.Classifier.Strict != nil {
				opts = append(opts, timeline.WithStrict(*file.Classifier.Strict))
			}
			loaded = true
		}
	}

	if strictOverride != nil {
		opts = append(opts, timeline.WithStrict(*strictOverride))
	}
	return timeline.NewClassifier(opts...), loaded, nil
}
