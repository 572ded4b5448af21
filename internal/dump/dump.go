// Package dump writes match payloads and analysis results to disk.
package dump

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	DefaultDir = "riot_dump"

	PreviewEvents = 8
	PreviewBytes  = 800
	previewSep    = "---"
)

type Kind string

const (
	KindMatch        Kind = "match"
	KindTimeline     Kind = "timeline"
	KindJungleEvents Kind = "jungle_events"
	KindFirstDrake   Kind = "first_drake"
)

// FileName returns "<matchID>.<kind>.json". Path separators in the id are
// replaced so a hostile id cannot escape the dump directory.
func FileName(matchID string, kind Kind) string {
	id := strings.TrimSpace(matchID)
	if id == "" {
		id = "unknown"
	}
	id = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(id)
	return fmt.Sprintf("%s.%s.json", id, kind)
}

// Dir is a dump directory. The zero value writes to DefaultDir.
type Dir string

func (d Dir) Path(matchID string, kind Kind) string {
	root := strings.TrimSpace(string(d))
	if root == "" {
		root = DefaultDir
	}
	return filepath.Join(root, FileName(matchID, kind))
}

func (d Dir) Write(matchID string, kind Kind, v any) (string, error) {
	return WriteJSON(d.Path(matchID, kind), v)
}

// WriteJSON writes v as indented JSON, creating parent directories, and
// returns the absolute path of the file.
func WriteJSON(path string, v any) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", abs, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", filepath.Dir(abs), err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", abs, err)
	}
	return abs, nil
}

// Marshal encodes v with two-space indentation and without HTML escaping.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadJSON decodes a dumped file, keeping numbers as json.Number.
func ReadJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// WritePreview prints up to PreviewEvents items, each cut to PreviewBytes of
// indented JSON and followed by a separator line.
func WritePreview[T any](w io.Writer, items []T) error {
	for _, item := range items[:min(len(items), PreviewEvents)] {
		data, err := Marshal(item)
		if err != nil {
			return err
		}
		text := truncate(strings.TrimRight(string(data), "\n"), PreviewBytes)
		if _, err := fmt.Fprintf(w, "%s \n%s\n", text, previewSep); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
