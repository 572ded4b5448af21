package timeline

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"maps"
	"math"
	"strconv"
	"strings"
)

// Document is a decoded match or timeline payload. It is treated as read-only.
type Document map[string]any

// Event is a single timeline event object.
type Event map[string]any

func DecodeDocument(r io.Reader) (Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc == nil {
		return Document{}, nil
	}
	return doc, nil
}

func (d Document) Metadata() map[string]any {
	return objectField(d, "metadata")
}

func (d Document) Info() map[string]any {
	return objectField(d, "info")
}

func (d Document) MatchID() string {
	id, _ := stringField(d.Metadata(), "matchId")
	return id
}

// Events walks every frame's events in order. Frames or events that are not
// JSON objects are skipped, and missing collections count as empty.
func (d Document) Events() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, frame := range arrayField(d.Info(), "frames") {
			frameObj, ok := asObject(frame)
			if !ok {
				continue
			}
			for _, raw := range arrayField(frameObj, "events") {
				ev, ok := asObject(raw)
				if !ok {
					continue
				}
				if !yield(Event(ev)) {
					return
				}
			}
		}
	}
}

func (e Event) Type() string {
	t, _ := stringField(e, "type")
	return t
}

// Timestamp reports the event timestamp when it is present and integral.
func (e Event) Timestamp() (int64, bool) {
	return e.Int("timestamp")
}

func (e Event) Int(key string) (int64, bool) {
	return intValue(e[key])
}

func (e Event) String(key string) (string, bool) {
	return stringField(e, key)
}

// Ints returns the integral members of an array field, preserving order.
func (e Event) Ints(key string) []int64 {
	raw := arrayField(e, key)
	out := make([]int64, 0, len(raw))
	for _, v := range raw {
		if n, ok := intValue(v); ok {
			out = append(out, n)
		}
	}
	return out
}

// Clone returns a shallow copy; nested values are shared with the source.
func (e Event) Clone() Event {
	return maps.Clone(e)
}

// timestampKey orders events by their numeric timestamp, using missing when
// the field is absent or not numeric.
func (e Event) timestampKey(missing float64) float64 {
	switch v := e["timestamp"].(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	}
	return missing
}

// firstNonEmpty returns the first key whose value is present and non-empty.
func firstNonEmpty(obj map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := stringField(obj, key); ok {
			return s, true
		}
	}
	return "", false
}

func asObject(v any) (map[string]any, bool) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, true
	case Document:
		return typed, true
	case Event:
		return typed, true
	default:
		return nil, false
	}
}

func objectField(obj map[string]any, key string) map[string]any {
	if obj == nil {
		return nil
	}
	out, _ := asObject(obj[key])
	return out
}

func arrayField(obj map[string]any, key string) []any {
	if obj == nil {
		return nil
	}
	switch typed := obj[key].(type) {
	case []any:
		return typed
	case []Event:
		out := make([]any, len(typed))
		for i, ev := range typed {
			out[i] = ev
		}
		return out
	case []map[string]any:
		out := make([]any, len(typed))
		for i, ev := range typed {
			out[i] = ev
		}
		return out
	default:
		return nil
	}
}

func stringField(obj map[string]any, key string) (string, bool) {
	if obj == nil {
		return "", false
	}
	switch v := obj[key].(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case json.Number:
		return v.String(), v != ""
	default:
		s := fmt.Sprint(v)
		return s, s != ""
	}
}

func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(strings.TrimSpace(n.String()), 10, 64); err == nil {
			return i, true
		}
		return 0, false
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) && math.Abs(n) < 1<<53 {
			return int64(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}
