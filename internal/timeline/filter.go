package timeline

import (
	"cmp"
	"fmt"
	"slices"
)

const ClockField = "clock"

// FormatClock renders game time in milliseconds as MM:SS. Minutes are not
// capped at two digits.
func FormatClock(ms int64) string {
	seconds := floorDiv(ms, 1000)
	return fmt.Sprintf("%02d:%02d", floorDiv(seconds, 60), floorMod(seconds, 60))
}

// FilterJungleEvents returns annotated copies of the jungle events in doc,
// ordered by timestamp. Events without a timestamp sort as zero and ties keep
// their timeline order.
func (c *Classifier) FilterJungleEvents(doc Document) []Event {
	out := []Event{}
	for ev := range doc.Events() {
		if !c.IsJungleEvent(ev) {
			continue
		}
		out = append(out, Annotate(ev))
	}
	slices.SortStableFunc(out, func(a, b Event) int {
		return cmp.Compare(a.timestampKey(0), b.timestampKey(0))
	})
	return out
}

func FilterJungleEvents(doc Document) []Event {
	return defaultClassifier.FilterJungleEvents(doc)
}

// Annotate copies ev and adds the clock field when the timestamp is integral.
func Annotate(ev Event) Event {
	out := ev.Clone()
	if out == nil {
		out = Event{}
	}
	if ts, ok := ev.Timestamp(); ok {
		out[ClockField] = FormatClock(ts)
	}
	return out
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
