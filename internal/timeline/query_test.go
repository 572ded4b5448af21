package timeline

import (
	"testing"
)

func TestCompileQuery_Empty(t *testing.T) {
	if _, err := CompileQuery("   "); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestCompileQuery_Invalid(t *testing.T) {
	if _, err := CompileQuery(`monsterType ==`); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestQuery_Filter(t *testing.T) {
	events := FilterJungleEvents(decodeFixture(t, timelineFixture))

	q, err := CompileQuery(`monsterType == "DRAGON" && timestamp < 200000`)
	if err != nil {
		t.Fatalf("CompileQuery() error = %v", err)
	}
	got, err := q.Filter(events)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(got) != 1 || got[0][ClockField] != "02:00" {
		t.Fatalf("Filter() = %v, want the 02:00 dragon", got)
	}
}

func TestQuery_MissingFieldIsNil(t *testing.T) {
	q, err := CompileQuery(`killerTeamId == nil`)
	if err != nil {
		t.Fatalf("CompileQuery() error = %v", err)
	}
	matched, err := q.Match(Event{"type": "MONSTER_KILL"})
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if !matched {
		t.Fatalf("Match() = false, want true for missing field")
	}
}

func TestQuery_NilKeepsAll(t *testing.T) {
	var q *Query
	events := []Event{{"type": "MONSTER_KILL"}}
	got, err := q.Filter(events)
	if err != nil || len(got) != 1 {
		t.Fatalf("nil Query Filter() = %v, %v", got, err)
	}
}
