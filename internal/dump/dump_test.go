package dump

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		id   string
		kind Kind
		want string
	}{
		{"NA1_5012345678", KindMatch, "NA1_5012345678.match.json"},
		{" NA1_1 ", KindTimeline, "NA1_1.timeline.json"},
		{"NA1_1", KindJungleEvents, "NA1_1.jungle_events.json"},
		{"NA1_1", KindFirstDrake, "NA1_1.first_drake.json"},
		{"", KindMatch, "unknown.match.json"},
		{"../etc/x", KindMatch, "__etc_x.match.json"},
	}
	for _, tt := range tests {
		if got := FileName(tt.id, tt.kind); got != tt.want {
			t.Fatalf("FileName(%q, %q) = %q, want %q", tt.id, tt.kind, got, tt.want)
		}
	}
}

func TestWriteJSON_CreatesDirsAndReturnsAbsPath(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "dump")
	path, err := Dir(root).Write("NA1_9", KindFirstDrake, map[string]any{
		"drake": "INFERNAL",
		"note":  "<b>&</b>",
	})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Fatalf("path %q is not absolute", path)
	}
	if filepath.Base(path) != "NA1_9.first_drake.json" {
		t.Fatalf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	want := "{\n  \"drake\": \"INFERNAL\",\n  \"note\": \"<b>&</b>\"\n}\n"
	if string(data) != want {
		t.Fatalf("dump contents = %q, want %q", data, want)
	}

	var back map[string]any
	if err := ReadJSON(path, &back); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if back["drake"] != "INFERNAL" {
		t.Fatalf("ReadJSON() = %v", back)
	}
}

func TestDirZeroValueUsesDefault(t *testing.T) {
	if got := Dir("").Path("NA1_1", KindMatch); got != filepath.Join(DefaultDir, "NA1_1.match.json") {
		t.Fatalf("Path() = %q", got)
	}
}

func TestWritePreview(t *testing.T) {
	items := make([]map[string]any, 10)
	for i := range items {
		items[i] = map[string]any{"i": i}
	}
	items[0]["pad"] = strings.Repeat("é", 600)

	var buf bytes.Buffer
	if err := WritePreview(&buf, items); err != nil {
		t.Fatalf("WritePreview() error = %v", err)
	}
	blocks := strings.Split(strings.TrimSuffix(buf.String(), "---\n"), "---\n")
	if len(blocks) != PreviewEvents {
		t.Fatalf("blocks = %d, want %d", len(blocks), PreviewEvents)
	}
	first := strings.TrimSuffix(blocks[0], " \n")
	if len(first) > PreviewBytes {
		t.Fatalf("first block has %d bytes, want <= %d", len(first), PreviewBytes)
	}
	if !strings.Contains(blocks[1], `"i": 1`) {
		t.Fatalf("second block = %q", blocks[1])
	}
}

func TestWritePreview_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePreview[map[string]any](&buf, nil); err != nil {
		t.Fatalf("WritePreview() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("WritePreview() wrote %q", buf.String())
	}
}
