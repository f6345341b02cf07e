package annotation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	deg := 1.5
	records := []Record{
		{
			Text:      "永",
			Position:  Point{X: 42, Y: 17},
			Size:      Size{W: 180, H: 180},
			Transform: Transform{Rotation: &deg},
			ImagePath: "out/000000.png",
		},
		{
			Text:      "hello",
			Position:  Point{X: 10, Y: 10},
			Size:      Size{W: 120, H: 60},
			ImagePath: "out/000001.png",
		},
	}

	path := filepath.Join(t.TempDir(), FileName)
	if err := Save(records, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded) != len(records) {
		t.Fatalf("record count: got %d, want %d", len(loaded), len(records))
	}
	if loaded[0].Text != "永" {
		t.Errorf("text: got %q, want %q", loaded[0].Text, "永")
	}
	if loaded[0].Position != records[0].Position {
		t.Errorf("position: got %+v, want %+v", loaded[0].Position, records[0].Position)
	}
	if loaded[0].Size != records[0].Size {
		t.Errorf("size: got %+v, want %+v", loaded[0].Size, records[0].Size)
	}
	if loaded[0].Transform.Rotation == nil || *loaded[0].Transform.Rotation != deg {
		t.Errorf("rotation: got %v, want %v", loaded[0].Transform.Rotation, deg)
	}
	if loaded[1].Transform.Rotation != nil || loaded[1].Transform.Perspective != nil {
		t.Errorf("empty transform should stay empty after round trip: %+v", loaded[1].Transform)
	}
}

func TestSave_HanziNotEscaped(t *testing.T) {
	records := []Record{{Text: "啊", ImagePath: "000000.png"}}

	path := filepath.Join(t.TempDir(), FileName)
	if err := Save(records, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read back file: %v", err)
	}
	if !strings.Contains(string(data), "啊") {
		t.Errorf("annotations file should contain the raw hanzi, got:\n%s", data)
	}
}

func TestTransform_EmptyMarshalsAsEmptyObject(t *testing.T) {
	data, err := json.Marshal(Transform{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("empty transform: got %s, want {}", data)
	}
}

func TestTransform_StepPresence(t *testing.T) {
	deg := -2.0
	quad := Quad{{0, 0}, {99, 0}, {99, 99}, {0, 99}}

	tests := []struct {
		name      string
		transform Transform
		wantKeys  []string
		skipKeys  []string
	}{
		{"rotation only", Transform{Rotation: &deg}, []string{"rotation"}, []string{"perspective"}},
		{"perspective only", Transform{Perspective: &quad}, []string{"perspective"}, []string{"rotation"}},
		{"both", Transform{Rotation: &deg, Perspective: &quad}, []string{"rotation", "perspective"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.transform)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			for _, key := range tt.wantKeys {
				if !strings.Contains(string(data), `"`+key+`"`) {
					t.Errorf("marshaled transform missing %q: %s", key, data)
				}
			}
			for _, key := range tt.skipKeys {
				if strings.Contains(string(data), `"`+key+`"`) {
					t.Errorf("marshaled transform should omit %q: %s", key, data)
				}
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("Load should fail for a missing file")
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load should fail for corrupt JSON")
	}
}
