package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pixelforge/textsynth/internal/annotation"
)

// createmlEntry is one image record in a CreateML object detection
// annotations file.
type createmlEntry struct {
	Image       string        `json:"image"`
	Annotations []createmlBox `json:"annotations"`
}

type createmlBox struct {
	Label       string              `json:"label"`
	Coordinates createmlCoordinates `json:"coordinates"`
}

// createmlCoordinates locate a box by its center point, as CreateML
// expects, rather than the top-left corner used elsewhere.
type createmlCoordinates struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

// ExportCreateML writes the dataset in CreateML object detection
// layout. Each subset directory holds the copied images next to an
// annotations.json listing one entry per image, with each box labeled
// by the sample's own text.
func (e *Exporter) ExportCreateML(outputDir string, opts Options) error {
	return e.export(createmlWriter{}, outputDir, opts)
}

type createmlWriter struct{}

func (createmlWriter) begin(string, bool) error { return nil }

func (createmlWriter) writeSubset(records []annotation.Record, root, subset string) error {
	dir := root
	if subset != "" {
		dir = filepath.Join(root, subset)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	entries := make([]createmlEntry, 0, len(records))
	for _, rec := range records {
		name := filepath.Base(rec.ImagePath)
		if err := copyFile(rec.ImagePath, filepath.Join(dir, name)); err != nil {
			return err
		}
		entries = append(entries, createmlEntry{
			Image: name,
			Annotations: []createmlBox{{
				Label: rec.Text,
				Coordinates: createmlCoordinates{
					X:      float64(rec.Position.X) + float64(rec.Size.W)/2,
					Y:      float64(rec.Position.Y) + float64(rec.Size.H)/2,
					Width:  rec.Size.W,
					Height: rec.Size.H,
				},
			}},
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode CreateML annotations: %w", err)
	}
	path := filepath.Join(dir, annotation.FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
