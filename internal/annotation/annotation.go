// Package annotation defines the persisted record contract shared by the
// synthesis and export halves of the pipeline.
//
// Generation writes one Record per synthesized sample and persists the
// ordered batch as a single JSON array (FileName) living beside the sample
// images. Export reads that file back and never mutates it. The coordinate
// system is pixel-based with (0,0) at the top-left corner.
package annotation

import (
	"encoding/json"
	"fmt"
	"os"
)

// FileName is the annotations file written next to the synthesized images.
// The directory plus this file is the sole persisted state consumed by
// export.
const FileName = "annotations.json"

// Point is a pixel position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a box extent in pixels.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// PointF is a sub-pixel position used by perspective quads.
type PointF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Quad holds four corner points in top-left, top-right, bottom-right,
// bottom-left order.
type Quad [4]PointF

// Transform describes the randomized distortions applied to one sample.
// Each step is optional; present steps are applied in declared order,
// rotation first, then perspective. A Transform with no steps marshals as
// an empty JSON object.
type Transform struct {
	// Rotation is the counter-clockwise rotation angle in degrees.
	Rotation *float64 `json:"rotation,omitempty"`

	// Perspective holds the requested destination corners of the warp.
	// Displacements are soft-clamped before application, so the stored
	// corners record the request, not the applied geometry.
	Perspective *Quad `json:"perspective,omitempty"`
}

// Record is one labeled sample: the text drawn, the bounding box it
// occupies on the composite, the transform used, and the saved image path.
//
// Position and Size are inset-corrected: the glyph canvas keeps a padding
// margin around the drawn text, so the stored box is pulled in 10px per
// side relative to the pasted glyph bounds (Size is glyph extent minus 20
// on each axis, Position is the paste offset plus 10 on each axis).
type Record struct {
	Text      string    `json:"text"`
	Position  Point     `json:"position"`
	Size      Size      `json:"size"`
	Transform Transform `json:"transform"`
	ImagePath string    `json:"image_path"`
}

// Save writes records to path as a pretty-printed UTF-8 JSON array.
func Save(records []Record, path string) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode annotations: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write annotations: %w", err)
	}
	return nil
}

// Load reads a JSON array of records written by Save.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotations: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode annotations %s: %w", path, err)
	}
	return records, nil
}
