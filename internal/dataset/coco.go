package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pixelforge/textsynth/internal/annotation"
)

// cocoDocument is the top-level object serialized to annotations.json
// for each exported subset.
type cocoDocument struct {
	Info        cocoInfo         `json:"info"`
	Licenses    []cocoLicense    `json:"licenses"`
	Images      []cocoImage      `json:"images"`
	Annotations []cocoAnnotation `json:"annotations"`
	Categories  []cocoCategory   `json:"categories"`
}

type cocoInfo struct {
	Description string `json:"description"`
	Version     string `json:"version"`
	Year        int    `json:"year"`
	Contributor string `json:"contributor"`
	DateCreated string `json:"date_created"`
}

type cocoLicense struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type cocoImage struct {
	ID           int    `json:"id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FileName     string `json:"file_name"`
	License      int    `json:"license"`
	DateCaptured string `json:"date_captured"`
}

type cocoAnnotation struct {
	ID           int            `json:"id"`
	ImageID      int            `json:"image_id"`
	CategoryID   int            `json:"category_id"`
	Bbox         [4]int         `json:"bbox"`
	Area         int            `json:"area"`
	Segmentation [][]float64    `json:"segmentation"`
	Iscrowd      int            `json:"iscrowd"`
	Attributes   cocoAttributes `json:"attributes"`
}

// cocoAttributes carries the sample's source text and applied
// transform alongside the standard COCO fields.
type cocoAttributes struct {
	Text      string               `json:"text"`
	Transform annotation.Transform `json:"transform"`
}

type cocoCategory struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Supercategory string `json:"supercategory"`
}

// ExportCOCO writes the dataset in COCO object detection layout. Each
// subset directory holds the copied images next to an annotations.json
// with 1-based image and annotation ids and a single "text" category.
func (e *Exporter) ExportCOCO(outputDir string, opts Options) error {
	return e.export(cocoWriter{}, outputDir, opts)
}

type cocoWriter struct{}

func (cocoWriter) begin(string, bool) error { return nil }

func (cocoWriter) writeSubset(records []annotation.Record, root, subset string) error {
	dir := root
	if subset != "" {
		dir = filepath.Join(root, subset)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	now := time.Now()
	date := now.Format("2006-01-02")
	doc := cocoDocument{
		Info: cocoInfo{
			Description: "Synthesized text detection dataset",
			Version:     "1.0",
			Year:        now.Year(),
			Contributor: "textsynth",
			DateCreated: date,
		},
		Licenses:    []cocoLicense{{ID: 1, Name: "Unknown", URL: "Unknown"}},
		Images:      []cocoImage{},
		Annotations: []cocoAnnotation{},
		Categories:  []cocoCategory{{ID: 1, Name: "text", Supercategory: "text"}},
	}

	for i, rec := range records {
		name := filepath.Base(rec.ImagePath)
		if err := copyFile(rec.ImagePath, filepath.Join(dir, name)); err != nil {
			return err
		}
		w, h, err := imageSize(rec.ImagePath)
		if err != nil {
			return err
		}

		id := i + 1 // COCO ids are 1-based
		doc.Images = append(doc.Images, cocoImage{
			ID:           id,
			Width:        w,
			Height:       h,
			FileName:     name,
			License:      1,
			DateCaptured: date,
		})
		doc.Annotations = append(doc.Annotations, cocoAnnotation{
			ID:           id,
			ImageID:      id,
			CategoryID:   1,
			Bbox:         [4]int{rec.Position.X, rec.Position.Y, rec.Size.W, rec.Size.H},
			Area:         rec.Size.W * rec.Size.H,
			Segmentation: [][]float64{},
			Iscrowd:      0,
			Attributes:   cocoAttributes{Text: rec.Text, Transform: rec.Transform},
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode COCO annotations: %w", err)
	}
	path := filepath.Join(dir, annotation.FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
