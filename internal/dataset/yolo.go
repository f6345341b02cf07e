package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pixelforge/textsynth/internal/annotation"
)

// yoloManifest is the data.yaml companion file consumed by YOLO
// training tools. Paths are relative to the manifest itself.
type yoloManifest struct {
	Train string   `yaml:"train"`
	Val   string   `yaml:"val"`
	Test  string   `yaml:"test"`
	NC    int      `yaml:"nc"`
	Names []string `yaml:"names"`
}

// ExportYOLO writes the dataset in YOLO layout: parallel images/ and
// labels/ trees with one label line per sample, in the form
//
//	0 <x_center> <y_center> <width> <height>
//
// with all values normalized to the image dimensions. When splitting,
// each tree gains train/val/test subdirectories and a data.yaml
// manifest is written at the output root.
func (e *Exporter) ExportYOLO(outputDir string, opts Options) error {
	return e.export(yoloWriter{}, outputDir, opts)
}

type yoloWriter struct{}

func (yoloWriter) begin(root string, split bool) error {
	for _, dir := range []string{filepath.Join(root, "images"), filepath.Join(root, "labels")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if !split {
		return nil
	}
	manifest := yoloManifest{
		Train: "./images/train",
		Val:   "./images/val",
		Test:  "./images/test",
		NC:    1,
		Names: []string{"text"},
	}
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to encode data.yaml: %w", err)
	}
	path := filepath.Join(root, "data.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (yoloWriter) writeSubset(records []annotation.Record, root, subset string) error {
	imgDir := filepath.Join(root, "images")
	labelDir := filepath.Join(root, "labels")
	if subset != "" {
		imgDir = filepath.Join(imgDir, subset)
		labelDir = filepath.Join(labelDir, subset)
	}
	for _, dir := range []string{imgDir, labelDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	for _, rec := range records {
		name := filepath.Base(rec.ImagePath)
		if err := copyFile(rec.ImagePath, filepath.Join(imgDir, name)); err != nil {
			return err
		}
		w, h, err := imageSize(rec.ImagePath)
		if err != nil {
			return err
		}

		cx := (float64(rec.Position.X) + float64(rec.Size.W)/2) / float64(w)
		cy := (float64(rec.Position.Y) + float64(rec.Size.H)/2) / float64(h)
		bw := float64(rec.Size.W) / float64(w)
		bh := float64(rec.Size.H) / float64(h)
		line := fmt.Sprintf("0 %.6f %.6f %.6f %.6f\n", cx, cy, bw, bh)

		labelName := strings.TrimSuffix(name, filepath.Ext(name)) + ".txt"
		path := filepath.Join(labelDir, labelName)
		if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}
