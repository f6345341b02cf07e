// Package background supplies the surfaces that synthesized text gets
// composited onto: solid fills, per-pixel noise, or images loaded from
// disk.
package background

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anthonynsimon/bild/noise"
	"github.com/disintegration/imaging"
)

// ErrNoBackground is returned by Background when the source holds neither
// a loaded directory set nor a generated surface.
var ErrNoBackground = errors.New("no background available")

// Source owns a collection of background surfaces and hands one out per
// request. It holds either a set of images decoded from a directory or a
// single generated/loaded surface; the directory set takes priority when
// both exist.
//
// Source is not safe for concurrent use: the synthesis pipeline is
// sequential and shares one random source across components.
type Source struct {
	images []image.Image // decoded directory set, selection pool
	single image.Image   // generated or individually loaded surface
	rng    *rand.Rand
}

// NewSource creates a Source seeded from the current time.
func NewSource() *Source {
	return NewSourceWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSourceWithRand creates a Source drawing all random choices from rng.
// Use this to make background selection reproducible.
func NewSourceWithRand(rng *rand.Rand) *Source {
	return &Source{rng: rng}
}

// LoadDirectory scans dir (non-recursively) for raster images and decodes
// every readable one into the selection pool. Recognized extensions are
// .png, .jpg, .jpeg and .bmp, case-insensitive. Files that fail to decode
// are skipped; the scan fails only if the directory cannot be listed or no
// file decodes.
func (s *Source) LoadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list background directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isRasterFile(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	var images []image.Image
	for _, path := range paths {
		img, err := imaging.Open(path)
		if err != nil {
			continue
		}
		images = append(images, img)
	}
	if len(images) == 0 {
		return fmt.Errorf("no decodable background images in %s", dir)
	}

	s.images = images
	return nil
}

// LoadImage decodes a single image file as the held surface, replacing any
// previously generated or loaded one.
func (s *Source) LoadImage(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("failed to load background image: %w", err)
	}
	s.single = img
	return nil
}

// GenerateSolid replaces the held surface with a uniform fill of the given
// size and color.
func (s *Source) GenerateSolid(width, height int, c color.Color) {
	s.single = imaging.New(width, height, c)
}

// GenerateNoise replaces the held surface with uniform random noise:
// every pixel gets independent uniform bytes per channel.
func (s *Source) GenerateNoise(width, height int) {
	// noise.Generate fills rows from several goroutines, so draws from
	// the shared source must be serialized.
	var mu sync.Mutex
	s.single = noise.Generate(width, height, &noise.Options{
		NoiseFn: func() uint8 {
			mu.Lock()
			defer mu.Unlock()
			return uint8(s.rng.Intn(256))
		},
		Monochrome: false,
	})
}

// Background returns a surface for one composition: a uniformly random
// element of the directory set if one is loaded, otherwise the single
// generated/loaded surface. Selection is with replacement, so consecutive
// calls may return the same image.
func (s *Source) Background() (image.Image, error) {
	if len(s.images) > 0 {
		return s.images[s.rng.Intn(len(s.images))], nil
	}
	if s.single != nil {
		return s.single, nil
	}
	return nil, ErrNoBackground
}

// Resize rescales the single held surface to the given size using Lanczos
// resampling. The directory set is never resized; without a single surface
// this is a no-op.
func (s *Source) Resize(width, height int) {
	if s.single == nil {
		return
	}
	s.single = imaging.Resize(s.single, width, height, imaging.Lanczos)
}

// isRasterFile reports whether name carries a recognized raster image
// extension.
func isRasterFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".bmp":
		return true
	}
	return false
}
