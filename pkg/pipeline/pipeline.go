// Package pipeline provides the collage pipeline shared by all commands.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: expand patterns and read photo dimensions (cached)
//  2. Layout: pick the grid shape, insert photos and adjust geometry
//  3. Render: scale a snapshot of the page to pixels and write the image
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.Options{
//	    Patterns: []string{"~/Pictures/holiday/*.jpg"},
//	    Output:   "holiday.jpg",
//	    Border:   pipeline.DefaultBorder,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("seed", result.Seed)
//
// Run individual stages:
//
//	loaded, err := runner.Load(ctx, opts)
//	page, err := runner.Layout(ctx, loaded.Photos, opts)
//	scaled, err := runner.Render(ctx, page, opts)
package pipeline

import (
	"io"
	"math"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photocollage/pkg/collage"
	"github.com/matzehuels/photocollage/pkg/errors"
	"github.com/matzehuels/photocollage/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and library users
// =============================================================================

const (
	// DefaultBorder is the border width as a fraction of the longer page side.
	// Options.Border is not defaulted since zero is a valid width; the CLI
	// flag uses this value.
	DefaultBorder = 0.01

	// MaxBorder bounds Options.Border; half the page would leave no room.
	MaxBorder = 0.5

	// DefaultColor is the border color.
	DefaultColor = "black"

	// DefaultWidth is the output width in pixels.
	DefaultWidth = 800

	// DefaultRatio is the output height/width ratio (4:3 landscape).
	DefaultRatio = 0.75

	// DefaultQuality is the JPEG quality.
	DefaultQuality = render.DefaultQuality
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the collage pipeline.
type Options struct {
	// Load options
	Patterns    []string `json:"patterns"`
	Refresh     bool     `json:"refresh,omitempty"` // ignore cached photo metadata
	Concurrency int      `json:"concurrency,omitempty"`

	// Layout options
	Ratio            float64  `json:"ratio,omitempty"`
	Seed             uint64   `json:"seed,omitempty"` // 0 picks a random seed
	// MergeProbability nil uses the default; 0 disables merging.
	MergeProbability *float64 `json:"merge_probability,omitempty"`

	// Render options
	Output     string  `json:"output,omitempty"`
	Width      int     `json:"width,omitempty"`
	Border     float64 `json:"border"`
	Color      string  `json:"color,omitempty"`
	Quality    int     `json:"quality,omitempty"`
	LayoutJSON string  `json:"layout_json,omitempty"` // also write the plan here

	// Runtime options (not serialized)
	Logger   *log.Logger         `json:"-"`
	Progress render.ProgressFunc `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Photos are the loaded photos in load order.
	Photos []*collage.Photo

	// Page is the adjusted layout in page units.
	Page *collage.Page

	// Rendered is the pixel-scaled snapshot that was drawn.
	Rendered *collage.Page

	// Seed reproduces the arrangement with Options.Seed.
	Seed uint64

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks photo metadata cache usage.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Photos     int
	Cols       int
	Rows       int
	Merged     int // cells covering more than one grid slot
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks photo metadata cache hits and misses.
type CacheInfo struct {
	Hits   int
	Misses int
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the photo patterns.
func (o *Options) ValidateForLoad() error {
	if len(o.Patterns) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no photos given")
	}
	if o.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "concurrency must not be negative")
	}
	o.setLogger()
	return nil
}

// SetLayoutDefaults sets default values for layout computation. A zero seed
// is replaced by a random one so the result can be reproduced.
func (o *Options) SetLayoutDefaults() {
	if o.Ratio == 0 {
		o.Ratio = DefaultRatio
	}
	if o.Seed == 0 {
		o.Seed = rand.Uint64() | 1
	}
	if o.MergeProbability == nil {
		prob := collage.DefaultMergeProbability
		o.MergeProbability = &prob
	}
	o.setLogger()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.Ratio < 0 || math.IsNaN(o.Ratio) || math.IsInf(o.Ratio, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "ratio must be positive, got %g", o.Ratio)
	}
	if p := *o.MergeProbability; p < 0 || p > 1 || math.IsNaN(p) {
		return errors.New(errors.ErrCodeInvalidInput, "merge probability must be in [0, 1], got %g", p)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Color == "" {
		o.Color = DefaultColor
	}
	if o.Quality == 0 {
		o.Quality = DefaultQuality
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := errors.ValidateOutputPath(o.Output); err != nil {
		return err
	}
	if o.Width < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "width must be positive, got %d", o.Width)
	}
	if err := errors.ValidateFraction("border", o.Border, MaxBorder); err != nil {
		return err
	}
	if _, err := render.ParseColor(o.Color); err != nil {
		return err
	}
	if o.Quality < 1 || o.Quality > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "quality must be in [1, 100], got %d", o.Quality)
	}
	return nil
}

// Height returns the output height in pixels for the configured width and ratio.
func (o *Options) Height() int {
	return int(math.Round(float64(o.Width) * o.Ratio))
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
