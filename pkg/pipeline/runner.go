package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/renameio"

	"github.com/matzehuels/photocollage/pkg/cache"
	"github.com/matzehuels/photocollage/pkg/collage"
	"github.com/matzehuels/photocollage/pkg/collage/sink"
	"github.com/matzehuels/photocollage/pkg/errors"
	"github.com/matzehuels/photocollage/pkg/observability"
	"github.com/matzehuels/photocollage/pkg/photo"
	"github.com/matzehuels/photocollage/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and logger.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs the complete load → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Seed: opts.Seed}

	// Stage 1: Load
	loadStart := time.Now()
	loaded, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Photos = len(loaded.Photos)
	result.CacheInfo = CacheInfo{Hits: loaded.CacheHits, Misses: loaded.CacheMisses}

	r.Logger.Info("loaded photos",
		"photos", len(loaded.Photos),
		"cached", loaded.CacheHits,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	page, err := r.Layout(ctx, loaded.Photos, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Page = page
	result.Photos = loaded.Photos
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Cols = page.Cols
	result.Stats.Rows = page.Rows()
	result.Stats.Merged = countMerged(page)

	r.Logger.Info("computed layout",
		"cols", page.Cols,
		"rows", page.Rows(),
		"merged", result.Stats.Merged,
		"seed", opts.Seed,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	rendered, err := r.Render(ctx, page, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Rendered = rendered
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered collage",
		"output", opts.Output,
		"size", fmt.Sprintf("%dx%d", opts.Width, opts.Height()),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load expands the photo patterns and reads every photo's dimensions.
func (r *Runner) Load(ctx context.Context, opts Options) (res *photo.LoadResult, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, len(opts.Patterns))
	defer func() {
		n := 0
		if res != nil {
			n = len(res.Photos)
		}
		observability.Pipeline().OnLoadComplete(ctx, n, time.Since(start), err)
	}()

	loaderOpts := []photo.LoaderOption{
		photo.WithCache(r.Cache),
		photo.WithLogger(opts.Logger),
		photo.WithConcurrency(opts.Concurrency),
	}
	if opts.Refresh {
		loaderOpts = append(loaderOpts, photo.WithRefresh())
	}
	return photo.NewLoader(loaderOpts...).Load(ctx, opts.Patterns)
}

// Layout arranges photos on a fresh page of unit width. The photos slice is
// left in its original order.
func (r *Runner) Layout(ctx context.Context, photos []*collage.Photo, opts Options) (page *collage.Page, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, len(photos))
	defer func() {
		cols, rows := 0, 0
		if page != nil {
			cols, rows = page.Cols, page.Rows()
		}
		observability.Pipeline().OnLayoutComplete(ctx, cols, rows, time.Since(start), err)
	}()

	uc, err := collage.NewUserCollage(photos)
	if err != nil {
		return nil, err
	}
	return uc.MakePage(opts.Ratio,
		collage.WithSeed(opts.Seed),
		collage.WithMergeProbability(*opts.MergeProbability),
	)
}

// Render scales a snapshot of page to the output width and writes the image.
// The page itself is left in page units. It returns the scaled snapshot.
func (r *Runner) Render(ctx context.Context, page *collage.Page, opts Options) (scaled *collage.Page, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Output)
	defer func() { observability.Pipeline().OnRenderComplete(ctx, opts.Output, time.Since(start), err) }()

	c, err := render.ParseColor(opts.Color)
	if err != nil {
		return nil, err
	}

	scaled = page.Clone()
	scaled.Scale(float64(opts.Width) / scaled.W)
	border := opts.Border * max(scaled.W, scaled.H)

	task, err := render.New(scaled, opts.Output,
		render.WithBorder(border, c),
		render.WithQuality(opts.Quality),
		render.WithProgress(opts.Progress),
		render.WithLogger(opts.Logger),
	)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("starting render task", "task", task.ID, "border_px", border)
	if err := task.Start(ctx); err != nil {
		return nil, err
	}

	if opts.LayoutJSON != "" {
		if err := writeLayoutJSON(scaled, opts); err != nil {
			return nil, err
		}
	}
	return scaled, nil
}

// WriteLayout writes the JSON plan of page to path without rendering.
func WriteLayout(page *collage.Page, path string, seed uint64) error {
	return writeLayoutJSON(page, Options{LayoutJSON: path, Seed: seed})
}

func writeLayoutJSON(page *collage.Page, opts Options) error {
	data, err := sink.RenderJSON(page,
		sink.WithJSONSeed(opts.Seed),
		sink.WithJSONOutput(opts.Output),
		sink.WithJSONBorder(opts.Border, opts.Color),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	if err := os.MkdirAll(filepath.Dir(opts.LayoutJSON), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "create directory for %s", opts.LayoutJSON)
	}
	if err := renameio.WriteFile(opts.LayoutJSON, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "write %s", opts.LayoutJSON)
	}
	return nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func countMerged(page *collage.Page) int {
	n := 0
	for _, c := range page.Cells() {
		if c.Merged() {
			n++
		}
	}
	return n
}
