package photo

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/photocollage/pkg/cache"
	"github.com/matzehuels/photocollage/pkg/collage"
	"github.com/matzehuels/photocollage/pkg/errors"
	"github.com/matzehuels/photocollage/pkg/observability"
)

const cacheKeyType = "photo"

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithCache sets the metadata cache. The default never caches.
func WithCache(c cache.Cache) LoaderOption {
	return func(l *Loader) { l.cache = c }
}

// WithLogger sets the logger for per-file debug output.
func WithLogger(logger *log.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// WithConcurrency bounds the number of files read at once. Values below one
// select runtime.NumCPU.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) { l.concurrency = n }
}

// WithRefresh ignores cached entries and re-reads every header.
func WithRefresh() LoaderOption {
	return func(l *Loader) { l.refresh = true }
}

// Loader reads photo dimensions for a set of files.
type Loader struct {
	cache       cache.Cache
	logger      *log.Logger
	concurrency int
	refresh     bool
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.cache == nil {
		l.cache = cache.NewNullCache()
	}
	if l.logger == nil {
		l.logger = log.New(io.Discard)
	}
	if l.concurrency < 1 {
		l.concurrency = runtime.NumCPU()
	}
	return l
}

// LoadResult holds the loaded photos in path order and cache statistics.
type LoadResult struct {
	Photos      []*collage.Photo
	CacheHits   int
	CacheMisses int
}

type dimensions struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Load expands patterns and reads the dimensions of every matched file.
// The first failing file cancels the remaining reads.
func (l *Loader) Load(ctx context.Context, patterns []string) (*LoadResult, error) {
	paths, err := Expand(patterns)
	if err != nil {
		return nil, err
	}

	photos := make([]*collage.Photo, len(paths))
	var hits, misses atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.Wrap(errors.ErrCodeCanceled, err, "load canceled")
			}
			p, hit, err := l.loadOne(gctx, path)
			if err != nil {
				return err
			}
			if hit {
				hits.Add(1)
			} else {
				misses.Add(1)
			}
			photos[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &LoadResult{
		Photos:      photos,
		CacheHits:   int(hits.Load()),
		CacheMisses: int(misses.Load()),
	}, nil
}

func (l *Loader) loadOne(ctx context.Context, path string) (*collage.Photo, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeFileNotFound, err, "stat %s", path)
	}
	key := cache.PhotoKey(path, info.Size(), info.ModTime())

	if !l.refresh {
		if data, hit, err := l.cache.Get(ctx, key); err == nil && hit {
			var d dimensions
			if err := json.Unmarshal(data, &d); err == nil {
				if p, err := collage.NewPhoto(path, d.W, d.H); err == nil {
					observability.Cache().OnCacheHit(ctx, cacheKeyType)
					return p, true, nil
				}
			}
			l.logger.Debug("ignoring corrupt cache entry", "path", path)
		} else if err != nil {
			l.logger.Warn("cache lookup failed", "path", path, "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	}

	w, h, err := DecodeConfig(ctx, path)
	if err != nil {
		return nil, false, err
	}
	p, err := collage.NewPhoto(path, w, h)
	if err != nil {
		return nil, false, err
	}
	l.logger.Debug("read photo header", "path", path, "width", w, "height", h)

	data, _ := json.Marshal(dimensions{W: w, H: h})
	if err := l.cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		l.logger.Warn("cache write failed", "path", path, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
	}
	return p, false, nil
}
