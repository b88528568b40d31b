// Package pkg provides the libraries behind the photocollage command.
//
// # Overview
//
// Photocollage packs a set of photos into a rectangular page. Photos fill a
// grid row by row; some of them are merged across two columns, two rows or
// both, and the row heights and column widths are then relaxed so every photo
// is shown close to its natural aspect ratio. The result is drawn with a
// uniform border and written as a single image.
//
// # Architecture
//
// The data flow through photocollage:
//
//	Files and glob patterns
//	         ↓
//	    [photo] package (expand patterns, read dimensions, cached)
//	         ↓
//	    [collage] package (grid shape, insertion, sealing, adjust)
//	         ↓
//	    [render] package (scale, crop, draw borders, encode)
//	         ↓
//	    JPEG/PNG/GIF/BMP/TIFF image, optional JSON plan
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/photocollage/pkg/cache"
//	    "github.com/matzehuels/photocollage/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Patterns: []string{"holiday/*.jpg"},
//	    Output:   "holiday.jpg",
//	    Width:    2400,
//	    Border:   pipeline.DefaultBorder,
//	})
//
// # Main Packages
//
// [collage] - The layout engine: [collage.Columns] picks the grid width,
// [collage.Page] places cells and merges them, Seal closes the last band and
// Adjust computes the geometry. [collage/sink] exports a page as JSON.
//
// [photo] - Pattern expansion with doublestar globs, header-only dimension
// reads and a concurrent, cached loader.
//
// [render] - A render task that crops each photo to its cell, draws it onto
// a border-colored canvas and writes the image atomically.
//
// [pipeline] - Load → layout → render orchestration shared by every command.
//
// [cache] - Photo metadata caches: file, Redis and null.
//
// [settings] - Remembered preferences in a YAML or TOML file.
//
// [errors] - Error codes shared by all packages.
//
// [observability] - Hooks for metrics and tracing around each stage.
//
// # Testing
//
//	go test ./pkg/...
//
// [collage]: https://pkg.go.dev/github.com/matzehuels/photocollage/pkg/collage
// [collage/sink]: https://pkg.go.dev/github.com/matzehuels/photocollage/pkg/collage/sink
// [photo]: https://pkg.go.dev/github.com/matzehuels/photocollage/pkg/photo
// [render]: https://pkg.go.dev/github.com/matzehuels/photocollage/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/photocollage/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/photocollage/pkg/cache
// [settings]: https://pkg.go.dev/github.com/matzehuels/photocollage/pkg/settings
// [errors]: https://pkg.go.dev/github.com/matzehuels/photocollage/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/photocollage/pkg/observability
package pkg
