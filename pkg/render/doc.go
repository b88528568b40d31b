// Package render rasterizes a collage page into an image file.
//
// # Overview
//
// A [Task] takes a [collage.Page] that has been scaled to output pixels and
// draws it onto a canvas filled with the border color:
//
//	page.Scale(float64(width) / page.W)
//	task, err := render.New(page.Clone(), "poster.jpg",
//	    render.WithBorder(0.01*max(page.W, page.H), color.Black),
//	    render.WithProgress(func(done, total int) { ... }),
//	)
//	if err != nil {
//	    return err
//	}
//	err = task.Start(ctx)
//
// Each photo is centre-cropped to the aspect ratio of its cell and resampled
// with a Lanczos filter, so photos are never distorted, only trimmed.
//
// # Output
//
// The format follows the output extension: .jpg/.jpeg, .png, .gif,
// .tif/.tiff and .bmp. The file is written to a temporary file and renamed
// into place, so a failed or canceled render never leaves a partial image.
//
// # Colors
//
// [ParseColor] accepts CSS color names and #rgb/#rrggbb hex values.
package render
