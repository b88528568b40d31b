// Package photo finds and reads the photos of a collage.
//
// [Expand] turns file names and doublestar glob patterns ("~/Pictures/**/*.jpg")
// into a sorted, de-duplicated list of image files. A [Loader] reads the pixel
// dimensions of every file concurrently, consulting a [cache.Cache] first so
// large libraries only have their headers decoded once. [Decode] loads the
// full image for rendering.
//
// Supported formats are JPEG, PNG, GIF, BMP, TIFF and WebP. Only the image
// header is read while loading; a truncated file is detected when it is
// rendered.
package photo
