package photo

import (
	"context"
	"image"
	"os"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/photocollage/pkg/errors"
	"github.com/matzehuels/photocollage/pkg/observability"
)

// DecodeConfig reads the pixel dimensions from the image header at path.
func DecodeConfig(ctx context.Context, path string) (w, h int, err error) {
	start := time.Now()
	defer func() { observability.Photo().OnDecode(ctx, path, false, time.Since(start), err) }()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return 0, 0, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeDecode, err, "open %s", path)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeDecode, err, "read header of %s", path)
	}
	if err := errors.ValidateDimensions(path, cfg.Width, cfg.Height); err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// Decode loads the full image at path. EXIF orientation is ignored so the
// decoded size always matches what DecodeConfig reported.
func Decode(ctx context.Context, path string) (img image.Image, err error) {
	start := time.Now()
	defer func() { observability.Photo().OnDecode(ctx, path, true, time.Since(start), err) }()

	img, err = imaging.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode %s", path)
	}
	return img, nil
}
