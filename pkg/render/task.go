package render

import (
	"context"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/google/renameio"
	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/matzehuels/photocollage/pkg/collage"
	"github.com/matzehuels/photocollage/pkg/errors"
	"github.com/matzehuels/photocollage/pkg/observability"
	"github.com/matzehuels/photocollage/pkg/photo"
)

// DefaultQuality is the JPEG quality used unless WithQuality is given.
const DefaultQuality = 95

// Decoder loads the full image behind a photo source.
type Decoder func(ctx context.Context, source string) (image.Image, error)

// ProgressFunc is called after each photo is drawn.
type ProgressFunc func(done, total int)

// Option configures a Task.
type Option func(*Task)

// WithBorder sets the border width in pixels and its color. The border
// surrounds the page and separates neighbouring cells.
func WithBorder(width float64, c color.Color) Option {
	return func(t *Task) { t.border = max(width, 0); t.color = c }
}

// WithDecoder replaces photo.Decode, mostly for tests.
func WithDecoder(d Decoder) Option { return func(t *Task) { t.decode = d } }

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option { return func(t *Task) { t.progress = fn } }

// WithQuality sets the JPEG quality (1-100). Other formats ignore it.
func WithQuality(q int) Option { return func(t *Task) { t.quality = q } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(t *Task) { t.logger = l } }

// Task renders one page to one output file.
type Task struct {
	ID string

	page     *collage.Page
	output   string
	format   imaging.Format
	border   float64
	color    color.Color
	decode   Decoder
	progress ProgressFunc
	quality  int
	logger   *log.Logger
}

// New prepares a rendering task for a page already scaled to output pixels.
// The output format is picked from the file extension; an unsupported
// extension is rejected here, before any photo is decoded. The task reads
// the page while running, so callers that keep editing the page should pass
// a Clone.
func New(page *collage.Page, output string, opts ...Option) (*Task, error) {
	if err := errors.ValidateOutputPath(output); err != nil {
		return nil, err
	}
	format, err := imaging.FormatFromFilename(output)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupportedFormat, err, "cannot write %s", output)
	}

	t := &Task{
		ID:      uuid.NewString(),
		page:    page,
		output:  output,
		format:  format,
		color:   color.Black,
		decode:  photo.Decode,
		quality: DefaultQuality,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.quality < 1 || t.quality > 100 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "quality must be in [1, 100], got %d", t.quality)
	}
	if t.logger == nil {
		t.logger = log.New(io.Discard)
	}
	t.logger = t.logger.With("task", t.ID[:8])

	w, h := t.Size()
	if err := errors.ValidateDimensions(output, w, h); err != nil {
		return nil, err
	}
	return t, nil
}

// Output returns the output path.
func (t *Task) Output() string { return t.output }

// Size returns the canvas size in pixels.
func (t *Task) Size() (w, h int) {
	return int(math.Round(t.page.W)), int(math.Round(t.page.H))
}

// Start draws every cell and writes the output file. The page is checked for
// cancellation between photos. On any failure no output file is created and
// an existing file at the output path is left untouched.
func (t *Task) Start(ctx context.Context) error {
	w, h := t.Size()
	canvas := imaging.New(w, h, t.color)
	cells := t.page.Cells()

	for i, c := range cells {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeCanceled, err, "render %s", t.output)
		}
		if err := t.drawCell(ctx, canvas, c); err != nil {
			return err
		}
		if t.progress != nil {
			t.progress(i+1, len(cells))
		}
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeCanceled, err, "render %s", t.output)
	}

	if err := t.write(canvas); err != nil {
		return err
	}
	t.logger.Debug("wrote collage", "output", t.output, "width", w, "height", h, "photos", len(cells))
	return nil
}

func (t *Task) drawCell(ctx context.Context, canvas *image.NRGBA, c *collage.Cell) error {
	start := time.Now()
	r := t.cellRect(c)
	if r.Empty() {
		t.logger.Warn("border covers photo", "source", c.Photo.Source)
		return nil
	}

	img, err := t.decode(ctx, c.Photo.Source)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeDecode, err, "decode %s", c.Photo.Source)
		}
		return err
	}

	fit := imaging.Fill(img, r.Dx(), r.Dy(), imaging.Center, imaging.Lanczos)
	draw.Draw(canvas, r, fit, image.Point{}, draw.Src)

	observability.Photo().OnDraw(ctx, c.Photo.Source, r.Dx(), r.Dy(), time.Since(start))
	t.logger.Debug("drew photo", "source", c.Photo.Source, "rect", r)
	return nil
}

// cellRect returns the pixel rectangle of a cell inside its border. Edges
// on the page boundary are inset by the full border width, interior edges
// by half of it, so every gap between photos is one border wide.
func (t *Task) cellRect(c *collage.Cell) image.Rectangle {
	inset := func(outer bool) float64 {
		if outer {
			return t.border
		}
		return t.border / 2
	}
	s, rect := c.Span, c.Rect
	x0 := rect.X + inset(s.Col == 0)
	y0 := rect.Y + inset(s.Row == 0)
	x1 := rect.Right() - inset(s.EndCol() == t.page.Cols)
	y1 := rect.Bottom() - inset(s.EndRow() == t.page.Rows())

	r := image.Rect(
		int(math.Round(x0)), int(math.Round(y0)),
		int(math.Round(x1)), int(math.Round(y1)),
	)
	if x1 <= x0 || y1 <= y0 {
		return image.Rectangle{}
	}
	w, h := t.Size()
	return r.Intersect(image.Rect(0, 0, w, h))
}

func (t *Task) write(img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(t.output), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "create directory for %s", t.output)
	}
	pf, err := renameio.TempFile("", t.output)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "create %s", t.output)
	}
	defer pf.Cleanup()

	if err := imaging.Encode(pf, img, t.format, imaging.JPEGQuality(t.quality)); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "encode %s", t.output)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "write %s", t.output)
	}
	return nil
}
