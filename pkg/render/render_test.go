package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/photocollage/pkg/collage"
	"github.com/matzehuels/photocollage/pkg/errors"
)

// testPage returns a page of n photos scaled to width pixels.
func testPage(t *testing.T, n int, width float64) *collage.Page {
	t.Helper()
	sizes := [][2]int{{400, 300}, {300, 400}, {600, 600}, {800, 400}}
	var photos []*collage.Photo
	for i := range n {
		s := sizes[i%len(sizes)]
		p, err := collage.NewPhoto(fmt.Sprintf("photo-%d", i), s[0], s[1])
		if err != nil {
			t.Fatal(err)
		}
		photos = append(photos, p)
	}
	uc, err := collage.NewUserCollage(photos)
	if err != nil {
		t.Fatal(err)
	}
	page, err := uc.MakePage(0.75, collage.WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}
	page.Scale(width / page.W)
	return page
}

// whiteDecoder serves a solid white image for every source.
func whiteDecoder(ctx context.Context, source string) (image.Image, error) {
	return imaging.New(40, 30, color.White), nil
}

func render(t *testing.T, page *collage.Page, output string, opts ...Option) {
	t.Helper()
	task, err := New(page, output, append([]Option{WithDecoder(whiteDecoder)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := task.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
}

// darkPixels counts pixels of img darker than mid grey.
func darkPixels(t *testing.T, path string) int {
	t.Helper()
	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r>>8 < 128 {
				n++
			}
		}
	}
	return n
}

func TestStartWritesCanvasSize(t *testing.T) {
	tests := []struct {
		name  string
		width float64
		file  string
	}{
		{"png", 200, "out.png"},
		{"jpeg", 160, "out.jpg"},
		{"nested dir", 120, "a/b/out.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := testPage(t, 7, tt.width)
			out := filepath.Join(t.TempDir(), tt.file)
			render(t, page, out)

			img, err := imaging.Open(out)
			if err != nil {
				t.Fatalf("open output: %v", err)
			}
			w, h := int(tt.width), int(tt.width*0.75)
			if got := img.Bounds(); got.Dx() != w || got.Dy() != h {
				t.Errorf("output size = %dx%d, want %dx%d", got.Dx(), got.Dy(), w, h)
			}
		})
	}
}

func TestBorderArea(t *testing.T) {
	page := testPage(t, 9, 240)
	dir := t.TempDir()

	prev := -1
	for _, bw := range []float64{0, 2, 6} {
		out := filepath.Join(dir, fmt.Sprintf("border-%v.png", bw))
		render(t, page, out, WithBorder(bw, color.Black))

		n := darkPixels(t, out)
		if bw == 0 && n != 0 {
			t.Errorf("border 0 left %d border pixels", n)
		}
		if n <= prev {
			t.Errorf("border %v: %d border pixels, want more than %d", bw, n, prev)
		}
		prev = n
	}
}

func TestBorderFramesPage(t *testing.T) {
	page := testPage(t, 5, 200)
	out := filepath.Join(t.TempDir(), "out.png")
	render(t, page, out, WithBorder(4, color.Black))

	img, err := imaging.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	for _, p := range []image.Point{
		{0, 0}, {3, 3}, {b.Max.X - 1, 0}, {0, b.Max.Y - 1}, {b.Max.X - 1, b.Max.Y - 1}, {b.Max.X / 2, 1},
	} {
		if r, _, _, _ := img.At(p.X, p.Y).RGBA(); r>>8 >= 128 {
			t.Errorf("pixel %v is not border colored", p)
		}
	}
}

func TestNewErrors(t *testing.T) {
	page := testPage(t, 3, 100)

	tests := []struct {
		name   string
		output string
		opts   []Option
		code   errors.Code
	}{
		{"unknown extension", "out.xyz", nil, errors.ErrCodeUnsupportedFormat},
		{"decode only format", "out.webp", nil, errors.ErrCodeUnsupportedFormat},
		{"no extension", "out", nil, errors.ErrCodeInvalidFormat},
		{"empty output", "", nil, errors.ErrCodeInvalidInput},
		{"quality too low", "out.jpg", []Option{WithQuality(0)}, errors.ErrCodeInvalidInput},
		{"quality too high", "out.jpg", []Option{WithQuality(101)}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(page, tt.output, tt.opts...)
			if !errors.Is(err, tt.code) {
				t.Errorf("New() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestStartCanceled(t *testing.T) {
	page := testPage(t, 4, 100)
	out := filepath.Join(t.TempDir(), "out.png")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task, err := New(page, out, WithDecoder(whiteDecoder))
	if err != nil {
		t.Fatal(err)
	}
	if err := task.Start(ctx); !errors.Is(err, errors.ErrCodeCanceled) {
		t.Errorf("Start() error = %v, want %s", err, errors.ErrCodeCanceled)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("canceled render should not create the output file")
	}
}

func TestStartFailureKeepsExistingFile(t *testing.T) {
	page := testPage(t, 6, 100)
	out := filepath.Join(t.TempDir(), "out.png")
	if err := os.WriteFile(out, []byte("previous"), 0644); err != nil {
		t.Fatal(err)
	}

	calls := 0
	failing := func(ctx context.Context, source string) (image.Image, error) {
		calls++
		if calls == 3 {
			return nil, fmt.Errorf("truncated file")
		}
		return whiteDecoder(ctx, source)
	}
	task, err := New(page, out, WithDecoder(failing))
	if err != nil {
		t.Fatal(err)
	}
	if err := task.Start(context.Background()); !errors.Is(err, errors.ErrCodeDecode) {
		t.Errorf("Start() error = %v, want %s", err, errors.ErrCodeDecode)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "previous" {
		t.Error("failed render should leave the existing file untouched")
	}
}

func TestStartProgress(t *testing.T) {
	page := testPage(t, 8, 160)
	var calls, last, total int
	render(t, page, filepath.Join(t.TempDir(), "out.png"), WithProgress(func(done, n int) {
		calls++
		last, total = done, n
	}))

	if calls != page.Len() || last != page.Len() || total != page.Len() {
		t.Errorf("progress called %d times ending at %d/%d, want %d", calls, last, total, page.Len())
	}
}

func TestTaskID(t *testing.T) {
	page := testPage(t, 3, 100)
	a, err := New(page, "a.png")
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(page, "b.png")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("task IDs %q and %q should be unique", a.ID, b.ID)
	}
	if a.Output() != "a.png" {
		t.Errorf("Output() = %q, want %q", a.Output(), "a.png")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"black", color.NRGBA{0, 0, 0, 255}, false},
		{"White", color.NRGBA{255, 255, 255, 255}, false},
		{" steelblue ", color.NRGBA{70, 130, 180, 255}, false},
		{"#ff0000", color.NRGBA{255, 0, 0, 255}, false},
		{"#0f0", color.NRGBA{0, 255, 0, 255}, false},
		{"#12345", color.NRGBA{}, true},
		{"#gggggg", color.NRGBA{}, true},
		{"notacolor", color.NRGBA{}, true},
		{"", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseColor(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidColor) {
					t.Errorf("ParseColor(%q) error = %v, want %s", tt.in, err, errors.ErrCodeInvalidColor)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColor(%q) error: %v", tt.in, err)
			}
			if got := color.NRGBAModel.Convert(c).(color.NRGBA); got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
