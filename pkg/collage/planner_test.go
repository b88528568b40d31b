package collage

import (
	"slices"
	"testing"

	"github.com/matzehuels/photocollage/pkg/errors"
)

func TestColumns(t *testing.T) {
	tests := []struct {
		name   string
		sizes  [][2]int
		ratio  float64
		want   int
		errMsg bool
	}{
		{
			name:  "mixed three photos",
			sizes: [][2]int{{400, 300}, {300, 400}, {600, 600}},
			ratio: 0.75,
			want:  3,
		},
		{
			name:  "single square photo on square page",
			sizes: [][2]int{{100, 100}},
			ratio: 1,
			want:  1,
		},
		{
			name:  "single tall photo on wide page is clamped to two columns",
			sizes: [][2]int{{100, 300}},
			ratio: 0.25,
			want:  2,
		},
		{
			name:  "many landscape photos on portrait page",
			sizes: repeatSize(50, 400, 300),
			ratio: 1.5,
			want:  7,
		},
		{
			name:  "tiny ratio never yields zero",
			sizes: [][2]int{{1000, 10}},
			ratio: 10,
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var photos []*Photo
			for _, s := range tt.sizes {
				photos = append(photos, mustPhoto(t, s[0], s[1]))
			}
			got, err := Columns(photos, tt.ratio)
			if err != nil {
				t.Fatalf("Columns() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Columns() = %d, want %d", got, tt.want)
			}
		})
	}
}

func repeatSize(n, w, h int) [][2]int {
	out := make([][2]int, n)
	for i := range out {
		out[i] = [2]int{w, h}
	}
	return out
}

func TestColumnsDeterministic(t *testing.T) {
	photos := randomPhotos(t, 25, 3)
	first, err := Columns(photos, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	reversed := make([]*Photo, len(photos))
	for i, p := range photos {
		reversed[len(photos)-1-i] = p
	}
	for range 5 {
		got, _ := Columns(reversed, 0.75)
		if got != first {
			t.Fatalf("Columns() = %d on reordered input, want %d", got, first)
		}
	}
}

func TestColumnsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		photos []*Photo
		ratio  float64
	}{
		{"empty", nil, 0.75},
		{"zero ratio", []*Photo{{Source: "a", W: 10, H: 10}}, 0},
		{"negative ratio", []*Photo{{Source: "a", W: 10, H: 10}}, -1},
		{"zero width photo", []*Photo{{Source: "a", W: 0, H: 10}}, 1},
		{"nil photo", []*Photo{nil}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Columns(tt.photos, tt.ratio)
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Columns() error = %v, want %s", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestNewPhotoInvalid(t *testing.T) {
	if _, err := NewPhoto("x.jpg", 0, 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("NewPhoto() error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestNewUserCollageEmpty(t *testing.T) {
	uc, err := NewUserCollage(nil)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("NewUserCollage(nil) error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if uc != nil {
		t.Error("NewUserCollage(nil) should not return a collage")
	}
}

func TestMakePage(t *testing.T) {
	photos := randomPhotos(t, 20, 1)
	uc, err := NewUserCollage(photos)
	if err != nil {
		t.Fatal(err)
	}

	page, err := uc.MakePage(0.75, WithSeed(42))
	if err != nil {
		t.Fatalf("MakePage() error: %v", err)
	}
	if uc.Page != page {
		t.Error("MakePage() should store the page on the collage")
	}
	if err := page.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	count := map[*Photo]int{}
	for _, c := range page.Cells() {
		count[c.Photo]++
	}
	if len(count) != len(photos) {
		t.Errorf("page references %d photos, want %d", len(count), len(photos))
	}
	for p, n := range count {
		if n != 1 {
			t.Errorf("photo %s referenced %d times", p.Source, n)
		}
	}
	if page.Len() > len(photos) {
		t.Errorf("Len() = %d, want <= %d", page.Len(), len(photos))
	}
}

func TestMakePageKeepsCallerOrder(t *testing.T) {
	photos := randomPhotos(t, 12, 3)
	original := slices.Clone(photos)

	uc, err := NewUserCollage(photos)
	if err != nil {
		t.Fatal(err)
	}
	for seed := uint64(1); seed <= 3; seed++ {
		if _, err := uc.MakePage(1, WithSeed(seed)); err != nil {
			t.Fatal(err)
		}
	}
	if !slices.Equal(photos, original) {
		t.Error("MakePage() reordered the caller's photos")
	}
}

func TestMakePageRebuilds(t *testing.T) {
	uc, err := NewUserCollage(randomPhotos(t, 12, 2))
	if err != nil {
		t.Fatal(err)
	}
	first, err := uc.MakePage(1, WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}
	var rects []Rect
	for _, c := range first.Cells() {
		rects = append(rects, c.Rect)
	}
	second, err := uc.MakePage(1, WithSeed(2))
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("MakePage() should build a new page")
	}
	for i, c := range first.Cells() {
		if c.Rect != rects[i] {
			t.Fatal("MakePage() should not mutate the previous page")
		}
	}
}

func TestMakePageSeeded(t *testing.T) {
	build := func() []Span {
		uc, err := NewUserCollage(randomPhotos(t, 15, 9))
		if err != nil {
			t.Fatal(err)
		}
		page, err := uc.MakePage(0.75, WithSeed(99))
		if err != nil {
			t.Fatal(err)
		}
		var spans []Span
		for _, c := range page.Cells() {
			spans = append(spans, c.Span)
		}
		return spans
	}

	a, b := build(), build()
	if len(a) != len(b) {
		t.Fatalf("seeded layouts differ in size: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seeded layouts differ at cell %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestMergedShare(t *testing.T) {
	const n, runs = 30, 200
	var merged, total int
	for seed := range uint64(runs) {
		uc, err := NewUserCollage(randomPhotos(t, n, seed))
		if err != nil {
			t.Fatal(err)
		}
		page, err := uc.MakePage(0.75, WithSeed(seed))
		if err != nil {
			t.Fatal(err)
		}
		for _, c := range page.Cells() {
			if c.Merged() {
				merged++
			}
		}
		total += n
	}
	share := float64(merged) / float64(total)
	if share < 0.25 || share > 0.42 {
		t.Errorf("merged share = %.3f, want about one third", share)
	}
}
