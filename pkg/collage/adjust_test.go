package collage

import (
	"slices"
	"testing"
)

// adjustedPages builds a spread of adjusted pages across sizes, seeds and
// page ratios.
func adjustedPages(t *testing.T) []*Page {
	t.Helper()
	var pages []*Page
	for _, n := range []int{1, 2, 3, 5, 8, 13, 21, 34} {
		for _, ratio := range []float64{0.25, 0.75, 1, 1.5, 3} {
			for seed := range uint64(5) {
				uc, err := NewUserCollage(randomPhotos(t, n, seed))
				if err != nil {
					t.Fatal(err)
				}
				page, err := uc.MakePage(ratio, WithSeed(seed))
				if err != nil {
					t.Fatalf("n=%d ratio=%v seed=%d: %v", n, ratio, seed, err)
				}
				pages = append(pages, page)
			}
		}
	}
	return pages
}

func TestAdjustRowsFillPageWidth(t *testing.T) {
	for _, page := range adjustedPages(t) {
		for r := range page.Rows() {
			cells := rowCellsAt(page, r)
			slices.SortFunc(cells, func(a, b *Cell) int {
				switch {
				case a.Rect.X < b.Rect.X:
					return -1
				case a.Rect.X > b.Rect.X:
					return 1
				}
				return 0
			})

			var sum float64
			x := 0.0
			for _, c := range cells {
				if !approxEqual(c.Rect.X, x, tol) {
					t.Fatalf("row %d: cell starts at %v, want %v", r, c.Rect.X, x)
				}
				sum += c.Rect.W
				x = c.Rect.Right()
			}
			if !approxEqual(sum, page.W, tol) {
				t.Fatalf("row %d: widths sum to %v, want %v", r, sum, page.W)
			}
		}
	}
}

func TestAdjustTotalHeight(t *testing.T) {
	for _, page := range adjustedPages(t) {
		var total float64
		for _, h := range page.RowHeights() {
			if h <= 0 {
				t.Fatalf("non-positive row height %v", h)
			}
			total += h
		}
		if !approxEqual(total/page.W, page.Ratio, tol) {
			t.Errorf("stacked height ratio = %v, want %v", total/page.W, page.Ratio)
		}
		if !approxEqual(page.H, page.Ratio*page.W, tol) {
			t.Errorf("H = %v, want %v", page.H, page.Ratio*page.W)
		}
	}
}

func TestAdjustCellsShareRowGeometry(t *testing.T) {
	for _, page := range adjustedPages(t) {
		heights := page.RowHeights()
		for _, c := range page.Cells() {
			var want float64
			for r := c.Span.Row; r < c.Span.EndRow(); r++ {
				want += heights[r]
			}
			if !approxEqual(c.Rect.H, want, tol) {
				t.Fatalf("cell %+v height = %v, want %v", c.Span, c.Rect.H, want)
			}
			if c.Rect.X < -tol || c.Rect.Right() > page.W+tol || c.Rect.Y < -tol || c.Rect.Bottom() > page.H+tol {
				t.Fatalf("cell %+v rect %+v leaves the page", c.Span, c.Rect)
			}
		}
	}
}

func TestAdjustSingleRowKeepsAspect(t *testing.T) {
	page := NewPage(1, 0.4, 3, WithMergeProbability(0))
	page.AddCell(mustPhoto(t, 400, 300))
	page.AddCell(mustPhoto(t, 300, 400))
	page.AddCell(mustPhoto(t, 600, 600))
	if err := page.Adjust(); err != nil {
		t.Fatal(err)
	}

	// Only the final vertical scaling distorts, and it does so uniformly.
	cells := page.Cells()
	stretch := cells[0].Rect.Ratio() / cells[0].Photo.Ratio()
	for _, c := range cells[1:] {
		if got := c.Rect.Ratio() / c.Photo.Ratio(); !approxEqual(got, stretch, tol) {
			t.Errorf("cell %s stretch = %v, want %v", c.Photo, got, stretch)
		}
	}
}

func TestScaleRoundTrip(t *testing.T) {
	for _, page := range adjustedPages(t)[:20] {
		before := page.Clone()
		page.Scale(900)
		page.Scale(1.0 / 900)

		if !approxEqual(page.W, before.W, tol) || !approxEqual(page.H, before.H, tol) {
			t.Fatalf("page size %vx%v, want %vx%v", page.W, page.H, before.W, before.H)
		}
		got, want := page.Cells(), before.Cells()
		for i := range got {
			a, b := got[i].Rect, want[i].Rect
			if !approxEqual(a.X, b.X, tol) || !approxEqual(a.Y, b.Y, tol) ||
				!approxEqual(a.W, b.W, tol) || !approxEqual(a.H, b.H, tol) {
				t.Fatalf("cell %d rect %+v, want %+v", i, a, b)
			}
		}
	}
}

func TestScaleToOutputWidth(t *testing.T) {
	uc, err := NewUserCollage([]*Photo{
		mustPhoto(t, 400, 300),
		mustPhoto(t, 300, 400),
		mustPhoto(t, 600, 600),
	})
	if err != nil {
		t.Fatal(err)
	}
	page, err := uc.MakePage(0.75, WithSeed(8))
	if err != nil {
		t.Fatal(err)
	}
	if page.Cols != 3 {
		t.Errorf("Cols = %d, want 3", page.Cols)
	}

	page.Scale(900 / page.W)
	if !approxEqual(page.W, 900, tol) || !approxEqual(page.H, 675, 1e-6) {
		t.Errorf("scaled page = %vx%v, want 900x675", page.W, page.H)
	}
}
