package collage

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
)

const tol = 1e-9

// randomPhotos returns n photos with common camera aspect ratios.
func randomPhotos(t *testing.T, n int, seed uint64) []*Photo {
	t.Helper()
	sizes := [][2]int{{400, 300}, {300, 400}, {600, 600}, {1920, 1080}, {1080, 1920}, {800, 400}, {400, 600}}
	rng := rand.New(rand.NewPCG(seed, 7))
	photos := make([]*Photo, n)
	for i := range photos {
		s := sizes[rng.IntN(len(sizes))]
		p, err := NewPhoto(fmt.Sprintf("photo-%02d.jpg", i), s[0], s[1])
		if err != nil {
			t.Fatalf("NewPhoto: %v", err)
		}
		photos[i] = p
	}
	return photos
}

func mustPhoto(t *testing.T, w, h int) *Photo {
	t.Helper()
	p, err := NewPhoto(fmt.Sprintf("%dx%d.jpg", w, h), w, h)
	if err != nil {
		t.Fatalf("NewPhoto: %v", err)
	}
	return p
}

// rowCellsAt returns the distinct cells covering row r.
func rowCellsAt(p *Page, r int) []*Cell {
	var cells []*Cell
	seen := map[*Cell]bool{}
	for col := range p.Cols {
		if c := p.CellAt(col, r); c != nil && !seen[c] {
			seen[c] = true
			cells = append(cells, c)
		}
	}
	return cells
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
