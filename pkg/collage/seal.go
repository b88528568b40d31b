package collage

import (
	"cmp"
	"slices"

	"github.com/matzehuels/photocollage/pkg/errors"
)

// Seal closes the grid so every slot in the occupied rows is covered.
//
// Insertion stops wherever the last photo lands, usually mid-row. Seal keeps
// the longest prefix of complete rows that no two-row cell crosses and lays
// the photos after it out again as full rows of singles and horizontal
// pairs. The tail is extended backwards until it holds at least half a row
// of photos, since a photo never spans more than two columns.
//
// Seal is idempotent and is called by Adjust.
func (p *Page) Seal() error {
	if len(p.cells) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "page has no photos")
	}
	if p.complete() {
		return nil
	}

	minTail := (p.Cols + 1) / 2
	t := p.cleanPrefix()
	for t > 0 && p.anchoredFrom(t) < minTail {
		t = p.previousBoundary(t)
	}

	tail := p.cutFrom(t)
	if len(tail) < minTail {
		return errors.New(errors.ErrCodeInvalidInput,
			"%d photos cannot fill a page %d columns wide", len(tail), p.Cols)
	}
	p.relay(t, tail)
	return nil
}

func (p *Page) complete() bool {
	for _, row := range p.grid {
		if slices.Contains(row, nil) {
			return false
		}
	}
	return true
}

// boundaryClean reports whether no cell crosses from row t-1 into row t.
func (p *Page) boundaryClean(t int) bool {
	if t == 0 || t >= len(p.grid) {
		return true
	}
	for _, c := range p.grid[t-1] {
		if c != nil && c.Span.EndRow() > t {
			return false
		}
	}
	return true
}

// cleanPrefix returns the largest t such that rows [0, t) are complete and
// boundary t is clean.
func (p *Page) cleanPrefix() int {
	t := 0
	for r, row := range p.grid {
		if slices.Contains(row, nil) {
			break
		}
		if p.boundaryClean(r + 1) {
			t = r + 1
		}
	}
	return t
}

func (p *Page) previousBoundary(t int) int {
	for t--; t > 0 && !p.boundaryClean(t); t-- {
	}
	return t
}

func (p *Page) anchoredFrom(t int) int {
	n := 0
	for _, c := range p.cells {
		if c.Span.Row >= t {
			n++
		}
	}
	return n
}

// cutFrom removes every cell anchored at row t or below and returns their
// photos in insertion order. Anchors never decrease along the insertion
// order, so the removed cells form a suffix.
func (p *Page) cutFrom(t int) []*Photo {
	i := slices.IndexFunc(p.cells, func(c *Cell) bool { return c.Span.Row >= t })
	if i < 0 {
		i = len(p.cells)
	}
	photos := make([]*Photo, 0, len(p.cells)-i)
	for _, c := range p.cells[i:] {
		photos = append(photos, c.Photo)
	}
	p.cells = p.cells[:i]
	p.grid = p.grid[:min(t, len(p.grid))]
	p.next = len(p.grid) * p.Cols
	return photos
}

// relay lays photos out from row t as evenly filled rows. In each row the
// widest photos take the horizontal pairs needed to reach the full width.
func (p *Page) relay(t int, photos []*Photo) {
	rows := (len(photos) + p.Cols - 1) / p.Cols
	off := 0
	for k := range rows {
		n := len(photos) / rows
		if k < len(photos)%rows {
			n++
		}
		chunk := photos[off : off+n]
		off += n

		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		slices.SortStableFunc(order, func(a, b int) int {
			return cmp.Compare(chunk[a].Ratio(), chunk[b].Ratio())
		})
		pair := make([]bool, n)
		for _, i := range order[:p.Cols-n] {
			pair[i] = true
		}

		col := 0
		for i, photo := range chunk {
			span := Span{Col: col, Row: t + k, ColSpan: 1, RowSpan: 1}
			if pair[i] {
				span.ColSpan = 2
			}
			c := &Cell{Photo: photo, Span: span}
			p.place(c)
			p.cells = append(p.cells, c)
			col += span.ColSpan
		}
	}
	p.next = len(p.grid) * p.Cols
}
