package collage

import (
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/photocollage/pkg/errors"
)

const (
	// DefaultMergeProbability is the chance that a newly inserted photo is
	// merged with free neighbouring slots. At 0.5 roughly one photo in three
	// ends up in a multi-slot cell.
	DefaultMergeProbability = 0.5

	// Photos with a ratio below wideRatio prefer horizontal pairs, photos
	// above tallRatio prefer vertical pairs; everything in between prefers
	// a quad.
	wideRatio = 0.8
	tallRatio = 1.25
)

// Option configures a Page.
type Option func(*Page)

// WithRand sets the random source used for merge decisions and shuffling.
func WithRand(r *rand.Rand) Option {
	return func(p *Page) { p.rng = r }
}

// WithSeed is shorthand for WithRand with a PCG source seeded from seed.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x5eed5eed)))
}

// WithMergeProbability overrides DefaultMergeProbability. Zero disables
// merging during insertion.
func WithMergeProbability(prob float64) Option {
	return func(p *Page) { p.MergeProbability = max(0, min(prob, 1)) }
}

// Page is the grid container of a collage.
type Page struct {
	W, H             float64 // page size; H is set by Adjust
	Ratio            float64 // target height/width ratio
	Cols             int
	MergeProbability float64

	cells      []*Cell   // insertion order
	grid       [][]*Cell // grid[row][col]
	rowHeights []float64
	next       int // row-major index of the first slot that may be free
	rng        *rand.Rand
}

// NewPage creates an empty page of the given width, target height/width
// ratio and column count.
func NewPage(width, ratio float64, cols int, opts ...Option) *Page {
	p := &Page{
		W:                width,
		Ratio:            ratio,
		Cols:             max(cols, 1),
		MergeProbability: DefaultMergeProbability,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return p
}

// Cells returns the cells in insertion order.
func (p *Page) Cells() []*Cell { return slices.Clone(p.cells) }

// Len returns the number of cells.
func (p *Page) Len() int { return len(p.cells) }

// Rows returns the number of grid rows currently in use.
func (p *Page) Rows() int { return len(p.grid) }

// RowHeights returns the row heights computed by Adjust.
func (p *Page) RowHeights() []float64 { return slices.Clone(p.rowHeights) }

// CellAt returns the cell covering slot (col, row), or nil.
func (p *Page) CellAt(col, row int) *Cell {
	if row < 0 || row >= len(p.grid) || col < 0 || col >= p.Cols {
		return nil
	}
	return p.grid[row][col]
}

// AddCell places photo in the next free slot in row-major order, possibly
// merging the slot with free neighbours, and returns the new cell.
func (p *Page) AddCell(photo *Photo) *Cell {
	row, col := p.nextFree()
	span := p.chooseSpan(photo, row, col)
	cell := &Cell{Photo: photo, Span: span}
	p.place(cell)
	p.cells = append(p.cells, cell)
	p.rowHeights = nil
	return cell
}

func (p *Page) nextFree() (row, col int) {
	for ; p.next < len(p.grid)*p.Cols; p.next++ {
		row, col = p.next/p.Cols, p.next%p.Cols
		if p.grid[row][col] == nil {
			return row, col
		}
	}
	return len(p.grid), 0
}

func (p *Page) chooseSpan(photo *Photo, row, col int) Span {
	single := Span{Col: col, Row: row, ColSpan: 1, RowSpan: 1}

	prob := p.MergeProbability
	if left := p.CellAt(col-1, row); left != nil && left.Merged() {
		prob /= 2
	}
	if prob <= 0 || p.rng.Float64() >= prob {
		return single
	}

	kinds := p.availableMerges(row, col)
	if len(kinds) == 0 {
		return single
	}
	cols, rows := preferredKind(photo.Ratio(), kinds, p.rng).Spans()
	return Span{Col: col, Row: row, ColSpan: cols, RowSpan: rows}
}

// availableMerges lists the merge kinds whose slots are all free. Two-row
// cells may only start on a row with nothing carried in from above, which
// keeps every band of linked rows at most two rows tall.
func (p *Page) availableMerges(row, col int) []Kind {
	right := col+1 < p.Cols && p.free(row, col+1)
	down := p.startsBand(row) && p.free(row+1, col)

	var kinds []Kind
	if right {
		kinds = append(kinds, HorizontalPair)
	}
	if down {
		kinds = append(kinds, VerticalPair)
	}
	if right && down && p.free(row+1, col+1) {
		kinds = append(kinds, Quad)
	}
	return kinds
}

func preferredKind(ratio float64, kinds []Kind, rng *rand.Rand) Kind {
	want := Quad
	switch {
	case ratio < wideRatio:
		want = HorizontalPair
	case ratio > tallRatio:
		want = VerticalPair
	}
	if slices.Contains(kinds, want) {
		return want
	}
	return kinds[rng.IntN(len(kinds))]
}

func (p *Page) free(row, col int) bool {
	return row >= len(p.grid) || p.grid[row][col] == nil
}

// startsBand reports whether no cell from an earlier row reaches into row.
func (p *Page) startsBand(row int) bool {
	if row >= len(p.grid) {
		return true
	}
	for _, c := range p.grid[row] {
		if c != nil && c.Span.Row < row {
			return false
		}
	}
	return true
}

func (p *Page) place(c *Cell) {
	for len(p.grid) < c.Span.EndRow() {
		p.grid = append(p.grid, make([]*Cell, p.Cols))
	}
	for r := c.Span.Row; r < c.Span.EndRow(); r++ {
		for col := c.Span.Col; col < c.Span.EndCol(); col++ {
			p.grid[r][col] = c
		}
	}
}

// Scale multiplies all geometry by factor. Scale(f) followed by Scale(1/f)
// restores the original values up to floating point error.
func (p *Page) Scale(factor float64) {
	p.W *= factor
	p.H *= factor
	for i := range p.rowHeights {
		p.rowHeights[i] *= factor
	}
	for _, c := range p.cells {
		c.Rect = c.Rect.Scale(factor)
	}
}

// Clone returns a deep copy of the page. Photos are shared since they are
// immutable; cells and geometry are copied so the clone can be rendered
// while the original keeps changing.
func (p *Page) Clone() *Page {
	q := &Page{
		W:                p.W,
		H:                p.H,
		Ratio:            p.Ratio,
		Cols:             p.Cols,
		MergeProbability: p.MergeProbability,
		rowHeights:       slices.Clone(p.rowHeights),
		next:             p.next,
		rng:              p.rng,
	}
	copies := make(map[*Cell]*Cell, len(p.cells))
	for _, c := range p.cells {
		cc := *c
		copies[c] = &cc
		q.cells = append(q.cells, &cc)
	}
	q.grid = make([][]*Cell, len(p.grid))
	for r, row := range p.grid {
		q.grid[r] = make([]*Cell, len(row))
		for col, c := range row {
			if c != nil {
				q.grid[r][col] = copies[c]
			}
		}
	}
	return q
}

// Validate checks the grid invariants of a sealed page: every slot is
// covered by exactly the cell whose span contains it, and no two cells
// overlap. After Adjust it also checks that the geometry is positive.
func (p *Page) Validate() error {
	seen := make(map[*Cell]bool, len(p.cells))
	for _, c := range p.cells {
		s := c.Span
		if s.Col < 0 || s.Row < 0 || s.EndCol() > p.Cols || s.EndRow() > len(p.grid) ||
			s.ColSpan < 1 || s.ColSpan > 2 || s.RowSpan < 1 || s.RowSpan > 2 {
			return errors.New(errors.ErrCodeInternal, "cell %s has invalid span %+v", c.Photo.Source, s)
		}
		for r := s.Row; r < s.EndRow(); r++ {
			for col := s.Col; col < s.EndCol(); col++ {
				if p.grid[r][col] != c {
					return errors.New(errors.ErrCodeInternal, "cell %s overlaps another cell at (%d, %d)", c.Photo.Source, col, r)
				}
			}
		}
		if p.rowHeights != nil && (c.Rect.W <= 0 || c.Rect.H <= 0) {
			return errors.New(errors.ErrCodeInternal, "cell %s has non-positive geometry %+v", c.Photo.Source, c.Rect)
		}
		seen[c] = true
	}
	for r, row := range p.grid {
		for col, c := range row {
			if c == nil {
				return errors.New(errors.ErrCodeInternal, "slot (%d, %d) is not covered", col, r)
			}
			if !seen[c] || !c.Span.Contains(col, r) {
				return errors.New(errors.ErrCodeInternal, "slot (%d, %d) points at a foreign cell", col, r)
			}
		}
	}
	return nil
}
