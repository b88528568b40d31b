package collage

// Adjust seals the grid and computes the geometry of every cell.
//
// Rows are grouped into bands: a single row, or two rows joined by
// vertical pairs or quads. Within a band the columns split into units,
// either a cell spanning the whole band or a gap that each band row tiles
// on its own. Every unit gets the width that matches its photos' aspect
// ratios at the band's trial height, then the band is scaled so its units
// fill the page width exactly. Finally all row heights are scaled together
// so the stacked height equals Ratio*W. Cells are therefore never distorted
// horizontally within a row, and the only mismatch the renderer has to crop
// away comes from that last vertical scaling and from two-row bands.
func (p *Page) Adjust() error {
	if err := p.Seal(); err != nil {
		return err
	}

	heights := make([]float64, len(p.grid))
	for r := 0; r < len(p.grid); {
		n := p.bandRows(r)
		p.adjustBand(r, n, heights)
		r += n
	}

	var total float64
	for _, h := range heights {
		total += h
	}
	f := p.Ratio * p.W / total
	for i := range heights {
		heights[i] *= f
	}

	ys := make([]float64, len(heights)+1)
	for i, h := range heights {
		ys[i+1] = ys[i] + h
	}
	for _, c := range p.cells {
		c.Rect.Y = ys[c.Span.Row]
		c.Rect.H = ys[c.Span.EndRow()] - ys[c.Span.Row]
	}

	p.rowHeights = heights
	p.H = p.Ratio * p.W
	return p.Validate()
}

// bandRows returns 2 if a cell anchored at row r reaches into the next row.
func (p *Page) bandRows(r int) int {
	for _, c := range p.grid[r] {
		if c.Span.Row == r && c.Span.RowSpan == 2 {
			return 2
		}
	}
	return 1
}

// unit is a horizontal slice of a band: either one tall cell or a gap
// whose rows are tiled independently.
type unit struct {
	tall  *Cell
	rows  [][]*Cell
	width float64
}

func (p *Page) bandUnits(r0, n int) []unit {
	var units []unit
	for col := 0; col < p.Cols; {
		if c := p.grid[r0][col]; c.Span.RowSpan == n {
			units = append(units, unit{tall: c})
			col += c.Span.ColSpan
			continue
		}
		start := col
		for col < p.Cols && p.grid[r0][col].Span.RowSpan != n {
			col++
		}
		u := unit{rows: make([][]*Cell, n)}
		for i := range n {
			u.rows[i] = p.rowCells(r0+i, start, col)
		}
		units = append(units, u)
	}
	return units
}

// rowCells returns the distinct cells of row r between columns from and to.
func (p *Page) rowCells(r, from, to int) []*Cell {
	var cells []*Cell
	for col := from; col < to; col++ {
		if c := p.grid[r][col]; len(cells) == 0 || cells[len(cells)-1] != c {
			cells = append(cells, c)
		}
	}
	return cells
}

func inverseRatios(cells []*Cell) float64 {
	var s float64
	for _, c := range cells {
		s += 1 / c.Photo.Ratio()
	}
	return s
}

// trialHeights balances the two rows of a band so that the gap cells of
// both rows need the same total width at their natural aspect ratio.
func trialHeights(units []unit, n int) []float64 {
	if n == 1 {
		return []float64{1}
	}
	var top, bottom float64
	for _, u := range units {
		if u.tall == nil {
			top += inverseRatios(u.rows[0])
			bottom += inverseRatios(u.rows[1])
		}
	}
	if top == 0 || bottom == 0 {
		return []float64{1, 1}
	}
	return []float64{2 * bottom / (top + bottom), 2 * top / (top + bottom)}
}

func (u *unit) natural(h []float64) float64 {
	if u.tall != nil {
		var sum float64
		for _, v := range h {
			sum += v
		}
		return sum / u.tall.Photo.Ratio()
	}
	var w float64
	for i, row := range u.rows {
		w += h[i] * inverseRatios(row)
	}
	return w / float64(len(u.rows))
}

func (u *unit) place(x, w float64) {
	if u.tall != nil {
		u.tall.Rect.X, u.tall.Rect.W = x, w
		return
	}
	for _, row := range u.rows {
		s := inverseRatios(row)
		cx := x
		for _, c := range row {
			cw := w * (1 / c.Photo.Ratio()) / s
			c.Rect.X, c.Rect.W = cx, cw
			cx += cw
		}
	}
}

func (p *Page) adjustBand(r0, n int, heights []float64) {
	units := p.bandUnits(r0, n)
	h := trialHeights(units, n)

	var total float64
	for i := range units {
		units[i].width = units[i].natural(h)
		total += units[i].width
	}

	k := p.W / total
	x := 0.0
	for i := range units {
		w := units[i].width * k
		units[i].place(x, w)
		x += w
	}
	for i := range n {
		heights[r0+i] = h[i] * k
	}
}
