package collage

// Kind tags how many grid slots a cell covers.
type Kind int

const (
	Single         Kind = iota // 1 column × 1 row
	HorizontalPair             // 2 columns × 1 row
	VerticalPair               // 1 column × 2 rows
	Quad                       // 2 columns × 2 rows
)

// String returns the lower-case kind name used in logs and JSON output.
func (k Kind) String() string {
	switch k {
	case HorizontalPair:
		return "horizontal"
	case VerticalPair:
		return "vertical"
	case Quad:
		return "quad"
	default:
		return "single"
	}
}

// Spans returns the column and row span of the kind.
func (k Kind) Spans() (cols, rows int) {
	switch k {
	case HorizontalPair:
		return 2, 1
	case VerticalPair:
		return 1, 2
	case Quad:
		return 2, 2
	default:
		return 1, 1
	}
}

// Span is the block of grid slots covered by a cell.
type Span struct {
	Col, Row         int // top-left slot
	ColSpan, RowSpan int // each 1 or 2
}

// Kind returns the kind matching the span size.
func (s Span) Kind() Kind {
	switch {
	case s.ColSpan == 2 && s.RowSpan == 2:
		return Quad
	case s.ColSpan == 2:
		return HorizontalPair
	case s.RowSpan == 2:
		return VerticalPair
	default:
		return Single
	}
}

// EndCol returns the first column after the span.
func (s Span) EndCol() int { return s.Col + s.ColSpan }

// EndRow returns the first row after the span.
func (s Span) EndRow() int { return s.Row + s.RowSpan }

// Contains reports whether the slot (col, row) lies inside the span.
func (s Span) Contains(col, row int) bool {
	return col >= s.Col && col < s.EndCol() && row >= s.Row && row < s.EndRow()
}

// Overlaps reports whether two spans share at least one slot.
func (s Span) Overlaps(o Span) bool {
	return s.Col < o.EndCol() && o.Col < s.EndCol() && s.Row < o.EndRow() && o.Row < s.EndRow()
}

// Cell is one grid region holding exactly one photo.
type Cell struct {
	Photo *Photo
	Span  Span
	Rect  Rect // geometry in page units, set by Page.Adjust
}

// Kind returns the cell's merge kind.
func (c *Cell) Kind() Kind { return c.Span.Kind() }

// Merged reports whether the cell covers more than one grid slot.
func (c *Cell) Merged() bool { return c.Kind() != Single }
