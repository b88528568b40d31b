package sink

import (
	"encoding/json"

	"github.com/matzehuels/photocollage/pkg/collage"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	seed   uint64
	output string
	border float64
	color  string
}

// WithJSONSeed records the seed the page was built with, so the same
// arrangement can be reproduced with --seed.
func WithJSONSeed(seed uint64) JSONOption { return func(r *jsonRenderer) { r.seed = seed } }

// WithJSONOutput records the path of the rendered image.
func WithJSONOutput(path string) JSONOption { return func(r *jsonRenderer) { r.output = path } }

// WithJSONBorder records the border width fraction and color name.
func WithJSONBorder(fraction float64, color string) JSONOption {
	return func(r *jsonRenderer) { r.border = fraction; r.color = color }
}

type jsonOutput struct {
	Width       float64    `json:"width"`
	Height      float64    `json:"height"`
	Ratio       float64    `json:"ratio"`
	Cols        int        `json:"cols"`
	Rows        int        `json:"rows"`
	RowHeights  []float64  `json:"row_heights,omitempty"`
	Seed        uint64     `json:"seed,omitempty"`
	Output      string     `json:"output,omitempty"`
	Border      float64    `json:"border,omitempty"`
	BorderColor string     `json:"border_color,omitempty"`
	Cells       []jsonCell `json:"cells"`
}

type jsonCell struct {
	Source      string  `json:"source"`
	Kind        string  `json:"kind"`
	Col         int     `json:"col"`
	Row         int     `json:"row"`
	ColSpan     int     `json:"col_span"`
	RowSpan     int     `json:"row_span"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	PhotoWidth  int     `json:"photo_width"`
	PhotoHeight int     `json:"photo_height"`
}

// RenderJSON exports the page grid and cell geometry as pretty-printed
// JSON. Cells appear in insertion order. It does not modify the page.
func RenderJSON(page *collage.Page, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:       page.W,
		Height:      page.H,
		Ratio:       page.Ratio,
		Cols:        page.Cols,
		Rows:        page.Rows(),
		RowHeights:  page.RowHeights(),
		Seed:        r.seed,
		Output:      r.output,
		Border:      r.border,
		BorderColor: r.color,
		Cells:       buildJSONCells(page),
	}
	return json.MarshalIndent(out, "", "  ")
}

func buildJSONCells(page *collage.Page) []jsonCell {
	cells := make([]jsonCell, 0, page.Len())
	for _, c := range page.Cells() {
		cells = append(cells, jsonCell{
			Source:      c.Photo.Source,
			Kind:        c.Kind().String(),
			Col:         c.Span.Col,
			Row:         c.Span.Row,
			ColSpan:     c.Span.ColSpan,
			RowSpan:     c.Span.RowSpan,
			X:           c.Rect.X,
			Y:           c.Rect.Y,
			Width:       c.Rect.W,
			Height:      c.Rect.H,
			PhotoWidth:  c.Photo.W,
			PhotoHeight: c.Photo.H,
		})
	}
	return cells
}
