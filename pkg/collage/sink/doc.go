// Package sink exports finalized collage pages.
//
// [RenderJSON] writes the grid and geometry of a [collage.Page] as a
// pretty-printed JSON document. It is used by the layout command to inspect
// an arrangement without rendering pixels, and by the render command to
// keep the plan next to the output image:
//
//	data, err := sink.RenderJSON(page,
//	    sink.WithJSONSeed(seed),
//	    sink.WithJSONOutput("poster.jpg"),
//	)
//
// Coordinates are emitted in whatever units the page currently uses: page
// units straight after [collage.Page.Adjust], pixels after
// [collage.Page.Scale].
package sink
