package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photocollage/pkg/collage"
	"github.com/matzehuels/photocollage/pkg/errors"
	"github.com/matzehuels/photocollage/pkg/pipeline"
)

// layoutCommand creates the layout command, which plans a collage without
// decoding any pixels.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := renderOpts{
		width: pipeline.DefaultWidth,
		ratio: pipeline.DefaultRatio,
	}

	cmd := &cobra.Command{
		Use:   "layout <photo|dir|glob>...",
		Short: "Plan a collage and print or export the layout",
		Long: `Layout reads only the photo dimensions, plans the collage and prints the
grid. With -o the plan is written as JSON, scaled to --width pixels.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applySettings(cmd.Flags(), &opts)
			return c.runLayout(cmd, args, opts)
		},
	}

	c.addLayoutFlags(cmd.Flags(), &opts)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the layout as JSON to this file")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "width in pixels of the exported layout")

	return cmd
}

func (c *CLI) runLayout(cmd *cobra.Command, patterns []string, opts renderOpts) error {
	if opts.width < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "width must be positive, got %d", opts.width)
	}
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, opts.noCache, opts.cacheURL)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := opts.pipelineOptions(patterns)
	popts.Output = ""
	popts.SetLayoutDefaults()

	prog := newProgress(c.Logger)
	loaded, err := runner.Load(ctx, popts)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	page, err := runner.Layout(ctx, loaded.Photos, popts)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	prog.done(fmt.Sprintf("Planned %d photos", len(loaded.Photos)))

	scaled := page.Clone()
	scaled.Scale(float64(opts.width) / scaled.W)

	out := cmd.OutOrStdout()
	if opts.output != "" {
		if err := pipeline.WriteLayout(scaled, opts.output, popts.Seed); err != nil {
			return err
		}
		printSuccess(out, "Layout written")
		printFile(out, opts.output)
		printKeyValue(out, "seed", fmt.Sprintf("%d", popts.Seed))
		return nil
	}

	printLayout(cmd, scaled, popts.Seed)
	return nil
}

// printLayout prints the grid summary and one line per cell.
func printLayout(cmd *cobra.Command, page *collage.Page, seed uint64) {
	out := cmd.OutOrStdout()
	printTitle(out, fmt.Sprintf("%d×%d grid, %.0f×%.0f px", page.Cols, page.Rows(), page.W, page.H))
	printKeyValue(out, "seed", fmt.Sprintf("%d", seed))
	for _, cell := range page.Cells() {
		r := cell.Rect
		printDetail(out, "%-10s col %d row %d  %4.0f,%-4.0f %4.0f×%-4.0f  %s",
			cell.Kind(), cell.Span.Col, cell.Span.Row, r.X, r.Y, r.W, r.H, cell.Photo.Source)
	}
}
