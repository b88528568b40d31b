package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/photocollage/pkg/collage"
	"github.com/matzehuels/photocollage/pkg/pipeline"
	"github.com/matzehuels/photocollage/pkg/render"
	"github.com/matzehuels/photocollage/pkg/settings"
)

// defaultOutputName is used when -o is not given.
const defaultOutputName = "collage.jpg"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string
	width       int
	ratio       float64
	border      float64
	color       string
	seed        uint64
	quality     int
	noCache     bool
	cacheURL    string
	layoutJSON  string
	refresh     bool
	concurrency int
	noProgress  bool
	mergeProb   float64
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		width:   pipeline.DefaultWidth,
		ratio:   pipeline.DefaultRatio,
		border:  pipeline.DefaultBorder,
		color:   pipeline.DefaultColor,
		quality: pipeline.DefaultQuality,
	}

	cmd := &cobra.Command{
		Use:   "render <photo|dir|glob>...",
		Short: "Arrange photos into a collage and write it as an image",
		Long: `Render loads the given photos, plans a collage for the requested aspect
ratio and writes it as a JPEG, PNG, GIF, BMP or TIFF image.

Arguments may be files, directories or glob patterns ("~/Pictures/**/*.jpg").
Flags that are not given fall back to the values used on the last run.`,
		Example: `  photocollage render ~/Pictures/holiday -o holiday.jpg
  photocollage render 'shots/**/*.png' --width 2400 --ratio 1.5 --border 0.02 --color '#fafafa'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applySettings(cmd.Flags(), &opts)
			if opts.output == "" {
				opts.output = c.defaultOutput()
			}
			return c.runRender(cmd, args, opts)
		},
	}

	c.addLayoutFlags(cmd.Flags(), &opts)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output image (default: collage.jpg in the last used directory)")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "output width in pixels")
	cmd.Flags().Float64Var(&opts.border, "border", opts.border, "border width as a fraction of the longer side")
	cmd.Flags().StringVar(&opts.color, "color", opts.color, "border color: CSS name or #rrggbb")
	cmd.Flags().IntVar(&opts.quality, "quality", opts.quality, "JPEG quality (1-100)")
	cmd.Flags().StringVar(&opts.layoutJSON, "layout-json", "", "also write the layout plan as JSON")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "do not show a progress bar")

	return cmd
}

// addLayoutFlags registers the flags shared by render and layout.
func (c *CLI) addLayoutFlags(fs *pflag.FlagSet, opts *renderOpts) {
	fs.Float64Var(&opts.ratio, "ratio", opts.ratio, "output height/width ratio")
	fs.Uint64Var(&opts.seed, "seed", 0, "random seed (0 picks one and prints it)")
	fs.Float64Var(&opts.mergeProb, "merge-probability", collage.DefaultMergeProbability, "chance that a photo spans several grid slots")
	fs.BoolVar(&opts.noCache, "no-cache", false, "do not read or write the photo metadata cache")
	fs.StringVar(&opts.cacheURL, "cache-url", "", "Redis URL for a shared metadata cache (env: "+cacheURLEnv+")")
	fs.BoolVar(&opts.refresh, "refresh", false, "re-read photo dimensions even if cached")
	fs.IntVar(&opts.concurrency, "concurrency", 0, "photos read in parallel (default: number of CPUs)")
}

// applySettings fills every flag the user did not set with the value
// remembered in the settings store.
func (c *CLI) applySettings(fs *pflag.FlagSet, opts *renderOpts) {
	s := c.Settings
	if s == nil {
		return
	}
	unset := func(name string) bool {
		f := fs.Lookup(name)
		return f != nil && !f.Changed
	}
	if v, ok := s.GetFloat(keyBorder); ok && unset("border") {
		opts.border = v
	}
	if v, ok := s.GetString(keyColor); ok && unset("color") {
		opts.color = v
	}
	if v, ok := s.GetInt(keyWidth); ok && unset("width") {
		opts.width = v
	}
	if v, ok := s.GetFloat(keyRatio); ok && unset("ratio") {
		opts.ratio = v
	}
	if v, ok := s.GetInt(keyQuality); ok && unset("quality") {
		opts.quality = v
	}
}

// defaultOutput places collage.jpg in the directory of the last render.
func (c *CLI) defaultOutput() string {
	var dir string
	if c.Settings != nil {
		dir, _ = c.Settings.GetString(keyLastVisited)
	}
	return filepath.Join(dir, defaultOutputName)
}

// remember stores the options of a successful render for the next run.
func remember(s *settings.Store, opts renderOpts) {
	if s == nil {
		return
	}
	values := map[string]any{
		keyBorder:  opts.border,
		keyColor:   opts.color,
		keyWidth:   opts.width,
		keyRatio:   opts.ratio,
		keyQuality: opts.quality,
	}
	if abs, err := filepath.Abs(opts.output); err == nil {
		values[keyLastVisited] = filepath.Dir(abs)
	}
	s.Update(values)
}

func (opts renderOpts) pipelineOptions(patterns []string) pipeline.Options {
	return pipeline.Options{
		Patterns:         patterns,
		Refresh:          opts.refresh,
		Concurrency:      opts.concurrency,
		Ratio:            opts.ratio,
		Seed:             opts.seed,
		MergeProbability: &opts.mergeProb,
		Output:           opts.output,
		Width:            opts.width,
		Border:           opts.border,
		Color:            opts.color,
		Quality:          opts.quality,
		LayoutJSON:       opts.layoutJSON,
	}
}

// runRender executes the full pipeline and prints a summary.
func (c *CLI) runRender(cmd *cobra.Command, patterns []string, opts renderOpts) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, opts.noCache, opts.cacheURL)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := opts.pipelineOptions(patterns)
	if !opts.noProgress && isTerminal(os.Stderr) {
		popts.Progress = newProgressBar(cmd.ErrOrStderr(), "Rendering")
	}

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d photos", result.Stats.Photos))

	remember(c.Settings, opts)

	out := cmd.OutOrStdout()
	printSuccess(out, "Collage written")
	printFile(out, opts.output)
	if opts.layoutJSON != "" {
		printFile(out, opts.layoutJSON)
	}
	printStats(out, result.Stats, result.CacheInfo)
	printKeyValue(out, "size", fmt.Sprintf("%.0f×%.0f", result.Rendered.W, result.Rendered.H))
	printKeyValue(out, "seed", fmt.Sprintf("%d", result.Seed))
	if opts.seed == 0 {
		printNextStep(out, "Reproduce this arrangement", fmt.Sprintf("%s render ... --seed %d", appName, result.Seed))
	}
	return nil
}

// newProgressBar returns a render.ProgressFunc that draws a progress bar to
// w. The bar is created on the first call, once the total is known.
func newProgressBar(w io.Writer, desc string) render.ProgressFunc {
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription(desc),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("photos"),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
		if done == total {
			_ = bar.Finish()
		}
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
