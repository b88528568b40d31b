// Package cli implements the photocollage command-line interface.
package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/photocollage/pkg/buildinfo"
	"github.com/matzehuels/photocollage/pkg/cache"
	"github.com/matzehuels/photocollage/pkg/pipeline"
	"github.com/matzehuels/photocollage/pkg/settings"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "photocollage"

	// settingsEnv overrides the settings file location.
	settingsEnv = "PHOTOCOLLAGE_SETTINGS"

	// cacheURLEnv selects a Redis cache when --cache-url is not given.
	cacheURLEnv = "PHOTOCOLLAGE_CACHE_URL"
)

// Settings keys remembered between runs.
const (
	keyBorder      = "render.border"
	keyColor       = "render.color"
	keyWidth       = "render.width"
	keyRatio       = "render.ratio"
	keyQuality     = "render.quality"
	keyLastVisited = "last_visited_directory"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Settings is loaded before a command runs and stored after a successful
	// command that modified it. It is nil until then.
	Settings *settings.Store

	settingsPath string // overrides settingsFile(); used by tests
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Photocollage arranges photos into a bordered collage",
		Long: `Photocollage packs a set of photos into a rectangular grid, merging some
of them across two columns or two rows, and renders the result as a single
image with a uniform border.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.settingsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup reads .env and the settings file. A missing settings file is not an
// error; the first successful run creates it.
func (c *CLI) setup() error {
	if err := godotenv.Load(); err == nil {
		c.Logger.Debug("loaded .env")
	}

	path := c.settingsPath
	if path == "" {
		var err error
		if path, err = settingsFile(); err != nil {
			return err
		}
	}
	c.Settings = settings.New(path, settings.WithLogger(c.Logger))
	if err := c.Settings.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		c.Logger.Debug("no settings file yet", "path", path)
	}
	return nil
}

// teardown stores the settings if the command changed them.
func (c *CLI) teardown() error {
	if c.Settings == nil || !c.Settings.Modified() {
		return nil
	}
	return c.Settings.Store()
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool, cacheURL string) (*pipeline.Runner, error) {
	cc, err := newCache(ctx, noCache, cacheURL)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("photo cache", "cache", cache.Describe(cc))
	return pipeline.NewRunner(cc, c.Logger), nil
}

func newCache(ctx context.Context, noCache bool, url string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if url == "" {
		url = os.Getenv(cacheURLEnv)
	}
	if url != "" {
		return cache.NewRedisCache(ctx, url)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/photocollage/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return cache.DefaultDir()
	}
	return filepath.Join(home, ".cache", appName), nil
}

// settingsFile returns the settings path: $PHOTOCOLLAGE_SETTINGS, or
// settings.yaml under the XDG config directory (~/.config/photocollage/).
func settingsFile() (string, error) {
	if p := os.Getenv(settingsEnv); p != "" {
		return p, nil
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "settings.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "settings.yaml"), nil
}
