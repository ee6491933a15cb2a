package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/taigrr/prism/internal/config"
	"github.com/taigrr/prism/internal/logging"
)

// rootOptions are the flags shared by every subcommand. Zero values leave
// the scene file untouched.
type rootOptions struct {
	configPath string
	logLevel   string
	logFile    string
	width      int
	height     int
	workers    int
	mode       string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "prism",
		Short: "A CPU triangle rasterizer",
		Long: `prism rasterizes triangle meshes on the CPU.

Scenes are described in a YAML file (--config); without one the builtin
demo triangle is drawn.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "scene file (YAML)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")
	pf.IntVar(&opts.width, "width", 0, "output width in pixels")
	pf.IntVar(&opts.height, "height", 0, "output height in pixels")
	pf.IntVar(&opts.workers, "workers", 0, "raster goroutines (0 = one per CPU)")
	pf.StringVar(&opts.mode, "mode", "", "shading mode: observed-area, diffuse, specular, combined, depth")

	cmd.AddCommand(newRenderCmd(opts), newViewCmd(opts))
	return cmd
}

// load reads the scene file, or the default scene, and applies flag
// overrides.
func (o *rootOptions) load() (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return config.Config{}, err
		}
	}

	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.width > 0 {
		cfg.Width = o.width
	}
	if o.height > 0 {
		cfg.Height = o.height
	}
	if o.workers > 0 {
		cfg.Raster.Workers = o.workers
	}
	if o.mode != "" {
		cfg.Shading.Mode = o.mode
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger returns the logger for cfg. Logs go to --log-file when set,
// else to fallback. The returned close func is never nil.
func (o *rootOptions) newLogger(cfg config.Config, fallback io.Writer) (*log.Logger, func() error, error) {
	w, closeFn := fallback, func() error { return nil }
	if o.logFile != "" {
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closeFn = f, f.Close
	}

	logger, err := logging.New(w, cfg.LogLevel)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return logger, closeFn, nil
}
