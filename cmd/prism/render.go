package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/taigrr/prism/pkg/render"
)

type renderOptions struct {
	output string
	frames int
	fps    int
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the scene to an image file",
		Long: `Render the scene to a BMP or PNG file, chosen by extension.

With --frames N a turntable sequence is written instead: the animation is
advanced by 1/fps seconds between frames and the frame number is appended
to the file name (out_0000.bmp, out_0001.bmp, ...).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd.Context(), root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output image, .bmp or .png (default from the scene file)")
	f.IntVarP(&opts.frames, "frames", "n", 1, "number of frames to render")
	f.IntVar(&opts.fps, "fps", 30, "animation rate of a frame sequence")
	return cmd
}

func runRender(ctx context.Context, root *rootOptions, opts *renderOptions) error {
	if opts.frames < 1 {
		return errors.New("--frames must be at least 1")
	}
	if opts.fps < 1 {
		return errors.New("--fps must be at least 1")
	}

	cfg, err := root.load()
	if err != nil {
		return err
	}
	logger, closeLog, err := root.newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	r, err := buildScene(cfg, logger)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = cfg.Output
	}

	if opts.frames == 1 {
		renderTimed(r, logger)
		return r.SaveBufferToImage(output)
	}

	// Per-frame save messages would break up the progress bar.
	logger.SetLevel(max(logger.GetLevel(), log.WarnLevel))

	bar := progressbar.Default(int64(opts.frames), "rendering")
	defer bar.Close()

	step := time.Second / time.Duration(opts.fps)
	for i := range opts.frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.RenderFrame()
		if err := r.SaveBufferToImage(framePath(output, i)); err != nil {
			return err
		}
		r.Update(step)
		_ = bar.Add(1)
	}
	return nil
}

// renderTimed renders one frame and logs its statistics.
func renderTimed(r *render.Renderer, logger *log.Logger) {
	start := time.Now()
	r.RenderFrame()
	s := r.Stats()
	logger.Info("frame rendered",
		"elapsed", time.Since(start).Round(time.Microsecond),
		"meshes", s.MeshesDrawn, "culled", s.MeshesCulled,
		"triangles", s.TrianglesSubmitted, "rejected", s.TrianglesRejected,
		"degenerate", s.TrianglesDegenerate, "fragments", s.FragmentsShaded)
}

// framePath inserts a zero-padded frame number before the extension.
func framePath(path string, frame int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%04d%s", strings.TrimSuffix(path, ext), frame, ext)
}
