package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/prism/internal/config"
	"github.com/taigrr/prism/pkg/render"
)

type viewOptions struct {
	fps   int
	watch bool
	hud   bool
}

func newViewCmd(root *rootOptions) *cobra.Command {
	opts := &viewOptions{}
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Render the scene live in the terminal",
		Long: `Render the scene continuously in the terminal using half-block
characters, two pixel rows per cell.

Keys: m mode, z depth, r rotation, n normal map, t texture, p save,
arrows turn, w/s move, 0 reset camera, ? HUD, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runView(cmd.Context(), root, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.fps, "fps", 30, "target frame rate")
	f.BoolVar(&opts.watch, "watch", false, "reload the scene when the config file changes")
	f.BoolVar(&opts.hud, "hud", true, "show the HUD overlay")
	return cmd
}

// viewer is the state of the interactive loop. It is only touched from
// the loop goroutine.
type viewer struct {
	cfg      config.Config
	logger   *log.Logger
	renderer *render.Renderer

	width, height int // terminal cells
	showHUD       bool
	hud           *hud

	dragging     bool
	lastX, lastY int
}

func runView(ctx context.Context, root *rootOptions, opts *viewOptions) error {
	if opts.fps < 1 {
		return errors.New("--fps must be at least 1")
	}
	if opts.watch && root.configPath == "" {
		return errors.New("--watch needs --config")
	}

	cfg, err := root.load()
	if err != nil {
		return err
	}
	// The terminal is busy drawing; only --log-file gets the logs.
	logger, closeLog, err := root.newLogger(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	v := &viewer{cfg: cfg, logger: logger, width: width, height: height, showHUD: opts.hud, hud: newHUD()}
	if err := v.load(cfg); err != nil {
		return err
	}

	var reload <-chan struct{}
	if opts.watch {
		if reload, err = watchFile(ctx, root.configPath, logger); err != nil {
			return err
		}
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Any-event mouse tracking with SGR coordinates.
	fmt.Fprint(os.Stdout, "\x1b[?1003h\x1b[?1006h")
	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	ticker := time.NewTicker(time.Second / time.Duration(opts.fps))
	defer ticker.Stop()
	events := term.Events()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if sz, isSize := ev.(uv.WindowSizeEvent); isSize {
				term.Erase()
				term.Resize(sz.Width, sz.Height)
			}
			if quit := v.handle(ev); quit {
				return nil
			}

		case <-reload:
			cfg, err := root.load()
			if err != nil {
				logger.Error("reload scene", "err", err)
				continue
			}
			if err := v.load(cfg); err != nil {
				logger.Error("reload scene", "err", err)
				continue
			}
			logger.Info("scene reloaded", "path", root.configPath)

		case now := <-ticker.C:
			elapsed := min(now.Sub(last), 100*time.Millisecond)
			last = now

			v.renderer.Update(elapsed)
			fb := v.renderer.RenderFrame()
			fb.Draw(term, uv.Rect(0, 0, v.width, v.height))
			v.hud.tick(now)
			if v.showHUD {
				v.hud.draw(term, v.width, v.height, v.renderer)
			}
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}

// load replaces the scene, keeping the output sized to the terminal.
func (v *viewer) load(cfg config.Config) error {
	cfg.Width, cfg.Height = v.width, v.height*2
	r, err := buildScene(cfg, v.logger)
	if err != nil {
		return err
	}
	v.cfg, v.renderer = cfg, r
	return nil
}

// handle applies one terminal event and reports whether to quit.
func (v *viewer) handle(ev uv.Event) bool {
	const (
		turnStep = 0.05
		moveStep = 0.5
		dragGain = 0.01
	)
	r := v.renderer
	cam := r.Camera()

	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.width, v.height = ev.Width, ev.Height
		r.Resize(v.width, v.height*2)

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("q", "escape", "ctrl+c"):
			return true
		case ev.MatchString("m"):
			r.ToggleShadingMode()
		case ev.MatchString("z"):
			r.ToggleDepthVisualization()
		case ev.MatchString("r"):
			r.ToggleRotation()
		case ev.MatchString("n"):
			r.ToggleNormalMap()
		case ev.MatchString("t"):
			r.ToggleTexture()
		case ev.MatchString("p"):
			if err := r.SaveBufferToImage(v.cfg.Output); err != nil {
				v.logger.Error("save", "err", err)
				v.hud.message = err.Error()
			} else {
				v.hud.message = "saved " + v.cfg.Output
			}
		case ev.MatchString("left"):
			cam.Rotate(0, -turnStep)
		case ev.MatchString("right"):
			cam.Rotate(0, turnStep)
		case ev.MatchString("up"):
			cam.Rotate(turnStep, 0)
		case ev.MatchString("down"):
			cam.Rotate(-turnStep, 0)
		case ev.MatchString("w", "+", "="):
			cam.MoveForward(moveStep)
		case ev.MatchString("s", "-", "_"):
			cam.MoveForward(-moveStep)
		case ev.MatchString("0"):
			v.resetCamera()
		case ev.MatchString("?", "shift+/"):
			v.showHUD = !v.showHUD
		}

	case uv.MouseClickEvent:
		v.dragging = true
		v.lastX, v.lastY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		v.dragging = false

	case uv.MouseMotionEvent:
		if v.dragging {
			cam.Rotate(float64(v.lastY-ev.Y)*dragGain, float64(ev.X-v.lastX)*dragGain)
			v.lastX, v.lastY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			cam.MoveForward(moveStep)
		case uv.MouseWheelDown:
			cam.MoveForward(-moveStep)
		}
	}
	return false
}

func (v *viewer) resetCamera() {
	fresh := newCamera(v.cfg.Camera)
	cam := v.renderer.Camera()
	cam.SetOrigin(fresh.Origin)
	cam.SetRotation(fresh.Pitch, fresh.Yaw)
}

// hud is the text overlay: frame rate and pipeline state on the top row,
// mesh names over the meshes, a status message on the bottom row.
type hud struct {
	fps     float64
	frames  int
	since   time.Time
	message string
}

func newHUD() *hud {
	return &hud{since: time.Now()}
}

// tick counts a frame and refreshes the rate once a second.
func (h *hud) tick(now time.Time) {
	h.frames++
	if d := now.Sub(h.since); d >= time.Second {
		h.fps = float64(h.frames) / d.Seconds()
		h.frames = 0
		h.since = now
	}
}

func (h *hud) draw(scr uv.Screen, width, height int, r *render.Renderer) {
	var (
		fg = color.RGBA{255, 255, 255, 255}
		bg = color.RGBA{0, 0, 0, 255}
	)
	check := func(on bool) string {
		if on {
			return "[x]"
		}
		return "[ ]"
	}

	flags, stats := r.Flags(), r.Stats()
	top := fmt.Sprintf(" %.0f FPS | %s | %d tris, %d culled meshes ",
		h.fps, flags.Mode, stats.TrianglesSubmitted-stats.TrianglesRejected-stats.TrianglesDegenerate, stats.MeshesCulled)
	drawText(scr, 0, 0, width, top, fg, bg)

	for _, l := range meshLabels(r, width, height) {
		if l.y > 0 && l.y < height-1 {
			drawText(scr, l.x, l.y, width, l.text, fg, nil)
		}
	}

	bottom := fmt.Sprintf(" %s texture %s normal map %s rotate ",
		check(flags.Texturing), check(flags.NormalMapping), check(r.Rotating()))
	if h.message != "" {
		bottom += "| " + h.message + " "
	}
	drawText(scr, 0, height-1, width, bottom, fg, bg)
}

// label is a text placed at a terminal cell.
type label struct {
	x, y int
	text string
}

// meshLabels centers each mesh's name on the projection of its bounding
// box center. Meshes whose center is off screen get no label. Each cell
// covers two framebuffer rows.
func meshLabels(r *render.Renderer, cols, rows int) []label {
	cam := r.Camera()
	var out []label
	for _, m := range r.Meshes() {
		if m.Name == "" {
			continue
		}
		center := m.WorldMatrix().MulVec3(m.Center())
		x, y, _, ok := cam.WorldToScreen(center, cols, rows*2)
		if !ok {
			continue
		}
		out = append(out, label{
			x:    max(int(x)-len(m.Name)/2, 0),
			y:    int(y) / 2,
			text: m.Name,
		})
	}
	return out
}

// drawText writes s one cell per rune, clipped to width.
func drawText(scr uv.Screen, x, y, width int, s string, fg, bg color.Color) {
	for _, ch := range s {
		if x >= width {
			return
		}
		scr.SetCell(x, y, &uv.Cell{
			Content: string(ch),
			Width:   1,
			Style:   uv.Style{Fg: fg, Bg: bg},
		})
		x++
	}
}
