package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"photorelief/internal/config"
	"photorelief/internal/depth"
	"photorelief/internal/export"
	"photorelief/internal/session"
)

// Game drives the interactive viewer: drag to orbit, wheel to dolly, and an
// optional depth-paint mode that feeds the session editor.
type Game struct {
	sess *session.Session
	cfg  config.Config
	ctx  context.Context

	w, h int

	// view mode
	canvas       *ebiten.Image
	lastX, lastY int
	dragged      bool

	// edit mode
	editor       *depth.Editor
	overlay      *ebiten.Image
	overlayDirty bool

	status string
}

const viewHelp = "drag: orbit | wheel: dolly | E: edit depth | C: rebuild | S: snapshot | G: save GLB | R: reset"
const editHelp = "left: raise | right: lower | [ ]: brush size | E: commit | X: discard"

func (g *Game) Update() error {
	if g.editor != nil {
		g.updateEdit()
	} else {
		g.updateView()
	}
	return nil
}

func (g *Game) updateView() {
	r := g.sess.Renderer()
	if r == nil {
		return
	}

	x, y := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.dragged = true
		g.lastX, g.lastY = x, y
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dragged = false
	}
	if g.dragged {
		r.Rotate(float64(x-g.lastX), float64(y-g.lastY))
		g.lastX, g.lastY = x, y
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		r.Dolly(wy)
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		ed, err := g.sess.BeginEdit()
		if err != nil {
			g.status = err.Error()
			return
		}
		tool := ed.Tool()
		tool.Radius = g.cfg.BrushRadius
		ed.SetTool(tool)
		g.editor = ed
		g.overlayDirty = true
		g.status = editHelp
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		res, err := g.sess.Convert(g.ctx)
		if err != nil {
			g.status = err.Error()
			return
		}
		g.status = fmt.Sprintf("rebuilt, authored depth: %v | %s", res.UsedAuthoredDepth, viewHelp)
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.status = g.saveArtifact(export.SnapshotFilename, g.sess.ExportSnapshot)
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		g.status = g.saveArtifact(export.GLBFilename, g.sess.ExportGLB)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		r.ResetOrbit()
	}
}

func (g *Game) updateEdit() {
	ed := g.editor

	if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
		tool := ed.Tool()
		tool.Radius -= 4
		ed.SetTool(tool)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
		tool := ed.Tool()
		tool.Radius += 4
		ed.SetTool(tool)
	}

	x, y := ebiten.CursorPosition()
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		// Leaving the surface ends the stroke.
		ed.EndStroke()
	} else {
		px, py := g.imagePos(x, y)
		switch {
		case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
			g.setValue(depth.Raise)
			ed.StartStroke(px, py)
			g.overlayDirty = true
		case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight):
			g.setValue(depth.Lower)
			ed.StartStroke(px, py)
			g.overlayDirty = true
		case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) || ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
			ed.MoveTo(px, py)
			g.overlayDirty = true
		case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) || inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight):
			ed.EndStroke()
		}
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		if err := g.sess.FinishEdit(true); err != nil {
			g.status = err.Error()
			return
		}
		g.leaveEdit("depth committed, press C to rebuild | " + viewHelp)
	case inpututil.IsKeyJustPressed(ebiten.KeyX):
		if err := g.sess.FinishEdit(false); err != nil {
			g.status = err.Error()
			return
		}
		g.leaveEdit(viewHelp)
	}
}

func (g *Game) setValue(v uint8) {
	tool := g.editor.Tool()
	tool.Value = v
	g.editor.SetTool(tool)
}

func (g *Game) leaveEdit(status string) {
	g.editor = nil
	g.overlay = nil
	g.status = status
}

// imagePos maps a window position onto the depth canvas, which is drawn
// stretched across the whole window in edit mode.
func (g *Game) imagePos(x, y int) (int, int) {
	b := g.sess.Native().Bounds()
	px := x * b.Dx() / g.w
	py := y * b.Dy() / g.h
	return clamp(px, b.Dx()-1), clamp(py, b.Dy()-1)
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

func (g *Game) saveArtifact(name string, produce func() ([]byte, error)) string {
	data, err := produce()
	if err != nil {
		return err.Error()
	}
	if err := os.MkdirAll(g.cfg.OutputDir, 0755); err != nil {
		return err.Error()
	}
	path := filepath.Join(g.cfg.OutputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err.Error()
	}
	return "wrote " + path + " | " + viewHelp
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.editor != nil {
		g.drawOverlay(screen)
	} else {
		g.drawFrame(screen)
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s | %.0f fps", g.status, ebiten.ActualFPS()))
}

func (g *Game) drawFrame(screen *ebiten.Image) {
	r := g.sess.Renderer()
	if r == nil {
		return
	}
	frame := r.Frame()
	if frame == nil {
		return
	}
	fw, fh := frame.Rect.Dx(), frame.Rect.Dy()
	if g.canvas == nil || g.canvas.Bounds().Dx() != fw || g.canvas.Bounds().Dy() != fh {
		g.canvas = ebiten.NewImage(fw, fh)
	}
	g.canvas.WritePixels(frame.Pix)
	screen.DrawImage(g.canvas, nil)
}

func (g *Game) drawOverlay(screen *ebiten.Image) {
	if g.overlayDirty || g.overlay == nil {
		g.overlay = ebiten.NewImageFromImage(g.editor.Working().HeatMap())
		g.overlayDirty = false
	}
	b := g.overlay.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.w)/float64(b.Dx()), float64(g.h)/float64(b.Dy()))
	screen.DrawImage(g.overlay, op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth < 1 {
		outsideWidth = 1
	}
	if outsideHeight < 1 {
		outsideHeight = 1
	}
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		if r := g.sess.Renderer(); r != nil {
			r.Resize(g.w, g.h)
		}
	}
	return g.w, g.h
}

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	outputDir := flag.String("output", "", "Output directory for exports (default: current directory)")
	maxSize := flag.Int("size", 0, "Longest side of the working buffer (default: 512)")
	segments := flag.Int("segments", 0, "Base mesh resolution (default: 100)")
	height := flag.Float64("height", 0, "Relief height scale (default: 0.5)")

	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: view [flags] <image>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	input := flag.Arg(0)

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		OutputDir:   *outputDir,
		MaxSize:     *maxSize,
		Segments:    *segments,
		HeightScale: *height,
	})

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	sess := session.New(cfg, logger)
	defer sess.Close()

	data, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := sess.Load(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if _, err := sess.Convert(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	game := &Game{
		sess:   sess,
		cfg:    cfg,
		ctx:    ctx,
		w:      cfg.ViewportWidth,
		h:      cfg.ViewportHeight,
		status: viewHelp,
	}

	ebiten.SetWindowSize(cfg.ViewportWidth, cfg.ViewportHeight)
	ebiten.SetWindowTitle(fmt.Sprintf("Photo Relief (%s)", filepath.Base(input)))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(game); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
