package render

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"photorelief/internal/depth"
	"photorelief/internal/relief"
)

func testMesh(c color.NRGBA) *relief.Mesh {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return relief.Build(img, depth.FromLuminance(img), relief.Options{BaseSegments: 10})
}

func testConfig() Config {
	return Config{Width: 96, Height: 64}
}

func TestNewValidatesViewport(t *testing.T) {
	mesh := testMesh(color.NRGBA{255, 255, 255, 255})
	for _, dims := range [][2]int{{0, 64}, {64, 0}, {-1, 64}, {0, 0}} {
		_, err := New(mesh, Config{Width: dims[0], Height: dims[1]})
		if !errors.Is(err, ErrBadViewport) {
			t.Errorf("New(%dx%d) error = %v; want ErrBadViewport", dims[0], dims[1], err)
		}
	}
}

func TestRenderFrameDrawsMesh(t *testing.T) {
	r, err := New(testMesh(color.NRGBA{255, 255, 255, 255}), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.Frame() != nil {
		t.Fatal("Frame before first render is not nil")
	}
	if err := r.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	frame := r.Frame()
	if frame == nil {
		t.Fatal("Frame after render is nil")
	}
	if frame.Rect.Dx() != 96 || frame.Rect.Dy() != 64 {
		t.Fatalf("frame size = %dx%d; want 96x64", frame.Rect.Dx(), frame.Rect.Dy())
	}
	if c := frame.NRGBAAt(48, 32); c.R < 100 {
		t.Errorf("center pixel = %v; want lit white mesh", c)
	}
	if c := frame.NRGBAAt(1, 1); c.R >= 100 {
		t.Errorf("corner pixel = %v; want background", c)
	}
}

func TestFrameIsACopy(t *testing.T) {
	r, err := New(testMesh(color.NRGBA{200, 200, 200, 255}), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if err := r.RenderFrame(); err != nil {
		t.Fatal(err)
	}

	a := r.Frame()
	a.Pix[0] = 99
	b := r.Frame()
	if b.Pix[0] == 99 {
		t.Error("mutating a returned frame leaked into the renderer")
	}
}

func TestRotateSensitivityAndClamp(t *testing.T) {
	r, err := New(testMesh(color.NRGBA{255, 255, 255, 255}), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	r.Rotate(2, 0)
	if got := r.yaw; math.Abs(got-0.01) > 1e-12 {
		t.Errorf("yaw after Rotate(2,0) = %v; want 0.01", got)
	}

	r.Rotate(0, 1e9)
	if got := r.pitch; got != math.Pi/2 {
		t.Errorf("pitch = %v; want clamp at +pi/2", got)
	}
	r.Rotate(0, -1e9)
	if got := r.pitch; got != -math.Pi/2 {
		t.Errorf("pitch = %v; want clamp at -pi/2", got)
	}
}

func TestSetOrbitIsAbsolute(t *testing.T) {
	r, err := New(testMesh(color.NRGBA{255, 255, 255, 255}), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	r.Rotate(100, 100)
	r.SetOrbit(1.25, -0.5)
	if r.yaw != 1.25 || r.pitch != -0.5 {
		t.Errorf("orbit = (%v, %v); want (1.25, -0.5)", r.yaw, r.pitch)
	}
	r.SetOrbit(0, 9)
	if r.pitch != math.Pi/2 {
		t.Errorf("pitch = %v; want clamp at +pi/2", r.pitch)
	}
}

func TestDollyClamps(t *testing.T) {
	r, err := New(testMesh(color.NRGBA{255, 255, 255, 255}), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	r.Dolly(1e6)
	if r.cam.Distance != 0.5 {
		t.Errorf("distance after huge dolly in = %v; want 0.5", r.cam.Distance)
	}
	r.Dolly(-1e6)
	if r.cam.Distance != 20 {
		t.Errorf("distance after huge dolly out = %v; want 20", r.cam.Distance)
	}
	r.ResetOrbit()
	if r.cam.Distance != 3 {
		t.Errorf("distance after ResetOrbit = %v; want 3", r.cam.Distance)
	}
}

func TestLoopRendersOnRotate(t *testing.T) {
	r, err := New(testMesh(color.NRGBA{255, 255, 255, 255}), Config{Width: 48, Height: 48, FrameRate: 120})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !r.Live() {
		t.Fatal("renderer not live after Start")
	}
	base := r.Frames()
	if base == 0 {
		t.Fatal("Start did not render an initial frame")
	}

	r.Rotate(5, 3)
	deadline := time.Now().Add(2 * time.Second)
	for r.Frames() == base {
		if time.Now().After(deadline) {
			t.Fatal("loop never rendered after Rotate")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCloseStopsLoop(t *testing.T) {
	r, err := New(testMesh(color.NRGBA{255, 255, 255, 255}), Config{Width: 48, Height: 48, FrameRate: 120})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	r.Close()

	if r.Live() {
		t.Error("renderer still live after Close")
	}
	frozen := r.Frames()
	r.Rotate(10, 10) // must be ignored
	time.Sleep(50 * time.Millisecond)
	if got := r.Frames(); got != frozen {
		t.Errorf("frames advanced after Close: %d -> %d", frozen, got)
	}
	if r.Frame() != nil {
		t.Error("Frame after Close is not nil")
	}
	if err := r.RenderFrame(); !errors.Is(err, ErrClosed) {
		t.Errorf("RenderFrame after Close = %v; want ErrClosed", err)
	}
	if err := r.Start(); !errors.Is(err, ErrClosed) {
		t.Errorf("Start after Close = %v; want ErrClosed", err)
	}

	// Second Close must be a harmless no-op.
	r.Close()
}

func TestStopAndRestart(t *testing.T) {
	r, err := New(testMesh(color.NRGBA{255, 255, 255, 255}), Config{Width: 48, Height: 48, FrameRate: 120})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	r.Stop()
	if r.Live() {
		t.Fatal("live after Stop")
	}
	if err := r.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if !r.Live() {
		t.Fatal("not live after restart")
	}
}

func TestResizeWhileLive(t *testing.T) {
	r, err := New(testMesh(color.NRGBA{255, 255, 255, 255}), Config{Width: 96, Height: 64, FrameRate: 120})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}

	if err := r.Resize(40, 30); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if !r.Live() {
		t.Error("loop restarted by Resize")
	}
	frame := r.Frame()
	if frame == nil || frame.Rect.Dx() != 40 || frame.Rect.Dy() != 30 {
		t.Fatalf("frame after resize = %v; want 40x30", frame.Rect)
	}
	if err := r.Resize(0, 30); !errors.Is(err, ErrBadViewport) {
		t.Errorf("Resize(0,30) = %v; want ErrBadViewport", err)
	}
}

func TestSupersampleDownsamplesToViewport(t *testing.T) {
	r, err := New(testMesh(color.NRGBA{255, 255, 255, 255}), Config{Width: 64, Height: 48, Supersample: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if err := r.RenderFrame(); err != nil {
		t.Fatal(err)
	}
	frame := r.Frame()
	if frame.Rect.Dx() != 64 || frame.Rect.Dy() != 48 {
		t.Errorf("frame size = %dx%d; want 64x48", frame.Rect.Dx(), frame.Rect.Dy())
	}
	if r.fb.Width != 128 || r.fb.Height != 96 {
		t.Errorf("framebuffer = %dx%d; want 128x96", r.fb.Width, r.fb.Height)
	}
}

func TestBackFaceSamplesBackTexture(t *testing.T) {
	mesh := testMesh(color.NRGBA{255, 30, 30, 255})
	back := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for i := 0; i < len(back.Pix); i += 4 {
		back.Pix[i+1] = 255
		back.Pix[i+3] = 255
	}
	mesh.BackTexture = back

	r, err := New(mesh, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	// Half a turn: the back of the plane faces the camera.
	r.Rotate(math.Pi/0.005, 0)
	if err := r.RenderFrame(); err != nil {
		t.Fatal(err)
	}
	c := r.Frame().NRGBAAt(48, 32)
	if c.G < 100 || c.R > 100 {
		t.Errorf("center pixel showing back face = %v; want green back texture", c)
	}
}

func TestClearResetsDepth(t *testing.T) {
	fb := NewFrameBuffer(4, 4)
	fb.ZBuf[5] = 1.5
	fb.Color[20] = 77
	fb.Clear(1, 2, 3)

	if !math.IsInf(fb.ZBuf[5], -1) {
		t.Error("Clear did not reset depth to -inf")
	}
	if fb.Color[20] != 1 || fb.Color[21] != 2 || fb.Color[22] != 3 || fb.Color[23] != 255 {
		t.Error("Clear did not repaint the color plane")
	}
}
