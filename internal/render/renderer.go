package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/draw"

	"photorelief/internal/logutil"
	"photorelief/internal/relief"
)

var (
	ErrBadViewport = errors.New("render: viewport dimensions must be positive")
	ErrClosed      = errors.New("render: renderer closed")
)

// Config holds renderer construction parameters. Zero fields resolve to
// the stock viewer defaults.
type Config struct {
	Width       int
	Height      int
	Supersample int     // render at N× and downsample; 1 disables
	FOVDegrees  float64 // vertical field of view
	NearPlane   float64
	FarPlane    float64
	Distance    float64 // camera offset along +Z
	Sensitivity float64 // radians per pixel of drag
	FrameRate   int
	Light       *LightConfig
	Logger      *slog.Logger
}

// Renderer draws one relief mesh and owns the frame loop that keeps an
// interactive view current. All state is guarded by one mutex; the loop is
// the only long-lived goroutine and Close waits for it to exit before any
// buffer is released.
type Renderer struct {
	mu    sync.Mutex
	mesh  *relief.Mesh
	cam   Camera
	light LightConfig
	sens  float64
	super int
	rate  int
	dist0 float64
	log   *slog.Logger

	width  int
	height int
	fb     *FrameBuffer
	frame  *image.NRGBA
	frames uint64
	yaw    float64
	pitch  float64
	dirty  bool
	closed bool

	// scratch buffers reused across frames
	sx, sy, sz []float64
	su, sv, sh []float64

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a renderer for mesh. The camera starts on the +Z axis looking
// at the origin with no rotation applied.
func New(mesh *relief.Mesh, cfg Config) (*Renderer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadViewport, cfg.Width, cfg.Height)
	}
	if cfg.Supersample < 1 {
		cfg.Supersample = 1
	}
	if cfg.FOVDegrees <= 0 {
		cfg.FOVDegrees = 45
	}
	if cfg.NearPlane <= 0 {
		cfg.NearPlane = 0.1
	}
	if cfg.FarPlane <= cfg.NearPlane {
		cfg.FarPlane = 1000
	}
	if cfg.Distance <= 0 {
		cfg.Distance = 3
	}
	if cfg.Sensitivity <= 0 {
		cfg.Sensitivity = 0.005
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 60
	}
	light := DefaultLightConfig()
	if cfg.Light != nil {
		light = *cfg.Light
	}

	r := &Renderer{
		mesh: mesh,
		cam: Camera{
			FOVDegrees: cfg.FOVDegrees,
			Near:       cfg.NearPlane,
			Far:        cfg.FarPlane,
			Distance:   cfg.Distance,
		},
		light:  light,
		sens:   cfg.Sensitivity,
		super:  cfg.Supersample,
		rate:   cfg.FrameRate,
		dist0:  cfg.Distance,
		log:    logutil.Or(cfg.Logger),
		width:  cfg.Width,
		height: cfg.Height,
		fb:     NewFrameBuffer(cfg.Width*cfg.Supersample, cfg.Height*cfg.Supersample),
		dirty:  true,
	}
	return r, nil
}

// Start launches the frame loop. One frame is rendered synchronously first
// so Frame never returns nil once Start succeeds. Starting a live renderer
// is a no-op; starting a closed one returns ErrClosed.
func (r *Renderer) Start() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.cancel != nil {
		r.mu.Unlock()
		return nil
	}
	r.renderLocked()
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	done := r.done
	interval := time.Second / time.Duration(r.rate)
	r.mu.Unlock()

	r.log.Info("render loop started", "interval", interval)
	go r.loop(ctx, done, interval)
	return nil
}

func (r *Renderer) loop(ctx context.Context, done chan struct{}, interval time.Duration) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			if !r.closed && r.dirty {
				r.renderLocked()
			}
			r.mu.Unlock()
		}
	}
}

// Live reports whether the frame loop is running.
func (r *Renderer) Live() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Stop cancels the frame loop and waits for it to exit. The renderer stays
// usable and may be started again. Safe to call at any time.
func (r *Renderer) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Close stops the loop and releases all buffers. Idempotent; the wait in
// Stop guarantees no tick runs after the buffers are dropped.
func (r *Renderer) Close() {
	r.Stop()
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		r.fb = nil
		r.frame = nil
		r.mesh = nil
		r.sx, r.sy, r.sz = nil, nil, nil
		r.su, r.sv, r.sh = nil, nil, nil
		r.log.Info("renderer closed")
	}
	r.mu.Unlock()
}

// RenderFrame draws one frame synchronously. Batch tools use this without
// ever starting the loop.
func (r *Renderer) RenderFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.renderLocked()
	return nil
}

// Rotate applies a pointer drag in pixels: yaw from horizontal movement,
// pitch from vertical. Pitch is clamped to ±90° so the mesh cannot flip.
// Mouse and touch deltas both route through here.
func (r *Renderer) Rotate(dx, dy float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.yaw += dx * r.sens
	r.pitch += dy * r.sens
	const limit = math.Pi / 2
	if r.pitch > limit {
		r.pitch = limit
	}
	if r.pitch < -limit {
		r.pitch = -limit
	}
	r.dirty = true
}

// SetOrbit sets the rotation angles directly, in radians. Pitch is clamped
// the same way Rotate clamps it.
func (r *Renderer) SetOrbit(yaw, pitch float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.yaw = yaw
	const limit = math.Pi / 2
	r.pitch = math.Max(-limit, math.Min(limit, pitch))
	r.dirty = true
}

// Dolly moves the camera along the view axis, positive steps toward the
// mesh. Distance is clamped to a sane range.
func (r *Renderer) Dolly(steps float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.cam.Distance -= steps * 0.25
	if r.cam.Distance < 0.5 {
		r.cam.Distance = 0.5
	}
	if r.cam.Distance > 20 {
		r.cam.Distance = 20
	}
	r.dirty = true
}

// ResetOrbit restores the initial rotation and camera distance.
func (r *Renderer) ResetOrbit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.yaw, r.pitch = 0, 0
	r.cam.Distance = r.dist0
	r.dirty = true
}

// Resize swaps the framebuffer and camera aspect for a new viewport and
// redraws immediately. The loop keeps running across resizes.
func (r *Renderer) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadViewport, w, h)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if w == r.width && h == r.height {
		return nil
	}
	r.width, r.height = w, h
	r.fb = NewFrameBuffer(w*r.super, h*r.super)
	r.renderLocked()
	return nil
}

// Frame returns a copy of the most recent completed frame at viewport
// size, or nil when nothing has been rendered or the renderer is closed.
func (r *Renderer) Frame() *image.NRGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frame == nil {
		return nil
	}
	out := image.NewNRGBA(r.frame.Rect)
	copy(out.Pix, r.frame.Pix)
	return out
}

// Frames returns the number of frames completed so far.
func (r *Renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Viewport returns the current frame dimensions.
func (r *Renderer) Viewport() (w, h int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// renderLocked rasterizes one frame. Callers hold r.mu.
func (r *Renderer) renderLocked() {
	if r.mesh == nil || r.fb == nil {
		return
	}
	fb := r.fb
	fb.Clear(16, 18, 22)

	model := mgl64.HomogRotate3DX(r.pitch).Mul4(mgl64.HomogRotate3DY(r.yaw))
	mv := r.cam.View().Mul4(model)
	proj := r.cam.Projection(float64(r.width) / float64(r.height))

	verts := r.mesh.Vertices
	n := len(verts)
	r.ensureScratch(n)

	fw := float64(fb.Width - 1)
	fh := float64(fb.Height - 1)
	for i := range verts {
		viewPos := mgl64.TransformCoordinate(verts[i].Position, mv)
		if viewPos[2] > -r.cam.Near {
			r.sz[i] = math.NaN()
			continue
		}
		ndc := mgl64.TransformCoordinate(viewPos, proj)
		r.sx[i] = (ndc[0] + 1) * 0.5 * fw
		r.sy[i] = (1 - ndc[1]) * 0.5 * fh
		r.sz[i] = viewPos[2]
		r.su[i] = verts[i].UV[0]
		r.sv[i] = verts[i].UV[1]
		worldN := model.Mul4x1(verts[i].Normal.Vec4(0)).Vec3()
		r.sh[i] = r.light.Shade(worldN)
	}

	idx := r.mesh.Indices
	for t := 0; t+2 < len(idx); t += 3 {
		ia, ib, ic := idx[t], idx[t+1], idx[t+2]
		if math.IsNaN(r.sz[ia]) || math.IsNaN(r.sz[ib]) || math.IsNaN(r.sz[ic]) {
			continue
		}
		tex := r.mesh.Texture
		// Screen-space winding flips for back faces; those sample the
		// mirrored back texture when one is attached.
		det := (r.sy[ib]-r.sy[ic])*(r.sx[ia]-r.sx[ic]) + (r.sx[ic]-r.sx[ib])*(r.sy[ia]-r.sy[ic])
		if det > 0 && r.mesh.BackTexture != nil {
			tex = r.mesh.BackTexture
		}
		fb.Triangle(
			[3]float64{r.sx[ia], r.sx[ib], r.sx[ic]},
			[3]float64{r.sy[ia], r.sy[ib], r.sy[ic]},
			[3]float64{r.sz[ia], r.sz[ib], r.sz[ic]},
			[3]float64{r.su[ia], r.su[ib], r.su[ic]},
			[3]float64{r.sv[ia], r.sv[ib], r.sv[ic]},
			[3]float64{r.sh[ia], r.sh[ib], r.sh[ic]},
			tex,
		)
	}

	r.publishLocked()
	r.frames++
	r.dirty = false
}

// publishLocked copies the framebuffer into the viewport-sized frame,
// downsampling when supersampling is on.
func (r *Renderer) publishLocked() {
	if r.frame == nil || r.frame.Rect.Dx() != r.width || r.frame.Rect.Dy() != r.height {
		r.frame = image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
	}
	if r.super == 1 {
		copy(r.frame.Pix, r.fb.Color)
		return
	}
	src := &image.NRGBA{
		Pix:    r.fb.Color,
		Stride: r.fb.Width * 4,
		Rect:   image.Rect(0, 0, r.fb.Width, r.fb.Height),
	}
	draw.CatmullRom.Scale(r.frame, r.frame.Rect, src, src.Rect, draw.Src, nil)
}

func (r *Renderer) ensureScratch(n int) {
	if cap(r.sx) < n {
		r.sx = make([]float64, n)
		r.sy = make([]float64, n)
		r.sz = make([]float64, n)
		r.su = make([]float64, n)
		r.sv = make([]float64, n)
		r.sh = make([]float64, n)
	}
	r.sx = r.sx[:n]
	r.sy = r.sy[:n]
	r.sz = r.sz[:n]
	r.su = r.su[:n]
	r.sv = r.sv[:n]
	r.sh = r.sh[:n]
}
