// Package session ties the pipeline together: it owns the decoded image,
// the depth fields, the mesh and the live renderer for one viewing session,
// and enforces the teardown ordering between them.
package session

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"photorelief/internal/config"
	"photorelief/internal/depth"
	"photorelief/internal/export"
	"photorelief/internal/imaging"
	"photorelief/internal/logutil"
	"photorelief/internal/relief"
	"photorelief/internal/render"
)

var (
	ErrNoImage = errors.New("session: no image loaded")
	ErrEditing = errors.New("session: depth editing in progress")
)

// Result is the outcome of a conversion.
type Result struct {
	Mesh              *relief.Mesh
	UsedAuthoredDepth bool
}

// Session owns one image → depth → mesh → renderer pipeline end to end.
// Only one renderer is ever live per session; Load and Convert close the
// previous one before building the next.
type Session struct {
	mu sync.Mutex

	id  string
	cfg config.Config
	log *slog.Logger

	estimator DepthEstimator
	backfill  BackFiller

	native   *image.NRGBA // full-resolution decode, drives the editor
	buffer   *image.NRGBA // downscaled pipeline buffer
	computed *depth.Field // luminance of the buffer
	authored *depth.Field // committed editor output, native resolution
	editor   *depth.Editor
	mesh     *relief.Mesh
	renderer *render.Renderer
}

// New creates an empty session. The config is resolved so zero values fall
// back to defaults; logger may be nil for a silent session.
func New(cfg config.Config, logger *slog.Logger) *Session {
	cfg.Resolve(config.Flags{})
	s := &Session{
		id:     uuid.NewString(),
		cfg:    cfg,
		editor: depth.NewEditor(),
	}
	s.log = logutil.Or(logger).With("session", s.id)
	return s
}

// ID returns the session identity.
func (s *Session) ID() string { return s.id }

// SetDepthEstimator installs an optional depth service used by Convert.
func (s *Session) SetDepthEstimator(e DepthEstimator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.estimator = e
}

// SetBackFiller installs an optional back-texture service used by Convert.
func (s *Session) SetBackFiller(b BackFiller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backfill = b
}

// Load replaces the session content with a newly decoded image. Any
// previous renderer, mesh and fields are torn down first; on failure the
// session is left empty rather than half-loaded.
func (s *Session) Load(src []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()

	native, err := imaging.Decode(src)
	if err != nil {
		return err
	}
	s.native = native
	s.buffer = imaging.Downscale(native, s.cfg.MaxImageSize, s.cfg.Interpolation)
	s.computed = depth.FromLuminance(s.buffer)

	s.log.Info("image loaded",
		"native", s.native.Rect.Max,
		"buffer", s.buffer.Rect.Max,
	)
	return nil
}

// Loaded reports whether an image is present.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.native != nil
}

// Native returns the full-resolution decode, or nil.
func (s *Session) Native() *image.NRGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.native
}

// Buffer returns the downscaled pipeline buffer, or nil.
func (s *Session) Buffer() *image.NRGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

// Mesh returns the mesh of the latest conversion, or nil.
func (s *Session) Mesh() *relief.Mesh {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mesh
}

// Renderer returns the live renderer, or nil before the first conversion.
func (s *Session) Renderer() *render.Renderer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer
}

// Editing reports whether a depth edit session is open.
func (s *Session) Editing() bool {
	return s.editor.Active()
}

// BeginEdit opens the depth editor at the native image resolution. The
// paint surface is seeded with the previously authored field when one
// exists, otherwise with the luminance of the native image.
func (s *Session) BeginEdit() (*depth.Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.native == nil {
		return nil, ErrNoImage
	}
	seed := s.authored
	if seed == nil {
		seed = depth.FromLuminance(s.native)
	}
	if err := s.editor.Begin(seed); err != nil {
		return nil, err
	}
	s.log.Info("depth editing started", "surface", image.Pt(seed.W, seed.H))
	return s.editor, nil
}

// FinishEdit closes the editor. With commit true the edited field becomes
// the depth of record for subsequent conversions; with false the edits are
// dropped.
func (s *Session) FinishEdit(commit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !commit {
		s.editor.Discard()
		return nil
	}
	f, err := s.editor.Commit()
	if err != nil {
		return err
	}
	s.authored = f
	s.log.Info("depth field authored", "surface", image.Pt(f.W, f.H))
	return nil
}

// Convert builds the relief mesh and starts a live renderer for it.
// It refuses while editing is active. The previous renderer, if any, is
// fully closed before the new one starts.
func (s *Session) Convert(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.native == nil {
		return nil, ErrNoImage
	}
	if s.editor.Active() {
		return nil, ErrEditing
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	field := s.computed
	usedAuthored := false
	switch {
	case s.authored != nil:
		field = s.authored
		usedAuthored = true
	case s.estimator != nil:
		est, err := s.estimator.EstimateDepth(ctx, s.buffer)
		if err != nil || est == nil {
			s.log.Warn("depth estimator failed, using luminance", "err", err)
		} else {
			field = est
		}
	}

	mesh := relief.Build(s.buffer, field, relief.Options{
		BaseSegments: s.cfg.BaseSegments,
		HeightScale:  s.cfg.HeightScale,
		MirrorBack:   s.cfg.MirrorBack,
	})

	if s.backfill != nil {
		filled, err := s.backfill.FillBack(ctx, s.buffer)
		if err != nil || filled == nil {
			s.log.Warn("back fill failed, keeping mirrored texture", "err", err)
		} else {
			mesh.BackTexture = filled
		}
	}

	if s.renderer != nil {
		s.renderer.Close()
		s.renderer = nil
	}

	r, err := render.New(mesh, render.Config{
		Width:       s.cfg.ViewportWidth,
		Height:      s.cfg.ViewportHeight,
		Supersample: s.cfg.Supersample,
		FOVDegrees:  s.cfg.FOVDegrees,
		NearPlane:   s.cfg.NearPlane,
		FarPlane:    s.cfg.FarPlane,
		Distance:    s.cfg.CameraDistance,
		Sensitivity: s.cfg.DragSensitivity,
		FrameRate:   s.cfg.FrameRate,
		Logger:      s.log,
	})
	if err != nil {
		return nil, err
	}
	if err := r.Start(); err != nil {
		r.Close()
		return nil, err
	}

	s.mesh = mesh
	s.renderer = r

	s.log.Info("converted",
		"vertices", len(mesh.Vertices),
		"triangles", len(mesh.Indices)/3,
		"authored_depth", usedAuthored,
	)
	return &Result{Mesh: mesh, UsedAuthoredDepth: usedAuthored}, nil
}

// ExportGLB returns the current mesh as binary glTF bytes.
func (s *Session) ExportGLB() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return export.GLB(s.mesh)
}

// ExportSnapshot returns the current rendered frame as PNG bytes.
func (s *Session) ExportSnapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.renderer == nil {
		return nil, export.ErrNoFrame
	}
	return export.Snapshot(s.renderer)
}

// Reset tears the session down to empty. Idempotent; the renderer loop is
// cancelled and waited for before any reference is dropped.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
	s.log.Info("session reset")
}

// Close is Reset under a different name, for defer chains.
func (s *Session) Close() {
	s.Reset()
}

// teardownLocked releases everything in dependency order: the renderer
// first (its loop may still touch the mesh and textures), then the mesh,
// then the editing state and images.
func (s *Session) teardownLocked() {
	if s.renderer != nil {
		s.renderer.Close()
		s.renderer = nil
	}
	s.mesh = nil
	s.editor.Discard()
	s.authored = nil
	s.computed = nil
	s.buffer = nil
	s.native = nil
}
