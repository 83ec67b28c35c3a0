package export

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/HugoSmits86/nativewebp"

	"photorelief/internal/render"
)

// SnapshotFilename is the suggested download name for raster snapshots.
const SnapshotFilename = "3dview.png"

// Snapshot captures the renderer's latest frame as PNG bytes.
func Snapshot(r *render.Renderer) ([]byte, error) {
	frame := r.Frame()
	if frame == nil {
		return nil, ErrNoFrame
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return nil, fmt.Errorf("export: encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// SnapshotWebP captures the renderer's latest frame as WebP bytes.
func SnapshotWebP(r *render.Renderer) ([]byte, error) {
	frame := r.Frame()
	if frame == nil {
		return nil, ErrNoFrame
	}
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, frame, nil); err != nil {
		return nil, fmt.Errorf("export: encode webp snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
