package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// LightConfig holds the scene light rig: one constant ambient term plus one
// directional light.
type LightConfig struct {
	LightDir mgl64.Vec3 // toward the light, normalized
	Ambient  float64
	Direct   float64
}

// DefaultLightConfig places the key light up and to the right of the
// camera with a soft ambient fill.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		LightDir: mgl64.Vec3{0.4, 0.5, 1}.Normalize(),
		Ambient:  0.35,
		Direct:   0.75,
	}
}

// Shade returns the light intensity for a world-space normal. Both sides
// of the relief are lit, so the back of the plane never goes black.
func (lc *LightConfig) Shade(n mgl64.Vec3) float64 {
	return lc.Ambient + lc.Direct*math.Abs(n.Dot(lc.LightDir))
}
