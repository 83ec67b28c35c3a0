package render

import "github.com/go-gl/mathgl/mgl64"

// Camera is a perspective camera on the +Z axis looking at the origin.
type Camera struct {
	FOVDegrees float64
	Near       float64
	Far        float64
	Distance   float64
}

// View returns the world-to-camera matrix.
func (c Camera) View() mgl64.Mat4 {
	eye := mgl64.Vec3{0, 0, c.Distance}
	return mgl64.LookAtV(eye, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
}

// Projection returns the perspective matrix for the given aspect ratio.
func (c Camera) Projection(aspect float64) mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FOVDegrees), aspect, c.Near, c.Far)
}
