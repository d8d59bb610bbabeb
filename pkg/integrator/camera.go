package integrator

import (
	"math"

	"github.com/brindlefx/lumentrace/pkg/core"
)

// Camera generates primary rays the same way the compute-shader kernel's
// per-pixel setup does: a fixed-focal-length pinhole, with position and
// Euler (yaw, pitch) rotation uniforms rather than a pre-baked viewport
// basis, so the parameters stream cleanly into a GPU uniform buffer.
type Camera struct {
	Position core.Vec3
	// Rotation.X is pitch (around X), Rotation.Y is yaw (around Y).
	Rotation core.Vec3
}

// Ray generates a primary ray for normalized device coordinates uv (each in
// roughly [-1,1], already aspect-corrected by the caller) with an
// anti-aliasing jitter baked in by the caller via uv itself.
func (c Camera) Ray(uv core.Vec2) core.Ray {
	direction := core.NewVec3(uv.X, uv.Y, 1.0).Normalize()
	direction = rotateX(direction, c.Rotation.X)
	direction = rotateY(direction, c.Rotation.Y)
	return core.NewRay(c.Position, direction)
}

func rotateX(v core.Vec3, angle float64) core.Vec3 {
	s, cosA := math.Sin(angle), math.Cos(angle)
	return core.NewVec3(v.X, v.Y*cosA-v.Z*s, v.Y*s+v.Z*cosA)
}

func rotateY(v core.Vec3, angle float64) core.Vec3 {
	s, cosA := math.Sin(angle), math.Cos(angle)
	return core.NewVec3(v.X*cosA+v.Z*s, v.Y, -v.X*s+v.Z*cosA)
}

// PixelUV maps a pixel coordinate (plus a [0,1) anti-aliasing jitter) and
// image dimensions to aspect-corrected normalized device coordinates,
// matching the kernel's `main_material` UV derivation.
func PixelUV(x, y int, jitter core.Vec2, width, height int) core.Vec2 {
	sx := float64(x) + jitter.X
	sy := float64(y) + jitter.Y
	u := sx/float64(width)*2.0 - 1.0
	v := (1.0-sy/float64(height))*2.0 - 1.0
	v *= float64(height) / float64(width)
	return core.NewVec2(u, v)
}
