package skybox

import (
	"math"

	"github.com/brindlefx/lumentrace/pkg/core"
	"github.com/brindlefx/lumentrace/pkg/texture"
)

// EnvironmentMap looks up miss-ray color from an equirectangular image, an
// alternative to the procedural Atmosphere model. SunDirection/SunIntensity
// mirror Atmosphere's fields even though the image itself carries the sky
// color: the sun still orients the map (its azimuth rotates the lookup
// direction, so turning the sun also turns the environment) and scales its
// overall brightness.
type EnvironmentMap struct {
	Atlas        *texture.Atlas
	SunDirection core.Vec3
	SunIntensity float64
}

// sunWToEnvironmentScale divides the sun intensity before it scales the
// environment image, so a sun intensity of 15 shows the image at its stored
// brightness.
const sunWToEnvironmentScale = 15.0

// Sample rotates direction by the sun's azimuth, converts the result to
// equirectangular UV coordinates, and bilinearly samples the environment
// image, scaled by the sun's intensity.
func (e EnvironmentMap) Sample(direction core.Vec3) core.Vec3 {
	rotated := rotateAroundY(direction, -sunAzimuth(e.SunDirection))
	u := 0.5 + math.Atan2(rotated.Z, rotated.X)/(2*math.Pi)
	v := 0.5 - math.Asin(clamp(rotated.Y, -1, 1))/math.Pi
	return e.Atlas.Sample(u, v).Multiply(e.SunIntensity / sunWToEnvironmentScale)
}

func sunAzimuth(sunDirection core.Vec3) float64 {
	if sunDirection.IsZero() {
		return 0
	}
	return math.Atan2(sunDirection.Z, sunDirection.X)
}

func rotateAroundY(v core.Vec3, angle float64) core.Vec3 {
	s, c := math.Sin(angle), math.Cos(angle)
	return core.NewVec3(v.X*c+v.Z*s, v.Y, -v.X*s+v.Z*c)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Sky is the shared interface the integrator queries on a ray miss.
type Sky interface {
	Sample(direction core.Vec3) core.Vec3
}

// AtmosphereSky adapts Atmosphere (which also needs a ray origin) to the
// single-argument Sky interface by using the same Origin for every lookup;
// for atmosphere rendering the origin matters far less than direction at
// the scale of this scattering model.
type AtmosphereSky struct {
	Atmosphere Atmosphere
	Origin     core.Vec3
}

func (a AtmosphereSky) Sample(direction core.Vec3) core.Vec3 {
	return a.Atmosphere.Sample(a.Origin, direction)
}

// ConstantSky emits the same radiance in every direction, the uniform
// infinite light case scene authors reach for when they want a flat ambient
// fill rather than a full atmosphere or environment image.
type ConstantSky struct {
	Color core.Vec3
}

func (c ConstantSky) Sample(_ core.Vec3) core.Vec3 { return c.Color }
