// Package skybox supplies a ray's miss color: either a procedural
// Rayleigh/Mie atmosphere model or a bilinearly-filtered equirectangular
// environment image.
package skybox

import (
	"math"

	"github.com/brindlefx/lumentrace/pkg/core"
)

var (
	rayScatterCoeff    = core.NewVec3(58e-7, 135e-7, 331e-7)
	rayEffectiveCoeff  = rayScatterCoeff // Rayleigh scattering doesn't absorb light.
	mieScatterCoeff    = core.NewVec3(2e-5, 2e-5, 2e-5)
	mieEffectiveCoeff  = mieScatterCoeff.Multiply(1.1) // Approximate absorption as a factor of scattering.
)

const (
	earthRadius      = 6360e3
	atmosphereRadius = 6380e3
	hRay             = 8e3
	hMie             = 12e2
	scatterSteps     = 12
)

var earthCenter = core.NewVec3(0, -earthRadius, 0)

// Atmosphere is a procedural Rayleigh/Mie sky model, parameterized by a sun
// direction and intensity.
type Atmosphere struct {
	SunDirection core.Vec3
	SunIntensity float64
}

// escape returns the distance along (p,d) to exit a sphere of radius r
// centered at earthCenter, or -1 if the ray never intersects it.
func escape(p, d core.Vec3, r float64) float64 {
	v := p.Subtract(earthCenter)
	b := v.Dot(d)
	det := b*b - v.Dot(v) + r*r
	if det < 0 {
		return -1
	}
	det = math.Sqrt(det)
	t1 := -b - det
	t2 := -b + det
	if t1 >= 0 {
		return t1
	}
	return t2
}

// densitiesRM returns the (Rayleigh, Mie) relative density at point p, based
// on its altitude above the Earth's surface.
func densitiesRM(p core.Vec3) core.Vec2 {
	h := math.Max(0, p.Subtract(earthCenter).Length()-earthRadius)
	return core.Vec2{X: math.Exp(-h / hRay), Y: math.Exp(-h / hMie)}
}

func scatterDepthInt(o, d core.Vec3, l float64) core.Vec2 {
	a := densitiesRM(o).Multiply(l / 2.0)
	b := densitiesRM(o.Add(d.Multiply(l))).Multiply(l / 2.0)
	return a.Add(b)
}

// scatterIn numerically integrates in-scattered Rayleigh and Mie radiance
// along the view ray, accumulating optical depth toward the sun at each
// step (single-scattering approximation).
func scatterIn(origin, direction core.Vec3, totalDepth float64, steps int, sundir core.Vec3) (core.Vec3, core.Vec3) {
	stepDepth := totalDepth / float64(steps)

	iR := core.Vec3{}
	iM := core.Vec3{}
	totalDepthRM := core.Vec2{}

	for i := 0; i < steps; i++ {
		p := origin.Add(direction.Multiply(stepDepth * float64(i)))
		dRM := densitiesRM(p).Multiply(stepDepth)
		totalDepthRM = totalDepthRM.Add(dRM)

		sunEscape := escape(p, sundir, atmosphereRadius)
		depthRMSum := totalDepthRM.Add(scatterDepthInt(p, sundir, sunEscape))

		exponent := rayEffectiveCoeff.Multiply(-depthRMSum.X).Add(mieEffectiveCoeff.Multiply(-depthRMSum.Y))
		a := expVec3(exponent)

		iR = iR.Add(a.Multiply(dRM.X))
		iM = iM.Add(a.Multiply(dRM.Y))
	}

	return iR, iM
}

// Sample evaluates the atmosphere color seen along a ray (origin, direction).
func (atm Atmosphere) Sample(origin, direction core.Vec3) core.Vec3 {
	sundir := atm.SunDirection
	totalDepth := escape(origin, direction, atmosphereRadius)
	iR, iM := scatterIn(origin, direction, totalDepth, scatterSteps, sundir)

	mu := direction.Dot(sundir)
	phase := 1.0 + mu*mu

	rayTerm := iR.MultiplyVec(rayEffectiveCoeff).Multiply(0.0597)
	miePhase := 0.0196 / math.Pow(1.58-1.52*mu, 1.5)
	mieTerm := iM.MultiplyVec(mieScatterCoeff).Multiply(miePhase)

	res := rayTerm.Add(mieTerm).Multiply(atm.SunIntensity * phase)

	sqrted := core.NewVec3(math.Sqrt(math.Max(0, res.X)), math.Sqrt(math.Max(0, res.Y)), math.Sqrt(math.Max(0, res.Z)))
	return powVec3(core.MaskNaN(sqrted), 2.2)
}

func expVec3(v core.Vec3) core.Vec3 {
	return core.NewVec3(math.Exp(v.X), math.Exp(v.Y), math.Exp(v.Z))
}

func powVec3(v core.Vec3, exponent float64) core.Vec3 {
	return core.NewVec3(math.Pow(v.X, exponent), math.Pow(v.Y, exponent), math.Pow(v.Z, exponent))
}
