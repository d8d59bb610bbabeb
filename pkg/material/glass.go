package material

import (
	"math"

	"github.com/brindlefx/lumentrace/pkg/core"
)

// Glass is a rough dielectric BSDF: reflection and refraction through a
// GGX-distributed microfacet normal sampled around the macrosurface normal
// (not around the reflection direction, since refraction hasn't chosen a
// side yet). Both outcomes are delta distributions conditioned on the
// microfacet normal, so every Sample carries PDF 1.0 — the stochastic choice of lobe
// and of microfacet normal already accounts for the sampling density.
//
// Present per the original renderer's BSDF set; optional for an
// implementation limited to opaque PBR/Lambertian surfaces.
type Glass struct {
	Albedo    core.Vec3
	IOR       float64
	Roughness float64
}

func (g Glass) Sample(viewDirection, normal core.Vec3, rng *core.State) Sample {
	r1, r2, r3 := rng.Gen1(), rng.Gen1(), rng.Gen1()

	entering := normal.Dot(viewDirection) > 0
	iorFrom, iorTo := 1.0, g.IOR
	faceNormal := normal
	if !entering {
		iorFrom, iorTo = g.IOR, 1.0
		faceNormal = normal.Negate()
	}

	microNormal := sampleGGXMicrosurfaceNormal(r1, r2, faceNormal, g.Roughness)
	cosTheta := math.Max(0, microNormal.Dot(viewDirection))
	fresnel := fresnelSchlickScalar(iorFrom, iorTo, cosTheta)

	if r3 < fresnel {
		direction := core.Reflect(viewDirection.Negate(), microNormal)
		return Sample{
			PDF:       1.0,
			Lobe:      LobeSpecularReflection,
			Spectrum:  core.NewVec3(1, 1, 1),
			Direction: direction,
		}
	}

	refracted, ok := refract(viewDirection, microNormal, iorFrom/iorTo)
	if !ok {
		direction := core.Reflect(viewDirection.Negate(), microNormal)
		return Sample{
			PDF:       1.0,
			Lobe:      LobeSpecularReflection,
			Spectrum:  core.NewVec3(1, 1, 1),
			Direction: direction,
		}
	}

	return Sample{
		PDF:       1.0,
		Lobe:      LobeSpecularTransmission,
		Spectrum:  g.Albedo,
		Direction: refracted,
	}
}

// refract implements Snell's law refraction of incident direction i (pointing
// away from the surface into the ray's origin, Glass's convention) through
// normal n with a ratio of indices of refraction eta = iorFrom/iorTo. Returns
// false on total internal reflection.
func refract(i, n core.Vec3, eta float64) (core.Vec3, bool) {
	cosI := math.Min(1.0, n.Dot(i))
	sin2T := eta * eta * math.Max(0, 1.0-cosI*cosI)
	if sin2T >= 1.0 {
		return core.Vec3{}, false
	}
	cosT := math.Sqrt(1.0 - sin2T)
	return i.Negate().Multiply(eta).Add(n.Multiply(eta*cosI - cosT)), true
}

// Evaluate and PDF are zero for delta-distributed lobes: a Glass surface
// cannot be hit by a separately-sampled direction (e.g. next-event
// estimation), so it is excluded from direct-lighting sampling entirely.
func (g Glass) Evaluate(_, _, _ core.Vec3, _ Lobe) core.Vec3 {
	return core.Vec3{}
}

func (g Glass) PDF(_, _, _ core.Vec3, _ Lobe) float64 {
	return 0.0
}
