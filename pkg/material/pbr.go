package material

import (
	"math"

	"github.com/brindlefx/lumentrace/pkg/core"
)

// dielectricIOR is the assumed index of refraction for non-metallic
// dielectrics, which is a good fit for most common materials.
const dielectricIOR = 1.5

// dielectricF0 is the Fresnel reflectance at normal incidence implied by
// dielectricIOR with air as the other medium.
var dielectricF0 = func() float64 {
	sqrtF0 := (dielectricIOR - 1.0) / (dielectricIOR + 1.0)
	return sqrtF0 * sqrtF0
}()

// PBR is a metallic-roughness microfacet BSDF: a GGX specular lobe mixed
// with a Lambertian diffuse lobe, weighted by an approximate dielectric
// Fresnel term so grazing angles become more reflective even on rough
// dielectrics.
type PBR struct {
	Albedo    core.Vec3
	Roughness float64
	Metallic  float64

	// SpecularWeightClampMin/Max bound the specular-lobe selection
	// probability away from {0,1}, avoiding fireflies at glancing angles
	// (Boksansky & Marrs, Ray Tracing Gems II, chapter 14).
	SpecularWeightClampMin float64
	SpecularWeightClampMax float64
}

func (p PBR) specularWeight(viewDirection, normal core.Vec3) float64 {
	approxFresnel := fresnelSchlickScalar(1.0, dielectricIOR, math.Max(0, normal.Dot(viewDirection)))
	weight := core.Lerp(approxFresnel, 1.0, p.Metallic)
	if weight != 0.0 && weight != 1.0 {
		weight = math.Max(p.SpecularWeightClampMin, math.Min(p.SpecularWeightClampMax, weight))
	}
	return weight
}

func (p PBR) fresnelTerm(halfway, viewDirection core.Vec3) core.Vec3 {
	f0 := core.LerpVec3(core.NewVec3(dielectricF0, dielectricF0, dielectricF0), p.Albedo, p.Metallic)
	return fresnelSchlick(math.Max(0, halfway.Dot(viewDirection)), f0)
}

func (p PBR) evaluateDiffuseFast(cosTheta, specularWeight float64, ks core.Vec3) core.Vec3 {
	kd := core.NewVec3(1, 1, 1).Subtract(ks).Multiply(1.0 - p.Metallic)
	diffuse := kd.MultiplyVec(p.Albedo).Multiply(1.0 / math.Pi)
	return diffuse.Multiply(cosTheta / (1.0 - specularWeight))
}

func (p PBR) evaluateSpecularFast(viewDirection, normal, sampleDirection core.Vec3, cosTheta, dTerm, specularWeight float64, ks core.Vec3) core.Vec3 {
	gTerm := geometrySmith(normal, viewDirection, sampleDirection, p.Roughness)
	numerator := ks.Multiply(dTerm * gTerm)
	denominator := 4.0 * math.Max(0, normal.Dot(viewDirection)) * cosTheta
	specular := numerator.Multiply(1.0 / math.Max(denominator, ggxEpsilon))
	return specular.Multiply(cosTheta / specularWeight)
}

func (p PBR) pdfDiffuseFast(cosTheta float64) float64 {
	return cosTheta / math.Pi
}

func (p PBR) pdfSpecularFast(viewDirection, normal, halfway core.Vec3, dTerm float64) float64 {
	return (dTerm * normal.Dot(halfway)) / (4.0 * viewDirection.Dot(halfway))
}

func (p PBR) Evaluate(viewDirection, normal, sampleDirection core.Vec3, lobe Lobe) core.Vec3 {
	specularWeight := p.specularWeight(viewDirection, normal)
	cosTheta := math.Max(0, normal.Dot(sampleDirection))
	halfway := viewDirection.Add(sampleDirection).Normalize()
	ks := p.fresnelTerm(halfway, viewDirection)

	if lobe == LobeDiffuseReflection {
		return p.evaluateDiffuseFast(cosTheta, specularWeight, ks)
	}
	dTerm := ggxDistribution(normal, halfway, p.Roughness)
	return p.evaluateSpecularFast(viewDirection, normal, sampleDirection, cosTheta, dTerm, specularWeight, ks)
}

func (p PBR) Sample(viewDirection, normal core.Vec3, rng *core.State) Sample {
	r1, r2, r3 := rng.Gen1(), rng.Gen1(), rng.Gen1()

	specularWeight := p.specularWeight(viewDirection, normal)

	var direction core.Vec3
	var lobe Lobe
	if r3 >= specularWeight {
		local := core.CosineSampleHemisphere(r1, r2)
		direction = core.AlignToNormal(local, normal)
		lobe = LobeDiffuseReflection
	} else {
		reflectionDirection := core.Reflect(viewDirection.Negate(), normal)
		direction = sampleGGX(r1, r2, reflectionDirection, p.Roughness)
		lobe = LobeSpecularReflection
	}

	cosTheta := math.Max(ggxEpsilon, normal.Dot(direction))
	halfway := viewDirection.Add(direction).Normalize()
	ks := p.fresnelTerm(halfway, viewDirection)

	if lobe == LobeDiffuseReflection {
		return Sample{
			PDF:       p.pdfDiffuseFast(cosTheta),
			Lobe:      lobe,
			Spectrum:  p.evaluateDiffuseFast(cosTheta, specularWeight, ks),
			Direction: direction,
		}
	}

	dTerm := ggxDistribution(normal, halfway, p.Roughness)
	return Sample{
		PDF:       p.pdfSpecularFast(viewDirection, normal, halfway, dTerm),
		Lobe:      lobe,
		Spectrum:  p.evaluateSpecularFast(viewDirection, normal, direction, cosTheta, dTerm, specularWeight, ks),
		Direction: direction,
	}
}

func (p PBR) PDF(viewDirection, normal, sampleDirection core.Vec3, lobe Lobe) float64 {
	if lobe == LobeDiffuseReflection {
		cosTheta := math.Max(0, normal.Dot(sampleDirection))
		return p.pdfDiffuseFast(cosTheta)
	}
	halfway := viewDirection.Add(sampleDirection).Normalize()
	dTerm := ggxDistribution(normal, halfway, p.Roughness)
	return p.pdfSpecularFast(viewDirection, normal, halfway, dTerm)
}
