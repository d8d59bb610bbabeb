package material

import (
	"math"

	"github.com/brindlefx/lumentrace/pkg/core"
)

// ggxEpsilon guards denominators the same way the kernel's util::EPS does.
const ggxEpsilon = 0.001

// ggxDistribution evaluates the Trowbridge-Reitz (GGX) normal distribution
// function for a given half-vector.
func ggxDistribution(normal, halfway core.Vec3, roughness float64) float64 {
	numerator := roughness * roughness
	nDotH := math.Max(0, normal.Dot(halfway))
	denominator := (nDotH*nDotH)*(numerator-1.0) + 1.0
	denominator = math.Max(math.Pi*denominator*denominator, ggxEpsilon)
	return numerator / denominator
}

// sampleGGX importance-samples a GGX-distributed direction around
// reflectionDirection and returns it as is, per Karis's "Real Shading in Unreal Engine 4" notes.
func sampleGGX(r1, r2 float64, reflectionDirection core.Vec3, roughness float64) core.Vec3 {
	a := roughness * roughness

	phi := 2.0 * math.Pi * r1
	cosTheta := math.Sqrt((1.0 - r2) / (r2*(a*a-1.0) + 1.0))
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))

	halfway := core.NewVec3(math.Cos(phi)*sinTheta, math.Sin(phi)*sinTheta, cosTheta)

	up := core.NewVec3(0, 0, 1)
	if math.Abs(reflectionDirection.Z) >= 0.999 {
		up = core.NewVec3(1, 0, 0)
	}
	tangent := up.Cross(reflectionDirection).Normalize()
	bitangent := reflectionDirection.Cross(tangent)

	return tangent.Multiply(halfway.X).Add(bitangent.Multiply(halfway.Y)).Add(reflectionDirection.Multiply(halfway.Z)).Normalize()
}

// sampleGGXMicrosurfaceNormal samples a microfacet normal around the
// macrosurface normal itself (used by Glass, where the reflection/refraction
// direction isn't known before the microfacet normal is chosen).
func sampleGGXMicrosurfaceNormal(r1, r2 float64, normal core.Vec3, roughness float64) core.Vec3 {
	return sampleGGX(r1, r2, normal, roughness)
}

func geometrySchlickGGX(normal, viewDirection core.Vec3, roughness float64) float64 {
	numerator := math.Max(0, normal.Dot(viewDirection))
	r := (roughness * roughness) / 8.0
	denominator := numerator*(1.0-r) + r
	return numerator / denominator
}

// geometrySmith is the Smith-Schlick geometry term, evaluated for both the
// view and light directions (each leg independently occludes/shadows).
func geometrySmith(normal, viewDirection, lightDirection core.Vec3, roughness float64) float64 {
	return geometrySchlickGGX(normal, viewDirection, roughness) * geometrySchlickGGX(normal, lightDirection, roughness)
}

func fresnelSchlick(cosTheta float64, f0 core.Vec3) core.Vec3 {
	scale := math.Pow(1.0-cosTheta, 5)
	return f0.Add(core.NewVec3(1, 1, 1).Subtract(f0).Multiply(scale))
}

// fresnelSchlickScalar evaluates the scalar dielectric Fresnel reflectance
// going from a medium of index iorFrom into one of index iorTo.
func fresnelSchlickScalar(iorFrom, iorTo, cosTheta float64) float64 {
	f0Sqrt := (iorTo - iorFrom) / (iorTo + iorFrom)
	f0 := f0Sqrt * f0Sqrt
	return f0 + (1.0-f0)*math.Pow(1.0-cosTheta, 5)
}
