// Package material implements the BSDF library: Lambertian diffuse, a
// metallic-roughness PBR lobe (GGX + Smith-Schlick + Schlick Fresnel), and an
// optional dielectric Glass lobe.
package material

import "github.com/brindlefx/lumentrace/pkg/core"

// Lobe identifies which part of a BSDF a sample or evaluation refers to.
type Lobe int

const (
	LobeDiffuseReflection Lobe = iota
	LobeSpecularReflection
	LobeSpecularTransmission
)

// Sample is the result of importance-sampling a BSDF: a direction, the lobe
// it came from, its PDF, and the (already lobe-probability-divided) spectrum
// throughput multiplier.
type Sample struct {
	PDF       float64
	Lobe      Lobe
	Spectrum  core.Vec3
	Direction core.Vec3
}

// BSDF is the shared interface every surface scattering model implements.
// viewDirection points away from the surface toward the previous vertex
// (i.e. -rayDirection); normal is the shading normal.
type BSDF interface {
	Sample(viewDirection, normal core.Vec3, rng *core.State) Sample
	Evaluate(viewDirection, normal, sampleDirection core.Vec3, lobe Lobe) core.Vec3
	PDF(viewDirection, normal, sampleDirection core.Vec3, lobe Lobe) float64
}
