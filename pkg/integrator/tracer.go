// Package integrator implements the path-tracing kernel: one explicit,
// non-recursive bounce loop per pixel sample, shared in shape (if not in
// runtime) between the CPU and GPU backends.
package integrator

import (
	"math"

	"github.com/brindlefx/lumentrace/pkg/bvh"
	"github.com/brindlefx/lumentrace/pkg/core"
	"github.com/brindlefx/lumentrace/pkg/lights"
	"github.com/brindlefx/lumentrace/pkg/material"
	"github.com/brindlefx/lumentrace/pkg/skybox"
)

// surfaceRayBias offsets a new bounce ray's origin off the hit surface to
// avoid immediate self-intersection from floating point error.
const surfaceRayBias = 0.01

// SurfaceAt looks up the shading-relevant material surface description for
// a triangle index.
type SurfaceAt func(triangleIndex uint32) material.Surface

// Scene bundles everything a pixel sample needs to trace: the acceleration
// structure, per-triangle material lookup, the light-pick table (the
// sentinel table when the scene has no emissive triangles) and the sky
// shown on a miss.
type Scene struct {
	Tree       *bvh.BVH
	SurfaceAt  SurfaceAt
	LightTable *lights.Table
	Sky        skybox.Sky
}

// TracePixel evaluates one progressive sample for a single camera ray,
// returning the radiance estimate to accumulate into the framebuffer.
func TracePixel(scene Scene, config core.TracingConfig, ray core.Ray, rng *core.State) core.Vec3 {
	radiance := core.Vec3{}
	throughput := core.NewVec3(1, 1, 1)

	// prevBSDFPDF/prevWasSpecular describe the sampling strategy that
	// produced the current ray, needed to weight a subsequent emissive hit
	// against NEE's light-sampling strategy for that same vertex. NEE only
	// ever pairs with a sampled diffuse lobe (SampleDirect always evaluates
	// the diffuse lobe, never the specular one), so whether the previous
	// bounce had a paired NEE estimate at all depends on which lobe was
	// actually sampled there, not on the BSDF's type. The camera ray itself
	// has no BSDF PDF to weight against, so the first bounce's emissive hit
	// (if any) is taken at full weight.
	prevBSDFPDF := 0.0
	prevWasSpecular := true

	for bounce := 0; bounce < config.MaxBounces; bounce++ {
		hit, found := scene.Tree.IntersectNearest(ray)
		if !found {
			radiance = radiance.Add(throughput.MultiplyVec(scene.Sky.Sample(ray.Direction)))
			break
		}

		mesh := scene.Tree.Mesh
		a, b, c := mesh.TriangleVertices(hit.TriangleIndex)
		hitPoint := ray.At(hit.T)
		bary := core.Barycentric(hitPoint, a, b, c)

		na, nb, nc := mesh.TriangleNormals(hit.TriangleIndex)
		normal := na.Multiply(bary.X).Add(nb.Multiply(bary.Y)).Add(nc.Multiply(bary.Z)).Normalize()

		uvA, uvB, uvC := mesh.TriangleUVs(hit.TriangleIndex)
		uv := uvA.Multiply(bary.X).Add(uvB.Multiply(bary.Y)).Add(uvC.Multiply(bary.Z))

		surface := scene.SurfaceAt(hit.TriangleIndex)

		if surface.IsEmissive() {
			if hit.Backface {
				// Emissive triangles only emit from their front face.
				break
			}
			weight := emissiveHitWeight(scene.LightTable, config.NEEMode, prevWasSpecular, prevBSDFPDF, hit.TriangleIndex, hitPoint, ray.Origin, normal)
			radiance = radiance.Add(throughput.MultiplyVec(surface.EmissiveAt(uv)).Multiply(weight))
			break
		}

		normal = applyNormalMap(surface, normal, uv, mesh, hit.TriangleIndex, bary)

		bsdf := surface.BSDFAt(uv)
		viewDirection := ray.Direction.Negate()

		sample := bsdf.Sample(viewDirection, normal, rng)
		if sample.PDF <= 0 {
			break
		}

		// NEE's shadow ray always evaluates the diffuse lobe (see
		// lights.SampleDirect), so it is only a paired sampling strategy for
		// this vertex when the BSDF sample that continues the path also
		// came from the diffuse lobe. Firing NEE on a specular sample (or
		// gating a later emissive hit as if NEE had fired) double counts or
		// MIS-weights against a light-sampling estimate that was never
		// made.
		if config.NEEMode != core.NEEOff && scene.LightTable.HasLights() && sample.Lobe == material.LobeDiffuseReflection {
			direct := lights.SampleDirect(
				scene.Tree, scene.LightTable, scene.SurfaceAt, bsdf,
				hitPoint, normal, viewDirection,
				config.NEEMode == core.NEEMIS,
				rng,
			)
			radiance = radiance.Add(throughput.MultiplyVec(direct))
		}

		throughput = throughput.MultiplyVec(sample.Spectrum).Multiply(1.0 / sample.PDF)
		prevBSDFPDF = sample.PDF
		prevWasSpecular = sample.Lobe != material.LobeDiffuseReflection

		ray = core.NewRay(hitPoint.Add(sample.Direction.Multiply(surfaceRayBias)), sample.Direction)

		if bounce > config.MinBounces {
			prob := math.Max(throughput.X, math.Max(throughput.Y, throughput.Z))
			if rng.Gen1() > prob {
				break
			}
			throughput = throughput.Multiply(1.0 / math.Max(prob, 1e-6))
		}
	}

	return core.MaskNaN(radiance)
}

// emissiveHitWeight returns the weight to apply to an emissive triangle
// reached by BSDF sampling. A camera ray or a bounce off a specular lobe
// (including Glass, which only ever samples specular reflection/
// transmission) was never a candidate for NEE at the previous vertex, so
// it always gets full weight.
//
// Otherwise the previous vertex sampled its diffuse lobe, which is exactly
// the lobe NEE pairs with: under NEEMIS the two strategies are combined via
// the power heuristic balancing the BSDF PDF that produced this ray against
// the light-pick table's solid-angle PDF for this same triangle; under
// NEEDirectOnly, NEE already added this light's full contribution at the
// previous vertex, so the BSDF-sampled path must contribute nothing here or
// the light is counted twice.
func emissiveHitWeight(table *lights.Table, mode core.NEEMode, prevWasSpecular bool, prevBSDFPDF float64, triangleIndex uint32, hitPoint, rayOrigin, normal core.Vec3) float64 {
	if mode == core.NEEOff || prevWasSpecular {
		return 1.0
	}
	if mode == core.NEEDirectOnly {
		return 0.0
	}
	pickPDF, area, ok := table.PDFForTriangle(triangleIndex)
	if !ok || area <= 0 {
		return 1.0
	}
	toLight := hitPoint.Subtract(rayOrigin)
	distance := toLight.Length()
	if distance <= 0 {
		return 1.0
	}
	cosAtLight := math.Max(1e-6, normal.Dot(toLight.Multiply(-1.0/distance)))
	lightPDF := (distance * distance) / (area * cosAtLight) * pickPDF
	return core.PowerHeuristic(1, prevBSDFPDF, 1, lightPDF)
}

func applyNormalMap(surface material.Surface, geometricNormal core.Vec3, uv core.Vec2, mesh *bvh.Mesh, triangleIndex uint32, bary core.Vec3) core.Vec3 {
	if surface.NormalMap == nil {
		return geometricNormal
	}
	ta, tb, tc, ok := mesh.TriangleTangents(triangleIndex)
	if !ok {
		return geometricNormal
	}
	tangent := ta.Multiply(bary.X).Add(tb.Multiply(bary.Y)).Add(tc.Multiply(bary.Z)).Normalize()
	bitangent := tangent.Cross(geometricNormal)

	mapped := surface.NormalMap.Sample(uv).Multiply(2.0).Subtract(core.NewVec3(1, 1, 1))
	worldNormal := tangent.Multiply(mapped.X).Add(bitangent.Multiply(mapped.Y)).Add(geometricNormal.Multiply(mapped.Z))
	return worldNormal.Normalize()
}
