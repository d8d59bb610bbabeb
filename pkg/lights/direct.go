package lights

import (
	"math"

	"github.com/brindlefx/lumentrace/pkg/bvh"
	"github.com/brindlefx/lumentrace/pkg/core"
	"github.com/brindlefx/lumentrace/pkg/material"
)

const shadowRayEpsilon = 0.01

// pickTrianglePoint samples a uniformly-distributed point on triangle abc,
// using Shirley & Chiu's square-root parametrization (equation 1,
// https://www.cs.princeton.edu/~funk/tog02.pdf).
func pickTrianglePoint(a, b, c core.Vec3, rng *core.State) core.Vec3 {
	r1, r2 := rng.Gen1(), rng.Gen1()
	r1Sqrt := math.Sqrt(r1)
	return a.Multiply(1.0 - r1Sqrt).
		Add(b.Multiply(r1Sqrt * (1.0 - r2))).
		Add(c.Multiply(r1Sqrt * r2))
}

// SampleDirect evaluates the next-event-estimation contribution of one
// shadow ray toward a randomly picked emissive triangle, MIS-weighted
// against the BSDF sampling strategy via the power heuristic.
//
// surfacePoint/surfaceNormal describe the shading point; viewDirection
// points away from the surface toward the camera-ward path vertex (i.e.
// -rayDirection); surfaceAt looks up the surface of the picked light
// triangle to read its emissive radiance.
func SampleDirect(
	tree *bvh.BVH,
	table *Table,
	surfaceAt func(triangleIndex uint32) material.Surface,
	bsdf material.BSDF,
	surfacePoint, surfaceNormal, viewDirection core.Vec3,
	misWeighted bool,
	rng *core.State,
) core.Vec3 {
	lightIndex, lightArea, pickPDF, ok := table.Pick(rng)
	if !ok {
		return core.Vec3{}
	}

	mesh := tree.Mesh
	a, b, c := mesh.TriangleVertices(lightIndex)
	na, nb, nc := mesh.TriangleNormals(lightIndex)

	lightPoint := pickTrianglePoint(a, b, c, rng)
	toLight := lightPoint.Subtract(surfacePoint)
	lightDistance := toLight.Length()
	if lightDistance <= 0 {
		return core.Vec3{}
	}
	lightDirection := toLight.Multiply(1.0 / lightDistance)

	bary := core.Barycentric(lightPoint, a, b, c)
	lightNormal := na.Multiply(bary.X).Add(nb.Multiply(bary.Y)).Add(nc.Multiply(bary.Z))

	cosAtLight := lightNormal.Dot(lightDirection.Negate())
	if cosAtLight <= 0 {
		// Shadow ray hits the emissive triangle's back face: no contribution.
		return core.Vec3{}
	}

	shadowOrigin := surfacePoint.Add(surfaceNormal.Multiply(shadowRayEpsilon))
	shadowRay := core.NewRay(shadowOrigin, lightDirection)
	if tree.IntersectAny(shadowRay, lightDistance-2*shadowRayEpsilon) {
		return core.Vec3{}
	}

	emissive := surfaceAt(lightIndex).Emissive
	bsdfValue := bsdf.Evaluate(viewDirection, surfaceNormal, lightDirection, material.LobeDiffuseReflection)
	if bsdfValue.IsZero() {
		return core.Vec3{}
	}

	lightPDF := (lightDistance * lightDistance) / (lightArea * cosAtLight) * pickPDF
	if lightPDF <= 0 {
		return core.Vec3{}
	}

	weight := 1.0
	if misWeighted {
		bsdfPDF := bsdf.PDF(viewDirection, surfaceNormal, lightDirection, material.LobeDiffuseReflection)
		weight = core.CombinePDFs(lightPDF, bsdfPDF, true)
	}

	contribution := bsdfValue.MultiplyVec(emissive).Multiply(weight / lightPDF)
	return core.MaskNaN(contribution)
}
