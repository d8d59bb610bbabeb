package lights

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brindlefx/lumentrace/pkg/bvh"
	"github.com/brindlefx/lumentrace/pkg/core"
	"github.com/brindlefx/lumentrace/pkg/material"
)

// emissiveMesh builds n axis-aligned unit-square-ish triangles (two per
// quad), each assigned a distinct, randomly-scaled emissive power so the
// alias table has non-uniform probabilities to redistribute.
func emissiveMesh(t *testing.T, quads int, seed int64) (*bvh.Mesh, []material.Surface) {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	mesh := &bvh.Mesh{}
	surfaces := make([]material.Surface, 0, quads*2)

	for i := 0; i < quads; i++ {
		x := float64(i) * 2.0
		a := core.NewVec3(x, 0, 0)
		b := core.NewVec3(x+1, 0, 0)
		c := core.NewVec3(x+1, 0, 1)
		d := core.NewVec3(x, 0, 1)
		// Facing -Y, the side the a-b-c winding faces, so the quads light
		// points below them.
		normal := core.NewVec3(0, -1, 0)

		base := uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices, a, b, c, d)
		mesh.Normals = append(mesh.Normals, normal, normal, normal, normal)
		mesh.UVs = append(mesh.UVs, core.NewVec2(0, 0), core.NewVec2(1, 0), core.NewVec2(1, 1), core.NewVec2(0, 1))

		power := r.Float64()*10 + 0.1
		mesh.Indices = append(mesh.Indices, [3]uint32{base, base + 1, base + 2})
		mesh.Indices = append(mesh.Indices, [3]uint32{base, base + 2, base + 3})
		mesh.MaterialIndex = append(mesh.MaterialIndex, uint32(len(surfaces)), uint32(len(surfaces)))

		surfaces = append(surfaces, material.Surface{Emissive: core.NewVec3(power, power, power)})
	}
	return mesh, surfaces
}

func TestAliasTable_SentinelWhenNoEmissiveTriangles(t *testing.T) {
	mesh, _ := emissiveMesh(t, 3, 1)
	darkSurfaces := make([]material.Surface, len(mesh.Indices))
	table := Build(mesh, func(i uint32) material.Surface { return darkSurfaces[mesh.MaterialIndex[i]] })

	require.False(t, table.HasLights())
	_, _, _, ok := table.Pick(&core.State{})
	require.False(t, ok)
}

func TestAliasTable_ChiSquaredUnbiasedness(t *testing.T) {
	quads := 8
	mesh, surfaces := emissiveMesh(t, quads, 5)
	surfaceAt := func(i uint32) material.Surface { return surfaces[mesh.MaterialIndex[i]] }
	table := Build(mesh, surfaceAt)
	require.True(t, table.HasLights())

	// Expected pick probability per triangle, proportional to power*area (all
	// triangles here have equal area, so it's just proportional to power).
	totalPower := 0.0
	for i := uint32(0); i < uint32(mesh.TriangleCount()); i++ {
		totalPower += surfaceAt(i).Emissive.X
	}

	const samples = 200000
	counts := make(map[uint32]int)
	rng := core.NewState(123)
	for s := 0; s < samples; s++ {
		idx, _, _, ok := table.Pick(&rng)
		require.True(t, ok)
		counts[idx]++
		rng = rng.NextSample()
	}

	chiSquared := 0.0
	for i := uint32(0); i < uint32(mesh.TriangleCount()); i++ {
		expectedP := surfaceAt(i).Emissive.X / totalPower
		expected := expectedP * samples
		if expected <= 0 {
			continue
		}
		observed := float64(counts[i])
		diff := observed - expected
		chiSquared += diff * diff / expected
	}

	// Degrees of freedom = (number of triangles) - 1; with 2*quads bins and
	// a generous critical value this is a loose sanity bound, not a strict
	// statistical test, since the RNG is a deterministic low-discrepancy
	// sequence rather than truly independent samples.
	degreesOfFreedom := float64(2*quads - 1)
	criticalValue := degreesOfFreedom*3 + 50
	require.Lessf(t, chiSquared, criticalValue, "chi-squared statistic %.2f exceeds bound %.2f (degrees of freedom=%.0f)", chiSquared, criticalValue, degreesOfFreedom)
}

func TestSampleDirect_UnoccludedContributionIsFiniteAndNonNegative(t *testing.T) {
	mesh, surfaces := emissiveMesh(t, 1, 9)
	surfaceAt := func(i uint32) material.Surface { return surfaces[mesh.MaterialIndex[i]] }
	tree := bvh.Build(mesh)
	table := Build(mesh, surfaceAt)

	surfacePoint := core.NewVec3(0.5, -1, 0.5) // below the emissive quad at y=0, nothing in between
	surfaceNormal := core.NewVec3(0, 1, 0)
	view := core.NewVec3(0, 1, 0)
	bsdf := material.Lambertian{Albedo: core.NewVec3(0.8, 0.8, 0.8)}

	rng := core.NewState(1)
	for i := 0; i < 50; i++ {
		contribution := SampleDirect(tree, table, surfaceAt, bsdf, surfacePoint, surfaceNormal, view, true, &rng)
		require.False(t, math.IsNaN(contribution.X))
		require.GreaterOrEqual(t, contribution.X, 0.0)
		rng = rng.NextSample()
	}
}

func TestSampleDirect_OccludedReturnsZero(t *testing.T) {
	mesh, surfaces := emissiveMesh(t, 1, 11)
	surfaceAt := func(i uint32) material.Surface { return surfaces[mesh.MaterialIndex[i]] }

	// Add an opaque blocker quad directly beneath the light, between it and
	// the shading point, to the same mesh/BVH the shadow ray traverses.
	blockerBase := uint32(len(mesh.Vertices))
	mesh.Vertices = append(mesh.Vertices,
		core.NewVec3(-1, -0.5, -1), core.NewVec3(3, -0.5, -1), core.NewVec3(3, -0.5, 2), core.NewVec3(-1, -0.5, 2))
	mesh.Normals = append(mesh.Normals,
		core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0))
	mesh.UVs = append(mesh.UVs, core.Vec2{}, core.Vec2{}, core.Vec2{}, core.Vec2{})
	mesh.Indices = append(mesh.Indices, [3]uint32{blockerBase, blockerBase + 1, blockerBase + 2}, [3]uint32{blockerBase, blockerBase + 2, blockerBase + 3})
	mesh.MaterialIndex = append(mesh.MaterialIndex, uint32(len(surfaces)), uint32(len(surfaces)))
	surfaces = append(surfaces, material.Surface{}) // opaque, non-emissive

	tree := bvh.Build(mesh)
	table := Build(mesh, surfaceAt)

	surfacePoint := core.NewVec3(0.5, -1, 0.5) // below the blocker (y=-0.5), which is below the light (y=0)
	surfaceNormal := core.NewVec3(0, 1, 0)
	view := core.NewVec3(0, 1, 0)
	bsdf := material.Lambertian{Albedo: core.NewVec3(0.8, 0.8, 0.8)}

	rng := core.NewState(2)
	for i := 0; i < 20; i++ {
		contribution := SampleDirect(tree, table, surfaceAt, bsdf, surfacePoint, surfaceNormal, view, true, &rng)
		require.Equal(t, core.Vec3{}, contribution)
		rng = rng.NextSample()
	}
}
