// Package lights builds and samples the emissive-triangle alias table used
// for next-event estimation, and evaluates the direct-lighting contribution
// of a single light-sample shadow ray.
package lights

import (
	"math"
	"sort"

	"github.com/brindlefx/lumentrace/pkg/bvh"
	"github.com/brindlefx/lumentrace/pkg/core"
	"github.com/brindlefx/lumentrace/pkg/material"
)

// Entry is one alias-table bin: two candidate triangles and the probability
// ratio used to choose between them in O(1).
type Entry struct {
	TriangleIndexA uint32
	TriangleAreaA  float64
	PickPDFA       float64

	TriangleIndexB uint32
	TriangleAreaB  float64
	PickPDFB       float64

	// Ratio is the probability of picking A over B within this bin.
	// Ratio == -1 is the sentinel for "no emissive triangles in the scene".
	Ratio float64
}

// Table is a Vose ("Robin Hood") alias table over a mesh's emissive
// triangles, offering unbiased O(1) light sampling proportional to each
// triangle's radiant power (emissive color dot (1,1,1), times area).
type Table struct {
	entries []Entry
	// pickPDF maps a triangle index to its per-triangle pick probability,
	// used to compute a light-sampling PDF for a triangle reached by BSDF
	// sampling (rather than by Pick), for MIS weighting.
	pickPDF map[uint32]float64
	area    map[uint32]float64
}

// PDFForTriangle returns the probability of this table's Pick landing on
// triangleIndex, or 0 if that triangle isn't an emissive pick candidate.
func (t *Table) PDFForTriangle(triangleIndex uint32) (pdf, area float64, ok bool) {
	pdf, ok = t.pickPDF[triangleIndex]
	if !ok {
		return 0, 0, false
	}
	return pdf, t.area[triangleIndex], true
}

func triangleArea(a, b, c core.Vec3) float64 {
	sideA := b.Subtract(a).Length()
	sideB := c.Subtract(b).Length()
	sideC := a.Subtract(c).Length()
	s := (sideA + sideB + sideC) / 2.0
	product := s * (s - sideA) * (s - sideB) * (s - sideC)
	return math.Sqrt(math.Max(0, product))
}

// Build constructs the alias table from a mesh and a per-triangle surface
// lookup (triangles whose surface is not emissive are excluded from picking).
func Build(mesh *bvh.Mesh, surfaceAt func(triangleIndex uint32) material.Surface) *Table {
	n := uint32(mesh.TriangleCount())
	areas := make([]float64, n)
	powers := make([]float64, n)
	totalPower := 0.0
	totalTris := 0

	for i := uint32(0); i < n; i++ {
		surface := surfaceAt(i)
		if !surface.IsEmissive() {
			continue
		}
		totalTris++
		a, b, c := mesh.TriangleVertices(i)
		area := triangleArea(a, b, c)
		areas[i] = area

		emissive := surface.Emissive
		power := (emissive.X + emissive.Y + emissive.Z) * area
		powers[i] = power
		totalPower += power
	}

	if totalTris == 0 || totalPower <= 0 {
		return &Table{entries: []Entry{{Ratio: -1}}}
	}

	probabilities := make([]float64, n)
	for i := uint32(0); i < n; i++ {
		probabilities[i] = powers[i] / totalPower
	}
	averageProbability := sumNonZero(probabilities) / float64(totalTris)

	type bin struct {
		indexA       uint32
		probabilityA float64
		indexB       uint32
		probabilityB float64
	}

	bins := make([]bin, 0, totalTris)
	for i := uint32(0); i < n; i++ {
		if probabilities[i] != 0 {
			bins = append(bins, bin{indexA: i, probabilityA: probabilities[i]})
		}
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].probabilityA < bins[j].probabilityA })

	numBins := len(bins)
	mostProbable := numBins - 1
	for i := 0; i < mostProbable; i++ {
		needed := averageProbability - bins[i].probabilityA
		if needed <= 0 {
			break
		}
		bins[i].indexB = bins[mostProbable].indexA
		bins[i].probabilityB = needed
		bins[mostProbable].probabilityA -= needed
		// Move the donor back into sorted position among the unfilled
		// bins[i+1:] so a donor left below the average is filled in turn.
		for j := mostProbable; j > i+1 && bins[j].probabilityA < bins[j-1].probabilityA; j-- {
			bins[j], bins[j-1] = bins[j-1], bins[j]
		}
	}

	entries := make([]Entry, numBins)
	pickPDF := make(map[uint32]float64, numBins)
	area := make(map[uint32]float64, numBins)
	for i, b := range bins {
		entries[i] = Entry{
			TriangleIndexA: b.indexA,
			TriangleAreaA:  areas[b.indexA],
			PickPDFA:       probabilities[b.indexA],
			TriangleIndexB: b.indexB,
			TriangleAreaB:  areas[b.indexB],
			PickPDFB:       probabilities[b.indexB],
			Ratio:          b.probabilityA / (b.probabilityA + b.probabilityB),
		}
		pickPDF[b.indexA] = probabilities[b.indexA]
		area[b.indexA] = areas[b.indexA]
	}
	return &Table{entries: entries, pickPDF: pickPDF, area: area}
}

// HasLights reports whether the table contains any real (non-sentinel)
// emissive triangle.
func (t *Table) HasLights() bool {
	return !(len(t.entries) == 1 && t.entries[0].Ratio == -1)
}

// Pick samples a single emissive triangle, returning its index, its area
// and the probability density of picking that specific triangle (both
// quantities needed by the light's area-domain PDF downstream).
func (t *Table) Pick(rng *core.State) (triangleIndex uint32, area, pickPDF float64, ok bool) {
	if !t.HasLights() {
		return 0, 0, 0, false
	}
	u1, u2 := rng.Gen1(), rng.Gen1()
	bin := t.entries[clampBin(int(u1*float64(len(t.entries))), len(t.entries))]
	if u2 < bin.Ratio {
		return bin.TriangleIndexA, bin.TriangleAreaA, bin.PickPDFA, true
	}
	return bin.TriangleIndexB, bin.TriangleAreaB, bin.PickPDFB, true
}

func clampBin(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func sumNonZero(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}
