package bvh

import (
	"math"

	"github.com/brindlefx/lumentrace/pkg/core"
)

// maxStackDepth bounds the explicit traversal stack; a balanced binary tree
// over any mesh this renderer is meant for never approaches this depth.
const maxStackDepth = 32

// Hit describes the nearest (or first, for any-hit queries) intersection
// found by a traversal.
type Hit struct {
	TriangleIndex uint32
	T             float64
	Backface      bool
}

// slabIntersect returns the near-t of the ray/AABB slab test, or +Inf if the
// ray misses the box or the hit would be beyond prevMinT.
func slabIntersect(box core.AABB, ro, rd core.Vec3, prevMinT float64) float64 {
	tx1 := (box.Min.X - ro.X) / rd.X
	tx2 := (box.Max.X - ro.X) / rd.X
	tMin, tMax := math.Min(tx1, tx2), math.Max(tx1, tx2)

	ty1 := (box.Min.Y - ro.Y) / rd.Y
	ty2 := (box.Max.Y - ro.Y) / rd.Y
	tMin = math.Max(tMin, math.Min(ty1, ty2))
	tMax = math.Min(tMax, math.Max(ty1, ty2))

	tz1 := (box.Min.Z - ro.Z) / rd.Z
	tz2 := (box.Max.Z - ro.Z) / rd.Z
	tMin = math.Max(tMin, math.Min(tz1, tz2))
	tMax = math.Min(tMax, math.Max(tz1, tz2))

	if tMax >= tMin && tMax > 0 && tMin < prevMinT {
		return tMin
	}
	return math.Inf(1)
}

// IntersectNearest returns the closest intersection along the ray within
// (0, +inf), traversing front-to-back with an explicit stack and skipping
// the far child whenever the near child's box isn't hit at all.
func (b *BVH) IntersectNearest(ray core.Ray) (Hit, bool) {
	return b.intersectFrontToBack(ray, math.Inf(1), true)
}

// IntersectAny returns true as soon as any intersection with t <= maxT is
// found; used for shadow rays where only occlusion matters.
func (b *BVH) IntersectAny(ray core.Ray, maxT float64) bool {
	_, hit := b.intersectFrontToBack(ray, maxT, false)
	return hit
}

func (b *BVH) intersectFrontToBack(ray core.Ray, maxT float64, nearestHit bool) (Hit, bool) {
	if len(b.Nodes) == 0 {
		return Hit{T: math.Inf(1)}, false
	}

	var stack [maxStackDepth]int
	sp := 0
	stack[sp] = 0
	sp++

	result := Hit{T: math.Inf(1)}
	found := false
	ro, rd := ray.Origin, ray.Direction

	for sp > 0 {
		sp--
		nodeIdx := stack[sp]
		node := b.Nodes[nodeIdx]

		if node.IsLeaf() {
			for i := uint32(0); i < node.TriCount; i++ {
				triIdx := b.Indirect[node.FirstTriangle()+i]
				a, v1, v2 := b.Mesh.TriangleVertices(triIdx)
				t, backface, hit := intersectTriangle(ro, rd, a, v1, v2)
				if hit && t > 0.001 && t < result.T && (nearestHit || t <= maxT) {
					result.TriangleIndex = triIdx
					result.T = t
					result.Backface = backface
					found = true
					if !nearestHit {
						return result, true
					}
				}
			}
			continue
		}

		minIdx, maxIdx := int(node.LeftChild()), int(node.RightChild())
		minChild, maxChild := b.Nodes[minIdx], b.Nodes[maxIdx]
		minDist := slabIntersect(minChild.AABB(), ro, rd, result.T)
		maxDist := slabIntersect(maxChild.AABB(), ro, rd, result.T)
		if minDist > maxDist {
			minIdx, maxIdx = maxIdx, minIdx
			minDist, maxDist = maxDist, minDist
		}

		if math.IsInf(minDist, 1) {
			// Nearer child missed entirely, so the farther child (whose
			// distance is >= the nearer one) misses too: skip both.
			continue
		}

		if !math.IsInf(maxDist, 1) {
			stack[sp] = maxIdx
			sp++
		}
		stack[sp] = minIdx // popped first
		sp++
	}

	return result, found
}
