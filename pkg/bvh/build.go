package bvh

import (
	"github.com/brindlefx/lumentrace/pkg/core"
)

// sahBuckets is the number of binned buckets swept per axis when evaluating
// candidate SAH splits.
const sahBuckets = 128

// maxLeafTriangles bounds how small a leaf can stay before splitting always
// stops, mirroring the "don't split" threshold in the spec's BVH builder.
const maxLeafTriangles = 2

// BVH is a flat, array-based bounding volume hierarchy built over a Mesh.
type BVH struct {
	Nodes    []Node
	Indirect []uint32
	Mesh     *Mesh
}

type bucket struct {
	count int
	box   core.AABB
}

// Build constructs a BVH over mesh using a binned surface-area-heuristic
// split rule, replacing naive median splitting with a cost-driven one. The
// node array is preallocated to 2N-1 entries and truncated to the number
// actually used, matching the spec's data model.
func Build(mesh *Mesh) *BVH {
	n := mesh.TriangleCount()
	if n == 0 {
		// An empty node array is its own valid "no triangles" representation;
		// TriCount==0 can't double as an empty leaf sentinel (it already
		// means "interior"), so traversal special-cases a BVH with no nodes.
		return &BVH{Mesh: mesh}
	}

	indirect := make([]uint32, n)
	for i := range indirect {
		indirect[i] = uint32(i)
	}

	nodes := make([]Node, 0, max(1, 2*n-1))
	nodes = append(nodes, Node{})
	nodeCount := 1

	nodes[0].TriCount = uint32(n)
	nodes[0].Payload = 0
	setNodeBounds(&nodes[0], mesh, indirect, 0, n)

	type stackEntry struct{ nodeIdx int }
	stack := []stackEntry{{0}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &nodes[top.nodeIdx]
		if node.TriCount <= maxLeafTriangles {
			continue
		}

		first := int(node.Payload)
		count := int(node.TriCount)

		axis, splitPos, found := bestSAHSplit(mesh, indirect, first, count)
		if !found {
			continue
		}

		mid := partition(mesh, indirect, first, count, axis, splitPos)
		leftCount := mid - first
		if leftCount == 0 || leftCount == count {
			continue
		}

		leftIdx := nodeCount
		rightIdx := nodeCount + 1
		nodeCount += 2
		for len(nodes) < nodeCount {
			nodes = append(nodes, Node{})
		}

		nodes[top.nodeIdx].Payload = uint32(leftIdx)
		nodes[top.nodeIdx].TriCount = 0

		nodes[leftIdx].Payload = uint32(first)
		nodes[leftIdx].TriCount = uint32(leftCount)
		setNodeBounds(&nodes[leftIdx], mesh, indirect, first, leftCount)

		nodes[rightIdx].Payload = uint32(mid)
		nodes[rightIdx].TriCount = uint32(count - leftCount)
		setNodeBounds(&nodes[rightIdx], mesh, indirect, mid, count-leftCount)

		stack = append(stack, stackEntry{rightIdx}, stackEntry{leftIdx})
	}

	nodes = nodes[:nodeCount]
	return &BVH{Nodes: nodes, Indirect: indirect, Mesh: mesh}
}

func setNodeBounds(node *Node, mesh *Mesh, indirect []uint32, first, count int) {
	box := core.Empty()
	for i := 0; i < count; i++ {
		triBox := mesh.Bounds(indirect[first+i])
		box = box.Union(triBox)
	}
	node.Min, node.Max = box.Min, box.Max
}

// bestSAHSplit sweeps all three axes with binned buckets and returns the
// axis and world-space split position of the lowest-cost partition found, or
// found=false if no split beats the cost of keeping the node as a leaf.
func bestSAHSplit(mesh *Mesh, indirect []uint32, first, count int) (axis int, splitPos float64, found bool) {
	centroidBounds := core.Empty()
	parentBounds := core.Empty()
	for i := 0; i < count; i++ {
		centroidBounds = centroidBounds.UnionPoint(mesh.Centroid(indirect[first+i]))
		parentBounds = parentBounds.Union(mesh.Bounds(indirect[first+i]))
	}
	extent := centroidBounds.Size()

	leafCost := float64(count) * parentBounds.SurfaceArea()
	bestCost := leafCost
	found = false

	for a := 0; a < 3; a++ {
		axisExtent := extent.Axis(a)
		if axisExtent < 1e-12 {
			continue
		}
		boundsMin := centroidBounds.Min.Axis(a)

		buckets := make([]bucket, sahBuckets)
		for i := range buckets {
			buckets[i].box = core.Empty()
		}
		bucketIndex := func(i uint32) int {
			c := mesh.Centroid(i).Axis(a)
			b := int(float64(sahBuckets) * (c - boundsMin) / axisExtent)
			if b < 0 {
				b = 0
			}
			if b >= sahBuckets {
				b = sahBuckets - 1
			}
			return b
		}

		for i := 0; i < count; i++ {
			tri := indirect[first+i]
			b := bucketIndex(tri)
			buckets[b].count++
			buckets[b].box = buckets[b].box.Union(mesh.Bounds(tri))
		}

		// Sweep from the left and right simultaneously to get prefix/suffix
		// counts and bounds for each of the sahBuckets-1 candidate splits.
		leftBox := make([]core.AABB, sahBuckets)
		leftCount := make([]int, sahBuckets)
		acc := core.Empty()
		accCount := 0
		for i := 0; i < sahBuckets; i++ {
			acc = acc.Union(buckets[i].box)
			accCount += buckets[i].count
			leftBox[i] = acc
			leftCount[i] = accCount
		}

		rightBox := make([]core.AABB, sahBuckets)
		rightCount := make([]int, sahBuckets)
		acc = core.Empty()
		accCount = 0
		for i := sahBuckets - 1; i >= 0; i-- {
			acc = acc.Union(buckets[i].box)
			accCount += buckets[i].count
			rightBox[i] = acc
			rightCount[i] = accCount
		}

		for i := 0; i < sahBuckets-1; i++ {
			nl, nr := leftCount[i], rightCount[i+1]
			if nl == 0 || nr == 0 {
				continue
			}
			cost := float64(nl)*leftBox[i].SurfaceArea() + float64(nr)*rightBox[i+1].SurfaceArea()
			if cost < bestCost {
				bestCost = cost
				axis = a
				splitPos = boundsMin + axisExtent*float64(i+1)/float64(sahBuckets)
				found = true
			}
		}
	}

	return axis, splitPos, found
}

// partition reorders indirect[first:first+count] in place so that all
// triangles with centroid < splitPos along axis come first, and returns the
// index of the first triangle on the "right" side.
func partition(mesh *Mesh, indirect []uint32, first, count, axis int, splitPos float64) int {
	a, b := first, first+count-1
	for a <= b {
		c := mesh.Centroid(indirect[a]).Axis(axis)
		if c < splitPos {
			a++
		} else {
			indirect[a], indirect[b] = indirect[b], indirect[a]
			b--
		}
	}
	return a
}
