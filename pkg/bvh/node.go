// Package bvh implements a flat, SAH-built bounding volume hierarchy over a
// triangle mesh, with front-to-back traversal for nearest-hit and any-hit
// queries.
package bvh

import "github.com/brindlefx/lumentrace/pkg/core"

// Node is one entry of the flat BVH array. It mirrors the spec's packed
// node layout (two bounding-box corners plus integer "w-lane" fields) as
// explicit Go fields rather than bit-reinterpreted floats. No code in this
// repository packs them into a GPU buffer layout; the GPU backend traverses
// this array on the CPU like the CPU backend does.
//
// TriCount == 0 means an interior node: Payload is the index of the left
// child (the right child is always Payload+1). TriCount > 0 means a leaf:
// Payload is the first index into the BVH's indirect-triangle array.
type Node struct {
	Min, Max core.Vec3
	TriCount uint32
	Payload  uint32
}

// IsLeaf reports whether this node is a leaf (holds triangles directly).
func (n Node) IsLeaf() bool { return n.TriCount > 0 }

// LeftChild returns the index of this interior node's left child.
func (n Node) LeftChild() uint32 { return n.Payload }

// RightChild returns the index of this interior node's right child.
func (n Node) RightChild() uint32 { return n.Payload + 1 }

// FirstTriangle returns the index into the indirect-triangle array of this
// leaf's first triangle.
func (n Node) FirstTriangle() uint32 { return n.Payload }

// AABB returns the node's bounding box.
func (n Node) AABB() core.AABB { return core.AABB{Min: n.Min, Max: n.Max} }
