package bvh

import "github.com/brindlefx/lumentrace/pkg/core"

// Mesh is the triangle-soup input the BVH is built over: positions plus the
// per-vertex attributes the integrator needs for shading (shading normal,
// texture coordinates, and an optional tangent for normal mapping). Each
// triangle also carries a material index, matching the spec's data model of
// a single flat material array shared by all meshes in a scene.
type Mesh struct {
	Vertices []core.Vec3
	Normals  []core.Vec3
	UVs      []core.Vec2
	Tangents []core.Vec3 // optional; nil if the asset has no tangent data

	// Indices holds, per triangle, the three vertex indices.
	Indices [][3]uint32
	// MaterialIndex holds, per triangle, an index into the scene's material array.
	MaterialIndex []uint32
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int { return len(m.Indices) }

// TriangleVertices returns the three world-space vertex positions of triangle i.
func (m *Mesh) TriangleVertices(i uint32) (a, b, c core.Vec3) {
	idx := m.Indices[i]
	return m.Vertices[idx[0]], m.Vertices[idx[1]], m.Vertices[idx[2]]
}

// TriangleNormals returns the three shading normals of triangle i.
func (m *Mesh) TriangleNormals(i uint32) (a, b, c core.Vec3) {
	idx := m.Indices[i]
	return m.Normals[idx[0]], m.Normals[idx[1]], m.Normals[idx[2]]
}

// TriangleUVs returns the three texture coordinates of triangle i.
func (m *Mesh) TriangleUVs(i uint32) (a, b, c core.Vec2) {
	idx := m.Indices[i]
	return m.UVs[idx[0]], m.UVs[idx[1]], m.UVs[idx[2]]
}

// TriangleTangents returns the three tangent vectors of triangle i, or
// ok=false if the mesh carries no tangent data.
func (m *Mesh) TriangleTangents(i uint32) (a, b, c core.Vec3, ok bool) {
	if m.Tangents == nil {
		return core.Vec3{}, core.Vec3{}, core.Vec3{}, false
	}
	idx := m.Indices[i]
	return m.Tangents[idx[0]], m.Tangents[idx[1]], m.Tangents[idx[2]], true
}

// Centroid returns the centroid of triangle i, used by the BVH builder to
// partition triangles along the split axis.
func (m *Mesh) Centroid(i uint32) core.Vec3 {
	a, b, c := m.TriangleVertices(i)
	return a.Add(b).Add(c).Multiply(1.0 / 3.0)
}

// Bounds returns the AABB of triangle i.
func (m *Mesh) Bounds(i uint32) core.AABB {
	a, b, c := m.TriangleVertices(i)
	box := core.Empty()
	return box.UnionPoint(a).UnionPoint(b).UnionPoint(c)
}

// mollerTrumboreEpsilon is the determinant threshold below which a ray is
// treated as parallel to the triangle's plane.
const mollerTrumboreEpsilon = 1e-6

// intersectTriangle implements the Möller-Trumbore ray/triangle test,
// reporting a back-face hit (the ray entered from the side opposite the
// winding-order normal) via backface.
func intersectTriangle(ro, rd, a, b, c core.Vec3) (t float64, backface, hit bool) {
	edge1 := b.Subtract(a)
	edge2 := c.Subtract(a)

	pv := rd.Cross(edge2)
	det := edge1.Dot(pv)
	backface = det < 0

	if det < mollerTrumboreEpsilon && det > -mollerTrumboreEpsilon {
		return 0, backface, false
	}
	invDet := 1.0 / det

	tv := ro.Subtract(a)
	u := tv.Dot(pv) * invDet
	if u < 0 || u > 1 {
		return 0, backface, false
	}

	qv := tv.Cross(edge1)
	v := rd.Dot(qv) * invDet
	if v < 0 || u+v > 1 {
		return 0, backface, false
	}

	t = edge2.Dot(qv) * invDet
	if t < 0 {
		return 0, backface, false
	}
	return t, backface, true
}
