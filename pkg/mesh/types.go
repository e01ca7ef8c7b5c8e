// Package mesh packs parsed OBJ groups into indexed, deduplicated meshes.
package mesh

import "github.com/go-gl/mathgl/mgl32"

// VertexStride is the number of float32 fields per interleaved vertex.
const VertexStride = 8

// Vertex is a resolved face corner: position, normal, and texture coordinates.
// It is comparable and serves as the deduplication key.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}

// Mesh holds the vertex and index buffers of one group, ready for upload.
type Mesh struct {
	Name      string
	Vertices  []Vertex // Unique vertices, first-occurrence order
	Indices   []uint32 // One per face corner, traversal order
	FaceCount int
	Bounds    Bounds
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Size returns the extent of the box.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Interleaved returns the vertex buffer flattened to
// px py pz nx ny nz u v per vertex.
func (m *Mesh) Interleaved() []float32 {
	out := make([]float32, 0, len(m.Vertices)*VertexStride)
	for _, v := range m.Vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.TexCoord[0], v.TexCoord[1],
		)
	}
	return out
}

// Resolve replays the index buffer, returning one vertex per face corner.
func (m *Mesh) Resolve() []Vertex {
	out := make([]Vertex, len(m.Indices))
	for k, idx := range m.Indices {
		out[k] = m.Vertices[idx]
	}
	return out
}
