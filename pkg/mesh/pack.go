package mesh

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/Faultbox/objpack/pkg/formats"
)

// ErrIndexOutOfRange is wrapped by IndexError.
var ErrIndexOutOfRange = errors.New("attribute index out of range")

// IndexError reports a face corner that references a missing attribute.
type IndexError struct {
	Group     string
	Face      int    // 1-based face ordinal within the group
	Line      int    // Source line of the face
	Vertex    int    // 1-based corner within the face
	Attribute string // "position", "texcoord" or "normal"
	Index     int    // 1-based index as written in the source
	Count     int    // Size of the referenced table
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("group %q face %d (line %d) vertex %d: %s index %d: %s (have %d)",
		e.Group, e.Face, e.Line, e.Vertex, e.Attribute, e.Index, ErrIndexOutOfRange, e.Count)
}

// Unwrap allows errors.Is(err, ErrIndexOutOfRange).
func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// PackAll packs every non-empty group in declaration order.
// The first failing group aborts the whole run.
func PackAll(obj *formats.OBJ) ([]*Mesh, error) {
	meshes := make([]*Mesh, 0, len(obj.Groups))
	for _, g := range obj.Groups {
		m, err := Pack(obj, g)
		if err != nil {
			return nil, err
		}
		if m != nil {
			meshes = append(meshes, m)
		}
	}
	return meshes, nil
}

// Pack builds the deduplicated mesh for one group.
// Returns nil for a group without faces.
func Pack(obj *formats.OBJ, g *formats.Group) (*Mesh, error) {
	if len(g.Faces) == 0 {
		return nil, nil
	}

	m := &Mesh{
		Name:      g.Name,
		Indices:   make([]uint32, 0, g.FaceVertexCount()),
		FaceCount: len(g.Faces),
	}
	slots := make(map[Vertex]uint32)

	for fi, face := range g.Faces {
		for vi, fv := range face.Vertices {
			vtx, err := resolve(obj, fv)
			if err != nil {
				err.Group = g.Name
				err.Face = fi + 1
				err.Line = face.Line
				err.Vertex = vi + 1
				return nil, err
			}

			slot, ok := slots[vtx]
			if !ok {
				slot = uint32(len(m.Vertices))
				slots[vtx] = slot
				m.Vertices = append(m.Vertices, vtx)
			}
			m.Indices = append(m.Indices, slot)
		}
	}

	m.Bounds = computeBounds(m.Vertices)
	return m, nil
}

// resolve looks up the attribute values of a face corner.
func resolve(obj *formats.OBJ, fv formats.FaceVertex) (Vertex, *IndexError) {
	if !inRange(fv.Position, len(obj.Positions)) {
		return Vertex{}, &IndexError{Attribute: "position", Index: fv.Position, Count: len(obj.Positions)}
	}
	if !inRange(fv.TexCoord, len(obj.TexCoords)) {
		return Vertex{}, &IndexError{Attribute: "texcoord", Index: fv.TexCoord, Count: len(obj.TexCoords)}
	}
	if !inRange(fv.Normal, len(obj.Normals)) {
		return Vertex{}, &IndexError{Attribute: "normal", Index: fv.Normal, Count: len(obj.Normals)}
	}
	return Vertex{
		Position: obj.Positions[fv.Position-1],
		Normal:   obj.Normals[fv.Normal-1],
		TexCoord: obj.TexCoords[fv.TexCoord-1],
	}, nil
}

func inRange(idx, count int) bool {
	return idx >= 1 && idx <= count
}

func computeBounds(vertices []Vertex) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, v := range vertices[1:] {
		for i := 0; i < 3; i++ {
			b.Min[i] = min(b.Min[i], v.Position[i])
			b.Max[i] = max(b.Max[i], v.Position[i])
		}
	}
	return b
}
