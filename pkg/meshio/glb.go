package meshio

import (
	"io"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/objpack/pkg/mesh"
)

// ErrNotTriangulated is returned when a mesh containing polygons is written
// to a triangle-list format.
var ErrNotTriangulated = errors.New("mesh has non-triangle faces")

// WriteGLB writes meshes as a binary glTF 2.0 document with one mesh and one
// scene node per group.
func WriteGLB(w io.Writer, meshes []*mesh.Mesh) error {
	doc := gltf.NewDocument()

	for _, m := range meshes {
		if len(m.Indices) != 3*m.FaceCount {
			return errors.Wrapf(ErrNotTriangulated, "mesh %q: %d indices for %d faces",
				m.Name, len(m.Indices), m.FaceCount)
		}

		positions := make([][3]float32, len(m.Vertices))
		normals := make([][3]float32, len(m.Vertices))
		uvs := make([][2]float32, len(m.Vertices))
		for i, v := range m.Vertices {
			positions[i] = v.Position
			normals[i] = v.Normal
			uvs[i] = v.TexCoord
		}

		attributes := make(map[string]uint32)
		attributes["POSITION"] = modeler.WritePosition(doc, positions)
		attributes["NORMAL"] = modeler.WriteNormal(doc, normals)
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, uvs)
		indicesAccessor := modeler.WriteIndices(doc, m.Indices)

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: m.Name,
			Primitives: []*gltf.Primitive{
				{
					Indices:    &indicesAccessor,
					Attributes: attributes,
				},
			},
		})
		meshIndex := uint32(len(doc.Meshes) - 1)
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: m.Name, Mesh: &meshIndex})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return errors.Wrap(encoder.Encode(doc), "writing glb")
}
