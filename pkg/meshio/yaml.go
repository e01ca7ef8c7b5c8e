package meshio

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/objpack/pkg/mesh"
)

// ErrInvalidDocument is returned by ReadYAML for structurally invalid input.
var ErrInvalidDocument = errors.New("invalid mesh document")

type yamlMesh struct {
	VBO []float32 `yaml:"vbo,flow"`
	IBO []uint32  `yaml:"ibo,flow"`
}

// WriteYAML writes meshes as a YAML mapping of group name to
// {vbo: [...], ibo: [...]}, preserving mesh order.
func WriteYAML(w io.Writer, meshes []*mesh.Mesh) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, m := range meshes {
		var key, value yaml.Node
		if err := key.Encode(m.Name); err != nil {
			return errors.Wrapf(err, "encoding name of %q", m.Name)
		}
		if err := value.Encode(yamlMesh{VBO: m.Interleaved(), IBO: m.Indices}); err != nil {
			return errors.Wrapf(err, "encoding %q", m.Name)
		}
		root.Content = append(root.Content, &key, &value)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return errors.Wrap(err, "writing yaml")
	}
	return errors.Wrap(enc.Close(), "writing yaml")
}

// ReadYAML decodes a document produced by WriteYAML. Only names, vertices
// and indices are restored.
func ReadYAML(r io.Reader) ([]*mesh.Mesh, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading yaml")
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.Wrapf(ErrInvalidDocument, "line %d: expected mapping", root.Line)
	}

	var meshes []*mesh.Mesh
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]

		var name string
		if err := keyNode.Decode(&name); err != nil {
			return nil, errors.Wrapf(err, "line %d", keyNode.Line)
		}
		var ym yamlMesh
		if err := valueNode.Decode(&ym); err != nil {
			return nil, errors.Wrapf(err, "mesh %q", name)
		}
		m, err := fromBuffers(name, ym.VBO, ym.IBO)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// fromBuffers rebuilds a mesh from an interleaved vertex buffer.
func fromBuffers(name string, vbo []float32, ibo []uint32) (*mesh.Mesh, error) {
	if len(vbo)%mesh.VertexStride != 0 {
		return nil, errors.Wrapf(ErrInvalidDocument, "mesh %q: vbo length %d is not a multiple of %d",
			name, len(vbo), mesh.VertexStride)
	}

	m := &mesh.Mesh{
		Name:     name,
		Vertices: make([]mesh.Vertex, len(vbo)/mesh.VertexStride),
		Indices:  ibo,
	}
	for i := range m.Vertices {
		f := vbo[i*mesh.VertexStride:]
		v := &m.Vertices[i]
		copy(v.Position[:], f[0:3])
		copy(v.Normal[:], f[3:6])
		copy(v.TexCoord[:], f[6:8])
	}
	for k, idx := range ibo {
		if int(idx) >= len(m.Vertices) {
			return nil, errors.Wrapf(ErrInvalidDocument, "mesh %q: ibo[%d] = %d out of range", name, k, idx)
		}
	}
	return m, nil
}
