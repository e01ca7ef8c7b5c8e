package mesh

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objpack/pkg/formats"
)

const quadOBJ = `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
g quad
f 1/1/1 2/2/1 3/3/1
f 1/1/1 3/3/1 4/4/1
`

func parse(t *testing.T, src string) *formats.OBJ {
	t.Helper()
	obj, err := formats.ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	return obj
}

// gridOBJ builds an n x n grid of quads split into triangles.
func gridOBJ(n int) string {
	var sb strings.Builder
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			fmt.Fprintf(&sb, "v %d %d 0\n", x, y)
			fmt.Fprintf(&sb, "vt %g %g\n", float64(x)/float64(n), float64(y)/float64(n))
		}
	}
	sb.WriteString("vn 0 0 1\ng grid\n")
	row := n + 1
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			a := y*row + x + 1
			b := a + 1
			c := a + row + 1
			d := a + row
			fmt.Fprintf(&sb, "f %d/%d/1 %d/%d/1 %d/%d/1\n", a, a, b, b, c, c)
			fmt.Fprintf(&sb, "f %d/%d/1 %d/%d/1 %d/%d/1\n", a, a, c, c, d, d)
		}
	}
	return sb.String()
}

// expectedCorners resolves every face corner of a group without deduplication.
func expectedCorners(obj *formats.OBJ, g *formats.Group) []Vertex {
	var out []Vertex
	for _, f := range g.Faces {
		for _, fv := range f.Vertices {
			out = append(out, Vertex{
				Position: obj.Positions[fv.Position-1],
				Normal:   obj.Normals[fv.Normal-1],
				TexCoord: obj.TexCoords[fv.TexCoord-1],
			})
		}
	}
	return out
}

func TestPack_Quad(t *testing.T) {
	obj := parse(t, quadOBJ)

	m, err := Pack(obj, obj.Group("quad"))
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	if m.Name != "quad" {
		t.Errorf("Name = %q, want quad", m.Name)
	}
	if len(m.Vertices) != 4 {
		t.Errorf("vertex count = %d, want 4", len(m.Vertices))
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	if !reflect.DeepEqual(m.Indices, want) {
		t.Errorf("Indices = %v, want %v", m.Indices, want)
	}
	if m.FaceCount != 2 {
		t.Errorf("FaceCount = %d, want 2", m.FaceCount)
	}
	if m.Bounds.Min != (mgl32.Vec3{0, 0, 0}) || m.Bounds.Max != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("Bounds = %+v", m.Bounds)
	}
	if m.Bounds.Center() != (mgl32.Vec3{0.5, 0.5, 0}) {
		t.Errorf("Center() = %v", m.Bounds.Center())
	}
	if m.Bounds.Size() != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("Size() = %v", m.Bounds.Size())
	}
}

func TestPack_TexCoordFlip(t *testing.T) {
	obj := parse(t, "v 1 2 3\nvn 0 1 0\nvt 0.25 0.75\nf 1/1/1 1/1/1 1/1/1\n")

	m, err := Pack(obj, obj.Groups[0])
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if len(m.Vertices) != 1 {
		t.Fatalf("vertex count = %d, want 1", len(m.Vertices))
	}
	want := []float32{1, 2, 3, 0, 1, 0, 0.25, 0.25}
	if got := m.Interleaved(); !reflect.DeepEqual(got, want) {
		t.Errorf("Interleaved() = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(m.Indices, []uint32{0, 0, 0}) {
		t.Errorf("Indices = %v, want [0 0 0]", m.Indices)
	}
}

func TestPack_DedupByValue(t *testing.T) {
	// Positions 1 and 2 are equal values at different indices, as are
	// texcoords 1 and 2; the corners must still collapse.
	obj := parse(t, `v 0 0 0
v 0 0 0
v 1 0 0
vn 0 0 1
vn 0 0 -1
vt 0 0
vt 0 0
f 1/1/1 2/2/1 3/1/1
f 1/1/2 2/1/2 3/2/1
`)

	m, err := Pack(obj, obj.Groups[0])
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	want := []uint32{0, 0, 1, 2, 2, 1}
	if !reflect.DeepEqual(m.Indices, want) {
		t.Errorf("Indices = %v, want %v", m.Indices, want)
	}
	if len(m.Vertices) != 3 {
		t.Errorf("vertex count = %d, want 3", len(m.Vertices))
	}
}

func TestPack_Properties(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"quad", quadOBJ},
		{"grid 1", gridOBJ(1)},
		{"grid 8", gridOBJ(8)},
		{"grid 64", gridOBJ(64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := parse(t, tt.src)
			g := obj.Groups[0]

			m, err := Pack(obj, g)
			if err != nil {
				t.Fatalf("Pack failed: %v", err)
			}

			// Coverage
			if len(m.Indices) != g.FaceVertexCount() {
				t.Errorf("index count = %d, want %d", len(m.Indices), g.FaceVertexCount())
			}

			// Index validity
			for k, idx := range m.Indices {
				if int(idx) >= len(m.Vertices) {
					t.Fatalf("Indices[%d] = %d out of range [0, %d)", k, idx, len(m.Vertices))
				}
			}

			// Uniqueness and first-occurrence order
			seen := make(map[Vertex]bool)
			var next uint32
			for k, idx := range m.Indices {
				if idx > next {
					t.Fatalf("Indices[%d] = %d skips ahead of next new slot %d", k, idx, next)
				}
				if idx == next {
					next++
				}
			}
			for i, v := range m.Vertices {
				if seen[v] {
					t.Fatalf("Vertices[%d] duplicates an earlier vertex", i)
				}
				seen[v] = true
			}

			// Reconstruction
			if !reflect.DeepEqual(m.Resolve(), expectedCorners(obj, g)) {
				t.Error("Resolve() does not reproduce the face corners")
			}

			// Determinism
			obj2 := parse(t, tt.src)
			again, err := Pack(obj2, obj2.Groups[0])
			if err != nil {
				t.Fatalf("second Pack failed: %v", err)
			}
			if !reflect.DeepEqual(m.Interleaved(), again.Interleaved()) || !reflect.DeepEqual(m.Indices, again.Indices) {
				t.Error("repeated Pack produced different buffers")
			}
		})
	}
}

func TestPack_GridSharing(t *testing.T) {
	const n = 16
	obj := parse(t, gridOBJ(n))

	m, err := Pack(obj, obj.Groups[0])
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if len(m.Vertices) != (n+1)*(n+1) {
		t.Errorf("vertex count = %d, want %d", len(m.Vertices), (n+1)*(n+1))
	}
	if len(m.Indices) != n*n*6 {
		t.Errorf("index count = %d, want %d", len(m.Indices), n*n*6)
	}
	if m.Bounds.Max != (mgl32.Vec3{n, n, 0}) {
		t.Errorf("Bounds.Max = %v", m.Bounds.Max)
	}
}

func TestPack_EmptyGroup(t *testing.T) {
	obj := parse(t, "g empty\n")

	m, err := Pack(obj, obj.Groups[0])
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil mesh for empty group, got %+v", m)
	}
}

func TestPack_IndexOutOfRange(t *testing.T) {
	header := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nvn 0 0 1\nvt 0 0\ng quad\n"
	tests := []struct {
		name      string
		face      string
		attribute string
		index     int
		count     int
		vertex    int
	}{
		{"position", "f 1/1/1 99/1/1 3/1/1", "position", 99, 4, 2},
		{"texcoord", "f 1/1/1 2/1/1 3/2/1", "texcoord", 2, 1, 3},
		{"normal", "f 1/1/5 2/1/1 3/1/1", "normal", 5, 1, 1},
		{"zero", "f 0/1/1 2/1/1 3/1/1", "position", 0, 4, 1},
		{"negative", "f 1/1/1 2/-1/1 3/1/1", "texcoord", -1, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := parse(t, header+"f 1/1/1 2/1/1 3/1/1\n"+tt.face+"\n")

			_, err := Pack(obj, obj.Group("quad"))
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
			}
			var ierr *IndexError
			if !errors.As(err, &ierr) {
				t.Fatalf("expected *IndexError, got %T", err)
			}
			want := IndexError{
				Group:     "quad",
				Face:      2,
				Line:      9,
				Vertex:    tt.vertex,
				Attribute: tt.attribute,
				Index:     tt.index,
				Count:     tt.count,
			}
			if *ierr != want {
				t.Errorf("IndexError = %+v, want %+v", *ierr, want)
			}
			if !strings.Contains(err.Error(), `group "quad"`) || !strings.Contains(err.Error(), "line 9") {
				t.Errorf("error %q lacks location", err.Error())
			}
		})
	}
}

func TestPackAll(t *testing.T) {
	obj := parse(t, `v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
vt 0 0
f 1/1/1 2/1/1 3/1/1
g empty
g second
f 3/1/1 2/1/1 1/1/1
f 1/1/1 2/1/1 3/1/1
`)

	meshes, err := PackAll(obj)
	if err != nil {
		t.Fatalf("PackAll failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("mesh count = %d, want 2", len(meshes))
	}
	if meshes[0].Name != formats.DefaultGroupName || meshes[1].Name != "second" {
		t.Errorf("mesh order = [%s %s], want [obj second]", meshes[0].Name, meshes[1].Name)
	}
	// Each group gets its own vertex slots.
	if !reflect.DeepEqual(meshes[1].Indices, []uint32{0, 1, 2, 2, 1, 0}) {
		t.Errorf("second Indices = %v", meshes[1].Indices)
	}
}

func TestPackAll_AbortsOnError(t *testing.T) {
	obj := parse(t, `v 0 0 0
vn 0 0 1
vt 0 0
g good
f 1/1/1 1/1/1 1/1/1
g bad
f 1/1/1 2/1/1 1/1/1
`)

	meshes, err := PackAll(obj)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if meshes != nil {
		t.Errorf("expected no meshes on failure, got %d", len(meshes))
	}
	var ierr *IndexError
	if !errors.As(err, &ierr) || ierr.Group != "bad" {
		t.Errorf("expected IndexError for group bad, got %v", err)
	}
}
