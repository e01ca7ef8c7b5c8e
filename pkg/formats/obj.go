// Package formats provides parsers for 3D geometry source formats.
// OBJ (Wavefront) format parser for position/normal/texcoord meshes.
package formats

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/Faultbox/objpack/pkg/encoding"
)

// DefaultGroupName is the group that receives faces declared before any "g" line.
const DefaultGroupName = "obj"

// OBJ format errors.
var (
	ErrMalformedDirective = errors.New("malformed OBJ directive")
)

// ParseError reports a recognized directive whose arguments do not have the
// expected shape.
type ParseError struct {
	Line   int    // 1-based line number
	Text   string // Line content, trimmed
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %s (%q)", e.Line, ErrMalformedDirective, e.Reason, e.Text)
}

// Unwrap allows errors.Is(err, ErrMalformedDirective).
func (e *ParseError) Unwrap() error {
	return ErrMalformedDirective
}

// FaceVertex is one face corner as 1-based indices, in source p/t/n order.
type FaceVertex struct {
	Position int
	TexCoord int
	Normal   int
}

// Face is a triangle or polygon.
type Face struct {
	Line     int // Source line of the "f" directive
	Vertices []FaceVertex
}

// Group is a named, ordered list of faces.
type Group struct {
	Name  string
	Faces []Face
}

// FaceVertexCount returns the total number of face corners in the group.
func (g *Group) FaceVertexCount() int {
	n := 0
	for i := range g.Faces {
		n += len(g.Faces[i].Vertices)
	}
	return n
}

// OBJ represents a parsed Wavefront OBJ file.
type OBJ struct {
	Positions []mgl32.Vec3 // "v" records, file order
	Normals   []mgl32.Vec3 // "vn" records, file order
	TexCoords []mgl32.Vec2 // "vt" records with V already flipped
	Groups    []*Group     // First-declaration order

	groupIndex map[string]*Group
}

// Group returns the named group, or nil if it was never declared.
func (o *OBJ) Group(name string) *Group {
	return o.groupIndex[name]
}

// FaceCount returns the number of faces across all groups.
func (o *OBJ) FaceCount() int {
	n := 0
	for _, g := range o.Groups {
		n += len(g.Faces)
	}
	return n
}

// FaceVertexCount returns the number of face corners across all groups.
func (o *OBJ) FaceVertexCount() int {
	n := 0
	for _, g := range o.Groups {
		n += g.FaceVertexCount()
	}
	return n
}

// group returns the named group, creating it if needed.
func (o *OBJ) group(name string) *Group {
	if g, ok := o.groupIndex[name]; ok {
		return g
	}
	g := &Group{Name: name}
	o.groupIndex[name] = g
	o.Groups = append(o.Groups, g)
	return g
}

// objReader holds the state of a single parse.
type objReader struct {
	obj     *OBJ
	current *Group
	line    int
	text    string
}

func (r *objReader) fail(format string, args ...interface{}) error {
	return &ParseError{Line: r.line, Text: r.text, Reason: fmt.Sprintf(format, args...)}
}

// LoadOBJ reads and parses an OBJ file. A nil decoder reads the file as UTF-8.
func LoadOBJ(path string, dec *encoding.Decoder) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening OBJ file")
	}
	defer f.Close()

	var r io.Reader = f
	if dec != nil {
		r = dec.Reader(f)
	}

	obj, err := ParseOBJ(r)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return obj, nil
}

// ParseOBJ parses OBJ text. Unknown directives are skipped.
func ParseOBJ(src io.Reader) (*OBJ, error) {
	r := &objReader{
		obj: &OBJ{groupIndex: make(map[string]*Group)},
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		r.line++
		r.text = strings.TrimSpace(scanner.Text())
		if err := r.parseLine(strings.Fields(r.text)); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading line %d", r.line+1)
	}

	return r.obj, nil
}

func (r *objReader) parseLine(tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	switch tokens[0] {
	case "v":
		v, err := r.parseVec3(tokens)
		if err != nil {
			return err
		}
		r.obj.Positions = append(r.obj.Positions, v)
	case "vn":
		v, err := r.parseVec3(tokens)
		if err != nil {
			return err
		}
		r.obj.Normals = append(r.obj.Normals, v)
	case "vt":
		if len(tokens) < 3 {
			return r.fail("expected 2 coordinates, got %d", len(tokens)-1)
		}
		u, err := r.parseFloat(tokens[1])
		if err != nil {
			return err
		}
		v, err := r.parseFloat(tokens[2])
		if err != nil {
			return err
		}
		// Renderer texture origin is flipped relative to OBJ.
		r.obj.TexCoords = append(r.obj.TexCoords, mgl32.Vec2{float32(u), float32(1.0 - v)})
	case "g":
		if len(tokens) < 2 {
			return r.fail("expected group name")
		}
		r.current = r.obj.group(tokens[1])
	case "f":
		return r.parseFace(tokens[1:])
	}
	return nil
}

func (r *objReader) parseVec3(tokens []string) (mgl32.Vec3, error) {
	if len(tokens) < 4 {
		return mgl32.Vec3{}, r.fail("expected 3 coordinates, got %d", len(tokens)-1)
	}
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := r.parseFloat(tokens[i+1])
		if err != nil {
			return mgl32.Vec3{}, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

func (r *objReader) parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, r.fail("invalid number %q", s)
	}
	return f, nil
}

func (r *objReader) parseFace(args []string) error {
	if len(args) < 3 {
		return r.fail("face needs at least 3 vertices, got %d", len(args))
	}

	face := Face{
		Line:     r.line,
		Vertices: make([]FaceVertex, 0, len(args)),
	}
	for i, arg := range args {
		parts := strings.Split(arg, "/")
		if len(parts) != 3 {
			return r.fail("face vertex %d %q is not a position/texcoord/normal triple", i+1, arg)
		}
		var idx [3]int
		for j, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return r.fail("face vertex %d %q has invalid index %q", i+1, arg, p)
			}
			idx[j] = n
		}
		face.Vertices = append(face.Vertices, FaceVertex{
			Position: idx[0],
			TexCoord: idx[1],
			Normal:   idx[2],
		})
	}

	if r.current == nil {
		r.current = r.obj.group(DefaultGroupName)
	}
	r.current.Faces = append(r.current.Faces, face)
	return nil
}
