package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/Faultbox/objpack/pkg/mesh"
)

var luaKeywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

// WriteLua writes meshes as a Lua chunk returning a table keyed by group name:
//
//	local objects = {}
//	objects.quad = {vbo = {px,py,pz,nx,ny,nz,u,v,...}, ibo = {0,1,2,...}}
//	return objects
func WriteLua(w io.Writer, meshes []*mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("local objects = {}\n")
	for _, m := range meshes {
		bw.WriteString("objects")
		bw.WriteString(luaField(m.Name))
		bw.WriteString(" = {vbo = {")
		for _, f := range m.Interleaved() {
			bw.WriteString(formatFloat(f))
			bw.WriteByte(',')
		}
		bw.WriteString("}, ibo = {")
		for _, idx := range m.Indices {
			bw.WriteString(strconv.FormatUint(uint64(idx), 10))
			bw.WriteByte(',')
		}
		bw.WriteString("}}\n")
	}
	bw.WriteString("return objects\n")

	return errors.Wrap(bw.Flush(), "writing lua")
}

// luaField returns ".name" for identifiers and `["name"]` otherwise.
func luaField(name string) string {
	if isLuaIdent(name) {
		return "." + name
	}
	return "[" + luaQuote(name) + "]"
}

func isLuaIdent(s string) bool {
	if s == "" || luaKeywords[s] {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// luaQuote quotes s as a Lua string literal. Bytes >= 0x80 pass through.
func luaQuote(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		default:
			if c < 0x20 || c == 0x7f {
				out = append(out, fmt.Sprintf("\\%03d", c)...)
			} else {
				out = append(out, c)
			}
		}
	}
	return string(append(out, '"'))
}
