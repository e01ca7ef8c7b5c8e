// Package meshio serializes packed meshes for the rendering runtime.
package meshio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Faultbox/objpack/pkg/mesh"
)

// Format identifies an output encoding.
type Format string

// Supported output formats.
const (
	FormatLua  Format = "lua"
	FormatYAML Format = "yaml"
	FormatGLB  Format = "glb"
)

// ErrUnknownFormat is returned for unsupported format names.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatLua, FormatYAML, FormatGLB}
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	switch f {
	case FormatLua, FormatYAML, FormatGLB:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", name)
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lua":
		return FormatLua, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".glb":
		return FormatGLB, true
	}
	return "", false
}

// Write encodes meshes to w in the given format.
func Write(w io.Writer, format Format, meshes []*mesh.Mesh) error {
	switch format {
	case FormatLua:
		return WriteLua(w, meshes)
	case FormatYAML:
		return WriteYAML(w, meshes)
	case FormatGLB:
		return WriteGLB(w, meshes)
	}
	return errors.Wrapf(ErrUnknownFormat, "%q", format)
}

// WriteFile encodes meshes to path. Output goes to a temporary file in the
// same directory that is renamed over path only after a complete write, so a
// failed conversion never leaves a truncated file behind.
func WriteFile(path string, format Format, meshes []*mesh.Mesh) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = Write(bw, format, meshes); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrap(err, "writing output")
	}
	if err = tmp.Chmod(0644); err != nil {
		return errors.Wrap(err, "setting output mode")
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrap(err, "syncing output")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing output")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "moving output into place")
	}
	return nil
}

// formatFloat returns the shortest text that parses back to the same float32.
func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
