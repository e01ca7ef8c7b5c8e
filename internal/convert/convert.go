// Package convert runs the OBJ to mesh conversion pipeline.
package convert

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/objpack/internal/config"
	"github.com/Faultbox/objpack/internal/logger"
	"github.com/Faultbox/objpack/pkg/encoding"
	"github.com/Faultbox/objpack/pkg/formats"
	"github.com/Faultbox/objpack/pkg/mesh"
	"github.com/Faultbox/objpack/pkg/meshio"
)

// Options describes one conversion.
type Options struct {
	Input  string
	Output string // Empty uses the configured default path
	Format string // Empty falls back to config, then the output extension
}

// Result summarizes a finished conversion.
type Result struct {
	Output   string
	Format   meshio.Format
	Meshes   []*mesh.Mesh
	Elapsed  time.Duration
	Vertices int
	Indices  int
}

// Load parses an OBJ file using the configured input encoding.
func Load(cfg *config.Config, path string) (*formats.OBJ, error) {
	dec, err := encoding.Lookup(cfg.Input.Encoding)
	if err != nil {
		return nil, err
	}

	obj, err := formats.LoadOBJ(path, dec)
	if err != nil {
		return nil, err
	}

	logger.Debug("parsed OBJ",
		zap.String("file", path),
		zap.String("encoding", dec.Name()),
		zap.Int("positions", len(obj.Positions)),
		zap.Int("normals", len(obj.Normals)),
		zap.Int("texcoords", len(obj.TexCoords)),
		zap.Int("groups", len(obj.Groups)),
		zap.Int("faces", obj.FaceCount()),
	)
	return obj, nil
}

// Pack packs every group of obj, logging each resulting mesh.
func Pack(obj *formats.OBJ) ([]*mesh.Mesh, error) {
	for _, g := range obj.Groups {
		if len(g.Faces) == 0 {
			logger.Debug("skipping empty group", zap.String("group", g.Name))
		}
	}

	meshes, err := mesh.PackAll(obj)
	if err != nil {
		return nil, err
	}

	for _, m := range meshes {
		logger.Debug("packed group",
			zap.String("group", m.Name),
			zap.Int("faces", m.FaceCount),
			zap.Int("vertices", len(m.Vertices)),
			zap.Int("indices", len(m.Indices)),
		)
	}
	return meshes, nil
}

// ResolveFormat picks the output format: explicit name, then the configured
// format, then the output file extension, then Lua.
func ResolveFormat(explicit string, cfg *config.Config, output string) (meshio.Format, error) {
	if explicit != "" {
		return meshio.ParseFormat(explicit)
	}
	if cfg.Output.Format != "" {
		return meshio.ParseFormat(cfg.Output.Format)
	}
	if f, ok := meshio.FormatFromPath(output); ok {
		return f, nil
	}
	return meshio.FormatLua, nil
}

// Run converts opts.Input and writes the result. Nothing is written unless
// every group packs successfully.
func Run(cfg *config.Config, opts Options) (*Result, error) {
	start := time.Now()

	output := opts.Output
	if output == "" {
		output = cfg.Output.DefaultPath
	}
	format, err := ResolveFormat(opts.Format, cfg, output)
	if err != nil {
		return nil, err
	}

	obj, err := Load(cfg, opts.Input)
	if err != nil {
		return nil, err
	}

	meshes, err := Pack(obj)
	if err != nil {
		return nil, errors.Wrapf(err, "packing %s", opts.Input)
	}
	if len(meshes) == 0 {
		logger.Warn("no faces found; output contains no meshes", zap.String("file", opts.Input))
	}

	if err := meshio.WriteFile(output, format, meshes); err != nil {
		return nil, errors.Wrapf(err, "writing %s", output)
	}

	res := &Result{
		Output:  output,
		Format:  format,
		Meshes:  meshes,
		Elapsed: time.Since(start),
	}
	for _, m := range meshes {
		res.Vertices += len(m.Vertices)
		res.Indices += len(m.Indices)
	}

	logger.Info("converted",
		zap.String("input", opts.Input),
		zap.String("output", output),
		zap.String("format", string(format)),
		zap.Int("meshes", len(meshes)),
		zap.Int("vertices", res.Vertices),
		zap.Int("indices", res.Indices),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}
