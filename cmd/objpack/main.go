// objpack converts Wavefront OBJ files into indexed meshes for the renderer.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/objpack/internal/config"
	"github.com/Faultbox/objpack/internal/convert"
	"github.com/Faultbox/objpack/internal/logger"
	"github.com/Faultbox/objpack/pkg/formats"
	"github.com/Faultbox/objpack/pkg/mesh"
	"github.com/Faultbox/objpack/pkg/meshio"
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	command := args[0]
	args = args[1:]

	switch command {
	case "convert", "c":
		cmdConvert(cfg, args)
	case "info":
		cmdInfo(cfg, args)
	case "dump":
		cmdDump(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`objpack - Wavefront OBJ to indexed mesh converter

Usage:
  objpack [global options] <command> [options]

Commands:
  convert [-o out] [-format f] <file.obj>  Pack every group and write the meshes
  info <file.obj>                          Show per-group statistics
  dump <file.obj> [group]                  Dump parsed data, or one packed group

Global options:
  -config <path>     Config file (default ./objpack.yaml or %s)
  -debug             Enable debug logging
  -encoding <name>   Input text encoding (utf-8, euc-kr, windows-1252, latin1)
  -log-file <path>   Also write logs to a rotating file

Output formats: %s
Faces declared before any "g" line belong to group %q.

Examples:
  objpack convert -o mesh.lua model.obj
  objpack convert -format glb -o model.glb model.obj
  objpack -encoding euc-kr info model.obj
`, config.ConfigDir(), formatNames(), formats.DefaultGroupName)
}

func formatNames() string {
	var names []string
	for _, f := range meshio.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// fail logs err and exits. Deferred calls do not run after os.Exit.
func fail(msg string, err error) {
	logger.Error(msg, zap.Error(err))
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdConvert(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	out := fs.String("o", "", "Output file (default "+cfg.Output.DefaultPath+")")
	format := fs.String("format", "", "Output format: "+formatNames())
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: objpack convert [-o out] [-format f] <file.obj>")
		os.Exit(1)
	}

	res, err := convert.Run(cfg, convert.Options{
		Input:  fs.Arg(0),
		Output: *out,
		Format: *format,
	})
	if err != nil {
		fail("conversion failed", err)
	}

	fmt.Printf("%s: %d meshes, %d vertices, %d indices (%s)\n",
		res.Output, len(res.Meshes), res.Vertices, res.Indices, res.Format)
}

func cmdInfo(cfg *config.Config, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: objpack info <file.obj>")
		os.Exit(1)
	}

	obj, err := convert.Load(cfg, args[0])
	if err != nil {
		fail("loading failed", err)
	}

	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Positions: %d\n", len(obj.Positions))
	fmt.Printf("Normals:   %d\n", len(obj.Normals))
	fmt.Printf("TexCoords: %d\n", len(obj.TexCoords))
	fmt.Printf("Groups:    %d\n", len(obj.Groups))
	fmt.Println()
	fmt.Printf("  %-24s %8s %8s %8s %8s  %s\n", "GROUP", "FACES", "CORNERS", "UNIQUE", "REUSE", "SIZE")

	for _, g := range obj.Groups {
		m, err := mesh.Pack(obj, g)
		if err != nil {
			fail("packing failed", err)
		}
		if m == nil {
			fmt.Printf("  %-24s %8d %8s %8s %8s  %s\n", g.Name, 0, "-", "-", "-", "(empty)")
			continue
		}
		reuse := float64(len(m.Indices)) / float64(len(m.Vertices))
		size := m.Bounds.Size()
		fmt.Printf("  %-24s %8d %8d %8d %7.2fx  %.3g x %.3g x %.3g\n",
			g.Name, m.FaceCount, len(m.Indices), len(m.Vertices), reuse, size[0], size[1], size[2])
	}
}

func cmdDump(cfg *config.Config, args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(os.Stderr, "Usage: objpack dump <file.obj> [group]")
		os.Exit(1)
	}

	obj, err := convert.Load(cfg, args[0])
	if err != nil {
		fail("loading failed", err)
	}

	if len(args) == 1 {
		fmt.Print(sdump(obj))
		return
	}

	g := obj.Group(args[1])
	if g == nil {
		fmt.Fprintf(os.Stderr, "Group not found: %s\n", args[1])
		os.Exit(1)
	}
	m, err := mesh.Pack(obj, g)
	if err != nil {
		fail("packing failed", err)
	}
	if m == nil {
		fmt.Printf("group %q has no faces\n", g.Name)
		return
	}
	fmt.Print(sdump(m))
}
