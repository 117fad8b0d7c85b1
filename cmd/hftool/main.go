// hftool is a CLI utility for building and inspecting heightfield grids.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/midgard-heightfield/internal/logger"
	"github.com/Faultbox/midgard-heightfield/pkg/formats"
	"github.com/Faultbox/midgard-heightfield/pkg/heightfield"
	"github.com/Faultbox/midgard-heightfield/pkg/raster"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	level := "warn"
	if os.Getenv("HFTOOL_DEBUG") != "" {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

func run(command string, args []string, w io.Writer) error {
	switch command {
	case "build":
		return cmdBuild(args, w)
	case "info":
		return cmdInfo(args, w)
	case "query", "q":
		return cmdQuery(args, w)
	case "render":
		return cmdRender(args, w)
	case "generate", "gen":
		return cmdGenerate(args, w)
	case "export":
		return cmdExport(args, w)
	case "scatter":
		return cmdScatter(args, w)
	case "path":
		return cmdPath(args, w)
	case "cache":
		return cmdCache(args, w)
	case "help", "-h", "--help":
		printUsage(w)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `hftool - heightfield grid utility

Usage:
  hftool <command> [options]

Commands:
  build <heightmap> [output.hfg]      Build a grid from an image (png, jpg, bmp, tga)
  info <grid>                         Show grid header and height statistics
  query <grid> <x> <z>                Sample the terrain height at a world position
  render <grid> <output.png>          Render a heatmap preview
  generate <output.png|output.hfg>    Generate a perlin noise heightmap
  export <grid> [output.json]         Export a grid as JSON
  scatter <grid>                      Place trees on low ground
  path <grid> <x0> <z0> <x1> <z1>     Find a walkable route between two points
  cache list|rm <key>                 Manage the grid cache database

<grid> is an .hfg file or any heightmap image accepted by build.

Examples:
  hftool build -n 256 island.png island.hfg
  hftool query -w 100 -s 20 island.hfg 12.5 -3
  hftool render -scatter island.hfg island_preview.png
  hftool generate -seed 7 -size 512 noise.png`)
}

// usageError prints a command's usage line and returns errUsage.
func usageError(usage string) error {
	fmt.Fprintln(os.Stderr, "Usage: hftool "+usage)
	return errUsage
}

// loadGrid reads an .hfg file directly, or decodes an image and builds a grid from it.
func loadGrid(path string, resolution, workers int) (*heightfield.Grid, error) {
	if strings.EqualFold(filepath.Ext(path), ".hfg") {
		return formats.ParseHFGFile(path)
	}

	img, err := raster.LoadFile(path, resolution)
	if err != nil {
		return nil, err
	}
	return heightfield.Build(img, resolution, heightfield.WithWorkers(workers))
}

func parseCoord(s, name string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s coordinate %q", name, s)
	}
	return v, nil
}
