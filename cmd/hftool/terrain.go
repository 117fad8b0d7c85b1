package main

import (
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gonum.org/v1/plot/plotter"

	"github.com/Faultbox/midgard-heightfield/internal/noise"
	"github.com/Faultbox/midgard-heightfield/internal/preview"
	"github.com/Faultbox/midgard-heightfield/internal/world"
	"github.com/Faultbox/midgard-heightfield/pkg/formats"
	"github.com/Faultbox/midgard-heightfield/pkg/heightfield"
	"github.com/Faultbox/midgard-heightfield/pkg/math"
)

func cmdRender(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	width := fs.Float64("w", 100, "World width for axis labels")
	title := fs.String("title", "", "Plot title (default: input name)")
	withTrees := fs.Bool("scatter", false, "Overlay tree placements")
	seed := fs.Uint64("seed", 1, "Scatter seed")
	scale := fs.Float64("s", 20, "Height scale used for scatter")
	resolution := fs.Int("n", 128, "Grid resolution when the input is an image")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if fs.NArg() < 2 {
		return usageError("render [-w width] [-scatter] <grid> <output.png>")
	}

	grid, err := loadGrid(fs.Arg(0), *resolution, 0)
	if err != nil {
		return err
	}

	opts := preview.Options{Title: *title, WorldWidth: *width}
	if opts.Title == "" {
		opts.Title = filepath.Base(fs.Arg(0))
	}
	if *withTrees {
		placements, err := scatterGrid(grid, *width, *scale, *seed)
		if err != nil {
			return err
		}
		opts.Markers = make(plotter.XYs, len(placements))
		for i, p := range placements {
			opts.Markers[i] = plotter.XY{X: float64(p.Position.X), Y: float64(p.Position.Z)}
		}
	}

	if err := preview.Render(grid, fs.Arg(1), opts); err != nil {
		return err
	}
	fmt.Fprintf(w, "Rendered: %s\n", fs.Arg(1))
	return nil
}

func cmdGenerate(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	seed := fs.Int64("seed", 1, "Noise seed")
	size := fs.Int("size", 256, "Image edge length in pixels")
	freq := fs.Float64("freq", noise.DefaultFrequency, "Noise periods across the map")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if fs.NArg() < 1 {
		return usageError("generate [-seed N] [-size N] <output.png|output.hfg>")
	}
	output := fs.Arg(0)

	img, err := noise.New(*seed, *freq).Image(*size)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(output)) {
	case ".hfg":
		grid, err := heightfield.Build(img, *size)
		if err != nil {
			return err
		}
		if err := formats.WriteHFGFile(output, grid); err != nil {
			return err
		}
	case ".png":
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		if err := png.Encode(f, img.ToGray()); err != nil {
			f.Close()
			return fmt.Errorf("encoding %s: %w", output, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported output type: %s (want .png or .hfg)", output)
	}

	fmt.Fprintf(w, "Generated: %s (%dx%d, seed %d)\n", output, *size, *size, *seed)
	return nil
}

// placementJSON is the exported form of a tree placement.
type placementJSON struct {
	X     float32 `json:"x"`
	Y     float32 `json:"y"`
	Z     float32 `json:"z"`
	Yaw   float32 `json:"yaw"`
	Scale float32 `json:"scale"`
}

func cmdScatter(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("scatter", flag.ContinueOnError)
	width := fs.Float64("w", 100, "World width")
	scale := fs.Float64("s", 20, "Height scale")
	seed := fs.Uint64("seed", 1, "Placement seed")
	asJSON := fs.Bool("json", false, "Print placements as JSON")
	resolution := fs.Int("n", 128, "Grid resolution when the input is an image")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if fs.NArg() < 1 {
		return usageError("scatter [-w width] [-s scale] [-seed N] [-json] <grid>")
	}

	grid, err := loadGrid(fs.Arg(0), *resolution, 0)
	if err != nil {
		return err
	}
	placements, err := scatterGrid(grid, *width, *scale, *seed)
	if err != nil {
		return err
	}

	if *asJSON {
		out := make([]placementJSON, len(placements))
		for i, p := range placements {
			out[i] = placementJSON{X: p.Position.X, Y: p.Position.Y, Z: p.Position.Z, Yaw: p.Yaw, Scale: p.Scale}
		}
		data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	for _, p := range placements {
		fmt.Fprintf(w, "%8.3f %8.3f %8.3f  yaw=%.3f scale=%.3f\n", p.Position.X, p.Position.Y, p.Position.Z, p.Yaw, p.Scale)
	}
	fmt.Fprintf(os.Stderr, "\n(%d placements)\n", len(placements))
	return nil
}

// scatterGrid places trees with the default layout, spanning the whole terrain.
func scatterGrid(grid *heightfield.Grid, width, scale float64, seed uint64) ([]world.Placement, error) {
	q, err := heightfield.NewQuery(grid, width, scale)
	if err != nil {
		return nil, err
	}
	cfg := world.DefaultScatterConfig()
	cfg.Extent = float32(width / 2)
	cfg.Seed = seed
	return world.Scatter(world.NewGround(q), cfg), nil
}

func cmdPath(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("path", flag.ContinueOnError)
	width := fs.Float64("w", 100, "World width")
	scale := fs.Float64("s", 20, "Height scale")
	maxSlope := fs.Float64("max-slope", 1, "Steepest allowed rise over run (0 = any)")
	resolution := fs.Int("n", 128, "Grid resolution when the input is an image")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if fs.NArg() < 5 {
		return usageError("path [-max-slope S] <grid> <x0> <z0> <x1> <z1>")
	}

	var coords [4]float64
	for i, name := range []string{"x0", "z0", "x1", "z1"} {
		v, err := parseCoord(fs.Arg(i+1), name)
		if err != nil {
			return err
		}
		coords[i] = v
	}

	grid, err := loadGrid(fs.Arg(0), *resolution, 0)
	if err != nil {
		return err
	}
	q, err := heightfield.NewQuery(grid, *width, *scale)
	if err != nil {
		return err
	}

	pf := world.NewPathFinder(q, float32(*maxSlope))
	path := pf.FindPath(
		math.Vec2{X: float32(coords[0]), Z: float32(coords[1])},
		math.Vec2{X: float32(coords[2]), Z: float32(coords[3])},
	)
	if path == nil {
		return fmt.Errorf("no route with slope <= %g", *maxSlope)
	}

	var length float32
	for i, p := range path {
		if i > 0 {
			length += p.Distance(path[i-1])
		}
		fmt.Fprintf(w, "%8.3f %8.3f %8.3f\n", p.X, p.Y, p.Z)
	}
	fmt.Fprintf(os.Stderr, "\n(%d waypoints, length %.2f)\n", len(path), length)
	return nil
}
