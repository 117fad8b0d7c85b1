package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/midgard-heightfield/internal/assets"
	"github.com/Faultbox/midgard-heightfield/internal/config"
	"github.com/Faultbox/midgard-heightfield/internal/store"
	"github.com/Faultbox/midgard-heightfield/pkg/formats"
	"github.com/Faultbox/midgard-heightfield/pkg/heightfield"
)

func cmdBuild(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	resolution := fs.Int("n", 128, "Grid resolution")
	workers := fs.Int("workers", 0, "Smoothing workers (0 = auto)")
	exact := fs.Bool("exact", false, "Store float64 samples instead of float32")
	dbPath := fs.String("db", "", "Cache database (default: in config dir)")
	noCache := fs.Bool("no-cache", false, "Do not read or write the cache database")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if fs.NArg() < 1 {
		return usageError("build [-n N] <heightmap> [output.hfg]")
	}

	input, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		return err
	}
	output := strings.TrimSuffix(fs.Arg(0), filepath.Ext(fs.Arg(0))) + ".hfg"
	if fs.NArg() > 1 {
		output = fs.Arg(1)
	}

	m := assets.NewManager(1)
	defer m.Close()
	m.SetWorkers(*workers)

	if !*noCache {
		s, err := openStore(*dbPath)
		if err != nil {
			return err
		}
		defer s.Close()
		m.SetStore(s)
	}

	grid, err := m.Grid(context.Background(), input, *resolution)
	if err != nil {
		return err
	}

	format := formats.HFGFloat32
	if *exact {
		format = formats.HFGFloat64
	}
	data := formats.EncodeHFGFormat(grid, format)
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	fmt.Fprintf(w, "Built: %s (%dx%d, %s, %d bytes)\n", output, grid.Resolution(), grid.Resolution(), format, len(data))
	return nil
}

// openStore opens the cache database, defaulting to the configured location.
func openStore(path string) (*store.Store, error) {
	if path == "" {
		path = config.Default().CachePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return store.Open(path)
}

func cmdInfo(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	resolution := fs.Int("n", 128, "Grid resolution when the input is an image")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if fs.NArg() < 1 {
		return usageError("info <grid>")
	}
	path := fs.Arg(0)

	grid, err := loadGrid(path, *resolution, 0)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Grid:       %s\n", path)
	if strings.EqualFold(filepath.Ext(path), ".hfg") {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		header, err := formats.ParseHFGHeader(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Version:    %s\n", header.Version)
		fmt.Fprintf(w, "Samples:    %s\n", header.Format)
	}
	fmt.Fprintf(w, "Resolution: %dx%d\n", grid.Resolution(), grid.Resolution())

	st := grid.Stats()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Heights (normalised):")
	fmt.Fprintf(w, "  min     %.6f\n", st.Min)
	fmt.Fprintf(w, "  max     %.6f\n", st.Max)
	fmt.Fprintf(w, "  mean    %.6f\n", st.Mean)
	fmt.Fprintf(w, "  stddev  %.6f\n", st.StdDev)
	for _, p := range []float64{0.1, 0.5, 0.9} {
		fmt.Fprintf(w, "  p%-2.0f     %.6f\n", p*100, grid.Quantile(p))
	}
	return nil
}

func cmdQuery(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	width := fs.Float64("w", 100, "World width")
	scale := fs.Float64("s", 20, "Height scale")
	resolution := fs.Int("n", 128, "Grid resolution when the input is an image")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if fs.NArg() < 3 {
		return usageError("query [-w width] [-s scale] <grid> <x> <z>")
	}

	x, err := parseCoord(fs.Arg(1), "x")
	if err != nil {
		return err
	}
	z, err := parseCoord(fs.Arg(2), "z")
	if err != nil {
		return err
	}

	grid, err := loadGrid(fs.Arg(0), *resolution, 0)
	if err != nil {
		return err
	}
	q, err := heightfield.NewQuery(grid, *width, *scale)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "height(%g, %g) = %.6f\n", x, z, q.HeightAt(x, z))
	if !q.Contains(x, z) {
		fmt.Fprintln(os.Stderr, "(outside terrain, clamped to edge)")
	}
	return nil
}

func cmdExport(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	resolution := fs.Int("n", 128, "Grid resolution when the input is an image")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if fs.NArg() < 1 {
		return usageError("export <grid> [output.json]")
	}

	grid, err := loadGrid(fs.Arg(0), *resolution, 0)
	if err != nil {
		return err
	}
	data, err := formats.MarshalGridJSON(grid)
	if err != nil {
		return err
	}

	if fs.NArg() < 2 {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	output := fs.Arg(1)
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Fprintf(w, "Exported: %s (%d bytes)\n", output, len(data))
	return nil
}
