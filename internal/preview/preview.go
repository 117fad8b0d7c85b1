// Package preview renders heightfield grids as heatmap images.
package preview

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Faultbox/midgard-heightfield/pkg/heightfield"
)

// ErrGridTooSmall is returned for grids a heatmap cannot span.
var ErrGridTooSmall = errors.New("grid too small to render")

// Options controls rendering.
type Options struct {
	Title string

	// WorldWidth maps the axes to world coordinates [-W/2, W/2]. Zero plots grid indices.
	WorldWidth float64

	// Size is the edge length of the square output. Zero means 6 inches.
	Size vg.Length

	// Colors is the palette size. Zero means 64.
	Colors int

	// Markers are drawn on top of the heatmap, in the same coordinates as the axes.
	Markers plotter.XYs
}

// Plot builds a heatmap plot of grid. Grid rows run along the X axis, columns along Y.
func Plot(grid *heightfield.Grid, opts Options) (*plot.Plot, error) {
	if grid == nil || grid.Resolution() < 2 {
		return nil, ErrGridTooSmall
	}

	colors := opts.Colors
	if colors <= 0 {
		colors = 64
	}
	cmap := moreland.ExtendedBlackBody()
	cmap.SetMin(0)
	cmap.SetMax(1)

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "z"

	hm := plotter.NewHeatMap(GridXYZ{Grid: grid, WorldWidth: opts.WorldWidth}, cmap.Palette(colors))
	// Pin the colour range to the normalised height domain so maps are comparable
	hm.Min, hm.Max = 0, 1
	p.Add(hm)

	if len(opts.Markers) > 0 {
		sc, err := plotter.NewScatter(opts.Markers)
		if err != nil {
			return nil, fmt.Errorf("creating marker layer: %w", err)
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Color = color.RGBA{R: 40, G: 160, B: 60, A: 255}
		sc.GlyphStyle.Radius = vg.Points(2)
		p.Add(sc)
	}

	return p, nil
}

// Render writes a heatmap of grid to path. The format follows the file extension (png, svg, pdf, ...).
func Render(grid *heightfield.Grid, path string, opts Options) error {
	p, err := Plot(grid, opts)
	if err != nil {
		return err
	}

	size := opts.Size
	if size <= 0 {
		size = 6 * vg.Inch
	}
	if err := p.Save(size, size, path); err != nil {
		return fmt.Errorf("saving preview %s: %w", path, err)
	}
	return nil
}

// GridXYZ adapts a grid to plotter.GridXYZ.
type GridXYZ struct {
	Grid       *heightfield.Grid
	WorldWidth float64
}

// Dims implements plotter.GridXYZ.
func (g GridXYZ) Dims() (c, r int) {
	n := g.Grid.Resolution()
	return n, n
}

// Z implements plotter.GridXYZ.
func (g GridXYZ) Z(c, r int) float64 {
	return g.Grid.At(c, r)
}

// X implements plotter.GridXYZ.
func (g GridXYZ) X(c int) float64 {
	return g.coord(c)
}

// Y implements plotter.GridXYZ.
func (g GridXYZ) Y(r int) float64 {
	return g.coord(r)
}

func (g GridXYZ) coord(k int) float64 {
	if g.WorldWidth <= 0 {
		return float64(k)
	}
	n := g.Grid.Resolution()
	return -g.WorldWidth/2 + float64(k)*g.WorldWidth/float64(n-1)
}
