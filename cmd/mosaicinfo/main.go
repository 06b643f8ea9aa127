// Command mosaicinfo organizes image tiles into mosaics and describes the
// result.
//
// Each argument is a PNG or TIFF file followed by the pixel position of its
// upper-left corner on the shared grid:
//
//	mosaicinfo -res 10 a.tif@0,0 b.tif@256,0 c.tif@0,256
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-mosaic/grid"
	"github.com/robert-malhotra/go-mosaic/mosaic"
	"github.com/robert-malhotra/go-mosaic/raster"
	"github.com/robert-malhotra/go-mosaic/source"
)

func main() {
	res := flag.Float64("res", 1, "pixel size in CRS units")
	crs := flag.String("crs", "local", "CRS identifier shared by every tile")
	read := flag.Bool("read", false, "read every output in full and report fill statistics")
	wrap := flag.Bool("wrap", false, "wrap single tiles in a mosaic")
	verbose := flag.Bool("v", false, "log organizer decisions")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] file@x,y ...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	mosaic.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var inputs []raster.Resource
	for _, arg := range flag.Args() {
		r, err := openTile(arg, *res, *crs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
		inputs = append(inputs, r)
	}

	var opts []mosaic.Option
	if *wrap {
		opts = append(opts, mosaic.WithoutPassThrough())
	}
	outputs, err := mosaic.Organize(inputs, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: organizing tiles: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== %d inputs, %d outputs ===\n\n", len(inputs), len(outputs))
	ctx := context.Background()
	for i, r := range outputs {
		describe(i, r)
		if *read {
			if err := fillStats(ctx, r); err != nil {
				fmt.Printf("  read: ERROR %v\n", err)
			}
		}
		fmt.Println()
	}
}

// openTile parses "path@x,y" and opens the image placed at pixel (x, y) of
// a north-up grid.
func openTile(arg string, res float64, crs string) (*source.Image, error) {
	path, pos, ok := strings.Cut(arg, "@")
	if !ok {
		return nil, fmt.Errorf("%q: missing @x,y", arg)
	}
	xs, ys, ok := strings.Cut(pos, ",")
	if !ok {
		return nil, fmt.Errorf("%q: position must be x,y", arg)
	}
	x, err := strconv.ParseInt(xs, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", arg, err)
	}
	y, err := strconv.ParseInt(ys, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", arg, err)
	}
	gridToCRS, err := grid.NewAffineRows(
		[]float64{res, 0, float64(x) * res},
		[]float64{0, -res, -float64(y) * res},
	)
	if err != nil {
		return nil, err
	}
	return source.OpenImage(path, gridToCRS, grid.CellCorner, crs)
}

func describe(i int, r raster.Resource) {
	g := r.Geometry()
	switch v := r.(type) {
	case *mosaic.Mosaic:
		fmt.Printf("[%d] mosaic %s\n", i, v.ID())
		fmt.Printf("  Tiles: %d of %v\n", v.TileCount(), v.TileSize())
		for _, t := range v.Tiles() {
			fmt.Printf("    %v at %v\n", t.Coord, t.Origin)
		}
	default:
		fmt.Printf("[%d] %T\n", i, r)
	}
	fmt.Printf("  Extent: %v\n", g.Extent)
	fmt.Printf("  Layout: %v\n", r.Layout())
	for _, d := range r.SampleDimensions() {
		fmt.Printf("  Band: %v\n", d)
	}
	env, err := g.Envelope()
	if err != nil {
		fmt.Printf("  Envelope: ERROR %v\n", err)
		return
	}
	fmt.Printf("  Envelope: %v\n", env)
	if env.Dimension() == 2 {
		b := env.Bound()
		fmt.Printf("  Bound: min=%v max=%v\n", b.Min, b.Max)
	}
}

// fillStats reads r in full and counts, per band, the samples flagged as
// no-data.
func fillStats(ctx context.Context, r raster.Resource) error {
	extent := r.Geometry().Extent
	if extent.Dimension() != 2 {
		return fmt.Errorf("%d-axis resource", extent.Dimension())
	}
	b, err := r.Read(ctx, extent)
	if err != nil {
		return err
	}
	dims := r.SampleDimensions()
	counts := make([]int64, len(dims))
	total, err := extent.CellCount()
	if err != nil {
		return err
	}
	coord := make([]int64, 2)
	for y := extent.Low(1); y <= extent.High(1); y++ {
		for x := extent.Low(0); x <= extent.High(0); x++ {
			coord[0], coord[1] = x, y
			for band, d := range dims {
				if d.IsNoData(b.At(coord, band)) {
					counts[band]++
				}
			}
		}
	}
	for band, d := range dims {
		fmt.Printf("  Fill %q: %d/%d (%.1f%%)\n", d.Name, counts[band], total, 100*float64(counts[band])/float64(total))
	}
	return nil
}
