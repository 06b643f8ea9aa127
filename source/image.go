package source

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"

	_ "golang.org/x/image/tiff"

	"github.com/robert-malhotra/go-mosaic/grid"
	"github.com/robert-malhotra/go-mosaic/raster"
)

// Image is a two-dimensional raster resource backed by a decoded image.
// Grid coordinates are image pixel coordinates: axis 0 is the column and
// axis 1 the row. Grayscale images have one band, every other color model
// is served as four 8-bit RGBA bands.
type Image struct {
	geometry grid.Geometry
	dims     []raster.SampleDimension
	layout   raster.Layout
	img      image.Image
}

var _ raster.Resource = (*Image)(nil)

var (
	grayDims = []raster.SampleDimension{{Name: "gray"}}
	rgbaDims = []raster.SampleDimension{{Name: "red"}, {Name: "green"}, {Name: "blue"}, {Name: "alpha"}}
)

// NewImage wraps img, placing it in a reference space with gridToCRS.
func NewImage(img image.Image, gridToCRS grid.Transform, anchor grid.PixelInCell, crs string) (*Image, error) {
	r := img.Bounds()
	if r.Empty() {
		return nil, fmt.Errorf("%w: empty image", grid.ErrInvalidExtent)
	}
	extent, err := grid.NewExtent(
		[]int64{int64(r.Min.X), int64(r.Min.Y)},
		[]int64{int64(r.Max.X - 1), int64(r.Max.Y - 1)},
	)
	if err != nil {
		return nil, err
	}
	geometry, err := grid.NewGeometry(extent, gridToCRS, anchor, crs)
	if err != nil {
		return nil, err
	}
	im := &Image{geometry: geometry, img: img}
	switch img.(type) {
	case *image.Gray:
		im.layout, im.dims = raster.Layout{Type: raster.Uint8, Bands: 1}, grayDims
	case *image.Gray16:
		im.layout, im.dims = raster.Layout{Type: raster.Uint16, Bands: 1}, grayDims
	default:
		im.layout, im.dims = raster.Layout{Type: raster.Uint8, Bands: 4}, rgbaDims
	}
	return im, nil
}

// OpenImage decodes a PNG or TIFF file and wraps it with NewImage.
func OpenImage(path string, gridToCRS grid.Transform, anchor grid.PixelInCell, crs string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return NewImage(img, gridToCRS, anchor, crs)
}

func (im *Image) Geometry() grid.Geometry                    { return im.geometry }
func (im *Image) SampleDimensions() []raster.SampleDimension { return im.dims }
func (im *Image) Layout() raster.Layout                      { return im.layout }

func (im *Image) Read(ctx context.Context, extent grid.Extent) (*raster.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clipped, ok := extent.Intersect(im.geometry.Extent)
	if !ok {
		return nil, fmt.Errorf("%v outside %v: %w", extent, im.geometry.Extent, raster.ErrNotFound)
	}
	out, err := raster.NewBlock(clipped, im.layout)
	if err != nil {
		return nil, err
	}
	data := out.Data()
	i := 0
	for y := clipped.Low(1); y <= clipped.High(1); y++ {
		for x := clipped.Low(0); x <= clipped.High(0); x++ {
			c := im.img.At(int(x), int(y))
			switch im.layout.Type {
			case raster.Uint16:
				g := color.Gray16Model.Convert(c).(color.Gray16)
				data[i], data[i+1] = byte(g.Y), byte(g.Y>>8)
				i += 2
			default:
				if im.layout.Bands == 1 {
					data[i] = color.GrayModel.Convert(c).(color.Gray).Y
					i++
					continue
				}
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				data[i], data[i+1], data[i+2], data[i+3] = n.R, n.G, n.B, n.A
				i += 4
			}
		}
	}
	return out, nil
}
