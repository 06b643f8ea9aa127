package mosaic

import (
	"math"

	"github.com/robert-malhotra/go-mosaic/raster"
)

// Harmonized is the band description shared by every tile of a mosaic.
type Harmonized struct {
	Dimensions []raster.SampleDimension

	// Fill holds, per band, the value of pixels no tile covers.
	Fill []float64

	// Converted is true when tiles must be read through their transfer
	// functions before being served.
	Converted bool
}

// Harmonize prepares the sample dimensions of a reference tile for use as
// mosaic bands. Every band needs a fill value: a dimension without no-data
// or background values is moved to the converted domain with a NaN
// background, and then every other dimension is converted too.
func Harmonize(dims []raster.SampleDimension) Harmonized {
	h := Harmonized{Dimensions: make([]raster.SampleDimension, len(dims))}
	for i, d := range dims {
		if d.HasFillValue() {
			h.Dimensions[i] = d.Clone()
			continue
		}
		forced := d.ForConvertedValues()
		forced.Unit = ""
		forced.Background = raster.Float(math.NaN())
		h.Dimensions[i] = forced
		h.Converted = true
	}
	if h.Converted {
		for i, d := range h.Dimensions {
			h.Dimensions[i] = d.ForConvertedValues()
		}
	}
	h.Fill = make([]float64, len(h.Dimensions))
	for i, d := range h.Dimensions {
		h.Fill[i], _ = d.FillValue()
	}
	return h
}

func allZero(values []float64) bool {
	for _, v := range values {
		if v != 0 || math.Signbit(v) {
			return false
		}
	}
	return true
}
