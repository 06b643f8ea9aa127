package raster

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Category is a range of sample values with one meaning. Quantitative
// categories convert raw samples to physical values with a linear transfer
// function; qualitative categories (cloud, water, fill, ...) have no
// physical value.
type Category struct {
	Name         string
	Min, Max     float64
	Quantitative bool
	Scale        float64
	Offset       float64
}

// Contains reports whether v falls in the category range.
func (c Category) Contains(v float64) bool {
	return v >= c.Min && v <= c.Max
}

// Transfer applies the transfer function to v. Qualitative categories
// yield NaN.
func (c Category) Transfer(v float64) float64 {
	if !c.Quantitative {
		return math.NaN()
	}
	return v*c.Scale + c.Offset
}

// SampleDimension describes the meaning of one band.
type SampleDimension struct {
	Name       string
	Categories []Category

	// NoData lists sample values that mark missing data.
	NoData []float64

	// Background is the value of pixels outside any source, if declared.
	Background *float64

	Unit string

	// Converted is true when samples are physical values rather than raw
	// packed values.
	Converted bool
}

// Float returns a pointer to v, for SampleDimension.Background literals.
func Float(v float64) *float64 {
	return &v
}

// HasFillValue reports whether the dimension declares a no-data or
// background value.
func (d SampleDimension) HasFillValue() bool {
	return len(d.NoData) > 0 || d.Background != nil
}

// FillValue returns the background value, or else the first no-data value.
func (d SampleDimension) FillValue() (float64, bool) {
	if d.Background != nil {
		return *d.Background, true
	}
	if len(d.NoData) > 0 {
		return d.NoData[0], true
	}
	return 0, false
}

// IsNoData reports whether v is one of the declared no-data or background
// values. NaN matches NaN.
func (d SampleDimension) IsNoData(v float64) bool {
	match := func(x float64) bool {
		return x == v || (math.IsNaN(x) && math.IsNaN(v))
	}
	if d.Background != nil && match(*d.Background) {
		return true
	}
	return slices.ContainsFunc(d.NoData, match)
}

// Transfer converts a raw sample to its physical value. Samples in a
// qualitative category, or outside every category, yield NaN. Converted
// dimensions and dimensions without categories return v unchanged.
func (d SampleDimension) Transfer(v float64) float64 {
	if d.Converted || len(d.Categories) == 0 {
		return v
	}
	for _, c := range d.Categories {
		if c.Contains(v) {
			return c.Transfer(v)
		}
	}
	return math.NaN()
}

// Clone returns a deep copy.
func (d SampleDimension) Clone() SampleDimension {
	d.Categories = slices.Clone(d.Categories)
	d.NoData = slices.Clone(d.NoData)
	if d.Background != nil {
		d.Background = Float(*d.Background)
	}
	return d
}

// ForConvertedValues returns the dimension expressed in physical values.
// Quantitative categories are mapped through their transfer function and
// get an identity transfer; qualitative categories are dropped since their
// samples become NaN. No-data and background values are converted the same
// way. A converted dimension is returned unchanged.
func (d SampleDimension) ForConvertedValues() SampleDimension {
	if d.Converted {
		return d.Clone()
	}
	out := SampleDimension{Name: d.Name, Unit: d.Unit, Converted: true}
	for _, c := range d.Categories {
		if !c.Quantitative {
			continue
		}
		lo, hi := c.Transfer(c.Min), c.Transfer(c.Max)
		if lo > hi {
			lo, hi = hi, lo
		}
		out.Categories = append(out.Categories, Category{
			Name: c.Name, Min: lo, Max: hi, Quantitative: true, Scale: 1,
		})
	}
	for _, v := range d.NoData {
		cv := d.Transfer(v)
		if !slices.ContainsFunc(out.NoData, func(x float64) bool {
			return x == cv || (math.IsNaN(x) && math.IsNaN(cv))
		}) {
			out.NoData = append(out.NoData, cv)
		}
	}
	if d.Background != nil {
		out.Background = Float(d.Transfer(*d.Background))
	}
	return out
}

func (d SampleDimension) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%q", d.Name)
	if d.Converted {
		sb.WriteString(" converted")
	}
	if d.Unit != "" {
		fmt.Fprintf(&sb, " [%s]", d.Unit)
	}
	if v, ok := d.FillValue(); ok {
		fmt.Fprintf(&sb, " fill=%g", v)
	}
	return sb.String()
}
