package dtype

import "fmt"

// Type identifies the storage type of one raster sample.
type Type uint8

const (
	Uint8 Type = iota
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Float32
	Float64

	typeCount
)

// info describes one sample type.
type info struct {
	name    string
	size    int
	float   bool
	signed  bool
	minimum float64
	maximum float64
}

var infoTable = [typeCount]info{
	Uint8:   {"uint8", 1, false, false, 0, 255},
	Int8:    {"int8", 1, false, true, -128, 127},
	Uint16:  {"uint16", 2, false, false, 0, 65535},
	Int16:   {"int16", 2, false, true, -32768, 32767},
	Uint32:  {"uint32", 4, false, false, 0, 4294967295},
	Int32:   {"int32", 4, false, true, -2147483648, 2147483647},
	Float32: {"float32", 4, true, true, 0, 0},
	Float64: {"float64", 8, true, true, 0, 0},
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	return t < typeCount
}

// Size returns the number of bytes of one sample.
func (t Type) Size() int {
	if !t.Valid() {
		return 0
	}
	return infoTable[t].size
}

// IsFloat reports whether t is a floating-point type.
func (t Type) IsFloat() bool {
	return t.Valid() && infoTable[t].float
}

// IsSigned reports whether t can hold negative values.
func (t Type) IsSigned() bool {
	return t.Valid() && infoTable[t].signed
}

// Range returns the smallest and largest representable value of an integer
// type. It returns (0, 0) for floating-point types.
func (t Type) Range() (lo, hi float64) {
	if !t.Valid() {
		return 0, 0
	}
	return infoTable[t].minimum, infoTable[t].maximum
}

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return infoTable[t].name
}
