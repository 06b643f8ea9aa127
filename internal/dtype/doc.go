// Package dtype provides raster sample types and their little-endian byte
// encoding.
//
// Raster blocks keep their samples in a flat []byte so that one code path
// can copy, translate and merge blocks of any sample type. This package is
// the single place that knows how to turn those bytes into numbers and back.
//
// # Type Mapping
//
//	Type    | Size | Go type
//	--------|------|--------
//	Uint8   | 1    | uint8
//	Int8    | 1    | int8
//	Uint16  | 2    | uint16
//	Int16   | 2    | int16
//	Uint32  | 4    | uint32
//	Int32   | 4    | int32
//	Float32 | 4    | float32
//	Float64 | 8    | float64
//
// # Conversion
//
// [Get] widens any sample to float64, which represents every supported
// type exactly. [Put] narrows a float64 back: integer types round to the
// nearest value and saturate at their range, NaN becomes zero. [Convert]
// rewrites a run of samples from one type to another; when both types are
// equal it reduces to a memory copy.
package dtype
