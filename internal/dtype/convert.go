package dtype

import (
	"encoding/binary"
	"math"
)

var order = binary.LittleEndian

// Get decodes the sample of type t at the start of b.
func Get(t Type, b []byte) float64 {
	switch t {
	case Uint8:
		return float64(b[0])
	case Int8:
		return float64(int8(b[0]))
	case Uint16:
		return float64(order.Uint16(b))
	case Int16:
		return float64(int16(order.Uint16(b)))
	case Uint32:
		return float64(order.Uint32(b))
	case Int32:
		return float64(int32(order.Uint32(b)))
	case Float32:
		return float64(math.Float32frombits(order.Uint32(b)))
	case Float64:
		return math.Float64frombits(order.Uint64(b))
	default:
		return math.NaN()
	}
}

// Put encodes v as a sample of type t at the start of b.
func Put(t Type, b []byte, v float64) {
	switch t {
	case Uint8:
		b[0] = uint8(clamp(t, v))
	case Int8:
		b[0] = uint8(int8(clamp(t, v)))
	case Uint16:
		order.PutUint16(b, uint16(clamp(t, v)))
	case Int16:
		order.PutUint16(b, uint16(int16(clamp(t, v))))
	case Uint32:
		order.PutUint32(b, uint32(clamp(t, v)))
	case Int32:
		order.PutUint32(b, uint32(int32(clamp(t, v))))
	case Float32:
		order.PutUint32(b, math.Float32bits(float32(v)))
	case Float64:
		order.PutUint64(b, math.Float64bits(v))
	}
}

// Encode returns the encoding of v as one sample of type t.
func Encode(t Type, v float64) []byte {
	b := make([]byte, t.Size())
	Put(t, b, v)
	return b
}

// clamp rounds v to the nearest integer within the range of t.
func clamp(t Type, v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	lo, hi := t.Range()
	v = math.Round(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Convert decodes n samples of type from in src and writes them as samples
// of type to in dst. Both slices must hold at least n samples.
func Convert(dst []byte, to Type, src []byte, from Type, n int) {
	if to == from {
		copy(dst[:n*to.Size()], src[:n*from.Size()])
		return
	}
	ds, ss := to.Size(), from.Size()
	for i := 0; i < n; i++ {
		Put(to, dst[i*ds:], Get(from, src[i*ss:]))
	}
}
