package dtype

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSize(t *testing.T) {
	tests := []struct {
		typ  Type
		size int
	}{
		{Uint8, 1}, {Int8, 1}, {Uint16, 2}, {Int16, 2},
		{Uint32, 4}, {Int32, 4}, {Float32, 4}, {Float64, 8},
		{Type(200), 0},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.size, tt.typ.Size())
		})
	}
}

func TestGetPut(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		in   float64
		want float64
	}{
		{"uint8", Uint8, 200, 200},
		{"uint8 saturates", Uint8, 300, 255},
		{"uint8 negative", Uint8, -4, 0},
		{"int8", Int8, -100, -100},
		{"uint16 rounds", Uint16, 41.6, 42},
		{"int16", Int16, -30000, -30000},
		{"uint32", Uint32, 4000000000, 4000000000},
		{"int32", Int32, -2000000000, -2000000000},
		{"int32 NaN", Int32, math.NaN(), 0},
		{"float32", Float32, 0.5, 0.5},
		{"float64", Float64, 1e300, 1e300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Encode(tt.typ, tt.in)
			assert.Len(t, b, tt.typ.Size())
			assert.Equal(t, tt.want, Get(tt.typ, b))
		})
	}
}

func TestFloatNaN(t *testing.T) {
	assert.True(t, math.IsNaN(Get(Float32, Encode(Float32, math.NaN()))))
	assert.True(t, math.IsNaN(Get(Float64, Encode(Float64, math.NaN()))))
}

func TestConvert(t *testing.T) {
	src := []byte{1, 2, 250}
	dst := make([]byte, 3*Float32.Size())
	Convert(dst, Float32, src, Uint8, 3)
	for i, want := range []float64{1, 2, 250} {
		assert.Equal(t, want, Get(Float32, dst[i*4:]))
	}

	back := make([]byte, 3)
	Convert(back, Uint8, dst, Float32, 3)
	assert.Equal(t, src, back)

	same := make([]byte, 3)
	Convert(same, Uint8, src, Uint8, 3)
	assert.Equal(t, src, same)
}
