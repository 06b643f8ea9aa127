package mosaic

import (
	"errors"

	"github.com/robert-malhotra/go-mosaic/internal/tileorg"
)

// Configuration errors, reported at construction time.
var (
	ErrNoResources          = errors.New("no resources")
	ErrMismatchedDimensions = errors.New("sample dimensions differ between resources")
	ErrMismatchedLayout     = errors.New("pixel layouts differ between resources")
	ErrBandCount            = errors.New("band count does not match sample dimensions")
	ErrMultipleClusters     = errors.New("tiles do not form a single cluster")
)

// ErrDuplicateTile is returned when two resources occupy the same tile of
// one lattice.
var ErrDuplicateTile = tileorg.ErrDuplicateTile
