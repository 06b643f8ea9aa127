package mosaic

import (
	"fmt"
	"slices"

	"github.com/robert-malhotra/go-mosaic/internal/tileorg"
	"github.com/robert-malhotra/go-mosaic/raster"
)

// Organize groups resources into mosaics. Resources sharing an affine grid
// family, a tile size and a lattice are assembled into one Mosaic per
// connected cluster. A cluster of one resource is returned as the resource
// itself unless WithoutPassThrough is given. Resources whose grid-to-CRS
// transform is not affine are returned unchanged.
//
// The result follows the input order: each cluster takes the position of
// its first member.
func Organize(resources []raster.Resource, opts ...Option) ([]raster.Resource, error) {
	o := newOptions(opts)
	log := o.log()

	res, err := tileorg.Organize(geometries(resources))
	if err != nil {
		return nil, err
	}

	type entry struct {
		pos int
		r   raster.Resource
	}
	entries := make([]entry, 0, len(res.Groups)+len(res.Rejected))

	for _, rej := range res.Rejected {
		log.Debug("resource kept as is", "index", rej.Index, "reason", rej.Err)
		entries = append(entries, entry{pos: rej.Index, r: resources[rej.Index]})
	}
	for _, g := range res.Groups {
		first := g.Tiles[0].Index
		if len(g.Tiles) == 1 && o.passThrough {
			log.Debug("single tile passed through", "index", first)
			entries = append(entries, entry{pos: first, r: resources[first]})
			continue
		}
		m, err := newMosaic(g, resources, o)
		if err != nil {
			return nil, fmt.Errorf("cluster of resource %d: %w", first, err)
		}
		log.Debug("mosaic assembled", "id", m.ID(), "tiles", m.TileCount(), "tile_size", m.tileSize, "extent", m.geometry.Extent)
		entries = append(entries, entry{pos: first, r: m})
	}

	slices.SortFunc(entries, func(a, b entry) int { return a.pos - b.pos })
	out := make([]raster.Resource, len(entries))
	for i, e := range entries {
		out[i] = e.r
	}
	return out, nil
}
