package tileorg

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-mosaic/grid"
)

var ErrDuplicateTile = errors.New("two resources occupy the same tile")

// Tile is one member of a Group.
type Tile struct {
	// Index is the position of the member in the Organize input.
	Index int

	// Coord is the tile coordinate on the group lattice.
	Coord []int64

	// Origin is the member's lower corner in group pixel coordinates.
	Origin []int64

	// Source is the member's own grid extent.
	Source grid.Extent
}

// Offset returns the translation from the member's grid to the group grid.
func (t Tile) Offset() []int64 {
	off := make([]int64, len(t.Origin))
	for i := range off {
		off[i] = t.Origin[i] - t.Source.Low(i)
	}
	return off
}

// Group is a set of tiles sharing one lattice.
type Group struct {
	// Tiles are ordered by input index.
	Tiles []Tile

	TileSize    []int64
	Subsampling []int64

	// Phase is the pixel origin of tile coordinate zero.
	Phase []int64

	// Geometry is the group grid. Its extent is the bounding box of all
	// tile footprints.
	Geometry grid.Geometry
}

// TileOrigin returns the pixel origin of a tile coordinate.
func (g *Group) TileOrigin(coord []int64) []int64 {
	o := make([]int64, len(coord))
	for i, c := range coord {
		o[i] = c*g.TileSize[i] + g.Phase[i]
	}
	return o
}

// TileCoord returns the tile coordinate containing a pixel.
func (g *Group) TileCoord(pixel []int64) []int64 {
	c := make([]int64, len(pixel))
	for i, p := range pixel {
		c[i] = floorDiv(p-g.Phase[i], g.TileSize[i])
	}
	return c
}

// Rejection records an input that could not join any family.
type Rejection struct {
	Index int
	Err   error
}

// Result is the outcome of Organize.
type Result struct {
	// Groups are ordered by the input index of their first tile.
	Groups []*Group

	Rejected []Rejection
}

type member struct {
	index  int
	corner *grid.Affine
	extent grid.Extent
	anchor grid.PixelInCell
}

type family struct {
	crs     string
	dim     int
	base    *grid.Affine
	members []member
}

// relation describes a member relative to the family base.
type relation struct {
	scale  []int64
	offset []int64
}

func relate(base, a *grid.Affine) (relation, bool) {
	rel, err := grid.Relative(base, a)
	if err != nil {
		return relation{}, false
	}
	scale, ok := grid.IntegerDiagonal(rel.Linear())
	if !ok {
		return relation{}, false
	}
	offset := make([]int64, len(scale))
	for i, v := range rel.Offset() {
		k, ok := grid.AsInteger(v)
		if !ok {
			return relation{}, false
		}
		offset[i] = k
	}
	return relation{scale: scale, offset: offset}, true
}

// join adds m to f if it belongs to the family, rebasing the family when m
// is finer than the current base.
func (f *family) join(m member) bool {
	if _, ok := relate(f.base, m.corner); ok {
		f.members = append(f.members, m)
		return true
	}
	if _, ok := relate(m.corner, f.base); ok {
		f.base = m.corner
		f.members = append(f.members, m)
		return true
	}
	return false
}

// Organize partitions geometries into groups of tiles. Inputs whose
// transform is not affine are reported in Result.Rejected.
func Organize(geoms []grid.Geometry) (*Result, error) {
	res := &Result{}
	var families []*family

	for i, g := range geoms {
		corner, err := g.CornerAffine()
		if err != nil {
			res.Rejected = append(res.Rejected, Rejection{Index: i, Err: err})
			continue
		}
		m := member{index: i, corner: corner, extent: g.Extent, anchor: g.Anchor}

		joined := false
		for _, f := range families {
			if f.crs == g.CRS && f.dim == g.Dimension() && f.join(m) {
				joined = true
				break
			}
		}
		if !joined {
			families = append(families, &family{crs: g.CRS, dim: g.Dimension(), base: corner, members: []member{m}})
		}
	}

	families = mergeFamilies(families)
	for _, f := range families {
		groups, err := f.groups()
		if err != nil {
			return nil, err
		}
		res.Groups = append(res.Groups, groups...)
	}
	slices.SortFunc(res.Groups, func(a, b *Group) int {
		return a.Tiles[0].Index - b.Tiles[0].Index
	})
	return res, nil
}

// mergeFamilies joins families whose bases relate to each other, which
// happens when a finer member rebased one of them after the other was
// created. Members end up in input order.
func mergeFamilies(families []*family) []*family {
	for merged := true; merged; {
		merged = false
	search:
		for i, a := range families {
			for j := i + 1; j < len(families); j++ {
				b := families[j]
				if a.crs != b.crs || a.dim != b.dim {
					continue
				}
				if _, ok := relate(a.base, b.base); !ok {
					if _, ok := relate(b.base, a.base); !ok {
						continue
					}
					a.base = b.base
				}
				a.members = append(a.members, b.members...)
				families = slices.Delete(families, j, j+1)
				merged = true
				break search
			}
		}
	}
	for _, f := range families {
		slices.SortFunc(f.members, func(a, b member) int { return a.index - b.index })
	}
	return families
}

type lattice struct {
	scale   []int64
	size    []int64
	residue []int64
	phase   []int64
	anchor  grid.PixelInCell
	tiles   []Tile
	byCoord map[string]int
}

// groups splits the family by lattice key, then into connected clusters.
func (f *family) groups() ([]*Group, error) {
	lattices := make(map[string]*lattice)
	var order []string

	for _, m := range f.members {
		rel, ok := relate(f.base, m.corner)
		if !ok {
			return nil, fmt.Errorf("member %d no longer relates to its family base", m.index)
		}
		n := len(rel.scale)
		size := m.extent.Sizes()
		residue := make([]int64, n)
		origin := make([]int64, n)
		phase := make([]int64, n)
		coord := make([]int64, n)
		for i := 0; i < n; i++ {
			residue[i] = floorMod(rel.offset[i], rel.scale[i])
			origin[i] = m.extent.Low(i) + (rel.offset[i]-residue[i])/rel.scale[i]
			phase[i] = floorMod(origin[i], size[i])
			coord[i] = (origin[i] - phase[i]) / size[i]
		}

		k := key(rel.scale, size, residue, phase)
		l, ok := lattices[k]
		if !ok {
			l = &lattice{
				scale:   rel.scale,
				size:    size,
				residue: residue,
				phase:   phase,
				anchor:  m.anchor,
				byCoord: make(map[string]int),
			}
			lattices[k] = l
			order = append(order, k)
		}
		ck := key(coord)
		if prev, dup := l.byCoord[ck]; dup {
			return nil, fmt.Errorf("%w: inputs %d and %d at tile %v", ErrDuplicateTile, l.tiles[prev].Index, m.index, coord)
		}
		l.byCoord[ck] = len(l.tiles)
		l.tiles = append(l.tiles, Tile{Index: m.index, Coord: coord, Origin: origin, Source: m.extent})
	}

	var out []*Group
	for _, k := range order {
		l := lattices[k]
		for _, cluster := range l.clusters() {
			g, err := f.newGroup(l, cluster)
			if err != nil {
				return nil, err
			}
			out = append(out, g)
		}
	}
	return out, nil
}

// clusters returns connected sets of tiles, each in input order.
func (l *lattice) clusters() [][]Tile {
	visited := make([]bool, len(l.tiles))
	neighbors := neighborOffsets(len(l.size))
	var out [][]Tile

	for start := range l.tiles {
		if visited[start] {
			continue
		}
		visited[start] = true
		queue := []int{start}
		var members []int
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			members = append(members, cur)
			c := l.tiles[cur].Coord
			near := make([]int64, len(c))
			for _, d := range neighbors {
				for i := range c {
					near[i] = c[i] + d[i]
				}
				if j, ok := l.byCoord[key(near)]; ok && !visited[j] {
					visited[j] = true
					queue = append(queue, j)
				}
			}
		}
		slices.Sort(members)
		tiles := make([]Tile, len(members))
		for i, j := range members {
			tiles[i] = l.tiles[j]
		}
		out = append(out, tiles)
	}
	return out
}

func (f *family) newGroup(l *lattice, tiles []Tile) (*Group, error) {
	n := len(l.size)
	residue := make([]float64, n)
	scale := make([]float64, n)
	for i := 0; i < n; i++ {
		residue[i] = float64(l.residue[i])
		scale[i] = float64(l.scale[i])
	}
	corner, err := f.base.Concatenate(grid.Translation(residue))
	if err != nil {
		return nil, err
	}
	if corner, err = corner.Concatenate(grid.Scaling(scale)); err != nil {
		return nil, err
	}
	gridToCRS, err := grid.Reanchor(corner, grid.CellCorner, l.anchor)
	if err != nil {
		return nil, err
	}

	var extent grid.Extent
	for _, t := range tiles {
		fp, err := grid.ExtentFromSize(t.Origin, l.size)
		if err != nil {
			return nil, err
		}
		if extent, err = extent.Union(fp); err != nil {
			return nil, err
		}
	}
	geometry, err := grid.NewGeometry(extent, gridToCRS, l.anchor, f.crs)
	if err != nil {
		return nil, err
	}
	return &Group{
		Tiles:       tiles,
		TileSize:    slices.Clone(l.size),
		Subsampling: slices.Clone(l.scale),
		Phase:       slices.Clone(l.phase),
		Geometry:    geometry,
	}, nil
}

// neighborOffsets returns every vector of {-1, 0, 1}^n except zero.
func neighborOffsets(n int) [][]int64 {
	out := [][]int64{{}}
	for i := 0; i < n; i++ {
		var next [][]int64
		for _, v := range out {
			for d := int64(-1); d <= 1; d++ {
				next = append(next, append(slices.Clone(v), d))
			}
		}
		out = next
	}
	return slices.DeleteFunc(out, func(v []int64) bool {
		return !slices.ContainsFunc(v, func(d int64) bool { return d != 0 })
	})
}

func key(parts ...[]int64) string {
	var sb strings.Builder
	for i, p := range parts {
		if i > 0 {
			sb.WriteByte('|')
		}
		for j, v := range p {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(v, 10))
		}
	}
	return sb.String()
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
