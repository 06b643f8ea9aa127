// Package mosaic assembles raster resources into larger logical rasters.
//
// # Mosaics
//
// A [Mosaic] lays equally sized tiles on one grid and serves any extent of
// it on demand. [Organize] takes an arbitrary list of resources and builds
// one Mosaic per connected cluster of tiles that share a grid family, a tile
// size and a lattice:
//
//	resources, err := mosaic.Organize(tiles)
//	if err != nil {
//	    return err
//	}
//	for _, r := range resources {
//	    block, err := r.Read(ctx, r.Geometry().Extent)
//	    ...
//	}
//
// Positions of a mosaic without a tile are filled with one value per band.
// [Harmonize] picks these values: the background or first no-data value of
// each band, or NaN after moving every band to converted values when a band
// declares neither.
//
// # Compositors
//
// A [Compositor] overlays resources that share one grid but may have
// different extents. Sources are read concurrently and merged in input
// order, the later source winning where footprints overlap. Sources that
// have no data, or fail to read, are left out of the result.
//
// # Nesting
//
// Mosaics and compositors implement [raster.Resource], so either can be
// used as a tile or source of another.
//
// # Logging
//
// The package is silent unless [SetLogger] installs a logger, or
// [WithLogger] is passed to a constructor.
package mosaic
