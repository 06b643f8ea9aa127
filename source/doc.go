// Package source provides leaf raster resources: [Memory], which serves
// pixels from one in-memory block, and [Image], which serves a decoded PNG
// or TIFF image.
//
// Both are plain implementations of raster.Resource and can be organized
// into mosaics or composited like any other resource.
package source
