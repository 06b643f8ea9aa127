// Package bitset implements an N-dimensional presence bitmap over one grid
// extent.
//
// A [Set] keeps one bit per cell of its extent, packed into uint64 words.
// Cells map to bit indices with a mixed-radix stride table where axis 0
// varies fastest:
//
//	stride[0] = 1
//	stride[i] = stride[i-1] * size[i-1]
//	index     = sum((coord[i] - low[i]) * stride[i])
//
// Sets are built for one pass (for example tracking which tiles of a read
// were served) and then discarded. All index arithmetic is checked: a set
// whose bit count does not fit the platform fails with [ErrCapacity] and a
// coordinate outside the extent fails with [ErrOutOfRange]. A Set is not
// safe for concurrent mutation.
package bitset
