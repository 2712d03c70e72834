// Package deflate implements the Deflate/Inflate component (spec §4.B):
// flattening a forest's local quadrants into coordinate and payload
// arrays, and rebuilding a forest from those arrays plus a partition map.
package deflate

import "github.com/distr1/pforest/internal/quadtree"

// Deflate extracts this rank's local quadrants' coordinate+level tuples in
// tree-major, intra-tree order, and (if wantPayload) the opaque per-
// quadrant payload bytes in the same order. It is a pure read of forest:
// no side effects (spec §4.B).
func Deflate(forest *quadtree.Forest, wantPayload bool) (coords []int32, payload []byte) {
	width := forest.Dim + 1
	coords = make([]int32, 0, width*int(forest.LocalNumQuadrants))
	if wantPayload && forest.DataSize > 0 {
		payload = make([]byte, 0, forest.DataSize*int(forest.LocalNumQuadrants))
	}
	for _, tree := range forest.Trees {
		for i, q := range tree.Quadrants {
			coords = append(coords, q.Coords(forest.Dim)...)
			if wantPayload && forest.DataSize > 0 {
				payload = append(payload, tree.Data[i]...)
			}
		}
	}
	return coords, payload
}
