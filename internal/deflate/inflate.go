package deflate

import (
	"fmt"

	"github.com/distr1/pforest/internal/comm"
	"github.com/distr1/pforest/internal/quadtree"
)

// Inflate rebuilds a forest from a partition map, a per-tree prefix-sum
// array, and the coordinate/payload arrays Deflate (or a matching file
// read) produced, per spec §4.B. The returned forest has Revision 0 and a
// freshly computed GlobalFirstPosition.
func Inflate(
	c *comm.Communicator,
	connectivity *quadtree.Connectivity,
	dim int,
	gfq []int64,
	pertree []int64,
	coords []int32,
	payload []byte,
	elemSize int,
	userPointer any,
) (*quadtree.Forest, error) {
	rank, size := c.Rank(), c.Size()

	if err := validatePartition(gfq, size); err != nil {
		return nil, err
	}
	numTrees := len(pertree) - 1
	if numTrees < 0 {
		return nil, fmt.Errorf("deflate: pertree must have at least one entry")
	}
	if err := validatePertree(pertree, gfq[size]); err != nil {
		return nil, err
	}

	localCount := gfq[rank+1] - gfq[rank]
	width := dim + 1
	if int64(len(coords)) != width*localCount {
		return nil, fmt.Errorf("deflate: coords has %d entries, want %d", len(coords), width*localCount)
	}
	if payload != nil {
		if elemSize <= 0 {
			return nil, fmt.Errorf("deflate: payload given but elemSize is %d", elemSize)
		}
		if int64(len(payload)) != int64(elemSize)*localCount {
			return nil, fmt.Errorf("deflate: payload has %d bytes, want %d", len(payload), int64(elemSize)*localCount)
		}
	}

	forest := &quadtree.Forest{
		Dim:                 dim,
		Comm:                c,
		Connectivity:        connectivity,
		DataSize:            elemSize,
		GlobalFirstQuadrant: gfq,
		Pertree:             pertree,
		LocalNumQuadrants:   localCount,
		GlobalNumQuadrants:  gfq[size],
		Revision:            0,
		UserPointer:         userPointer,
	}
	forest.Trees = make([]*quadtree.Tree, numTrees)
	for i := range forest.Trees {
		forest.Trees[i] = &quadtree.Tree{MaxLevel: -1}
	}

	if localCount == 0 {
		forest.FirstLocalTree = -1
		forest.LastLocalTree = -2
		if err := quadtree.ComputeGlobalPartition(forest); err != nil {
			return nil, err
		}
		return forest, nil
	}

	first := treeOf(pertree, gfq[rank])
	last := treeOf(pertree, gfq[rank+1]-1)
	forest.FirstLocalTree = first
	forest.LastLocalTree = last

	maxLevel := quadtree.MaxLevel(dim)
	cursor, payloadCursor := 0, 0
	var consumed int64
	for t := first; t <= last; t++ {
		treeStart, treeEnd := pertree[t], pertree[t+1]
		localStart := max64(0, gfq[rank]-treeStart)
		localEnd := min64(treeEnd, gfq[rank+1]) - treeStart
		count := localEnd - localStart
		if count <= 0 {
			continue
		}
		tree := forest.Trees[t]
		tree.Quadrants = make([]quadtree.Quadrant, count)
		if payload != nil {
			tree.Data = make([][]byte, count)
		}
		for i := int64(0); i < count; i++ {
			q := quadtree.Quadrant{
				X:     coords[cursor],
				Y:     coords[cursor+1],
				Level: coords[cursor+dim],
			}
			if dim == quadtree.Dim3D {
				q.Z = coords[cursor+2]
			}
			cursor += width
			tree.Quadrants[i] = q
			if q.Level > tree.MaxLevel {
				tree.MaxLevel = q.Level
			}
			if payload != nil {
				slot := make([]byte, elemSize)
				copy(slot, payload[payloadCursor:payloadCursor+elemSize])
				tree.Data[i] = slot
				payloadCursor += elemSize
			}
			if i == 0 {
				tree.FirstDescendant = quadtree.FirstDescendant(q, maxLevel)
			}
			if i == count-1 {
				tree.LastDescendant = quadtree.LastDescendant(dim, q, maxLevel)
			}
		}
		consumed += count
	}
	if consumed != localCount {
		return nil, fmt.Errorf("deflate: internal error, consumed %d quadrants, want %d", consumed, localCount)
	}

	if err := quadtree.ComputeGlobalPartition(forest); err != nil {
		return nil, err
	}
	return forest, nil
}

func validatePartition(gfq []int64, size int) error {
	if len(gfq) != size+1 {
		return fmt.Errorf("deflate: gfq has %d entries, want %d", len(gfq), size+1)
	}
	if gfq[0] != 0 {
		return fmt.Errorf("deflate: gfq[0] = %d, want 0", gfq[0])
	}
	for i := 1; i < len(gfq); i++ {
		if gfq[i] < gfq[i-1] {
			return fmt.Errorf("deflate: gfq is not monotone at index %d", i)
		}
	}
	return nil
}

func validatePertree(pertree []int64, nGlobal int64) error {
	if len(pertree) == 0 || pertree[0] != 0 {
		return fmt.Errorf("deflate: pertree[0] must be 0")
	}
	for i := 1; i < len(pertree); i++ {
		if pertree[i] < pertree[i-1] {
			return fmt.Errorf("deflate: pertree is not monotone at index %d", i)
		}
	}
	if pertree[len(pertree)-1] != nGlobal {
		return fmt.Errorf("deflate: pertree[T] = %d, want %d (gfq[P])", pertree[len(pertree)-1], nGlobal)
	}
	return nil
}

// treeOf returns the tree index j such that pertree[j] <= target <
// pertree[j+1], via binary search over the monotone pertree array.
func treeOf(pertree []int64, target int64) int {
	lo, hi := 0, len(pertree)-2
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case target < pertree[mid]:
			hi = mid - 1
		case target >= pertree[mid+1]:
			lo = mid + 1
		default:
			return mid
		}
	}
	if hi < 0 {
		return 0
	}
	return len(pertree) - 2
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
