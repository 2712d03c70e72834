package quadtree

import "github.com/distr1/pforest/internal/comm"

// ComputeGlobalPartition builds f.GlobalFirstPosition: for every rank, the
// (tree, quadrant) pair at that rank's first owned global quadrant, plus a
// sentinel final entry one past the last tree/quadrant of the forest. This
// is the "partition-wide exchange" inflate triggers afterward (spec §4.B),
// delegated by the forest interface (§6: compute_global_partition).
func ComputeGlobalPartition(f *Forest) error {
	size := f.Comm.Size()
	out := make([]Position, size+1)
	for root := 0; root < size; root++ {
		var mine Position
		if f.Comm.Rank() == root {
			mine = firstOwnedPosition(f)
		}
		out[root] = comm.BroadcastValue(f.Comm, root, mine)
	}
	out[size] = Position{Tree: f.NumTrees(), Quadrant: Quadrant{}}
	f.GlobalFirstPosition = out
	return nil
}

// firstOwnedPosition returns this rank's first local quadrant as a
// (tree, quadrant) pair, or the empty-slice sentinel position derived from
// FirstLocalTree/LastLocalTree when the rank owns nothing.
func firstOwnedPosition(f *Forest) Position {
	if f.FirstLocalTree > f.LastLocalTree {
		// Empty local slice: report the FirstLocalTree sentinel (-1) with
		// a zero quadrant.
		return Position{Tree: f.FirstLocalTree, Quadrant: Quadrant{}}
	}
	t := f.Trees[f.FirstLocalTree]
	if len(t.Quadrants) == 0 {
		return Position{Tree: f.FirstLocalTree, Quadrant: Quadrant{}}
	}
	return Position{Tree: f.FirstLocalTree, Quadrant: t.Quadrants[0]}
}
