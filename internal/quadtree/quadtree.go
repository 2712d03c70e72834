// Package quadtree is the external "forest" collaborator the file context
// & section engine and the deflate/inflate pair consume through a small
// interface (spec §6). It is not the adaptive-mesh library itself — no
// refinement, no load balancing — just enough of a quadtree/octree forest
// to exercise the serialization core end-to-end: ordered per-tree quadrant
// lists, a borrowed connectivity graph, and the geometric helpers deflate
// and inflate call out to (first/last descendant, per-quadrant data
// allocation, global partition exchange).
package quadtree

import (
	"fmt"
	"reflect"

	"github.com/distr1/pforest/internal/comm"
)

// Dim2D and Dim3D are the two supported spatial dimensions.
const (
	Dim2D = 2
	Dim3D = 3
)

// MaxLevel returns the deepest legal refinement level for the given
// dimension: p4est allows coarser octrees than quadtrees because three
// coordinate axes eat into the bits available for level encoding.
func MaxLevel(dim int) int32 {
	switch dim {
	case Dim2D:
		return 30
	case Dim3D:
		return 19
	default:
		panic(fmt.Sprintf("quadtree: unsupported dimension %d", dim))
	}
}

// Quadrant is a leaf cell: integer coordinates plus a refinement level.
// Z is unused (always 0) in 2D.
type Quadrant struct {
	X, Y, Z int32
	Level   int32
}

// Coords returns the D+1 signed-32 tuple deflate concatenates: D spatial
// coordinates followed by the level.
func (q Quadrant) Coords(dim int) []int32 {
	if dim == Dim3D {
		return []int32{q.X, q.Y, q.Z, q.Level}
	}
	return []int32{q.X, q.Y, q.Level}
}

// Tree holds one refinement tree's ordered quadrant list plus the metadata
// inflate fills in as it consumes coordinate tuples for that tree.
type Tree struct {
	Quadrants []Quadrant
	Data      [][]byte // nil when the forest carries no per-quadrant payload

	// MaxLevel is the deepest level among this tree's quadrants, or -1 if
	// the tree is empty on this rank.
	MaxLevel int32

	// FirstDescendant/LastDescendant are the finest-level descendants of
	// this tree's first and last quadrant, computed during inflation via
	// the geometry helpers (§4.B: "records the first descendant at max
	// refinement... and the last descendant").
	FirstDescendant Quadrant
	LastDescendant  Quadrant
}

// Position identifies a boundary quadrant by (tree, quadrant) for the
// global_first_position array inflate computes after a partition-wide
// exchange (§4.B).
type Position struct {
	Tree     int
	Quadrant Quadrant
}

// Forest is the minimal concrete stand-in for the adaptive-mesh forest
// consumed through §6's interface. One Forest instance represents one
// rank's local view: Trees holds only the quadrants this rank owns,
// ordered tree-major/Morton-minor as spec §3 requires.
type Forest struct {
	Dim          int
	Comm         *comm.Communicator
	Connectivity *Connectivity // borrowed: not freed by the forest
	DataSize     int           // bytes of opaque payload per quadrant, 0 = none
	Trees        []*Tree

	// GlobalFirstQuadrant is gfq[0..P]: see spec §3. GFQOwned records
	// whether this Forest's close (conceptually, garbage collection) frees
	// it, mirroring the tagged borrowed/owned policy of §5.
	GlobalFirstQuadrant []int64
	GFQOwned            bool

	// Pertree is the cumulative global quadrant count per tree, used only
	// during inflation to locate tree boundaries (spec §3).
	Pertree []int64

	LocalNumQuadrants  int64
	GlobalNumQuadrants int64

	// FirstLocalTree/LastLocalTree use the -1/-2 empty-slice sentinel
	// convention from spec §4.B ("Edge cases").
	FirstLocalTree int
	LastLocalTree  int

	Revision int

	// GlobalFirstPosition is filled in by ComputeGlobalPartition after
	// inflation: the boundary quadrant owned by each rank, plus one
	// sentinel entry at index P.
	GlobalFirstPosition []Position

	UserPointer any
}

// NumTrees returns the number of trees in the connectivity.
func (f *Forest) NumTrees() int {
	if f.Connectivity == nil {
		return 0
	}
	return f.Connectivity.NumTrees
}

// Equal reports whether f and other describe the same forest content:
// dimension, global counts, partition map, pertree array, and every local
// tree's quadrants (coordinates, levels, and payload bytes) in order. It
// ignores Comm/Connectivity identity and UserPointer, matching the "forest
// equality predicate" scenario 4 in spec §8 exercises.
func (f *Forest) Equal(other *Forest) bool {
	if other == nil {
		return false
	}
	if f.Dim != other.Dim || f.DataSize != other.DataSize {
		return false
	}
	if f.GlobalNumQuadrants != other.GlobalNumQuadrants {
		return false
	}
	if !reflect.DeepEqual(f.GlobalFirstQuadrant, other.GlobalFirstQuadrant) {
		return false
	}
	if !reflect.DeepEqual(f.Pertree, other.Pertree) {
		return false
	}
	if len(f.Trees) != len(other.Trees) {
		return false
	}
	for i := range f.Trees {
		a, b := f.Trees[i], other.Trees[i]
		// Compare by content: a tree with no quadrants matches another
		// whether its slices are nil or empty.
		if len(a.Quadrants) != len(b.Quadrants) || len(a.Data) != len(b.Data) {
			return false
		}
		if len(a.Quadrants) > 0 && !reflect.DeepEqual(a.Quadrants, b.Quadrants) {
			return false
		}
		if len(a.Data) > 0 && !reflect.DeepEqual(a.Data, b.Data) {
			return false
		}
	}
	return true
}
