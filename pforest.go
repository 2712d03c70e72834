// Package pforest implements a self-describing, padded binary container
// format for parallel forest data (quadtree/octree meshes), plus the
// deflate/inflate pair that flattens a forest's local quadrants into the
// coordinate and payload arrays the container stores. It is the Go
// reimplementation of the p4est/p8est "highly scalable I/O" layer: a
// partition-independent file layout that any rank count can read back,
// built on a simulated bulk-synchronous communicator rather than a real
// MPI binding.
package pforest

import (
	"log"

	"github.com/distr1/pforest/internal/comm"
	"github.com/distr1/pforest/internal/deflate"
	"github.com/distr1/pforest/internal/forestio"
	"github.com/distr1/pforest/internal/quadtree"
)

// Dim2D and Dim3D select the quadtree or octree format variant.
const (
	Dim2D = quadtree.Dim2D
	Dim3D = quadtree.Dim3D
)

// Forest is the in-memory parallel forest type the root package's
// convenience wrappers operate on.
type Forest = quadtree.Forest

// Communicator is the collective handle every collective operation in this
// package takes as its first argument. Build a group with NewGroup and
// drive one rank per goroutine with RunOnAll, the same pattern the
// underlying internal/comm package uses for its own tests.
type Communicator = comm.Communicator

// NewGroup builds size Communicators collectively bound to one another.
func NewGroup(size int) []*Communicator { return comm.NewGroup(size) }

// RunOnAll drives fn concurrently across every communicator in comms,
// returning the first error any rank reports (after every rank returns).
func RunOnAll(comms []*Communicator, fn func(c *Communicator) error) error {
	return comm.RunOnAll(comms, fn)
}

// Backend selects the collective I/O implementation a Save/Load call uses.
type Backend = comm.Backend

// OSBackend and UnixBackend are the two provided backends: one through
// *os.File, one directly through golang.org/x/sys/unix syscalls.
type (
	OSBackend   = comm.OSBackend
	UnixBackend = comm.UnixBackend
)

// SaveForest deflates forest on every rank and writes the result as two
// field sections (coordinates, then opaque payload if present) in a
// freshly created file, after a header section carrying meta (may be
// empty). It is a convenience wrapper around
// OpenCreate/WriteHeader/WriteField/Close for the common case of one
// forest's full state in one file.
func SaveForest(c *Communicator, backend Backend, path string, f *Forest, meta []byte, userString string, logger *log.Logger) error {
	ctx, err := forestio.OpenCreate(c, backend, path, forestio.CreateParams{
		Dim:                 f.Dim,
		GlobalFirstQuadrant: f.GlobalFirstQuadrant,
		UserString:          userString,
		Logger:              logger,
	})
	if err != nil {
		return err
	}
	if err := forestio.WriteHeader(ctx, int64(len(meta)), meta, "meta"); err != nil {
		return err
	}
	coords, payload := deflate.Deflate(f, f.DataSize > 0)
	coordWidth := 4 * (f.Dim + 1)
	if err := forestio.WriteField(ctx, coordWidth, deflate.EncodeCoords(coords), "coords"); err != nil {
		return err
	}
	if f.DataSize > 0 {
		if err := forestio.WriteField(ctx, f.DataSize, payload, "field"); err != nil {
			return err
		}
	}
	return forestio.Close(ctx)
}

// LoadForest opens path for reading, reads the leading meta header (whose
// length must be known to the caller, matching write_header's symmetric
// read_header contract) and returns its bytes, reads back the coordinate
// and (if elemSize > 0) payload field sections, and inflates them into a
// Forest bound to connectivity and gfq.
func LoadForest(c *Communicator, backend Backend, path string, dim int, connectivity *quadtree.Connectivity, gfq []int64, pertree []int64, elemSize int, metaLen int64, logger *log.Logger) (*Forest, []byte, error) {
	ctx, _, err := forestio.OpenRead(c, backend, path, dim, logger)
	if err != nil {
		return nil, nil, err
	}
	var meta []byte
	if err := forestio.ReadHeader(ctx, metaLen, &meta, nil); err != nil {
		return nil, nil, err
	}
	if err := ctx.BindPartition(gfq, false); err != nil {
		return nil, nil, err
	}
	coordWidth := 4 * (dim + 1)
	var coordBytes []byte
	if err := forestio.ReadField(ctx, coordWidth, nil, &coordBytes, nil); err != nil {
		return nil, nil, err
	}
	var payload []byte
	if elemSize > 0 {
		if err := forestio.ReadField(ctx, elemSize, nil, &payload, nil); err != nil {
			return nil, nil, err
		}
	}
	if err := forestio.Close(ctx); err != nil {
		return nil, nil, err
	}
	f, err := deflate.Inflate(c, connectivity, dim, gfq, pertree, deflate.DecodeCoords(coordBytes), payload, elemSize, nil)
	return f, meta, err
}

// Info reports a file's user string and its section chain without opening
// a context, per the discoverable-without-schema container contract.
func Info(c *Communicator, backend Backend, path string) (userString string, sections []forestio.SectionInfo, err error) {
	return forestio.Info(c, backend, path)
}
