// Package forestio implements the File Context & Section Engine (spec
// §4.C) and the Info Walker (§4.D): a stateful handle over an open file
// tracking accumulated byte offset, writing/reading header and field
// sections with collective error and byte-count synchronization across
// every rank.
package forestio

import (
	"log"

	"github.com/distr1/pforest/internal/codec"
	"github.com/distr1/pforest/internal/comm"
	"github.com/distr1/pforest/internal/ioerr"
)

// State is the section-engine state machine (spec §4.C, "Section state
// machine"). FAULTED is terminal: any operation returning an error
// transitions there and the context must not be used again.
type State int

const (
	StateOpenWrite State = iota
	StateOpenRead
	StateClosed
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateOpenWrite:
		return "open-write"
	case StateOpenRead:
		return "open-read"
	case StateClosed:
		return "closed"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Context is the in-memory handle while a file is open (spec §3, "File
// context").
type Context struct {
	comm    *comm.Communicator
	backend comm.Backend
	file    comm.File
	state   State
	log     *log.Logger

	dim                int
	globalNumQuadrants int64
	localNumQuadrants  int64

	// gfq may be nil: a read context opened without a bound partition
	// requires an explicit one at each ReadField call; no uniform
	// partition is synthesized in its place.
	gfq      []int64
	gfqOwned bool

	// accessedBytes counts only section payload + section headers +
	// padding, excluding the 80-byte file prelude (spec §3).
	accessedBytes int64
	numCalls      int64
}

// NumCalls returns the monotone count of completed section operations
// (spec §3's diagnostic num_calls field, exposed per SPEC_FULL §4.4).
func (c *Context) NumCalls() int64 { return c.numCalls }

// AccessedBytes returns the engine's running cursor.
func (c *Context) AccessedBytes() int64 { return c.accessedBytes }

// GlobalNumQuadrants returns N_global as recorded in the file/forest.
func (c *Context) GlobalNumQuadrants() int64 { return c.globalNumQuadrants }

// LocalNumQuadrants returns this rank's slice of N_global, per the bound
// partition (zero for a read context with none bound yet).
func (c *Context) LocalNumQuadrants() int64 { return c.localNumQuadrants }

// Dim returns 2 or 3, matching the file's magic string.
func (c *Context) Dim() int { return c.dim }

// Partition returns the bound global-first-quadrant array, or nil if none
// is bound yet (an unbound read context).
func (c *Context) Partition() []int64 { return c.gfq }

// State reports the current section state-machine state.
func (c *Context) State() State { return c.state }

func (c *Context) setLogger(l *log.Logger) {
	if l == nil {
		l = log.Default()
	}
	c.log = l
}

func absoluteOffset(accessedBytesBefore int64) int64 {
	return codec.FilePreludeBytes + accessedBytesBefore
}

// fault transitions the context to FAULTED and closes/frees it, per the
// §4.C state machine and §7 propagation policy ("the engine closes the
// file, frees the context, and returns a null handle to every rank").
func (c *Context) fault() {
	if c.state == StateFaulted || c.state == StateClosed {
		return
	}
	c.state = StateFaulted
	if c.file != nil {
		c.file.Close()
		c.file = nil
	}
}

// Close closes the file; if the context owns its gfq, the owned copy is
// simply dropped along with the context (Go's GC stands in for the
// explicit free the original performs). It is collective: rank 0 closes
// the handle it opened and shared, and every rank receives its result.
func Close(c *Context) error {
	if c.state == StateFaulted {
		return ioerr.New("close", ioerr.ClassArgument)
	}
	if c.state == StateClosed {
		return nil
	}
	var closeErr error
	if c.comm.Rank() == 0 {
		closeErr = c.file.Close()
	}
	err := broadcastErr(c.comm, 0, closeErr)
	c.file = nil
	c.state = StateClosed
	if err != nil {
		return ioerr.Wrap("close", ioerr.ClassBackend, err)
	}
	return nil
}
