package forestio

import (
	"log"

	"github.com/distr1/pforest/internal/codec"
	"github.com/distr1/pforest/internal/comm"
	"github.com/distr1/pforest/internal/ioerr"
)

// CreateParams are the collective arguments to OpenCreate; every rank must
// pass an identical GlobalFirstQuadrant, Dim, Version and UserString (spec
// §4.C, open_create).
type CreateParams struct {
	Dim                 int
	GlobalFirstQuadrant []int64
	Version             string
	UserString          string
	// Borrow, when true, has the context alias GlobalFirstQuadrant instead
	// of copying it, mirroring the original's "partition array is not
	// owned by the file context" option.
	Borrow bool
	Logger *log.Logger
}

func magicFor(dim int) (string, error) {
	switch dim {
	case 2:
		return codec.Magic2D, nil
	case 3:
		return codec.Magic3D, nil
	default:
		return "", ioerr.New("open_create", ioerr.ClassArgument)
	}
}

// OpenCreate is the collective constructor for a write context (spec §4.C).
// Every rank must call it with the same CreateParams. Rank 0 writes the
// 64-byte file header plus 16 bytes of prelude padding; every rank ends up
// sharing one open File handle for the subsequent collective field writes.
func OpenCreate(c *comm.Communicator, backend comm.Backend, path string, p CreateParams) (*Context, error) {
	rank, size := c.Rank(), c.Size()

	magic, err := magicFor(p.Dim)
	if err != nil {
		return nil, err
	}
	if len(p.GlobalFirstQuadrant) != size+1 {
		return nil, ioerr.New("open_create", ioerr.ClassArgument)
	}
	if p.GlobalFirstQuadrant[0] != 0 {
		return nil, ioerr.New("open_create", ioerr.ClassArgument)
	}

	var (
		f       comm.File
		openErr error
	)
	if rank == 0 {
		f, openErr = backend.Open(path, comm.OpenForCreate)
	}
	if err := broadcastErr(c, 0, openErr); err != nil {
		return nil, ioerr.Wrap("open_create", ioerr.ClassBackend, err)
	}
	f = comm.BroadcastValue(c, 0, f)

	ctx := &Context{
		comm:               c,
		backend:            backend,
		file:               f,
		state:              StateOpenWrite,
		dim:                p.Dim,
		globalNumQuadrants: p.GlobalFirstQuadrant[size],
	}
	ctx.setLogger(p.Logger)
	if p.Borrow {
		ctx.gfq = p.GlobalFirstQuadrant
		ctx.gfqOwned = false
	} else {
		owned := make([]int64, len(p.GlobalFirstQuadrant))
		copy(owned, p.GlobalFirstQuadrant)
		ctx.gfq = owned
		ctx.gfqOwned = true
	}
	ctx.localNumQuadrants = ctx.gfq[rank+1] - ctx.gfq[rank]

	var (
		writeErr error
		n        int
	)
	if rank == 0 {
		hdr, ferr := codec.FormatFileHeader(codec.FileHeader{
			Magic:      magic,
			Version:    p.Version,
			UserString: p.UserString,
			NGlobal:    ctx.globalNumQuadrants,
		})
		if ferr != nil {
			writeErr = ferr
		} else {
			buf := append(hdr, codec.PadBytes(codec.ByteDiv)...)
			n, writeErr = f.WriteAt(0, buf)
		}
	}
	if err := broadcastErr(c, 0, writeErr); err != nil {
		ctx.fault()
		return nil, ioerr.Wrap("open_create", ioerr.ClassIO, err)
	}
	if c.ORReduce(rank == 0 && n != codec.FilePreludeBytes) {
		ctx.fault()
		return nil, ioerr.New("open_create", ioerr.ClassCount)
	}

	ctx.accessedBytes = 0
	ctx.numCalls = 0
	ctx.log.Printf("open_create: %s (dim=%d, N_global=%d, P=%d)", path, p.Dim, ctx.globalNumQuadrants, size)
	return ctx, nil
}

// OpenRead is the collective constructor for a read context (spec §4.C,
// open_read / open_read_ext). The returned context starts with no bound
// partition; call BindPartition to register one ("forest-bound" open),
// or leave it unbound and pass an explicit partition to each ReadField
// call ("extended"/standalone open).
func OpenRead(c *comm.Communicator, backend comm.Backend, path string, dim int, logger *log.Logger) (ctx *Context, userString string, err error) {
	rank := c.Rank()

	wantMagic, merr := magicFor(dim)
	if merr != nil {
		return nil, "", merr
	}

	var (
		f        comm.File
		openErr  error
		hdr      codec.FileHeader
		prelude  []byte
	)
	if rank == 0 {
		f, openErr = backend.Open(path, comm.OpenForRead)
		if openErr == nil {
			prelude = make([]byte, codec.FilePreludeBytes)
			var n int
			n, openErr = f.ReadAt(0, prelude)
			if openErr == nil && n != codec.FilePreludeBytes {
				openErr = ioerr.New("open_read", ioerr.ClassCount)
			}
		}
		if openErr == nil {
			hdr, openErr = codec.ParseFileHeader(prelude[:codec.FileHeaderBytes])
			openErr = ioerr.Wrap("open_read", ioerr.ClassIO, openErr)
		}
		if openErr == nil && !codec.ValidPadding(prelude[codec.FileHeaderBytes:]) {
			openErr = ioerr.New("open_read", ioerr.ClassIO)
		}
		if openErr == nil && hdr.Magic != wantMagic {
			openErr = ioerr.New("open_read", ioerr.ClassIO)
		}
	}
	// Format and count problems found above keep their class; a failure
	// of the backend itself is ClassBackend.
	var class ioerr.Class
	if rank == 0 {
		class = ioerr.ClassOf(openErr)
	}
	class = comm.BroadcastValue(c, 0, class)
	if err := broadcastErr(c, 0, openErr); err != nil {
		return nil, "", ioerr.Wrap("open_read", class, err)
	}

	f = comm.BroadcastValue(c, 0, f)
	userString = comm.BroadcastValue(c, 0, hdr.UserString)
	nGlobal := c.BroadcastInt(0, hdr.NGlobal)

	ctx = &Context{
		comm:               c,
		backend:            backend,
		file:               f,
		state:              StateOpenRead,
		dim:                dim,
		globalNumQuadrants: nGlobal,
	}
	ctx.setLogger(logger)
	ctx.log.Printf("open_read: %s (dim=%d, N_global=%d)", path, dim, nGlobal)
	return ctx, userString, nil
}

// BindPartition registers (or replaces) the partition map a read context
// uses for subsequent ReadField calls without an explicit gfq argument
// (spec §4.C). It touches no file state and so performs no collective error
// exchange; every rank must still call it with matching arguments.
func (c *Context) BindPartition(gfq []int64, owned bool) error {
	if c.state != StateOpenRead {
		return ioerr.New("bind_partition", ioerr.ClassArgument)
	}
	size := c.comm.Size()
	if len(gfq) != size+1 {
		return ioerr.New("bind_partition", ioerr.ClassArgument)
	}
	if gfq[0] != 0 || gfq[size] != c.globalNumQuadrants {
		return ioerr.New("bind_partition", ioerr.ClassArgument)
	}
	if owned {
		cp := make([]int64, len(gfq))
		copy(cp, gfq)
		c.gfq = cp
		c.gfqOwned = true
	} else {
		c.gfq = gfq
		c.gfqOwned = false
	}
	rank := c.comm.Rank()
	c.localNumQuadrants = c.gfq[rank+1] - c.gfq[rank]
	return nil
}
