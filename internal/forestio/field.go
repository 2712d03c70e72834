package forestio

import (
	"github.com/distr1/pforest/internal/codec"
	"github.com/distr1/pforest/internal/comm"
	"github.com/distr1/pforest/internal/ioerr"
)

// WriteField appends a field section (spec §4.C, write_field): rank 0
// writes the section header alone, then every rank collectively writes its
// own local slice at its gfq-derived offset, and rank 0 writes the
// trailing padding once all local writes have landed. elemSize is the
// per-quadrant payload width; localData must be exactly
// elemSize*localNumQuadrants bytes.
func WriteField(ctx *Context, elemSize int, localData []byte, userString string) error {
	if ctx.state != StateOpenWrite {
		return ioerr.New("write_field", ioerr.ClassArgument)
	}
	if elemSize <= 0 {
		return ioerr.New("write_field", ioerr.ClassArgument)
	}
	if int64(len(localData)) != int64(elemSize)*ctx.localNumQuadrants {
		return ioerr.New("write_field", ioerr.ClassArgument)
	}

	rank := ctx.comm.Rank()
	base := absoluteOffset(ctx.accessedBytes)
	nGlobal := ctx.globalNumQuadrants
	dataSize := int64(elemSize) * nGlobal
	pad := codec.PadLen(int(dataSize))

	var headerErr error
	if rank == 0 {
		// The section header's data_size field records the per-quadrant
		// element width; the on-disk payload is data_size*N_global bytes
		// (spec §3/§4.A, L(F) = N_global . data_size), with N_global taken
		// from the file header rather than repeated per section.
		hdr, ferr := codec.FormatSectionHeader(codec.SectionHeader{
			BlockType:  codec.BlockField,
			DataSize:   int64(elemSize),
			UserString: userString,
		})
		if ferr != nil {
			headerErr = ferr
		} else {
			_, headerErr = ctx.file.WriteAt(base, hdr)
		}
	}
	if err := broadcastErr(ctx.comm, 0, headerErr); err != nil {
		ctx.fault()
		return ioerr.Wrap("write_field", ioerr.ClassIO, err)
	}

	dataBase := base + int64(codec.SectionHeaderBytes)
	myOffset := dataBase + ctx.gfq[rank]*int64(elemSize)

	var (
		writeErr error
		n        int
	)
	if len(localData) > 0 {
		n, writeErr = ctx.file.WriteAtAll(myOffset, localData)
	}
	problem := writeErr != nil || n != len(localData)
	if ctx.comm.ORReduce(problem) {
		ctx.fault()
		return ioerr.New("write_field", ioerr.ClassCount)
	}

	// Every rank's local write must have landed before rank 0 writes the
	// trailing padding that follows them all.
	ctx.comm.Barrier()

	var padErr error
	if rank == 0 {
		_, padErr = ctx.file.WriteAt(dataBase+dataSize, codec.PadBytes(pad))
	}
	if err := broadcastErr(ctx.comm, 0, padErr); err != nil {
		ctx.fault()
		return ioerr.Wrap("write_field", ioerr.ClassIO, err)
	}

	ctx.accessedBytes += int64(codec.SectionHeaderBytes) + dataSize + int64(pad)
	ctx.numCalls++
	return nil
}

// ReadField reads the next field section (spec §4.C, read_field). When gfq
// is nil, the context's bound partition is used (read_field "with" bound
// partition); otherwise gfq overrides it for this call alone, letting a
// standalone context repartition across reads. localData receives exactly
// this rank's elemSize*localNumQuadrants-byte slice.
func ReadField(ctx *Context, elemSize int, gfq []int64, localData *[]byte, userString *string) error {
	if ctx.state != StateOpenRead {
		return ioerr.New("read_field", ioerr.ClassArgument)
	}
	if elemSize <= 0 {
		return ioerr.New("read_field", ioerr.ClassArgument)
	}

	rank, size := ctx.comm.Rank(), ctx.comm.Size()
	effGfq := gfq
	if effGfq == nil {
		if ctx.gfq == nil {
			return ioerr.New("read_field", ioerr.ClassArgument)
		}
		effGfq = ctx.gfq
	}
	if len(effGfq) != size+1 || effGfq[0] != 0 || effGfq[size] != ctx.globalNumQuadrants {
		return ioerr.New("read_field", ioerr.ClassArgument)
	}

	base := absoluteOffset(ctx.accessedBytes)
	dataSize := int64(elemSize) * ctx.globalNumQuadrants
	pad := codec.PadLen(int(dataSize))

	var (
		hdrErr error
		hdr    codec.SectionHeader
	)
	if rank == 0 {
		hdrBuf := make([]byte, codec.SectionHeaderBytes)
		_, hdrErr = ctx.file.ReadAt(base, hdrBuf)
		if hdrErr == nil {
			hdr, hdrErr = codec.ParseSectionHeader(hdrBuf)
		}
		if hdrErr == nil && hdr.BlockType != codec.BlockField {
			hdrErr = ioerr.New("read_field", ioerr.ClassIO)
		}
		// A stored data_size (the file's per-quadrant element width)
		// disagreeing with the caller's elemSize is a format error, not a
		// byte-count error (spec §7, §8: "data_size in file != caller's
		// elem_size on field read: fails with ERR_IO").
		if hdrErr == nil && hdr.DataSize != int64(elemSize) {
			hdrErr = ioerr.New("read_field", ioerr.ClassIO)
		}
	}
	if err := broadcastErr(ctx.comm, 0, hdrErr); err != nil {
		ctx.fault()
		return ioerr.Wrap("read_field", ioerr.ClassIO, err)
	}

	localCount := effGfq[rank+1] - effGfq[rank]
	dataBase := base + int64(codec.SectionHeaderBytes)
	myOffset := dataBase + effGfq[rank]*int64(elemSize)
	buf := make([]byte, localCount*int64(elemSize))

	var (
		readErr error
		n       int
	)
	if len(buf) > 0 {
		n, readErr = ctx.file.ReadAtAll(myOffset, buf)
	}
	problem := readErr != nil || n != len(buf)
	if ctx.comm.ORReduce(problem) {
		ctx.fault()
		return ioerr.New("read_field", ioerr.ClassCount)
	}

	ctx.comm.Barrier()

	var padErr error
	if rank == 0 {
		padBuf := make([]byte, pad)
		_, padErr = ctx.file.ReadAt(dataBase+dataSize, padBuf)
		if padErr == nil && !codec.ValidPadding(padBuf) {
			padErr = ioerr.New("read_field", ioerr.ClassIO)
		}
	}
	if err := broadcastErr(ctx.comm, 0, padErr); err != nil {
		ctx.fault()
		return ioerr.Wrap("read_field", ioerr.ClassIO, err)
	}

	*localData = buf
	if userString != nil {
		*userString = comm.BroadcastValue(ctx.comm, 0, hdr.UserString)
	}

	ctx.accessedBytes += int64(codec.SectionHeaderBytes) + dataSize + int64(pad)
	ctx.numCalls++
	return nil
}
