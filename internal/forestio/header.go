package forestio

import (
	"github.com/distr1/pforest/internal/codec"
	"github.com/distr1/pforest/internal/comm"
	"github.com/distr1/pforest/internal/ioerr"
)

// WriteHeader appends a header section (spec §4.C, write_header): rank 0
// alone writes the section header, the size bytes of data (skipped
// entirely when size is 0), and the trailing padding. Every rank advances
// its accessedBytes cursor identically afterward.
func WriteHeader(ctx *Context, size int64, data []byte, userString string) error {
	if ctx.state != StateOpenWrite {
		return ioerr.New("write_header", ioerr.ClassArgument)
	}
	if size > 0 && int64(len(data)) != size {
		return ioerr.New("write_header", ioerr.ClassArgument)
	}

	rank := ctx.comm.Rank()
	base := absoluteOffset(ctx.accessedBytes)
	pad := codec.PadLen(int(size))

	var writeErr error
	var n int
	if rank == 0 {
		hdr, ferr := codec.FormatSectionHeader(codec.SectionHeader{
			BlockType:  codec.BlockHeader,
			DataSize:   size,
			UserString: userString,
		})
		if ferr != nil {
			writeErr = ferr
		} else {
			buf := make([]byte, 0, int64(len(hdr))+size+int64(pad))
			buf = append(buf, hdr...)
			if size > 0 {
				buf = append(buf, data...)
			}
			buf = append(buf, codec.PadBytes(pad)...)
			n, writeErr = ctx.file.WriteAt(base, buf)
		}
	}
	if err := broadcastErr(ctx.comm, 0, writeErr); err != nil {
		ctx.fault()
		return ioerr.Wrap("write_header", ioerr.ClassIO, err)
	}
	want := codec.SectionHeaderBytes + int(size) + pad
	if ctx.comm.ORReduce(rank == 0 && n != want) {
		ctx.fault()
		return ioerr.New("write_header", ioerr.ClassCount)
	}

	ctx.accessedBytes += int64(codec.SectionHeaderBytes) + size + int64(pad)
	ctx.numCalls++
	return nil
}

// ReadHeader reads the next header section, verifying it actually is one
// and that its recorded size matches the caller's expectation (spec §4.C,
// read_header). When data is nil, the payload bytes are never fetched from
// the backend, but the cursor still advances past them ("skip" semantics).
func ReadHeader(ctx *Context, size int64, data *[]byte, userString *string) error {
	if ctx.state != StateOpenRead {
		return ioerr.New("read_header", ioerr.ClassArgument)
	}

	rank := ctx.comm.Rank()
	base := absoluteOffset(ctx.accessedBytes)
	pad := codec.PadLen(int(size))

	var (
		readErr error
		hdr     codec.SectionHeader
		payload []byte
	)
	if rank == 0 {
		hdrBuf := make([]byte, codec.SectionHeaderBytes)
		_, readErr = ctx.file.ReadAt(base, hdrBuf)
		if readErr == nil {
			hdr, readErr = codec.ParseSectionHeader(hdrBuf)
		}
		if readErr == nil && hdr.BlockType != codec.BlockHeader {
			readErr = ioerr.New("read_header", ioerr.ClassIO)
		}
		// A stored data_size disagreeing with the caller's expected size is
		// a format error, not a byte-count error (spec §7, §8).
		if readErr == nil && hdr.DataSize != size {
			readErr = ioerr.New("read_header", ioerr.ClassIO)
		}
		if readErr == nil && data != nil && size > 0 {
			payload = make([]byte, size)
			_, readErr = ctx.file.ReadAt(base+int64(codec.SectionHeaderBytes), payload)
		}
		if readErr == nil {
			padBuf := make([]byte, pad)
			_, readErr = ctx.file.ReadAt(base+int64(codec.SectionHeaderBytes)+size, padBuf)
			if readErr == nil && !codec.ValidPadding(padBuf) {
				readErr = ioerr.New("read_header", ioerr.ClassIO)
			}
		}
	}
	if err := broadcastErr(ctx.comm, 0, readErr); err != nil {
		ctx.fault()
		return ioerr.Wrap("read_header", ioerr.ClassIO, err)
	}

	if data != nil {
		*data = ctx.comm.BroadcastBytes(0, payload)
	}
	if userString != nil {
		*userString = comm.BroadcastValue(ctx.comm, 0, hdr.UserString)
	}

	ctx.accessedBytes += int64(codec.SectionHeaderBytes) + size + int64(pad)
	ctx.numCalls++
	return nil
}
