package forestio

import (
	"github.com/distr1/pforest/internal/codec"
	"github.com/distr1/pforest/internal/comm"
	"github.com/distr1/pforest/internal/ioerr"
)

// SectionInfo describes one section as discovered by Info, without any
// schema knowledge of what the section's bytes mean.
type SectionInfo struct {
	BlockType  codec.BlockType
	DataSize   int64
	UserString string // trimmed of trailing padding spaces
	// RawUserString is the untrimmed 47-byte wire field, matching
	// p4est_file_info's distinction between the wire format and the
	// caller-facing trimmed string (SPEC_FULL §4.5).
	RawUserString string
}

// Info walks a file's section chain without opening a context (spec §4.D,
// "Info Walker"): rank 0 alone touches the file, parsing the file header
// and then each section header plus its padding in turn. A section that
// fails to parse, or whose padding is short or malformed, ends the walk
// there without failing the call — a truncated or concurrently-growing
// file still reports everything readable before the damage.
func Info(c *comm.Communicator, backend comm.Backend, path string) (userString string, sections []SectionInfo, err error) {
	rank := c.Rank()

	var openErr error
	if rank == 0 {
		f, ferr := backend.Open(path, comm.OpenForRead)
		if ferr != nil {
			openErr = ferr
		} else {
			defer f.Close()

			prelude := make([]byte, codec.FilePreludeBytes)
			n, rerr := f.ReadAt(0, prelude)
			switch {
			case rerr != nil || n != codec.FilePreludeBytes:
				openErr = ioerr.New("info", ioerr.ClassIO)
			default:
				hdr, perr := codec.ParseFileHeader(prelude[:codec.FileHeaderBytes])
				if perr != nil || !codec.ValidPadding(prelude[codec.FileHeaderBytes:]) {
					openErr = ioerr.New("info", ioerr.ClassIO)
					break
				}
				userString = hdr.UserString
				sections = walkSections(f, int64(codec.FilePreludeBytes), hdr.NGlobal)
			}
		}
	}
	// A malformed prelude keeps its ClassIO; a failure of the backend
	// itself is ClassBackend.
	var class ioerr.Class
	if rank == 0 {
		class = ioerr.ClassOf(openErr)
	}
	class = comm.BroadcastValue(c, 0, class)
	if err := broadcastErr(c, 0, openErr); err != nil {
		return "", nil, ioerr.Wrap("info", class, err)
	}

	userString = comm.BroadcastValue(c, 0, userString)
	sections = comm.BroadcastValue(c, 0, sections)
	return userString, sections, nil
}

// walkSections reads consecutive section headers starting at offset until
// one fails to parse or its padding is malformed or short. nGlobal is the
// file's global quadrant count, needed because a 'F' field section's
// on-disk payload is nGlobal*data_size bytes: data_size in the section
// header only ever records the per-quadrant element width (spec §3/§4.A,
// L(F) = N_global . data_size), never the total.
func walkSections(f comm.File, offset int64, nGlobal int64) []SectionInfo {
	var sections []SectionInfo
	for {
		hdrBuf := make([]byte, codec.SectionHeaderBytes)
		n, err := f.ReadAt(offset, hdrBuf)
		if err != nil || n != codec.SectionHeaderBytes {
			return sections
		}
		sh, err := codec.ParseSectionHeader(hdrBuf)
		if err != nil {
			return sections
		}

		payloadLen := sh.DataSize
		if sh.BlockType == codec.BlockField {
			payloadLen *= nGlobal
		}
		pad := codec.PadLen(int(payloadLen))
		padOffset := offset + int64(codec.SectionHeaderBytes) + payloadLen
		padBuf := make([]byte, pad)
		n, err = f.ReadAt(padOffset, padBuf)
		if err != nil || n != pad || !codec.ValidPadding(padBuf) {
			return sections
		}

		sections = append(sections, SectionInfo{
			BlockType:     sh.BlockType,
			DataSize:      sh.DataSize,
			UserString:    sh.UserString,
			RawUserString: sh.RawUserString,
		})
		offset = padOffset + int64(pad)
	}
}
