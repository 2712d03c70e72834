package comm

// OpenMode selects how Backend.Open treats the target path.
type OpenMode int

const (
	// OpenForRead opens an existing file for reading only.
	OpenForRead OpenMode = iota
	// OpenForCreate truncates (or creates) the file for writing.
	OpenForCreate
)

// File is the abstract collective-I/O capability consumed by the section
// engine (§6): positioned reads and writes at an absolute offset, plus an
// optional size hint. Every method must be safe to call concurrently from
// multiple ranks (goroutines) against the same underlying file, since
// write_field/read_field have every rank touch disjoint byte ranges of one
// shared file at once.
type File interface {
	// ReadAt reads len(buf) bytes starting at offset, like io.ReaderAt.
	ReadAt(offset int64, buf []byte) (int, error)
	// WriteAt writes buf starting at offset, like io.WriterAt.
	WriteAt(offset int64, buf []byte) (int, error)
	// ReadAtAll is the collective variant of ReadAt: semantically
	// identical for both backends here, named separately because the
	// MPI original distinguishes MPI_File_read_at from
	// MPI_File_read_at_all.
	ReadAtAll(offset int64, buf []byte) (int, error)
	// WriteAtAll is the collective variant of WriteAt.
	WriteAtAll(offset int64, buf []byte) (int, error)
	// SetSize gives the backend a size hint after create (§4's "a
	// file-size hint may be issued on MPI-IO backends"). Backends that
	// cannot act on it return nil without effect.
	SetSize(n int64) error
	// Close closes the file.
	Close() error
}

// Backend opens a File for a path. Two implementations are provided:
// OSBackend (the default, backed by *os.File) and UnixBackend (backed
// directly by golang.org/x/sys/unix syscalls, giving SetSize real teeth
// via Ftruncate). The section engine opens a file once on rank 0 and
// shares the handle with every rank, which then reads and writes its own
// byte ranges through it, in the "MPI-IO" style; a rank-0-only POSIX
// fallback, in which the other ranks hold no handle, is not modeled.
type Backend interface {
	Open(path string, mode OpenMode) (File, error)
}
