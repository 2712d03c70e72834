package comm

import (
	"golang.org/x/sys/unix"
)

// UnixBackend opens files with raw golang.org/x/sys/unix syscalls instead
// of the os package. The section engine uses it exactly as it uses
// OSBackend: one handle opened on rank 0 and shared by every rank, each
// writing its own slice; it is not a rank-0-only writer. It gives
// SetSize real teeth via Ftruncate, which
// os.File.Truncate also does, but by going through unix directly this
// backend exercises the same dependency internal/squashfs uses for
// low-level file work in the teacher repo.
type UnixBackend struct{}

func (UnixBackend) Open(path string, mode OpenMode) (File, error) {
	var (
		fd  int
		err error
	)
	switch mode {
	case OpenForRead:
		fd, err = unix.Open(path, unix.O_RDONLY, 0)
	case OpenForCreate:
		fd, err = unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_TRUNC, 0644)
	default:
		panic("comm: unknown open mode")
	}
	if err != nil {
		return nil, err
	}
	return &unixFile{fd: fd}, nil
}

type unixFile struct {
	fd int
}

func (u *unixFile) ReadAt(offset int64, buf []byte) (int, error) {
	return unix.Pread(u.fd, buf, offset)
}

func (u *unixFile) WriteAt(offset int64, buf []byte) (int, error) {
	return unix.Pwrite(u.fd, buf, offset)
}

func (u *unixFile) ReadAtAll(offset int64, buf []byte) (int, error)  { return u.ReadAt(offset, buf) }
func (u *unixFile) WriteAtAll(offset int64, buf []byte) (int, error) { return u.WriteAt(offset, buf) }

func (u *unixFile) SetSize(n int64) error {
	return unix.Ftruncate(u.fd, n)
}

func (u *unixFile) Close() error {
	return unix.Close(u.fd)
}
