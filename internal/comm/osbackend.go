package comm

import "os"

// OSBackend opens files through the standard library. On Unix, os.File's
// ReadAt/WriteAt already go through pread(2)/pwrite(2), so concurrent
// positioned access from multiple rank goroutines sharing one *os.File is
// safe without extra locking, the same guarantee MPI-IO gives the engine.
type OSBackend struct{}

func (OSBackend) Open(path string, mode OpenMode) (File, error) {
	var (
		f   *os.File
		err error
	)
	switch mode {
	case OpenForRead:
		f, err = os.Open(path)
	case OpenForCreate:
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	default:
		panic("comm: unknown open mode")
	}
	if err != nil {
		return nil, err
	}
	return &osFile{f: f}, nil
}

type osFile struct {
	f *os.File
}

func (o *osFile) ReadAt(offset int64, buf []byte) (int, error)     { return o.f.ReadAt(buf, offset) }
func (o *osFile) WriteAt(offset int64, buf []byte) (int, error)    { return o.f.WriteAt(buf, offset) }
func (o *osFile) ReadAtAll(offset int64, buf []byte) (int, error)  { return o.ReadAt(offset, buf) }
func (o *osFile) WriteAtAll(offset int64, buf []byte) (int, error) { return o.WriteAt(offset, buf) }
func (o *osFile) SetSize(n int64) error                            { return o.f.Truncate(n) }
func (o *osFile) Close() error                                     { return o.f.Close() }
