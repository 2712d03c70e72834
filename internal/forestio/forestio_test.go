package forestio

import (
	"path/filepath"
	"testing"

	"github.com/distr1/pforest/internal/codec"
	"github.com/distr1/pforest/internal/comm"
	"github.com/distr1/pforest/internal/ioerr"
	"github.com/distr1/pforest/internal/quadtree"
)

func TestCreateWriteHeaderCloseInfo(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "hdr.p4d")
	backend := comm.OSBackend{}
	comms := comm.NewGroup(1)

	err := comm.RunOnAll(comms, func(c *comm.Communicator) error {
		ctx, err := OpenCreate(c, backend, path, CreateParams{
			Dim:                 quadtree.Dim2D,
			GlobalFirstQuadrant: []int64{0, 0},
			Version:             "pforest 0.1",
			UserString:          "test file",
		})
		if err != nil {
			return err
		}
		if err := WriteHeader(ctx, 5, []byte("hello"), "greeting"); err != nil {
			return err
		}
		return Close(ctx)
	})
	if err != nil {
		t.Fatal(err)
	}

	// 80-byte prelude + 64-byte section header + 5 bytes data + 11 bytes
	// padding (PadLen(5) = 16-5 = 11, neither 0 nor 1, so no bump)
	// = 80 + 64 + 5 + 11 = 160.
	wantPad := codec.PadLen(5)
	if wantPad != 11 {
		t.Fatalf("internal test assumption wrong: PadLen(5) = %d, want 11", wantPad)
	}
	wantSize := int64(codec.FilePreludeBytes + codec.SectionHeaderBytes + 5 + wantPad)

	info, err := osFileSize(path)
	if err != nil {
		t.Fatal(err)
	}
	if info != wantSize {
		t.Fatalf("file size = %d, want %d", info, wantSize)
	}

	userString, sections, err := Info(comms[0], backend, path)
	if err != nil {
		t.Fatal(err)
	}
	if userString != "test file" {
		t.Fatalf("Info user string = %q, want %q", userString, "test file")
	}
	if len(sections) != 1 {
		t.Fatalf("len(sections) = %d, want 1", len(sections))
	}
	if sections[0].BlockType != codec.BlockHeader || sections[0].DataSize != 5 || sections[0].UserString != "greeting" {
		t.Fatalf("section = %+v, unexpected", sections[0])
	}
}

func TestFieldRoundTripMultiRank(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "field.p4d")
	backend := comm.OSBackend{}
	comms := comm.NewGroup(2)

	gfq := []int64{0, 3, 5}
	const elemSize = 2
	allData := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	err := comm.RunOnAll(comms, func(c *comm.Communicator) error {
		ctx, err := OpenCreate(c, backend, path, CreateParams{
			Dim:                 quadtree.Dim2D,
			GlobalFirstQuadrant: gfq,
			UserString:          "round trip",
		})
		if err != nil {
			return err
		}
		start, end := gfq[c.Rank()]*elemSize, gfq[c.Rank()+1]*elemSize
		if err := WriteField(ctx, elemSize, allData[start:end], "field A"); err != nil {
			return err
		}
		return Close(ctx)
	})
	if err != nil {
		t.Fatal(err)
	}

	// Reopen with a different partition than the one used to write.
	newGfq := []int64{0, 2, 5}
	got := make([][]byte, 2)
	err = comm.RunOnAll(comms, func(c *comm.Communicator) error {
		ctx, userString, err := OpenRead(c, backend, path, quadtree.Dim2D, nil)
		if err != nil {
			return err
		}
		if userString != "round trip" {
			t.Errorf("user string = %q", userString)
		}
		var local []byte
		var fieldUser string
		if err := ReadField(ctx, elemSize, newGfq, &local, &fieldUser); err != nil {
			return err
		}
		got[c.Rank()] = local
		return Close(ctx)
	})
	if err != nil {
		t.Fatal(err)
	}

	want0 := allData[0 : newGfq[1]*elemSize]
	want1 := allData[newGfq[1]*elemSize : newGfq[2]*elemSize]
	if string(got[0]) != string(want0) {
		t.Fatalf("rank 0 local = %v, want %v", got[0], want0)
	}
	if string(got[1]) != string(want1) {
		t.Fatalf("rank 1 local = %v, want %v", got[1], want1)
	}
}

func TestReadFieldWithoutBoundPartitionFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nopart.p4d")
	backend := comm.OSBackend{}
	comms := comm.NewGroup(1)

	err := comm.RunOnAll(comms, func(c *comm.Communicator) error {
		ctx, err := OpenCreate(c, backend, path, CreateParams{Dim: quadtree.Dim2D, GlobalFirstQuadrant: []int64{0, 1}})
		if err != nil {
			return err
		}
		if err := WriteField(ctx, 1, []byte{9}, ""); err != nil {
			return err
		}
		return Close(ctx)
	})
	if err != nil {
		t.Fatal(err)
	}

	err = comm.RunOnAll(comms, func(c *comm.Communicator) error {
		ctx, _, err := OpenRead(c, backend, path, quadtree.Dim2D, nil)
		if err != nil {
			return err
		}
		defer Close(ctx)
		var local []byte
		return ReadField(ctx, 1, nil, &local, nil)
	})
	if ioerr.ClassOf(err) != ioerr.ClassArgument {
		t.Fatalf("err class = %v, want ClassArgument (err=%v)", ioerr.ClassOf(err), err)
	}
}

func TestReadFieldDataSizeMismatchIsClassIO(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "mismatch.p4d")
	backend := comm.OSBackend{}
	comms := comm.NewGroup(1)

	err := comm.RunOnAll(comms, func(c *comm.Communicator) error {
		ctx, err := OpenCreate(c, backend, path, CreateParams{Dim: quadtree.Dim2D, GlobalFirstQuadrant: []int64{0, 2}})
		if err != nil {
			return err
		}
		if err := WriteField(ctx, 4, []byte{1, 2, 3, 4, 5, 6, 7, 8}, "field A"); err != nil {
			return err
		}
		return Close(ctx)
	})
	if err != nil {
		t.Fatal(err)
	}

	err = comm.RunOnAll(comms, func(c *comm.Communicator) error {
		ctx, _, err := OpenRead(c, backend, path, quadtree.Dim2D, nil)
		if err != nil {
			return err
		}
		defer Close(ctx)
		var local []byte
		// elem_size on read (2) disagrees with the elem_size the file was
		// written with (4): spec §7/§8, "data_size in file != caller's
		// elem_size on field read: fails with ERR_IO".
		return ReadField(ctx, 2, []int64{0, 2}, &local, nil)
	})
	if ioerr.ClassOf(err) != ioerr.ClassIO {
		t.Fatalf("err class = %v, want ClassIO (err=%v)", ioerr.ClassOf(err), err)
	}
}

// countLyingFile wraps a comm.File and under-reports the byte count
// returned by WriteAtAll, while still performing the full write, so the
// caller's short-I/O detection fires without actually corrupting the file.
type countLyingFile struct {
	comm.File
	lieOnWrite bool
}

func (f *countLyingFile) WriteAtAll(offset int64, buf []byte) (int, error) {
	n, err := f.File.WriteAtAll(offset, buf)
	if f.lieOnWrite && err == nil && n > 0 {
		n--
	}
	return n, err
}

// countLyingBackend opens the real OS backend but wraps every handle it
// hands out in a countLyingFile, injecting a short-write count without any
// actual I/O fault.
type countLyingBackend struct {
	comm.Backend
}

func (b countLyingBackend) Open(path string, mode comm.OpenMode) (comm.File, error) {
	f, err := b.Backend.Open(path, mode)
	if err != nil {
		return nil, err
	}
	return &countLyingFile{File: f, lieOnWrite: true}, nil
}

func TestWriteFieldCountMismatchIsClassCount(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "countfault.p4d")
	backend := countLyingBackend{comm.OSBackend{}}
	comms := comm.NewGroup(1)

	err := comm.RunOnAll(comms, func(c *comm.Communicator) error {
		ctx, err := OpenCreate(c, backend, path, CreateParams{Dim: quadtree.Dim2D, GlobalFirstQuadrant: []int64{0, 2}})
		if err != nil {
			return err
		}
		return WriteField(ctx, 4, []byte{1, 2, 3, 4, 5, 6, 7, 8}, "field A")
	})
	if ioerr.ClassOf(err) != ioerr.ClassCount {
		t.Fatalf("err class = %v, want ClassCount (err=%v)", ioerr.ClassOf(err), err)
	}
}

func TestInfoWalkerMalformedTrailer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "trailer.p4d")
	backend := comm.OSBackend{}
	comms := comm.NewGroup(1)

	err := comm.RunOnAll(comms, func(c *comm.Communicator) error {
		ctx, err := OpenCreate(c, backend, path, CreateParams{Dim: quadtree.Dim2D, GlobalFirstQuadrant: []int64{0, 0}})
		if err != nil {
			return err
		}
		if err := WriteHeader(ctx, 3, []byte("abc"), "section one"); err != nil {
			return err
		}
		return Close(ctx)
	})
	if err != nil {
		t.Fatal(err)
	}

	// Append a truncated, unparsable section header after the valid one.
	f, err := osAppend(path, []byte{'H', ' ', '0'})
	if err != nil {
		t.Fatal(err)
	}
	_ = f

	userString, sections, err := Info(comms[0], backend, path)
	if err != nil {
		t.Fatal(err)
	}
	if len(sections) != 1 {
		t.Fatalf("len(sections) = %d, want 1 (trailing garbage should be dropped)", len(sections))
	}
	_ = userString
}
