package fsutil

import (
	"os"
	"path/filepath"
	"time"
)

// FakeFileSystem is an in-memory FileSystem for unit tests. It can be
// configured to fail specific calls by number, letting tests exercise
// error paths (disk full mid-write, permission denied, corrupt read)
// without touching the real disk.
type FakeFileSystem struct {
	files map[string][]byte
	dirs  map[string]bool

	readCallCount  int
	failReadAtCall int
	failReadErr    error

	writeCallCount  int
	failWriteAtCall int
	failWriteErr    error

	failOpenForWrite error
	failRemove       error
	failStat         error

	chunkWriteCounts map[string]int
}

// NewFakeFileSystem returns an empty in-memory FileSystem.
func NewFakeFileSystem() *FakeFileSystem {
	return &FakeFileSystem{
		files:            make(map[string][]byte),
		dirs:             make(map[string]bool),
		chunkWriteCounts: make(map[string]int),
	}
}

// ChunkWriteCount reports how many Write/WriteAt calls were issued against
// a name via OpenForWrite, across every handle opened for it. Used to
// assert on the exact number of overwrite passes secure delete performs.
func (f *FakeFileSystem) ChunkWriteCount(name string) int { return f.chunkWriteCounts[name] }

// Seed pre-populates a file, as if it had already been written to disk.
func (f *FakeFileSystem) Seed(name string, data []byte) {
	f.files[name] = append([]byte(nil), data...)
}

// FailReadAtCall makes the Nth call to ReadFile return err.
func (f *FakeFileSystem) FailReadAtCall(n int, err error) {
	f.failReadAtCall = n
	f.failReadErr = err
}

// FailWriteAtCall makes the Nth call to WriteFile return err.
func (f *FakeFileSystem) FailWriteAtCall(n int, err error) {
	f.failWriteAtCall = n
	f.failWriteErr = err
}

// FailOpenForWrite makes every OpenForWrite call return err.
func (f *FakeFileSystem) FailOpenForWrite(err error) { f.failOpenForWrite = err }

// FailRemove makes every Remove call return err.
func (f *FakeFileSystem) FailRemove(err error) { f.failRemove = err }

// FailStat makes every Stat call return err.
func (f *FakeFileSystem) FailStat(err error) { f.failStat = err }

// WriteCallCount returns how many times WriteFile has been called.
func (f *FakeFileSystem) WriteCallCount() int { return f.writeCallCount }

// Contents returns the current bytes stored at name, or nil if absent.
func (f *FakeFileSystem) Contents(name string) ([]byte, bool) {
	b, ok := f.files[name]
	return b, ok
}

func (f *FakeFileSystem) ReadFile(name string) ([]byte, error) {
	f.readCallCount++
	if f.failReadAtCall > 0 && f.readCallCount == f.failReadAtCall {
		return nil, f.failReadErr
	}
	data, ok := f.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return append([]byte(nil), data...), nil
}

func (f *FakeFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	f.writeCallCount++
	if f.failWriteAtCall > 0 && f.writeCallCount == f.failWriteAtCall {
		return f.failWriteErr
	}
	f.files[name] = append([]byte(nil), data...)
	return nil
}

func (f *FakeFileSystem) OpenForWrite(name string) (File, error) {
	if f.failOpenForWrite != nil {
		return nil, f.failOpenForWrite
	}
	data, ok := f.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return &fakeFile{fs: f, name: name, data: append([]byte(nil), data...)}, nil
}

func (f *FakeFileSystem) Remove(name string) error {
	if f.failRemove != nil {
		return f.failRemove
	}
	if _, ok := f.files[name]; !ok {
		return os.ErrNotExist
	}
	delete(f.files, name)
	return nil
}

func (f *FakeFileSystem) Stat(name string) (os.FileInfo, error) {
	if f.failStat != nil {
		return nil, f.failStat
	}
	data, ok := f.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return fakeFileInfo{name: filepath.Base(name), size: int64(len(data))}, nil
}

func (f *FakeFileSystem) MkdirAll(path string, perm os.FileMode) error {
	f.dirs[path] = true
	return nil
}

// fakeFile is the in-memory File returned by OpenForWrite. Each Write/
// WriteAt call is tracked individually so tests can assert on exact chunk
// counts (e.g. "secure delete issues exactly four 1 MiB writes").
type fakeFile struct {
	fs     *FakeFileSystem
	name   string
	data   []byte
	pos    int64
	writes int
}

func (ff *fakeFile) Write(p []byte) (int, error) {
	ff.writes++
	ff.fs.chunkWriteCounts[ff.name]++
	end := ff.pos + int64(len(p))
	if end > int64(len(ff.data)) {
		grown := make([]byte, end)
		copy(grown, ff.data)
		ff.data = grown
	}
	copy(ff.data[ff.pos:end], p)
	ff.pos = end
	ff.fs.files[ff.name] = ff.data
	return len(p), nil
}

func (ff *fakeFile) WriteAt(p []byte, off int64) (int, error) {
	ff.writes++
	ff.fs.chunkWriteCounts[ff.name]++
	end := off + int64(len(p))
	if end > int64(len(ff.data)) {
		grown := make([]byte, end)
		copy(grown, ff.data)
		ff.data = grown
	}
	copy(ff.data[off:end], p)
	ff.fs.files[ff.name] = ff.data
	return len(p), nil
}

func (ff *fakeFile) Sync() error { return nil }
func (ff *fakeFile) Close() error {
	ff.fs.files[ff.name] = ff.data
	return nil
}

// WriteCount reports how many Write/WriteAt calls were issued against this
// open file handle.
func (ff *fakeFile) WriteCount() int { return ff.writes }

type fakeFileInfo struct {
	name string
	size int64
}

func (i fakeFileInfo) Name() string       { return i.name }
func (i fakeFileInfo) Size() int64        { return i.size }
func (i fakeFileInfo) Mode() os.FileMode  { return 0600 }
func (i fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (i fakeFileInfo) IsDir() bool        { return false }
func (i fakeFileInfo) Sys() any           { return nil }
