package fs

import (
	"fmt"
	"io"

	"golang.org/x/exp/mmap"
)

// MappedFS wraps another FS and serves Open through a read-only memory map.
// Source files are read once, front to back, so a mapping avoids copying
// them through an intermediate read buffer. Everything else passes through.
type MappedFS struct {
	FS
}

func NewMappedFS(base FS) *MappedFS {
	return &MappedFS{FS: base}
}

// Open maps path and returns a seekable reader over the mapping.
// Closing the reader unmaps the file.
func (m *MappedFS) Open(path string) (io.ReadSeekCloser, error) {
	ra, err := mmapOpen(path)
	if err != nil {
		return nil, fmt.Errorf("mmap %q: %w", path, err)
	}
	return &mappedFile{
		SectionReader: io.NewSectionReader(ra, 0, int64(ra.Len())),
		ra:            ra,
	}, nil
}

// ReadFile reads the whole mapping into memory.
func (m *MappedFS) ReadFile(path string) ([]byte, error) {
	rc, err := m.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

type mappedFile struct {
	*io.SectionReader
	ra *mmap.ReaderAt
}

func (f *mappedFile) Close() error { return f.ra.Close() }
