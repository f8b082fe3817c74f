package chunk

import (
	"errors"
	"fmt"
	"io"

	"github.com/keshon/blockfs/internal/fsimage/format"
	"github.com/keshon/blockfs/internal/fsimage/registry"
)

// Opener is the part of the host filesystem the chunker reads from.
type Opener interface {
	Open(path string) (io.ReadSeekCloser, error)
}

// Chunker turns host files into data blocks.
type Chunker struct {
	FS       Opener
	Registry *registry.Registry
}

// NewChunker creates a Chunker registering into reg.
func NewChunker(fsys Opener, reg *registry.Registry) *Chunker {
	return &Chunker{FS: fsys, Registry: reg}
}

// SplitFile reads path once, front to back, and registers one data block per
// DataCapacity bytes. It returns the new block indices in file order. An
// empty file yields no blocks.
func (c *Chunker) SplitFile(path string) ([]format.Index, error) {
	if c.Registry == nil {
		return nil, fmt.Errorf("no registry attached")
	}

	f, err := c.FS.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file %q: %w", path, err)
	}
	defer f.Close()

	var (
		ptrs  []format.Index
		total int64
	)

	for {
		buf := make([]byte, format.DataCapacity)
		n, rerr := io.ReadFull(f, buf)
		if n > 0 {
			total += int64(n)
			if total > format.MaxFileSize {
				return nil, fmt.Errorf("%w: %q exceeds %d bytes", format.ErrFileTooLarge, path, format.MaxFileSize)
			}
			idx, err := c.Registry.Append(&format.DataBlock{Payload: buf[:n]})
			if err != nil {
				return nil, fmt.Errorf("register chunk of %q: %w", path, err)
			}
			ptrs = append(ptrs, idx)
		}

		if rerr != nil {
			if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("read file %q: %w", path, rerr)
		}
	}

	return ptrs, nil
}
