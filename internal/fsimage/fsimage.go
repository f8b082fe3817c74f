// Package fsimage turns a host directory tree into a flat image of
// 4096-byte blocks. The pipeline runs walk, link, encode and write in that
// order on a single goroutine; the whole tree is held in memory until the
// image is written.
package fsimage

import (
	"fmt"

	"github.com/keshon/blockfs/internal/config"
	"github.com/keshon/blockfs/internal/fs"
	"github.com/keshon/blockfs/internal/fsimage/format"
	"github.com/keshon/blockfs/internal/fsimage/link"
	"github.com/keshon/blockfs/internal/fsimage/registry"
	"github.com/keshon/blockfs/internal/fsimage/walk"
	"github.com/keshon/blockfs/internal/fsimage/writer"
	"github.com/keshon/blockfs/internal/logger"
	"github.com/keshon/blockfs/internal/progress"
)

// Builder converts directory trees read from one filesystem into images.
type Builder struct {
	src      fs.FS
	out      fs.FS
	ignore   []string
	log      *logger.Logger
	progress *progress.ProgressTracker
	checksum bool
}

// Summary describes a built image.
type Summary struct {
	writer.Result
	Source      string `json:"source"`
	Directories int    `json:"directories"`
	Files       int    `json:"files"`
	DataBlocks  int    `json:"data_blocks"`
}

// New creates a Builder reading from fsys. Images are written to fsys too
// unless WithOutputFS says otherwise.
func New(fsys fs.FS, opts ...Option) (*Builder, error) {
	if fsys == nil {
		return nil, fmt.Errorf("source filesystem is nil")
	}
	b := &Builder{
		src:    fsys,
		out:    fsys,
		ignore: append([]string(nil), config.DefaultIgnoredFiles...),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Build walks root and links the result. The returned registry holds every
// block in image order with subdirectory pointers resolved.
func (b *Builder) Build(root string) (*registry.Registry, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty input path", format.ErrInvalidInput)
	}
	info, err := b.src.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", format.ErrInvalidInput, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", format.ErrInvalidInput, root)
	}

	reg := registry.New()
	w := walk.NewWalker(b.src, reg, walk.NewIgnore(b.ignore...), b.log)
	w.Progress = b.progress
	if err := w.Walk(root); err != nil {
		return nil, err
	}
	b.log.Info("walked %s: %d directories, %d files, %d data blocks",
		root, reg.Count(format.KindDirectory), reg.Count(format.KindFileEntry), reg.Count(format.KindData))

	// every directory block must be reachable through the path map
	if mapped, dirs := reg.Directories(), reg.Count(format.KindDirectory); mapped != dirs {
		return nil, fmt.Errorf("%w: %d directory paths mapped for %d directory blocks", format.ErrUnresolvedPath, mapped, dirs)
	}

	if err := link.Resolve(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Create builds the image of input and writes it to output, replacing any
// file already there.
func (b *Builder) Create(input, output string) (Summary, error) {
	if output == "" {
		return Summary{}, fmt.Errorf("%w: empty output path", format.ErrInvalidInput)
	}
	if b.out.IsDir(output) {
		return Summary{}, fmt.Errorf("%w: output %q is a directory", format.ErrInvalidInput, output)
	}

	reg, err := b.Build(input)
	if err != nil {
		return Summary{}, err
	}

	res, err := writer.New(b.out, b.checksum, b.log).WriteImage(output, reg.Blocks())
	if err != nil {
		return Summary{}, err
	}
	b.log.Info("wrote %s: %d blocks, %d bytes", res.Path, res.Blocks, res.Size)

	return Summary{
		Result:      res,
		Source:      input,
		Directories: reg.Count(format.KindDirectory),
		Files:       reg.Count(format.KindFileEntry),
		DataBlocks:  reg.Count(format.KindData),
	}, nil
}

// Create is a convenience wrapper that builds input into output on fsys
// with default settings.
func Create(fsys fs.FS, input, output string) (Summary, error) {
	b, err := New(fsys)
	if err != nil {
		return Summary{}, err
	}
	return b.Create(input, output)
}
