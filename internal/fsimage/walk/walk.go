package walk

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/keshon/blockfs/internal/fsimage/chunk"
	"github.com/keshon/blockfs/internal/fsimage/format"
	"github.com/keshon/blockfs/internal/fsimage/registry"
	"github.com/keshon/blockfs/internal/logger"
	"github.com/keshon/blockfs/internal/progress"
)

// Source is the host filesystem capability the walker depends on.
type Source interface {
	ReadDir(path string) ([]os.DirEntry, error)
	Stat(path string) (os.FileInfo, error)
	Open(path string) (io.ReadSeekCloser, error)
}

// Walker registers the blocks of a source tree: one directory block per
// directory, one file-entry block per file and the data blocks behind it.
type Walker struct {
	FS       Source
	Registry *registry.Registry
	Chunker  *chunk.Chunker
	Ignore   *Ignore
	Log      *logger.Logger
	Progress *progress.ProgressTracker
}

// NewWalker creates a Walker over fsys registering into reg.
func NewWalker(fsys Source, reg *registry.Registry, ignore *Ignore, log *logger.Logger) *Walker {
	return &Walker{
		FS:       fsys,
		Registry: reg,
		Chunker:  chunk.NewChunker(fsys, reg),
		Ignore:   ignore,
		Log:      log,
	}
}

// Walk visits root depth-first: a directory, then its files, then each
// subdirectory in the order the host lists them. Subdirectory pointers are
// left as host paths in DirectoryBlock.ChildPaths for the link pass.
func (w *Walker) Walk(root string) error {
	if w.Registry.Len() != 0 {
		return fmt.Errorf("walk %q: registry already holds %d blocks", root, w.Registry.Len())
	}
	root = filepath.Clean(root)
	return w.walkDir(root, ".", RootName(root))
}

// RootName is the name stored in block 0 for a walk rooted at root.
func RootName(root string) string {
	return filepath.Base(filepath.Clean(root))
}

func (w *Walker) walkDir(dirPath, rel, name string) error {
	entries, err := w.FS.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dirPath, err)
	}

	// ignored entries still count toward the limit
	if n := len(entries); n > format.MaxFilesPerDir {
		return fmt.Errorf("%w: %q has %d entries (limit %d)", format.ErrDirectoryTooLarge, dirPath, n, format.MaxFilesPerDir)
	}

	var subdirs, files []os.DirEntry
	for _, e := range entries {
		if w.Ignore.Match(path.Join(rel, e.Name())) {
			w.Log.Info("Skipping %s", filepath.Join(dirPath, e.Name()))
			continue
		}
		if e.IsDir() {
			subdirs = append(subdirs, e)
		} else {
			files = append(files, e)
		}
	}

	if err := format.ValidateName(name); err != nil {
		return fmt.Errorf("directory %q: %w", dirPath, err)
	}

	dir := &format.DirectoryBlock{Name: name}
	idx, err := w.Registry.Append(dir)
	if err != nil {
		return fmt.Errorf("register directory %q: %w", dirPath, err)
	}
	w.Registry.MapDirectory(dirPath, idx)
	w.Log.Debug("found directory %s (block %d)", dirPath, idx)

	for _, d := range subdirs {
		dir.ChildPaths = append(dir.ChildPaths, filepath.Join(dirPath, d.Name()))
	}

	for _, f := range files {
		fidx, err := w.addFile(filepath.Join(dirPath, f.Name()), f.Name())
		if err != nil {
			return err
		}
		dir.Files = append(dir.Files, fidx)
	}
	w.Progress.SetCurrent(w.Registry.Len())

	for i, d := range subdirs {
		if err := w.walkDir(dir.ChildPaths[i], path.Join(rel, d.Name()), d.Name()); err != nil {
			return err
		}
	}
	return nil
}

// addFile registers the file entry for filePath and then its data blocks,
// so the entry always precedes its chunks.
func (w *Walker) addFile(filePath, name string) (format.Index, error) {
	info, err := w.FS.Stat(filePath)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", format.ErrNotAFile, filePath, err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: %q (mode %s)", format.ErrNotAFile, filePath, info.Mode())
	}
	if err := format.ValidateName(name); err != nil {
		return 0, fmt.Errorf("file %q: %w", filePath, err)
	}
	if info.Size() > format.MaxFileSize {
		return 0, fmt.Errorf("%w: %q is %d bytes (limit %d)", format.ErrFileTooLarge, filePath, info.Size(), format.MaxFileSize)
	}

	entry := &format.FileEntryBlock{Name: name}
	idx, err := w.Registry.Append(entry)
	if err != nil {
		return 0, fmt.Errorf("register file %q: %w", filePath, err)
	}

	entry.Data, err = w.Chunker.SplitFile(filePath)
	if err != nil {
		return 0, err
	}
	w.Log.Debug("registered fentry %s (block %d, %d data blocks)", filePath, idx, len(entry.Data))
	return idx, nil
}
