// Package link resolves the subdirectory pointers the walker leaves as host
// paths into block indices.
package link

import (
	"fmt"

	"github.com/keshon/blockfs/internal/fsimage/format"
	"github.com/keshon/blockfs/internal/fsimage/registry"
)

// Resolve rewrites the subdirectory pointers of every directory block in reg
// from its recorded child paths. It can run more than once on the same
// registry with the same result.
func Resolve(reg *registry.Registry) error {
	if reg == nil {
		return fmt.Errorf("resolve: nil registry")
	}

	for i, b := range reg.Blocks() {
		dir, ok := b.(*format.DirectoryBlock)
		if !ok {
			continue
		}

		subdirs := make([]format.Index, 0, len(dir.ChildPaths))
		for _, p := range dir.ChildPaths {
			idx, ok := reg.LookupDirectory(p)
			if !ok {
				return fmt.Errorf("%w: %q (child of block %d)", format.ErrUnresolvedPath, p, i)
			}
			subdirs = append(subdirs, idx)
		}
		dir.Subdirs = subdirs
	}
	return nil
}
