// Package registry is the append-only block arena of an image under
// construction. A block's position in the arena is its permanent index.
package registry

import (
	"fmt"
	"math"

	"github.com/keshon/blockfs/internal/fsimage/format"
)

// Registry owns every block of one image plus the host-path lookup for
// directory blocks. It is not safe for concurrent use.
type Registry struct {
	blocks []format.Block
	dirs   map[string]format.Index
	counts [3]int
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{dirs: make(map[string]format.Index)}
}

// Append registers b and returns its index.
func (r *Registry) Append(b format.Block) (format.Index, error) {
	if b == nil {
		return 0, fmt.Errorf("append: nil block")
	}
	if uint64(len(r.blocks)) > math.MaxUint32 {
		return 0, fmt.Errorf("append: registry full at %d blocks", len(r.blocks))
	}
	idx := format.Index(len(r.blocks))
	r.blocks = append(r.blocks, b)
	r.counts[b.Kind()]++
	return idx, nil
}

// At returns the block at idx.
func (r *Registry) At(idx format.Index) (format.Block, error) {
	if int(idx) >= len(r.blocks) {
		return nil, fmt.Errorf("block %d out of range (have %d)", idx, len(r.blocks))
	}
	return r.blocks[idx], nil
}

// Len is the number of registered blocks.
func (r *Registry) Len() int { return len(r.blocks) }

// Count returns how many blocks of kind k are registered.
func (r *Registry) Count(k format.Kind) int { return r.counts[k] }

// Blocks returns the arena in index order. Callers must not modify the slice.
func (r *Registry) Blocks() []format.Block { return r.blocks }

// MapDirectory records that the host directory at path lives at idx.
func (r *Registry) MapDirectory(path string, idx format.Index) {
	r.dirs[path] = idx
}

// LookupDirectory returns the index recorded for a host directory path.
func (r *Registry) LookupDirectory(path string) (format.Index, bool) {
	idx, ok := r.dirs[path]
	return idx, ok
}

// Directories reports how many directory paths are mapped.
func (r *Registry) Directories() int { return len(r.dirs) }
