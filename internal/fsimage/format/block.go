package format

import "fmt"

// Index addresses a block by its position in the image. The block's byte
// offset is Index * BlockSize.
type Index uint32

// Offset returns the byte offset of the block in the image.
func (i Index) Offset() int64 { return int64(i) * BlockSize }

// Kind identifies a block variant.
type Kind int

const (
	KindDirectory Kind = iota
	KindFileEntry
	KindData
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFileEntry:
		return "fentry"
	case KindData:
		return "data"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Block is one of *DirectoryBlock, *FileEntryBlock or *DataBlock.
// The set is closed; isBlock keeps other types out.
type Block interface {
	Kind() Kind
	isBlock()
}

// DirectoryBlock describes one host directory.
type DirectoryBlock struct {
	Name    string
	Subdirs []Index
	Files   []Index

	// ChildPaths holds the host paths of immediate subdirectories until the
	// link pass turns them into Subdirs. It is never encoded.
	ChildPaths []string
}

// Entries returns the pointer table in on-disk order.
func (d *DirectoryBlock) Entries() []Index {
	out := make([]Index, 0, len(d.Subdirs)+len(d.Files))
	out = append(out, d.Subdirs...)
	return append(out, d.Files...)
}

// FileEntryBlock describes one host file: its name and its data chunks.
type FileEntryBlock struct {
	Name string
	Data []Index
}

// DataBlock carries up to DataCapacity bytes of one file.
type DataBlock struct {
	Payload []byte
}

// Size is the payload length stored in the block header.
func (d *DataBlock) Size() int { return len(d.Payload) }

func (*DirectoryBlock) Kind() Kind { return KindDirectory }
func (*FileEntryBlock) Kind() Kind { return KindFileEntry }
func (*DataBlock) Kind() Kind      { return KindData }

func (*DirectoryBlock) isBlock() {}
func (*FileEntryBlock) isBlock() {}
func (*DataBlock) isBlock()      {}

var (
	_ Block = (*DirectoryBlock)(nil)
	_ Block = (*FileEntryBlock)(nil)
	_ Block = (*DataBlock)(nil)
)
