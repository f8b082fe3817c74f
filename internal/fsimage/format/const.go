package format

// On-disk constants. Changing any of them breaks compatibility with existing
// images and readers.
const (
	BlockSize      = 4096
	MagicDirectory = 0xDEADD150
	// MagicFileEntry tags file-entry blocks. It is the value historically
	// named the "data" magic; raw data blocks carry no magic at all.
	MagicFileEntry = 0xDEADDA7A
	NameLen        = 64
	MaxFilesPerDir = 1000
	MaxFileSize    = 1000 * BlockSize

	// DataCapacity is the payload room in a data block after its size field.
	DataCapacity = BlockSize - 4

	// HeaderLen covers magic, entry count and name.
	HeaderLen = 8 + NameLen

	// MaxPointers is how many 4-byte indices fit after a header.
	MaxPointers = (BlockSize - HeaderLen) / 4

	padByte = 0xFF
)

// ChunkCount is the number of data blocks a file of size bytes occupies.
func ChunkCount(size int64) int {
	if size <= 0 {
		return 0
	}
	return int((size + DataCapacity - 1) / DataCapacity)
}
