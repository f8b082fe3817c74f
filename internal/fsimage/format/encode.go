package format

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Encode serializes b into exactly BlockSize bytes.
//
//	directory: magic | count | name[64] | subdir ptrs | file ptrs | 0xFF...
//	fentry:    magic | count | name[64] | data ptrs | 0xFF...
//	data:      size | payload | 0xFF...
func Encode(b Block) ([]byte, error) {
	buf := make([]byte, 0, BlockSize)

	var err error
	switch v := b.(type) {
	case *DirectoryBlock:
		buf, err = appendTable(buf, MagicDirectory, v.Name, v.Entries())
	case *FileEntryBlock:
		buf, err = appendTable(buf, MagicFileEntry, v.Name, v.Data)
	case *DataBlock:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(v.Payload)))
		buf = append(buf, v.Payload...)
	default:
		return nil, fmt.Errorf("encode: unknown block type %T", b)
	}
	if err != nil {
		return nil, err
	}

	for len(buf) < BlockSize {
		buf = append(buf, padByte)
	}
	if len(buf) != BlockSize {
		return nil, fmt.Errorf("%w: %s block encoded to %d bytes, want %d",
			ErrEncodingSizeMismatch, b.Kind(), len(buf), BlockSize)
	}
	return buf, nil
}

// EncodeTo encodes b and writes it to w.
func EncodeTo(w io.Writer, b Block) error {
	buf, err := Encode(b)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// appendTable writes the header shared by directory and file-entry blocks
// followed by the pointer table.
func appendTable(buf []byte, magic uint32, name string, ptrs []Index) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	buf = binary.LittleEndian.AppendUint32(buf, magic)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(ptrs)))

	var field [NameLen]byte
	copy(field[:], name)
	buf = append(buf, field[:]...)

	for _, p := range ptrs {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(p))
	}
	return buf, nil
}
