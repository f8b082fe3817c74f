package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Record is the on-disk view of one block. Directory records do not say
// which pointers lead to subdirectories and which to files; that takes the
// kinds of the target blocks.
type Record struct {
	Kind     Kind
	Name     string
	Pointers []Index
	Payload  []byte
}

// Decode parses one encoded block. It rejects anything Encode could not
// have produced, including damaged padding.
func Decode(buf []byte) (Record, error) {
	if len(buf) != BlockSize {
		return Record{}, fmt.Errorf("%w: %d bytes, want %d", ErrCorruptBlock, len(buf), BlockSize)
	}

	tag := binary.LittleEndian.Uint32(buf[0:4])
	switch tag {
	case MagicDirectory:
		return decodeTable(buf, KindDirectory)
	case MagicFileEntry:
		return decodeTable(buf, KindFileEntry)
	}

	if tag > DataCapacity {
		return Record{}, fmt.Errorf("%w: unknown tag %#08x", ErrCorruptBlock, tag)
	}
	end := 4 + int(tag)
	if err := checkPadding(buf, end); err != nil {
		return Record{}, err
	}
	return Record{
		Kind:    KindData,
		Payload: append([]byte(nil), buf[4:end]...),
	}, nil
}

func decodeTable(buf []byte, kind Kind) (Record, error) {
	count := binary.LittleEndian.Uint32(buf[4:8])
	if count > MaxPointers {
		return Record{}, fmt.Errorf("%w: %s claims %d entries (max %d)", ErrCorruptBlock, kind, count, MaxPointers)
	}

	field := buf[8:HeaderLen]
	n := bytes.IndexByte(field, 0)
	if n < 0 {
		return Record{}, fmt.Errorf("%w: %s name is not NUL terminated", ErrCorruptBlock, kind)
	}
	for _, c := range field[n:] {
		if c != 0 {
			return Record{}, fmt.Errorf("%w: %s name padding is not NUL", ErrCorruptBlock, kind)
		}
	}

	ptrs := make([]Index, count)
	off := HeaderLen
	for i := range ptrs {
		ptrs[i] = Index(binary.LittleEndian.Uint32(buf[off : off+4]))
		off += 4
	}
	if err := checkPadding(buf, off); err != nil {
		return Record{}, err
	}

	return Record{Kind: kind, Name: string(field[:n]), Pointers: ptrs}, nil
}

func checkPadding(buf []byte, from int) error {
	for i := from; i < len(buf); i++ {
		if buf[i] != padByte {
			return fmt.Errorf("%w: padding byte %d is %#02x", ErrCorruptBlock, i, buf[i])
		}
	}
	return nil
}
