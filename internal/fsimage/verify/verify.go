// Package verify checks a finished image: every block must decode, the
// pointer graph must form the tree the builder writes, and an optional
// sidecar digest must match.
package verify

import (
	"fmt"
	"io"

	"github.com/zeebo/xxh3"
	"golang.org/x/exp/mmap"

	"github.com/keshon/blockfs/internal/config"
	"github.com/keshon/blockfs/internal/fs"
	"github.com/keshon/blockfs/internal/fsimage/format"
	"github.com/keshon/blockfs/internal/fsimage/writer"
	"github.com/keshon/blockfs/internal/logger"
	"github.com/keshon/blockfs/internal/util"
)

// blocks decoded per task
const batchSize = 256

var mmapOpen = mmap.Open

// Verifier checks images. FS is used for the checksum sidecar; the image
// itself is memory mapped from the host.
type Verifier struct {
	FS      fs.FS
	Workers int // <= 0 means one per CPU
	Log     *logger.Logger
}

// New returns a Verifier.
func New(fsys fs.FS, workers int, log *logger.Logger) *Verifier {
	return &Verifier{FS: fsys, Workers: workers, Log: log}
}

type span struct{ start, end int }

// Verify maps the image at path and checks it. Damage inside the image is
// reported in the Report; the error is reserved for files that cannot be
// read or are not a whole number of blocks.
func (v *Verifier) Verify(path string) (*Report, error) {
	ra, err := mmapOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open image %q: %w", path, err)
	}
	defer ra.Close()

	size := int64(ra.Len())
	if size == 0 {
		return nil, fmt.Errorf("%w: %q is empty", ErrMalformedImage, path)
	}
	if size%format.BlockSize != 0 {
		return nil, fmt.Errorf("%w: %q is %d bytes, not a multiple of %d", ErrMalformedImage, path, size, format.BlockSize)
	}

	n := int(size / format.BlockSize)
	records := make([]format.Record, n)
	decodeErrs := make([]error, n)

	var spans []span
	for s := 0; s < n; s += batchSize {
		spans = append(spans, span{s, min(s+batchSize, n)})
	}
	err = util.Parallel(spans, v.Workers, func(sp span) error {
		buf := make([]byte, format.BlockSize)
		for i := sp.start; i < sp.end; i++ {
			if _, err := ra.ReadAt(buf, format.Index(i).Offset()); err != nil {
				return fmt.Errorf("read block %d: %w", i, err)
			}
			records[i], decodeErrs[i] = format.Decode(buf)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	v.Log.Debug("decoded %d blocks from %s", n, path)

	rep := &Report{Image: path, Size: size, Blocks: n}
	for i, rec := range records {
		if decodeErrs[i] != nil {
			continue
		}
		switch rec.Kind {
		case format.KindDirectory:
			rep.Directories++
		case format.KindFileEntry:
			rep.Files++
		case format.KindData:
			rep.Data++
		}
	}
	rep.Problems = checkStructure(records, decodeErrs)

	sum, err := digest(ra)
	if err != nil {
		return nil, fmt.Errorf("hash image %q: %w", path, err)
	}
	rep.Checksum = sum
	rep.ChecksumStatus = v.compareSidecar(path, sum)

	for _, p := range rep.Problems {
		v.Log.Warning("block %d (%s): %s: %s", p.Index, p.Kind, p.Status, p.Problem)
	}
	return rep, nil
}

func digest(ra *mmap.ReaderAt) (string, error) {
	h := xxh3.New()
	if _, err := io.Copy(h, io.NewSectionReader(ra, 0, int64(ra.Len()))); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum128().Bytes()), nil
}

func (v *Verifier) compareSidecar(path, sum string) ChecksumStatus {
	sidecar := config.ChecksumPath(path)
	if v.FS == nil || !v.FS.Exists(sidecar) {
		return ChecksumAbsent
	}
	data, err := v.FS.ReadFile(sidecar)
	if err != nil {
		v.Log.Warning("read checksum %s: %v", sidecar, err)
		return ChecksumMalformed
	}
	want, err := writer.ParseChecksum(data)
	if err != nil {
		v.Log.Warning("checksum %s: %v", sidecar, err)
		return ChecksumMalformed
	}
	if want != sum {
		return ChecksumMismatch
	}
	return ChecksumOK
}
