// Package writer streams encoded blocks into an image file.
package writer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/keshon/blockfs/internal/config"
	"github.com/keshon/blockfs/internal/fs"
	"github.com/keshon/blockfs/internal/fsimage/format"
	"github.com/keshon/blockfs/internal/logger"
)

// Result describes a finished image.
type Result struct {
	Path     string `json:"path"`
	Blocks   int    `json:"blocks"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}

// Writer places images on FS.
type Writer struct {
	FS       fs.FS
	Checksum bool // also write <image>.xxh3
	Log      *logger.Logger
}

// New returns a Writer on fsys.
func New(fsys fs.FS, checksum bool, log *logger.Logger) *Writer {
	return &Writer{FS: fsys, Checksum: checksum, Log: log}
}

// WriteTo encodes blocks in index order into w and returns the number of
// bytes written together with the xxh3-128 digest of those bytes. Encoding
// of a block completes before any of it reaches w.
func WriteTo(w io.Writer, blocks []format.Block) (int64, xxh3.Uint128, error) {
	h := xxh3.New()
	mw := io.MultiWriter(w, h)

	var n int64
	for i, b := range blocks {
		buf, err := format.Encode(b)
		if err != nil {
			return n, xxh3.Uint128{}, fmt.Errorf("encode block %d: %w", i, err)
		}
		written, err := mw.Write(buf)
		n += int64(written)
		if err != nil {
			return n, xxh3.Uint128{}, fmt.Errorf("write block %d: %w", i, err)
		}
	}
	return n, h.Sum128(), nil
}

// WriteImage writes blocks to path, replacing any existing file. The image
// is assembled in a temp file beside path and renamed into place, so a
// failed run leaves the previous image untouched.
func (w *Writer) WriteImage(path string, blocks []format.Block) (Result, error) {
	dir := filepath.Dir(path)
	if err := w.FS.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir %q: %w", dir, err)
	}

	tmp, tmpPath, err := w.FS.CreateTempFile(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return Result{}, fmt.Errorf("create temp file in %q: %w", dir, err)
	}

	size, sum, err := WriteTo(tmp, blocks)
	if err != nil {
		tmp.Close()
		w.FS.Remove(tmpPath)
		return Result{}, err
	}
	if err := tmp.Close(); err != nil {
		w.FS.Remove(tmpPath)
		return Result{}, fmt.Errorf("close temp file %q: %w", tmpPath, err)
	}
	if err := w.FS.Rename(tmpPath, path); err != nil {
		w.FS.Remove(tmpPath)
		return Result{}, fmt.Errorf("rename temp file %q to %q: %w", tmpPath, path, err)
	}
	w.Log.Debug("wrote %s (%d blocks, %d bytes)", path, len(blocks), size)

	res := Result{
		Path:     path,
		Blocks:   len(blocks),
		Size:     size,
		Checksum: fmt.Sprintf("%x", sum.Bytes()),
	}

	sidecar := config.ChecksumPath(path)
	if !w.Checksum {
		// a digest from an earlier build would no longer match
		if w.FS.Exists(sidecar) {
			if err := w.FS.Remove(sidecar); err != nil {
				return res, fmt.Errorf("remove stale checksum %q: %w", sidecar, err)
			}
		}
		return res, nil
	}

	line := FormatChecksum(res.Checksum, path)
	if err := w.FS.WriteFile(sidecar, []byte(line), 0o644); err != nil {
		return res, fmt.Errorf("write checksum %q: %w", sidecar, err)
	}
	w.Log.Debug("wrote checksum %s", sidecar)
	return res, nil
}

// FormatChecksum renders a sidecar line: "<hex>  <image base name>\n".
func FormatChecksum(sum, imagePath string) string {
	return sum + "  " + filepath.Base(imagePath) + "\n"
}

// ParseChecksum extracts the digest from a sidecar file's contents.
func ParseChecksum(data []byte) (string, error) {
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", fmt.Errorf("empty checksum file")
	}
	sum := strings.ToLower(fields[0])
	if len(sum) != 32 || strings.Trim(sum, "0123456789abcdef") != "" {
		return "", fmt.Errorf("malformed checksum %q", fields[0])
	}
	return sum, nil
}
