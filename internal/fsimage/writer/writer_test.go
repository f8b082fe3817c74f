package writer_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeebo/xxh3"

	"github.com/keshon/blockfs/internal/config"
	"github.com/keshon/blockfs/internal/fs"
	"github.com/keshon/blockfs/internal/fsimage/format"
	"github.com/keshon/blockfs/internal/fsimage/writer"
)

func sampleBlocks() []format.Block {
	return []format.Block{
		&format.DirectoryBlock{Name: "root", Files: []format.Index{1}},
		&format.FileEntryBlock{Name: "a.txt", Data: []format.Index{2}},
		&format.DataBlock{Payload: []byte("hello")},
	}
}

func TestWriteToLayout(t *testing.T) {
	var buf bytes.Buffer
	n, sum, err := writer.WriteTo(&buf, sampleBlocks())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3*format.BlockSize || buf.Len() != 3*format.BlockSize {
		t.Fatalf("wrote %d bytes (buffer %d), want %d", n, buf.Len(), 3*format.BlockSize)
	}
	if sum != xxh3.Hash128(buf.Bytes()) {
		t.Error("digest does not match the written bytes")
	}

	for i, b := range sampleBlocks() {
		want, _ := format.Encode(b)
		off := format.Index(i).Offset()
		if !bytes.Equal(buf.Bytes()[off:off+format.BlockSize], want) {
			t.Errorf("block %d not at offset %d", i, off)
		}
	}
}

func TestWriteToEncodingFailure(t *testing.T) {
	var buf bytes.Buffer
	blocks := []format.Block{
		&format.DirectoryBlock{Name: "root"},
		&format.DataBlock{Payload: make([]byte, format.DataCapacity+1)},
	}
	_, _, err := writer.WriteTo(&buf, blocks)
	if !errors.Is(err, format.ErrEncodingSizeMismatch) {
		t.Fatalf("expected ErrEncodingSizeMismatch, got %v", err)
	}
	if buf.Len() != format.BlockSize {
		t.Fatalf("the bad block must not be written, got %d bytes", buf.Len())
	}
}

func TestWriteImageMemory(t *testing.T) {
	mem := fs.NewMemoryFS()
	w := writer.New(mem, true, nil)

	res, err := w.WriteImage("files/fs.img", sampleBlocks())
	if err != nil {
		t.Fatal(err)
	}
	if res.Blocks != 3 || res.Size != 3*format.BlockSize || res.Path != "files/fs.img" {
		t.Fatalf("unexpected result %+v", res)
	}

	data, err := mem.ReadFile("files/fs.img")
	if err != nil {
		t.Fatal(err)
	}
	if want := fmt.Sprintf("%x", xxh3.Hash128(data).Bytes()); res.Checksum != want {
		t.Errorf("checksum %s, want %s", res.Checksum, want)
	}

	side, err := mem.ReadFile(config.ChecksumPath("files/fs.img"))
	if err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}
	got, err := writer.ParseChecksum(side)
	if err != nil || got != res.Checksum {
		t.Fatalf("sidecar = %q (%v), want %s", side, err, res.Checksum)
	}

	entries, _ := mem.ReadDir("files")
	if len(entries) != 2 {
		t.Errorf("expected image and sidecar only, got %d entries", len(entries))
	}
}

func TestWriteImageOverwrites(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "fs.img")
	if err := os.WriteFile(out, bytes.Repeat([]byte{1}, 5*format.BlockSize), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(config.ChecksumPath(out), []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := writer.New(fs.NewOSFS(), false, nil)
	if _, err := w.WriteImage(out, sampleBlocks()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 3*format.BlockSize {
		t.Fatalf("image size %d, want %d", info.Size(), 3*format.BlockSize)
	}
	if _, err := os.Stat(config.ChecksumPath(out)); !os.IsNotExist(err) {
		t.Error("stale sidecar should be removed when checksums are off")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestWriteImageFailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "fs.img")
	prev := []byte("previous image")
	if err := os.WriteFile(out, prev, 0o644); err != nil {
		t.Fatal(err)
	}

	w := writer.New(fs.NewOSFS(), false, nil)
	bad := []format.Block{&format.FileEntryBlock{Name: string(make([]byte, format.NameLen))}}
	if _, err := w.WriteImage(out, bad); err == nil {
		t.Fatal("expected error")
	}

	data, _ := os.ReadFile(out)
	if !bytes.Equal(data, prev) {
		t.Error("previous image was modified")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestWriteImageRenameFailure(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "fs.img")

	orig := fs.GetRename()
	defer fs.SetRename(orig)
	fs.SetRename(func(oldPath, newPath string) error {
		return errors.New("rename-failed")
	})

	w := writer.New(fs.NewOSFS(), true, nil)
	if _, err := w.WriteImage(out, sampleBlocks()); err == nil || !strings.Contains(err.Error(), "rename-failed") {
		t.Fatalf("expected rename error, got %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("temp file left behind after failed rename: %v", entries)
	}
}

func TestParseChecksum(t *testing.T) {
	good := "0123456789abcdef0123456789ABCDEF  fs.img\n"
	if sum, err := writer.ParseChecksum([]byte(good)); err != nil || sum != "0123456789abcdef0123456789abcdef" {
		t.Errorf("ParseChecksum(good) = %q, %v", sum, err)
	}
	for _, bad := range []string{"", "   \n", "xyz  fs.img", "0123"} {
		if _, err := writer.ParseChecksum([]byte(bad)); err == nil {
			t.Errorf("ParseChecksum(%q) should fail", bad)
		}
	}
}
