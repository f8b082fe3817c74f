package walk_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keshon/blockfs/internal/fs"
	"github.com/keshon/blockfs/internal/fsimage/format"
	"github.com/keshon/blockfs/internal/fsimage/registry"
	"github.com/keshon/blockfs/internal/fsimage/walk"
)

// Helper to create a Walker over a fresh in-memory tree rooted at "root".
func newTestWalker(t *testing.T, ignore ...string) (*walk.Walker, *fs.MemoryFS) {
	t.Helper()
	mem := fs.NewMemoryFS()
	if err := mem.MkdirAll("root", 0o755); err != nil {
		t.Fatal(err)
	}
	return walk.NewWalker(mem, registry.New(), walk.NewIgnore(ignore...), nil), mem
}

func blockAt[T format.Block](t *testing.T, r *registry.Registry, idx format.Index) T {
	t.Helper()
	b, err := r.At(idx)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := b.(T)
	if !ok {
		t.Fatalf("block %d is %s", idx, b.Kind())
	}
	return v
}

func TestWalkScenario(t *testing.T) {
	w, mem := newTestWalker(t)
	mem.MkdirAll("root/sub", 0o755)
	mem.WriteFile("root/a.txt", []byte("hello"), 0o644)
	mem.WriteFile("root/sub/b.txt", nil, 0o644)

	if err := w.Walk("root"); err != nil {
		t.Fatal(err)
	}

	r := w.Registry
	if r.Len() != 5 {
		t.Fatalf("expected 5 blocks, got %d", r.Len())
	}

	root := blockAt[*format.DirectoryBlock](t, r, 0)
	if root.Name != "root" {
		t.Errorf("root name = %q", root.Name)
	}
	if len(root.Files) != 1 || root.Files[0] != 1 {
		t.Errorf("root files = %v, want [1]", root.Files)
	}
	if len(root.ChildPaths) != 1 || root.ChildPaths[0] != filepath.Join("root", "sub") {
		t.Errorf("root child paths = %v", root.ChildPaths)
	}
	if len(root.Subdirs) != 0 {
		t.Error("subdir pointers must wait for the link pass")
	}

	a := blockAt[*format.FileEntryBlock](t, r, 1)
	if a.Name != "a.txt" || len(a.Data) != 1 || a.Data[0] != 2 {
		t.Errorf("unexpected a.txt entry %+v", a)
	}
	if data := blockAt[*format.DataBlock](t, r, 2); string(data.Payload) != "hello" {
		t.Errorf("payload = %q", data.Payload)
	}

	sub := blockAt[*format.DirectoryBlock](t, r, 3)
	if sub.Name != "sub" || len(sub.Files) != 1 || sub.Files[0] != 4 {
		t.Errorf("unexpected sub block %+v", sub)
	}
	if b := blockAt[*format.FileEntryBlock](t, r, 4); b.Name != "b.txt" || len(b.Data) != 0 {
		t.Errorf("unexpected b.txt entry %+v", b)
	}

	if idx, ok := r.LookupDirectory(filepath.Join("root", "sub")); !ok || idx != 3 {
		t.Errorf("sub mapped to %d, %v", idx, ok)
	}
	if idx, ok := r.LookupDirectory("root"); !ok || idx != 0 {
		t.Errorf("root mapped to %d, %v", idx, ok)
	}
}

func TestWalkDepthFirstOrder(t *testing.T) {
	w, mem := newTestWalker(t)
	mem.MkdirAll("root/a/deep", 0o755)
	mem.MkdirAll("root/b", 0o755)
	mem.WriteFile("root/z.txt", []byte("z"), 0o644)

	if err := w.Walk("root"); err != nil {
		t.Fatal(err)
	}

	// root, z.txt, z data, a, deep, b
	want := []string{"root", "z.txt", "", "a", "deep", "b"}
	if w.Registry.Len() != len(want) {
		t.Fatalf("expected %d blocks, got %d", len(want), w.Registry.Len())
	}
	for i, name := range want {
		b, _ := w.Registry.At(format.Index(i))
		switch v := b.(type) {
		case *format.DirectoryBlock:
			if v.Name != name {
				t.Errorf("block %d = dir %q, want %q", i, v.Name, name)
			}
		case *format.FileEntryBlock:
			if v.Name != name {
				t.Errorf("block %d = fentry %q, want %q", i, v.Name, name)
			}
		case *format.DataBlock:
			if name != "" {
				t.Errorf("block %d = data, want %q", i, name)
			}
		}
	}
}

func TestWalkDirectoryEntryLimit(t *testing.T) {
	for _, tc := range []struct {
		name     string
		children int
		dsStore  bool
		wantErr  bool
	}{
		{"at limit", format.MaxFilesPerDir, false, false},
		{"over limit", format.MaxFilesPerDir + 1, false, true},
		{"ignored entry counts", format.MaxFilesPerDir, true, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w, mem := newTestWalker(t, ".DS_Store")
			// one subdirectory, the rest empty files
			mem.MkdirAll("root/d", 0o755)
			for i := 1; i < tc.children; i++ {
				mem.WriteFile(fmt.Sprintf("root/f%04d", i), nil, 0o644)
			}
			if tc.dsStore {
				mem.WriteFile("root/.DS_Store", []byte("meta"), 0o644)
			}

			err := w.Walk("root")
			if tc.wantErr {
				if !errors.Is(err, format.ErrDirectoryTooLarge) {
					t.Fatalf("expected ErrDirectoryTooLarge, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			root := blockAt[*format.DirectoryBlock](t, w.Registry, 0)
			if len(root.ChildPaths)+len(root.Files) != tc.children {
				t.Fatalf("expected %d children, got %d", tc.children, len(root.ChildPaths)+len(root.Files))
			}
		})
	}
}

func TestWalkFileSizeLimit(t *testing.T) {
	w, mem := newTestWalker(t)
	mem.WriteFile("root/max.bin", make([]byte, format.MaxFileSize), 0o644)
	if err := w.Walk("root"); err != nil {
		t.Fatalf("MaxFileSize file should be accepted: %v", err)
	}
	entry := blockAt[*format.FileEntryBlock](t, w.Registry, 1)
	if len(entry.Data) != format.ChunkCount(format.MaxFileSize) {
		t.Fatalf("expected %d data blocks, got %d", format.ChunkCount(format.MaxFileSize), len(entry.Data))
	}

	w, mem = newTestWalker(t)
	mem.WriteFile("root/over.bin", make([]byte, format.MaxFileSize+1), 0o644)
	if err := w.Walk("root"); !errors.Is(err, format.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestWalkNameLimits(t *testing.T) {
	cases := []struct {
		name    string
		file    string
		dir     string
		wantErr error
	}{
		{name: "file 63", file: strings.Repeat("f", 63)},
		{name: "file 64", file: strings.Repeat("f", 64), wantErr: format.ErrNameTooLong},
		{name: "dir 63", dir: strings.Repeat("d", 63)},
		{name: "dir 64", dir: strings.Repeat("d", 64), wantErr: format.ErrNameTooLong},
		{name: "non-ascii", file: "naïve.txt", wantErr: format.ErrInvalidName},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, mem := newTestWalker(t)
			if tc.file != "" {
				mem.WriteFile("root/"+tc.file, []byte("x"), 0o644)
			}
			if tc.dir != "" {
				mem.MkdirAll("root/"+tc.dir, 0o755)
			}

			err := w.Walk("root")
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestWalkSkipsIgnored(t *testing.T) {
	w, mem := newTestWalker(t, ".DS_Store", "*.swp", "build/**", "cache")
	mem.MkdirAll("root/sub", 0o755)
	mem.MkdirAll("root/build/out", 0o755)
	mem.MkdirAll("root/cache", 0o755)
	mem.WriteFile("root/.DS_Store", []byte("meta"), 0o644)
	mem.WriteFile("root/sub/.DS_Store", []byte("meta"), 0o644)
	mem.WriteFile("root/sub/notes.swp", []byte("swap"), 0o644)
	mem.WriteFile("root/build/out/bin", []byte("bin"), 0o644)
	mem.WriteFile("root/sub/keep.txt", []byte("keep"), 0o644)

	if err := w.Walk("root"); err != nil {
		t.Fatal(err)
	}

	// root, sub, keep.txt, keep data
	if w.Registry.Len() != 4 {
		t.Fatalf("expected 4 blocks, got %d", w.Registry.Len())
	}
	root := blockAt[*format.DirectoryBlock](t, w.Registry, 0)
	if len(root.Files) != 0 || len(root.ChildPaths) != 1 {
		t.Fatalf("unexpected root children: files=%v dirs=%v", root.Files, root.ChildPaths)
	}
}

func TestWalkNotAFile(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(dir, "nowhere"), filepath.Join(root, "dangling")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	w := walk.NewWalker(fs.NewOSFS(), registry.New(), nil, nil)
	if err := w.Walk(root); !errors.Is(err, format.ErrNotAFile) {
		t.Fatalf("expected ErrNotAFile, got %v", err)
	}
}

func TestWalkSymlinkedDirectoryIsNotAFile(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	target := filepath.Join(dir, "elsewhere")
	for _, d := range []string{root, target} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Symlink(target, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	w := walk.NewWalker(fs.NewOSFS(), registry.New(), nil, nil)
	if err := w.Walk(root); !errors.Is(err, format.ErrNotAFile) {
		t.Fatalf("expected ErrNotAFile, got %v", err)
	}
}

func TestWalkRequiresEmptyRegistry(t *testing.T) {
	w, _ := newTestWalker(t)
	w.Registry.Append(&format.DirectoryBlock{Name: "stale"})
	if err := w.Walk("root"); err == nil {
		t.Fatal("expected error when the registry is not empty")
	}
}

func TestWalkMissingRoot(t *testing.T) {
	w, _ := newTestWalker(t)
	if err := w.Walk("nope"); err == nil {
		t.Fatal("expected error for a missing root")
	}
}

func TestWalkReadDirFailure(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	orig := fs.GetReadDir()
	defer fs.SetReadDir(orig)
	fs.SetReadDir(func(path string) ([]os.DirEntry, error) {
		if path == filepath.Join(root, "sub") {
			return nil, errors.New("readdir-failed")
		}
		return orig(path)
	})

	w := walk.NewWalker(fs.NewOSFS(), registry.New(), nil, nil)
	err := w.Walk(root)
	if err == nil || !strings.Contains(err.Error(), "readdir-failed") || !strings.Contains(err.Error(), "sub") {
		t.Fatalf("expected wrapped readdir error naming the directory, got %v", err)
	}
}
