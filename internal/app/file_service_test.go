package app

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

func TestSplitExt(t *testing.T) {
	tests := []struct {
		name     string
		wantBase string
		wantExt  string
	}{
		{"photo.jpg", "photo", ".jpg"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"README", "README", ""},
		{".bashrc", ".bashrc", ""},
		{"..hidden.txt", "..hidden", ".txt"},
		{"trailing.", "trailing", "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, ext := splitExt(tt.name)
			if base != tt.wantBase || ext != tt.wantExt {
				t.Errorf("splitExt(%q) = (%q, %q), want (%q, %q)", tt.name, base, ext, tt.wantBase, tt.wantExt)
			}
		})
	}
}

func TestUniqueDestination(t *testing.T) {
	tempDir := t.TempDir()
	folder := filepath.Join(tempDir, "Images")
	fs := NewFileService(testLogger())

	got, err := fs.UniqueDestination(folder, "photo.jpg")
	if err != nil {
		t.Fatalf("UniqueDestination() returned error: %v", err)
	}
	if want := filepath.Join(folder, "photo.jpg"); got != want {
		t.Errorf("UniqueDestination() on missing folder = %q, want %q", got, want)
	}

	writeFile(t, filepath.Join(folder, "photo.jpg"), "a")
	got, _ = fs.UniqueDestination(folder, "photo.jpg")
	if want := filepath.Join(folder, "photo-1.jpg"); got != want {
		t.Errorf("UniqueDestination() after one collision = %q, want %q", got, want)
	}

	writeFile(t, filepath.Join(folder, "photo-1.jpg"), "b")
	got, _ = fs.UniqueDestination(folder, "photo.jpg")
	if want := filepath.Join(folder, "photo-2.jpg"); got != want {
		t.Errorf("UniqueDestination() after two collisions = %q, want %q", got, want)
	}
}

func TestListFiles_SkipsDirectoriesAndIgnored(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, filepath.Join(tempDir, "b.txt"), "b")
	writeFile(t, filepath.Join(tempDir, "a.png"), "a")
	writeFile(t, filepath.Join(tempDir, ".DS_Store"), "x")
	writeFile(t, filepath.Join(tempDir, "nested", "deep.txt"), "deep")
	if err := os.Symlink(filepath.Join(tempDir, "nested"), filepath.Join(tempDir, "link-to-dir")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	fs := NewFileService(testLogger())
	fs.SetIgnorePatterns(DefaultIgnorePatterns)

	names, err := fs.ListFiles(tempDir)
	if err != nil {
		t.Fatalf("ListFiles() returned error: %v", err)
	}

	expected := []string{"a.png", "b.txt"}
	if len(names) != len(expected) {
		t.Fatalf("ListFiles() = %v, want %v", names, expected)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("ListFiles()[%d] = %q, want %q", i, names[i], expected[i])
		}
	}
}

func TestListFiles_MissingDirectory(t *testing.T) {
	fs := NewFileService(testLogger())
	if _, err := fs.ListFiles(filepath.Join(t.TempDir(), "gone")); !os.IsNotExist(err) {
		t.Errorf("ListFiles() on missing directory error = %v, want not-exist", err)
	}
}

func TestMoveFile(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "report.pdf")
	dst := filepath.Join(tempDir, "Documents", "report.pdf")
	writeFile(t, src, "pdf content")
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		t.Fatal(err)
	}

	fs := NewFileService(testLogger())
	if err := fs.MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile() returned error: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("Source file still exists: %s", src)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "pdf content" {
		t.Errorf("Destination content = %q, %v; want %q", data, err, "pdf content")
	}
}

func TestCopyThenRemove(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "clip.mp4")
	dst := filepath.Join(tempDir, "Videos", "clip.mp4")
	writeFile(t, src, "video bytes")
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		t.Fatal(err)
	}

	fs := NewFileService(testLogger())
	if err := fs.copyThenRemove(src, dst); err != nil {
		t.Fatalf("copyThenRemove() returned error: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("Source file still exists: %s", src)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "video bytes" {
		t.Errorf("Destination content = %q, %v; want %q", data, err, "video bytes")
	}

	// No temporary file may be left next to the destination
	entries, _ := os.ReadDir(filepath.Dir(dst))
	if len(entries) != 1 {
		t.Errorf("Videos folder holds %d entries, want 1", len(entries))
	}
}

func TestCopyThenRemove_KeepsModeAndModTime(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "notes.txt")
	dst := filepath.Join(tempDir, "Documents", "notes.txt")
	writeFile(t, src, "notes")
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		t.Fatal(err)
	}
	modTime := time.Date(2020, time.March, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chmod(src, 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(src, modTime, modTime); err != nil {
		t.Fatal(err)
	}

	fs := NewFileService(testLogger())
	if err := fs.copyThenRemove(src, dst); err != nil {
		t.Fatalf("copyThenRemove() returned error: %v", err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("Stat(%s) returned error: %v", dst, err)
	}
	if got := info.Mode().Perm(); got != 0600 {
		t.Errorf("Destination mode = %v, want %v", got, os.FileMode(0600))
	}
	if !info.ModTime().Equal(modTime) {
		t.Errorf("Destination mod time = %v, want %v", info.ModTime(), modTime)
	}
}

// Run with -race: the rules window swaps the ignore list while a sort may be
// listing files on another goroutine.
func TestSetIgnorePatterns_ConcurrentWithListFiles(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, filepath.Join(tempDir, "keep.txt"), "keep")
	writeFile(t, filepath.Join(tempDir, "scratch.tmp"), "tmp")

	fs := NewFileService(testLogger())
	fs.SetIgnorePatterns(DefaultIgnorePatterns)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if i%2 == 0 {
				fs.SetIgnorePatterns("*.tmp")
			} else {
				fs.SetIgnorePatterns("")
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			names, err := fs.ListFiles(tempDir)
			if err != nil {
				t.Errorf("ListFiles() returned error: %v", err)
				return
			}
			if len(names) == 0 || names[0] != "keep.txt" {
				t.Errorf("ListFiles() = %v, want keep.txt first", names)
				return
			}
		}
	}()
	wg.Wait()

	fs.SetIgnorePatterns("*.tmp")
	names, err := fs.ListFiles(tempDir)
	if err != nil {
		t.Fatalf("ListFiles() returned error: %v", err)
	}
	if len(names) != 1 || names[0] != "keep.txt" {
		t.Errorf("ListFiles() after final SetIgnorePatterns = %v, want [keep.txt]", names)
	}
}

func TestPruneEmptyDirectories(t *testing.T) {
	tempDir := t.TempDir()
	emptyCategory := filepath.Join(tempDir, "Images")
	nestedEmpty := filepath.Join(emptyCategory, "a", "b")
	keptCategory := filepath.Join(tempDir, "Documents")

	if err := os.MkdirAll(nestedEmpty, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(keptCategory, "leftover.txt"), "keep me")

	fs := NewFileService(testLogger())

	removed, err := fs.PruneEmptyDirectories(emptyCategory)
	if err != nil {
		t.Fatalf("PruneEmptyDirectories() returned error: %v", err)
	}
	if removed != 3 {
		t.Errorf("PruneEmptyDirectories() removed %d directories, want 3", removed)
	}

	removed, err = fs.PruneEmptyDirectories(keptCategory)
	if err != nil {
		t.Fatalf("PruneEmptyDirectories() returned error: %v", err)
	}
	if removed != 0 {
		t.Errorf("PruneEmptyDirectories() removed %d directories from a non-empty folder, want 0", removed)
	}

	removed, err = fs.PruneEmptyDirectories(filepath.Join(tempDir, "missing"))
	if err != nil || removed != 0 {
		t.Errorf("PruneEmptyDirectories() on missing folder = (%d, %v), want (0, nil)", removed, err)
	}

	entries, _ := os.ReadDir(tempDir)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	if len(names) != 1 || names[0] != "Documents" {
		t.Errorf("Remaining entries = %v, want [Documents]", names)
	}
}
