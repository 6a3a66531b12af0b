package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidator_ValidateNewDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	v := NewValidator()
	tests := []struct {
		name     string
		path     string
		selected []string
		wantErr  error
	}{
		{name: "empty", path: " ", wantErr: ErrEmptyDirectory},
		{name: "missing", path: filepath.Join(dir, "nope"), wantErr: ErrPathNotFound},
		{name: "file", path: file, wantErr: ErrNotDirectory},
		{name: "duplicate", path: dir + string(filepath.Separator), selected: []string{dir}, wantErr: ErrDuplicateDirectory},
		{name: "valid", path: dir, selected: []string{filepath.Join(dir, "other")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateNewDirectory(tt.path, tt.selected)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateNewDirectory(%q) = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidator_ValidateSortRequest(t *testing.T) {
	v := NewValidator()
	if err := v.ValidateSortRequest(SortRequest{}); !errors.Is(err, ErrNoDirectories) {
		t.Errorf("empty request error = %v, want %v", err, ErrNoDirectories)
	}
	if err := v.ValidateSortRequest(SortRequest{Directories: []string{"/tmp", ""}}); !errors.Is(err, ErrEmptyDirectory) {
		t.Errorf("blank directory error = %v, want %v", err, ErrEmptyDirectory)
	}
	// Vanished folders are reported by the sort itself
	if err := v.ValidateSortRequest(SortRequest{Directories: []string{"/does/not/exist"}}); err != nil {
		t.Errorf("ValidateSortRequest() = %v, want nil", err)
	}
}

func TestItemError(t *testing.T) {
	err := &ItemError{Op: "move", Path: "/a/b.txt", Err: ErrMoveFailed}
	if got, want := err.Error(), "move /a/b.txt: could not move file"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrMoveFailed) {
		t.Error("ItemError does not unwrap to its cause")
	}
}
