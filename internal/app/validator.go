package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyDirectory      = errors.New("directory path cannot be empty")
	ErrNoDirectories       = errors.New("no folder selected")
	ErrDuplicateDirectory  = errors.New("this path has already been chosen")
	ErrNotDirectory        = errors.New("path is not a directory")
	ErrPathNotFound        = errors.New("source directory does not exist")
	ErrCannotCreateDir     = errors.New("could not create directory")
	ErrMoveFailed          = errors.New("could not move file")
	ErrUndoTargetMissing   = errors.New("moved file no longer exists")
	ErrRestoreTargetExists = errors.New("original path is occupied")
	ErrEngineBusy          = errors.New("a sort or undo is already running")
	ErrEmptyRuleName       = errors.New("rule name cannot be empty")
	ErrNoExtensions        = errors.New("rule needs at least one extension")
	ErrReservedName        = errors.New("name is reserved for a built-in counter")
	ErrInvalidRuleName     = errors.New("rule name is not a valid folder name")
	ErrJournalAttached     = errors.New("a journal is already attached")
)

// ItemError describes a failure on a single file or directory. Runs keep
// going after one; the errors are collected into the result.
type ItemError struct {
	Op   string
	Path string
	Err  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) ValidateDirectory(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyDirectory
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}
	return nil
}

// ValidateNewDirectory checks a folder the user wants to add to the list.
func (v *Validator) ValidateNewDirectory(path string, selected []string) error {
	if err := v.ValidateDirectory(path); err != nil {
		return err
	}
	clean := filepath.Clean(path)
	for _, existing := range selected {
		if filepath.Clean(existing) == clean {
			return ErrDuplicateDirectory
		}
	}
	return nil
}

func (v *Validator) ValidateSortRequest(req SortRequest) error {
	if len(req.Directories) == 0 {
		return ErrNoDirectories
	}
	for _, dir := range req.Directories {
		if strings.TrimSpace(dir) == "" {
			return ErrEmptyDirectory
		}
	}
	return nil
}

func (v *Validator) ValidateRule(name string, extensions []string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyRuleName
	}
	if isReservedName(name) {
		return fmt.Errorf("%w: %s", ErrReservedName, name)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidRuleName, name)
	}
	if len(normalizeExtensions(extensions)) == 0 {
		return ErrNoExtensions
	}
	return nil
}
