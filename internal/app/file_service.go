package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
)

type DefaultFileService struct {
	logger *Logger

	mu            sync.RWMutex
	ignoreMatcher *IgnorePatternMatcher
}

func NewFileService(logger *Logger) *DefaultFileService {
	return &DefaultFileService{
		logger: logger,
	}
}

// SetIgnorePatterns configures the ignore pattern matcher. It is safe to call
// while a sort is listing files; listings already in progress keep the old
// patterns.
func (fs *DefaultFileService) SetIgnorePatterns(patterns string) {
	var matcher *IgnorePatternMatcher
	if strings.TrimSpace(patterns) != "" {
		matcher = NewIgnorePatternMatcher(patterns, fs.logger)
	}

	fs.mu.Lock()
	fs.ignoreMatcher = matcher
	fs.mu.Unlock()
}

func (fs *DefaultFileService) matcher() *IgnorePatternMatcher {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.ignoreMatcher
}

// ListFiles returns the names of the files directly inside dir, sorted.
// Subdirectories, symlinks to directories, devices, sockets, pipes and
// ignored names are left out.
func (fs *DefaultFileService) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	ignore := fs.matcher()
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		mode := entry.Type()
		if mode&(os.ModeNamedPipe|os.ModeSocket|os.ModeDevice|os.ModeCharDevice) != 0 {
			continue
		}
		if mode&os.ModeSymlink != 0 {
			// A link to a directory is treated as a directory
			if info, err := os.Stat(filepath.Join(dir, entry.Name())); err == nil && info.IsDir() {
				continue
			}
		}
		if ignore != nil && ignore.ShouldIgnore(entry.Name()) {
			fs.logger.Debug("Ignoring %s", filepath.Join(dir, entry.Name()))
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func (fs *DefaultFileService) EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

func (fs *DefaultFileService) Exists(path string) (bool, error) {
	// Lstat so a dangling symlink still occupies its name
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// UniqueDestination returns folder/name, or folder/<base>-<n><ext> with the
// smallest n >= 1 that is not taken.
func (fs *DefaultFileService) UniqueDestination(folder, name string) (string, error) {
	base, ext := splitExt(name)
	candidate := filepath.Join(folder, name)
	for n := 1; ; n++ {
		taken, err := fs.Exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = filepath.Join(folder, fmt.Sprintf("%s-%d%s", base, n, ext))
	}
}

// splitExt splits name into base and extension. Leading dots belong to the
// base, so ".bashrc" has no extension.
func splitExt(name string) (string, string) {
	trimmed := strings.TrimLeft(name, ".")
	ext := filepath.Ext(trimmed)
	return name[:len(name)-len(ext)], ext
}

// MoveFile renames from to to. When the two paths are on different volumes
// the file is copied and the source removed afterwards.
func (fs *DefaultFileService) MoveFile(from, to string) error {
	err := os.Rename(from, to)
	if err == nil {
		fs.logger.Debug("Successfully moved: %s -> %s", from, to)
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	fs.logger.Debug("Cross-device move, copying: %s -> %s", from, to)
	return fs.copyThenRemove(from, to)
}

func (fs *DefaultFileService) copyThenRemove(from, to string) error {
	info, err := os.Lstat(from)
	if err != nil {
		return err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(from)
		if err != nil {
			return fmt.Errorf("failed to read symlink: %w", err)
		}
		if err := os.Symlink(target, to); err != nil {
			return fmt.Errorf("failed to create symlink: %w", err)
		}
		if err := os.Remove(from); err != nil {
			os.Remove(to)
			return fmt.Errorf("failed to remove original symlink: %w", err)
		}
		return nil
	}

	// The data lands in a hidden temporary file first and only gets its final
	// name once fully written and synced.
	partial, err := fs.copyToTemp(from, filepath.Dir(to), info)
	if err != nil {
		return err
	}
	if err := os.Rename(partial, to); err != nil {
		os.Remove(partial)
		return fmt.Errorf("failed to finalize copy: %w", err)
	}
	if err := os.Remove(from); err != nil {
		os.Remove(to)
		return fmt.Errorf("failed to remove source after copy: %w", err)
	}
	return nil
}

func (fs *DefaultFileService) copyToTemp(from, dir string, info os.FileInfo) (string, error) {
	src, err := os.Open(from)
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(from)+".partial-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, src)
	if err == nil && written != info.Size() {
		err = fmt.Errorf("short copy: wrote %d of %d bytes", written, info.Size())
	}
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to copy %s: %w", from, err)
	}

	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		fs.logger.Debug("Could not keep permissions of %s: %v", from, err)
	}
	if err := os.Chtimes(tmpName, info.ModTime(), info.ModTime()); err != nil {
		fs.logger.Debug("Could not keep modification time of %s: %v", from, err)
	}
	return tmpName, nil
}

// PruneEmptyDirectories removes empty directories under dir, deepest first,
// and then dir itself if it ended up empty. Non-empty directories are kept.
func (fs *DefaultFileService) PruneEmptyDirectories(dir string) (int, error) {
	var dirs []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && path == dir {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	sort.Slice(dirs, func(i, j int) bool {
		return len(dirs[i]) > len(dirs[j])
	})

	removedCount := 0
	for _, d := range dirs {
		// os.Remove refuses non-empty directories
		if err := os.Remove(d); err == nil {
			removedCount++
			fs.logger.Debug("Removed empty directory: %s", d)
		}
	}

	return removedCount, nil
}
