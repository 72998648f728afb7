// Package fsutil provides the file reads and writes gorazor performs on templates and config:
// reads that remember what they saw, change detection against that record, and atomic writes.
package fsutil

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrNilFileInfo is returned when a nil FileInfo is passed.
	ErrNilFileInfo = errors.New("nil FileInfo")

	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")
)

// FileInfo records the state of a file when it was read.
type FileInfo struct {
	Path    string
	Mode    os.FileMode
	ModTime time.Time
	Size    int64

	// Hash is the SHA-256 of the content.
	Hash [32]byte
}

// SameStat reports whether stat matches the recorded size and modification time.
func (fi *FileInfo) SameStat(stat fs.FileInfo) bool {
	return stat.Size() == fi.Size && stat.ModTime().Equal(fi.ModTime)
}

// SameContent reports whether content hashes to the recorded hash.
func (fi *FileInfo) SameContent(content []byte) bool {
	return sha256.Sum256(content) == fi.Hash
}

// ReadFile reads a file and records its state.
func ReadFile(ctx context.Context, path string) ([]byte, *FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, classify(path, "stat", err)
	}
	if stat.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, classify(path, "read", err)
	}

	return content, newFileInfo(path, stat, content), nil
}

// Reread reads the file prev describes again and reports whether its content changed.
// When size and modification time still match, the file is not read and content is nil.
// A file that was touched but not edited reports changed false with its new FileInfo.
func Reread(ctx context.Context, prev *FileInfo) ([]byte, *FileInfo, bool, error) {
	if prev == nil {
		return nil, nil, false, ErrNilFileInfo
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, false, fmt.Errorf("reread file: %w", err)
	}

	stat, err := os.Stat(prev.Path)
	if err != nil {
		return nil, nil, false, classify(prev.Path, "stat", err)
	}
	if prev.SameStat(stat) {
		return nil, prev, false, nil
	}

	content, info, err := ReadFile(ctx, prev.Path)
	if err != nil {
		return nil, nil, false, err
	}
	return content, info, info.Hash != prev.Hash, nil
}

func newFileInfo(path string, stat fs.FileInfo, content []byte) *FileInfo {
	return &FileInfo{
		Path:    path,
		Mode:    stat.Mode(),
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
		Hash:    sha256.Sum256(content),
	}
}

// classify wraps err with the matching sentinel error.
func classify(path, op string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
	default:
		return fmt.Errorf("%s %s: %w", op, path, err)
	}
}
