// Package output writes assembled manual pages.
package output

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
)

// Sink receives finished pages keyed by their site-relative output path.
type Sink interface {
	Write(ctx context.Context, path string, content []byte) error
}

// DirSink writes pages below a root directory. Existing files are
// overwritten.
type DirSink struct {
	root string
}

// NewDirSink returns a sink rooted at dir.
func NewDirSink(dir string) *DirSink {
	return &DirSink{root: dir}
}

// Root returns the output directory.
func (s *DirSink) Root() string { return s.root }

// Write implements Sink.
func (s *DirSink) Write(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "create output directory").
			Fatal().
			WithContext("path", full).
			Build()
	}
	if err := os.WriteFile(full, content, 0o600); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write output file").
			Fatal().
			WithContext("path", full).
			Build()
	}
	return nil
}

// Read returns the content previously written at path, if any.
func (s *DirSink) Read(path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- full is validated to stay under the sink root.
	return os.ReadFile(full)
}

// Clean removes dir (relative to the root) and everything under it.
func (s *DirSink) Clean(dir string) error {
	full, err := s.resolve(dir)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(full); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "clean output directory").
			WithContext("path", full).
			Build()
	}
	return nil
}

// resolve maps a site-relative path to a file below root, rejecting
// anything that would escape it.
func (s *DirSink) resolve(path string) (string, error) {
	if s.root == "" {
		return "", derrors.ValidationError("output directory is required").Build()
	}
	if path == "" {
		return "", derrors.ValidationError("output path is required").Build()
	}
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", derrors.ValidationError("output path must be relative to the output directory").
			WithContext("path", path).
			Build()
	}
	full := filepath.Join(s.root, clean)
	rel, err := filepath.Rel(s.root, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", derrors.ValidationError("output path escapes output directory").
			WithContext("path", path).
			Build()
	}
	return full, nil
}

// MemorySink keeps written pages in memory, in write order.
type MemorySink struct {
	mu    sync.Mutex
	order []string
	files map[string][]byte
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// Write implements Sink.
func (m *MemorySink) Write(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; !ok {
		m.order = append(m.order, path)
	}
	m.files[path] = slices.Clone(content)
	return nil
}

// Paths returns the written paths in first-write order.
func (m *MemorySink) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.order)
}

// Get returns the content written at path.
func (m *MemorySink) Get(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[path]
	return b, ok
}

// Read returns the content written at path. Unwritten paths report
// fs.ErrNotExist.
func (m *MemorySink) Read(path string) ([]byte, error) {
	if b, ok := m.Get(path); ok {
		return b, nil
	}
	return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
}
