// Package manifest records what a manual build read and wrote, so an
// unchanged rebuild can be detected and skipped.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/inful/mdfp"

	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
)

// FileName is the manifest location relative to the output directory.
const FileName = "manual/.manifest.json"

// BuildManifest represents a complete record of a build's inputs and outputs.
type BuildManifest struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Inputs    Inputs    `json:"inputs"`
	Outputs   Outputs   `json:"outputs"`
	Status    string    `json:"status"`
	Duration  int64     `json:"duration_ms"`
}

// Inputs captures everything that influences the rendered pages.
type Inputs struct {
	Sources         []SourceInput `json:"sources"`
	IdentifiersHash string        `json:"identifiers_hash,omitempty"`
	TemplatesHash   string        `json:"templates_hash,omitempty"`
}

// SourceInput is one manual document.
type SourceInput struct {
	Label       string `json:"label"`
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
}

// Outputs captures the pages written by the build.
type Outputs struct {
	Pages []PageOutput `json:"pages"`
}

// PageOutput is one emitted page.
type PageOutput struct {
	Path        string `json:"path"`
	Source      string `json:"source,omitempty"`
	Fingerprint string `json:"fingerprint"`
}

// PageFingerprint fingerprints rendered page HTML.
func PageFingerprint(html []byte) string {
	return mdfp.CalculateFingerprintFromParts("", string(html))
}

// ToJSON serializes the manifest to JSON.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a deterministic hash of the manifest's inputs. Two builds
// with the same hash render identical pages.
func (m *BuildManifest) Hash() (string, error) {
	data, err := json.Marshal(m.Inputs)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Unchanged reports whether prev describes a successful build with the same
// inputs as m.
func (m *BuildManifest) Unchanged(prev *BuildManifest) bool {
	if prev == nil || prev.Status != StatusSuccess {
		return false
	}
	a, err := m.Hash()
	if err != nil {
		return false
	}
	b, err := prev.Hash()
	if err != nil {
		return false
	}
	return a == b
}

// Build statuses recorded in manifests.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Reader reads previously written output files.
type Reader interface {
	Read(path string) ([]byte, error)
}

// Load reads the manifest at path through r. A missing manifest yields
// (nil, nil).
func Load(r Reader, path string) (*BuildManifest, error) {
	data, err := r.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "read build manifest").
			WithContext("path", path).
			Build()
	}
	m, err := FromJSON(data)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryValidation, "decode build manifest").
			WithContext("path", path).
			Build()
	}
	return m, nil
}

// OutputsIntact reports whether every page recorded in m can still be read
// through r with an unchanged fingerprint.
func (m *BuildManifest) OutputsIntact(r Reader) bool {
	for _, p := range m.Outputs.Pages {
		data, err := r.Read(p.Path)
		if err != nil || PageFingerprint(data) != p.Fingerprint {
			return false
		}
	}
	return true
}

// HashFile returns the sha256 of a file's content, or "" for an empty path.
func HashFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	// #nosec G304 -- path comes from configuration.
	data, err := os.ReadFile(path)
	if err != nil {
		return "", derrors.WrapError(err, derrors.CategoryFileSystem, "hash input file").
			WithContext("path", path).
			Build()
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// HashDir returns a sha256 over every regular file below dir (relative path
// and content, in lexical order), or "" for an empty dir.
func HashDir(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	h := sha256.New()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		// #nosec G304 -- path is below the configured template directory.
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(h, "%s\x00%d\x00", filepath.ToSlash(rel), len(data))
		_, _ = h.Write(data)
		return nil
	})
	if err != nil {
		return "", derrors.WrapError(err, derrors.CategoryFileSystem, "hash input directory").
			WithContext("path", dir).
			Build()
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
