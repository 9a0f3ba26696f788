package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"authflow_automation/domain/interfaces"
)

type artifacts struct {
	fs  afero.Fs
	dir string
}

// NewArtifacts - creates artifact storage rooted at dir. The directory is
// created on the first Save, so an unwritable dir only fails captures.
func NewArtifacts(fs afero.Fs, dir string) interfaces.ArtifactStore {
	return &artifacts{fs: fs, dir: dir}
}

// Save - writes data under name inside the artifact directory
func (a *artifacts) Save(name string, data []byte) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}

	if err := a.fs.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	path := filepath.Join(a.dir, name)
	if err := afero.WriteFile(a.fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Dir - returns the artifact directory
func (a *artifacts) Dir() string {
	return a.dir
}
