package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ferrors "git.home.luguber.info/inful/sidebargen/internal/foundation/errors"
	"git.home.luguber.info/inful/sidebargen/internal/linkresolve"
	"git.home.luguber.info/inful/sidebargen/internal/registry"
)

// Artifact is the JSON document consumed by the site renderer.
type Artifact struct {
	BuildID     string             `json:"buildId"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Mode        linkresolve.Mode   `json:"mode"`
	Sidebars    *registry.Registry `json:"sidebars"`
	Navbar      []NavbarEntry      `json:"navbar"`
}

// Artifact assembles the artifact of a successful build.
func (r *Result) Artifact() Artifact {
	navbar := r.Navbar
	if navbar == nil {
		navbar = []NavbarEntry{}
	}
	return Artifact{
		BuildID:     r.BuildID,
		GeneratedAt: r.StartTime.UTC(),
		Mode:        r.Mode,
		Sidebars:    r.Registry,
		Navbar:      navbar,
	}
}

// MarshalArtifact encodes the artifact as indented JSON.
func (r *Result) MarshalArtifact() ([]byte, error) {
	if r.Registry == nil || !r.Registry.Sealed() {
		return nil, fmt.Errorf("build %s has no sealed registry", r.BuildID)
	}
	data, err := json.MarshalIndent(r.Artifact(), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (b *Builder) writeArtifact(res *Result, path string) error {
	data, err := res.MarshalArtifact()
	if err != nil {
		return ferrors.InternalError("encode sidebars artifact").WithCause(err).Build()
	}
	if err := writeFileAtomic(path, data); err != nil {
		return ferrors.FileSystemError("write sidebars artifact").WithCause(err).WithContext("path", path).Build()
	}
	res.OutputPath = path
	return nil
}

// writeFileAtomic replaces path via a temporary file in the same directory.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
