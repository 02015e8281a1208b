// Package storage manages the renderer's on-disk layout: per-request temp
// workspaces under <root>/tmp and published outputs under <root>/outputs.
// Publishing is atomic so a consumer polling the output directory never sees
// a partially written file.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Store struct {
	tmpRoot    string
	outputRoot string
}

// New prepares the storage layout under root, creating the tmp and outputs
// directories if missing.
func New(root string) (*Store, error) {
	s := &Store{
		tmpRoot:    filepath.Join(root, "tmp"),
		outputRoot: filepath.Join(root, "outputs"),
	}
	for _, dir := range []string{s.tmpRoot, s.outputRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
		}
	}
	return s, nil
}

// OutputRoot is the directory published artifacts land in.
func (s *Store) OutputRoot() string {
	return s.outputRoot
}

// CreateWorkdir makes a fresh scratch directory for one render. The request
// ID is sanitized for the filesystem and suffixed with a random tag so
// retries of the same request never collide.
func (s *Store) CreateWorkdir(requestID string) (string, error) {
	tag := uuid.New().String()[:8]
	dir := filepath.Join(s.tmpRoot, fmt.Sprintf("%s-%s", sanitize(requestID), tag))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create workdir: %w", err)
	}
	return dir, nil
}

// RemoveWorkdir deletes a scratch directory and everything under it. Paths
// outside the tmp root are refused.
func (s *Store) RemoveWorkdir(dir string) error {
	rel, err := filepath.Rel(s.tmpRoot, dir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("refusing to remove %s: not a workdir", dir)
	}
	return os.RemoveAll(dir)
}

// OutputPath is where the published artifact for a request lives.
func (s *Store) OutputPath(filename string) string {
	return filepath.Join(s.outputRoot, sanitize(filename))
}

// Publish moves a finished artifact from the workdir into the output
// directory atomically. Rename is used when source and destination share a
// filesystem; otherwise the file is copied to a temp name next to the
// destination and renamed into place.
func (s *Store) Publish(src, filename string) (string, error) {
	dst := s.OutputPath(filename)

	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}

	tmp := dst + ".partial"
	if err := copyFile(src, tmp); err != nil {
		return "", fmt.Errorf("failed to stage output: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to publish output: %w", err)
	}
	_ = os.Remove(src)
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// sanitize keeps request-derived names safe as single path components.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	// Leading dots would hide the directory and read as parent-path
	// prefixes to RemoveWorkdir's relative check.
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "render"
	}
	return out
}
