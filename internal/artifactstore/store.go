package artifactstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists mission artifacts keyed by (missionID, name).
type Store interface {
	Put(ctx context.Context, missionID, name string, content []byte) (string, error)
	Get(ctx context.Context, missionID, name string) ([]byte, error)
}

// LocalStore writes artifacts under root/<missionID>/<name>. Put returns
// the absolute file path, which doubles as the file-typed artifact value
// the verifier checks.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("artifactstore: root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: abs}, nil
}

func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Put(ctx context.Context, missionID, name string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel, err := cleanName(name)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(s.root, missionID)
	if err := os.MkdirAll(filepath.Join(dir, filepath.Dir(rel)), 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, rel)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *LocalStore) Get(ctx context.Context, missionID, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(s.root, missionID, rel))
}

// cleanName rejects traversal outside the mission directory.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("artifactstore: name is required")
	}
	rel := filepath.Clean(name)
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("artifactstore: invalid name %q", name)
	}
	return rel, nil
}
