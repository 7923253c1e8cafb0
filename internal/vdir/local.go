package vdir

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// localFolder is a Directory backed directly by a filesystem path.
type localFolder struct {
	root string
}

// NewLocalFolder opens a Directory rooted at path.
func NewLocalFolder(path string) (Directory, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening local folder %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", path)
	}
	return &localFolder{root: path}, nil
}

func (l *localFolder) Root() string { return l.root }

func (l *localFolder) AllFiles(_ context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(l.root, p)
		if relErr != nil {
			return relErr
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", l.root, err)
	}
	return files, nil
}

func (l *localFolder) LoadFile(_ context.Context, relPath string) ([]byte, bool, error) {
	full, ok := safeJoin(l.root, relPath)
	if !ok {
		return nil, false, nil
	}
	data, err := os.ReadFile(full) //nolint:gosec // registry path is operator-supplied, not untrusted web input
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (l *localFolder) Close() error { return nil }

// safeJoin joins root and relPath, returning ok=false (never an error) if
// the result would escape root — the spec requires path-traversal to look
// like a miss, not a failure.
func safeJoin(root, relPath string) (string, bool) {
	full := filepath.Join(root, relPath)
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absFull, err := filepath.Abs(full)
	if err != nil {
		return "", false
	}
	if absFull != absRoot && !strings.HasPrefix(absFull, absRoot+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}
