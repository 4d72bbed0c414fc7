package save

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when no adventure is stored under a name.
var ErrNotFound = errors.New("adventure not found")

// Backend stores archive bytes by adventure name.
type Backend interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	// Locate describes where name is stored, for display.
	Locate(name string) string
}

// FileBackend keeps each adventure in <root>/<name>.grow.
type FileBackend struct {
	root string
}

// NewFileBackend creates a backend rooted at dir. The directory is created
// on first write.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{root: dir}
}

// Root returns the directory adventures live in.
func (b *FileBackend) Root() string {
	return b.root
}

func (b *FileBackend) path(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	return filepath.Join(b.root, name+Extension), nil
}

func (b *FileBackend) List(context.Context) ([]string, error) {
	entries, err := os.ReadDir(b.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", b.root, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Extension {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), Extension))
	}
	sort.Strings(names)
	return names, nil
}

func (b *FileBackend) Read(_ context.Context, name string) ([]byte, error) {
	p, err := b.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return data, nil
}

// Write replaces the archive atomically through a temporary file.
func (b *FileBackend) Write(_ context.Context, name string, data []byte) error {
	p, err := b.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(b.root, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", b.root, err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("replacing %s: %w", p, err)
	}
	return nil
}

func (b *FileBackend) Locate(name string) string {
	p, err := b.path(name)
	if err != nil {
		return ""
	}
	return p
}

// checkName rejects names that cannot be stored as a single file.
func checkName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("adventure name is empty")
	case strings.ContainsAny(name, `/\`), name == ".", name == "..":
		return fmt.Errorf("invalid adventure name %q", name)
	}
	return nil
}
