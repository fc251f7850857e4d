package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// FileSlots stores each slot as "<key>.json" in a billy filesystem.
// Writes go to a hidden temp file first and are renamed into place.
type FileSlots struct {
	fs billy.Filesystem
}

// NewFileSlots returns slots rooted at the filesystem's root.
// Use osfs.New(dir) in production and memfs.New() in tests.
func NewFileSlots(fs billy.Filesystem) *FileSlots {
	return &FileSlots{fs: fs}
}

func slotFile(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid slot key %q", key)
	}
	return key + ".json", nil
}

// Load returns the payload stored under key, or ErrSlotEmpty.
func (f *FileSlots) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := slotFile(key)
	if err != nil {
		return nil, err
	}
	data, err := util.ReadFile(f.fs, name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %q: %w", key, err)
	}
	return data, nil
}

// Save replaces the payload stored under key.
func (f *FileSlots) Save(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := slotFile(key)
	if err != nil {
		return err
	}

	tmpName := "." + key + ".tmp"
	tmp, err := f.fs.Create(tmpName)
	if err != nil {
		return fmt.Errorf("save slot %q: %w", key, err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("save slot %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("save slot %q: %w", key, err)
	}
	if err := f.fs.Rename(tmpName, name); err != nil {
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("save slot %q: %w", key, err)
	}
	return nil
}
