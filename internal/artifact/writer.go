package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/dyluth/hive/internal/derive"
)

// Writer writes JSON documents into one output directory.
type Writer struct {
	fs  afero.Fs
	dir string
}

// NewWriter creates a writer rooted at dir on fs.
func NewWriter(fs afero.Fs, dir string) *Writer {
	return &Writer{fs: fs, dir: dir}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Encode renders v as two-space indented JSON with a trailing newline.
// HTML characters are not escaped.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON encodes v and replaces {dir}/{name} with it. The content is
// written to a temp file in the same directory and renamed into place, so
// readers see either the old file or the new one.
func (w *Writer) WriteJSON(name string, v any) (string, error) {
	data, err := Encode(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", name, err)
	}
	dest := filepath.Join(w.dir, name)
	if err := WriteFileAtomic(w.fs, dest, data, 0644); err != nil {
		return "", err
	}
	return dest, nil
}

// WriteAll writes every site artifact for d and returns the written paths.
// It stops at the first failure.
func (w *Writer) WriteAll(d derive.State) ([]string, error) {
	var paths []string
	for _, a := range Project(d) {
		path, err := w.WriteJSON(a.Name, a.Value)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteFileAtomic writes data to a temp file next to path, then renames it
// over path. The temp file is removed on any failure.
func WriteFileAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := fs.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set mode on %s: %w", path, err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	committed = true
	return nil
}
