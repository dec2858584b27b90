package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ti-dashboard/ti-data/internal/model"
)

type JSONStore struct {
	Root string // e.g. "website/public/data"; empty means paths are used as given
}

func NewJSONStore(root string) *JSONStore {
	return &JSONStore{Root: root}
}

func (s *JSONStore) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(s.Root, rel)
}

func (s *JSONStore) Exists(rel string) bool {
	_, err := os.Stat(s.Path(rel))
	return err == nil
}

func (s *JSONStore) Size(rel string) (int64, error) {
	info, err := os.Stat(s.Path(rel))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// EncodeJSON renders v the way every output file is written: two-space
// indent, no HTML escaping, trailing newline.
func EncodeJSON(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *JSONStore) WriteJSON(rel string, v any) error {
	b, err := EncodeJSON(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", rel, err)
	}
	return writeAtomic(s.Path(rel), b)
}

func (s *JSONStore) WriteDocument(rel string, doc *model.Document) error {
	if doc == nil {
		return fmt.Errorf("write %s: nil document", rel)
	}
	return s.WriteJSON(rel, doc)
}

func (s *JSONStore) ReadRaw(rel string) ([]byte, error) {
	return os.ReadFile(s.Path(rel))
}

func (s *JSONStore) ReadDocument(rel string) (*model.Document, error) {
	b, err := s.ReadRaw(rel)
	if err != nil {
		return nil, err
	}
	var doc model.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", rel, err)
	}
	return &doc, nil
}

// writeAtomic writes body next to path and renames it into place so readers
// never observe a partial file.
func writeAtomic(path string, body []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
