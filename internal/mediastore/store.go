// Package mediastore is the filesystem MediaStore named throughout spec §4.5
// and §6 ("{MEDIA_ROOT}/frame/...", "{MEDIA_ROOT}/person_crop/..."), grounded
// directly on the Python predecessor's storage/media_store.py
// FileSystemMediaStore. The teacher's object-storage client (MinIO) is not
// used here — see DESIGN.md for why that dependency was dropped rather than
// adapted.
package mediastore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type Store struct {
	root string
}

func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &Store{root: root}, nil
}

// FramePath returns the deterministic path for a frame, tagged by writer so
// Person and Vehicle writers never collide on the same file (spec §4.5
// step 1). tag must be "_person" or "_vehicle".
func (s *Store) FramePath(frameID uuid.UUID, tag string) string {
	return filepath.Join(s.root, "frame", fmt.Sprintf("%s%s.jpg", frameID, tag))
}

// CropPath returns a fresh, always-unique path for a crop.
func (s *Store) CropPath(kind string, frameID uuid.UUID) string {
	return filepath.Join(s.root, kind, fmt.Sprintf("%s_%s.jpg", frameID, uuid.New()))
}

// Save writes bytes to an absolute path under the store's root, creating
// parent directories as needed.
func (s *Store) Save(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write media file: %w", err)
	}
	return nil
}

// Exists reports whether a path already has a file on disk, used by the
// notifier to decide between a media message and a text-only message.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *Store) Load(path string) ([]byte, error) {
	return os.ReadFile(path)
}
