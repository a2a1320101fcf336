package mediastore

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramePath_IsDeterministicAndTagged(t *testing.T) {
	s := &Store{root: "/media"}
	id := uuid.New()

	personPath := s.FramePath(id, "_person")
	vehiclePath := s.FramePath(id, "_vehicle")

	assert.NotEqual(t, personPath, vehiclePath, "person/vehicle writers must not collide on the same frame path")
	assert.Equal(t, s.FramePath(id, "_person"), personPath, "the same frame_id and tag must always produce the same path")
	assert.Equal(t, filepath.Join("/media", "frame", id.String()+"_person.jpg"), personPath)
}

func TestCropPath_IsAlwaysUnique(t *testing.T) {
	s := &Store{root: "/media"}
	id := uuid.New()

	a := s.CropPath("person_crop", id)
	b := s.CropPath("person_crop", id)
	assert.NotEqual(t, a, b, "crop paths must be fresh by construction even for the same frame_id")
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "frame", "abc.jpg")
	require.NoError(t, s.Save(path, []byte("jpeg-bytes")))

	assert.True(t, s.Exists(path))
	data, err := s.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}

func TestExists_FalseForMissingFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	assert.False(t, s.Exists(filepath.Join(dir, "nope.jpg")))
}
