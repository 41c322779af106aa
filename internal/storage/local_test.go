package storage_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskboard/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallest valid PNG signature plus IHDR chunk header is enough for sniffing
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

func newStore(t *testing.T, max int64) (*storage.LocalStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := storage.NewLocalStore(dir, "http://localhost:8080/uploads/", max)
	require.NoError(t, err)
	return s, dir
}

func TestSaveProjectCover(t *testing.T) {
	s, dir := newStore(t, 1024)
	projectID := uuid.New()

	url, err := s.SaveProjectCover(context.Background(), projectID, bytes.NewReader(pngBytes))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/uploads/"+projectID.String()+"/projectcover.png", url)
	stored, err := os.ReadFile(filepath.Join(dir, projectID.String(), "projectcover.png"))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}

func TestSaveProjectCover_ReplacesPrevious(t *testing.T) {
	s, dir := newStore(t, 1024)
	projectID := uuid.New()
	stale := filepath.Join(dir, projectID.String(), "projectcover.jpg")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	_, err := s.SaveProjectCover(context.Background(), projectID, bytes.NewReader(pngBytes))
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveProjectCover_Rejects(t *testing.T) {
	s, _ := newStore(t, 16)
	ctx := context.Background()

	_, err := s.SaveProjectCover(ctx, uuid.New(), bytes.NewReader(pngBytes))
	assert.ErrorIs(t, err, storage.ErrTooLarge)

	_, err = s.SaveProjectCover(ctx, uuid.New(), strings.NewReader("plain text"))
	assert.ErrorIs(t, err, storage.ErrNotImage)

	_, err = s.SaveProjectCover(ctx, uuid.New(), strings.NewReader(""))
	assert.ErrorIs(t, err, storage.ErrEmpty)
}

func TestRemoveProject(t *testing.T) {
	s, dir := newStore(t, 1024)
	projectID := uuid.New()
	_, err := s.SaveProjectCover(context.Background(), projectID, bytes.NewReader(pngBytes))
	require.NoError(t, err)

	require.NoError(t, s.RemoveProject(context.Background(), projectID))

	_, err = os.Stat(filepath.Join(dir, projectID.String()))
	assert.True(t, os.IsNotExist(err))
}
