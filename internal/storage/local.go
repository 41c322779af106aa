// Package storage keeps uploaded project covers on the local filesystem and
// resolves their public URLs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrNotImage = errors.New("cover must be an image")
	ErrTooLarge = errors.New("cover exceeds the size limit")
	ErrEmpty    = errors.New("cover file is empty")
)

const coverName = "projectcover"

// LocalStore writes objects under a root directory that is served
// statically at publicURL.
type LocalStore struct {
	root      string
	publicURL string
	maxBytes  int64
}

func NewLocalStore(root, publicURL string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{
		root:      root,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxBytes:  maxBytes,
	}, nil
}

// CoverKey is the object key of a project's cover for the given extension.
func CoverKey(projectID uuid.UUID, ext string) string {
	return path.Join(projectID.String(), coverName+ext)
}

// PublicURL resolves an object key to the URL it is served at.
func (s *LocalStore) PublicURL(key string) string {
	return s.publicURL + "/" + key
}

// SaveProjectCover stores r as the project's cover, replacing any previous
// cover, and returns its public URL. The content must sniff as an image.
func (s *LocalStore) SaveProjectCover(ctx context.Context, projectID uuid.UUID, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read cover: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mtype.String())
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := CoverKey(projectID, mtype.Extension())
	if err := s.removeCovers(projectID); err != nil {
		return "", err
	}
	if err := s.put(key, data); err != nil {
		return "", err
	}
	return s.PublicURL(key), nil
}

// RemoveProject deletes every object stored for the project.
func (s *LocalStore) RemoveProject(ctx context.Context, projectID uuid.UUID) error {
	return os.RemoveAll(filepath.Join(s.root, projectID.String()))
}

func (s *LocalStore) removeCovers(projectID uuid.UUID) error {
	matches, err := filepath.Glob(filepath.Join(s.root, projectID.String(), coverName+".*"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// put writes atomically through a temp file in the target directory.
func (s *LocalStore) put(key string, data []byte) error {
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
