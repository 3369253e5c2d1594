// Package local stores blobs on the local filesystem, zstd-compressed, in a
// sharded tree:
//
//	<root>/blobs/<aa>/<bb>/<id>
//	<root>/.tmp/<random>
//
// Writes go to a temp file first and are renamed into place, so a reader
// never sees a partial blob.
package local

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/gophvault/internal/server/storage/blob"
	"github.com/dmitrijs2005/gophvault/internal/shared"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

const (
	tempDirName = ".tmp"
	blobDirName = "blobs"

	dirMode  os.FileMode = 0o750
	fileMode os.FileMode = 0o640
)

type Store struct {
	root    string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func New(root string) (*Store, error) {
	root = filepath.Clean(root)

	for _, dir := range []string{blobDirName, tempDirName} {
		if err := os.MkdirAll(filepath.Join(root, dir), dirMode); err != nil {
			return nil, fmt.Errorf("creating %s directory: %w", dir, err)
		}
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithZeroFrames(true))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &Store{root: root, encoder: enc, decoder: dec}, nil
}

func (s *Store) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	dst := s.pathFor(id)

	if err := os.MkdirAll(filepath.Dir(dst), dirMode); err != nil {
		return "", fmt.Errorf("put blob %q: %w", name, err)
	}

	tmp, err := s.writeTemp(s.encoder.EncodeAll(data, nil))
	if err != nil {
		return "", fmt.Errorf("put blob %q: %w", name, err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("put blob %q: %w", name, err)
	}

	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, fmt.Errorf("%q: %w", id, blob.ErrNotFound)
	}

	compressed, err := os.ReadFile(s.pathFor(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%q: %w", id, blob.ErrNotFound)
		}
		return nil, fmt.Errorf("get blob %q: %w", id, err)
	}

	data, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decode blob %q: %w", id, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validID(id) {
		return nil
	}

	path := s.pathFor(id)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob %q: %w", id, err)
	}

	s.cleanupEmptyDirs(filepath.Dir(path))
	return nil
}

// Healthcheck verifies the blob tree is still a writable directory.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := s.writeTemp(nil)
	if err != nil {
		return fmt.Errorf("local blob store: %w", err)
	}
	return os.Remove(tmp)
}

func (s *Store) Close() error {
	s.decoder.Close()
	return s.encoder.Close()
}

func (s *Store) writeTemp(data []byte) (string, error) {
	suffix, err := shared.MakeRandHexString(8)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.root, tempDirName, suffix)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, fileMode)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

func (s *Store) pathFor(id string) string {
	sum := sha256.Sum256([]byte(id))
	h := hex.EncodeToString(sum[:])
	return filepath.Join(s.root, blobDirName, h[:2], h[2:4], id)
}

// cleanupEmptyDirs removes empty shard directories up to the blobs root.
func (s *Store) cleanupEmptyDirs(dir string) {
	stop := filepath.Join(s.root, blobDirName)
	for dir != stop && len(dir) > len(stop) {
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
