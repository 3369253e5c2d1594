// Package filex holds small filesystem helpers shared by the file-backed
// stores and the CLI.
package filex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/gophvault/internal/shared"
)

// ErrTooLarge is returned by ReadFile when the file exceeds the limit.
var ErrTooLarge = errors.New("file too large")

// WriteAtomic writes data to path through a temporary file in the same
// directory followed by a rename, so readers never see a partial file.
// Missing parent directories are created with dirPerm.
func WriteAtomic(path string, data []byte, dirPerm, filePerm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	suffix, err := shared.MakeRandHexString(6)
	if err != nil {
		return err
	}
	tmp := path + "." + suffix + ".tmp"

	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// ReadFile reads a regular file of at most limit bytes. limit <= 0 means no
// limit.
func ReadFile(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: not a regular file", path)
	}
	if limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%s: %w (%d > %d bytes)", path, ErrTooLarge, info.Size(), limit)
	}

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: %w", path, ErrTooLarge)
	}
	return data, nil
}
