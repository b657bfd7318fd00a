package snapshot

import (
	"context"
	"os"
	"path/filepath"

	apperrors "github.com/jwalitptl/lims-api/pkg/errors"
)

// FileAdapter stores the snapshot as a JSON file. Writes go to a temp file in
// the same directory followed by a rename, so a failed write leaves the last
// good snapshot untouched.
type FileAdapter struct {
	path string
}

func NewFile(path string) *FileAdapter {
	return &FileAdapter{path: path}
}

func (f *FileAdapter) Save(ctx context.Context, state *State) error {
	data, err := encode(state)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.Persistence("failed to create snapshot directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return apperrors.Persistence("failed to create snapshot temp file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.Persistence("failed to write snapshot", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.Persistence("failed to close snapshot temp file", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return apperrors.Persistence("failed to swap snapshot into place", err)
	}
	return nil
}

func (f *FileAdapter) Load(ctx context.Context) (*State, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return Empty(), nil
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to read snapshot", err)
	}
	return decode(data)
}

func (f *FileAdapter) Close() error {
	return nil
}
