package core

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists one JSON record per identity under a root directory.
//
// Layout:
//
//	{Root}/
//	  {kind}/
//	    {key[0:2]}/
//	      {key}.json
//
// The two-character shard keeps directories small for large parameter
// sweeps. Records are written to a temp file in the destination directory
// and renamed into place, so a crash mid-write leaves an orphaned temp file
// but never a visible partial record.
type FileStore struct {
	Root string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Root: dir}
}

// Location returns the committed path for an identity.
func (s *FileStore) Location(id Identity) string {
	key := id.Key()
	if len(key) < 2 {
		return filepath.Join(s.Root, id.Kind(), key+".json")
	}
	return filepath.Join(s.Root, id.Kind(), key[:2], key+".json")
}

// Exists reports whether a committed record is present for id.
func (s *FileStore) Exists(ctx context.Context, id Identity) (bool, error) {
	_, err := os.Stat(s.Location(id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking record %s: %w", id, err)
	}
	return true, nil
}

// Write commits rec for id. If a record is already committed, Write returns
// nil without touching it: the first committer wins.
func (s *FileStore) Write(ctx context.Context, id Identity, rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}

	target := s.Location(id)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating record directory: %w", err)
	}

	if exists, err := s.Exists(ctx, id); err != nil {
		return err
	} else if exists {
		return nil
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling record %s: %w", id, err)
	}

	// Temp file in the destination directory so the rename stays on one
	// filesystem and is atomic.
	tmp, err := os.CreateTemp(dir, "."+id.Key()+".tmp.*")
	if err != nil {
		return fmt.Errorf("staging record %s: %w", id, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("staging record %s: %w", id, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("staging record %s: %w", id, err)
	}
	_ = tmp.Sync() // best-effort durability
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("staging record %s: %w", id, err)
	}

	// A concurrent writer may have committed between the Exists check and
	// here. Rename still yields a valid record: equal identity means equal
	// payload, so either committer's bytes are correct.
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("committing record %s: %w", id, err)
	}
	committed = true
	return nil
}

// Read loads the committed record for id.
func (s *FileStore) Read(ctx context.Context, id Identity) (*Record, error) {
	data, err := os.ReadFile(s.Location(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NotFoundError(id)
		}
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing record %s: %w", id, err)
	}
	if rec.Version != DocumentVersion {
		return nil, fmt.Errorf("record %s has unsupported version %d", id, rec.Version)
	}
	return &rec, nil
}
