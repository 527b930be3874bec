package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testIdentity(t *testing.T, kind string, params Params) Identity {
	t.Helper()
	id, err := NewIdentity(kind, params)
	if err != nil {
		t.Fatalf("NewIdentity() err=%v", err)
	}
	return id
}

func testRecord(t *testing.T, id Identity, symbol string) *Record {
	t.Helper()
	s := sampleStructure()
	s.Symbols[0] = symbol
	return NewRecord(id, DocumentSet{StructureToDocument(s)})
}

func TestFileStoreWriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	id := testIdentity(t, "generate_gas", Params{"gas_name": "CO"})

	exists, err := store.Exists(ctx, id)
	if err != nil {
		t.Fatalf("Exists() err=%v", err)
	}
	if exists {
		t.Fatalf("record exists before write")
	}

	rec := testRecord(t, id, "Cu")
	if err := store.Write(ctx, id, rec); err != nil {
		t.Fatalf("Write() err=%v", err)
	}

	exists, err = store.Exists(ctx, id)
	if err != nil {
		t.Fatalf("Exists() err=%v", err)
	}
	if !exists {
		t.Fatalf("record missing after write")
	}

	got, err := store.Read(ctx, id)
	if err != nil {
		t.Fatalf("Read() err=%v", err)
	}
	if got.Kind != id.Kind() || got.Key != id.Key() {
		t.Fatalf("record envelope %s/%s, want %s/%s", got.Kind, got.Key, id.Kind(), id.Key())
	}
	if len(got.Documents) != 1 || got.Documents[0].Atoms[0].Symbol != "Cu" {
		t.Fatalf("record payload did not round-trip")
	}
}

func TestFileStoreLocationLayout(t *testing.T) {
	root := t.TempDir()
	store := NewFileStore(root)
	id := testIdentity(t, "generate_bulk", Params{"material_id": "mp-30"})

	loc := store.Location(id)
	want := filepath.Join(root, "generate_bulk", id.Key()[:2], id.Key()+".json")
	if loc != want {
		t.Fatalf("Location() = %q, want %q", loc, want)
	}
	if loc != store.Location(id) {
		t.Fatalf("Location() is not stable")
	}
}

func TestFileStoreReadMissingIsNotFound(t *testing.T) {
	store := NewFileStore(t.TempDir())
	id := testIdentity(t, "generate_gas", Params{"gas_name": "H2"})

	_, err := store.Read(context.Background(), id)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read() err=%v, want ErrNotFound", err)
	}
}

func TestFileStoreFirstCommitterWins(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	id := testIdentity(t, "generate_gas", Params{"gas_name": "CO"})

	if err := store.Write(ctx, id, testRecord(t, id, "Cu")); err != nil {
		t.Fatalf("first Write() err=%v", err)
	}
	if err := store.Write(ctx, id, testRecord(t, id, "Pt")); err != nil {
		t.Fatalf("second Write() err=%v", err)
	}

	got, err := store.Read(ctx, id)
	if err != nil {
		t.Fatalf("Read() err=%v", err)
	}
	if got.Documents[0].Atoms[0].Symbol != "Cu" {
		t.Fatalf("second writer overwrote the committed record")
	}
}

func TestFileStoreLeavesNoStagingFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewFileStore(root)
	id := testIdentity(t, "generate_gas", Params{"gas_name": "CO"})

	if err := store.Write(ctx, id, testRecord(t, id, "Cu")); err != nil {
		t.Fatalf("Write() err=%v", err)
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.Contains(info.Name(), ".tmp") {
			t.Fatalf("staging file left behind: %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walking store root: %v", err)
	}
}
