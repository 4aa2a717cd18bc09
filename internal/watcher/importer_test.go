package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/portalsearch/internal/storage"
)

func TestImporter_ImportAndRemove(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewMemoryStorage()
	imp := NewImporter(store, nil)
	ctx := context.Background()

	path := filepath.Join(dir, "notes.json")
	if err := os.WriteFile(path, []byte(`[{"id":"n1","title":"Grammar"},{"title":"Tafsir"}]`), 0600); err != nil {
		t.Fatal(err)
	}
	name, n, err := imp.Import(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if name != "notes" || n != 2 {
		t.Errorf("Import = %s, %d", name, n)
	}
	if count, _ := store.CountRecords(ctx, "notes"); count != 2 {
		t.Errorf("stored %d records, want 2", count)
	}

	imp.FileRemoved(path)
	if count, _ := store.CountRecords(ctx, "notes"); count != 0 {
		t.Errorf("after removal %d records remain", count)
	}
}

func TestImporter_ReimportKeepsIDlessRecords(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewMemoryStorage()
	imp := NewImporter(store, nil)
	ctx := context.Background()

	path := filepath.Join(dir, "notes.json")
	if err := os.WriteFile(path, []byte(`[{"title":"Grammar"},{"title":"Tafsir"}]`), 0600); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, _, err := imp.Import(ctx, path); err != nil {
			t.Fatal(err)
		}
	}
	if count, _ := store.CountRecords(ctx, "notes"); count != 2 {
		t.Errorf("after three imports %d records stored, want 2", count)
	}
}

func TestImporter_EditedFileReplacesCollection(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewMemoryStorage()
	imp := NewImporter(store, nil)
	ctx := context.Background()

	path := filepath.Join(dir, "notes.json")
	write := func(content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		if _, _, err := imp.Import(ctx, path); err != nil {
			t.Fatal(err)
		}
	}

	write(`[{"id":"n1","title":"Grammar"},{"id":"n2","title":"Tafsir"}]`)
	write(`[{"id":"n2","title":"Tafsir II"}]`)
	got, _ := store.ListRecords(ctx, "notes")
	if len(got) != 1 || got[0].ID() != "n2" || got[0]["title"] != "Tafsir II" {
		t.Errorf("after edit: %v", got)
	}

	write(`[]`)
	if count, _ := store.CountRecords(ctx, "notes"); count != 0 {
		t.Errorf("emptied file left %d records", count)
	}
}

func TestImporter_FileChangedLogsFailures(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewMemoryStorage()
	path := filepath.Join(dir, "notes.json")
	if err := os.WriteFile(path, []byte(`{broken`), 0600); err != nil {
		t.Fatal(err)
	}
	NewImporter(store, nil).FileChanged(path)
	if count, _ := store.CountRecords(context.Background(), ""); count != 0 {
		t.Errorf("broken file should import nothing, got %d", count)
	}
}

func TestImporter_WithWatcher(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewMemoryStorage()
	startWatcher(t, []string{dir}, NewImporter(store, nil), WithDebounce(20*time.Millisecond))

	if err := os.WriteFile(filepath.Join(dir, "recordings.yaml"), []byte("- id: r1\n  title: Tajweed\n"), 0600); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "recordings imported", func() bool {
		n, _ := store.CountRecords(context.Background(), "recordings")
		return n == 1
	})
}
