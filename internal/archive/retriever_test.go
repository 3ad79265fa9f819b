package archive

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/miru/internal/catalog"
	"github.com/hyperjump/miru/internal/models"
)

func writeArchive(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
}

func storeWith(records ...*models.ItemRecord) *catalog.Store {
	s := catalog.NewStore()
	s.Publish(catalog.New(records))
	return s
}

func TestFetch_ArchivedEntry(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "TS.songdo.zip")
	writeArchive(t, archivePath, map[string]string{
		"songdo_fog_20230105-120000.jpg": "fog-bytes",
	})

	store := storeWith(&models.ItemRecord{
		ArchivePath: archivePath,
		EntryName:   "songdo_fog_20230105-120000.jpg",
		Filename:    "songdo_fog_20230105-120000.jpg",
		Location:    "songdo",
	})

	data, rec, err := NewRetriever(store).Fetch(context.Background(), "songdo/songdo_fog_20230105-120000.jpg")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "fog-bytes" {
		t.Errorf("data = %q", data)
	}
	if rec == nil || rec.Location != "songdo" {
		t.Errorf("record = %+v", rec)
	}
}

func TestFetch_LooseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "songdo_clear.jpg")
	if err := os.WriteFile(path, []byte("loose-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	store := storeWith(&models.ItemRecord{
		EntryName: path,
		Filename:  "songdo_clear.jpg",
		Location:  "songdo",
	})

	data, _, err := NewRetriever(store).Fetch(context.Background(), "songdo/songdo_clear.jpg")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "loose-bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestFetch_LooseFileResolvedAgainstRoot(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "songdo")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "songdo_clear.jpg"), []byte("loose-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	store := storeWith(&models.ItemRecord{
		EntryName: filepath.Join("songdo", "songdo_clear.jpg"),
		Filename:  "songdo_clear.jpg",
		Location:  "songdo",
	})

	r := NewRetriever(store, WithRoot(root))
	data, _, err := r.Fetch(context.Background(), "songdo/songdo/songdo_clear.jpg")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "loose-bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestFetch_UnknownIDIsNotFound(t *testing.T) {
	_, _, err := NewRetriever(storeWith()).Fetch(context.Background(), "songdo/nope.jpg")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFetch_StaleEntryIsNotFound(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "TS.songdo.zip")
	writeArchive(t, archivePath, map[string]string{"other.jpg": "x"})

	store := storeWith(&models.ItemRecord{
		ArchivePath: archivePath,
		EntryName:   "gone.jpg",
		Filename:    "gone.jpg",
		Location:    "songdo",
	})

	_, _, err := NewRetriever(store).Fetch(context.Background(), "songdo/gone.jpg")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound (stale catalog)", err)
	}
}

func TestFetch_CorruptArchiveIsStorageError(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "broken.zip")
	if err := os.WriteFile(archivePath, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}

	store := storeWith(&models.ItemRecord{
		ArchivePath: archivePath,
		EntryName:   "a.jpg",
		Filename:    "a.jpg",
		Location:    "songdo",
	})

	_, _, err := NewRetriever(store).Fetch(context.Background(), "songdo/a.jpg")
	if !errors.Is(err, ErrStorage) {
		t.Errorf("err = %v, want ErrStorage", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("storage error must be distinguishable from not-found")
	}
}

func TestFetchToFile_CleanupRemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "TS.songdo.zip")
	writeArchive(t, archivePath, map[string]string{"a.jpg": "bytes"})

	store := storeWith(&models.ItemRecord{
		ArchivePath: archivePath,
		EntryName:   "a.jpg",
		Filename:    "a.jpg",
		Location:    "songdo",
	})

	tempDir := t.TempDir()
	r := NewRetriever(store, WithTempDir(tempDir))
	path, _, cleanup, err := r.FetchToFile(context.Background(), "songdo/a.jpg")
	if err != nil {
		t.Fatalf("FetchToFile: %v", err)
	}
	if filepath.Dir(path) != tempDir {
		t.Errorf("temp file in %s, want %s", filepath.Dir(path), tempDir)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "bytes" {
		t.Fatalf("temp file contents = %q, %v", data, err)
	}

	// Simulate a downstream failure after extraction: the caller still runs
	// cleanup on its error path, and the file must be gone afterwards.
	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp file still exists after cleanup: %v", err)
	}
	cleanup() // idempotent
}

func TestFetchToFile_WriteErrorLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "TS.songdo.zip")
	writeArchive(t, archivePath, map[string]string{"a.jpg": "bytes"})

	store := storeWith(&models.ItemRecord{
		ArchivePath: archivePath,
		EntryName:   "a.jpg",
		Filename:    "a.jpg",
		Location:    "songdo",
	})

	// A temp "directory" that is really a file makes every write fail after
	// the entry itself was fetched successfully.
	bogus := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(bogus, nil, 0644); err != nil {
		t.Fatal(err)
	}

	r := NewRetriever(store, WithTempDir(bogus))
	_, _, cleanup, err := r.FetchToFile(context.Background(), "songdo/a.jpg")
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
	if cleanup != nil {
		t.Error("cleanup should be nil on error")
	}
	info, err := os.Stat(bogus)
	if err != nil || info.IsDir() || info.Size() != 0 {
		t.Errorf("failed write disturbed the target path: %+v, %v", info, err)
	}
}

func TestFetchToFile_ErrorLeavesNoFile(t *testing.T) {
	tempDir := t.TempDir()
	r := NewRetriever(storeWith(), WithTempDir(tempDir))

	_, _, cleanup, err := r.FetchToFile(context.Background(), "songdo/missing.jpg")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if cleanup != nil {
		t.Error("cleanup should be nil on error")
	}
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir not empty after failed fetch: %v", entries)
	}
}
