package mirror

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gdrive-backup/internal/api"
	"gdrive-backup/internal/api/apitest"
)

// buildLocalTree creates {a.txt, sub/b.txt, empty/} under a temp dir.
func buildLocalTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("beta"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestWalkDirMirrorsTree(t *testing.T) {
	fake := apitest.NewFakeRemote()
	dest := fake.AddFolder(api.RootID, "dest")
	src := buildLocalTree(t)

	w := &Walker{Remote: fake}
	if err := w.WalkDir(context.Background(), src, dest, "dest"); err != nil {
		t.Fatalf("WalkDir failed: %v", err)
	}

	want := []string{
		"/dest",
		"/dest/a.txt (file)",
		"/dest/empty",
		"/dest/sub",
		"/dest/sub/b.txt (file)",
	}
	if !reflect.DeepEqual(fake.Tree(), want) {
		t.Errorf("Expected tree %v, got %v", want, fake.Tree())
	}

	if w.FilesUploaded != 2 {
		t.Errorf("Expected 2 files uploaded, got %d", w.FilesUploaded)
	}
	if w.FoldersCreated != 2 {
		t.Errorf("Expected 2 folders created (sub and empty), got %d", w.FoldersCreated)
	}

	data, ok := fake.FileData("/dest/a.txt")
	if !ok || string(data) != "alpha" {
		t.Errorf("Expected uploaded content 'alpha', got %q", data)
	}
}

func TestWalkDirCreatesParentBeforeChildUpload(t *testing.T) {
	fake := apitest.NewFakeRemote()
	dest := fake.AddFolder(api.RootID, "dest")
	src := buildLocalTree(t)

	w := &Walker{Remote: fake}
	if err := w.WalkDir(context.Background(), src, dest, "dest"); err != nil {
		t.Fatalf("WalkDir failed: %v", err)
	}

	mkdir := opIndex(fake.Ops, "mkdir /dest/sub")
	upload := opIndex(fake.Ops, "upload /dest/sub/b.txt")
	if mkdir == -1 || upload == -1 {
		t.Fatalf("Expected both ops recorded, got %v", fake.Ops)
	}
	if mkdir > upload {
		t.Errorf("Expected folder created before child upload, got %v", fake.Ops)
	}
}

func TestWalkDirReusesExistingFolder(t *testing.T) {
	fake := apitest.NewFakeRemote()
	dest := fake.AddFolder(api.RootID, "dest")
	fake.AddFolder(dest, "sub")
	src := buildLocalTree(t)

	w := &Walker{Remote: fake}
	if err := w.WalkDir(context.Background(), src, dest, "dest"); err != nil {
		t.Fatalf("WalkDir failed: %v", err)
	}

	// Only "empty" needed creating; "sub" already existed.
	if w.FoldersCreated != 1 {
		t.Errorf("Expected 1 folder created, got %d", w.FoldersCreated)
	}

	want := []string{
		"/dest",
		"/dest/a.txt (file)",
		"/dest/empty",
		"/dest/sub",
		"/dest/sub/b.txt (file)",
	}
	if !reflect.DeepEqual(fake.Tree(), want) {
		t.Errorf("Expected no duplicate folders, got %v", fake.Tree())
	}
}

func TestWalkDirContinuesAfterUploadFailure(t *testing.T) {
	fake := apitest.NewFakeRemote()
	dest := fake.AddFolder(api.RootID, "dest")
	fake.FailUpload["/dest/a.txt"] = true
	src := buildLocalTree(t)

	w := &Walker{Remote: fake}
	if err := w.WalkDir(context.Background(), src, dest, "dest"); err != nil {
		t.Fatalf("WalkDir failed: %v", err)
	}

	if w.Errors != 1 {
		t.Errorf("Expected 1 error, got %d", w.Errors)
	}
	if w.FilesUploaded != 1 {
		t.Errorf("Expected the other file uploaded, got %d", w.FilesUploaded)
	}
	if _, ok := fake.FileData("/dest/sub/b.txt"); !ok {
		t.Error("Expected b.txt uploaded despite a.txt failing")
	}
}

func TestWalkDirSkipsSymlinks(t *testing.T) {
	fake := apitest.NewFakeRemote()
	dest := fake.AddFolder(api.RootID, "dest")
	src := buildLocalTree(t)

	if err := os.Symlink(filepath.Join(src, "a.txt"), filepath.Join(src, "link.txt")); err != nil {
		t.Skipf("symlinks not supported here: %v", err)
	}

	w := &Walker{Remote: fake}
	if err := w.WalkDir(context.Background(), src, dest, "dest"); err != nil {
		t.Fatalf("WalkDir failed: %v", err)
	}

	if w.Skipped != 1 {
		t.Errorf("Expected 1 skipped entry, got %d", w.Skipped)
	}
	if _, ok := fake.FileData("/dest/link.txt"); ok {
		t.Error("Expected symlink to not be uploaded")
	}
}

func TestWalkDirDryRun(t *testing.T) {
	fake := apitest.NewFakeRemote()
	dest := fake.AddFolder(api.RootID, "dest")
	src := buildLocalTree(t)

	w := &Walker{Remote: fake, DryRun: true}
	if err := w.WalkDir(context.Background(), src, dest, "dest"); err != nil {
		t.Fatalf("WalkDir failed: %v", err)
	}

	if len(fake.Ops) != 0 {
		t.Errorf("Expected no write ops in dry run, got %v", fake.Ops)
	}
	if w.FilesUploaded != 0 || w.FoldersCreated != 0 {
		t.Errorf("Expected zero counters in dry run, got %d files, %d folders",
			w.FilesUploaded, w.FoldersCreated)
	}
}

func TestWalkDirCancelledContext(t *testing.T) {
	fake := apitest.NewFakeRemote()
	dest := fake.AddFolder(api.RootID, "dest")
	src := buildLocalTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &Walker{Remote: fake}
	if err := w.WalkDir(ctx, src, dest, "dest"); err == nil {
		t.Fatal("Expected an error from a cancelled context")
	}
}

func TestWalkDirMissingDir(t *testing.T) {
	fake := apitest.NewFakeRemote()
	dest := fake.AddFolder(api.RootID, "dest")

	w := &Walker{Remote: fake}
	err := w.WalkDir(context.Background(), filepath.Join(t.TempDir(), "gone"), dest, "dest")
	if err == nil {
		t.Fatal("Expected an error for a missing local directory")
	}
}
