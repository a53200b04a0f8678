package mirror

import (
	"context"
	"reflect"
	"testing"

	"gdrive-backup/internal/api"
	"gdrive-backup/internal/api/apitest"
)

func TestEnsureFolderPathCreatesMissing(t *testing.T) {
	fake := apitest.NewFakeRemote()

	leaf, existed, err := EnsureFolderPath(context.Background(), fake, "Backups/Laptop", false)
	if err != nil {
		t.Fatalf("EnsureFolderPath failed: %v", err)
	}
	if existed {
		t.Error("Expected existed=false for a fresh path")
	}
	if leaf.Name != "Laptop" {
		t.Errorf("Expected leaf folder 'Laptop', got %q", leaf.Name)
	}

	wantOps := []string{"mkdir /Backups", "mkdir /Backups/Laptop"}
	if !reflect.DeepEqual(fake.Ops, wantOps) {
		t.Errorf("Expected ops %v, got %v", wantOps, fake.Ops)
	}
}

func TestEnsureFolderPathFindsExisting(t *testing.T) {
	fake := apitest.NewFakeRemote()
	backups := fake.AddFolder(api.RootID, "Backups")
	laptop := fake.AddFolder(backups, "Laptop")

	leaf, existed, err := EnsureFolderPath(context.Background(), fake, "Backups/Laptop", false)
	if err != nil {
		t.Fatalf("EnsureFolderPath failed: %v", err)
	}
	if !existed {
		t.Error("Expected existed=true for a pre-existing path")
	}
	if leaf.ID != laptop {
		t.Errorf("Expected leaf ID %s, got %s", laptop, leaf.ID)
	}
	if len(fake.Ops) != 0 {
		t.Errorf("Expected no writes, got %v", fake.Ops)
	}
}

func TestEnsureFolderPathPartiallyExisting(t *testing.T) {
	fake := apitest.NewFakeRemote()
	fake.AddFolder(api.RootID, "Backups")

	leaf, existed, err := EnsureFolderPath(context.Background(), fake, "Backups/Laptop", false)
	if err != nil {
		t.Fatalf("EnsureFolderPath failed: %v", err)
	}
	if existed {
		t.Error("Expected existed=false when the leaf had to be created")
	}
	if leaf.Name != "Laptop" {
		t.Errorf("Expected leaf 'Laptop', got %q", leaf.Name)
	}

	wantOps := []string{"mkdir /Backups/Laptop"}
	if !reflect.DeepEqual(fake.Ops, wantOps) {
		t.Errorf("Expected ops %v, got %v", wantOps, fake.Ops)
	}
}

func TestEnsureFolderPathIgnoresExtraSlashes(t *testing.T) {
	fake := apitest.NewFakeRemote()

	leaf, _, err := EnsureFolderPath(context.Background(), fake, "/Backups//Laptop/", false)
	if err != nil {
		t.Fatalf("EnsureFolderPath failed: %v", err)
	}
	if leaf.Name != "Laptop" {
		t.Errorf("Expected leaf 'Laptop', got %q", leaf.Name)
	}
	if len(fake.Ops) != 2 {
		t.Errorf("Expected 2 folder creates, got %v", fake.Ops)
	}
}

func TestEnsureFolderPathDryRun(t *testing.T) {
	fake := apitest.NewFakeRemote()
	fake.AddFolder(api.RootID, "Backups")

	leaf, existed, err := EnsureFolderPath(context.Background(), fake, "Backups/Laptop/home", true)
	if err != nil {
		t.Fatalf("EnsureFolderPath failed: %v", err)
	}
	if existed {
		t.Error("Expected existed=false, two segments are missing")
	}
	if leaf.ID != "" {
		t.Errorf("Expected a planned leaf with empty ID, got %q", leaf.ID)
	}
	if leaf.Name != "home" {
		t.Errorf("Expected leaf 'home', got %q", leaf.Name)
	}
	if len(fake.Ops) != 0 {
		t.Errorf("Expected no writes in dry run, got %v", fake.Ops)
	}
}
