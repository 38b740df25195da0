package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("dsn: sqlite://:memory:\n"), 0o600); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
}

func TestFindFile_ExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "custom.yaml")
	writeConfig(t, path)

	found, err := FindFile(tmpDir, path)
	if err != nil {
		t.Fatalf("FindFile failed: %v", err)
	}
	if found != path {
		t.Errorf("expected %q, got %q", path, found)
	}

	_, err = FindFile(tmpDir, filepath.Join(tmpDir, "nonexistent"))
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestFindFile_TraverseUp(t *testing.T) {
	tmpDir := t.TempDir()

	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0o700); err != nil {
		t.Fatalf("failed to create directories: %v", err)
	}

	path := filepath.Join(tmpDir, FileName)
	writeConfig(t, path)

	found, err := FindFile(nested, "")
	if err != nil {
		t.Fatalf("FindFile failed: %v", err)
	}
	if found != path {
		t.Errorf("expected %q, got %q", path, found)
	}
}

func TestFindFile_StopAtGit(t *testing.T) {
	tmpDir := t.TempDir()

	projectDir := filepath.Join(tmpDir, "project")
	subDir := filepath.Join(projectDir, "sub")
	if err := os.MkdirAll(filepath.Join(projectDir, ".git"), 0o700); err != nil {
		t.Fatalf("failed to create directories: %v", err)
	}
	if err := os.MkdirAll(subDir, 0o700); err != nil {
		t.Fatalf("failed to create directories: %v", err)
	}

	// Above the repository root; must not be found.
	writeConfig(t, filepath.Join(tmpDir, FileName))

	_, err := FindFile(subDir, "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	projectConfig := filepath.Join(projectDir, FileName)
	writeConfig(t, projectConfig)

	found, err := FindFile(subDir, "")
	if err != nil {
		t.Fatalf("FindFile failed: %v", err)
	}
	if found != projectConfig {
		t.Errorf("expected %q, got %q", projectConfig, found)
	}
}
