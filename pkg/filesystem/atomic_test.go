package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rjfmedia/lempicka-sync/pkg/logging"
)

func TestWriteFileAtomicCreatesFile(t *testing.T) {
	directory := t.TempDir()
	target := filepath.Join(directory, "state.json")

	if err := WriteFileAtomic(target, []byte("hello"), 0600, nil); err != nil {
		t.Fatal("unable to write file atomically:", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal("unable to read written file:", err)
	}
	if string(data) != "hello" {
		t.Error("written file contents do not match input")
	}

	info, err := os.Stat(target)
	if err != nil {
		t.Fatal("unable to stat written file:", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Error("written file has unexpected permissions:", info.Mode().Perm())
	}
}

func TestWriteFileAtomicOverwritesExisting(t *testing.T) {
	directory := t.TempDir()
	target := filepath.Join(directory, "state.json")

	if err := os.WriteFile(target, []byte("old"), 0600); err != nil {
		t.Fatal("unable to seed existing file:", err)
	}

	logger := logging.NewLogger(logging.LevelDisabled, os.Stderr)
	if err := WriteFileAtomic(target, []byte("new"), 0600, logger); err != nil {
		t.Fatal("unable to write file atomically:", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal("unable to read written file:", err)
	}
	if string(data) != "new" {
		t.Error("written file was not overwritten correctly")
	}
}

func TestWriteFileAtomicLeavesNoTemporaryFiles(t *testing.T) {
	directory := t.TempDir()
	target := filepath.Join(directory, "state.json")

	if err := WriteFileAtomic(target, []byte("data"), 0600, nil); err != nil {
		t.Fatal("unable to write file atomically:", err)
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		t.Fatal("unable to list directory:", err)
	}
	if len(entries) != 1 || entries[0].Name() != "state.json" {
		t.Error("directory contains unexpected entries after atomic write:", entries)
	}
}

func TestRenameSameDevice(t *testing.T) {
	directory := t.TempDir()
	source := filepath.Join(directory, "source")
	target := filepath.Join(directory, "target")

	if err := os.WriteFile(source, []byte("payload"), 0644); err != nil {
		t.Fatal("unable to create source file:", err)
	}

	if err := Rename(source, target); err != nil {
		t.Fatal("rename failed:", err)
	}

	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Error("source file still exists after rename")
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal("unable to read renamed file:", err)
	}
	if string(data) != "payload" {
		t.Error("renamed file contents do not match original")
	}
}
