package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestBuildVersionSelection(t *testing.T) {
	base := t.TempDir()
	left := filepath.Join(base, "left")
	right := filepath.Join(base, "right")

	writeFile(t, filepath.Join(left, "folder", "doc_v1.txt"), "one")
	writeFile(t, filepath.Join(left, "folder", "doc_v3.txt"), "three")
	writeFile(t, filepath.Join(right, "folder", "doc.txt"), "old")

	bundle, err := Build(left, right, nil)
	require.NoError(t, err)
	require.Len(t, bundle.Plan, 1)

	item := bundle.Plan[0]
	require.Equal(t, filepath.Join("folder", "doc_v3.txt"), item.SourceRelativePath)
	require.Equal(t, filepath.Join("folder", "doc.txt"), item.TargetRelativePath)
	require.EqualValues(t, 3, item.Version)
}

func TestBuildDirectoryCreation(t *testing.T) {
	base := t.TempDir()
	left := filepath.Join(base, "left")
	right := filepath.Join(base, "right")
	require.NoError(t, os.MkdirAll(right, 0755))

	writeFile(t, filepath.Join(left, "alpha", "beta", "file_v1.txt"), "hello")

	bundle, err := Build(left, right, nil)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join("alpha", "beta")}, bundle.DirectoriesToCreate)
}

func TestBuildIgnoredNames(t *testing.T) {
	base := t.TempDir()
	left := filepath.Join(base, "left")
	right := filepath.Join(base, "right")
	require.NoError(t, os.MkdirAll(right, 0755))

	writeFile(t, filepath.Join(left, ".hidden", "file_v1.txt"), "x")
	writeFile(t, filepath.Join(left, ".DS_Store"), "x")
	writeFile(t, filepath.Join(left, "Thumbs.db"), "x")
	writeFile(t, filepath.Join(left, "desktop.ini"), "x")
	writeFile(t, filepath.Join(left, "notes_v3"), "x")
	writeFile(t, filepath.Join(left, "visible", "readme_v2.txt"), "hi")

	bundle, err := Build(left, right, nil)
	require.NoError(t, err)
	require.Len(t, bundle.Plan, 1)
	require.Equal(t, filepath.Join("visible", "readme.txt"), bundle.Plan[0].TargetRelativePath)
}

func TestBuildSkipsUpToDateFiles(t *testing.T) {
	base := t.TempDir()
	left := filepath.Join(base, "left")
	right := filepath.Join(base, "right")

	writeFile(t, filepath.Join(left, "doc_v1.txt"), "1234")
	writeFile(t, filepath.Join(right, "doc.txt"), "1234")

	bundle, err := Build(left, right, nil)
	require.NoError(t, err)
	require.Empty(t, bundle.Plan)
}

func TestBuildRejectsOverlappingRoots(t *testing.T) {
	base := t.TempDir()
	left := filepath.Join(base, "left")
	right := filepath.Join(left, "nested")
	require.NoError(t, os.MkdirAll(right, 0755))

	_, err := Build(left, right, nil)
	require.Error(t, err)
}

func TestBuildDestinationPathConflict(t *testing.T) {
	base := t.TempDir()
	left := filepath.Join(base, "left")
	right := filepath.Join(base, "right")
	require.NoError(t, os.MkdirAll(right, 0755))

	writeFile(t, filepath.Join(left, "alpha", "file_v1.txt"), "hello")
	writeFile(t, filepath.Join(right, "alpha"), "not a directory")

	_, err := Build(left, right, nil)
	require.Error(t, err)
}
