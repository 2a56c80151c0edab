package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestTreeExcludesIgnoredAndExtensionless(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".hidden", "file_v1.txt"), "a")
	writeFile(t, filepath.Join(root, ".DS_Store"), "a")
	writeFile(t, filepath.Join(root, "Thumbs.db"), "a")
	writeFile(t, filepath.Join(root, "desktop.ini"), "a")
	writeFile(t, filepath.Join(root, "notes_v3"), "a")
	writeFile(t, filepath.Join(root, "visible", "readme_v2.txt"), "hello")

	records, err := Tree(root, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, filepath.Join("visible", "readme_v2.txt"), records[0].RelativePath)
	require.EqualValues(t, 5, records[0].SizeBytes)
}

func TestTreeExcludesSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real_v1.txt"), "content")
	require.NoError(t, os.Symlink(filepath.Join(root, "real_v1.txt"), filepath.Join(root, "link_v1.txt")))

	linkedDir := filepath.Join(root, "realdir")
	require.NoError(t, os.MkdirAll(linkedDir, 0755))
	writeFile(t, filepath.Join(linkedDir, "inner_v1.txt"), "x")
	require.NoError(t, os.Symlink(linkedDir, filepath.Join(root, "linkdir")))

	records, err := Tree(root, nil)
	require.NoError(t, err)

	var names []string
	for _, r := range records {
		names = append(names, r.RelativePath)
	}
	require.ElementsMatch(t, []string{"real_v1.txt", filepath.Join("realdir", "inner_v1.txt")}, names)
}

func TestTreeSortsByRelativePath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b_v1.txt"), "b")
	writeFile(t, filepath.Join(root, "a_v1.txt"), "a")

	records, err := Tree(root, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "a_v1.txt", records[0].RelativePath)
	require.Equal(t, "b_v1.txt", records[1].RelativePath)
}
