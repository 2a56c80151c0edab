// Package scan implements the recursive tree scanner (C2): it enumerates a
// root directory, filters hidden/system/symlink entries, and yields ordered
// file records ready for version resolution by the planner.
package scan

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/rjfmedia/lempicka-sync/pkg/logging"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/names"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/syncerrors"
)

// Record is a single accepted file discovered during a scan.
type Record struct {
	// FullPath is the absolute path to the file.
	FullPath string
	// RelativePath is the path to the file relative to the scanned root,
	// using the platform separator.
	RelativePath string
	// SizeBytes is the file size captured at scan time.
	SizeBytes int64
}

// Tree scans root recursively and returns an ordered sequence of file
// records. Hidden/system files, symbolic links, and extensionless files are
// excluded per names.IsIgnored/names.HasUsableExtension. Records are sorted
// by relative path for deterministic downstream processing.
func Tree(root string, logger *logging.Logger) ([]Record, error) {
	logger = logger.Sublogger("scan")

	var records []Record

	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return syncerrors.Wrap(syncerrors.CodeFilesystemError, "reading directory", path, err)
		}

		if path == root {
			return nil
		}

		name := entry.Name()
		if names.IsIgnored(name) {
			logger.Tracef("skipping ignored entry: %s", path)
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			return syncerrors.Wrap(syncerrors.CodeFilesystemError, "reading file metadata", path, infoErr)
		}

		if info.Mode()&os.ModeSymlink != 0 {
			logger.Tracef("skipping symbolic link: %s", path)
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.IsDir() {
			return nil
		}

		if !names.HasUsableExtension(name) {
			logger.Tracef("skipping extensionless file: %s", path)
			return nil
		}

		relative, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return syncerrors.Wrap(syncerrors.CodeFilesystemError, "computing relative path", path, relErr)
		}

		records = append(records, Record{
			FullPath:     path,
			RelativePath: relative,
			SizeBytes:    info.Size(),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].RelativePath < records[j].RelativePath
	})

	return records, nil
}
