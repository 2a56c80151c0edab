// Package plan implements the comparison planner (C3): given a pair of
// scanned trees, it resolves the highest-versioned candidate for every
// target path and produces an ordered copy plan plus the set of
// destination directories that must exist before copying begins.
package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rjfmedia/lempicka-sync/pkg/logging"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/names"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/scan"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/syncerrors"
)

// Item is a single planned copy: the highest-version source candidate for
// one destination-relative target path.
type Item struct {
	SourcePath         string `json:"source_path"`
	SourceRelativePath string `json:"source_relative_path"`
	SourceSize         int64  `json:"source_size"`
	TargetPath         string `json:"target_path"`
	TargetRelativePath string `json:"target_relative_path"`
	Version            uint64 `json:"version"`
	DestinationExists  bool   `json:"destination_exists"`
	DestinationSize    int64  `json:"destination_size,omitempty"`
}

// Bundle is the full output of a comparison: the plan itself plus the
// directories that must be created before any copy proceeds.
type Bundle struct {
	LeftRoot            string   `json:"left_root"`
	RightRoot           string   `json:"right_root"`
	Plan                []Item   `json:"plan"`
	DirectoriesToCreate []string `json:"directories_to_create"`
	TotalCandidates     int      `json:"total_candidates"`
	PendingCount        int      `json:"pending_count"`
}

// Build scans leftRoot and rightRoot and produces a Bundle describing the
// work required to bring rightRoot up to date with leftRoot's highest
// versioned candidates.
func Build(leftRoot, rightRoot string, logger *logging.Logger) (*Bundle, error) {
	logger = logger.Sublogger("plan")

	if err := validateRoot(leftRoot); err != nil {
		return nil, syncerrors.Wrap(syncerrors.CodeInvalidDirectory, "left root", leftRoot, err)
	}
	if err := validateRoot(rightRoot); err != nil {
		return nil, syncerrors.Wrap(syncerrors.CodeInvalidDirectory, "right root", rightRoot, err)
	}
	if err := names.ValidateRootPair(leftRoot, rightRoot); err != nil {
		return nil, syncerrors.Wrap(syncerrors.CodeInvalidDirectory, "root safety check", leftRoot, err)
	}

	left, err := scan.Tree(leftRoot, logger)
	if err != nil {
		return nil, err
	}
	right, err := scan.Tree(rightRoot, logger)
	if err != nil {
		return nil, err
	}

	rightSizeByRelative := make(map[string]int64, len(right))
	for _, record := range right {
		rightSizeByRelative[record.RelativePath] = record.SizeBytes
	}

	bestByTarget := make(map[string]candidate)
	for _, record := range left {
		parsed := names.ParseVersionedName(filepath.Base(record.RelativePath))
		targetRelative := filepath.Join(filepath.Dir(record.RelativePath), parsed.TargetFileName)
		if filepath.Dir(record.RelativePath) == "." {
			targetRelative = parsed.TargetFileName
		}

		existing, ok := bestByTarget[targetRelative]
		if !ok || parsed.Version > existing.version || (parsed.Version == existing.version && record.RelativePath < existing.record.RelativePath) {
			bestByTarget[targetRelative] = candidate{record: record, version: parsed.Version}
		}
	}

	var items []Item
	directorySet := make(map[string]bool)
	for targetRelative, best := range bestByTarget {
		destinationSize, destinationExists := rightSizeByRelative[targetRelative]
		if destinationExists && destinationSize == best.record.SizeBytes {
			continue
		}

		targetPath := filepath.Join(rightRoot, targetRelative)
		items = append(items, Item{
			SourcePath:         best.record.FullPath,
			SourceRelativePath: best.record.RelativePath,
			SourceSize:         best.record.SizeBytes,
			TargetPath:         targetPath,
			TargetRelativePath: targetRelative,
			Version:            best.version,
			DestinationExists:  destinationExists,
			DestinationSize:    destinationSize,
		})

		if dir := filepath.Dir(targetRelative); dir != "." {
			directorySet[dir] = true
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].TargetRelativePath < items[j].TargetRelativePath
	})

	directoriesToCreate, err := resolveDirectories(rightRoot, directorySet)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		LeftRoot:            leftRoot,
		RightRoot:           rightRoot,
		Plan:                items,
		DirectoriesToCreate: directoriesToCreate,
		TotalCandidates:     len(bestByTarget),
		PendingCount:        len(items),
	}, nil
}

// candidate tracks the current best source record for a target path during
// planning.
type candidate struct {
	record  scan.Record
	version uint64
}

// validateRoot checks that root exists, is a directory, and is readable.
func validateRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}
	if _, err := os.ReadDir(root); err != nil {
		return err
	}
	return nil
}

// resolveDirectories expands every directory referenced by the plan,
// including parents, and determines which must be created under rightRoot.
func resolveDirectories(rightRoot string, directories map[string]bool) ([]string, error) {
	expanded := make(map[string]bool)
	for dir := range directories {
		for current := dir; current != "." && current != string(filepath.Separator); current = filepath.Dir(current) {
			expanded[current] = true
			if filepath.Dir(current) == current {
				break
			}
		}
	}

	var result []string
	for dir := range expanded {
		full := filepath.Join(rightRoot, dir)
		info, err := os.Stat(full)
		if err == nil {
			if !info.IsDir() {
				return nil, syncerrors.Wrap(syncerrors.CodeDestinationPathConflict, "destination path exists as non-directory", full, nil)
			}
			continue
		}
		if !os.IsNotExist(err) {
			return nil, syncerrors.Wrap(syncerrors.CodeFilesystemError, "stating destination directory", full, err)
		}
		result = append(result, dir)
	}

	sort.Strings(result)
	return result, nil
}
