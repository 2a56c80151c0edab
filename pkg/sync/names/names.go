// Package names implements path and file-name utilities shared by the
// scanner and planner: versioned-name parsing, ignored-name
// classification, and safe-path containment checks.
package names

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// versionedNamePattern matches a versioned file name of the form
// "<stem>_v<digits>.<ext>", with a case-insensitive "v".
var versionedNamePattern = regexp.MustCompile(`(?i)^(.*)_v(\d+)\.([^.]+)$`)

// ignoredNames is the set of well-known file names (compared
// case-insensitively) that are always excluded from scans.
var ignoredNames = map[string]bool{
	".ds_store":        true,
	"thumbs.db":        true,
	"desktop.ini":      true,
	"icon\r":           true,
	"sync-history.log": true,
}

// ParsedName is the result of parsing a file name for version information.
type ParsedName struct {
	// TargetFileName is the name the file maps to on the destination side
	// once its version suffix (if any) is stripped.
	TargetFileName string
	// Version is the parsed version number, or 0 if the name is
	// unversioned.
	Version uint64
	// StrippedStem is the stem with the version suffix and extension
	// removed.
	StrippedStem string
	// IsVersioned indicates whether name matched the versioned-name
	// grammar.
	IsVersioned bool
}

// ParseVersionedName parses a file's base name for version information. It
// never fails: unmatched names are reported as unversioned, mapping to
// themselves.
func ParseVersionedName(name string) ParsedName {
	match := versionedNamePattern.FindStringSubmatch(name)
	if match == nil {
		return ParsedName{
			TargetFileName: name,
			Version:        0,
			StrippedStem:   name,
			IsVersioned:    false,
		}
	}

	stem, digits, ext := match[1], match[2], match[3]

	version, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		// Digits matched \d+ so overflow is the only possible failure; treat
		// as unversioned rather than panic on a pathological input.
		return ParsedName{
			TargetFileName: name,
			Version:        0,
			StrippedStem:   name,
			IsVersioned:    false,
		}
	}

	return ParsedName{
		TargetFileName: fmt.Sprintf("%s.%s", stem, ext),
		Version:        version,
		StrippedStem:   stem,
		IsVersioned:    true,
	}
}

// IsIgnored returns whether a file or directory name should be excluded from
// scans: names beginning with "." and a small set of well-known system file
// names (compared case-insensitively).
func IsIgnored(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return ignoredNames[strings.ToLower(name)]
}

// HasUsableExtension returns whether name has a "." that is not its first
// character and that leaves at least one character of extension.
func HasUsableExtension(name string) bool {
	index := strings.LastIndex(name, ".")
	return index > 0 && index < len(name)-1
}

// IsPathWithin returns whether candidate, after lexical normalization,
// is a path on or under root, compared on path-component boundaries. Both
// paths are only cleaned lexically; symbolic links are not resolved. It is
// used by ValidateRootPair to detect nested or overlapping roots.
func IsPathWithin(root, candidate string) bool {
	root = filepath.Clean(root)
	candidate = filepath.Clean(candidate)

	if root == candidate {
		return true
	}

	separator := string(filepath.Separator)
	if !strings.HasSuffix(root, separator) {
		root += separator
	}

	return strings.HasPrefix(candidate, root)
}
