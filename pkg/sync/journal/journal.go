// Package journal implements the recovery journal (C4): a durable JSON
// record of an in-progress sync run's plan and progress, read/written
// through a serialized FIFO queue so that every externally visible
// transition is persisted in order before the next one is issued.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rjfmedia/lempicka-sync/pkg/encoding"
	"github.com/rjfmedia/lempicka-sync/pkg/logging"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/plan"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/syncerrors"
)

// SchemaVersion is the current journal schema version. A reader rejects any
// journal carrying a different version with CodeInvalidPlan.
const SchemaVersion = 1

// ActiveEntry records an in-flight copy transaction: its identity, the
// backup it took (if any), and when it started.
type ActiveEntry struct {
	SourcePath         string    `json:"source_path"`
	TargetPath         string    `json:"target_path"`
	SourceRelativePath string    `json:"source_relative_path"`
	TargetRelativePath string    `json:"target_relative_path"`
	BackupPath         string    `json:"backup_path"`
	StartedAt          time.Time `json:"started_at"`
	Attempt            int       `json:"attempt"`
}

// FailedEntry records a plan item that failed permanently during a run.
type FailedEntry struct {
	TargetPath         string    `json:"target_path"`
	TargetRelativePath string    `json:"target_relative_path"`
	Code               string    `json:"code"`
	Message            string    `json:"message"`
	At                 time.Time `json:"at"`
}

// State is the full persisted journal document.
type State struct {
	SchemaVersion        int                    `json:"version"`
	RunID                string                 `json:"run_id"`
	LeftRoot             string                 `json:"left_root"`
	RightRoot            string                 `json:"right_root"`
	StartedAt            time.Time              `json:"started_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
	TotalBytes           int64                  `json:"total_bytes"`
	DirectoriesToCreate  []string               `json:"directories_to_create"`
	Plan                 []plan.Item            `json:"plan"`
	CompletedTargetPaths []string               `json:"completed_target_paths"`
	Failed               []FailedEntry          `json:"failed"`
	ActiveEntries        map[string]ActiveEntry `json:"active_entries"`
	BytesTransferred     int64                  `json:"bytes_transferred"`
}

// Summary is a compact view of a journal's state, derived for display.
type Summary struct {
	LeftRoot    string    `json:"left_root"`
	RightRoot   string    `json:"right_root"`
	Total       int       `json:"total"`
	Completed   int       `json:"completed"`
	Pending     int       `json:"pending"`
	FailedCount int       `json:"failed_count"`
	ActiveCount int       `json:"active_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// New constructs a fresh journal state for a newly planned run.
func New(runID string, bundle *plan.Bundle, totalBytes int64, now time.Time) *State {
	return &State{
		SchemaVersion:        SchemaVersion,
		RunID:                runID,
		LeftRoot:             bundle.LeftRoot,
		RightRoot:            bundle.RightRoot,
		StartedAt:            now,
		UpdatedAt:            now,
		TotalBytes:           totalBytes,
		DirectoriesToCreate:  append([]string(nil), bundle.DirectoriesToCreate...),
		Plan:                 append([]plan.Item(nil), bundle.Plan...),
		CompletedTargetPaths: []string{},
		Failed:               []FailedEntry{},
		ActiveEntries:        map[string]ActiveEntry{},
	}
}

// Read loads the journal at path. It returns (nil, nil) if the file does not
// exist, which callers interpret as "no sync in progress".
func Read(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, syncerrors.Wrap(syncerrors.CodeFilesystemError, "reading journal", path, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, syncerrors.Wrap(syncerrors.CodeInvalidPlan, "malformed journal JSON", path, err)
	}

	if state.SchemaVersion != SchemaVersion {
		return nil, syncerrors.New(syncerrors.CodeInvalidPlan, fmt.Sprintf("unsupported journal schema version %d", state.SchemaVersion))
	}

	normalize(&state)

	return &state, nil
}

// normalize ensures nil slices/maps read back as empty collections rather
// than nil, so callers can range over them unconditionally.
func normalize(state *State) {
	if state.CompletedTargetPaths == nil {
		state.CompletedTargetPaths = []string{}
	}
	if state.Failed == nil {
		state.Failed = []FailedEntry{}
	}
	if state.ActiveEntries == nil {
		state.ActiveEntries = map[string]ActiveEntry{}
	}
}

// Write persists state to path atomically, creating parent directories as
// needed. Callers are expected to route writes through a single-consumer
// Queue (see queue.go) so that journal mutations are globally serialized.
func Write(path string, state *State, logger *logging.Logger) error {
	err := encoding.MarshalAndSave(path, logger, func() ([]byte, error) {
		return json.MarshalIndent(state, "", "  ")
	})
	if err != nil {
		return syncerrors.Wrap(syncerrors.CodeFilesystemError, "writing journal", path, err)
	}
	return nil
}

// Remove deletes the journal at path. A missing file is treated as success.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return syncerrors.Wrap(syncerrors.CodeFilesystemError, "removing journal", path, err)
	}
	return nil
}

// BuildSummary derives a display summary from a journal state.
func BuildSummary(state *State) Summary {
	return Summary{
		LeftRoot:    state.LeftRoot,
		RightRoot:   state.RightRoot,
		Total:       len(state.Plan),
		Completed:   len(state.CompletedTargetPaths),
		Pending:     len(state.Plan) - len(state.CompletedTargetPaths) - len(state.Failed) - len(state.ActiveEntries),
		FailedCount: len(state.Failed),
		ActiveCount: len(state.ActiveEntries),
		UpdatedAt:   state.UpdatedAt,
	}
}

// RecoverActive rolls back every in-flight entry left over from an
// interrupted run: the partially written target is removed, and any backup
// is restored in its place. It mutates state in place, clearing
// ActiveEntries once all entries have been handled.
func RecoverActive(state *State, rename func(oldpath, newpath string) error) error {
	for target, entry := range state.ActiveEntries {
		if err := os.Remove(entry.TargetPath); err != nil && !os.IsNotExist(err) {
			return syncerrors.Wrap(syncerrors.CodeRestoreFailed, "removing partial target during recovery", entry.TargetPath, err)
		}

		if entry.BackupPath != "" {
			if err := rename(entry.BackupPath, entry.TargetPath); err != nil && !os.IsNotExist(err) {
				return syncerrors.Wrap(syncerrors.CodeRestoreFailed, "restoring backup during recovery", entry.BackupPath, err)
			}
		}

		delete(state.ActiveEntries, target)
	}

	return nil
}
