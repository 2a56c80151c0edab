// Package transaction implements the per-file copy transaction (C5): a
// backup → stream-copy → fsync-rename → cleanup state machine with
// rollback on any failure or cancellation.
package transaction

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rjfmedia/lempicka-sync/pkg/encoding"
	"github.com/rjfmedia/lempicka-sync/pkg/random"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/control"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/journal"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/plan"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/syncerrors"
)

// ChunkSize is the reference streaming-copy buffer size.
const ChunkSize = 256 * 1024

// Phase identifies a transition in the copy transaction's state machine,
// reported to the Persist callback so the caller can update and durably
// write the shared journal state before the transaction proceeds.
type Phase int

const (
	// PhasePlanned: the transaction has been admitted; no backup has been
	// taken yet.
	PhasePlanned Phase = iota
	// PhaseBackedUp: any pre-existing destination file has been renamed
	// aside (or there was none).
	PhaseBackedUp
	// PhaseCommitted: the new file is in place and any backup has been
	// removed.
	PhaseCommitted
	// PhaseRolledBack: the transaction failed or was cancelled and any
	// backup has been restored.
	PhaseRolledBack
)

// Persist is invoked at each phase transition with the active entry as it
// should be recorded in the journal at that point. Implementations are
// expected to update shared state and durably write the journal (e.g. via
// journal.Queue) before returning, since the runner must not proceed past
// an unpersisted transition.
type Persist func(phase Phase, entry journal.ActiveEntry) error

// Transaction executes the copy of a single plan item.
type Transaction struct {
	Item      plan.Item
	Attempt   int
	Tokens    control.Tokens
	ChunkSize int
	// OnChunk is called after each chunk is written, with the cumulative
	// bytes written so far and the item's total size.
	OnChunk func(written, total int64)
	// PreserveCreationDate is a best-effort platform hook; any error it
	// returns is ignored and never fails the transaction.
	PreserveCreationDate func(sourcePath, targetPath string) error
}

// Run executes the transaction's full state machine, calling persist at
// each transition. now is injected for deterministic testing.
func (tx *Transaction) Run(persist Persist, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	chunkSize := tx.ChunkSize
	if chunkSize <= 0 {
		chunkSize = ChunkSize
	}

	entry := journal.ActiveEntry{
		SourcePath:         tx.Item.SourcePath,
		TargetPath:         tx.Item.TargetPath,
		SourceRelativePath: tx.Item.SourceRelativePath,
		TargetRelativePath: tx.Item.TargetRelativePath,
		StartedAt:          now(),
		Attempt:            tx.Attempt,
	}

	if err := tx.Tokens.Checkpoint(); err != nil {
		return err
	}

	if _, err := os.Stat(tx.Item.SourcePath); err != nil {
		return syncerrors.Wrap(syncerrors.CodeSourceUnavailable, "source unreadable", tx.Item.SourcePath, err)
	}

	if err := persist(PhasePlanned, entry); err != nil {
		return err
	}

	backupPath, rollbackErr := tx.backup(&entry, persist)
	if rollbackErr != nil {
		if backupPath != "" {
			return tx.rollback(entry, backupPath, persist, rollbackErr)
		}
		if perr := persist(PhaseRolledBack, entry); perr != nil {
			return perr
		}
		return rollbackErr
	}

	if err := tx.stream(chunkSize); err != nil {
		return tx.rollback(entry, backupPath, persist, err)
	}

	if tx.PreserveCreationDate != nil {
		_ = tx.PreserveCreationDate(tx.Item.SourcePath, tx.Item.TargetPath)
	}

	if backupPath != "" {
		if err := os.Remove(backupPath); err != nil && !os.IsNotExist(err) {
			return syncerrors.Wrap(syncerrors.CodeBackupCleanupFailed, "removing backup", backupPath, err)
		}
	}

	if err := persist(PhaseCommitted, entry); err != nil {
		return err
	}

	return nil
}

// backup stats the target; if a file exists there, it is renamed aside to a
// freshly generated backup name. The backed-up entry (with BackupPath set,
// or left empty if no prior destination existed) is persisted before
// returning.
func (tx *Transaction) backup(entry *journal.ActiveEntry, persist Persist) (string, error) {
	info, err := os.Lstat(tx.Item.TargetPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", syncerrors.Wrap(syncerrors.CodeFilesystemError, "stating target", tx.Item.TargetPath, err)
		}
		if perr := persist(PhaseBackedUp, *entry); perr != nil {
			return "", perr
		}
		return "", nil
	}

	if !info.Mode().IsRegular() {
		return "", syncerrors.New(syncerrors.CodeDestinationPathConflict, fmt.Sprintf("target exists and is not a regular file: %s", tx.Item.TargetPath))
	}

	backupPath, err := generateBackupName(tx.Item.TargetPath)
	if err != nil {
		return "", syncerrors.Wrap(syncerrors.CodeFilesystemError, "generating backup name", tx.Item.TargetPath, err)
	}

	if err := os.Rename(tx.Item.TargetPath, backupPath); err != nil {
		return "", syncerrors.Wrap(syncerrors.CodeFilesystemError, "renaming target to backup", tx.Item.TargetPath, err)
	}

	entry.BackupPath = backupPath
	if perr := persist(PhaseBackedUp, *entry); perr != nil {
		return backupPath, perr
	}

	return backupPath, nil
}

// stream performs the exclusive-create streaming copy with checkpointed
// chunks, flushing before returning so the written file's size is
// authoritative for any subsequent rename or stat.
func (tx *Transaction) stream(chunkSize int) error {
	source, err := os.Open(tx.Item.SourcePath)
	if err != nil {
		return syncerrors.Wrap(syncerrors.CodeSourceUnavailable, "opening source", tx.Item.SourcePath, err)
	}
	defer source.Close()

	destination, err := os.OpenFile(tx.Item.TargetPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return syncerrors.Wrap(syncerrors.CodeDestinationUnavailable, "creating target", tx.Item.TargetPath, err)
	}
	defer destination.Close()

	buffer := make([]byte, chunkSize)
	var written int64
	for {
		if err := tx.Tokens.Checkpoint(); err != nil {
			return err
		}

		n, readErr := source.Read(buffer)
		if n > 0 {
			if err := writeFull(destination, buffer[:n]); err != nil {
				return syncerrors.Wrap(syncerrors.CodeSyncCopyFailed, "writing chunk", tx.Item.TargetPath, err)
			}
			written += int64(n)
			if tx.OnChunk != nil {
				tx.OnChunk(written, tx.Item.SourceSize)
			}

			if err := tx.Tokens.Checkpoint(); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return syncerrors.Wrap(syncerrors.CodeSyncCopyFailed, "reading source chunk", tx.Item.SourcePath, readErr)
		}
	}

	if err := destination.Sync(); err != nil {
		return syncerrors.Wrap(syncerrors.CodeSyncCopyFailed, "flushing target", tx.Item.TargetPath, err)
	}

	return nil
}

// writeFull performs a full write loop for a single chunk; short writes are
// retried in-segment rather than treated as errors.
func writeFull(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// rollback deletes any partial target and restores a backup if one was
// taken, then persists the rolled-back entry and returns the original
// cause wrapped as appropriate.
func (tx *Transaction) rollback(entry journal.ActiveEntry, backupPath string, persist Persist, cause error) error {
	if err := os.Remove(tx.Item.TargetPath); err != nil && !os.IsNotExist(err) {
		return syncerrors.Wrap(syncerrors.CodeRestoreFailed, "removing partial target during rollback", tx.Item.TargetPath, err)
	}

	if backupPath != "" {
		if err := os.Rename(backupPath, tx.Item.TargetPath); err != nil && !os.IsNotExist(err) {
			return syncerrors.Wrap(syncerrors.CodeRestoreFailed, "restoring backup during rollback", backupPath, err)
		}
	}

	if perr := persist(PhaseRolledBack, entry); perr != nil {
		return perr
	}

	return cause
}

// generateBackupName produces a temporary backup path in the same
// directory as targetPath, following the grammar:
// "." + basename + ".lempicka-tmp-" + epoch_ms + "-" + pid + "-" + rand6.
// Collisions (an existing file at the generated path) are handled by
// re-generating the random suffix.
func generateBackupName(targetPath string) (string, error) {
	dir := filepath.Dir(targetPath)
	base := filepath.Base(targetPath)
	pid := os.Getpid()

	for attempt := 0; attempt < 10; attempt++ {
		suffix, err := randomAlphanumeric(6)
		if err != nil {
			return "", err
		}

		candidate := filepath.Join(dir, fmt.Sprintf(".%s.lempicka-tmp-%d-%d-%s", base, time.Now().UnixMilli(), pid, suffix))
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("unable to generate unique backup name for %s", targetPath)
}

// randomAlphanumeric returns an n-character alphanumeric token derived from
// Base62-encoded random bytes.
func randomAlphanumeric(n int) (string, error) {
	data, err := random.New(n)
	if err != nil {
		return "", err
	}
	encoded := encoding.EncodeBase62(data)
	for len(encoded) < n {
		encoded += encoded
	}
	return encoded[:n], nil
}
