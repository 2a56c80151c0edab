// Package syncerrors defines the stable error vocabulary used across the
// synchronization engine: a typed Code enum (in the style of the teacher's
// synchronization status type) wrapped in an Error carrying the failing path
// and a short OS-errno hint.
package syncerrors

// Code is a stable identifier for a class of synchronization error. It is an
// integer enum whose text form (MarshalText/UnmarshalText) is the stable
// upper-case name used for serialization; its numeric order has no
// significance.
type Code uint8

const (
	// CodeInvalidDirectory indicates that a root is not a directory.
	CodeInvalidDirectory Code = iota
	// CodeFilesystemError is a generic wrapped OS error.
	CodeFilesystemError
	// CodeDestinationPathConflict indicates a required directory exists as
	// a non-directory, or a target is non-regular.
	CodeDestinationPathConflict
	// CodeSourceUnavailable indicates a source file vanished or became
	// unreadable.
	CodeSourceUnavailable
	// CodeDestinationUnavailable indicates a destination could not be
	// created or written.
	CodeDestinationUnavailable
	// CodeSyncCopyFailed is a wrapped copy-loop failure.
	CodeSyncCopyFailed
	// CodeBackupCleanupFailed indicates a copy committed but its backup
	// could not be removed.
	CodeBackupCleanupFailed
	// CodeRestoreFailed indicates a rollback could not restore a backup.
	CodeRestoreFailed
	// CodeSyncLogError indicates a history-log open or write failure.
	CodeSyncLogError
	// CodeSyncCancelled indicates a cooperative cancellation was observed.
	CodeSyncCancelled
	// CodeInvalidPlan indicates the caller provided a malformed plan or
	// journal schema it does not recognize.
	CodeInvalidPlan
	// CodeInvalidPlanItem indicates a malformed plan item.
	CodeInvalidPlanItem
	// CodeNoRecoveryJournal indicates a resume was requested but no
	// journal exists.
	CodeNoRecoveryJournal
)

// String returns a human-readable name for the code, used in log output.
func (c Code) String() string {
	switch c {
	case CodeInvalidDirectory:
		return "invalid directory"
	case CodeFilesystemError:
		return "filesystem error"
	case CodeDestinationPathConflict:
		return "destination path conflict"
	case CodeSourceUnavailable:
		return "source unavailable"
	case CodeDestinationUnavailable:
		return "destination unavailable"
	case CodeSyncCopyFailed:
		return "sync copy failed"
	case CodeBackupCleanupFailed:
		return "backup cleanup failed"
	case CodeRestoreFailed:
		return "restore failed"
	case CodeSyncLogError:
		return "sync log error"
	case CodeSyncCancelled:
		return "sync cancelled"
	case CodeInvalidPlan:
		return "invalid plan"
	case CodeInvalidPlanItem:
		return "invalid plan item"
	case CodeNoRecoveryJournal:
		return "no recovery journal"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Code) MarshalText() ([]byte, error) {
	var result string
	switch c {
	case CodeInvalidDirectory:
		result = "INVALID_DIRECTORY"
	case CodeFilesystemError:
		result = "FILESYSTEM_ERROR"
	case CodeDestinationPathConflict:
		result = "DESTINATION_PATH_CONFLICT"
	case CodeSourceUnavailable:
		result = "SOURCE_UNAVAILABLE"
	case CodeDestinationUnavailable:
		result = "DESTINATION_UNAVAILABLE"
	case CodeSyncCopyFailed:
		result = "SYNC_COPY_FAILED"
	case CodeBackupCleanupFailed:
		result = "BACKUP_CLEANUP_FAILED"
	case CodeRestoreFailed:
		result = "RESTORE_FAILED"
	case CodeSyncLogError:
		result = "SYNC_LOG_ERROR"
	case CodeSyncCancelled:
		result = "SYNC_CANCELLED"
	case CodeInvalidPlan:
		result = "INVALID_PLAN"
	case CodeInvalidPlanItem:
		result = "INVALID_PLAN_ITEM"
	case CodeNoRecoveryJournal:
		result = "NO_RECOVERY_JOURNAL"
	default:
		result = "UNKNOWN"
	}
	return []byte(result), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Code) UnmarshalText(text []byte) error {
	switch string(text) {
	case "INVALID_DIRECTORY":
		*c = CodeInvalidDirectory
	case "FILESYSTEM_ERROR":
		*c = CodeFilesystemError
	case "DESTINATION_PATH_CONFLICT":
		*c = CodeDestinationPathConflict
	case "SOURCE_UNAVAILABLE":
		*c = CodeSourceUnavailable
	case "DESTINATION_UNAVAILABLE":
		*c = CodeDestinationUnavailable
	case "SYNC_COPY_FAILED":
		*c = CodeSyncCopyFailed
	case "BACKUP_CLEANUP_FAILED":
		*c = CodeBackupCleanupFailed
	case "RESTORE_FAILED":
		*c = CodeRestoreFailed
	case "SYNC_LOG_ERROR":
		*c = CodeSyncLogError
	case "SYNC_CANCELLED":
		*c = CodeSyncCancelled
	case "INVALID_PLAN":
		*c = CodeInvalidPlan
	case "INVALID_PLAN_ITEM":
		*c = CodeInvalidPlanItem
	case "NO_RECOVERY_JOURNAL":
		*c = CodeNoRecoveryJournal
	default:
		return errUnknownCode(string(text))
	}
	return nil
}

type errUnknownCode string

func (e errUnknownCode) Error() string { return "unknown error code: " + string(e) }
