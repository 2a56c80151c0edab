package filesystem

const (
	// TemporaryNamePrefix is the file name prefix used for all general-purpose
	// temporary files created by the synchronization engine (e.g. the
	// intermediate file used to persist the recovery journal atomically).
	// Using this prefix guarantees that any such files are easily recognized
	// and excluded from directory scans. It may be suffixed with additional
	// elements if desired. It is distinct from the per-backup naming scheme
	// used by the copy transaction, which embeds a timestamp, PID, and random
	// suffix alongside the original file name.
	TemporaryNamePrefix = ".lempicka-temporary-"
)
