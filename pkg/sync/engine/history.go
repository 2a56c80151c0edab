package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rjfmedia/lempicka-sync/pkg/sync/syncerrors"
)

// historyLog is a single append-mode handle to <left_root>/sync-history.log,
// serializing writes within a run.
type historyLog struct {
	mu   sync.Mutex
	file *os.File
}

// openHistoryLog opens the history log in append mode. If leftRoot is
// empty, logging is skipped entirely and a nil *historyLog is returned.
func openHistoryLog(leftRoot string) (*historyLog, error) {
	if leftRoot == "" {
		return nil, nil
	}

	path := filepath.Join(leftRoot, "sync-history.log")
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, syncerrors.Wrap(syncerrors.CodeSyncLogError, "opening history log", path, err)
	}

	return &historyLog{file: file}, nil
}

// Append writes one history line for a successfully completed transaction:
// "<YYYY-MM-DD HH:MM:SS>\t<source_path>\t<target_path>\n" in local time.
func (h *historyLog) Append(sourcePath, targetPath string, now time.Time) error {
	if h == nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	line := fmt.Sprintf("%s\t%s\t%s\n", now.Local().Format("2006-01-02 15:04:05"), sourcePath, targetPath)
	if _, err := h.file.WriteString(line); err != nil {
		return syncerrors.Wrap(syncerrors.CodeSyncLogError, "writing history log", h.file.Name(), err)
	}

	return nil
}

// Close closes the underlying file handle. It is a no-op on a nil log.
func (h *historyLog) Close() error {
	if h == nil {
		return nil
	}
	return h.file.Close()
}
