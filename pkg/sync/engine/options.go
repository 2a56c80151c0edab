package engine

import (
	"github.com/rjfmedia/lempicka-sync/pkg/sync/control"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/journal"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/metrics"
)

// SyncOptions configures a single call to Sync or Resume. The default:"…"
// struct tags record each field's default; DefaultSyncOptions returns the
// same values as a literal, and fillDefaults overlays them onto zero-valued
// fields, so the configuration layer (C12) and the CLI (C13) only need to
// override what the caller actually specified.
type SyncOptions struct {
	LeftRoot  string `default:""`
	RightRoot string `default:""`

	DirectoriesToCreate []string `default:"[]"`

	ShouldCancel control.Predicate `default:"-"`
	ShouldPause  control.Predicate `default:"-"`

	ContinueOnError bool `default:"false"`

	RetryCount       int `default:"2"`
	RetryBaseDelayMs int `default:"300"`

	SmallFileThresholdBytes int64 `default:"4194304"`
	MaxParallelSmallFiles   int   `default:"3"`

	JournalPath string `default:""`

	// JournalState and ResumeFromJournal are internal wiring used by
	// Resume; callers driving a fresh Sync leave them unset.
	JournalState      *journal.State `default:"-"`
	ResumeFromJournal bool           `default:"false"`

	// RunID is minted via the identifier package if left empty.
	RunID string `default:""`

	// MetricsCollector is nil-safe; a nil collector disables metrics.
	MetricsCollector *metrics.Collector `default:"-"`
}

// DefaultSyncOptions returns a SyncOptions populated with this package's
// stated defaults.
func DefaultSyncOptions() SyncOptions {
	return SyncOptions{
		ShouldCancel:            control.AlwaysFalse,
		ShouldPause:             control.AlwaysFalse,
		ContinueOnError:         false,
		RetryCount:              2,
		RetryBaseDelayMs:        300,
		SmallFileThresholdBytes: 4 * 1024 * 1024,
		MaxParallelSmallFiles:   3,
	}
}

// fillDefaults overlays zero-valued fields of o with the package defaults,
// without disturbing fields the caller already set.
func (o SyncOptions) fillDefaults() SyncOptions {
	defaults := DefaultSyncOptions()

	if o.ShouldCancel == nil {
		o.ShouldCancel = defaults.ShouldCancel
	}
	if o.ShouldPause == nil {
		o.ShouldPause = defaults.ShouldPause
	}
	if o.RetryCount == 0 {
		o.RetryCount = defaults.RetryCount
	}
	if o.RetryBaseDelayMs == 0 {
		o.RetryBaseDelayMs = defaults.RetryBaseDelayMs
	}
	if o.SmallFileThresholdBytes == 0 {
		o.SmallFileThresholdBytes = defaults.SmallFileThresholdBytes
	}
	if o.MaxParallelSmallFiles == 0 {
		o.MaxParallelSmallFiles = defaults.MaxParallelSmallFiles
	}

	return o
}
