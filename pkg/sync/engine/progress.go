package engine

import "time"

// Phase is a tagged variant identifying what a Progress event describes.
type Phase string

const (
	PhaseScanning Phase = "scanning"
	PhasePlanning Phase = "planning"
	PhaseCopying  Phase = "copying"
	PhaseCopied   Phase = "copied"
	PhaseFailed   Phase = "failed"
	PhasePaused   Phase = "paused"
	PhaseRetrying Phase = "retrying"
	PhaseComplete Phase = "complete"
)

// Progress is emitted throughout a run. Fields not relevant to a given
// Phase are left at their zero value.
type Progress struct {
	Phase                 Phase     `json:"phase"`
	RunID                 string    `json:"run_id"`
	CurrentIndex          int       `json:"current_index"`
	Completed             int       `json:"completed"`
	FailedCount           int       `json:"failed_count"`
	Total                 int       `json:"total"`
	TotalBytes            int64     `json:"total_bytes"`
	BytesTransferred      int64     `json:"bytes_transferred"`
	ThroughputBPS         float64   `json:"throughput_bps"`
	TargetRelativePath    string    `json:"target_relative_path"`
	CurrentFileBytes      int64     `json:"current_file_bytes"`
	CurrentFileTotalBytes int64     `json:"current_file_total_bytes"`
	ActiveCount           int       `json:"active_count"`
	IsPaused              bool      `json:"is_paused"`
	RetryAttempt          int       `json:"retry_attempt"`
	Message               string    `json:"message"`
	At                    time.Time `json:"-"`
}

// OnProgress is the callback signature used to observe a run's progress.
type OnProgress func(Progress)

// FailureRecord describes a plan item that failed permanently during a run.
// A lenient (continue_on_error) run may collect several; a strict run stops
// after the first.
type FailureRecord struct {
	TargetRelativePath string `json:"target_relative_path"`
	Code               string `json:"code"`
	Message            string `json:"message"`
}

// Result is returned by Sync and Resume when a run completes. When a run
// aborts with a *syncerrors.Error, Sync returns a nil Result and attaches
// the partial Result to that error via syncerrors.Error.WithPartial.
type Result struct {
	Copied               int             `json:"copied"`
	Total                int             `json:"total"`
	BytesCopied          int64           `json:"bytes_copied"`
	TotalBytes           int64           `json:"total_bytes"`
	Failed               []FailureRecord `json:"failed"`
	SucceededFiles       []string        `json:"succeeded_files"`
	DurationMs           int64           `json:"duration_ms"`
	AverageThroughputBPS float64         `json:"average_throughput_bps"`
	LeftRoot             string          `json:"left_root"`
	RightRoot            string          `json:"right_root"`
	ResumedFromJournal   bool            `json:"resumed_from_journal"`
	RunID                string          `json:"run_id"`
}
