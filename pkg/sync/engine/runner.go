package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/rjfmedia/lempicka-sync/pkg/identifier"
	"github.com/rjfmedia/lempicka-sync/pkg/logging"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/control"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/journal"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/metrics"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/plan"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/syncerrors"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/transaction"
)

// progressThrottle is the minimum interval between consecutive "copying"
// progress emissions.
const progressThrottle = 250 * time.Millisecond

// throughputWindow is the minimum span of time a throughput sample must
// cover before it is reported; early in a run, when less time than this has
// elapsed, the rate is measured over the whole run so far instead.
const throughputWindow = time.Second

// throughputSample records a point-in-time total byte count used to compute
// a sliding-window transfer rate.
type throughputSample struct {
	at    time.Time
	bytes int64
}

// run executes the sync runner (C7) for a single pass over bundle's plan
// items, honoring options and reporting through onProgress. It owns the
// journal's lifecycle for this run: it loads or constructs journal state,
// recovers any leftover in-flight entries, and deletes the journal file on
// full success.
func run(bundle *plan.Bundle, onProgress OnProgress, options SyncOptions, logger *logging.Logger, resumed bool) (*Result, error) {
	options = options.fillDefaults()
	logger = logger.Sublogger("engine.run")

	if onProgress == nil {
		onProgress = func(Progress) {}
	}

	runID := options.RunID
	if runID == "" {
		generated, err := identifier.New(identifier.PrefixRun)
		if err != nil {
			return nil, syncerrors.Wrap(syncerrors.CodeFilesystemError, "minting run id", "", err)
		}
		runID = generated
	}

	if err := fillMissingSourceSizes(bundle.Plan); err != nil {
		return nil, err
	}

	var totalBytes int64
	for _, item := range bundle.Plan {
		totalBytes += item.SourceSize
	}

	state := options.JournalState
	var queue *journal.Queue
	if options.JournalPath != "" {
		queue = journal.NewQueue(logger)
		defer queue.Close()
	}

	if state == nil {
		state = journal.New(runID, bundle, totalBytes, time.Now())
	} else {
		state.RunID = runID
	}

	rename := renameWithCrossDeviceFallback
	if err := journal.RecoverActive(state, rename); err != nil {
		return nil, err
	}
	if queue != nil {
		if err := queue.Enqueue(options.JournalPath, state); err != nil {
			return nil, err
		}
	}

	history, err := openHistoryLog(bundle.LeftRoot)
	if err != nil {
		return nil, err
	}
	defer history.Close()

	tokens := control.Tokens{
		ShouldCancel: options.ShouldCancel,
		ShouldPause:  options.ShouldPause,
		OnPausedTick: func() {
			onProgress(Progress{Phase: PhasePaused, RunID: runID, IsPaused: true})
		},
	}

	directories := options.DirectoriesToCreate
	if len(directories) == 0 {
		directories = bundle.DirectoriesToCreate
	}
	if err := createDirectories(bundle.RightRoot, directories, tokens, options); err != nil {
		return nil, err
	}
	if queue != nil {
		state.UpdatedAt = time.Now()
		if err := queue.Enqueue(options.JournalPath, state); err != nil {
			return nil, err
		}
	}

	r := &runState{
		bundle:     bundle,
		state:      state,
		queue:      queue,
		journalPath: options.JournalPath,
		history:    history,
		tokens:     tokens,
		options:    options,
		onProgress: onProgress,
		runID:      runID,
		logger:     logger,
		startedAt:  time.Now(),
		resumed:    resumed,
		metrics:    options.MetricsCollector,
		inFlight:   make(map[string]int64),
	}

	return r.execute()
}

// runState holds the mutable, shared state for one run, guarded by mu where
// concurrent transactions may touch it.
type runState struct {
	mu sync.Mutex

	bundle      *plan.Bundle
	state       *journal.State
	queue       *journal.Queue
	journalPath string
	history     *historyLog
	tokens      control.Tokens
	options     SyncOptions
	onProgress  OnProgress
	runID       string
	logger      *logging.Logger
	startedAt   time.Time
	resumed     bool
	metrics     *metrics.Collector

	completed        int
	bytesTransferred int64
	failed           []FailureRecord
	succeeded        []string
	activeCount      int
	lastEmit         time.Time

	// inFlight tracks bytes written so far for transactions that have not
	// yet committed, keyed by target path, so throughput reflects partial
	// progress on large files rather than jumping only on commit.
	inFlight          map[string]int64
	throughputSamples []throughputSample
}

func (r *runState) persistLocked() error {
	r.state.UpdatedAt = time.Now()
	if r.queue == nil {
		return nil
	}
	return r.queue.Enqueue(r.journalPath, r.state)
}

// execute partitions pending items and drives them through the copy
// transaction, then finalizes the run.
func (r *runState) execute() (*Result, error) {
	completedSet := make(map[string]bool, len(r.state.CompletedTargetPaths))
	for _, t := range r.state.CompletedTargetPaths {
		completedSet[t] = true
	}

	var small, large []plan.Item
	for _, item := range r.bundle.Plan {
		if completedSet[item.TargetPath] {
			continue
		}
		if item.SourceSize <= r.options.SmallFileThresholdBytes {
			small = append(small, item)
		} else {
			large = append(large, item)
		}
	}

	total := len(r.bundle.Plan)
	index := 0

	runSequential := func(items []plan.Item) error {
		for _, item := range items {
			index++
			if err := r.runItem(item, index, total); err != nil {
				return err
			}
		}
		return nil
	}

	var runErr error
	if r.options.ContinueOnError && r.options.MaxParallelSmallFiles > 1 && len(small) > 1 {
		runErr = r.runPool(small, total, &index)
	} else {
		runErr = runSequential(small)
	}

	if runErr == nil {
		runErr = runSequential(large)
	}

	if runErr != nil {
		if err := r.persistFinal(); err != nil {
			r.logger.Warnf("journal persist failed during abort: %v", err)
		}
		result := r.buildResult()
		if syncErr, ok := runErr.(*syncerrors.Error); ok {
			return nil, syncErr.WithPartial(result)
		}
		return nil, runErr
	}

	if err := journal.Remove(r.journalPath); err != nil {
		r.logger.Warnf("unable to remove journal on success: %v", err)
	}

	result := r.buildResult()
	r.emitThrottled(Progress{
		Phase: PhaseComplete, RunID: r.runID, Completed: result.Copied, Total: total,
		FailedCount: len(result.Failed), BytesTransferred: result.BytesCopied, TotalBytes: result.TotalBytes,
	}, true)

	return result, nil
}

func (r *runState) persistFinal() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.persistLocked()
}

// runPool runs items through a bounded worker pool sized to
// min(MaxParallelSmallFiles, len(items)), used only when ContinueOnError
// permits partial progress to survive individual item failures.
func (r *runState) runPool(items []plan.Item, total int, index *int) error {
	size := r.options.MaxParallelSmallFiles
	if size > len(items) {
		size = len(items)
	}

	group, ctx := errgroup.WithContext(context.Background())
	sem := semaphore.NewWeighted(int64(size))

	for _, item := range items {
		item := item
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		r.mu.Lock()
		*index++
		localIndex := *index
		r.mu.Unlock()

		group.Go(func() error {
			defer sem.Release(1)
			return r.runItem(item, localIndex, total)
		})
	}

	return group.Wait()
}

// runItem runs a single plan item's copy transaction under the retry
// kernel, updating shared run state and emitting progress.
func (r *runState) runItem(item plan.Item, index, total int) error {
	r.mu.Lock()
	r.activeCount++
	r.metrics.SetActiveTransactions(r.activeCount)
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.activeCount--
		r.metrics.SetActiveTransactions(r.activeCount)
		r.mu.Unlock()
	}()

	policy := control.RetryPolicy{
		MaxAttempts: r.options.RetryCount,
		BaseDelay:   time.Duration(r.options.RetryBaseDelayMs) * time.Millisecond,
	}

	attempt := 0
	err := control.Retry(policy, r.tokens, func(event control.RetryEvent) {
		attempt = event.Attempt
		r.metrics.IncRetries(syncerrors.FSCodeFromError(event.Err))
		r.emitThrottled(Progress{
			Phase: PhaseRetrying, RunID: r.runID, CurrentIndex: index, Total: total,
			TargetRelativePath: item.TargetRelativePath, RetryAttempt: event.Attempt,
			Message: event.Err.Error(),
		}, true)
	}, func() error {
		return r.runTransaction(item, attempt, index, total)
	})

	if err != nil {
		if syncErr, ok := err.(*syncerrors.Error); ok && syncErr.Code == syncerrors.CodeSyncCancelled {
			return err
		}

		r.mu.Lock()
		r.failed = append(r.failed, FailureRecord{
			TargetRelativePath: item.TargetRelativePath,
			Code:               codeOf(err),
			Message:            err.Error(),
		})
		r.state.Failed = append(r.state.Failed, journal.FailedEntry{
			TargetPath: item.TargetPath, TargetRelativePath: item.TargetRelativePath,
			Code: codeOf(err), Message: err.Error(), At: time.Now(),
		})
		delete(r.inFlight, item.TargetPath)
		persistErr := r.persistLocked()
		r.mu.Unlock()
		if persistErr != nil {
			r.logger.Warnf("journal persist failed after item failure: %v", persistErr)
		}
		r.metrics.IncFilesFailed()

		r.emitThrottled(Progress{
			Phase: PhaseFailed, RunID: r.runID, CurrentIndex: index, Total: total,
			TargetRelativePath: item.TargetRelativePath, Message: err.Error(),
			FailedCount: len(r.failed),
		}, true)

		if !r.options.ContinueOnError {
			return err
		}
		return nil
	}

	return nil
}

// runTransaction drives one attempt of the copy transaction, wiring its
// phase transitions to journal persistence and its chunk progress to
// throttled progress emission.
func (r *runState) runTransaction(item plan.Item, attempt, index, total int) error {
	tx := &transaction.Transaction{
		Item:    item,
		Attempt: attempt,
		Tokens:  r.tokens,
		OnChunk: func(written, totalBytes int64) {
			r.mu.Lock()
			r.inFlight[item.TargetPath] = written
			r.mu.Unlock()

			r.emitThrottled(Progress{
				Phase: PhaseCopying, RunID: r.runID, CurrentIndex: index, Total: total,
				TargetRelativePath: item.TargetRelativePath, CurrentFileBytes: written,
				CurrentFileTotalBytes: totalBytes,
			}, true)
		},
	}

	err := tx.Run(func(phase transaction.Phase, entry journal.ActiveEntry) error {
		r.mu.Lock()
		defer r.mu.Unlock()

		switch phase {
		case transaction.PhasePlanned, transaction.PhaseBackedUp:
			r.state.ActiveEntries[item.TargetPath] = entry
		case transaction.PhaseCommitted:
			delete(r.state.ActiveEntries, item.TargetPath)
			delete(r.inFlight, item.TargetPath)
			r.state.CompletedTargetPaths = append(r.state.CompletedTargetPaths, item.TargetPath)
			r.bytesTransferred += item.SourceSize
			r.state.BytesTransferred = r.bytesTransferred
			r.completed++
			r.succeeded = append(r.succeeded, item.TargetRelativePath)
			r.metrics.IncFilesCopied()
			r.metrics.AddBytesTransferred(item.SourceSize)
		case transaction.PhaseRolledBack:
			delete(r.state.ActiveEntries, item.TargetPath)
			delete(r.inFlight, item.TargetPath)
		}

		return r.persistLocked()
	}, nil)

	if err != nil {
		return err
	}

	if histErr := r.history.Append(item.SourcePath, item.TargetPath, time.Now()); histErr != nil {
		return histErr
	}

	r.mu.Lock()
	completed := r.completed
	r.mu.Unlock()

	r.emitThrottled(Progress{
		Phase: PhaseCopied, RunID: r.runID, CurrentIndex: index, Total: total,
		Completed: completed, TargetRelativePath: item.TargetRelativePath,
		BytesTransferred: r.bytesTransferred,
	}, true)

	return nil
}

// emitThrottled emits a progress event, throttling "copying"-phase events
// to at most once per progressThrottle interval; other phases always pass
// through when alwaysEmitNonCopying is true and are throttled the same way
// otherwise. Every emitted event carries a freshly sampled sliding-window
// throughput figure.
func (r *runState) emitThrottled(p Progress, alwaysEmitNonCopying bool) {
	r.mu.Lock()
	now := time.Now()
	if p.Phase == PhaseCopying || !alwaysEmitNonCopying {
		if now.Sub(r.lastEmit) < progressThrottle {
			r.mu.Unlock()
			return
		}
		r.lastEmit = now
	}
	p.ThroughputBPS = r.throughputLocked(now)
	r.mu.Unlock()

	r.onProgress(p)
}

// totalBytesLocked returns the current best estimate of bytes moved so far
// across the whole run: bytes from committed items plus bytes already
// written by transactions still in flight. r.mu must be held.
func (r *runState) totalBytesLocked() int64 {
	total := r.bytesTransferred
	for _, written := range r.inFlight {
		total += written
	}
	return total
}

// throughputLocked records a sample of totalBytesLocked() at now, discards
// samples older than throughputWindow, and returns the transfer rate
// measured between the oldest remaining sample and now. Early in a run, when
// less than throughputWindow has elapsed, the rate covers the whole run so
// far instead of a full window. r.mu must be held.
func (r *runState) throughputLocked(now time.Time) float64 {
	total := r.totalBytesLocked()
	r.throughputSamples = append(r.throughputSamples, throughputSample{at: now, bytes: total})

	cutoff := now.Add(-throughputWindow)
	keepFrom := 0
	for keepFrom < len(r.throughputSamples)-1 && r.throughputSamples[keepFrom+1].at.Before(cutoff) {
		keepFrom++
	}
	if keepFrom > 0 {
		r.throughputSamples = r.throughputSamples[keepFrom:]
	}

	baseline := r.throughputSamples[0]
	elapsed := now.Sub(baseline.at)
	if elapsed <= 0 {
		return 0
	}
	return float64(total-baseline.bytes) / elapsed.Seconds()
}

func (r *runState) buildResult() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	var totalBytes int64
	for _, item := range r.bundle.Plan {
		totalBytes += item.SourceSize
	}

	duration := time.Since(r.startedAt)
	var throughput float64
	if duration > 0 {
		throughput = float64(r.bytesTransferred) / duration.Seconds()
	}
	r.metrics.ObserveDuration(duration.Seconds())

	return &Result{
		Copied:               r.completed,
		Total:                len(r.bundle.Plan),
		BytesCopied:          r.bytesTransferred,
		TotalBytes:           totalBytes,
		Failed:               append([]FailureRecord(nil), r.failed...),
		SucceededFiles:       append([]string(nil), r.succeeded...),
		DurationMs:           duration.Milliseconds(),
		AverageThroughputBPS: throughput,
		LeftRoot:             r.bundle.LeftRoot,
		RightRoot:            r.bundle.RightRoot,
		ResumedFromJournal:   r.resumed,
		RunID:                r.runID,
	}
}

// codeOf extracts a syncerrors.Code's stable text form from err, or
// "UNKNOWN" if err is not a *syncerrors.Error.
func codeOf(err error) string {
	if syncErr, ok := err.(*syncerrors.Error); ok {
		text, _ := syncErr.Code.MarshalText()
		return string(text)
	}
	return "UNKNOWN"
}

// fillMissingSourceSizes stats any plan item whose SourceSize is not yet
// known (e.g. a journal entry read back without it).
func fillMissingSourceSizes(items []plan.Item) error {
	for i := range items {
		if items[i].SourceSize > 0 {
			continue
		}
		info, err := os.Stat(items[i].SourcePath)
		if err != nil {
			return syncerrors.Wrap(syncerrors.CodeSourceUnavailable, "stating source", items[i].SourcePath, err)
		}
		items[i].SourceSize = info.Size()
	}
	return nil
}

// createDirectories creates each directory (mkdir -p semantics) under
// rightRoot, retrying recoverable failures.
func createDirectories(rightRoot string, directories []string, tokens control.Tokens, options SyncOptions) error {
	policy := control.RetryPolicy{
		MaxAttempts: options.RetryCount,
		BaseDelay:   time.Duration(options.RetryBaseDelayMs) * time.Millisecond,
	}

	for _, dir := range directories {
		full := filepath.Join(rightRoot, dir)
		err := control.Retry(policy, tokens, nil, func() error {
			if mkErr := os.MkdirAll(full, 0755); mkErr != nil {
				return syncerrors.Wrap(syncerrors.CodeFilesystemError, "creating directory", full, mkErr)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// renameWithCrossDeviceFallback restores a backup during recovery using a
// plain os.Rename; journal.RecoverActive tolerates ENOENT on the backup
// itself, so no cross-device fallback is needed here (recovery always
// operates within a single destination tree).
func renameWithCrossDeviceFallback(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}
