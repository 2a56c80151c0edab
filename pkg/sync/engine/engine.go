package engine

import (
	"sync/atomic"

	"github.com/rjfmedia/lempicka-sync/pkg/logging"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/control"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/journal"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/plan"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/syncerrors"
)

// Engine is the control surface (C8): the single owned object per process
// that guards "one sync run at a time" and exposes BuildComparePlan, Sync,
// Cancel, TogglePause, RecoverySummary, and Resume.
type Engine struct {
	logger *logging.Logger

	running atomic.Bool
	cancel  control.Flag
	paused  control.Flag
}

// New constructs an Engine. A nil logger is valid and silences all
// component logging.
func New(logger *logging.Logger) *Engine {
	return &Engine{logger: logger}
}

// BuildComparePlan runs the planner (C3) over leftRoot/rightRoot.
func (e *Engine) BuildComparePlan(leftRoot, rightRoot string) (*plan.Bundle, error) {
	return plan.Build(leftRoot, rightRoot, e.logger)
}

// Sync runs the sync runner (C7) over bundle. Only one sync may run at a
// time across this Engine; a concurrent call fails immediately.
func (e *Engine) Sync(bundle *plan.Bundle, onProgress OnProgress, options SyncOptions) (*Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, syncerrors.New(syncerrors.CodeInvalidPlan, "a sync is already in progress")
	}
	defer e.running.Store(false)

	e.cancel.Set(false)
	e.paused.Set(false)

	if options.ShouldCancel == nil {
		options.ShouldCancel = e.cancel.Predicate()
	}
	if options.ShouldPause == nil {
		options.ShouldPause = e.paused.Predicate()
	}

	return run(bundle, onProgress, options, e.logger, options.ResumeFromJournal)
}

// Cancel flips the shared cancel flag underpinning the retry/cancel/pause
// kernel's cancel token for any in-progress run driven by this Engine.
func (e *Engine) Cancel() {
	e.cancel.Set(true)
}

// TogglePause flips the shared pause flag.
func (e *Engine) TogglePause() bool {
	newValue := !e.paused.Get()
	e.paused.Set(newValue)
	return newValue
}

// RecoverySummary reads the journal at journalPath and derives a display
// summary, or returns nil if no journal exists.
func (e *Engine) RecoverySummary(journalPath string) (*journal.Summary, error) {
	state, err := journal.Read(journalPath)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, nil
	}
	summary := journal.BuildSummary(state)
	return &summary, nil
}

// Resume reads the journal at journalPath, recovers any leftover in-flight
// entries, and drives the remaining plan items to completion. If no
// journal exists, Resume fails with CodeNoRecoveryJournal. If the journal
// exists but no pending work remains, Resume removes the journal and
// returns an empty result with ResumedFromJournal=true.
func (e *Engine) Resume(journalPath string, onProgress OnProgress, options SyncOptions) (*Result, error) {
	state, err := journal.Read(journalPath)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, syncerrors.New(syncerrors.CodeNoRecoveryJournal, "no recovery journal at "+journalPath)
	}

	completed := make(map[string]bool, len(state.CompletedTargetPaths))
	for _, t := range state.CompletedTargetPaths {
		completed[t] = true
	}
	pending := 0
	for _, item := range state.Plan {
		if !completed[item.TargetPath] {
			pending++
		}
	}

	if pending == 0 && len(state.ActiveEntries) == 0 {
		if err := journal.Remove(journalPath); err != nil {
			return nil, err
		}
		return &Result{
			LeftRoot: state.LeftRoot, RightRoot: state.RightRoot,
			Total: len(state.Plan), Copied: len(state.CompletedTargetPaths),
			ResumedFromJournal: true, RunID: state.RunID,
		}, nil
	}

	bundle := &plan.Bundle{
		LeftRoot:            state.LeftRoot,
		RightRoot:           state.RightRoot,
		Plan:                append([]plan.Item(nil), state.Plan...),
		DirectoriesToCreate: append([]string(nil), state.DirectoriesToCreate...),
		TotalCandidates:     len(state.Plan),
		PendingCount:        pending,
	}

	options.JournalPath = journalPath
	options.JournalState = state
	options.ResumeFromJournal = true
	options.RunID = state.RunID

	return e.Sync(bundle, onProgress, options)
}
