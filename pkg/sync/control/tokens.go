// Package control implements the retry/cancel/pause kernel (C6): cooperative
// suspension via polled boolean predicates, cancellation signaling, and
// exponential-backoff retry for recoverable I/O errors.
package control

import (
	"sync/atomic"
	"time"

	"github.com/rjfmedia/lempicka-sync/pkg/sync/syncerrors"
)

// Predicate is a boolean-returning function polled at checkpoints.
type Predicate func() bool

// Flag is an atomic boolean shared between a control surface and the
// tokens it hands to running operations.
type Flag struct {
	value atomic.Bool
}

// Set flips the flag.
func (f *Flag) Set(value bool) { f.value.Store(value) }

// Get reads the flag's current value.
func (f *Flag) Get() bool { return f.value.Load() }

// Predicate returns a Predicate bound to this flag's current value.
func (f *Flag) Predicate() Predicate { return f.Get }

// Tokens bundles the cancel and pause predicates threaded through a single
// sync run, along with the pause poll interval and a callback fired on each
// paused tick so observers can emit a "paused" progress event.
type Tokens struct {
	ShouldCancel Predicate
	ShouldPause  Predicate
	PausePoll    time.Duration
	OnPausedTick func()
}

// DefaultPausePoll is the reference pause poll interval.
const DefaultPausePoll = 120 * time.Millisecond

// AlwaysFalse is the default predicate used when no cancel/pause behavior
// is requested.
func AlwaysFalse() bool { return false }

// Checkpoint observes t's cancel and pause predicates. It busy-waits
// (bounded by the pause poll interval) while paused, calling OnPausedTick on
// each tick, and returns a SYNC_CANCELLED error the moment cancellation is
// observed, whether before or during a pause.
func (t Tokens) Checkpoint() error {
	cancel := t.ShouldCancel
	if cancel == nil {
		cancel = AlwaysFalse
	}
	pause := t.ShouldPause
	if pause == nil {
		pause = AlwaysFalse
	}
	interval := t.PausePoll
	if interval <= 0 {
		interval = DefaultPausePoll
	}

	if cancel() {
		return syncerrors.New(syncerrors.CodeSyncCancelled, "cancelled")
	}

	for pause() {
		if cancel() {
			return syncerrors.New(syncerrors.CodeSyncCancelled, "cancelled")
		}
		if t.OnPausedTick != nil {
			t.OnPausedTick()
		}
		time.Sleep(interval)
	}

	return nil
}
