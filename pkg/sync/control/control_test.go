package control

import (
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rjfmedia/lempicka-sync/pkg/sync/syncerrors"
)

func TestCheckpointCancelled(t *testing.T) {
	tokens := Tokens{ShouldCancel: func() bool { return true }}
	err := tokens.Checkpoint()
	require.Error(t, err)

	var syncErr *syncerrors.Error
	require.True(t, errors.As(err, &syncErr))
	require.Equal(t, syncerrors.CodeSyncCancelled, syncErr.Code)
}

func TestCheckpointPausedThenCancelled(t *testing.T) {
	ticks := 0
	cancelAfter := 2
	tokens := Tokens{
		ShouldPause: func() bool { return true },
		ShouldCancel: func() bool {
			ticks++
			return ticks > cancelAfter
		},
		PausePoll: time.Millisecond,
		OnPausedTick: func() {},
	}

	err := tokens.Checkpoint()
	require.Error(t, err)
	require.Greater(t, ticks, cancelAfter)
}

func TestCheckpointUnpaused(t *testing.T) {
	tokens := Tokens{}
	require.NoError(t, tokens.Checkpoint())
}

func TestRetrySucceedsAfterRecoverableFailures(t *testing.T) {
	attempts := 0
	err := Retry(RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond}, Tokens{}, nil, func() error {
		attempts++
		if attempts < 3 {
			return syncerrors.Wrap(syncerrors.CodeFilesystemError, "busy", "/x", syscall.EBUSY)
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestRetryGivesUpOnNonRecoverable(t *testing.T) {
	attempts := 0
	err := Retry(DefaultRetryPolicy, Tokens{}, nil, func() error {
		attempts++
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	var events []RetryEvent
	err := Retry(RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond}, Tokens{}, func(e RetryEvent) {
		events = append(events, e)
	}, func() error {
		attempts++
		return syncerrors.Wrap(syncerrors.CodeFilesystemError, "busy", "/x", syscall.EBUSY)
	})
	require.Error(t, err)
	require.Equal(t, 3, attempts)
	require.Len(t, events, 2)
}
