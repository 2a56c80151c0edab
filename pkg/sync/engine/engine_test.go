package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rjfmedia/lempicka-sync/pkg/sync/journal"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/plan"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/syncerrors"
)

// bundleFixture is a minimal, filesystem-independent plan used by tests that
// only exercise the control surface's bookkeeping (not the actual copy).
var bundleFixture = plan.Bundle{
	LeftRoot:  "/fixture/left",
	RightRoot: "/fixture/right",
	Plan: []plan.Item{
		{
			SourcePath: "/fixture/left/clip_v1.mov", SourceRelativePath: "clip_v1.mov", SourceSize: 3,
			TargetPath: "/fixture/right/clip.mov", TargetRelativePath: "clip.mov", Version: 1,
		},
	},
	TotalCandidates: 1,
	PendingCount:    1,
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestBuildComparePlanFindsHighestVersion(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()

	writeFile(t, filepath.Join(left, "clip_v1.mov"), "aa")
	writeFile(t, filepath.Join(left, "clip_v2.mov"), "bbb")

	e := New(nil)
	bundle, err := e.BuildComparePlan(left, right)
	require.NoError(t, err)
	require.Len(t, bundle.Plan, 1)
	require.Equal(t, "clip.mov", bundle.Plan[0].TargetRelativePath)
	require.Equal(t, uint64(2), bundle.Plan[0].Version)
}

func TestSyncRejectsConcurrentRun(t *testing.T) {
	e := New(nil)
	e.running.Store(true)
	defer e.running.Store(false)

	_, err := e.Sync(&bundleFixture, nil, SyncOptions{})
	require.Error(t, err)

	var syncErr *syncerrors.Error
	require.ErrorAs(t, err, &syncErr)
	require.Equal(t, syncerrors.CodeInvalidPlan, syncErr.Code)
}

func TestCancelSetsFlag(t *testing.T) {
	e := New(nil)
	require.False(t, e.cancel.Get())
	e.Cancel()
	require.True(t, e.cancel.Get())
}

func TestTogglePauseFlipsAndReturnsNewValue(t *testing.T) {
	e := New(nil)
	require.True(t, e.TogglePause())
	require.True(t, e.paused.Get())
	require.False(t, e.TogglePause())
	require.False(t, e.paused.Get())
}

func TestRecoverySummaryNoJournal(t *testing.T) {
	e := New(nil)
	summary, err := e.RecoverySummary(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	require.Nil(t, summary)
}

func TestRecoverySummaryWithJournal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.json")

	state := journal.New("run_test", &bundleFixture, 5, time.Unix(0, 0))
	require.NoError(t, journal.Write(path, state, nil))

	e := New(nil)
	summary, err := e.RecoverySummary(path)
	require.NoError(t, err)
	require.NotNil(t, summary)
	require.Equal(t, bundleFixture.LeftRoot, summary.LeftRoot)
	require.Equal(t, 1, summary.Total)
}

func TestResumeWithoutJournalFails(t *testing.T) {
	e := New(nil)
	_, err := e.Resume(filepath.Join(t.TempDir(), "missing.json"), nil, SyncOptions{})
	require.Error(t, err)

	var syncErr *syncerrors.Error
	require.ErrorAs(t, err, &syncErr)
	require.Equal(t, syncerrors.CodeNoRecoveryJournal, syncErr.Code)
}

func TestResumeWithNoPendingWorkRemovesJournal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.json")

	state := journal.New("run_done", &bundleFixture, bundleFixture.Plan[0].SourceSize, time.Unix(0, 0))
	state.CompletedTargetPaths = []string{bundleFixture.Plan[0].TargetPath}
	require.NoError(t, journal.Write(path, state, nil))

	e := New(nil)
	result, err := e.Resume(path, nil, SyncOptions{})
	require.NoError(t, err)
	require.True(t, result.ResumedFromJournal)
	require.Equal(t, 1, result.Copied)

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}
