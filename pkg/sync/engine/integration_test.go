package engine

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyncCopiesHighestVersionedFiles(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()

	writeFile(t, filepath.Join(left, "clip_v1.mov"), "aa")
	writeFile(t, filepath.Join(left, "clip_v2.mov"), "bbbbb")
	writeFile(t, filepath.Join(left, "notes_v1.txt"), "hello")

	e := New(nil)
	bundle, err := e.BuildComparePlan(left, right)
	require.NoError(t, err)
	require.Len(t, bundle.Plan, 2)

	var events []Progress
	result, err := e.Sync(bundle, func(p Progress) { events = append(events, p) }, SyncOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, result.Copied)
	require.Equal(t, 0, len(result.Failed))

	data, err := os.ReadFile(filepath.Join(right, "clip.mov"))
	require.NoError(t, err)
	require.Equal(t, "bbbbb", string(data))

	var phases []Phase
	for _, p := range events {
		phases = append(phases, p.Phase)
	}
	require.Contains(t, phases, PhaseComplete)

	_, statErr := os.Stat(filepath.Join(left, "sync-history.log"))
	require.NoError(t, statErr)
}

func TestSyncSourceVanishesStrictAbortsRun(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()

	sourcePath := filepath.Join(left, "reel_v1.mov")
	writeFile(t, sourcePath, "content")

	e := New(nil)
	bundle, err := e.BuildComparePlan(left, right)
	require.NoError(t, err)
	require.Len(t, bundle.Plan, 1)

	require.NoError(t, os.Remove(sourcePath))

	_, err = e.Sync(bundle, nil, SyncOptions{RetryCount: 0, RetryBaseDelayMs: 1})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(right, "reel.mov"))
	require.True(t, os.IsNotExist(statErr))
}

func TestSyncSourceVanishesLenientContinuesOtherItems(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()

	vanishing := filepath.Join(left, "gone_v1.mov")
	writeFile(t, vanishing, "content")
	writeFile(t, filepath.Join(left, "present_v1.mov"), "more-content")

	e := New(nil)
	bundle, err := e.BuildComparePlan(left, right)
	require.NoError(t, err)
	require.Len(t, bundle.Plan, 2)

	require.NoError(t, os.Remove(vanishing))

	result, err := e.Sync(bundle, nil, SyncOptions{
		ContinueOnError: true, RetryCount: 0, RetryBaseDelayMs: 1, MaxParallelSmallFiles: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Copied)
	require.Len(t, result.Failed, 1)
	require.Equal(t, "gone.mov", result.Failed[0].TargetRelativePath)

	data, err := os.ReadFile(filepath.Join(right, "present.mov"))
	require.NoError(t, err)
	require.Equal(t, "more-content", string(data))
}

func TestSyncCancelDuringCopyLeavesJournalForResume(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	journalPath := filepath.Join(t.TempDir(), "journal.json")

	writeFile(t, filepath.Join(left, "archive_v1.bin"), "old-target-content")
	writeFile(t, filepath.Join(right, "archive.bin"), "old-target-content-stays")

	// Replace with a larger v2 so the copy streams multiple chunks and the
	// cancel predicate has a chance to fire mid-stream rather than before the
	// first read.
	large := make([]byte, 0)
	for i := 0; i < 80000; i++ {
		large = append(large, []byte("0123456789")...)
	}
	writeFile(t, filepath.Join(left, "archive_v2.bin"), string(large))
	require.NoError(t, os.Remove(filepath.Join(left, "archive_v1.bin")))

	e := New(nil)
	bundle, err := e.BuildComparePlan(left, right)
	require.NoError(t, err)
	require.Len(t, bundle.Plan, 1)

	checkpoints := 0
	_, err = e.Sync(bundle, nil, SyncOptions{
		JournalPath: journalPath,
		ShouldCancel: func() bool {
			checkpoints++
			return checkpoints > 3
		},
	})
	require.Error(t, err)

	_, statErr := os.Stat(journalPath)
	require.NoError(t, statErr, "journal must survive a cancelled run so Resume can pick it up")

	summary, err := e.RecoverySummary(journalPath)
	require.NoError(t, err)
	require.NotNil(t, summary)
	require.Equal(t, 1, summary.Total)
}

func TestSyncRespectsDeterministicPlanOrdering(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()

	names := []string{"banana_v1.txt", "apple_v1.txt", "cherry_v1.txt"}
	for _, name := range names {
		writeFile(t, filepath.Join(left, name), "x")
	}

	e := New(nil)
	bundle, err := e.BuildComparePlan(left, right)
	require.NoError(t, err)

	var targets []string
	for _, item := range bundle.Plan {
		targets = append(targets, item.TargetRelativePath)
	}
	sorted := append([]string(nil), targets...)
	sort.Strings(sorted)
	require.Equal(t, sorted, targets)
}
