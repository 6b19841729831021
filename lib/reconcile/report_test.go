package reconcile

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	report := NewReport()
	require.NoError(t, report.Record("a", Match))
	require.NoError(t, report.Record("b", Match))
	require.NoError(t, report.Record("c", TitleMismatch))

	require.False(t, report.IsFullyPassing())

	var mismatches []Entry
	for id, verdict := range report.Mismatches() {
		mismatches = append(mismatches, Entry{Identifier: id, Verdict: verdict})
	}
	diff := cmp.Diff([]Entry{{Identifier: "c", Verdict: TitleMismatch}}, mismatches)
	if diff != "" {
		t.Fatal(diff)
	}

	// restartable
	count := 0
	for range report.Mismatches() {
		count++
	}
	require.Equal(t, 1, count)
}

func TestReportEmptyPasses(t *testing.T) {
	report := NewReport()
	report.Finalize()
	require.True(t, report.IsFullyPassing())
	require.Equal(t, 0, report.Len())
}

func TestReportClosed(t *testing.T) {
	report := NewReport()
	require.NoError(t, report.Record("a", Match))
	report.Finalize()

	require.True(t, report.Closed())
	require.ErrorIs(t, report.Record("b", FieldMissing), ErrReportClosed)
	require.Equal(t, 1, report.Len())
	require.True(t, report.IsFullyPassing())
}

func TestReportMismatchesStopsEarly(t *testing.T) {
	report := NewReport()
	for i := 0; i < 5; i++ {
		require.NoError(t, report.Record(fmt.Sprint(i), FieldMissing))
	}
	seen := 0
	for range report.Mismatches() {
		seen++
		if seen == 2 {
			break
		}
	}
	require.Equal(t, 2, seen)
	require.Equal(t, map[Verdict]int{FieldMissing: 5}, report.Counts())
}

func TestCollector(t *testing.T) {
	collector := NewCollector(NewReport(), 4)

	wg := sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			verdict := Match
			if i%10 == 0 {
				verdict = IdentifierMismatch
			}
			collector.Submit(fmt.Sprint(i), verdict)
		}(i)
	}
	wg.Wait()

	report := collector.Close()
	require.True(t, report.Closed())
	require.Equal(t, 50, report.Len())
	require.Equal(t, 5, report.Counts()[IdentifierMismatch])
	require.False(t, report.IsFullyPassing())
}
