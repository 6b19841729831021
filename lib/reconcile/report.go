package reconcile

import (
	"errors"
	"iter"
)

var ErrReportClosed = errors.New("reconcile: report is closed")

type Entry struct {
	Identifier string
	Verdict    Verdict
}

// Report accumulates verdicts for a batch. It starts open and becomes
// read-only after Finalize. It is not safe for concurrent mutation, feed it
// through a Collector when reconciling in parallel.
type Report struct {
	entries []Entry
	closed  bool
}

func NewReport() *Report {
	return &Report{}
}

func (r *Report) Record(identifier string, verdict Verdict) error {
	if r.closed {
		return ErrReportClosed
	}
	r.entries = append(r.entries, Entry{Identifier: identifier, Verdict: verdict})
	return nil
}

func (r *Report) Finalize() {
	r.closed = true
}

func (r *Report) Closed() bool {
	return r.closed
}

func (r *Report) Len() int {
	return len(r.entries)
}

func (r *Report) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// IsFullyPassing is true iff every recorded verdict is Match.
func (r *Report) IsFullyPassing() bool {
	for _, e := range r.entries {
		if e.Verdict != Match {
			return false
		}
	}
	return true
}

// Mismatches yields every non-Match entry in recording order. The sequence
// can be ranged over any number of times.
func (r *Report) Mismatches() iter.Seq2[string, Verdict] {
	return func(yield func(string, Verdict) bool) {
		for _, e := range r.entries {
			if e.Verdict == Match {
				continue
			}
			if !yield(e.Identifier, e.Verdict) {
				return
			}
		}
	}
}

// Counts tallies recorded verdicts per kind.
func (r *Report) Counts() map[Verdict]int {
	counts := make(map[Verdict]int, len(verdictNames))
	for _, e := range r.entries {
		counts[e.Verdict]++
	}
	return counts
}
