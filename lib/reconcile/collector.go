package reconcile

import "log/slog"

// Collector owns a report and serializes entries sent from concurrent
// reconciliations.
type Collector struct {
	report  *Report
	entries chan Entry
	done    chan struct{}
}

func NewCollector(report *Report, buffer int) *Collector {
	c := &Collector{
		report:  report,
		entries: make(chan Entry, buffer),
		done:    make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Collector) run() {
	defer close(c.done)
	for e := range c.entries {
		err := c.report.Record(e.Identifier, e.Verdict)
		if err != nil {
			slog.Warn("dropped verdict", "uii", e.Identifier, "verdict", e.Verdict.String(), "err", err)
		}
	}
}

func (c *Collector) Submit(identifier string, verdict Verdict) {
	c.entries <- Entry{Identifier: identifier, Verdict: verdict}
}

// Close stops accepting entries, waits for the queue to drain and finalizes
// the report. Submit must not be called after Close.
func (c *Collector) Close() *Report {
	close(c.entries)
	<-c.done
	c.report.Finalize()
	return c.report
}
