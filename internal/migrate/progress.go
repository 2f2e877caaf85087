package migrate

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// Progress extrapolates the remaining time of a run linearly from its
// throughput so far.
type Progress struct {
	Total int64

	start time.Time
	now   func() time.Time
}

// NewProgress starts tracking a run of total items. A nil now uses time.Now.
func NewProgress(total int64, now func() time.Time) *Progress {
	if now == nil {
		now = time.Now
	}
	return &Progress{Total: total, start: now(), now: now}
}

// Estimate returns the elapsed time and the estimated time remaining after
// done items. Remaining is zero until some throughput has been observed.
func (p *Progress) Estimate(done int64) (elapsed, remaining time.Duration) {
	elapsed = p.now().Sub(p.start)
	if done <= 0 || elapsed <= 0 || done >= p.Total {
		return elapsed, 0
	}
	rate := float64(done) / elapsed.Seconds()
	remaining = time.Duration(float64(p.Total-done) / rate * float64(time.Second))
	return elapsed, remaining
}

// Elapsed returns the time since the run started.
func (p *Progress) Elapsed() time.Duration {
	return p.now().Sub(p.start)
}

// Report writes one progress line for done items to w.
func (p *Progress) Report(w io.Writer, done int64) {
	if w == nil {
		return
	}
	elapsed, remaining := p.Estimate(done)
	fmt.Fprintf(w, "  %s/%s images (%.1fs elapsed, ~%.0fs remaining)\n",
		humanize.Comma(done), humanize.Comma(p.Total), elapsed.Seconds(), remaining.Seconds())
}
