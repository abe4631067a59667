package enrich

import (
	"sync"
	"time"
)

// Progress is the mutex-owned aggregate shared by all orchestrations of
// one batch job. Workers record completions; external pollers read
// immutable snapshots. One Progress is live per job.
type Progress struct {
	mu         sync.Mutex
	total      int
	processed  int
	succeeded  int
	failed     int
	lastUpdate time.Time
}

// Snapshot is a read-only view of batch progress.
type Snapshot struct {
	Total      int       `json:"total_leads"`
	Processed  int       `json:"processed_leads"`
	Succeeded  int       `json:"successful_leads"`
	Failed     int       `json:"failed_leads"`
	Percentage float64   `json:"progress_percentage"`
	LastUpdate time.Time `json:"last_update"`
}

// NewProgress allocates progress state for a batch of the given size.
func NewProgress(total int) *Progress {
	return &Progress{total: total}
}

// Record counts one completed orchestration and returns the resulting
// snapshot so the caller can log it without re-locking.
func (p *Progress) Record(success bool) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processed++
	if success {
		p.succeeded++
	} else {
		p.failed++
	}
	p.lastUpdate = time.Now().UTC()

	return p.snapshotLocked()
}

// Reset zeroes the counters for a new batch of the given size. Callers
// that hand one long-lived Progress to a status endpoint reset it when
// the next job starts.
func (p *Progress) Reset(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.processed = 0
	p.succeeded = 0
	p.failed = 0
	p.lastUpdate = time.Time{}
}

// Snapshot returns the current progress.
func (p *Progress) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Progress) snapshotLocked() Snapshot {
	s := Snapshot{
		Total:      p.total,
		Processed:  p.processed,
		Succeeded:  p.succeeded,
		Failed:     p.failed,
		LastUpdate: p.lastUpdate,
	}
	if p.total > 0 {
		s.Percentage = float64(p.processed) / float64(p.total) * 100
	}
	return s
}
