package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks how far a trace replay has read. The position is
// written by the replay goroutine and read by the HTTP handlers.
type ProgressBar struct {
	mu       sync.Mutex
	id       string
	name     string
	start    time.Time
	total    uint64
	finished uint64
}

// ProgressStatus is a point-in-time copy of a ProgressBar.
type ProgressStatus struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// SetFinished sets the finished amount. The progress is measured as a
// position, so the value replaces the previous one.
func (b *ProgressBar) SetFinished(amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.finished = amount
}

// Status returns a copy of the bar.
func (b *ProgressBar) Status() ProgressStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	return ProgressStatus{
		ID:        b.id,
		Name:      b.name,
		StartTime: b.start,
		Total:     b.total,
		Finished:  b.finished,
	}
}
