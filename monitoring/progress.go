package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks how far a simulation has gone towards its end time.
type ProgressBar struct {
	sync.Mutex `json:"-"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
}

// SetFinished sets the finished amount. Amounts never go back.
func (b *ProgressBar) SetFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	if amount > b.Finished {
		b.Finished = amount
	}
}
