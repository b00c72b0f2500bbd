package scheduler

import (
	"sync"

	"github.com/robfig/cron/v3"
)

// coalescedJob keeps at most one run of the inner job in flight. Fires that
// arrive while a run is active collapse into a single catch-up run once the
// active one finishes, so a slow job never stacks up a backlog.
type coalescedJob struct {
	inner cron.Job

	mu      sync.Mutex
	running bool
	pending bool
}

func coalesce(inner cron.Job) *coalescedJob {
	return &coalescedJob{inner: inner}
}

func (j *coalescedJob) Run() {
	j.mu.Lock()
	if j.running {
		j.pending = true
		j.mu.Unlock()

		return
	}

	j.running = true
	j.mu.Unlock()

	for {
		j.inner.Run()

		j.mu.Lock()
		if !j.pending {
			j.running = false
			j.mu.Unlock()

			return
		}

		j.pending = false
		j.mu.Unlock()
	}
}
