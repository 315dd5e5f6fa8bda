package sweep

import (
	"sync"
	"time"

	"github.com/apex/log"
)

// Purger is anything that can drop its own stale entries.
type Purger interface {
	PurgeExpired() int
}

/*
Janitor periodically asks a Purger to drop stale entries.

Caches that expire lazily never shrink on their own; a janitor bounds how long
a stale entry can linger when traffic keeps visiting new keys.
*/
type Janitor struct {
	target   Purger
	interval time.Duration
	logger   log.Interface

	stop chan struct{}

	// wg is used to wait for the worker to finish during shutdown.
	wg   sync.WaitGroup
	once sync.Once
}

// Start launches a janitor that purges target every interval. interval must be positive.
func Start(target Purger, interval time.Duration, logger log.Interface) *Janitor {
	if logger == nil {
		logger = log.Log
	}
	j := &Janitor{
		target:   target,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}

	j.wg.Add(1)
	go j.worker()

	return j
}

func (j *Janitor) worker() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := j.target.PurgeExpired(); n > 0 {
				j.logger.WithField("removed", n).Debug("purged expired entries")
			}
		case <-j.stop:
			return
		}
	}
}

/*
Close stops the janitor and waits for an in-progress purge to finish.
It is safe to call more than once.
*/
func (j *Janitor) Close() {
	j.once.Do(func() {
		close(j.stop)
	})
	j.wg.Wait()
}
