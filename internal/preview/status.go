package preview

import (
	"sync"
	"time"
)

// buildRecord is the outcome of the most recent build seen by the session.
type buildRecord struct {
	ID       string
	At       time.Time
	Err      error
	Attempts int
	Good     int // successful builds so far; the output dir has content once this is > 0
}

// buildStatus is read by the preview server to decide between the rendered output and
// a status page.
type buildStatus struct {
	mu   sync.RWMutex
	last buildRecord
}

func (bs *buildStatus) record(id string, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.last.ID = id
	bs.last.At = time.Now()
	bs.last.Err = err
	bs.last.Attempts++
	if err == nil {
		bs.last.Good++
	}
}

func (bs *buildStatus) snapshot() buildRecord {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.last
}

// BuildState implements httpserver.BuildStatus.
func (bs *buildStatus) BuildState() (bool, error) {
	r := bs.snapshot()
	return r.Good > 0, r.Err
}
