package pixelcloud

import (
	"context"
	"sync"
)

// Store holds the newest sampled cloud. One writer wins at a time and
// readers get the current snapshot without blocking a rebuild. Every
// rebuild request draws a monotonic sequence number; a finished result
// commits only while its number is still the newest issued, so slow or
// superseded work can never overwrite fresher state.
type Store struct {
	mu    sync.Mutex
	seq   uint64
	gen   uint64
	cloud *Cloud
}

func NewStore() *Store {
	return &Store{}
}

// Current returns the latest committed snapshot, nil before the first
// rebuild. The returned cloud is never mutated afterwards.
func (s *Store) Current() *Cloud {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloud
}

// Generation counts committed snapshot changes, including Clear.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Clear drops the snapshot and supersedes any rebuild still in flight.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.gen++
	s.cloud = nil
}

// Rebuild samples synchronously and commits the result unless a newer
// request was issued in the meantime.
func (s *Store) Rebuild(r *Raster, opt Options) (*Cloud, error) {
	id := s.issue()
	cloud, err := Sample(r, opt)
	if err != nil {
		return nil, err
	}
	s.commit(id, cloud)
	return cloud, nil
}

// RebuildResult reports one asynchronous rebuild.
type RebuildResult struct {
	// Seq is the request's position in issue order.
	Seq uint64
	// Cloud is the sampled result, nil when Err is set.
	Cloud *Cloud
	// Applied tells whether the result became the current snapshot.
	Applied bool
	Err     error
}

// RebuildAsync samples on a background goroutine and delivers exactly one
// result on the returned channel. Cancel ctx to abandon the work. Results
// of superseded requests still arrive but are never applied.
func (s *Store) RebuildAsync(ctx context.Context, r *Raster, opt Options) <-chan RebuildResult {
	id := s.issue()
	ch := make(chan RebuildResult, 1)
	go func() {
		defer close(ch)
		cloud, err := SampleParallel(ctx, r, opt, 0)
		res := RebuildResult{Seq: id, Cloud: cloud, Err: err}
		if err == nil {
			res.Applied = s.commit(id, cloud)
		}
		ch <- res
	}()
	return ch
}

func (s *Store) issue() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// commit installs cloud if id is still the newest issued request.
func (s *Store) commit(id uint64, cloud *Cloud) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.seq {
		return false
	}
	s.cloud = cloud
	s.gen++
	return true
}
