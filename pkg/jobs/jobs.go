package jobs

import (
	"errors"
	"sync"

	"github.com/vendange/backend/pkg/graph"
	"github.com/vendange/backend/pkg/logger"
	"github.com/vendange/backend/pkg/rdf"
	"github.com/vendange/backend/pkg/record"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

// Status is the lifecycle state of a build job. Ready and error are terminal;
// no transition ever leaves them.
type Status string

const (
	StatusBuilding Status = "building"
	StatusReady    Status = "ready"
	StatusError    Status = "error"
)

// ErrNotFound reports an unknown job identifier.
var ErrNotFound = errors.New("job not found")

// ErrNotReady reports a query against a job that has no completed graph.
var ErrNotReady = errors.New("job not ready")

// Snapshot is the externally visible state of a job. Progress is present only
// while building, Metadata only once ready, Error only once failed.
type Snapshot struct {
	Status   Status          `json:"status"`
	Progress *graph.Progress `json:"progress,omitempty"`
	Metadata *graph.Metadata `json:"metadata,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type job struct {
	id            string
	status        Status
	progress      graph.Progress
	metadata      *graph.Metadata
	store         *rdf.Store
	errMessage    string
	lastLoggedPct int
}

type buildRequest struct {
	id      string
	records []record.Record
}

// Store owns the job table and the worker pool that runs builds. All state
// access goes through its mutex; the lock is never held across graph
// construction, only across the small mutating calls.
type Store struct {
	mu          sync.Mutex
	cond        *sync.Cond
	jobs        map[string]*job
	pending     []buildRequest
	latestReady string
	closed      bool

	eg        *errgroup.Group
	closeOnce sync.Once
}

// NewStoreParams configures a job store.
//
// Workers controls how many builds may run concurrently.
type NewStoreParams struct {
	Workers int
}

// NewStore creates a job store and starts its build workers.
func NewStore(params NewStoreParams) *Store {
	workers := params.Workers
	if workers <= 0 {
		workers = 2
	}

	s := &Store{
		jobs: make(map[string]*job),
		eg:   new(errgroup.Group),
	}
	s.cond = sync.NewCond(&s.mu)

	for i := 0; i < workers; i++ {
		s.eg.Go(s.worker)
	}

	return s
}

// Close stops accepting builds, drains the queue and waits for the workers.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.cond.Broadcast()
		s.mu.Unlock()
		_ = s.eg.Wait()
	})
}

// Submit registers a new build job and schedules it on the worker pool. It
// returns the job identifier immediately without waiting for the build.
func (s *Store) Submit(records []record.Record) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", errors.New("job store is closed")
	}
	s.jobs[id] = &job{
		id:     id,
		status: StatusBuilding,
		progress: graph.Progress{
			Phase:   graph.PhaseIndexing,
			Current: 0,
			Total:   len(records),
		},
		lastLoggedPct: -1,
	}
	s.pending = append(s.pending, buildRequest{id: id, records: records})
	s.cond.Signal()
	s.mu.Unlock()

	logger.Info("[Jobs] Build submitted", "job_id", id, "records", len(records))

	return id, nil
}

// GetStatus returns the current snapshot of a job.
func (s *Store) GetStatus(id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}

	snapshot := Snapshot{Status: j.status}
	switch j.status {
	case StatusBuilding:
		progress := j.progress
		snapshot.Progress = &progress
	case StatusReady:
		snapshot.Metadata = j.metadata
	case StatusError:
		snapshot.Error = j.errMessage
	}
	return snapshot, nil
}

// GraphFor returns the completed graph of a ready job.
func (s *Store) GraphFor(id string) (*rdf.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if j.status != StatusReady || j.store == nil {
		return nil, ErrNotReady
	}
	return j.store, nil
}

// LatestReady returns the identifier of the most recently completed job.
func (s *Store) LatestReady() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latestReady == "" {
		return "", false
	}
	return s.latestReady, true
}

// Delete removes a job and releases its graph, halting an in-flight build
// cooperatively: the next progress update fails and the builder stops. It
// returns false for unknown identifiers.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return false
	}
	delete(s.jobs, id)
	if s.latestReady == id {
		s.latestReady = ""
	}

	logger.Info("[Jobs] Job deleted", "job_id", id)
	return true
}

// worker consumes build requests until the store closes.
func (s *Store) worker() error {
	for {
		s.mu.Lock()
		for len(s.pending) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.pending) == 0 && s.closed {
			s.mu.Unlock()
			return nil
		}
		req := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		s.runBuild(req)
	}
}

func (s *Store) runBuild(req buildRequest) {
	result, err := graph.Build(req.records, func(p graph.Progress) bool {
		return s.updateProgress(req.id, p)
	})
	if err != nil {
		if errors.Is(err, graph.ErrAborted) {
			// The job was deleted mid-build; there is nothing left to mark.
			logger.Info("[Jobs] Build halted, job gone", "job_id", req.id)
			return
		}
		s.markError(req.id, err.Error())
		return
	}
	s.markReady(req.id, result)
}

// updateProgress records a progress report. It reports failure when the job
// is unknown or no longer building, which is how a concurrent delete halts an
// in-flight build without extra signaling.
func (s *Store) updateProgress(id string, progress graph.Progress) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok || j.status != StatusBuilding {
		return false
	}
	j.progress = progress

	// Log only when the whole-number percentage changes; snapshots stay exact.
	pct := 100
	if progress.Total > 0 {
		pct = progress.Current * 100 / progress.Total
	}
	if pct != j.lastLoggedPct {
		j.lastLoggedPct = pct
		logger.Debug("[Jobs] Build progress",
			"job_id", id,
			"phase", progress.Phase,
			"percent", pct,
			"current", progress.Current,
			"total", progress.Total,
		)
	}

	return true
}

func (s *Store) markReady(id string, result *graph.Result) {
	if result == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok || j.status != StatusBuilding {
		return
	}
	j.status = StatusReady
	j.metadata = &result.Metadata
	j.store = result.Store
	s.latestReady = id

	logger.Info("[Jobs] Build ready", "job_id", id, "statements", result.Store.Len())
}

func (s *Store) markError(id string, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok || j.status != StatusBuilding {
		return
	}
	j.status = StatusError
	j.errMessage = message
	j.metadata = nil
	j.store = nil

	logger.Error("[Jobs] Build failed", "job_id", id, "err", message)
}
