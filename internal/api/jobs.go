package api

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job statuses
const (
	JobPending = "pending"
	JobRunning = "running"
	JobDone    = "done"
	JobError   = "error"
)

// JobTypeBatch is the only job type: analyze a list of URLs.
const JobTypeBatch = "batch"

const defaultMaxJobs = 1000

// Job tracks a background batch analysis.
type Job struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	Total      int        `json:"total"`
	Completed  int        `json:"completed"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Items      []JobItem  `json:"items,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// JobItem is the outcome for one URL of a batch job.
type JobItem struct {
	URL        string `json:"url"`
	AnalysisID string `json:"analysis_id,omitempty"`
	TotalScore int    `json:"total_score"`
	Category   string `json:"category,omitempty"`
	Partial    bool   `json:"partial,omitempty"`
	Error      string `json:"error,omitempty"`
}

// JobRequest starts a batch job.
type JobRequest struct {
	Type string   `json:"type"`
	URLs []string `json:"urls"`
	// NoStore skips persisting the results.
	NoStore bool `json:"no_store"`
}

// Finished reports whether the job reached a terminal status.
func (j Job) Finished() bool {
	return j.Status == JobDone || j.Status == JobError
}

// JobManager keeps jobs in memory and fans updates out to subscribers.
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	subscribers map[chan Job]struct{}
	maxJobs     int
	now         func() time.Time
}

func NewJobManager() *JobManager {
	return &JobManager{
		jobs:        make(map[string]*Job),
		subscribers: make(map[chan Job]struct{}),
		maxJobs:     defaultMaxJobs,
		now:         time.Now,
	}
}

func (m *JobManager) CreateJob(jobType string, total int) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := &Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Status:    JobPending,
		Total:     total,
		CreatedAt: m.now(),
	}
	m.jobs[job.ID] = job
	m.prune()
	m.broadcast(*job)
	snapshot := job.clone()
	return &snapshot
}

// UpdateJob applies update under the lock and broadcasts the new state.
// It returns nil for an unknown id.
func (m *JobManager) UpdateJob(id string, update func(*Job)) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil
	}
	update(job)
	m.broadcast(job.clone())
	snapshot := job.clone()
	return &snapshot
}

func (m *JobManager) GetJob(id string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if job, ok := m.jobs[id]; ok {
		snapshot := job.clone()
		return &snapshot
	}
	return nil
}

// ListJobs returns up to limit jobs, newest first.
func (m *JobManager) ListJobs(limit int) []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jobs := make([]Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job.clone())
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID > jobs[j].ID
		}
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	if limit > 0 && limit < len(jobs) {
		jobs = jobs[:limit]
	}
	return jobs
}

func (m *JobManager) Subscribe() (chan Job, func()) {
	ch := make(chan Job, 16)
	m.mu.Lock()
	m.subscribers[ch] = struct{}{}
	m.mu.Unlock()
	return ch, func() {
		m.mu.Lock()
		if _, ok := m.subscribers[ch]; ok {
			delete(m.subscribers, ch)
			close(ch)
		}
		m.mu.Unlock()
	}
}

// SetMaxJobs configures the maximum number of jobs to retain in memory
func (m *JobManager) SetMaxJobs(max int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if max > 0 {
		m.maxJobs = max
	}
}

// broadcast never blocks: a subscriber whose buffer is full misses the update.
func (m *JobManager) broadcast(job Job) {
	for ch := range m.subscribers {
		select {
		case ch <- job:
		default:
		}
	}
}

// prune drops the oldest finished jobs once the manager holds more than maxJobs.
// Caller holds the lock.
func (m *JobManager) prune() {
	excess := len(m.jobs) - m.maxJobs
	if excess <= 0 {
		return
	}
	finished := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		if job.Finished() {
			finished = append(finished, job)
		}
	}
	sort.Slice(finished, func(i, j int) bool {
		return finishTime(finished[i]).Before(finishTime(finished[j]))
	})
	for i := 0; i < excess && i < len(finished); i++ {
		delete(m.jobs, finished[i].ID)
	}
}

func finishTime(j *Job) time.Time {
	if j.FinishedAt != nil {
		return *j.FinishedAt
	}
	return j.CreatedAt
}

func (j *Job) clone() Job {
	c := *j
	c.Items = append([]JobItem(nil), j.Items...)
	return c
}
