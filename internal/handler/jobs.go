package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
)

// Job states.
const (
	JobRunning  = "running"
	JobComplete = "complete"
	JobError    = "error"
)

// JobStatus represents the current state of a background indexing job.
type JobStatus struct {
	ID          string    `json:"id"`
	BlueprintID string    `json:"blueprint_id"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	Total       int       `json:"total"`
	Current     string    `json:"current_section"`
	Completed   []string  `json:"completed_sections"`
	Chunks      int       `json:"chunks"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

func (j JobStatus) done() bool {
	return j.Status == JobComplete || j.Status == JobError
}

// JobTracker keeps indexing jobs in memory and fans out updates.
type JobTracker struct {
	mu   sync.RWMutex
	jobs map[string]*JobStatus
	subs map[string][]chan JobStatus
}

// NewJobTracker creates a new job tracker.
func NewJobTracker() *JobTracker {
	return &JobTracker{
		jobs: make(map[string]*JobStatus),
		subs: make(map[string][]chan JobStatus),
	}
}

// CreateJob creates a new job entry.
func (t *JobTracker) CreateJob(id, blueprintID string, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[id] = &JobStatus{
		ID:          id,
		BlueprintID: blueprintID,
		Status:      JobRunning,
		Total:       total,
		Completed:   []string{},
		StartedAt:   time.Now(),
	}
}

// Advance records a finished section.
func (t *JobTracker) Advance(id, section string, progress int) {
	t.update(id, func(j *JobStatus) {
		j.Progress = progress
		j.Current = section
		j.Completed = append(j.Completed, section)
	})
}

// Complete marks a job finished with the total chunk count.
func (t *JobTracker) Complete(id string, chunks int) {
	t.update(id, func(j *JobStatus) {
		j.Status = JobComplete
		j.Chunks = chunks
		j.CompletedAt = time.Now()
	})
}

// Fail marks a job failed.
func (t *JobTracker) Fail(id string, err error) {
	t.update(id, func(j *JobStatus) {
		j.Status = JobError
		j.Error = err.Error()
		j.CompletedAt = time.Now()
	})
}

func (t *JobTracker) update(id string, fn func(*JobStatus)) {
	t.mu.Lock()
	job, ok := t.jobs[id]
	if !ok {
		t.mu.Unlock()
		return
	}
	fn(job)
	snapshot := *job
	snapshot.Completed = append([]string(nil), job.Completed...)
	subs := append([]chan JobStatus(nil), t.subs[id]...)
	t.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// GetJob returns a job status.
func (t *JobTracker) GetJob(id string) (*JobStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[id]
	if !ok {
		return nil, false
	}
	snapshot := *job
	snapshot.Completed = append([]string(nil), job.Completed...)
	return &snapshot, true
}

// Subscribe returns a channel that receives job updates.
func (t *JobTracker) Subscribe(id string) chan JobStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan JobStatus, 10)
	t.subs[id] = append(t.subs[id], ch)
	return ch
}

// Unsubscribe removes a channel from subscribers.
func (t *JobTracker) Unsubscribe(id string, ch chan JobStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	subs := t.subs[id]
	for i, s := range subs {
		if s == ch {
			t.subs[id] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	close(ch)
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	tracker *JobTracker
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(tracker *JobTracker) *JobsHandler {
	return &JobsHandler{tracker: tracker}
}

// Register sets up job routes.
func (h *JobsHandler) Register(router fiber.Router) {
	jobs := router.Group("/jobs")
	jobs.Get("/:id", h.GetStatus)
	jobs.Get("/:id/stream", h.StreamSSE)
}

// GetStatus returns the current job status.
func (h *JobsHandler) GetStatus(c fiber.Ctx) error {
	job, ok := h.tracker.GetJob(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}
	return c.JSON(job)
}

// StreamSSE streams job updates via Server-Sent Events.
func (h *JobsHandler) StreamSSE(c fiber.Ctx) error {
	id := c.Params("id")

	job, ok := h.tracker.GetJob(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	if job.done() {
		data, _ := json.Marshal(job)
		return c.SendString(fmt.Sprintf("event: %s\ndata: %s\n\n", job.Status, data))
	}

	ch := h.tracker.Subscribe(id)

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer h.tracker.Unsubscribe(id, ch)

		data, _ := json.Marshal(job)
		fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
		w.Flush()

		timeout := time.After(5 * time.Minute)
		for {
			select {
			case update, ok := <-ch:
				if !ok {
					return
				}
				data, _ := json.Marshal(update)
				event := "progress"
				if update.done() {
					event = update.Status
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
				w.Flush()
				if update.done() {
					return
				}
			case <-timeout:
				slog.Warn("job stream timeout", "job_id", id)
				return
			}
		}
	})
}
