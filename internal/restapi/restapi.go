// Package restapi exposes a small gin-gonic/gin HTTP API that accepts a
// stacking job, runs it in a background goroutine, and lets a client
// poll its progress or, once the job has finished, fetch the preview it
// produced. Grounded on
// nightlight's internal/rest/serve.go (gin route groups, POST-a-job-then-
// poll shape, chroot/setuid sandboxing before Run), narrowed from its
// generic operator-sequence job body to this rewrite's single job shape:
// a list of FITS paths plus an output path.
package restapi

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/mlnoga/stacker/internal/progress"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Job tracks one stacking run submitted through the API.
type Job struct {
	ID          string
	Inputs      []string
	Output      string
	Progress    *progress.Progress
	PreviewPath string

	mu     sync.RWMutex
	status Status
	err    error
}

func (j *Job) setStatus(s Status, err error) {
	j.mu.Lock()
	j.status, j.err = s, err
	j.mu.Unlock()
}

func (j *Job) snapshot() (Status, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status, j.err
}

// RunFunc performs the actual stacking work for one job, reporting
// progress through p and returning the path to a preview PPM it wrote
// (if any). The server never interprets inputs/output itself — the
// pipeline wiring lives in cmd/stacker.
type RunFunc func(p *progress.Progress, inputs []string, output string) (previewPath string, err error)

// Server holds the job table and dispatches incoming requests to run.
type Server struct {
	run     RunFunc
	jobs    sync.Map // string -> *Job
	counter int64
}

// NewServer creates a Server that executes submitted jobs via run.
func NewServer(run RunFunc) *Server {
	return &Server{run: run}
}

// jobRequest is the POST /api/v1/jobs body.
type jobRequest struct {
	Inputs []string `json:"inputs" binding:"required"`
	Output string   `json:"output" binding:"required"`
}

// Engine builds the gin engine with this server's routes registered.
func (s *Server) Engine() *gin.Engine {
	r := gin.Default()
	api := r.Group("/api/v1")
	{
		api.GET("/ping", s.getPing)
		api.POST("/jobs", s.postJob)
		api.GET("/jobs/:id", s.getJob)
		api.GET("/jobs/:id/preview.ppm", s.getPreview)
	}
	return r
}

func (s *Server) getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (s *Server) postJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := fmt.Sprintf("%d", atomic.AddInt64(&s.counter, 1))
	job := &Job{
		ID:       id,
		Inputs:   req.Inputs,
		Output:   req.Output,
		Progress: progress.New(int64(len(req.Inputs))),
		status:   StatusQueued,
	}
	s.jobs.Store(id, job)

	go func() {
		job.setStatus(StatusRunning, nil)
		preview, err := s.run(job.Progress, job.Inputs, job.Output)
		job.PreviewPath = preview
		if err != nil {
			job.setStatus(StatusFailed, err)
			return
		}
		job.setStatus(StatusDone, nil)
	}()

	c.JSON(http.StatusAccepted, gin.H{"id": id})
}

func (s *Server) lookup(c *gin.Context) (*Job, bool) {
	v, ok := s.jobs.Load(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job id"})
		return nil, false
	}
	return v.(*Job), true
}

func (s *Server) getJob(c *gin.Context) {
	job, ok := s.lookup(c)
	if !ok {
		return
	}
	status, err := job.snapshot()
	snap := job.Progress.State()
	resp := gin.H{
		"id":     job.ID,
		"status": status,
		"stage":  snap.Stage,
		"done":   snap.Done,
		"total":  snap.Total,
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getPreview(c *gin.Context) {
	job, ok := s.lookup(c)
	if !ok {
		return
	}
	if job.PreviewPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no preview available yet"})
		return
	}
	c.File(job.PreviewPath)
}
