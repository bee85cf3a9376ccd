// Package api exposes the small operator HTTP surface spec.md §6 and
// SPEC_FULL.md §3 name: queue-depth by task type and by gateway provider,
// each returning counts by status, completions in the last 5 minutes, and
// an estimated time-to-drain.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/chainsentinel/sentinel/internal/store"
	"github.com/julienschmidt/httprouter"
)

// Depth is the shared shape both operator endpoints return.
type Depth struct {
	Pending               int     `json:"pending"`
	Processing            int     `json:"processing"`
	Completed             int     `json:"completed"`
	Failed                int     `json:"failed"`
	CompletedLast5Min     int     `json:"completedLast5m"`
	EstimatedDrainSeconds float64 `json:"estimatedDrainSeconds"`
}

// Server wires the operator endpoints over httprouter, the teacher's HTTP
// mux of choice.
type Server struct {
	jobs     store.JobStore
	requests store.RequestStore
	router   *httprouter.Router
}

func New(jobs store.JobStore, requests store.RequestStore) *Server {
	s := &Server{jobs: jobs, requests: requests, router: httprouter.New()}
	s.router.GET("/internal/queue/:taskType", s.queueDepth)
	s.router.GET("/internal/gateway/:provider", s.gatewayDepth)
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) queueDepth(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	taskType := model.TaskType(ps.ByName("taskType"))

	counts, err := s.jobs.CountByStatus(ctx, taskType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	completed, err := s.jobs.CompletedSince(ctx, taskType, time.Now().Add(-5*time.Minute))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeDepth(w, Depth{
		Pending:               counts[model.JobPending],
		Processing:            counts[model.JobProcessing],
		Completed:             counts[model.JobCompleted],
		Failed:                counts[model.JobFailed],
		CompletedLast5Min:     completed,
		EstimatedDrainSeconds: estimateDrainSeconds(counts[model.JobPending], completed),
	})
}

func (s *Server) gatewayDepth(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	provider := model.Provider(ps.ByName("provider"))

	counts, err := s.requests.CountByStatus(ctx, provider)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	completed, err := s.requests.CountCompletedSince(ctx, provider, time.Now().Add(-5*time.Minute))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	pending := counts[model.RequestPending]
	writeDepth(w, Depth{
		Pending:               pending,
		Processing:            counts[model.RequestProcessing],
		Completed:             counts[model.RequestCompleted],
		Failed:                counts[model.RequestFailed],
		CompletedLast5Min:     completed,
		EstimatedDrainSeconds: estimateDrainSeconds(pending, completed),
	})
}

func writeDepth(w http.ResponseWriter, depth Depth) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(depth)
}

// estimateDrainSeconds is pending / (completed_last_5_min / 300), per
// spec.md §6. A zero completion rate with nonzero pending work is reported
// as an unbounded (-1) estimate rather than dividing by zero.
func estimateDrainSeconds(pending, completedLast5Min int) float64 {
	if pending == 0 {
		return 0
	}
	rate := float64(completedLast5Min) / 300.0
	if rate == 0 {
		return -1
	}
	return float64(pending) / rate
}
