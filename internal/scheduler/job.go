package scheduler

import (
	"context"
	"time"
)

// historyLimit caps stored results per job
const historyLimit = 100

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron expression with a seconds field
	// Examples: "0 0 7 * * 1-5" (평일 07:00), "@daily"
	Schedule() string
}

// JobResult represents the result of a job execution
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory is a bounded run log, oldest first
type JobHistory struct {
	Results []JobResult `json:"results"`
}

// Add appends a result, dropping the oldest beyond historyLimit
func (h *JobHistory) Add(result JobResult) {
	h.Results = append(h.Results, result)
	if overflow := len(h.Results) - historyLimit; overflow > 0 {
		h.Results = append([]JobResult(nil), h.Results[overflow:]...)
	}
}

// Latest returns up to n most recent results, oldest first
func (h *JobHistory) Latest(n int) []JobResult {
	n = min(max(n, 0), len(h.Results))
	return h.Results[len(h.Results)-n:]
}

// Last returns the most recent result
func (h *JobHistory) Last() (JobResult, bool) {
	if len(h.Results) == 0 {
		return JobResult{}, false
	}
	return h.Results[len(h.Results)-1], true
}

// Failures counts unsuccessful runs
func (h *JobHistory) Failures() int {
	n := 0
	for _, r := range h.Results {
		if !r.Success {
			n++
		}
	}
	return n
}

// SuccessRate is the share of successful runs (0 when empty)
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	return float64(len(h.Results)-h.Failures()) / float64(len(h.Results))
}

// clone returns a copy safe to hand out of the scheduler lock
func (h *JobHistory) clone() *JobHistory {
	return &JobHistory{Results: append([]JobResult(nil), h.Results...)}
}
