package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Checker probes one dependency.
type Checker func(ctx context.Context) error

// Status of a probe or of the whole service.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Report is the body returned by the readiness endpoint.
type Report struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of a single probe.
type CheckResult struct {
	Status   Status `json:"status"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
	Latency  string `json:"latency"`
}

type probe struct {
	check    Checker
	critical bool
}

// Handler serves /health/live and /health/ready.
//
// A failing critical probe (Postgres, Redis) makes the service unready and
// answers 503. A failing optional probe (Kafka, search) only degrades the
// report and still answers 200.
type Handler struct {
	mu      sync.RWMutex
	probes  map[string]probe
	timeout time.Duration
}

// NewHandler creates a handler whose probes share a timeout per request.
func NewHandler(timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Handler{probes: make(map[string]probe), timeout: timeout}
}

// RegisterCritical adds a probe whose failure makes the service unready.
func (h *Handler) RegisterCritical(name string, c Checker) {
	h.register(name, c, true)
}

// RegisterOptional adds a probe whose failure only degrades the report.
func (h *Handler) RegisterOptional(name string, c Checker) {
	h.register(name, c, false)
}

func (h *Handler) register(name string, c Checker, critical bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes[name] = probe{check: c, critical: critical}
}

// Names lists registered probes in sorted order.
func (h *Handler) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.probes))
	for n := range h.probes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Live always answers 200 while the process is serving.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeReport(w, http.StatusOK, Report{Status: StatusUp, Timestamp: time.Now().UTC()})
}

// Ready runs every probe concurrently and aggregates the results.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	report := h.Check(r.Context())
	status := http.StatusOK
	if report.Status == StatusDown {
		status = http.StatusServiceUnavailable
	}
	writeReport(w, status, report)
}

// Check runs all probes and returns the aggregated report.
func (h *Handler) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	h.mu.RLock()
	probes := make(map[string]probe, len(h.probes))
	for k, v := range h.probes {
		probes[k] = v
	}
	h.mu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]CheckResult, len(probes))
	)
	for name, p := range probes {
		wg.Add(1)
		go func(name string, p probe) {
			defer wg.Done()
			start := time.Now()
			res := CheckResult{Status: StatusUp, Critical: p.critical}
			if err := p.check(ctx); err != nil {
				res.Status = StatusDown
				res.Error = err.Error()
			}
			res.Latency = time.Since(start).String()

			mu.Lock()
			results[name] = res
			mu.Unlock()
		}(name, p)
	}
	wg.Wait()

	overall := StatusUp
	for _, res := range results {
		if res.Status != StatusDown {
			continue
		}
		if res.Critical {
			overall = StatusDown
			break
		}
		overall = StatusDegraded
	}

	return Report{Status: overall, Timestamp: time.Now().UTC(), Checks: results}
}

func writeReport(w http.ResponseWriter, status int, report Report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(report)
}
