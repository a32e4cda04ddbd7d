package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	runsStartedTotal     atomic.Uint64
	runsSucceededTotal   atomic.Uint64
	runsFailedTotal      atomic.Uint64
	runsSkippedTotal     atomic.Uint64
	rewriteFallbackTotal atomic.Uint64
	httpPanicsTotal      atomic.Uint64
	httpRateLimitedTotal atomic.Uint64

	runDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncRunStarted increments the started counter.
func IncRunStarted() {
	runsStartedTotal.Add(1)
}

// IncRunFinished increments the counter for a terminal run status.
func IncRunFinished(status string) {
	switch status {
	case "success":
		runsSucceededTotal.Add(1)
	case "failed":
		runsFailedTotal.Add(1)
	case "skipped":
		runsSkippedTotal.Add(1)
	}
}

// IncRewriteFallback counts rewrites served by the deterministic provider.
func IncRewriteFallback() {
	rewriteFallbackTotal.Add(1)
}

// IncPanicRecovered counts handler panics turned into 500 responses.
func IncPanicRecovered() {
	httpPanicsTotal.Add(1)
}

// IncRateLimited counts requests rejected with 429.
func IncRateLimited() {
	httpRateLimitedTotal.Add(1)
}

// ObserveRunDurationMs records a run duration in milliseconds.
func ObserveRunDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	runDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "tailoring_runs_started_total", "Total runs started", runsStartedTotal.Load())
	writeCounter(&buf, "tailoring_runs_succeeded_total", "Total runs finished with success", runsSucceededTotal.Load())
	writeCounter(&buf, "tailoring_runs_failed_total", "Total runs finished with failure", runsFailedTotal.Load())
	writeCounter(&buf, "tailoring_runs_skipped_total", "Total runs skipped", runsSkippedTotal.Load())
	writeCounter(&buf, "rewrite_fallback_total", "Total rewrites served by the deterministic provider", rewriteFallbackTotal.Load())
	writeCounter(&buf, "http_panics_recovered_total", "Total handler panics recovered", httpPanicsTotal.Load())
	writeCounter(&buf, "http_rate_limited_total", "Total requests rejected by the rate limiter", httpRateLimitedTotal.Load())
	writeHistogram(&buf, "tailoring_run_duration_ms", "Run duration in milliseconds", runDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
