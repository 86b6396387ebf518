// Package bench drives repeated invocations of a single route and aggregates
// the latencies into an HDR histogram summary.
package bench

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/wesleyorama2/riposte"
)

const (
	// DefaultRequests is the total invocation count when none is given.
	DefaultRequests = 100

	// DefaultConcurrency is the worker count when none is given.
	DefaultConcurrency = 4

	// Histogram range: 1 microsecond to 1 hour, 3 significant figures.
	histogramMin     = 1
	histogramMax     = 3600000000
	histogramSigFigs = 3
)

// Options configure one benchmark run.
type Options struct {
	// Requests is the total number of invocations.
	Requests int

	// Concurrency is the number of parallel workers.
	Concurrency int

	// Method is an explicit verb; empty uses the route's default.
	Method riposte.Method

	// Params are the invocation parameters shared by every request.
	Params riposte.Params
}

// Summary aggregates a finished run. Durations marshal as nanoseconds.
type Summary struct {
	RunID    string         `json:"runId"`
	Route    string         `json:"route"`
	Method   riposte.Method `json:"method"`
	Total    int            `json:"total"`
	Errors   int            `json:"errors"`
	Duration time.Duration  `json:"duration"`
	RPS      float64        `json:"rps"`

	Min  time.Duration `json:"min"`
	Max  time.Duration `json:"max"`
	Mean time.Duration `json:"mean"`
	P50  time.Duration `json:"p50"`
	P90  time.Duration `json:"p90"`
	P95  time.Duration `json:"p95"`
	P99  time.Duration `json:"p99"`
}

// Run invokes the route repeatedly with bounded concurrency and returns the
// latency summary. Failed invocations are counted, not fatal; their latency
// still feeds the histogram. The context cancels outstanding requests.
func Run(ctx context.Context, route *riposte.Route, opts Options) (*Summary, error) {
	if route == nil || !route.IsEndpoint() {
		return nil, fmt.Errorf("benchmark target must be an endpoint")
	}

	requests := opts.Requests
	if requests <= 0 {
		requests = DefaultRequests
	}
	workers := opts.Concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}
	if workers > requests {
		workers = requests
	}

	// RecordValue is not safe for concurrent use; the mutex guards it.
	hist := hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)
	var histMu sync.Mutex
	var errCount atomic.Int64

	start := time.Now()

	p := pool.New().WithMaxGoroutines(workers)
	for i := 0; i < requests; i++ {
		p.Go(func() {
			began := time.Now()
			_, err := route.Do(ctx, opts.Method, opts.Params)
			micros := time.Since(began).Microseconds()

			if err != nil {
				errCount.Add(1)
			}

			if micros < histogramMin {
				micros = histogramMin
			}
			if micros > histogramMax {
				micros = histogramMax
			}

			histMu.Lock()
			hist.RecordValue(micros)
			histMu.Unlock()
		})
	}
	p.Wait()

	elapsed := time.Since(start)

	summary := &Summary{
		RunID:    uuid.New().String(),
		Route:    route.Name(),
		Method:   methodOf(route, opts.Method),
		Total:    requests,
		Errors:   int(errCount.Load()),
		Duration: elapsed,
		Min:      time.Duration(hist.Min()) * time.Microsecond,
		Max:      time.Duration(hist.Max()) * time.Microsecond,
		Mean:     time.Duration(hist.Mean()) * time.Microsecond,
		P50:      time.Duration(hist.ValueAtQuantile(50)) * time.Microsecond,
		P90:      time.Duration(hist.ValueAtQuantile(90)) * time.Microsecond,
		P95:      time.Duration(hist.ValueAtQuantile(95)) * time.Microsecond,
		P99:      time.Duration(hist.ValueAtQuantile(99)) * time.Microsecond,
	}
	if elapsed > 0 {
		summary.RPS = float64(requests) / elapsed.Seconds()
	}
	return summary, nil
}

// ErrorRate returns the failed fraction of the run, 0 to 1.
func (s *Summary) ErrorRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Total)
}

func methodOf(route *riposte.Route, explicit riposte.Method) riposte.Method {
	if explicit != "" {
		return explicit
	}
	info := route.Info()
	if len(info.Methods) > 0 {
		return info.Methods[0]
	}
	return ""
}
