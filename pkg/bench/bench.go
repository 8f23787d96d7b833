// Package bench measures dispatch latency per function code and renders the
// results as CSV, JSON or an HTML chart.
package bench

import (
	"context"
	"errors"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/jumpvector/core/jumpvector"
)

// Dispatcher is satisfied by *jumpvector.Table.
type Dispatcher interface {
	Dispatch(code uint32, value byte) jumpvector.Outcome
}

// Summary aggregates the calls made for one code.
type Summary struct {
	Code     uint32        `json:"code"`
	Calls    int           `json:"calls"`
	Accepted int           `json:"accepted"`
	Rejected int           `json:"rejected"`
	Unmapped int           `json:"unmapped"`
	Mean     time.Duration `json:"mean_ns"`
	StdDev   time.Duration `json:"stddev_ns"`
	P50      time.Duration `json:"p50_ns"`
	P95      time.Duration `json:"p95_ns"`
}

// Run dispatches every value to every code, rounds times, and summarizes
// each code. An empty values slice means all 256 values.
func Run(ctx context.Context, d Dispatcher, codes []uint32, values []byte, rounds int) ([]Summary, error) {
	if d == nil {
		return nil, errors.New("bench: nil dispatcher")
	}
	if len(codes) == 0 {
		return nil, errors.New("bench: no codes")
	}
	if rounds <= 0 {
		return nil, errors.New("bench: rounds must be positive")
	}
	if len(values) == 0 {
		values = make([]byte, 256)
		for i := range values {
			values[i] = byte(i)
		}
	}

	out := make([]Summary, 0, len(codes))
	samples := make([]float64, 0, rounds*len(values))
	for _, code := range codes {
		s := Summary{Code: code}
		samples = samples[:0]
		for r := 0; r < rounds; r++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for _, v := range values {
				start := time.Now()
				o := d.Dispatch(code, v)
				samples = append(samples, float64(time.Since(start)))
				switch o {
				case jumpvector.Accepted:
					s.Accepted++
				case jumpvector.Rejected:
					s.Rejected++
				default:
					s.Unmapped++
				}
			}
		}
		s.Calls = len(samples)
		sort.Float64s(samples)
		s.Mean = time.Duration(stat.Mean(samples, nil))
		s.StdDev = time.Duration(stat.StdDev(samples, nil))
		s.P50 = time.Duration(stat.Quantile(0.5, stat.Empirical, samples, nil))
		s.P95 = time.Duration(stat.Quantile(0.95, stat.Empirical, samples, nil))
		out = append(out, s)
	}
	return out, nil
}
