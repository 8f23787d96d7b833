package bench

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteJSON writes the summaries to w in JSON format.
func WriteJSON(w io.Writer, sums []Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sums)
}

// WriteCSV writes the summaries to w in CSV format, durations in nanoseconds.
func WriteCSV(w io.Writer, sums []Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"code", "calls", "accepted", "rejected", "unmapped", "mean_ns", "stddev_ns", "p50_ns", "p95_ns"}); err != nil {
		return err
	}
	for _, s := range sums {
		rec := []string{
			strconv.FormatUint(uint64(s.Code), 10),
			strconv.Itoa(s.Calls),
			strconv.Itoa(s.Accepted),
			strconv.Itoa(s.Rejected),
			strconv.Itoa(s.Unmapped),
			strconv.FormatInt(s.Mean.Nanoseconds(), 10),
			strconv.FormatInt(s.StdDev.Nanoseconds(), 10),
			strconv.FormatInt(s.P50.Nanoseconds(), 10),
			strconv.FormatInt(s.P95.Nanoseconds(), 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHTML renders a bar chart of mean and p95 latency per code.
func WriteHTML(w io.Writer, sums []Summary) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Dispatch latency"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "code"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ns"}),
	)

	xAxis := make([]string, len(sums))
	mean := make([]opts.BarData, len(sums))
	p95 := make([]opts.BarData, len(sums))
	for i, s := range sums {
		xAxis[i] = strconv.FormatUint(uint64(s.Code), 10)
		mean[i] = opts.BarData{Value: s.Mean.Nanoseconds()}
		p95[i] = opts.BarData{Value: s.P95.Nanoseconds()}
	}
	bar.SetXAxis(xAxis).
		AddSeries("mean", mean).
		AddSeries("p95", p95)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
