// Package plot renders recorded link metrics as go-echarts line charts,
// one HTML page per metric kind, rewritten wholesale on every refresh.
package plot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/signalsfoundry/urbanlink-simulator/recorder"
)

// chartSpec fixes the title and axis labels per metric kind.
type chartSpec struct {
	title string
	yAxis string
}

var chartSpecs = map[recorder.MetricKind]chartSpec{
	recorder.MetricAttenuation:   {title: "Path attenuation", yAxis: "dB"},
	recorder.MetricReceivedPower: {title: "Received power", yAxis: "dBm"},
	recorder.MetricBitErrorRate:  {title: "Bit error rate", yAxis: "BER"},
}

type pendingSeries struct {
	label  string
	steps  []int
	values []float64
}

// EChartsSink implements recorder.PlotSink by writing one line-chart
// HTML page per metric kind into a directory. Pages are replaced on
// every render, so the directory always shows the latest refresh.
type EChartsSink struct {
	dir     string
	pending map[recorder.MetricKind][]pendingSeries
}

// NewEChartsSink creates the output directory if needed and returns a
// sink writing into it.
func NewEChartsSink(dir string) (*EChartsSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart directory %q: %w", dir, err)
	}
	return &EChartsSink{
		dir:     dir,
		pending: make(map[recorder.MetricKind][]pendingSeries),
	}, nil
}

// Reset discards any series accumulated for the metric kind since the
// last render.
func (s *EChartsSink) Reset(kind recorder.MetricKind) {
	s.pending[kind] = nil
}

// DrawSeries queues one labeled line series for the next render. The
// slices are copied; the recorder keeps appending to its live buffers.
func (s *EChartsSink) DrawSeries(kind recorder.MetricKind, pairLabel string, steps []int, values []float64) {
	s.pending[kind] = append(s.pending[kind], pendingSeries{
		label:  pairLabel,
		steps:  append([]int{}, steps...),
		values: append([]float64{}, values...),
	})
}

// Render writes the queued series for the metric kind as a single HTML
// line chart.
func (s *EChartsSink) Render(kind recorder.MetricKind) error {
	spec, ok := chartSpecs[kind]
	if !ok {
		return fmt.Errorf("unknown metric kind %v", kind)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: spec.title}),
		charts.WithTitleOpts(opts.Title{Title: spec.title, Subtitle: "one series per agent pair"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "step"}),
		charts.WithYAxisOpts(opts.YAxis{Name: spec.yAxis}),
	)

	series := s.pending[kind]
	if len(series) > 0 {
		line.SetXAxis(series[0].steps)
		for _, ps := range series {
			line.AddSeries(ps.label, lineData(ps.values))
		}
	}

	path := s.PagePath(kind)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart page %q: %w", path, err)
	}
	defer f.Close()

	if err := line.Render(f); err != nil {
		return fmt.Errorf("render %s chart: %w", kind, err)
	}
	return nil
}

// PagePath returns the HTML file a metric kind renders to.
func (s *EChartsSink) PagePath(kind recorder.MetricKind) string {
	return filepath.Join(s.dir, kind.String()+".html")
}

func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}
	return data
}
