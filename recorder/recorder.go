// Package recorder accumulates per-pair link metrics across simulation
// steps and drives periodic redraws of the visualization sink.
package recorder

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/signalsfoundry/urbanlink-simulator/internal/logging"
)

// MetricKind identifies one of the three recorded link metrics.
type MetricKind int

const (
	MetricAttenuation MetricKind = iota
	MetricReceivedPower
	MetricBitErrorRate
)

var metricKindNames = [...]string{
	"attenuation",
	"received_power",
	"bit_error_rate",
}

func (k MetricKind) String() string {
	if k < 0 || int(k) >= len(metricKindNames) {
		return fmt.Sprintf("MetricKind(%d)", int(k))
	}
	return metricKindNames[k]
}

// Kinds lists all metric kinds in drawing order.
func Kinds() []MetricKind {
	return []MetricKind{MetricAttenuation, MetricReceivedPower, MetricBitErrorRate}
}

// PairKey identifies an unordered agent pair by matrix position,
// I < J always.
type PairKey struct {
	I, J int
}

// Label renders the pair with 1-based agent identities, e.g. "1-2".
func (k PairKey) Label() string {
	return fmt.Sprintf("%d-%d", k.I+1, k.J+1)
}

// PlotSink is the narrow drawing surface the recorder redraws on every
// refresh. Reset discards the sink's prior content for a metric kind,
// DrawSeries adds one labeled line series, and Render publishes the
// result. The slices passed to DrawSeries are the recorder's live
// buffers; sinks must treat them as read-only.
type PlotSink interface {
	Reset(kind MetricKind)
	DrawSeries(kind MetricKind, pairLabel string, steps []int, values []float64)
	Render(kind MetricKind) error
}

// DefaultRefreshCadence is the number of recorded steps between plot
// refreshes when the caller does not choose one.
const DefaultRefreshCadence = 50

// Recorder owns the per-pair time-series history of one simulation run.
// It must be constructed explicitly per run; there is no package-level
// state. Record calls must arrive serialized in step order; the
// recorder is not safe for concurrent callers.
type Recorder struct {
	sink    PlotSink
	log     logging.Logger
	cadence int

	step int // monotonic; survives buffer resets
	dim  int // matrix dimension the buffers were sized for; -1 before first observation

	steps       []int
	attenuation map[PairKey][]float64
	power       map[PairKey][]float64
	ber         map[PairKey][]float64
}

// NewRecorder constructs a recorder drawing on sink every cadence steps.
// A non-positive cadence falls back to DefaultRefreshCadence; a nil sink
// disables drawing but keeps full history; a nil logger is replaced with
// a no-op one.
func NewRecorder(sink PlotSink, cadence int, log logging.Logger) *Recorder {
	if cadence <= 0 {
		cadence = DefaultRefreshCadence
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Recorder{
		sink:    sink,
		log:     log,
		cadence: cadence,
		dim:     -1,
	}
}

// StepCount returns the number of Record calls so far.
func (r *Recorder) StepCount() int { return r.step }

// Cadence returns the refresh cadence in steps.
func (r *Recorder) Cadence() int { return r.cadence }

// Steps returns the shared step-index buffer. Callers must not mutate it.
func (r *Recorder) Steps() []int { return r.steps }

// Series returns the buffered values of one pair for one metric kind,
// or nil if the pair has never been observed. Callers must not mutate
// the returned slice.
func (r *Recorder) Series(kind MetricKind, pair PairKey) []float64 {
	buffers := r.buffers(kind)
	if buffers == nil {
		return nil
	}
	return buffers[pair]
}

// Record appends one step's metric matrices to the history and, on
// every cadence boundary, redraws the sink. A change in matrix
// dimension between steps hard-resets all buffers: prior history is
// discarded, not merged, and shows up as a discontinuity in the
// recorded series. The step counter itself is never reset.
func (r *Recorder) Record(attenuation, power, ber mat.Matrix) {
	r.step++

	n, _ := attenuation.Dims()
	if r.dim != n {
		r.resetBuffers(n)
	}

	r.steps = append(r.steps, r.step)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			key := PairKey{I: i, J: j}
			r.attenuation[key] = append(r.attenuation[key], attenuation.At(i, j))
			r.power[key] = append(r.power[key], power.At(i, j))
			r.ber[key] = append(r.ber[key], ber.At(i, j))
		}
	}

	if r.step%r.cadence == 0 {
		r.refresh()
	}
}

// resetBuffers discards all history and resizes for a new dimension.
func (r *Recorder) resetBuffers(dim int) {
	if r.dim >= 0 {
		r.log.Info(context.Background(), "agent count changed, resetting metric history",
			logging.Int("old_dim", r.dim),
			logging.Int("new_dim", dim),
			logging.Int("step", r.step),
		)
	}
	r.dim = dim
	r.steps = nil
	r.attenuation = make(map[PairKey][]float64)
	r.power = make(map[PairKey][]float64)
	r.ber = make(map[PairKey][]float64)
}

// refresh redraws every metric kind wholesale on the sink.
func (r *Recorder) refresh() {
	if r.sink == nil {
		return
	}
	for _, kind := range Kinds() {
		buffers := r.buffers(kind)

		r.sink.Reset(kind)
		for _, key := range sortedKeys(buffers) {
			if len(buffers[key]) == 0 {
				continue
			}
			r.sink.DrawSeries(kind, key.Label(), r.steps, buffers[key])
		}
		if err := r.sink.Render(kind); err != nil {
			r.log.Warn(context.Background(), "plot render failed",
				logging.String("metric", kind.String()),
				logging.String("error", err.Error()),
			)
		}
	}
}

func (r *Recorder) buffers(kind MetricKind) map[PairKey][]float64 {
	switch kind {
	case MetricAttenuation:
		return r.attenuation
	case MetricReceivedPower:
		return r.power
	case MetricBitErrorRate:
		return r.ber
	default:
		return nil
	}
}

func sortedKeys(buffers map[PairKey][]float64) []PairKey {
	keys := make([]PairKey, 0, len(buffers))
	for key := range buffers {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].I != keys[b].I {
			return keys[a].I < keys[b].I
		}
		return keys[a].J < keys[b].J
	})
	return keys
}
