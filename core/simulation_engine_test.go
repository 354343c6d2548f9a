package core

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/signalsfoundry/urbanlink-simulator/internal/observability"
	"github.com/signalsfoundry/urbanlink-simulator/kb"
	"github.com/signalsfoundry/urbanlink-simulator/model"
	"github.com/signalsfoundry/urbanlink-simulator/recorder"
)

func newEngineStore(t *testing.T, agents ...model.Agent) *kb.AgentStore {
	t.Helper()
	store := kb.NewAgentStore()
	for i := range agents {
		if err := store.AddAgent(&agents[i]); err != nil {
			t.Fatalf("AddAgent(%d): %v", agents[i].ID, err)
		}
	}
	return store
}

func TestSimulationEngine_RunAccumulatesHistory(t *testing.T) {
	store := newEngineStore(t,
		model.Agent{ID: 1, Pose: model.Pose{X: 0, Y: 0}},
		model.Agent{ID: 2, Pose: model.Pose{X: 1000, Y: 0}},
	)
	rec := recorder.NewRecorder(nil, 0, nil)
	eng := NewSimulationEngine(store, NewChannelModel(testRadioConfig(), nil), rec, nil)

	eng.Run(context.Background(), 7, time.Unix(0, 0).UTC(), time.Second)

	if got := rec.StepCount(); got != 7 {
		t.Fatalf("StepCount() = %d, want 7", got)
	}
	series := rec.Series(recorder.MetricAttenuation, recorder.PairKey{I: 0, J: 1})
	if len(series) != 7 {
		t.Fatalf("attenuation series length = %d, want 7", len(series))
	}
	for s, v := range series {
		if math.IsNaN(v) || v <= 0 {
			t.Fatalf("attenuation[%d] = %v, want positive loss", s, v)
		}
	}
}

func TestSimulationEngine_MovingAgentChangesSeries(t *testing.T) {
	store := newEngineStore(t,
		model.Agent{ID: 1, Pose: model.Pose{X: 0, Y: 0}},
		model.Agent{
			ID:               2,
			Pose:             model.Pose{X: 500, Y: 0, Theta: 0},
			MotionSource:     model.MotionSourceConstantVelocity,
			SpeedUnitsPerSec: 50,
		},
	)
	rec := recorder.NewRecorder(nil, 0, nil)
	eng := NewSimulationEngine(store, NewChannelModel(testRadioConfig(), nil), rec, nil)

	eng.Run(context.Background(), 5, time.Unix(0, 0).UTC(), time.Second)

	series := rec.Series(recorder.MetricAttenuation, recorder.PairKey{I: 0, J: 1})
	if len(series) != 5 {
		t.Fatalf("series length = %d, want 5", len(series))
	}
	for s := 1; s < len(series); s++ {
		if series[s] <= series[s-1] {
			t.Fatalf("attenuation not increasing as agents separate: step %d %v <= %v", s, series[s], series[s-1])
		}
	}

	moved := store.GetAgent(2)
	if moved == nil || moved.Pose.X != 750 {
		t.Fatalf("agent 2 pose after 5s at 50 units/s: got %+v, want X=750", moved)
	}
}

func TestSimulationEngine_UpdatesLinkCollector(t *testing.T) {
	store := newEngineStore(t,
		model.Agent{ID: 1, Pose: model.Pose{X: 0, Y: 0}},
		model.Agent{ID: 2, Pose: model.Pose{X: 1000, Y: 0}},
	)
	reg := prometheus.NewRegistry()
	links, err := observability.NewLinkCollector(reg)
	if err != nil {
		t.Fatalf("NewLinkCollector: %v", err)
	}

	rec := recorder.NewRecorder(nil, 3, nil)
	eng := NewSimulationEngine(store, NewChannelModel(testRadioConfig(), nil), rec, nil)
	eng.SetLinkCollector(links)

	eng.Run(context.Background(), 6, time.Unix(0, 0).UTC(), time.Second)

	if got := testutil.ToFloat64(links.Steps); got != 6 {
		t.Fatalf("sim_steps_total = %v, want 6", got)
	}
	if got := testutil.ToFloat64(links.PlotRefreshes); got != 2 {
		t.Fatalf("sim_plot_refreshes_total = %v, want 2 at cadence 3 over 6 steps", got)
	}
	if got := testutil.ToFloat64(links.Agents); got != 2 {
		t.Fatalf("sim_agents = %v, want 2", got)
	}
	if got := testutil.ToFloat64(links.Attenuation.WithLabelValues("1-2")); got <= 0 {
		t.Fatalf("link_attenuation_db{pair=\"1-2\"} = %v, want positive", got)
	}
}

func TestSimulationEngine_TickListeners(t *testing.T) {
	store := newEngineStore(t,
		model.Agent{ID: 1, Pose: model.Pose{X: 0, Y: 0}},
		model.Agent{ID: 2, Pose: model.Pose{X: 100, Y: 0}},
	)
	rec := recorder.NewRecorder(nil, 0, nil)
	eng := NewSimulationEngine(store, NewChannelModel(testRadioConfig(), nil), rec, nil)

	var seen []int
	eng.RegisterTickListener(func(step int) { seen = append(seen, step) })

	eng.Run(context.Background(), 3, time.Unix(0, 0).UTC(), time.Second)

	want := []int{1, 2, 3}
	if len(seen) != len(want) {
		t.Fatalf("listener called %d times, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("listener step[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
}
