package main

import (
	"context"
	"testing"
	"time"

	"github.com/signalsfoundry/urbanlink-simulator/core"
	"github.com/signalsfoundry/urbanlink-simulator/kb"
	"github.com/signalsfoundry/urbanlink-simulator/model"
	"github.com/signalsfoundry/urbanlink-simulator/recorder"
	"github.com/signalsfoundry/urbanlink-simulator/timectrl"
)

// TestIntegration_ClockDrivenRun runs a tiny end-to-end-style simulation
// the way main wires it: time controller ticks drive engine steps.
func TestIntegration_ClockDrivenRun(t *testing.T) {
	store := kb.NewAgentStore()

	base := &model.Agent{ID: 1, Name: "base", Pose: model.Pose{X: 0, Y: 0}}
	rover := &model.Agent{
		ID:               2,
		Name:             "rover",
		Pose:             model.Pose{X: 200, Y: 0},
		MotionSource:     model.MotionSourceConstantVelocity,
		SpeedUnitsPerSec: 20,
	}
	if err := store.AddAgent(base); err != nil {
		t.Fatalf("AddAgent base error: %v", err)
	}
	if err := store.AddAgent(rover); err != nil {
		t.Fatalf("AddAgent rover error: %v", err)
	}

	cfg := core.RadioConfig{
		StreetWidthM:        20,
		CarrierFreqMHz:      1710,
		BuildingHeightM:     15,
		RxHeightM:           1.5,
		TxHeightM:           10,
		IncidenceAngleDeg:   30,
		BuildingSeparationM: 40,
		TxPowerDbm:          -15,
		NoiseFloorDbm:       -90,
	}
	rec := recorder.NewRecorder(nil, 0, nil)
	engine := core.NewSimulationEngine(store, core.NewChannelModel(cfg, nil), rec, nil)

	start := time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC)
	tc := timectrl.NewTimeController(start, 1*time.Second, timectrl.Accelerated)
	engine.InitMotion(start)

	ctx := context.Background()
	ticks := 0
	tc.AddListener(func(simTime time.Time) {
		engine.Step(ctx, simTime)
		ticks++
	})

	done := tc.Start(5 * time.Second)
	<-done

	if ticks != 5 {
		t.Fatalf("expected 5 ticks, got %d", ticks)
	}
	if got := rec.StepCount(); got != 5 {
		t.Fatalf("StepCount() = %d, want 5", got)
	}

	moved := store.GetAgent(2)
	if moved == nil || moved.Pose.X == 200 {
		t.Fatalf("expected rover position to change over time, got %+v", moved)
	}

	series := rec.Series(recorder.MetricReceivedPower, recorder.PairKey{I: 0, J: 1})
	if len(series) != 5 {
		t.Fatalf("received power series length = %d, want 5", len(series))
	}
	if series[4] >= series[0] {
		t.Fatalf("received power should fall as the rover recedes: first %v, last %v", series[0], series[4])
	}
}
