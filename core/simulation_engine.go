package core

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/urbanlink-simulator/internal/logging"
	"github.com/signalsfoundry/urbanlink-simulator/internal/observability"
	"github.com/signalsfoundry/urbanlink-simulator/kb"
	"github.com/signalsfoundry/urbanlink-simulator/recorder"
)

// SimulationEngine drives one channel-quality run: per step it advances
// agent motion, snapshots the store, computes the pairwise metrics and
// hands them to the recorder. Execution is step-synchronous; each step
// is one compute-then-append transaction.
type SimulationEngine struct {
	Store    *kb.AgentStore
	Channel  *ChannelModel
	Recorder *recorder.Recorder

	links  *observability.LinkCollector
	log    logging.Logger
	tracer trace.Tracer

	motions       map[int]MotionModel
	tickListeners []func(step int)
	lastDim       int
}

// NewSimulationEngine wires the engine. A nil logger is replaced with a
// no-op one; the link collector is optional and attached separately.
func NewSimulationEngine(store *kb.AgentStore, channel *ChannelModel, rec *recorder.Recorder, log logging.Logger) *SimulationEngine {
	if log == nil {
		log = logging.Noop()
	}
	return &SimulationEngine{
		Store:    store,
		Channel:  channel,
		Recorder: rec,
		log:      log,
		tracer:   otel.Tracer("urbanlink-simulator/core"),
		motions:  make(map[int]MotionModel),
		lastDim:  -1,
	}
}

// SetLinkCollector attaches the Prometheus collector updated after each
// step.
func (se *SimulationEngine) SetLinkCollector(c *observability.LinkCollector) {
	se.links = c
}

// RegisterTickListener adds a callback invoked with the completed step
// index after every step.
func (se *SimulationEngine) RegisterTickListener(fn func(int)) {
	se.tickListeners = append(se.tickListeners, fn)
}

// InitMotion builds a motion model per stored agent, using the given
// time as the motion epoch. Agents added afterwards keep their stored
// pose until InitMotion is called again.
func (se *SimulationEngine) InitMotion(epoch time.Time) {
	se.motions = make(map[int]MotionModel)
	for _, a := range se.Store.Snapshot() {
		agent := a
		se.motions[a.ID] = NewMotionModel(&agent, epoch)
	}
}

// Step runs one simulation step at the given simulation time.
func (se *SimulationEngine) Step(ctx context.Context, simTime time.Time) {
	for _, a := range se.Store.Snapshot() {
		m, ok := se.motions[a.ID]
		if !ok {
			continue
		}
		agent := a
		m.UpdatePose(simTime, &agent)
		if err := se.Store.UpdateAgentPose(a.ID, agent.Pose); err != nil {
			se.log.Warn(ctx, "pose update failed",
				logging.Int("agent_id", a.ID),
				logging.String("error", err.Error()),
			)
		}
	}

	agents := se.Store.Snapshot()
	attenuation, power, ber := se.Channel.ComputeMetrics(agents, se.Store.Environment())

	n, _ := attenuation.Dims()
	if se.links != nil {
		if n != se.lastDim {
			se.links.ResetPairs()
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pair := recorder.PairKey{I: i, J: j}.Label()
				se.links.ObservePair(pair, attenuation.At(i, j), power.At(i, j), ber.At(i, j))
			}
		}
		se.links.SetAgentCount(len(agents))
		se.links.StepCompleted()
	}
	se.lastDim = n

	// The recorder redraws on cadence boundaries; wrap those steps in a
	// span so slow renders show up in traces.
	refreshing := (se.Recorder.StepCount()+1)%se.Recorder.Cadence() == 0
	if refreshing {
		_, span := se.tracer.Start(ctx, "recorder.refresh",
			trace.WithAttributes(
				attribute.Int("step", se.Recorder.StepCount()+1),
				attribute.Int("agents", len(agents)),
			),
		)
		se.Recorder.Record(attenuation, power, ber)
		span.End()
		if se.links != nil {
			se.links.PlotRefreshed()
		}
	} else {
		se.Recorder.Record(attenuation, power, ber)
	}

	for _, fn := range se.tickListeners {
		fn(se.Recorder.StepCount())
	}
}

// Run executes the given number of steps headlessly, advancing
// simulation time by tick from the epoch. InitMotion is invoked with
// the epoch before the first step.
func (se *SimulationEngine) Run(ctx context.Context, steps int, epoch time.Time, tick time.Duration) {
	se.InitMotion(epoch)
	for s := 1; s <= steps; s++ {
		se.Step(ctx, epoch.Add(time.Duration(s)*tick))
	}
}
