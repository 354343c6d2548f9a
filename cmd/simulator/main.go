package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/signalsfoundry/urbanlink-simulator/core"
	"github.com/signalsfoundry/urbanlink-simulator/internal/logging"
	"github.com/signalsfoundry/urbanlink-simulator/internal/observability"
	"github.com/signalsfoundry/urbanlink-simulator/kb"
	"github.com/signalsfoundry/urbanlink-simulator/plot"
	"github.com/signalsfoundry/urbanlink-simulator/recorder"
	"github.com/signalsfoundry/urbanlink-simulator/timectrl"
)

func main() {
	duration := flag.Duration("duration", 200*time.Second, "total simulation duration")
	tick := flag.Duration("tick", 1*time.Second, "tick interval")
	accelerated := flag.Bool("accelerated", true, "run in accelerated mode (vs real-time)")
	scenarioPath := flag.String("scenario", "configs/scenario.json", "path to the scenario JSON")
	chartsDir := flag.String("charts-dir", "charts", "directory for rendered metric pages")
	metricsAddr := flag.String("metrics-addr", "", "listen address for /metrics (empty disables)")
	cadence := flag.Int("refresh-cadence", recorder.DefaultRefreshCadence, "steps between chart refreshes")

	flag.Parse()

	log := logging.NewFromEnv()
	runID := uuid.NewString()
	ctx, log := logging.WithRunLogger(context.Background(), log, runID)

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	// ==== Scenario load ====

	store := kb.NewAgentStore()

	f, err := os.Open(*scenarioPath)
	if err != nil {
		log.Error(ctx, "cannot open scenario", logging.String("path", *scenarioPath), logging.String("error", err.Error()))
		os.Exit(1)
	}
	scenario, err := core.LoadScenario(store, f)
	f.Close()
	if err != nil {
		log.Error(ctx, "scenario load failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "scenario loaded",
		logging.String("path", *scenarioPath),
		logging.Int("agents", len(scenario.AgentIDs)),
		logging.Float64("carrier_freq_mhz", scenario.Radio.CarrierFreqMHz),
	)

	// ==== Channel, recorder, plots ====

	sink, err := plot.NewEChartsSink(*chartsDir)
	if err != nil {
		log.Error(ctx, "cannot create charts directory", logging.String("dir", *chartsDir), logging.String("error", err.Error()))
		os.Exit(1)
	}

	channel := core.NewChannelModel(scenario.Radio, nil)
	rec := recorder.NewRecorder(sink, *cadence, log)
	engine := core.NewSimulationEngine(store, channel, rec, log)

	// ==== Monitoring surface ====

	if *metricsAddr != "" {
		links, err := observability.NewLinkCollector(nil)
		if err != nil {
			log.Error(ctx, "metrics registration failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
		engine.SetLinkCollector(links)

		mux := http.NewServeMux()
		mux.Handle("/metrics", links.Handler())
		go func() {
			log.Info(ctx, "metrics listening", logging.String("addr", *metricsAddr))
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error(ctx, "metrics server stopped", logging.String("error", err.Error()))
			}
		}()
	}

	// ==== Time controller ====

	mode := timectrl.RealTime
	if *accelerated {
		mode = timectrl.Accelerated
	}
	start := time.Now().UTC()
	tc := timectrl.NewTimeController(start, *tick, mode)

	engine.InitMotion(start)
	tc.AddListener(func(simTime time.Time) {
		engine.Step(ctx, simTime)
	})

	log.Info(ctx, "starting simulation",
		logging.String("run_id", runID),
		logging.String("duration", duration.String()),
		logging.String("tick", tick.String()),
		logging.Int("refresh_cadence", rec.Cadence()),
		logging.Any("mode", mode),
	)

	<-tc.Start(*duration)

	log.Info(ctx, "simulation complete",
		logging.Int("steps", rec.StepCount()),
		logging.String("charts_dir", *chartsDir),
	)
	for _, kind := range recorder.Kinds() {
		fmt.Printf("%-16s %s\n", kind.String(), sink.PagePath(kind))
	}
}
