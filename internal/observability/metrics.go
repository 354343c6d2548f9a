package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LinkCollector bundles Prometheus metrics for the link-quality engine
// and exposes them over an HTTP handler. The per-pair gauges mirror the
// latest computed step, so scraping them yields the same live time
// series the plot sink renders.
type LinkCollector struct {
	gatherer prometheus.Gatherer

	Attenuation   *prometheus.GaugeVec
	ReceivedPower *prometheus.GaugeVec
	BitErrorRate  *prometheus.GaugeVec

	Agents        prometheus.Gauge
	Steps         prometheus.Counter
	PlotRefreshes prometheus.Counter
}

// NewLinkCollector registers link metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewLinkCollector(reg prometheus.Registerer) (*LinkCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	attenuation, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "link_attenuation_db",
		Help: "Latest path attenuation per agent pair, in dB.",
	}, []string{"pair"}), "link_attenuation_db")
	if err != nil {
		return nil, err
	}

	receivedPower, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "link_received_power_dbm",
		Help: "Latest received power per agent pair, in dBm.",
	}, []string{"pair"}), "link_received_power_dbm")
	if err != nil {
		return nil, err
	}

	bitErrorRate, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "link_bit_error_rate",
		Help: "Latest bit error rate per agent pair.",
	}, []string{"pair"}), "link_bit_error_rate")
	if err != nil {
		return nil, err
	}

	agents, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_agents",
		Help: "Current number of agents in the simulated area.",
	}), "sim_agents")
	if err != nil {
		return nil, err
	}

	steps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_steps_total",
		Help: "Total number of completed simulation steps.",
	}), "sim_steps_total")
	if err != nil {
		return nil, err
	}

	refreshes, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_plot_refreshes_total",
		Help: "Total number of plot refresh cycles.",
	}), "sim_plot_refreshes_total")
	if err != nil {
		return nil, err
	}

	return &LinkCollector{
		gatherer:      gatherer,
		Attenuation:   attenuation,
		ReceivedPower: receivedPower,
		BitErrorRate:  bitErrorRate,
		Agents:        agents,
		Steps:         steps,
		PlotRefreshes: refreshes,
	}, nil
}

// ObservePair updates the three per-pair gauges for one computed entry.
func (c *LinkCollector) ObservePair(pair string, attenuationDb, receivedPowerDbm, bitErrorRate float64) {
	if c == nil {
		return
	}
	c.Attenuation.WithLabelValues(pair).Set(attenuationDb)
	c.ReceivedPower.WithLabelValues(pair).Set(receivedPowerDbm)
	c.BitErrorRate.WithLabelValues(pair).Set(bitErrorRate)
}

// ResetPairs drops all per-pair gauge children. The engine calls this
// when the agent count changes so stale pairs stop being exported.
func (c *LinkCollector) ResetPairs() {
	if c == nil {
		return
	}
	c.Attenuation.Reset()
	c.ReceivedPower.Reset()
	c.BitErrorRate.Reset()
}

// SetAgentCount updates the agent gauge.
func (c *LinkCollector) SetAgentCount(n int) {
	if c == nil {
		return
	}
	c.Agents.Set(float64(n))
}

// StepCompleted increments the step counter.
func (c *LinkCollector) StepCompleted() {
	if c == nil {
		return
	}
	c.Steps.Inc()
}

// PlotRefreshed increments the refresh counter.
func (c *LinkCollector) PlotRefreshed() {
	if c == nil {
		return
	}
	c.PlotRefreshes.Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *LinkCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
