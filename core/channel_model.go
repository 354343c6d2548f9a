package core

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/signalsfoundry/urbanlink-simulator/model"
	"github.com/signalsfoundry/urbanlink-simulator/propagation"
)

// RadioConfig is the immutable record of physical and radio parameters
// a ChannelModel is constructed with. All fields are in the SI/dB units
// named by their suffixes.
type RadioConfig struct {
	StreetWidthM        float64 `json:"street_width_m"`
	CarrierFreqMHz      float64 `json:"carrier_freq_mhz"`
	BuildingHeightM     float64 `json:"building_height_m"`
	RxHeightM           float64 `json:"rx_height_m"`
	TxHeightM           float64 `json:"tx_height_m"`
	IncidenceAngleDeg   float64 `json:"incidence_angle_deg"`
	BuildingSeparationM float64 `json:"building_separation_m"`
	TxPowerDbm          float64 `json:"tx_power_dbm"`
	NoiseFloorDbm       float64 `json:"noise_floor_dbm"`
}

// ChannelModel converts a snapshot of agent poses into pairwise link
// quality matrices. It is pure: identical inputs yield bit-identical
// outputs, and independent snapshots may be evaluated concurrently.
type ChannelModel struct {
	cfg            RadioConfig
	hasLineOfSight LineOfSightTester
}

// NewChannelModel constructs a channel model. A nil tester falls back to
// the AlwaysClear placeholder.
func NewChannelModel(cfg RadioConfig, tester LineOfSightTester) *ChannelModel {
	if tester == nil {
		tester = AlwaysClear
	}
	return &ChannelModel{cfg: cfg, hasLineOfSight: tester}
}

// Config returns the radio parameter record the model was built with.
func (cm *ChannelModel) Config() RadioConfig {
	return cm.cfg
}

// ComputeMetrics evaluates every unordered agent pair and returns three
// N×N matrices: path attenuation (dB), received power (dBm) and bit
// error rate. Only the strict upper triangle (i < j) is populated; the
// relation is symmetric and self-pairs stay at the matrix zero value.
//
// Fewer than two agents yields empty matrices, not an error. Degenerate
// geometry (coincident agents, zero distance) is not guarded against;
// whatever the propagation formulas produce for it, including NaN or
// infinities, propagates into the matrices unchanged.
func (cm *ChannelModel) ComputeMetrics(agents []model.Agent, env model.Environment) (attenuation, power, ber *mat.Dense) {
	n := len(agents)
	if n < 2 {
		return &mat.Dense{}, &mat.Dense{}, &mat.Dense{}
	}

	attenuation = mat.NewDense(n, n, nil)
	power = mat.NewDense(n, n, nil)
	ber = mat.NewDense(n, n, nil)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			distKm := PairDistanceKm(agents[i], agents[j])

			var loss float64
			if cm.hasLineOfSight(agents[i], agents[j], env) {
				loss = propagation.LineOfSightLoss(distKm, cm.cfg.CarrierFreqMHz)
			} else {
				loss = propagation.NonLineOfSightLoss(
					cm.cfg.StreetWidthM,
					cm.cfg.CarrierFreqMHz,
					cm.cfg.BuildingHeightM,
					cm.cfg.RxHeightM,
					cm.cfg.IncidenceAngleDeg,
					cm.cfg.TxHeightM,
					distKm,
					cm.cfg.BuildingSeparationM,
				)
			}

			rx := cm.cfg.TxPowerDbm - loss

			attenuation.Set(i, j, loss)
			power.Set(i, j, rx)
			ber.Set(i, j, bitErrorRate(rx-cm.cfg.NoiseFloorDbm))
		}
	}
	return attenuation, power, ber
}

// bitErrorRate maps an SNR in dB to a bit error rate via the fixed
// closed-form approximation
//
//	BER = 0.5 * (1 - sqrt(snr / (1 + snr)))
//
// with snr the linear ratio. The formula is part of the channel
// contract and is not interchangeable with other modulation models.
func bitErrorRate(snrDb float64) float64 {
	snr := math.Pow(10, snrDb/10)
	return 0.5 * (1 - math.Sqrt(snr/(1+snr)))
}
