// Package propagation provides the pure path-loss formulas consumed by
// the channel layer. All functions are stateless; distances are in
// kilometres and frequencies in MHz unless noted otherwise.
package propagation

import "math"

// LineOfSightLoss returns the COST 231 Walfisch–Ikegami line-of-sight
// path loss in dB for a street-canyon link.
//
//	L = 42.6 + 26 log10(d) + 20 log10(f)
func LineOfSightLoss(distKm, freqMHz float64) float64 {
	return 42.6 + 26*math.Log10(distKm) + 20*math.Log10(freqMHz)
}

// NonLineOfSightLoss returns the COST 231 Walfisch–Ikegami
// non-line-of-sight path loss in dB. It composes free-space loss,
// rooftop-to-street diffraction and multi-screen diffraction.
//
// Parameters: street width w (m), frequency f (MHz), mean roof height
// hRoof (m), receiver height hRx (m), street incidence angle phi
// (degrees), transmitter height hTx (m), distance d (km), inter-building
// spacing b (m).
func NonLineOfSightLoss(streetWidthM, freqMHz, roofHeightM, rxHeightM, incidenceDeg, txHeightM, distKm, buildingSeparationM float64) float64 {
	l0 := freeSpaceLoss(distKm, freqMHz)

	lrts := rooftopToStreetLoss(streetWidthM, freqMHz, roofHeightM, rxHeightM, incidenceDeg)
	lmsd := multiScreenLoss(freqMHz, roofHeightM, txHeightM, distKm, buildingSeparationM)

	if lrts+lmsd <= 0 {
		return l0
	}
	return l0 + lrts + lmsd
}

// freeSpaceLoss is the isotropic free-space reference term.
func freeSpaceLoss(distKm, freqMHz float64) float64 {
	return 32.4 + 20*math.Log10(distKm) + 20*math.Log10(freqMHz)
}

// rooftopToStreetLoss models the final diffraction from the last rooftop
// down to street level, including the street-orientation correction.
func rooftopToStreetLoss(streetWidthM, freqMHz, roofHeightM, rxHeightM, incidenceDeg float64) float64 {
	deltaRx := roofHeightM - rxHeightM

	var lori float64
	switch {
	case incidenceDeg < 35:
		lori = -10 + 0.354*incidenceDeg
	case incidenceDeg < 55:
		lori = 2.5 + 0.075*(incidenceDeg-35)
	default:
		lori = 4.0 - 0.114*(incidenceDeg-55)
	}

	return -16.9 - 10*math.Log10(streetWidthM) + 10*math.Log10(freqMHz) +
		20*math.Log10(deltaRx) + lori
}

// multiScreenLoss models diffraction over the rows of buildings between
// transmitter and receiver.
func multiScreenLoss(freqMHz, roofHeightM, txHeightM, distKm, buildingSeparationM float64) float64 {
	deltaTx := txHeightM - roofHeightM

	var lbsh float64
	if txHeightM > roofHeightM {
		lbsh = -18 * math.Log10(1+deltaTx)
	}

	ka := 54.0
	if txHeightM <= roofHeightM {
		if distKm >= 0.5 {
			ka = 54 - 0.8*deltaTx
		} else {
			ka = 54 - 0.8*deltaTx*distKm/0.5
		}
	}

	kd := 18.0
	if txHeightM <= roofHeightM {
		kd = 18 - 15*deltaTx/roofHeightM
	}

	// Medium-sized city / suburban correction.
	kf := -4 + 0.7*(freqMHz/925-1)

	return lbsh + ka + kd*math.Log10(distKm) + kf*math.Log10(freqMHz) -
		9*math.Log10(buildingSeparationM)
}
