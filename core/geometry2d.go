package core

import (
	"math"

	"github.com/signalsfoundry/urbanlink-simulator/model"
)

// distanceUnitScale converts raw world units into the kilometre unit
// expected by the propagation formulas. The factor is part of the
// channel contract; it is a fixed constant, not derived from any unit
// system.
const distanceUnitScale = 1.0 / 100.0

// Vec2 is a planar position in world units.
type Vec2 struct {
	X, Y float64
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec2) DistanceTo(other Vec2) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Norm returns the Euclidean norm of the vector.
func (v Vec2) Norm() float64 {
	return math.Hypot(v.X, v.Y)
}

// poseVec projects an agent pose onto its planar position.
func poseVec(p model.Pose) Vec2 {
	return Vec2{X: p.X, Y: p.Y}
}

// PairDistanceKm returns the distance between two agents in the unit
// the propagation formulas expect.
func PairDistanceKm(a, b model.Agent) float64 {
	return poseVec(a.Pose).DistanceTo(poseVec(b.Pose)) * distanceUnitScale
}
