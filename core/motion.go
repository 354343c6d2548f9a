package core

import (
	"math"
	"time"

	"github.com/signalsfoundry/urbanlink-simulator/model"
)

// MotionModel updates an agent's pose for a given simulation time.
// Pose production is host-side; the channel layer only ever sees the
// resulting snapshots.
type MotionModel interface {
	UpdatePose(simTime time.Time, a *model.Agent)
}

// StaticMotionModel leaves the agent's pose unchanged.
type StaticMotionModel struct{}

// UpdatePose for static motion does nothing.
func (m *StaticMotionModel) UpdatePose(simTime time.Time, a *model.Agent) {
	// no-op
}

// ConstantVelocityMotionModel moves an agent along its heading at a
// fixed speed. Position is computed from the epoch pose so repeated
// updates for the same simulation time are idempotent.
type ConstantVelocityMotionModel struct {
	epoch     time.Time
	epochPose model.Pose
	speed     float64 // world units per second
}

// NewConstantVelocityModel captures the agent's current pose as the
// motion epoch.
func NewConstantVelocityModel(a *model.Agent, epoch time.Time) *ConstantVelocityMotionModel {
	return &ConstantVelocityMotionModel{
		epoch:     epoch,
		epochPose: a.Pose,
		speed:     a.SpeedUnitsPerSec,
	}
}

// UpdatePose advances the agent along its epoch heading.
func (m *ConstantVelocityMotionModel) UpdatePose(simTime time.Time, a *model.Agent) {
	elapsed := simTime.Sub(m.epoch).Seconds()
	a.Pose = model.Pose{
		X:     m.epochPose.X + m.speed*elapsed*math.Cos(m.epochPose.Theta),
		Y:     m.epochPose.Y + m.speed*elapsed*math.Sin(m.epochPose.Theta),
		Theta: m.epochPose.Theta,
	}
}

// NewMotionModel chooses an appropriate MotionModel for the agent based
// on its declared motion source.
func NewMotionModel(a *model.Agent, epoch time.Time) MotionModel {
	if a.MotionSource == model.MotionSourceConstantVelocity && a.SpeedUnitsPerSec != 0 {
		return NewConstantVelocityModel(a, epoch)
	}
	return &StaticMotionModel{}
}
