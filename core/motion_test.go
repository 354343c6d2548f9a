package core

import (
	"math"
	"testing"
	"time"

	"github.com/signalsfoundry/urbanlink-simulator/model"
)

func TestStaticMotionModel_NoChange(t *testing.T) {
	m := &StaticMotionModel{}
	a := &model.Agent{
		ID:   1,
		Pose: model.Pose{X: 1, Y: 2, Theta: 3},
	}

	t1 := time.Now().UTC()
	m.UpdatePose(t1, a)
	if a.Pose != (model.Pose{X: 1, Y: 2, Theta: 3}) {
		t.Fatalf("static motion should not change pose, got %#v", a.Pose)
	}

	m.UpdatePose(t1.Add(time.Hour), a)
	if a.Pose != (model.Pose{X: 1, Y: 2, Theta: 3}) {
		t.Fatalf("static motion should not change pose after second update, got %#v", a.Pose)
	}
}

func TestConstantVelocityMotionModel_MovesAlongHeading(t *testing.T) {
	epoch := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := &model.Agent{
		ID:               1,
		Pose:             model.Pose{X: 100, Y: 50, Theta: math.Pi / 2},
		SpeedUnitsPerSec: 4,
	}
	m := NewConstantVelocityModel(a, epoch)

	m.UpdatePose(epoch.Add(10*time.Second), a)
	if math.Abs(a.Pose.X-100) > 1e-9 {
		t.Fatalf("X = %v, want 100 when heading is +Y", a.Pose.X)
	}
	if math.Abs(a.Pose.Y-90) > 1e-9 {
		t.Fatalf("Y = %v, want 90 after 10s at 4 units/s", a.Pose.Y)
	}
	if a.Pose.Theta != math.Pi/2 {
		t.Fatalf("Theta = %v, want unchanged heading", a.Pose.Theta)
	}
}

func TestConstantVelocityMotionModel_Idempotent(t *testing.T) {
	epoch := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := &model.Agent{ID: 1, Pose: model.Pose{Theta: 0.3}, SpeedUnitsPerSec: 2}
	m := NewConstantVelocityModel(a, epoch)

	at := epoch.Add(7 * time.Second)
	m.UpdatePose(at, a)
	first := a.Pose
	m.UpdatePose(at, a)
	if a.Pose != first {
		t.Fatalf("repeated update for the same time changed the pose: %#v vs %#v", first, a.Pose)
	}
}

func TestNewMotionModel_Selection(t *testing.T) {
	epoch := time.Now().UTC()

	moving := &model.Agent{
		ID:               1,
		MotionSource:     model.MotionSourceConstantVelocity,
		SpeedUnitsPerSec: 3,
	}
	if _, ok := NewMotionModel(moving, epoch).(*ConstantVelocityMotionModel); !ok {
		t.Fatalf("expected constant-velocity model for a moving agent")
	}

	static := &model.Agent{ID: 2, MotionSource: model.MotionSourceStatic}
	if _, ok := NewMotionModel(static, epoch).(*StaticMotionModel); !ok {
		t.Fatalf("expected static model for a static agent")
	}

	// Zero speed degrades to static even when declared constant-velocity.
	stalled := &model.Agent{ID: 3, MotionSource: model.MotionSourceConstantVelocity}
	if _, ok := NewMotionModel(stalled, epoch).(*StaticMotionModel); !ok {
		t.Fatalf("expected static model for zero speed")
	}
}
