package model

// MotionSource indicates how an agent's pose is produced.
type MotionSource int

const (
	MotionSourceUnknown MotionSource = iota
	MotionSourceStatic
	MotionSourceConstantVelocity // straight-line motion along the heading
)

// Pose is an agent's planar position and heading. X and Y are in world
// units; Theta is the heading in radians.
type Pose struct {
	X     float64
	Y     float64
	Theta float64
}

// Agent represents one mobile radio carrier in the simulated area.
// Identity is a 1-based integer index that stays stable for the lifetime
// of a simulation run. The channel layer reads a snapshot of the pose
// each step and never mutates it.
type Agent struct {
	ID   int
	Name string

	Pose         Pose
	MotionSource MotionSource

	// SpeedUnitsPerSec is only meaningful for constant-velocity motion.
	SpeedUnitsPerSec float64
}
