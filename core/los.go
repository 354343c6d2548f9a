package core

import "github.com/signalsfoundry/urbanlink-simulator/model"

// LineOfSightTester reports whether an unobstructed direct path exists
// between two agents in the given environment. The result selects which
// path-loss formula the channel model applies to the pair.
//
// The tester is an injectable strategy so that a real occlusion test can
// be substituted without touching the channel model.
type LineOfSightTester func(a, b model.Agent, env model.Environment) bool

// AlwaysClear is a placeholder tester that reports visibility for every
// pair. A real occlusion test against the environment geometry has not
// been implemented yet; callers must not assume real occlusion semantics
// while this is in use.
func AlwaysClear(a, b model.Agent, env model.Environment) bool {
	return true
}
