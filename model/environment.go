package model

// Environment is an opaque handle for the simulated area. The channel
// layer never inspects it; it is passed through to the line-of-sight
// tester, which owns whatever occlusion semantics the handle implies.
type Environment interface{}
