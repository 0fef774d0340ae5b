// Package kepler propagates a two-body relative orbit in closed form.
//
// [FromState] converts a relative position and velocity into classical
// orbital elements. [Elements.Position] then solves Kepler's equation for
// any time, which makes it a reference for numerically integrated
// trajectories of the same system.
package kepler
