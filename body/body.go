// Package body provides the mass/μ carriers, (position, velocity) pairs and
// time-indexed state histories shared by KeplerOrbit, SolarSystem and
// Plugin. Grounded in spk/bodies.go's body-index enumeration (reworked from
// NAIF numbering into this repo's own closed solar-system index set, see
// package solarsystem) and in elements.go's position/velocity pairing, which
// here becomes the typed DegreesOfFreedom/RelativeDegreesOfFreedom shape.
package body

import (
	"fmt"

	"github.com/astrobound/orrery/frame"
	"github.com/astrobound/orrery/geometry"
	"github.com/astrobound/orrery/quantity"
)

// Body carries a gravitational parameter μ. A Body with μ > 0 is massive; a
// Body with μ == 0 is massless (a vessel).
type Body struct {
	Mu quantity.GravitationalParameter
}

// Massive reports whether b has a strictly positive gravitational parameter.
func (b Body) Massive() bool { return b.Mu.Value() > 0 }

// MassiveBody is a Body known to be a Kepler primary. NewMassiveBody panics
// if mu is not strictly positive — a massless body can never act as a
// KeplerOrbit's primary.
type MassiveBody struct {
	body Body
}

// NewMassiveBody builds a MassiveBody from a strictly positive μ.
func NewMassiveBody(mu quantity.GravitationalParameter) MassiveBody {
	if mu.Value() <= 0 {
		panic(fmt.Sprintf("body: NewMassiveBody requires mu > 0, got %g", mu.Value()))
	}
	return MassiveBody{body: Body{Mu: mu}}
}

// Mu returns the body's gravitational parameter.
func (m MassiveBody) Mu() quantity.GravitationalParameter { return m.body.Mu }

// Body returns the underlying, dimension-erased Body.
func (m MassiveBody) Body() Body { return m.body }

// DegreesOfFreedom is the pair (position, velocity) of a body in frame F.
type DegreesOfFreedom[F frame.Frame] struct {
	Position geometry.Position[F]
	Velocity geometry.Velocity[F]
}

// RelativeDegreesOfFreedom is the pair (displacement, velocity) of one body
// relative to another in frame F — what KeplerOrbit.StateVectors returns and
// what Plugin stores for each celestial relative to its parent.
type RelativeDegreesOfFreedom[F frame.Frame] struct {
	Displacement geometry.Displacement[F]
	Velocity     geometry.Velocity[F]
}

// Trajectory is an ordered, append-only mapping from Instant to
// DegreesOfFreedom for one body. Timestamps strictly increase; Append
// panics if given a timestamp at or before the trajectory's last one, the
// same "violated precondition terminates loudly" rule the rest of this
// repo uses for programmer errors.
type Trajectory[F frame.Frame] struct {
	times  []geometry.Instant
	states []DegreesOfFreedom[F]
}

// NewTrajectory returns an empty Trajectory.
func NewTrajectory[F frame.Frame]() *Trajectory[F] {
	return &Trajectory[F]{}
}

// Append adds a sample at t. It panics if t is not strictly after the
// trajectory's current last time.
func (tr *Trajectory[F]) Append(t geometry.Instant, dof DegreesOfFreedom[F]) {
	if len(tr.times) > 0 {
		last := tr.times[len(tr.times)-1]
		if geometry.Sub(t, last).Seconds() <= 0 {
			panic("body: Trajectory.Append called with a non-increasing timestamp")
		}
	}
	tr.times = append(tr.times, t)
	tr.states = append(tr.states, dof)
}

// Empty reports whether the trajectory has no samples.
func (tr *Trajectory[F]) Empty() bool { return len(tr.times) == 0 }

// LastTime returns the most recent sample's Instant. It panics if the
// trajectory is empty.
func (tr *Trajectory[F]) LastTime() geometry.Instant {
	tr.mustNotBeEmpty("LastTime")
	return tr.times[len(tr.times)-1]
}

// LastPosition returns the most recent sample's Position.
func (tr *Trajectory[F]) LastPosition() geometry.Position[F] {
	tr.mustNotBeEmpty("LastPosition")
	return tr.states[len(tr.states)-1].Position
}

// LastVelocity returns the most recent sample's Velocity.
func (tr *Trajectory[F]) LastVelocity() geometry.Velocity[F] {
	tr.mustNotBeEmpty("LastVelocity")
	return tr.states[len(tr.states)-1].Velocity
}

// LastDegreesOfFreedom returns the most recent (position, velocity) sample.
func (tr *Trajectory[F]) LastDegreesOfFreedom() DegreesOfFreedom[F] {
	tr.mustNotBeEmpty("LastDegreesOfFreedom")
	return tr.states[len(tr.states)-1]
}

// Times returns every sampled Instant, oldest first. The slice is owned by
// the caller.
func (tr *Trajectory[F]) Times() []geometry.Instant {
	out := make([]geometry.Instant, len(tr.times))
	copy(out, tr.times)
	return out
}

func (tr *Trajectory[F]) mustNotBeEmpty(op string) {
	if len(tr.times) == 0 {
		panic(fmt.Sprintf("body: Trajectory.%s called on an empty trajectory", op))
	}
}
