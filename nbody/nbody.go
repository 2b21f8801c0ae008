// Package nbody evolves a set of trajectories under mutual Newtonian
// gravity. The Integrator interface is the contract the plugin façade
// depends on; Leapfrog is the reference implementation, a fixed-step
// kick-drift-kick scheme whose pairwise force accumulation follows the
// classic n-body kernel (accelerations from μ/d³ terms, symplectic update
// order) with the accelerations expressed through μ = G·M instead of raw
// masses, so massless vessels fall out naturally: they feel gravity but
// exert none.
package nbody

import (
	"fmt"
	"math"

	"github.com/astrobound/orrery/body"
	"github.com/astrobound/orrery/frame"
	"github.com/astrobound/orrery/geometry"
	"github.com/astrobound/orrery/quantity"
	"github.com/astrobound/orrery/r3"
)

// Integrator advances every trajectory to t under the mutual gravity of the
// given bodies. bodies[i] is the body whose history trajectories[i] holds;
// the two slices must have equal length. Each trajectory must be non-empty
// and all trajectories must end at the same instant, strictly before t. On
// return, each trajectory has exactly one new sample, at t.
type Integrator[F frame.Frame] interface {
	Integrate(bodies []body.Body, trajectories []*body.Trajectory[F], t geometry.Instant)
}

// Leapfrog is a fixed-step kick-drift-kick integrator. The interval up to
// the target instant is cut into equal steps no longer than MaxStep; the
// scheme is symplectic, so energy error stays bounded over many orbits
// instead of drifting.
type Leapfrog[F frame.Frame] struct {
	// MaxStep bounds the internal step length. Must be positive.
	MaxStep quantity.Time
}

// Integrate implements Integrator.
func (l Leapfrog[F]) Integrate(bodies []body.Body, trajectories []*body.Trajectory[F], t geometry.Instant) {
	if l.MaxStep.Seconds() <= 0 {
		panic("nbody: Leapfrog.MaxStep must be positive")
	}
	if len(bodies) != len(trajectories) {
		panic(fmt.Sprintf("nbody: %d bodies but %d trajectories", len(bodies), len(trajectories)))
	}
	if len(trajectories) == 0 {
		return
	}

	t0 := trajectories[0].LastTime()
	for _, tr := range trajectories {
		if geometry.Sub(tr.LastTime(), t0).Seconds() != 0 {
			panic("nbody: trajectories do not all end at the same instant")
		}
	}
	total := geometry.Sub(t, t0).Seconds()
	if total <= 0 {
		panic("nbody: target instant is not after the trajectories' last instant")
	}

	n := len(bodies)
	mu := make([]float64, n)
	pos := make([]r3.Vec[float64], n)
	vel := make([]r3.Vec[float64], n)
	for i, tr := range trajectories {
		mu[i] = bodies[i].Mu.Value()
		dof := tr.LastDegreesOfFreedom()
		pos[i] = r3.Float64(dof.Position.RelativeTo().Coordinates)
		vel[i] = r3.Float64(dof.Velocity.Coordinates)
	}

	steps := int(math.Ceil(total / l.MaxStep.Seconds()))
	dt := total / float64(steps)

	acc := accelerations(mu, pos)
	for s := 0; s < steps; s++ {
		for i := range vel {
			vel[i] = r3.Add(vel[i], r3.Scale(dt/2, acc[i]))
		}
		for i := range pos {
			pos[i] = r3.Add(pos[i], r3.Scale(dt, vel[i]))
		}
		acc = accelerations(mu, pos)
		for i := range vel {
			vel[i] = r3.Add(vel[i], r3.Scale(dt/2, acc[i]))
		}
	}

	for i, tr := range trajectories {
		tr.Append(t, body.DegreesOfFreedom[F]{
			Position: geometry.NewPoint(geometry.Vector[quantity.Length, F]{
				Coordinates: r3.Convert(pos[i], func(f float64) quantity.Length { return quantity.Length(f) }),
			}),
			Velocity: geometry.Vector[quantity.Speed, F]{
				Coordinates: r3.Convert(vel[i], func(f float64) quantity.Speed { return quantity.Speed(f) }),
			},
		})
	}
}

// accelerations returns the gravitational acceleration on each body:
// a_i = Σ_{j≠i, μ_j>0} μ_j (r_j − r_i) / |r_j − r_i|³.
func accelerations(mu []float64, pos []r3.Vec[float64]) []r3.Vec[float64] {
	acc := make([]r3.Vec[float64], len(pos))
	for i := range pos {
		for j := range pos {
			if j == i || mu[j] == 0 {
				continue
			}
			d := r3.Sub(pos[j], pos[i])
			d2 := r3.Dot(d, d)
			dist := math.Sqrt(d2)
			acc[i] = r3.Add(acc[i], r3.Scale(mu[j]/(d2*dist), d))
		}
	}
	return acc
}
