// Package plugin is the façade a spaceflight-simulator host drives. It
// owns the celestial hierarchy and the vessels, keeps all state in the
// inertial ecliptic frame, and converts to and from the host's display
// frame (AliceSun) at the boundary, through the looking glass: the XZY axis
// permutation composed with a rotation about the celestial pole by the
// current planetarium angle.
package plugin

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/astrobound/orrery/body"
	"github.com/astrobound/orrery/frame"
	"github.com/astrobound/orrery/geometry"
	"github.com/astrobound/orrery/linearmap"
	"github.com/astrobound/orrery/nbody"
	"github.com/astrobound/orrery/quantity"
)

// GUID is the opaque, ordered, hashable vessel identifier supplied by the
// host. Hosts that do not have their own identifier scheme can use NewGUID.
type GUID string

// NewGUID returns a fresh random GUID.
func NewGUID() GUID { return GUID(uuid.NewString()) }

// Index identifies a celestial body. The plugin does not interpret indices
// beyond equality; the solarsystem package's Index values are the usual
// source.
type Index int

// Ecliptic is the inertial frame the plugin integrates in; AliceSun is the
// display frame every argument and result crosses the API boundary in.
type (
	Ecliptic = frame.ICRFJ2000Ecliptic
	AliceSun = frame.AliceSun
)

// noParent marks the sun's parent slot.
const noParent Index = -1

type celestial struct {
	body    body.MassiveBody
	parent  Index
	history *body.Trajectory[Ecliptic]
}

type vessel struct {
	parent    Index
	keptAlive bool
	history   *body.Trajectory[Ecliptic]
}

// Plugin is the host-facing façade. It is not safe for concurrent use; the
// host serializes calls.
type Plugin struct {
	currentTime         geometry.Instant
	sunIndex            Index
	planetariumRotation quantity.Angle

	celestials map[Index]*celestial
	vessels    map[GUID]*vessel

	initialising bool

	// Integrator runs AdvanceTime's N-body evolution. Replaceable before
	// the first AdvanceTime call; defaults to a 10 s leapfrog.
	Integrator nbody.Integrator[Ecliptic]
}

// New creates a Plugin with the sun installed at the origin, inertially at
// rest, at initialTime. The plugin starts in its initialisation phase:
// celestials may be inserted until EndInitialisation is called.
func New(initialTime geometry.Instant, sunIndex Index, sunGravitationalParameter quantity.GravitationalParameter, planetariumRotation quantity.Angle) *Plugin {
	sun := &celestial{
		body:    body.NewMassiveBody(sunGravitationalParameter),
		parent:  noParent,
		history: body.NewTrajectory[Ecliptic](),
	}
	sun.history.Append(initialTime, body.DegreesOfFreedom[Ecliptic]{
		Position: geometry.NewPoint(geometry.NewVector[quantity.Length, Ecliptic](0, 0, 0)),
		Velocity: geometry.NewVector[quantity.Speed, Ecliptic](0, 0, 0),
	})
	return &Plugin{
		currentTime:         initialTime,
		sunIndex:            sunIndex,
		planetariumRotation: planetariumRotation,
		celestials:          map[Index]*celestial{sunIndex: sun},
		vessels:             map[GUID]*vessel{},
		initialising:        true,
		Integrator:          nbody.Leapfrog[Ecliptic]{MaxStep: quantity.Second(10)},
	}
}

// lookingGlass is the map from the inertial ecliptic frame to the display
// frame: rotate about the pole by the planetarium angle, then relabel the
// axes XZY. Its determinant is −1.
func (p *Plugin) lookingGlass() linearmap.LinearMap[Ecliptic, AliceSun] {
	rotation := linearmap.AboutZ[Ecliptic, Ecliptic](p.planetariumRotation.Radians())
	return linearmap.Compose[Ecliptic, Ecliptic, AliceSun](rotation, linearmap.XZY[Ecliptic, AliceSun]())
}

// InsertCelestial adds a celestial body during initialisation, given its
// state relative to an already-inserted parent, expressed in the display
// frame. It panics if initialisation has ended, if the index is already
// present, or if the parent is not.
func (p *Plugin) InsertCelestial(index Index, gravitationalParameter quantity.GravitationalParameter, parentIndex Index, fromParentPosition geometry.Displacement[AliceSun], fromParentVelocity geometry.Velocity[AliceSun]) {
	if !p.initialising {
		panic("plugin: InsertCelestial called after EndInitialisation")
	}
	if _, ok := p.celestials[index]; ok {
		panic(fmt.Sprintf("plugin: celestial %d already inserted", index))
	}
	parent, ok := p.celestials[parentIndex]
	if !ok {
		panic(fmt.Sprintf("plugin: no celestial with index %d to parent %d", parentIndex, index))
	}

	inverse := p.lookingGlass().Inverse()
	displacement := linearmap.ApplyVector(inverse, fromParentPosition)
	velocity := linearmap.ApplyVector(inverse, fromParentVelocity)

	c := &celestial{
		body:    body.NewMassiveBody(gravitationalParameter),
		parent:  parentIndex,
		history: body.NewTrajectory[Ecliptic](),
	}
	c.history.Append(p.currentTime, body.DegreesOfFreedom[Ecliptic]{
		Position: geometry.Add(parent.history.LastPosition(), displacement),
		Velocity: parent.history.LastVelocity().Add(velocity),
	})
	p.celestials[index] = c
}

// EndInitialisation seals the celestial set. Further celestial insertions
// panic; vessel operations become legal.
func (p *Plugin) EndInitialisation() {
	if !p.initialising {
		panic("plugin: EndInitialisation called twice")
	}
	p.initialising = false
}

// InsertOrKeepVessel inserts a vessel with the given parent, or, if the
// GUID is already known, marks the existing vessel as still alive for the
// current step and updates its parent. It reports whether a new vessel was
// created; a new vessel has no state until SetVesselStateOffset is called.
func (p *Plugin) InsertOrKeepVessel(guid GUID, parentIndex Index) bool {
	p.mustBeInitialised("InsertOrKeepVessel")
	if _, ok := p.celestials[parentIndex]; !ok {
		panic(fmt.Sprintf("plugin: no celestial with index %d to parent vessel %q", parentIndex, guid))
	}
	if v, ok := p.vessels[guid]; ok {
		v.keptAlive = true
		v.parent = parentIndex
		return false
	}
	p.vessels[guid] = &vessel{
		parent:    parentIndex,
		keptAlive: true,
		history:   body.NewTrajectory[Ecliptic](),
	}
	return true
}

// SetVesselStateOffset attaches the initial state to a just-inserted
// vessel, relative to its parent, in the display frame. It panics on an
// unknown GUID or on a vessel that already has a state.
func (p *Plugin) SetVesselStateOffset(guid GUID, fromParentPosition geometry.Displacement[AliceSun], fromParentVelocity geometry.Velocity[AliceSun]) {
	p.mustBeInitialised("SetVesselStateOffset")
	v, ok := p.vessels[guid]
	if !ok {
		panic(fmt.Sprintf("plugin: no vessel with GUID %q", guid))
	}
	if !v.history.Empty() {
		panic(fmt.Sprintf("plugin: vessel %q already has a state", guid))
	}
	parent := p.celestials[v.parent]

	inverse := p.lookingGlass().Inverse()
	displacement := linearmap.ApplyVector(inverse, fromParentPosition)
	velocity := linearmap.ApplyVector(inverse, fromParentVelocity)

	v.history.Append(p.currentTime, body.DegreesOfFreedom[Ecliptic]{
		Position: geometry.Add(parent.history.LastPosition(), displacement),
		Velocity: parent.history.LastVelocity().Add(velocity),
	})
}

// AdvanceTime runs the N-body integration forward to t, garbage-collects
// the vessels that were not re-inserted since the last step, and sets the
// planetarium rotation. t must be strictly after the current time; every
// surviving vessel must have been given a state.
func (p *Plugin) AdvanceTime(t geometry.Instant, planetariumRotation quantity.Angle) {
	p.mustBeInitialised("AdvanceTime")
	if geometry.Sub(t, p.currentTime).Seconds() <= 0 {
		panic("plugin: AdvanceTime called with a non-increasing instant")
	}

	for guid, v := range p.vessels {
		if !v.keptAlive {
			delete(p.vessels, guid)
			continue
		}
		if v.history.Empty() {
			panic(fmt.Sprintf("plugin: vessel %q has no state at AdvanceTime", guid))
		}
	}

	bodies, trajectories := p.integrands()
	p.Integrator.Integrate(bodies, trajectories, t)

	for _, v := range p.vessels {
		v.keptAlive = false
	}
	p.currentTime = t
	p.planetariumRotation = planetariumRotation
}

// integrands gathers every celestial and vessel into the parallel slices
// the Integrator contract takes, celestials first. Iteration is in sorted
// index/GUID order so that the force summation order, and therefore the
// integrated state, is identical across runs.
func (p *Plugin) integrands() ([]body.Body, []*body.Trajectory[Ecliptic]) {
	indices := make([]Index, 0, len(p.celestials))
	for index := range p.celestials {
		indices = append(indices, index)
	}
	slices.Sort(indices)
	guids := make([]GUID, 0, len(p.vessels))
	for guid := range p.vessels {
		guids = append(guids, guid)
	}
	slices.Sort(guids)

	var bodies []body.Body
	var trajectories []*body.Trajectory[Ecliptic]
	for _, index := range indices {
		c := p.celestials[index]
		bodies = append(bodies, c.body.Body())
		trajectories = append(trajectories, c.history)
	}
	for _, guid := range guids {
		bodies = append(bodies, body.Body{})
		trajectories = append(trajectories, p.vessels[guid].history)
	}
	return bodies, trajectories
}

// CelestialDisplacementFromParent returns the celestial's displacement from
// its parent, in the display frame.
func (p *Plugin) CelestialDisplacementFromParent(index Index) geometry.Displacement[AliceSun] {
	c := p.mustCelestial(index)
	parent := p.mustParent(c, index)
	relative := geometry.Sub(c.history.LastPosition(), parent.history.LastPosition())
	return linearmap.ApplyVector(p.lookingGlass(), relative)
}

// CelestialParentRelativeVelocity returns the celestial's velocity relative
// to its parent, in the display frame.
func (p *Plugin) CelestialParentRelativeVelocity(index Index) geometry.Velocity[AliceSun] {
	c := p.mustCelestial(index)
	parent := p.mustParent(c, index)
	relative := c.history.LastVelocity().Sub(parent.history.LastVelocity())
	return linearmap.ApplyVector(p.lookingGlass(), relative)
}

// VesselDisplacementFromParent returns the vessel's displacement from its
// parent celestial, in the display frame.
func (p *Plugin) VesselDisplacementFromParent(guid GUID) geometry.Displacement[AliceSun] {
	v := p.mustVessel(guid)
	parent := p.celestials[v.parent]
	relative := geometry.Sub(v.history.LastPosition(), parent.history.LastPosition())
	return linearmap.ApplyVector(p.lookingGlass(), relative)
}

// VesselParentRelativeVelocity returns the vessel's velocity relative to
// its parent celestial, in the display frame.
func (p *Plugin) VesselParentRelativeVelocity(guid GUID) geometry.Velocity[AliceSun] {
	v := p.mustVessel(guid)
	parent := p.celestials[v.parent]
	relative := v.history.LastVelocity().Sub(parent.history.LastVelocity())
	return linearmap.ApplyVector(p.lookingGlass(), relative)
}

// CurrentTime returns the instant the plugin's state is at.
func (p *Plugin) CurrentTime() geometry.Instant { return p.currentTime }

// PlanetariumRotation returns the current display-frame rotation angle.
func (p *Plugin) PlanetariumRotation() quantity.Angle { return p.planetariumRotation }

func (p *Plugin) mustBeInitialised(op string) {
	if p.initialising {
		panic(fmt.Sprintf("plugin: %s called before EndInitialisation", op))
	}
}

func (p *Plugin) mustCelestial(index Index) *celestial {
	c, ok := p.celestials[index]
	if !ok {
		panic(fmt.Sprintf("plugin: no celestial with index %d", index))
	}
	return c
}

func (p *Plugin) mustParent(c *celestial, index Index) *celestial {
	if c.parent == noParent {
		panic(fmt.Sprintf("plugin: celestial %d is the sun and has no parent", index))
	}
	return p.celestials[c.parent]
}

func (p *Plugin) mustVessel(guid GUID) *vessel {
	v, ok := p.vessels[guid]
	if !ok {
		panic(fmt.Sprintf("plugin: no vessel with GUID %q", guid))
	}
	if v.history.Empty() {
		panic(fmt.Sprintf("plugin: vessel %q has no state yet", guid))
	}
	return v
}
