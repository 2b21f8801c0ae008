package plugin

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrobound/orrery/body"
	"github.com/astrobound/orrery/geometry"
	"github.com/astrobound/orrery/linearmap"
	"github.com/astrobound/orrery/quantity"
	"github.com/astrobound/orrery/solarsystem"
)

// fixture mirrors the host's start-up sequence: build the Sputnik-launch
// solar system, create the plugin with the Sun installed, and hold on to
// the looking glass the host uses to express states in its display frame.
type fixture struct {
	lookingGlass linearmap.LinearMap[Ecliptic, AliceSun]
	solarSystem  *solarsystem.SolarSystem
	bodies       []body.MassiveBody
	initialTime  geometry.Instant
	plugin       *Plugin
}

const planetariumRotation = quantity.Angle(1)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := solarsystem.AtSputnikLaunch()
	bodies := s.MassiveBodies()
	initialTime := s.Trajectories()[solarsystem.Sun].LastTime()

	f := &fixture{
		solarSystem: s,
		bodies:      bodies,
		initialTime: initialTime,
		plugin: New(initialTime, Index(solarsystem.Sun),
			bodies[solarsystem.Sun].Mu(), planetariumRotation),
	}
	// The host's transform into the display frame must match the plugin's:
	// pole rotation by the planetarium angle, then the XZY relabeling.
	f.lookingGlass = linearmap.Compose[Ecliptic, Ecliptic, AliceSun](
		linearmap.AboutZ[Ecliptic, Ecliptic](planetariumRotation.Radians()),
		linearmap.XZY[Ecliptic, AliceSun]())
	return f
}

// insertAllSolarSystemBodies feeds every non-Sun body to the plugin, with
// its state relative to its parent expressed in the display frame.
func (f *fixture) insertAllSolarSystemBodies() {
	trajectories := f.solarSystem.Trajectories()
	for i := int(solarsystem.Sun) + 1; i < len(f.bodies); i++ {
		index := solarsystem.Index(i)
		parent := solarsystem.Parent(index)
		fromParentPosition := linearmap.ApplyVector(f.lookingGlass,
			geometry.Sub(trajectories[index].LastPosition(), trajectories[parent].LastPosition()))
		fromParentVelocity := linearmap.ApplyVector(f.lookingGlass,
			trajectories[index].LastVelocity().Sub(trajectories[parent].LastVelocity()))
		f.plugin.InsertCelestial(Index(index), f.bodies[index].Mu(), Index(parent),
			fromParentPosition, fromParentVelocity)
	}
}

// ulp returns the distance from |x| to the next larger float64.
func ulp(x float64) float64 {
	x = math.Abs(x)
	return math.Nextafter(x, math.Inf(1)) - x
}

// vecsWithinULP asserts componentwise agreement within ulps of the largest
// component's magnitude: a full state transform smears a coordinate's error
// across the other coordinates, so a small component cannot be held to ULPs
// of itself.
func vecsWithinULP(t *testing.T, wantX, wantY, wantZ, gotX, gotY, gotZ float64, ulps float64, context string) {
	t.Helper()
	scale := math.Max(math.Max(math.Abs(wantX), math.Abs(wantY)), math.Abs(wantZ))
	tolerance := ulps * ulp(scale)
	assert.InDelta(t, wantX, gotX, tolerance, "%s x", context)
	assert.InDelta(t, wantY, gotY, tolerance, "%s y", context)
	assert.InDelta(t, wantZ, gotZ, tolerance, "%s z", context)
}

func TestPlugin_Initialisation(t *testing.T) {
	// The solar-system round trip: for every non-Sun body, the queried
	// displacement and velocity, pulled back through the inverse looking
	// glass, reproduce the ecliptic relative state.
	f := newFixture(t)
	f.insertAllSolarSystemBodies()
	f.plugin.EndInitialisation()

	inverse := f.lookingGlass.Inverse()
	trajectories := f.solarSystem.Trajectories()
	for i := int(solarsystem.Sun) + 1; i < len(f.bodies); i++ {
		index := solarsystem.Index(i)
		parent := solarsystem.Parent(index)

		wantD := geometry.Sub(trajectories[index].LastPosition(), trajectories[parent].LastPosition())
		gotD := linearmap.ApplyVector(inverse, f.plugin.CelestialDisplacementFromParent(Index(index)))
		vecsWithinULP(t,
			wantD.Coordinates.X.Metres(), wantD.Coordinates.Y.Metres(), wantD.Coordinates.Z.Metres(),
			gotD.Coordinates.X.Metres(), gotD.Coordinates.Y.Metres(), gotD.Coordinates.Z.Metres(),
			250000, "displacement")

		wantV := trajectories[index].LastVelocity().Sub(trajectories[parent].LastVelocity())
		gotV := linearmap.ApplyVector(inverse, f.plugin.CelestialParentRelativeVelocity(Index(index)))
		vecsWithinULP(t,
			wantV.Coordinates.X.MetresPerSecond(), wantV.Coordinates.Y.MetresPerSecond(), wantV.Coordinates.Z.MetresPerSecond(),
			gotV.Coordinates.X.MetresPerSecond(), gotV.Coordinates.Y.MetresPerSecond(), gotV.Coordinates.Z.MetresPerSecond(),
			1000, "velocity")
	}
}

func TestPlugin_VesselInsertion(t *testing.T) {
	guid := GUID("Test Satellite")
	f := newFixture(t)
	f.insertAllSolarSystemBodies()
	f.plugin.EndInitialisation()

	inserted := f.plugin.InsertOrKeepVessel(guid, Index(solarsystem.Earth))
	require.True(t, inserted)

	displacement := geometry.NewVector[quantity.Length, AliceSun](
		quantity.Kilo(3111), quantity.Kilo(4400), quantity.Kilo(3810))

	// A tangent built from the displacement and an arbitrary bivector is
	// orthogonal to it; scaling by √(μ/|d|) makes the orbit circular.
	tangent := geometry.Cross[quantity.Length, float64, quantity.Length](
		displacement, geometry.NewBivector[float64, AliceSun](1, 2, 3))
	unitTangent := tangent.Scale(1 / tangent.Norm())
	require.Zero(t, float64(geometry.InnerProduct[quantity.Length, quantity.Length, quantity.Area](
		unitTangent, displacement.Scale(1/displacement.Norm()))))

	// This yields a circular orbit.
	speed := math.Sqrt(f.bodies[solarsystem.Earth].Mu().Value() / displacement.Norm())
	velocity := geometry.NewVector[quantity.Speed, AliceSun](
		quantity.Speed(speed*float64(unitTangent.Coordinates.X)),
		quantity.Speed(speed*float64(unitTangent.Coordinates.Y)),
		quantity.Speed(speed*float64(unitTangent.Coordinates.Z)))

	f.plugin.SetVesselStateOffset(guid, displacement, velocity)

	gotD := f.plugin.VesselDisplacementFromParent(guid)
	assert.Less(t, gotD.Sub(displacement).Norm(), 0x1p-52*quantity.AstronomicalUnit,
		"vessel displacement error exceeds DBL_EPSILON · AU")

	gotV := f.plugin.VesselParentRelativeVelocity(guid)
	vecsWithinULP(t,
		velocity.Coordinates.X.MetresPerSecond(), velocity.Coordinates.Y.MetresPerSecond(), velocity.Coordinates.Z.MetresPerSecond(),
		gotV.Coordinates.X.MetresPerSecond(), gotV.Coordinates.Y.MetresPerSecond(), gotV.Coordinates.Z.MetresPerSecond(),
		32, "vessel velocity")
}

func TestPlugin_InsertOrKeepVessel_Keeps(t *testing.T) {
	f := newFixture(t)
	f.insertAllSolarSystemBodies()
	f.plugin.EndInitialisation()

	guid := GUID("Kerbal I")
	require.True(t, f.plugin.InsertOrKeepVessel(guid, Index(solarsystem.Earth)))
	assert.False(t, f.plugin.InsertOrKeepVessel(guid, Index(solarsystem.Earth)))
}

func TestPlugin_AdvanceTime(t *testing.T) {
	f := newFixture(t)
	f.insertAllSolarSystemBodies()
	f.plugin.EndInitialisation()

	guid := GUID("Test Satellite")
	require.True(t, f.plugin.InsertOrKeepVessel(guid, Index(solarsystem.Earth)))
	displacement := geometry.NewVector[quantity.Length, AliceSun](
		quantity.Kilo(3111), quantity.Kilo(4400), quantity.Kilo(3810))
	velocity := geometry.NewVector[quantity.Speed, AliceSun](
		quantity.KilometresPerSecond(5), 0, 0)
	f.plugin.SetVesselStateOffset(guid, displacement, velocity)

	newRotation := quantity.Angle(1.5)
	later := geometry.Add(f.initialTime, quantity.Second(60))
	f.plugin.AdvanceTime(later, newRotation)

	assert.Zero(t, geometry.Sub(f.plugin.CurrentTime(), later).Seconds())
	assert.Equal(t, newRotation, f.plugin.PlanetariumRotation())

	// The kept vessel is still queryable and has moved relative to Earth.
	moved := f.plugin.VesselDisplacementFromParent(guid).Sub(displacement).Norm()
	assert.Greater(t, moved, 0.0)

	// A vessel not re-inserted before the next step is garbage-collected.
	f.plugin.AdvanceTime(geometry.Add(later, quantity.Second(60)), newRotation)
	assert.Panics(t, func() { f.plugin.VesselDisplacementFromParent(guid) })
}

func TestPlugin_LifecyclePreconditions(t *testing.T) {
	f := newFixture(t)

	d := geometry.NewVector[quantity.Length, AliceSun](quantity.Kilo(1), 0, 0)
	v := geometry.NewVector[quantity.Speed, AliceSun](0, 0, 0)
	earthMu := f.bodies[solarsystem.Earth].Mu()

	// Unknown parent is fatal.
	assert.Panics(t, func() {
		f.plugin.InsertCelestial(Index(solarsystem.Earth), earthMu, 999, d, v)
	})
	// Duplicate index is fatal.
	f.plugin.InsertCelestial(Index(solarsystem.Earth), earthMu, Index(solarsystem.Sun), d, v)
	assert.Panics(t, func() {
		f.plugin.InsertCelestial(Index(solarsystem.Earth), earthMu, Index(solarsystem.Sun), d, v)
	})

	// Vessel operations are illegal while initialising.
	assert.Panics(t, func() { f.plugin.InsertOrKeepVessel("early", Index(solarsystem.Earth)) })

	f.plugin.EndInitialisation()

	// Celestial insertion after sealing is fatal; so is sealing twice.
	assert.Panics(t, func() {
		f.plugin.InsertCelestial(Index(solarsystem.Venus), earthMu, Index(solarsystem.Sun), d, v)
	})
	assert.Panics(t, func() { f.plugin.EndInitialisation() })

	// Unknown GUIDs and unknown celestial indices fail loudly.
	assert.Panics(t, func() { f.plugin.SetVesselStateOffset("ghost", d, v) })
	assert.Panics(t, func() { f.plugin.VesselDisplacementFromParent("ghost") })
	assert.Panics(t, func() { f.plugin.CelestialDisplacementFromParent(999) })
	// The sun has no parent to be relative to.
	assert.Panics(t, func() { f.plugin.CelestialDisplacementFromParent(Index(solarsystem.Sun)) })

	// A vessel that was inserted but never given a state cannot be queried
	// or integrated.
	require.True(t, f.plugin.InsertOrKeepVessel("stateless", Index(solarsystem.Earth)))
	assert.Panics(t, func() { f.plugin.VesselDisplacementFromParent("stateless") })
	assert.Panics(t, func() {
		f.plugin.AdvanceTime(geometry.Add(f.initialTime, quantity.Second(1)), planetariumRotation)
	})
}

func TestNewGUID_Unique(t *testing.T) {
	assert.NotEqual(t, NewGUID(), NewGUID())
}
