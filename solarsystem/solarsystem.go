// Package solarsystem is the canonical initial-condition bundle: the
// eighteen massive bodies of the Sun–planet–moon hierarchy with their
// gravitational parameters, and, for the Sputnik-launch epoch, one-sample
// trajectories holding their barycentric ecliptic state vectors.
//
// All numeric data is from the Jet Propulsion Laboratory's HORIZONS system
// unless otherwise noted, and is part of this package's contract down to the
// last printed digit.
package solarsystem

import (
	"fmt"

	"github.com/astrobound/orrery/body"
	"github.com/astrobound/orrery/frame"
	"github.com/astrobound/orrery/geometry"
	"github.com/astrobound/orrery/quantity"
)

// Index identifies one of the eighteen bodies. The set is closed; Parent is
// total on it.
type Index int

const (
	Sun Index = iota
	Jupiter
	Saturn
	Neptune
	Uranus
	Earth
	Venus
	Mars
	Mercury
	Ganymede
	Titan
	Callisto
	Io
	Moon
	Europa
	Triton
	Eris
	Pluto

	// BodyCount is the number of bodies in the closed index set.
	BodyCount = int(Pluto) + 1
)

// SputnikLaunchDate is the Julian date of the launch of Простейший
// Спутник-1, the epoch of the AtSputnikLaunch state vectors.
const SputnikLaunchDate = 2436116.3115

// Ecliptic is the frame every state vector in this package is expressed in.
type Ecliptic = frame.ICRFJ2000Ecliptic

// SolarSystem holds the body set and, if constructed by AtSputnikLaunch,
// a parallel set of one-sample trajectories at the epoch.
type SolarSystem struct {
	massiveBodies  []body.MassiveBody
	masslessBodies []body.Body
	trajectories   []*body.Trajectory[Ecliptic]

	massiveTaken  bool
	masslessTaken bool
}

// New returns the eighteen bodies in canonical Index order, with no
// trajectories attached.
func New() *SolarSystem {
	mus := []quantity.GravitationalParameter{
		// Star.
		Sun: quantity.Km3PerS2(1.3271244004193938e+11),

		// Gas giants.
		Jupiter: quantity.Km3PerS2(126686511),
		Saturn:  quantity.Km3PerS2(37931207.8),
		Neptune: quantity.Km3PerS2(6835107),
		Uranus:  quantity.Km3PerS2(5793966),

		// Telluric planets.
		Earth:   quantity.Km3PerS2(398600.440),
		Venus:   quantity.Km3PerS2(324858.63),
		Mars:    quantity.Km3PerS2(42828.3),
		Mercury: quantity.Km3PerS2(22032.09),

		// Moons. HORIZONS gives masses rather than μ for most of these.
		Ganymede: quantity.MuFromMass(quantity.Kilogram(1482e20)),
		Titan:    quantity.Km3PerS2(8978.13),
		Callisto: quantity.MuFromMass(quantity.Kilogram(1076e20)),
		Io:       quantity.MuFromMass(quantity.Kilogram(893.3e20)),
		Moon:     quantity.Km3PerS2(4902.798),
		Europa:   quantity.MuFromMass(quantity.Kilogram(479.7e20)),
		Triton:   quantity.MuFromMass(quantity.Kilogram(214.7e20)),

		// Dwarf planet (scattered disc object). Mass from Brown, Michael E.;
		// Schaller, Emily L. (15 June 2007). "The Mass of Dwarf Planet Eris",
		// in Science, through Wikipedia.
		Eris: quantity.MuFromMass(quantity.Kilogram(1.67e22)),

		// Dwarf planet (Kuiper belt object).
		Pluto: quantity.MuFromMass(quantity.Kilogram(1.307e22)),
	}

	s := &SolarSystem{}
	for _, mu := range mus {
		s.massiveBodies = append(s.massiveBodies, body.NewMassiveBody(mu))
	}
	return s
}

// AtSputnikLaunch returns the eighteen bodies together with one-sample
// trajectories at JD 2436116.3115 (1957-10-04 19:28:34 TT), each sample a
// barycentric ecliptic position and velocity.
func AtSputnikLaunch() *SolarSystem {
	epoch := geometry.JulianDate(SputnikLaunchDate)

	type state struct {
		x, y, z    float64 // km
		vx, vy, vz float64 // km/s
	}
	states := []state{
		// Star.
		Sun: {
			1.138350928138014e+06, 6.177753685036716e+05, -3.770941657504326e+04,
			-5.067456621846211e-03, 1.259599196445122e-02, 9.778588606052481e-05},

		// Gas giants.
		Jupiter: {
			-7.950209667306620e+08, -1.784285526424396e+08, 1.853825132237791e+07,
			2.709330231918198e+00, -1.213073724288562e+01, -1.088748435062713e-02},
		Saturn: {
			-3.774715321901159e+08, -1.451892263379818e+09, 4.040621083792380e+07,
			8.817029873536633e+00, -2.466058486223613e+00, -3.068419809533604e-01},
		Neptune: {
			-3.810689792831146e+09, -2.456423858579051e+09, 1.383694320077938e+08,
			2.913267720085410e+00, -4.535247383721019e+00, 2.589759251085161e-02},
		Uranus: {
			-1.729995609344851e+09, 2.159967050539728e+09, 3.048735047038063e+07,
			-5.366539669972795e+00, -4.575802196749351e+00, 5.261322980347850e-02},

		// Telluric planets.
		Earth: {
			1.475150112055673e+08, 3.144435102288270e+07, -3.391764309344300e+04,
			-6.635753510543799e+00, 2.904321639216012e+01, 3.125252418990812e-03},
		Venus: {
			6.084974577091119e+07, -9.037413730207849e+07, -4.719158908401959e+06,
			2.903958257174759e+01, 1.910383147602264e+01, -1.418780340302349e+00},
		Mars: {
			-2.440047184660406e+08, -2.002994580992744e+07, 5.577600092368793e+06,
			2.940381268511949e+00, -2.206625841382794e+01, -5.348179460834037e-01},
		Mercury: {
			-3.013851560892715e+07, 3.823388939456400e+07, 5.907240907643730e+06,
			-4.731017449071709e+01, -2.918747853895398e+01, 1.963450229872517e+00},

		// Moons.
		Ganymede: {
			-7.942681422941415e+08, -1.776681035234876e+08, 1.857215495334835e+07,
			-5.026319376504355e+00, -4.481735740234995e+00, 1.326192167761359e-01},
		Titan: {
			-3.771930512714775e+08, -1.452931696594699e+09, 4.091643033375849e+07,
			1.433381483669744e+01, -1.422590492527597e+00, -1.375826555026097e+00},
		Callisto: {
			-7.951805452047400e+08, -1.802957437059298e+08, 1.847154088070625e+07,
			1.091928199422218e+01, -1.278098875182818e+01, 5.878649120351949e-02},
		Io: {
			-7.946073188298367e+08, -1.783491436977172e+08, 1.854699192614355e+07,
			-5.049684272040893e-01, 4.916473261567652e+00, 5.469177855959977e-01},
		Moon: {
			1.478545271460863e+08, 3.122566749814625e+07, 1.500491219719345e+03,
			-6.099833968412930e+00, 2.985006033154299e+01, -1.952438319420470e-02},
		Europa: {
			-7.944180333947762e+08, -1.787346439588362e+08, 1.853675837527557e+07,
			8.811255547505889e+00, 5.018147960240774e-02, 6.162195631257494e-01},
		Triton: {
			-3.810797098554279e+09, -2.456691608348630e+09, 1.381629136719314e+08,
			-1.047462448797063e+00, -4.404556713303486e+00, 1.914469843538767e+00},

		// Dwarf planets.
		Eris: {
			1.317390066862979e+10, 2.221403321600002e+09, -5.736076877456254e+09,
			4.161883594267296e-01, 1.872714752602233e+00, 1.227093842948539e+00},
		Pluto: {
			-4.406985590968750e+09, 2.448731153209013e+09, 1.012525975599311e+09,
			-1.319871918266467e+00, -5.172112237151897e+00, 9.407707128142039e-01},
	}

	s := New()
	for _, st := range states {
		tr := body.NewTrajectory[Ecliptic]()
		tr.Append(epoch, body.DegreesOfFreedom[Ecliptic]{
			Position: geometry.NewPoint(geometry.NewVector[quantity.Length, Ecliptic](
				quantity.Kilo(st.x), quantity.Kilo(st.y), quantity.Kilo(st.z))),
			Velocity: geometry.NewVector[quantity.Speed, Ecliptic](
				quantity.KilometresPerSecond(st.vx),
				quantity.KilometresPerSecond(st.vy),
				quantity.KilometresPerSecond(st.vz)),
		})
		s.trajectories = append(s.trajectories, tr)
	}
	return s
}

// MassiveBodies transfers ownership of the massive-body set to the caller.
// It is a one-shot take: a second call panics. The take does not affect the
// fixture's trajectories, which stay readable through Trajectories.
func (s *SolarSystem) MassiveBodies() []body.MassiveBody {
	if s.massiveTaken {
		panic("solarsystem: MassiveBodies already taken")
	}
	s.massiveTaken = true
	return s.massiveBodies
}

// MasslessBodies transfers ownership of the massless-body set (empty for
// this fixture, present for symmetry with MassiveBodies). One-shot, like
// MassiveBodies.
func (s *SolarSystem) MasslessBodies() []body.Body {
	if s.masslessTaken {
		panic("solarsystem: MasslessBodies already taken")
	}
	s.masslessTaken = true
	return s.masslessBodies
}

// Trajectories returns the fixture's trajectories, in Index order, without
// transferring ownership. The pointers remain valid after MassiveBodies has
// been taken; the fixture itself must be kept alive while they are used.
func (s *SolarSystem) Trajectories() []*body.Trajectory[Ecliptic] {
	out := make([]*body.Trajectory[Ecliptic], len(s.trajectories))
	copy(out, s.trajectories)
	return out
}

// Parent returns the index of the body the given one orbits. It panics on
// the Sun, which has no parent, and on any index outside the closed set.
func Parent(index Index) Index {
	switch index {
	case Sun:
		panic("solarsystem: the Sun has no parent")
	case Jupiter, Saturn, Neptune, Uranus,
		Earth, Venus, Mars, Mercury,
		Eris, Pluto:
		return Sun
	case Ganymede, Callisto, Io, Europa:
		return Jupiter
	case Titan:
		return Saturn
	case Moon:
		return Earth
	case Triton:
		return Neptune
	default:
		panic(fmt.Sprintf("solarsystem: undefined index %d", index))
	}
}
