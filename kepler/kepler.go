// Package kepler converts between Keplerian orbital elements and Cartesian
// state vectors for a two-body problem, over an inertial, frame-tagged
// primary/secondary pair.
//
// The propagation core (Newton-Raphson solution of Kepler's equation, then
// rotation of the perifocal position/velocity into the orbit's inertial
// frame) is grounded in the teacher's solveElliptic/solveHyperbolic and
// PQW→ecliptic rotation matrix (perifocalToInertialRotation below). The state-vector→elements direction is
// grounded in elements/elements.go's FromStateVector (the eccentricity-
// vector/node-vector construction and its Kahan-stable angleBetween helper).
// Unlike the teacher, which treats e == 1 as a third, supported conic
// (Barker's equation), this package classifies a parabolic orbit as a
// degenerate conic — see DESIGN.md.
package kepler

import (
	"fmt"
	"math"

	"github.com/astrobound/orrery/body"
	"github.com/astrobound/orrery/frame"
	"github.com/astrobound/orrery/geometry"
	"github.com/astrobound/orrery/quantity"
	"github.com/astrobound/orrery/r3"
)

// KeplerianElements is the over-determined configuration record: exactly
// one size element and exactly one epoch-position element must be supplied
// at construction; every other optional slot is filled in by KeplerOrbit
// and is safe to read afterwards (NaN on the conic type it does not apply
// to, never a Go nil).
type KeplerianElements[F frame.Frame] struct {
	// Eccentricity is always required: e < 1 elliptic, e > 1 hyperbolic.
	// e == 1 (parabolic) is a degenerate conic, see KeplerOrbit construction.
	Eccentricity float64

	// Exactly one of the following seven fixes the conic's size.
	SemimajorAxis           *quantity.Length
	SemiminorAxis           *quantity.Length
	SemilatusRectum         *quantity.Length
	PeriapsisDistance       *quantity.Length
	SpecificEnergy          *quantity.SpecificEnergy
	CharacteristicEnergy    *quantity.SpecificEnergy
	SpecificAngularMomentum *quantity.SpecificAngularMomentum

	// MeanMotion and Period are elliptic-only; NaN on a hyperbolic orbit.
	MeanMotion *quantity.AngularFrequency
	Period     *quantity.Time

	// The following four are hyperbolic-only; NaN on an elliptic orbit.
	HyperbolicMeanMotion     *quantity.AngularFrequency
	HyperbolicExcessVelocity *quantity.Speed
	AsymptoticTrueAnomaly    *quantity.Angle
	TurningAngle             *quantity.Angle

	// Orientation, always required.
	Inclination              quantity.Angle
	LongitudeOfAscendingNode quantity.Angle
	ArgumentOfPeriapsis      quantity.Angle

	// Exactly one of the following four fixes the epoch position on the
	// conic. MeanAnomaly is only valid input on an elliptic orbit;
	// HyperbolicMeanAnomaly only on a hyperbolic one.
	TrueAnomaly           *quantity.Angle
	MeanAnomaly           *quantity.Angle
	HyperbolicMeanAnomaly *quantity.Angle
	TimeSincePeriapsis    *quantity.Time
}

// KeplerOrbit is an immutable two-body orbit: the primary+secondary's
// combined gravitational parameter, the completed element record, and the
// epoch it was computed at.
type KeplerOrbit[F frame.Frame] struct {
	mu       quantity.GravitationalParameter
	elements KeplerianElements[F]
	epoch    geometry.Instant
}

func mustInertial[F frame.Frame]() {
	var zero F
	if !any(zero).(frame.Frame).IsInertial() {
		panic("kepler: KeplerOrbit requires an inertial Frame")
	}
}

// NewKeplerOrbitFromElements validates elements (exactly one size element,
// exactly one epoch-position element, no degenerate conic), completes the
// record, and returns the resulting KeplerOrbit. It panics on any violated
// precondition: under/over-determined elements, a parabolic or otherwise
// degenerate conic, or a non-inertial Frame.
func NewKeplerOrbitFromElements[F frame.Frame](primary body.MassiveBody, secondary body.Body, elements KeplerianElements[F], epoch geometry.Instant) *KeplerOrbit[F] {
	mustInertial[F]()
	mu := quantity.GravitationalParameter(primary.Mu().Value() + secondary.Mu.Value())

	e := elements.Eccentricity
	if e == 1 {
		panic("kepler: degenerate conic (eccentricity == 1, parabolic orbits are unsupported)")
	}

	a := semimajorAxisFromSizeElement(elements, e, mu)
	p := a * (1 - e*e)
	if p <= 0 {
		panic("kepler: degenerate conic (non-positive semi-latus rectum)")
	}

	n := math.Sqrt(mu.Value() / math.Abs(a*a*a))

	nu0 := trueAnomalyFromEpochElement(elements, e, n)

	return buildKeplerOrbit[F](mu, e, a, n,
		elements.Inclination, elements.LongitudeOfAscendingNode, elements.ArgumentOfPeriapsis,
		nu0, epoch)
}

// NewKeplerOrbitFromStateVectors computes the osculating elements of rel at
// epoch and returns the resulting KeplerOrbit. The construction is grounded
// in elements.FromStateVector: specific angular momentum h = r×v,
// eccentricity vector e = (v×h)/μ − r/|r|, node vector n = ẑ×h, and the
// standard four-quadrant reconstructions of inclination, longitude of the
// ascending node, argument of periapsis and true anomaly from them.
func NewKeplerOrbitFromStateVectors[F frame.Frame](primary body.MassiveBody, secondary body.Body, rel body.RelativeDegreesOfFreedom[F], epoch geometry.Instant) *KeplerOrbit[F] {
	mustInertial[F]()
	mu := quantity.GravitationalParameter(primary.Mu().Value() + secondary.Mu.Value())
	muValue := mu.Value()

	r := r3.Float64(rel.Displacement.Coordinates)
	v := r3.Float64(rel.Velocity.Coordinates)

	rMag := r3.Norm(r)
	vMag := r3.Norm(v)
	if rMag == 0 {
		panic("kepler: NewKeplerOrbitFromStateVectors called with a zero displacement")
	}

	hVec := r3.Cross(r, v)
	h := r3.Norm(hVec)
	if h == 0 {
		panic("kepler: degenerate conic (zero specific angular momentum)")
	}

	rdv := r3.Dot(r, v)
	factor := vMag*vMag - muValue/rMag
	eVec := r3.Vec[float64]{
		X: (factor*r.X - rdv*v.X) / muValue,
		Y: (factor*r.Y - rdv*v.Y) / muValue,
		Z: (factor*r.Z - rdv*v.Z) / muValue,
	}
	e := r3.Norm(eVec)
	if e == 1 {
		panic("kepler: degenerate conic (eccentricity == 1, parabolic orbits are unsupported)")
	}

	nVec := r3.Vec[float64]{X: -hVec.Y, Y: hVec.X, Z: 0}
	nMag := r3.Norm(nVec)

	inc := math.Acos(clamp(hVec.Z/h, -1, 1))

	var lan float64
	if nMag > 1e-15 {
		lan = math.Atan2(hVec.X, -hVec.Y)
		if lan < 0 {
			lan += 2 * math.Pi
		}
	}

	argPeriapsis := argumentOfPeriapsisFromVectors(eVec, e, nVec, nMag, r, v)
	nu0 := trueAnomalyFromVectors(eVec, e, nVec, nMag, r, v, rMag, rdv)

	p := h * h / muValue
	a := p / (1 - e*e)
	n := math.Sqrt(muValue / math.Abs(a*a*a))

	return buildKeplerOrbit[F](mu, e, a, n,
		quantity.Radian(inc), quantity.Radian(lan), quantity.Radian(argPeriapsis),
		nu0, epoch)
}

// buildKeplerOrbit fills in every derived field of KeplerianElements from
// the minimal (e, a, n, orientation, nu0) description shared by both
// constructors.
func buildKeplerOrbit[F frame.Frame](mu quantity.GravitationalParameter, e, a, n float64, inclination, lan, argPeriapsis quantity.Angle, nu0 float64, epoch geometry.Instant) *KeplerOrbit[F] {
	p := a * (1 - e*e)

	elements := KeplerianElements[F]{
		Eccentricity:             e,
		Inclination:              inclination,
		LongitudeOfAscendingNode: lan,
		ArgumentOfPeriapsis:      argPeriapsis,
	}

	semimajorAxis := quantity.Metre(a)
	elements.SemimajorAxis = &semimajorAxis
	semilatusRectum := quantity.Metre(p)
	elements.SemilatusRectum = &semilatusRectum
	periapsisDistance := quantity.Metre(a * (1 - e))
	elements.PeriapsisDistance = &periapsisDistance
	specificEnergy := quantity.SpecificEnergy(-mu.Value() / (2 * a))
	elements.SpecificEnergy = &specificEnergy
	characteristicEnergy := quantity.SpecificEnergy(2 * specificEnergy.Value())
	elements.CharacteristicEnergy = &characteristicEnergy
	specificAngularMomentum := quantity.SpecificAngularMomentum(math.Sqrt(p * mu.Value()))
	elements.SpecificAngularMomentum = &specificAngularMomentum

	nanAngle := quantity.Angle(math.NaN())
	nanSpeed := quantity.Speed(math.NaN())
	nanTime := quantity.Time(math.NaN())
	nanFrequency := quantity.AngularFrequency(math.NaN())

	if e < 1 {
		semiminorAxis := quantity.Metre(a * math.Sqrt(1-e*e))
		elements.SemiminorAxis = &semiminorAxis

		meanMotion := quantity.AngularFrequency(n)
		elements.MeanMotion = &meanMotion
		period := quantity.Second(2 * math.Pi / n)
		elements.Period = &period
		elements.HyperbolicMeanMotion = &nanFrequency
		elements.HyperbolicExcessVelocity = &nanSpeed
		elements.AsymptoticTrueAnomaly = &nanAngle
		elements.TurningAngle = &nanAngle

		M0 := meanAnomalyFromTrueElliptic(nu0, e)
		meanAnomaly := quantity.Radian(M0)
		elements.MeanAnomaly = &meanAnomaly
		trueAnomaly := quantity.Radian(nu0)
		elements.TrueAnomaly = &trueAnomaly
		timeSincePeriapsis := quantity.Second(M0 / n)
		elements.TimeSincePeriapsis = &timeSincePeriapsis
		elements.HyperbolicMeanAnomaly = &nanAngle
	} else {
		semiminorAxis := quantity.Metre(math.Abs(a) * math.Sqrt(e*e-1))
		elements.SemiminorAxis = &semiminorAxis

		elements.MeanMotion = &nanFrequency
		elements.Period = &nanTime

		hyperbolicMeanMotion := quantity.AngularFrequency(n)
		elements.HyperbolicMeanMotion = &hyperbolicMeanMotion
		excessVelocity := quantity.Speed(math.Sqrt(-mu.Value() / a))
		elements.HyperbolicExcessVelocity = &excessVelocity
		asymptoticTrueAnomaly := quantity.Radian(math.Acos(clamp(-1/e, -1, 1)))
		elements.AsymptoticTrueAnomaly = &asymptoticTrueAnomaly
		turningAngle := quantity.Radian(2 * math.Asin(clamp(1/e, -1, 1)))
		elements.TurningAngle = &turningAngle

		Mh0 := meanAnomalyFromTrueHyperbolic(nu0, e)
		hyperbolicMeanAnomaly := quantity.Radian(Mh0)
		elements.HyperbolicMeanAnomaly = &hyperbolicMeanAnomaly
		trueAnomaly := quantity.Radian(nu0)
		elements.TrueAnomaly = &trueAnomaly
		timeSincePeriapsis := quantity.Second(Mh0 / n)
		elements.TimeSincePeriapsis = &timeSincePeriapsis
		elements.MeanAnomaly = &nanAngle
	}

	return &KeplerOrbit[F]{mu: mu, elements: elements, epoch: epoch}
}

// Elements returns the completed element record. Every optional slot is
// non-nil; slots that do not apply to this orbit's conic type hold NaN.
func (k *KeplerOrbit[F]) Elements() KeplerianElements[F] { return k.elements }

// Mu returns the orbit's combined gravitational parameter μ = μ_primary +
// μ_secondary.
func (k *KeplerOrbit[F]) Mu() quantity.GravitationalParameter { return k.mu }

// StateVectors propagates the orbit to t and returns the secondary's
// position and velocity relative to the primary. It panics if Kepler's
// equation fails to converge within the iteration bound — unreachable for
// physical inputs, so reaching it means a bug, per the "numerical
// non-convergence is fatal" rule.
func (k *KeplerOrbit[F]) StateVectors(t geometry.Instant) body.RelativeDegreesOfFreedom[F] {
	e := k.elements.Eccentricity
	dt := geometry.Sub(t, k.epoch).Seconds()

	var nu, r float64
	if e < 1 {
		n := k.elements.MeanMotion.RadiansPerSecond()
		M0 := k.elements.MeanAnomaly.Radians()
		M := M0 + n*dt
		E := solveElliptic(M, e)
		sinE, cosE := math.Sincos(E)
		nu = math.Atan2(math.Sqrt(1-e*e)*sinE, cosE-e)
		a := k.elements.SemimajorAxis.Metres()
		r = a * (1 - e*cosE)
	} else {
		n := k.elements.HyperbolicMeanMotion.RadiansPerSecond()
		Mh0 := k.elements.HyperbolicMeanAnomaly.Radians()
		Mh := Mh0 + n*dt
		H := solveHyperbolic(Mh, e)
		nu = 2 * math.Atan(math.Sqrt((e+1)/(e-1))*math.Tanh(H/2))
		a := k.elements.SemimajorAxis.Metres()
		r = math.Abs(a) * (e*math.Cosh(H) - 1)
	}

	p := k.elements.SemilatusRectum.Metres()
	mu := k.mu.Value()
	sinNu, cosNu := math.Sincos(nu)

	// Position and velocity in the perifocal (PQW) frame.
	xPQW, yPQW := r*cosNu, r*sinNu
	h := math.Sqrt(p * mu)
	vxPQW := -mu / h * sinNu
	vyPQW := mu / h * (e + cosNu)

	rot := perifocalToInertialRotation(
		k.elements.Inclination.Radians(),
		k.elements.LongitudeOfAscendingNode.Radians(),
		k.elements.ArgumentOfPeriapsis.Radians(),
	)
	pos := rot.apply(xPQW, yPQW)
	vel := rot.apply(vxPQW, vyPQW)

	return body.RelativeDegreesOfFreedom[F]{
		Displacement: geometry.NewVector[quantity.Length, F](
			quantity.Metre(pos.X), quantity.Metre(pos.Y), quantity.Metre(pos.Z)),
		Velocity: geometry.NewVector[quantity.Speed, F](
			quantity.Speed(vel.X), quantity.Speed(vel.Y), quantity.Speed(vel.Z)),
	}
}

// --- size-element selection ---

func semimajorAxisFromSizeElement[F frame.Frame](elements KeplerianElements[F], e float64, mu quantity.GravitationalParameter) float64 {
	count := 0
	var a float64
	set := func(value float64) {
		count++
		a = value
	}
	if elements.SemimajorAxis != nil {
		set(elements.SemimajorAxis.Metres())
	}
	if elements.SemiminorAxis != nil {
		b := elements.SemiminorAxis.Metres()
		if e < 1 {
			set(b / math.Sqrt(1-e*e))
		} else {
			set(-b / math.Sqrt(e*e-1))
		}
	}
	if elements.SemilatusRectum != nil {
		set(elements.SemilatusRectum.Metres() / (1 - e*e))
	}
	if elements.PeriapsisDistance != nil {
		set(elements.PeriapsisDistance.Metres() / (1 - e))
	}
	if elements.SpecificEnergy != nil {
		set(-mu.Value() / (2 * elements.SpecificEnergy.Value()))
	}
	if elements.CharacteristicEnergy != nil {
		set(-mu.Value() / elements.CharacteristicEnergy.Value())
	}
	if elements.SpecificAngularMomentum != nil {
		h := elements.SpecificAngularMomentum.Value()
		p := h * h / mu.Value()
		set(p / (1 - e*e))
	}
	if count != 1 {
		panic(fmt.Sprintf("kepler: exactly one size element must be supplied, got %d", count))
	}
	return a
}

func trueAnomalyFromEpochElement[F frame.Frame](elements KeplerianElements[F], e, n float64) float64 {
	count := 0
	var nu float64
	set := func(value float64) {
		count++
		nu = value
	}
	if elements.TrueAnomaly != nil {
		set(elements.TrueAnomaly.Radians())
	}
	if elements.MeanAnomaly != nil {
		if e >= 1 {
			panic("kepler: mean_anomaly is only a valid epoch-position input for an elliptic orbit")
		}
		E := solveElliptic(elements.MeanAnomaly.Radians(), e)
		sinE, cosE := math.Sincos(E)
		set(math.Atan2(math.Sqrt(1-e*e)*sinE, cosE-e))
	}
	if elements.HyperbolicMeanAnomaly != nil {
		if e <= 1 {
			panic("kepler: hyperbolic_mean_anomaly is only a valid epoch-position input for a hyperbolic orbit")
		}
		H := solveHyperbolic(elements.HyperbolicMeanAnomaly.Radians(), e)
		set(2 * math.Atan(math.Sqrt((e+1)/(e-1))*math.Tanh(H/2)))
	}
	if elements.TimeSincePeriapsis != nil {
		dt := elements.TimeSincePeriapsis.Seconds()
		if e < 1 {
			E := solveElliptic(n*dt, e)
			sinE, cosE := math.Sincos(E)
			set(math.Atan2(math.Sqrt(1-e*e)*sinE, cosE-e))
		} else {
			H := solveHyperbolic(n*dt, e)
			set(2 * math.Atan(math.Sqrt((e+1)/(e-1))*math.Tanh(H/2)))
		}
	}
	if count != 1 {
		panic(fmt.Sprintf("kepler: exactly one epoch-position element must be supplied, got %d", count))
	}
	return nu
}

// --- Newton-Raphson Kepler-equation solvers, grounded in the teacher's
// solveElliptic/solveHyperbolic. ---

const keplerIterationBound = 100

func solveElliptic(m, e float64) float64 {
	M := math.Mod(m, 2*math.Pi)
	if M > math.Pi {
		M -= 2 * math.Pi
	} else if M < -math.Pi {
		M += 2 * math.Pi
	}

	E := M
	if e > 0.8 {
		if M > 0 {
			E = math.Pi
		} else {
			E = -math.Pi
		}
	}

	converged := false
	for iter := 0; iter < keplerIterationBound; iter++ {
		sinE, cosE := math.Sincos(E)
		f := E - e*sinE - M
		fPrime := 1 - e*cosE
		dE := -f / fPrime
		E += dE
		if math.Abs(dE) < 1e-14 {
			converged = true
			break
		}
	}
	if !converged {
		panic("kepler: elliptic Kepler's equation did not converge")
	}
	return E
}

func solveHyperbolic(m, e float64) float64 {
	H := m
	converged := false
	for iter := 0; iter < keplerIterationBound; iter++ {
		sinhH, coshH := math.Sinh(H), math.Cosh(H)
		f := e*sinhH - H - m
		fPrime := e*coshH - 1
		dH := -f / fPrime
		H += dH
		if math.Abs(dH) < 1e-14 {
			converged = true
			break
		}
	}
	if !converged {
		panic("kepler: hyperbolic Kepler's equation did not converge")
	}
	return H
}

func meanAnomalyFromTrueElliptic(nu, e float64) float64 {
	E := eccentricAnomalyFromTrueElliptic(nu, e)
	M := E - e*math.Sin(E)
	return math.Mod(M+2*math.Pi, 2*math.Pi)
}

func eccentricAnomalyFromTrueElliptic(nu, e float64) float64 {
	E := 2 * math.Atan(math.Sqrt((1-e)/(1+e))*math.Tan(nu/2))
	if E < 0 {
		E += 2 * math.Pi
	}
	return E
}

func meanAnomalyFromTrueHyperbolic(nu, e float64) float64 {
	tanNu2 := math.Tan(nu / 2)
	ratio := tanNu2 / math.Sqrt((e+1)/(e-1))
	H := 2 * math.Atanh(ratio)
	return e*math.Sinh(H) - H
}

// --- state-vector decomposition helpers, grounded in elements.go ---

func trueAnomalyFromVectors(eVec r3.Vec[float64], e float64, nVec r3.Vec[float64], nMag float64, pos, vel r3.Vec[float64], r, rdv float64) float64 {
	const twoPi = 2 * math.Pi
	if e > 1e-15 {
		nu := angleBetween(eVec, pos)
		if rdv < 0 {
			nu = twoPi - nu
		}
		if e > 1 {
			return normPi(nu)
		}
		return nu
	}
	if nMag < 1e-15 {
		nu := math.Acos(clamp(pos.X/r, -1, 1))
		if vel.X > 0 {
			nu = twoPi - nu
		}
		return nu
	}
	nu := angleBetween(nVec, pos)
	if pos.Z < 0 {
		nu = twoPi - nu
	}
	return nu
}

func argumentOfPeriapsisFromVectors(eVec r3.Vec[float64], e float64, nVec r3.Vec[float64], nMag float64, pos, vel r3.Vec[float64]) float64 {
	const twoPi = 2 * math.Pi
	if e < 1e-15 {
		return 0
	}
	if nMag > 1e-15 {
		w := angleBetween(nVec, eVec)
		if eVec.Z < 0 {
			w = twoPi - w
		}
		return w
	}
	w := math.Atan2(eVec.Y, eVec.X)
	if w < 0 {
		w += twoPi
	}
	if r3.Cross(pos, vel).Z < 0 {
		w = twoPi - w
	}
	return w
}

func angleBetween(u, v r3.Vec[float64]) float64 {
	uMag, vMag := r3.Norm(u), r3.Norm(v)
	if uMag == 0 || vMag == 0 {
		return 0
	}
	a := r3.Scale(vMag, u)
	b := r3.Scale(uMag, v)
	return 2 * math.Atan2(r3.Norm(r3.Sub(a, b)), r3.Norm(r3.Add(a, b)))
}

func normPi(angle float64) float64 {
	const twoPi = 2 * math.Pi
	a := math.Mod(angle+math.Pi, twoPi)
	if a < 0 {
		a += twoPi
	}
	return a - math.Pi
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// --- perifocal → inertial rotation, grounded in the teacher's o.rot ---

type rotation3 struct {
	m [3][3]float64
}

func perifocalToInertialRotation(i, lan, argPeriapsis float64) rotation3 {
	sinI, cosI := math.Sincos(i)
	sinO, cosO := math.Sincos(lan)
	sinW, cosW := math.Sincos(argPeriapsis)

	return rotation3{m: [3][3]float64{
		{cosO*cosW - sinO*sinW*cosI, -cosO*sinW - sinO*cosW*cosI, sinO * sinI},
		{sinO*cosW + cosO*sinW*cosI, -sinO*sinW + cosO*cosW*cosI, -cosO * sinI},
		{sinW * sinI, cosW * sinI, cosI},
	}}
}

func (rot rotation3) apply(xPQW, yPQW float64) r3.Vec[float64] {
	return r3.Vec[float64]{
		X: rot.m[0][0]*xPQW + rot.m[0][1]*yPQW,
		Y: rot.m[1][0]*xPQW + rot.m[1][1]*yPQW,
		Z: rot.m[2][0]*xPQW + rot.m[2][1]*yPQW,
	}
}
