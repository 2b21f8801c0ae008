// Package geometry provides frame-tagged Grassmann algebra values: Vector,
// Bivector and Trivector over a reference frame.Frame, plus affine Point
// arithmetic (Instant, and the Position/Displacement aliases built from it).
//
// This replaces the teacher's geometry.go, which offered a single untyped
// line-sphere intersection helper (see coord/vec3.go for the free-function
// style it followed); the spec this repo implements needs a real exterior
// algebra instead, so the package keeps its name and teacher-grounded
// "plain functions over a raw triple" shape but not its old content.
package geometry

import (
	"github.com/astrobound/orrery/frame"
	"github.com/astrobound/orrery/quantity"
	"github.com/astrobound/orrery/r3"
)

// Vector is a frame-tagged polar vector: a displacement, a velocity, a
// specific angular momentum direction, and so on, depending on S.
type Vector[S r3.Scalar, F frame.Frame] struct {
	Coordinates r3.Vec[S]
}

// NewVector builds a Vector from three components expressed in F.
func NewVector[S r3.Scalar, F frame.Frame](x, y, z S) Vector[S, F] {
	return Vector[S, F]{Coordinates: r3.New(x, y, z)}
}

// Add returns v + other.
func (v Vector[S, F]) Add(other Vector[S, F]) Vector[S, F] {
	return Vector[S, F]{Coordinates: r3.Add(v.Coordinates, other.Coordinates)}
}

// Sub returns v - other.
func (v Vector[S, F]) Sub(other Vector[S, F]) Vector[S, F] {
	return Vector[S, F]{Coordinates: r3.Sub(v.Coordinates, other.Coordinates)}
}

// Scale returns v scaled by a dimensionless factor.
func (v Vector[S, F]) Scale(factor float64) Vector[S, F] {
	return Vector[S, F]{Coordinates: r3.Scale(factor, v.Coordinates)}
}

// Negate returns -v.
func (v Vector[S, F]) Negate() Vector[S, F] {
	return Vector[S, F]{Coordinates: r3.Negate(v.Coordinates)}
}

// Norm returns |v|, expressed as a plain float64 in S's SI-base unit.
func (v Vector[S, F]) Norm() float64 {
	return r3.Norm(v.Coordinates)
}

// Bivector is a frame-tagged axial quantity represented, as in three
// dimensions, by its Hodge-dual R3Element: a torque, an orbital-plane
// normal, an angular velocity.
type Bivector[S r3.Scalar, F frame.Frame] struct {
	Coordinates r3.Vec[S]
}

// NewBivector builds a Bivector from its dual's three components.
func NewBivector[S r3.Scalar, F frame.Frame](x, y, z S) Bivector[S, F] {
	return Bivector[S, F]{Coordinates: r3.New(x, y, z)}
}

// Add returns b + other.
func (b Bivector[S, F]) Add(other Bivector[S, F]) Bivector[S, F] {
	return Bivector[S, F]{Coordinates: r3.Add(b.Coordinates, other.Coordinates)}
}

// Sub returns b - other.
func (b Bivector[S, F]) Sub(other Bivector[S, F]) Bivector[S, F] {
	return Bivector[S, F]{Coordinates: r3.Sub(b.Coordinates, other.Coordinates)}
}

// Scale returns b scaled by a dimensionless factor.
func (b Bivector[S, F]) Scale(factor float64) Bivector[S, F] {
	return Bivector[S, F]{Coordinates: r3.Scale(factor, b.Coordinates)}
}

// Negate returns -b.
func (b Bivector[S, F]) Negate() Bivector[S, F] {
	return Bivector[S, F]{Coordinates: r3.Negate(b.Coordinates)}
}

// Norm returns |b|, expressed as a plain float64 in S's SI-base unit.
func (b Bivector[S, F]) Norm() float64 {
	return r3.Norm(b.Coordinates)
}

// Trivector is the pseudoscalar of F: a signed volume.
type Trivector[S r3.Scalar, F frame.Frame] struct {
	Coordinate S
}

// NewTrivector builds a Trivector from its single coordinate.
func NewTrivector[S r3.Scalar, F frame.Frame](s S) Trivector[S, F] {
	return Trivector[S, F]{Coordinate: s}
}

// InnerProduct returns the scalar (dot) product a · b, wrapped as SOut. The
// three type parameters let a Length vector dot a Speed vector and yield a
// SpecificAngularMomentum-shaped (m²/s) result, the same way GravitationalParameter.Over
// wraps a bare float64 arithmetic result with its physical dimension.
func InnerProduct[S1, S2, SOut r3.Scalar, F frame.Frame](a Vector[S1, F], b Vector[S2, F]) SOut {
	return SOut(dotTyped(a.Coordinates, b.Coordinates))
}

// Wedge returns the exterior product a ∧ b of two Vectors, a Bivector
// normal to both with magnitude |a||b|sinθ — realized in three dimensions
// as the ordinary cross product.
func Wedge[S1, S2, SOut r3.Scalar, F frame.Frame](a Vector[S1, F], b Vector[S2, F]) Bivector[SOut, F] {
	return Bivector[SOut, F]{Coordinates: crossTyped[S1, S2, SOut](a.Coordinates, b.Coordinates)}
}

// WedgeTrivector returns the exterior product a ∧ b of a Vector and a
// Bivector: the pseudoscalar a · dual(b), a signed volume.
func WedgeTrivector[S1, S2, SOut r3.Scalar, F frame.Frame](a Vector[S1, F], b Bivector[S2, F]) Trivector[SOut, F] {
	return Trivector[SOut, F]{Coordinate: SOut(dotTyped(a.Coordinates, b.Coordinates))}
}

// Cross returns the generalized cross product a × b of a Vector and a
// Bivector (its dual treated as an axial vector), yielding a Vector
// orthogonal to a — for example a circular-orbit tangent built from a
// vessel's displacement and an arbitrary Bivector.
func Cross[S1, S2, SOut r3.Scalar, F frame.Frame](a Vector[S1, F], b Bivector[S2, F]) Vector[SOut, F] {
	return Vector[SOut, F]{Coordinates: crossTyped[S1, S2, SOut](a.Coordinates, b.Coordinates)}
}

func dotTyped[S1, S2 r3.Scalar](a r3.Vec[S1], b r3.Vec[S2]) float64 {
	ax, ay, az := float64(a.X), float64(a.Y), float64(a.Z)
	bx, by, bz := float64(b.X), float64(b.Y), float64(b.Z)
	return ax*bx + ay*by + az*bz
}

func crossTyped[S1, S2, SOut r3.Scalar](a r3.Vec[S1], b r3.Vec[S2]) r3.Vec[SOut] {
	ax, ay, az := float64(a.X), float64(a.Y), float64(a.Z)
	bx, by, bz := float64(b.X), float64(b.Y), float64(b.Z)
	return r3.Vec[SOut]{
		X: SOut(ay*bz - az*by),
		Y: SOut(az*bx - ax*bz),
		Z: SOut(ax*by - ay*bx),
	}
}

// Affine is satisfied by any vector-space value V whose difference and
// translation are expressed in terms of itself — quantity.Time (a duration
// is a Time) and Vector[quantity.Length, F] (a displacement is a Vector)
// both qualify, which is what lets Point be generic over both.
type Affine[V any] interface {
	Add(V) V
	Sub(V) V
}

// Point is an affine point over vector space V: the position of a body, or
// an instant in time, represented relative to an implicit, unnamed origin
// (the solar-system barycenter, for Position; an arbitrary reference epoch,
// for Instant). Only differences and translations are observable, never the
// origin itself — mirroring the original's Point<Vector> / Point<Time>.
type Point[V Affine[V]] struct {
	relative V
}

// NewPoint builds a Point from its value relative to the implicit origin.
func NewPoint[V Affine[V]](relative V) Point[V] {
	return Point[V]{relative: relative}
}

// RelativeTo returns the value this Point is carrying relative to the
// implicit origin. Exposed for serialization and for the solarsystem
// fixture, which constructs Points directly from HORIZONS state vectors.
func (p Point[V]) RelativeTo() V {
	return p.relative
}

// Sub returns the displacement/duration a - b.
func Sub[V Affine[V]](a, b Point[V]) V {
	return a.relative.Sub(b.relative)
}

// Add returns the Point p + delta.
func Add[V Affine[V]](p Point[V], delta V) Point[V] {
	return Point[V]{relative: p.relative.Add(delta)}
}

// Instant is a moment in time, an affine point over quantity.Time — a
// duration since an arbitrary, unstated reference epoch.
type Instant = Point[quantity.Time]

// j2000 is the Julian date of the J2000.0 epoch, the reference this package's
// Instants are measured from.
const j2000 = 2451545.0

// JulianDate returns the Instant at the given Julian date (TT).
func JulianDate(jd float64) Instant {
	return NewPoint(quantity.Day(jd - j2000))
}

// Displacement is a length-valued Vector in frame F: the difference of two
// Positions.
type Displacement[F frame.Frame] = Vector[quantity.Length, F]

// Velocity is a speed-valued Vector in frame F.
type Velocity[F frame.Frame] = Vector[quantity.Speed, F]

// Position is the location of a body in frame F, an affine point over its
// Displacement.
type Position[F frame.Frame] = Point[Displacement[F]]
