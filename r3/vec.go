// Package r3 provides an untyped three-component tuple with field
// arithmetic. It is the raw storage underneath every frame-tagged Grassmann
// value in package geometry — it carries no frame or dimension information
// of its own, matching the teacher's coord/vec3.go helpers (dot3, length3,
// scale3, sub3, add3) generalized from free functions on [3]float64 into
// generic free functions on a named generic type.
package r3

import "math"

// Scalar is any named (or unnamed) float64 type — physical quantity types
// such as quantity.Length satisfy it automatically since they are declared
// as `type Length float64`.
type Scalar interface {
	~float64
}

// Vec is an ordered triple (X, Y, Z) of S.
type Vec[S Scalar] struct {
	X, Y, Z S
}

// New builds a Vec from three components.
func New[S Scalar](x, y, z S) Vec[S] {
	return Vec[S]{X: x, Y: y, Z: z}
}

// Add returns the componentwise sum.
func Add[S Scalar](a, b Vec[S]) Vec[S] {
	return Vec[S]{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns the componentwise difference.
func Sub[S Scalar](a, b Vec[S]) Vec[S] {
	return Vec[S]{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Scale returns a scaled by a dimensionless factor.
func Scale[S Scalar](factor float64, a Vec[S]) Vec[S] {
	return Vec[S]{S(float64(a.X) * factor), S(float64(a.Y) * factor), S(float64(a.Z) * factor)}
}

// Negate returns -a.
func Negate[S Scalar](a Vec[S]) Vec[S] {
	return Vec[S]{-a.X, -a.Y, -a.Z}
}

// Dot returns the scalar (inner) product of two Vecs of the same kind,
// expressed as a plain float64 in SI-base units; callers that need a typed
// result (e.g. quantity.SpecificEnergy) wrap this.
func Dot[S Scalar](a, b Vec[S]) float64 {
	return float64(a.X)*float64(b.X) + float64(a.Y)*float64(b.Y) + float64(a.Z)*float64(b.Z)
}

// Cross returns the vector (cross) product a × b.
func Cross[S Scalar](a, b Vec[S]) Vec[S] {
	return Vec[S]{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Norm returns the Euclidean length of a, as a plain float64 in the SI-base
// unit of S.
func Norm[S Scalar](a Vec[S]) float64 {
	return math.Sqrt(Dot(a, a))
}

// Float64 returns a with its components converted to plain float64, losing
// dimension information — used at the boundary where a dimensioned Vec must
// feed a dimensionless computation (e.g. a rotation matrix application).
func Float64[S Scalar](a Vec[S]) Vec[float64] {
	return Vec[float64]{float64(a.X), float64(a.Y), float64(a.Z)}
}

// Convert maps a Vec[S] to a Vec[T] via a per-component conversion, used to
// attach or strip a physical dimension (e.g. float64 → quantity.Length).
func Convert[S, T Scalar](a Vec[S], f func(S) T) Vec[T] {
	return Vec[T]{f(a.X), f(a.Y), f(a.Z)}
}
