// Package linearmap provides the orthogonal maps between reference frames:
// axis Permutations, Rotations, and their composition. This is new code,
// grounded in two teacher-adjacent sources: the raw rotation-matrix style of
// coord/frames.go (GalacticMatrix, B1950Matrix, applied as plain 3x3 arrays)
// and original_source/Geometry/LinearMap.hpp, whose comments explain why a
// real LinearMap<FromFrame,ToFrame>::Inverse()/operator() can't be written
// as ordinary C++ virtual dispatch — the same problem Go solves here with a
// small interface plus free generic functions instead of methods, since a Go
// method cannot introduce a type parameter of its own.
package linearmap

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/astrobound/orrery/frame"
	"github.com/astrobound/orrery/geometry"
	"github.com/astrobound/orrery/r3"
)

// LinearMap is an invertible linear map from From's coordinates to To's.
// Apply operates on a bare R3Element; the frame-tagged Vector/Bivector/
// Trivector wrappers live in the free functions below, mirroring why the
// original leaves operator() commented out on the base class and instead
// dispatches per Grassmann grade.
type LinearMap[From, To frame.Frame] interface {
	// Determinant returns the map's determinant, always ±1 for the
	// orthogonal maps this package constructs.
	Determinant() frame.Sign
	// Apply transforms a raw, dimensionless triple from From's coordinates
	// into To's.
	Apply(r3.Vec[float64]) r3.Vec[float64]
	// Inverse returns the map From ← To.
	Inverse() LinearMap[To, From]
}

// Permutation is one of the six signed coordinate permutations of R3.
type Permutation[From, To frame.Frame] struct {
	// axis[i] is the From-coordinate index that becomes To's i-th coordinate.
	axis [3]int
	sign frame.Sign
}

func newPermutation[From, To frame.Frame](axis [3]int, sign frame.Sign) Permutation[From, To] {
	return Permutation[From, To]{axis: axis, sign: sign}
}

// XYZ is the identity permutation.
func XYZ[From, To frame.Frame]() Permutation[From, To] {
	return newPermutation[From, To]([3]int{0, 1, 2}, frame.Positive)
}

// Identity is the identity map between two frames whose axes coincide.
func Identity[From, To frame.Frame]() Permutation[From, To] {
	return XYZ[From, To]()
}

// XZY swaps the Y and Z axes — the permutation ICRFJ2000Ecliptic uses to
// become AliceSun's coordinate ordering.
func XZY[From, To frame.Frame]() Permutation[From, To] {
	return newPermutation[From, To]([3]int{0, 2, 1}, frame.Negative)
}

// YXZ swaps the X and Y axes.
func YXZ[From, To frame.Frame]() Permutation[From, To] {
	return newPermutation[From, To]([3]int{1, 0, 2}, frame.Negative)
}

// YZX cycles X→Y→Z→X.
func YZX[From, To frame.Frame]() Permutation[From, To] {
	return newPermutation[From, To]([3]int{1, 2, 0}, frame.Positive)
}

// ZXY cycles X→Z→Y→X.
func ZXY[From, To frame.Frame]() Permutation[From, To] {
	return newPermutation[From, To]([3]int{2, 0, 1}, frame.Positive)
}

// ZYX swaps the X and Z axes.
func ZYX[From, To frame.Frame]() Permutation[From, To] {
	return newPermutation[From, To]([3]int{2, 1, 0}, frame.Negative)
}

// Determinant returns the permutation's sign.
func (p Permutation[From, To]) Determinant() frame.Sign { return p.sign }

// Apply permutes v's components according to p.
func (p Permutation[From, To]) Apply(v r3.Vec[float64]) r3.Vec[float64] {
	in := [3]float64{v.X, v.Y, v.Z}
	return r3.Vec[float64]{X: in[p.axis[0]], Y: in[p.axis[1]], Z: in[p.axis[2]]}
}

// Inverse returns the inverse permutation, which for any permutation matrix
// equals its transpose.
func (p Permutation[From, To]) Inverse() LinearMap[To, From] {
	var inv [3]int
	for to, from := range p.axis {
		inv[from] = to
	}
	return Permutation[To, From]{axis: inv, sign: p.sign}
}

// Rotation is a proper rotation (determinant +1), backed by a gonum 3x3
// orthogonal matrix, the way coord/frames.go backs GalacticMatrix/
// B1950Matrix with a plain rotation matrix applied by matrix-vector product.
type Rotation[From, To frame.Frame] struct {
	matrix *mat.Dense
}

// AboutZ builds the rotation by angle about the Z axis (the pole), the
// transform the planetarium rotation applies between ICRFJ2000Ecliptic and
// AliceSun's rotating frame.
func AboutZ[From, To frame.Frame](angle float64) Rotation[From, To] {
	sin, cos := math.Sincos(angle)
	m := mat.NewDense(3, 3, []float64{
		cos, -sin, 0,
		sin, cos, 0,
		0, 0, 1,
	})
	return Rotation[From, To]{matrix: m}
}

// Determinant is always Positive for a rotation.
func (r Rotation[From, To]) Determinant() frame.Sign { return frame.Positive }

// Apply transforms v by r's matrix.
func (r Rotation[From, To]) Apply(v r3.Vec[float64]) r3.Vec[float64] {
	var out mat.VecDense
	out.MulVec(r.matrix, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vec[float64]{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// Inverse returns the rotation From ← To, the transpose of r's matrix since
// a rotation matrix is orthogonal.
func (r Rotation[From, To]) Inverse() LinearMap[To, From] {
	return r.transposed()
}

func (r Rotation[From, To]) transposed() Rotation[To, From] {
	var inv mat.Dense
	inv.CloneFrom(r.matrix.T())
	return Rotation[To, From]{matrix: &inv}
}

// OrthogonalMap is a general orthogonal transform: a proper rotation
// composed with an optional central inversion, so its determinant may be
// either sign.
type OrthogonalMap[From, To frame.Frame] struct {
	determinant frame.Sign
	rotation    Rotation[From, To]
}

// NewOrthogonalMap builds the map determinant · rotation.
func NewOrthogonalMap[From, To frame.Frame](determinant frame.Sign, rotation Rotation[From, To]) OrthogonalMap[From, To] {
	return OrthogonalMap[From, To]{determinant: determinant, rotation: rotation}
}

// Determinant returns the map's sign.
func (o OrthogonalMap[From, To]) Determinant() frame.Sign { return o.determinant }

// Apply rotates v and applies the central inversion if the determinant is
// negative.
func (o OrthogonalMap[From, To]) Apply(v r3.Vec[float64]) r3.Vec[float64] {
	return r3.Scale(o.determinant.Float64(), o.rotation.Apply(v))
}

// Inverse returns the orthogonal map From ← To; the inversion commutes with
// the rotation, so the determinant is unchanged.
func (o OrthogonalMap[From, To]) Inverse() LinearMap[To, From] {
	return OrthogonalMap[To, From]{
		determinant: o.determinant,
		rotation:    o.rotation.transposed(),
	}
}

// Composed is the linear map second ∘ first: apply first, then second. It
// models the looking glass, Permutation ∘ Rotation, without needing a third
// concrete type per pair of composed maps.
type Composed[From, Via, To frame.Frame] struct {
	first  LinearMap[From, Via]
	second LinearMap[Via, To]
}

// Compose builds the linear map From → To by applying first then second.
func Compose[From, Via, To frame.Frame](first LinearMap[From, Via], second LinearMap[Via, To]) Composed[From, Via, To] {
	return Composed[From, Via, To]{first: first, second: second}
}

// Determinant is the product of the two determinants.
func (c Composed[From, Via, To]) Determinant() frame.Sign {
	return c.first.Determinant().Times(c.second.Determinant())
}

// Apply applies first, then second.
func (c Composed[From, Via, To]) Apply(v r3.Vec[float64]) r3.Vec[float64] {
	return c.second.Apply(c.first.Apply(v))
}

// Inverse returns the composed map To → From: second's inverse, then
// first's.
func (c Composed[From, Via, To]) Inverse() LinearMap[To, From] {
	return Composed[To, Via, From]{first: c.second.Inverse(), second: c.first.Inverse()}
}

// ApplyVector transforms a frame-tagged Vector by m, preserving its scalar
// dimension S.
func ApplyVector[S r3.Scalar, From, To frame.Frame](m LinearMap[From, To], v geometry.Vector[S, From]) geometry.Vector[S, To] {
	out := m.Apply(r3.Float64(v.Coordinates))
	return geometry.Vector[S, To]{Coordinates: r3.Convert(out, func(f float64) S { return S(f) })}
}

// ApplyBivector transforms a frame-tagged Bivector by m. An axial quantity
// transforms by det(m)·m applied to its dual, not by m alone — the
// distinction collapses for proper rotations (det = +1) but matters for
// improper maps like XZY.
func ApplyBivector[S r3.Scalar, From, To frame.Frame](m LinearMap[From, To], b geometry.Bivector[S, From]) geometry.Bivector[S, To] {
	out := m.Apply(r3.Float64(b.Coordinates))
	sign := m.Determinant().Float64()
	out = r3.Scale(sign, out)
	return geometry.Bivector[S, To]{Coordinates: r3.Convert(out, func(f float64) S { return S(f) })}
}

// ApplyTrivector transforms a frame-tagged Trivector (a pseudoscalar) by m:
// it scales by det(m).
func ApplyTrivector[S r3.Scalar, From, To frame.Frame](m LinearMap[From, To], t geometry.Trivector[S, From]) geometry.Trivector[S, To] {
	return geometry.Trivector[S, To]{Coordinate: S(float64(t.Coordinate) * m.Determinant().Float64())}
}
