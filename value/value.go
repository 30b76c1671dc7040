package value

import (
	"math"
	"math/cmplx"
)

// Value is a realized value for one pool expression at a particular
// adjustable assignment. It is a tagged variant, not an interface
// hierarchy: the set of kinds is closed, so a switch on Tag plus a
// concretely-typed payload field per kind is clearer than dynamic dispatch
// through a Value interface implemented by five unrelated structs.
type Value struct {
	Tag    Tag
	Point  complex128 // PointKind
	Line   LineVal    // LineKind
	Circle CircleVal  // CircleKind
	Scalar float64    // ScalarKind, in the dimension recorded by the owning expression's Kind
	Points []complex128 // PointCollectionKind
	Bundle map[string]Value // BundleKind
}

type LineVal struct {
	Origin complex128
	Dir    complex128 // unit complex number
}

type CircleVal struct {
	Center complex128
	Radius float64
}

func FromPoint(p complex128) Value   { return Value{Tag: PointKind, Point: p} }
func FromLine(l LineVal) Value       { return Value{Tag: LineKind, Line: l} }
func FromCircle(c CircleVal) Value   { return Value{Tag: CircleKind, Circle: c} }
func FromScalar(s float64) Value     { return Value{Tag: ScalarKind, Scalar: s} }
func FromPoints(pts []complex128) Value {
	return Value{Tag: PointCollectionKind, Points: pts}
}

// AsPoint panics if v is not a point; callers have already checked Kind
// during math lowering, so a mismatch here is an internal bug, not user
// error.
func (v Value) AsPoint() complex128 {
	if v.Tag != PointKind {
		panic("value: AsPoint on a " + v.Tag.String())
	}
	return v.Point
}

func (v Value) AsLine() LineVal {
	if v.Tag != LineKind {
		panic("value: AsLine on a " + v.Tag.String())
	}
	return v.Line
}

func (v Value) AsCircle() CircleVal {
	if v.Tag != CircleKind {
		panic("value: AsCircle on a " + v.Tag.String())
	}
	return v.Circle
}

func (v Value) AsScalar() float64 {
	if v.Tag != ScalarKind {
		panic("value: AsScalar on a " + v.Tag.String())
	}
	return v.Scalar
}

func (v Value) AsPoints() []complex128 {
	if v.Tag != PointCollectionKind {
		panic("value: AsPoints on a " + v.Tag.String())
	}
	return v.Points
}

// PointAt evaluates the point on line ℓ at parameter t: origin + t*dir.
func (l LineVal) PointAt(t float64) complex128 {
	return l.Origin + complex(t, 0)*l.Dir
}

// PointAt evaluates the point on circle c at angle theta (radians).
func (c CircleVal) PointAt(theta float64) complex128 {
	return c.Center + complex(c.Radius, 0)*cmplx.Exp(complex(0, theta))
}

// DistanceToLine is the unsigned distance from p to the infinite line l.
func DistanceToLine(p complex128, l LineVal) float64 {
	d := p - l.Origin
	proj := real(d)*real(l.Dir) + imag(d)*imag(l.Dir)
	perp := d - complex(proj, 0)*l.Dir
	return cmplx.Abs(perp)
}

// DistanceToCircle is the unsigned distance from p to the circle c.
func DistanceToCircle(p complex128, c CircleVal) float64 {
	return math.Abs(cmplx.Abs(p-c.Center) - c.Radius)
}
