// Package critic evaluates a figure's rule list against a realized adjustable
// assignment, producing both a scalar total quality and a per-adjustable
// breakdown the generator uses to bias its perturbations.
package critic

import (
	"math"
	"math/cmplx"

	"github.com/DragonGamesStudios/Geo-AID/pool"
	"github.com/DragonGamesStudios/Geo-AID/ruleset"
	"github.com/DragonGamesStudios/Geo-AID/value"
)

// Program is a compiled critic: the rules to check and the sub-DAG of pool
// indices they actually read, so the generator can realize only what the
// critic needs on every cycle rather than the whole pool.
type Program struct {
	Pool      *pool.Pool
	Rules     []ruleset.Rule
	Reachable []bool
}

// Compile derives the reachable sub-DAG for rules once, up front, so
// Evaluate never has to recompute it.
func Compile(p *pool.Pool, rules []ruleset.Rule) *Program {
	roots := make([]int, 0, len(rules)*2)
	for _, r := range rules {
		roots = append(roots, r.Roots()...)
	}
	return &Program{Pool: p, Rules: rules, Reachable: p.Reachable(roots)}
}

// Evaluate realizes the reachable sub-DAG at x and returns the total
// quality (the weight-normalized sum of per-rule qualities) together with
// the per-rule qualities themselves, in Rules order.
func (prog *Program) Evaluate(x []float64) (total float64, perRule []float64) {
	values := prog.Pool.EvaluateSubset(x, prog.Reachable)
	radius := boundingRadius(values)
	perRule = make([]float64, len(prog.Rules))
	var weightSum float64
	for i, r := range prog.Rules {
		perRule[i] = prog.qualityOf(r, values, radius)
		weightSum += r.Weight
	}
	if weightSum == 0 {
		return 1, perRule
	}
	var sum float64
	for i, r := range prog.Rules {
		sum += r.Weight * perRule[i]
	}
	return sum / weightSum, perRule
}

func (prog *Program) qualityOf(r ruleset.Rule, values []value.Value, radius float64) float64 {
	switch r.Op {
	case ruleset.Equal:
		dim := prog.Pool.KindOf(r.Left).Dim
		return qualityEqual(values[r.Left], values[r.Right], dim, radius)
	case ruleset.Less:
		dim := prog.Pool.KindOf(r.Left).Dim
		return qualityLess(values[r.Left], values[r.Right], dim, radius)
	case ruleset.LiesOn:
		if r.Segment {
			return qualityLiesOnSegment(values[r.Left], values[r.Right], values[r.SegA], values[r.SegB], radius)
		}
		return qualityLiesOn(values[r.Left], values[r.Right], radius)
	case ruleset.Not:
		return 1 - prog.qualityOf(*r.Inner, values, radius)
	default:
		panic("critic: unknown rule op")
	}
}

// boundingRadius scales the sigma used by distance-flavored quality formulas
// to the figure's own size, so a rule is neither impossibly strict nor
// trivially satisfied regardless of how large the figure happens to be.
// Only points and circle centers are counted; a circle's radius and every
// line (which has no bounded extent) are left out.
func boundingRadius(values []value.Value) float64 {
	var pts []complex128
	for _, v := range values {
		switch v.Tag {
		case value.PointKind:
			pts = append(pts, v.Point)
		case value.CircleKind:
			pts = append(pts, v.Circle.Center)
		}
	}
	if len(pts) < 2 {
		return 1
	}
	var maxD float64
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			if d := cmplx.Abs(pts[i] - pts[j]); d > maxD {
				maxD = d
			}
		}
	}
	if maxD == 0 {
		return 1
	}
	return maxD
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// distanceMetric returns a scalar "how far apart" measure between two
// values of the same kind, in the units qualityEqual/qualityLess scale by.
func distanceMetric(a, b value.Value) float64 {
	switch a.Tag {
	case value.PointKind:
		return cmplx.Abs(a.Point - b.Point)
	case value.ScalarKind:
		return a.Scalar - b.Scalar
	case value.LineKind:
		// Distance between two lines as rule operands is only meaningful
		// when asserting they coincide; approximate by the distance between
		// their origins plus the angle between their directions, scaled to
		// the same order of magnitude as a point distance.
		angle := cmplx.Phase(b.Line.Dir) - cmplx.Phase(a.Line.Dir)
		return cmplx.Abs(a.Line.Origin-b.Line.Origin) + math.Abs(angle)
	case value.CircleKind:
		return cmplx.Abs(a.Circle.Center-b.Circle.Center) + math.Abs(a.Circle.Radius-b.Circle.Radius)
	default:
		return 0
	}
}

// sigmaFor picks the quality formula's scale parameter, per spec.md §4.4
// verbatim: the figure's own bounding radius for distance-flavored
// comparisons, and pi/4 (an eighth of a turn) for angle-dimensioned scalars.
func sigmaFor(a value.Value, dim value.Dimension, radius float64) float64 {
	if a.Tag == value.ScalarKind && dim.Angle.Sign() != 0 {
		return math.Pi / 4
	}
	return radius
}

func qualityEqual(a, b value.Value, dim value.Dimension, radius float64) float64 {
	d := distanceMetric(a, b)
	sigma := sigmaFor(a, dim, radius)
	return 1 / (1 + (d*d)/(sigma*sigma))
}

func qualityLess(a, b value.Value, dim value.Dimension, radius float64) float64 {
	d := distanceMetric(b, a) // positive when b > a, as the rule requires
	sigma := sigmaFor(a, dim, radius)
	return sigmoid(d / sigma)
}

// qualityLiesOn measures a point's distance to a line or circle and maps it
// through the same inverse-square falloff as equality.
func qualityLiesOn(p, curve value.Value, radius float64) float64 {
	var d float64
	switch curve.Tag {
	case value.LineKind:
		d = value.DistanceToLine(p.Point, curve.Line)
	case value.CircleKind:
		d = value.DistanceToCircle(p.Point, curve.Circle)
	default:
		return 0
	}
	sigma := radius * 0.05
	return 1 / (1 + (d*d)/(sigma*sigma))
}

// qualityLiesOnSegment adds an out-of-bounds penalty on top of the line
// distance: if the foot of the perpendicular from p falls outside [a, b],
// the penalty grows with how far past the nearer endpoint it lands, on the
// same distance scale sigma already uses.
func qualityLiesOnSegment(p, line, a, b value.Value, radius float64) float64 {
	base := qualityLiesOn(p, line, radius)
	length := cmplx.Abs(b.Point - a.Point)
	if length == 0 {
		return base
	}
	d := p.Point - a.Point
	dir := (b.Point - a.Point) / complex(length, 0)
	t := real(d)*real(dir) + imag(d)*imag(dir)
	var overshoot float64
	switch {
	case t < 0:
		overshoot = -t
	case t > length:
		overshoot = t - length
	default:
		return base
	}
	sigma := radius * 0.05
	penalty := 1 / (1 + (overshoot*overshoot)/(sigma*sigma))
	return base * penalty
}
