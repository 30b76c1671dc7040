package pool

import (
	"math"
	"math/cmplx"

	"github.com/DragonGamesStudios/Geo-AID/value"
)

// Evaluate realizes the whole pool at adjustable assignment x, in index
// order: every operand of Exprs[i] has an index < i, so a single forward
// pass suffices. An OpEntity on a curve reads its Line/Circle from out,
// where its curve operand, an earlier node, is already realized.
func (p *Pool) Evaluate(x []float64) []value.Value {
	out := make([]value.Value, len(p.Exprs))
	for i, e := range p.Exprs {
		out[i] = p.evalOne(e, x, out)
	}
	return out
}

// EvaluateSubset realizes only the indices marked true in reachable, which
// must already include the transitive operand closure (see Reachable). It
// still walks index order 0..max, skipping unmarked nodes, since Go gives us
// no cheaper way to jump to marked indices only and the pool is small
// relative to the cost of a generator cycle.
func (p *Pool) EvaluateSubset(x []float64, reachable []bool) []value.Value {
	out := make([]value.Value, len(p.Exprs))
	for i, e := range p.Exprs {
		if !reachable[i] {
			continue
		}
		out[i] = p.evalOne(e, x, out)
	}
	return out
}

func (p *Pool) evalOne(e Expr, x []float64, out []value.Value) value.Value {
	switch e.Kind {
	case OpEntity:
		ent := p.Entities[e.Entity]
		var curve value.Value
		if len(e.Operands) > 0 {
			curve = out[e.Operands[0]]
		}
		return ent.Realize(x, curve)
	case OpConst:
		return value.FromScalar(e.Const)
	case OpSum:
		var s float64
		for _, o := range e.Operands {
			s += out[o].AsScalar()
		}
		return value.FromScalar(s)
	case OpProduct:
		s := 1.0
		for _, o := range e.Operands {
			s *= out[o].AsScalar()
		}
		return value.FromScalar(s)
	case OpPower:
		base := out[e.Operands[0]].AsScalar()
		exp, _ := e.Exponent.Float64()
		return value.FromScalar(math.Pow(base, exp))
	case OpPointPointLine:
		a, b := out[e.Operands[0]].AsPoint(), out[e.Operands[1]].AsPoint()
		dir := b - a
		if cmplx.Abs(dir) == 0 {
			dir = 1
		}
		dir /= complex(cmplx.Abs(dir), 0)
		return value.FromLine(value.LineVal{Origin: a, Dir: dir})
	case OpLineLineIntersection:
		l1, l2 := out[e.Operands[0]].AsLine(), out[e.Operands[1]].AsLine()
		return value.FromPoint(intersectLines(l1, l2))
	case OpAveragePoint:
		var sum complex128
		for _, o := range e.Operands {
			sum += out[o].AsPoint()
		}
		return value.FromPoint(sum / complex(float64(len(e.Operands)), 0))
	case OpCircleCenter:
		return value.FromPoint(out[e.Operands[0]].AsCircle().Center)
	case OpPointPointDistance:
		a, b := out[e.Operands[0]].AsPoint(), out[e.Operands[1]].AsPoint()
		return value.FromScalar(cmplx.Abs(a - b))
	case OpPointLineDistance:
		pt, ln := out[e.Operands[0]].AsPoint(), out[e.Operands[1]].AsLine()
		return value.FromScalar(value.DistanceToLine(pt, ln))
	case OpThreePointAngle:
		a, b, c := out[e.Operands[0]].AsPoint(), out[e.Operands[1]].AsPoint(), out[e.Operands[2]].AsPoint()
		return value.FromScalar(unsignedAngle(a, b, c))
	case OpThreePointAngleDir:
		a, b, c := out[e.Operands[0]].AsPoint(), out[e.Operands[1]].AsPoint(), out[e.Operands[2]].AsPoint()
		return value.FromScalar(signedAngle(a, b, c))
	case OpTwoLineAngle:
		l1, l2 := out[e.Operands[0]].AsLine(), out[e.Operands[1]].AsLine()
		return value.FromScalar(lineAngle(l1, l2))
	case OpPointX:
		return value.FromScalar(real(out[e.Operands[0]].AsPoint()))
	case OpPointY:
		return value.FromScalar(imag(out[e.Operands[0]].AsPoint()))
	case OpAngleBisector:
		a, b, c := out[e.Operands[0]].AsPoint(), out[e.Operands[1]].AsPoint(), out[e.Operands[2]].AsPoint()
		return value.FromLine(angleBisector(a, b, c))
	case OpPerpendicularThrough:
		ln, pt := out[e.Operands[0]].AsLine(), out[e.Operands[1]].AsPoint()
		perp := ln.Dir * complex(0, 1)
		return value.FromLine(value.LineVal{Origin: pt, Dir: perp / complex(cmplx.Abs(perp), 0)})
	case OpParallelThrough:
		ln, pt := out[e.Operands[0]].AsLine(), out[e.Operands[1]].AsPoint()
		return value.FromLine(value.LineVal{Origin: pt, Dir: ln.Dir})
	case OpConstructCircle:
		center := out[e.Operands[0]].AsPoint()
		radius := out[e.Operands[1]].AsScalar()
		return value.FromCircle(value.CircleVal{Center: center, Radius: radius})
	default:
		panic("pool: unknown op kind " + string(e.Kind))
	}
}

func intersectLines(l1, l2 value.LineVal) complex128 {
	// Solve l1.Origin + t*l1.Dir = l2.Origin + s*l2.Dir for t via Cramer's
	// rule on the real 2x2 system; parallel lines (denominator ~ 0) return
	// the midpoint of the origins as a degenerate but finite fallback so the
	// critic still has a gradient to follow rather than diverging to NaN.
	// The common-point case (two lines built through a shared endpoint,
	// which are always parallel exactly when collinear) never reaches this
	// fallback: Pool.fold's OpLineLineIntersection case resolves it to the
	// shared point structurally before an intersection node is even built.
	d1, d2 := l1.Dir, l2.Dir
	denom := real(d1)*imag(d2) - imag(d1)*real(d2)
	if math.Abs(denom) < 1e-12 {
		return (l1.Origin + l2.Origin) / 2
	}
	diff := l2.Origin - l1.Origin
	t := (real(diff)*imag(d2) - imag(diff)*real(d2)) / denom
	return l1.Origin + complex(t, 0)*d1
}

func unsignedAngle(a, b, c complex128) float64 {
	v1, v2 := a-b, c-b
	if v1 == 0 || v2 == 0 {
		return 0
	}
	cosT := (real(v1)*real(v2) + imag(v1)*imag(v2)) / (cmplx.Abs(v1) * cmplx.Abs(v2))
	cosT = math.Max(-1, math.Min(1, cosT))
	return math.Acos(cosT)
}

func signedAngle(a, b, c complex128) float64 {
	v1, v2 := a-b, c-b
	return cmplx.Phase(v2) - cmplx.Phase(v1)
}

func lineAngle(l1, l2 value.LineVal) float64 {
	diff := cmplx.Phase(l2.Dir) - cmplx.Phase(l1.Dir)
	for diff > math.Pi/2 {
		diff -= math.Pi
	}
	for diff < -math.Pi/2 {
		diff += math.Pi
	}
	return math.Abs(diff)
}

func angleBisector(a, b, c complex128) value.LineVal {
	v1, v2 := a-b, c-b
	u1 := v1 / complex(cmplx.Abs(v1), 0)
	u2 := v2 / complex(cmplx.Abs(v2), 0)
	dir := u1 + u2
	if cmplx.Abs(dir) < 1e-12 {
		dir = u1 * complex(0, 1)
	}
	return value.LineVal{Origin: b, Dir: dir / complex(cmplx.Abs(dir), 0)}
}

// Reachable computes the transitive operand closure of roots: the induced
// sub-DAG of every node a root depends on, directly or indirectly. Indices
// only ever reference strictly lesser indices, so marking roots and then
// sweeping downward once is enough; no work queue is needed.
func (p *Pool) Reachable(roots []int) []bool {
	marked := make([]bool, len(p.Exprs))
	for _, r := range roots {
		marked[r] = true
	}
	for i := len(p.Exprs) - 1; i >= 0; i-- {
		if !marked[i] {
			continue
		}
		for _, o := range p.Exprs[i].Operands {
			marked[o] = true
		}
	}
	return marked
}
