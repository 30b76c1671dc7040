package unroll

import (
	"math/big"

	"github.com/DragonGamesStudios/Geo-AID/ast"
	"github.com/DragonGamesStudios/Geo-AID/err"
	"github.com/DragonGamesStudios/Geo-AID/pool"
	"github.com/DragonGamesStudios/Geo-AID/ruleset"
	"github.com/DragonGamesStudios/Geo-AID/value"
)

func (e *Env) unrollExpr(expr ast.Expression) UVal {
	switch n := expr.(type) {
	case *ast.Ident:
		return e.lookupIdent(n)
	case *ast.PointLiteral:
		return e.lookupPoint(n)
	case *ast.PointCollection:
		return e.unrollPointCollection(n)
	case *ast.StringLiteral:
		return UVal{}
	case *ast.NumberLiteral:
		return e.unrollNumber(n)
	case *ast.CallExpression:
		return e.unrollCall(n)
	case *ast.IteratorExpression:
		return e.unrollIterator(n)
	case *ast.BinaryExpression:
		return e.unrollBinary(n)
	case *ast.NotExpression:
		// A Not used as a value rather than in rule position has no meaning;
		// treat it as a rule expression and hand back whatever rule it built
		// so an enclosing chain or comparison at least gets something typed.
		result, _ := liftApply(n.Token, []UVal{e.unrollExpr(n.Rule)}, func(args []UVal) (UVal, *err.Error) {
			if args[0].Rule == nil {
				return UVal{}, nil
			}
			r := ruleset.NewNot(*args[0].Rule, 1)
			return UVal{Rule: &r}, nil
		})
		return result
	default:
		e.errorf("internal/assert", *expr.GetToken(), "unhandled expression node")
		return UVal{}
	}
}

func (e *Env) lookupIdent(n *ast.Ident) UVal {
	name := fold(n.Name)
	if v, ok := e.Scope[name]; ok {
		return v
	}
	e.errorf("name/unresolved", n.Token, n.Name)
	return UVal{}
}

// lookupPoint resolves a bare point name. The first reference to a name that
// is not already bound (by a 'let' or an earlier bare use) implicitly
// declares it as a free point entity; GeoScript never requires every point
// to be introduced by 'let'.
func (e *Env) lookupPoint(n *ast.PointLiteral) UVal {
	name := fold(n.Name)
	if v, ok := e.Scope[name]; ok {
		return v
	}
	idx, _ := e.Pool.NewEntity(value.FreePoint, -1, value.Point(), &e.NextOffset)
	u := UVal{Idx: idx, Kind: value.Point()}
	e.Scope[name] = u
	return u
}

func (e *Env) unrollPointCollection(pc *ast.PointCollection) UVal {
	comps := make([]int, len(pc.Points))
	for i, p := range pc.Points {
		comps[i] = e.lookupPoint(p).Idx
	}
	return UVal{Kind: value.PointCollection(len(comps)), Components: comps}
}

func (e *Env) unrollNumber(n *ast.NumberLiteral) UVal {
	val := n.Value
	dim := value.NoUnit()
	if n.Unit != "" {
		factor, d, ok := unitFor(n.Unit)
		if !ok {
			e.errorf("lex/unit/unknown", n.Token, n.Unit)
			return UVal{}
		}
		val *= factor
		dim = d
	}
	idx := e.Pool.Const(val, dim)
	return UVal{Idx: idx, Kind: value.Scalar(dim)}
}

func (e *Env) unrollIterator(it *ast.IteratorExpression) UVal {
	branches := make([]UVal, len(it.Branches))
	for i, b := range it.Branches {
		branches[i] = e.unrollExpr(b)
	}
	return UVal{Iter: true, Id: it.Id, Branches: branches}
}

func (e *Env) unrollBinary(b *ast.BinaryExpression) UVal {
	switch b.Operator {
	case "+", "-", "*", "/":
		return e.unrollArith(b)
	case "^":
		return e.unrollPower(b)
	case "=", "<", "<=", ">", ">=":
		return e.unrollComparison(b)
	case "lies_on":
		return e.unrollLiesOn(b)
	default:
		e.errorf("internal/assert", b.Token, "unknown operator "+b.Operator)
		return UVal{}
	}
}

func (e *Env) unrollArith(b *ast.BinaryExpression) UVal {
	left := e.unrollExpr(b.Left)
	right := e.unrollExpr(b.Right)
	result, errv := liftApply(b.Token, []UVal{left, right}, func(args []UVal) (UVal, *err.Error) {
		l, r := args[0], args[1]
		if l.Kind.Tag != value.ScalarKind || r.Kind.Tag != value.ScalarKind {
			return UVal{}, err.New("type/kind", b.Token, "Scalar", l.Kind.String())
		}
		switch b.Operator {
		case "+":
			if !l.Kind.Dim.Equal(r.Kind.Dim) {
				return UVal{}, err.New("type/dimension", b.Token, l.Kind.Dim.String(), r.Kind.Dim.String(), "+")
			}
			idx := e.Pool.Add(pool.OpSum, l.Kind, l.Idx, r.Idx)
			return UVal{Idx: idx, Kind: l.Kind}, nil
		case "-":
			if !l.Kind.Dim.Equal(r.Kind.Dim) {
				return UVal{}, err.New("type/dimension", b.Token, l.Kind.Dim.String(), r.Kind.Dim.String(), "-")
			}
			negR := e.negate(r.Idx, r.Kind)
			idx := e.Pool.Add(pool.OpSum, l.Kind, l.Idx, negR)
			return UVal{Idx: idx, Kind: l.Kind}, nil
		case "*":
			k := value.Scalar(l.Kind.Dim.Add(r.Kind.Dim))
			idx := e.Pool.Add(pool.OpProduct, k, l.Idx, r.Idx)
			return UVal{Idx: idx, Kind: k}, nil
		case "/":
			invR := e.invert(r.Idx, r.Kind)
			k := value.Scalar(l.Kind.Dim.Add(r.Kind.Dim.Scale(big.NewRat(-1, 1))))
			idx := e.Pool.Add(pool.OpProduct, k, l.Idx, invR)
			return UVal{Idx: idx, Kind: k}, nil
		}
		panic("unreachable")
	})
	if errv != nil {
		e.Errs = append(e.Errs, errv)
		return UVal{}
	}
	return result
}

// unrollPower only supports a literal, unit-less exponent: dimensional
// scaling by a runtime scalar has no well-defined result dimension, so the
// grammar only ever feeds AddPower a compile-time rational.
func (e *Env) unrollPower(b *ast.BinaryExpression) UVal {
	left := e.unrollExpr(b.Left)
	numLit, ok := b.Right.(*ast.NumberLiteral)
	if !ok || numLit.Unit != "" {
		e.errorf("type/exponent", b.Token, "?", left.Kind.Dim.String())
		return UVal{}
	}
	result, errv := liftApply(b.Token, []UVal{left}, func(args []UVal) (UVal, *err.Error) {
		l := args[0]
		if l.Kind.Tag != value.ScalarKind {
			return UVal{}, err.New("type/kind", b.Token, "Scalar", l.Kind.String())
		}
		expRat := new(big.Rat).SetFloat64(numLit.Value)
		if expRat == nil {
			return UVal{}, err.New("type/exponent", b.Token, numLit.Token.Literal, l.Kind.Dim.String())
		}
		newDim := l.Kind.Dim.Scale(expRat)
		idx := e.Pool.AddPower(l.Idx, expRat, value.Scalar(newDim))
		return UVal{Idx: idx, Kind: value.Scalar(newDim)}, nil
	})
	if errv != nil {
		e.Errs = append(e.Errs, errv)
		return UVal{}
	}
	return result
}

func (e *Env) unrollComparison(b *ast.BinaryExpression) UVal {
	left := e.unrollExpr(b.Left)
	right := e.unrollExpr(b.Right)
	result, errv := liftApply(b.Token, []UVal{left, right}, func(args []UVal) (UVal, *err.Error) {
		l, r := args[0], args[1]
		if !l.Kind.Equal(r.Kind) {
			return UVal{}, err.New("type/kind", b.Token, l.Kind.String(), r.Kind.String())
		}
		var op ruleset.Op
		switch b.Operator {
		case "=":
			op = ruleset.Equal
		case "<", "<=":
			op = ruleset.Less
		case ">", ">=":
			op = ruleset.Less
			l, r = r, l
		}
		rule := ruleset.Rule{Op: op, Left: l.Idx, Right: r.Idx, Weight: 1}
		return UVal{Rule: &rule}, nil
	})
	if errv != nil {
		e.Errs = append(e.Errs, errv)
		return UVal{}
	}
	return result
}

// unrollLiesOn builds a lies_on rule. The right-hand side may be a line, a
// circle, or a length-2 point collection standing in for a segment; in the
// segment case the rule carries the endpoints alongside the line through
// them, so the critic can penalize a foot of perpendicular that falls
// outside the segment (spec.md §4.4) rather than accepting any point on the
// infinite line.
//
// When the left-hand side is a bare point name not yet bound to anything,
// lies_on against a plain Line or Circle is handled by
// unrollLiesOnFreshPoint instead of falling through to a soft rule: spec.md
// §4.3 item 4 mandates that such a point is declared directly as a
// PointOnLine/PointOnCircle entity, with 1 degree of freedom rather than a
// FreePoint's 2, not merely nudged toward the curve by a weighted penalty.
func (e *Env) unrollLiesOn(b *ast.BinaryExpression) UVal {
	var right UVal
	haveRight := false
	if lit, ok := b.Left.(*ast.PointLiteral); ok {
		name := fold(lit.Name)
		if _, bound := e.Scope[name]; !bound && e.singleCurveTargets[name] == 1 {
			r, u, handled := e.unrollLiesOnFreshPoint(b, lit)
			if handled {
				return u
			}
			right, haveRight = r, true
		}
	}
	left := e.unrollExpr(b.Left)
	if !haveRight {
		right = e.unrollExpr(b.Right)
	}
	result, errv := liftApply(b.Token, []UVal{left, right}, func(args []UVal) (UVal, *err.Error) {
		return e.buildLiesOnRule(b, args[0], args[1])
	})
	if errv != nil {
		e.Errs = append(e.Errs, errv)
		return UVal{}
	}
	return result
}

// unrollLiesOnFreshPoint allocates a not-yet-referenced point directly as a
// curve-parameterized entity instead of a FreePoint plus a soft rule. It
// only takes this fast path when the right-hand side resolves, without
// lifting, to a single Line or Circle; an iterator or a segment falls back
// to the general path in unrollLiesOn (a segment's out-of-bounds penalty
// needs the point free to leave the line, and an iterated right-hand side
// has no single curve to parameterize the point by). handled reports
// whether the fast path applied (successfully or with an error already
// recorded); right is always the already-unrolled right-hand side, handed
// back so the caller never evaluates it twice.
func (e *Env) unrollLiesOnFreshPoint(b *ast.BinaryExpression, lit *ast.PointLiteral) (right UVal, u UVal, handled bool) {
	right = e.unrollExpr(b.Right)
	if right.Iter || right.Kind.IsSegment() {
		return right, UVal{}, false
	}
	var kind value.EntityKind
	switch right.Kind.Tag {
	case value.LineKind:
		kind = value.PointOnLine
	case value.CircleKind:
		kind = value.PointOnCircle
	default:
		e.errorf("type/kind", b.Token, "Line, Circle or segment", right.Kind.String())
		return right, UVal{}, true
	}
	idx, _ := e.Pool.NewEntity(kind, right.Idx, value.Point(), &e.NextOffset)
	e.Scope[fold(lit.Name)] = UVal{Idx: idx, Kind: value.Point()}
	return right, UVal{}, true
}

func (e *Env) buildLiesOnRule(b *ast.BinaryExpression, p, curve UVal) (UVal, *err.Error) {
	if p.Kind.Tag != value.PointKind {
		return UVal{}, err.New("type/kind", b.Token, "Point", p.Kind.String())
	}
	var rule ruleset.Rule
	switch {
	case curve.Kind.Tag == value.LineKind, curve.Kind.Tag == value.CircleKind:
		rule = ruleset.NewLiesOn(p.Idx, curve.Idx, 1)
	case curve.Kind.IsSegment():
		a, bb := curve.Components[0], curve.Components[1]
		rule = ruleset.NewLiesOnSegment(p.Idx, curve.Idx, a, bb, 1)
	default:
		return UVal{}, err.New("type/kind", b.Token, "Line, Circle or segment", curve.Kind.String())
	}
	return UVal{Rule: &rule}, nil
}
