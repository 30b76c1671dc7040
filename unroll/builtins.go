package unroll

import (
	"github.com/DragonGamesStudios/Geo-AID/ast"
	"github.com/DragonGamesStudios/Geo-AID/err"
	"github.com/DragonGamesStudios/Geo-AID/pool"
	"github.com/DragonGamesStudios/Geo-AID/ruleset"
	"github.com/DragonGamesStudios/Geo-AID/token"
	"github.com/DragonGamesStudios/Geo-AID/value"
)

// matcher checks whether an argument's kind is assignable to one overload's
// parameter, performing the one conversion the catalog allows: a no-unit
// scalar standing in for a dimensioned one (e.g. a bare "2" where a distance
// is expected), since the numeric value is already expressed in this
// module's canonical unit for that dimension.
type matcher func(UVal) (UVal, bool)

func mPoint(u UVal) (UVal, bool)   { return u, u.Kind.Tag == value.PointKind }
func mLine(u UVal) (UVal, bool)    { return u, u.Kind.Tag == value.LineKind }
func mCircle(u UVal) (UVal, bool)  { return u, u.Kind.Tag == value.CircleKind }
func mSegment(u UVal) (UVal, bool) { return u, u.Kind.IsSegment() }

func mScalar(dim value.Dimension) matcher {
	return func(u UVal) (UVal, bool) {
		if u.Kind.Tag != value.ScalarKind {
			return u, false
		}
		if u.Kind.Dim.Equal(dim) {
			return u, true
		}
		if u.Kind.Dim.IsNoUnit() && !dim.IsNoUnit() {
			u.Kind = value.Scalar(dim)
			return u, true
		}
		return u, false
	}
}

// builder constructs the overload's result from already-matched,
// already-converted arguments.
type builder func(e *Env, tok token.Token, args []UVal, props PropSet) UVal

type overload struct {
	matchers []matcher
	build    builder
}

var builtins = map[string][]overload{
	"point": {
		{matchers: nil, build: buildFreePoint},
		{matchers: []matcher{mScalar(value.Distance()), mScalar(value.Distance())}, build: buildFixedPoint},
	},
	"line": {
		{matchers: []matcher{mPoint, mPoint}, build: buildLine},
	},
	"segment": {
		{matchers: []matcher{mPoint, mPoint}, build: buildSegment},
	},
	"circle": {
		{matchers: []matcher{mPoint, mScalar(value.Distance())}, build: buildCircle},
	},
	"circumcircle": {
		{matchers: []matcher{mPoint, mPoint, mPoint}, build: buildCircumcircle},
	},
	"incircle": {
		{matchers: []matcher{mPoint, mPoint, mPoint}, build: buildIncircle},
	},
	"intersection": {
		{matchers: []matcher{mLine, mLine}, build: buildIntersection},
	},
	"mid": {
		{matchers: []matcher{mPoint, mPoint}, build: buildMid},
		{matchers: []matcher{mScalar(value.Distance()), mScalar(value.Distance())}, build: buildMidScalar},
	},
	"bisector": {
		{matchers: []matcher{mPoint, mPoint, mPoint}, build: buildBisector},
	},
	"parallel_through": {
		{matchers: []matcher{mLine, mPoint}, build: buildParallelThrough},
	},
	"perpendicular_through": {
		{matchers: []matcher{mLine, mPoint}, build: buildPerpendicularThrough},
	},
	"center": {
		{matchers: []matcher{mCircle}, build: buildCenter},
	},
	"radius": {
		{matchers: []matcher{mCircle}, build: buildRadius},
	},
	"dst": {
		{matchers: []matcher{mPoint, mPoint}, build: buildPointPointDistance},
		{matchers: []matcher{mPoint, mLine}, build: buildPointLineDistance},
		{matchers: []matcher{mSegment}, build: buildSegmentLength},
		{matchers: []matcher{mScalar(value.Distance())}, build: buildIdentity},
	},
	"angle": {
		{matchers: []matcher{mPoint, mPoint, mPoint}, build: buildThreePointAngle},
		{matchers: []matcher{mLine, mLine}, build: buildTwoLineAngle},
	},
	"degrees": {{matchers: []matcher{mScalar(value.Angle())}, build: buildIdentity}},
	"radians": {{matchers: []matcher{mScalar(value.Angle())}, build: buildIdentity}},
	"x":       {{matchers: []matcher{mPoint}, build: buildPointX}},
	"y":       {{matchers: []matcher{mPoint}, build: buildPointY}},
}

func init() {
	// "len" and "deg"/"rad" are aliases of catalog entries above; defined
	// here rather than duplicating the overload lists.
	builtins["len"] = builtins["dst"]
	builtins["deg"] = builtins["degrees"]
	builtins["rad"] = builtins["radians"]
}

func (e *Env) unrollCall(c *ast.CallExpression) UVal {
	name := fold(c.Raw)
	table, ok := builtins[name]
	if !ok {
		e.errorf("name/unresolved", c.Token, c.Raw)
		return UVal{}
	}
	props := e.bindProperties(c.Props)
	args := make([]UVal, len(c.Args))
	for i, a := range c.Args {
		args[i] = e.unrollExpr(a)
	}
	result, errv := liftApply(c.Token, args, func(resolved []UVal) (UVal, *err.Error) {
		return e.dispatchOverload(c.Token, name, table, resolved, props)
	})
	if errv != nil {
		e.Errs = append(e.Errs, errv)
		return UVal{}
	}
	result = attachDisplayProps(result, props)
	if props.Display != nil && *props.Display {
		e.collectDisplay(result)
	}
	return result
}

// attachDisplayProps carries a call's [label = ...] / [style = ...] property
// block onto its result, so the name it gets bound to still has them when
// named in a later display query, even if this call itself wasn't marked
// [display = true].
func attachDisplayProps(u UVal, props PropSet) UVal {
	if u.Iter {
		for i := range u.Branches {
			u.Branches[i] = attachDisplayProps(u.Branches[i], props)
		}
		return u
	}
	if props.Label != nil {
		u.Label = *props.Label
	}
	if props.Style != nil {
		u.Style = *props.Style
	}
	return u
}

// dispatchOverload selects the first overload in declaration order whose
// parameters accept the call's arguments. This is not classical overload
// resolution with ambiguity detection: first match wins, and failure to
// match any overload is the only error this produces.
func (e *Env) dispatchOverload(tok token.Token, name string, table []overload, args []UVal, props PropSet) (UVal, *err.Error) {
	for _, ov := range table {
		if len(ov.matchers) != len(args) {
			continue
		}
		converted := make([]UVal, len(args))
		ok := true
		for i, m := range ov.matchers {
			cu, matched := m(args[i])
			if !matched {
				ok = false
				break
			}
			converted[i] = cu
		}
		if !ok {
			continue
		}
		return ov.build(e, tok, converted, props), nil
	}
	kinds := make([]string, len(args))
	for i, a := range args {
		kinds[i] = a.Kind.String()
	}
	return UVal{}, err.New("overload/none", tok, name, kinds)
}

func buildFreePoint(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx, _ := e.Pool.NewEntity(value.FreePoint, -1, value.Point(), &e.NextOffset)
	return UVal{Idx: idx, Kind: value.Point()}
}

// buildFixedPoint constructs a point at explicit coordinates: a free point
// entity constrained by two equalities pinning its x and y against the
// given scalars, rather than a distinct non-adjustable value kind. The
// critic still has to drive this point to (x, y), but with weight 1 on both
// coordinates it converges there as fast as any other single constraint.
func buildFixedPoint(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx, _ := e.Pool.NewEntity(value.FreePoint, -1, value.Point(), &e.NextOffset)
	xIdx := e.Pool.Add(pool.OpPointX, value.Scalar(value.Distance()), idx)
	yIdx := e.Pool.Add(pool.OpPointY, value.Scalar(value.Distance()), idx)
	e.Rules = append(e.Rules,
		ruleset.Rule{Op: ruleset.Equal, Left: xIdx, Right: args[0].Idx, Weight: 1},
		ruleset.Rule{Op: ruleset.Equal, Left: yIdx, Right: args[1].Idx, Weight: 1},
	)
	return UVal{Idx: idx, Kind: value.Point()}
}

func buildLine(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx := e.Pool.Add(pool.OpPointPointLine, value.Line(), args[0].Idx, args[1].Idx)
	return UVal{Idx: idx, Kind: value.Line()}
}

func buildSegment(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx := e.Pool.Add(pool.OpPointPointLine, value.Line(), args[0].Idx, args[1].Idx)
	return UVal{Idx: idx, Kind: value.PointCollection(2), Components: []int{args[0].Idx, args[1].Idx}}
}

func buildCircle(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx := e.Pool.Add(pool.OpConstructCircle, value.Circle(), args[0].Idx, args[1].Idx)
	return UVal{Idx: idx, Kind: value.Circle()}
}

// buildCircumcircle composes the circle through three points from primitives
// already in the pool: the center is the intersection of two perpendicular
// bisectors, and the radius is the center's distance to any one vertex.
func buildCircumcircle(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	a, b, c := args[0].Idx, args[1].Idx, args[2].Idx
	perpBisector := func(p, q int) int {
		mid := e.Pool.Add(pool.OpAveragePoint, value.Point(), p, q)
		line := e.Pool.Add(pool.OpPointPointLine, value.Line(), p, q)
		return e.Pool.Add(pool.OpPerpendicularThrough, value.Line(), line, mid)
	}
	pb1 := perpBisector(a, b)
	pb2 := perpBisector(b, c)
	center := e.Pool.Add(pool.OpLineLineIntersection, value.Point(), pb1, pb2)
	radius := e.Pool.Add(pool.OpPointPointDistance, value.Scalar(value.Distance()), center, a)
	idx := e.Pool.Add(pool.OpConstructCircle, value.Circle(), center, radius)
	return UVal{Idx: idx, Kind: value.Circle()}
}

// buildIncircle composes the incircle from angle bisectors: the incenter is
// the intersection of the bisectors at two vertices, and the radius is its
// distance to any one side.
func buildIncircle(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	a, b, c := args[0].Idx, args[1].Idx, args[2].Idx
	bisA := e.Pool.Add(pool.OpAngleBisector, value.Line(), b, a, c)
	bisB := e.Pool.Add(pool.OpAngleBisector, value.Line(), a, b, c)
	center := e.Pool.Add(pool.OpLineLineIntersection, value.Point(), bisA, bisB)
	ab := e.Pool.Add(pool.OpPointPointLine, value.Line(), a, b)
	radius := e.Pool.Add(pool.OpPointLineDistance, value.Scalar(value.Distance()), center, ab)
	idx := e.Pool.Add(pool.OpConstructCircle, value.Circle(), center, radius)
	return UVal{Idx: idx, Kind: value.Circle()}
}

func buildIntersection(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx := e.Pool.Add(pool.OpLineLineIntersection, value.Point(), args[0].Idx, args[1].Idx)
	return UVal{Idx: idx, Kind: value.Point()}
}

func buildMid(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx := e.Pool.Add(pool.OpAveragePoint, value.Point(), args[0].Idx, args[1].Idx)
	return UVal{Idx: idx, Kind: value.Point()}
}

// buildMidScalar implements the scalar overload of mid: the arithmetic mean
// of two dimensioned quantities, e.g. mid(1cm, 2cm) = 1.5cm.
func buildMidScalar(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	sum := e.Pool.Add(pool.OpSum, args[0].Kind, args[0].Idx, args[1].Idx)
	half := e.Pool.Const(0.5, value.NoUnit())
	idx := e.Pool.Add(pool.OpProduct, args[0].Kind, sum, half)
	return UVal{Idx: idx, Kind: args[0].Kind}
}

func buildBisector(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx := e.Pool.Add(pool.OpAngleBisector, value.Line(), args[0].Idx, args[1].Idx, args[2].Idx)
	return UVal{Idx: idx, Kind: value.Line()}
}

func buildParallelThrough(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx := e.Pool.Add(pool.OpParallelThrough, value.Line(), args[0].Idx, args[1].Idx)
	return UVal{Idx: idx, Kind: value.Line()}
}

func buildPerpendicularThrough(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx := e.Pool.Add(pool.OpPerpendicularThrough, value.Line(), args[0].Idx, args[1].Idx)
	return UVal{Idx: idx, Kind: value.Line()}
}

func buildCenter(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx := e.Pool.Add(pool.OpCircleCenter, value.Point(), args[0].Idx)
	return UVal{Idx: idx, Kind: value.Point()}
}

// buildRadius reuses the radius operand of the circle's own construction
// node rather than introducing a dedicated extraction op.
func buildRadius(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx := e.Pool.CircleRadiusOperand(args[0].Idx)
	return UVal{Idx: idx, Kind: e.Pool.KindOf(idx)}
}

func buildPointPointDistance(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx := e.Pool.Add(pool.OpPointPointDistance, value.Scalar(value.Distance()), args[0].Idx, args[1].Idx)
	return UVal{Idx: idx, Kind: value.Scalar(value.Distance())}
}

func buildPointLineDistance(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx := e.Pool.Add(pool.OpPointLineDistance, value.Scalar(value.Distance()), args[0].Idx, args[1].Idx)
	return UVal{Idx: idx, Kind: value.Scalar(value.Distance())}
}

func buildSegmentLength(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	seg := args[0]
	idx := e.Pool.Add(pool.OpPointPointDistance, value.Scalar(value.Distance()), seg.Components[0], seg.Components[1])
	return UVal{Idx: idx, Kind: value.Scalar(value.Distance())}
}

// buildThreePointAngle honors a "directed" property (a signed angle) when
// present; otherwise it is the unsigned angle ABC.
func buildThreePointAngle(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	kind := pool.OpThreePointAngle
	if props.Directed != nil && *props.Directed {
		kind = pool.OpThreePointAngleDir
	}
	idx := e.Pool.Add(kind, value.Scalar(value.Angle()), args[0].Idx, args[1].Idx, args[2].Idx)
	return UVal{Idx: idx, Kind: value.Scalar(value.Angle())}
}

func buildTwoLineAngle(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx := e.Pool.Add(pool.OpTwoLineAngle, value.Scalar(value.Angle()), args[0].Idx, args[1].Idx)
	return UVal{Idx: idx, Kind: value.Scalar(value.Angle())}
}

func buildPointX(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx := e.Pool.Add(pool.OpPointX, value.Scalar(value.Distance()), args[0].Idx)
	return UVal{Idx: idx, Kind: value.Scalar(value.Distance())}
}

func buildPointY(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	idx := e.Pool.Add(pool.OpPointY, value.Scalar(value.Distance()), args[0].Idx)
	return UVal{Idx: idx, Kind: value.Scalar(value.Distance())}
}

// buildIdentity implements degrees/radians: both are display hints over a
// value already stored in canonical radians, so lowering passes the operand
// through unchanged. It also implements dst on a scalar, whose matcher has
// already given a no-unit operand the distance dimension.
func buildIdentity(e *Env, tok token.Token, args []UVal, props PropSet) UVal {
	return args[0]
}
