// Package unroll walks a parsed program and lowers it directly into a
// pool.Pool and a list of ruleset.Rule values. It combines what would
// otherwise be two separate passes (resolving iteration and overloads, then
// hash-consing and dimension-checking the result) into one: the pool's Add
// family already performs CSE and canonicalization as a side effect of
// insertion, so there is no reason to build an intermediate tree only to
// immediately lower it again.
package unroll

import (
	"math/big"

	"github.com/DragonGamesStudios/Geo-AID/ast"
	"github.com/DragonGamesStudios/Geo-AID/err"
	"github.com/DragonGamesStudios/Geo-AID/pool"
	"github.com/DragonGamesStudios/Geo-AID/ruleset"
	"github.com/DragonGamesStudios/Geo-AID/token"
	"github.com/DragonGamesStudios/Geo-AID/value"
)

// UVal is an unrolled value: either a concrete result (a pool index and its
// kind, or a pending rule, or a point collection's component indices) or an
// iterator over branches sharing an iterator id. Exactly one of the concrete
// shapes is populated when Iter is false.
type UVal struct {
	Iter     bool
	Id       int
	Branches []UVal

	Idx        int
	Kind       value.Kind
	Components []int // component pool indices, for PointCollectionKind
	Rule       *ruleset.Rule

	// Label and Style carry a call's [label = ...] / [style = ...]
	// property block forward, so a name bound to the call's result still
	// has them if it's later named in a display query.
	Label string
	Style string
}

// DisplayItem is one value the unroller marked for display, carrying
// whatever shape and style hints its property block attached. A segment
// carries both endpoint indices in Endpoints so export doesn't flatten it
// back into two independent points.
type DisplayItem struct {
	Idx       int
	Endpoints []int
	ItemKind  string
	Label     string
	Style     string
}

// Env is the state threaded through one compilation: the pool being built,
// the name scope, the next free adjustable-vector offset, the rule list, the
// accumulated errors, and the set of pool indices marked for display.
type Env struct {
	Pool           *pool.Pool
	Scope          map[string]UVal
	NextOffset     int
	Rules          []ruleset.Rule
	Errs           err.Errors
	DisplayTargets []DisplayItem

	// singleCurveTargets counts, per bare point name, how many lies_on
	// rules in the whole program target it with a right-hand side that
	// isn't syntactically an iterator or a segment; computed once up front
	// by UnrollProgram. A name with exactly one such rule is eligible for
	// unrollLiesOnFreshPoint's DOF-reducing fast path; a name with more
	// than one lies on two curves at once and spec.md §4.3 item 4 keeps it
	// a FreePoint with both rules retained instead.
	singleCurveTargets map[string]int
}

func New() *Env {
	return &Env{Pool: pool.New(), Scope: map[string]UVal{}}
}

func fold(s string) string { return token.Fold(s) }

func (e *Env) errorf(id string, tok token.Token, args ...any) {
	e.Errs = append(e.Errs, err.New(id, tok, args...))
}

// UnrollProgram lowers every statement of prog into e.
func (e *Env) UnrollProgram(prog *ast.Program) {
	e.singleCurveTargets = countLiesOnTargets(prog)
	for _, s := range prog.Statements {
		e.unrollStatement(s)
	}
}

// countLiesOnTargets walks prog once, before any allocation, tallying how
// many lies_on rules target each bare point name with a right-hand side
// that isn't syntactically an iterator or a segment literal (segment(...)
// or a two-point juxtaposition like AB). It is a syntactic approximation,
// not a full data-flow analysis: a right-hand side that only resolves to an
// iterator or segment indirectly, through a bound name, still counts here,
// but unrollLiesOnFreshPoint re-checks the resolved kind at unroll time and
// falls back safely if the guess was wrong.
func countLiesOnTargets(prog *ast.Program) map[string]int {
	counts := map[string]int{}
	var visitRule func(expr ast.Expression)
	visitRule = func(expr ast.Expression) {
		switch n := expr.(type) {
		case *ast.ChainExpression:
			for i, op := range n.Operators {
				visitRule(&ast.BinaryExpression{Token: n.Token, Operator: op, Left: n.Operands[i], Right: n.Operands[i+1]})
			}
		case *ast.NotExpression:
			visitRule(n.Rule)
		case *ast.BinaryExpression:
			if n.Operator != "lies_on" {
				return
			}
			lit, ok := n.Left.(*ast.PointLiteral)
			if !ok || looksLikeSegmentOrIterator(n.Right) {
				return
			}
			counts[fold(lit.Name)]++
		}
	}
	for _, s := range prog.Statements {
		switch st := s.(type) {
		case *ast.RuleStatement:
			visitRule(st.Rule)
		case *ast.LetStatement:
			for _, r := range st.Rules {
				visitRule(r)
			}
		}
	}
	return counts
}

func looksLikeSegmentOrIterator(expr ast.Expression) bool {
	switch n := expr.(type) {
	case *ast.IteratorExpression:
		return true
	case *ast.PointCollection:
		return len(n.Points) == 2
	case *ast.CallExpression:
		return fold(n.Raw) == "segment"
	default:
		return false
	}
}

func (e *Env) unrollStatement(s ast.Statement) {
	switch st := s.(type) {
	case *ast.LetStatement:
		e.unrollLet(st)
	case *ast.RuleStatement:
		e.unrollRuleExpr(st.Rule)
	case *ast.QueryStatement:
		e.unrollQuery(st)
	default:
		e.errorf("internal/assert", *s.GetToken(), "unhandled statement node")
	}
}

func (e *Env) unrollLet(ls *ast.LetStatement) {
	val := e.unrollExpr(ls.Value)
	e.bindNames(ls.Token, ls.Names, val)
	for _, r := range ls.Rules {
		e.unrollRuleExpr(r)
	}
}

// bindNames implements the two binding shapes a let-statement supports: a
// single name bound to whatever value (iterator or not) the right-hand side
// produces, or several names bound elementwise to the branches of a single
// iterator — whether that's the id-0 iterator the parser builds for a bare
// comma list, or a fresh-id iterator that reached this let's rhs through a
// call, as in intersection((l1, l2, l3), k).
func (e *Env) bindNames(tok token.Token, names []*ast.Ident, val UVal) {
	if len(names) == 1 {
		e.Scope[fold(names[0].Name)] = val
		return
	}
	if !val.Iter {
		e.errorf("iter/arity", tok, len(names), 1)
		return
	}
	if len(val.Branches) != len(names) {
		e.errorf("iter/arity", tok, len(names), len(val.Branches))
		return
	}
	for i, n := range names {
		e.Scope[fold(n.Name)] = val.Branches[i]
	}
}

func (e *Env) unrollQuery(qs *ast.QueryStatement) {
	for _, t := range qs.Targets {
		e.collectDisplay(e.unrollExpr(t))
	}
}

func (e *Env) collectDisplay(u UVal) {
	if u.Iter {
		for _, b := range u.Branches {
			e.collectDisplay(b)
		}
		return
	}
	if len(u.Components) > 0 {
		if u.Kind.IsSegment() {
			e.DisplayTargets = append(e.DisplayTargets, DisplayItem{
				Idx:       u.Components[0],
				Endpoints: u.Components,
				ItemKind:  "segment",
				Label:     u.Label,
				Style:     u.Style,
			})
			return
		}
		for _, c := range u.Components {
			e.DisplayTargets = append(e.DisplayTargets, DisplayItem{Idx: c})
		}
		return
	}
	if u.Rule == nil {
		e.DisplayTargets = append(e.DisplayTargets, DisplayItem{Idx: u.Idx, Label: u.Label, Style: u.Style})
	}
}

// unrollRuleExpr turns an expression used in rule position (a free-standing
// rule statement, or one of a let's trailing rules) into zero or more
// ruleset.Rule entries. Chains and negation are handled structurally here
// rather than by giving UVal a list-of-rules shape, since neither construct
// is meaningful as an ordinary value.
func (e *Env) unrollRuleExpr(expr ast.Expression) {
	switch n := expr.(type) {
	case *ast.ChainExpression:
		for i, op := range n.Operators {
			pair := &ast.BinaryExpression{Token: n.Token, Operator: op, Left: n.Operands[i], Right: n.Operands[i+1]}
			e.unrollRuleExpr(pair)
		}
	case *ast.NotExpression:
		e.emitNot(e.unrollExpr(n.Rule))
	default:
		e.emitRule(e.unrollExpr(expr))
	}
}

func (e *Env) emitRule(u UVal) {
	if u.Iter {
		for _, b := range u.Branches {
			e.emitRule(b)
		}
		return
	}
	if u.Rule != nil {
		e.Rules = append(e.Rules, *u.Rule)
	}
}

func (e *Env) emitNot(u UVal) {
	if u.Iter {
		for _, b := range u.Branches {
			e.emitNot(b)
		}
		return
	}
	if u.Rule != nil {
		e.Rules = append(e.Rules, ruleset.Rule{Op: ruleset.Not, Inner: u.Rule, Weight: 1})
	}
}

// liftApply is the iteration-lifting primitive every multi-argument
// construct (arithmetic, comparisons, lies_on, calls) goes through. It finds
// the smallest iterator id present among args at this level, requires every
// argument sharing that id to have the same branch count, and recurses
// per-branch, leaving non-iterated or larger-id arguments untouched at this
// level so that distinct ids compose as a Cartesian product: the nesting
// falls out of the recursion rather than needing an explicit scheduler.
func liftApply(tok token.Token, args []UVal, f func([]UVal) (UVal, *err.Error)) (UVal, *err.Error) {
	minId := -1
	for _, a := range args {
		if a.Iter && (minId == -1 || a.Id < minId) {
			minId = a.Id
		}
	}
	if minId == -1 {
		return f(args)
	}
	length := -1
	for _, a := range args {
		if a.Iter && a.Id == minId {
			if length == -1 {
				length = len(a.Branches)
			} else if length != len(a.Branches) {
				return UVal{}, err.New("iter/length", tok, minId, length, len(a.Branches))
			}
		}
	}
	branches := make([]UVal, length)
	for i := 0; i < length; i++ {
		sub := make([]UVal, len(args))
		for j, a := range args {
			if a.Iter && a.Id == minId {
				sub[j] = a.Branches[i]
			} else {
				sub[j] = a
			}
		}
		b, e := liftApply(tok, sub, f)
		if e != nil {
			return UVal{}, e
		}
		branches[i] = b
	}
	return UVal{Iter: true, Id: minId, Branches: branches}, nil
}

// negate builds -idx without introducing a new op kind: multiplication by
// the constant -1 leaves the dimension unchanged, since NoUnit is the
// additive identity of the dimension vector.
func (e *Env) negate(idx int, k value.Kind) int {
	negOne := e.Pool.Const(-1, value.NoUnit())
	return e.Pool.Add(pool.OpProduct, k, idx, negOne)
}

// invert builds idx^-1 for use in division, via the power node's exponent
// folding rather than a dedicated reciprocal op kind.
func (e *Env) invert(idx int, k value.Kind) int {
	inv := k.Dim.Scale(big.NewRat(-1, 1))
	return e.Pool.AddPower(idx, big.NewRat(-1, 1), value.Scalar(inv))
}
