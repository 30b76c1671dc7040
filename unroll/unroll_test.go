package unroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DragonGamesStudios/Geo-AID/lexer"
	"github.com/DragonGamesStudios/Geo-AID/parser"
	"github.com/DragonGamesStudios/Geo-AID/pool"
	"github.com/DragonGamesStudios/Geo-AID/value"
)

func unrollSource(t *testing.T, src string) *Env {
	t.Helper()
	toks := lexer.New("test", src).Tokens()
	p := parser.New(toks)
	prog := p.ParseProgram()
	require.False(t, p.Errors.HasErrors(), "unexpected parse errors for %q: %v", src, p.Errors)
	e := New()
	e.UnrollProgram(prog)
	return e
}

func TestMidpointProducesAverageAndNoErrors(t *testing.T) {
	e := unrollSource(t, "let A, B = Point(), Point(); let M = mid(A, B); ? M;")
	require.Empty(t, e.Errs, "%v", e.Errs)
	m, ok := e.Scope["m"]
	require.True(t, ok, "M must be bound")
	require.False(t, m.Iter)
	assert.Equal(t, pool.OpAveragePoint, e.Pool.Exprs[m.Idx].Kind)
	require.Len(t, e.DisplayTargets, 1)
	assert.Equal(t, m.Idx, e.DisplayTargets[0].Idx)
}

func TestParenthesizedIteratorBindsMultipleNamesFromACall(t *testing.T) {
	e := unrollSource(t, `
		let A, B, C, D, E, F, G, H = Point(), Point(), Point(), Point(), Point(), Point(), Point(), Point();
		let l1 = line(A, B);
		let l2 = line(C, D);
		let l3 = line(E, F);
		let k = line(G, H);
		let P, Q, R = intersection((l1, l2, l3), k);
	`)
	require.Empty(t, e.Errs, "%v", e.Errs)
	p, pok := e.Scope["p"]
	q, qok := e.Scope["q"]
	r, rok := e.Scope["r"]
	require.True(t, pok)
	require.True(t, qok)
	require.True(t, rok)
	assert.False(t, p.Iter)
	assert.False(t, q.Iter)
	assert.False(t, r.Iter)
	assert.Equal(t, pool.OpLineLineIntersection, e.Pool.Exprs[p.Idx].Kind)
	assert.Equal(t, pool.OpLineLineIntersection, e.Pool.Exprs[q.Idx].Kind)
	assert.Equal(t, pool.OpLineLineIntersection, e.Pool.Exprs[r.Idx].Kind)
	assert.NotEqual(t, p.Idx, q.Idx)
	assert.NotEqual(t, q.Idx, r.Idx)
}

func TestAddingDistanceAndAngleScalarsIsADimensionError(t *testing.T) {
	e := unrollSource(t, "let a = 1cm; let b = 30deg; let c = a + b;")
	require.NotEmpty(t, e.Errs)
	found := false
	for _, er := range e.Errs {
		if er.Id == "type/dimension" {
			found = true
		}
	}
	assert.True(t, found, "expected a type/dimension error, got %v", e.Errs)
}

func TestDegreesLiteralConvertsToRadians(t *testing.T) {
	e := unrollSource(t, "let a = 30deg;")
	require.Empty(t, e.Errs, "%v", e.Errs)
	a, ok := e.Scope["a"]
	require.True(t, ok)
	expr := e.Pool.Exprs[a.Idx]
	require.Equal(t, pool.OpConst, expr.Kind)
	assert.InDelta(t, 3.14159265358979/6, expr.Const, 1e-9)
}

func TestMidOfAPointAndADistanceHasNoMatchingOverload(t *testing.T) {
	e := unrollSource(t, "let A = Point(); let m = mid(A, 1cm);")
	require.NotEmpty(t, e.Errs)
	assert.Equal(t, "overload/none", e.Errs[0].Id)
}

func TestFreeStandingRuleStatementIsRecorded(t *testing.T) {
	e := unrollSource(t, "let A, B = Point(), Point(); A = B;")
	require.Empty(t, e.Errs, "%v", e.Errs)
	require.Len(t, e.Rules, 1)
}

func TestMidOfTwoDistanceScalarsAveragesThem(t *testing.T) {
	e := unrollSource(t, "let m = mid(1cm, 2cm);")
	require.Empty(t, e.Errs, "%v", e.Errs)
	m, ok := e.Scope["m"]
	require.True(t, ok, "m must be bound")
	values := e.Pool.Evaluate(nil)
	assert.InDelta(t, 1.5, values[m.Idx].AsScalar(), 1e-9)
}

func TestPointLiesOnFreshOnLineBecomesPointOnLineEntity(t *testing.T) {
	e := unrollSource(t, `
		let A, B = Point(), Point();
		let l = line(A, B);
		P lies_on l;
	`)
	require.Empty(t, e.Errs, "%v", e.Errs)
	p, ok := e.Scope["p"]
	require.True(t, ok, "P must be bound")
	require.Empty(t, e.Rules, "incidence is structural, not a soft rule")
	entExpr := e.Pool.Exprs[p.Idx]
	require.Equal(t, pool.OpEntity, entExpr.Kind)
	ent := e.Pool.Entities[entExpr.Entity]
	assert.Equal(t, value.PointOnLine, ent.Kind)
	assert.Equal(t, 1, ent.Width())
}

func TestPointLiesOnTwoCurvesStaysFreePointWithBothRules(t *testing.T) {
	e := unrollSource(t, `
		let A, B, O = Point(), Point(), Point();
		let l = line(A, B);
		let c = circle(O, 1cm);
		P lies_on l;
		P lies_on c;
	`)
	require.Empty(t, e.Errs, "%v", e.Errs)
	p, ok := e.Scope["p"]
	require.True(t, ok, "P must be bound")
	entExpr := e.Pool.Exprs[p.Idx]
	require.Equal(t, pool.OpEntity, entExpr.Kind)
	ent := e.Pool.Entities[entExpr.Entity]
	assert.Equal(t, value.FreePoint, ent.Kind, "a point constrained by two curves keeps both as soft rules instead")
	assert.Len(t, e.Rules, 2)
}

func TestLabelAndStylePropertiesSurviveToADisplayTarget(t *testing.T) {
	e := unrollSource(t, `let A, B = Point(), Point(); let M = mid(A, B) [label = "M", style = dashed]; ? M;`)
	require.Empty(t, e.Errs, "%v", e.Errs)
	require.Len(t, e.DisplayTargets, 1)
	assert.Equal(t, "M", e.DisplayTargets[0].Label)
	assert.Equal(t, "dashed", e.DisplayTargets[0].Style)
}

func TestQueriedSegmentStaysOneDisplayItemWithBothEndpoints(t *testing.T) {
	e := unrollSource(t, `
		let A, B = Point(), Point();
		? segment(A, B) [style = dashed, label = "AB"];
	`)
	require.Empty(t, e.Errs, "%v", e.Errs)
	a, aok := e.Scope["a"]
	b, bok := e.Scope["b"]
	require.True(t, aok)
	require.True(t, bok)
	require.Len(t, e.DisplayTargets, 1, "a segment must not flatten into two point items")
	item := e.DisplayTargets[0]
	assert.Equal(t, "segment", item.ItemKind)
	assert.Equal(t, []int{a.Idx, b.Idx}, item.Endpoints)
	assert.Equal(t, "dashed", item.Style)
	assert.Equal(t, "AB", item.Label)
}

func TestUnstyledQueryTargetFallsBackToImplicitPointKind(t *testing.T) {
	e := unrollSource(t, "let A, B = Point(), Point(); let M = mid(A, B); ? M;")
	require.Empty(t, e.Errs, "%v", e.Errs)
	require.Len(t, e.DisplayTargets, 1)
	assert.Equal(t, "", e.DisplayTargets[0].ItemKind)
	assert.Equal(t, "", e.DisplayTargets[0].Label)
}

func TestBareCommaLetWithWrongBranchCountIsArityError(t *testing.T) {
	toks := lexer.New("test", "let A, B, C = Point(), Point();").Tokens()
	p := parser.New(toks)
	prog := p.ParseProgram()
	require.False(t, p.Errors.HasErrors())
	e := New()
	e.UnrollProgram(prog)
	require.NotEmpty(t, e.Errs)
	assert.Equal(t, "iter/arity", e.Errs[0].Id)
}
