package critic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DragonGamesStudios/Geo-AID/pool"
	"github.com/DragonGamesStudios/Geo-AID/ruleset"
	"github.com/DragonGamesStudios/Geo-AID/value"
)

// twoFreePointsEqual builds a pool with two FreePoint entities, A and B, plus
// an Equal(A,B) rule, and returns the compiled program; its adjustable vector
// is laid out as [Ax, Ay, Bx, By].
func twoFreePointsEqual(t *testing.T) *Program {
	t.Helper()
	p := pool.New()
	offset := 0
	a, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	b, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	rules := []ruleset.Rule{ruleset.NewEqual(a, b, 1)}
	return Compile(p, rules)
}

func TestEqualRuleQualityIsOneWhenPointsCoincide(t *testing.T) {
	prog := twoFreePointsEqual(t)
	x := []float64{1, 2, 1, 2}
	total, perRule := prog.Evaluate(x)
	require.Len(t, perRule, 1)
	assert.InDelta(t, 1.0, perRule[0], 1e-9)
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestEqualRuleQualityDecreasesWithDistance(t *testing.T) {
	prog := twoFreePointsEqual(t)
	_, near := prog.Evaluate([]float64{0, 0, 0.01, 0})
	_, far := prog.Evaluate([]float64{0, 0, 100, 0})
	assert.Greater(t, near[0], far[0], "a closer pair must score better than a farther one")
}

func TestQualityIsAlwaysInUnitInterval(t *testing.T) {
	prog := twoFreePointsEqual(t)
	for _, x := range [][]float64{
		{0, 0, 0, 0},
		{0, 0, 1e6, 1e6},
		{-50, 30, 12, -7},
	} {
		total, perRule := prog.Evaluate(x)
		assert.GreaterOrEqual(t, total, 0.0)
		assert.LessOrEqual(t, total, 1.0)
		for _, q := range perRule {
			assert.GreaterOrEqual(t, q, 0.0)
			assert.LessOrEqual(t, q, 1.0)
		}
	}
}

func TestLessRuleQualityCrossesOneHalfAtEquality(t *testing.T) {
	p := pool.New()
	a := p.Const(1, value.NoUnit())
	b := p.Const(1, value.NoUnit())
	rules := []ruleset.Rule{ruleset.NewLess(a, b, 1)}
	prog := Compile(p, rules)
	_, perRule := prog.Evaluate(nil)
	assert.InDelta(t, sigmoid(0), perRule[0], 1e-9, "less(a,a) must sit exactly at sigmoid(0) = 0.5")
}

func TestNotRuleInvertsInnerQuality(t *testing.T) {
	p := pool.New()
	a := p.Const(1, value.NoUnit())
	b := p.Const(1, value.NoUnit())
	inner := ruleset.NewEqual(a, b, 1)
	rules := []ruleset.Rule{ruleset.NewNot(inner, 1)}
	prog := Compile(p, rules)
	_, perRule := prog.Evaluate(nil)
	assert.InDelta(t, 0.0, perRule[0], 1e-9, "not(equal(a,a)) must be unsatisfied since equal(a,a) is fully satisfied")
}

func TestPerAdjustableQualityStaysInUnitInterval(t *testing.T) {
	prog := twoFreePointsEqual(t)
	x := []float64{0, 0, 3, 4}
	_, perRule := prog.Evaluate(x)
	lastDelta := []float64{0.1, 0.0, 0.0, 0.2}
	q := prog.PerAdjustableQuality(perRule, lastDelta, len(x))
	require.Len(t, q, len(x))
	for _, v := range q {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestPerAdjustableQualitySplitsEvenlyWithoutSensitivitySignal(t *testing.T) {
	prog := twoFreePointsEqual(t)
	x := []float64{0, 0, 10, 0}
	_, perRule := prog.Evaluate(x)
	zeroDelta := make([]float64, 4)
	q := prog.PerAdjustableQuality(perRule, zeroDelta, 4)
	assert.InDelta(t, q[0], q[2], 1e-9, "with no sensitivity signal, dissatisfaction splits evenly across the rule's adjustables")
}

// segmentFixture builds a pool with a fixed segment A=(0,0), B=(10,0) and a
// FreePoint P, plus a lies_on(P, segment(A,B)) rule, returning the compiled
// program and a function that places P at (px, py) and reads back the rule
// quality.
func segmentFixture(t *testing.T) (*Program, func(px, py float64) float64) {
	t.Helper()
	p := pool.New()
	offset := 0
	// A and B are FreePoint entities pinned by the adjustable vector itself
	// (to (0,0) and (10,0) in eval below), exercising the same rule shape a
	// real user-declared segment would produce.
	aIdx, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	bIdx, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	pIdx, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	lineIdx := p.Add(pool.OpPointPointLine, value.Line(), aIdx, bIdx)
	rule := ruleset.NewLiesOnSegment(pIdx, lineIdx, aIdx, bIdx, 1)
	prog := Compile(p, []ruleset.Rule{rule})
	eval := func(px, py float64) float64 {
		x := []float64{0, 0, 10, 0, px, py}
		_, perRule := prog.Evaluate(x)
		return perRule[0]
	}
	return prog, eval
}

func TestLiesOnSegmentPenalizesPastEndpoint(t *testing.T) {
	_, eval := segmentFixture(t)
	onSegment := eval(5, 0)
	pastEndpoint := eval(20, 0)
	assert.Greater(t, onSegment, pastEndpoint, "a point on the segment must score higher than one on the same line but past its endpoint")
}

func TestLiesOnSegmentMatchesLineQualityWithinBounds(t *testing.T) {
	_, eval := segmentFixture(t)
	mid := eval(5, 0)
	assert.InDelta(t, 1.0, mid, 1e-9, "a point exactly on the segment, between its endpoints, must score perfectly")
}

func TestSigmoidIsMonotonic(t *testing.T) {
	assert.Less(t, sigmoid(-1), sigmoid(0))
	assert.Less(t, sigmoid(0), sigmoid(1))
	assert.True(t, math.Abs(sigmoid(0)-0.5) < 1e-9)
}
