package pool

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DragonGamesStudios/Geo-AID/value"
)

func TestConstIsHashConsed(t *testing.T) {
	p := New()
	a := p.Const(1.5, value.NoUnit())
	b := p.Const(1.5, value.NoUnit())
	assert.Equal(t, a, b, "identical constants must collapse to the same index")
	assert.Equal(t, 1, p.Len())
}

func TestCommutativeSumCanonicalizesOperandOrder(t *testing.T) {
	p := New()
	offset := 0
	aPt, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	bPt, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	a := p.Add(OpPointX, value.Scalar(value.NoUnit()), aPt)
	b := p.Add(OpPointX, value.Scalar(value.NoUnit()), bPt)
	sumAB := p.Add(OpSum, value.Scalar(value.NoUnit()), a, b)
	sumBA := p.Add(OpSum, value.Scalar(value.NoUnit()), b, a)
	assert.Equal(t, sumAB, sumBA, "sum(a,b) and sum(b,a) must hash-cons to one index")
}

func TestNonCommutativeOperandsAreNotReordered(t *testing.T) {
	p := New()
	offset := 0
	aPt, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	bPt, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	idx := p.Add(OpPointPointDistance, value.Scalar(value.Distance()), aPt, bPt)
	assert.Equal(t, []int{aPt, bPt}, p.Exprs[idx].Operands)
}

func TestAddFoldsTwoConstsIntoOne(t *testing.T) {
	p := New()
	a := p.Const(1, value.NoUnit())
	b := p.Const(2, value.NoUnit())
	sum := p.Add(OpSum, value.Scalar(value.NoUnit()), a, b)
	require.Equal(t, OpConst, p.Exprs[sum].Kind, "sum of two consts must fold to a const")
	assert.Equal(t, 3.0, p.Exprs[sum].Const)

	product := p.Add(OpProduct, value.Scalar(value.NoUnit()), a, b)
	require.Equal(t, OpConst, p.Exprs[product].Kind)
	assert.Equal(t, 2.0, p.Exprs[product].Const)
}

func TestAddFoldsAdditiveAndMultiplicativeIdentities(t *testing.T) {
	p := New()
	offset := 0
	pt, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	a := p.Add(OpPointX, value.Scalar(value.NoUnit()), pt)

	zero := p.Const(0, value.NoUnit())
	one := p.Const(1, value.NoUnit())

	assert.Equal(t, a, p.Add(OpSum, value.Scalar(value.NoUnit()), a, zero), "a+0 must fold to a")
	assert.Equal(t, a, p.Add(OpSum, value.Scalar(value.NoUnit()), zero, a), "0+a must fold to a")
	assert.Equal(t, a, p.Add(OpProduct, value.Scalar(value.NoUnit()), a, one), "a*1 must fold to a")
	assert.Equal(t, a, p.Add(OpProduct, value.Scalar(value.NoUnit()), one, a), "1*a must fold to a")

	negOne := p.Const(-1, value.NoUnit())
	negA := p.Add(OpProduct, value.Scalar(value.NoUnit()), a, negOne)
	sum := p.Add(OpSum, value.Scalar(value.NoUnit()), a, negA)
	require.Equal(t, OpConst, p.Exprs[sum].Kind, "a+(-a) must fold to a const")
	assert.Equal(t, 0.0, p.Exprs[sum].Const)
}

func TestAddFoldsMidpointOfAPointWithItself(t *testing.T) {
	p := New()
	offset := 0
	pt, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	mid := p.Add(OpAveragePoint, value.Point(), pt, pt)
	assert.Equal(t, pt, mid, "midpoint(A,A) must fold to A")
}

func TestAddFoldsDistanceOfAPointToItself(t *testing.T) {
	p := New()
	offset := 0
	pt, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	d := p.Add(OpPointPointDistance, value.Scalar(value.Distance()), pt, pt)
	require.Equal(t, OpConst, p.Exprs[d].Kind, "distance(P,P) must fold to a const")
	assert.Equal(t, 0.0, p.Exprs[d].Const)
}

func TestAddFoldsIntersectionOfLinesSharingAPoint(t *testing.T) {
	p := New()
	offset := 0
	a, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	q, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	r, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	l1 := p.Add(OpPointPointLine, value.Line(), a, q)
	l2 := p.Add(OpPointPointLine, value.Line(), q, r)
	intersection := p.Add(OpLineLineIntersection, value.Point(), l1, l2)
	assert.Equal(t, q, intersection, "intersection(line(A,Q),line(Q,R)) must fold to Q")
}

func TestAddFoldsDegenerateBisectorToTheArmLine(t *testing.T) {
	p := New()
	offset := 0
	a, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	b, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	bisector := p.Add(OpAngleBisector, value.Line(), a, b, a)
	line := p.Add(OpPointPointLine, value.Line(), a, b)
	assert.Equal(t, line, bisector, "bisector(A,B,A) must fold to line(A,B)")
}

func TestPowerOfPowerFoldsExponents(t *testing.T) {
	p := New()
	base := p.Const(2, value.NoUnit())
	inner := p.AddPower(base, big.NewRat(2, 1), value.Scalar(value.NoUnit()))
	outer := p.AddPower(inner, big.NewRat(3, 1), value.Scalar(value.NoUnit()))
	require.Equal(t, OpPower, p.Exprs[outer].Kind)
	assert.Equal(t, base, p.Exprs[outer].Operands[0], "power-of-power must fold onto the original base")
	assert.Equal(t, 0, p.Exprs[outer].Exponent.Cmp(big.NewRat(6, 1)), "2^2 then ^3 must fold to exponent 6")
}

func TestPowerByOneIsIdentity(t *testing.T) {
	p := New()
	base := p.Const(5, value.NoUnit())
	idx := p.AddPower(base, big.NewRat(1, 1), value.Scalar(value.NoUnit()))
	assert.Equal(t, base, idx, "raising to the power 1 must return the base unchanged")
}

func TestIndicesOnlyReferenceStrictlyLesserIndices(t *testing.T) {
	p := New()
	offset := 0
	pt, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	a := p.Add(OpPointX, value.Scalar(value.NoUnit()), pt)
	b := p.Const(2, value.NoUnit())
	sum := p.Add(OpSum, value.Scalar(value.NoUnit()), a, b)
	for _, op := range p.Exprs[sum].Operands {
		assert.Less(t, op, sum, "every operand must be a strictly lesser index than its parent")
	}
}

func TestReachableIncludesTransitiveOperands(t *testing.T) {
	p := New()
	offset := 0
	pt, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	a := p.Add(OpPointX, value.Scalar(value.NoUnit()), pt)
	b := p.Const(2, value.NoUnit())
	sum := p.Add(OpSum, value.Scalar(value.NoUnit()), a, b)
	unused := p.Const(99, value.NoUnit())

	marked := p.Reachable([]int{sum})
	assert.True(t, marked[sum])
	assert.True(t, marked[a])
	assert.True(t, marked[b])
	assert.False(t, marked[unused], "an index nothing depends on must not be marked reachable")
}

func TestEntityReservesAdjustableSlice(t *testing.T) {
	p := New()
	offset := 0
	_, entIdx := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	assert.Equal(t, 2, offset, "a FreePoint entity must reserve a width-2 slice")
	assert.Equal(t, 0, p.Entities[entIdx].Offset)
}

func TestCircleOperandAccessorsRoundTrip(t *testing.T) {
	p := New()
	offset := 0
	centerIdx, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	radiusIdx := p.Const(3, value.Distance())
	circleIdx := p.Add(OpConstructCircle, value.Circle(), centerIdx, radiusIdx)

	assert.Equal(t, centerIdx, p.CircleCenterOperand(circleIdx))
	assert.Equal(t, radiusIdx, p.CircleRadiusOperand(circleIdx))
}
