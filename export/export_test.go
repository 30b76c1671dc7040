package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DragonGamesStudios/Geo-AID/pool"
	"github.com/DragonGamesStudios/Geo-AID/value"
)

func TestBuildPopulatesDocumentShape(t *testing.T) {
	p := pool.New()
	offset := 0
	aIdx, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	bIdx, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	midIdx := p.Add(pool.OpAveragePoint, value.Point(), aIdx, bIdx)

	x := []float64{0, 0, 4, 2}
	values := p.Evaluate(x)

	doc := Build(p, values, x, []DisplayTarget{{Idx: midIdx, Label: "M"}}, 800, 600)

	assert.Equal(t, 800.0, doc.Width)
	assert.Equal(t, 600.0, doc.Height)
	require.Len(t, doc.Expressions, 3)
	require.Len(t, doc.Entities, 2)
	require.Len(t, doc.Items, 1)

	assert.Equal(t, "average-point", doc.Expressions[midIdx].Kind)
	assert.Equal(t, []int{aIdx, bIdx}, doc.Expressions[midIdx].Operands)
	require.NotNil(t, doc.Expressions[midIdx].Value.Point)
	assert.InDelta(t, 2.0, doc.Expressions[midIdx].Value.Point[0], 1e-9)
	assert.InDelta(t, 1.0, doc.Expressions[midIdx].Value.Point[1], 1e-9)

	assert.Equal(t, midIdx, doc.Items[0].Expression)
	assert.Equal(t, "point", doc.Items[0].Kind)
	assert.Equal(t, "M", doc.Items[0].Label)
}

func TestBuildAssignsAFreshUUIDPerCall(t *testing.T) {
	p := pool.New()
	offset := 0
	p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	x := []float64{1, 1}
	values := p.Evaluate(x)

	doc1 := Build(p, values, x, nil, 100, 100)
	doc2 := Build(p, values, x, nil, 100, 100)

	assert.NotEqual(t, doc1.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.NotEqual(t, doc1.ID, doc2.ID, "each build should mint its own run identifier")
}

func TestBuildRoundTripsFreePointEntityAdjustables(t *testing.T) {
	p := pool.New()
	offset := 0
	_, entIdx := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	x := []float64{3.5, -2.25}
	values := p.Evaluate(x)

	doc := Build(p, values, x, nil, 10, 10)

	require.Len(t, doc.Entities, 1)
	assert.Equal(t, value.FreePoint.String(), doc.Entities[0].Kind)
	assert.Equal(t, []float64{3.5, -2.25}, doc.Entities[0].X)
	_ = entIdx
}

func TestBuildOnAConstScalarProducesAScalarValueDoc(t *testing.T) {
	p := pool.New()
	idx := p.Const(7.5, value.NoUnit())
	values := p.Evaluate(nil)

	doc := Build(p, values, nil, []DisplayTarget{{Idx: idx}}, 10, 10)

	require.NotNil(t, doc.Expressions[idx].Value.Scalar)
	assert.InDelta(t, 7.5, *doc.Expressions[idx].Value.Scalar, 1e-9)
}

func TestBuildCarriesSegmentShapeAndStyleExplicitly(t *testing.T) {
	p := pool.New()
	offset := 0
	aIdx, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	bIdx, _ := p.NewEntity(value.FreePoint, -1, value.Point(), &offset)
	x := []float64{0, 0, 1, 1}
	values := p.Evaluate(x)

	doc := Build(p, values, x, []DisplayTarget{{
		Idx:       aIdx,
		Endpoints: []int{aIdx, bIdx},
		ItemKind:  "segment",
		Style:     "dashed",
		Label:     "AB",
	}}, 10, 10)

	require.Len(t, doc.Items, 1)
	item := doc.Items[0]
	assert.Equal(t, "segment", item.Kind)
	assert.Equal(t, []int{aIdx, bIdx}, item.Endpoints)
	assert.Equal(t, "dashed", item.Style)
	assert.Equal(t, "AB", item.Label)
}
