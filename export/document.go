// Package export serializes a solved figure into the JSON document
// consumed by the projector and drawers on the far side of this module's
// boundary; this package only produces the document, it never renders one.
package export

import (
	"github.com/google/uuid"

	"github.com/DragonGamesStudios/Geo-AID/pool"
	"github.com/DragonGamesStudios/Geo-AID/value"
)

// Document is the closed figure export schema.
type Document struct {
	ID          uuid.UUID    `json:"id"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	Expressions []Expression `json:"expressions"`
	Entities    []EntityDoc  `json:"entities"`
	Items       []Item       `json:"items"`
}

// Expression mirrors one pool node: its kind, operands, and realized value,
// so a consumer never has to re-evaluate the pool to draw a figure.
type Expression struct {
	Kind     string    `json:"kind"`
	Operands []int     `json:"operands,omitempty"`
	Value    ValueDoc  `json:"value"`
}

// EntityDoc mirrors one free variable: its kind and the adjustable-vector
// slice it was realized from.
type EntityDoc struct {
	Kind string `json:"kind"`
	X    []float64 `json:"x"`
}

// Item is one display target: a pool index plus the display hints attached
// to it at unroll time. Kind is the shape a drawer should render it as
// (point, line, ray, segment, circle); Style is one of solid, dotted,
// dashed, bold. Endpoints carries the two component pool indices of a
// segment or ray, since its shape isn't recoverable from Expression alone.
type Item struct {
	Kind       string `json:"kind"`
	Expression int    `json:"expression"`
	Endpoints  []int  `json:"endpoints,omitempty"`
	Style      string `json:"style,omitempty"`
	Label      string `json:"label,omitempty"`
}

// DisplayTarget is one value the unroller marked for display, already
// carrying whatever shape and style hints it collected; export never needs
// to look anything up by pool index to classify it.
type DisplayTarget struct {
	Idx       int
	Endpoints []int
	ItemKind  string
	Label     string
	Style     string
}

// ValueDoc is the tagged realized value of one expression, flattened to
// JSON-friendly fields instead of value.Value's Go-native payload.
type ValueDoc struct {
	Kind   string    `json:"kind"`
	Point  []float64 `json:"point,omitempty"`
	Line   []float64 `json:"line,omitempty"`  // [originX, originY, dirX, dirY]
	Circle []float64 `json:"circle,omitempty"` // [centerX, centerY, radius]
	Scalar *float64  `json:"scalar,omitempty"`
	Points [][]float64 `json:"points,omitempty"`
}

// Build assembles a Document from a solved pool, its realized values, and
// the display targets the unroller collected. width and height size the
// canvas the projector (out of scope here) will eventually draw into.
func Build(p *pool.Pool, values []value.Value, x []float64, targets []DisplayTarget, width, height float64) Document {
	doc := Document{ID: uuid.New(), Width: width, Height: height}
	doc.Expressions = make([]Expression, len(p.Exprs))
	for i, e := range p.Exprs {
		doc.Expressions[i] = Expression{
			Kind:     string(e.Kind),
			Operands: e.Operands,
			Value:    valueDoc(values[i]),
		}
	}
	doc.Entities = make([]EntityDoc, len(p.Entities))
	for i, ent := range p.Entities {
		doc.Entities[i] = EntityDoc{Kind: ent.Kind.String(), X: append([]float64(nil), x[ent.Offset:ent.Offset+ent.Width()]...)}
	}
	for _, t := range targets {
		kind := t.ItemKind
		if kind == "" {
			kind = itemKindOf(p, t.Idx)
		}
		doc.Items = append(doc.Items, Item{
			Kind:       kind,
			Expression: t.Idx,
			Endpoints:  t.Endpoints,
			Style:      t.Style,
			Label:      t.Label,
		})
	}
	return doc
}

// itemKindOf falls back to the shape implied by a target's own value kind
// when the unroller didn't attach an explicit one (segments and rays always
// do, since neither shape survives in a plain pool index).
func itemKindOf(p *pool.Pool, idx int) string {
	switch p.KindOf(idx).Tag {
	case value.PointKind:
		return "point"
	case value.LineKind:
		return "line"
	case value.CircleKind:
		return "circle"
	default:
		return "point"
	}
}

func valueDoc(v value.Value) ValueDoc {
	switch v.Tag {
	case value.PointKind:
		return ValueDoc{Kind: "point", Point: []float64{real(v.Point), imag(v.Point)}}
	case value.LineKind:
		return ValueDoc{Kind: "line", Line: []float64{
			real(v.Line.Origin), imag(v.Line.Origin), real(v.Line.Dir), imag(v.Line.Dir),
		}}
	case value.CircleKind:
		return ValueDoc{Kind: "circle", Circle: []float64{real(v.Circle.Center), imag(v.Circle.Center), v.Circle.Radius}}
	case value.ScalarKind:
		s := v.Scalar
		return ValueDoc{Kind: "scalar", Scalar: &s}
	case value.PointCollectionKind:
		pts := make([][]float64, len(v.Points))
		for i, p := range v.Points {
			pts[i] = []float64{real(p), imag(p)}
		}
		return ValueDoc{Kind: "point-collection", Points: pts}
	default:
		return ValueDoc{Kind: "undefined"}
	}
}
