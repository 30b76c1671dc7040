package value

import "fmt"

// Tag enumerates the closed set of value kinds. Cross-reference with the
// switch in every consumer that dispatches on a Value: the set
// is deliberately closed and small, so dispatch is a plain switch rather
// than an interface hierarchy.
type Tag uint8

const (
	UndefinedKind Tag = iota
	PointKind
	LineKind
	CircleKind
	ScalarKind
	PointCollectionKind
	BundleKind
)

func (t Tag) String() string {
	switch t {
	case PointKind:
		return "Point"
	case LineKind:
		return "Line"
	case CircleKind:
		return "Circle"
	case ScalarKind:
		return "Scalar"
	case PointCollectionKind:
		return "PointCollection"
	case BundleKind:
		return "Bundle"
	default:
		return "Undefined"
	}
}

// Kind is the static type of a pool expression: a value kind together with
// the parameters that distinguish kinds of the same Tag (a scalar's
// dimension, a collection's length, a bundle's field kinds).
type Kind struct {
	Tag    Tag
	Dim    Dimension        // meaningful iff Tag == ScalarKind
	N      int              // meaningful iff Tag == PointCollectionKind
	Fields map[string]Kind  // meaningful iff Tag == BundleKind
}

func Point() Kind  { return Kind{Tag: PointKind} }
func Line() Kind   { return Kind{Tag: LineKind} }
func Circle() Kind { return Kind{Tag: CircleKind} }
func Scalar(d Dimension) Kind { return Kind{Tag: ScalarKind, Dim: d} }
func PointCollection(n int) Kind { return Kind{Tag: PointCollectionKind, N: n} }
func Bundle(fields map[string]Kind) Kind { return Kind{Tag: BundleKind, Fields: fields} }

func (k Kind) Equal(o Kind) bool {
	if k.Tag != o.Tag {
		return false
	}
	switch k.Tag {
	case ScalarKind:
		return k.Dim.Equal(o.Dim)
	case PointCollectionKind:
		return k.N == o.N
	case BundleKind:
		if len(k.Fields) != len(o.Fields) {
			return false
		}
		for name, fk := range k.Fields {
			ok, found := o.Fields[name]
			if !found || !fk.Equal(ok) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (k Kind) String() string {
	switch k.Tag {
	case ScalarKind:
		if k.Dim.IsNoUnit() {
			return "Scalar"
		}
		return fmt.Sprintf("Scalar(%s)", k.Dim.String())
	case PointCollectionKind:
		return fmt.Sprintf("PointCollection(%d)", k.N)
	case BundleKind:
		return "Bundle"
	default:
		return k.Tag.String()
	}
}

// IsSegment reports whether k is the shape lies_on(point, segment) expects:
// a length-2 point collection, which is interchangeable with a segment.
func (k Kind) IsSegment() bool {
	return k.Tag == PointCollectionKind && k.N == 2
}
