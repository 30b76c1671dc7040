// Package pool implements the flat expression pool produced by math
// lowering: a dense-indexed DAG where every index references only strictly
// lesser indices, with hash-consing (common-subexpression elimination)
// mandatory on insertion.
package pool

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/DragonGamesStudios/Geo-AID/value"
)

// OpKind is the closed set of structural node kinds a pool expression can
// be. It doubles as the export tag (see the export package): every OpKind
// string here is exactly the "kind" field written to the figure document.
type OpKind string

const (
	OpEntity               OpKind = "entity"
	OpLineLineIntersection OpKind = "line-line-intersection"
	OpAveragePoint         OpKind = "average-point"
	OpCircleCenter         OpKind = "circle-center"
	OpSum                  OpKind = "sum"
	OpProduct              OpKind = "product"
	OpConst                OpKind = "const"
	OpPower                OpKind = "power"
	OpPointPointDistance   OpKind = "point-point-distance"
	OpPointLineDistance    OpKind = "point-line-distance"
	OpThreePointAngle      OpKind = "three-point-angle"
	OpThreePointAngleDir   OpKind = "three-point-angle-dir"
	OpTwoLineAngle         OpKind = "two-line-angle"
	OpPointX               OpKind = "point-x"
	OpPointY               OpKind = "point-y"
	OpPointPointLine       OpKind = "point-point-line"
	OpAngleBisector        OpKind = "angle-bisector"
	OpPerpendicularThrough OpKind = "perpendicular-through"
	OpParallelThrough      OpKind = "parallel-through"
	OpConstructCircle      OpKind = "construct-circle"
)

// commutative is the set of op kinds whose operands are sorted by index
// before hash-consing, so that e.g. sum(a,b) and sum(b,a) collapse to the
// same pool index.
var commutative = map[OpKind]bool{
	OpSum:     true,
	OpProduct: true,
}

// Expr is one node of the pool. Operands are pool indices strictly less
// than the index this Expr itself occupies; that invariant holds because
// Pool.Add, Const, NewEntity and AddPower, the only ways to create one, all
// append a node whose operands are already in Exprs.
type Expr struct {
	Kind      OpKind
	ValueKind value.Kind
	Operands  []int

	Const    float64  // meaningful iff Kind == OpConst
	Exponent *big.Rat // meaningful iff Kind == OpPower
	Entity   int       // meaningful iff Kind == OpEntity: index into Pool.Entities
}

// Pool owns the expression DAG and the entity list the generator adjusts.
type Pool struct {
	Exprs    []Expr
	Entities []value.Entity

	cache map[string]int
}

func New() *Pool {
	return &Pool{cache: map[string]int{}}
}

// NewEntity appends a fresh entity, reserving its slice of the adjustable
// vector, and returns both the entity's pool index (an OpEntity node that
// reads it) and the entity's own index in Pool.Entities.
func (p *Pool) NewEntity(kind value.EntityKind, curve int, vk value.Kind, nextOffset *int) (poolIdx, entityIdx int) {
	e := value.Entity{Kind: kind, Offset: *nextOffset, Curve: curve}
	*nextOffset += e.Width()
	entityIdx = len(p.Entities)
	p.Entities = append(p.Entities, e)
	operands := []int{}
	if curve >= 0 {
		operands = []int{curve}
	}
	poolIdx = p.insert(Expr{Kind: OpEntity, ValueKind: vk, Operands: operands, Entity: entityIdx})
	return
}

// Const inserts (or finds, by CSE) a constant scalar node.
func (p *Pool) Const(v float64, dim value.Dimension) int {
	return p.insert(Expr{Kind: OpConst, ValueKind: value.Scalar(dim), Const: v})
}

// Add inserts a structural node, canonicalizing commutative operand order
// and deduplicating against any structurally identical node already in the
// pool. Like Const, NewEntity and AddPower, the other paths by which Exprs
// grows, it keeps the DAG invariant (operands reference strictly lesser
// indices) by construction: every operand here is already a valid index
// into Exprs. Before structural
// insertion it tries fold, which implements the constant-folding and
// identity simplifications math lowering is required to apply; since every
// operand passed in was itself produced by Add (or Const), any further
// reduction fold triggers is already expressed in terms of already-folded
// nodes, so a single pass here is already a fixed point.
func (p *Pool) Add(kind OpKind, vk value.Kind, operands ...int) int {
	ops := append([]int(nil), operands...)
	if commutative[kind] {
		sortInts(ops)
	}
	if idx, ok := p.fold(kind, vk, ops); ok {
		return idx
	}
	return p.insert(Expr{Kind: kind, ValueKind: vk, Operands: ops})
}

// fold applies the identities spec.md §4.3 mandates during hash-consing:
// constant-folding OpSum/OpProduct over two OpConst operands, the additive
// and multiplicative identities a+(-a)=0 and a*1=a, and the geometric
// identities intersection(line(P,Q),line(Q,R))=Q, midpoint(A,A)=A,
// bisector(A,B,A)=line(A,B), and distance(P,P)=0. It reports ok=false for
// anything it doesn't recognize, leaving Add to insert a structural node as
// usual.
func (p *Pool) fold(kind OpKind, vk value.Kind, ops []int) (int, bool) {
	switch kind {
	case OpSum:
		if len(ops) != 2 {
			return 0, false
		}
		if idx, ok := p.foldConstPair(kind, vk, ops); ok {
			return idx, true
		}
		if p.isConst(ops[0], 0) {
			return ops[1], true
		}
		if p.isConst(ops[1], 0) {
			return ops[0], true
		}
		if neg, ok := p.negationOperand(ops[0]); ok && neg == ops[1] {
			return p.Const(0, vk.Dim), true
		}
		if neg, ok := p.negationOperand(ops[1]); ok && neg == ops[0] {
			return p.Const(0, vk.Dim), true
		}
	case OpProduct:
		if len(ops) != 2 {
			return 0, false
		}
		if idx, ok := p.foldConstPair(kind, vk, ops); ok {
			return idx, true
		}
		if p.isConst(ops[0], 1) {
			return ops[1], true
		}
		if p.isConst(ops[1], 1) {
			return ops[0], true
		}
	case OpPointPointDistance:
		if ops[0] == ops[1] {
			return p.Const(0, vk.Dim), true
		}
	case OpAveragePoint:
		for _, o := range ops[1:] {
			if o != ops[0] {
				return 0, false
			}
		}
		return ops[0], true
	case OpLineLineIntersection:
		if shared, ok := p.sharedLinePoint(ops[0], ops[1]); ok {
			return shared, true
		}
	case OpAngleBisector:
		if ops[0] == ops[2] {
			return p.Add(OpPointPointLine, value.Line(), ops[0], ops[1]), true
		}
	}
	return 0, false
}

// foldConstPair reduces a two-operand OpSum/OpProduct over two already-const
// nodes to a single const, rather than inserting a structural node whose
// value would just be recomputed at every Evaluate.
func (p *Pool) foldConstPair(kind OpKind, vk value.Kind, ops []int) (int, bool) {
	a, b := p.Exprs[ops[0]], p.Exprs[ops[1]]
	if a.Kind != OpConst || b.Kind != OpConst {
		return 0, false
	}
	switch kind {
	case OpSum:
		return p.Const(a.Const+b.Const, vk.Dim), true
	case OpProduct:
		return p.Const(a.Const*b.Const, vk.Dim), true
	default:
		return 0, false
	}
}

// isConst reports whether idx is a const node carrying exactly v. Every
// identity-value const this package folds against (-1, 0, 1) is built from
// a literal, so exact float equality is safe here.
func (p *Pool) isConst(idx int, v float64) bool {
	e := p.Exprs[idx]
	return e.Kind == OpConst && e.Const == v
}

// negationOperand reports the index b such that Exprs[idx] computes -1*b,
// the shape Env.negate builds, or ok=false if idx isn't such a node.
func (p *Pool) negationOperand(idx int) (b int, ok bool) {
	e := p.Exprs[idx]
	if e.Kind != OpProduct || len(e.Operands) != 2 {
		return 0, false
	}
	x, y := e.Operands[0], e.Operands[1]
	if p.isConst(x, -1) {
		return y, true
	}
	if p.isConst(y, -1) {
		return x, true
	}
	return 0, false
}

// sharedLinePoint reports the point both l1 and l2 were built through, when
// both are plain two-point OpPointPointLine nodes and share an endpoint
// (e.g. line(P,Q) and line(Q,R)). Two lines through a common point always
// intersect there, so this needs no numeric check at all, unlike the
// general Cramer's-rule path in eval.go's intersectLines.
func (p *Pool) sharedLinePoint(l1, l2 int) (int, bool) {
	e1, e2 := p.Exprs[l1], p.Exprs[l2]
	if e1.Kind != OpPointPointLine || e2.Kind != OpPointPointLine {
		return 0, false
	}
	for _, a := range e1.Operands {
		for _, b := range e2.Operands {
			if a == b {
				return a, true
			}
		}
	}
	return 0, false
}

// AddPower inserts a power node with a rational exponent, folding
// (a^p)^q into a^(p*q) when the base is itself a power node.
func (p *Pool) AddPower(base int, exp *big.Rat, vk value.Kind) int {
	if p.Exprs[base].Kind == OpPower {
		combined := new(big.Rat).Mul(p.Exprs[base].Exponent, exp)
		return p.AddPower(p.Exprs[base].Operands[0], combined, vk)
	}
	if exp.Cmp(big.NewRat(1, 1)) == 0 {
		return base
	}
	key := fmt.Sprintf("power:%d:%s", base, exp.RatString())
	if idx, ok := p.cache[key]; ok {
		return idx
	}
	idx := len(p.Exprs)
	p.Exprs = append(p.Exprs, Expr{Kind: OpPower, ValueKind: vk, Operands: []int{base}, Exponent: exp})
	p.cache[key] = idx
	return idx
}

func (p *Pool) insert(e Expr) int {
	key := fingerprint(e)
	if idx, ok := p.cache[key]; ok {
		return idx
	}
	idx := len(p.Exprs)
	p.Exprs = append(p.Exprs, e)
	p.cache[key] = idx
	return idx
}

func fingerprint(e Expr) string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	sb.WriteByte(':')
	for i, op := range e.Operands {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(op))
	}
	switch e.Kind {
	case OpConst:
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatFloat(e.Const, 'g', -1, 64))
		sb.WriteByte(':')
		sb.WriteString(e.ValueKind.String())
	case OpEntity:
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(e.Entity))
	}
	return sb.String()
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Len is the number of expressions currently in the pool.
func (p *Pool) Len() int { return len(p.Exprs) }

// KindOf reports the static kind an already-inserted expression produces.
func (p *Pool) KindOf(idx int) value.Kind { return p.Exprs[idx].ValueKind }

// CircleRadiusOperand returns the pool index of the radius operand of the
// construct-circle node at idx. Every circle value in this module is built
// as an OpConstructCircle node through Add, so this is a plain field lookup,
// not a search.
func (p *Pool) CircleRadiusOperand(idx int) int {
	if p.Exprs[idx].Kind != OpConstructCircle {
		panic("pool: CircleRadiusOperand on a non-circle node")
	}
	return p.Exprs[idx].Operands[1]
}

// CircleCenterOperand mirrors CircleRadiusOperand for the center operand.
func (p *Pool) CircleCenterOperand(idx int) int {
	if p.Exprs[idx].Kind != OpConstructCircle {
		panic("pool: CircleCenterOperand on a non-circle node")
	}
	return p.Exprs[idx].Operands[0]
}
