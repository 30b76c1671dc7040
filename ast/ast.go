// Package ast defines the concrete syntax tree produced by the parser.
//
// Nodes are consumed by the unroll engine and do not survive past that
// stage; nothing downstream of unrolling holds an ast.Node.
package ast

import (
	"bytes"
	"strings"

	"github.com/DragonGamesStudios/Geo-AID/token"
)

// Node is the base of every AST node.
type Node interface {
	Children() []Node
	GetToken() *token.Token
	String() string
}

// Statement is a top-level construct in a GeoScript program.
type Statement interface {
	Node
	statementNode()
}

// Expression is anything that yields a value.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root of a parsed source file.
type Program struct {
	Statements []Statement
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// LetStatement binds one or more names to the branches of a right-hand-side
// expression, with an optional trailing rule chain applied to the freshly
// bound names. See the let-statement state machine in the math step design.
type LetStatement struct {
	Token Token_
	Names []*Ident
	Value Expression
	Rules []Expression // rule expressions applied to Names, may be empty
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) Children() []Node     { return append(namesToNodes(ls.Names), ls.Value) }
func (ls *LetStatement) GetToken() *token.Token { return &ls.Token }
func (ls *LetStatement) String() string {
	names := make([]string, len(ls.Names))
	for i, n := range ls.Names {
		names[i] = n.String()
	}
	s := "let " + strings.Join(names, ", ") + " = " + ls.Value.String()
	for _, r := range ls.Rules {
		s += " " + r.String()
	}
	return s
}

func namesToNodes(names []*Ident) []Node {
	out := make([]Node, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

// RuleStatement is a free-standing rule, not attached to a let.
type RuleStatement struct {
	Token Token_
	Rule  Expression
}

func (rs *RuleStatement) statementNode()         {}
func (rs *RuleStatement) Children() []Node       { return []Node{rs.Rule} }
func (rs *RuleStatement) GetToken() *token.Token { return &rs.Token }
func (rs *RuleStatement) String() string         { return rs.Rule.String() }

// QueryStatement marks one or more expressions for display ("?" prefix).
type QueryStatement struct {
	Token   Token_
	Targets []Expression
}

func (qs *QueryStatement) statementNode()         {}
func (qs *QueryStatement) Children() []Node       { return exprsToNodes(qs.Targets) }
func (qs *QueryStatement) GetToken() *token.Token { return &qs.Token }
func (qs *QueryStatement) String() string {
	parts := make([]string, len(qs.Targets))
	for i, t := range qs.Targets {
		parts[i] = t.String()
	}
	return "? " + strings.Join(parts, ", ")
}

func exprsToNodes(exprs []Expression) []Node {
	out := make([]Node, len(exprs))
	for i, e := range exprs {
		out[i] = e
	}
	return out
}

// Token_ avoids a name collision with the token package in embedding
// positions; it is simply a token.Token.
type Token_ = token.Token

// Ident is a bare identifier, e.g. a variable name or function name.
type Ident struct {
	Token Token_
	Name  string
}

func (i *Ident) expressionNode()       {}
func (i *Ident) Children() []Node      { return nil }
func (i *Ident) GetToken() *token.Token { return &i.Token }
func (i *Ident) String() string        { return i.Name }

// PointLiteral is a single capitalized point name such as A.
type PointLiteral struct {
	Token Token_
	Name  string
}

func (p *PointLiteral) expressionNode()        {}
func (p *PointLiteral) Children() []Node       { return nil }
func (p *PointLiteral) GetToken() *token.Token { return &p.Token }
func (p *PointLiteral) String() string         { return p.Name }

// PointCollection is a juxtaposed run of point names, e.g. ABCD.
type PointCollection struct {
	Token  Token_
	Points []*PointLiteral
}

func (pc *PointCollection) expressionNode()  {}
func (pc *PointCollection) Children() []Node { return nil }
func (pc *PointCollection) GetToken() *token.Token { return &pc.Token }
func (pc *PointCollection) String() string {
	var sb strings.Builder
	for _, p := range pc.Points {
		sb.WriteString(p.Name)
	}
	return sb.String()
}

// StringLiteral is a quoted string, used only as a property value (e.g.
// style = "dashed").
type StringLiteral struct {
	Token Token_
	Value string
}

func (s *StringLiteral) expressionNode()        {}
func (s *StringLiteral) Children() []Node       { return nil }
func (s *StringLiteral) GetToken() *token.Token { return &s.Token }
func (s *StringLiteral) String() string         { return "\"" + s.Value + "\"" }

// NumberLiteral is a decimal literal with an optional unit suffix.
type NumberLiteral struct {
	Token Token_
	Value float64
	Unit  string // "", "cm", "deg", "rad", ...
}

func (n *NumberLiteral) expressionNode()        {}
func (n *NumberLiteral) Children() []Node       { return nil }
func (n *NumberLiteral) GetToken() *token.Token { return &n.Token }
func (n *NumberLiteral) String() string         { return n.Token.Literal }

// CallExpression is a function call, e.g. intersection(a, b).
type CallExpression struct {
	Token Token_
	Raw   string // the identifier exactly as written; the unroller folds it for lookup
	Args  []Expression
	Props *PropertyBlock // optional trailing [k = v, ...] block
}

func (c *CallExpression) expressionNode()        {}
func (c *CallExpression) Children() []Node        { return exprsToNodes(c.Args) }
func (c *CallExpression) GetToken() *token.Token { return &c.Token }
func (c *CallExpression) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	s := c.Raw + "(" + strings.Join(parts, ", ") + ")"
	if c.Props != nil {
		s += c.Props.String()
	}
	return s
}

// IteratorExpression is a comma-separated list of branch expressions sharing
// an iterator id. The parser assigns id 0 by default; nested iterators with
// distinct ids are represented as IteratorExpression nodes whose branches
// themselves contain IteratorExpression nodes with a different Id.
type IteratorExpression struct {
	Token    Token_
	Id       int
	Branches []Expression
}

func (it *IteratorExpression) expressionNode()        {}
func (it *IteratorExpression) Children() []Node       { return exprsToNodes(it.Branches) }
func (it *IteratorExpression) GetToken() *token.Token { return &it.Token }
func (it *IteratorExpression) String() string {
	parts := make([]string, len(it.Branches))
	for i, b := range it.Branches {
		parts[i] = b.String()
	}
	return strings.Join(parts, ", ")
}

// BinaryExpression is an infix rule or arithmetic operator application.
type BinaryExpression struct {
	Token    Token_
	Operator string // "=", "<", "<=", ">", ">=", "lies_on", "+", "-", "*", "/", "^"
	Left     Expression
	Right    Expression
}

func (b *BinaryExpression) expressionNode()        {}
func (b *BinaryExpression) Children() []Node       { return []Node{b.Left, b.Right} }
func (b *BinaryExpression) GetToken() *token.Token { return &b.Token }
func (b *BinaryExpression) String() string {
	return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")"
}

// ChainExpression is a chained comparison a < b < c, sugar for (a<b) and
// (b<c). Kept distinct from BinaryExpression so the parser does not have to
// guess how many operands a chain has before the unroller desugars it.
type ChainExpression struct {
	Token     Token_
	Operators []string
	Operands  []Expression
}

func (c *ChainExpression) expressionNode()        {}
func (c *ChainExpression) Children() []Node       { return exprsToNodes(c.Operands) }
func (c *ChainExpression) GetToken() *token.Token { return &c.Token }
func (c *ChainExpression) String() string {
	var sb strings.Builder
	sb.WriteString(c.Operands[0].String())
	for i, op := range c.Operators {
		sb.WriteString(" " + op + " " + c.Operands[i+1].String())
	}
	return sb.String()
}

// NotExpression is a prefix negation of a rule, "!r".
type NotExpression struct {
	Token Token_
	Rule  Expression
}

func (n *NotExpression) expressionNode()        {}
func (n *NotExpression) Children() []Node       { return []Node{n.Rule} }
func (n *NotExpression) GetToken() *token.Token { return &n.Token }
func (n *NotExpression) String() string         { return "!" + n.Rule.String() }

// PropertyBlock is a [k = v, ...] annotation trailing an expression.
type PropertyBlock struct {
	Token Token_
	Pairs []PropertyPair
}

type PropertyPair struct {
	Key      string // as written; folded by the binder
	KeyToken Token_
	Value    Expression
}

func (p *PropertyBlock) Children() []Node {
	out := make([]Node, len(p.Pairs))
	for i, pp := range p.Pairs {
		out[i] = pp.Value
	}
	return out
}
func (p *PropertyBlock) GetToken() *token.Token { return &p.Token }
func (p *PropertyBlock) String() string {
	parts := make([]string, len(p.Pairs))
	for i, pp := range p.Pairs {
		parts[i] = pp.Key + " = " + pp.Value.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
