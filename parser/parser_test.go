package parser

import (
	"testing"

	"github.com/DragonGamesStudios/Geo-AID/ast"
	"github.com/DragonGamesStudios/Geo-AID/lexer"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks := lexer.New("test", src).Tokens()
	p := New(toks)
	prog := p.ParseProgram()
	if p.Errors.HasErrors() {
		t.Fatalf("unexpected parse errors for %q: %v", src, p.Errors)
	}
	return prog
}

func TestLetWithBareCommaIteratorBindsOneIdZero(t *testing.T) {
	prog := parse(t, "let A, B = Point(), Point();")
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	let, ok := prog.Statements[0].(*ast.LetStatement)
	if !ok {
		t.Fatalf("expected *ast.LetStatement, got %T", prog.Statements[0])
	}
	if len(let.Names) != 2 {
		t.Fatalf("expected 2 names, got %d", len(let.Names))
	}
	it, ok := let.Value.(*ast.IteratorExpression)
	if !ok {
		t.Fatalf("expected *ast.IteratorExpression rhs, got %T", let.Value)
	}
	if it.Id != 0 {
		t.Errorf("bare-comma iterator id = %d, want 0", it.Id)
	}
	if len(it.Branches) != 2 {
		t.Errorf("expected 2 branches, got %d", len(it.Branches))
	}
}

func TestParenthesizedIteratorGetsFreshId(t *testing.T) {
	prog := parse(t, "let x = (1, 2, 3);")
	let := prog.Statements[0].(*ast.LetStatement)
	it, ok := let.Value.(*ast.IteratorExpression)
	if !ok {
		t.Fatalf("expected *ast.IteratorExpression, got %T", let.Value)
	}
	if it.Id == 0 {
		t.Errorf("parenthesized iterator should not reuse id 0, got %d", it.Id)
	}
	if len(it.Branches) != 3 {
		t.Errorf("expected 3 branches, got %d", len(it.Branches))
	}
}

func TestChainedComparisonFoldsIntoChainExpression(t *testing.T) {
	prog := parse(t, "a < b < c;")
	rs := prog.Statements[0].(*ast.RuleStatement)
	chain, ok := rs.Rule.(*ast.ChainExpression)
	if !ok {
		t.Fatalf("expected *ast.ChainExpression, got %T", rs.Rule)
	}
	if len(chain.Operators) != 2 || chain.Operators[0] != "<" || chain.Operators[1] != "<" {
		t.Errorf("operators = %v, want [< <]", chain.Operators)
	}
	if len(chain.Operands) != 3 {
		t.Errorf("operands = %v, want 3 operands", chain.Operands)
	}
}

func TestPropertyBlockAttachesOnlyToCallExpression(t *testing.T) {
	prog := parse(t, "let s = segment(A, B) [display = false, label = \"s\"];")
	let := prog.Statements[0].(*ast.LetStatement)
	call, ok := let.Value.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected *ast.CallExpression, got %T", let.Value)
	}
	if call.Props == nil {
		t.Fatalf("expected a property block on the call")
	}
	if len(call.Props.Pairs) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(call.Props.Pairs))
	}
}

func TestPointCollectionLiteralParsesAsSingleNode(t *testing.T) {
	prog := parse(t, "? ABCD;")
	qs := prog.Statements[0].(*ast.QueryStatement)
	pc, ok := qs.Targets[0].(*ast.PointCollection)
	if !ok {
		t.Fatalf("expected *ast.PointCollection, got %T", qs.Targets[0])
	}
	if len(pc.Points) != 4 {
		t.Errorf("expected 4 points, got %d", len(pc.Points))
	}
}

func TestNotExpressionWrapsRule(t *testing.T) {
	prog := parse(t, "!(a = b);")
	rs := prog.Statements[0].(*ast.RuleStatement)
	not, ok := rs.Rule.(*ast.NotExpression)
	if !ok {
		t.Fatalf("expected *ast.NotExpression, got %T", rs.Rule)
	}
	if _, ok := not.Rule.(*ast.BinaryExpression); !ok {
		t.Errorf("expected the wrapped rule to be a BinaryExpression, got %T", not.Rule)
	}
}

func TestUnclosedParenIsReportedAsParseError(t *testing.T) {
	toks := lexer.New("test", "let x = foo(1, 2;").Tokens()
	p := New(toks)
	p.ParseProgram()
	if !p.Errors.HasErrors() {
		t.Fatalf("expected a parse error for an unclosed call")
	}
}

func TestUnknownUnitSuffixIsReportedAsLexError(t *testing.T) {
	toks := lexer.New("test", "let a = 3xyz;").Tokens()
	p := New(toks)
	p.ParseProgram()
	if !p.Errors.HasErrors() {
		t.Fatalf("expected an error for an unknown unit suffix")
	}
}
