package lexer

import (
	"testing"

	"github.com/DragonGamesStudios/Geo-AID/token"
)

type testItem struct {
	typ  token.Type
	lit  string
	line int
}

func TestLetAndPoints(t *testing.T) {
	input := "let A, B = point, point;\n? dst(A, B);"
	toks := New("test", input).Tokens()

	want := []testItem{
		{token.LET, "let", 1},
		{token.POINT, "A", 1},
		{token.COMMA, ",", 1},
		{token.POINT, "B", 1},
		{token.ASSIGN, "=", 1},
		{token.IDENT, "point", 1},
		{token.COMMA, ",", 1},
		{token.IDENT, "point", 1},
		{token.SEMICOLON, ";", 1},
		{token.QUESTION, "?", 2},
		{token.IDENT, "dst", 2},
		{token.LPAREN, "(", 2},
		{token.POINT, "A", 2},
		{token.COMMA, ",", 2},
		{token.POINT, "B", 2},
		{token.RPAREN, ")", 2},
		{token.SEMICOLON, ";", 2},
		{token.EOF, "", 2},
	}

	for i, w := range want {
		if i >= len(toks) {
			t.Fatalf("token %d: ran out of tokens, wanted %v", i, w)
		}
		if toks[i].Type != w.typ || toks[i].Literal != w.lit {
			t.Errorf("token %d: got (%v, %q), want (%v, %q)", i, toks[i].Type, toks[i].Literal, w.typ, w.lit)
		}
	}
}

func TestPointCollectionSplitsIntoIndividualPoints(t *testing.T) {
	toks := New("test", "ABCD;").Tokens()
	var points []string
	for _, tk := range toks {
		if tk.Type == token.POINT {
			points = append(points, tk.Literal)
		}
	}
	want := []string{"A", "B", "C", "D"}
	if len(points) != len(want) {
		t.Fatalf("got %d points %v, want %v", len(points), points, want)
	}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("point %d: got %q, want %q", i, points[i], want[i])
		}
	}
}

// TestNumberLiteralKeepsWholeDigitRunAndUnit checks that a decimal literal
// with a long fractional part and a unit suffix comes out as one NUMBER
// token whose literal is the text exactly as written, trailing zeros
// included; decoding the value is left to the parser.
func TestNumberLiteralKeepsWholeDigitRunAndUnit(t *testing.T) {
	toks := New("test", "0.12500cm;").Tokens()
	if len(toks) == 0 || toks[0].Type != token.NUMBER {
		t.Fatalf("expected a NUMBER token, got %v", toks)
	}
	if toks[0].Literal != "0.12500cm" {
		t.Errorf("literal = %q, want %q", toks[0].Literal, "0.12500cm")
	}
}

func TestUnknownCharacterIsIllegal(t *testing.T) {
	toks := New("test", "let A = @;").Tokens()
	foundIllegal := false
	for _, tk := range toks {
		if tk.Type == token.ILLEGAL {
			foundIllegal = true
		}
	}
	if !foundIllegal {
		t.Errorf("expected an ILLEGAL token for '@', got %v", toks)
	}
}
