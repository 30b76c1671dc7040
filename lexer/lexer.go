// Package lexer turns GeoScript source text into a token stream.
package lexer

import (
	"strings"
	"unicode"

	"github.com/DragonGamesStudios/Geo-AID/token"
)

// Lexer reads GeoScript source one token at a time. It looks ahead at most
// one rune past the current one; the only buffering is the queue of POINT
// tokens left over from splitting a point run.
type Lexer struct {
	runes   *RuneSupplier
	source  string // a file name or similar, for diagnostics only
	pending []token.Token
}

func New(source, input string) *Lexer {
	return &Lexer{runes: NewRuneSupplier([]rune(input)), source: source}
}

// Tokens lexes the whole input into a flat slice terminated by a single EOF
// token. Collecting eagerly, rather than lazily, is adequate here: sources
// are figure descriptions, not megabyte-scale programs.
func (l *Lexer) Tokens() []token.Token {
	var out []token.Token
	for {
		tok := l.next()
		out = append(out, tok)
		if tok.Type == token.EOF {
			return out
		}
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for unicode.IsSpace(l.runes.CurrentRune()) && l.runes.CurrentRune() != 0 {
			l.runes.Next()
		}
		if l.runes.CurrentRune() == '#' {
			for l.runes.CurrentRune() != '\n' && l.runes.CurrentRune() != 0 {
				l.runes.Next()
			}
			continue
		}
		return
	}
}

func (l *Lexer) next() token.Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}
	l.skipWhitespaceAndComments()
	line, start := l.runes.Position()
	ch := l.runes.CurrentRune()

	switch {
	case ch == 0:
		return l.tok(token.EOF, "", line, start)
	case ch == ';':
		l.runes.Next()
		return l.tok(token.SEMICOLON, ";", line, start)
	case ch == '=':
		l.runes.Next()
		return l.tok(token.ASSIGN, "=", line, start)
	case ch == ',':
		l.runes.Next()
		return l.tok(token.COMMA, ",", line, start)
	case ch == '(':
		l.runes.Next()
		return l.tok(token.LPAREN, "(", line, start)
	case ch == ')':
		l.runes.Next()
		return l.tok(token.RPAREN, ")", line, start)
	case ch == '[':
		l.runes.Next()
		return l.tok(token.LBRACKET, "[", line, start)
	case ch == ']':
		l.runes.Next()
		return l.tok(token.RBRACKET, "]", line, start)
	case ch == '.':
		l.runes.Next()
		return l.tok(token.DOT, ".", line, start)
	case ch == '?':
		l.runes.Next()
		return l.tok(token.QUESTION, "?", line, start)
	case ch == '!':
		l.runes.Next()
		return l.tok(token.BANG, "!", line, start)
	case ch == '+':
		l.runes.Next()
		return l.tok(token.PLUS, "+", line, start)
	case ch == '-':
		l.runes.Next()
		return l.tok(token.MINUS, "-", line, start)
	case ch == '*':
		l.runes.Next()
		return l.tok(token.STAR, "*", line, start)
	case ch == '/':
		l.runes.Next()
		return l.tok(token.SLASH, "/", line, start)
	case ch == '^':
		l.runes.Next()
		return l.tok(token.CARET, "^", line, start)
	case ch == '<':
		l.runes.Next()
		if l.runes.CurrentRune() == '=' {
			l.runes.Next()
			return l.tok(token.LE, "<=", line, start)
		}
		return l.tok(token.LT, "<", line, start)
	case ch == '>':
		l.runes.Next()
		if l.runes.CurrentRune() == '=' {
			l.runes.Next()
			return l.tok(token.GE, ">=", line, start)
		}
		return l.tok(token.GT, ">", line, start)
	case ch == '"':
		return l.readString(line, start)
	case unicode.IsDigit(ch):
		return l.readNumber(line, start)
	case isIdentStart(ch):
		return l.readIdentOrPoints(line, start)
	default:
		l.runes.Next()
		return l.tok(token.ILLEGAL, string(ch), line, start)
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// readIdentOrPoints reads a maximal identifier run. If the run consists
// entirely of uppercase ASCII letters, it is a juxtaposed point-collection
// literal (e.g. ABCD) and is split into one POINT token per letter, per the
// language's rule that capitalized single-letter identifiers name points.
// Any other run is an ordinary identifier, matched case/underscore-
// insensitively against keywords by the caller.
func (l *Lexer) readIdentOrPoints(line, start int) token.Token {
	// This reads only the first token of the run; Tokens() above calls next()
	// repeatedly, so splitting a point run into several tokens means stashing
	// the rest for the following calls.
	var sb strings.Builder
	for isIdentPart(l.runes.CurrentRune()) {
		sb.WriteRune(l.runes.CurrentRune())
		l.runes.Next()
	}
	lit := sb.String()
	if isPointRun(lit) {
		points := splitPoints(lit, line, start)
		l.pending = append(l.pending, points[1:]...)
		return points[0]
	}
	folded := token.Fold(lit)
	typ := token.LookupKeyword(folded)
	return token.Token{Type: typ, Literal: lit, Line: line, Start: start, End: start + len(lit)}
}

func isPointRun(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func splitPoints(s string, line, start int) []token.Token {
	toks := make([]token.Token, 0, len(s))
	for i, r := range s {
		toks = append(toks, token.Token{
			Type:    token.POINT,
			Literal: string(r),
			Line:    line,
			Start:   start + i,
			End:     start + i + 1,
		})
	}
	return toks
}

// readNumber collects a decimal literal with an optional fractional part and
// an optional unit suffix (cm, deg, rad, ...) into one NUMBER token whose
// Literal is the text as written. It does not decode the value:
// parser.parseNumber does that, keeping the integer and fractional digit
// runs exact and converting to float64 only once.
func (l *Lexer) readNumber(line, start int) token.Token {
	var intPart, fracPart strings.Builder
	for unicode.IsDigit(l.runes.CurrentRune()) {
		intPart.WriteRune(l.runes.CurrentRune())
		l.runes.Next()
	}
	if l.runes.CurrentRune() == '.' && unicode.IsDigit(l.runes.PeekRune()) {
		l.runes.Next() // consume '.'
		for unicode.IsDigit(l.runes.CurrentRune()) {
			fracPart.WriteRune(l.runes.CurrentRune())
			l.runes.Next()
		}
	}
	lit := intPart.String()
	if fracPart.Len() > 0 {
		lit += "." + fracPart.String()
	}
	for isIdentPart(l.runes.CurrentRune()) {
		lit += string(l.runes.CurrentRune())
		l.runes.Next()
	}
	return token.Token{Type: token.NUMBER, Literal: lit, Line: line, Start: start, End: start + len(lit)}
}

func (l *Lexer) readString(line, start int) token.Token {
	l.runes.Next() // opening quote
	var sb strings.Builder
	for l.runes.CurrentRune() != '"' && l.runes.CurrentRune() != 0 {
		sb.WriteRune(l.runes.CurrentRune())
		l.runes.Next()
	}
	l.runes.Next() // closing quote
	lit := sb.String()
	return token.Token{Type: token.STRING, Literal: lit, Line: line, Start: start, End: start + len(lit) + 2}
}

func (l *Lexer) tok(typ token.Type, lit string, line, start int) token.Token {
	return token.Token{Type: typ, Literal: lit, Line: line, Start: start, End: start + len(lit)}
}
