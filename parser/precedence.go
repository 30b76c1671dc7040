package parser

import "github.com/DragonGamesStudios/Geo-AID/token"

// Precedence levels, lowest first. GeoScript's surface grammar is small: a
// handful of rule operators plus ordinary arithmetic for scalar expressions.
const (
	_ int = iota
	LOWEST
	RULECHAIN // chained comparisons: a < b < c
	RULEOP    // =, <, <=, >, >=, lies_on
	NOT       // prefix !
	SUM       // + or -
	PRODUCT   // * or /
	POWER     // ^
	PREFIX    // unary -
	CALL      // f(...)
)

var precedences = map[token.Type]int{
	token.ASSIGN: RULEOP,
	token.LT:     RULEOP,
	token.LE:     RULEOP,
	token.GT:     RULEOP,
	token.GE:     RULEOP,
	token.LIESON: RULEOP,
	token.PLUS:   SUM,
	token.MINUS:  SUM,
	token.STAR:   PRODUCT,
	token.SLASH:  PRODUCT,
	token.CARET:  POWER,
	token.LPAREN: CALL,
}

func precedenceOf(t token.Type) int {
	if p, ok := precedences[t]; ok {
		return p
	}
	return LOWEST
}
