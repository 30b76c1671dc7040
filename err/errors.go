// Package err defines the taxonomy of front-end and generator errors and a
// catalog mapping error identifiers to human messages, in the style of a
// single creator map keyed by identifier and grouped by category, rather
// than scattered ad hoc fmt.Sprintf calls at every call site.
package err

import (
	"fmt"
	"strings"

	"github.com/DragonGamesStudios/Geo-AID/token"
)

// Kind is the taxonomic category of an error, per the error model.
type Kind string

const (
	LexError        Kind = "LexError"
	ParseError      Kind = "ParseError"
	NameError       Kind = "NameError"
	OverloadError   Kind = "OverloadError"
	TypeError       Kind = "TypeError"
	IterationError  Kind = "IterationError"
	PropertyError   Kind = "PropertyError"
	RuleFormError   Kind = "RuleFormError"
	ConvergenceError Kind = "ConvergenceError"
	Internal        Kind = "Internal"
)

// Error carries a source span (byte range), a human message, and the
// identifier used to look the message up, for anyone who wants to match on
// error identity rather than message text.
type Error struct {
	Kind    Kind
	Id      string
	Message string
	Line    int
	Start   int
	End     int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s [%s] (line %d): %s", e.Kind, e.Id, e.Line, e.Message)
}

// Errors is a collected batch of errors from a single compilation unit. All
// front-end stages append to the same Errors value and keep going where
// possible, so a single compilation surfaces every local failure at once
// rather than stopping at the first one.
type Errors []*Error

func (es Errors) Error() string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n")
}

func (es Errors) HasErrors() bool { return len(es) > 0 }

// creator builds the message for an error id given the token it is anchored
// to and the arguments supplied at the call site.
type creator func(tok token.Token, args ...any) string

// catalog maps error identifiers to message builders. Two errors that are
// conceptually different but arise in different places keep distinct ids,
// suffixed /a, /b, ... where a shared stem would otherwise collide.
//
// Categories, by identifier prefix: lex, parse, name, overload, type, iter,
// prop, rule, conv, internal.
var catalog = map[string]creator{
	"lex/illegal": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("illegal character %q", tok.Literal)
	},
	"lex/unit/unknown": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("unknown unit suffix %q on numeric literal", args[0])
	},

	"parse/expected": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("expected %v, got %q", args[0], tok.Literal)
	},
	"parse/let/names": func(tok token.Token, args ...any) string {
		return "expected a comma-separated list of names on the left of 'let'"
	},
	"parse/let/assign": func(tok token.Token, args ...any) string {
		return "expected '=' after the name list in a 'let' statement"
	},
	"parse/noprefix": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("no way to parse an expression starting with %q", tok.Literal)
	},
	"parse/property/key": func(tok token.Token, args ...any) string {
		return "expected a property key before '='"
	},
	"parse/unclosed": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("unclosed %v", args[0])
	},

	"name/unresolved": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("identifier %q is not defined", args[0])
	},
	"name/duplicate": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("name %q is already bound in this scope", args[0])
	},

	"overload/none": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("no overload of %q matches argument kinds %v", args[0], args[1])
	},
	"overload/ambiguous": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("call to %q is ambiguous between overloads %v", args[0], args[1])
	},

	"type/dimension": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("operand dimensions %v and %v are not compatible with %v", args[0], args[1], args[2])
	},
	"type/kind": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("expected a value of kind %v, got %v", args[0], args[1])
	},
	"type/exponent": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("exponent %v does not yield an integral dimension for base of dimension %v", args[0], args[1])
	},

	"iter/length": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("iterators with id %v have mismatched lengths %v and %v", args[0], args[1], args[2])
	},
	"iter/nested": func(tok token.Token, args ...any) string {
		return "only one level of iteration is permitted on the right-hand side of a multi-name 'let'"
	},
	"iter/arity": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("'let' binds %v names but the iterator on the right has %v branches", args[0], args[1])
	},

	"prop/unknown": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("unrecognized property %q", args[0])
	},
	"prop/duplicate": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("property %q is set more than once", args[0])
	},
	"prop/type": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("property %q expects a value of type %v", args[0], args[1])
	},
	"prop/on-rule": func(tok token.Token, args ...any) string {
		return "the 'display' property attaches only to expressions, never to rules"
	},

	"rule/form": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("%v is not a valid rule", args[0])
	},

	"conv/budget": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("generator exceeded its cycle or time budget at quality %v", args[0])
	},

	"internal/assert": func(tok token.Token, args ...any) string {
		return fmt.Sprintf("internal invariant violated: %v", args[0])
	},
}

// kindOf derives the taxonomic Kind from an identifier's category prefix.
func kindOf(id string) Kind {
	switch {
	case strings.HasPrefix(id, "lex/"):
		return LexError
	case strings.HasPrefix(id, "parse/"):
		return ParseError
	case strings.HasPrefix(id, "name/"):
		return NameError
	case strings.HasPrefix(id, "overload/"):
		return OverloadError
	case strings.HasPrefix(id, "type/"):
		return TypeError
	case strings.HasPrefix(id, "iter/"):
		return IterationError
	case strings.HasPrefix(id, "prop/"):
		return PropertyError
	case strings.HasPrefix(id, "rule/"):
		return RuleFormError
	case strings.HasPrefix(id, "conv/"):
		return ConvergenceError
	default:
		return Internal
	}
}

// New builds an Error from the catalog. A missing id is a bug in the
// compiler, not in the user's source, so it panics rather than silently
// emitting a blank message.
func New(id string, tok token.Token, args ...any) *Error {
	build, ok := catalog[id]
	if !ok {
		panic("err: no catalog entry for " + id)
	}
	return &Error{
		Kind:    kindOf(id),
		Id:      id,
		Message: build(tok, args...),
		Line:    tok.Line,
		Start:   tok.Start,
		End:     tok.End,
	}
}
