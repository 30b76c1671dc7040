package unroll

import "github.com/DragonGamesStudios/Geo-AID/ast"

// PropSet is the validated, typed form of a property block. Properties are a
// small closed set: anything else is rejected as unrecognized rather than
// silently ignored. Property blocks attach only to call expressions in this
// grammar (see parser.parseIdentOrCall), so a property block can never
// trail a whole rule; prop/on-rule is kept in the error catalog for when a
// caller attaches properties some other way, but nothing in this package
// can produce it today.
type PropSet struct {
	Display  *bool
	Label    *string
	Directed *bool
	Style    *string
}

func (e *Env) bindProperties(props *ast.PropertyBlock) PropSet {
	var ps PropSet
	if props == nil {
		return ps
	}
	seen := map[string]bool{}
	for _, pair := range props.Pairs {
		key := fold(pair.Key)
		if seen[key] {
			e.errorf("prop/duplicate", pair.KeyToken, key)
			continue
		}
		seen[key] = true
		switch key {
		case "display":
			b, ok := e.propBool(pair.Value)
			if !ok {
				e.errorf("prop/type", pair.KeyToken, "display", "bool")
				continue
			}
			ps.Display = &b
		case "label":
			s, ok := e.propString(pair.Value)
			if !ok {
				e.errorf("prop/type", pair.KeyToken, "label", "string")
				continue
			}
			ps.Label = &s
		case "directed":
			b, ok := e.propBool(pair.Value)
			if !ok {
				e.errorf("prop/type", pair.KeyToken, "directed", "bool")
				continue
			}
			ps.Directed = &b
		case "style":
			s, ok := e.propStyle(pair.Value)
			if !ok {
				e.errorf("prop/type", pair.KeyToken, "style", "one of solid, dotted, dashed, bold")
				continue
			}
			ps.Style = &s
		default:
			e.errorf("prop/unknown", pair.KeyToken, key)
		}
	}
	return ps
}

func (e *Env) propBool(expr ast.Expression) (bool, bool) {
	id, ok := expr.(*ast.Ident)
	if !ok {
		return false, false
	}
	switch fold(id.Name) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

func (e *Env) propString(expr ast.Expression) (string, bool) {
	s, ok := expr.(*ast.StringLiteral)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func (e *Env) propStyle(expr ast.Expression) (string, bool) {
	id, ok := expr.(*ast.Ident)
	if !ok {
		return "", false
	}
	switch fold(id.Name) {
	case "solid", "dotted", "dashed", "bold":
		return fold(id.Name), true
	default:
		return "", false
	}
}
