// Package geoaid is the module's programmatic entry point: given GeoScript
// source text, it runs the whole pipeline (lex, parse, unroll, generate)
// and returns either a solved figure document or the diagnostics that kept
// it from producing one. A CLI, config loader, or logger is someone else's
// concern; this package only ever returns structured data and errors.
package geoaid

import (
	"context"
	"time"

	"github.com/DragonGamesStudios/Geo-AID/critic"
	"github.com/DragonGamesStudios/Geo-AID/err"
	"github.com/DragonGamesStudios/Geo-AID/export"
	"github.com/DragonGamesStudios/Geo-AID/generator"
	"github.com/DragonGamesStudios/Geo-AID/lexer"
	"github.com/DragonGamesStudios/Geo-AID/parser"
	"github.com/DragonGamesStudios/Geo-AID/unroll"
)

// Options configures one compile-and-generate run. The zero value is usable:
// every field falls back to a sensible default inside Compile.
type Options struct {
	Seed             int64
	Workers          int
	Strictness       float64
	MaxCycles        int
	MaxDuration      time.Duration
	MaxNoImprovement int
	Width, Height    float64
}

// Compile lexes, parses, and unrolls source, then runs the generator against
// the resulting critic program and returns the figure document. Any error
// from lexing through unrolling is a batch of diagnostics with no document.
// A generator run that stops on its time, cycle or no-improvement budget
// still returns the document, together with a single soft conv/budget
// diagnostic; a cancelled run returns the document with no diagnostic.
func Compile(ctx context.Context, source, fileName string, opts Options) (export.Document, err.Errors) {
	toks := lexer.New(fileName, source).Tokens()

	p := parser.New(toks)
	prog := p.ParseProgram()
	if p.Errors.HasErrors() {
		return export.Document{}, p.Errors
	}

	env := unroll.New()
	env.UnrollProgram(prog)
	if env.Errs.HasErrors() {
		return export.Document{}, env.Errs
	}

	critProg := critic.Compile(env.Pool, env.Rules)
	x0 := make([]float64, env.NextOffset)

	widths := make([]int, len(env.Pool.Entities))
	for i, ent := range env.Pool.Entities {
		widths[i] = ent.Width()
	}

	result := generator.Run(ctx, critProg, x0, widths, generator.Options{
		Seed:             opts.Seed,
		Workers:          opts.Workers,
		Strictness:       opts.Strictness,
		MaxCycles:        opts.MaxCycles,
		MaxDuration:      opts.MaxDuration,
		MaxNoImprovement: opts.MaxNoImprovement,
	})

	values := env.Pool.Evaluate(result.X)
	width, height := opts.Width, opts.Height
	if width == 0 {
		width = 800
	}
	if height == 0 {
		height = 600
	}
	targets := make([]export.DisplayTarget, len(env.DisplayTargets))
	for i, t := range env.DisplayTargets {
		targets[i] = export.DisplayTarget{
			Idx:       t.Idx,
			Endpoints: t.Endpoints,
			ItemKind:  t.ItemKind,
			Label:     t.Label,
			Style:     t.Style,
		}
	}
	doc := export.Build(env.Pool, values, result.X, targets, width, height)

	switch result.Status {
	case generator.TimeLimit, generator.CycleLimit, generator.NoImprovement:
		var tok = toks[0]
		return doc, err.Errors{err.New("conv/budget", tok, result.Quality)}
	}
	return doc, nil
}
