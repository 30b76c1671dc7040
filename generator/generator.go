// Package generator implements the multi-threaded stochastic coordinate
// descent that fits a figure's adjustable vector to its critic program.
// Workers run in lockstep, separated by a barrier the coordinator owns: each
// cycle, every worker receives the current best state over its own input
// channel, proposes independently, and reports back over one output channel
// shared by all workers; the coordinator waits for all of them before adopting the best
// proposal and starting the next cycle. No state is shared between workers
// within a cycle, so nothing inside the hot loop needs a mutex.
package generator

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DragonGamesStudios/Geo-AID/critic"
)

// Status reports why a run stopped.
type Status int

const (
	Converged Status = iota
	CycleLimit
	TimeLimit
	Cancelled
	NoImprovement
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case CycleLimit:
		return "cycle-limit"
	case TimeLimit:
		return "time-limit"
	case Cancelled:
		return "cancelled"
	case NoImprovement:
		return "no-improvement"
	default:
		return "unknown"
	}
}

// Options configures a run. Strictness in [0,1] sets the target quality
// (tau) the coordinator accepts as converged; MaxNoImprovement bounds how
// many consecutive cycles may pass without a strictly better proposal
// before the run gives up as a soft, non-fatal failure to converge further.
type Options struct {
	Seed             int64
	Workers          int
	Strictness       float64
	MaxCycles        int
	MaxDuration      time.Duration
	MaxNoImprovement int
	Engine           func(widths []int) Engine // defaults to RageEngine
}

// Result is the outcome of one run.
type Result struct {
	X       []float64
	Quality float64
	PerRule []float64
	Cycles  int
	Status  Status
}

// proposal is one worker's output for a cycle.
type proposal struct {
	worker int
	x      []float64
	q      float64
}

// Run drives the worker/coordinator barrier loop until convergence, a
// cycle or wall-clock budget is exhausted, or ctx is cancelled. x0 is the
// starting adjustable vector and widths describes the entity widths that
// compose it, in order, for the engine's perturbation shape.
func Run(ctx context.Context, prog *critic.Program, x0 []float64, widths []int, opts Options) Result {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxNoImprovement <= 0 {
		opts.MaxNoImprovement = 200
	}
	if opts.Strictness <= 0 {
		opts.Strictness = 0.999
	}
	makeEngine := opts.Engine
	if makeEngine == nil {
		makeEngine = func(w []int) Engine { return NewRageEngine(0.5, w) }
	}

	if opts.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.MaxDuration)
		defer cancel()
	}

	inputs := make([]chan base, opts.Workers)
	outputs := make(chan proposal, opts.Workers)
	for i := range inputs {
		inputs[i] = make(chan base, 1)
	}

	group, gctx := errgroup.WithContext(ctx)
	for w := 0; w < opts.Workers; w++ {
		w := w
		rng := rand.New(rand.NewSource(mixSeed(opts.Seed, int64(w))))
		engine := makeEngine(widths)
		group.Go(func() error {
			return runWorker(gctx, w, rng, engine, prog, inputs[w], outputs)
		})
	}

	best := x0
	bestQ, perRule := prog.Evaluate(best)
	lastDelta := make([]float64, len(x0))
	noImprove := 0
	cycles := 0
	status := CycleLimit

cycleLoop:
	for {
		if bestQ >= opts.Strictness {
			status = Converged
			break
		}
		if opts.MaxCycles > 0 && cycles >= opts.MaxCycles {
			status = CycleLimit
			break
		}
		select {
		case <-ctx.Done():
			status = Cancelled
			if ctx.Err() == context.DeadlineExceeded {
				status = TimeLimit
			}
			break cycleLoop
		default:
		}

		perAdjQ := prog.PerAdjustableQuality(perRule, lastDelta, len(x0))
		b := base{x: best, q: bestQ, perAdjQuality: perAdjQ}
		for _, ch := range inputs {
			ch <- b
		}

		var winner proposal
		haveWinner := false
		collected := 0
	collectLoop:
		for collected < opts.Workers {
			select {
			case p := <-outputs:
				collected++
				if !haveWinner || p.q > winner.q || (p.q == winner.q && p.worker < winner.worker) {
					winner = p
					haveWinner = true
				}
			case <-ctx.Done():
				status = Cancelled
				if ctx.Err() == context.DeadlineExceeded {
					status = TimeLimit
				}
				break collectLoop
			}
		}
		cycles++
		if collected < opts.Workers {
			break cycleLoop
		}

		if haveWinner && winner.q > bestQ {
			for j := range lastDelta {
				lastDelta[j] = winner.x[j] - best[j]
			}
			best = winner.x
			bestQ = winner.q
			_, perRule = prog.Evaluate(best)
			noImprove = 0
		} else {
			noImprove++
			if noImprove >= opts.MaxNoImprovement {
				// A plateau below tau is still a failure to converge, per
				// spec.md §8's "status Ok ⇒ quality ≥ τ": only actually
				// reaching the target quality earns Converged. bestQ is
				// necessarily still below Strictness here, since the
				// cycle-top check above would already have broken out
				// otherwise.
				status = NoImprovement
				break
			}
		}
	}

	for _, ch := range inputs {
		close(ch)
	}
	_ = group.Wait()

	return Result{X: best, Quality: bestQ, PerRule: perRule, Cycles: cycles, Status: status}
}

type base struct {
	x             []float64
	q             float64
	perAdjQuality []float64
}

func runWorker(ctx context.Context, id int, rng *rand.Rand, engine Engine, prog *critic.Program, in <-chan base, out chan<- proposal) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case b, ok := <-in:
			if !ok {
				return nil
			}
			x := engine.Propose(rng, b.x, b.perAdjQuality)
			q, _ := prog.Evaluate(x)
			select {
			case out <- proposal{worker: id, x: x, q: q}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// mixSeed derives an independent, deterministic seed per worker from the
// run's seed via splitmix64, so two runs with the same seed and worker
// count always explore the same sequence of proposals.
func mixSeed(seed int64, worker int64) int64 {
	z := uint64(seed) + uint64(worker)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z = z ^ (z >> 31)
	return int64(z)
}
