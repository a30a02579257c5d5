// Package profile synthesizes trapezoidal motion profiles from captured
// acceleration and braking runs.
//
// A profile is built from both ends at once: the acceleration run grows
// forward from the start while the braking run grows backward from the stop,
// the slower side is extended until the speeds match, and the two halves are
// joined where they meet:
//
//  1. Paired advance - one state on each side per iteration, then a velocity match.
//  2. Forward fill - if the braking run is exhausted first, acceleration
//     continues (extrapolated at saturation speed) until the fronts meet.
//  3. Overlap trim - a forward state past the meeting point is dropped.
//  4. Rebase - the braking states are emitted fastest first, shifted in time
//     and position to follow the last forward state.
//  5. End-at-distance - the braking states are shifted so the last one stops
//     exactly at the requested distance.
package profile

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/cxd309/motion-profiler/internal/samples"
)

// Profiler generates profiles from one immutable sample store.
// It is safe for concurrent use; every call owns its own cursors and buffers.
type Profiler struct {
	store *samples.Store
}

// New returns a Profiler reading from store.
func New(store *samples.Store) *Profiler {
	return &Profiler{store: store}
}

// Generate returns a time-stamped trajectory covering distance.
//
// Generate never fails. A non-positive distance yields an empty trajectory;
// an empty acceleration run yields an empty or trivial one.
func (p *Profiler) Generate(distance float64) []samples.State {
	s := newStitcher(p.store, distance)
	s.meet()
	s.trimOverlap()
	path := s.concatenate()
	endAt(path, distance)
	return path
}

// StateBound returns an upper bound on the number of states Generate(distance)
// emits: every captured sample, plus the forward states extrapolated from the
// last captured step out to the furthest point the tail can reach.
func (p *Profiler) StateBound(distance float64) float64 {
	fwd, rev := p.store.Forward(), p.store.Reverse()
	n := float64(len(fwd) + len(rev))
	if len(fwd) < 2 {
		return n
	}
	last, prev := fwd[len(fwd)-1], fwd[len(fwd)-2]
	step := last.Pos - prev.Pos
	if !(last.Output > 0) || !(step > 0) {
		return n
	}
	// tailEnd only grows on positive braking deltas.
	reach := distance
	for i := 1; i < len(rev); i++ {
		reach += max(0, rev[i].Pos-rev[i-1].Pos)
	}
	if !(reach > last.Pos) {
		return n
	}
	return n + math.Ceil((reach-last.Pos)/step) + 1
}

// GenerateAll generates one trajectory per distance concurrently.
// Results are in the order of distances.
func (p *Profiler) GenerateAll(ctx context.Context, distances []float64) ([][]samples.State, error) {
	out := make([][]samples.State, len(distances))
	g, ctx := errgroup.WithContext(ctx)
	for i, d := range distances {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = p.Generate(d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
