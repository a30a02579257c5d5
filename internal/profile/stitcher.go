package profile

import "github.com/cxd309/motion-profiler/internal/samples"

// side selects which end of the trajectory a step extends.
type side int

const (
	forward side = iota
	reverse
)

// cursor reads one sample sequence in order.
type cursor struct {
	seq []samples.State
	i   int
}

func (c *cursor) next() (samples.State, bool) {
	if c.i >= len(c.seq) {
		return samples.State{}, false
	}
	c.i++
	return c.seq[c.i-1], true
}

// stitcher holds the per-call state of one Generate run.
//
// fwd grows from pos 0 in world coordinates. rev grows from the stopping point
// outward in its own capture frame; only its position deltas are used until
// the tail is rebased, and they walk tailEnd down from the target distance.
type stitcher struct {
	fwdCur, revCur cursor
	fwd, rev       []samples.State
	frontEnd       float64
	tailEnd        float64
}

func newStitcher(store *samples.Store, distance float64) *stitcher {
	return &stitcher{
		fwdCur:  cursor{seq: store.Forward()},
		revCur:  cursor{seq: store.Reverse()},
		tailEnd: distance,
	}
}

func (s *stitcher) progress(sd side) *[]samples.State {
	if sd == forward {
		return &s.fwd
	}
	return &s.rev
}

func (s *stitcher) cur(sd side) *cursor {
	if sd == forward {
		return &s.fwdCur
	}
	return &s.revCur
}

// advance appends one state to the given side and reports whether it did.
// Only the forward side extrapolates once its samples run out.
func (s *stitcher) advance(sd side) bool {
	if !(s.frontEnd < s.tailEnd) {
		return false
	}
	buf := s.progress(sd)
	if st, ok := s.cur(sd).next(); ok {
		*buf = append(*buf, st)
	} else if st, ok := extrapolate(*buf); ok {
		*buf = append(*buf, st)
	} else {
		return false
	}

	if n := len(s.fwd); n > 0 {
		s.frontEnd = s.fwd[n-1].Pos
	}
	if n := len(s.rev); sd == reverse && n > 1 {
		s.tailEnd += s.rev[n-1].Pos - s.rev[n-2].Pos
	}
	return true
}

// extrapolate continues buf linearly from its last two states, holding the
// rate. It refuses for braking states and for steps that would not gain ground,
// including NaN positions.
func extrapolate(buf []samples.State) (samples.State, bool) {
	n := len(buf)
	if n < 2 {
		return samples.State{}, false
	}
	last, prev := buf[n-1], buf[n-2]
	if !(last.Output > 0) || !(last.Pos > prev.Pos) {
		return samples.State{}, false
	}
	return samples.State{
		Output: last.Output,
		Pos:    2*last.Pos - prev.Pos,
		Rate:   last.Rate,
		Time:   2*last.Time - prev.Time,
	}, true
}

func lastOf(buf []samples.State) samples.State { return buf[len(buf)-1] }

// matchResult reports how a velocity match ended.
type matchResult int

const (
	matched matchResult = iota
	reverseShort
	forwardShort
)

// meet runs the paired advance and, when the braking run was too short to
// reach the forward front, the forward fill.
func (s *stitcher) meet() {
	fill := false
pairing:
	for s.frontEnd < s.tailEnd {
		if !s.advance(forward) {
			break
		}
		if !s.advance(reverse) {
			fill = true
			break
		}
		switch s.matchRates() {
		case reverseShort:
			fill = true
			break pairing
		case forwardShort:
			break pairing
		}
	}
	for fill && s.advance(forward) {
	}
}

// matchRates extends whichever side is slower until it is at least as fast
// as the other.
func (s *stitcher) matchRates() matchResult {
	f, r := lastOf(s.fwd).Rate, lastOf(s.rev).Rate
	switch {
	case f > r:
		for lastOf(s.rev).Rate < lastOf(s.fwd).Rate {
			if !s.advance(reverse) {
				return reverseShort
			}
		}
	case f < r:
		for lastOf(s.fwd).Rate < lastOf(s.rev).Rate {
			if !s.advance(forward) {
				return forwardShort
			}
		}
	}
	return matched
}

// trimOverlap drops the last forward state when the fronts crossed and the
// forward side holds more states than the reverse side.
func (s *stitcher) trimOverlap() {
	if s.frontEnd > s.tailEnd && len(s.fwd) > len(s.rev) {
		s.fwd = s.fwd[:len(s.fwd)-1]
	}
}

// concatenate emits the forward states followed by the reverse states in
// reverse order, rebased so the braking run starts where acceleration ends.
func (s *stitcher) concatenate() []samples.State {
	out := make([]samples.State, 0, len(s.fwd)+len(s.rev))
	out = append(out, s.fwd...)
	if len(s.rev) == 0 {
		return out
	}

	start := lastOf(s.rev)
	var end samples.State
	if len(s.fwd) > 0 {
		end = lastOf(s.fwd)
	} else {
		end = samples.State{Time: start.Time, Pos: start.Pos}
	}
	dt := end.Time - start.Time + s.junctionInterval()
	dp := end.Pos - start.Pos
	for i := len(s.rev) - 1; i >= 0; i-- {
		st := s.rev[i]
		st.Time += dt
		st.Pos += dp
		out = append(out, st)
	}
	return out
}

// junctionInterval is the time between the last forward state and the first
// braking state: the outermost braking interval, else the last forward one.
func (s *stitcher) junctionInterval() float64 {
	if n := len(s.rev); n > 1 {
		return s.rev[n-2].Time - s.rev[n-1].Time
	}
	if n := len(s.fwd); n > 1 {
		return s.fwd[n-1].Time - s.fwd[n-2].Time
	}
	return 0
}

// endAt shifts every braking state so the trajectory stops exactly at distance.
// Accelerating states are left untouched.
func endAt(path []samples.State, distance float64) {
	if len(path) == 0 {
		return
	}
	offset := lastOf(path).Pos - distance
	for i := range path {
		if path[i].Output < 0 {
			path[i].Pos -= offset
		}
	}
}
