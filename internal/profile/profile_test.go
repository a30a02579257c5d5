package profile

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/motion-profiler/internal/kinematics"
	"github.com/cxd309/motion-profiler/internal/samples"
)

const tol = 1e-9

func st(output, pos, rate, time float64) samples.State {
	return samples.State{Output: output, Pos: pos, Rate: rate, Time: time}
}

// storeOf builds a store from capture records, as a sample file would.
func storeOf(records ...samples.State) *samples.Store {
	return samples.FromRecords(records)
}

func requireTimeIncreasing(t *testing.T, path []samples.State) {
	t.Helper()
	for i := 1; i < len(path); i++ {
		require.Greater(t, path[i].Time, path[i-1].Time, "time at index %d", i)
	}
}

func requireSingleSignChange(t *testing.T, path []samples.State) {
	t.Helper()
	braking := false
	for i, s := range path {
		require.NotZero(t, s.Output, "output at index %d", i)
		if s.Output < 0 {
			braking = true
		} else {
			require.False(t, braking, "accelerating state after braking at index %d", i)
		}
	}
}

func TestGenerate_SymmetricShortTrip(t *testing.T) {
	store := samples.NewStore(
		[]samples.State{st(1, 0, 0, 0), st(1, 1, 1, 1), st(1, 3, 2, 2)},
		[]samples.State{st(-1, 0, 2, 2), st(-1, 2, 1, 1), st(-1, 3, 0, 0)},
	)

	path := New(store).Generate(4)

	require.NotEmpty(t, path)
	assert.InDelta(t, 4.0, path[len(path)-1].Pos, tol)
	requireTimeIncreasing(t, path)
	requireSingleSignChange(t, path)
	assert.Greater(t, path[0].Output, 0.0)
	assert.Less(t, path[len(path)-1].Output, 0.0)
	assert.Equal(t, []samples.State{
		st(1, 0, 0, 0), st(1, 1, 1, 1), st(1, 3, 2, 2), st(-1, 4, 2, 3),
	}, path)
}

func TestGenerate_ForwardExtrapolation(t *testing.T) {
	store := storeOf(
		st(1, 0, 0, 0), st(1, 1, 2, 0.5), st(1, 2, 2, 1),
		st(-1, 0, 2, 0), st(-1, 1.5, 1, 1), st(-1, 2, 0, 2),
	)

	path := New(store).Generate(10)

	require.Len(t, path, 12)
	for i, want := 3, 3.0; i < 9; i, want = i+1, want+1 {
		s := path[i]
		assert.Equal(t, 1.0, s.Output)
		assert.Equal(t, 2.0, s.Rate)
		assert.InDelta(t, want, s.Pos, tol)
		assert.InDelta(t, 1+0.5*(want-2), s.Time, tol)
	}
	assert.Equal(t, []samples.State{st(-1, 8, 2, 5), st(-1, 9.5, 1, 6), st(-1, 10, 0, 7)}, path[9:])
	requireTimeIncreasing(t, path)
}

func TestGenerate_ReverseExhaustedDuringMatch(t *testing.T) {
	store := storeOf(
		st(1, 0, 0, 0), st(1, 1, 2, 0.5), st(1, 2, 2, 1),
		st(-1, 0, 1, 0), st(-1, 0.5, 0, 1),
	)

	path := New(store).Generate(5)

	// Forward fill extrapolates past the last sample, then the overlap is trimmed.
	assert.Equal(t, []samples.State{
		st(1, 0, 0, 0), st(1, 1, 2, 0.5), st(1, 2, 2, 1), st(1, 3, 2, 1.5), st(1, 4, 2, 2),
		st(-1, 4.5, 1, 3), st(-1, 5, 0, 4),
	}, path)
}

func TestGenerate_ReverseExhaustedDuringPairedAdvance(t *testing.T) {
	store := storeOf(
		st(1, 0, 0, 0), st(1, 0.5, 1, 0.5), st(1, 1.5, 2, 1), st(1, 2.5, 2, 1.5),
		st(-1, 0, 2, 0), st(-1, 0.75, 1, 0.5), st(-1, 1, 0, 1),
	)

	path := New(store).Generate(5)

	require.Len(t, path, 8)
	assert.Equal(t, st(1, 3.5, 2, 2), path[4])
	assert.Equal(t, []samples.State{st(-1, 4, 2, 2.5), st(-1, 4.75, 1, 3), st(-1, 5, 0, 3.5)}, path[5:])
}

func TestGenerate_NonPositiveDistance(t *testing.T) {
	store := storeOf(st(1, 0, 0, 0), st(1, 1, 1, 1), st(-1, 0, 1, 0), st(-1, 1, 0, 1))
	p := New(store)

	assert.Empty(t, p.Generate(0))
	assert.Empty(t, p.Generate(-3))
}

func TestGenerate_EmptyForward(t *testing.T) {
	store := storeOf(st(-1, 0, 1, 0), st(-1, 1, 0, 1))

	assert.Empty(t, New(store).Generate(5))
}

func TestGenerate_EmptyReverse(t *testing.T) {
	store := storeOf(st(1, 0, 0, 0), st(1, 1, 1, 1))

	path := New(store).Generate(2.5)

	// Forward fills to the target, then the crossing state is trimmed.
	assert.Equal(t, []samples.State{st(1, 0, 0, 0), st(1, 1, 1, 1), st(1, 2, 1, 2)}, path)
}

func TestGenerate_NaNPositionTerminates(t *testing.T) {
	store := samples.NewStore(
		[]samples.State{st(1, 0, 0, 0), st(1, math.NaN(), 5, 1)},
		[]samples.State{st(-1, 0, 0, 0)},
	)

	path := New(store).Generate(5)

	require.Len(t, path, 3)
	assert.True(t, math.IsNaN(path[1].Pos))
}

func TestGenerate_SingleSamplePerSide(t *testing.T) {
	store := samples.NewStore([]samples.State{st(1, 0, 0, 0)}, []samples.State{st(-1, 0, 0, 0)})

	path := New(store).Generate(5)

	// No interval exists to separate the junction, so both states share t=0.
	assert.Equal(t, []samples.State{st(1, 0, 0, 0), st(-1, 5, 0, 0)}, path)
}

func TestStateBound(t *testing.T) {
	fine := storeOf(
		st(1, 0, 0, 0), st(1, 0.001, 1, 0.001),
		st(-1, 0, 1, 0), st(-1, 0.0005, 0, 0.001),
	)
	p := New(fine)
	assert.Greater(t, p.StateBound(1e5), 1e8)
	for _, d := range []float64{0.01, 0.5, 1} {
		assert.LessOrEqual(t, float64(len(p.Generate(d))), p.StateBound(d), "distance %v", d)
	}

	synth := New(synthStore(t, kinematics.ConstantAcceleration{AAcc: 1, ADcc: 1, VMaxVal: 2}, 0.1, 5))
	for _, d := range []float64{1, 5, 25} {
		assert.LessOrEqual(t, float64(len(synth.Generate(d))), synth.StateBound(d), "distance %v", d)
	}

	// Without a forward step nothing is extrapolated.
	flat := New(storeOf(st(1, 0, 0, 0), st(-1, 0, 0, 0)))
	assert.Equal(t, 2.0, flat.StateBound(1e9))
}

func TestGenerate_FlatForwardTerminates(t *testing.T) {
	store := storeOf(
		st(1, 0, 0, 0), st(1, 0, 0, 1),
		st(-1, 0, 1, 0), st(-1, 1, 0, 1),
	)

	path := New(store).Generate(5)

	require.Len(t, path, 4)
	assert.InDelta(t, 5.0, path[3].Pos, tol)
	requireTimeIncreasing(t, path)
}

// synthStore captures a constant-acceleration actuator.
func synthStore(t *testing.T, m kinematics.ConstantAcceleration, dt float64, cruise int) *samples.Store {
	t.Helper()
	recs, err := kinematics.Capture(m, kinematics.CaptureConfig{TimeStep: dt, CruiseSamples: cruise})
	require.NoError(t, err)
	return samples.FromRecords(recs)
}

func maxRateStep(path []samples.State) float64 {
	gap := 0.0
	for i := 1; i < len(path); i++ {
		gap = max(gap, math.Abs(path[i].Rate-path[i-1].Rate))
	}
	return gap
}

func TestGenerate_Invariants(t *testing.T) {
	store := synthStore(t, kinematics.ConstantAcceleration{AAcc: 1, ADcc: 1, VMaxVal: 2}, 0.1, 5)
	p := New(store)

	for _, d := range []float64{1, 2.5, 4, 5, 10, 25} {
		s := newStitcher(store, d)
		s.meet()
		s.trimOverlap()
		nFwd, nRev := len(s.fwd), len(s.rev)

		path := p.Generate(d)

		require.NotEmpty(t, path, "distance %v", d)
		assert.InDelta(t, d, path[len(path)-1].Pos, tol, "distance %v", d)
		requireTimeIncreasing(t, path)
		requireSingleSignChange(t, path)

		sum := Summarize(path)
		assert.Equal(t, nFwd, sum.Accelerating, "distance %v", d)
		assert.Equal(t, nRev, sum.Braking, "distance %v", d)

		accel, brake := path[:nFwd], path[nFwd:]
		require.NotEmpty(t, accel)
		require.NotEmpty(t, brake)
		bound := maxRateStep(accel) + maxRateStep(brake) + tol
		assert.LessOrEqual(t, math.Abs(accel[len(accel)-1].Rate-brake[0].Rate), bound, "distance %v", d)
	}
}

func TestGenerate_DoesNotMutateStore(t *testing.T) {
	store := synthStore(t, kinematics.ConstantAcceleration{AAcc: 2, ADcc: 1, VMaxVal: 1}, 0.05, 3)
	before := append([]samples.State(nil), store.Reverse()...)

	New(store).Generate(3)

	assert.Equal(t, before, store.Reverse())
}

func TestGenerateAll(t *testing.T) {
	store := synthStore(t, kinematics.ConstantAcceleration{AAcc: 1, ADcc: 2, VMaxVal: 3}, 0.1, 10)
	p := New(store)
	distances := []float64{0, 1, 3, 7, 12, 20, 50}

	got, err := p.GenerateAll(context.Background(), distances)
	require.NoError(t, err)
	require.Len(t, got, len(distances))
	for i, d := range distances {
		assert.Equal(t, p.Generate(d), got[i], "distance %v", d)
	}
}

func TestGenerateAll_Canceled(t *testing.T) {
	store := storeOf(st(1, 0, 0, 0), st(1, 1, 1, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(store).GenerateAll(ctx, []float64{1, 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	sum := Summarize([]samples.State{st(1, 0, 0, 1), st(1, 1, 2, 2), st(-1, 2, 1, 4)})
	assert.Equal(t, Summary{Duration: 3, Distance: 2, PeakRate: 2, Accelerating: 2, Braking: 1}, sum)
}
