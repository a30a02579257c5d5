// Package engine turns captured samples and a target distance into a
// motion profile, validating the request on the way in.
//
// Every front end goes through this package: the CLI and HTTP server hold a
// long-lived Engine over one sample store, while the WebAssembly build calls
// RunJSON with the samples inlined in each request.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/cxd309/motion-profiler/internal/profile"
	"github.com/cxd309/motion-profiler/internal/samples"
)

var (
	// ErrNonPositiveDistance is returned for a target distance that is not > 0.
	ErrNonPositiveDistance = errors.New("distance must be positive")
	// ErrNoForwardSamples is returned when the capture has no accelerating rows.
	ErrNoForwardSamples = errors.New("no forward samples")
	// ErrInvalidInput is returned for a malformed ProfileInput.
	ErrInvalidInput = errors.New("invalid profile input")
	// ErrTooManyStates is returned when a profile would exceed the state limit.
	ErrTooManyStates = errors.New("profile exceeds state limit")
)

// DefaultMaxStates bounds the states of one profile unless WithMaxStates overrides it.
const DefaultMaxStates = 1_000_000

var validate = validator.New(validator.WithRequiredStructEnabled())

// Engine generates profiles over one sample store.
type Engine struct {
	profiler  *profile.Profiler
	logger    *slog.Logger
	maxStates int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxStates sets the largest profile the engine will generate.
// Non-positive values keep DefaultMaxStates.
func WithMaxStates(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxStates = n
		}
	}
}

// New constructs an Engine over store. A nil logger discards output.
func New(store *samples.Store, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if len(store.Forward()) == 0 {
		return nil, ErrNoForwardSamples
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{profiler: profile.New(store), logger: logger, maxStates: DefaultMaxStates}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run generates the profile for one distance.
func (e *Engine) Run(distance float64) (ProfileLog, error) {
	if err := e.check(distance); err != nil {
		return ProfileLog{}, err
	}
	return e.record(distance, e.profiler.Generate(distance)), nil
}

// RunAll generates one profile per distance, concurrently.
func (e *Engine) RunAll(ctx context.Context, distances []float64) ([]ProfileLog, error) {
	for _, d := range distances {
		if err := e.check(d); err != nil {
			return nil, err
		}
	}
	paths, err := e.profiler.GenerateAll(ctx, distances)
	if err != nil {
		return nil, fmt.Errorf("generating profiles: %w", err)
	}
	logs := make([]ProfileLog, len(paths))
	for i, path := range paths {
		logs[i] = e.record(distances[i], path)
	}
	return logs, nil
}

func (e *Engine) record(distance float64, path []samples.State) ProfileLog {
	sum := profile.Summarize(path)
	e.logger.Debug("profile generated",
		"distance", distance,
		"states", len(path),
		"accelerating", sum.Accelerating,
		"braking", sum.Braking,
		"duration", sum.Duration,
	)
	return ProfileLog{Distance: distance, States: path, Summary: sum}
}

// check rejects a distance before any states are allocated for it.
func (e *Engine) check(d float64) error {
	if err := checkDistance(d); err != nil {
		return err
	}
	if n := e.profiler.StateBound(d); n > float64(e.maxStates) {
		return fmt.Errorf("%w: distance %v needs up to %.0f states, limit %d", ErrTooManyStates, d, n, e.maxStates)
	}
	return nil
}

func checkDistance(d float64) error {
	if !(d > 0) || math.IsInf(d, 1) {
		return fmt.Errorf("%w: got %v", ErrNonPositiveDistance, d)
	}
	return nil
}

// Validate checks a ProfileInput before any generation happens.
func (in ProfileInput) Validate() error {
	if err := checkDistance(in.Distance); err != nil {
		return err
	}
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	for i, s := range in.Samples {
		if !s.Finite() {
			return fmt.Errorf("%w: sample %d is not finite", ErrInvalidInput, i)
		}
	}
	return nil
}

// Execute validates in and generates its profile.
func Execute(in ProfileInput, logger *slog.Logger, opts ...Option) (ProfileLog, error) {
	if err := in.Validate(); err != nil {
		return ProfileLog{}, err
	}
	e, err := New(samples.FromRecords(in.Samples), logger, opts...)
	if err != nil {
		return ProfileLog{}, err
	}
	return e.Run(in.Distance)
}

// RunJSON is the entry point for the WebAssembly build.
// It accepts a JSON-encoded ProfileInput, generates the profile, and returns
// a JSON-encoded ProfileLog.
func RunJSON(jsonInput string) (string, error) {
	var input ProfileInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	log, err := Execute(input, nil)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(log)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
