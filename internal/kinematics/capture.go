package kinematics

import (
	"errors"
	"fmt"

	"github.com/cxd309/motion-profiler/internal/samples"
)

// maxCaptureSteps bounds each phase of a synthesized capture.
const maxCaptureSteps = 1_000_000

// ErrUnboundedCapture is returned when a model never saturates or never stops.
var ErrUnboundedCapture = errors.New("capture did not converge")

// CaptureConfig controls how a model is sampled.
type CaptureConfig struct {
	TimeStep      float64 // seconds between samples
	CruiseSamples int     // samples held at VMax after saturating
}

// Capture drives m from rest to VMax under output +1, holds VMax for
// cfg.CruiseSamples samples, then brakes to rest under output -1.
//
// Records are returned in capture (time) order, exactly as a recording of a
// real actuator would be written: the acceleration run from pos 0, then the
// braking run with its own clock and position from 0.
func Capture(m MotionModel, cfg CaptureConfig) ([]samples.State, error) {
	dt := cfg.TimeStep
	if dt <= 0 {
		return nil, fmt.Errorf("time step must be positive, got %v", dt)
	}
	vmax := m.VMax()
	if vmax <= 0 {
		return nil, fmt.Errorf("v_max must be positive, got %v", vmax)
	}

	out := []samples.State{{Output: 1}}
	pos, v, t := 0.0, 0.0, 0.0
	for steps := 0; v < vmax; steps++ {
		if steps == maxCaptureSteps {
			return nil, fmt.Errorf("accelerating to %v: %w", vmax, ErrUnboundedCapture)
		}
		d, nv := m.AccelerateStep(v, vmax, dt)
		if nv <= v {
			return nil, fmt.Errorf("accelerating to %v: %w", vmax, ErrUnboundedCapture)
		}
		pos, v, t = pos+d, nv, t+dt
		out = append(out, samples.State{Output: 1, Pos: pos, Rate: v, Time: t})
	}
	for range cfg.CruiseSamples {
		pos, t = pos+vmax*dt, t+dt
		out = append(out, samples.State{Output: 1, Pos: pos, Rate: vmax, Time: t})
	}

	pos, v, t = 0, vmax, 0
	out = append(out, samples.State{Output: -1, Rate: v})
	for steps := 0; v > 0; steps++ {
		if steps == maxCaptureSteps {
			return nil, fmt.Errorf("braking from %v: %w", vmax, ErrUnboundedCapture)
		}
		d, nv := m.DecelerateStep(v, 0, dt)
		if nv >= v {
			return nil, fmt.Errorf("braking from %v: %w", vmax, ErrUnboundedCapture)
		}
		pos, v, t = pos+d, nv, t+dt
		out = append(out, samples.State{Output: -1, Pos: pos, Rate: v, Time: t})
	}
	return out, nil
}
