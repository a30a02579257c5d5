package kinematics

import "math"

// ConstantAcceleration implements MotionModel using fixed acceleration and deceleration rates.
type ConstantAcceleration struct {
	AAcc    float64 `json:"a_acc" yaml:"a_acc"` // acceleration under positive output
	ADcc    float64 `json:"a_dcc" yaml:"a_dcc"` // braking deceleration under negative output (positive)
	VMaxVal float64 `json:"v_max" yaml:"v_max"` // saturation speed
}

func (c ConstantAcceleration) VMax() float64 { return c.VMaxVal }

func (c ConstantAcceleration) BrakingDistance(v float64) float64 {
	if c.ADcc <= 0 {
		return math.Inf(1)
	}
	return (v * v) / (2 * c.ADcc)
}

func (c ConstantAcceleration) AccelerateStep(v, targetV, dt float64) (float64, float64) {
	if c.AAcc <= 0 || v >= targetV {
		return targetV * dt, targetV
	}
	tReach := (targetV - v) / c.AAcc
	if tReach <= dt {
		// Saturates mid-step.
		return v*tReach + 0.5*c.AAcc*tReach*tReach + targetV*(dt-tReach), targetV
	}
	return v*dt + 0.5*c.AAcc*dt*dt, v + c.AAcc*dt
}

func (c ConstantAcceleration) DecelerateStep(v, targetV, dt float64) (float64, float64) {
	if c.ADcc <= 0 || v <= targetV {
		return targetV * dt, targetV
	}
	tReach := (v - targetV) / c.ADcc
	if tReach <= dt {
		s := v*tReach - 0.5*c.ADcc*tReach*tReach
		return math.Max(0, s) + targetV*(dt-tReach), targetV
	}
	return math.Max(0, v*dt-0.5*c.ADcc*dt*dt), v - c.ADcc*dt
}
