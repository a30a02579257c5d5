// Package kinematics defines the MotionModel interface for actuator traction and
// braking physics, along with built-in implementations.
//
// Models are used to synthesize capture runs in the same shape a real actuator
// produces, so profiles can be generated and tested without a recording.
package kinematics

// MotionModel is the physics contract every kinematics implementation must satisfy.
// Distances, velocities and times share whatever unit system the capture uses.
type MotionModel interface {
	// VMax returns the actuator's saturation speed.
	VMax() float64

	// BrakingDistance returns the minimum distance needed to stop from velocity v.
	BrakingDistance(v float64) float64

	// AccelerateStep advances toward targetV over dt.
	// If targetV is reached before dt expires, the remainder is spent cruising.
	// Returns (distance travelled, new velocity).
	AccelerateStep(v, targetV, dt float64) (dist, newV float64)

	// DecelerateStep brakes toward targetV (≥ 0) over dt.
	// If targetV is reached before dt expires, the remainder is spent at targetV.
	// Returns (distance travelled, new velocity).
	DecelerateStep(v, targetV, dt float64) (dist, newV float64)
}
