package profile

import "github.com/cxd309/motion-profiler/internal/samples"

// Summary describes an emitted trajectory.
type Summary struct {
	Duration     float64 `json:"duration"` // time of the last state minus the first
	Distance     float64 `json:"distance"` // pos of the last state
	PeakRate     float64 `json:"peak_rate"`
	Accelerating int     `json:"accelerating"` // states with positive output
	Braking      int     `json:"braking"`      // states with negative output
}

// Summarize computes a Summary of path. An empty path yields the zero Summary.
func Summarize(path []samples.State) Summary {
	var sum Summary
	if len(path) == 0 {
		return sum
	}
	sum.Duration = path[len(path)-1].Time - path[0].Time
	sum.Distance = path[len(path)-1].Pos
	for _, st := range path {
		sum.PeakRate = max(sum.PeakRate, st.Rate)
		switch {
		case st.Output > 0:
			sum.Accelerating++
		case st.Output < 0:
			sum.Braking++
		}
	}
	return sum
}
