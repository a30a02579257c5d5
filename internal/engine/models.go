package engine

import (
	"github.com/cxd309/motion-profiler/internal/profile"
	"github.com/cxd309/motion-profiler/internal/samples"
)

// ProfileInput is the JSON-serialisable input to the engine.
//
// Samples are raw capture records, in capture order, classified and reversed
// exactly as a sample file is.
type ProfileInput struct {
	Distance float64         `json:"distance" validate:"gt=0"`
	Samples  []samples.State `json:"samples" validate:"required,min=1,max=1000000"`
}

// ProfileLog is the complete output of one profile generation.
type ProfileLog struct {
	Distance float64         `json:"distance"`
	States   []samples.State `json:"states"`
	Summary  profile.Summary `json:"summary"`
}
