// Package samples holds the empirically captured acceleration and deceleration
// runs of an actuator, and the line-oriented CSV format they are recorded in.
package samples

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
)

// ErrMalformedRow is returned when a field of a sample row is not a number.
var ErrMalformedRow = errors.New("malformed sample row")

// fieldsPerRow is the number of leading fields read from each row: output, pos, rate, time.
const fieldsPerRow = 4

// State is one trajectory sample.
type State struct {
	Output float64 `json:"output"` // signed actuator command; > 0 accelerating, < 0 braking
	Pos    float64 `json:"pos"`    // cumulative displacement along the path
	Rate   float64 `json:"rate"`   // speed magnitude
	Time   float64 `json:"time"`   // seconds since the start of the capture
}

// Store is an immutable pair of sample sequences.
//
// Forward holds the acceleration run in capture order. Reverse holds the
// braking run reversed end-to-end, so it reads from the stopping point outward
// toward the highest captured speed.
type Store struct {
	forward []State
	reverse []State
}

// NewStore builds a Store from already-ordered sequences. Both slices are copied.
func NewStore(forward, reverse []State) *Store {
	return &Store{forward: slices.Clone(forward), reverse: slices.Clone(reverse)}
}

// FromRecords classifies capture records by the sign of their output and
// reverses the braking run. Records with zero output are discarded.
func FromRecords(records []State) *Store {
	s := &Store{}
	for _, r := range records {
		switch {
		case r.Output > 0:
			s.forward = append(s.forward, r)
		case r.Output < 0:
			s.reverse = append(s.reverse, r)
		}
	}
	slices.Reverse(s.reverse)
	return s
}

// Load reads comma-separated capture rows from r. Rows with fewer than four
// fields are skipped; any unparseable or non-finite field aborts the load.
func Load(r io.Reader) (*Store, error) {
	var records []State
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Split(sc.Text(), ",")
		if len(fields) < fieldsPerRow {
			continue
		}
		var vals [fieldsPerRow]float64
		for i := range vals {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d field %d: %w: %v", line, i+1, ErrMalformedRow, err)
			}
			if !finite(v) {
				return nil, fmt.Errorf("line %d field %d: %w: non-finite value %v", line, i+1, ErrMalformedRow, v)
			}
			vals[i] = v
		}
		records = append(records, State{Output: vals[0], Pos: vals[1], Rate: vals[2], Time: vals[3]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}
	return FromRecords(records), nil
}

// Finite reports whether every field of s is a finite number.
func (s State) Finite() bool {
	return finite(s.Output) && finite(s.Pos) && finite(s.Rate) && finite(s.Time)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// LoadFile opens path and loads it with Load.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sample file: %w", err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Forward returns the acceleration run. The slice must not be modified.
func (s *Store) Forward() []State { return s.forward }

// Reverse returns the reversed braking run. The slice must not be modified.
func (s *Store) Reverse() []State { return s.reverse }
