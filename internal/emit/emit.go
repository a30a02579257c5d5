// Package emit writes trajectories in the formats the profiler produces.
package emit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/cxd309/motion-profiler/internal/samples"
)

// Format names an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want csv or json)", s)
	}
}

// Profile is one generated trajectory with the distance it was generated for.
type Profile struct {
	Distance float64         `json:"distance"`
	States   []samples.State `json:"states"`
}

// Write encodes profiles to w in format f.
//
// CSV writes one "output, pos, rate, time" row per state, the same layout a
// sample file uses, with a blank line between profiles. JSON writes an array.
func Write(w io.Writer, f Format, profiles []Profile) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, profiles)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(profiles); err != nil {
			return fmt.Errorf("encoding profiles: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

func writeCSV(w io.Writer, profiles []Profile) error {
	bw := bufio.NewWriter(w)
	for i, p := range profiles {
		if i > 0 {
			bw.WriteByte('\n')
		}
		for _, s := range p.States {
			bw.WriteString(Row(s))
			bw.WriteByte('\n')
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing profiles: %w", err)
	}
	return nil
}

// Row formats one state as a sample-file row.
func Row(s samples.State) string {
	return ftoa(s.Output) + ", " + ftoa(s.Pos) + ", " + ftoa(s.Rate) + ", " + ftoa(s.Time)
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
