// Package results collects one scalar per task and times the distribution
// phase.
package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

// Errors returned by Slots.
var (
	ErrSlotRewritten   = errors.New("result slot written twice")
	ErrIndexOutOfRange = errors.New("result index out of range")
)

// Slots is a preallocated, write-once result array. Set may be called
// concurrently for distinct indices; reads are valid only after every
// writer has finished.
type Slots struct {
	values  []float64
	written []atomic.Bool
}

// NewSlots allocates n empty slots.
func NewSlots(n int) *Slots {
	n = max(n, 0)
	return &Slots{
		values:  make([]float64, n),
		written: make([]atomic.Bool, n),
	}
}

// Set stores v at index i. Writing the same index twice is a programming
// error and reports ErrSlotRewritten without touching the stored value.
func (s *Slots) Set(i int, v float64) error {
	if i < 0 || i >= len(s.values) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(s.values))
	}
	if s.written[i].Swap(true) {
		return fmt.Errorf("%w: index %d", ErrSlotRewritten, i)
	}
	s.values[i] = v
	return nil
}

// Len returns the number of slots.
func (s *Slots) Len() int { return len(s.values) }

// Count returns how many slots have been written.
func (s *Slots) Count() int {
	n := 0
	for i := range s.written {
		if s.written[i].Load() {
			n++
		}
	}
	return n
}

// Missing returns the indices that were never written.
func (s *Slots) Missing() []int {
	var out []int
	for i := range s.written {
		if !s.written[i].Load() {
			out = append(out, i)
		}
	}
	return out
}

// Values returns the result array in index order. The slice is shared
// with the Slots.
func (s *Slots) Values() []float64 { return s.values }

// Dump formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Entry is one dumped result.
type Entry struct {
	Index int     `json:"index" yaml:"index"`
	Value float64 `json:"value" yaml:"value"`
}

// Dump writes every result in index order. The text format prints one
// "%f" value per line.
func (s *Slots) Dump(w io.Writer, format string) error {
	switch format {
	case FormatText, "":
		for _, v := range s.values {
			if _, err := fmt.Fprintf(w, "%f\n", v); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s.entries())
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s.entries()); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown results format %q", format)
	}
}

func (s *Slots) entries() []Entry {
	out := make([]Entry, len(s.values))
	for i, v := range s.values {
		out[i] = Entry{Index: i, Value: v}
	}
	return out
}

// Timer measures one wall-clock interval with a monotonic clock.
type Timer struct {
	start time.Time
	stop  time.Time
}

// Start records the start instant.
func (t *Timer) Start() {
	t.start = time.Now()
	t.stop = time.Time{}
}

// Stop records the stop instant and returns the elapsed time.
func (t *Timer) Stop() time.Duration {
	t.stop = time.Now()
	return t.Elapsed()
}

// Elapsed returns stop-start, or the running time if Stop has not been
// called. It is zero before Start.
func (t *Timer) Elapsed() time.Duration {
	switch {
	case t.start.IsZero():
		return 0
	case t.stop.IsZero():
		return time.Since(t.start)
	default:
		return t.stop.Sub(t.start)
	}
}

// Seconds returns Elapsed in seconds.
func (t *Timer) Seconds() float64 { return t.Elapsed().Seconds() }
