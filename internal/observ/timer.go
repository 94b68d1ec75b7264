package observ

import (
	"fmt"
	"time"
)

// Span records the duration and metadata of one IR pass run.
type Span struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer tracks the execution time of a sequence of passes.
type Timer struct {
	spans []Span
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{spans: make([]Span, 0, 8)} }

// Begin starts a new span and returns its index.
func (t *Timer) Begin(name string) int {
	t.spans = append(t.spans, Span{Name: name, Start: time.Now()})
	return len(t.spans) - 1
}

// End finishes a span by its index.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.spans) {
		return
	}
	s := &t.spans[idx]
	s.Dur = time.Since(s.Start)
	s.Note = note
}

// Summary returns a human-readable string summarizing all tracked spans.
func (t *Timer) Summary() string {
	report := t.Report()
	out := "pass timings:\n"
	for _, s := range report.Spans {
		out += fmt.Sprintf("  %-24s %7.2f ms", s.Name, s.DurationMS)
		if s.Note != "" {
			out += "  // " + s.Note
		}
		out += "\n"
	}
	out += fmt.Sprintf("  %-24s %7.2f ms\n", "total", report.TotalMS)
	return out
}

// SpanReport is the serializable form of one span.
type SpanReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates the timer's spans.
type Report struct {
	TotalMS float64      `json:"total_ms"`
	Spans   []SpanReport `json:"spans"`
}

// Report builds the span list and the total duration in milliseconds.
func (t *Timer) Report() Report {
	if len(t.spans) == 0 {
		return Report{}
	}
	report := Report{
		Spans: make([]SpanReport, len(t.spans)),
	}
	var total time.Duration
	for i, span := range t.spans {
		total += span.Dur
		report.Spans[i] = SpanReport{
			Name:       span.Name,
			DurationMS: durationToMillis(span.Dur),
			Note:       span.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
