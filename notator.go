package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

const (
	// ticksPerMeasure is the finest subdivision a chart can express
	ticksPerMeasure = 384

	// a subdivision this many times coarser than the declared one gets its own marker
	maxRefinementRatio = 8
)

// Fraction is a measure fraction in lowest terms, Den always divides 384
type Fraction struct {
	Num int
	Den int
}

func gcd[T constraints.Integer](a, b T) T {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

// measureTicks converts a span of milliseconds into 1/384 measure ticks,
// rounded to the nearest tick
func measureTicks(spanMs int, bpm float64) int {
	return int(math.Round(float64(spanMs) * 96 / 60000 * bpm))
}

// MeasureFraction converts a span at the given tempo into a reduced fraction
// of a measure
func MeasureFraction(spanMs int, bpm float64) Fraction {
	raw := measureTicks(spanMs, bpm)
	g := gcd(raw, ticksPerMeasure)
	return Fraction{Num: raw / g, Den: ticksPerMeasure / g}
}

// notator holds the state of one conversion
type notator struct {
	out    *bufio.Writer
	tempo  *TempoMap
	notes  *Timeline
	layout LaneLayout

	bpm      float64
	declared int // current {} subdivision, 0 when none in this tempo segment
	cursor   int

	nextTempo int
	nextNote  int
}

// Notate writes the simai notation for the timeline to w
func Notate(w io.Writer, tempo *TempoMap, timeline *Timeline, layout LaneLayout) error {
	if tempo == nil || tempo.Len() == 0 {
		return fmt.Errorf("%w: no tempo map", ErrEmptyData)
	}
	if timeline == nil || timeline.Len() == 0 {
		return fmt.Errorf("%w: no notes", ErrEmptyData)
	}

	n := &notator{
		out:       bufio.NewWriter(w),
		tempo:     tempo,
		notes:     timeline,
		layout:    layout,
		bpm:       tempo.InitialBPM(),
		cursor:    timeline.FirstStart(),
		nextTempo: 1, // the first event is the initial tempo
	}

	if err := n.run(); err != nil {
		return err
	}

	return n.out.Flush()
}

func (n *notator) run() error {
	seconds := float64(n.cursor) / 1000
	fmt.Fprintf(n.out, "&first=%s\n", strconv.FormatFloat(seconds, 'f', -1, 64))
	n.writeTempo()

	var hits []NoteEvent
	for n.nextNote < n.notes.Len() {
		n.absorbTempo()

		hits = n.collectHits(hits[:0])

		next, ok := n.nextInstant()

		separators := 0
		if ok {
			var err error
			separators, err = n.subdivide(next-n.cursor, n.landsOnNote(next))
			if err != nil {
				return err
			}
		}

		if err := n.writeHits(hits); err != nil {
			return err
		}
		n.out.WriteString(strings.Repeat(",", separators))

		if !ok {
			break
		}
		n.cursor = next
	}

	return nil
}

func (n *notator) writeTempo() {
	fmt.Fprintf(n.out, "(%.3f)", n.bpm)
}

// absorbTempo consumes all tempo events up to the cursor. Events before the
// cursor only occur ahead of the first note and take effect there.
func (n *notator) absorbTempo() {
	for n.nextTempo < n.tempo.Len() {
		event := n.tempo.At(n.nextTempo)
		if event.StartMs() > n.cursor {
			return
		}

		switch e := event.(type) {
		case TempoChange:
			n.bpm = e.BPM
			n.declared = 0
			n.out.WriteString("\n")
			n.writeTempo()
		case ScrollChange:
			// scroll speed has no notation
		}

		n.nextTempo++
	}
}

func (n *notator) collectHits(hits []NoteEvent) []NoteEvent {
	for n.nextNote < n.notes.Len() {
		note := n.notes.At(n.nextNote)
		if note.StartMs() != n.cursor {
			break
		}
		hits = append(hits, note)
		n.nextNote++
	}
	return hits
}

// nextInstant is the earlier of the next note and the next tempo event, or
// false when both have run out
func (n *notator) nextInstant() (int, bool) {
	hasNote := n.nextNote < n.notes.Len()
	hasTempo := n.nextTempo < n.tempo.Len()

	switch {
	case hasNote && hasTempo:
		return min(n.notes.At(n.nextNote).StartMs(), n.tempo.At(n.nextTempo).StartMs()), true
	case hasNote:
		return n.notes.At(n.nextNote).StartMs(), true
	case hasTempo:
		return n.tempo.At(n.nextTempo).StartMs(), true
	}
	return 0, false
}

// landsOnNote reports whether a note starts at the given instant
func (n *notator) landsOnNote(instant int) bool {
	return n.nextNote < n.notes.Len() && n.notes.At(n.nextNote).StartMs() == instant
}

// subdivide picks the subdivision for the span to the next instant, writing a
// {} marker when needed, and returns the number of separators. A span under
// one tick is only an error when it would put two note instants together.
func (n *notator) subdivide(spanMs int, toNote bool) (int, error) {
	frac := MeasureFraction(spanMs, n.bpm)
	if frac.Num == 0 && toNote {
		return 0, fmt.Errorf("%w: %dms at %dms is under one tick at %.3f bpm", ErrInexact, spanMs, n.cursor, n.bpm)
	}

	if n.declared == 0 || n.declared%frac.Den != 0 || n.declared/frac.Den >= maxRefinementRatio {
		fmt.Fprintf(n.out, "{%d}", frac.Den)
		n.declared = frac.Den
		return frac.Num, nil
	}

	return frac.Num * (n.declared / frac.Den), nil
}

func (n *notator) writeHits(hits []NoteEvent) error {
	for i, hit := range hits {
		if i > 0 {
			n.out.WriteByte('/')
		}
		n.out.WriteByte(n.layout.Symbol(hit.LaneIndex()))

		switch h := hit.(type) {
		case Hold:
			length := MeasureFraction(h.End-h.Start, n.bpm)
			if length.Num == 0 {
				return fmt.Errorf("%w: hold at %dms lasts %dms, under one tick at %.3f bpm",
					ErrInexact, h.Start, h.End-h.Start, n.bpm)
			}
			fmt.Fprintf(n.out, "h[%d:%d]", length.Den, length.Num)
		case Tap:
			// taps are just the lane symbol
		}
	}
	return nil
}
