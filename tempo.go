package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TempoEvent is either a TempoChange or a ScrollChange
type TempoEvent interface {
	StartMs() int
	tempoEvent()
}

// TempoChange sets a new tempo (an osu! uninherited timing point)
type TempoChange struct {
	Start            int     `json:"start"`
	BPM              float64 `json:"bpm"`
	PatternNumerator int     `json:"patternNumerator"` // grouping count, carried but unused
}

// ScrollChange only affects scroll speed (an osu! inherited timing point)
type ScrollChange struct {
	Start int     `json:"start"`
	Speed float64 `json:"speed"`
}

func (t TempoChange) StartMs() int  { return t.Start }
func (s ScrollChange) StartMs() int { return s.Start }

func (TempoChange) tempoEvent()  {}
func (ScrollChange) tempoEvent() {}

// BPMOf returns the tempo of a TempoChange. Passing a ScrollChange is a
// programming error and panics.
func BPMOf(event TempoEvent) float64 {
	switch e := event.(type) {
	case TempoChange:
		return e.BPM
	case ScrollChange:
		panic(fmt.Sprintf("BPMOf called on scroll change at %dms", e.Start))
	default:
		panic(fmt.Sprintf("unknown tempo event %T", event))
	}
}

// timing point fields: time,beatLength,meter,sampleSet,sampleIndex,volume,uninherited[,effects]
const timingPointMinFields = 7

// ParseTimingPoint parses one line of the [TimingPoints] section
func ParseTimingPoint(line string) (TempoEvent, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) < timingPointMinFields {
		return nil, fmt.Errorf("%w: timing point has %d fields, need %d", ErrMalformedInput, len(fields), timingPointMinFields)
	}

	number := func(i int) (float64, error) {
		value, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: timing point field %d '%s' is not a number", ErrMalformedInput, i+1, fields[i])
		}
		return value, nil
	}

	start, err := number(0)
	if err != nil {
		return nil, err
	}
	beatLength, err := number(1)
	if err != nil {
		return nil, err
	}
	pattern, err := number(3)
	if err != nil {
		return nil, err
	}
	uninherited, err := number(6)
	if err != nil {
		return nil, err
	}

	if uninherited == 0 {
		return ScrollChange{
			Start: int(start),
			Speed: 100 / -beatLength,
		}, nil
	}

	bpm := 60000 / beatLength
	if bpm <= 0 || math.IsInf(bpm, 0) || math.IsNaN(bpm) {
		return nil, fmt.Errorf("%w: beat length %v gives invalid tempo", ErrMalformedInput, beatLength)
	}

	return TempoChange{
		Start:            int(start),
		BPM:              bpm,
		PatternNumerator: int(pattern),
	}, nil
}

// TempoMap is the ordered, read-only list of tempo events of a beatmap
type TempoMap struct {
	events []TempoEvent
}

// NewTempoMap checks that the first event defines a tempo and that start
// times never decrease
func NewTempoMap(events []TempoEvent) (*TempoMap, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: no timing points", ErrEmptyData)
	}
	if _, ok := events[0].(TempoChange); !ok {
		return nil, fmt.Errorf("%w: first timing point at %dms is not a tempo change", ErrEmptyData, events[0].StartMs())
	}

	for i := 1; i < len(events); i++ {
		if events[i].StartMs() < events[i-1].StartMs() {
			return nil, fmt.Errorf("%w: timing point %d at %dms comes before %dms",
				ErrUnordered, i+1, events[i].StartMs(), events[i-1].StartMs())
		}
	}

	owned := make([]TempoEvent, len(events))
	copy(owned, events)
	return &TempoMap{events: owned}, nil
}

// Len is the number of tempo events, scroll changes included
func (m *TempoMap) Len() int { return len(m.events) }

// At returns the i-th tempo event in start order
func (m *TempoMap) At(i int) TempoEvent { return m.events[i] }

// InitialBPM is the tempo of the first event, always a TempoChange
func (m *TempoMap) InitialBPM() float64 {
	return BPMOf(m.events[0])
}

// BPMAt finds the tempo in effect at the given time. Times before the first
// event use the initial tempo.
func (m *TempoMap) BPMAt(ms int) float64 {
	bpm := m.InitialBPM()

	for _, event := range m.events {
		if event.StartMs() > ms {
			break
		}
		if change, ok := event.(TempoChange); ok {
			bpm = change.BPM
		}
	}

	return bpm
}

// TempoChanges counts the tempo-defining events
func (m *TempoMap) TempoChanges() int {
	count := 0
	for _, event := range m.events {
		if _, ok := event.(TempoChange); ok {
			count++
		}
	}
	return count
}
