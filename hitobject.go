package main

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	laneCount       = 8
	playfieldWidth  = 512
	laneScaleFactor = 4
)

// NoteEvent is either a Tap or a Hold
type NoteEvent interface {
	LaneIndex() int
	StartMs() int
	noteEvent()
}

// Tap is a single hit at one lane
type Tap struct {
	Lane  int `json:"lane"`
	Start int `json:"start"`
}

// Hold is held from Start until End, End always after Start
type Hold struct {
	Lane  int `json:"lane"`
	Start int `json:"start"`
	End   int `json:"end"`
}

func (t Tap) LaneIndex() int  { return t.Lane }
func (h Hold) LaneIndex() int { return h.Lane }
func (t Tap) StartMs() int    { return t.Start }
func (h Hold) StartMs() int   { return h.Start }

func (Tap) noteEvent()  {}
func (Hold) noteEvent() {}

// ParseHitObject parses one line of the [HitObjects] section. Only the text
// before the first colon (the hit sample) is read.
func ParseHitObject(line string) (NoteEvent, error) {
	head := strings.TrimSpace(line)
	if before, _, found := strings.Cut(head, ":"); found {
		head = before
	}

	parts := strings.Split(head, ",")
	fields := make([]int, len(parts))
	for i, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: hit object field %d '%s' is not an integer", ErrMalformedInput, i+1, part)
		}
		fields[i] = value
	}

	// x,y,time,type
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: hit object has %d fields, need at least 4", ErrMalformedInput, len(fields))
	}

	x, start, kind := fields[0], fields[2], fields[3]
	if x < 0 {
		return nil, fmt.Errorf("%w: x coordinate %d is negative", ErrMalformedInput, x)
	}
	lane := x * laneScaleFactor / playfieldWidth
	if lane >= laneCount {
		return nil, fmt.Errorf("%w: x coordinate %d maps to lane %d, outside 0-%d", ErrMalformedInput, x, lane, laneCount-1)
	}

	if kind&1 == 1 {
		return Tap{Lane: lane, Start: start}, nil
	}

	// x,y,time,type,hitSound,endTime
	if len(fields) < 6 {
		return nil, fmt.Errorf("%w: hold note at %dms has no end time", ErrMalformedInput, start)
	}
	end := fields[5]
	if end <= start {
		return nil, fmt.Errorf("%w: hold note at %dms ends at %dms", ErrMalformedInput, start, end)
	}

	return Hold{Lane: lane, Start: start, End: end}, nil
}

// Timeline is the ordered, read-only list of notes of a beatmap
type Timeline struct {
	notes []NoteEvent
}

// NewTimeline requires at least one note and non-decreasing start times
func NewTimeline(notes []NoteEvent) (*Timeline, error) {
	if len(notes) == 0 {
		return nil, fmt.Errorf("%w: no hit objects", ErrEmptyData)
	}

	for i := 1; i < len(notes); i++ {
		if notes[i].StartMs() < notes[i-1].StartMs() {
			return nil, fmt.Errorf("%w: hit object %d at %dms comes before %dms",
				ErrUnordered, i+1, notes[i].StartMs(), notes[i-1].StartMs())
		}
	}

	owned := make([]NoteEvent, len(notes))
	copy(owned, notes)
	return &Timeline{notes: owned}, nil
}

// Len is the number of notes
func (t *Timeline) Len() int { return len(t.notes) }

// At returns the i-th note in start order
func (t *Timeline) At(i int) NoteEvent { return t.notes[i] }

// FirstStart is the start time of the first note
func (t *Timeline) FirstStart() int { return t.notes[0].StartMs() }

// LastStart is the start time of the last note
func (t *Timeline) LastStart() int { return t.notes[len(t.notes)-1].StartMs() }

// Counts returns the number of taps and holds
func (t *Timeline) Counts() (taps, holds int) {
	for _, note := range t.notes {
		switch note.(type) {
		case Tap:
			taps++
		case Hold:
			holds++
		}
	}
	return taps, holds
}
