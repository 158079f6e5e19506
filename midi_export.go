package main

import (
	"fmt"
	"io"
	"log"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	previewTicksPerQuarter        = 480
	gmDrumChannel          uint8  = 9   // default percussion channel in GM
	tapDurationTicks       uint32 = 120 // a 16th note at 480 ticks per quarter note
	previewVelocity        uint8  = 100
)

// one GM percussion key per lane, left to right
var laneDrumKeys = [laneCount]uint8{
	36, // Bass Drum 1
	38, // Acoustic Snare
	42, // Closed Hi Hat
	45, // Low Tom
	48, // Hi Mid Tom
	46, // Open Hi-Hat
	51, // Ride Cymbal 1
	49, // Crash Cymbal 1
}

// MidiEvent is a MIDI message at an absolute tick
type MidiEvent struct {
	Time    uint32
	Message smf.Message
}

// MidiPreviewExporter builds a Standard MIDI File that plays the chart back
// on the GM drum channel, so the conversion can be checked by ear
type MidiPreviewExporter struct {
	smf   *smf.SMF
	tempo *TempoMap
}

func NewMidiPreviewExporter() *MidiPreviewExporter {
	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(previewTicksPerQuarter)
	return &MidiPreviewExporter{smf: s}
}

// ticksAt converts milliseconds to ticks by walking the tempo changes
func ticksAt(tempo *TempoMap, ms int) uint32 {
	bpm := tempo.InitialBPM()
	segmentStart := 0
	var ticks float64

	for i := 1; i < tempo.Len(); i++ {
		change, ok := tempo.At(i).(TempoChange)
		if !ok {
			continue
		}
		if change.Start >= ms {
			break
		}
		if change.Start > segmentStart {
			ticks += float64(change.Start-segmentStart) * bpm / 60000 * previewTicksPerQuarter
			segmentStart = change.Start
		}
		bpm = change.BPM
	}

	if ms > segmentStart {
		ticks += float64(ms-segmentStart) * bpm / 60000 * previewTicksPerQuarter
	}
	return uint32(ticks + 0.5)
}

// SetupTempoTrack writes the tempo changes as track 0. Scroll changes have
// no MIDI equivalent and are dropped.
func (e *MidiPreviewExporter) SetupTempoTrack(tempo *TempoMap) error {
	if tempo == nil {
		return fmt.Errorf("tempo map is nil")
	}
	e.tempo = tempo

	var events []MidiEvent
	events = append(events, MidiEvent{Time: 0, Message: smf.Message(smf.MetaTrackSequenceName("Tempo"))})

	for i := 0; i < tempo.Len(); i++ {
		change, ok := tempo.At(i).(TempoChange)
		if !ok {
			continue
		}
		at := uint32(0)
		if i > 0 && change.Start > 0 {
			at = ticksAt(tempo, change.Start)
		}
		events = append(events, MidiEvent{Time: at, Message: smf.Message(smf.MetaTempo(change.BPM))})
	}

	e.smf.Add(eventsToTrack(events))
	return nil
}

// AddNotes writes every note as a drum hit on its lane's key. Holds sound for
// their full length.
func (e *MidiPreviewExporter) AddNotes(timeline *Timeline) error {
	if e.tempo == nil {
		return fmt.Errorf("tempo track must be set up before notes")
	}
	if timeline == nil || timeline.Len() == 0 {
		return fmt.Errorf("no notes to export")
	}

	events := []MidiEvent{
		{Time: 0, Message: smf.Message(smf.MetaTrackSequenceName("Lanes"))},
	}

	for i := 0; i < timeline.Len(); i++ {
		note := timeline.At(i)
		key := laneDrumKeys[note.LaneIndex()]
		start := ticksAt(e.tempo, note.StartMs())

		var end uint32
		switch n := note.(type) {
		case Tap:
			end = start + tapDurationTicks
		case Hold:
			end = ticksAt(e.tempo, n.End)
		}

		events = append(events,
			MidiEvent{Time: start, Message: smf.Message(midi.NoteOn(gmDrumChannel, key, previewVelocity))},
			MidiEvent{Time: end, Message: smf.Message(midi.NoteOff(gmDrumChannel, key))},
		)
	}

	log.Printf("Generated %d MIDI events from %d notes", len(events)-1, timeline.Len())
	e.smf.Add(eventsToTrack(events))
	return nil
}

// WriteTo writes the finished MIDI file
func (e *MidiPreviewExporter) WriteTo(writer io.Writer) error {
	if len(e.smf.Tracks) < 2 {
		return fmt.Errorf("no tracks to export")
	}

	_, err := e.smf.WriteTo(writer)
	if err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

// eventsToTrack sorts events by time and converts them to delta times.
// Note-offs go before note-ons on the same tick so repeated hits retrigger.
func eventsToTrack(events []MidiEvent) smf.Track {
	sorted := make([]MidiEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Time == sorted[j].Time {
			var ch, key, vel uint8
			isOff1 := sorted[i].Message.GetNoteOff(&ch, &key, &vel)
			isOff2 := sorted[j].Message.GetNoteOff(&ch, &key, &vel)
			return isOff1 && !isOff2
		}
		return sorted[i].Time < sorted[j].Time
	})

	track := smf.Track{}
	var lastTime uint32
	for _, event := range sorted {
		track = append(track, smf.Event{Delta: event.Time - lastTime, Message: event.Message})
		lastTime = event.Time
	}

	track = append(track, smf.Event{Delta: 0, Message: smf.EOT})
	return track
}

// ExportMidiPreview writes the tempo map and notes of a beatmap as MIDI
func ExportMidiPreview(beatmap *Beatmap, writer io.Writer) error {
	exporter := NewMidiPreviewExporter()
	if err := exporter.SetupTempoTrack(beatmap.Tempo); err != nil {
		return err
	}
	if err := exporter.AddNotes(beatmap.Timeline); err != nil {
		return err
	}
	return exporter.WriteTo(writer)
}
