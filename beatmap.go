package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// SectionTags names the sections holding timing points and hit objects
type SectionTags struct {
	Tempo string
	Notes string
}

var DefaultSectionTags = SectionTags{
	Tempo: "[TimingPoints]",
	Notes: "[HitObjects]",
}

type Beatmap struct {
	Info     BeatmapInfo `json:"info"`
	Tempo    *TempoMap   `json:"-"`
	Timeline *Timeline   `json:"-"`
	Filename string      `json:"filename"`
}

type BeatmapInfo struct {
	Title      string  `json:"title,omitempty"`
	Artist     string  `json:"artist,omitempty"`
	Creator    string  `json:"creator,omitempty"`
	Version    string  `json:"version,omitempty"`
	CircleSize float64 `json:"circleSize"` // key count on mania maps
}

func OpenBeatmap(filename string, tags SectionTags) (*Beatmap, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening beatmap: %w", err)
	}
	defer file.Close()

	beatmap, err := ParseBeatmap(file, tags)
	if err != nil {
		return nil, fmt.Errorf("error parsing beatmap: %w", err)
	}

	beatmap.Filename = filename
	return beatmap, nil
}

func ParseBeatmap(reader io.Reader, tags SectionTags) (*Beatmap, error) {
	beatmap := &Beatmap{}

	var timingPoints []TempoEvent
	var hitObjects []NoteEvent

	scanner := bufio.NewScanner(reader)
	var section string
	var inTempo, inNotes bool
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()

		if lineNumber == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.Contains(line, tags.Tempo) {
			inTempo, inNotes = true, false
			section = ""
			continue
		}
		if strings.Contains(line, tags.Notes) {
			inTempo, inNotes = false, true
			section = ""
			continue
		}
		if strings.HasPrefix(line, "[") {
			inTempo, inNotes = false, false
			section = strings.TrimSpace(line)
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		switch {
		case inTempo:
			event, err := ParseTimingPoint(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNumber, err)
			}
			timingPoints = append(timingPoints, event)
		case inNotes:
			note, err := ParseHitObject(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNumber, err)
			}
			hitObjects = append(hitObjects, note)
		default:
			parseInfoLine(&beatmap.Info, section, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading beatmap: %w", err)
	}

	tempo, err := NewTempoMap(timingPoints)
	if err != nil {
		return nil, err
	}
	timeline, err := NewTimeline(hitObjects)
	if err != nil {
		return nil, err
	}

	beatmap.Tempo = tempo
	beatmap.Timeline = timeline
	return beatmap, nil
}

// parseInfoLine reads the Key:Value pairs we report on, anything else is skipped
func parseInfoLine(info *BeatmapInfo, section, line string) {
	key, value, found := strings.Cut(line, ":")
	if !found {
		return
	}

	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	switch section {
	case "[Metadata]":
		switch key {
		case "Title":
			info.Title = value
		case "Artist":
			info.Artist = value
		case "Creator":
			info.Creator = value
		case "Version":
			info.Version = value
		}
	case "[Difficulty]":
		if key == "CircleSize" {
			if val, err := strconv.ParseFloat(value, 64); err == nil {
				info.CircleSize = val
			}
		}
	}
}
