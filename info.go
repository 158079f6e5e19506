package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	infoLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
)

// BeatmapSummary is what --info reports about a beatmap
type BeatmapSummary struct {
	Info         BeatmapInfo `json:"info"`
	Filename     string      `json:"filename"`
	TimingPoints int         `json:"timingPoints"`
	TempoChanges int         `json:"tempoChanges"`
	InitialBPM   float64     `json:"initialBpm"`
	Taps         int         `json:"taps"`
	Holds        int         `json:"holds"`
	FirstNoteMs  int         `json:"firstNoteMs"`
	LastNoteMs   int         `json:"lastNoteMs"`
	Layout       string      `json:"layout"`
}

func Summarize(beatmap *Beatmap, layout LaneLayout) BeatmapSummary {
	taps, holds := beatmap.Timeline.Counts()
	return BeatmapSummary{
		Info:         beatmap.Info,
		Filename:     beatmap.Filename,
		TimingPoints: beatmap.Tempo.Len(),
		TempoChanges: beatmap.Tempo.TempoChanges(),
		InitialBPM:   beatmap.Tempo.BPMAt(beatmap.Timeline.FirstStart()),
		Taps:         taps,
		Holds:        holds,
		FirstNoteMs:  beatmap.Timeline.FirstStart(),
		LastNoteMs:   beatmap.Timeline.LastStart(),
		Layout:       layout.String(),
	}
}

func (s BeatmapSummary) JSON() (string, error) {
	jsonData, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error marshaling summary: %w", err)
	}
	return string(jsonData), nil
}

func (s BeatmapSummary) String() string {
	var sb strings.Builder

	title := s.Filename
	if s.Info.Title != "" {
		title = s.Info.Title
		if s.Info.Version != "" {
			title += " [" + s.Info.Version + "]"
		}
	}
	sb.WriteString(infoTitleStyle.Render(title))
	sb.WriteString("\n")

	row := func(label, value string) {
		sb.WriteString(infoLabelStyle.Render(label))
		sb.WriteString(value)
		sb.WriteString("\n")
	}

	if s.Info.Artist != "" {
		row("Artist", s.Info.Artist)
	}
	if s.Info.Creator != "" {
		row("Mapper", s.Info.Creator)
	}
	if s.Info.CircleSize != laneCount && s.Info.CircleSize != 0 {
		row("Keys", fmt.Sprintf("%g (expected %d)", s.Info.CircleSize, laneCount))
	}
	row("Timing points", fmt.Sprintf("%d (%d tempo changes)", s.TimingPoints, s.TempoChanges))
	row("BPM", fmt.Sprintf("%.3f", s.InitialBPM))
	row("Notes", fmt.Sprintf("%d taps, %d holds", s.Taps, s.Holds))
	row("Span", fmt.Sprintf("%.3fs - %.3fs", float64(s.FirstNoteMs)/1000, float64(s.LastNoteMs)/1000))
	row("Layout", s.Layout)

	return sb.String()
}
