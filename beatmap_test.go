package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

const validBeatmapData = `osu file format v14

[General]
AudioFilename: audio.mp3
PreviewTime: 30000
Mode: 3

[Metadata]
Title:Test Song
Artist:Test Artist
Creator:Test Mapper
Version:8K Hard

[Difficulty]
HPDrainRate:8
CircleSize:8
OverallDifficulty:8

[Events]
//Background and Video events
0,0,"bg.jpg",0,0

[TimingPoints]
0,500,4,1,0,100,1,0
250,-50,4,1,0,100,0,0
1000,1000,4,1,0,100,1,0


[Colours]
Combo1 : 255,128,0

[HitObjects]
32,192,0,1,0,0:0:0:0:
160,192,500,1,0,0:0:0:0:
300,192,1000,128,0,3000:0:0:0:0:
`

const minimalBeatmapData = `[TimingPoints]
0,500,4,1,0,100,1,0

[HitObjects]
32,192,0,1,0,0:0:0:0:`

const beatmapWithBOM = "\ufeffosu file format v14\n[TimingPoints]\n0,500,4,1,0,100,1,0\n[HitObjects]\n32,192,0,1,0,0:0:0:0:\n"

func TestParseValidBeatmap(t *testing.T) {
	beatmap, err := ParseBeatmap(strings.NewReader(validBeatmapData), DefaultSectionTags)
	if err != nil {
		t.Fatalf("Failed to parse valid beatmap: %v", err)
	}

	if beatmap.Info.Title != "Test Song" {
		t.Errorf("Expected Title 'Test Song', got '%s'", beatmap.Info.Title)
	}
	if beatmap.Info.Artist != "Test Artist" {
		t.Errorf("Expected Artist 'Test Artist', got '%s'", beatmap.Info.Artist)
	}
	if beatmap.Info.Creator != "Test Mapper" {
		t.Errorf("Expected Creator 'Test Mapper', got '%s'", beatmap.Info.Creator)
	}
	if beatmap.Info.Version != "8K Hard" {
		t.Errorf("Expected Version '8K Hard', got '%s'", beatmap.Info.Version)
	}
	if beatmap.Info.CircleSize != 8 {
		t.Errorf("Expected CircleSize 8, got %f", beatmap.Info.CircleSize)
	}

	if beatmap.Tempo.Len() != 3 {
		t.Fatalf("Expected 3 timing points, got %d", beatmap.Tempo.Len())
	}
	if _, ok := beatmap.Tempo.At(1).(ScrollChange); !ok {
		t.Errorf("Expected second timing point to be a scroll change, got %#v", beatmap.Tempo.At(1))
	}

	if beatmap.Timeline.Len() != 3 {
		t.Fatalf("Expected 3 hit objects, got %d", beatmap.Timeline.Len())
	}
	expectedHold := Hold{Lane: 2, Start: 1000, End: 3000}
	if beatmap.Timeline.At(2) != expectedHold {
		t.Errorf("Expected %#v, got %#v", expectedHold, beatmap.Timeline.At(2))
	}
}

func TestConvertValidBeatmap(t *testing.T) {
	beatmap, err := ParseBeatmap(strings.NewReader(validBeatmapData), DefaultSectionTags)
	if err != nil {
		t.Fatalf("Failed to parse valid beatmap: %v", err)
	}

	var buf bytes.Buffer
	if err := Notate(&buf, beatmap.Tempo, beatmap.Timeline, DefaultLaneLayout); err != nil {
		t.Fatalf("Notate failed: %v", err)
	}

	expected := "&first=0\n(120.000){8}1,,2,,\n(60.000)3h[2:1]"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestParseMinimalBeatmap(t *testing.T) {
	beatmap, err := ParseBeatmap(strings.NewReader(minimalBeatmapData), DefaultSectionTags)
	if err != nil {
		t.Fatalf("Failed to parse minimal beatmap: %v", err)
	}

	if beatmap.Tempo.Len() != 1 || beatmap.Timeline.Len() != 1 {
		t.Errorf("Expected 1 timing point and 1 hit object, got %d and %d", beatmap.Tempo.Len(), beatmap.Timeline.Len())
	}
	if beatmap.Info.Title != "" {
		t.Errorf("Expected no title, got '%s'", beatmap.Info.Title)
	}
}

func TestParseBOMBeatmap(t *testing.T) {
	beatmap, err := ParseBeatmap(strings.NewReader(beatmapWithBOM), DefaultSectionTags)
	if err != nil {
		t.Fatalf("Failed to parse beatmap with BOM: %v", err)
	}
	if beatmap.Timeline.Len() != 1 {
		t.Errorf("Expected 1 hit object, got %d", beatmap.Timeline.Len())
	}
}

func TestParseCustomSectionTags(t *testing.T) {
	data := "[Tempo]\n0,500,4,1,0,100,1,0\n[Notes]\n32,192,0,1,0,0:0:0:0:\n[TimingPoints]\nnot a timing point\n"
	tags := SectionTags{Tempo: "[Tempo]", Notes: "[Notes]"}

	beatmap, err := ParseBeatmap(strings.NewReader(data), tags)
	if err != nil {
		t.Fatalf("Failed to parse with custom tags: %v", err)
	}
	if beatmap.Tempo.Len() != 1 || beatmap.Timeline.Len() != 1 {
		t.Errorf("Expected 1 timing point and 1 hit object, got %d and %d", beatmap.Tempo.Len(), beatmap.Timeline.Len())
	}
}

func TestParseEmptyBeatmap(t *testing.T) {
	_, err := ParseBeatmap(strings.NewReader(""), DefaultSectionTags)
	if !errors.Is(err, ErrEmptyData) {
		t.Errorf("Expected ErrEmptyData for empty beatmap, got %v", err)
	}

	noNotes := "[TimingPoints]\n0,500,4,1,0,100,1,0\n[HitObjects]\n"
	_, err = ParseBeatmap(strings.NewReader(noNotes), DefaultSectionTags)
	if !errors.Is(err, ErrEmptyData) {
		t.Errorf("Expected ErrEmptyData without hit objects, got %v", err)
	}

	onlyScroll := "[TimingPoints]\n0,-100,4,1,0,100,0,0\n[HitObjects]\n32,192,0,1,0,0:0:0:0:\n"
	_, err = ParseBeatmap(strings.NewReader(onlyScroll), DefaultSectionTags)
	if !errors.Is(err, ErrEmptyData) {
		t.Errorf("Expected ErrEmptyData without a tempo change, got %v", err)
	}
}

func TestParseMalformedTimingPoint(t *testing.T) {
	data := "[TimingPoints]\n0,500,4,1,0,100,1,0\n1000,500,4,1,0,100\n[HitObjects]\n32,192,0,1,0,0:0:0:0:\n"

	_, err := ParseBeatmap(strings.NewReader(data), DefaultSectionTags)
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("Expected ErrMalformedInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("Expected error to name line 3, got %v", err)
	}
}

func TestParseMalformedHitObject(t *testing.T) {
	data := "[TimingPoints]\n0,500,4,1,0,100,1,0\n[HitObjects]\n2048,192,0,1,0,0:0:0:0:\n"

	_, err := ParseBeatmap(strings.NewReader(data), DefaultSectionTags)
	if !errors.Is(err, ErrMalformedInput) {
		t.Errorf("Expected ErrMalformedInput for out of range lane, got %v", err)
	}
}

func TestParseUnorderedHitObjects(t *testing.T) {
	data := "[TimingPoints]\n0,500,4,1,0,100,1,0\n[HitObjects]\n32,192,500,1,0,0:0:0:0:\n32,192,0,1,0,0:0:0:0:\n"

	_, err := ParseBeatmap(strings.NewReader(data), DefaultSectionTags)
	if !errors.Is(err, ErrUnordered) {
		t.Errorf("Expected ErrUnordered, got %v", err)
	}
}

func TestOpenBeatmapMissingFile(t *testing.T) {
	_, err := OpenBeatmap("does-not-exist.osu", DefaultSectionTags)
	if err == nil {
		t.Error("Expected error opening missing file")
	}
}

func TestParseLargeBeatmap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[TimingPoints]\n0,500,4,1,0,100,1,0\n[HitObjects]\n")
	for i := 0; i < 10000; i++ {
		sb.WriteString(fmt.Sprintf("%d,192,%d,1,0,0:0:0:0:\n", (i%8)*128, i*125))
	}

	beatmap, err := ParseBeatmap(strings.NewReader(sb.String()), DefaultSectionTags)
	if err != nil {
		t.Fatalf("Failed to parse large beatmap: %v", err)
	}
	if beatmap.Timeline.Len() != 10000 {
		t.Errorf("Expected 10000 hit objects, got %d", beatmap.Timeline.Len())
	}
}

func BenchmarkParseValidBeatmap(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ParseBeatmap(strings.NewReader(validBeatmapData), DefaultSectionTags)
	}
}
