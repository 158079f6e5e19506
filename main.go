package main

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

// the chart is always written here, in the working directory
const outputFilename = "maidata.txt"

type options struct {
	key        string
	midiOutput string
	info       bool
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "maiconv [flags] <file.osu>",
		Short: "Convert an osu!mania beatmap to a simai chart",
		Long: `Convert an osu!mania beatmap to a simai chart.

The chart is written to ` + outputFilename + ` in the current directory.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.key, "key", "k", "", "key layout, 8 buttons from 1-8 for lanes left to right")
	cmd.Flags().StringVar(&opts.midiOutput, "midi", "", "also write a MIDI preview of the chart to this file")
	cmd.Flags().BoolVar(&opts.info, "info", false, "print beatmap information")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print beatmap information as JSON")

	return cmd
}

func run(filename string, opts *options) error {
	layout := DefaultLaneLayout
	if opts.key != "" {
		var err error
		layout, err = ParseLaneLayout(opts.key)
		if err != nil {
			return err
		}
	}

	beatmap, err := OpenBeatmap(filename, DefaultSectionTags)
	if err != nil {
		return err
	}

	if opts.info || opts.jsonOutput {
		summary := Summarize(beatmap, layout)
		if opts.jsonOutput {
			jsonData, err := summary.JSON()
			if err != nil {
				return err
			}
			fmt.Println(jsonData)
		} else {
			fmt.Print(summary.String())
		}
	}

	var chart bytes.Buffer
	if err := Notate(&chart, beatmap.Tempo, beatmap.Timeline, layout); err != nil {
		return fmt.Errorf("error converting %s: %w", filename, err)
	}

	if err := os.WriteFile(outputFilename, chart.Bytes(), 0644); err != nil {
		return fmt.Errorf("error writing chart: %w", err)
	}
	log.Printf("Wrote %d notes to %s", beatmap.Timeline.Len(), outputFilename)

	if opts.midiOutput != "" {
		if err := writeMidiPreview(beatmap, opts.midiOutput); err != nil {
			return err
		}
		log.Printf("Wrote MIDI preview to %s", opts.midiOutput)
	}

	return nil
}

func writeMidiPreview(beatmap *Beatmap, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating MIDI file: %w", err)
	}
	defer file.Close()

	if err := ExportMidiPreview(beatmap, file); err != nil {
		return err
	}
	return file.Close()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
