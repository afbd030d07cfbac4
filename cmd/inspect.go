package cmd

import (
	"fmt"

	"github.com/jsphweid/noterelay/midi"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Inspects a recording",
	Long:  `Prints the tempo, meter, instrument and notes of a recording artifact.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(cmd, args[0])
	},
}

func inspect(cmd *cobra.Command, path string) error {
	s, err := midi.ReadMidiFile(path)
	if err != nil {
		return err
	}
	summary := midi.Summarize(s)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "resolution: %v\n", summary.Resolution)
	fmt.Fprintf(out, "tempo: %v\n", summary.TempoBPM)
	fmt.Fprintf(out, "meter: %v/%v\n", summary.BeatsPerBar, summary.BeatUnit)
	fmt.Fprintf(out, "instrument: %v (%v)\n", summary.Program, summary.InstrumentName)
	fmt.Fprintf(out, "notes: %v\n", len(summary.Notes))
	for _, n := range summary.Notes {
		fmt.Fprintf(out, "  key=%v start=%v duration=%v\n", n.Key, n.StartTick, n.DurationTicks)
	}
	return nil
}
