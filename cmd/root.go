package cmd

import (
	"github.com/jsphweid/noterelay/constants"
	"github.com/jsphweid/noterelay/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "noterelay",
	Short: "Relays recordings between a browser and a generation backend",
	Long: `noterelay captures notes played in the browser, writes them to a MIDI file
the generation backend picks up, and keeps both sides informed about ports and
finished generations.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// a missing .env is fine, the environment is used as is
		if err := godotenv.Load(); err == nil {
			logging.Debug("loaded .env")
		}
		logging.SetLevel(constants.GetLogLevel())
	},
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
