package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hh-hire",
	Short: "Imports hh.ru responses into the hiring tracker and sends refusals back",
	Long: `hh-hire mirrors employer vacancies and candidate responses from hh.ru,
opens an issue for every new response and declines candidates on request.

Examples:
  hh-hire serve            # scheduler, http triggers and telegram notifications
  hh-hire sync active      # one synchronization pass over active vacancies
  hh-hire refuse 42        # send the refusal for issue 42
  hh-hire rollback         # remove everything the synchronization imported`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(refuseCmd)
	rootCmd.AddCommand(rollbackCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
