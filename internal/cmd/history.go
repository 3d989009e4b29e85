package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zfogg/postcheck/pkg/api"
	"github.com/zfogg/postcheck/pkg/output"
)

var (
	historyLimit int
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear your recent analyses on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyClear {
			if err := api.ClearHistory(); err != nil {
				return err
			}
			output.PrintSuccess("History cleared")
			return nil
		}

		records, err := api.GetHistory(historyLimit)
		if err != nil {
			return err
		}
		return output.PrintHistory(records)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of records to show")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete all stored analyses for this caller")
}
