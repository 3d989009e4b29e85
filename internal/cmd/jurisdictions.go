package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/zfogg/postcheck/internal/handlers"
	"github.com/zfogg/postcheck/internal/jurisdiction"
	"github.com/zfogg/postcheck/pkg/api"
	"github.com/zfogg/postcheck/pkg/output"
)

var jurisdictionsLocal bool

var jurisdictionsCmd = &cobra.Command{
	Use:     "jurisdictions [code]",
	Aliases: []string{"countries"},
	Short:   "List supported countries or show one profile",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return showJurisdiction(strings.ToUpper(args[0]))
		}
		return listJurisdictions()
	},
}

func init() {
	jurisdictionsCmd.Flags().BoolVar(&jurisdictionsLocal, "local", false, "Use the built-in profiles instead of the server")
}

func listJurisdictions() error {
	if jurisdictionsLocal {
		table := jurisdiction.Default()
		rows := make([]handlers.JurisdictionSummary, 0, table.Len())
		for _, p := range table.All() {
			rows = append(rows, handlers.Summarize(p))
		}
		return output.PrintJurisdictions(table.DefaultCode(), rows)
	}

	list, err := api.ListJurisdictions()
	if err != nil {
		return err
	}
	return output.PrintJurisdictions(list.Default, list.Jurisdictions)
}

func showJurisdiction(code string) error {
	if jurisdictionsLocal {
		p, ok := jurisdiction.Default().Lookup(code)
		if !ok {
			output.PrintError("unknown jurisdiction %q", code)
			return nil
		}
		return output.PrintProfile(&p)
	}

	p, err := api.GetJurisdiction(code)
	if err != nil {
		return err
	}
	return output.PrintProfile(p)
}
