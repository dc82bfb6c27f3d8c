// Package cli defines the marketgap command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the marketgap root command.
func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "marketgap",
		Short: "NJ restaurant market gap and recommendation engine",
		Long: "marketgap analyzes New Jersey restaurant markets by zip code: " +
			"cuisine and service gaps against geographic neighbors, composite " +
			"opportunity ranking, concept matching with progressive relaxation, " +
			"and survival predictions through the external model server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(newServeCommand(&configPath))
	root.AddCommand(newAnalyzeCommand(&configPath))
	root.AddCommand(newCuisinesCommand())
	return root
}
