package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marketgap-io/marketgap/internal/domain/market"
)

func newCuisinesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cuisines",
		Short: "List the supported cuisines and service attributes",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "cuisines:")
			for _, c := range market.AllCuisines {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", c)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "attributes:")
			for _, a := range market.AllAttributes {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", a)
			}
		},
	}
}
