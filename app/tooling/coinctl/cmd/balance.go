package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

// balanceCmd prints the derived balance of an address.
var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Print the balance of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		if err := send(http.MethodGet, fmt.Sprintf("/v1/balances/%s", args[0]), nil, &resp); err != nil {
			return err
		}

		return printJSON(resp)
	},
}

// validateCmd re-checks the integrity of the whole chain.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the hash linkage of the chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		if err := send(http.MethodGet, "/v1/chain/validate", nil, &resp); err != nil {
			return err
		}

		return printJSON(resp)
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(validateCmd)
}
