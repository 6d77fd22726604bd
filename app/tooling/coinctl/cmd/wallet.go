package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

// walletCmd creates a new wallet on the node.
var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Create a new wallet and print its address",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Address string `json:"address"`
		}
		if err := send(http.MethodPost, "/v1/wallet", nil, &resp); err != nil {
			return err
		}

		return printJSON(resp)
	},
}

func init() {
	rootCmd.AddCommand(walletCmd)
}
