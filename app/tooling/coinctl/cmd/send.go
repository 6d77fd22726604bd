package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var (
	from   string
	to     string
	amount uint64
)

// sendCmd submits a transaction to the node's pool.
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Submit a transaction",
	RunE: func(cmd *cobra.Command, args []string) error {
		tx := struct {
			From   string `json:"from"`
			To     string `json:"to"`
			Amount uint64 `json:"amount"`
		}{
			From:   from,
			To:     to,
			Amount: amount,
		}

		var resp map[string]any
		if err := send(http.MethodPost, "/v1/tx/submit", tx, &resp); err != nil {
			return err
		}

		return printJSON(resp)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&from, "from", "f", "", "Address of the sender.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address of the recipient.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "a", 0, "Amount to transfer.")
	sendCmd.MarkFlagRequired("from")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}
