package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	miner string
	wait  bool
)

// mineCmd starts a mining operation and optionally polls until it leaves
// the mining state.
var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine the pending transactions into a new block",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := struct {
			Miner string `json:"miner"`
		}{
			Miner: miner,
		}

		var status map[string]any
		if err := send(http.MethodPost, "/v1/mining/start", req, &status); err != nil {
			return err
		}

		if !wait {
			return printJSON(status)
		}

		for {
			if err := send(http.MethodGet, "/v1/mining/status", nil, &status); err != nil {
				return err
			}

			if s, ok := status["status"].(string); ok && s != "mining" {
				return printJSON(status)
			}

			fmt.Printf("mining: progress %v%%\n", status["progress_percent"])
			time.Sleep(500 * time.Millisecond)
		}
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().StringVarP(&miner, "miner", "m", "", "Address credited with the mining reward.")
	mineCmd.Flags().BoolVarP(&wait, "wait", "w", false, "Poll until the mining operation completes.")
	mineCmd.MarkFlagRequired("miner")
}
