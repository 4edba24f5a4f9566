package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

// balanceCmd represents the balance command
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	RunE: func(cmd *cobra.Command, args []string) error {
		privateKey, err := loadPrivateKey()
		if err != nil {
			return err
		}

		account := database.PublicKeyOf(privateKey)
		fmt.Fprintln(cmd.OutOrStdout(), "For Account:", account.Short())

		resp, err := http.Get(fmt.Sprintf("%s/v1/balances/%s", url, account))
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("node responded %d", resp.StatusCode)
		}

		var balances struct {
			Balances []struct {
				Balance float64 `json:"balance"`
			} `json:"balances"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&balances); err != nil {
			return err
		}

		if len(balances.Balances) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), database.FormatAmount(balances.Balances[0].Balance))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}
