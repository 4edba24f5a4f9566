package cmd

import (
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

// accountCmd represents the account command
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the public key for the specific wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		privateKey, err := loadPrivateKey()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), database.PublicKeyOf(privateKey))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
}
