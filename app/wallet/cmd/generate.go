package cmd

import (
	"fmt"
	"os"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := getPrivateKeyPath()

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("key file %s already exists", path)
		}

		privateKey, err := signature.GenerateKey()
		if err != nil {
			return err
		}

		if err := os.MkdirAll(walletPath, 0700); err != nil {
			return err
		}

		if err := crypto.SaveECDSA(path, privateKey); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), database.PublicKeyOf(privateKey))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
