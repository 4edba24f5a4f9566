package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ardanlabs/powchain/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/nameservice"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount float64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send transaction",
	RunE: func(cmd *cobra.Command, args []string) error {
		privateKey, err := loadPrivateKey()
		if err != nil {
			return err
		}

		recipient, err := resolveRecipient(to)
		if err != nil {
			return err
		}

		tx, err := database.NewTx(privateKey, recipient, amount)
		if err != nil {
			return err
		}

		data, err := json.Marshal(public.FromDBTx(tx))
		if err != nil {
			return err
		}

		resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewBuffer(data))
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("node responded %d: %s", resp.StatusCode, body)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	},
}

// resolveRecipient accepts a public key or the name of a key file in the
// wallet path. An empty recipient sends a reward to the signer.
func resolveRecipient(recipient string) (database.PublicKey, error) {
	if recipient == "" {
		return "", nil
	}

	if database.PublicKey(recipient).IsPublicKey() {
		return database.PublicKey(recipient), nil
	}

	ns, err := nameservice.New(walletPath)
	if err != nil {
		return "", err
	}

	publicKey, exists := ns.PublicKey(recipient)
	if !exists {
		return "", fmt.Errorf("recipient %q is not a public key or a known name", recipient)
	}

	return publicKey, nil
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Public key or name of the recipient.")
	sendCmd.Flags().Float64VarP(&amount, "amount", "a", 0, "Amount to send.")
}
