package database

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
)

// Tx is a signed statement moving value between two parties, or minting new
// value when there is no source.
type Tx struct {
	Source    PublicKey `json:"source"`    // Sender of the value, empty for a mining reward.
	Recipient PublicKey `json:"recipient"` // Account receiving the value.
	Amount    float64   `json:"amount"`    // Value moved by this transaction.
	Signature []byte    `json:"signature"` // Signature over source, recipient and amount.
}

// NewTx constructs and signs a new transaction. If the recipient is empty,
// this is a reward transaction: the source is left empty and the recipient
// becomes the public key of the signer. No validation of the amount happens
// here, that is left to the validation package.
func NewTx(privateKey *ecdsa.PrivateKey, recipient PublicKey, amount float64) (Tx, error) {
	tx := Tx{
		Source:    PublicKeyOf(privateKey),
		Recipient: recipient,
		Amount:    amount,
	}

	if recipient.IsAbsent() {
		tx.Source = ""
		tx.Recipient = PublicKeyOf(privateKey)
	}

	sig, err := signature.Sign(privateKey, tx.Message())
	if err != nil {
		return Tx{}, fmt.Errorf("signing transaction: %w", err)
	}
	tx.Signature = sig

	return tx, nil
}

// NewRewardTx constructs a transaction minting the amount to the account
// behind the private key.
func NewRewardTx(privateKey *ecdsa.PrivateKey, amount float64) (Tx, error) {
	return NewTx(privateKey, "", amount)
}

// Message returns the data that is signed. The order of the fields
// matters.
func (tx Tx) Message() []byte {
	return []byte(string(tx.Source) + string(tx.Recipient) + FormatAmount(tx.Amount))
}

// IsReward reports whether the transaction mints new funds.
func (tx Tx) IsReward() bool {
	return tx.Source.IsAbsent()
}

// SignerKey returns the public key the signature must verify against. A
// reward transaction has no source, so the recipient signed it.
func (tx Tx) SignerKey() PublicKey {
	if tx.IsReward() {
		return tx.Recipient
	}

	return tx.Source
}

// SignatureString returns the signature as a hex string.
func (tx Tx) SignatureString() string {
	return hex.EncodeToString(tx.Signature)
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%s", tx.Source.Short(), tx.Recipient.Short(), FormatAmount(tx.Amount))
}

// =============================================================================

// FormatAmount renders an amount with the fewest digits that represent it
// exactly. This is the form used inside signed messages.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
