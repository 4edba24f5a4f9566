package public

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ardanlabs/powchain/business/web/validate"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/nameservice"
)

type tx struct {
	Source        database.PublicKey `json:"source"`
	SourceName    string             `json:"source_name"`
	Recipient     database.PublicKey `json:"recipient"`
	RecipientName string             `json:"recipient_name"`
	Amount        float64            `json:"amount"`
	Reward        bool               `json:"reward"`
	Signature     string             `json:"signature"`
}

func toTx(ns *nameservice.NameService, dbTx database.Tx) tx {
	return tx{
		Source:        dbTx.Source,
		SourceName:    ns.Lookup(dbTx.Source),
		Recipient:     dbTx.Recipient,
		RecipientName: ns.Lookup(dbTx.Recipient),
		Amount:        dbTx.Amount,
		Reward:        dbTx.IsReward(),
		Signature:     dbTx.SignatureString(),
	}
}

func toTxs(ns *nameservice.NameService, dbTxs []database.Tx) []tx {
	trans := make([]tx, len(dbTxs))
	for i, dbTx := range dbTxs {
		trans[i] = toTx(ns, dbTx)
	}
	return trans
}

type block struct {
	Height        int     `json:"height"`
	PrevBlockHash string  `json:"prev_block_hash"`
	Hash          string  `json:"hash"`
	Nonce         *uint64 `json:"nonce"`
	Trans         []tx    `json:"trans"`
}

type balance struct {
	Account database.PublicKey `json:"account"`
	Name    string             `json:"name"`
	Balance float64            `json:"balance"`
}

type balances struct {
	LatestBlock string    `json:"latest_block"`
	Uncommitted int       `json:"uncommitted"`
	Balances    []balance `json:"balances"`
}

type validity struct {
	Height   uint64 `json:"height"`
	Valid    bool   `json:"valid"`
	Mineable bool   `json:"mineable"`
	Error    string `json:"error,omitempty"`
}

// =============================================================================

// SubmitTx is the signed transaction a wallet sends to the node. An empty
// source marks a reward transaction.
type SubmitTx struct {
	Source    string  `json:"source" validate:"omitempty,publickey"`
	Recipient string  `json:"recipient" validate:"required,publickey"`
	Amount    float64 `json:"amount"`
	Signature string  `json:"signature" validate:"required,hexadecimal"`
}

// Validate checks the data in the model is considered clean.
func (stx SubmitTx) Validate() error {
	return validate.Check(stx)
}

// ToDBTx converts the submitted transaction into a ledger transaction. The
// signature is not verified, that happens when the chain is validated.
func (stx SubmitTx) ToDBTx() (database.Tx, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(stx.Signature, "0x"))
	if err != nil {
		return database.Tx{}, fmt.Errorf("decoding signature: %w", err)
	}

	dbTx := database.Tx{
		Source:    database.PublicKey(stx.Source),
		Recipient: database.PublicKey(stx.Recipient),
		Amount:    stx.Amount,
		Signature: sig,
	}

	return dbTx, nil
}

// FromDBTx constructs the submit model for a ledger transaction.
func FromDBTx(dbTx database.Tx) SubmitTx {
	return SubmitTx{
		Source:    string(dbTx.Source),
		Recipient: string(dbTx.Recipient),
		Amount:    dbTx.Amount,
		Signature: dbTx.SignatureString(),
	}
}
