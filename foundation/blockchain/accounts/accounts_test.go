package accounts_test

import (
	"crypto/ecdsa"
	"errors"
	"math"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/accounts"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	minerHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	aliceHexKey = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

func TestTransactions(t *testing.T) {
	miner := mustKey(t, minerHexKey)
	alice := mustKey(t, aliceHexKey)

	minerPK := database.PublicKeyOf(miner)
	alicePK := database.PublicKeyOf(alice)

	type table struct {
		name   string
		blocks [][]database.Tx
		final  map[database.PublicKey]float64
		err    error
	}

	tt := []table{
		{
			name: "basic",
			blocks: [][]database.Tx{
				{mustTx(t, miner, "", 50)},
				{mustTx(t, miner, alicePK, 30), mustTx(t, miner, "", 50)},
				{mustTx(t, alice, minerPK, 10)},
			},
			final: map[database.PublicKey]float64{
				minerPK: 80,
				alicePK: 20,
			},
		},
		{
			name: "overdraft",
			blocks: [][]database.Tx{
				{mustTx(t, miner, "", 50)},
				{mustTx(t, alice, minerPK, 1)},
			},
			err: accounts.ErrInsufficientFunds,
		},
		{
			name: "not-a-number",
			blocks: [][]database.Tx{
				{mustTx(t, miner, alicePK, math.NaN())},
				{mustTx(t, miner, alicePK, 1e9)},
			},
			err: accounts.ErrInsufficientFunds,
		},
		{
			name: "spend-before-reward",
			blocks: [][]database.Tx{
				{mustTx(t, miner, alicePK, 10), mustTx(t, miner, "", 50)},
			},
			err: accounts.ErrInsufficientFunds,
		},
	}

	t.Log("Given the need to replay transactions into balances.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of blocks.", testID)
			{
				f := func(t *testing.T) {
					blocks := []database.Block{database.NewGenesisBlock()}
					for _, trans := range tst.blocks {
						blocks = append(blocks, database.NewBlock(trans, blocks[len(blocks)-1].Hash))
					}

					act, err := accounts.Replay(blocks)
					if tst.err != nil {
						if !errors.Is(err, tst.err) {
							t.Fatalf("\t%s\tTest %d:\tShould fail the replay: %v", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould fail the replay.", success, testID)
						return
					}

					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to replay the blocks: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to replay the blocks.", success, testID)

					balances := act.Copy()
					for pk, exp := range tst.final {
						if balances[pk] != exp {
							t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, balances[pk])
							t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, exp)
							t.Fatalf("\t%s\tTest %d:\tShould have correct balances for %s.", failed, testID, pk.Short())
						}
						t.Logf("\t%s\tTest %d:\tShould have correct balances for %s.", success, testID, pk.Short())
					}
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestApplyLeavesBalancesOnFailure(t *testing.T) {
	miner := mustKey(t, minerHexKey)
	alicePK := database.PublicKeyOf(mustKey(t, aliceHexKey))

	act := accounts.New()
	if err := act.ApplyTransaction(mustTx(t, miner, "", 50)); err != nil {
		t.Fatalf("Should be able to apply a reward: %v", err)
	}

	if err := act.ApplyTransaction(mustTx(t, miner, alicePK, 60)); !errors.Is(err, accounts.ErrInsufficientFunds) {
		t.Fatalf("Should not be able to overdraw: %v", err)
	}

	if act.Balance(database.PublicKeyOf(miner)) != 50 || act.Balance(alicePK) != 0 {
		t.Fatalf("Should leave the balances untouched after a failure.")
	}

	act.Reset()
	if len(act.Copy()) != 0 {
		t.Fatalf("Should be able to reset the balances.")
	}
}

// =============================================================================

func mustKey(t *testing.T, hexKey string) *ecdsa.PrivateKey {
	t.Helper()

	pk, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		t.Fatalf("Should be able to load a private key: %v", err)
	}

	return pk
}

func mustTx(t *testing.T, pk *ecdsa.PrivateKey, to database.PublicKey, amount float64) database.Tx {
	t.Helper()

	tx, err := database.NewTx(pk, to, amount)
	if err != nil {
		t.Fatalf("Should be able to sign a transaction: %v", err)
	}

	return tx
}
