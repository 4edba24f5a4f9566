package state_test

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/metrics"
	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/powchain/foundation/blockchain/validation"
	"github.com/ardanlabs/powchain/foundation/logger"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	kennedyHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	minerHexKey   = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

// =============================================================================

func Test_MineBlock(t *testing.T) {
	miner := privateKey(t, minerHexKey)
	minerPK := database.PublicKeyOf(miner)

	t.Log("Given the need to mine a block at difficulty 2.")
	{
		st := newState(t, genesis.Default(), 0)

		block, err := st.MineNewBlock(context.Background(), miner)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to mine a block.", success)

		if !strings.HasPrefix(block.Hash, "00") {
			t.Fatalf("\t%s\tShould have a hash starting with two zeros: %s", failed, block.Hash)
		}
		t.Logf("\t%s\tShould have a hash starting with two zeros.", success)

		if len(block.Trans) != 1 || !block.Trans[0].IsReward() || block.Trans[0].Amount != 50 {
			t.Fatalf("\t%s\tShould hold a single reward of 50.", failed)
		}
		t.Logf("\t%s\tShould hold a single reward of 50.", success)

		blocks := st.Blocks()
		if len(blocks) != 2 || blocks[1].PrevBlockHash != blocks[0].Hash {
			t.Fatalf("\t%s\tShould append the block after genesis.", failed)
		}
		t.Logf("\t%s\tShould append the block after genesis.", success)

		if st.MempoolLength() != 0 {
			t.Fatalf("\t%s\tShould leave the pending pool empty.", failed)
		}
		t.Logf("\t%s\tShould leave the pending pool empty.", success)

		balance, err := st.QueryBalance(minerPK)
		if err != nil || balance != 50 {
			t.Fatalf("\t%s\tShould credit the miner with 50, got %v: %v", failed, balance, err)
		}
		t.Logf("\t%s\tShould credit the miner with 50.", success)

		if !validation.IsValidChain(st) || !validation.IsValidMineableChain(st) {
			t.Fatalf("\t%s\tShould pass both validators: %v", failed, st.Validate())
		}
		t.Logf("\t%s\tShould pass both validators.", success)
	}
}

func Test_Transfers(t *testing.T) {
	miner := privateKey(t, minerHexKey)
	kennedy := privateKey(t, kennedyHexKey)
	minerPK := database.PublicKeyOf(miner)
	kennedyPK := database.PublicKeyOf(kennedy)

	t.Log("Given the need to move value between accounts.")
	{
		st := newState(t, genesis.Default(), 0)

		if _, err := st.MineNewBlock(context.Background(), miner); err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}

		tx, err := database.NewTx(miner, kennedyPK, 20)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %v", failed, err)
		}

		if n := st.SubmitTransaction(tx); n != 1 {
			t.Fatalf("\t%s\tShould report one pending transaction, got %d.", failed, n)
		}
		t.Logf("\t%s\tShould report one pending transaction.", success)

		block, err := st.MineNewBlock(context.Background(), kennedy)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}

		if len(block.Trans) != 2 || block.Trans[0].Recipient != kennedyPK || !block.Trans[1].IsReward() {
			t.Fatalf("\t%s\tShould hold the pending transaction followed by the reward.", failed)
		}
		t.Logf("\t%s\tShould hold the pending transaction followed by the reward.", success)

		balances, err := st.QueryBalances()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to query balances: %v", failed, err)
		}

		if balances[minerPK] != 30 || balances[kennedyPK] != 70 {
			t.Logf("\t%s\tgot: %v %v", failed, balances[minerPK], balances[kennedyPK])
			t.Logf("\t%s\texp: 30 70", failed)
			t.Fatalf("\t%s\tShould carry the balances across blocks.", failed)
		}
		t.Logf("\t%s\tShould carry the balances across blocks.", success)

		if err := st.Validate(); err != nil {
			t.Fatalf("\t%s\tShould pass validation: %v", failed, err)
		}
		t.Logf("\t%s\tShould pass validation.", success)
	}
}

func Test_NoValidationOnMining(t *testing.T) {
	miner := privateKey(t, minerHexKey)
	kennedy := privateKey(t, kennedyHexKey)

	t.Log("Given the need to mine whatever is pending.")
	{
		st := newState(t, genesis.Default(), 0)

		tx, err := database.NewTx(kennedy, database.PublicKeyOf(miner), 1000)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %v", failed, err)
		}
		st.SubmitTransaction(tx)

		if _, err := st.MineNewBlock(context.Background(), miner); err != nil {
			t.Fatalf("\t%s\tShould mine an overdraft: %v", failed, err)
		}
		t.Logf("\t%s\tShould mine an overdraft.", success)

		if !validation.IsValidChain(st) {
			t.Fatalf("\t%s\tShould have well formed blocks.", failed)
		}
		t.Logf("\t%s\tShould have well formed blocks.", success)

		if validation.IsValidMineableChain(st) {
			t.Fatalf("\t%s\tShould fail mineable validation.", failed)
		}
		t.Logf("\t%s\tShould fail mineable validation.", success)

		if _, err := st.QueryBalances(); err == nil {
			t.Fatalf("\t%s\tShould fail to replay the balances.", failed)
		}
		t.Logf("\t%s\tShould fail to replay the balances.", success)
	}
}

func Test_AddBlock(t *testing.T) {
	t.Log("Given the need to stop blocks from being appended directly.")
	{
		st := newState(t, genesis.Default(), 0)

		block := database.NewBlock(nil, st.LatestBlock().Hash)
		if err := st.AddBlock(block); !errors.Is(err, state.ErrDirectAppend) {
			t.Fatalf("\t%s\tShould reject the block: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject the block.", success)

		if len(st.Blocks()) != 1 {
			t.Fatalf("\t%s\tShould leave the chain untouched.", failed)
		}
		t.Logf("\t%s\tShould leave the chain untouched.", success)
	}
}

func Test_LateSubmission(t *testing.T) {
	miner := privateKey(t, minerHexKey)
	kennedy := privateKey(t, kennedyHexKey)

	late, err := database.NewTx(kennedy, database.PublicKeyOf(miner), 1)
	if err != nil {
		t.Fatalf("Should be able to create a transaction: %v", err)
	}

	t.Log("Given the need to handle transactions submitted while mining.")
	{
		var (
			st   *state.State
			once sync.Once
		)

		ev := func(v string, args ...any) {
			if strings.HasPrefix(v, "database: PerformPOW: MINING: started") {
				once.Do(func() { st.SubmitTransaction(late) })
			}
		}

		strg, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
		}

		st, err = state.New(state.Config{
			Genesis:   genesis.Default(),
			Storage:   strg,
			EvHandler: ev,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
		}

		block, err := st.MineNewBlock(context.Background(), miner)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}

		if len(block.Trans) != 1 {
			t.Fatalf("\t%s\tShould not include the late transaction in the block.", failed)
		}
		t.Logf("\t%s\tShould not include the late transaction in the block.", success)

		if st.MempoolLength() != 0 {
			t.Fatalf("\t%s\tShould drop the late transaction with the pool.", failed)
		}
		t.Logf("\t%s\tShould drop the late transaction with the pool.", success)
	}
}

func Test_Workers(t *testing.T) {
	miner := privateKey(t, minerHexKey)

	t.Log("Given the need to mine with several workers.")
	{
		st := newState(t, genesis.Default(), 4)

		for range 3 {
			if _, err := st.MineNewBlock(context.Background(), miner); err != nil {
				t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
			}
		}
		t.Logf("\t%s\tShould be able to mine three blocks.", success)

		if err := st.Validate(); err != nil {
			t.Fatalf("\t%s\tShould pass validation: %v", failed, err)
		}
		t.Logf("\t%s\tShould pass validation.", success)

		if st.Height() != 3 {
			t.Fatalf("\t%s\tShould be at height 3, got %d.", failed, st.Height())
		}
		t.Logf("\t%s\tShould be at height 3.", success)
	}
}

func Test_CompetingMiners(t *testing.T) {
	miner := privateKey(t, minerHexKey)
	kennedy := privateKey(t, kennedyHexKey)

	t.Log("Given the need to keep a single writer.")
	{
		st := newState(t, genesis.Default(), 0)

		var wg sync.WaitGroup
		errs := make([]error, 2)

		for i, key := range []*ecdsa.PrivateKey{miner, kennedy} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = st.MineNewBlock(context.Background(), key)
			}()
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil && !errors.Is(err, state.ErrChainAdvanced) {
				t.Fatalf("\t%s\tShould only fail with a stale head: %v", failed, err)
			}
		}
		t.Logf("\t%s\tShould only fail with a stale head.", success)

		if err := st.Validate(); err != nil {
			t.Fatalf("\t%s\tShould pass validation: %v", failed, err)
		}
		t.Logf("\t%s\tShould pass validation.", success)
	}
}

func Test_Abort(t *testing.T) {
	miner := privateKey(t, minerHexKey)
	kennedy := privateKey(t, kennedyHexKey)

	hard := genesis.Default()
	hard.Difficulty = signature.HashLength

	tx, err := database.NewTx(kennedy, database.PublicKeyOf(miner), 1)
	if err != nil {
		t.Fatalf("Should be able to create a transaction: %v", err)
	}

	t.Log("Given the need to stop mining early.")
	{
		t.Log("\tWhen the context times out.")
		{
			st := newState(t, hard, 2)
			st.SubmitTransaction(tx)

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			if _, err := st.MineNewBlock(ctx, miner); !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("\t%s\tShould return the context error: %v", failed, err)
			}
			t.Logf("\t%s\tShould return the context error.", success)

			if len(st.Blocks()) != 1 || st.MempoolLength() != 1 {
				t.Fatalf("\t%s\tShould leave the chain and pool untouched.", failed)
			}
			t.Logf("\t%s\tShould leave the chain and pool untouched.", success)
		}

		t.Log("\tWhen the attempts run out.")
		{
			strg, err := memory.New()
			if err != nil {
				t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
			}

			reg := prometheus.NewRegistry()
			m, err := metrics.New(reg)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to register metrics: %v", failed, err)
			}

			st, err := state.New(state.Config{
				Genesis:     hard,
				Storage:     strg,
				MaxAttempts: 1000,
				Metrics:     m,
			})
			if err != nil {
				t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
			}
			st.SubmitTransaction(tx)

			if _, err := st.MineNewBlock(context.Background(), miner); !errors.Is(err, database.ErrMaxAttempts) {
				t.Fatalf("\t%s\tShould give up after the max attempts: %v", failed, err)
			}
			t.Logf("\t%s\tShould give up after the max attempts.", success)

			if len(st.Blocks()) != 1 || st.MempoolLength() != 1 {
				t.Fatalf("\t%s\tShould leave the chain and pool untouched.", failed)
			}
			t.Logf("\t%s\tShould leave the chain and pool untouched.", success)
		}
	}
}

func Test_StoredChain(t *testing.T) {
	miner := privateKey(t, minerHexKey)

	t.Log("Given the need to start from an existing chain.")
	{
		strg, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
		}

		st, err := state.New(state.Config{Genesis: genesis.Default(), Storage: strg})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
		}

		if _, err := st.MineNewBlock(context.Background(), miner); err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}

		if _, err := state.New(state.Config{Genesis: genesis.Default(), Storage: strg}); err != nil {
			t.Fatalf("\t%s\tShould accept a valid stored chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a valid stored chain.", success)

		harder := genesis.Default()
		harder.Difficulty = signature.HashLength
		if _, err := state.New(state.Config{Genesis: harder, Storage: strg}); !errors.Is(err, validation.ErrUnsolved) {
			t.Fatalf("\t%s\tShould reject a stored chain mined below the difficulty: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a stored chain mined below the difficulty.", success)
	}
}

// =============================================================================

func newState(t *testing.T, gen genesis.Genesis, workers int) *state.State {
	t.Helper()

	log, err := logger.New("TEST")
	if err != nil {
		t.Fatalf("Should be able to construct a logger: %v", err)
	}
	t.Cleanup(func() { log.Sync() })

	strg, err := memory.New()
	if err != nil {
		t.Fatalf("Should be able to construct storage: %v", err)
	}

	ev := func(v string, args ...any) {
		log.Debugf(v, args...)
	}

	st, err := state.New(state.Config{
		Genesis:   gen,
		Storage:   strg,
		Workers:   workers,
		EvHandler: ev,
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %v", err)
	}

	return st
}

func privateKey(t *testing.T, hexKey string) *ecdsa.PrivateKey {
	t.Helper()

	pk, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		t.Fatalf("Should be able to load a private key: %v", err)
	}

	return pk
}
