package memory_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Memory(t *testing.T) {
	t.Log("Given the need to store blocks in memory.")
	{
		m, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
		}

		if _, err := m.LatestBlock(); !errors.Is(err, memory.ErrEmpty) {
			t.Fatalf("\t%s\tShould report an empty chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould report an empty chain.", success)

		block := database.NewBlock(nil, "abc")
		block.ComputeHash(1)
		if err := m.Write(block); err == nil {
			t.Fatalf("\t%s\tShould reject a first block that is not genesis.", failed)
		}
		t.Logf("\t%s\tShould reject a first block that is not genesis.", success)

		genesis := database.NewGenesisBlock()
		if err := m.Write(genesis); err != nil {
			t.Fatalf("\t%s\tShould be able to write genesis: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to write genesis.", success)

		if err := m.Write(block); err == nil {
			t.Fatalf("\t%s\tShould reject a block that does not link to the latest block.", failed)
		}
		t.Logf("\t%s\tShould reject a block that does not link to the latest block.", success)

		next := database.NewBlock(nil, genesis.Hash)
		next.ComputeHash(7)
		if err := m.Write(next); err != nil {
			t.Fatalf("\t%s\tShould be able to write a linked block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to write a linked block.", success)

		if m.Len() != 2 {
			t.Fatalf("\t%s\tShould hold two blocks, got %d.", failed, m.Len())
		}
		t.Logf("\t%s\tShould hold two blocks.", success)

		latest, err := m.LatestBlock()
		if err != nil || latest.Hash != next.Hash {
			t.Fatalf("\t%s\tShould return the latest block: %v", failed, err)
		}
		t.Logf("\t%s\tShould return the latest block.", success)

		blocks := m.Blocks()
		blocks[1].Hash = "tampered"
		got, err := m.GetBlock(1)
		if err != nil || got.Hash != next.Hash {
			t.Fatalf("\t%s\tShould hand out copies of the stored blocks.", failed)
		}
		t.Logf("\t%s\tShould hand out copies of the stored blocks.", success)

		if _, err := m.GetBlock(2); err == nil {
			t.Fatalf("\t%s\tShould fail for a missing block.", failed)
		}
		t.Logf("\t%s\tShould fail for a missing block.", success)

		if err := m.Reset(); err != nil || m.Len() != 0 {
			t.Fatalf("\t%s\tShould be able to reset: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to reset.", success)
	}
}
