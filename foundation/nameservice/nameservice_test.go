package nameservice_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_NameService(t *testing.T) {
	t.Log("Given the need to name the accounts in a folder.")
	{
		dir := t.TempDir()

		key, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a key: %v", failed, err)
		}

		if err := crypto.SaveECDSA(filepath.Join(dir, "miner1.ecdsa"), key); err != nil {
			t.Fatalf("\t%s\tShould be able to save the key: %v", failed, err)
		}

		if err := os.WriteFile(filepath.Join(dir, "README"), []byte("skip"), 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to write a file: %v", failed, err)
		}

		ns, err := nameservice.New(dir)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the name service: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to construct the name service.", success)

		pk := database.PublicKeyOf(key)

		if ns.Lookup(pk) != "miner1" {
			t.Fatalf("\t%s\tShould name the account after its file: %s", failed, ns.Lookup(pk))
		}
		t.Logf("\t%s\tShould name the account after its file.", success)

		if got, exists := ns.PublicKey("miner1"); !exists || got != pk {
			t.Fatalf("\t%s\tShould find the public key by name.", failed)
		}
		t.Logf("\t%s\tShould find the public key by name.", success)

		if len(ns.Copy()) != 1 {
			t.Fatalf("\t%s\tShould ignore files that are not keys.", failed)
		}
		t.Logf("\t%s\tShould ignore files that are not keys.", success)

		other := database.PublicKey("0x04abcdef0123456789")
		if ns.Lookup(other) != other.Short() {
			t.Fatalf("\t%s\tShould fall back to the short key.", failed)
		}
		t.Logf("\t%s\tShould fall back to the short key.", success)
	}
}
