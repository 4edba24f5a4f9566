// Package nameservice reads the zblock/accounts folder and creates a name
// service lookup for the known accounts.
package nameservice

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maintains a map of public keys for name lookup.
type NameService struct {
	accounts map[database.PublicKey]string
	names    map[string]database.PublicKey
}

// New constructs a name service with the accounts found in the key files
// under root. The name of an account is its file name without the .ecdsa
// extension.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[database.PublicKey]string),
		names:    make(map[string]database.PublicKey),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("%s: %w", fileName, err)
		}

		name := strings.TrimSuffix(path.Base(fileName), ".ecdsa")
		publicKey := database.PublicKeyOf(privateKey)

		ns.accounts[publicKey] = name
		ns.names[name] = publicKey

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified public key. Unknown keys come
// back in their short form.
func (ns *NameService) Lookup(publicKey database.PublicKey) string {
	name, exists := ns.accounts[publicKey]
	if !exists {
		return publicKey.Short()
	}
	return name
}

// PublicKey returns the public key registered under the name.
func (ns *NameService) PublicKey(name string) (database.PublicKey, bool) {
	publicKey, exists := ns.names[name]
	return publicKey, exists
}

// Copy returns a copy of the map of names and public keys.
func (ns *NameService) Copy() map[database.PublicKey]string {
	cpy := make(map[database.PublicKey]string, len(ns.accounts))
	for publicKey, name := range ns.accounts {
		cpy[publicKey] = name
	}
	return cpy
}
