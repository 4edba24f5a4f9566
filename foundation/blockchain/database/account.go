package database

import (
	"crypto/ecdsa"
	"errors"

	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
)

// PublicKey represents the hex encoded public key of an account. It is used
// to verify transactions and to key balances on the blockchain. The empty
// value marks the absence of a sender, which is how newly minted funds are
// represented.
type PublicKey string

// ToPublicKey converts a hex-encoded string to a public key and validates the
// hex-encoded string is formatted correctly.
func ToPublicKey(hex string) (PublicKey, error) {
	pk := PublicKey(hex)
	if !pk.IsPublicKey() {
		return "", errors.New("invalid public key format")
	}

	return pk, nil
}

// PublicKeyOf returns the public key for the specified private key.
func PublicKeyOf(privateKey *ecdsa.PrivateKey) PublicKey {
	return PublicKey(signature.PublicKeyOf(privateKey))
}

// IsPublicKey verifies whether the underlying data represents a valid
// hex-encoded public key.
func (pk PublicKey) IsPublicKey() bool {
	return signature.IsPublicKey(string(pk))
}

// IsAbsent reports whether this is the absence marker.
func (pk PublicKey) IsAbsent() bool {
	return pk == ""
}

// Short returns an abbreviated form of the key for logging.
func (pk PublicKey) Short() string {
	const size = 12

	switch {
	case pk.IsAbsent():
		return "minted"
	case len(pk) <= size:
		return string(pk)
	}

	return string(pk[:size])
}
