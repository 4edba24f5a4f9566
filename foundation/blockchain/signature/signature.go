// Package signature provides helper functions for handling the blockchain
// signature and hashing needs.
package signature

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha512"
	"encoding/hex"
	"errors"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// HashLength is the number of hex characters produced by Hash.
const HashLength = 2 * sha512.Size

// =============================================================================

// Hash returns the hex encoded SHA-512 digest of the data. This is the one
// digest used for computing and checking block hashes.
func Hash(data string) string {
	hash := sha512.Sum512([]byte(data))
	return hex.EncodeToString(hash[:])
}

// GenerateKey produces a new secp256k1 private key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

// PublicKeyOf returns the hex encoded uncompressed public key for the
// specified private key.
func PublicKeyOf(privateKey *ecdsa.PrivateKey) string {
	return hexutil.Encode(crypto.FromECDSAPub(&privateKey.PublicKey))
}

// Sign uses the specified private key to sign the message. The signature is
// returned in the 65 byte [R|S|V] format.
func Sign(privateKey *ecdsa.PrivateKey, message []byte) ([]byte, error) {
	if privateKey == nil {
		return nil, errors.New("private key is missing")
	}

	// Sign the stamped hash with the private key to produce a signature.
	data := stamp(message)
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return nil, err
	}

	// Check the public key extracted from the data and signature.
	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(&privateKey.PublicKey), data, rs) {
		return nil, errors.New("invalid signature")
	}

	return sig, nil
}

// Verify checks the signature was produced over the message by the private
// key behind the hex encoded public key.
func Verify(publicKey string, message []byte, sig []byte) bool {
	if len(sig) != crypto.SignatureLength {
		return false
	}

	pub, err := hexutil.Decode(publicKey)
	if err != nil {
		return false
	}

	data := stamp(message)

	// Rejects malleable signatures and values outside the curve order.
	if !crypto.VerifySignature(pub, data, sig[:crypto.RecoveryIDOffset]) {
		return false
	}

	// NOTE: VerifySignature ignores the recovery id. Recovering the key makes
	// sure every byte of the signature is accounted for.
	recovered, err := crypto.SigToPub(data, sig)
	if err != nil {
		return false
	}

	return bytes.Equal(crypto.FromECDSAPub(recovered), pub)
}

// IsPublicKey verifies the string is a hex encoded uncompressed
// secp256k1 public key.
func IsPublicKey(publicKey string) bool {
	pub, err := hexutil.Decode(publicKey)
	if err != nil {
		return false
	}

	_, err = crypto.UnmarshalPubkey(pub)
	return err == nil
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this message with
// the powchain stamp embedded into the final hash.
func stamp(message []byte) []byte {

	// Hash the message into a 32 byte array. This will provide
	// a data length consistency with all data.
	txHash := crypto.Keccak256(message)

	// Convert the stamp into a slice of bytes. This stamp is
	// used so signatures we produce when signing data
	// are always unique to this blockchain.
	stamp := []byte("\x19Powchain Signed Message:\n32")

	// Hash the stamp and txHash together in a final 32 byte array
	// that represents the data.
	return crypto.Keccak256(stamp, txHash)
}
