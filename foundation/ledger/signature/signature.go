// Package signature provides the canonical hashing and ECDSA signing
// helpers used across the ledger.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
)

// Hash returns the hex encoded SHA-256 hash for the value. Callers that
// need a canonical, field-order independent encoding pass a map, since
// encoding/json marshals map keys in sorted order.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ""
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Sign uses the specified private key to sign the value. The signature is
// returned in the 65 byte [R|S|V] format.
func Sign(value any, privateKey *ecdsa.PrivateKey) ([]byte, error) {

	// Prepare the data for signing.
	data, err := stamp(value)
	if err != nil {
		return nil, err
	}

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return nil, err
	}

	// Extract the public key from the data and the signature.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return nil, err
	}

	// Check the public key extracted from the data and signature.
	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, rs) {
		return nil, errors.New("invalid signature")
	}

	return sig, nil
}

// Verify checks the signature was produced over the value by the owner of
// the specified public key.
func Verify(publicKey []byte, value any, sig []byte) bool {
	if len(sig) < crypto.RecoveryIDOffset {
		return false
	}

	data, err := stamp(value)
	if err != nil {
		return false
	}

	return crypto.VerifySignature(publicKey, data, sig[:crypto.RecoveryIDOffset])
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this data with the
// coinlab stamp embedded into the final hash.
func stamp(value any) ([]byte, error) {

	// Marshal the data.
	v, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	// Hash the data into a 32 byte array. This will provide a data length
	// consistency with all data.
	txHash := crypto.Keccak256(v)

	// This stamp is used so signatures we produce when signing data are
	// always unique to the coinlab ledger.
	stamp := []byte("\x19Coinlab Signed Message:\n32")

	// Hash the stamp and txHash together in a final 32 byte array that
	// represents the data.
	data := crypto.Keccak256(stamp, txHash)

	return data, nil
}
