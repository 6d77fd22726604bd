// Package wallet maintains the registry of wallets the ledger consumes for
// signing and signature verification. Key pair generation and address
// derivation live here so the core state machinery only depends on the
// sign/verify/resolve capability.
package wallet

import (
	"crypto/ecdsa"
	"errors"
	"sync"

	"github.com/coinlab/coinlab/foundation/ledger/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNotFound is returned when an address can't be resolved to a wallet.
var ErrNotFound = errors.New("wallet not found")

// Wallet represents a single key pair and its derived address.
type Wallet struct {
	Address    string
	privateKey *ecdsa.PrivateKey
}

// PublicKey returns the uncompressed public key bytes for the wallet.
func (w Wallet) PublicKey() []byte {
	return crypto.FromECDSAPub(&w.privateKey.PublicKey)
}

// Sign signs the value with the wallet's private key.
func (w Wallet) Sign(value any) ([]byte, error) {
	return signature.Sign(value, w.privateKey)
}

// =============================================================================

// Store maintains the set of known wallets indexed by address.
type Store struct {
	mu      sync.RWMutex
	wallets map[string]Wallet
}

// NewStore constructs an empty wallet store.
func NewStore() *Store {
	return &Store{
		wallets: make(map[string]Wallet),
	}
}

// Create generates a new key pair, derives its address and registers the
// wallet with the store.
func (s *Store) Create() (Wallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return Wallet{}, err
	}

	return s.add(privateKey), nil
}

// AddKey registers a wallet for an existing private key. Used by tooling
// and tests that need deterministic addresses.
func (s *Store) AddKey(privateKey *ecdsa.PrivateKey) Wallet {
	return s.add(privateKey)
}

func (s *Store) add(privateKey *ecdsa.PrivateKey) Wallet {
	w := Wallet{
		Address:    crypto.PubkeyToAddress(privateKey.PublicKey).String(),
		privateKey: privateKey,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.wallets[w.Address] = w
	return w
}

// Resolve reports whether the address belongs to a known wallet.
func (s *Store) Resolve(address string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.wallets[address]
	return exists
}

// Addresses returns the addresses of every registered wallet.
func (s *Store) Addresses() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addresses := make([]string, 0, len(s.wallets))
	for address := range s.wallets {
		addresses = append(addresses, address)
	}
	return addresses
}

// Sign signs the value with the private key belonging to the address.
func (s *Store) Sign(address string, value any) ([]byte, error) {
	s.mu.RLock()
	w, exists := s.wallets[address]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrNotFound
	}

	return w.Sign(value)
}

// Verify checks the signature over the value against the public key of
// the specified address.
func (s *Store) Verify(address string, value any, sig []byte) bool {
	s.mu.RLock()
	w, exists := s.wallets[address]
	s.mu.RUnlock()

	if !exists {
		return false
	}

	return signature.Verify(w.PublicKey(), value, sig)
}
