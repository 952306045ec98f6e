// Package signer defines the key oracle the transaction builders sign
// through, and the legacy pay-to-pubkey-hash input signer.
package signer

import (
	"context"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/inscription-c/custody/errs"
)

// Signer is a key oracle bound to one tenant. Paths are the sub paths below
// the tenant identity, which the implementation supplies itself.
type Signer interface {
	// PublicKey returns the 33-byte compressed public key of path.
	PublicKey(ctx context.Context, path [][]byte) ([]byte, error)
	// SignECDSA returns the 64-byte compact r||s signature of a 32-byte
	// digest.
	SignECDSA(ctx context.Context, path [][]byte, digest []byte) ([]byte, error)
	// SignSchnorr returns the 64-byte BIP-340 signature of a 32-byte
	// digest.
	SignSchnorr(ctx context.Context, path [][]byte, digest []byte) ([]byte, error)
}

// CheckDigest validates the length of a message digest.
func CheckDigest(digest []byte) error {
	if len(digest) != 32 {
		return errs.Malformed("invalid digest length %d", len(digest))
	}
	return nil
}

// SignECDSA signs digest with RFC 6979 nonces and returns the compact
// r||s signature without the recovery header.
func SignECDSA(priv *btcec.PrivateKey, digest []byte) ([]byte, error) {
	if err := CheckDigest(digest); err != nil {
		return nil, err
	}
	compact, err := ecdsa.SignCompact(priv, digest, true)
	if err != nil {
		return nil, err
	}
	return compact[1:], nil
}

// SignSchnorr produces a BIP-340 signature with all-zero auxiliary
// randomness, so equal inputs give equal signatures.
func SignSchnorr(priv *btcec.PrivateKey, digest []byte) ([]byte, error) {
	if err := CheckDigest(digest); err != nil {
		return nil, err
	}
	sig, err := schnorr.Sign(priv, digest, schnorr.CustomNonce([32]byte{}))
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}

// Static signs every path with one private key.
type Static struct {
	priv *btcec.PrivateKey
}

// NewStatic returns a Signer backed by a single private key.
func NewStatic(priv *btcec.PrivateKey) *Static {
	return &Static{priv: priv}
}

func (s *Static) PublicKey(_ context.Context, _ [][]byte) ([]byte, error) {
	return s.priv.PubKey().SerializeCompressed(), nil
}

func (s *Static) SignECDSA(_ context.Context, _ [][]byte, digest []byte) ([]byte, error) {
	return SignECDSA(s.priv, digest)
}

func (s *Static) SignSchnorr(_ context.Context, _ [][]byte, digest []byte) ([]byte, error) {
	return SignSchnorr(s.priv, digest)
}
