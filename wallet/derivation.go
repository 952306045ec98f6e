package wallet

import (
	"crypto/hmac"
	"crypto/sha512"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// DerivationPath is a list of arbitrary length indices. The first element
// is always the tenant identity.
type DerivationPath [][]byte

// NewDerivationPath prefixes subPath with the tenant.
func NewDerivationPath(tenant []byte, subPath [][]byte) DerivationPath {
	path := make(DerivationPath, 0, len(subPath)+1)
	path = append(path, tenant)
	return append(path, subPath...)
}

// masterChainCode is the chain code of the root of every path.
var masterChainCode = [32]byte{}

var errDerivedZeroKey = errors.New("derived private key is zero")

// ckd computes the tweak and next chain code of one path element.
//
//	I = HMAC-SHA512(chainCode, input || idx)
//
// A left half at or above the group order is retried with input set to
// 0x01 || right half.
func ckd(idx, input []byte, chainCode [32]byte) ([32]byte, secp256k1.ModNScalar) {
	for {
		mac := hmac.New(sha512.New, chainCode[:])
		mac.Write(input)
		mac.Write(idx)
		sum := mac.Sum(nil)

		var next [32]byte
		copy(next[:], sum[32:])

		var tweak secp256k1.ModNScalar
		if overflow := tweak.SetByteSlice(sum[:32]); !overflow {
			return next, tweak
		}
		input = append([]byte{0x01}, next[:]...)
	}
}

// ckdPub derives the child of an affine point. A child at infinity is
// retried with input 0x01 || next chain code.
func ckdPub(idx []byte, parent *secp256k1.PublicKey, chainCode [32]byte) (
	[32]byte, secp256k1.ModNScalar, *secp256k1.PublicKey) {

	var parentPt secp256k1.JacobianPoint
	parent.AsJacobian(&parentPt)

	input := parent.SerializeCompressed()
	for {
		next, tweak := ckd(idx, input, chainCode)

		var tweakPt, childPt secp256k1.JacobianPoint
		secp256k1.ScalarBaseMultNonConst(&tweak, &tweakPt)
		secp256k1.AddNonConst(&parentPt, &tweakPt, &childPt)
		if !isInfinity(&childPt) {
			childPt.ToAffine()
			return next, tweak, secp256k1.NewPublicKey(&childPt.X, &childPt.Y)
		}
		input = append([]byte{0x01}, next[:]...)
	}
}

func isInfinity(p *secp256k1.JacobianPoint) bool {
	return p.Z.IsZero() || (p.X.IsZero() && p.Y.IsZero())
}

// derivePublic walks the path from a public key. It returns the child key,
// its chain code and the sum of all tweaks.
func (p DerivationPath) derivePublic(master *secp256k1.PublicKey, chainCode [32]byte) (
	*secp256k1.PublicKey, [32]byte, secp256k1.ModNScalar) {

	var offset secp256k1.ModNScalar
	key := master
	for _, idx := range p {
		var tweak secp256k1.ModNScalar
		chainCode, tweak, key = ckdPub(idx, key, chainCode)
		offset.Add(&tweak)
	}
	return key, chainCode, offset
}

// derivePrivate walks the path from a private key. The child private key
// is the parent key plus every tweak, mod n.
func (p DerivationPath) derivePrivate(master *secp256k1.PrivateKey, chainCode [32]byte) (
	*secp256k1.PrivateKey, [32]byte, error) {

	_, childCode, offset := p.derivePublic(master.PubKey(), chainCode)

	var key secp256k1.ModNScalar
	key.Set(&master.Key)
	key.Add(&offset)
	if key.IsZero() {
		return nil, childCode, errDerivedZeroKey
	}
	return secp256k1.NewPrivateKey(&key), childCode, nil
}
