package util

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
)

// Hash160 returns RIPEMD160(SHA256(data)).
func Hash160(data []byte) []byte {
	return btcutil.Hash160(data)
}

// P2PKHAddress encodes the legacy pay-to-pubkey-hash address of a serialized
// public key: base58check of hash160(pubKey) under the network's version byte.
func P2PKHAddress(params *chaincfg.Params, pubKey []byte) string {
	return base58.CheckEncode(Hash160(pubKey), params.PubKeyHashAddrID)
}
