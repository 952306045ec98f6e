package util

import (
	"bytes"
	"encoding/asn1"
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/inscription-c/custody/errs"
	"github.com/stretchr/testify/require"
)

type derSignature struct {
	R, S *big.Int
}

func decodeDER(t *testing.T, der []byte) (*big.Int, *big.Int) {
	var sig derSignature
	rest, err := asn1.Unmarshal(der, &sig)
	require.NoError(t, err)
	require.Empty(t, rest)
	return sig.R, sig.S
}

func TestSec1ToDERRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		r, s []byte
	}{
		{"low", bytes.Repeat([]byte{0x11}, 32), bytes.Repeat([]byte{0x22}, 32)},
		{"high bit r", bytes.Repeat([]byte{0x81}, 32), bytes.Repeat([]byte{0x22}, 32)},
		{"high bit both", bytes.Repeat([]byte{0xff}, 32), bytes.Repeat([]byte{0x80}, 32)},
		{"leading zeros", append(make([]byte, 3), bytes.Repeat([]byte{0x90}, 29)...), append([]byte{0x00, 0x7f}, bytes.Repeat([]byte{0x01}, 30)...)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sig := append(append([]byte{}, tc.r...), tc.s...)
			der, err := Sec1ToDER(sig)
			require.NoError(t, err)
			require.Equal(t, byte(0x30), der[0])
			require.Equal(t, len(der)-2, int(der[1]))

			r, s := decodeDER(t, der)
			require.Equal(t, new(big.Int).SetBytes(tc.r), r)
			require.Equal(t, new(big.Int).SetBytes(tc.s), s)
		})
	}
}

func TestSec1ToDERHighBitPrefix(t *testing.T) {
	sig := append(bytes.Repeat([]byte{0x80}, 32), bytes.Repeat([]byte{0x01}, 32)...)
	der, err := Sec1ToDER(sig)
	require.NoError(t, err)
	// SEQUENCE len, INTEGER 33 bytes with a 0x00 pad, INTEGER 32 bytes
	require.Equal(t, byte(4+33+32), der[1])
	require.Equal(t, []byte{0x02, 33, 0x00, 0x80}, der[2:6])
	require.Equal(t, []byte{0x02, 32, 0x01}, der[37:40])
}

func TestSec1ToDERMatchesBtcec(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	hash := chainhash.HashB([]byte("legacy sighash"))
	for i := 0; i < 16; i++ {
		hash = chainhash.HashB(hash)
		compact, err := ecdsa.SignCompact(priv, hash, true)
		require.NoError(t, err)

		der, err := Sec1ToDER(compact[1:])
		require.NoError(t, err)

		expect := ecdsa.Sign(priv, hash).Serialize()
		require.Equal(t, expect, der)

		parsed, err := ecdsa.ParseDERSignature(der)
		require.NoError(t, err)
		require.True(t, parsed.Verify(hash, priv.PubKey()))
	}
}

func TestSec1ToDERLength(t *testing.T) {
	for _, n := range []int{0, 63, 65, 72} {
		_, err := Sec1ToDER(make([]byte, n))
		require.ErrorIs(t, err, errs.ErrMalformedInput)
	}
}
