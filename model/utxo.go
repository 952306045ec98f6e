package model

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/inscription-c/custody/constants"
	"github.com/shopspring/decimal"
)

// Amount is a json-rpc BTC float amount.
type Amount float64

// Sat converts the BTC float to satoshis without float rounding drift.
func (a Amount) Sat() btcutil.Amount {
	return btcutil.Amount(decimal.NewFromFloat(float64(a)).
		Mul(decimal.NewFromInt(constants.OneBtc)).IntPart())
}

// Utxo is an unspent output of the funding address as reported by the utxo
// provider. Height is zero for unconfirmed outputs.
type Utxo struct {
	OutPoint wire.OutPoint
	Value    btcutil.Amount
	Height   uint32
}

// Utxos is an ordered utxo snapshot, oldest last as the provider returns it.
type Utxos []Utxo

// Total sums the values of all utxos.
func (u Utxos) Total() btcutil.Amount {
	var total btcutil.Amount
	for _, utxo := range u {
		total += utxo.Value
	}
	return total
}

// OldestFirst returns the utxos in reverse provider order.
func (u Utxos) OldestFirst() Utxos {
	res := make(Utxos, 0, len(u))
	for i := len(u) - 1; i >= 0; i-- {
		res = append(res, u[i])
	}
	return res
}
