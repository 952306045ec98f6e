package inscription

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
	"github.com/inscription-c/custody/constants"
	"github.com/inscription-c/custody/errs"
	"github.com/inscription-c/custody/model"
)

// virtualSize is the BIP-141 virtual size of tx, rounded up.
func virtualSize(tx *wire.MsgTx) int64 {
	weight := blockchain.GetTransactionWeight(btcutil.NewTx(tx))
	return (weight + blockchain.WitnessScaleFactor - 1) / blockchain.WitnessScaleFactor
}

// newCommitTx spends every utxo into a single output paying pkScript. The
// output value is left for the caller to set once the fee is known.
func newCommitTx(utxos model.Utxos, pkScript []byte) *wire.MsgTx {
	tx := wire.NewMsgTx(constants.TxVersion)
	for _, utxo := range utxos {
		in := wire.NewTxIn(&utxo.OutPoint, nil, nil)
		in.Sequence = 0
		tx.AddTxIn(in)
	}
	tx.AddTxOut(wire.NewTxOut(0, pkScript))
	return tx
}

// estimateCommitFee prices the unsigned commit plus a fixed script-sig
// allowance per input. A signed p2pkh script-sig is closer to
// txsizes.RedeemP2PKHSigScriptSize bytes, so the estimate runs low.
func estimateCommitFee(tx *wire.MsgTx, feeRate int64) btcutil.Amount {
	size := virtualSize(tx) + constants.LegacyInputSigOverhead*int64(len(tx.TxIn))
	return btcutil.Amount(feeRate * size)
}

// maxCommitFee is a commit fee no signed commit can exceed.
func maxCommitFee(tx *wire.MsgTx, feeRate int64) btcutil.Amount {
	size := virtualSize(tx) + txsizes.RedeemP2PKHSigScriptSize*int64(len(tx.TxIn))
	return btcutil.Amount(feeRate * size)
}

// newRevealTx spends the commit output at prevOut into a single output.
func newRevealTx(prevOut wire.OutPoint, pkScript []byte, value btcutil.Amount) *wire.MsgTx {
	tx := wire.NewMsgTx(constants.TxVersion)
	in := wire.NewTxIn(&prevOut, nil, nil)
	in.Sequence = constants.RevealSequence
	tx.AddTxIn(in)
	tx.AddTxOut(wire.NewTxOut(int64(value), pkScript))
	return tx
}

// estimateRevealFee prices a reveal whose witness holds a zero signature
// next to the real script and control block. A BIP-340 signature is always
// 64 bytes, so the estimate equals the size of the signed reveal.
func estimateRevealFee(destScript []byte, spend *TaprootSpendInfo, feeRate int64) btcutil.Amount {
	tx := newRevealTx(wire.OutPoint{Hash: chainhash.Hash{}}, destScript, 0)
	tx.TxIn[0].Witness = wire.TxWitness{
		make([]byte, 64),
		spend.Leaf.Script,
		spend.ControlBlock,
	}
	return btcutil.Amount(feeRate * virtualSize(tx))
}

// findVout returns the index of the output paying pkScript.
func findVout(tx *wire.MsgTx, pkScript []byte) (uint32, error) {
	for i, out := range tx.TxOut {
		if bytes.Equal(out.PkScript, pkScript) {
			return uint32(i), nil
		}
	}
	return 0, fmt.Errorf("commit tx %s has no taproot output", tx.TxHash())
}

// revealValue is what remains for the inscription output after both fees.
func revealValue(total, commitFee, revealFee btcutil.Amount, destScript []byte) (btcutil.Amount, error) {
	value := total - commitFee - revealFee
	if value <= 0 {
		return 0, fmt.Errorf("%w: have %d sat, need %d sat for fees",
			errs.ErrInsufficientFunds, total, commitFee+revealFee)
	}
	if err := txrules.CheckOutput(wire.NewTxOut(int64(value), destScript), txrules.DefaultRelayFeePerKb); err != nil {
		return 0, fmt.Errorf("%w: reveal output of %d sat: %v", errs.ErrInsufficientFunds, value, err)
	}
	return value, nil
}
