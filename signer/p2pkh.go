package signer

import (
	"bytes"
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/inscription-c/custody/errs"
	"github.com/inscription-c/custody/internal/util"
)

// SignP2PKH fills the script-sig of every input of tx, all of which must
// spend outputs of the legacy address. Each input commits to the address
// script with SIGHASH_ALL and carries <der sig||hashtype> <pubKey>.
func SignP2PKH(
	ctx context.Context,
	s Signer,
	tx *wire.MsgTx,
	pubKey []byte,
	address string,
	params *chaincfg.Params,
	path [][]byte,
) error {
	pkScript, err := util.P2PKHScript(address, params)
	if err != nil {
		return err
	}
	decoded, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return errs.Malformed("address %s: %v", address, err)
	}
	if !bytes.Equal(decoded.ScriptAddress(), util.Hash160(pubKey)) {
		return errs.Malformed("public key does not belong to %s", address)
	}

	for i, in := range tx.TxIn {
		hash, err := txscript.CalcSignatureHash(pkScript, txscript.SigHashAll, tx, i)
		if err != nil {
			return err
		}
		sig, err := s.SignECDSA(ctx, path, hash)
		if err != nil {
			return errs.External("sign_with_ecdsa", err)
		}
		der, err := util.Sec1ToDER(sig)
		if err != nil {
			return err
		}
		sigScript, err := txscript.NewScriptBuilder().
			AddData(append(der, byte(txscript.SigHashAll))).
			AddData(pubKey).
			Script()
		if err != nil {
			return err
		}
		in.SignatureScript = sigScript
		in.Witness = nil
	}
	return nil
}
