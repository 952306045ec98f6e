package inscription

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcwallet/waddrmgr"
)

// numsKeyX is the x coordinate of the BIP-341 point with no known discrete
// logarithm, H = lift_x(sha256(G)).
const numsKeyX = "50929b74c1a04954b78b4b6035e97a5e078a5a0f28ec96d547bfee9ace803ac0"

var unspendableKey = func() *btcec.PublicKey {
	b, _ := hex.DecodeString(numsKeyX)
	key, err := schnorr.ParsePubKey(b)
	if err != nil {
		panic(err)
	}
	return key
}()

// UnspendableInternalKey returns the internal key of every commit output.
// The key path of such an output cannot be spent.
func UnspendableInternalKey() *btcec.PublicKey {
	return unspendableKey
}

// TaprootSpendInfo is everything needed to pay to and spend a single leaf
// taproot output.
type TaprootSpendInfo struct {
	InternalKey  *btcec.PublicKey
	Leaf         txscript.TapLeaf
	OutputKey    *btcec.PublicKey
	ControlBlock []byte
	Address      *btcutil.AddressTaproot
	PkScript     []byte
}

// tapscript wraps the single leaf tree committed to by a commit output.
func tapscript(internalKey *btcec.PublicKey, script []byte) *waddrmgr.Tapscript {
	return &waddrmgr.Tapscript{
		Type:   waddrmgr.TapscriptTypeFullTree,
		Leaves: []txscript.TapLeaf{txscript.NewBaseTapLeaf(script)},
		ControlBlock: &txscript.ControlBlock{
			InternalKey: internalKey,
		},
	}
}

// NewTaprootSpendInfo commits revealScript as the only leaf of a tree over
// the unspendable internal key.
func NewTaprootSpendInfo(revealScript []byte, params *chaincfg.Params) (*TaprootSpendInfo, error) {
	ts := tapscript(unspendableKey, revealScript)
	outputKey, err := ts.TaprootKey()
	if err != nil {
		return nil, err
	}

	tree := txscript.AssembleTaprootScriptTree(ts.Leaves...)
	cb := tree.LeafMerkleProofs[0].ToControlBlock(unspendableKey)
	controlBlock, err := cb.ToBytes()
	if err != nil {
		return nil, err
	}

	address, err := btcutil.NewAddressTaproot(schnorr.SerializePubKey(outputKey), params)
	if err != nil {
		return nil, err
	}
	pkScript, err := txscript.PayToAddrScript(address)
	if err != nil {
		return nil, err
	}

	return &TaprootSpendInfo{
		InternalKey:  unspendableKey,
		Leaf:         ts.Leaves[0],
		OutputKey:    outputKey,
		ControlBlock: controlBlock,
		Address:      address,
		PkScript:     pkScript,
	}, nil
}
