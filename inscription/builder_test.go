package inscription

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
	"github.com/inscription-c/custody/constants"
	"github.com/inscription-c/custody/errs"
	"github.com/inscription-c/custody/internal/util"
	"github.com/inscription-c/custody/model"
	"github.com/inscription-c/custody/signer"
	"github.com/stretchr/testify/require"
)

var testParams = &chaincfg.RegressionNetParams

type staticUtxos struct {
	utxos model.Utxos
	err   error
	asked string
}

func (s *staticUtxos) Utxos(_ context.Context, address string) (model.Utxos, error) {
	s.asked = address
	return s.utxos, s.err
}

// shortSchnorr returns truncated BIP-340 signatures.
type shortSchnorr struct {
	*signer.Static
}

func (s shortSchnorr) SignSchnorr(ctx context.Context, path [][]byte, digest []byte) ([]byte, error) {
	sig, err := s.Static.SignSchnorr(ctx, path, digest)
	if err != nil {
		return nil, err
	}
	return sig[:63], nil
}

type brokenOracle struct {
	*signer.Static
}

func (brokenOracle) PublicKey(context.Context, [][]byte) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func testKey(t *testing.T) *btcec.PrivateKey {
	priv, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x11}, 32))
	require.NotNil(t, priv)
	return priv
}

func fundingScript(t *testing.T, priv *btcec.PrivateKey) (string, []byte) {
	address := util.P2PKHAddress(testParams, priv.PubKey().SerializeCompressed())
	pkScript, err := util.P2PKHScript(address, testParams)
	require.NoError(t, err)
	return address, pkScript
}

func fundingUtxo(seed byte, value btcutil.Amount, height uint32) model.Utxo {
	return model.Utxo{
		OutPoint: wire.OutPoint{Hash: chainhash.Hash{seed}, Index: uint32(seed)},
		Value:    value,
		Height:   height,
	}
}

func newTestBuilder(t *testing.T, s signer.Signer, utxos UtxoProvider, opts ...BuilderOption) *Builder {
	opts = append([]BuilderOption{
		WithParams(testParams),
		WithSigner(s),
		WithUtxoProvider(utxos),
	}, opts...)
	b, err := NewBuilder(opts...)
	require.NoError(t, err)
	return b
}

// verifyInputs runs every input of tx through the script engine.
func verifyInputs(t *testing.T, tx *wire.MsgTx, prevOuts map[wire.OutPoint]*wire.TxOut) {
	fetcher := txscript.NewMultiPrevOutFetcher(prevOuts)
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)
	for i, in := range tx.TxIn {
		prevOut := prevOuts[in.PreviousOutPoint]
		require.NotNil(t, prevOut, "input %d", i)
		vm, err := txscript.NewEngine(prevOut.PkScript, tx, i,
			txscript.StandardVerifyFlags, nil, sigHashes, prevOut.Value, fetcher)
		require.NoError(t, err)
		require.NoError(t, vm.Execute(), "input %d", i)
	}
}

func TestBuild(t *testing.T) {
	priv := testKey(t)
	address, pkScript := fundingScript(t, priv)
	utxo := fundingUtxo(1, 100000, 100)
	provider := &staticUtxos{utxos: model.Utxos{utxo}}
	b := newTestBuilder(t, signer.NewStatic(priv), provider)

	res, err := b.Build(context.Background(), &Request{
		Inscription: New(constants.ContentTypeTextPlain, []byte("hi")),
		FeeRate:     10,
	})
	require.NoError(t, err)
	require.Equal(t, address, provider.asked)
	require.Equal(t, address, res.FundingAddress)
	require.Equal(t, address, res.Destination)

	// commit: one input, one taproot output carrying everything but the fee
	commit := res.CommitTx
	require.Len(t, commit.TxIn, 1)
	require.Len(t, commit.TxOut, 1)
	require.Equal(t, utxo.OutPoint, commit.TxIn[0].PreviousOutPoint)
	require.Equal(t, res.SpendInfo.PkScript, commit.TxOut[0].PkScript)
	require.Equal(t, btcutil.Amount(10*(94+constants.LegacyInputSigOverhead)), res.CommitFee)
	require.Equal(t, int64(res.Total-res.CommitFee), commit.TxOut[0].Value)

	// reveal: spends the signed commit output into the funding address
	reveal := res.RevealTx
	require.Len(t, reveal.TxIn, 1)
	require.Equal(t, wire.OutPoint{Hash: commit.TxHash(), Index: 0}, reveal.TxIn[0].PreviousOutPoint)
	require.Equal(t, uint32(constants.RevealSequence), reveal.TxIn[0].Sequence)
	require.Equal(t, pkScript, reveal.TxOut[0].PkScript)
	require.Equal(t, int64(100000-res.CommitFee-res.RevealFee), reveal.TxOut[0].Value)
	require.Equal(t, btcutil.Amount(10*virtualSize(reveal)), res.RevealFee)

	witness := reveal.TxIn[0].Witness
	require.Len(t, witness, 3)
	require.Len(t, witness[0], schnorr.SignatureSize)
	require.Equal(t, res.RevealScript, witness[1])
	require.Equal(t, res.SpendInfo.ControlBlock, witness[2])

	envelopes := ParseTransaction(reveal)
	require.Len(t, envelopes, 1)
	require.Equal(t, []byte("text/plain"), envelopes[0].Payload.ContentType)
	require.Equal(t, []byte("hi"), envelopes[0].Payload.Body)

	verifyInputs(t, commit, map[wire.OutPoint]*wire.TxOut{
		utxo.OutPoint: wire.NewTxOut(int64(utxo.Value), pkScript),
	})
	verifyInputs(t, reveal, map[wire.OutPoint]*wire.TxOut{
		reveal.TxIn[0].PreviousOutPoint: commit.TxOut[0],
	})
}

func TestBuildSpendsOldestFirst(t *testing.T) {
	priv := testKey(t)
	_, pkScript := fundingScript(t, priv)
	newest := fundingUtxo(3, 20000, 300)
	middle := fundingUtxo(2, 20000, 200)
	oldest := fundingUtxo(1, 20000, 100)
	provider := &staticUtxos{utxos: model.Utxos{newest, middle, oldest}}
	b := newTestBuilder(t, signer.NewStatic(priv), provider)

	res, err := b.Build(context.Background(), &Request{
		Inscription: New(constants.ContentTypeTextPlain, []byte("order")),
	})
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(60000), res.Total)

	commit := res.CommitTx
	require.Len(t, commit.TxIn, 3)
	require.Equal(t, oldest.OutPoint, commit.TxIn[0].PreviousOutPoint)
	require.Equal(t, middle.OutPoint, commit.TxIn[1].PreviousOutPoint)
	require.Equal(t, newest.OutPoint, commit.TxIn[2].PreviousOutPoint)
	for _, in := range commit.TxIn {
		require.Equal(t, uint32(0), in.Sequence)
	}

	prevOuts := make(map[wire.OutPoint]*wire.TxOut)
	for _, u := range provider.utxos {
		prevOuts[u.OutPoint] = wire.NewTxOut(int64(u.Value), pkScript)
	}
	verifyInputs(t, commit, prevOuts)
	verifyInputs(t, res.RevealTx, map[wire.OutPoint]*wire.TxOut{
		res.RevealTx.TxIn[0].PreviousOutPoint: commit.TxOut[0],
	})
}

func TestBuildDestination(t *testing.T) {
	priv := testKey(t)
	b := newTestBuilder(t, signer.NewStatic(priv), &staticUtxos{utxos: model.Utxos{fundingUtxo(1, 50000, 1)}})

	other, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x22}, 32))
	dest, err := btcutil.NewAddressTaproot(schnorr.SerializePubKey(other.PubKey()), testParams)
	require.NoError(t, err)
	destScript, err := txscript.PayToAddrScript(dest)
	require.NoError(t, err)

	res, err := b.Build(context.Background(), &Request{
		Inscription: New(constants.ContentTypeTextPlain, []byte("gift")),
		Destination: dest.EncodeAddress(),
		FeeRate:     2,
	})
	require.NoError(t, err)
	require.Equal(t, destScript, res.RevealTx.TxOut[0].PkScript)

	// an address of another network is refused before any signing
	mainnet := util.P2PKHAddress(&chaincfg.MainNetParams, other.PubKey().SerializeCompressed())
	_, err = b.Build(context.Background(), &Request{
		Inscription: New(constants.ContentTypeTextPlain, []byte("gift")),
		Destination: mainnet,
	})
	require.ErrorIs(t, err, errs.ErrMalformedInput)
}

func TestBuildInsufficientFunds(t *testing.T) {
	priv := testKey(t)
	req := &Request{Inscription: New(constants.ContentTypeTextPlain, []byte("hi")), FeeRate: 10}

	b := newTestBuilder(t, signer.NewStatic(priv), &staticUtxos{})
	_, err := b.Build(context.Background(), req)
	require.ErrorIs(t, err, errs.ErrInsufficientFunds)

	b = newTestBuilder(t, signer.NewStatic(priv), &staticUtxos{utxos: model.Utxos{fundingUtxo(1, 1000, 1)}})
	_, err = b.Build(context.Background(), req)
	require.ErrorIs(t, err, errs.ErrInsufficientFunds)
}

func TestBuildExternalFailures(t *testing.T) {
	priv := testKey(t)
	req := &Request{Inscription: New(constants.ContentTypeTextPlain, []byte("hi"))}
	funded := &staticUtxos{utxos: model.Utxos{fundingUtxo(1, 100000, 1)}}

	b := newTestBuilder(t, brokenOracle{signer.NewStatic(priv)}, funded)
	_, err := b.Build(context.Background(), req)
	require.ErrorIs(t, err, errs.ErrExternalCallFailed)

	b = newTestBuilder(t, shortSchnorr{signer.NewStatic(priv)}, funded)
	_, err = b.Build(context.Background(), req)
	require.ErrorIs(t, err, errs.ErrExternalCallFailed)

	provider := &staticUtxos{err: errors.New("node down")}
	b = newTestBuilder(t, signer.NewStatic(priv), provider)
	_, err = b.Build(context.Background(), req)
	require.ErrorIs(t, err, errs.ErrExternalCallFailed)
}

func TestBuildRejectsRequest(t *testing.T) {
	b := newTestBuilder(t, signer.NewStatic(testKey(t)), &staticUtxos{})
	_, err := b.Build(context.Background(), nil)
	require.ErrorIs(t, err, errs.ErrMalformedInput)
	_, err = b.Build(context.Background(), &Request{
		Inscription: New(constants.ContentTypeTextPlain, nil),
		FeeRate:     -1,
	})
	require.ErrorIs(t, err, errs.ErrMalformedInput)
}

func TestBuildExactCommitFee(t *testing.T) {
	priv := testKey(t)
	_, pkScript := fundingScript(t, priv)
	utxos := model.Utxos{fundingUtxo(2, 40000, 2), fundingUtxo(1, 60000, 1)}
	b := newTestBuilder(t, signer.NewStatic(priv), &staticUtxos{utxos: utxos}, WithExactCommitFee())

	res, err := b.Build(context.Background(), &Request{
		Inscription: New(constants.ContentTypeTextPlain, []byte("exact")),
		FeeRate:     7,
	})
	require.NoError(t, err)

	commit := res.CommitTx
	signedFee := btcutil.Amount(7 * virtualSize(commit))
	require.GreaterOrEqual(t, res.CommitFee, signedFee)

	unsigned := commit.Copy()
	for _, in := range unsigned.TxIn {
		in.SignatureScript = nil
	}
	require.LessOrEqual(t, res.CommitFee, maxCommitFee(unsigned, 7))
	require.Equal(t, int64(res.Total-res.CommitFee), commit.TxOut[0].Value)

	prevOuts := make(map[wire.OutPoint]*wire.TxOut)
	for _, u := range utxos {
		prevOuts[u.OutPoint] = wire.NewTxOut(int64(u.Value), pkScript)
	}
	verifyInputs(t, commit, prevOuts)
}

func TestFeeEstimates(t *testing.T) {
	spend, err := NewTaprootSpendInfo([]byte{txscript.OP_TRUE}, testParams)
	require.NoError(t, err)

	tx := newCommitTx(model.Utxos{fundingUtxo(1, 1000, 1)}, spend.PkScript)
	require.Equal(t, int64(94), virtualSize(tx))
	require.Equal(t, btcutil.Amount(3*(94+constants.LegacyInputSigOverhead)), estimateCommitFee(tx, 3))
	require.Equal(t, btcutil.Amount(3*(94+txsizes.RedeemP2PKHSigScriptSize)), maxCommitFee(tx, 3))

	vout, err := findVout(tx, spend.PkScript)
	require.NoError(t, err)
	require.Equal(t, uint32(0), vout)
	_, err = findVout(tx, []byte{txscript.OP_RETURN})
	require.Error(t, err)
}

func TestRevealValue(t *testing.T) {
	_, p2pkh := fundingScript(t, testKey(t))

	value, err := revealValue(10000, 1000, 2000, p2pkh)
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(7000), value)

	_, err = revealValue(10000, 5000, 5000, p2pkh)
	require.ErrorIs(t, err, errs.ErrInsufficientFunds)

	// positive but below the dust limit
	_, err = revealValue(10000, 1000, 8900, p2pkh)
	require.ErrorIs(t, err, errs.ErrInsufficientFunds)
}

func TestTaprootSpendInfo(t *testing.T) {
	script, err := New(constants.ContentTypeTextPlain, []byte("hi")).
		RevealScript(schnorr.SerializePubKey(testKey(t).PubKey()))
	require.NoError(t, err)

	spend, err := NewTaprootSpendInfo(script, testParams)
	require.NoError(t, err)
	require.Equal(t, UnspendableInternalKey(), spend.InternalKey)
	require.Equal(t, script, spend.Leaf.Script)

	// the control block proves the leaf against the output key
	cb, err := txscript.ParseControlBlock(spend.ControlBlock)
	require.NoError(t, err)
	require.NoError(t, txscript.VerifyTaprootLeafCommitment(cb, schnorr.SerializePubKey(spend.OutputKey), script))

	// the address commits to the output key
	require.Equal(t, schnorr.SerializePubKey(spend.OutputKey), spend.Address.ScriptAddress())
	require.Len(t, spend.PkScript, 34)
}

func TestAddressAndBalance(t *testing.T) {
	priv := testKey(t)
	address, _ := fundingScript(t, priv)
	provider := &staticUtxos{utxos: model.Utxos{fundingUtxo(1, 1500, 1), fundingUtxo(2, 2500, 0)}}
	b := newTestBuilder(t, signer.NewStatic(priv), provider)

	got, err := b.Address(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, address, got)

	balance, err := b.Balance(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(4000), balance)
	require.Equal(t, address, provider.asked)
}
