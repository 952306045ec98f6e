package inscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btclog"
	"github.com/go-playground/validator/v10"
	"github.com/inscription-c/custody/constants"
	"github.com/inscription-c/custody/errs"
	"github.com/inscription-c/custody/internal/log"
	"github.com/inscription-c/custody/internal/metrics"
	"github.com/inscription-c/custody/internal/util"
	"github.com/inscription-c/custody/model"
	"github.com/inscription-c/custody/signer"
)

// maxCommitSignRounds bounds the re-signing loop of the exact commit fee
// mode.
const maxCommitSignRounds = 3

// UtxoProvider lists the unspent outputs of an address, newest first.
type UtxoProvider interface {
	Utxos(ctx context.Context, address string) (model.Utxos, error)
}

// Broadcaster relays a signed transaction to the network.
type Broadcaster interface {
	SendTransaction(ctx context.Context, tx *wire.MsgTx) (*chainhash.Hash, error)
}

// Builder assembles signed commit/reveal pairs for the tenant its signer is
// bound to.
type Builder struct {
	Params         *chaincfg.Params `validate:"required"`
	Signer         signer.Signer    `validate:"required"`
	Utxos          UtxoProvider     `validate:"required"`
	Logger         btclog.Logger    `validate:"required"`
	ExactCommitFee bool
}

type BuilderOption func(*Builder)

func WithParams(params *chaincfg.Params) BuilderOption {
	return func(b *Builder) {
		b.Params = params
	}
}

func WithSigner(s signer.Signer) BuilderOption {
	return func(b *Builder) {
		b.Signer = s
	}
}

func WithUtxoProvider(p UtxoProvider) BuilderOption {
	return func(b *Builder) {
		b.Utxos = p
	}
}

func WithLogger(logger btclog.Logger) BuilderOption {
	return func(b *Builder) {
		b.Logger = logger
	}
}

// WithExactCommitFee re-prices the commit from its signed size instead of
// the per-input allowance.
func WithExactCommitFee() BuilderOption {
	return func(b *Builder) {
		b.ExactCommitFee = true
	}
}

func NewBuilder(opts ...BuilderOption) (*Builder, error) {
	b := &Builder{
		Params: &chaincfg.MainNetParams,
		Logger: log.Insc,
	}
	for _, opt := range opts {
		opt(b)
	}
	if err := validator.New().Struct(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Request describes one inscription.
type Request struct {
	Inscription *Inscription
	// Destination receives the reveal output. Empty means the funding
	// address itself.
	Destination string
	// FeeRate in sat/vB, zero means constants.DefaultFeeRate.
	FeeRate int64
	// Path is the key path below the tenant.
	Path [][]byte
}

// Result holds a fully signed commit/reveal pair.
type Result struct {
	CommitTx       *wire.MsgTx
	RevealTx       *wire.MsgTx
	CommitFee      btcutil.Amount
	RevealFee      btcutil.Amount
	Total          btcutil.Amount
	FundingAddress string
	Destination    string
	RevealScript   []byte
	SpendInfo      *TaprootSpendInfo
}

// Build funds a taproot output committing to the inscription from every
// utxo of the tenant's legacy address, and spends it through the script
// path into the destination.
func (b *Builder) Build(ctx context.Context, req *Request) (*Result, error) {
	if req == nil || req.Inscription == nil {
		return nil, errs.Malformed("empty inscription request")
	}
	feeRate := req.FeeRate
	if feeRate == 0 {
		feeRate = constants.DefaultFeeRate
	}
	if feeRate < 0 {
		return nil, errs.Malformed("negative fee rate %d", feeRate)
	}

	key, err := b.publicKey(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	pubKey := key.SerializeCompressed()
	fundingAddress := util.P2PKHAddress(b.Params, pubKey)

	destination := req.Destination
	if destination == "" {
		destination = fundingAddress
	}
	destScript, err := util.AddressScript(destination, b.Params)
	if err != nil {
		return nil, err
	}

	revealScript, err := req.Inscription.RevealScript(schnorr.SerializePubKey(key))
	if err != nil {
		return nil, err
	}
	spend, err := NewTaprootSpendInfo(revealScript, b.Params)
	if err != nil {
		return nil, err
	}

	utxos, err := b.Utxos.Utxos(ctx, fundingAddress)
	if err != nil {
		return nil, errs.External("utxos", err)
	}
	if len(utxos) == 0 {
		return nil, fmt.Errorf("%w: no utxos at %s", errs.ErrInsufficientFunds, fundingAddress)
	}
	selected := utxos.OldestFirst()
	total := selected.Total()

	commitTx := newCommitTx(selected, spend.PkScript)
	commitFee := estimateCommitFee(commitTx, feeRate)
	revealFee := estimateRevealFee(destScript, spend, feeRate)
	if _, err := revealValue(total, commitFee, revealFee, destScript); err != nil {
		return nil, err
	}
	commitTx.TxOut[0].Value = int64(total - commitFee)

	if b.ExactCommitFee {
		commitFee, err = b.signCommitExact(ctx, req.Path, commitTx, pubKey, fundingAddress, total, feeRate)
	} else {
		err = signer.SignP2PKH(ctx, b.Signer, commitTx, pubKey, fundingAddress, b.Params, req.Path)
	}
	if err != nil {
		return nil, err
	}

	value, err := revealValue(total, commitFee, revealFee, destScript)
	if err != nil {
		return nil, err
	}
	vout, err := findVout(commitTx, spend.PkScript)
	if err != nil {
		return nil, err
	}
	revealTx := newRevealTx(wire.OutPoint{Hash: commitTx.TxHash(), Index: vout}, destScript, value)
	if err := b.signReveal(ctx, req.Path, revealTx, commitTx.TxOut[vout], spend); err != nil {
		return nil, err
	}

	metrics.Inscriptions.WithLabelValues("built").Inc()
	b.Logger.Infof("built commit %s (fee %d) and reveal %s (fee %d) for %s",
		commitTx.TxHash(), commitFee, revealTx.TxHash(), revealFee, fundingAddress)

	return &Result{
		CommitTx:       commitTx,
		RevealTx:       revealTx,
		CommitFee:      commitFee,
		RevealFee:      revealFee,
		Total:          total,
		FundingAddress: fundingAddress,
		Destination:    destination,
		RevealScript:   revealScript,
		SpendInfo:      spend,
	}, nil
}

func (b *Builder) publicKey(ctx context.Context, path [][]byte) (*btcec.PublicKey, error) {
	pubKey, err := b.Signer.PublicKey(ctx, path)
	if err != nil {
		return nil, errs.External("public_key", err)
	}
	key, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return nil, errs.External("public_key", err)
	}
	return key, nil
}

// signCommitExact signs the commit, then re-prices it from its signed size
// and signs again until the fee covers the size. Signature lengths vary by
// a byte, so a stable fee usually takes two rounds.
func (b *Builder) signCommitExact(
	ctx context.Context,
	path [][]byte,
	tx *wire.MsgTx,
	pubKey []byte,
	address string,
	total btcutil.Amount,
	feeRate int64,
) (btcutil.Amount, error) {
	fee := total - btcutil.Amount(tx.TxOut[0].Value)
	for round := 0; round < maxCommitSignRounds; round++ {
		if err := signer.SignP2PKH(ctx, b.Signer, tx, pubKey, address, b.Params, path); err != nil {
			return 0, err
		}
		needed := btcutil.Amount(feeRate * virtualSize(tx))
		if needed == fee || (needed < fee && round > 0) {
			return fee, nil
		}
		fee = needed
		tx.TxOut[0].Value = int64(total - fee)
	}

	for _, in := range tx.TxIn {
		in.SignatureScript = nil
	}
	fee = maxCommitFee(tx, feeRate)
	b.Logger.Debugf("commit fee did not settle, using upper bound %d", fee)
	tx.TxOut[0].Value = int64(total - fee)
	if err := signer.SignP2PKH(ctx, b.Signer, tx, pubKey, address, b.Params, path); err != nil {
		return 0, err
	}
	return fee, nil
}

// signReveal signs the script path spend of the commit output prevOut and
// installs the witness <sig> <script> <control block>.
func (b *Builder) signReveal(
	ctx context.Context,
	path [][]byte,
	tx *wire.MsgTx,
	prevOut *wire.TxOut,
	spend *TaprootSpendInfo,
) error {
	fetcher := txscript.NewCannedPrevOutputFetcher(prevOut.PkScript, prevOut.Value)
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)
	hash, err := txscript.CalcTapscriptSignaturehash(
		sigHashes, txscript.SigHashDefault, tx, 0, fetcher, spend.Leaf,
	)
	if err != nil {
		return err
	}
	sig, err := b.Signer.SignSchnorr(ctx, path, hash)
	if err != nil {
		return errs.External("sign_with_schnorr", err)
	}
	if len(sig) != schnorr.SignatureSize {
		return errs.External("sign_with_schnorr",
			errors.New("signature is not 64 bytes"))
	}
	tx.TxIn[0].Witness = wire.TxWitness{sig, spend.Leaf.Script, spend.ControlBlock}
	return nil
}
