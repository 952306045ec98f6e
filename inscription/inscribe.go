package inscription

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/inscription-c/custody/errs"
	"github.com/inscription-c/custody/internal/metrics"
	"github.com/inscription-c/custody/internal/util"
	"github.com/inscription-c/custody/model"
)

// Recorder keeps the history of inscribe calls.
type Recorder interface {
	SaveInscribe(ctx context.Context, record *model.Inscribe) error
}

// Inscriber builds commit/reveal pairs and broadcasts them, commit first.
type Inscriber struct {
	builder     *Builder
	broadcaster Broadcaster
	recorder    Recorder
	dryRun      bool
}

type InscriberOption func(*Inscriber)

func WithBroadcaster(b Broadcaster) InscriberOption {
	return func(i *Inscriber) {
		i.broadcaster = b
	}
}

func WithRecorder(r Recorder) InscriberOption {
	return func(i *Inscriber) {
		i.recorder = r
	}
}

// WithDryRun builds and signs without broadcasting.
func WithDryRun(dryRun bool) InscriberOption {
	return func(i *Inscriber) {
		i.dryRun = dryRun
	}
}

func NewInscriber(builder *Builder, opts ...InscriberOption) (*Inscriber, error) {
	i := &Inscriber{builder: builder}
	for _, opt := range opts {
		opt(i)
	}
	if i.builder == nil {
		return nil, errs.Malformed("inscriber needs a builder")
	}
	if i.broadcaster == nil && !i.dryRun {
		return nil, errs.Malformed("inscriber needs a broadcaster unless dry run")
	}
	return i, nil
}

// Inscribe builds the pair and broadcasts the commit, then the reveal. A
// failed commit broadcast leaves nothing on chain. A failed reveal
// broadcast leaves the commit output to be revealed again from the
// returned result.
func (i *Inscriber) Inscribe(ctx context.Context, req *Request) (*Result, error) {
	res, err := i.builder.Build(ctx, req)
	if err != nil {
		return nil, err
	}
	record := &model.Inscribe{
		FundingAddress: res.FundingAddress,
		Destination:    res.Destination,
		ContentType:    string(req.Inscription.ContentType),
		CommitTxid:     res.CommitTx.TxHash().String(),
		RevealTxid:     res.RevealTx.TxHash().String(),
		CommitFee:      res.CommitFee,
		RevealFee:      res.RevealFee,
		FeeRate:        req.FeeRate,
	}

	if i.dryRun {
		i.builder.Logger.Info("dry run success")
		i.builder.Logger.Infof("commitTx: %s", record.CommitTxid)
		i.builder.Logger.Infof("revealTx: %s", record.RevealTxid)
		return res, i.save(ctx, record)
	}

	commitHash, err := i.send(ctx, res, true)
	if err != nil {
		return nil, err
	}
	i.builder.Logger.Infof("commitTxSendSuccess %s", commitHash)

	revealHash, err := i.send(ctx, res, false)
	if err != nil {
		return res, err
	}
	i.builder.Logger.Infof("revealTxSendSuccess %s", revealHash)

	metrics.Inscriptions.WithLabelValues("broadcast").Inc()
	metrics.FeePaid.WithLabelValues("commit").Add(float64(res.CommitFee))
	metrics.FeePaid.WithLabelValues("reveal").Add(float64(res.RevealFee))

	record.Broadcast = true
	return res, i.save(ctx, record)
}

func (i *Inscriber) send(ctx context.Context, res *Result, commit bool) (*chainhash.Hash, error) {
	tx := res.RevealTx
	if commit {
		tx = res.CommitTx
	}
	hash, err := i.broadcaster.SendTransaction(ctx, tx)
	if err != nil {
		return nil, errs.External("send_transaction", err)
	}
	return hash, nil
}

func (i *Inscriber) save(ctx context.Context, record *model.Inscribe) error {
	if i.recorder == nil {
		return nil
	}
	if err := i.recorder.SaveInscribe(ctx, record); err != nil {
		i.builder.Logger.Errorf("save inscribe record: %v", err)
		return err
	}
	return nil
}

// Address returns the legacy funding address of the key at path.
func (b *Builder) Address(ctx context.Context, path [][]byte) (string, error) {
	key, err := b.publicKey(ctx, path)
	if err != nil {
		return "", err
	}
	return util.P2PKHAddress(b.Params, key.SerializeCompressed()), nil
}

// Balance sums the utxos of the funding address of the key at path.
func (b *Builder) Balance(ctx context.Context, path [][]byte) (btcutil.Amount, error) {
	address, err := b.Address(ctx, path)
	if err != nil {
		return 0, err
	}
	utxos, err := b.Utxos.Utxos(ctx, address)
	if err != nil {
		return 0, errs.External("utxos", err)
	}
	return utxos.Total(), nil
}
