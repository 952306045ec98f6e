package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/gogf/gf/v2/util/gconv"
	"github.com/inscription-c/custody/model"
)

const maxConfirmations = 9999999

func (c *Client) BlockCount(ctx context.Context) (int64, error) {
	var count int64
	if err := c.SendRequest(ctx, "getblockcount", &count); err != nil {
		return 0, err
	}
	return count, nil
}

func (c *Client) ListUnspent(ctx context.Context, addresses ...string) ([]ListUnspentResp, error) {
	resp := make([]ListUnspentResp, 0)
	if err := c.SendRequest(ctx, "listunspent", &resp, 0, maxConfirmations, addresses); err != nil {
		return nil, err
	}
	return resp, nil
}

// Utxos lists the spendable outputs of address, newest first. The node
// wallet must watch the address.
func (c *Client) Utxos(ctx context.Context, address string) (model.Utxos, error) {
	unspent, err := c.ListUnspent(ctx, address)
	if err != nil {
		return nil, err
	}
	height, err := c.BlockCount(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(unspent, func(i, j int) bool {
		return unspent[i].Confirmations < unspent[j].Confirmations
	})

	utxos := make(model.Utxos, 0, len(unspent))
	for _, u := range unspent {
		hash, err := chainhash.NewHashFromStr(u.Txid)
		if err != nil {
			return nil, err
		}
		utxo := model.Utxo{
			OutPoint: *wire.NewOutPoint(hash, u.Vout),
			Value:    u.Amount.Sat(),
		}
		if u.Confirmations > 0 {
			utxo.Height = gconv.Uint32(height - u.Confirmations + 1)
		}
		utxos = append(utxos, utxo)
	}
	return utxos, nil
}

// SendTransaction relays a signed transaction through sendrawtransaction.
func (c *Client) SendTransaction(ctx context.Context, tx *wire.MsgTx) (*chainhash.Hash, error) {
	buf := bytes.NewBuffer(make([]byte, 0, tx.SerializeSize()))
	if err := tx.Serialize(buf); err != nil {
		return nil, err
	}
	var txid string
	if err := c.SendRequest(ctx, "sendrawtransaction", &txid, hex.EncodeToString(buf.Bytes())); err != nil {
		return nil, err
	}
	return chainhash.NewHashFromStr(txid)
}
