package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     interface{}       `json:"id"`
}

const (
	newestTxid = "1111111111111111111111111111111111111111111111111111111111111111"
	oldestTxid = "2222222222222222222222222222222222222222222222222222222222222222"
)

// fakeNode answers the few json-rpc methods the client uses.
func fakeNode(t *testing.T, sent *[]byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rpc" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		req := &rpcRequest{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(req))

		var result interface{}
		switch req.Method {
		case "getblockcount":
			result = 200
		case "listunspent":
			result = []ListUnspentResp{
				{OutPoint: OutPoint{Txid: oldestTxid, Vout: 1}, Amount: 0.0005, Confirmations: 5},
				{OutPoint: OutPoint{Txid: newestTxid, Vout: 0}, Amount: 0.001, Confirmations: 0},
			}
		case "sendrawtransaction":
			var rawHex string
			require.NoError(t, json.Unmarshal(req.Params[0], &rawHex))
			raw, err := hex.DecodeString(rawHex)
			require.NoError(t, err)
			*sent = raw
			tx := wire.NewMsgTx(2)
			require.NoError(t, tx.Deserialize(bytes.NewReader(raw)))
			result = tx.TxHash().String()
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"result": nil,
				"error":  btcjson.NewRPCError(btcjson.ErrRPCMethodNotFound.Code, "Method not found"),
				"id":     req.ID,
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"result": result,
			"error":  nil,
			"id":     req.ID,
		})
	}))
}

func newTestClient(t *testing.T, url string) *Client {
	c, err := NewClient(WithUrl(url), WithUser("rpc"), WithPassword("secret"))
	require.NoError(t, err)
	return c
}

func TestNewClientValidates(t *testing.T) {
	_, err := NewClient()
	require.Error(t, err)
	_, err = NewClient(WithUrl("not a url"))
	require.Error(t, err)
	_, err = NewClient(WithUrl("http://localhost:18443"), WithRPCCert("/does/not/exist.pem"))
	require.Error(t, err)
}

func TestUtxos(t *testing.T) {
	srv := fakeNode(t, nil)
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	count, err := c.BlockCount(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(200), count)

	utxos, err := c.Utxos(context.Background(), "mfWxJ45yp2SFn7UciZyNpvDKrzbhyfKrY8")
	require.NoError(t, err)
	require.Len(t, utxos, 2)

	// newest first, unconfirmed outputs carry no height
	require.Equal(t, newestTxid, utxos[0].OutPoint.Hash.String())
	require.Equal(t, uint32(0), utxos[0].OutPoint.Index)
	require.Equal(t, btcutil.Amount(100000), utxos[0].Value)
	require.Equal(t, uint32(0), utxos[0].Height)

	require.Equal(t, oldestTxid, utxos[1].OutPoint.Hash.String())
	require.Equal(t, uint32(1), utxos[1].OutPoint.Index)
	require.Equal(t, btcutil.Amount(50000), utxos[1].Value)
	require.Equal(t, uint32(196), utxos[1].Height)
}

func TestSendTransaction(t *testing.T) {
	var sent []byte
	srv := fakeNode(t, &sent)
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Hash: chainhash.Hash{0x01}}, []byte{0x51}, nil))
	tx.AddTxOut(wire.NewTxOut(1000, []byte{0x51}))

	hash, err := c.SendTransaction(context.Background(), tx)
	require.NoError(t, err)
	require.Equal(t, tx.TxHash(), *hash)

	buf := bytes.NewBuffer(nil)
	require.NoError(t, tx.Serialize(buf))
	require.Equal(t, buf.Bytes(), sent)
}

func TestSendRequestErrors(t *testing.T) {
	srv := fakeNode(t, nil)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	err := c.SendRequest(context.Background(), "getbestblockhash", nil)
	var rpcErr *btcjson.RPCError
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, btcjson.ErrRPCMethodNotFound.Code, rpcErr.Code)

	err = c.SendRequest(context.Background(), "nosuchmethod", nil)
	require.Error(t, err)

	unauthorized, err := NewClient(WithUrl(srv.URL), WithUser("rpc"), WithPassword("wrong"))
	require.NoError(t, err)
	_, err = unauthorized.BlockCount(context.Background())
	require.EqualError(t, err, "401 Unauthorized")
}
