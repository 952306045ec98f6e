package client

import (
	"github.com/btcsuite/btcd/btcjson"
	"github.com/inscription-c/custody/model"
)

type Response struct {
	Jsonrpc btcjson.RPCVersion `json:"jsonrpc"`
	Result  interface{}        `json:"result"`
	Error   *btcjson.RPCError  `json:"error"`
	ID      *interface{}       `json:"id"`
}

type OutPoint struct {
	Txid string `json:"txid"`
	Vout uint32 `json:"vout"`
}

type ListUnspentResp struct {
	OutPoint
	Address       string       `json:"address"`
	ScriptPubKey  string       `json:"scriptPubKey"`
	Amount        model.Amount `json:"amount"`
	Confirmations int64        `json:"confirmations"`
	Spendable     bool         `json:"spendable"`
}
