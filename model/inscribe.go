package model

import (
	"github.com/btcsuite/btcd/btcutil"
)

// Inscribe is the outcome of one inscribe call, kept as history.
type Inscribe struct {
	FundingAddress string
	Destination    string
	ContentType    string
	CommitTxid     string
	RevealTxid     string
	CommitFee      btcutil.Amount
	RevealFee      btcutil.Amount
	FeeRate        int64
	// Broadcast is false for dry runs.
	Broadcast bool
}
