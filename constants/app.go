package constants

import (
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
)

const (
	AppName = "custody"

	// ProtocolId is pushed right after OP_IF to mark an inscription envelope.
	ProtocolId = "ord"

	// MaxPushSize is the largest element a single script push may carry.
	MaxPushSize = 520

	OneBtc = 100_000_000

	// DefaultFeeRate in sat/vB.
	DefaultFeeRate = 10

	// LegacyInputSigOverhead approximates the script-sig bytes a signed
	// p2pkh input adds to an unsigned one.
	LegacyInputSigOverhead = 73

	// RevealSequence signals replaceability without enabling lock-time.
	RevealSequence = 0xfffffffd

	TxVersion = 2
)

const (
	KeyNameRegtest = "dfx_test_key"
	KeyNameDefault = "key_1"
)

const (
	DefaultDBName   = "custody"
	SeedDBFileName  = "seed.db"
	SeedBucket      = "masterseed"
	DefaultDBUser   = "root"
	DefaultDBAddr   = "127.0.0.1:3306"
	DefaultLogLevel = "info"
)

// DataDir is the default directory holding the seed database and logs of
// the given network.
func DataDir(network string) string {
	return btcutil.AppDataDir(filepath.Join(AppName, network), false)
}
