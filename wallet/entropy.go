package wallet

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/inscription-c/custody/errs"
)

// EntropySource produces the randomness the master seed is made from.
type EntropySource interface {
	Random(ctx context.Context) ([]byte, error)
}

// SystemEntropy draws 32 bytes from the operating system generator.
type SystemEntropy struct{}

func (SystemEntropy) Random(_ context.Context) ([]byte, error) {
	return hdkeychain.GenerateSeed(hdkeychain.RecommendedSeedLen)
}

// EntropyFunc adapts a function to EntropySource.
type EntropyFunc func(ctx context.Context) ([]byte, error)

func (f EntropyFunc) Random(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// expandEntropy turns entropy into a master seed: 32 bytes are repeated
// twice, longer input is cut to the seed size.
func expandEntropy(entropy []byte) ([SeedSize]byte, error) {
	var seed [SeedSize]byte
	switch {
	case len(entropy) >= SeedSize:
		copy(seed[:], entropy[:SeedSize])
	case len(entropy) >= 32:
		copy(seed[:32], entropy[:32])
		copy(seed[32:], entropy[:32])
	default:
		return seed, errs.External("raw_rand",
			fmt.Errorf("entropy source returned %d bytes, need at least 32", len(entropy)))
	}
	return seed, nil
}
