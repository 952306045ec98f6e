// Package wallet is the key custody service: it owns the master seed and
// derives per-tenant signing keys from it.
package wallet

import (
	"context"
	"errors"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btclog"
	"github.com/inscription-c/custody/errs"
	"github.com/inscription-c/custody/internal/log"
	"github.com/inscription-c/custody/internal/metrics"
	"github.com/inscription-c/custody/signer"
)

// Service derives tenant keys from a master seed that is set exactly once.
type Service struct {
	mu           sync.Mutex
	seed         [SeedSize]byte
	master       *btcec.PrivateKey
	initializing bool

	params  *chaincfg.Params
	store   SeedStore
	entropy EntropySource
	logger  btclog.Logger
}

type ServiceOption func(*Service)

func WithParams(params *chaincfg.Params) ServiceOption {
	return func(s *Service) {
		s.params = params
	}
}

func WithSeedStore(store SeedStore) ServiceOption {
	return func(s *Service) {
		s.store = store
	}
}

func WithEntropySource(entropy EntropySource) ServiceOption {
	return func(s *Service) {
		s.entropy = entropy
	}
}

func WithLogger(logger btclog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService loads the seed from the store. A store without a seed leaves
// the service uninitialized.
func NewService(opts ...ServiceOption) (*Service, error) {
	s := &Service{
		params:  &chaincfg.MainNetParams,
		store:   &MemSeedStore{},
		entropy: SystemEntropy{},
		logger:  log.Keys,
	}
	for _, opt := range opts {
		opt(s)
	}

	seed, err := s.store.LoadSeed()
	if err != nil {
		return nil, err
	}
	if seed != ([SeedSize]byte{}) {
		master, err := s.masterKey(seed)
		if err != nil {
			return nil, err
		}
		s.seed, s.master = seed, master
		s.logger.Info("master seed loaded")
	}
	return s, nil
}

func (s *Service) masterKey(seed [SeedSize]byte) (*btcec.PrivateKey, error) {
	extended, err := hdkeychain.NewMaster(seed[:], s.params)
	if err != nil {
		return nil, err
	}
	return extended.ECPrivKey()
}

// Initialized reports whether the master seed is set.
func (s *Service) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.master != nil
}

// Initialize creates and persists the master seed. Only one call ever
// succeeds: later calls fail with ErrAlreadyInitialized, and calls made
// while another one waits on the entropy source fail with
// ErrAlreadyInitializing.
func (s *Service) Initialize(ctx context.Context) (err error) {
	defer func() {
		metrics.SeedInitializations.WithLabelValues(initResult(err)).Inc()
	}()

	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	entropy, err := s.entropy.Random(ctx)
	if err != nil {
		return errs.External("raw_rand", err)
	}
	seed, err := expandEntropy(entropy)
	if err != nil {
		return err
	}
	master, err := s.masterKey(seed)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.StoreSeed(seed); err != nil {
		return err
	}
	s.seed, s.master = seed, master
	s.logger.Info("master seed initialized")
	return nil
}

func (s *Service) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.master != nil {
		return errs.ErrAlreadyInitialized
	}
	if s.initializing {
		return errs.ErrAlreadyInitializing
	}
	s.initializing = true
	return nil
}

func (s *Service) release() {
	s.mu.Lock()
	s.initializing = false
	s.mu.Unlock()
}

func initResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrAlreadyInitialized):
		return "already_initialized"
	case errors.Is(err, errs.ErrAlreadyInitializing):
		return "initializing"
	}
	return "error"
}

func (s *Service) masterPrivKey() (*btcec.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.master == nil {
		return nil, errs.ErrNotInitialized
	}
	return s.master, nil
}

// PublicKey returns the compressed public key and chain code of
// [tenant] + subPath.
func (s *Service) PublicKey(tenant []byte, subPath [][]byte) ([]byte, []byte, error) {
	master, err := s.masterPrivKey()
	if err != nil {
		return nil, nil, err
	}
	key, chainCode, _ := NewDerivationPath(tenant, subPath).derivePublic(master.PubKey(), masterChainCode)
	return key.SerializeCompressed(), chainCode[:], nil
}

func (s *Service) derivePrivate(tenant []byte, subPath [][]byte) (*btcec.PrivateKey, error) {
	master, err := s.masterPrivKey()
	if err != nil {
		return nil, err
	}
	key, _, err := NewDerivationPath(tenant, subPath).derivePrivate(master, masterChainCode)
	return key, err
}

// SignSchnorr signs a 32-byte digest with the key of [tenant] + subPath.
func (s *Service) SignSchnorr(tenant []byte, subPath [][]byte, digest []byte) ([]byte, error) {
	if err := signer.CheckDigest(digest); err != nil {
		return nil, err
	}
	key, err := s.derivePrivate(tenant, subPath)
	if err != nil {
		return nil, err
	}
	sig, err := signer.SignSchnorr(key, digest)
	if err != nil {
		return nil, err
	}
	metrics.Signatures.WithLabelValues("schnorr").Inc()
	return sig, nil
}

// SignECDSA returns the compact r||s signature of a 32-byte digest with
// the key of [tenant] + subPath.
func (s *Service) SignECDSA(tenant []byte, subPath [][]byte, digest []byte) ([]byte, error) {
	if err := signer.CheckDigest(digest); err != nil {
		return nil, err
	}
	key, err := s.derivePrivate(tenant, subPath)
	if err != nil {
		return nil, err
	}
	sig, err := signer.SignECDSA(key, digest)
	if err != nil {
		return nil, err
	}
	metrics.Signatures.WithLabelValues("ecdsa").Inc()
	return sig, nil
}
