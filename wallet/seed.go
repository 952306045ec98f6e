package wallet

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcwallet/walletdb"
	_ "github.com/btcsuite/btcwallet/walletdb/bdb"
	"github.com/inscription-c/custody/constants"
)

// SeedSize is the length of the master seed.
const SeedSize = 64

// SeedStore persists the master seed. A store holding no seed returns the
// zero seed.
type SeedStore interface {
	LoadSeed() ([SeedSize]byte, error)
	StoreSeed(seed [SeedSize]byte) error
}

var seedKey = []byte("seed")

// DBSeedStore keeps the seed in a bolt backed walletdb.
type DBSeedStore struct {
	db     walletdb.DB
	bucket []byte
}

// OpenDBSeedStore opens the seed database at dbPath, creating it when
// missing.
func OpenDBSeedStore(dbPath string, timeout time.Duration) (*DBSeedStore, error) {
	var (
		db  walletdb.DB
		err error
	)
	if _, statErr := os.Stat(dbPath); statErr == nil {
		db, err = walletdb.Open("bdb", dbPath, true, timeout)
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
			return nil, err
		}
		db, err = walletdb.Create("bdb", dbPath, true, timeout)
	}
	if err != nil {
		return nil, err
	}

	s := &DBSeedStore{db: db, bucket: []byte(constants.SeedBucket)}
	err = walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		if tx.ReadWriteBucket(s.bucket) != nil {
			return nil
		}
		_, err := tx.CreateTopLevelBucket(s.bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *DBSeedStore) LoadSeed() ([SeedSize]byte, error) {
	var seed [SeedSize]byte
	err := walletdb.View(s.db, func(tx walletdb.ReadTx) error {
		v := tx.ReadBucket(s.bucket).Get(seedKey)
		if v == nil {
			return nil
		}
		if len(v) != SeedSize {
			return errors.New("stored seed has wrong length")
		}
		copy(seed[:], v)
		return nil
	})
	return seed, err
}

func (s *DBSeedStore) StoreSeed(seed [SeedSize]byte) error {
	return walletdb.Update(s.db, func(tx walletdb.ReadWriteTx) error {
		return tx.ReadWriteBucket(s.bucket).Put(seedKey, seed[:])
	})
}

func (s *DBSeedStore) Close() error {
	return s.db.Close()
}

// MemSeedStore keeps the seed in memory only.
type MemSeedStore struct {
	seed [SeedSize]byte
}

func (m *MemSeedStore) LoadSeed() ([SeedSize]byte, error) {
	return m.seed, nil
}

func (m *MemSeedStore) StoreSeed(seed [SeedSize]byte) error {
	m.seed = seed
	return nil
}
