package dao

import (
	"errors"

	"github.com/inscription-c/custody/dao/tables"
	"gorm.io/gorm"
)

const seedSize = 64

// LoadSeed returns the master seed of the configured key name, or the zero
// seed when none is stored.
func (d *DB) LoadSeed() (seed [seedSize]byte, err error) {
	row := &tables.MasterSeed{}
	err = d.DB.Where("key_name = ?", d.keyName).First(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return seed, nil
	}
	if err != nil {
		return seed, err
	}
	if len(row.Seed) != seedSize {
		return seed, errors.New("stored seed has wrong length")
	}
	copy(seed[:], row.Seed)
	return seed, nil
}

// StoreSeed inserts the master seed. The unique key name makes a second
// insert fail instead of replacing the seed.
func (d *DB) StoreSeed(seed [seedSize]byte) error {
	return d.DB.Create(&tables.MasterSeed{
		KeyName: d.keyName,
		Seed:    seed[:],
	}).Error
}
