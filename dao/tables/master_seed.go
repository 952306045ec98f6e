package tables

import (
	"time"
)

// MasterSeed holds at most one row per key name.
type MasterSeed struct {
	Id        uint64    `gorm:"column:id;primary_key;AUTO_INCREMENT;NOT NULL"`
	KeyName   string    `gorm:"column:key_name;type:varchar(64);uniqueIndex:uk_key_name;NOT NULL"`
	Seed      []byte    `gorm:"column:seed;type:binary(64);NOT NULL"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:CURRENT_TIMESTAMP;NOT NULL"`
}

func (m *MasterSeed) TableName() string {
	return "master_seed"
}
