package tables

import (
	"time"
)

type InscribeRecord struct {
	Id             uint64    `gorm:"column:id;primary_key;AUTO_INCREMENT;NOT NULL"`
	FundingAddress string    `gorm:"column:funding_address;type:varchar(255);index:idx_funding_address;default:'';NOT NULL"`
	Destination    string    `gorm:"column:destination;type:varchar(255);default:'';NOT NULL"`
	ContentType    string    `gorm:"column:content_type;type:varchar(255);default:'';NOT NULL"`
	CommitTxid     string    `gorm:"column:commit_txid;type:varchar(64);index:idx_commit_txid;default:'';NOT NULL"`
	RevealTxid     string    `gorm:"column:reveal_txid;type:varchar(64);uniqueIndex:uk_reveal_txid;default:'';NOT NULL"`
	CommitFee      int64     `gorm:"column:commit_fee;type:bigint;default:0;NOT NULL"`
	RevealFee      int64     `gorm:"column:reveal_fee;type:bigint;default:0;NOT NULL"`
	FeeRate        int64     `gorm:"column:fee_rate;type:bigint;default:0;NOT NULL"`
	Broadcast      bool      `gorm:"column:broadcast;type:tinyint(1);default:0;NOT NULL"`
	CreatedAt      time.Time `gorm:"column:created_at;type:timestamp;default:CURRENT_TIMESTAMP;NOT NULL"`
	UpdatedAt      time.Time `gorm:"column:updated_at;type:timestamp;default:CURRENT_TIMESTAMP;NOT NULL"`
}

func (r *InscribeRecord) TableName() string {
	return "inscribe_record"
}
