package dao

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/inscription-c/custody/dao/tables"
	"github.com/inscription-c/custody/model"
)

// SaveInscribe records one inscribe call.
func (d *DB) SaveInscribe(ctx context.Context, record *model.Inscribe) error {
	return d.DB.WithContext(ctx).Create(&tables.InscribeRecord{
		FundingAddress: record.FundingAddress,
		Destination:    record.Destination,
		ContentType:    record.ContentType,
		CommitTxid:     record.CommitTxid,
		RevealTxid:     record.RevealTxid,
		CommitFee:      int64(record.CommitFee),
		RevealFee:      int64(record.RevealFee),
		FeeRate:        record.FeeRate,
		Broadcast:      record.Broadcast,
	}).Error
}

// InscribeRecords lists the inscribe calls funded by address, newest first.
func (d *DB) InscribeRecords(ctx context.Context, fundingAddress string) ([]*model.Inscribe, error) {
	rows := make([]*tables.InscribeRecord, 0)
	err := d.DB.WithContext(ctx).
		Where("funding_address = ?", fundingAddress).
		Order("id desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	res := make([]*model.Inscribe, 0, len(rows))
	for _, row := range rows {
		res = append(res, &model.Inscribe{
			FundingAddress: row.FundingAddress,
			Destination:    row.Destination,
			ContentType:    row.ContentType,
			CommitTxid:     row.CommitTxid,
			RevealTxid:     row.RevealTxid,
			CommitFee:      btcutil.Amount(row.CommitFee),
			RevealFee:      btcutil.Amount(row.RevealFee),
			FeeRate:        row.FeeRate,
			Broadcast:      row.Broadcast,
		})
	}
	return res, nil
}
