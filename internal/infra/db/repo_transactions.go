package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Record upserts the journal row for a transaction. Later observations of
// the same txnId replace the state, so the row always reflects the most
// recent thing the server saw.
func (r *TransactionRepository) Record(ctx context.Context, txn domain.Transaction) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if txn.TxnID == "" {
		return errors.New("txn_id is required")
	}
	now := time.Now().UTC()
	createdAt := txn.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	model := TransactionModel{
		TxnID:     txn.TxnID,
		Kind:      string(txn.Kind),
		State:     string(txn.State),
		ExpiresAt: txn.ExpiresAt,
		CreatedAt: createdAt.UTC(),
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "txn_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "expires_at", "updated_at"}),
	}).Create(&model).Error
}

func (r *TransactionRepository) Get(ctx context.Context, txnID string) (domain.Transaction, error) {
	if r.db == nil {
		return domain.Transaction{}, errDBUnavailable
	}
	var model TransactionModel
	err := r.db.WithContext(ctx).Where("txn_id = ?", txnID).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Transaction{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		TxnID:     model.TxnID,
		Kind:      domain.TransactionKind(model.Kind),
		State:     domain.TransactionState(model.State),
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt.UTC(),
	}, nil
}
