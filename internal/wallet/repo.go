package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/swiftbasket/swiftbasket-backend/pkg/db/models"
)

// Repository manages persistence for wallet accounts and their entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAccount(ctx context.Context, customerID uuid.UUID) (*models.WalletAccount, error)
	DebitBalance(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) (bool, error)
	CreditBalance(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) (bool, error)
	CreateEntry(ctx context.Context, entry *models.WalletEntry) error
	ListEntries(ctx context.Context, customerID uuid.UUID) ([]models.WalletEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindAccount(ctx context.Context, customerID uuid.UUID) (*models.WalletAccount, error) {
	var account models.WalletAccount
	if err := r.db.WithContext(ctx).First(&account, "customer_id = ?", customerID).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// DebitBalance verifies and decrements the balance in one conditional UPDATE
// so concurrent debits against the same customer cannot both pass a stale
// balance check. It reports false when the guard did not match.
func (r *repository) DebitBalance(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.WalletAccount{}).
		Where("customer_id = ? AND balance >= ?", customerID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreditBalance(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.WalletAccount{}).
		Where("customer_id = ?", customerID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.WalletEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntries(ctx context.Context, customerID uuid.UUID) ([]models.WalletEntry, error) {
	var entries []models.WalletEntry
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
