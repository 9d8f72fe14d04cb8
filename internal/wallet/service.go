package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/swiftbasket/swiftbasket-backend/pkg/db/models"
	"github.com/swiftbasket/swiftbasket-backend/pkg/enums"
	pkgerrors "github.com/swiftbasket/swiftbasket-backend/pkg/errors"
)

const referencePrefix = "WLT"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// BalanceCheck is the read-only answer to "can this customer pay amount".
type BalanceCheck struct {
	Sufficient bool            `json:"sufficient"`
	Balance    decimal.Decimal `json:"balance"`
}

// Receipt is returned for every successful financial primitive.
type Receipt struct {
	Reference  string          `json:"reference"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// Service is the wallet ledger. Debit/credit/top-up each append exactly one
// immutable entry and adjust the balance atomically per customer.
type Service interface {
	CheckBalance(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) (*BalanceCheck, error)
	Debit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID, orderNumber string) (*Receipt, error)
	Credit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID, orderNumber, reason string) (*Receipt, error)
	TopUp(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, paymentReference, method string) (*Receipt, error)
	Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
}

type service struct {
	tx   txRunner
	repo Repository
}

// NewService wires the wallet ledger with a transaction runner and repository.
func NewService(tx txRunner, repo Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) CheckBalance(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) (*BalanceCheck, error) {
	account, err := s.loadAccount(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &BalanceCheck{
		Sufficient: account.Balance.GreaterThanOrEqual(amount),
		Balance:    account.Balance,
	}, nil
}

func (s *service) Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	account, err := s.loadAccount(ctx, customerID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

func (s *service) Debit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID, orderNumber string) (*Receipt, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var receipt *Receipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		debited, err := repo.DebitBalance(ctx, customerID, amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit wallet balance")
		}
		if !debited {
			account, err := repo.FindAccount(ctx, customerID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return walletNotFound(customerID)
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet account")
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient wallet balance").
				WithDetails(map[string]any{
					"reason":    "insufficient_balance",
					"available": account.Balance,
					"required":  amount,
				})
		}

		entry := &models.WalletEntry{
			ID:          uuid.New(),
			CustomerID:  customerID,
			Amount:      amount,
			Type:        enums.WalletEntryTypeDebit,
			Description: fmt.Sprintf("Payment for order %s", orderNumber),
			Status:      enums.WalletEntryStatusCompleted,
			Reference:   newReference(),
			OrderID:     &orderID,
			OrderNumber: &orderNumber,
		}
		if err := repo.CreateEntry(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePayment, err, "record wallet debit entry")
		}

		account, err := repo.FindAccount(ctx, customerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload wallet account")
		}
		receipt = &Receipt{Reference: entry.Reference, NewBalance: account.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *service) Credit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID, orderNumber, reason string) (*Receipt, error) {
	description := strings.TrimSpace(reason)
	if description == "" {
		description = fmt.Sprintf("Refund for order %s", orderNumber)
	}
	return s.credit(ctx, customerID, amount, description, &orderID, &orderNumber)
}

func (s *service) TopUp(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, paymentReference, method string) (*Receipt, error) {
	description := fmt.Sprintf("Wallet top-up via %s (%s)", method, paymentReference)
	return s.credit(ctx, customerID, amount, description, nil, nil)
}

// credit appends a credit entry and raises the balance. Credits are not
// balance-checked; they fail only when the account does not exist.
func (s *service) credit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, description string, orderID *uuid.UUID, orderNumber *string) (*Receipt, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var receipt *Receipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		credited, err := repo.CreditBalance(ctx, customerID, amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit wallet balance")
		}
		if !credited {
			return walletNotFound(customerID)
		}

		entry := &models.WalletEntry{
			ID:          uuid.New(),
			CustomerID:  customerID,
			Amount:      amount,
			Type:        enums.WalletEntryTypeCredit,
			Description: description,
			Status:      enums.WalletEntryStatusCompleted,
			Reference:   newReference(),
			OrderID:     orderID,
			OrderNumber: orderNumber,
		}
		if err := repo.CreateEntry(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record wallet credit entry")
		}

		account, err := repo.FindAccount(ctx, customerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload wallet account")
		}
		receipt = &Receipt{Reference: entry.Reference, NewBalance: account.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *service) loadAccount(ctx context.Context, customerID uuid.UUID) (*models.WalletAccount, error) {
	account, err := s.repo.FindAccount(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, walletNotFound(customerID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet account")
	}
	return account, nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	return nil
}

func walletNotFound(customerID uuid.UUID) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "wallet account not found").
		WithDetails(map[string]any{"customer_id": customerID})
}

// newReference builds a globally unique audit token: base-36 timestamp plus a
// short random suffix, prefixed for readability.
func newReference() string {
	ts := strconv.FormatInt(time.Now().UnixNano(), 36)
	suffix := strconv.FormatInt(int64(rand.Intn(36*36*36*36)), 36)
	return strings.ToUpper(fmt.Sprintf("%s-%s-%s", referencePrefix, ts, suffix))
}
