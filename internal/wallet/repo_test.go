package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftbasket/swiftbasket-backend/pkg/db/models"
	"github.com/swiftbasket/swiftbasket-backend/pkg/enums"
)

func TestDebitBalanceGuard(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	customer := uuid.New()

	seedAccount(t, db, customer, "100.00")

	ok, err := repo.DebitBalance(ctx, customer, decimal.RequireFromString("60.00"))
	require.NoError(t, err)
	assert.True(t, ok)

	// Remaining 40.00 cannot cover another 60.00.
	ok, err = repo.DebitBalance(ctx, customer, decimal.RequireFromString("60.00"))
	require.NoError(t, err)
	assert.False(t, ok)

	account, err := repo.FindAccount(ctx, customer)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("40.00")),
		"balance should be 40.00, got %s", account.Balance)
}

func TestDebitBalanceMissingAccount(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))

	ok, err := repo.DebitBalance(context.Background(), uuid.New(), decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreditBalance(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	customer := uuid.New()

	seedAccount(t, db, customer, "0.00")

	ok, err := repo.CreditBalance(ctx, customer, decimal.RequireFromString("15.50"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CreditBalance(ctx, uuid.New(), decimal.RequireFromString("15.50"))
	require.NoError(t, err)
	assert.False(t, ok, "crediting an unknown account must not report success")

	account, err := repo.FindAccount(ctx, customer)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("15.50")))
}

func TestListEntriesOrdered(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	customer := uuid.New()

	for _, ref := range []string{"WLT-A", "WLT-B", "WLT-C"} {
		entry := &models.WalletEntry{
			ID:          uuid.New(),
			CustomerID:  customer,
			Amount:      decimal.RequireFromString("5.00"),
			Type:        enums.WalletEntryTypeCredit,
			Description: "seed",
			Status:      enums.WalletEntryStatusCompleted,
			Reference:   ref,
		}
		require.NoError(t, repo.CreateEntry(ctx, entry))
	}

	entries, err := repo.ListEntries(ctx, customer)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Entries for other customers stay invisible.
	other, err := repo.ListEntries(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}
