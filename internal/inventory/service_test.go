package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/swiftbasket/swiftbasket-backend/pkg/db/models"
	pkgerrors "github.com/swiftbasket/swiftbasket-backend/pkg/errors"
)

func TestReserveAndRestore(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	product := uuid.New()

	if err := db.Create(&models.InventoryItem{ProductID: product, CurrentStock: 5}).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	if err := svc.Reserve(ctx, product, 3); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if got := stockOf(t, svc, product); got != 2 {
		t.Fatalf("expected stock 2 after reserve, got %d", got)
	}

	if err := svc.Restore(ctx, product, 3); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := stockOf(t, svc, product); got != 5 {
		t.Fatalf("expected stock 5 after restore, got %d", got)
	}
}

func TestReserveInsufficientStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	product := uuid.New()

	if err := db.Create(&models.InventoryItem{ProductID: product, CurrentStock: 2}).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	err := svc.Reserve(ctx, product, 3)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["available"] != 2 || details["requested"] != 3 {
		t.Fatalf("unexpected details: %+v", details)
	}

	// Failed reserve must not touch the stock.
	if got := stockOf(t, svc, product); got != 2 {
		t.Fatalf("expected stock unchanged at 2, got %d", got)
	}
}

func TestReserveUnknownProduct(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))

	err := svc.Reserve(context.Background(), uuid.New(), 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReserveInvalidQty(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))

	err := svc.Reserve(context.Background(), uuid.New(), 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConcurrentReservesExactlyOneWins(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	product := uuid.New()

	if err := db.Create(&models.InventoryItem{ProductID: product, CurrentStock: 3}).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			errs[slot] = svc.Reserve(ctx, product, 2)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	// Stock only covers one of the two requests: both passing a stale check
	// would be a lost update.
	if succeeded > 1 {
		t.Fatalf("expected at most one reserve to succeed, got %d", succeeded)
	}
	if got := stockOf(t, svc, product); got != 3-2*succeeded {
		t.Fatalf("stock %d inconsistent with %d successful reserves", got, succeeded)
	}
}

func stockOf(t *testing.T, svc Service, product uuid.UUID) int {
	t.Helper()
	stock, err := svc.StockOf(context.Background(), product)
	if err != nil {
		t.Fatalf("stock of: %v", err)
	}
	return stock
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.InventoryItem{}); err != nil {
		t.Fatalf("migrate inventory: %v", err)
	}
	return db
}
