package orders

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/swiftbasket/swiftbasket-backend/pkg/db/models"
	"github.com/swiftbasket/swiftbasket-backend/pkg/enums"
	pkgerrors "github.com/swiftbasket/swiftbasket-backend/pkg/errors"
	"github.com/swiftbasket/swiftbasket-backend/pkg/types"
)

var orderNumberPattern = regexp.MustCompile(`^ORD\d{16}$`)

func testDraftInput() DraftInput {
	return DraftInput{
		CustomerID:    uuid.New(),
		CustomerName:  "Asha Rao",
		CustomerPhone: "+919876543210",
		CustomerEmail: "asha@example.com",
		Address: types.DeliveryAddress{
			Street:    "14 MG Road",
			City:      "Bengaluru",
			Pincode:   "560001",
			Latitude:  12.9716,
			Longitude: 77.5946,
		},
		PaymentMethod: enums.PaymentMethodWallet,
		PlatformFee:   decimal.RequireFromString("2.00"),
		DeliveryFee:   decimal.RequireFromString("18.00"),
	}
}

func TestCreateDraft(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	order, err := svc.CreateDraft(ctx, testDraftInput())
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if !orderNumberPattern.MatchString(order.OrderNumber) {
		t.Fatalf("unexpected order number %q", order.OrderNumber)
	}
	if order.Status != enums.OrderStatusReceived {
		t.Fatalf("expected status received, got %s", order.Status)
	}
	if order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected payment pending, got %s", order.PaymentStatus)
	}
	if !order.GrandTotal.IsZero() {
		t.Fatalf("draft should have zero grand total, got %s", order.GrandTotal)
	}
}

func TestCreateDraftUniqueNumbers(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		order, err := svc.CreateDraft(ctx, testDraftInput())
		if err != nil {
			t.Fatalf("create draft %d: %v", i, err)
		}
		if seen[order.OrderNumber] {
			t.Fatalf("duplicate order number %q", order.OrderNumber)
		}
		seen[order.OrderNumber] = true
	}
}

func TestAttachItemsAndTotals(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	order, err := svc.CreateDraft(ctx, testDraftInput())
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	items := []models.OrderItem{
		{
			ProductID: uuid.New(),
			SellerID:  uuid.New(),
			Name:      "Basmati Rice 5kg",
			UnitPrice: decimal.RequireFromString("40.00"),
			Qty:       2,
			LineTotal: decimal.RequireFromString("80.00"),
			Status:    enums.OrderStatusReceived,
		},
	}
	if err := svc.AttachItems(ctx, order.ID, items); err != nil {
		t.Fatalf("attach items: %v", err)
	}
	if err := svc.FinalizeTotals(ctx, order.ID, decimal.RequireFromString("80.00"), decimal.RequireFromString("100.00")); err != nil {
		t.Fatalf("finalize totals: %v", err)
	}

	loaded, err := svc.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(loaded.Items) != 1 || loaded.Items[0].Name != "Basmati Rice 5kg" {
		t.Fatalf("unexpected items: %+v", loaded.Items)
	}
	if !loaded.GrandTotal.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("expected grand total 100.00, got %s", loaded.GrandTotal)
	}
}

func TestPaymentTransitions(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	order, err := svc.CreateDraft(ctx, testDraftInput())
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	if err := svc.MarkPaymentProcessing(ctx, order.ID); err != nil {
		t.Fatalf("processing: %v", err)
	}
	paidAt := time.Now().UTC().Truncate(time.Second)
	if err := svc.MarkPaymentCompleted(ctx, order.ID, "WLT-REF-1", paidAt); err != nil {
		t.Fatalf("completed: %v", err)
	}

	loaded, err := svc.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.PaymentStatus != enums.PaymentStatusCompleted {
		t.Fatalf("expected completed, got %s", loaded.PaymentStatus)
	}
	if loaded.PaymentReference == nil || *loaded.PaymentReference != "WLT-REF-1" {
		t.Fatalf("missing payment reference: %+v", loaded)
	}
	if loaded.PaidAt == nil {
		t.Fatal("missing paid_at")
	}
}

func TestCancelRecordsReason(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	order, err := svc.CreateDraft(ctx, testDraftInput())
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if err := svc.MarkPaymentFailed(ctx, order.ID); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if err := svc.Cancel(ctx, order.ID, "insufficient wallet balance"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	loaded, err := svc.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Status != enums.OrderStatusCancelled || loaded.PaymentStatus != enums.PaymentStatusFailed {
		t.Fatalf("unexpected state: status=%s payment=%s", loaded.Status, loaded.PaymentStatus)
	}
	if loaded.CancellationReason == nil || *loaded.CancellationReason != "insufficient wallet balance" {
		t.Fatalf("missing cancellation reason: %+v", loaded)
	}
}

func TestAssignCourier(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	order, err := svc.CreateDraft(ctx, testDraftInput())
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	courier := uuid.New()
	at := time.Now().UTC().Truncate(time.Second)
	if err := svc.AssignCourier(ctx, order.ID, courier, at); err != nil {
		t.Fatalf("assign courier: %v", err)
	}

	loaded, err := svc.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.CourierID == nil || *loaded.CourierID != courier {
		t.Fatalf("courier not assigned: %+v", loaded)
	}
	if loaded.AssignmentStatus == nil || *loaded.AssignmentStatus != enums.AssignmentStatusAssigned {
		t.Fatalf("assignment status not set: %+v", loaded)
	}
	if loaded.AssignedAt == nil {
		t.Fatal("assigned_at not set")
	}
}

func TestDiscardDraftRemovesOrderAndItems(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	order, err := svc.CreateDraft(ctx, testDraftInput())
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if err := svc.AttachItems(ctx, order.ID, []models.OrderItem{{
		ProductID: uuid.New(),
		SellerID:  uuid.New(),
		Name:      "Milk 1L",
		UnitPrice: decimal.RequireFromString("30.00"),
		Qty:       1,
		LineTotal: decimal.RequireFromString("30.00"),
	}}); err != nil {
		t.Fatalf("attach items: %v", err)
	}

	if err := svc.DiscardDraft(ctx, order.ID); err != nil {
		t.Fatalf("discard: %v", err)
	}

	_, err = svc.Get(ctx, order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after discard, got %v", err)
	}
	var itemCount int64
	if err := db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if itemCount != 0 {
		t.Fatalf("expected no orphan items, got %d", itemCount)
	}
}

func TestGetUnknownOrder(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))

	_, err := svc.Get(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
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
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("migrate orders: %v", err)
	}
	return db
}
