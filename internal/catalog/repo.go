package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/swiftbasket/swiftbasket-backend/pkg/db/models"
	pkgerrors "github.com/swiftbasket/swiftbasket-backend/pkg/errors"
)

// ProductInfo is the catalog view the placement flow snapshots: identity and
// price from the product, sellable stock from inventory.
type ProductInfo struct {
	ID       uuid.UUID
	SellerID uuid.UUID
	Name     string
	ImageURL string
	Price    decimal.Decimal
	Stock    int
}

// Repository exposes catalog reads for order placement.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductInfo, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductInfo, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		First(&product, "id = ? AND active", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": productID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	info := &ProductInfo{
		ID:       product.ID,
		SellerID: product.SellerID,
		Name:     product.Name,
		ImageURL: product.ImageURL,
		Price:    product.Price,
	}

	var item models.InventoryItem
	err := r.db.WithContext(ctx).First(&item, "product_id = ?", productID).Error
	switch {
	case err == nil:
		info.Stock = item.CurrentStock
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No inventory row means nothing sellable.
		info.Stock = 0
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product inventory")
	}
	return info, nil
}
