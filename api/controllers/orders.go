package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftbasket/swiftbasket-backend/api/responses"
	"github.com/swiftbasket/swiftbasket-backend/api/validators"
	"github.com/swiftbasket/swiftbasket-backend/internal/fulfillment"
	"github.com/swiftbasket/swiftbasket-backend/pkg/db/models"
	"github.com/swiftbasket/swiftbasket-backend/pkg/enums"
	pkgerrors "github.com/swiftbasket/swiftbasket-backend/pkg/errors"
	"github.com/swiftbasket/swiftbasket-backend/pkg/logger"
	"github.com/swiftbasket/swiftbasket-backend/pkg/types"
)

type placeOrderItem struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Qty       int    `json:"qty" validate:"required,min=1"`
}

type placeOrderRequest struct {
	CustomerID    string                `json:"customer_id" validate:"required,uuid"`
	Items         []placeOrderItem      `json:"items" validate:"required,min=1,dive"`
	Address       types.DeliveryAddress `json:"address" validate:"required"`
	PaymentMethod string                `json:"payment_method" validate:"required"`
}

type orderItemView struct {
	ProductID uuid.UUID       `json:"product_id"`
	SellerID  uuid.UUID       `json:"seller_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Qty       int             `json:"qty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type orderView struct {
	ID                 uuid.UUID               `json:"id"`
	OrderNumber        string                  `json:"order_number"`
	CustomerID         uuid.UUID               `json:"customer_id"`
	CustomerName       string                  `json:"customer_name"`
	Address            types.DeliveryAddress   `json:"address"`
	Subtotal           decimal.Decimal         `json:"subtotal"`
	ShippingFee        decimal.Decimal         `json:"shipping_fee"`
	PlatformFee        decimal.Decimal         `json:"platform_fee"`
	Discount           decimal.Decimal         `json:"discount"`
	GrandTotal         decimal.Decimal         `json:"grand_total"`
	PaymentMethod      enums.PaymentMethod     `json:"payment_method"`
	PaymentStatus      enums.PaymentStatus     `json:"payment_status"`
	PaymentReference   *string                 `json:"payment_reference,omitempty"`
	PaidAt             *time.Time              `json:"paid_at,omitempty"`
	Status             enums.OrderStatus       `json:"status"`
	CancellationReason *string                 `json:"cancellation_reason,omitempty"`
	CourierID          *uuid.UUID              `json:"courier_id,omitempty"`
	AssignmentStatus   *enums.AssignmentStatus `json:"assignment_status,omitempty"`
	AssignedAt         *time.Time              `json:"assigned_at,omitempty"`
	Items              []orderItemView         `json:"items"`
	CreatedAt          time.Time               `json:"created_at"`
}

type placeOrderResponse struct {
	Order   orderView `json:"order"`
	Payment any       `json:"payment,omitempty"`
}

// PlaceOrder runs the full fulfillment flow for a new order.
func PlaceOrder(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		var req placeOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := buildPlaceOrderInput(req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PlaceOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := placeOrderResponse{Order: toOrderView(result.Order)}
		if result.Payment != nil {
			resp.Payment = result.Payment
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

// OrderDetail returns one order with its items.
func OrderDetail(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderView(order))
	}
}

func buildPlaceOrderInput(req placeOrderRequest) (fulfillment.PlaceOrderInput, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return fulfillment.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id")
	}

	method, err := enums.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return fulfillment.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	items := make([]fulfillment.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return fulfillment.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		items = append(items, fulfillment.LineItem{ProductID: productID, Qty: item.Qty})
	}

	return fulfillment.PlaceOrderInput{
		CustomerID:    customerID,
		Items:         items,
		Address:       req.Address,
		PaymentMethod: method,
	}, nil
}

func toOrderView(order *models.Order) orderView {
	items := make([]orderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemView{
			ProductID: item.ProductID,
			SellerID:  item.SellerID,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
			UnitPrice: item.UnitPrice,
			Qty:       item.Qty,
			LineTotal: item.LineTotal,
		})
	}
	return orderView{
		ID:                 order.ID,
		OrderNumber:        order.OrderNumber,
		CustomerID:         order.CustomerID,
		CustomerName:       order.CustomerName,
		Address:            order.Address,
		Subtotal:           order.Subtotal,
		ShippingFee:        order.ShippingFee,
		PlatformFee:        order.PlatformFee,
		Discount:           order.Discount,
		GrandTotal:         order.GrandTotal,
		PaymentMethod:      order.PaymentMethod,
		PaymentStatus:      order.PaymentStatus,
		PaymentReference:   order.PaymentReference,
		PaidAt:             order.PaidAt,
		Status:             order.Status,
		CancellationReason: order.CancellationReason,
		CourierID:          order.CourierID,
		AssignmentStatus:   order.AssignmentStatus,
		AssignedAt:         order.AssignedAt,
		Items:              items,
		CreatedAt:          order.CreatedAt,
	}
}
