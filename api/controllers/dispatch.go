package controllers

import (
	"net/http"

	"github.com/swiftbasket/swiftbasket-backend/api/responses"
	"github.com/swiftbasket/swiftbasket-backend/api/validators"
	"github.com/swiftbasket/swiftbasket-backend/internal/dispatch"
	pkgerrors "github.com/swiftbasket/swiftbasket-backend/pkg/errors"
	"github.com/swiftbasket/swiftbasket-backend/pkg/logger"
)

type dispatchDecisionRequest struct {
	CourierID string `json:"courier_id" validate:"required,uuid"`
}

type dispatchDecisionResponse struct {
	Result string `json:"result"`
}

// DispatchAccept lets a courier claim a published order. Exactly one accept
// per order wins; every other outcome maps to an error status.
func DispatchAccept(notifier *dispatch.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if notifier == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch notifier unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req dispatchDecisionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		courierID, err := validators.ParseUUIDBody(req.CourierID, "courier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := notifier.Accept(r.Context(), orderID, courierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		switch result {
		case dispatch.AcceptAccepted:
			responses.WriteSuccess(w, dispatchDecisionResponse{Result: string(result)})
		case dispatch.AcceptAlreadyAccepted:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "order already accepted by another courier"))
		case dispatch.AcceptNotEligible:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "courier was not notified for this order"))
		case dispatch.AcceptAlreadyRejected:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "courier already rejected this order"))
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no open dispatch for this order"))
		}
	}
}

// DispatchReject records a courier declining a published order.
func DispatchReject(notifier *dispatch.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if notifier == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch notifier unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req dispatchDecisionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		courierID, err := validators.ParseUUIDBody(req.CourierID, "courier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := notifier.Reject(r.Context(), orderID, courierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		switch result {
		case dispatch.RejectRecorded, dispatch.RejectAllRejected:
			responses.WriteSuccess(w, dispatchDecisionResponse{Result: string(result)})
		case dispatch.RejectAlreadyAccepted:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "order already accepted by another courier"))
		case dispatch.RejectNotEligible:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "courier was not notified for this order"))
		case dispatch.RejectAlreadyRejected:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "courier already rejected this order"))
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no open dispatch for this order"))
		}
	}
}
