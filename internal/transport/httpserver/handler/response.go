package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	billingdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/billing"
	occupancydomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/occupancy"
	residentsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/residents"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/validation"
	visitorsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/visitors"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type validationResponse struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var domainErrors = []errorMapping{
	{occupancydomain.ErrRoomNotFound, http.StatusNotFound, "room_not_found", "room not found"},
	{occupancydomain.ErrResidentNotFound, http.StatusNotFound, "resident_not_found", "resident not found"},
	{occupancydomain.ErrOccupancyNotFound, http.StatusNotFound, "occupancy_not_found", "occupancy not found"},
	{occupancydomain.ErrUnitNumberTaken, http.StatusConflict, "unit_number_taken", "unit number already in use"},
	{occupancydomain.ErrRoomOccupied, http.StatusConflict, "room_occupied", "room has an active occupancy"},
	{residentsdomain.ErrResidentNotFound, http.StatusNotFound, "resident_not_found", "resident not found"},
	{residentsdomain.ErrNextOfKinNotFound, http.StatusNotFound, "next_of_kin_not_found", "next of kin not found"},
	{billingdomain.ErrBillingNotFound, http.StatusNotFound, "billing_not_found", "billing not found"},
	{billingdomain.ErrResidentNotFound, http.StatusNotFound, "resident_not_found", "resident not found"},
	{billingdomain.ErrDuplicateDueDate, http.StatusConflict, "duplicate_due_date", "billing already exists for resident and due date"},
	{billingdomain.ErrAlreadyPaid, http.StatusConflict, "already_paid", "billing is already paid"},
	{billingdomain.ErrInvoiceRequired, http.StatusBadRequest, "invoice_required", "invoice file is required to mark a billing paid"},
	{visitorsdomain.ErrVisitorNotFound, http.StatusNotFound, "visitor_not_found", "visitor not found"},
	{visitorsdomain.ErrInvalidTransition, http.StatusConflict, "invalid_transition", "visitor status transition not allowed"},
}

// writeDomainError maps service errors to responses. Known errors are logged
// as business errors; everything else is a 500 with the detail kept in logs.
func (h *Handlers) writeDomainError(w http.ResponseWriter, op string, err error, args ...any) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		h.log.BusinessError(op+": validation failed", err, args...)
		writeValidation(w, verr)
		return
	}

	for _, mapping := range domainErrors {
		if errors.Is(err, mapping.target) {
			h.log.BusinessError(op, err, args...)
			writeError(w, mapping.status, mapping.code, mapping.message)
			return
		}
	}

	h.log.InternalError(op, err, args...)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func writeValidation(w http.ResponseWriter, err *validation.Error) {
	writeJSON(w, http.StatusBadRequest, validationResponse{Message: "validation failed", Details: err.Fields})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func invalidBody(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
}
