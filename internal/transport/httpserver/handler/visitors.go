package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/validation"
	visitorsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/visitors"
)

type registerVisitorRequest struct {
	FullName         string `json:"fullName"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	ResidentID       string `json:"residentId" validate:"omitempty,uuid"`
	Purpose          string `json:"purpose"`
	VisitDate        string `json:"visitDate"`
	VisitTime        string `json:"visitTime"`
	NumberOfVisitors int    `json:"numberOfVisitors"`
	VehicleNumber    string `json:"vehicleNumber"`
}

type visitorResponse struct {
	ID               string     `json:"id"`
	FullName         string     `json:"fullName"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email"`
	ResidentID       *string    `json:"residentId"`
	Purpose          string     `json:"purpose"`
	VisitDate        string     `json:"visitDate"`
	VisitTime        string     `json:"visitTime"`
	NumberOfVisitors int        `json:"numberOfVisitors"`
	VehicleNumber    string     `json:"vehicleNumber"`
	Status           string     `json:"status"`
	QRCode           *string    `json:"qrCode"`
	ApprovedAt       *time.Time `json:"approvedAt"`
	RejectedAt       *time.Time `json:"rejectedAt"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type verifyVisitorResponse struct {
	Success bool             `json:"success"`
	Status  string           `json:"status"`
	Message string           `json:"message"`
	Visitor *visitorResponse `json:"visitor,omitempty"`
}

// publicVisitorResponse is returned to unauthenticated callers and leaves
// out the pass code and contact details.
type publicVisitorResponse struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName"`
	VisitDate string `json:"visitDate"`
	VisitTime string `json:"visitTime"`
	Status    string `json:"status"`
}

func (h *Handlers) RegisterVisitor(w http.ResponseWriter, r *http.Request) {
	var req registerVisitorRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidBody(w)
		return
	}
	req.ResidentID = strings.TrimSpace(req.ResidentID)
	if err := validation.Struct(req); err != nil {
		h.writeDomainError(w, "visitors.register", err)
		return
	}

	visitor, err := h.Visitors.Register(r.Context(), visitorsdomain.RegisterInput{
		FullName:         req.FullName,
		Phone:            req.Phone,
		Email:            req.Email,
		ResidentID:       optionalString(req.ResidentID),
		Purpose:          req.Purpose,
		VisitDate:        req.VisitDate,
		VisitTime:        req.VisitTime,
		NumberOfVisitors: req.NumberOfVisitors,
		VehicleNumber:    req.VehicleNumber,
	})
	if err != nil {
		h.writeDomainError(w, "visitors.register", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPublicVisitorResponse(*visitor))
}

func (h *Handlers) ListVisitors(w http.ResponseWriter, r *http.Request) {
	visitors, err := h.Visitors.List(r.Context(), visitorsdomain.ListFilter{
		Status:    queryParam(r, "status"),
		VisitDate: queryParam(r, "visitDate"),
	})
	if err != nil {
		h.writeDomainError(w, "visitors.list", err)
		return
	}

	items := make([]visitorResponse, 0, len(visitors))
	for _, visitor := range visitors {
		items = append(items, toVisitorResponse(visitor))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) GetVisitor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", visitorsdomain.ErrVisitorNotFound)
	if err != nil {
		h.writeDomainError(w, "visitors.get", err, "visitor_id", id)
		return
	}
	visitor, err := h.Visitors.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "visitors.get", err, "visitor_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toVisitorResponse(*visitor))
}

func (h *Handlers) ApproveVisitor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", visitorsdomain.ErrVisitorNotFound)
	if err != nil {
		h.writeDomainError(w, "visitors.approve", err, "visitor_id", id)
		return
	}
	visitor, err := h.Visitors.Approve(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "visitors.approve", err, "visitor_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toVisitorResponse(*visitor))
}

func (h *Handlers) RejectVisitor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", visitorsdomain.ErrVisitorNotFound)
	if err != nil {
		h.writeDomainError(w, "visitors.reject", err, "visitor_id", id)
		return
	}
	visitor, err := h.Visitors.Reject(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "visitors.reject", err, "visitor_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toVisitorResponse(*visitor))
}

func (h *Handlers) VerifyVisitor(w http.ResponseWriter, r *http.Request) {
	result, err := h.Visitors.Verify(r.Context(), pathParam(r, "token"))
	if err != nil {
		h.writeDomainError(w, "visitors.verify", err)
		return
	}

	if !result.Valid {
		writeJSON(w, http.StatusBadRequest, verifyVisitorResponse{
			Status:  result.Status,
			Message: result.Message,
		})
		return
	}

	visitor := toVisitorResponse(result.Visitor)
	visitor.QRCode = nil
	writeJSON(w, http.StatusOK, verifyVisitorResponse{
		Success: true,
		Status:  result.Status,
		Message: result.Message,
		Visitor: &visitor,
	})
}

func toVisitorResponse(visitor visitorsdomain.Visitor) visitorResponse {
	return visitorResponse{
		ID:               visitor.ID,
		FullName:         visitor.FullName,
		Phone:            visitor.Phone,
		Email:            visitor.Email,
		ResidentID:       visitor.ResidentID,
		Purpose:          visitor.Purpose,
		VisitDate:        visitor.VisitDate,
		VisitTime:        visitor.VisitTime,
		NumberOfVisitors: visitor.NumberOfVisitors,
		VehicleNumber:    visitor.VehicleNumber,
		Status:           visitor.Status,
		QRCode:           visitor.QRCode,
		ApprovedAt:       visitor.ApprovedAt,
		RejectedAt:       visitor.RejectedAt,
		CreatedAt:        visitor.CreatedAt,
	}
}

func toPublicVisitorResponse(visitor visitorsdomain.Visitor) publicVisitorResponse {
	return publicVisitorResponse{
		ID:        visitor.ID,
		FullName:  visitor.FullName,
		VisitDate: visitor.VisitDate,
		VisitTime: visitor.VisitTime,
		Status:    visitor.Status,
	}
}
