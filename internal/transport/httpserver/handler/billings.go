package handler

import (
	"net/http"
	"time"

	billingdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/billing"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/validation"
)

type createBillingRequest struct {
	ResidentID     string  `json:"residentId" validate:"omitempty,uuid"`
	OccupancyID    *string `json:"occupancyId" validate:"omitnil,uuid"`
	Amount         int64   `json:"amount"`
	DueDate        string  `json:"dueDate"`
	Description    string  `json:"description"`
	BillingAccount string  `json:"billingAccount"`
}

type updateBillingStatusRequest struct {
	Status      string  `json:"status"`
	InvoiceFile *string `json:"invoiceFile"`
}

type billingResponse struct {
	ID             string     `json:"id"`
	ResidentID     string     `json:"residentId"`
	OccupancyID    *string    `json:"occupancyId"`
	Amount         int64      `json:"amount"`
	DueDate        string     `json:"dueDate"`
	Status         string     `json:"status"`
	Description    string     `json:"description"`
	BillingAccount string     `json:"billingAccount"`
	InvoiceFile    *string    `json:"invoiceFile"`
	PaidAt         *time.Time `json:"paidAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type generateErrorResponse struct {
	ResidentID   string `json:"residentId"`
	ResidentName string `json:"residentName"`
	Error        string `json:"error"`
}

type generateResultsResponse struct {
	Generated int                     `json:"generated"`
	Skipped   int                     `json:"skipped"`
	Errors    []generateErrorResponse `json:"errors"`
}

type generateResponse struct {
	Message string                  `json:"message"`
	Results generateResultsResponse `json:"results"`
	Date    string                  `json:"date"`
}

// GenerateBillings runs the monthly generator once. It is reachable by the
// external scheduler with the cron secret as well as by staff.
func (h *Handlers) GenerateBillings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Settings.GeneratorConfig(r.Context())
	if err != nil {
		h.writeDomainError(w, "billings.generate: load settings failed", err)
		return
	}

	result, err := h.Billings.Generate(r.Context(), billingdomain.GenerateInput{Config: cfg})
	if err != nil {
		h.writeDomainError(w, "billings.generate", err)
		return
	}

	for _, failure := range result.Errors {
		h.log.Warn("billings.generate: resident failed", "resident_id", failure.ResidentID, "error", failure.Message)
	}
	h.log.Info("billings.generate: done", "date", result.Date, "enabled", cfg.Enabled, "generated", result.Generated, "skipped", result.Skipped, "errors", len(result.Errors))

	writeJSON(w, http.StatusOK, toGenerateResponse(result, cfg.Enabled))
}

func (h *Handlers) ListBillings(w http.ResponseWriter, r *http.Request) {
	residentID := queryParam(r, "residentId")
	if err := validation.Var("residentId", residentID, "omitempty,uuid"); err != nil {
		h.writeDomainError(w, "billings.list", err)
		return
	}

	billings, err := h.Billings.List(r.Context(), billingdomain.ListFilter{
		ResidentID: residentID,
		Status:     queryParam(r, "status"),
		DueFrom:    queryParam(r, "dueFrom"),
		DueTo:      queryParam(r, "dueTo"),
	})
	if err != nil {
		h.writeDomainError(w, "billings.list", err)
		return
	}

	items := make([]billingResponse, 0, len(billings))
	for _, billing := range billings {
		items = append(items, toBillingResponse(billing))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) GetBilling(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", billingdomain.ErrBillingNotFound)
	if err != nil {
		h.writeDomainError(w, "billings.get", err, "billing_id", id)
		return
	}
	billing, err := h.Billings.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "billings.get", err, "billing_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toBillingResponse(*billing))
}

func (h *Handlers) CreateBilling(w http.ResponseWriter, r *http.Request) {
	var req createBillingRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidBody(w)
		return
	}
	if err := validation.Struct(req); err != nil {
		h.writeDomainError(w, "billings.create", err)
		return
	}

	billing, err := h.Billings.Create(r.Context(), billingdomain.CreateBillingInput{
		ResidentID:     req.ResidentID,
		OccupancyID:    req.OccupancyID,
		Amount:         req.Amount,
		DueDate:        req.DueDate,
		Description:    req.Description,
		BillingAccount: req.BillingAccount,
	})
	if err != nil {
		h.writeDomainError(w, "billings.create", err, "resident_id", req.ResidentID)
		return
	}
	writeJSON(w, http.StatusCreated, toBillingResponse(*billing))
}

func (h *Handlers) UpdateBillingStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", billingdomain.ErrBillingNotFound)
	if err != nil {
		h.writeDomainError(w, "billings.update_status", err, "billing_id", id)
		return
	}
	var req updateBillingStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidBody(w)
		return
	}

	billing, err := h.Billings.UpdateStatus(r.Context(), id, billingdomain.UpdateStatusInput{
		Status:      req.Status,
		InvoiceFile: req.InvoiceFile,
	})
	if err != nil {
		h.writeDomainError(w, "billings.update_status", err, "billing_id", id, "status", req.Status)
		return
	}
	writeJSON(w, http.StatusOK, toBillingResponse(*billing))
}

func (h *Handlers) DeleteBilling(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", billingdomain.ErrBillingNotFound)
	if err != nil {
		h.writeDomainError(w, "billings.delete", err, "billing_id", id)
		return
	}
	if err := h.Billings.Delete(r.Context(), id); err != nil {
		h.writeDomainError(w, "billings.delete", err, "billing_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toGenerateResponse(result *billingdomain.GenerateResult, enabled bool) generateResponse {
	errs := make([]generateErrorResponse, 0, len(result.Errors))
	for _, failure := range result.Errors {
		errs = append(errs, generateErrorResponse{
			ResidentID:   failure.ResidentID,
			ResidentName: failure.ResidentName,
			Error:        failure.Message,
		})
	}

	message := "billing generation completed"
	if !enabled {
		message = "billing generation is disabled"
	}
	return generateResponse{
		Message: message,
		Results: generateResultsResponse{
			Generated: result.Generated,
			Skipped:   result.Skipped,
			Errors:    errs,
		},
		Date: result.Date,
	}
}

func toBillingResponse(billing billingdomain.Billing) billingResponse {
	return billingResponse{
		ID:             billing.ID,
		ResidentID:     billing.ResidentID,
		OccupancyID:    billing.OccupancyID,
		Amount:         billing.Amount,
		DueDate:        billing.DueDate,
		Status:         billing.Status,
		Description:    billing.Description,
		BillingAccount: billing.BillingAccount,
		InvoiceFile:    billing.InvoiceFile,
		PaidAt:         billing.PaidAt,
		CreatedAt:      billing.CreatedAt,
		UpdatedAt:      billing.UpdatedAt,
	}
}
