package handler

import (
	"net/http"
	"time"

	settingsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/settings"
)

type updateSettingsRequest struct {
	PropertyName             *string `json:"propertyName"`
	BillingGenerationEnabled *bool   `json:"billingGenerationEnabled"`
	DefaultBillingAccount    *string `json:"defaultBillingAccount"`
}

type settingsResponse struct {
	PropertyName             string     `json:"propertyName"`
	BillingGenerationEnabled bool       `json:"billingGenerationEnabled"`
	DefaultBillingAccount    string     `json:"defaultBillingAccount"`
	UpdatedAt                *time.Time `json:"updatedAt"`
}

func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.Get(r.Context())
	if err != nil {
		h.writeDomainError(w, "settings.get", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(*settings))
}

func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidBody(w)
		return
	}

	settings, err := h.Settings.Update(r.Context(), settingsdomain.UpdateInput{
		PropertyName:             req.PropertyName,
		BillingGenerationEnabled: req.BillingGenerationEnabled,
		DefaultBillingAccount:    req.DefaultBillingAccount,
	})
	if err != nil {
		h.writeDomainError(w, "settings.update", err)
		return
	}
	h.log.Info("settings.update: saved", "billing_generation_enabled", settings.BillingGenerationEnabled)
	writeJSON(w, http.StatusOK, toSettingsResponse(*settings))
}

func toSettingsResponse(settings settingsdomain.Settings) settingsResponse {
	resp := settingsResponse{
		PropertyName:             settings.PropertyName,
		BillingGenerationEnabled: settings.BillingGenerationEnabled,
		DefaultBillingAccount:    settings.DefaultBillingAccount,
	}
	if !settings.UpdatedAt.IsZero() {
		updatedAt := settings.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
