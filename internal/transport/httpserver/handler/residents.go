package handler

import (
	"net/http"
	"strings"
	"time"

	residentsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/residents"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/validation"
)

type createResidentRequest struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	DateOfBirth    string `json:"dateOfBirth"`
	Address        string `json:"address"`
	Classification string `json:"classification"`
	Notes          string `json:"notes"`
	BillingDate    *int   `json:"billingDate"`
	RoomID         string `json:"roomId" validate:"omitempty,uuid"`
}

type updateResidentRequest struct {
	FullName       *string        `json:"fullName"`
	Email          *string        `json:"email"`
	Phone          *string        `json:"phone"`
	DateOfBirth    *string        `json:"dateOfBirth"`
	Address        *string        `json:"address"`
	Classification *string        `json:"classification"`
	Notes          *string        `json:"notes"`
	BillingDate    *int           `json:"billingDate"`
	RoomID         nullableString `json:"roomId"`
}

type residentResponse struct {
	ID             string    `json:"id"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	DateOfBirth    string    `json:"dateOfBirth"`
	Address        string    `json:"address"`
	Classification string    `json:"classification"`
	RoomID         *string   `json:"roomId"`
	BillingDate    int       `json:"billingDate"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type deleteResidentResponse struct {
	Message      string   `json:"message"`
	Billings     int64    `json:"billingsDeleted"`
	NextOfKin    int64    `json:"nextOfKinDeleted"`
	Occupancies  int      `json:"occupanciesDeleted"`
	RoomsUpdated []string `json:"roomsUpdated"`
}

type createNextOfKinRequest struct {
	FullName     string `json:"fullName"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
}

type nextOfKinResponse struct {
	ID           string    `json:"id"`
	ResidentID   string    `json:"residentId"`
	FullName     string    `json:"fullName"`
	Relationship string    `json:"relationship"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (h *Handlers) ListResidents(w http.ResponseWriter, r *http.Request) {
	roomID := queryParam(r, "roomId")
	if err := validation.Var("roomId", roomID, "omitempty,uuid"); err != nil {
		h.writeDomainError(w, "residents.list", err)
		return
	}

	residents, err := h.Residents.ListResidents(r.Context(), residentsdomain.ListFilter{
		Classification: queryParam(r, "classification"),
		RoomID:         roomID,
		Search:         queryParam(r, "search"),
	})
	if err != nil {
		h.writeDomainError(w, "residents.list", err)
		return
	}

	items := make([]residentResponse, 0, len(residents))
	for _, resident := range residents {
		items = append(items, toResidentResponse(resident))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) GetResident(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", residentsdomain.ErrResidentNotFound)
	if err != nil {
		h.writeDomainError(w, "residents.get", err, "resident_id", id)
		return
	}
	resident, err := h.Residents.GetResident(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "residents.get", err, "resident_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toResidentResponse(*resident))
}

func (h *Handlers) CreateResident(w http.ResponseWriter, r *http.Request) {
	var req createResidentRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidBody(w)
		return
	}
	req.RoomID = strings.TrimSpace(req.RoomID)
	if err := validation.Struct(req); err != nil {
		h.writeDomainError(w, "residents.create", err)
		return
	}

	resident, err := h.Residents.CreateResident(r.Context(), residentsdomain.CreateResidentInput{
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		DateOfBirth:    req.DateOfBirth,
		Address:        req.Address,
		Classification: req.Classification,
		Notes:          req.Notes,
		BillingDate:    req.BillingDate,
		RoomID:         optionalString(req.RoomID),
	})
	if err != nil {
		h.writeDomainError(w, "residents.create", err)
		return
	}
	h.log.Info("residents.create: created", "resident_id", resident.ID, "has_room", resident.RoomID != nil)
	writeJSON(w, http.StatusCreated, toResidentResponse(*resident))
}

func (h *Handlers) UpdateResident(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", residentsdomain.ErrResidentNotFound)
	if err != nil {
		h.writeDomainError(w, "residents.update", err, "resident_id", id)
		return
	}
	var req updateResidentRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidBody(w)
		return
	}

	input := residentsdomain.UpdateResidentInput{
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		DateOfBirth:    req.DateOfBirth,
		Address:        req.Address,
		Classification: req.Classification,
		Notes:          req.Notes,
		BillingDate:    req.BillingDate,
	}
	if req.RoomID.Set {
		input.Room = residentsdomain.RoomAssignment{Set: true}
		if req.RoomID.Value != nil {
			input.Room.ID = optionalString(*req.RoomID.Value)
		}
		if input.Room.ID != nil {
			if err := validation.Var("roomId", *input.Room.ID, "uuid"); err != nil {
				h.writeDomainError(w, "residents.update", err, "resident_id", id)
				return
			}
		}
	}

	resident, err := h.Residents.UpdateResident(r.Context(), id, input)
	if err != nil {
		h.writeDomainError(w, "residents.update", err, "resident_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toResidentResponse(*resident))
}

func (h *Handlers) DeleteResident(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", residentsdomain.ErrResidentNotFound)
	if err != nil {
		h.writeDomainError(w, "residents.delete", err, "resident_id", id)
		return
	}
	summary, err := h.Residents.DeleteResident(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "residents.delete", err, "resident_id", id)
		return
	}

	h.log.Info("residents.delete: deleted", "resident_id", id, "billings", summary.Billings, "occupancies", summary.Occupancies)
	rooms := summary.RoomsUpdated
	if rooms == nil {
		rooms = []string{}
	}
	writeJSON(w, http.StatusOK, deleteResidentResponse{
		Message:      "resident deleted",
		Billings:     summary.Billings,
		NextOfKin:    summary.NextOfKin,
		Occupancies:  summary.Occupancies,
		RoomsUpdated: rooms,
	})
}

func (h *Handlers) ResidentOccupancies(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", residentsdomain.ErrResidentNotFound)
	if err != nil {
		h.writeDomainError(w, "residents.occupancies", err, "resident_id", id)
		return
	}
	if _, err := h.Residents.GetResident(r.Context(), id); err != nil {
		h.writeDomainError(w, "residents.occupancies", err, "resident_id", id)
		return
	}

	rows, err := h.Rooms.ResidentHistory(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "residents.occupancies", err, "resident_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toOccupancyResponses(rows))
}

func (h *Handlers) ListNextOfKin(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", residentsdomain.ErrResidentNotFound)
	if err != nil {
		h.writeDomainError(w, "residents.list_next_of_kin", err, "resident_id", id)
		return
	}
	kin, err := h.Residents.ListNextOfKin(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "residents.list_next_of_kin", err, "resident_id", id)
		return
	}

	items := make([]nextOfKinResponse, 0, len(kin))
	for _, item := range kin {
		items = append(items, toNextOfKinResponse(item))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) CreateNextOfKin(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", residentsdomain.ErrResidentNotFound)
	if err != nil {
		h.writeDomainError(w, "residents.create_next_of_kin", err, "resident_id", id)
		return
	}
	var req createNextOfKinRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidBody(w)
		return
	}

	kin, err := h.Residents.AddNextOfKin(r.Context(), id, residentsdomain.CreateNextOfKinInput{
		FullName:     req.FullName,
		Relationship: req.Relationship,
		Phone:        req.Phone,
		Email:        req.Email,
	})
	if err != nil {
		h.writeDomainError(w, "residents.create_next_of_kin", err, "resident_id", id)
		return
	}
	writeJSON(w, http.StatusCreated, toNextOfKinResponse(*kin))
}

func (h *Handlers) DeleteNextOfKin(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", residentsdomain.ErrNextOfKinNotFound)
	if err != nil {
		h.writeDomainError(w, "residents.delete_next_of_kin", err, "next_of_kin_id", id)
		return
	}
	if err := h.Residents.DeleteNextOfKin(r.Context(), id); err != nil {
		h.writeDomainError(w, "residents.delete_next_of_kin", err, "next_of_kin_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toResidentResponse(resident residentsdomain.Resident) residentResponse {
	return residentResponse{
		ID:             resident.ID,
		FullName:       resident.FullName,
		Email:          resident.Email,
		Phone:          resident.Phone,
		DateOfBirth:    resident.DateOfBirth,
		Address:        resident.Address,
		Classification: resident.Classification,
		RoomID:         resident.RoomID,
		BillingDate:    resident.BillingDate,
		Notes:          resident.Notes,
		CreatedAt:      resident.CreatedAt,
		UpdatedAt:      resident.UpdatedAt,
	}
}

func toNextOfKinResponse(kin residentsdomain.NextOfKin) nextOfKinResponse {
	return nextOfKinResponse{
		ID:           kin.ID,
		ResidentID:   kin.ResidentID,
		FullName:     kin.FullName,
		Relationship: kin.Relationship,
		Phone:        kin.Phone,
		Email:        kin.Email,
		CreatedAt:    kin.CreatedAt,
	}
}
