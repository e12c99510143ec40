package handler

import (
	"net/http"
	"time"

	occupancydomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/occupancy"
)

type createRoomRequest struct {
	UnitNumber   string `json:"unitNumber"`
	RoomType     string `json:"roomType"`
	Floor        string `json:"floor"`
	MonthlyRate  int64  `json:"monthlyRate"`
	NumberOfBeds int    `json:"numberOfBeds"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
}

type updateRoomRequest struct {
	UnitNumber   *string `json:"unitNumber"`
	RoomType     *string `json:"roomType"`
	Floor        *string `json:"floor"`
	MonthlyRate  *int64  `json:"monthlyRate"`
	NumberOfBeds *int    `json:"numberOfBeds"`
	Status       *string `json:"status"`
	Notes        *string `json:"notes"`
}

type roomResponse struct {
	ID           string    `json:"id"`
	UnitNumber   string    `json:"unitNumber"`
	RoomType     string    `json:"roomType"`
	Floor        string    `json:"floor"`
	MonthlyRate  int64     `json:"monthlyRate"`
	NumberOfBeds int       `json:"numberOfBeds"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type occupancyResponse struct {
	ID         string `json:"id"`
	ResidentID string `json:"residentId"`
	RoomID     string `json:"roomId"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Active     bool   `json:"active"`
}

type roomOccupancyResponse struct {
	RoomID      string              `json:"roomId"`
	Count       int                 `json:"count"`
	Occupancies []occupancyResponse `json:"occupancies"`
}

type roomStatusResponse struct {
	RoomID string `json:"roomId"`
	Status string `json:"status"`
}

func (h *Handlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Rooms.ListRooms(r.Context(), occupancydomain.RoomFilter{Status: queryParam(r, "status")})
	if err != nil {
		h.writeDomainError(w, "rooms.list", err)
		return
	}

	items := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, toRoomResponse(room))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", occupancydomain.ErrRoomNotFound)
	if err != nil {
		h.writeDomainError(w, "rooms.get", err, "room_id", id)
		return
	}
	room, err := h.Rooms.GetRoom(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "rooms.get", err, "room_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toRoomResponse(*room))
}

func (h *Handlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidBody(w)
		return
	}

	room, err := h.Rooms.CreateRoom(r.Context(), occupancydomain.CreateRoomInput{
		UnitNumber:   req.UnitNumber,
		RoomType:     req.RoomType,
		Floor:        req.Floor,
		MonthlyRate:  req.MonthlyRate,
		NumberOfBeds: req.NumberOfBeds,
		Status:       req.Status,
		Notes:        req.Notes,
	})
	if err != nil {
		h.writeDomainError(w, "rooms.create", err, "unit_number", req.UnitNumber)
		return
	}
	writeJSON(w, http.StatusCreated, toRoomResponse(*room))
}

func (h *Handlers) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", occupancydomain.ErrRoomNotFound)
	if err != nil {
		h.writeDomainError(w, "rooms.update", err, "room_id", id)
		return
	}
	var req updateRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidBody(w)
		return
	}

	room, err := h.Rooms.UpdateRoom(r.Context(), id, occupancydomain.UpdateRoomInput{
		UnitNumber:   req.UnitNumber,
		RoomType:     req.RoomType,
		Floor:        req.Floor,
		MonthlyRate:  req.MonthlyRate,
		NumberOfBeds: req.NumberOfBeds,
		Status:       req.Status,
		Notes:        req.Notes,
	})
	if err != nil {
		h.writeDomainError(w, "rooms.update", err, "room_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toRoomResponse(*room))
}

func (h *Handlers) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", occupancydomain.ErrRoomNotFound)
	if err != nil {
		h.writeDomainError(w, "rooms.delete", err, "room_id", id)
		return
	}
	if err := h.Rooms.DeleteRoom(r.Context(), id); err != nil {
		h.writeDomainError(w, "rooms.delete", err, "room_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) RoomOccupancy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", occupancydomain.ErrRoomNotFound)
	if err != nil {
		h.writeDomainError(w, "rooms.occupancy", err, "room_id", id)
		return
	}
	result, err := h.Rooms.RoomOccupancy(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "rooms.occupancy", err, "room_id", id)
		return
	}

	writeJSON(w, http.StatusOK, roomOccupancyResponse{
		RoomID:      result.RoomID,
		Count:       result.Count,
		Occupancies: toOccupancyResponses(result.Occupancies),
	})
}

func (h *Handlers) RecomputeRoomStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", occupancydomain.ErrRoomNotFound)
	if err != nil {
		h.writeDomainError(w, "rooms.recompute_status", err, "room_id", id)
		return
	}
	status, err := h.Rooms.RecomputeRoomStatus(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "rooms.recompute_status", err, "room_id", id)
		return
	}
	h.log.Info("rooms.recompute_status: done", "room_id", id, "status", status)
	writeJSON(w, http.StatusOK, roomStatusResponse{RoomID: id, Status: status})
}

func toRoomResponse(room occupancydomain.Room) roomResponse {
	return roomResponse{
		ID:           room.ID,
		UnitNumber:   room.UnitNumber,
		RoomType:     room.RoomType,
		Floor:        room.Floor,
		MonthlyRate:  room.MonthlyRate,
		NumberOfBeds: room.NumberOfBeds,
		Status:       room.Status,
		Notes:        room.Notes,
		CreatedAt:    room.CreatedAt,
		UpdatedAt:    room.UpdatedAt,
	}
}

func toOccupancyResponses(rows []occupancydomain.Occupancy) []occupancyResponse {
	items := make([]occupancyResponse, 0, len(rows))
	for _, occ := range rows {
		items = append(items, occupancyResponse{
			ID:         occ.ID,
			ResidentID: occ.ResidentID,
			RoomID:     occ.RoomID,
			StartDate:  occ.StartDate,
			EndDate:    occ.EndDate,
			Active:     occ.Active,
		})
	}
	return items
}
