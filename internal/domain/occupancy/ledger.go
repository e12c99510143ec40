package occupancy

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// The ledger functions operate on whatever repository they are handed. Callers
// that need atomicity pass a transaction-bound repository; Service does this
// for every mutation, and the resident lifecycle shares its own transaction.

// Activate makes roomID the resident's sole active occupancy. Any previous
// active row of the resident, and any active row still holding roomID, is
// deactivated first and the rooms they referenced are recomputed.
func Activate(ctx context.Context, repo Repository, input ActivateInput, today string) (*Activation, error) {
	if input.StartDate == "" || input.EndDate == "" {
		return nil, fmt.Errorf("activate occupancy: start and end dates are required")
	}
	if input.EndDate < input.StartDate {
		return nil, fmt.Errorf("activate occupancy: end date %s before start date %s", input.EndDate, input.StartDate)
	}

	if err := repo.LockResident(ctx, input.ResidentID); err != nil {
		return nil, err
	}

	current, err := repo.ListActiveByResident(ctx, input.ResidentID)
	if err != nil {
		return nil, err
	}

	roomIDs := []string{input.RoomID}
	for _, occ := range current {
		roomIDs = append(roomIDs, occ.RoomID)
	}
	rooms, err := repo.LockRooms(ctx, sortedUnique(roomIDs))
	if err != nil {
		return nil, err
	}
	if !containsRoom(rooms, input.RoomID) {
		return nil, ErrRoomNotFound
	}

	vacated := make([]string, 0, len(current))
	for _, occ := range current {
		if err := repo.DeactivateOccupancy(ctx, occ.ID, closingDate(occ, today)); err != nil {
			return nil, fmt.Errorf("deactivate occupancy %s: %w", occ.ID, err)
		}
		vacated = append(vacated, occ.RoomID)
	}

	holders, err := repo.ListActiveByRoom(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}
	displaced := make([]Occupancy, 0, len(holders))
	for _, occ := range holders {
		if err := repo.DeactivateOccupancy(ctx, occ.ID, closingDate(occ, today)); err != nil {
			return nil, fmt.Errorf("deactivate occupancy %s: %w", occ.ID, err)
		}
		occ.Active = false
		displaced = append(displaced, occ)
	}

	created := Occupancy{
		ID:         uuid.NewString(),
		ResidentID: input.ResidentID,
		RoomID:     input.RoomID,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Active:     true,
	}
	if err := repo.CreateOccupancy(ctx, &created); err != nil {
		return nil, fmt.Errorf("create occupancy: %w", err)
	}
	if err := repo.SetRoomStatus(ctx, input.RoomID, RoomStatusOccupied); err != nil {
		return nil, err
	}

	for _, roomID := range sortedUnique(vacated) {
		if roomID == input.RoomID {
			continue
		}
		if _, err := RecomputeRoomStatus(ctx, repo, roomID); err != nil {
			return nil, err
		}
	}

	return &Activation{Occupancy: created, Displaced: displaced}, nil
}

// Deactivate ends the resident's active occupancy, if any, and recomputes the
// vacated room. It returns the deactivated rows.
func Deactivate(ctx context.Context, repo Repository, residentID, today string) ([]Occupancy, error) {
	if err := repo.LockResident(ctx, residentID); err != nil {
		return nil, err
	}

	current, err := repo.ListActiveByResident(ctx, residentID)
	if err != nil {
		return nil, err
	}
	if len(current) == 0 {
		return nil, nil
	}

	roomIDs := make([]string, 0, len(current))
	for _, occ := range current {
		roomIDs = append(roomIDs, occ.RoomID)
	}
	roomIDs = sortedUnique(roomIDs)
	if _, err := repo.LockRooms(ctx, roomIDs); err != nil {
		return nil, err
	}

	for i := range current {
		if err := repo.DeactivateOccupancy(ctx, current[i].ID, closingDate(current[i], today)); err != nil {
			return nil, fmt.Errorf("deactivate occupancy %s: %w", current[i].ID, err)
		}
		current[i].Active = false
	}

	for _, roomID := range roomIDs {
		if _, err := RecomputeRoomStatus(ctx, repo, roomID); err != nil {
			return nil, err
		}
	}
	return current, nil
}

// RecomputeRoomStatus derives the room status from the count of active rows.
func RecomputeRoomStatus(ctx context.Context, repo Repository, roomID string) (string, error) {
	count, err := repo.CountActiveByRoom(ctx, roomID)
	if err != nil {
		return "", err
	}

	status := RoomStatusVacant
	if count > 0 {
		status = RoomStatusOccupied
	}
	if err := repo.SetRoomStatus(ctx, roomID, status); err != nil {
		return "", fmt.Errorf("set room %s status: %w", roomID, err)
	}
	return status, nil
}

// closingDate ends a stay today unless it had already ended, or had not yet
// started, in which case the stored dates are kept consistent.
func closingDate(occ Occupancy, today string) string {
	switch {
	case today == "":
		return occ.EndDate
	case today < occ.StartDate:
		return occ.StartDate
	case today < occ.EndDate:
		return today
	default:
		return occ.EndDate
	}
}

func sortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	sort.Strings(result)
	return result
}

func containsRoom(rooms []Room, id string) bool {
	for _, room := range rooms {
		if room.ID == id {
			return true
		}
	}
	return false
}
