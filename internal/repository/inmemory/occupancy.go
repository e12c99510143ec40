package inmemory

import (
	"context"
	"sort"

	occupancydomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/occupancy"
)

type OccupancyRepository struct {
	session
}

func (r *OccupancyRepository) Transaction(ctx context.Context, fn func(occupancydomain.Repository) error) error {
	return r.transaction(func(tx session) error {
		return fn(&OccupancyRepository{session: tx})
	})
}

func (r *OccupancyRepository) CreateRoom(_ context.Context, room *occupancydomain.Room) error {
	return r.read(func(t *tables) error {
		now := r.stamp()
		room.CreatedAt, room.UpdatedAt = now, now
		t.rooms[room.ID] = *room
		return nil
	})
}

func (r *OccupancyRepository) GetRoom(_ context.Context, id string) (*occupancydomain.Room, error) {
	var room occupancydomain.Room
	err := r.read(func(t *tables) error {
		found, ok := t.rooms[id]
		if !ok {
			return occupancydomain.ErrRoomNotFound
		}
		room = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *OccupancyRepository) ListRooms(_ context.Context, filter occupancydomain.RoomFilter) ([]occupancydomain.Room, error) {
	var rooms []occupancydomain.Room
	err := r.read(func(t *tables) error {
		for _, room := range t.rooms {
			if filter.Status != "" && room.Status != filter.Status {
				continue
			}
			rooms = append(rooms, room)
		}
		return nil
	})
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].UnitNumber < rooms[j].UnitNumber })
	return rooms, err
}

func (r *OccupancyRepository) UpdateRoom(_ context.Context, room *occupancydomain.Room) error {
	return r.read(func(t *tables) error {
		existing, ok := t.rooms[room.ID]
		if !ok {
			return occupancydomain.ErrRoomNotFound
		}
		room.CreatedAt = existing.CreatedAt
		room.UpdatedAt = r.stamp()
		t.rooms[room.ID] = *room
		return nil
	})
}

// DeleteRoom cascades to the room's occupancy rows like the foreign key does.
func (r *OccupancyRepository) DeleteRoom(_ context.Context, id string) error {
	return r.read(func(t *tables) error {
		if _, ok := t.rooms[id]; !ok {
			return occupancydomain.ErrRoomNotFound
		}
		delete(t.rooms, id)
		for occID, occ := range t.occupancies {
			if occ.RoomID == id {
				delete(t.occupancies, occID)
			}
		}
		return nil
	})
}

func (r *OccupancyRepository) IsUnitNumberTaken(_ context.Context, unitNumber, excludeID string) (bool, error) {
	taken := false
	err := r.read(func(t *tables) error {
		for _, room := range t.rooms {
			if room.UnitNumber == unitNumber && room.ID != excludeID {
				taken = true
				return nil
			}
		}
		return nil
	})
	return taken, err
}

func (r *OccupancyRepository) SetRoomStatus(_ context.Context, roomID, status string) error {
	return r.read(func(t *tables) error {
		room, ok := t.rooms[roomID]
		if !ok {
			return occupancydomain.ErrRoomNotFound
		}
		room.Status = status
		room.UpdatedAt = r.stamp()
		t.rooms[roomID] = room
		return nil
	})
}

func (r *OccupancyRepository) LockResident(_ context.Context, residentID string) error {
	return r.read(func(t *tables) error {
		if _, ok := t.residents[residentID]; !ok {
			return occupancydomain.ErrResidentNotFound
		}
		return nil
	})
}

func (r *OccupancyRepository) LockRooms(_ context.Context, roomIDs []string) ([]occupancydomain.Room, error) {
	var rooms []occupancydomain.Room
	err := r.read(func(t *tables) error {
		for _, id := range roomIDs {
			if room, ok := t.rooms[id]; ok {
				rooms = append(rooms, room)
			}
		}
		return nil
	})
	return rooms, err
}

func (r *OccupancyRepository) ListActiveByResident(_ context.Context, residentID string) ([]occupancydomain.Occupancy, error) {
	return r.filter(func(occ occupancydomain.Occupancy) bool {
		return occ.ResidentID == residentID && occ.Active
	})
}

func (r *OccupancyRepository) ListActiveByRoom(_ context.Context, roomID string) ([]occupancydomain.Occupancy, error) {
	return r.filter(func(occ occupancydomain.Occupancy) bool {
		return occ.RoomID == roomID && occ.Active
	})
}

func (r *OccupancyRepository) ListByResident(_ context.Context, residentID string) ([]occupancydomain.Occupancy, error) {
	return r.filter(func(occ occupancydomain.Occupancy) bool {
		return occ.ResidentID == residentID
	})
}

func (r *OccupancyRepository) filter(match func(occupancydomain.Occupancy) bool) ([]occupancydomain.Occupancy, error) {
	var rows []occupancydomain.Occupancy
	err := r.read(func(t *tables) error {
		for _, occ := range t.occupancies {
			if match(occ) {
				rows = append(rows, occ)
			}
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].StartDate != rows[j].StartDate {
			return rows[i].StartDate > rows[j].StartDate
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return rows, err
}

func (r *OccupancyRepository) CountActiveByRoom(ctx context.Context, roomID string) (int64, error) {
	rows, err := r.ListActiveByRoom(ctx, roomID)
	return int64(len(rows)), err
}

func (r *OccupancyRepository) CreateOccupancy(_ context.Context, occupancy *occupancydomain.Occupancy) error {
	return r.read(func(t *tables) error {
		now := r.stamp()
		occupancy.CreatedAt, occupancy.UpdatedAt = now, now
		t.occupancies[occupancy.ID] = *occupancy
		return nil
	})
}

func (r *OccupancyRepository) DeactivateOccupancy(_ context.Context, id, endDate string) error {
	return r.read(func(t *tables) error {
		occ, ok := t.occupancies[id]
		if !ok {
			return occupancydomain.ErrOccupancyNotFound
		}
		occ.Active = false
		occ.EndDate = endDate
		occ.UpdatedAt = r.stamp()
		t.occupancies[id] = occ
		return nil
	})
}

func (r *OccupancyRepository) DeleteOccupancy(_ context.Context, id string) error {
	return r.read(func(t *tables) error {
		delete(t.occupancies, id)
		return nil
	})
}
