package occupancy

import (
	"context"
	"strings"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/validation"
	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateRoom(ctx context.Context, input CreateRoomInput) (*Room, error) {
	input.UnitNumber = strings.TrimSpace(input.UnitNumber)
	input.RoomType = strings.TrimSpace(input.RoomType)
	input.Floor = strings.TrimSpace(input.Floor)
	input.Status = strings.TrimSpace(input.Status)
	if input.NumberOfBeds == 0 {
		input.NumberOfBeds = 1
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = RoomStatusVacant
	}

	room := Room{
		ID:           uuid.NewString(),
		UnitNumber:   input.UnitNumber,
		RoomType:     input.RoomType,
		Floor:        input.Floor,
		MonthlyRate:  input.MonthlyRate,
		NumberOfBeds: input.NumberOfBeds,
		Status:       status,
		Notes:        strings.TrimSpace(input.Notes),
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		taken, err := tx.IsUnitNumberTaken(ctx, room.UnitNumber, "")
		if err != nil {
			return err
		}
		if taken {
			return ErrUnitNumberTaken
		}
		return tx.CreateRoom(ctx, &room)
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Service) GetRoom(ctx context.Context, id string) (*Room, error) {
	return s.repo.GetRoom(ctx, id)
}

func (s *Service) ListRooms(ctx context.Context, filter RoomFilter) ([]Room, error) {
	if err := validation.Struct(filter); err != nil {
		return nil, err
	}
	return s.repo.ListRooms(ctx, filter)
}

// UpdateRoom applies field changes. A requested vacant/occupied status is not
// stored as given; the room is recomputed from the ledger instead.
func (s *Service) UpdateRoom(ctx context.Context, id string, input UpdateRoomInput) (*Room, error) {
	input.UnitNumber = trimmed(input.UnitNumber)
	input.RoomType = trimmed(input.RoomType)
	input.Floor = trimmed(input.Floor)
	input.Status = trimmed(input.Status)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	var result Room
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		rooms, err := tx.LockRooms(ctx, []string{id})
		if err != nil {
			return err
		}
		if len(rooms) == 0 {
			return ErrRoomNotFound
		}
		room := rooms[0]

		if input.UnitNumber != nil && *input.UnitNumber != room.UnitNumber {
			taken, err := tx.IsUnitNumberTaken(ctx, *input.UnitNumber, room.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrUnitNumberTaken
			}
			room.UnitNumber = *input.UnitNumber
		}
		if input.RoomType != nil {
			room.RoomType = *input.RoomType
		}
		if input.Floor != nil {
			room.Floor = *input.Floor
		}
		if input.MonthlyRate != nil {
			room.MonthlyRate = *input.MonthlyRate
		}
		if input.NumberOfBeds != nil {
			room.NumberOfBeds = *input.NumberOfBeds
		}
		if input.Notes != nil {
			room.Notes = strings.TrimSpace(*input.Notes)
		}
		if input.Status != nil && !IsDerivedStatus(*input.Status) {
			// An occupied room stays occupied until its last resident leaves.
			count, err := tx.CountActiveByRoom(ctx, room.ID)
			if err != nil {
				return err
			}
			if count > 0 {
				return ErrRoomOccupied
			}
			room.Status = *input.Status
		}
		if err := tx.UpdateRoom(ctx, &room); err != nil {
			return err
		}

		if input.Status != nil && IsDerivedStatus(*input.Status) {
			status, err := RecomputeRoomStatus(ctx, tx, room.ID)
			if err != nil {
				return err
			}
			room.Status = status
		}

		result = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) DeleteRoom(ctx context.Context, id string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		rooms, err := tx.LockRooms(ctx, []string{id})
		if err != nil {
			return err
		}
		if len(rooms) == 0 {
			return ErrRoomNotFound
		}
		count, err := tx.CountActiveByRoom(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrRoomOccupied
		}
		return tx.DeleteRoom(ctx, id)
	})
}

// RecomputeRoomStatus re-derives one room's status from the ledger. Exposed
// so staff can repair a room whose cached status drifted.
func (s *Service) RecomputeRoomStatus(ctx context.Context, roomID string) (string, error) {
	var status string
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		rooms, err := tx.LockRooms(ctx, []string{roomID})
		if err != nil {
			return err
		}
		if len(rooms) == 0 {
			return ErrRoomNotFound
		}
		status, err = RecomputeRoomStatus(ctx, tx, roomID)
		return err
	})
	return status, err
}

func (s *Service) RoomOccupancy(ctx context.Context, roomID string) (*RoomOccupancy, error) {
	if _, err := s.repo.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	active, err := s.repo.ListActiveByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return &RoomOccupancy{RoomID: roomID, Count: len(active), Occupancies: active}, nil
}

func (s *Service) ResidentHistory(ctx context.Context, residentID string) ([]Occupancy, error) {
	return s.repo.ListByResident(ctx, residentID)
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	out := strings.TrimSpace(*value)
	return &out
}
