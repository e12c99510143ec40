package occupancy

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	CreateRoom(ctx context.Context, room *Room) error
	GetRoom(ctx context.Context, id string) (*Room, error)
	ListRooms(ctx context.Context, filter RoomFilter) ([]Room, error)
	UpdateRoom(ctx context.Context, room *Room) error
	DeleteRoom(ctx context.Context, id string) error
	IsUnitNumberTaken(ctx context.Context, unitNumber, excludeID string) (bool, error)
	SetRoomStatus(ctx context.Context, roomID, status string) error

	// LockResident takes a row lock on the resident and fails with
	// ErrResidentNotFound when it does not exist.
	LockResident(ctx context.Context, residentID string) error
	// LockRooms locks the given rooms in the order supplied and returns those
	// that exist.
	LockRooms(ctx context.Context, roomIDs []string) ([]Room, error)

	ListActiveByResident(ctx context.Context, residentID string) ([]Occupancy, error)
	ListActiveByRoom(ctx context.Context, roomID string) ([]Occupancy, error)
	ListByResident(ctx context.Context, residentID string) ([]Occupancy, error)
	CountActiveByRoom(ctx context.Context, roomID string) (int64, error)
	CreateOccupancy(ctx context.Context, occupancy *Occupancy) error
	DeactivateOccupancy(ctx context.Context, id, endDate string) error
	DeleteOccupancy(ctx context.Context, id string) error
}
