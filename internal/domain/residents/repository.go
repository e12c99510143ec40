package residents

import (
	"context"

	occupancydomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/occupancy"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// Ledger returns an occupancy repository bound to the same connection or
	// transaction as the receiver.
	Ledger() occupancydomain.Repository

	CreateResident(ctx context.Context, resident *Resident) error
	GetResident(ctx context.Context, id string) (*Resident, error)
	ListResidents(ctx context.Context, filter ListFilter) ([]Resident, error)
	// UpdateResident writes every column except room_id.
	UpdateResident(ctx context.Context, resident *Resident) error
	SetResidentRoom(ctx context.Context, id string, roomID *string) error
	DeleteResident(ctx context.Context, id string) error

	DeleteBillingsByResident(ctx context.Context, residentID string) (int64, error)
	DeleteNextOfKinByResident(ctx context.Context, residentID string) (int64, error)

	ListNextOfKin(ctx context.Context, residentID string) ([]NextOfKin, error)
	CreateNextOfKin(ctx context.Context, kin *NextOfKin) error
	DeleteNextOfKin(ctx context.Context, id string) error
}
