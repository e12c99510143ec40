package billing

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	// ListCandidates returns every resident with its active occupancy and room.
	ListCandidates(ctx context.Context) ([]Candidate, error)
	// LockResident row-locks the resident; ErrResidentNotFound when missing.
	LockResident(ctx context.Context, residentID string) error
	ExistsForDueDate(ctx context.Context, residentID, dueDate string) (bool, error)

	Create(ctx context.Context, billing *Billing) error
	Get(ctx context.Context, id string) (*Billing, error)
	List(ctx context.Context, filter ListFilter) ([]Billing, error)
	UpdateStatus(ctx context.Context, id, status string, invoiceFile *string, paidAt *time.Time) error
	Delete(ctx context.Context, id string) error
	// MarkOverdue flips unpaid rows due before the given date.
	MarkOverdue(ctx context.Context, before string) (int64, error)
}
