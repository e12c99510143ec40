package visitors

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Create(ctx context.Context, visitor *Visitor) error
	Get(ctx context.Context, id string) (*Visitor, error)
	// GetForUpdate row-locks the visitor for the rest of the transaction.
	GetForUpdate(ctx context.Context, id string) (*Visitor, error)
	GetByQRCode(ctx context.Context, code string) (*Visitor, error)
	List(ctx context.Context, filter ListFilter) ([]Visitor, error)
	Update(ctx context.Context, visitor *Visitor) error
}
