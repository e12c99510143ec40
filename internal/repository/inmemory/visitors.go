package inmemory

import (
	"context"
	"sort"

	visitorsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/visitors"
)

type VisitorsRepository struct {
	session
}

func (r *VisitorsRepository) Transaction(ctx context.Context, fn func(visitorsdomain.Repository) error) error {
	return r.transaction(func(tx session) error {
		return fn(&VisitorsRepository{session: tx})
	})
}

func (r *VisitorsRepository) Create(_ context.Context, visitor *visitorsdomain.Visitor) error {
	return r.read(func(t *tables) error {
		now := r.stamp()
		visitor.CreatedAt, visitor.UpdatedAt = now, now
		t.visitors[visitor.ID] = *visitor
		return nil
	})
}

func (r *VisitorsRepository) Get(_ context.Context, id string) (*visitorsdomain.Visitor, error) {
	return r.find(func(v visitorsdomain.Visitor) bool { return v.ID == id })
}

func (r *VisitorsRepository) GetForUpdate(ctx context.Context, id string) (*visitorsdomain.Visitor, error) {
	return r.Get(ctx, id)
}

func (r *VisitorsRepository) GetByQRCode(_ context.Context, code string) (*visitorsdomain.Visitor, error) {
	return r.find(func(v visitorsdomain.Visitor) bool { return v.QRCode != nil && *v.QRCode == code })
}

func (r *VisitorsRepository) find(match func(visitorsdomain.Visitor) bool) (*visitorsdomain.Visitor, error) {
	var visitor visitorsdomain.Visitor
	err := r.read(func(t *tables) error {
		for _, candidate := range t.visitors {
			if match(candidate) {
				visitor = candidate
				return nil
			}
		}
		return visitorsdomain.ErrVisitorNotFound
	})
	if err != nil {
		return nil, err
	}
	return &visitor, nil
}

func (r *VisitorsRepository) List(_ context.Context, filter visitorsdomain.ListFilter) ([]visitorsdomain.Visitor, error) {
	var visitors []visitorsdomain.Visitor
	err := r.read(func(t *tables) error {
		for _, visitor := range t.visitors {
			if filter.Status != "" && visitor.Status != filter.Status {
				continue
			}
			if filter.VisitDate != "" && visitor.VisitDate != filter.VisitDate {
				continue
			}
			visitors = append(visitors, visitor)
		}
		return nil
	})
	sort.Slice(visitors, func(i, j int) bool {
		if visitors[i].VisitDate != visitors[j].VisitDate {
			return visitors[i].VisitDate > visitors[j].VisitDate
		}
		return visitors[i].CreatedAt.After(visitors[j].CreatedAt)
	})
	return visitors, err
}

func (r *VisitorsRepository) Update(_ context.Context, visitor *visitorsdomain.Visitor) error {
	return r.read(func(t *tables) error {
		existing, ok := t.visitors[visitor.ID]
		if !ok {
			return visitorsdomain.ErrVisitorNotFound
		}
		existing.Status = visitor.Status
		existing.QRCode = visitor.QRCode
		existing.ApprovedAt = visitor.ApprovedAt
		existing.RejectedAt = visitor.RejectedAt
		existing.UpdatedAt = r.stamp()
		t.visitors[visitor.ID] = existing
		visitor.UpdatedAt = existing.UpdatedAt
		return nil
	})
}
