package inmemory

import (
	"context"
	"sort"
	"time"

	billingdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/billing"
)

type BillingRepository struct {
	session
}

func (r *BillingRepository) Transaction(ctx context.Context, fn func(billingdomain.Repository) error) error {
	return r.transaction(func(tx session) error {
		return fn(&BillingRepository{session: tx})
	})
}

// ListCandidates mirrors the residents LEFT JOIN occupancies LEFT JOIN rooms
// query of the SQL repository.
func (r *BillingRepository) ListCandidates(_ context.Context) ([]billingdomain.Candidate, error) {
	var candidates []billingdomain.Candidate
	err := r.read(func(t *tables) error {
		for _, resident := range t.residents {
			candidate := billingdomain.Candidate{
				ResidentID:   resident.ID,
				ResidentName: resident.FullName,
				BillingDate:  resident.BillingDate,
			}
			for _, occ := range t.occupancies {
				if occ.ResidentID != resident.ID || !occ.Active {
					continue
				}
				occID := occ.ID
				candidate.OccupancyID = &occID
				if room, ok := t.rooms[occ.RoomID]; ok {
					roomID, unit, rate := room.ID, room.UnitNumber, room.MonthlyRate
					candidate.RoomID = &roomID
					candidate.UnitNumber = &unit
					candidate.MonthlyRate = &rate
				}
				break
			}
			candidates = append(candidates, candidate)
		}
		return nil
	})
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].ResidentName != candidates[j].ResidentName {
			return candidates[i].ResidentName < candidates[j].ResidentName
		}
		return candidates[i].ResidentID < candidates[j].ResidentID
	})
	return candidates, err
}

func (r *BillingRepository) LockResident(_ context.Context, residentID string) error {
	return r.read(func(t *tables) error {
		if _, ok := t.residents[residentID]; !ok {
			return billingdomain.ErrResidentNotFound
		}
		return nil
	})
}

func (r *BillingRepository) ExistsForDueDate(_ context.Context, residentID, dueDate string) (bool, error) {
	exists := false
	err := r.read(func(t *tables) error {
		for _, billing := range t.billings {
			if billing.ResidentID == residentID && billing.DueDate == dueDate {
				exists = true
				return nil
			}
		}
		return nil
	})
	return exists, err
}

func (r *BillingRepository) Create(_ context.Context, billing *billingdomain.Billing) error {
	return r.read(func(t *tables) error {
		now := r.stamp()
		billing.CreatedAt, billing.UpdatedAt = now, now
		t.billings[billing.ID] = *billing
		return nil
	})
}

func (r *BillingRepository) Get(_ context.Context, id string) (*billingdomain.Billing, error) {
	var billing billingdomain.Billing
	err := r.read(func(t *tables) error {
		found, ok := t.billings[id]
		if !ok {
			return billingdomain.ErrBillingNotFound
		}
		billing = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &billing, nil
}

func (r *BillingRepository) List(_ context.Context, filter billingdomain.ListFilter) ([]billingdomain.Billing, error) {
	var billings []billingdomain.Billing
	err := r.read(func(t *tables) error {
		for _, billing := range t.billings {
			if filter.ResidentID != "" && billing.ResidentID != filter.ResidentID {
				continue
			}
			if filter.Status != "" && billing.Status != filter.Status {
				continue
			}
			if filter.DueFrom != "" && billing.DueDate < filter.DueFrom {
				continue
			}
			if filter.DueTo != "" && billing.DueDate > filter.DueTo {
				continue
			}
			billings = append(billings, billing)
		}
		return nil
	})
	sort.Slice(billings, func(i, j int) bool {
		if billings[i].DueDate != billings[j].DueDate {
			return billings[i].DueDate > billings[j].DueDate
		}
		return billings[i].CreatedAt.After(billings[j].CreatedAt)
	})
	return billings, err
}

func (r *BillingRepository) UpdateStatus(_ context.Context, id, status string, invoiceFile *string, paidAt *time.Time) error {
	return r.read(func(t *tables) error {
		billing, ok := t.billings[id]
		if !ok {
			return billingdomain.ErrBillingNotFound
		}
		billing.Status = status
		billing.PaidAt = paidAt
		if invoiceFile != nil {
			value := *invoiceFile
			billing.InvoiceFile = &value
		}
		billing.UpdatedAt = r.stamp()
		t.billings[id] = billing
		return nil
	})
}

func (r *BillingRepository) Delete(_ context.Context, id string) error {
	return r.read(func(t *tables) error {
		if _, ok := t.billings[id]; !ok {
			return billingdomain.ErrBillingNotFound
		}
		delete(t.billings, id)
		return nil
	})
}

func (r *BillingRepository) MarkOverdue(_ context.Context, before string) (int64, error) {
	var updated int64
	err := r.read(func(t *tables) error {
		for id, billing := range t.billings {
			if billing.DueDate >= before {
				continue
			}
			if billing.Status != billingdomain.StatusNewInvoice && billing.Status != billingdomain.StatusPending {
				continue
			}
			billing.Status = billingdomain.StatusOverdue
			billing.UpdatedAt = r.stamp()
			t.billings[id] = billing
			updated++
		}
		return nil
	})
	return updated, err
}
