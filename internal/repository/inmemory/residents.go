package inmemory

import (
	"context"
	"sort"
	"strings"

	occupancydomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/occupancy"
	residentsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/residents"
)

type ResidentsRepository struct {
	session
}

func (r *ResidentsRepository) Transaction(ctx context.Context, fn func(residentsdomain.Repository) error) error {
	return r.transaction(func(tx session) error {
		return fn(&ResidentsRepository{session: tx})
	})
}

func (r *ResidentsRepository) Ledger() occupancydomain.Repository {
	return &OccupancyRepository{session: r.session}
}

func (r *ResidentsRepository) CreateResident(_ context.Context, resident *residentsdomain.Resident) error {
	return r.read(func(t *tables) error {
		now := r.stamp()
		resident.CreatedAt, resident.UpdatedAt = now, now
		t.residents[resident.ID] = *resident
		return nil
	})
}

func (r *ResidentsRepository) GetResident(_ context.Context, id string) (*residentsdomain.Resident, error) {
	var resident residentsdomain.Resident
	err := r.read(func(t *tables) error {
		found, ok := t.residents[id]
		if !ok {
			return residentsdomain.ErrResidentNotFound
		}
		resident = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resident, nil
}

func (r *ResidentsRepository) ListResidents(_ context.Context, filter residentsdomain.ListFilter) ([]residentsdomain.Resident, error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var residents []residentsdomain.Resident
	err := r.read(func(t *tables) error {
		for _, resident := range t.residents {
			if filter.Classification != "" && resident.Classification != filter.Classification {
				continue
			}
			if filter.RoomID != "" && (resident.RoomID == nil || *resident.RoomID != filter.RoomID) {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(resident.FullName), search) &&
				!strings.Contains(strings.ToLower(resident.Email), search) &&
				!strings.Contains(resident.Phone, search) {
				continue
			}
			residents = append(residents, resident)
		}
		return nil
	})
	sort.Slice(residents, func(i, j int) bool {
		if residents[i].FullName != residents[j].FullName {
			return residents[i].FullName < residents[j].FullName
		}
		return residents[i].CreatedAt.Before(residents[j].CreatedAt)
	})
	return residents, err
}

func (r *ResidentsRepository) UpdateResident(_ context.Context, resident *residentsdomain.Resident) error {
	return r.read(func(t *tables) error {
		existing, ok := t.residents[resident.ID]
		if !ok {
			return residentsdomain.ErrResidentNotFound
		}
		updated := *resident
		updated.RoomID = existing.RoomID
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = r.stamp()
		t.residents[resident.ID] = updated
		return nil
	})
}

func (r *ResidentsRepository) SetResidentRoom(_ context.Context, id string, roomID *string) error {
	return r.read(func(t *tables) error {
		resident, ok := t.residents[id]
		if !ok {
			return nil
		}
		if roomID != nil {
			value := *roomID
			resident.RoomID = &value
		} else {
			resident.RoomID = nil
		}
		resident.UpdatedAt = r.stamp()
		t.residents[id] = resident
		return nil
	})
}

func (r *ResidentsRepository) DeleteResident(_ context.Context, id string) error {
	return r.read(func(t *tables) error {
		if _, ok := t.residents[id]; !ok {
			return residentsdomain.ErrResidentNotFound
		}
		delete(t.residents, id)
		return nil
	})
}

func (r *ResidentsRepository) DeleteBillingsByResident(_ context.Context, residentID string) (int64, error) {
	var deleted int64
	err := r.read(func(t *tables) error {
		for id, billing := range t.billings {
			if billing.ResidentID == residentID {
				delete(t.billings, id)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}

func (r *ResidentsRepository) DeleteNextOfKinByResident(_ context.Context, residentID string) (int64, error) {
	var deleted int64
	err := r.read(func(t *tables) error {
		for id, kin := range t.nextOfKin {
			if kin.ResidentID == residentID {
				delete(t.nextOfKin, id)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}

func (r *ResidentsRepository) ListNextOfKin(_ context.Context, residentID string) ([]residentsdomain.NextOfKin, error) {
	var kin []residentsdomain.NextOfKin
	err := r.read(func(t *tables) error {
		for _, item := range t.nextOfKin {
			if item.ResidentID == residentID {
				kin = append(kin, item)
			}
		}
		return nil
	})
	sort.Slice(kin, func(i, j int) bool { return kin[i].CreatedAt.Before(kin[j].CreatedAt) })
	return kin, err
}

func (r *ResidentsRepository) CreateNextOfKin(_ context.Context, kin *residentsdomain.NextOfKin) error {
	return r.read(func(t *tables) error {
		kin.CreatedAt = r.stamp()
		t.nextOfKin[kin.ID] = *kin
		return nil
	})
}

func (r *ResidentsRepository) DeleteNextOfKin(_ context.Context, id string) error {
	return r.read(func(t *tables) error {
		if _, ok := t.nextOfKin[id]; !ok {
			return residentsdomain.ErrNextOfKinNotFound
		}
		delete(t.nextOfKin, id)
		return nil
	})
}
