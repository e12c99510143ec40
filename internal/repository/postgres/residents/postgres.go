package residents

import (
	"context"
	"errors"
	"strings"

	billingdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/billing"
	occupancydomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/occupancy"
	residentsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/residents"
	occupancyrepo "github.com/cg-naveen/sukha-pms-new-sub000/internal/repository/postgres/occupancy"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(residentsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Ledger() occupancydomain.Repository {
	return occupancyrepo.NewPostgres(r.db)
}

func (r *PostgresRepository) CreateResident(ctx context.Context, resident *residentsdomain.Resident) error {
	return r.db.WithContext(ctx).Create(resident).Error
}

func (r *PostgresRepository) GetResident(ctx context.Context, id string) (*residentsdomain.Resident, error) {
	var resident residentsdomain.Resident
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&resident).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, residentsdomain.ErrResidentNotFound
		}
		return nil, err
	}
	return &resident, nil
}

func (r *PostgresRepository) ListResidents(ctx context.Context, filter residentsdomain.ListFilter) ([]residentsdomain.Resident, error) {
	query := r.db.WithContext(ctx).Model(&residentsdomain.Resident{})
	if filter.Classification != "" {
		query = query.Where("classification = ?", filter.Classification)
	}
	if filter.RoomID != "" {
		query = query.Where("room_id = ?", filter.RoomID)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", pattern, pattern, pattern)
	}

	var residents []residentsdomain.Resident
	if err := query.Order("full_name asc, created_at asc").Find(&residents).Error; err != nil {
		return nil, err
	}
	return residents, nil
}

func (r *PostgresRepository) UpdateResident(ctx context.Context, resident *residentsdomain.Resident) error {
	result := r.db.WithContext(ctx).
		Model(&residentsdomain.Resident{}).
		Where("id = ?", resident.ID).
		Updates(map[string]interface{}{
			"full_name":      resident.FullName,
			"email":          resident.Email,
			"phone":          resident.Phone,
			"date_of_birth":  resident.DateOfBirth,
			"address":        resident.Address,
			"classification": resident.Classification,
			"billing_date":   resident.BillingDate,
			"notes":          resident.Notes,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return residentsdomain.ErrResidentNotFound
	}
	return nil
}

func (r *PostgresRepository) SetResidentRoom(ctx context.Context, id string, roomID *string) error {
	return r.db.WithContext(ctx).
		Model(&residentsdomain.Resident{}).
		Where("id = ?", id).
		Update("room_id", roomID).Error
}

func (r *PostgresRepository) DeleteResident(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&residentsdomain.Resident{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return residentsdomain.ErrResidentNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteBillingsByResident(ctx context.Context, residentID string) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&billingdomain.Billing{}, "resident_id = ?", residentID)
	return result.RowsAffected, result.Error
}

func (r *PostgresRepository) DeleteNextOfKinByResident(ctx context.Context, residentID string) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&residentsdomain.NextOfKin{}, "resident_id = ?", residentID)
	return result.RowsAffected, result.Error
}

func (r *PostgresRepository) ListNextOfKin(ctx context.Context, residentID string) ([]residentsdomain.NextOfKin, error) {
	var kin []residentsdomain.NextOfKin
	if err := r.db.WithContext(ctx).
		Where("resident_id = ?", residentID).
		Order("created_at asc").
		Find(&kin).Error; err != nil {
		return nil, err
	}
	return kin, nil
}

func (r *PostgresRepository) CreateNextOfKin(ctx context.Context, kin *residentsdomain.NextOfKin) error {
	return r.db.WithContext(ctx).Create(kin).Error
}

func (r *PostgresRepository) DeleteNextOfKin(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&residentsdomain.NextOfKin{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return residentsdomain.ErrNextOfKinNotFound
	}
	return nil
}
