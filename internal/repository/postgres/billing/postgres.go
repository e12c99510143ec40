package billing

import (
	"context"
	"errors"
	"time"

	billingdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/billing"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(billingdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

const candidatesQuery = `
SELECT
	r.id AS resident_id,
	r.full_name AS resident_name,
	r.billing_date AS billing_date,
	o.id AS occupancy_id,
	rm.id AS room_id,
	rm.unit_number AS unit_number,
	rm.monthly_rate AS monthly_rate
FROM residents r
LEFT JOIN occupancies o ON o.resident_id = r.id AND o.active = ?
LEFT JOIN rooms rm ON rm.id = o.room_id
ORDER BY r.full_name ASC, r.id ASC, o.created_at DESC`

func (r *PostgresRepository) ListCandidates(ctx context.Context) ([]billingdomain.Candidate, error) {
	var candidates []billingdomain.Candidate
	if err := r.db.WithContext(ctx).Raw(candidatesQuery, true).Scan(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *PostgresRepository) LockResident(ctx context.Context, residentID string) error {
	var ids []string
	if err := r.db.WithContext(ctx).
		Table("residents").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", residentID).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return billingdomain.ErrResidentNotFound
	}
	return nil
}

func (r *PostgresRepository) ExistsForDueDate(ctx context.Context, residentID, dueDate string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billingdomain.Billing{}).
		Where("resident_id = ? AND due_date = ?", residentID, dueDate).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) Create(ctx context.Context, billing *billingdomain.Billing) error {
	return r.db.WithContext(ctx).Create(billing).Error
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*billingdomain.Billing, error) {
	var billing billingdomain.Billing
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&billing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billingdomain.ErrBillingNotFound
		}
		return nil, err
	}
	return &billing, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter billingdomain.ListFilter) ([]billingdomain.Billing, error) {
	query := r.db.WithContext(ctx).Model(&billingdomain.Billing{})
	if filter.ResidentID != "" {
		query = query.Where("resident_id = ?", filter.ResidentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DueFrom != "" {
		query = query.Where("due_date >= ?", filter.DueFrom)
	}
	if filter.DueTo != "" {
		query = query.Where("due_date <= ?", filter.DueTo)
	}

	var billings []billingdomain.Billing
	if err := query.Order("due_date desc, created_at desc").Find(&billings).Error; err != nil {
		return nil, err
	}
	return billings, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string, invoiceFile *string, paidAt *time.Time) error {
	updates := map[string]interface{}{
		"status":  status,
		"paid_at": paidAt,
	}
	if invoiceFile != nil {
		updates["invoice_file"] = *invoiceFile
	}

	result := r.db.WithContext(ctx).
		Model(&billingdomain.Billing{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return billingdomain.ErrBillingNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&billingdomain.Billing{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return billingdomain.ErrBillingNotFound
	}
	return nil
}

func (r *PostgresRepository) MarkOverdue(ctx context.Context, before string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&billingdomain.Billing{}).
		Where("status IN ? AND due_date < ?", []string{billingdomain.StatusNewInvoice, billingdomain.StatusPending}, before).
		Update("status", billingdomain.StatusOverdue)
	return result.RowsAffected, result.Error
}
