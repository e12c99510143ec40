package visitors

import (
	"context"
	"errors"

	visitorsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/visitors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(visitorsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Create(ctx context.Context, visitor *visitorsdomain.Visitor) error {
	return r.db.WithContext(ctx).Create(visitor).Error
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*visitorsdomain.Visitor, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*visitorsdomain.Visitor, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (r *PostgresRepository) GetByQRCode(ctx context.Context, code string) (*visitorsdomain.Visitor, error) {
	return r.first(r.db.WithContext(ctx).Where("qr_code = ?", code))
}

func (r *PostgresRepository) first(query *gorm.DB) (*visitorsdomain.Visitor, error) {
	var visitor visitorsdomain.Visitor
	if err := query.First(&visitor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, visitorsdomain.ErrVisitorNotFound
		}
		return nil, err
	}
	return &visitor, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter visitorsdomain.ListFilter) ([]visitorsdomain.Visitor, error) {
	query := r.db.WithContext(ctx).Model(&visitorsdomain.Visitor{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.VisitDate != "" {
		query = query.Where("visit_date = ?", filter.VisitDate)
	}

	var visitors []visitorsdomain.Visitor
	if err := query.Order("visit_date desc, created_at desc").Find(&visitors).Error; err != nil {
		return nil, err
	}
	return visitors, nil
}

func (r *PostgresRepository) Update(ctx context.Context, visitor *visitorsdomain.Visitor) error {
	result := r.db.WithContext(ctx).
		Model(&visitorsdomain.Visitor{}).
		Where("id = ?", visitor.ID).
		Updates(map[string]interface{}{
			"status":      visitor.Status,
			"qr_code":     visitor.QRCode,
			"approved_at": visitor.ApprovedAt,
			"rejected_at": visitor.RejectedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return visitorsdomain.ErrVisitorNotFound
	}
	return nil
}
