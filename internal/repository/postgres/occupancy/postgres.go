package occupancy

import (
	"context"
	"errors"

	occupancydomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/occupancy"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate renders as SELECT ... FOR UPDATE on postgres. The sqlite dialect
// drops it, which is fine for the single-connection test database.
var forUpdate = clause.Locking{Strength: "UPDATE"}

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(occupancydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateRoom(ctx context.Context, room *occupancydomain.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *PostgresRepository) GetRoom(ctx context.Context, id string) (*occupancydomain.Room, error) {
	var room occupancydomain.Room
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, occupancydomain.ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *PostgresRepository) ListRooms(ctx context.Context, filter occupancydomain.RoomFilter) ([]occupancydomain.Room, error) {
	query := r.db.WithContext(ctx).Model(&occupancydomain.Room{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var rooms []occupancydomain.Room
	if err := query.Order("unit_number asc").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *PostgresRepository) UpdateRoom(ctx context.Context, room *occupancydomain.Room) error {
	result := r.db.WithContext(ctx).
		Model(&occupancydomain.Room{}).
		Where("id = ?", room.ID).
		Updates(map[string]interface{}{
			"unit_number":    room.UnitNumber,
			"room_type":      room.RoomType,
			"floor":          room.Floor,
			"monthly_rate":   room.MonthlyRate,
			"number_of_beds": room.NumberOfBeds,
			"status":         room.Status,
			"notes":          room.Notes,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return occupancydomain.ErrRoomNotFound
	}
	return nil
}

// DeleteRoom removes the room's ledger rows itself so the cascade also holds
// on the sqlite store, which is created without foreign keys.
func (r *PostgresRepository) DeleteRoom(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("room_id = ?", id).Delete(&occupancydomain.Occupancy{}).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&occupancydomain.Room{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return occupancydomain.ErrRoomNotFound
	}
	return nil
}

func (r *PostgresRepository) IsUnitNumberTaken(ctx context.Context, unitNumber, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&occupancydomain.Room{}).Where("unit_number = ?", unitNumber)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) SetRoomStatus(ctx context.Context, roomID, status string) error {
	result := r.db.WithContext(ctx).
		Model(&occupancydomain.Room{}).
		Where("id = ?", roomID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return occupancydomain.ErrRoomNotFound
	}
	return nil
}

func (r *PostgresRepository) LockResident(ctx context.Context, residentID string) error {
	var ids []string
	if err := r.db.WithContext(ctx).
		Table("residents").
		Clauses(forUpdate).
		Where("id = ?", residentID).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return occupancydomain.ErrResidentNotFound
	}
	return nil
}

func (r *PostgresRepository) LockRooms(ctx context.Context, roomIDs []string) ([]occupancydomain.Room, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	var rooms []occupancydomain.Room
	if err := r.db.WithContext(ctx).
		Clauses(forUpdate).
		Where("id IN ?", roomIDs).
		Order("id asc").
		Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *PostgresRepository) ListActiveByResident(ctx context.Context, residentID string) ([]occupancydomain.Occupancy, error) {
	return r.listOccupancies(ctx, "resident_id = ? AND active = ?", residentID, true)
}

func (r *PostgresRepository) ListActiveByRoom(ctx context.Context, roomID string) ([]occupancydomain.Occupancy, error) {
	return r.listOccupancies(ctx, "room_id = ? AND active = ?", roomID, true)
}

func (r *PostgresRepository) ListByResident(ctx context.Context, residentID string) ([]occupancydomain.Occupancy, error) {
	return r.listOccupancies(ctx, "resident_id = ?", residentID)
}

func (r *PostgresRepository) listOccupancies(ctx context.Context, query string, args ...interface{}) ([]occupancydomain.Occupancy, error) {
	var rows []occupancydomain.Occupancy
	if err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("start_date desc, created_at desc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) CountActiveByRoom(ctx context.Context, roomID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&occupancydomain.Occupancy{}).
		Where("room_id = ? AND active = ?", roomID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) CreateOccupancy(ctx context.Context, occupancy *occupancydomain.Occupancy) error {
	return r.db.WithContext(ctx).Create(occupancy).Error
}

func (r *PostgresRepository) DeactivateOccupancy(ctx context.Context, id, endDate string) error {
	result := r.db.WithContext(ctx).
		Model(&occupancydomain.Occupancy{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"active":   false,
			"end_date": endDate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return occupancydomain.ErrOccupancyNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteOccupancy(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&occupancydomain.Occupancy{}, "id = ?", id).Error
}
