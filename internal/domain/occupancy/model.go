package occupancy

import "time"

const (
	RoomStatusVacant      = "vacant"
	RoomStatusOccupied    = "occupied"
	RoomStatusMaintenance = "maintenance"
	RoomStatusReserved    = "reserved"
)

// Room.Status is a cache derived from the ledger for vacant/occupied; only
// maintenance and reserved may be set by callers.
type Room struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	UnitNumber   string    `gorm:"size:32;not null;uniqueIndex"`
	RoomType     string    `gorm:"size:64;not null;default:''"`
	Floor        string    `gorm:"size:16;not null;default:''"`
	MonthlyRate  int64     `gorm:"not null;default:0"`
	NumberOfBeds int       `gorm:"not null;default:1"`
	Status       string    `gorm:"size:16;not null;default:'vacant';index"`
	Notes        string    `gorm:"type:text;not null;default:''"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Room) TableName() string { return "rooms" }

// Occupancy is one row of the ledger. Rows are deactivated, never rewritten,
// when a resident leaves or moves.
type Occupancy struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	ResidentID string    `gorm:"type:uuid;not null;index"`
	RoomID     string    `gorm:"type:uuid;not null;index"`
	StartDate  string    `gorm:"size:10;not null"`
	EndDate    string    `gorm:"size:10;not null"`
	Active     bool      `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Occupancy) TableName() string { return "occupancies" }

type RoomFilter struct {
	Status string `validate:"omitempty,oneof=vacant occupied maintenance reserved"`
}

// CreateRoomInput may only ask for a manual status; vacant is the default.
type CreateRoomInput struct {
	UnitNumber   string `validate:"required,max=32"`
	RoomType     string `validate:"max=64"`
	Floor        string `validate:"max=16"`
	MonthlyRate  int64  `validate:"gte=0"`
	NumberOfBeds int    `validate:"gt=0"`
	Status       string `validate:"omitempty,oneof=maintenance reserved"`
	Notes        string
}

type UpdateRoomInput struct {
	UnitNumber   *string `validate:"omitnil,min=1,max=32"`
	RoomType     *string `validate:"omitnil,max=64"`
	Floor        *string `validate:"omitnil,max=16"`
	MonthlyRate  *int64  `validate:"omitnil,gte=0"`
	NumberOfBeds *int    `validate:"omitnil,gt=0"`
	Status       *string `validate:"omitnil,oneof=vacant occupied maintenance reserved"`
	Notes        *string
}

type ActivateInput struct {
	ResidentID string
	RoomID     string
	StartDate  string
	EndDate    string
}

// Activation reports the new active row and any rows of other residents that
// were deactivated because they still held the target room.
type Activation struct {
	Occupancy Occupancy
	Displaced []Occupancy
}

type RoomOccupancy struct {
	RoomID      string
	Count       int
	Occupancies []Occupancy
}

// IsDerivedStatus reports whether status is owned by the ledger.
func IsDerivedStatus(status string) bool {
	return status == RoomStatusVacant || status == RoomStatusOccupied
}
