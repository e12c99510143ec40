package residents

import "time"

const (
	ClassificationIndependent = "independent"
	ClassificationAssisted    = "assisted"
	ClassificationMemoryCare  = "memory_care"
	ClassificationRespite     = "respite"
)

const DefaultBillingDate = 1

// Resident.RoomID mirrors the room of the resident's active occupancy. It is
// written only by the lifecycle service, never from request input directly.
type Resident struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	FullName       string    `gorm:"size:255;not null" validate:"required,max=255"`
	Email          string    `gorm:"size:255;not null;default:''" validate:"omitempty,email,max=255"`
	Phone          string    `gorm:"size:32;not null;default:''" validate:"max=32"`
	DateOfBirth    string    `gorm:"size:10;not null;default:''" validate:"omitempty,datetime=2006-01-02"`
	Address        string    `gorm:"type:text;not null;default:''"`
	Classification string    `gorm:"size:32;not null;default:'independent'" validate:"oneof=independent assisted memory_care respite"`
	RoomID         *string   `gorm:"type:uuid;index"`
	BillingDate    int       `gorm:"not null;default:1" validate:"min=1,max=31"`
	Notes          string    `gorm:"type:text;not null;default:''"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Resident) TableName() string { return "residents" }

type NextOfKin struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	ResidentID   string    `gorm:"type:uuid;not null;index"`
	FullName     string    `gorm:"size:255;not null" validate:"required,max=255"`
	Relationship string    `gorm:"size:64;not null;default:''" validate:"max=64"`
	Phone        string    `gorm:"size:32;not null;default:''" validate:"max=32"`
	Email        string    `gorm:"size:255;not null;default:''" validate:"omitempty,email,max=255"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (NextOfKin) TableName() string { return "next_of_kin" }

type CreateResidentInput struct {
	FullName       string
	Email          string
	Phone          string
	DateOfBirth    string
	Address        string
	Classification string
	Notes          string
	BillingDate    *int
	RoomID         *string
}

// RoomAssignment distinguishes "not sent" (Set=false) from an explicit null
// (Set=true, ID=nil) that clears the resident's room.
type RoomAssignment struct {
	Set bool
	ID  *string
}

type UpdateResidentInput struct {
	FullName       *string
	Email          *string
	Phone          *string
	DateOfBirth    *string
	Address        *string
	Classification *string
	Notes          *string
	BillingDate    *int
	Room           RoomAssignment
}

type ListFilter struct {
	Classification string `validate:"omitempty,oneof=independent assisted memory_care respite"`
	RoomID         string
	Search         string
}

type CreateNextOfKinInput struct {
	FullName     string
	Relationship string
	Phone        string
	Email        string
}

// DeleteSummary counts the child rows removed with a resident.
type DeleteSummary struct {
	Billings     int64
	NextOfKin    int64
	Occupancies  int
	RoomsUpdated []string
}
