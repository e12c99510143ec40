package visitors

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	// StatusExpired is reported by Verify only; it is never stored.
	StatusExpired = "expired"
)

var transitions = map[string][]string{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {},
	StatusRejected: {},
}

type Visitor struct {
	ID               string     `gorm:"type:uuid;primaryKey"`
	FullName         string     `gorm:"size:255;not null" validate:"required,max=255"`
	Phone            string     `gorm:"size:32;not null" validate:"required,max=32"`
	Email            string     `gorm:"size:255;not null;default:''" validate:"omitempty,email,max=255"`
	ResidentID       *string    `gorm:"type:uuid;index"`
	Purpose          string     `gorm:"type:text;not null;default:''"`
	VisitDate        string     `gorm:"size:10;not null;index" validate:"required,datetime=2006-01-02"`
	VisitTime        string     `gorm:"size:5;not null;default:''" validate:"omitempty,datetime=15:04"`
	NumberOfVisitors int        `gorm:"not null;default:1" validate:"min=1,max=20"`
	VehicleNumber    string     `gorm:"size:32;not null;default:''" validate:"max=32"`
	Status           string     `gorm:"size:16;not null;index"`
	QRCode           *string    `gorm:"column:qr_code;size:64;uniqueIndex"`
	ApprovedAt       *time.Time `gorm:"column:approved_at"`
	RejectedAt       *time.Time `gorm:"column:rejected_at"`
	CreatedAt        time.Time  `gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime"`
}

func (Visitor) TableName() string { return "visitors" }

type RegisterInput struct {
	FullName         string
	Phone            string
	Email            string
	ResidentID       *string
	Purpose          string
	VisitDate        string
	VisitTime        string
	NumberOfVisitors int
	VehicleNumber    string
}

type ListFilter struct {
	Status    string `validate:"omitempty,oneof=pending approved rejected"`
	VisitDate string `validate:"omitempty,datetime=2006-01-02"`
}

// Verification is the outcome of checking a QR token. Status carries
// "expired" for approved visits dated before today.
type Verification struct {
	Valid   bool
	Status  string
	Message string
	Visitor Visitor
}
