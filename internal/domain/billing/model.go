package billing

import "time"

const (
	StatusNewInvoice = "new_invoice"
	StatusPending    = "pending"
	StatusPaid       = "paid"
	StatusOverdue    = "overdue"
)

// Billing is one invoice row. (ResidentID, DueDate) is unique by application
// check only; the generator relies on it to stay idempotent.
type Billing struct {
	ID             string     `gorm:"type:uuid;primaryKey"`
	ResidentID     string     `gorm:"type:uuid;not null;index:idx_billings_resident_due"`
	OccupancyID    *string    `gorm:"type:uuid;index"`
	Amount         int64      `gorm:"not null"`
	DueDate        string     `gorm:"size:10;not null;index:idx_billings_resident_due"`
	Status         string     `gorm:"size:16;not null;index"`
	Description    string     `gorm:"type:text;not null;default:''"`
	BillingAccount string     `gorm:"size:64;not null;default:''"`
	InvoiceFile    *string    `gorm:"type:text"`
	PaidAt         *time.Time `gorm:"column:paid_at"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`
}

func (Billing) TableName() string { return "billings" }

// Candidate is a resident joined with its active occupancy and that
// occupancy's room. Occupancy and room fields are nil when absent.
type Candidate struct {
	ResidentID   string
	ResidentName string
	BillingDate  int
	OccupancyID  *string
	RoomID       *string
	UnitNumber   *string
	MonthlyRate  *int64
}

// GeneratorConfig is loaded from settings once per run and passed in
// explicitly.
type GeneratorConfig struct {
	Enabled               bool
	DefaultBillingAccount string
}

type GenerateInput struct {
	Config GeneratorConfig
	Now    time.Time
}

type GenerateError struct {
	ResidentID   string
	ResidentName string
	Message      string
}

type GenerateResult struct {
	Date      string
	Generated int
	Skipped   int
	Errors    []GenerateError
}

type ListFilter struct {
	ResidentID string
	Status     string `validate:"omitempty,oneof=new_invoice pending paid overdue"`
	DueFrom    string `validate:"omitempty,datetime=2006-01-02"`
	DueTo      string `validate:"omitempty,datetime=2006-01-02"`
}

type CreateBillingInput struct {
	ResidentID     string `validate:"required"`
	OccupancyID    *string
	Amount         int64  `validate:"gt=0"`
	DueDate        string `validate:"required,datetime=2006-01-02"`
	Description    string
	BillingAccount string `validate:"max=64"`
}

type UpdateStatusInput struct {
	Status      string `validate:"oneof=new_invoice pending paid overdue"`
	InvoiceFile *string
}
