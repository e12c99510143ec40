package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/calendar"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/validation"
	"github.com/google/uuid"
)

const fallbackBillingAccount = "main"

type Service struct {
	repo Repository
	now  calendar.Clock
	loc  *time.Location
}

func NewService(repo Repository, now calendar.Clock, loc *time.Location) *Service {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, now: now, loc: loc}
}

// Generate creates this month's invoice for every resident whose billing day
// is today and who holds an active occupancy. A resident already billed for
// the computed due date is skipped, so repeated runs on one day are safe.
// A failure for one resident is recorded in the result and does not stop
// the batch; only a failure to load the candidates aborts the run.
func (s *Service) Generate(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	now := input.Now
	if now.IsZero() {
		now = s.now()
	}
	today := calendar.Today(now, s.loc)

	result := &GenerateResult{
		Date:   calendar.Format(today),
		Errors: []GenerateError{},
	}
	if !input.Config.Enabled {
		return result, nil
	}

	candidates, err := s.repo.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list billing candidates: %w", err)
	}

	account := strings.TrimSpace(input.Config.DefaultBillingAccount)
	if account == "" {
		account = fallbackBillingAccount
	}

	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		if _, ok := seen[candidate.ResidentID]; ok {
			continue
		}
		seen[candidate.ResidentID] = struct{}{}

		if !IsBillingDay(candidate.BillingDate, today) {
			continue
		}
		if candidate.OccupancyID == nil || candidate.RoomID == nil || candidate.MonthlyRate == nil {
			result.Skipped++
			continue
		}

		created, err := s.generateOne(ctx, candidate, today, account)
		if err != nil {
			result.Errors = append(result.Errors, GenerateError{
				ResidentID:   candidate.ResidentID,
				ResidentName: candidate.ResidentName,
				Message:      err.Error(),
			})
			continue
		}
		if created {
			result.Generated++
		} else {
			result.Skipped++
		}
	}

	return result, nil
}

func (s *Service) generateOne(ctx context.Context, candidate Candidate, today time.Time, account string) (bool, error) {
	dueDate := DueDate(today, candidate.BillingDate)
	unit := ""
	if candidate.UnitNumber != nil {
		unit = *candidate.UnitNumber
	}

	created := false
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockResident(ctx, candidate.ResidentID); err != nil {
			return err
		}
		exists, err := tx.ExistsForDueDate(ctx, candidate.ResidentID, dueDate)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		billing := Billing{
			ID:             uuid.NewString(),
			ResidentID:     candidate.ResidentID,
			OccupancyID:    candidate.OccupancyID,
			Amount:         *candidate.MonthlyRate,
			DueDate:        dueDate,
			Status:         StatusNewInvoice,
			Description:    fmt.Sprintf("Monthly rent for room %s - %s", unit, today.Format("January 2006")),
			BillingAccount: account,
		}
		if err := tx.Create(ctx, &billing); err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

// IsBillingDay reports whether billingDate falls on today. Days past the end
// of a short month are clamped to its last day, so a resident billed on the
// 31st is billed on 28/29 February and 30 April.
func IsBillingDay(billingDate int, today time.Time) bool {
	return calendar.ClampDay(today.Year(), today.Month(), billingDate) == today.Day()
}

// DueDate is the billing day in today's month, clamped to the month's end.
func DueDate(today time.Time, billingDate int) string {
	day := calendar.ClampDay(today.Year(), today.Month(), billingDate)
	return calendar.Format(time.Date(today.Year(), today.Month(), day, 0, 0, 0, 0, today.Location()))
}

func (s *Service) Get(ctx context.Context, id string) (*Billing, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Billing, error) {
	filter.DueFrom = strings.TrimSpace(filter.DueFrom)
	filter.DueTo = strings.TrimSpace(filter.DueTo)
	var v validation.Errors
	v.Collect(filter)
	if !v.Has("dueFrom") && !v.Has("dueTo") && filter.DueFrom != "" && filter.DueTo != "" {
		v.Check(filter.DueFrom <= filter.DueTo, "dueTo", "must not be before dueFrom")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

// Create records a manual invoice. The same (resident, due date) rule as the
// generator applies.
func (s *Service) Create(ctx context.Context, input CreateBillingInput) (*Billing, error) {
	input.ResidentID = strings.TrimSpace(input.ResidentID)
	input.DueDate = strings.TrimSpace(input.DueDate)
	input.BillingAccount = strings.TrimSpace(input.BillingAccount)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	account := input.BillingAccount
	if account == "" {
		account = fallbackBillingAccount
	}
	billing := Billing{
		ID:             uuid.NewString(),
		ResidentID:     input.ResidentID,
		OccupancyID:    input.OccupancyID,
		Amount:         input.Amount,
		DueDate:        input.DueDate,
		Status:         StatusNewInvoice,
		Description:    strings.TrimSpace(input.Description),
		BillingAccount: account,
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockResident(ctx, billing.ResidentID); err != nil {
			return err
		}
		exists, err := tx.ExistsForDueDate(ctx, billing.ResidentID, billing.DueDate)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateDueDate
		}
		return tx.Create(ctx, &billing)
	})
	if err != nil {
		return nil, err
	}
	return &billing, nil
}

// UpdateStatus moves an invoice between statuses. Paid is terminal and
// requires the uploaded receipt reference.
func (s *Service) UpdateStatus(ctx context.Context, id string, input UpdateStatusInput) (*Billing, error) {
	input.Status = strings.TrimSpace(input.Status)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	status := input.Status

	var invoiceFile *string
	if input.InvoiceFile != nil {
		trimmed := strings.TrimSpace(*input.InvoiceFile)
		if trimmed != "" {
			invoiceFile = &trimmed
		}
	}
	if status == StatusPaid && invoiceFile == nil {
		return nil, ErrInvoiceRequired
	}

	var result Billing
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		billing, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if billing.Status == StatusPaid {
			return ErrAlreadyPaid
		}

		var paidAt *time.Time
		if status == StatusPaid {
			stamp := s.now().UTC()
			paidAt = &stamp
		}
		if err := tx.UpdateStatus(ctx, id, status, invoiceFile, paidAt); err != nil {
			return err
		}

		billing.Status = status
		if invoiceFile != nil {
			billing.InvoiceFile = invoiceFile
		}
		billing.PaidAt = paidAt
		result = *billing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// MarkOverdue flips unpaid invoices whose due date is before today.
func (s *Service) MarkOverdue(ctx context.Context) (int64, error) {
	today := calendar.Format(calendar.Today(s.now(), s.loc))
	return s.repo.MarkOverdue(ctx, today)
}
