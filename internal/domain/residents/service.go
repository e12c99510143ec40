package residents

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/calendar"
	occupancydomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/occupancy"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/validation"
	"github.com/google/uuid"
)

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

func (s *Service) today() time.Time {
	return calendar.Today(s.now(), s.loc)
}

func (s *Service) GetResident(ctx context.Context, id string) (*Resident, error) {
	return s.repo.GetResident(ctx, id)
}

func (s *Service) ListResidents(ctx context.Context, filter ListFilter) ([]Resident, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if err := validation.Struct(filter); err != nil {
		return nil, err
	}
	return s.repo.ListResidents(ctx, filter)
}

// CreateResident inserts the resident and, when a room is given, opens a
// one-year occupancy in the same transaction.
func (s *Service) CreateResident(ctx context.Context, input CreateResidentInput) (*Resident, error) {
	resident := Resident{
		ID:             uuid.NewString(),
		FullName:       strings.TrimSpace(input.FullName),
		Email:          strings.TrimSpace(input.Email),
		Phone:          strings.TrimSpace(input.Phone),
		DateOfBirth:    strings.TrimSpace(input.DateOfBirth),
		Address:        strings.TrimSpace(input.Address),
		Classification: strings.TrimSpace(input.Classification),
		Notes:          strings.TrimSpace(input.Notes),
		BillingDate:    DefaultBillingDate,
	}
	if resident.Classification == "" {
		resident.Classification = ClassificationIndependent
	}
	if input.BillingDate != nil {
		resident.BillingDate = *input.BillingDate
	}
	if err := s.validateResident(&resident); err != nil {
		return nil, err
	}

	var roomID string
	if input.RoomID != nil {
		roomID = strings.TrimSpace(*input.RoomID)
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateResident(ctx, &resident); err != nil {
			return err
		}
		if roomID == "" {
			return nil
		}
		return s.assignRoom(ctx, tx, &resident, roomID)
	})
	if err != nil {
		return nil, err
	}
	return &resident, nil
}

// UpdateResident applies field changes, then reconciles the room assignment
// against the ledger: an explicit null clears the active occupancy, a
// different room moves the resident, the same room leaves the ledger alone.
func (s *Service) UpdateResident(ctx context.Context, id string, input UpdateResidentInput) (*Resident, error) {
	var result Resident
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		ledger := tx.Ledger()
		if err := ledger.LockResident(ctx, id); err != nil {
			return translateNotFound(err)
		}

		resident, err := tx.GetResident(ctx, id)
		if err != nil {
			return err
		}
		applyUpdate(resident, input)
		if err := s.validateResident(resident); err != nil {
			return err
		}
		if err := tx.UpdateResident(ctx, resident); err != nil {
			return err
		}

		if input.Room.Set {
			if err := s.reconcileRoom(ctx, tx, resident, input.Room.ID); err != nil {
				return err
			}
		}

		result = *resident
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) reconcileRoom(ctx context.Context, tx Repository, resident *Resident, requested *string) error {
	ledger := tx.Ledger()
	current, err := ledger.ListActiveByResident(ctx, resident.ID)
	if err != nil {
		return err
	}
	oldRoomID := ""
	if len(current) > 0 {
		oldRoomID = current[0].RoomID
	}

	newRoomID := ""
	if requested != nil {
		newRoomID = strings.TrimSpace(*requested)
	}

	switch {
	case newRoomID == "":
		if len(current) == 0 {
			return nil
		}
		if _, err := occupancydomain.Deactivate(ctx, ledger, resident.ID, calendar.Format(s.today())); err != nil {
			return err
		}
		resident.RoomID = nil
		return tx.SetResidentRoom(ctx, resident.ID, nil)
	case newRoomID != oldRoomID:
		return s.assignRoom(ctx, tx, resident, newRoomID)
	default:
		return nil
	}
}

func (s *Service) assignRoom(ctx context.Context, tx Repository, resident *Resident, roomID string) error {
	today := s.today()
	start, end := calendar.DefaultStay(today)

	activation, err := occupancydomain.Activate(ctx, tx.Ledger(), occupancydomain.ActivateInput{
		ResidentID: resident.ID,
		RoomID:     roomID,
		StartDate:  start,
		EndDate:    end,
	}, calendar.Format(today))
	if err != nil {
		return translateNotFound(err)
	}

	for _, displaced := range activation.Displaced {
		if displaced.ResidentID == resident.ID {
			continue
		}
		if err := tx.SetResidentRoom(ctx, displaced.ResidentID, nil); err != nil {
			return fmt.Errorf("clear room of displaced resident %s: %w", displaced.ResidentID, err)
		}
	}

	resident.RoomID = &roomID
	return tx.SetResidentRoom(ctx, resident.ID, &roomID)
}

// DeleteResident removes billings, next of kin and occupancy rows before the
// resident itself, recomputing every room an occupancy row pointed at.
func (s *Service) DeleteResident(ctx context.Context, id string) (*DeleteSummary, error) {
	var summary DeleteSummary
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		ledger := tx.Ledger()
		if err := ledger.LockResident(ctx, id); err != nil {
			return translateNotFound(err)
		}

		occupancies, err := ledger.ListByResident(ctx, id)
		if err != nil {
			return err
		}
		roomIDs := make([]string, 0, len(occupancies))
		seen := make(map[string]struct{}, len(occupancies))
		for _, occ := range occupancies {
			if _, ok := seen[occ.RoomID]; ok {
				continue
			}
			seen[occ.RoomID] = struct{}{}
			roomIDs = append(roomIDs, occ.RoomID)
		}
		sort.Strings(roomIDs)
		if _, err := ledger.LockRooms(ctx, roomIDs); err != nil {
			return err
		}

		if summary.Billings, err = tx.DeleteBillingsByResident(ctx, id); err != nil {
			return fmt.Errorf("delete billings: %w", err)
		}
		if summary.NextOfKin, err = tx.DeleteNextOfKinByResident(ctx, id); err != nil {
			return fmt.Errorf("delete next of kin: %w", err)
		}

		for _, occ := range occupancies {
			if err := ledger.DeleteOccupancy(ctx, occ.ID); err != nil {
				return fmt.Errorf("delete occupancy %s: %w", occ.ID, err)
			}
			if _, err := occupancydomain.RecomputeRoomStatus(ctx, ledger, occ.RoomID); err != nil {
				return err
			}
			summary.Occupancies++
		}
		summary.RoomsUpdated = roomIDs

		return tx.DeleteResident(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *Service) ListNextOfKin(ctx context.Context, residentID string) ([]NextOfKin, error) {
	if _, err := s.repo.GetResident(ctx, residentID); err != nil {
		return nil, err
	}
	return s.repo.ListNextOfKin(ctx, residentID)
}

func (s *Service) AddNextOfKin(ctx context.Context, residentID string, input CreateNextOfKinInput) (*NextOfKin, error) {
	kin := NextOfKin{
		ID:           uuid.NewString(),
		ResidentID:   residentID,
		FullName:     strings.TrimSpace(input.FullName),
		Relationship: strings.TrimSpace(input.Relationship),
		Phone:        strings.TrimSpace(input.Phone),
		Email:        strings.TrimSpace(input.Email),
	}

	if err := validation.Struct(kin); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetResident(ctx, residentID); err != nil {
		return nil, err
	}
	if err := s.repo.CreateNextOfKin(ctx, &kin); err != nil {
		return nil, err
	}
	return &kin, nil
}

func (s *Service) DeleteNextOfKin(ctx context.Context, id string) error {
	return s.repo.DeleteNextOfKin(ctx, id)
}

func applyUpdate(resident *Resident, input UpdateResidentInput) {
	if input.FullName != nil {
		resident.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Email != nil {
		resident.Email = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		resident.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.DateOfBirth != nil {
		resident.DateOfBirth = strings.TrimSpace(*input.DateOfBirth)
	}
	if input.Address != nil {
		resident.Address = strings.TrimSpace(*input.Address)
	}
	if input.Classification != nil {
		resident.Classification = strings.TrimSpace(*input.Classification)
	}
	if input.Notes != nil {
		resident.Notes = strings.TrimSpace(*input.Notes)
	}
	if input.BillingDate != nil {
		resident.BillingDate = *input.BillingDate
	}
}

// validateResident checks the merged row so create and partial update share
// one set of rules.
func (s *Service) validateResident(resident *Resident) error {
	var v validation.Errors
	v.Collect(resident)
	if !v.Has("dateOfBirth") && resident.DateOfBirth != "" && resident.DateOfBirth > calendar.Format(s.today()) {
		v.Add("dateOfBirth", "date of birth must not be in the future")
	}
	return v.Err()
}

func translateNotFound(err error) error {
	if errors.Is(err, occupancydomain.ErrResidentNotFound) {
		return ErrResidentNotFound
	}
	return err
}
