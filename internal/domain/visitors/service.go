package visitors

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/calendar"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/validation"
	"github.com/cg-naveen/sukha-pms-new-sub000/pkg/logger"
	"github.com/google/uuid"
)

const (
	qrTokenBytes  = 32
	notifyTimeout = 30 * time.Second
)

// Notifier delivers best-effort messages about decisions on a visit.
type Notifier interface {
	VisitorApproved(ctx context.Context, visitor Visitor) error
	VisitorRejected(ctx context.Context, visitor Visitor) error
}

type Service struct {
	repo     Repository
	notifier Notifier
	log      logger.Logger
	now      calendar.Clock
	loc      *time.Location
	inflight sync.WaitGroup
}

func NewService(repo Repository, notifier Notifier, log logger.Logger, now calendar.Clock, loc *time.Location) *Service {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, notifier: notifier, log: log, now: now, loc: loc}
}

func (s *Service) today() string {
	return calendar.Format(calendar.Today(s.now(), s.loc))
}

// Register records a public visit request in pending state.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Visitor, error) {
	visitor := Visitor{
		ID:               uuid.NewString(),
		FullName:         strings.TrimSpace(input.FullName),
		Phone:            strings.TrimSpace(input.Phone),
		Email:            strings.TrimSpace(input.Email),
		Purpose:          strings.TrimSpace(input.Purpose),
		VisitDate:        strings.TrimSpace(input.VisitDate),
		VisitTime:        strings.TrimSpace(input.VisitTime),
		NumberOfVisitors: input.NumberOfVisitors,
		VehicleNumber:    strings.ToUpper(strings.TrimSpace(input.VehicleNumber)),
		Status:           StatusPending,
	}
	if input.ResidentID != nil {
		if id := strings.TrimSpace(*input.ResidentID); id != "" {
			visitor.ResidentID = &id
		}
	}
	if visitor.NumberOfVisitors == 0 {
		visitor.NumberOfVisitors = 1
	}

	var v validation.Errors
	v.Collect(visitor)
	if !v.Has("visitDate") && visitor.VisitDate < s.today() {
		v.Add("visitDate", "visit date must not be in the past")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &visitor); err != nil {
		return nil, err
	}
	return &visitor, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Visitor, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Visitor, error) {
	filter.VisitDate = strings.TrimSpace(filter.VisitDate)
	if err := validation.Struct(filter); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

// Approve mints the QR token and persists the approval before any
// notification is attempted; a failed notification never undoes it.
func (s *Service) Approve(ctx context.Context, id string) (*Visitor, error) {
	visitor, err := s.transition(ctx, id, StatusApproved, func(v *Visitor, at time.Time) error {
		token, err := newQRToken()
		if err != nil {
			return fmt.Errorf("generate qr token: %w", err)
		}
		v.QRCode = &token
		v.ApprovedAt = &at
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify("approved", *visitor, s.notifierCall(true))
	return visitor, nil
}

func (s *Service) Reject(ctx context.Context, id string) (*Visitor, error) {
	visitor, err := s.transition(ctx, id, StatusRejected, func(v *Visitor, at time.Time) error {
		v.RejectedAt = &at
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify("rejected", *visitor, s.notifierCall(false))
	return visitor, nil
}

func (s *Service) transition(ctx context.Context, id, target string, apply func(*Visitor, time.Time) error) (*Visitor, error) {
	var result Visitor
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		visitor, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := validateTransition(visitor.Status, target); err != nil {
			return err
		}

		visitor.Status = target
		if err := apply(visitor, s.now().UTC()); err != nil {
			return err
		}
		if err := tx.Update(ctx, visitor); err != nil {
			return err
		}
		result = *visitor
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Verify checks a QR token presented at the gate. Unknown tokens return
// ErrVisitorNotFound; known but unusable ones return a Verification with
// Valid=false.
func (s *Service) Verify(ctx context.Context, token string) (*Verification, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrVisitorNotFound
	}

	visitor, err := s.repo.GetByQRCode(ctx, token)
	if err != nil {
		return nil, err
	}

	switch {
	case visitor.Status != StatusApproved:
		return &Verification{Status: visitor.Status, Message: "visitor pass is not approved", Visitor: *visitor}, nil
	case visitor.VisitDate < s.today():
		return &Verification{Status: StatusExpired, Message: "visitor pass has expired", Visitor: *visitor}, nil
	default:
		return &Verification{Valid: true, Status: StatusApproved, Message: "visitor pass is valid", Visitor: *visitor}, nil
	}
}

// Wait blocks until in-flight notifications have finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

func (s *Service) notifierCall(approved bool) func(context.Context, Visitor) error {
	if s.notifier == nil {
		return nil
	}
	if approved {
		return s.notifier.VisitorApproved
	}
	return s.notifier.VisitorRejected
}

func (s *Service) notify(event string, visitor Visitor, send func(context.Context, Visitor) error) {
	if send == nil {
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("visitors.notify: notifier panicked", "event", event, "visitor_id", visitor.ID, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := send(ctx, visitor); err != nil {
			s.log.InternalError("visitors.notify: send failed", err, "event", event, "visitor_id", visitor.ID)
			return
		}
		s.log.Debug("visitors.notify: sent", "event", event, "visitor_id", visitor.ID)
	}()
}

func validateTransition(current, target string) error {
	allowed, ok := transitions[current]
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, current)
	}
	for _, status := range allowed {
		if status == target {
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current, target)
}

func newQRToken() (string, error) {
	var b [qrTokenBytes]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
