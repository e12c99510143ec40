// Package settings owns the single-row application settings table.
package settings

import (
	"context"
	"errors"
	"strings"
	"time"

	billingdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/billing"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/validation"
)

const singletonID = 1

var ErrSettingsNotFound = errors.New("settings not found")

type Settings struct {
	ID                       int       `gorm:"primaryKey;autoIncrement:false"`
	PropertyName             string    `gorm:"size:255;not null"`
	BillingGenerationEnabled bool      `gorm:"not null"`
	DefaultBillingAccount    string    `gorm:"size:64;not null"`
	UpdatedAt                time.Time `gorm:"autoUpdateTime"`
}

func (Settings) TableName() string { return "app_settings" }

type UpdateInput struct {
	PropertyName             *string `validate:"omitnil,max=255"`
	BillingGenerationEnabled *bool
	DefaultBillingAccount    *string `validate:"omitnil,min=1,max=64"`
}

type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}

type ServiceDeps struct {
	Repo     Repository
	Cache    Cache
	CacheTTL time.Duration
	// Defaults are reported until an administrator saves the row.
	Defaults Settings
}

type Service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
	defaults Settings
}

func NewService(deps ServiceDeps) *Service {
	cache := deps.Cache
	if cache == nil {
		cache = noopCache{}
	}
	defaults := deps.Defaults
	defaults.ID = singletonID
	return &Service{repo: deps.Repo, cache: cache, cacheTTL: deps.CacheTTL, defaults: defaults}
}

func (s *Service) Get(ctx context.Context) (*Settings, error) {
	if cached, ok := s.cache.Get(); ok {
		return cached, nil
	}

	current, err := s.repo.Get(ctx)
	if errors.Is(err, ErrSettingsNotFound) {
		result := s.defaults
		return &result, nil
	}
	if err != nil {
		return nil, err
	}
	s.cache.Set(current, s.cacheTTL)
	return current, nil
}

func (s *Service) Update(ctx context.Context, input UpdateInput) (*Settings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	input.PropertyName = trimmed(input.PropertyName)
	input.DefaultBillingAccount = trimmed(input.DefaultBillingAccount)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if input.PropertyName != nil {
		current.PropertyName = *input.PropertyName
	}
	if input.BillingGenerationEnabled != nil {
		current.BillingGenerationEnabled = *input.BillingGenerationEnabled
	}
	if input.DefaultBillingAccount != nil {
		current.DefaultBillingAccount = *input.DefaultBillingAccount
	}

	current.ID = singletonID
	if err := s.repo.Save(ctx, current); err != nil {
		s.cache.Clear()
		return nil, err
	}
	s.cache.Set(current, s.cacheTTL)
	return current, nil
}

// GeneratorConfig is read once at the start of a billing run.
func (s *Service) GeneratorConfig(ctx context.Context) (billingdomain.GeneratorConfig, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return billingdomain.GeneratorConfig{}, err
	}
	return billingdomain.GeneratorConfig{
		Enabled:               current.BillingGenerationEnabled,
		DefaultBillingAccount: current.DefaultBillingAccount,
	}, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	out := strings.TrimSpace(*value)
	return &out
}
