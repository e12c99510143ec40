// Package inmemory keeps every table in process memory. It backs STORE=memory
// for local demos and the service-level tests.
package inmemory

import (
	"sync"
	"time"

	billingdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/billing"
	occupancydomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/occupancy"
	residentsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/residents"
	settingsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/settings"
	visitorsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/visitors"
)

// Store serialises all access behind one mutex. A transaction holds the mutex
// for its whole body and restores a snapshot when the body fails.
type Store struct {
	mu    sync.Mutex
	state *tables
	now   func() time.Time
}

type tables struct {
	rooms       map[string]occupancydomain.Room
	occupancies map[string]occupancydomain.Occupancy
	residents   map[string]residentsdomain.Resident
	nextOfKin   map[string]residentsdomain.NextOfKin
	billings    map[string]billingdomain.Billing
	visitors    map[string]visitorsdomain.Visitor
	settings    *settingsdomain.Settings
}

func NewStore() *Store {
	return &Store{state: newTables(), now: time.Now}
}

func newTables() *tables {
	return &tables{
		rooms:       make(map[string]occupancydomain.Room),
		occupancies: make(map[string]occupancydomain.Occupancy),
		residents:   make(map[string]residentsdomain.Resident),
		nextOfKin:   make(map[string]residentsdomain.NextOfKin),
		billings:    make(map[string]billingdomain.Billing),
		visitors:    make(map[string]visitorsdomain.Visitor),
	}
}

func (t *tables) clone() *tables {
	out := newTables()
	for k, v := range t.rooms {
		out.rooms[k] = v
	}
	for k, v := range t.occupancies {
		out.occupancies[k] = v
	}
	for k, v := range t.residents {
		out.residents[k] = v
	}
	for k, v := range t.nextOfKin {
		out.nextOfKin[k] = v
	}
	for k, v := range t.billings {
		out.billings[k] = v
	}
	for k, v := range t.visitors {
		out.visitors[k] = v
	}
	if t.settings != nil {
		settings := *t.settings
		out.settings = &settings
	}
	return out
}

// session is shared by the per-domain adapters. inTx is true when the caller
// already holds the store mutex.
type session struct {
	store *Store
	inTx  bool
}

func (s session) read(fn func(*tables) error) error {
	if !s.inTx {
		s.store.mu.Lock()
		defer s.store.mu.Unlock()
	}
	return fn(s.store.state)
}

func (s session) transaction(fn func(session) error) error {
	if s.inTx {
		return fn(s)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	snapshot := s.store.state.clone()
	if err := fn(session{store: s.store, inTx: true}); err != nil {
		s.store.state = snapshot
		return err
	}
	return nil
}

func (s session) stamp() time.Time {
	return s.store.now().UTC()
}

func (s *Store) Occupancy() *OccupancyRepository {
	return &OccupancyRepository{session: session{store: s}}
}

func (s *Store) Residents() *ResidentsRepository {
	return &ResidentsRepository{session: session{store: s}}
}

func (s *Store) Billing() *BillingRepository {
	return &BillingRepository{session: session{store: s}}
}

func (s *Store) Visitors() *VisitorsRepository {
	return &VisitorsRepository{session: session{store: s}}
}

func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{session: session{store: s}}
}
