package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/db"
	billingdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/billing"
	occupancydomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/occupancy"
	residentsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/residents"
	billingrepo "github.com/cg-naveen/sukha-pms-new-sub000/internal/repository/postgres/billing"
	occupancyrepo "github.com/cg-naveen/sukha-pms-new-sub000/internal/repository/postgres/occupancy"
	residentsrepo "github.com/cg-naveen/sukha-pms-new-sub000/internal/repository/postgres/residents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var march10 = time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)

type fixture struct {
	repo      *billingrepo.PostgresRepository
	rooms     *occupancydomain.Service
	residents *residentsdomain.Service
	billing   *billingdomain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gormDB, err := db.NewSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	clock := func() time.Time { return march10 }
	repo := billingrepo.NewPostgres(gormDB)
	return &fixture{
		repo:      repo,
		rooms:     occupancydomain.NewService(occupancyrepo.NewPostgres(gormDB)),
		residents: residentsdomain.NewService(residentsrepo.NewPostgres(gormDB), clock, time.UTC),
		billing:   billingdomain.NewService(repo, clock, time.UTC),
	}
}

func (f *fixture) resident(t *testing.T, name string, billingDate int, unit string, rate int64) *residentsdomain.Resident {
	t.Helper()
	ctx := context.Background()
	input := residentsdomain.CreateResidentInput{FullName: name, BillingDate: &billingDate}
	if unit != "" {
		room, err := f.rooms.CreateRoom(ctx, occupancydomain.CreateRoomInput{UnitNumber: unit, MonthlyRate: rate})
		require.NoError(t, err)
		input.RoomID = &room.ID
	}
	resident, err := f.residents.CreateResident(ctx, input)
	require.NoError(t, err)
	return resident
}

func TestListCandidatesJoinsActiveRoom(t *testing.T) {
	f := newFixture(t)
	housed := f.resident(t, "Asha Rao", 10, "R1", 800)
	f.resident(t, "Bala Iyer", 10, "", 0)

	candidates, err := f.repo.ListCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, housed.ID, candidates[0].ResidentID)
	require.NotNil(t, candidates[0].MonthlyRate)
	assert.Equal(t, int64(800), *candidates[0].MonthlyRate)
	require.NotNil(t, candidates[0].UnitNumber)
	assert.Equal(t, "R1", *candidates[0].UnitNumber)

	assert.Equal(t, "Bala Iyer", candidates[1].ResidentName)
	assert.Nil(t, candidates[1].OccupancyID)
	assert.Nil(t, candidates[1].RoomID)
}

func TestGenerateOnSQLiteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	resident := f.resident(t, "Asha Rao", 10, "R1", 800)
	f.resident(t, "Bala Iyer", 10, "", 0)
	f.resident(t, "Chitra Nair", 15, "R2", 900)

	input := billingdomain.GenerateInput{
		Config: billingdomain.GeneratorConfig{Enabled: true, DefaultBillingAccount: "operating"},
		Now:    march10,
	}
	first, err := f.billing.Generate(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Generated)
	assert.Equal(t, 1, first.Skipped)

	second, err := f.billing.Generate(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Generated)
	assert.Equal(t, 2, second.Skipped)

	billings, err := f.repo.List(context.Background(), billingdomain.ListFilter{ResidentID: resident.ID})
	require.NoError(t, err)
	require.Len(t, billings, 1)
	assert.Equal(t, int64(800), billings[0].Amount)
	assert.Equal(t, "2024-03-10", billings[0].DueDate)
	assert.Equal(t, billingdomain.StatusNewInvoice, billings[0].Status)
	assert.Equal(t, "operating", billings[0].BillingAccount)
	assert.NotNil(t, billings[0].OccupancyID)
}

func TestUpdateStatusAndMarkOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resident := f.resident(t, "Asha Rao", 1, "", 0)

	for _, due := range []string{"2024-01-01", "2024-02-01", "2024-03-01", "2024-03-20"} {
		require.NoError(t, f.repo.Create(ctx, &billingdomain.Billing{
			ID:         "b-" + due,
			ResidentID: resident.ID,
			Amount:     500,
			DueDate:    due,
			Status:     billingdomain.StatusPending,
		}))
	}

	invoice := "invoices/jan.pdf"
	paidAt := march10
	require.NoError(t, f.repo.UpdateStatus(ctx, "b-2024-01-01", billingdomain.StatusPaid, &invoice, &paidAt))
	assert.ErrorIs(t, f.repo.UpdateStatus(ctx, "missing", billingdomain.StatusPaid, nil, nil), billingdomain.ErrBillingNotFound)

	updated, err := f.repo.MarkOverdue(ctx, "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	overdue, err := f.repo.List(ctx, billingdomain.ListFilter{Status: billingdomain.StatusOverdue})
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	assert.Equal(t, "2024-03-01", overdue[0].DueDate)

	window, err := f.repo.List(ctx, billingdomain.ListFilter{DueFrom: "2024-02-01", DueTo: "2024-03-01"})
	require.NoError(t, err)
	assert.Len(t, window, 2)

	paid, err := f.repo.Get(ctx, "b-2024-01-01")
	require.NoError(t, err)
	require.NotNil(t, paid.InvoiceFile)
	assert.Equal(t, invoice, *paid.InvoiceFile)
	assert.NotNil(t, paid.PaidAt)

	require.NoError(t, f.repo.Delete(ctx, "b-2024-03-20"))
	assert.ErrorIs(t, f.repo.Delete(ctx, "b-2024-03-20"), billingdomain.ErrBillingNotFound)
	assert.ErrorIs(t, f.repo.LockResident(ctx, "ghost"), billingdomain.ErrResidentNotFound)
}
