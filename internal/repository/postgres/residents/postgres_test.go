package residents_test

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
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.NewSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gormDB
}

func count(t *testing.T, gormDB *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gormDB.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func TestResidentLifecycleOnSQLite(t *testing.T) {
	gormDB := openDB(t)
	ctx := context.Background()
	rooms := occupancydomain.NewService(occupancyrepo.NewPostgres(gormDB))
	residents := residentsdomain.NewService(residentsrepo.NewPostgres(gormDB), func() time.Time { return fixedNow }, time.UTC)

	r1, err := rooms.CreateRoom(ctx, occupancydomain.CreateRoomInput{UnitNumber: "R1", MonthlyRate: 800})
	require.NoError(t, err)
	r2, err := rooms.CreateRoom(ctx, occupancydomain.CreateRoomInput{UnitNumber: "R2", MonthlyRate: 1200})
	require.NoError(t, err)

	resident, err := residents.CreateResident(ctx, residentsdomain.CreateResidentInput{FullName: "Asha Rao", RoomID: &r1.ID})
	require.NoError(t, err)

	_, err = residents.UpdateResident(ctx, resident.ID, residentsdomain.UpdateResidentInput{
		Room: residentsdomain.RoomAssignment{Set: true, ID: &r2.ID},
	})
	require.NoError(t, err)

	stored, err := residents.GetResident(ctx, resident.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RoomID)
	assert.Equal(t, r2.ID, *stored.RoomID)
	assert.Equal(t, int64(1), count(t, gormDB, &occupancydomain.Occupancy{}, "resident_id = ? AND active = ?", resident.ID, true))

	got, err := rooms.GetRoom(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, occupancydomain.RoomStatusVacant, got.Status)

	_, err = residents.AddNextOfKin(ctx, resident.ID, residentsdomain.CreateNextOfKinInput{FullName: "Ravi Rao"})
	require.NoError(t, err)
	require.NoError(t, billingrepo.NewPostgres(gormDB).Create(ctx, &billingdomain.Billing{
		ID: "00000000-0000-0000-0000-0000000000b1", ResidentID: resident.ID, Amount: 1200, DueDate: "2024-03-01", Status: billingdomain.StatusPending,
	}))

	summary, err := residents.DeleteResident(ctx, resident.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Billings)
	assert.Equal(t, int64(1), summary.NextOfKin)
	assert.Equal(t, 2, summary.Occupancies)

	assert.Zero(t, count(t, gormDB, &occupancydomain.Occupancy{}, "resident_id = ?", resident.ID))
	assert.Zero(t, count(t, gormDB, &billingdomain.Billing{}, "resident_id = ?", resident.ID))
	got, err = rooms.GetRoom(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, occupancydomain.RoomStatusVacant, got.Status)
}

func TestFailedAssignmentRollsBackResident(t *testing.T) {
	gormDB := openDB(t)
	residents := residentsdomain.NewService(residentsrepo.NewPostgres(gormDB), func() time.Time { return fixedNow }, time.UTC)

	missing := "00000000-0000-0000-0000-00000000dead"
	_, err := residents.CreateResident(context.Background(), residentsdomain.CreateResidentInput{FullName: "Asha Rao", RoomID: &missing})
	assert.ErrorIs(t, err, occupancydomain.ErrRoomNotFound)
	assert.Zero(t, count(t, gormDB, &residentsdomain.Resident{}, "1 = 1"))
}

func TestSearchResidents(t *testing.T) {
	gormDB := openDB(t)
	repo := residentsrepo.NewPostgres(gormDB)
	residents := residentsdomain.NewService(repo, func() time.Time { return fixedNow }, time.UTC)
	ctx := context.Background()

	_, err := residents.CreateResident(ctx, residentsdomain.CreateResidentInput{FullName: "Asha Rao", Email: "asha@example.com", Classification: residentsdomain.ClassificationAssisted})
	require.NoError(t, err)
	_, err = residents.CreateResident(ctx, residentsdomain.CreateResidentInput{FullName: "Bala Iyer"})
	require.NoError(t, err)

	found, err := residents.ListResidents(ctx, residentsdomain.ListFilter{Search: "ASHA@"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Asha Rao", found[0].FullName)

	found, err = residents.ListResidents(ctx, residentsdomain.ListFilter{Classification: residentsdomain.ClassificationIndependent})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Bala Iyer", found[0].FullName)

	assert.ErrorIs(t, repo.DeleteNextOfKin(ctx, "missing"), residentsdomain.ErrNextOfKinNotFound)
}
