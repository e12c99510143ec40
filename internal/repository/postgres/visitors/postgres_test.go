package visitors_test

import (
	"context"
	"testing"
	"time"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/db"
	visitorsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/visitors"
	visitorsrepo "github.com/cg-naveen/sukha-pms-new-sub000/internal/repository/postgres/visitors"
	"github.com/cg-naveen/sukha-pms-new-sub000/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisitorPassOnSQLite(t *testing.T) {
	gormDB, err := db.NewSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	now := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	repo := visitorsrepo.NewPostgres(gormDB)
	service := visitorsdomain.NewService(repo, nil, logger.Nop(), func() time.Time { return now }, time.UTC)
	ctx := context.Background()

	visitor, err := service.Register(ctx, visitorsdomain.RegisterInput{FullName: "Meera", Phone: "+60123456789", VisitDate: "2024-03-10"})
	require.NoError(t, err)
	other, err := service.Register(ctx, visitorsdomain.RegisterInput{FullName: "Kiran", Phone: "+60123456780", VisitDate: "2024-03-11"})
	require.NoError(t, err)

	approved, err := service.Approve(ctx, visitor.ID)
	require.NoError(t, err)
	require.NotNil(t, approved.QRCode)

	_, err = service.Reject(ctx, other.ID)
	require.NoError(t, err)

	verification, err := service.Verify(ctx, *approved.QRCode)
	require.NoError(t, err)
	assert.True(t, verification.Valid)
	assert.Equal(t, visitor.ID, verification.Visitor.ID)

	_, err = service.Verify(ctx, "not-a-token")
	assert.ErrorIs(t, err, visitorsdomain.ErrVisitorNotFound)

	pending, err := service.List(ctx, visitorsdomain.ListFilter{Status: visitorsdomain.StatusRejected})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Kiran", pending[0].FullName)

	all, err := repo.List(ctx, visitorsdomain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2024-03-11", all[0].VisitDate)

	_, err = repo.GetForUpdate(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, visitorsdomain.ErrVisitorNotFound)
}
