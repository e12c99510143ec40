package visitors_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/validation"
	visitorsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/visitors"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/repository/inmemory"
	"github.com/cg-naveen/sukha-pms-new-sub000/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	approved []visitorsdomain.Visitor
	rejected []visitorsdomain.Visitor
	err      error
	panics   bool
}

func (n *recordingNotifier) VisitorApproved(_ context.Context, visitor visitorsdomain.Visitor) error {
	if n.panics {
		panic("gateway exploded")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approved = append(n.approved, visitor)
	return n.err
}

func (n *recordingNotifier) VisitorRejected(_ context.Context, visitor visitorsdomain.Visitor) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejected = append(n.rejected, visitor)
	return n.err
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

type fixture struct {
	clock    *clock
	notifier *recordingNotifier
	service  *visitorsdomain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := &clock{now: time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)}
	notifier := &recordingNotifier{}
	service := visitorsdomain.NewService(inmemory.NewStore().Visitors(), notifier, logger.Nop(), c.Now, time.UTC)
	return &fixture{clock: c, notifier: notifier, service: service}
}

func (f *fixture) register(t *testing.T, visitDate string) *visitorsdomain.Visitor {
	t.Helper()
	visitor, err := f.service.Register(context.Background(), visitorsdomain.RegisterInput{
		FullName:      "Meera Das",
		Phone:         "+91 98450 00000",
		VisitDate:     visitDate,
		VisitTime:     "16:30",
		VehicleNumber: " ka01ab1234 ",
	})
	require.NoError(t, err)
	return visitor
}

func TestRegisterCreatesPendingVisit(t *testing.T) {
	f := newFixture(t)
	visitor := f.register(t, "2024-03-10")

	assert.Equal(t, visitorsdomain.StatusPending, visitor.Status)
	assert.Equal(t, 1, visitor.NumberOfVisitors)
	assert.Equal(t, "KA01AB1234", visitor.VehicleNumber)
	assert.Nil(t, visitor.QRCode)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Register(context.Background(), visitorsdomain.RegisterInput{
		Email:            "nope",
		VisitDate:        "2024-03-09",
		VisitTime:        "25:99",
		NumberOfVisitors: 21,
	})

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"fullName", "phone", "email", "visitDate", "visitTime", "numberOfVisitors"} {
		assert.Contains(t, verr.Fields, field)
	}
}

func TestApproveIssuesPassAndNotifies(t *testing.T) {
	f := newFixture(t)
	visitor := f.register(t, "2024-03-12")

	approved, err := f.service.Approve(context.Background(), visitor.ID)
	require.NoError(t, err)
	assert.Equal(t, visitorsdomain.StatusApproved, approved.Status)
	require.NotNil(t, approved.QRCode)
	assert.Len(t, *approved.QRCode, 64)
	require.NotNil(t, approved.ApprovedAt)

	f.service.Wait()
	f.notifier.mu.Lock()
	require.Len(t, f.notifier.approved, 1)
	assert.Equal(t, *approved.QRCode, *f.notifier.approved[0].QRCode)
	f.notifier.mu.Unlock()

	result, err := f.service.Verify(context.Background(), *approved.QRCode)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, visitorsdomain.StatusApproved, result.Status)
	assert.Equal(t, visitor.ID, result.Visitor.ID)
}

func TestDecisionsAreFinal(t *testing.T) {
	f := newFixture(t)
	visitor := f.register(t, "2024-03-12")

	_, err := f.service.Reject(context.Background(), visitor.ID)
	require.NoError(t, err)

	_, err = f.service.Approve(context.Background(), visitor.ID)
	assert.ErrorIs(t, err, visitorsdomain.ErrInvalidTransition)
	_, err = f.service.Reject(context.Background(), visitor.ID)
	assert.ErrorIs(t, err, visitorsdomain.ErrInvalidTransition)

	other := f.register(t, "2024-03-12")
	_, err = f.service.Approve(context.Background(), other.ID)
	require.NoError(t, err)
	_, err = f.service.Approve(context.Background(), other.ID)
	assert.ErrorIs(t, err, visitorsdomain.ErrInvalidTransition)

	_, err = f.service.Approve(context.Background(), "missing")
	assert.ErrorIs(t, err, visitorsdomain.ErrVisitorNotFound)

	f.service.Wait()
}

func TestVerifyExpiredPass(t *testing.T) {
	f := newFixture(t)
	visitor := f.register(t, "2024-03-10")
	approved, err := f.service.Approve(context.Background(), visitor.ID)
	require.NoError(t, err)
	f.service.Wait()

	f.clock.Set(time.Date(2024, time.March, 11, 0, 5, 0, 0, time.UTC))

	result, err := f.service.Verify(context.Background(), *approved.QRCode)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, visitorsdomain.StatusExpired, result.Status)

	stored, err := f.service.Get(context.Background(), visitor.ID)
	require.NoError(t, err)
	assert.Equal(t, visitorsdomain.StatusApproved, stored.Status)
}

func TestVerifyUnknownToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Verify(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, visitorsdomain.ErrVisitorNotFound)

	_, err = f.service.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, visitorsdomain.ErrVisitorNotFound)
}

func TestNotificationFailureDoesNotUndoApproval(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("gateway down")
	visitor := f.register(t, "2024-03-12")

	approved, err := f.service.Approve(context.Background(), visitor.ID)
	require.NoError(t, err)
	f.service.Wait()

	stored, err := f.service.Get(context.Background(), visitor.ID)
	require.NoError(t, err)
	assert.Equal(t, visitorsdomain.StatusApproved, stored.Status)
	assert.Equal(t, *approved.QRCode, *stored.QRCode)
}

func TestNotifierPanicIsContained(t *testing.T) {
	f := newFixture(t)
	f.notifier.panics = true
	visitor := f.register(t, "2024-03-12")

	_, err := f.service.Approve(context.Background(), visitor.ID)
	require.NoError(t, err)
	assert.NotPanics(t, f.service.Wait)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	first := f.register(t, "2024-03-12")
	f.register(t, "2024-03-13")
	_, err := f.service.Approve(context.Background(), first.ID)
	require.NoError(t, err)
	f.service.Wait()

	approved, err := f.service.List(context.Background(), visitorsdomain.ListFilter{Status: visitorsdomain.StatusApproved})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, first.ID, approved[0].ID)

	all, err := f.service.List(context.Background(), visitorsdomain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2024-03-13", all[0].VisitDate)

	_, err = f.service.List(context.Background(), visitorsdomain.ListFilter{Status: "expired"})
	var verr *validation.Error
	assert.ErrorAs(t, err, &verr)
}
