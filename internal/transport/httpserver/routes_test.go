package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/config"
	billingdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/billing"
	occupancydomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/occupancy"
	residentsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/residents"
	settingsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/settings"
	visitorsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/visitors"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/notify/whatsapp"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/repository/inmemory"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/transport/httpserver"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/transport/httpserver/handler"
	"github.com/cg-naveen/sukha-pms-new-sub000/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cronSecret = "cron-secret"

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

type testEnv struct {
	router   http.Handler
	clock    *clock
	visitors *visitorsdomain.Service
}

func newEnv(t *testing.T, role string) *testEnv {
	t.Helper()
	c := &clock{now: time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)}
	log := logger.Nop()
	store := inmemory.NewStore()

	settings := settingsdomain.NewService(settingsdomain.ServiceDeps{
		Repo:     store.Settings(),
		Cache:    inmemory.NewSettingsCache(),
		CacheTTL: time.Minute,
		Defaults: settingsdomain.Settings{PropertyName: "Sukha", BillingGenerationEnabled: true, DefaultBillingAccount: "main"},
	})
	visitors := visitorsdomain.NewService(store.Visitors(), whatsapp.NewLogNotifier(log), log, c.Now, time.UTC)
	handlers := handler.New(
		occupancydomain.NewService(store.Occupancy()),
		residentsdomain.NewService(store.Residents(), c.Now, time.UTC),
		billingdomain.NewService(store.Billing(), c.Now, time.UTC),
		visitors,
		settings,
		log,
	)

	cfg := config.Config{
		CronSecret: cronSecret,
		Auth: config.AuthConfig{
			SkipAuth:     true,
			MockUserID:   "user-1",
			MockUserName: "Front Desk",
			MockUserRole: role,
		},
	}
	t.Cleanup(visitors.Wait)
	return &testEnv{router: httpserver.NewRouter(cfg, handlers, log), clock: c, visitors: visitors}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers ...string) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var payload map[string]interface{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec.Code, payload
}

func TestHealthAndAuthMe(t *testing.T) {
	env := newEnv(t, "admin")

	status, body := env.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = env.do(t, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user-1", body["id"])
	assert.Equal(t, "admin", body["role"])
}

func TestRoomAndResidentLifecycle(t *testing.T) {
	env := newEnv(t, "admin")

	status, room := env.do(t, http.MethodPost, "/api/rooms", map[string]interface{}{"unitNumber": "A-101", "monthlyRate": 800})
	require.Equal(t, http.StatusCreated, status)
	roomID := room["id"].(string)
	assert.Equal(t, "vacant", room["status"])

	status, body := env.do(t, http.MethodPost, "/api/rooms", map[string]interface{}{"unitNumber": "A-101"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "unit_number_taken", body["code"])

	status, resident := env.do(t, http.MethodPost, "/api/residents", map[string]interface{}{"fullName": "Asha Rao", "billingDate": 10, "roomId": roomID})
	require.Equal(t, http.StatusCreated, status)
	residentID := resident["id"].(string)
	assert.Equal(t, roomID, resident["roomId"])

	status, room = env.do(t, http.MethodGet, "/api/rooms/"+roomID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "occupied", room["status"])

	status, body = env.do(t, http.MethodDelete, "/api/rooms/"+roomID, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "room_occupied", body["code"])

	status, resident = env.do(t, http.MethodPut, "/api/residents/"+residentID, map[string]interface{}{"roomId": nil})
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, resident["roomId"])

	status, room = env.do(t, http.MethodGet, "/api/rooms/"+roomID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "vacant", room["status"])

	status, summary := env.do(t, http.MethodDelete, "/api/residents/"+residentID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, summary["occupanciesDeleted"])

	status, body = env.do(t, http.MethodGet, "/api/residents/"+residentID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "resident_not_found", body["code"])
}

func TestValidationErrorShape(t *testing.T) {
	env := newEnv(t, "staff")

	status, body := env.do(t, http.MethodPost, "/api/residents", map[string]interface{}{"fullName": "", "billingDate": 40})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation failed", body["message"])
	details := body["details"].(map[string]interface{})
	assert.Contains(t, details, "fullName")
	assert.Contains(t, details, "billingDate")

	status, body = env.do(t, http.MethodPost, "/api/residents", map[string]interface{}{"fullName": "X", "unknown": true})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", body["code"])
}

func TestRoleChecks(t *testing.T) {
	viewer := newEnv(t, "viewer")
	status, body := viewer.do(t, http.MethodPost, "/api/rooms", map[string]interface{}{"unitNumber": "A-101"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", body["code"])

	status, _ = viewer.do(t, http.MethodGet, "/api/rooms", nil)
	assert.Equal(t, http.StatusOK, status)

	staff := newEnv(t, "staff")
	status, _ = staff.do(t, http.MethodPut, "/api/settings", map[string]interface{}{"propertyName": "X"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestGenerateBillingsWithCronSecret(t *testing.T) {
	env := newEnv(t, "viewer")

	status, body := env.do(t, http.MethodPost, "/api/billings/generate", nil)
	assert.Equal(t, http.StatusForbidden, status, "viewer without the secret")
	assert.Equal(t, "forbidden", body["code"])

	status, body = env.do(t, http.MethodPost, "/api/billings/generate", nil, "Authorization", "Bearer "+cronSecret)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "billing generation completed", body["message"])
	assert.Equal(t, "2024-03-10", body["date"])
	results := body["results"].(map[string]interface{})
	assert.EqualValues(t, 0, results["generated"])
	assert.Equal(t, []interface{}{}, results["errors"])
}

func TestGenerateBillingsEndToEnd(t *testing.T) {
	env := newEnv(t, "admin")

	_, room := env.do(t, http.MethodPost, "/api/rooms", map[string]interface{}{"unitNumber": "A-101", "monthlyRate": 800})
	_, resident := env.do(t, http.MethodPost, "/api/residents", map[string]interface{}{"fullName": "Asha Rao", "billingDate": 10, "roomId": room["id"]})

	status, body := env.do(t, http.MethodPost, "/api/billings/generate", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["results"].(map[string]interface{})["generated"])

	status, body = env.do(t, http.MethodPost, "/api/billings/generate", nil)
	require.Equal(t, http.StatusOK, status)
	results := body["results"].(map[string]interface{})
	assert.EqualValues(t, 0, results["generated"])
	assert.EqualValues(t, 1, results["skipped"])

	status, _ = env.do(t, http.MethodPut, "/api/settings", map[string]interface{}{"billingGenerationEnabled": false})
	require.Equal(t, http.StatusOK, status)
	status, body = env.do(t, http.MethodPost, "/api/billings/generate", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "billing generation is disabled", body["message"])

	status, body = env.do(t, http.MethodPost, "/api/billings", map[string]interface{}{"residentId": resident["id"], "amount": 800, "dueDate": "2024-03-10"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "duplicate_due_date", body["code"])
}

func TestVisitorPassFlow(t *testing.T) {
	env := newEnv(t, "staff")

	status, registered := env.do(t, http.MethodPost, "/api/public/visitors", map[string]interface{}{
		"fullName":  "Meera Das",
		"phone":     "+919845000000",
		"visitDate": "2024-03-10",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "pending", registered["status"])
	assert.NotContains(t, registered, "qrCode")
	visitorID := registered["id"].(string)

	status, approved := env.do(t, http.MethodPost, "/api/visitors/"+visitorID+"/approve", nil)
	require.Equal(t, http.StatusOK, status)
	token := approved["qrCode"].(string)
	require.NotEmpty(t, token)

	status, body := env.do(t, http.MethodPost, "/api/visitors/"+visitorID+"/reject", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "invalid_transition", body["code"])

	status, body = env.do(t, http.MethodPost, "/api/public/visitors/verify/"+token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	visitor := body["visitor"].(map[string]interface{})
	assert.Nil(t, visitor["qrCode"])

	env.clock.Set(time.Date(2024, time.March, 11, 8, 0, 0, 0, time.UTC))
	status, body = env.do(t, http.MethodPost, "/api/public/visitors/verify/"+token, nil)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "expired", body["status"])

	status, body = env.do(t, http.MethodPost, "/api/public/visitors/verify/unknown", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "visitor_not_found", body["code"])
}

func TestMalformedIDs(t *testing.T) {
	env := newEnv(t, "admin")

	for _, path := range []string{"/api/rooms/abc", "/api/residents/abc", "/api/billings/abc", "/api/visitors/abc"} {
		status, body := env.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, status, path)
		assert.Contains(t, body["code"], "not_found", path)
	}

	status, resident := env.do(t, http.MethodPost, "/api/residents", map[string]interface{}{"fullName": "Asha Rao"})
	require.Equal(t, http.StatusCreated, status)
	residentID := resident["id"].(string)

	status, body := env.do(t, http.MethodPut, "/api/residents/"+residentID, map[string]interface{}{"roomId": "x"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["details"], "roomId")

	status, body = env.do(t, http.MethodPost, "/api/residents", map[string]interface{}{"fullName": "Ravi", "roomId": "101"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["details"], "roomId")

	status, body = env.do(t, http.MethodPost, "/api/billings", map[string]interface{}{"residentId": "x", "amount": 800, "dueDate": "2024-03-10"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["details"], "residentId")

	status, body = env.do(t, http.MethodPost, "/api/public/visitors", map[string]interface{}{
		"fullName":   "Meera Das",
		"phone":      "+919845000000",
		"visitDate":  "2024-03-10",
		"residentId": "nope",
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["details"], "residentId")

	status, _ = env.do(t, http.MethodGet, "/api/residents?roomId=x", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = env.do(t, http.MethodGet, "/api/billings?residentId=x", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestManualRoomStatusOnOccupiedRoom(t *testing.T) {
	env := newEnv(t, "admin")

	_, room := env.do(t, http.MethodPost, "/api/rooms", map[string]interface{}{"unitNumber": "A-101", "monthlyRate": 800})
	roomID := room["id"].(string)
	status, _ := env.do(t, http.MethodPost, "/api/residents", map[string]interface{}{"fullName": "Asha Rao", "roomId": roomID})
	require.Equal(t, http.StatusCreated, status)

	status, body := env.do(t, http.MethodPut, "/api/rooms/"+roomID, map[string]interface{}{"status": "maintenance"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "room_occupied", body["code"])

	_, room = env.do(t, http.MethodGet, "/api/rooms/"+roomID, nil)
	assert.Equal(t, "occupied", room["status"])
}
