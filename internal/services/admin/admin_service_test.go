package admin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/skillswap-api/internal/logger"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/services/profile"
	"github.com/rajivgeraev/skillswap-api/internal/store"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

func newTestService(t *testing.T) (*AdminService, *profile.ProfileService, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	profiles := profile.NewProfileService(st, logger.Discard())
	s := NewAdminService(st, profiles, logger.Discard())

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s, profiles, st
}

func TestCreateReportValidation(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateReport(ctx, models.Report{ReporterID: "a", Reason: "spam"})
	assert.ErrorIs(t, err, ErrInvalidReport)
	_, err = s.CreateReport(ctx, models.Report{ReporterID: "a", ReportedUserID: "a", Reason: "spam"})
	assert.ErrorIs(t, err, ErrSelfReport)
	_, err = s.CreateReport(ctx, models.Report{ReporterID: "a", ReportedUserID: "b", Reason: "  "})
	assert.ErrorIs(t, err, ErrInvalidReport)
}

func TestReportsNewestFirst(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := s.CreateReport(ctx, models.Report{ReporterID: "a", ReportedUserID: "b", Reason: "spam"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, first.Status)
	second, err := s.CreateReport(ctx, models.Report{ReporterID: "c", ReportedUserID: "b", Reason: "rude"})
	require.NoError(t, err)

	reports, err := s.Reports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, second.ID, reports[0].ID)
	assert.Equal(t, first.ID, reports[1].ID)
}

func TestBanUser(t *testing.T) {
	s, profiles, st := newTestService(t)
	ctx := context.Background()

	_, err := profiles.Create(ctx, models.UserProfile{ID: "b", Name: "Bob"})
	require.NoError(t, err)

	action, err := s.BanUser(ctx, "b", "admin")
	require.NoError(t, err)
	assert.Equal(t, "ban_user", action.ActionType)
	assert.Equal(t, "b", action.TargetID)

	p, err := profiles.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusBanned, p.Status)

	docs, err := st.Query(ctx, store.From(models.CollectionAdminActions))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "admin", docs[0].Fields.String("adminId"))

	_, err = s.BanUser(ctx, "ghost", "admin")
	assert.ErrorIs(t, err, profile.ErrProfileNotFound)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s, _, _ := newTestService(t)
	jwtService := utils.NewJWTService("test-secret")

	adminID := uuid.NewString()
	userID := uuid.NewString()

	app := fiber.New()
	s.SetupRoutes(app, middleware.AuthMiddleware(jwtService), func(id string) bool { return id == adminID })

	get := func(userID string) int {
		token, err := jwtService.GenerateToken(userID)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/admin/reports", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusForbidden, get(userID))
	assert.Equal(t, fiber.StatusOK, get(adminID))

	for _, path := range []string{"/api/reports", "/api/admin/users/" + userID + "/ban"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}

	token, err := jwtService.GenerateToken(userID)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/reports",
		strings.NewReader(`{"reportedUserId":"`+adminID+`","reason":"spam"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Report models.Report `json:"report"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, userID, created.Report.ReporterID)
}
