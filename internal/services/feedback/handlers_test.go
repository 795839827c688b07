package feedback

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
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/store"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

func send(t *testing.T, app *fiber.App, method, path, token, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestFeedbackRoutes(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	fromID, toID := uuid.NewString(), uuid.NewString()
	seedProfile(t, st, toID)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := st.Create(ctx, models.CollectionSwapRequests, "r1", models.SwapRequest{
		FromUserID: fromID,
		ToUserID:   toID,
		Status:     models.SwapStatusCompleted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}.Fields())
	require.NoError(t, err)

	notifier := new(mockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return("n1", nil)
	s := newTestService(st, notifier)
	jwtService := utils.NewJWTService("test-secret")

	app := fiber.New()
	s.SetupRoutes(app, middleware.AuthMiddleware(jwtService))

	body := `{"swapRequestId":"r1","toUserId":"` + toID + `","rating":4,"comment":"great"}`

	status, _ := send(t, app, http.MethodPost, "/api/feedback", "", body)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = send(t, app, http.MethodGet, "/api/users/"+toID+"/feedback", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	// Автор отзыва берется из токена
	outsiderToken, err := jwtService.GenerateToken(uuid.NewString())
	require.NoError(t, err)
	status, _ = send(t, app, http.MethodPost, "/api/feedback", outsiderToken, body)
	assert.Equal(t, fiber.StatusForbidden, status)

	token, err := jwtService.GenerateToken(fromID)
	require.NoError(t, err)
	status, data := send(t, app, http.MethodPost, "/api/feedback", token, body)
	require.Equal(t, fiber.StatusCreated, status, string(data))

	var created struct {
		Feedback models.Feedback `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(data, &created))
	assert.Equal(t, fromID, created.Feedback.FromUserID)
	assert.Equal(t, "r1_"+fromID, created.Feedback.ID)

	status, _ = send(t, app, http.MethodPost, "/api/feedback", token, body)
	assert.Equal(t, fiber.StatusConflict, status)

	status, data = send(t, app, http.MethodGet, "/api/users/"+toID+"/feedback", token, "")
	require.Equal(t, fiber.StatusOK, status)
	var list struct {
		Feedback []models.Feedback `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list.Feedback, 1)
	assert.Equal(t, 4, list.Feedback[0].Rating)
}
