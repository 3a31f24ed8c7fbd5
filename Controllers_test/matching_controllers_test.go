package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/velourbar/members-app/controllers"
	"github.com/velourbar/members-app/middlewares"
	"github.com/velourbar/members-app/models"
	"github.com/velourbar/members-app/services"
	"github.com/velourbar/members-app/utils"
)

type matchingEnv struct {
	db     *gorm.DB
	svc    *services.MatchingService
	router *gin.Engine
	now    time.Time
}

func setupMatchingEnv(t *testing.T) *matchingEnv {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Membership{},
		&models.MatchingRequest{},
		&models.MatchingHistory{},
		&models.Notification{},
	))

	env := &matchingEnv{
		db:  db,
		now: time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC),
	}
	env.svc = services.NewMatchingService(db)
	env.svc.Now = func() time.Time { return env.now }

	matchingCtrl := controllers.NewMatchingController(env.svc)

	r := gin.New()
	auth := r.Group("/api")
	auth.Use(middlewares.AuthMiddleware())
	auth.GET("/matching/requests", matchingCtrl.ListRequests)
	auth.POST("/matching/requests", matchingCtrl.CreateRequest)
	auth.POST("/matching/requests/:request_id/accept", matchingCtrl.AcceptRequest)
	auth.POST("/matching/requests/:request_id/reject", matchingCtrl.RejectRequest)
	auth.POST("/matching/requests/:request_id/cancel", matchingCtrl.CancelRequest)
	auth.GET("/matching/history", matchingCtrl.GetHistory)
	env.router = r

	return env
}

func (e *matchingEnv) seedPaidMember(t *testing.T, name, tier string) (models.User, string) {
	user := models.User{Name: name, Email: name + "@example.com", Password: "x", Role: "member"}
	require.NoError(t, e.db.Create(&user).Error)
	require.NoError(t, e.db.Create(&models.Membership{
		UserID: user.ID, Type: models.MembershipPaid, Tier: tier,
	}).Error)

	token, err := utils.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)
	return user, token
}

func (e *matchingEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(raw)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func createBody(toID uint) map[string]any {
	return map[string]any{
		"to_user_id": toID,
		"proposed_dates": []map[string]string{
			{"date": "2026-03-20", "start_time": "19:00", "end_time": "21:00"},
		},
		"message":      "Drinks this weekend?",
		"introduction": "Regular at the counter, into jazz records.",
		"topic":        "jazz",
	}
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestMatchingRequiresAuth(t *testing.T) {
	env := setupMatchingEnv(t)

	w := env.do(t, "GET", "/api/matching/requests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, "POST", "/api/matching/requests", "", createBody(1))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMatchingCreateAndList(t *testing.T) {
	env := setupMatchingEnv(t)
	_, senderToken := env.seedPaidMember(t, "sender", models.TierGold)
	recipient, recipientToken := env.seedPaidMember(t, "recipient", models.TierSilver)

	w := env.do(t, "POST", "/api/matching/requests", senderToken, createBody(recipient.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]any)
	assert.Equal(t, "pending", data["status"])

	w = env.do(t, "GET", "/api/matching/requests?type=received", recipientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeEnvelope(t, w)
	rows := resp["data"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "sender", row["from_user"].(map[string]any)["name"])

	w = env.do(t, "GET", "/api/matching/requests?type=bogus", senderToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatchingCreateNotPaid(t *testing.T) {
	env := setupMatchingEnv(t)
	recipient, _ := env.seedPaidMember(t, "recipient", models.TierGold)

	free := models.User{Name: "free", Email: "free@example.com", Password: "x", Role: "member"}
	require.NoError(t, env.db.Create(&free).Error)
	require.NoError(t, env.db.Create(&models.Membership{
		UserID: free.ID, Type: models.MembershipFree, Tier: models.TierBronze,
	}).Error)
	freeToken, err := utils.GenerateToken(free.ID, free.Role)
	require.NoError(t, err)

	w := env.do(t, "POST", "/api/matching/requests", freeToken, createBody(recipient.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "paid members only")
}

func TestMatchingDuplicatePending(t *testing.T) {
	env := setupMatchingEnv(t)
	_, senderToken := env.seedPaidMember(t, "sender", models.TierGold)
	recipient, _ := env.seedPaidMember(t, "recipient", models.TierGold)

	w := env.do(t, "POST", "/api/matching/requests", senderToken, createBody(recipient.ID))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, "POST", "/api/matching/requests", senderToken, createBody(recipient.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "pending request")
}

func TestMatchingQuotaExceeded(t *testing.T) {
	env := setupMatchingEnv(t)
	_, senderToken := env.seedPaidMember(t, "sender", models.TierGold)

	for i := 0; i < 20; i++ {
		recipient, _ := env.seedPaidMember(t, fmt.Sprintf("recipient-%d", i), models.TierSilver)
		w := env.do(t, "POST", "/api/matching/requests", senderToken, createBody(recipient.ID))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	extra, _ := env.seedPaidMember(t, "recipient-extra", models.TierSilver)
	w := env.do(t, "POST", "/api/matching/requests", senderToken, createBody(extra.ID))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "20")
}

func TestMatchingAcceptAndHistory(t *testing.T) {
	env := setupMatchingEnv(t)
	_, senderToken := env.seedPaidMember(t, "sender", models.TierGold)
	recipient, recipientToken := env.seedPaidMember(t, "recipient", models.TierGold)

	w := env.do(t, "POST", "/api/matching/requests", senderToken, createBody(recipient.ID))
	require.Equal(t, http.StatusOK, w.Code)
	reqID := int(decodeEnvelope(t, w)["data"].(map[string]any)["id"].(float64))

	accept := map[string]any{
		"selected_date": map[string]string{"date": "2026-03-20", "start_time": "19:00", "end_time": "21:00"},
	}
	w = env.do(t, "POST", fmt.Sprintf("/api/matching/requests/%d/accept", reqID), recipientToken, accept)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, "accepted", data["status"])

	// Both parties see the realized match.
	for _, token := range []string{senderToken, recipientToken} {
		w = env.do(t, "GET", "/api/matching/history", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		rows := decodeEnvelope(t, w)["data"].([]any)
		require.Len(t, rows, 1)
	}
}

func TestMatchingAcceptMissingDate(t *testing.T) {
	env := setupMatchingEnv(t)
	_, senderToken := env.seedPaidMember(t, "sender", models.TierGold)
	recipient, recipientToken := env.seedPaidMember(t, "recipient", models.TierGold)

	w := env.do(t, "POST", "/api/matching/requests", senderToken, createBody(recipient.ID))
	require.Equal(t, http.StatusOK, w.Code)
	reqID := int(decodeEnvelope(t, w)["data"].(map[string]any)["id"].(float64))

	w = env.do(t, "POST", fmt.Sprintf("/api/matching/requests/%d/accept", reqID), recipientToken, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "selected_date")
}

func TestMatchingRejectForeignRequest(t *testing.T) {
	env := setupMatchingEnv(t)
	_, senderToken := env.seedPaidMember(t, "sender", models.TierGold)
	recipient, _ := env.seedPaidMember(t, "recipient", models.TierGold)
	_, outsiderToken := env.seedPaidMember(t, "outsider", models.TierGold)

	w := env.do(t, "POST", "/api/matching/requests", senderToken, createBody(recipient.ID))
	require.Equal(t, http.StatusOK, w.Code)
	reqID := int(decodeEnvelope(t, w)["data"].(map[string]any)["id"].(float64))

	// Foreign and nonexistent requests are indistinguishable.
	w = env.do(t, "POST", fmt.Sprintf("/api/matching/requests/%d/reject", reqID), outsiderToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, "POST", "/api/matching/requests/99999/reject", outsiderToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMatchingAcceptExpired(t *testing.T) {
	env := setupMatchingEnv(t)
	_, senderToken := env.seedPaidMember(t, "sender", models.TierGold)
	recipient, recipientToken := env.seedPaidMember(t, "recipient", models.TierGold)

	w := env.do(t, "POST", "/api/matching/requests", senderToken, createBody(recipient.ID))
	require.Equal(t, http.StatusOK, w.Code)
	reqID := int(decodeEnvelope(t, w)["data"].(map[string]any)["id"].(float64))

	env.now = env.now.Add(73 * time.Hour)

	accept := map[string]any{"selected_date": map[string]string{"date": "2026-03-20"}}
	w = env.do(t, "POST", fmt.Sprintf("/api/matching/requests/%d/accept", reqID), recipientToken, accept)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "expired")

	// A subsequent list shows the materialized expiry.
	w = env.do(t, "GET", "/api/matching/requests?type=sent", senderToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := decodeEnvelope(t, w)["data"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "expired", rows[0].(map[string]any)["status"])
}

func TestMatchingCancel(t *testing.T) {
	env := setupMatchingEnv(t)
	_, senderToken := env.seedPaidMember(t, "sender", models.TierGold)
	recipient, recipientToken := env.seedPaidMember(t, "recipient", models.TierGold)

	w := env.do(t, "POST", "/api/matching/requests", senderToken, createBody(recipient.ID))
	require.Equal(t, http.StatusOK, w.Code)
	reqID := int(decodeEnvelope(t, w)["data"].(map[string]any)["id"].(float64))

	// The recipient cannot cancel, only the sender.
	w = env.do(t, "POST", fmt.Sprintf("/api/matching/requests/%d/cancel", reqID), recipientToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, "POST", fmt.Sprintf("/api/matching/requests/%d/cancel", reqID), senderToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, "cancelled", data["status"])
}
