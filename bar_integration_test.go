package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/velourbar/members-app/middlewares"
	"github.com/velourbar/members-app/models"
	"github.com/velourbar/members-app/router"
	"github.com/velourbar/members-app/services"
	"github.com/velourbar/members-app/utils"
)

// Walks the whole member journey over the real router: register, log in,
// upgrade to paid, exchange a matching request, observe notifications,
// history and admin stats.
func TestMemberJourney(t *testing.T) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Membership{}, &models.MatchingRequest{},
		&models.MatchingHistory{}, &models.Notification{}, &models.VisitPlan{},
		&models.Event{}, &models.BlogPost{},
	))

	svc := services.NewMatchingService(db)
	r := router.SetupRouter(db, svc, middlewares.NewRateLimiter(200, 1))

	call := func(method, path, token string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req, err := http.NewRequest(method, path, &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	register := func(name string) {
		w := call("POST", "/api/auth/register", "", map[string]any{
			"name": name, "email": name + "@example.com", "password": "supersecret",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	login := func(name string) string {
		w := call("POST", "/api/auth/login", "", map[string]any{
			"email": name + "@example.com", "password": "supersecret",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp["data"].(map[string]any)["token"].(string)
	}

	register("haruka")
	register("kenji")
	harukaToken := login("haruka")
	kenjiToken := login("kenji")

	// Free members cannot use matching.
	w := call("POST", "/api/matching/requests", harukaToken, map[string]any{
		"to_user_id":     2,
		"proposed_dates": []map[string]string{{"date": "2026-04-02"}},
		"message":        "hi",
		"introduction":   "hello",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	for _, token := range []string{harukaToken, kenjiToken} {
		w = call("POST", "/api/membership/upgrade", token, map[string]any{"tier": models.TierGold})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	var kenji models.User
	require.NoError(t, db.Where("email = ?", "kenji@example.com").First(&kenji).Error)

	w = call("POST", "/api/matching/requests", harukaToken, map[string]any{
		"to_user_id":     kenji.ID,
		"proposed_dates": []map[string]string{{"date": "2026-04-02", "start_time": "19:00", "end_time": "21:00"}},
		"message":        "Shall we meet at the bar?",
		"introduction":   "Gold member, fan of single malts.",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	reqID := int(created["data"].(map[string]any)["id"].(float64))

	// The recipient was notified.
	w = call("GET", "/api/notifications", kenjiToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "matching_request")

	w = call("POST", fmt.Sprintf("/api/matching/requests/%d/accept", reqID), kenjiToken, map[string]any{
		"selected_date": map[string]string{"date": "2026-04-02", "start_time": "19:00", "end_time": "21:00"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The sender was notified of the acceptance.
	w = call("GET", "/api/notifications", harukaToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "matching_response")
	assert.Contains(t, w.Body.String(), "accepted")

	// Both see the realized match in history.
	for _, token := range []string{harukaToken, kenjiToken} {
		w = call("GET", "/api/matching/history", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp["data"].([]any), 1)
	}

	// Admin console: promote a user and read the stats.
	admin := models.User{Name: "boss", Email: "boss@example.com", Password: "x", Role: "admin"}
	require.NoError(t, db.Create(&admin).Error)
	adminToken, err := utils.GenerateToken(admin.ID, admin.Role)
	require.NoError(t, err)

	w = call("GET", "/api/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	data := stats["data"].(map[string]any)
	assert.EqualValues(t, 2, data["paid_members"])
	assert.EqualValues(t, 1, data["realized_matches"])
	assert.EqualValues(t, 0, data["pending_matches"])
}
