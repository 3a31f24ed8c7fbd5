package Controllers_test

import (
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
	"github.com/velourbar/members-app/router"
	"github.com/velourbar/members-app/services"
	"github.com/velourbar/members-app/utils"
)

// The per-IP limiter is part of the router's middleware chain, so it
// applies to every registered route.
func TestRouterAppliesRateLimit(t *testing.T) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	rl := middlewares.NewRateLimiter(2, 60)
	r := router.SetupRouter(db, services.NewMatchingService(db), rl)

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest("GET", "/ping", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req, _ := http.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
