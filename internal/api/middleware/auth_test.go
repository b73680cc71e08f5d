package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softskills/softskills_go_server/internal/model"
	"github.com/softskills/softskills_go_server/internal/pkg/jwt"
	"github.com/softskills/softskills_go_server/internal/pkg/response"
	"github.com/softskills/softskills_go_server/internal/repository"
	"github.com/softskills/softskills_go_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testJWTSecret = "test-secret-key-for-middleware"

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func TestAuth_Success(t *testing.T) {
	router := gin.New()
	router.Use(Auth(testJWTSecret))
	router.GET("/test", func(c *gin.Context) {
		userID, ok := GetUserID(c)
		assert.True(t, ok)
		assert.Equal(t, int64(123), userID)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	token, err := jwt.GenerateToken(123, testJWTSecret, 24)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_MissingHeader(t *testing.T) {
	router := gin.New()
	router.Use(Auth(testJWTSecret))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	router := gin.New()
	router.Use(Auth(testJWTSecret))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestOptionalAuth_NoHeader(t *testing.T) {
	router := gin.New()
	router.Use(OptionalAuth(testJWTSecret))
	router.GET("/test", func(c *gin.Context) {
		_, ok := GetUserID(c)
		assert.False(t, ok)
		c.JSON(http.StatusOK, gin.H{})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireSubscription_Active(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestPlan(t, db)
	testutil.TestSubscription(t, db, user.ID, plan.ID,
		testutil.WithSubscriptionStatus(model.SubscriptionActive))

	router := gin.New()
	router.Use(Auth(testJWTSecret))
	router.Use(RequireSubscription(repository.NewSubscriptionRepository(db)))
	router.GET("/premium", func(c *gin.Context) {
		response.Success(c, gin.H{"ok": true})
	})

	token, err := jwt.GenerateToken(user.ID, testJWTSecret, 24)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/premium", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)
}

func TestRequireSubscription_NoSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)

	router := gin.New()
	router.Use(Auth(testJWTSecret))
	router.Use(RequireSubscription(repository.NewSubscriptionRepository(db)))
	router.GET("/premium", func(c *gin.Context) {
		response.Success(c, gin.H{"ok": true})
	})

	token, err := jwt.GenerateToken(user.ID, testJWTSecret, 24)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/premium", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSubscriptionRequired, resp.Code)
}

func TestRequireSubscription_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestPlan(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, plan.ID,
		testutil.WithSubscriptionStatus(model.SubscriptionActive))
	sub.EndDate = time.Now().Add(-time.Hour)
	require.NoError(t, db.Save(sub).Error)

	router := gin.New()
	router.Use(Auth(testJWTSecret))
	router.Use(RequireSubscription(repository.NewSubscriptionRepository(db)))
	router.GET("/premium", func(c *gin.Context) {
		response.Success(c, gin.H{"ok": true})
	})

	token, err := jwt.GenerateToken(user.ID, testJWTSecret, 24)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/premium", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSubscriptionRequired, resp.Code)
}
