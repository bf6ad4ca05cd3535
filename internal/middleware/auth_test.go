package middleware

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ezcal-dev/ezcal/db"
	"github.com/ezcal-dev/ezcal/internal/auth"
	"github.com/ezcal-dev/ezcal/internal/config"
	"github.com/ezcal-dev/ezcal/internal/services"
	"github.com/ezcal-dev/ezcal/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProtected(t *testing.T, debug bool) (*gin.Engine, *services.UserService, *auth.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))

	cfg := &config.Config{Debug: debug}
	tokens := auth.NewTokenService("test-secret", 30*time.Minute, 7*24*time.Hour)
	users := services.NewUserService(database)

	r := gin.New()
	r.GET("/protected", AuthMiddleware(cfg, tokens, users), func(ctx *gin.Context) {
		user, _ := ctx.Get(types.ContextUserKey)
		ctx.JSON(http.StatusOK, user)
	})

	return r, users, tokens
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStrictModeRequiresToken(t *testing.T) {
	r, users, _ := setupProtected(t, false)

	w := doRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The dev identity must not have been provisioned.
	_, err := users.GetByEmail(services.DevUserEmail)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDebugModeFallsBackToDevUser(t *testing.T) {
	r, users, _ := setupProtected(t, true)

	w := doRequest(r, "")
	assert.Equal(t, http.StatusOK, w.Code)

	dev, err := users.GetByEmail(services.DevUserEmail)
	require.NoError(t, err)
	assert.Contains(t, w.Body.String(), dev.ID.String())
}

func TestDebugModeStillValidatesPresentedToken(t *testing.T) {
	r, _, _ := setupProtected(t, true)

	w := doRequest(r, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccessTokenAccepted(t *testing.T) {
	r, users, tokens := setupProtected(t, false)

	user, err := users.Create("a@x.com", "Alice", "password123")
	require.NoError(t, err)

	token, err := tokens.IssueAccessToken(user.ID)
	require.NoError(t, err)

	w := doRequest(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.ID.String())
}

func TestRefreshTokenRejectedAsBearer(t *testing.T) {
	r, users, tokens := setupProtected(t, false)

	user, err := users.Create("a@x.com", "Alice", "password123")
	require.NoError(t, err)

	token, err := tokens.IssueRefreshToken(user.ID)
	require.NoError(t, err)

	w := doRequest(r, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInactiveAccountForbidden(t *testing.T) {
	r, users, tokens := setupProtected(t, false)

	user, err := users.Create("a@x.com", "Alice", "password123")
	require.NoError(t, err)

	_, err = users.Update(user.ID, map[string]interface{}{"is_active": false})
	require.NoError(t, err)

	token, err := tokens.IssueAccessToken(user.ID)
	require.NoError(t, err)

	w := doRequest(r, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMalformedHeaderRejected(t *testing.T) {
	r, _, _ := setupProtected(t, false)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
