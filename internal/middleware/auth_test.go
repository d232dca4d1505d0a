package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/meridharani/dharani-api/internal/pkg/token"
)

func TestAuthMiddleware_NoHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth())
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, 401, w.Code)
	var body map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &body)
	require.NoError(t, err)
	require.Equal(t, false, body["success"])
	require.Equal(t, float64(401), body["statusCode"])
	require.Equal(t, "Authorization header required", body["message"])
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tok, err := token.GenerateToken("user123", "eco@example.com", "citizen")
	require.NoError(t, err)

	r := gin.New()
	r.Use(Auth())
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"userID": c.GetString("userID"),
			"role":   c.GetString("role"),
		})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "user123", body["userID"])
	require.Equal(t, "citizen", body["role"])
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tok, err := token.GenerateToken("user456", "w@example.com", "citizen")
	require.NoError(t, err)

	r := gin.New()
	r.Use(Auth(), RequireRole("worker"))
	r.GET("/jobs", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/jobs", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)

	require.Equal(t, 403, w.Code)
}
