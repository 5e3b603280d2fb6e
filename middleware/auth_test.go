package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devconnect/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	tokens, err := auth.NewTokenService("middleware-test-secret", time.Hour)
	require.NoError(t, err)
	other, err := auth.NewTokenService("some-other-secret", time.Hour)
	require.NoError(t, err)

	valid, err := tokens.Issue("64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)
	forged, err := other.Issue("64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/private", AuthRequired(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserID(c)})
	})

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
		wantMsg    string
		wantUser   string
	}{
		{
			name:       "x-auth-token header",
			headers:    map[string]string{TokenHeader: valid},
			wantStatus: http.StatusOK,
			wantUser:   "64b7f0c2a1b2c3d4e5f60718",
		},
		{
			name:       "bearer header",
			headers:    map[string]string{"Authorization": "Bearer " + valid},
			wantStatus: http.StatusOK,
			wantUser:   "64b7f0c2a1b2c3d4e5f60718",
		},
		{
			name:       "no token",
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "No token, authorization denied",
		},
		{
			name:       "wrong scheme",
			headers:    map[string]string{"Authorization": "Basic " + valid},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "No token, authorization denied",
		},
		{
			name:       "garbage",
			headers:    map[string]string{TokenHeader: "not-a-token"},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Token is not valid",
		},
		{
			name:       "signed with another key",
			headers:    map[string]string{TokenHeader: forged},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Token is not valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body["msg"])
			}
			if tt.wantUser != "" {
				assert.Equal(t, tt.wantUser, body["userId"])
			}
		})
	}
}

func TestAuthRequiredSkipsPreflight(t *testing.T) {
	t.Parallel()

	tokens, err := auth.NewTokenService("middleware-test-secret", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.OPTIONS("/private", AuthRequired(tokens), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/private", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
