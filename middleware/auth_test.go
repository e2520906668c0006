package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAuthRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AuthRequired("secret"))
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	tests := []struct {
		name     string
		header   string
		expected int
	}{
		{
			name:     "missing header",
			header:   "",
			expected: http.StatusUnauthorized,
		},
		{
			name:     "wrong scheme",
			header:   "Basic secret",
			expected: http.StatusUnauthorized,
		},
		{
			name:     "wrong token",
			header:   "Bearer nope",
			expected: http.StatusUnauthorized,
		},
		{
			name:     "valid token",
			header:   "Bearer secret",
			expected: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}
