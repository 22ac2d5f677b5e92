package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newAuthedRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(APIKeyAuth(secret))
	router.GET("/probe", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	return router
}

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name           string
		secret         string
		header         string
		expectedStatus int
	}{
		{
			name:           "Matching Key",
			secret:         "s3cret",
			header:         "s3cret",
			expectedStatus: 200,
		},
		{
			name:           "Missing Key",
			secret:         "s3cret",
			header:         "",
			expectedStatus: 401,
		},
		{
			name:           "Wrong Key",
			secret:         "s3cret",
			header:         "nope",
			expectedStatus: 401,
		},
		{
			name:           "No Secret Configured - Open",
			secret:         "",
			header:         "",
			expectedStatus: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthedRouter(tt.secret)

			req, _ := http.NewRequest("GET", "/probe", nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
