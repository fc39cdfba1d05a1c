// internal/middleware/rate_limit_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestIPLimiterAllowsUpToBurst(t *testing.T) {
	l := newIPLimiter(rate.Every(time.Hour), 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.allow("203.0.113.7"), "request %d within burst must pass", i+1)
	}
	assert.False(t, l.allow("203.0.113.7"), "request above burst must be throttled")
}

func TestIPLimiterIsPerAddress(t *testing.T) {
	l := newIPLimiter(rate.Every(time.Hour), 1)

	assert.True(t, l.allow("198.51.100.1"))
	assert.False(t, l.allow("198.51.100.1"))
	assert.True(t, l.allow("198.51.100.2"), "a different address has its own bucket")
}

func TestSubmissionThrottleReturns429(t *testing.T) {
	gin.SetMode(gin.TestMode)

	l := newIPLimiter(rate.Every(time.Hour), 1)
	r := gin.New()
	r.POST("/projects/:id/applications", l.handler("You are applying too quickly."), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	first := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/projects/42/applications", nil)
	r.ServeHTTP(first, req)
	assert.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/projects/42/applications", nil)
	r.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "applying too quickly")
}
