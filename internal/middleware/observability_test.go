package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nurseryhub/nursery-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	previous := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = previous })
	return logs
}

func observedRouter() *gin.Engine {
	router := gin.New()
	router.Use(ObservabilityMiddleware())
	router.PUT("/api/v1/enrollments/wizard/:id/documents/:type", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.POST("/api/v1/admin/enrollments/:id/status", func(c *gin.Context) {
		c.Set(StaffContextKey, &StaffMember{UserID: "staff-7", Role: "admin"})
		c.Status(http.StatusOK)
	})
	router.GET("/api/v1/enrollments/wizard/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	return router
}

func TestObservabilityMiddleware_EnrollmentFields(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantFields map[string]interface{}
		absent     []string
	}{
		{
			name:   "document upload",
			method: http.MethodPut,
			path:   "/api/v1/enrollments/wizard/s-1/documents/carnet_medical",
			body:   "pdf-bytes",
			wantFields: map[string]interface{}{
				"route":          "/api/v1/enrollments/wizard/:id/documents/:type",
				"wizard_session": "s-1",
				"document_type":  "carnet_medical",
				"upload_bytes":   int64(9),
			},
			absent: []string{"staff_id", "enrollment_id"},
		},
		{
			name:   "staff decision",
			method: http.MethodPost,
			path:   "/api/v1/admin/enrollments/e-9/status",
			wantFields: map[string]interface{}{
				"enrollment_id": "e-9",
				"staff_id":      "staff-7",
				"staff_role":    "admin",
			},
			absent: []string{"wizard_session"},
		},
		{
			name:       "unmatched route",
			method:     http.MethodGet,
			path:       "/nope",
			wantFields: map[string]interface{}{"route": "unmatched"},
			absent:     []string{"wizard_session", "enrollment_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := observeLogs(t)
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			observedRouter().ServeHTTP(w, req)

			require.Equal(t, 1, logs.Len())
			fields := logs.All()[0].ContextMap()
			for key, want := range tt.wantFields {
				assert.Equal(t, want, fields[key], key)
			}
			for _, key := range tt.absent {
				assert.NotContains(t, fields, key)
			}
		})
	}
}

func TestObservabilityMiddleware_RedactsQueryOnErrors(t *testing.T) {
	logs := observeLogs(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/enrollments/wizard/s-2?recaptchaToken=abc&locale=fr", nil)
	w := httptest.NewRecorder()

	observedRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	query, ok := entry.ContextMap()["query_params"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"locale": "fr"}, query)
}
