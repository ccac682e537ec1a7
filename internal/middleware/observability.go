package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nurseryhub/nursery-api/pkg/logger"
	"github.com/nurseryhub/nursery-api/pkg/metrics"
	"go.uber.org/zap"
)

const (
	wizardRoutePrefix = "/api/v1/enrollments/wizard/:id"
	adminRoutePrefix  = "/api/v1/admin/enrollments/:id"
	unmatchedRoute    = "unmatched"
)

// redactedQueryParams never reach the request log
var redactedQueryParams = map[string]bool{
	"token": true, "password": true, "secret": true, "key": true,
	"api_key": true, "recaptcha_token": true, "recaptchatoken": true,
}

// ObservabilityMiddleware records request metrics by route template and writes one
// log line per request, tagged with the enrollment session, document or staff member involved.
func ObservabilityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		metrics.ActiveRequests.WithLabelValues(method).Inc()
		defer metrics.ActiveRequests.WithLabelValues(method).Dec()

		c.Next()

		// Route templates keep label cardinality bounded; session ids only go to logs
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		duration := metrics.MeasureDuration(start)
		status := c.Writer.Status()
		statusStr := strconv.Itoa(status)

		metrics.HTTPRequestDuration.WithLabelValues(method, route, statusStr).Observe(duration)
		metrics.HTTPRequestTotal.WithLabelValues(method, route, statusStr).Inc()

		fields := []zap.Field{
			zap.String("route", route),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("response_size", c.Writer.Size()),
		}
		fields = append(fields, enrollmentFields(c, route)...)

		if status >= 400 {
			if query := redactedQuery(c); len(query) > 0 {
				fields = append(fields, zap.Any("query_params", query))
			}
			if len(c.Errors) > 0 {
				fields = append(fields, zap.String("error", c.Errors.String()))
			}
		}

		logger.LogHTTPRequest(c.Request.Context(), method, c.Request.URL.Path, status, duration, fields...)
	}
}

func enrollmentFields(c *gin.Context, route string) []zap.Field {
	var fields []zap.Field

	switch {
	case strings.HasPrefix(route, wizardRoutePrefix):
		fields = append(fields, zap.String("wizard_session", c.Param("id")))
		if docType := c.Param("type"); docType != "" {
			fields = append(fields, zap.String("document_type", docType))
			if c.Request.ContentLength > 0 {
				fields = append(fields, zap.Int64("upload_bytes", c.Request.ContentLength))
			}
		}
	case strings.HasPrefix(route, adminRoutePrefix):
		fields = append(fields, zap.String("enrollment_id", c.Param("id")))
	}

	if staff, err := GetStaffMember(c); err == nil {
		fields = append(fields, zap.String("staff_id", staff.UserID), zap.String("staff_role", staff.Role))
	}
	return fields
}

func redactedQuery(c *gin.Context) map[string]string {
	query := c.Request.URL.Query()
	if len(query) == 0 {
		return nil
	}
	kept := make(map[string]string, len(query))
	for k, v := range query {
		if !redactedQueryParams[strings.ToLower(k)] && len(v) > 0 {
			kept[k] = v[0]
		}
	}
	return kept
}
