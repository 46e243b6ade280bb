package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/projeto-integrador-integra/integra-backend/pkg/logger"
)

const auditBodyLimit = 2000

var sensitiveKeys = []string{"password", "secret", "token", "api_key", "apikey", "access_token"}

// AuditLog logs every write request with the acting principal, the route,
// the outcome and a masked excerpt of the body.
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		var body string
		if c.Request.Body != nil {
			raw, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(raw))
			body = auditExcerpt(raw)
		}

		c.Next()

		status := c.Writer.Status()
		event := logger.Ctx(c.Request.Context()).Info()
		if status >= http.StatusBadRequest {
			event = logger.Ctx(c.Request.Context()).Warn()
		}
		if principal, ok := GetPrincipal(c); ok {
			event = event.Str("principal_id", principal.ID).Str("principal_role", string(principal.Role))
		} else if identity, ok := GetIdentity(c); ok {
			event = event.Str("sub", identity.Subject)
		}
		event.
			Bool("audit", true).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Str("body", body).
			Msg("[Audit] " + auditOutcome(status))
	}
}

func auditOutcome(status int) string {
	if status >= 200 && status < 300 {
		return "OK"
	}
	return "Failed"
}

// auditExcerpt masks sensitive JSON fields and truncates the result.
func auditExcerpt(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	excerpt := string(raw)
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err == nil {
		maskFields(doc)
		if masked, err := json.Marshal(doc); err == nil {
			excerpt = string(masked)
		}
	}
	if len(excerpt) > auditBodyLimit {
		excerpt = excerpt[:auditBodyLimit] + "...[truncated]"
	}
	return excerpt
}

func maskFields(doc map[string]interface{}) {
	for key, value := range doc {
		if isSensitive(key) {
			doc[key] = "***"
			continue
		}
		if nested, ok := value.(map[string]interface{}); ok {
			maskFields(nested)
		}
	}
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
