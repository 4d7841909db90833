package backend

import (
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kopinusa/storefront/internal/core/domain"
)

func newRemoteError(status int, body []byte) *domain.RemoteError {
	detail := extractDetail(body)
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &domain.RemoteError{Status: status, Detail: detail}
}

// extractDetail pulls the human-readable message out of an error body:
//
//	{"detail": "Email already registered"}
//	{"detail": [{"loc": [...], "msg": "field required"}]}
//	{"message": "..."} or {"error": "..."}
func extractDetail(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}

	detail := gjson.GetBytes(body, "detail")
	switch {
	case detail.Type == gjson.String:
		return strings.TrimSpace(detail.String())
	case detail.IsArray():
		if msg := detail.Get("0.msg"); msg.Exists() {
			return strings.TrimSpace(msg.String())
		}
	case detail.IsObject():
		if msg := detail.Get("message"); msg.Type == gjson.String {
			return strings.TrimSpace(msg.String())
		}
	}

	for _, key := range []string{"message", "error"} {
		if v := gjson.GetBytes(body, key); v.Type == gjson.String && v.String() != "" {
			return strings.TrimSpace(v.String())
		}
	}
	return ""
}
