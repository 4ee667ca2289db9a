package auth

import (
	"net/http"
	"strings"
)

// ExtractCredential pulls the bearer credential from the Authorization
// header. Absent or malformed headers yield an empty credential; whether
// that is acceptable is the authorizer's call.
func ExtractCredential(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
