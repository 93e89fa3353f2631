package middleware

import (
	"crypto/subtle"
	"net/http"
)

// CronMiddleware guards scheduler-only endpoints with a shared secret
type CronMiddleware struct {
	secret string
}

// NewCronMiddleware creates a new cron middleware
func NewCronMiddleware(secret string) *CronMiddleware {
	return &CronMiddleware{secret: secret}
}

// RequireSecret checks the X-Cron-Secret header against the shared secret
func (m *CronMiddleware) RequireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided := r.Header.Get("X-Cron-Secret")
		if m.secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(m.secret)) != 1 {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
