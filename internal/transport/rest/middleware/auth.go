package middleware

import (
	"codelive/internal/service"
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	TrainerIDKey contextKey = "trainerId"
	StudentIDKey contextKey = "studentId"
	JoinCodeKey  contextKey = "joinCode"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireTrainer validates a trainer JWT from the Authorization header
func (m *AuthMiddleware) RequireTrainer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateTrainerToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), TrainerIDKey, claims.TrainerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireStudent validates a session-scoped student JWT
func (m *AuthMiddleware) RequireStudent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateStudentToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, StudentIDKey, claims.StudentID)
		ctx = context.WithValue(ctx, JoinCodeKey, claims.JoinCode)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireStudentLenient validates a student JWT but tolerates an expired
// one, for teardown routes that must work from a stale tab
func (m *AuthMiddleware) RequireStudentLenient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateStudentTokenLenient(token)
		if err != nil {
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, StudentIDKey, claims.StudentID)
		ctx = context.WithValue(ctx, JoinCodeKey, claims.JoinCode)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetTrainerID extracts the trainer ID from context
func GetTrainerID(ctx context.Context) string {
	if v := ctx.Value(TrainerIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetStudentID extracts the student ID from context
func GetStudentID(ctx context.Context) string {
	if v := ctx.Value(StudentIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetJoinCode extracts the token's session scope from context
func GetJoinCode(ctx context.Context) string {
	if v := ctx.Value(JoinCodeKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
