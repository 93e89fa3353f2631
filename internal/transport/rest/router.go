package rest

import (
	"codelive/internal/service"
	"codelive/internal/transport/rest/handler"
	"codelive/internal/transport/rest/middleware"
	"net/http"
	"os"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService        *service.AuthService
	SessionService     *service.SessionService
	ParticipantService *service.ParticipantService
	BroadcastService   *service.BroadcastService
	ScratchpadService  *service.ScratchpadService
	SweeperService     *service.SweeperService
	CronSecret         string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.SweeperService)
	participantHandler := handler.NewParticipantHandler(c.ParticipantService)
	liveHandler := handler.NewLiveHandler(c.BroadcastService, c.ScratchpadService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)
	cronMW := middleware.NewCronMiddleware(c.CronSecret)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/join", participantHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/metadata", sessionHandler.Metadata).Methods("GET", "OPTIONS")

	// Cron routes (shared-secret header)
	cronRoutes := v1.PathPrefix("/cron").Subrouter()
	cronRoutes.Use(cronMW.RequireSecret)
	cronRoutes.HandleFunc("/deactivate-sessions", sessionHandler.DeactivateExpired).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Trainer routes (require trainer auth)
	trainerRoutes := v1.NewRoute().Subrouter()
	trainerRoutes.Use(authMW.RequireTrainer)

	trainerRoutes.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	trainerRoutes.HandleFunc("/sessions/{code}/broadcast", liveHandler.Broadcast).Methods("POST", "OPTIONS")
	trainerRoutes.HandleFunc("/sessions/{code}/scratchpads", liveHandler.Scratchpads).Methods("GET", "OPTIONS")
	trainerRoutes.HandleFunc("/sessions/{code}/end", sessionHandler.End).Methods("POST", "OPTIONS")

	// Student routes (require session-scoped student auth)
	studentRoutes := v1.NewRoute().Subrouter()
	studentRoutes.Use(authMW.RequireStudent)

	studentRoutes.HandleFunc("/sessions/{code}/live", liveHandler.Live).Methods("GET", "OPTIONS")
	studentRoutes.HandleFunc("/sessions/{code}/scratchpad", liveHandler.Scratchpad).Methods("POST", "OPTIONS")

	// Teardown route: leave accepts a token past its expiry so a tab left
	// open across the session window can still clean up
	leaveRoutes := v1.NewRoute().Subrouter()
	leaveRoutes.Use(authMW.RequireStudentLenient)
	leaveRoutes.HandleFunc("/sessions/{code}/leave", participantHandler.Leave).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization, X-Cron-Secret"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
