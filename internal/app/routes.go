package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"employee-service/internal/auth"
	"employee-service/internal/employee"
	"employee-service/internal/maintenance"
	"employee-service/internal/observability"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Routes struct {
	Tokens       auth.TokenIssuer
	Auth         *auth.Handler
	Employees    *employee.Handler
	Cleanup      *maintenance.CleanupHandler
	LoginLimiter *auth.LoginRateLimiter
	Database     Pinger
	Logger       *observability.Logger
}

// Handler registers every route and wraps the mux with request logging and
// panic recovery.
func (rt Routes) Handler() http.Handler {
	privileged := []auth.Role{auth.RoleAdmin, auth.RoleManager}
	protect := func(h http.HandlerFunc, roles ...auth.Role) http.Handler {
		return auth.Protect(rt.Tokens, h, roles...)
	}

	mux := http.NewServeMux()
	mux.Handle("POST /auth/signin", rt.LoginLimiter.Middleware(http.HandlerFunc(rt.Auth.SignIn)))
	mux.HandleFunc("POST /auth/signup", rt.Employees.SignUp)
	mux.Handle("GET /auth/profile", protect(rt.Employees.Profile))
	mux.Handle("POST /auth/add-employee", protect(rt.Employees.AddEmployee, privileged...))
	mux.Handle("GET /auth/users", protect(rt.Employees.ListUsers, privileged...))
	mux.Handle("PUT /auth/users/{id}", protect(rt.Employees.UpdateUser))
	mux.Handle("DELETE /auth/users/{id}", protect(rt.Employees.DeleteUser, auth.RoleAdmin))
	mux.Handle("GET /auth/export/csv", protect(rt.Employees.ExportCSV, privileged...))
	mux.Handle("GET /auth/export/pdf/{id}", protect(rt.Employees.ExportPDF))
	mux.HandleFunc("GET /internal/maintenance/cleanup", rt.Cleanup.Handle)
	mux.HandleFunc("POST /internal/maintenance/cleanup", rt.Cleanup.Handle)
	mux.HandleFunc("GET /health", healthHandler(rt.Database))

	return observability.RecoverMiddleware(rt.Logger, observability.RequestLoggingMiddleware(rt.Logger, mux))
}

func healthHandler(database Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]any{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)}
		if err := database.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body = map[string]any{"status": "degraded", "time": time.Now().UTC().Format(time.RFC3339)}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
