package maintenance

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"employee-service/internal/auth"
	"employee-service/internal/observability"
)

// AuditPurger deletes login audit records older than retention, at most
// batchSize per call.
type AuditPurger interface {
	PurgeLoginAttempts(ctx context.Context, retention time.Duration, batchSize int) (auth.CleanupResult, error)
}

type CleanupHandler struct {
	purger    AuditPurger
	logger    *observability.Logger
	secret    string
	retention time.Duration
	batchSize int
}

func NewCleanupHandler(
	purger AuditPurger,
	logger *observability.Logger,
	cronSecret string,
	retention time.Duration,
	batchSize int,
) *CleanupHandler {
	return &CleanupHandler{
		purger:    purger,
		logger:    logger,
		secret:    strings.TrimSpace(cronSecret),
		retention: retention,
		batchSize: batchSize,
	}
}

func (h *CleanupHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if !h.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	result, err := h.purger.PurgeLoginAttempts(r.Context(), h.retention, h.batchSize)
	if err != nil {
		sentry.CaptureException(err)
		h.logger.Error("login_audit_cleanup_failed", map[string]any{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cleanup failed"})
		return
	}

	h.logger.Info("login_audit_cleanup_completed", map[string]any{
		"deleted_login_attempts": result.DeletedLoginAttempts,
		"retention_days":         int(h.retention / (24 * time.Hour)),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"result": result,
	})
}

func (h *CleanupHandler) authorized(r *http.Request) bool {
	parts := strings.SplitN(strings.TrimSpace(r.Header.Get("Authorization")), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return false
	}
	given := strings.TrimSpace(parts[1])
	return subtle.ConstantTimeCompare([]byte(given), []byte(h.secret)) == 1
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
