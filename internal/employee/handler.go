package employee

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"employee-service/internal/auth"
	"employee-service/internal/validation"
)

const maxJSONBodyBytes = 1 << 20

type Handler struct {
	service *Service
	now     func() time.Time
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, now: func() time.Time { return time.Now().UTC() }}
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var body SignUpRequest
	if !decodeBody(w, r, &body) {
		return
	}
	body.normalize()
	if !validBody(w, body) {
		return
	}

	e, err := h.service.SignUp(r.Context(), body)
	if err != nil {
		writeServiceError(w, err, "failed to register user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"userId":  e.ID,
		"email":   e.Email,
		"role":    e.Role,
	})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	e, err := h.service.Profile(r.Context(), claims)
	if err != nil {
		writeServiceError(w, err, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":     e.ID,
		"name":   e.Name,
		"email":  e.Email,
		"mobile": e.Mobile,
		"role":   e.Role,
		"status": e.Status,
	})
}

func (h *Handler) AddEmployee(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body AddEmployeeRequest
	if !decodeBody(w, r, &body) {
		return
	}
	body.normalize()
	if !validBody(w, body) {
		return
	}

	e, err := h.service.AddEmployee(r.Context(), claims, body)
	if err != nil {
		writeServiceError(w, err, "failed to add employee")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Employee added and email sent",
		"userId":  e.ID,
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	params := parseListQuery(r.URL.Query().Get)
	if !validBody(w, params) {
		return
	}

	page, err := h.service.List(r.Context(), claims, params.query())
	if err != nil {
		writeServiceError(w, err, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body UpdateRequest
	if !decodeBody(w, r, &body) {
		return
	}
	body.normalize()
	if !validBody(w, body) {
		return
	}

	e, err := h.service.Update(r.Context(), claims, id, body.patch())
	if err != nil {
		writeServiceError(w, err, "failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), claims, id); err != nil {
		writeServiceError(w, err, "failed to delete user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	employees, err := h.service.ListAll(r.Context(), claims)
	if err != nil {
		writeServiceError(w, err, "failed to export users")
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, employees); err != nil {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to export users")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="employees.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	e, err := h.service.Get(r.Context(), claims, id)
	if err != nil {
		if errors.Is(err, auth.ErrForbidden) {
			writeError(w, http.StatusForbidden, "Forbidden: You can only download your own profile.")
			return
		}
		writeServiceError(w, err, "failed to export profile")
		return
	}

	var buf bytes.Buffer
	if err := WriteProfilePDF(&buf, e, h.now()); err != nil {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to export profile")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="employee_`+e.ID+`_profile.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func validBody(w http.ResponseWriter, body any) bool {
	if errs := validation.Struct(body); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "details": errs})
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return "", false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, http.StatusForbidden, "you do not have permission to access this resource")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email already exists")
	case errors.Is(err, ErrMobileTaken):
		writeError(w, http.StatusConflict, "Mobile already exists")
	default:
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
