package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joelson-hub/Pianelsenhas/internal/auth"
	"github.com/joelson-hub/Pianelsenhas/internal/models"
	"github.com/joelson-hub/Pianelsenhas/internal/store"
)

type Handler struct {
	store  store.Store
	tokens *auth.TokenManager
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type registerRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	UnitID   *string `json:"unit_id"`
}

type generateTicketRequest struct {
	CategoryID string `json:"category_id"`
}

type callTicketRequest struct {
	CounterID string `json:"counter_id"`
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewHandler(store store.Store, tokens *auth.TokenManager) *Handler {
	return &Handler{store: store, tokens: tokens}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/auth/register", h.handleRegister)
	mux.HandleFunc("/api/auth/me", h.handleMe)
	mux.HandleFunc("/api/tickets/generate", h.handleGenerateTicket)
	mux.HandleFunc("/api/tickets/queue", h.handleQueue)
	mux.HandleFunc("/api/tickets/call-next", h.handleCallNext)
	mux.HandleFunc("/api/tickets/history", h.handleHistory)
	mux.HandleFunc("/api/tickets/current-display", h.handleCurrentDisplay)
	mux.HandleFunc("/api/tickets/", h.handleTicketActions)
	mux.HandleFunc("/api/display/settings/", h.handleDisplaySettings)
	mux.HandleFunc("/api/units", h.handleUnits)
	mux.HandleFunc("/api/units/", h.handleUnitByID)
	mux.HandleFunc("/api/categories", h.handleCategories)
	mux.HandleFunc("/api/categories/", h.handleCategoryByID)
	mux.HandleFunc("/api/counters", h.handleCounters)
	mux.HandleFunc("/api/counters/", h.handleCounterByID)
	mux.HandleFunc("/api/reports/dashboard", h.handleDashboardReport)
	mux.HandleFunc("/api/reports/period", h.handlePeriodReport)
	mux.HandleFunc("/api/reports/export", h.handleExportReport)
	return h.AuthMiddleware(mux)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	user, err := h.store.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		case errors.Is(err, store.ErrAccountDisabled):
			writeError(w, http.StatusUnauthorized, "account_disabled", "account is disabled")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		}
		return
	}

	token, err := h.tokens.Sign(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	principal, ok := principalFromContext(r.Context())
	if !ok || !principal.IsAdmin() {
		writeError(w, http.StatusForbidden, "access_denied", "admin role required")
		return
	}

	var req registerRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Role = strings.TrimSpace(req.Role)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "username, email, and password are required")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleAttendant
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleAttendant {
		writeError(w, http.StatusBadRequest, "invalid_request", "role must be admin or attendant")
		return
	}
	if req.UnitID != nil && !isValidUUID(*req.UnitID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unit_id must be a UUID when provided")
		return
	}

	user, err := h.store.CreateUser(r.Context(), store.NewUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		UnitID:   req.UnitID,
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	user, err := h.store.GetUser(r.Context(), principal.UserID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleGenerateTicket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var req generateTicketRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.CategoryID = strings.TrimSpace(req.CategoryID)
	if req.CategoryID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "category_id is required")
		return
	}
	if !isValidUUID(req.CategoryID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "category_id must be a UUID")
		return
	}

	category, err := h.store.GetCategory(r.Context(), req.CategoryID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	if !principal.CanAccessUnit(category.UnitID) {
		writeError(w, http.StatusForbidden, "access_denied", "unit access denied")
		return
	}

	ticket, err := h.store.IssueTicket(r.Context(), store.IssueTicketInput{
		CategoryID:  req.CategoryID,
		GeneratedAt: time.Now().UTC(),
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusCreated, ticket)
}

func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_, unitID, ok := h.resolveUnitScope(w, r)
	if !ok {
		return
	}

	tickets, err := h.store.ListQueue(r.Context(), unitID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (h *Handler) handleCallNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var req callTicketRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.CounterID = strings.TrimSpace(req.CounterID)
	if req.CounterID == "" || !isValidUUID(req.CounterID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "counter_id must be a UUID")
		return
	}

	counter, err := h.store.GetCounter(r.Context(), req.CounterID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	if !principal.CanAccessUnit(counter.UnitID) {
		writeError(w, http.StatusForbidden, "access_denied", "unit access denied")
		return
	}

	ticket, err := h.store.CallNext(r.Context(), store.CallNextInput{
		CounterID: req.CounterID,
		CalledAt:  time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, store.ErrNoTicket) {
			writeError(w, http.StatusNotFound, "queue_empty", "no tickets waiting")
			return
		}
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_, unitID, ok := h.resolveUnitScope(w, r)
	if !ok {
		return
	}

	filter := store.HistoryFilter{UnitID: unitID}

	if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
		if !isValidUUID(raw) {
			writeError(w, http.StatusBadRequest, "invalid_request", "category_id must be a UUID")
			return
		}
		filter.CategoryID = raw
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		if !isValidStatus(raw) {
			writeError(w, http.StatusBadRequest, "invalid_request", "status must be waiting, calling, finished, or missed")
			return
		}
		filter.Status = raw
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("start_date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "start_date must be YYYY-MM-DD")
			return
		}
		filter.From = parsed
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("end_date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "end_date must be YYYY-MM-DD")
			return
		}
		filter.To = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	tickets, err := h.store.ListHistory(r.Context(), filter)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (h *Handler) handleCurrentDisplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	unitID := strings.TrimSpace(r.URL.Query().Get("unit_id"))
	if unitID == "" || !isValidUUID(unitID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unit_id must be a UUID")
		return
	}

	feed, err := h.store.CurrentDisplay(r.Context(), unitID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	if feed.Recent == nil {
		feed.Recent = []models.Ticket{}
	}
	writeJSON(w, http.StatusOK, feed)
}

func (h *Handler) handleTicketActions(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/tickets/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleGetTicket(w, r, parts[0])
	case len(parts) == 2 && r.Method == http.MethodPost:
		ticketID := parts[0]
		if !isValidUUID(ticketID) {
			writeError(w, http.StatusBadRequest, "invalid_request", "ticket_id must be a UUID")
			return
		}
		switch parts[1] {
		case "call":
			h.handleCallTicket(w, r, ticketID)
		case "finish":
			h.handleFinishTicket(w, r, ticketID)
		case "miss":
			h.handleMissTicket(w, r, ticketID)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGetTicket(w http.ResponseWriter, r *http.Request, ticketID string) {
	if !isValidUUID(ticketID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "ticket_id must be a UUID")
		return
	}
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	ticket, err := h.store.GetTicket(r.Context(), ticketID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	if !principal.CanAccessUnit(ticket.UnitID) {
		writeError(w, http.StatusForbidden, "access_denied", "unit access denied")
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) handleCallTicket(w http.ResponseWriter, r *http.Request, ticketID string) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var req callTicketRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.CounterID = strings.TrimSpace(req.CounterID)
	if req.CounterID == "" || !isValidUUID(req.CounterID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "counter_id must be a UUID")
		return
	}

	ticket, err := h.store.GetTicket(r.Context(), ticketID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	if !principal.CanAccessUnit(ticket.UnitID) {
		writeError(w, http.StatusForbidden, "access_denied", "unit access denied")
		return
	}
	if !store.ValidTransition("call", ticket.Status) {
		writeError(w, http.StatusBadRequest, "invalid_transition", "ticket state does not allow this action")
		return
	}

	called, err := h.store.CallTicket(r.Context(), store.CallTicketInput{
		TicketID:  ticketID,
		CounterID: req.CounterID,
		CalledAt:  time.Now().UTC(),
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, called)
}

func (h *Handler) handleFinishTicket(w http.ResponseWriter, r *http.Request, ticketID string) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	ticket, err := h.store.GetTicket(r.Context(), ticketID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	if !principal.CanAccessUnit(ticket.UnitID) {
		writeError(w, http.StatusForbidden, "access_denied", "unit access denied")
		return
	}
	if !store.ValidTransition("finish", ticket.Status) {
		writeError(w, http.StatusBadRequest, "invalid_transition", "ticket state does not allow this action")
		return
	}

	finished, err := h.store.FinishTicket(r.Context(), ticketID, time.Now().UTC())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, finished)
}

func (h *Handler) handleMissTicket(w http.ResponseWriter, r *http.Request, ticketID string) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	ticket, err := h.store.GetTicket(r.Context(), ticketID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	if !principal.CanAccessUnit(ticket.UnitID) {
		writeError(w, http.StatusForbidden, "access_denied", "unit access denied")
		return
	}
	if !store.ValidTransition("miss", ticket.Status) {
		writeError(w, http.StatusBadRequest, "invalid_transition", "ticket state does not allow this action")
		return
	}

	missed, err := h.store.MissTicket(r.Context(), ticketID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, missed)
}

type displaySettingsRequest struct {
	Message         *string `json:"message"`
	ShowLastTickets *int    `json:"show_last_tickets_count"`
	SoundEnabled    *bool   `json:"sound_enabled"`
	Theme           *string `json:"theme"`
}

func (h *Handler) handleDisplaySettings(w http.ResponseWriter, r *http.Request) {
	unitID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/display/settings/"), "/")
	if unitID == "" || !isValidUUID(unitID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unit_id must be a UUID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		settings, err := h.store.GetDisplaySettings(r.Context(), unitID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if !principal.CanAccessUnit(unitID) {
			writeError(w, http.StatusForbidden, "access_denied", "unit access denied")
			return
		}

		var req displaySettingsRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		if req.ShowLastTickets != nil && (*req.ShowLastTickets < 1 || *req.ShowLastTickets > 10) {
			writeError(w, http.StatusBadRequest, "invalid_request", "show_last_tickets_count must be between 1 and 10")
			return
		}
		if req.Theme != nil && *req.Theme != "light" && *req.Theme != "dark" {
			writeError(w, http.StatusBadRequest, "invalid_request", "theme must be light or dark")
			return
		}

		settings, err := h.store.UpdateDisplaySettings(r.Context(), unitID, store.DisplaySettingsUpdate{
			Message:         req.Message,
			ShowLastTickets: req.ShowLastTickets,
			SoundEnabled:    req.SoundEnabled,
			Theme:           req.Theme,
		})
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// resolveUnitScope reads unit_id from the query, defaulting to the
// attendant's own unit, and enforces the scoping rule.
func (h *Handler) resolveUnitScope(w http.ResponseWriter, r *http.Request) (Principal, string, bool) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return Principal{}, "", false
	}

	unitID := strings.TrimSpace(r.URL.Query().Get("unit_id"))
	if unitID == "" {
		unitID = principal.UnitID
	}
	if unitID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "unit_id is required")
		return Principal{}, "", false
	}
	if !isValidUUID(unitID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unit_id must be a UUID")
		return Principal{}, "", false
	}
	if !principal.CanAccessUnit(unitID) {
		writeError(w, http.StatusForbidden, "access_denied", "unit access denied")
		return Principal{}, "", false
	}
	return principal, unitID, true
}

func isValidUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

func isValidStatus(value string) bool {
	switch value {
	case models.StatusWaiting, models.StatusCalling, models.StatusFinished, models.StatusMissed:
		return true
	}
	return false
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrUnitNotFound):
		return http.StatusNotFound, "unit_not_found", "unit not found"
	case errors.Is(err, store.ErrCategoryNotFound):
		return http.StatusNotFound, "category_not_found", "category not found"
	case errors.Is(err, store.ErrCounterNotFound):
		return http.StatusNotFound, "counter_not_found", "counter not found"
	case errors.Is(err, store.ErrTicketNotFound):
		return http.StatusNotFound, "ticket_not_found", "ticket not found"
	case errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found", "user not found"
	case errors.Is(err, store.ErrSettingsNotFound):
		return http.StatusNotFound, "settings_not_found", "display settings not found"
	case errors.Is(err, store.ErrCategoryInactive):
		return http.StatusBadRequest, "category_inactive", "category is not active"
	case errors.Is(err, store.ErrCounterInactive):
		return http.StatusBadRequest, "counter_inactive", "counter is not active"
	case errors.Is(err, store.ErrInvalidTransition):
		return http.StatusBadRequest, "invalid_transition", "ticket state does not allow this action"
	case errors.Is(err, store.ErrNoTicket):
		return http.StatusNotFound, "queue_empty", "no tickets waiting"
	case errors.Is(err, store.ErrDuplicatePrefix):
		return http.StatusBadRequest, "prefix_conflict", "prefix already in use for this unit"
	case errors.Is(err, store.ErrDuplicateUser):
		return http.StatusBadRequest, "user_exists", "username or email already in use"
	case errors.Is(err, store.ErrUnitNotEmpty):
		return http.StatusBadRequest, "unit_not_empty", "unit still has categories or counters"
	case errors.Is(err, store.ErrCategoryInUse):
		return http.StatusBadRequest, "category_in_use", "category still has tickets"
	case errors.Is(err, store.ErrCounterInUse):
		return http.StatusBadRequest, "counter_in_use", "counter still has tickets"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
