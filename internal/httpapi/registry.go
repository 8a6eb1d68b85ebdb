package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/joelson-hub/Pianelsenhas/internal/models"
	"github.com/joelson-hub/Pianelsenhas/internal/store"
)

type unitRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type categoryRequest struct {
	UnitID   string `json:"unit_id"`
	Name     string `json:"name"`
	Prefix   string `json:"prefix"`
	Priority *int   `json:"priority"`
	Active   *bool  `json:"is_active"`
}

type counterRequest struct {
	UnitID string `json:"unit_id"`
	Name   string `json:"name"`
	Active *bool  `json:"is_active"`
}

func (h *Handler) handleUnits(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		units, err := h.store.ListUnits(r.Context())
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		if !principal.IsAdmin() {
			scoped := make([]models.Unit, 0, 1)
			for _, unit := range units {
				if principal.CanAccessUnit(unit.UnitID) {
					scoped = append(scoped, unit)
				}
			}
			units = scoped
		}
		if units == nil {
			units = []models.Unit{}
		}
		writeJSON(w, http.StatusOK, units)
	case http.MethodPost:
		if !h.requireAdmin(w, r) {
			return
		}
		var req unitRequest
		if !decodeBody(w, r, &req) {
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
			return
		}
		unit, err := h.store.CreateUnit(r.Context(), models.Unit{Name: req.Name, Address: strings.TrimSpace(req.Address)})
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusCreated, unit)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleUnitByID(w http.ResponseWriter, r *http.Request) {
	unitID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/units/"), "/")
	if !isValidUUID(unitID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unit_id must be a UUID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if !principal.CanAccessUnit(unitID) {
			writeError(w, http.StatusForbidden, "access_denied", "unit access denied")
			return
		}
		unit, err := h.store.GetUnit(r.Context(), unitID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, unit)
	case http.MethodPut:
		if !h.requireAdmin(w, r) {
			return
		}
		var req unitRequest
		if !decodeBody(w, r, &req) {
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
			return
		}
		unit, err := h.store.UpdateUnit(r.Context(), models.Unit{UnitID: unitID, Name: req.Name, Address: strings.TrimSpace(req.Address)})
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, unit)
	case http.MethodDelete:
		if !h.requireAdmin(w, r) {
			return
		}
		if err := h.store.DeleteUnit(r.Context(), unitID); err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		_, unitID, ok := h.resolveUnitScope(w, r)
		if !ok {
			return
		}
		categories, err := h.store.ListCategories(r.Context(), unitID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		if categories == nil {
			categories = []models.Category{}
		}
		writeJSON(w, http.StatusOK, categories)
	case http.MethodPost:
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		var req categoryRequest
		if !decodeBody(w, r, &req) {
			return
		}
		req.UnitID = strings.TrimSpace(req.UnitID)
		req.Name = strings.TrimSpace(req.Name)
		req.Prefix = strings.TrimSpace(req.Prefix)
		// Attendants always create in their own unit.
		if !principal.IsAdmin() {
			req.UnitID = principal.UnitID
		}
		if req.UnitID == "" || req.Name == "" || req.Prefix == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "unit_id, name, and prefix are required")
			return
		}
		if !isValidUUID(req.UnitID) {
			writeError(w, http.StatusBadRequest, "invalid_request", "unit_id must be a UUID")
			return
		}
		if !isValidPrefix(req.Prefix) {
			writeError(w, http.StatusBadRequest, "invalid_request", "prefix must be 1-5 letters")
			return
		}

		category := models.Category{
			UnitID: req.UnitID,
			Name:   req.Name,
			Prefix: req.Prefix,
			Active: true,
		}
		if req.Priority != nil {
			category.Priority = *req.Priority
		}
		if req.Active != nil {
			category.Active = *req.Active
		}

		created, err := h.store.CreateCategory(r.Context(), category)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCategoryByID(w http.ResponseWriter, r *http.Request) {
	categoryID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/categories/"), "/")
	if !isValidUUID(categoryID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "category_id must be a UUID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		category, err := h.store.GetCategory(r.Context(), categoryID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		if !principal.CanAccessUnit(category.UnitID) {
			writeError(w, http.StatusForbidden, "access_denied", "unit access denied")
			return
		}
		writeJSON(w, http.StatusOK, category)
	case http.MethodPut:
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		current, err := h.store.GetCategory(r.Context(), categoryID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		if !principal.CanAccessUnit(current.UnitID) {
			writeError(w, http.StatusForbidden, "access_denied", "unit access denied")
			return
		}

		var req categoryRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if name := strings.TrimSpace(req.Name); name != "" {
			current.Name = name
		}
		if prefix := strings.TrimSpace(req.Prefix); prefix != "" {
			if !isValidPrefix(prefix) {
				writeError(w, http.StatusBadRequest, "invalid_request", "prefix must be 1-5 letters")
				return
			}
			current.Prefix = prefix
		}
		if req.Priority != nil {
			current.Priority = *req.Priority
		}
		if req.Active != nil {
			current.Active = *req.Active
		}

		updated, err := h.store.UpdateCategory(r.Context(), current)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		current, err := h.store.GetCategory(r.Context(), categoryID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		if !principal.CanAccessUnit(current.UnitID) {
			writeError(w, http.StatusForbidden, "access_denied", "unit access denied")
			return
		}
		if err := h.store.DeleteCategory(r.Context(), categoryID); err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCounters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		_, unitID, ok := h.resolveUnitScope(w, r)
		if !ok {
			return
		}
		counters, err := h.store.ListCounters(r.Context(), unitID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		if counters == nil {
			counters = []models.Counter{}
		}
		writeJSON(w, http.StatusOK, counters)
	case http.MethodPost:
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		var req counterRequest
		if !decodeBody(w, r, &req) {
			return
		}
		req.UnitID = strings.TrimSpace(req.UnitID)
		req.Name = strings.TrimSpace(req.Name)
		// Attendants always create in their own unit.
		if !principal.IsAdmin() {
			req.UnitID = principal.UnitID
		}
		if req.UnitID == "" || req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "unit_id and name are required")
			return
		}
		if !isValidUUID(req.UnitID) {
			writeError(w, http.StatusBadRequest, "invalid_request", "unit_id must be a UUID")
			return
		}

		counter := models.Counter{UnitID: req.UnitID, Name: req.Name, Active: true}
		if req.Active != nil {
			counter.Active = *req.Active
		}

		created, err := h.store.CreateCounter(r.Context(), counter)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCounterByID(w http.ResponseWriter, r *http.Request) {
	counterID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/counters/"), "/")
	if !isValidUUID(counterID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "counter_id must be a UUID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		counter, err := h.store.GetCounter(r.Context(), counterID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		if !principal.CanAccessUnit(counter.UnitID) {
			writeError(w, http.StatusForbidden, "access_denied", "unit access denied")
			return
		}
		writeJSON(w, http.StatusOK, counter)
	case http.MethodPut:
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		current, err := h.store.GetCounter(r.Context(), counterID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		if !principal.CanAccessUnit(current.UnitID) {
			writeError(w, http.StatusForbidden, "access_denied", "unit access denied")
			return
		}

		var req counterRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if name := strings.TrimSpace(req.Name); name != "" {
			current.Name = name
		}
		if req.Active != nil {
			current.Active = *req.Active
		}

		updated, err := h.store.UpdateCounter(r.Context(), current)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		current, err := h.store.GetCounter(r.Context(), counterID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		if !principal.CanAccessUnit(current.UnitID) {
			writeError(w, http.StatusForbidden, "access_denied", "unit access denied")
			return
		}
		if err := h.store.DeleteCounter(r.Context(), counterID); err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleDashboardReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_, unitID, ok := h.resolveUnitScope(w, r)
	if !ok {
		return
	}

	day := time.Now().UTC()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	report, err := h.store.DashboardReport(r.Context(), unitID, day)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handlePeriodReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_, unitID, ok := h.resolveUnitScope(w, r)
	if !ok {
		return
	}

	startRaw := strings.TrimSpace(r.URL.Query().Get("start_date"))
	endRaw := strings.TrimSpace(r.URL.Query().Get("end_date"))
	if startRaw == "" || endRaw == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "start_date and end_date are required")
		return
	}
	start, err := time.Parse("2006-01-02", startRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", endRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "end_date must be YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "invalid_request", "end_date must not be before start_date")
		return
	}

	report, err := h.store.PeriodReport(r.Context(), unitID, start, end)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleExportReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_, unitID, ok := h.resolveUnitScope(w, r)
	if !ok {
		return
	}

	filter := store.ExportFilter{UnitID: unitID}
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
		filter.To = parsed
	}
	if categoryID := strings.TrimSpace(r.URL.Query().Get("category_id")); categoryID != "" {
		if !isValidUUID(categoryID) {
			writeError(w, http.StatusBadRequest, "invalid_request", "category_id must be a UUID")
			return
		}
		filter.CategoryID = categoryID
	}

	report, err := h.store.ExportReport(r.Context(), filter)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return false
	}
	if !principal.IsAdmin() {
		writeError(w, http.StatusForbidden, "access_denied", "admin role required")
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return false
	}
	return true
}

func isValidPrefix(value string) bool {
	if len(value) < 1 || len(value) > 5 {
		return false
	}
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
