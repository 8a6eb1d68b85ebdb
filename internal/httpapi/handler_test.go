package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joelson-hub/Pianelsenhas/internal/auth"
	"github.com/joelson-hub/Pianelsenhas/internal/models"
	"github.com/joelson-hub/Pianelsenhas/internal/store"
)

type fakeStore struct {
	issueFn         func(ctx context.Context, input store.IssueTicketInput) (models.Ticket, error)
	getTicketFn     func(ctx context.Context, ticketID string) (models.Ticket, error)
	listQueueFn     func(ctx context.Context, unitID string) ([]models.Ticket, error)
	callFn          func(ctx context.Context, input store.CallTicketInput) (models.Ticket, error)
	callNextFn      func(ctx context.Context, input store.CallNextInput) (models.Ticket, error)
	finishFn        func(ctx context.Context, ticketID string, finishedAt time.Time) (models.Ticket, error)
	missFn          func(ctx context.Context, ticketID string) (models.Ticket, error)
	historyFn       func(ctx context.Context, filter store.HistoryFilter) ([]models.Ticket, error)
	displayFn       func(ctx context.Context, unitID string) (store.DisplayFeed, error)
	listUnitsFn     func(ctx context.Context) ([]models.Unit, error)
	createUnitFn    func(ctx context.Context, unit models.Unit) (models.Unit, error)
	getUnitFn       func(ctx context.Context, unitID string) (models.Unit, error)
	updateUnitFn    func(ctx context.Context, unit models.Unit) (models.Unit, error)
	deleteUnitFn    func(ctx context.Context, unitID string) error
	listCatsFn      func(ctx context.Context, unitID string) ([]models.Category, error)
	createCatFn     func(ctx context.Context, category models.Category) (models.Category, error)
	getCategoryFn   func(ctx context.Context, categoryID string) (models.Category, error)
	updateCatFn     func(ctx context.Context, category models.Category) (models.Category, error)
	deleteCatFn     func(ctx context.Context, categoryID string) error
	listCountersFn  func(ctx context.Context, unitID string) ([]models.Counter, error)
	createCounterFn func(ctx context.Context, counter models.Counter) (models.Counter, error)
	getCounterFn    func(ctx context.Context, counterID string) (models.Counter, error)
	updateCounterFn func(ctx context.Context, counter models.Counter) (models.Counter, error)
	deleteCounterFn func(ctx context.Context, counterID string) error
	getSettingsFn   func(ctx context.Context, unitID string) (models.DisplaySettings, error)
	updSettingsFn   func(ctx context.Context, unitID string, update store.DisplaySettingsUpdate) (models.DisplaySettings, error)
	authFn          func(ctx context.Context, username, password string) (models.User, error)
	createUserFn    func(ctx context.Context, input store.NewUserInput) (models.User, error)
	getUserFn       func(ctx context.Context, userID string) (models.User, error)
	dashboardFn     func(ctx context.Context, unitID string, day time.Time) (store.DashboardReport, error)
	periodFn        func(ctx context.Context, unitID string, from, to time.Time) (store.PeriodReport, error)
	exportFn        func(ctx context.Context, filter store.ExportFilter) (store.ExportReport, error)
}

func (f fakeStore) IssueTicket(ctx context.Context, input store.IssueTicketInput) (models.Ticket, error) {
	if f.issueFn == nil {
		return models.Ticket{}, nil
	}
	return f.issueFn(ctx, input)
}

func (f fakeStore) GetTicket(ctx context.Context, ticketID string) (models.Ticket, error) {
	if f.getTicketFn == nil {
		return models.Ticket{}, store.ErrTicketNotFound
	}
	return f.getTicketFn(ctx, ticketID)
}

func (f fakeStore) ListQueue(ctx context.Context, unitID string) ([]models.Ticket, error) {
	if f.listQueueFn == nil {
		return nil, nil
	}
	return f.listQueueFn(ctx, unitID)
}

func (f fakeStore) CallTicket(ctx context.Context, input store.CallTicketInput) (models.Ticket, error) {
	if f.callFn == nil {
		return models.Ticket{}, nil
	}
	return f.callFn(ctx, input)
}

func (f fakeStore) CallNext(ctx context.Context, input store.CallNextInput) (models.Ticket, error) {
	if f.callNextFn == nil {
		return models.Ticket{}, store.ErrNoTicket
	}
	return f.callNextFn(ctx, input)
}

func (f fakeStore) FinishTicket(ctx context.Context, ticketID string, finishedAt time.Time) (models.Ticket, error) {
	if f.finishFn == nil {
		return models.Ticket{}, nil
	}
	return f.finishFn(ctx, ticketID, finishedAt)
}

func (f fakeStore) MissTicket(ctx context.Context, ticketID string) (models.Ticket, error) {
	if f.missFn == nil {
		return models.Ticket{}, nil
	}
	return f.missFn(ctx, ticketID)
}

func (f fakeStore) ListHistory(ctx context.Context, filter store.HistoryFilter) ([]models.Ticket, error) {
	if f.historyFn == nil {
		return nil, nil
	}
	return f.historyFn(ctx, filter)
}

func (f fakeStore) CurrentDisplay(ctx context.Context, unitID string) (store.DisplayFeed, error) {
	if f.displayFn == nil {
		return store.DisplayFeed{}, nil
	}
	return f.displayFn(ctx, unitID)
}

func (f fakeStore) ListUnits(ctx context.Context) ([]models.Unit, error) {
	if f.listUnitsFn == nil {
		return nil, nil
	}
	return f.listUnitsFn(ctx)
}

func (f fakeStore) CreateUnit(ctx context.Context, unit models.Unit) (models.Unit, error) {
	if f.createUnitFn == nil {
		return unit, nil
	}
	return f.createUnitFn(ctx, unit)
}

func (f fakeStore) GetUnit(ctx context.Context, unitID string) (models.Unit, error) {
	if f.getUnitFn == nil {
		return models.Unit{}, store.ErrUnitNotFound
	}
	return f.getUnitFn(ctx, unitID)
}

func (f fakeStore) UpdateUnit(ctx context.Context, unit models.Unit) (models.Unit, error) {
	if f.updateUnitFn == nil {
		return unit, nil
	}
	return f.updateUnitFn(ctx, unit)
}

func (f fakeStore) DeleteUnit(ctx context.Context, unitID string) error {
	if f.deleteUnitFn == nil {
		return nil
	}
	return f.deleteUnitFn(ctx, unitID)
}

func (f fakeStore) ListCategories(ctx context.Context, unitID string) ([]models.Category, error) {
	if f.listCatsFn == nil {
		return nil, nil
	}
	return f.listCatsFn(ctx, unitID)
}

func (f fakeStore) CreateCategory(ctx context.Context, category models.Category) (models.Category, error) {
	if f.createCatFn == nil {
		return category, nil
	}
	return f.createCatFn(ctx, category)
}

func (f fakeStore) GetCategory(ctx context.Context, categoryID string) (models.Category, error) {
	if f.getCategoryFn == nil {
		return models.Category{}, store.ErrCategoryNotFound
	}
	return f.getCategoryFn(ctx, categoryID)
}

func (f fakeStore) UpdateCategory(ctx context.Context, category models.Category) (models.Category, error) {
	if f.updateCatFn == nil {
		return category, nil
	}
	return f.updateCatFn(ctx, category)
}

func (f fakeStore) DeleteCategory(ctx context.Context, categoryID string) error {
	if f.deleteCatFn == nil {
		return nil
	}
	return f.deleteCatFn(ctx, categoryID)
}

func (f fakeStore) ListCounters(ctx context.Context, unitID string) ([]models.Counter, error) {
	if f.listCountersFn == nil {
		return nil, nil
	}
	return f.listCountersFn(ctx, unitID)
}

func (f fakeStore) CreateCounter(ctx context.Context, counter models.Counter) (models.Counter, error) {
	if f.createCounterFn == nil {
		return counter, nil
	}
	return f.createCounterFn(ctx, counter)
}

func (f fakeStore) GetCounter(ctx context.Context, counterID string) (models.Counter, error) {
	if f.getCounterFn == nil {
		return models.Counter{}, store.ErrCounterNotFound
	}
	return f.getCounterFn(ctx, counterID)
}

func (f fakeStore) UpdateCounter(ctx context.Context, counter models.Counter) (models.Counter, error) {
	if f.updateCounterFn == nil {
		return counter, nil
	}
	return f.updateCounterFn(ctx, counter)
}

func (f fakeStore) DeleteCounter(ctx context.Context, counterID string) error {
	if f.deleteCounterFn == nil {
		return nil
	}
	return f.deleteCounterFn(ctx, counterID)
}

func (f fakeStore) GetDisplaySettings(ctx context.Context, unitID string) (models.DisplaySettings, error) {
	if f.getSettingsFn == nil {
		return models.DisplaySettings{}, store.ErrSettingsNotFound
	}
	return f.getSettingsFn(ctx, unitID)
}

func (f fakeStore) UpdateDisplaySettings(ctx context.Context, unitID string, update store.DisplaySettingsUpdate) (models.DisplaySettings, error) {
	if f.updSettingsFn == nil {
		return models.DisplaySettings{}, nil
	}
	return f.updSettingsFn(ctx, unitID, update)
}

func (f fakeStore) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	if f.authFn == nil {
		return models.User{}, store.ErrInvalidCredentials
	}
	return f.authFn(ctx, username, password)
}

func (f fakeStore) CreateUser(ctx context.Context, input store.NewUserInput) (models.User, error) {
	if f.createUserFn == nil {
		return models.User{}, nil
	}
	return f.createUserFn(ctx, input)
}

func (f fakeStore) GetUser(ctx context.Context, userID string) (models.User, error) {
	if f.getUserFn == nil {
		return models.User{}, store.ErrUserNotFound
	}
	return f.getUserFn(ctx, userID)
}

func (f fakeStore) DashboardReport(ctx context.Context, unitID string, day time.Time) (store.DashboardReport, error) {
	if f.dashboardFn == nil {
		return store.DashboardReport{}, nil
	}
	return f.dashboardFn(ctx, unitID, day)
}

func (f fakeStore) PeriodReport(ctx context.Context, unitID string, from, to time.Time) (store.PeriodReport, error) {
	if f.periodFn == nil {
		return store.PeriodReport{}, nil
	}
	return f.periodFn(ctx, unitID, from, to)
}

func (f fakeStore) ExportReport(ctx context.Context, filter store.ExportFilter) (store.ExportReport, error) {
	if f.exportFn == nil {
		return store.ExportReport{}, nil
	}
	return f.exportFn(ctx, filter)
}

const testSecret = "test-secret"

func newTestHandler(fake fakeStore) (http.Handler, *auth.TokenManager) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	handler := NewHandler(fake, tokens)
	return handler.Routes(), tokens
}

func signedToken(t *testing.T, tokens *auth.TokenManager, user models.User) string {
	t.Helper()
	token, err := tokens.Sign(user)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func adminUser() models.User {
	return models.User{
		UserID:   uuid.NewString(),
		Username: "admin",
		Role:     models.RoleAdmin,
		Active:   true,
	}
}

func attendantUser(unitID string) models.User {
	return models.User{
		UserID:   uuid.NewString(),
		Username: "attendant",
		Role:     models.RoleAttendant,
		UnitID:   &unitID,
		Active:   true,
	}
}

func userLookup(users ...models.User) func(ctx context.Context, userID string) (models.User, error) {
	return func(ctx context.Context, userID string) (models.User, error) {
		for _, user := range users {
			if user.UserID == userID {
				return user, nil
			}
		}
		return models.User{}, store.ErrUserNotFound
	}
}

func TestLogin(t *testing.T) {
	user := adminUser()
	fake := fakeStore{
		authFn: func(ctx context.Context, username, password string) (models.User, error) {
			if username == "admin" && password == "pw" {
				return user, nil
			}
			if username == "disabled" {
				return models.User{}, store.ErrAccountDisabled
			}
			return models.User{}, store.ErrInvalidCredentials
		},
	}
	routes, tokens := newTestHandler(fake)

	body := bytes.NewBufferString(`{"username":"admin","password":"pw"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected token in response")
	}
	claims, err := tokens.Verify(resp.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.UserID != user.UserID {
		t.Fatalf("expected user %s in claims, got %s", user.UserID, claims.UserID)
	}

	body = bytes.NewBufferString(`{"username":"admin","password":"wrong"}`)
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", body))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials, got %s", code)
	}

	body = bytes.NewBufferString(`{"username":"disabled","password":"pw"}`)
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", body))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for disabled account, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "account_disabled" {
		t.Fatalf("expected account_disabled, got %s", code)
	}
}

func TestMissingToken(t *testing.T) {
	routes, _ := newTestHandler(fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/tickets/queue?unit_id="+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGenerateTicket(t *testing.T) {
	unitID := uuid.NewString()
	otherUnit := uuid.NewString()
	categoryID := uuid.NewString()
	admin := adminUser()
	attendant := attendantUser(otherUnit)

	fake := fakeStore{
		getUserFn: userLookup(admin, attendant),
		getCategoryFn: func(ctx context.Context, id string) (models.Category, error) {
			if id != categoryID {
				return models.Category{}, store.ErrCategoryNotFound
			}
			return models.Category{CategoryID: categoryID, UnitID: unitID, Prefix: "N", Active: true}, nil
		},
		issueFn: func(ctx context.Context, input store.IssueTicketInput) (models.Ticket, error) {
			return models.Ticket{
				TicketID:     uuid.NewString(),
				TicketNumber: "N001",
				CategoryID:   input.CategoryID,
				UnitID:       unitID,
				Status:       models.StatusWaiting,
			}, nil
		},
	}
	routes, tokens := newTestHandler(fake)

	body := bytes.NewBufferString(`{"category_id":"` + categoryID + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/generate", body)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, tokens, admin))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var ticket models.Ticket
	if err := json.Unmarshal(rec.Body.Bytes(), &ticket); err != nil {
		t.Fatalf("decode ticket: %v", err)
	}
	if ticket.TicketNumber != "N001" || ticket.Status != models.StatusWaiting {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}

	body = bytes.NewBufferString(`{"category_id":"` + categoryID + `"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/tickets/generate", body)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, tokens, attendant))
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cross-unit attendant, got %d", rec.Code)
	}
}

func TestGenerateTicketInactiveCategory(t *testing.T) {
	categoryID := uuid.NewString()
	unitID := uuid.NewString()
	admin := adminUser()

	fake := fakeStore{
		getUserFn: userLookup(admin),
		getCategoryFn: func(ctx context.Context, id string) (models.Category, error) {
			return models.Category{CategoryID: categoryID, UnitID: unitID, Active: false}, nil
		},
		issueFn: func(ctx context.Context, input store.IssueTicketInput) (models.Ticket, error) {
			return models.Ticket{}, store.ErrCategoryInactive
		},
	}
	routes, tokens := newTestHandler(fake)

	body := bytes.NewBufferString(`{"category_id":"` + categoryID + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/generate", body)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, tokens, admin))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "category_inactive" {
		t.Fatalf("expected category_inactive, got %s", code)
	}
}

func TestCallNextEmptyQueue(t *testing.T) {
	unitID := uuid.NewString()
	counterID := uuid.NewString()
	admin := adminUser()

	fake := fakeStore{
		getUserFn: userLookup(admin),
		getCounterFn: func(ctx context.Context, id string) (models.Counter, error) {
			return models.Counter{CounterID: counterID, UnitID: unitID, Active: true}, nil
		},
		callNextFn: func(ctx context.Context, input store.CallNextInput) (models.Ticket, error) {
			return models.Ticket{}, store.ErrNoTicket
		},
	}
	routes, tokens := newTestHandler(fake)

	body := bytes.NewBufferString(`{"counter_id":"` + counterID + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/call-next", body)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, tokens, admin))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "queue_empty" {
		t.Fatalf("expected queue_empty, got %s", code)
	}
}

func TestFinishInvalidTransition(t *testing.T) {
	unitID := uuid.NewString()
	ticketID := uuid.NewString()
	admin := adminUser()

	fake := fakeStore{
		getUserFn: userLookup(admin),
		getTicketFn: func(ctx context.Context, id string) (models.Ticket, error) {
			return models.Ticket{TicketID: ticketID, UnitID: unitID, Status: models.StatusWaiting}, nil
		},
		finishFn: func(ctx context.Context, id string, finishedAt time.Time) (models.Ticket, error) {
			return models.Ticket{}, store.ErrInvalidTransition
		},
	}
	routes, tokens := newTestHandler(fake)

	req := httptest.NewRequest(http.MethodPost, "/api/tickets/"+ticketID+"/finish", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, tokens, admin))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "invalid_transition" {
		t.Fatalf("expected invalid_transition, got %s", code)
	}
}

func TestCurrentDisplayIsPublic(t *testing.T) {
	unitID := uuid.NewString()
	current := models.Ticket{TicketID: uuid.NewString(), TicketNumber: "P003", UnitID: unitID, Status: models.StatusCalling}

	fake := fakeStore{
		displayFn: func(ctx context.Context, id string) (store.DisplayFeed, error) {
			return store.DisplayFeed{Current: &current, Recent: []models.Ticket{}}, nil
		},
	}
	routes, _ := newTestHandler(fake)

	req := httptest.NewRequest(http.MethodGet, "/api/tickets/current-display?unit_id="+unitID, nil)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without token, got %d: %s", rec.Code, rec.Body.String())
	}
	var feed store.DisplayFeed
	if err := json.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if feed.Current == nil || feed.Current.TicketNumber != "P003" {
		t.Fatalf("unexpected feed: %+v", feed)
	}
}

func TestDisplaySettingsValidation(t *testing.T) {
	unitID := uuid.NewString()
	admin := adminUser()

	fake := fakeStore{
		getUserFn: userLookup(admin),
		updSettingsFn: func(ctx context.Context, id string, update store.DisplaySettingsUpdate) (models.DisplaySettings, error) {
			settings := models.DisplaySettings{UnitID: id, ShowLastTickets: 5, Theme: "light"}
			if update.ShowLastTickets != nil {
				settings.ShowLastTickets = *update.ShowLastTickets
			}
			if update.Theme != nil {
				settings.Theme = *update.Theme
			}
			return settings, nil
		},
	}
	routes, tokens := newTestHandler(fake)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"valid", `{"show_last_tickets_count":3,"theme":"dark"}`, http.StatusOK},
		{"count too high", `{"show_last_tickets_count":11}`, http.StatusBadRequest},
		{"count too low", `{"show_last_tickets_count":0}`, http.StatusBadRequest},
		{"bad theme", `{"theme":"neon"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/display/settings/"+unitID, bytes.NewBufferString(tc.body))
			req.Header.Set("Authorization", "Bearer "+signedToken(t, tokens, admin))
			rec := httptest.NewRecorder()
			routes.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRegisterRequiresAdmin(t *testing.T) {
	unitID := uuid.NewString()
	attendant := attendantUser(unitID)

	fake := fakeStore{
		getUserFn: userLookup(attendant),
	}
	routes, tokens := newTestHandler(fake)

	body := bytes.NewBufferString(`{"username":"new","email":"new@example.com","password":"pw","role":"attendant"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", body)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, tokens, attendant))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestQueueScoping(t *testing.T) {
	unitID := uuid.NewString()
	otherUnit := uuid.NewString()
	attendant := attendantUser(unitID)

	fake := fakeStore{
		getUserFn: userLookup(attendant),
		listQueueFn: func(ctx context.Context, id string) ([]models.Ticket, error) {
			if id != unitID {
				t.Fatalf("unexpected unit %s", id)
			}
			return []models.Ticket{{TicketID: uuid.NewString(), UnitID: unitID, Status: models.StatusWaiting}}, nil
		},
	}
	routes, tokens := newTestHandler(fake)

	// No unit_id falls back to the attendant's own unit.
	req := httptest.NewRequest(http.MethodGet, "/api/tickets/queue", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, tokens, attendant))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/tickets/queue?unit_id="+otherUnit, nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, tokens, attendant))
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign unit, got %d", rec.Code)
	}
}

func TestDisabledUserRejected(t *testing.T) {
	admin := adminUser()
	disabled := admin
	disabled.Active = false

	fake := fakeStore{
		getUserFn: userLookup(disabled),
	}
	routes, tokens := newTestHandler(fake)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, tokens, admin))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for disabled account, got %d", rec.Code)
	}
}

func TestAttendantManagesOwnUnitCategories(t *testing.T) {
	unitID := uuid.NewString()
	otherUnit := uuid.NewString()
	attendant := attendantUser(unitID)
	foreignCategory := uuid.NewString()

	fake := fakeStore{
		getUserFn: userLookup(attendant),
		createCatFn: func(ctx context.Context, category models.Category) (models.Category, error) {
			if category.UnitID != unitID {
				t.Fatalf("expected create in unit %s, got %s", unitID, category.UnitID)
			}
			category.CategoryID = uuid.NewString()
			return category, nil
		},
		getCategoryFn: func(ctx context.Context, id string) (models.Category, error) {
			return models.Category{CategoryID: id, UnitID: otherUnit, Name: "Foreign", Prefix: "F", Active: true}, nil
		},
	}
	routes, tokens := newTestHandler(fake)
	token := signedToken(t, tokens, attendant)

	body := bytes.NewBufferString(`{"name":"Preferencial","prefix":"P","priority":10}`)
	req := httptest.NewRequest(http.MethodPost, "/api/categories", body)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for attendant in own unit, got %d: %s", rec.Code, rec.Body.String())
	}

	// An explicit foreign unit_id is overridden with the attendant's own.
	body = bytes.NewBufferString(`{"unit_id":"` + otherUnit + `","name":"Normal","prefix":"N"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/categories", body)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 with overridden unit, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/categories/"+foreignCategory, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign-unit category, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "access_denied" {
		t.Fatalf("expected access_denied, got %s", code)
	}
}

func TestAttendantManagesOwnUnitCounters(t *testing.T) {
	unitID := uuid.NewString()
	otherUnit := uuid.NewString()
	attendant := attendantUser(unitID)
	counterID := uuid.NewString()

	fake := fakeStore{
		getUserFn: userLookup(attendant),
		createCounterFn: func(ctx context.Context, counter models.Counter) (models.Counter, error) {
			if counter.UnitID != unitID {
				t.Fatalf("expected create in unit %s, got %s", unitID, counter.UnitID)
			}
			counter.CounterID = uuid.NewString()
			return counter, nil
		},
		getCounterFn: func(ctx context.Context, id string) (models.Counter, error) {
			return models.Counter{CounterID: id, UnitID: otherUnit, Name: "Guiche 9", Active: true}, nil
		},
	}
	routes, tokens := newTestHandler(fake)
	token := signedToken(t, tokens, attendant)

	body := bytes.NewBufferString(`{"name":"Guiche 3"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/counters", body)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for attendant in own unit, got %d: %s", rec.Code, rec.Body.String())
	}

	body = bytes.NewBufferString(`{"name":"Guiche 9","is_active":false}`)
	req = httptest.NewRequest(http.MethodPut, "/api/counters/"+counterID, body)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign-unit counter, got %d", rec.Code)
	}
}

func TestExportReport(t *testing.T) {
	unitID := uuid.NewString()
	categoryID := uuid.NewString()
	attendant := attendantUser(unitID)

	fake := fakeStore{
		getUserFn: userLookup(attendant),
		exportFn: func(ctx context.Context, filter store.ExportFilter) (store.ExportReport, error) {
			if filter.UnitID != unitID {
				t.Fatalf("expected unit %s, got %s", unitID, filter.UnitID)
			}
			if filter.CategoryID != categoryID {
				t.Fatalf("expected category %s, got %s", categoryID, filter.CategoryID)
			}
			if filter.From.Format("2006-01-02") != "2026-08-01" || filter.To.Format("2006-01-02") != "2026-08-28" {
				t.Fatalf("unexpected date range: %v - %v", filter.From, filter.To)
			}
			return store.ExportReport{
				Rows:    []store.ExportRow{{TicketNumber: "N001", Category: "Normal", Status: models.StatusFinished}},
				Summary: store.ExportSummary{Total: 1, Period: "2026-08-01 to 2026-08-28"},
			}, nil
		},
	}
	routes, tokens := newTestHandler(fake)

	// Attendants fall back to their own unit, same as the other reports.
	url := "/api/reports/export?start_date=2026-08-01&end_date=2026-08-28&category_id=" + categoryID
	req := httptest.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, tokens, attendant))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report store.ExportReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Summary.Total != 1 || len(report.Rows) != 1 || report.Rows[0].TicketNumber != "N001" {
		t.Fatalf("unexpected report: %+v", report)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/reports/export?start_date=bad", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, tokens, attendant))
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad start_date, got %d", rec.Code)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp.Error.Code
}
