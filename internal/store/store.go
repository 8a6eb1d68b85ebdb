package store

import (
	"context"
	"time"

	"github.com/joelson-hub/Pianelsenhas/internal/models"
)

type IssueTicketInput struct {
	CategoryID  string
	GeneratedAt time.Time
}

type CallTicketInput struct {
	TicketID  string
	CounterID string
	CalledAt  time.Time
}

type CallNextInput struct {
	CounterID string
	CalledAt  time.Time
}

// HistoryFilter narrows the ticket history listing. Zero times mean
// unbounded; empty strings mean no filter.
type HistoryFilter struct {
	UnitID     string
	CategoryID string
	Status     string
	From       time.Time
	To         time.Time
}

type NewUserInput struct {
	Username string
	Email    string
	Password string
	Role     string
	UnitID   *string
}

// DisplaySettingsUpdate carries partial updates; nil fields are left
// unchanged.
type DisplaySettingsUpdate struct {
	Message         *string
	ShowLastTickets *int
	SoundEnabled    *bool
	Theme           *string
}

type DisplayFeed struct {
	Current *models.Ticket  `json:"current_ticket"`
	Recent  []models.Ticket `json:"recent_tickets"`
}

type DashboardReport struct {
	Summary    DashboardSummary `json:"summary"`
	Categories []CategoryStat   `json:"category_stats"`
	Counters   []CounterStat    `json:"counter_stats"`
}

type DashboardSummary struct {
	TotalToday     int     `json:"total_today"`
	WaitingCount   int     `json:"waiting_count"`
	FinishedCount  int     `json:"finished_count"`
	MissedCount    int     `json:"missed_count"`
	AvgServiceTime float64 `json:"avg_service_time"`
}

type CategoryStat struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
	Count  int    `json:"count"`
}

type CounterStat struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	AvgTime float64 `json:"avg_time"`
}

type PeriodReport struct {
	StartDate  string              `json:"start_date"`
	EndDate    string              `json:"end_date"`
	Summary    PeriodSummary       `json:"summary"`
	Daily      []DailyStat         `json:"daily_stats"`
	Categories []PeriodCategoryRow `json:"category_stats"`
}

type PeriodSummary struct {
	TotalTickets   int     `json:"total_tickets"`
	FinishedCount  int     `json:"finished_count"`
	MissedCount    int     `json:"missed_count"`
	AvgServiceTime float64 `json:"avg_service_time"`
}

type DailyStat struct {
	Date     string `json:"date"`
	Total    int    `json:"total"`
	Finished int    `json:"finished"`
	Missed   int    `json:"missed"`
	Waiting  int    `json:"waiting"`
}

type PeriodCategoryRow struct {
	Name     string  `json:"name"`
	Total    int     `json:"total"`
	Finished int     `json:"finished"`
	Missed   int     `json:"missed"`
	AvgTime  float64 `json:"avg_time"`
}

// ExportFilter narrows the raw ticket export. Zero values mean "all".
type ExportFilter struct {
	UnitID     string
	CategoryID string
	From       time.Time
	To         time.Time
}

type ExportReport struct {
	Rows    []ExportRow   `json:"data"`
	Summary ExportSummary `json:"summary"`
}

type ExportRow struct {
	TicketNumber string  `json:"ticket_number"`
	Category     string  `json:"category"`
	Counter      string  `json:"counter"`
	Status       string  `json:"status"`
	GeneratedAt  string  `json:"generated_at"`
	CalledAt     *string `json:"called_at"`
	FinishedAt   *string `json:"finished_at"`
	ServiceTime  *int    `json:"service_time"`
}

type ExportSummary struct {
	Total  int    `json:"total"`
	Period string `json:"period"`
}

type TicketStore interface {
	IssueTicket(ctx context.Context, input IssueTicketInput) (models.Ticket, error)
	GetTicket(ctx context.Context, ticketID string) (models.Ticket, error)
	ListQueue(ctx context.Context, unitID string) ([]models.Ticket, error)
	CallTicket(ctx context.Context, input CallTicketInput) (models.Ticket, error)
	CallNext(ctx context.Context, input CallNextInput) (models.Ticket, error)
	FinishTicket(ctx context.Context, ticketID string, finishedAt time.Time) (models.Ticket, error)
	MissTicket(ctx context.Context, ticketID string) (models.Ticket, error)
	ListHistory(ctx context.Context, filter HistoryFilter) ([]models.Ticket, error)
	CurrentDisplay(ctx context.Context, unitID string) (DisplayFeed, error)
}

type RegistryStore interface {
	ListUnits(ctx context.Context) ([]models.Unit, error)
	CreateUnit(ctx context.Context, unit models.Unit) (models.Unit, error)
	GetUnit(ctx context.Context, unitID string) (models.Unit, error)
	UpdateUnit(ctx context.Context, unit models.Unit) (models.Unit, error)
	DeleteUnit(ctx context.Context, unitID string) error

	ListCategories(ctx context.Context, unitID string) ([]models.Category, error)
	CreateCategory(ctx context.Context, category models.Category) (models.Category, error)
	GetCategory(ctx context.Context, categoryID string) (models.Category, error)
	UpdateCategory(ctx context.Context, category models.Category) (models.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error

	ListCounters(ctx context.Context, unitID string) ([]models.Counter, error)
	CreateCounter(ctx context.Context, counter models.Counter) (models.Counter, error)
	GetCounter(ctx context.Context, counterID string) (models.Counter, error)
	UpdateCounter(ctx context.Context, counter models.Counter) (models.Counter, error)
	DeleteCounter(ctx context.Context, counterID string) error

	GetDisplaySettings(ctx context.Context, unitID string) (models.DisplaySettings, error)
	UpdateDisplaySettings(ctx context.Context, unitID string, update DisplaySettingsUpdate) (models.DisplaySettings, error)
}

type UserStore interface {
	// Authenticate verifies credentials. A wrong username or password
	// yields ErrInvalidCredentials; a correct password on a disabled
	// account yields ErrAccountDisabled.
	Authenticate(ctx context.Context, username, password string) (models.User, error)
	CreateUser(ctx context.Context, input NewUserInput) (models.User, error)
	GetUser(ctx context.Context, userID string) (models.User, error)
}

type ReportStore interface {
	DashboardReport(ctx context.Context, unitID string, day time.Time) (DashboardReport, error)
	PeriodReport(ctx context.Context, unitID string, from, to time.Time) (PeriodReport, error)
	ExportReport(ctx context.Context, filter ExportFilter) (ExportReport, error)
}

type Store interface {
	TicketStore
	RegistryStore
	UserStore
	ReportStore
}
