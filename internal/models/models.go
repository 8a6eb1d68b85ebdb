package models

import "time"

// Ticket statuses. A ticket starts in waiting, moves to calling when a
// counter calls it, and ends in finished or missed.
const (
	StatusWaiting  = "waiting"
	StatusCalling  = "calling"
	StatusFinished = "finished"
	StatusMissed   = "missed"
)

const (
	RoleAdmin     = "admin"
	RoleAttendant = "attendant"
)

// Unit is a tenant branch. Counters, categories, and tickets all belong
// to exactly one unit.
type Unit struct {
	UnitID    string    `json:"unit_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Category is a queue class within a unit. Prefix is the 1-5 character
// uppercase code stamped on ticket numbers; priority orders the queue,
// higher first.
type Category struct {
	CategoryID string    `json:"category_id"`
	UnitID     string    `json:"unit_id"`
	Name       string    `json:"name"`
	Prefix     string    `json:"prefix"`
	Priority   int       `json:"priority"`
	Active     bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

type Counter struct {
	CounterID string    `json:"counter_id"`
	UnitID    string    `json:"unit_id"`
	Name      string    `json:"name"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type Ticket struct {
	TicketID     string     `json:"ticket_id"`
	TicketNumber string     `json:"ticket_number"`
	CategoryID   string     `json:"category_id"`
	UnitID       string     `json:"unit_id"`
	CounterID    *string    `json:"counter_id,omitempty"`
	Status       string     `json:"status"`
	GeneratedAt  time.Time  `json:"generated_at"`
	CalledAt     *time.Time `json:"called_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	// ServiceTime is whole seconds between called_at and finished_at,
	// set only when the ticket reaches finished.
	ServiceTime *int `json:"service_time,omitempty"`
}

type User struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	UnitID    *string   `json:"unit_id,omitempty"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplaySettings is the per-unit configuration of the public display.
type DisplaySettings struct {
	UnitID          string    `json:"unit_id"`
	Message         string    `json:"message"`
	ShowLastTickets int       `json:"show_last_tickets_count"`
	SoundEnabled    bool      `json:"sound_enabled"`
	Theme           string    `json:"theme"`
	UpdatedAt       time.Time `json:"updated_at"`
}
