package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joelson-hub/Pianelsenhas/internal/models"
	"github.com/joelson-hub/Pianelsenhas/internal/store"
)

const ticketNumberPad = 3

const ticketColumns = "ticket_id, ticket_number, category_id, unit_id, counter_id, status, generated_at, called_at, finished_at, service_time"

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// sequenceDay is the UTC calendar day a generation timestamp falls on.
// Sequences restart at 1 on each UTC midnight.
func sequenceDay(at time.Time) time.Time {
	return at.UTC().Truncate(24 * time.Hour)
}

// formatTicketNumber renders prefix + zero-padded sequence. The pad is
// fixed at 3 digits; sequences past 999 widen the string rather than
// wrap or truncate.
func formatTicketNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s%0*d", prefix, ticketNumberPad, seq)
}

// nextTicketNumber hands out the next sequence value for the
// (unit, prefix, day) tuple. The upsert-returning runs as a single
// atomic statement, so concurrent issuance for the same category can
// never observe the same value.
func nextTicketNumber(ctx context.Context, tx pgx.Tx, unitID, prefix string, day time.Time) (int64, error) {
	var next int64
	row := tx.QueryRow(ctx, `
		INSERT INTO ticket_sequences (unit_id, prefix, day, next_number)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (unit_id, prefix, day)
		DO UPDATE SET next_number = ticket_sequences.next_number + 1
		RETURNING next_number
	`, unitID, prefix, day)
	if err := row.Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Store) IssueTicket(ctx context.Context, input store.IssueTicketInput) (models.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Ticket{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var unitID, prefix string
	var active bool
	row := tx.QueryRow(ctx, `
		SELECT unit_id, prefix, is_active
		FROM categories
		WHERE category_id = $1
	`, input.CategoryID)
	if err = row.Scan(&unitID, &prefix, &active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ticket{}, store.ErrCategoryNotFound
		}
		return models.Ticket{}, err
	}
	if !active {
		return models.Ticket{}, store.ErrCategoryInactive
	}

	generatedAt := input.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	seq, err := nextTicketNumber(ctx, tx, unitID, prefix, sequenceDay(generatedAt))
	if err != nil {
		return models.Ticket{}, err
	}

	var ticket models.Ticket
	row = tx.QueryRow(ctx, `
		INSERT INTO tickets (ticket_id, ticket_number, category_id, unit_id, status, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+ticketColumns+`
	`, uuid.NewString(), formatTicketNumber(prefix, seq), input.CategoryID, unitID, models.StatusWaiting, generatedAt)
	if ticket, err = scanTicket(row); err != nil {
		return models.Ticket{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

func (s *Store) GetTicket(ctx context.Context, ticketID string) (models.Ticket, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE ticket_id = $1
	`, ticketID)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ticket{}, store.ErrTicketNotFound
		}
		return models.Ticket{}, err
	}
	return ticket, nil
}

// ListQueue returns waiting tickets for a unit, highest category
// priority first and FIFO within a priority class.
func (s *Store) ListQueue(ctx context.Context, unitID string) ([]models.Ticket, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.ticket_id, t.ticket_number, t.category_id, t.unit_id, t.counter_id, t.status, t.generated_at, t.called_at, t.finished_at, t.service_time
		FROM tickets t
		JOIN categories c ON c.category_id = t.category_id
		WHERE t.unit_id = $1 AND t.status = $2
		ORDER BY c.priority DESC, t.generated_at ASC
	`, unitID, models.StatusWaiting)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (s *Store) CallTicket(ctx context.Context, input store.CallTicketInput) (models.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Ticket{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = ensureCounterActive(ctx, tx, input.CounterID); err != nil {
		return models.Ticket{}, err
	}

	calledAt := input.CalledAt
	if calledAt.IsZero() {
		calledAt = time.Now().UTC()
	}

	var ticket models.Ticket
	row := tx.QueryRow(ctx, `
		UPDATE tickets
		SET status = $1,
			counter_id = $2,
			called_at = $3
		WHERE ticket_id = $4 AND status IN ($5, $6)
		RETURNING `+ticketColumns+`
	`, models.StatusCalling, input.CounterID, calledAt, input.TicketID, models.StatusWaiting, models.StatusCalling)
	if ticket, err = scanTicket(row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ticket{}, classifyMissedUpdate(ctx, tx, input.TicketID)
		}
		return models.Ticket{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

// CallNext selects the queue head for the counter's unit and calls it in
// one statement. SKIP LOCKED keeps concurrent call-next transactions
// from racing onto the same ticket.
func (s *Store) CallNext(ctx context.Context, input store.CallNextInput) (models.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Ticket{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var unitID string
	var active bool
	row := tx.QueryRow(ctx, `
		SELECT unit_id, is_active
		FROM counters
		WHERE counter_id = $1
	`, input.CounterID)
	if err = row.Scan(&unitID, &active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ticket{}, store.ErrCounterNotFound
		}
		return models.Ticket{}, err
	}
	if !active {
		return models.Ticket{}, store.ErrCounterInactive
	}

	calledAt := input.CalledAt
	if calledAt.IsZero() {
		calledAt = time.Now().UTC()
	}

	var ticket models.Ticket
	row = tx.QueryRow(ctx, `
		WITH next_ticket AS (
			SELECT t.ticket_id
			FROM tickets t
			JOIN categories c ON c.category_id = t.category_id
			WHERE t.unit_id = $1 AND t.status = $2
			ORDER BY c.priority DESC, t.generated_at ASC
			FOR UPDATE OF t SKIP LOCKED
			LIMIT 1
		)
		UPDATE tickets
		SET status = $3,
			counter_id = $4,
			called_at = $5
		FROM next_ticket
		WHERE tickets.ticket_id = next_ticket.ticket_id
		RETURNING tickets.ticket_id, tickets.ticket_number, tickets.category_id, tickets.unit_id, tickets.counter_id, tickets.status, tickets.generated_at, tickets.called_at, tickets.finished_at, tickets.service_time
	`, unitID, models.StatusWaiting, models.StatusCalling, input.CounterID, calledAt)
	if ticket, err = scanTicket(row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ticket{}, store.ErrNoTicket
		}
		return models.Ticket{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

// FinishTicket closes out a calling ticket, deriving service_time in the
// same statement so the invariant (set iff finished, whole seconds of
// finished_at - called_at) holds under concurrency.
func (s *Store) FinishTicket(ctx context.Context, ticketID string, finishedAt time.Time) (models.Ticket, error) {
	if finishedAt.IsZero() {
		finishedAt = time.Now().UTC()
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Ticket{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var ticket models.Ticket
	row := tx.QueryRow(ctx, `
		UPDATE tickets
		SET status = $1,
			finished_at = $2,
			service_time = FLOOR(EXTRACT(EPOCH FROM ($2::timestamptz - called_at)))::int
		WHERE ticket_id = $3 AND status = $4
		RETURNING `+ticketColumns+`
	`, models.StatusFinished, finishedAt, ticketID, models.StatusCalling)
	if ticket, err = scanTicket(row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ticket{}, classifyMissedUpdate(ctx, tx, ticketID)
		}
		return models.Ticket{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

func (s *Store) MissTicket(ctx context.Context, ticketID string) (models.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Ticket{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var ticket models.Ticket
	row := tx.QueryRow(ctx, `
		UPDATE tickets
		SET status = $1
		WHERE ticket_id = $2 AND status = $3
		RETURNING `+ticketColumns+`
	`, models.StatusMissed, ticketID, models.StatusCalling)
	if ticket, err = scanTicket(row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ticket{}, classifyMissedUpdate(ctx, tx, ticketID)
		}
		return models.Ticket{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

func (s *Store) ListHistory(ctx context.Context, filter store.HistoryFilter) ([]models.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE unit_id = $1
	`
	args := []interface{}{filter.UnitID}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND generated_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND generated_at <= $%d", len(args))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY generated_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// CurrentDisplay builds the public display projection: the latest ticket
// still in calling, plus recent terminal tickets. The recent count comes
// from the unit's display settings, defaulting when none exist.
func (s *Store) CurrentDisplay(ctx context.Context, unitID string) (store.DisplayFeed, error) {
	limit := defaultShowLastTickets
	var configured int
	row := s.pool.QueryRow(ctx, `
		SELECT show_last_tickets_count
		FROM display_settings
		WHERE unit_id = $1
	`, unitID)
	if err := row.Scan(&configured); err == nil {
		limit = clampShowLastTickets(configured)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return store.DisplayFeed{}, err
	}

	var feed store.DisplayFeed
	row = s.pool.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE unit_id = $1 AND status = $2
		ORDER BY called_at DESC
		LIMIT 1
	`, unitID, models.StatusCalling)
	current, err := scanTicket(row)
	if err == nil {
		feed.Current = &current
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return store.DisplayFeed{}, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE unit_id = $1 AND status IN ($2, $3)
		ORDER BY called_at DESC
		LIMIT $4
	`, unitID, models.StatusFinished, models.StatusMissed, limit)
	if err != nil {
		return store.DisplayFeed{}, err
	}
	defer rows.Close()
	recent, err := scanTickets(rows)
	if err != nil {
		return store.DisplayFeed{}, err
	}
	feed.Recent = recent
	return feed, nil
}

func ensureCounterActive(ctx context.Context, tx pgx.Tx, counterID string) error {
	var active bool
	row := tx.QueryRow(ctx, `
		SELECT is_active
		FROM counters
		WHERE counter_id = $1
	`, counterID)
	if err := row.Scan(&active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrCounterNotFound
		}
		return err
	}
	if !active {
		return store.ErrCounterInactive
	}
	return nil
}

// classifyMissedUpdate runs after a conditional transition matched no
// row, to tell an absent ticket from one in the wrong state.
func classifyMissedUpdate(ctx context.Context, tx pgx.Tx, ticketID string) error {
	var status string
	row := tx.QueryRow(ctx, `
		SELECT status
		FROM tickets
		WHERE ticket_id = $1
	`, ticketID)
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrTicketNotFound
		}
		return err
	}
	return store.ErrInvalidTransition
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(row rowScanner) (models.Ticket, error) {
	var ticket models.Ticket
	var counterIDNull sql.NullString
	var calledAtNull sql.NullTime
	var finishedAtNull sql.NullTime
	var serviceTimeNull sql.NullInt32
	if err := row.Scan(&ticket.TicketID, &ticket.TicketNumber, &ticket.CategoryID, &ticket.UnitID, &counterIDNull, &ticket.Status, &ticket.GeneratedAt, &calledAtNull, &finishedAtNull, &serviceTimeNull); err != nil {
		return models.Ticket{}, err
	}
	ticket.CounterID = nullStringPtr(counterIDNull)
	ticket.CalledAt = nullTimePtr(calledAtNull)
	ticket.FinishedAt = nullTimePtr(finishedAtNull)
	if serviceTimeNull.Valid {
		value := int(serviceTimeNull.Int32)
		ticket.ServiceTime = &value
	}
	return ticket, nil
}

func scanTickets(rows pgx.Rows) ([]models.Ticket, error) {
	var tickets []models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

func nullTimePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	return &value.Time
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	return &value.String
}
