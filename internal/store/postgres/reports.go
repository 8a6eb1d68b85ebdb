package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/joelson-hub/Pianelsenhas/internal/models"
	"github.com/joelson-hub/Pianelsenhas/internal/store"
)

const exportTimeLayout = "02/01/2006 15:04:05"

// DashboardReport aggregates a single UTC day for a unit: status
// counts, average service time, and per-category / per-counter volume.
func (s *Store) DashboardReport(ctx context.Context, unitID string, day time.Time) (store.DashboardReport, error) {
	start := sequenceDay(day)
	end := start.Add(24 * time.Hour)

	var report store.DashboardReport
	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = $4),
			COUNT(*) FILTER (WHERE status = $5),
			COUNT(*) FILTER (WHERE status = $6),
			COALESCE(AVG(service_time) FILTER (WHERE status = $5), 0)
		FROM tickets
		WHERE unit_id = $1 AND generated_at >= $2 AND generated_at < $3
	`, unitID, start, end, models.StatusWaiting, models.StatusFinished, models.StatusMissed)
	if err := row.Scan(
		&report.Summary.TotalToday,
		&report.Summary.WaitingCount,
		&report.Summary.FinishedCount,
		&report.Summary.MissedCount,
		&report.Summary.AvgServiceTime,
	); err != nil {
		return store.DashboardReport{}, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT c.name, c.prefix, COUNT(t.ticket_id)
		FROM categories c
		LEFT JOIN tickets t ON t.category_id = c.category_id
			AND t.generated_at >= $2 AND t.generated_at < $3
		WHERE c.unit_id = $1
		GROUP BY c.category_id, c.name, c.prefix
		ORDER BY COUNT(t.ticket_id) DESC, c.name ASC
	`, unitID, start, end)
	if err != nil {
		return store.DashboardReport{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var stat store.CategoryStat
		if err := rows.Scan(&stat.Name, &stat.Prefix, &stat.Count); err != nil {
			return store.DashboardReport{}, err
		}
		report.Categories = append(report.Categories, stat)
	}
	if err := rows.Err(); err != nil {
		return store.DashboardReport{}, err
	}

	counterRows, err := s.pool.Query(ctx, `
		SELECT co.name,
			COUNT(t.ticket_id),
			COALESCE(AVG(t.service_time), 0)
		FROM counters co
		LEFT JOIN tickets t ON t.counter_id = co.counter_id
			AND t.status = $4
			AND t.generated_at >= $2 AND t.generated_at < $3
		WHERE co.unit_id = $1
		GROUP BY co.counter_id, co.name
		ORDER BY COUNT(t.ticket_id) DESC, co.name ASC
	`, unitID, start, end, models.StatusFinished)
	if err != nil {
		return store.DashboardReport{}, err
	}
	defer counterRows.Close()
	for counterRows.Next() {
		var stat store.CounterStat
		if err := counterRows.Scan(&stat.Name, &stat.Count, &stat.AvgTime); err != nil {
			return store.DashboardReport{}, err
		}
		report.Counters = append(report.Counters, stat)
	}
	if err := counterRows.Err(); err != nil {
		return store.DashboardReport{}, err
	}

	return report, nil
}

// PeriodReport aggregates an inclusive date range for a unit, with a
// per-day breakdown and per-category totals.
func (s *Store) PeriodReport(ctx context.Context, unitID string, from, to time.Time) (store.PeriodReport, error) {
	start := sequenceDay(from)
	end := sequenceDay(to).Add(24 * time.Hour)

	report := store.PeriodReport{
		StartDate: start.Format("2006-01-02"),
		EndDate:   sequenceDay(to).Format("2006-01-02"),
	}

	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = $4),
			COUNT(*) FILTER (WHERE status = $5),
			COALESCE(AVG(service_time) FILTER (WHERE status = $4), 0)
		FROM tickets
		WHERE unit_id = $1 AND generated_at >= $2 AND generated_at < $3
	`, unitID, start, end, models.StatusFinished, models.StatusMissed)
	if err := row.Scan(
		&report.Summary.TotalTickets,
		&report.Summary.FinishedCount,
		&report.Summary.MissedCount,
		&report.Summary.AvgServiceTime,
	); err != nil {
		return store.PeriodReport{}, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT DATE(generated_at AT TIME ZONE 'UTC'),
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $4),
			COUNT(*) FILTER (WHERE status = $5),
			COUNT(*) FILTER (WHERE status = $6)
		FROM tickets
		WHERE unit_id = $1 AND generated_at >= $2 AND generated_at < $3
		GROUP BY DATE(generated_at AT TIME ZONE 'UTC')
		ORDER BY DATE(generated_at AT TIME ZONE 'UTC') ASC
	`, unitID, start, end, models.StatusFinished, models.StatusMissed, models.StatusWaiting)
	if err != nil {
		return store.PeriodReport{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var stat store.DailyStat
		var date time.Time
		if err := rows.Scan(&date, &stat.Total, &stat.Finished, &stat.Missed, &stat.Waiting); err != nil {
			return store.PeriodReport{}, err
		}
		stat.Date = date.Format("2006-01-02")
		report.Daily = append(report.Daily, stat)
	}
	if err := rows.Err(); err != nil {
		return store.PeriodReport{}, err
	}

	categoryRows, err := s.pool.Query(ctx, `
		SELECT c.name,
			COUNT(t.ticket_id),
			COUNT(t.ticket_id) FILTER (WHERE t.status = $4),
			COUNT(t.ticket_id) FILTER (WHERE t.status = $5),
			AVG(t.service_time) FILTER (WHERE t.status = $4)
		FROM categories c
		LEFT JOIN tickets t ON t.category_id = c.category_id
			AND t.generated_at >= $2 AND t.generated_at < $3
		WHERE c.unit_id = $1
		GROUP BY c.category_id, c.name
		ORDER BY COUNT(t.ticket_id) DESC, c.name ASC
	`, unitID, start, end, models.StatusFinished, models.StatusMissed)
	if err != nil {
		return store.PeriodReport{}, err
	}
	defer categoryRows.Close()
	for categoryRows.Next() {
		var stat store.PeriodCategoryRow
		var avg sql.NullFloat64
		if err := categoryRows.Scan(&stat.Name, &stat.Total, &stat.Finished, &stat.Missed, &avg); err != nil {
			return store.PeriodReport{}, err
		}
		if avg.Valid {
			stat.AvgTime = avg.Float64
		}
		report.Categories = append(report.Categories, stat)
	}
	if err := categoryRows.Err(); err != nil {
		return store.PeriodReport{}, err
	}

	return report, nil
}

// ExportReport lists a unit's raw ticket rows with joined category and
// counter names, newest first, for CSV/spreadsheet export.
func (s *Store) ExportReport(ctx context.Context, filter store.ExportFilter) (store.ExportReport, error) {
	query := `
		SELECT t.ticket_number,
			COALESCE(c.name, ''),
			COALESCE(co.name, ''),
			t.status, t.generated_at, t.called_at, t.finished_at, t.service_time
		FROM tickets t
		LEFT JOIN categories c ON c.category_id = t.category_id
		LEFT JOIN counters co ON co.counter_id = t.counter_id
		WHERE t.unit_id = $1
	`
	args := []interface{}{filter.UnitID}
	if !filter.From.IsZero() {
		args = append(args, sequenceDay(filter.From))
		query += fmt.Sprintf(" AND t.generated_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, sequenceDay(filter.To).Add(24*time.Hour))
		query += fmt.Sprintf(" AND t.generated_at < $%d", len(args))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND t.category_id = $%d", len(args))
	}
	query += " ORDER BY t.generated_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return store.ExportReport{}, err
	}
	defer rows.Close()

	report := store.ExportReport{Rows: []store.ExportRow{}}
	for rows.Next() {
		var exp store.ExportRow
		var generatedAt time.Time
		var calledAt, finishedAt sql.NullTime
		var serviceTime sql.NullInt32
		if err := rows.Scan(&exp.TicketNumber, &exp.Category, &exp.Counter, &exp.Status,
			&generatedAt, &calledAt, &finishedAt, &serviceTime); err != nil {
			return store.ExportReport{}, err
		}
		exp.GeneratedAt = generatedAt.UTC().Format(exportTimeLayout)
		if calledAt.Valid {
			formatted := calledAt.Time.UTC().Format(exportTimeLayout)
			exp.CalledAt = &formatted
		}
		if finishedAt.Valid {
			formatted := finishedAt.Time.UTC().Format(exportTimeLayout)
			exp.FinishedAt = &formatted
		}
		if serviceTime.Valid {
			seconds := int(serviceTime.Int32)
			exp.ServiceTime = &seconds
		}
		report.Rows = append(report.Rows, exp)
	}
	if err := rows.Err(); err != nil {
		return store.ExportReport{}, err
	}

	report.Summary.Total = len(report.Rows)
	if !filter.From.IsZero() && !filter.To.IsZero() {
		report.Summary.Period = fmt.Sprintf("%s to %s",
			sequenceDay(filter.From).Format("2006-01-02"),
			sequenceDay(filter.To).Format("2006-01-02"))
	} else {
		report.Summary.Period = "all records"
	}
	return report, nil
}
