package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/joelson-hub/Pianelsenhas/internal/models"
	"github.com/joelson-hub/Pianelsenhas/internal/store"
)

const (
	defaultShowLastTickets = 5
	minShowLastTickets     = 1
	maxShowLastTickets     = 10

	uniqueViolation = "23505"
)

func clampShowLastTickets(count int) int {
	if count < minShowLastTickets {
		return minShowLastTickets
	}
	if count > maxShowLastTickets {
		return maxShowLastTickets
	}
	return count
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *Store) ListUnits(ctx context.Context) ([]models.Unit, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT unit_id, name, address, created_at
		FROM units
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []models.Unit
	for rows.Next() {
		var unit models.Unit
		if err := rows.Scan(&unit.UnitID, &unit.Name, &unit.Address, &unit.CreatedAt); err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

func (s *Store) CreateUnit(ctx context.Context, unit models.Unit) (models.Unit, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO units (unit_id, name, address)
		VALUES ($1, $2, $3)
		RETURNING unit_id, name, address, created_at
	`, uuid.NewString(), unit.Name, unit.Address)
	var created models.Unit
	if err := row.Scan(&created.UnitID, &created.Name, &created.Address, &created.CreatedAt); err != nil {
		return models.Unit{}, err
	}
	return created, nil
}

func (s *Store) GetUnit(ctx context.Context, unitID string) (models.Unit, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT unit_id, name, address, created_at
		FROM units
		WHERE unit_id = $1
	`, unitID)
	var unit models.Unit
	if err := row.Scan(&unit.UnitID, &unit.Name, &unit.Address, &unit.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Unit{}, store.ErrUnitNotFound
		}
		return models.Unit{}, err
	}
	return unit, nil
}

func (s *Store) UpdateUnit(ctx context.Context, unit models.Unit) (models.Unit, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE units
		SET name = $1, address = $2
		WHERE unit_id = $3
		RETURNING unit_id, name, address, created_at
	`, unit.Name, unit.Address, unit.UnitID)
	var updated models.Unit
	if err := row.Scan(&updated.UnitID, &updated.Name, &updated.Address, &updated.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Unit{}, store.ErrUnitNotFound
		}
		return models.Unit{}, err
	}
	return updated, nil
}

// DeleteUnit refuses while categories or counters still reference the
// unit, so a stray admin call cannot orphan live queue data.
func (s *Store) DeleteUnit(ctx context.Context, unitID string) error {
	var inUse bool
	row := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM categories WHERE unit_id = $1)
			OR EXISTS (SELECT 1 FROM counters WHERE unit_id = $1)
	`, unitID)
	if err := row.Scan(&inUse); err != nil {
		return err
	}
	if inUse {
		return store.ErrUnitNotEmpty
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM units WHERE unit_id = $1`, unitID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrUnitNotFound
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context, unitID string) ([]models.Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT category_id, unit_id, name, prefix, priority, is_active, created_at
		FROM categories
		WHERE unit_id = $1
		ORDER BY priority DESC, name ASC
	`, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (s *Store) CreateCategory(ctx context.Context, category models.Category) (models.Category, error) {
	if _, err := s.GetUnit(ctx, category.UnitID); err != nil {
		return models.Category{}, err
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO categories (category_id, unit_id, name, prefix, priority, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING category_id, unit_id, name, prefix, priority, is_active, created_at
	`, uuid.NewString(), category.UnitID, category.Name, strings.ToUpper(category.Prefix), category.Priority, category.Active)
	created, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Category{}, store.ErrDuplicatePrefix
		}
		return models.Category{}, err
	}
	return created, nil
}

func (s *Store) GetCategory(ctx context.Context, categoryID string) (models.Category, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT category_id, unit_id, name, prefix, priority, is_active, created_at
		FROM categories
		WHERE category_id = $1
	`, categoryID)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Category{}, store.ErrCategoryNotFound
		}
		return models.Category{}, err
	}
	return category, nil
}

func (s *Store) UpdateCategory(ctx context.Context, category models.Category) (models.Category, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE categories
		SET name = $1, prefix = $2, priority = $3, is_active = $4
		WHERE category_id = $5
		RETURNING category_id, unit_id, name, prefix, priority, is_active, created_at
	`, category.Name, strings.ToUpper(category.Prefix), category.Priority, category.Active, category.CategoryID)
	updated, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Category{}, store.ErrCategoryNotFound
		}
		if isUniqueViolation(err) {
			return models.Category{}, store.ErrDuplicatePrefix
		}
		return models.Category{}, err
	}
	return updated, nil
}

func (s *Store) DeleteCategory(ctx context.Context, categoryID string) error {
	var inUse bool
	row := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM tickets WHERE category_id = $1)
	`, categoryID)
	if err := row.Scan(&inUse); err != nil {
		return err
	}
	if inUse {
		return store.ErrCategoryInUse
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE category_id = $1`, categoryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrCategoryNotFound
	}
	return nil
}

func (s *Store) ListCounters(ctx context.Context, unitID string) ([]models.Counter, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT counter_id, unit_id, name, is_active, created_at
		FROM counters
		WHERE unit_id = $1
		ORDER BY name ASC
	`, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counters []models.Counter
	for rows.Next() {
		var counter models.Counter
		if err := rows.Scan(&counter.CounterID, &counter.UnitID, &counter.Name, &counter.Active, &counter.CreatedAt); err != nil {
			return nil, err
		}
		counters = append(counters, counter)
	}
	return counters, rows.Err()
}

func (s *Store) CreateCounter(ctx context.Context, counter models.Counter) (models.Counter, error) {
	if _, err := s.GetUnit(ctx, counter.UnitID); err != nil {
		return models.Counter{}, err
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO counters (counter_id, unit_id, name, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING counter_id, unit_id, name, is_active, created_at
	`, uuid.NewString(), counter.UnitID, counter.Name, counter.Active)
	var created models.Counter
	if err := row.Scan(&created.CounterID, &created.UnitID, &created.Name, &created.Active, &created.CreatedAt); err != nil {
		return models.Counter{}, err
	}
	return created, nil
}

func (s *Store) GetCounter(ctx context.Context, counterID string) (models.Counter, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT counter_id, unit_id, name, is_active, created_at
		FROM counters
		WHERE counter_id = $1
	`, counterID)
	var counter models.Counter
	if err := row.Scan(&counter.CounterID, &counter.UnitID, &counter.Name, &counter.Active, &counter.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Counter{}, store.ErrCounterNotFound
		}
		return models.Counter{}, err
	}
	return counter, nil
}

func (s *Store) UpdateCounter(ctx context.Context, counter models.Counter) (models.Counter, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE counters
		SET name = $1, is_active = $2
		WHERE counter_id = $3
		RETURNING counter_id, unit_id, name, is_active, created_at
	`, counter.Name, counter.Active, counter.CounterID)
	var updated models.Counter
	if err := row.Scan(&updated.CounterID, &updated.UnitID, &updated.Name, &updated.Active, &updated.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Counter{}, store.ErrCounterNotFound
		}
		return models.Counter{}, err
	}
	return updated, nil
}

// DeleteCounter refuses while tickets still reference the counter, to
// keep history rows resolvable.
func (s *Store) DeleteCounter(ctx context.Context, counterID string) error {
	var inUse bool
	row := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM tickets WHERE counter_id = $1)
	`, counterID)
	if err := row.Scan(&inUse); err != nil {
		return err
	}
	if inUse {
		return store.ErrCounterInUse
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM counters WHERE counter_id = $1`, counterID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrCounterNotFound
	}
	return nil
}

func (s *Store) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, username, email, password_hash, role, unit_id, is_active, created_at
		FROM users
		WHERE username = $1
	`, username)
	user, hash, err := scanUserWithHash(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return models.User{}, store.ErrInvalidCredentials
	}
	if !user.Active {
		return models.User{}, store.ErrAccountDisabled
	}
	return user, nil
}

func (s *Store) CreateUser(ctx context.Context, input store.NewUserInput) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	if input.UnitID != nil {
		if _, err := s.GetUnit(ctx, *input.UnitID); err != nil {
			return models.User{}, err
		}
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (user_id, username, email, password_hash, role, unit_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING user_id, username, email, password_hash, role, unit_id, is_active, created_at
	`, uuid.NewString(), input.Username, input.Email, string(hash), input.Role, input.UnitID)
	user, _, err := scanUserWithHash(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, store.ErrDuplicateUser
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, username, email, password_hash, role, unit_id, is_active, created_at
		FROM users
		WHERE user_id = $1
	`, userID)
	user, _, err := scanUserWithHash(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// GetDisplaySettings reads the unit's display configuration, creating
// the default row on first access so the display client never sees a
// missing configuration.
func (s *Store) GetDisplaySettings(ctx context.Context, unitID string) (models.DisplaySettings, error) {
	if _, err := s.GetUnit(ctx, unitID); err != nil {
		return models.DisplaySettings{}, err
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO display_settings (unit_id, message, show_last_tickets_count, sound_enabled, theme)
		VALUES ($1, '', $2, TRUE, 'light')
		ON CONFLICT (unit_id) DO NOTHING
	`, unitID, defaultShowLastTickets)
	if err != nil {
		return models.DisplaySettings{}, err
	}

	return s.readDisplaySettings(ctx, unitID)
}

func (s *Store) UpdateDisplaySettings(ctx context.Context, unitID string, update store.DisplaySettingsUpdate) (models.DisplaySettings, error) {
	current, err := s.GetDisplaySettings(ctx, unitID)
	if err != nil {
		return models.DisplaySettings{}, err
	}

	if update.Message != nil {
		current.Message = *update.Message
	}
	if update.ShowLastTickets != nil {
		current.ShowLastTickets = *update.ShowLastTickets
	}
	if update.SoundEnabled != nil {
		current.SoundEnabled = *update.SoundEnabled
	}
	if update.Theme != nil {
		current.Theme = *update.Theme
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE display_settings
		SET message = $1,
			show_last_tickets_count = $2,
			sound_enabled = $3,
			theme = $4,
			updated_at = NOW()
		WHERE unit_id = $5
		RETURNING unit_id, message, show_last_tickets_count, sound_enabled, theme, updated_at
	`, current.Message, current.ShowLastTickets, current.SoundEnabled, current.Theme, unitID)
	var settings models.DisplaySettings
	if err := row.Scan(&settings.UnitID, &settings.Message, &settings.ShowLastTickets, &settings.SoundEnabled, &settings.Theme, &settings.UpdatedAt); err != nil {
		return models.DisplaySettings{}, err
	}
	return settings, nil
}

func (s *Store) readDisplaySettings(ctx context.Context, unitID string) (models.DisplaySettings, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT unit_id, message, show_last_tickets_count, sound_enabled, theme, updated_at
		FROM display_settings
		WHERE unit_id = $1
	`, unitID)
	var settings models.DisplaySettings
	if err := row.Scan(&settings.UnitID, &settings.Message, &settings.ShowLastTickets, &settings.SoundEnabled, &settings.Theme, &settings.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DisplaySettings{}, store.ErrSettingsNotFound
		}
		return models.DisplaySettings{}, err
	}
	return settings, nil
}

func scanCategory(row rowScanner) (models.Category, error) {
	var category models.Category
	if err := row.Scan(&category.CategoryID, &category.UnitID, &category.Name, &category.Prefix, &category.Priority, &category.Active, &category.CreatedAt); err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func scanUserWithHash(row rowScanner) (models.User, string, error) {
	var user models.User
	var hash string
	var unitIDNull sql.NullString
	if err := row.Scan(&user.UserID, &user.Username, &user.Email, &hash, &user.Role, &unitIDNull, &user.Active, &user.CreatedAt); err != nil {
		return models.User{}, "", err
	}
	user.UnitID = nullStringPtr(unitIDNull)
	return user, hash, nil
}
