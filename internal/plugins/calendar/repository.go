package calendar

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/keyxmakerx/esoterica/internal/esoteric"
)

// CalendarRepository defines persistence operations for calendar definitions.
type CalendarRepository interface {
	// Calendar CRUD.
	Create(ctx context.Context, cal *Calendar) error
	GetByID(ctx context.Context, id string) (*Calendar, error)
	List(ctx context.Context) ([]Calendar, error)
	Update(ctx context.Context, cal *Calendar) error
	Delete(ctx context.Context, id string) error

	// Units.
	SetUnits(ctx context.Context, calendarID string, units []esoteric.Unit) error
	GetUnits(ctx context.Context, calendarID string) ([]esoteric.Unit, error)
}

// calendarRepo is the MariaDB implementation of CalendarRepository.
type calendarRepo struct {
	db *sql.DB
}

// NewCalendarRepository creates a new MariaDB-backed calendar repository.
func NewCalendarRepository(db *sql.DB) CalendarRepository {
	return &calendarRepo{db: db}
}

// calendarCols is the column list for calendar queries.
const calendarCols = `id, name, description, origin_time, created_at, updated_at`

// scanCalendar reads a row into a Calendar struct.
func scanCalendar(scanner interface{ Scan(...any) error }) (*Calendar, error) {
	cal := &Calendar{}
	err := scanner.Scan(&cal.ID, &cal.Name, &cal.Description, &cal.OriginTime,
		&cal.CreatedAt, &cal.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return cal, err
}

// Create inserts a new calendar.
func (r *calendarRepo) Create(ctx context.Context, cal *Calendar) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO calendars (id, name, description, origin_time) VALUES (?, ?, ?, ?)`,
		cal.ID, cal.Name, cal.Description, cal.OriginTime,
	)
	return err
}

// GetByID returns a calendar by its ID, or nil when it does not exist.
func (r *calendarRepo) GetByID(ctx context.Context, id string) (*Calendar, error) {
	return scanCalendar(r.db.QueryRowContext(ctx,
		`SELECT `+calendarCols+` FROM calendars WHERE id = ?`, id))
}

// List returns every calendar ordered by name. Units are not loaded.
func (r *calendarRepo) List(ctx context.Context) ([]Calendar, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+calendarCols+` FROM calendars ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cals []Calendar
	for rows.Next() {
		cal, err := scanCalendar(rows)
		if err != nil {
			return nil, err
		}
		cals = append(cals, *cal)
	}
	return cals, rows.Err()
}

// Update modifies a calendar's settings.
func (r *calendarRepo) Update(ctx context.Context, cal *Calendar) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE calendars SET name = ?, description = ?, origin_time = ? WHERE id = ?`,
		cal.Name, cal.Description, cal.OriginTime, cal.ID,
	)
	return err
}

// Delete removes a calendar and its units (cascaded by FK).
func (r *calendarRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM calendars WHERE id = ?`, id)
	return err
}

// SetUnits replaces the whole unit graph of a calendar (delete + bulk insert).
func (r *calendarRepo) SetUnits(ctx context.Context, calendarID string, units []esoteric.Unit) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM calendar_unit_children WHERE calendar_id = ?`, calendarID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM calendar_units WHERE calendar_id = ?`, calendarID); err != nil {
		return err
	}
	for _, u := range units {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO calendar_units (calendar_id, unit_id, name, display_name, display_name_short,
			        duration, format_shorthand, format_mode, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			calendarID, u.ID, u.Name, u.DisplayName, u.DisplayNameShort,
			u.Duration, u.FormatShorthand, string(u.FormatMode), u.Position,
		); err != nil {
			return fmt.Errorf("inserting unit %s: %w", u.ID, err)
		}
	}
	// Children reference units by foreign key, so they go in after every unit.
	for _, u := range units {
		for _, rel := range u.Children {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO calendar_unit_children (calendar_id, parent_unit_id, child_unit_id, repeats, position, label)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				calendarID, u.ID, rel.ChildUnitID, rel.Repeats, rel.Position, rel.Label,
			); err != nil {
				return fmt.Errorf("inserting child of %s: %w", u.ID, err)
			}
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE calendars SET updated_at = NOW() WHERE id = ?`, calendarID); err != nil {
		return err
	}
	return tx.Commit()
}

// GetUnits returns the unit graph of a calendar ordered by position, with
// each unit's child relations ordered by position. Parent relations are
// derived from the children.
func (r *calendarRepo) GetUnits(ctx context.Context, calendarID string) ([]esoteric.Unit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT unit_id, name, display_name, display_name_short, duration,
		        format_shorthand, format_mode, position
		 FROM calendar_units WHERE calendar_id = ? ORDER BY position, unit_id`, calendarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []esoteric.Unit
	index := make(map[string]int)
	for rows.Next() {
		var u esoteric.Unit
		var mode string
		if err := rows.Scan(&u.ID, &u.Name, &u.DisplayName, &u.DisplayNameShort, &u.Duration,
			&u.FormatShorthand, &mode, &u.Position); err != nil {
			return nil, err
		}
		u.FormatMode = esoteric.FormatMode(mode)
		index[u.ID] = len(units)
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	childRows, err := r.db.QueryContext(ctx,
		`SELECT parent_unit_id, child_unit_id, repeats, position, label
		 FROM calendar_unit_children WHERE calendar_id = ? ORDER BY parent_unit_id, position`, calendarID)
	if err != nil {
		return nil, err
	}
	defer childRows.Close()

	for childRows.Next() {
		var parentID string
		var rel esoteric.ChildRelation
		if err := childRows.Scan(&parentID, &rel.ChildUnitID, &rel.Repeats, &rel.Position, &rel.Label); err != nil {
			return nil, err
		}
		if i, ok := index[parentID]; ok {
			units[i].Children = append(units[i].Children, rel)
		}
	}
	if err := childRows.Err(); err != nil {
		return nil, err
	}

	return withDerivedParents(units), nil
}

// withDerivedParents fills each unit's Parents from the child relations that
// reference it.
func withDerivedParents(units []esoteric.Unit) []esoteric.Unit {
	index := make(map[string]int, len(units))
	for i := range units {
		index[units[i].ID] = i
		units[i].Parents = nil
	}
	for _, u := range units {
		for _, rel := range u.Children {
			if i, ok := index[rel.ChildUnitID]; ok {
				units[i].Parents = append(units[i].Parents, esoteric.ParentRelation{
					ParentUnitID: u.ID,
					Repeats:      rel.Repeats,
				})
			}
		}
	}
	return units
}
