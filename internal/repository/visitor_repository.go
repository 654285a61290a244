package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/pkg/clock"
)

// Date and time columns are read back as text so both backends hand the service the same shapes.
const visitorColumns = `id, name, roll_no, level, COALESCE(course, '') AS course, year, jc_year, jc_stream, purpose,
        entry_time::text AS entry_time, exit_time::text AS exit_time, visit_date::text AS visit_date, visit_day`

// VisitorRepository manages persistence for visitor records in PostgreSQL.
type VisitorRepository struct {
	db       *sqlx.DB
	calendar *clock.Calendar
}

// NewVisitorRepository constructs a VisitorRepository stamping records with calendar.
func NewVisitorRepository(db *sqlx.DB, calendar *clock.Calendar) *VisitorRepository {
	return &VisitorRepository{db: db, calendar: calendar}
}

// Insert stores a visit and returns it with its assigned id.
func (r *VisitorRepository) Insert(ctx context.Context, draft models.VisitorDraft) (*models.Visitor, error) {
	row, err := newVisitorRow(draft, r.calendar)
	if err != nil {
		return nil, err
	}
	query := `INSERT INTO visitors (name, roll_no, level, course, year, jc_year, jc_stream, purpose, entry_time, exit_time, visit_date, visit_day)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING ` + visitorColumns
	var visitor models.Visitor
	if err := r.db.GetContext(ctx, &visitor, query,
		row.Name, row.RollNo, row.Level, row.Course, row.Year, row.JcYear, row.JcStream, row.Purpose,
		row.EntryTime, row.ExitTime, row.VisitDate, row.VisitDay,
	); err != nil {
		return nil, fmt.Errorf("insert visitor: %w", err)
	}
	return &visitor, nil
}

// FindActiveByRollNo returns the newest visit on date that has no exit, or nil.
func (r *VisitorRepository) FindActiveByRollNo(ctx context.Context, rollNo, date string) (*models.Visitor, error) {
	query := `SELECT ` + visitorColumns + ` FROM visitors
        WHERE roll_no = $1 AND visit_date = $2 AND exit_time IS NULL
        ORDER BY id DESC LIMIT 1`
	return r.getOne(ctx, "find active visitor", query, rollNo, date)
}

// FindLatestByRollNo returns the newest visit for rollNo regardless of date, or nil.
func (r *VisitorRepository) FindLatestByRollNo(ctx context.Context, rollNo string) (*models.Visitor, error) {
	query := `SELECT ` + visitorColumns + ` FROM visitors WHERE roll_no = $1 ORDER BY id DESC LIMIT 1`
	return r.getOne(ctx, "find latest visitor", query, rollNo)
}

// MarkExit stamps exit_time with the current local time. An existing exit is overwritten.
func (r *VisitorRepository) MarkExit(ctx context.Context, id int64) (bool, error) {
	const query = `UPDATE visitors SET exit_time = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, r.calendar.TimeOfDay(), id)
	if err != nil {
		return false, fmt.Errorf("mark exit: %w", err)
	}
	return affected(res, "mark exit")
}

// ListAll returns every visit, newest first.
func (r *VisitorRepository) ListAll(ctx context.Context) ([]models.Visitor, error) {
	query := `SELECT ` + visitorColumns + ` FROM visitors ORDER BY id DESC`
	return r.list(ctx, "list visitors", query)
}

// ListByDate returns visits on one date, newest first.
func (r *VisitorRepository) ListByDate(ctx context.Context, date string) ([]models.Visitor, error) {
	query := `SELECT ` + visitorColumns + ` FROM visitors WHERE visit_date = $1 ORDER BY id DESC`
	return r.list(ctx, "list visitors by date", query, date)
}

// ListByDateRange returns visits between start and end inclusive, newest first.
func (r *VisitorRepository) ListByDateRange(ctx context.Context, start, end string) ([]models.Visitor, error) {
	query := `SELECT ` + visitorColumns + ` FROM visitors WHERE visit_date >= $1 AND visit_date <= $2 ORDER BY id DESC`
	return r.list(ctx, "list visitors by range", query, start, end)
}

// Delete removes a visit.
func (r *VisitorRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM visitors WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete visitor: %w", err)
	}
	return affected(res, "delete visitor")
}

// Ping checks database connectivity.
func (r *VisitorRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *VisitorRepository) getOne(ctx context.Context, op, query string, args ...interface{}) (*models.Visitor, error) {
	var visitor models.Visitor
	if err := r.db.GetContext(ctx, &visitor, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &visitor, nil
}

func (r *VisitorRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]models.Visitor, error) {
	visitors := []models.Visitor{}
	if err := r.db.SelectContext(ctx, &visitors, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return visitors, nil
}

func affected(res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return n > 0, nil
}
