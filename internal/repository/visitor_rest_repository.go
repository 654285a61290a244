package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/pkg/clock"
	"github.com/noah-isme/libvisit-api/pkg/postgrest"
)

const visitorsTable = "visitors"

// VisitorRESTRepository stores visitors through a PostgREST document API.
type VisitorRESTRepository struct {
	client   *postgrest.Client
	calendar *clock.Calendar
}

// NewVisitorRESTRepository constructs a REST-backed visitor store.
func NewVisitorRESTRepository(client *postgrest.Client, calendar *clock.Calendar) *VisitorRESTRepository {
	return &VisitorRESTRepository{client: client, calendar: calendar}
}

// Insert posts a stamped visit and returns the stored representation.
func (r *VisitorRESTRepository) Insert(ctx context.Context, draft models.VisitorDraft) (*models.Visitor, error) {
	row, err := newVisitorRow(draft, r.calendar)
	if err != nil {
		return nil, err
	}
	var created []models.Visitor
	if err := r.client.From(visitorsTable).Insert(ctx, row, &created); err != nil {
		return nil, fmt.Errorf("insert visitor: %w", err)
	}
	if len(created) == 0 {
		return nil, errors.New("insert visitor: empty representation")
	}
	return &created[0], nil
}

// FindActiveByRollNo returns the newest visit on date without an exit time, or nil.
func (r *VisitorRESTRepository) FindActiveByRollNo(ctx context.Context, rollNo, date string) (*models.Visitor, error) {
	q := r.client.From(visitorsTable).
		Eq("roll_no", rollNo).
		Eq("visit_date", date).
		IsNull("exit_time").
		Order("id", true).
		Limit(1)
	return r.first(ctx, "find active visitor", q)
}

// FindLatestByRollNo returns the newest visit for rollNo, or nil when none exist.
func (r *VisitorRESTRepository) FindLatestByRollNo(ctx context.Context, rollNo string) (*models.Visitor, error) {
	q := r.client.From(visitorsTable).Eq("roll_no", rollNo).Order("id", true).Limit(1)
	return r.first(ctx, "find latest visitor", q)
}

// MarkExit patches exit_time; the representation tells us whether the id existed.
func (r *VisitorRESTRepository) MarkExit(ctx context.Context, id int64) (bool, error) {
	var updated []models.Visitor
	body := map[string]string{"exit_time": r.calendar.TimeOfDay()}
	if err := r.client.From(visitorsTable).Eq("id", strconv.FormatInt(id, 10)).Update(ctx, body, &updated); err != nil {
		return false, fmt.Errorf("mark exit: %w", err)
	}
	return len(updated) > 0, nil
}

// ListAll returns every visit, newest first.
func (r *VisitorRESTRepository) ListAll(ctx context.Context) ([]models.Visitor, error) {
	return r.list(ctx, "list visitors", r.client.From(visitorsTable).Order("id", true))
}

// ListByDate returns the visits recorded on date, newest first.
func (r *VisitorRESTRepository) ListByDate(ctx context.Context, date string) ([]models.Visitor, error) {
	q := r.client.From(visitorsTable).Eq("visit_date", date).Order("id", true)
	return r.list(ctx, "list visitors by date", q)
}

// ListByDateRange returns visits between start and end inclusive, newest first.
func (r *VisitorRESTRepository) ListByDateRange(ctx context.Context, start, end string) ([]models.Visitor, error) {
	q := r.client.From(visitorsTable).Gte("visit_date", start).Lte("visit_date", end).Order("id", true)
	return r.list(ctx, "list visitors by range", q)
}

// Delete removes a visit and reports whether it existed.
func (r *VisitorRESTRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted []models.Visitor
	if err := r.client.From(visitorsTable).Eq("id", strconv.FormatInt(id, 10)).Delete(ctx, &deleted); err != nil {
		return false, fmt.Errorf("delete visitor: %w", err)
	}
	return len(deleted) > 0, nil
}

// Ping checks that the REST endpoint is reachable.
func (r *VisitorRESTRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

func (r *VisitorRESTRepository) first(ctx context.Context, op string, q *postgrest.Query) (*models.Visitor, error) {
	var rows []models.Visitor
	if err := q.Get(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *VisitorRESTRepository) list(ctx context.Context, op string, q *postgrest.Query) ([]models.Visitor, error) {
	rows := []models.Visitor{}
	if err := q.Get(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if rows == nil {
		rows = []models.Visitor{}
	}
	return rows, nil
}
