package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/warp/leave-engine/leave"
)

const requestColumns = `id, author_id, manager_id, status, request_created_date, vacation_start_date, vacation_end_date`

func scanRequest(row rowScanner) (leave.Request, error) {
	var (
		r                 leave.Request
		status            string
		created, from, to string
	)
	if err := row.Scan(&r.ID, &r.AuthorID, &r.ManagerID, &status, &created, &from, &to); err != nil {
		return leave.Request{}, err
	}
	r.Status = leave.Status(status)

	var err error
	if r.RequestCreatedDate, err = time.Parse(time.RFC3339, created); err != nil {
		return leave.Request{}, fmt.Errorf("bad request_created_date %q: %w", created, err)
	}
	if r.VacationStartDate, err = time.Parse(leave.DateLayout, from); err != nil {
		return leave.Request{}, fmt.Errorf("bad vacation_start_date %q: %w", from, err)
	}
	if r.VacationEndDate, err = time.Parse(leave.DateLayout, to); err != nil {
		return leave.Request{}, fmt.Errorf("bad vacation_end_date %q: %w", to, err)
	}
	return r, nil
}

func formatDay(t time.Time) string {
	return leave.Day(t).Format(leave.DateLayout)
}

func formatInstant(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func (c *conn) GetRequest(ctx context.Context, id int64) (*leave.Request, error) {
	r, err := scanRequest(c.queryRow(ctx, `SELECT `+requestColumns+` FROM request WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(fmt.Errorf("failed to get request: %w", err))
	}
	return &r, nil
}

func (c *conn) ListRequests(ctx context.Context) ([]leave.Request, error) {
	return c.FindRequests(ctx, leave.RequestFilter{})
}

// FindRequests builds the WHERE clause from the non-zero filter fields.
// Date overlap compares YYYY-MM-DD strings.
func (c *conn) FindRequests(ctx context.Context, f leave.RequestFilter) ([]leave.Request, error) {
	var (
		where []string
		args  []any
	)
	if len(f.AuthorIDs) > 0 {
		where = append(where, `author_id IN (`+placeholders(len(f.AuthorIDs))+`)`)
		for _, id := range f.AuthorIDs {
			args = append(args, id)
		}
	}
	if len(f.ManagerIDs) > 0 {
		where = append(where, `manager_id IN (`+placeholders(len(f.ManagerIDs))+`)`)
		for _, id := range f.ManagerIDs {
			args = append(args, id)
		}
	}
	if len(f.Statuses) > 0 {
		where = append(where, `status IN (`+placeholders(len(f.Statuses))+`)`)
		for _, st := range f.Statuses {
			args = append(args, string(st))
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() {
		where = append(where, `vacation_start_date <= ? AND vacation_end_date >= ?`)
		args = append(args, formatDay(f.To), formatDay(f.From))
	}
	if f.ExcludeID != 0 {
		where = append(where, `id <> ?`)
		args = append(args, f.ExcludeID)
	}

	query := `SELECT ` + requestColumns + ` FROM request`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY id`

	rows, err := c.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	out := []leave.Request{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (c *conn) InsertRequest(ctx context.Context, r leave.Request) (int64, error) {
	id, err := c.insertReturningID(ctx, `
		INSERT INTO request (author_id, manager_id, status, request_created_date, vacation_start_date, vacation_end_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.AuthorID, r.ManagerID, string(r.Status),
		formatInstant(r.RequestCreatedDate), formatDay(r.VacationStartDate), formatDay(r.VacationEndDate))
	if err != nil {
		return 0, fmt.Errorf("failed to insert request: %w", err)
	}
	return id, nil
}

func (c *conn) UpdateRequest(ctx context.Context, r leave.Request) error {
	err := c.execOne(ctx, `
		UPDATE request
		SET manager_id = ?, status = ?, vacation_start_date = ?, vacation_end_date = ?
		WHERE id = ?`,
		r.ManagerID, string(r.Status), formatDay(r.VacationStartDate), formatDay(r.VacationEndDate), r.ID)
	if err != nil && !errors.Is(err, leave.ErrNotFound) {
		return fmt.Errorf("failed to update request: %w", err)
	}
	return err
}

func (c *conn) DeleteRequest(ctx context.Context, id int64) error {
	err := c.execOne(ctx, `DELETE FROM request WHERE id = ?`, id)
	if err != nil && !errors.Is(err, leave.ErrNotFound) {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	return err
}
