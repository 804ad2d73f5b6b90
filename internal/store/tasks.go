package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/FanchonSora/V-Assistant/internal/task"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// TaskStore implements task.Repository over SQLite. Due dates and times are
// stored as text columns in their literal layouts so date filters are plain
// string comparisons.
type TaskStore struct {
	db *sql.DB
}

const taskColumns = "id, owner_id, title, due_date, due_time, rrule, status, created_at"

func (s *TaskStore) Create(ctx context.Context, t *task.Task) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.OwnerID, t.Title, dueDateValue(t), dueTimeValue(t), t.Rrule, string(t.Status), t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *TaskStore) GetByID(ctx context.Context, ownerID, id string) (*task.Task, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND owner_id = ?",
		id, ownerID,
	)
	return scanTask(row)
}

func (s *TaskStore) FindByTitle(ctx context.Context, ownerID, title string) (*task.Task, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE owner_id = ? AND LOWER(title) = LOWER(?) "+
			"ORDER BY created_at DESC LIMIT 1",
		ownerID, title,
	)
	return scanTask(row)
}

func (s *TaskStore) ListByOwner(ctx context.Context, ownerID string, date *time.Time) ([]*task.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE owner_id = ?"
	args := []any{ownerID}
	if date != nil {
		query += " AND due_date = ?"
		args = append(args, date.Format(dateLayout))
	}
	query += " ORDER BY due_date, due_time, created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *TaskStore) ListByRange(ctx context.Context, ownerID string, from, to time.Time) ([]*task.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE owner_id = ? AND due_date BETWEEN ? AND ? "+
			"ORDER BY due_date, due_time",
		ownerID, from.Format(dateLayout), to.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by range: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *TaskStore) Update(ctx context.Context, t *task.Task) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET title = ?, due_date = ?, due_time = ?, rrule = ?, status = ? "+
			"WHERE id = ? AND owner_id = ?",
		t.Title, dueDateValue(t), dueTimeValue(t), t.Rrule, string(t.Status), t.ID, t.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireAffected(res)
}

func (s *TaskStore) Delete(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = ? AND owner_id = ?",
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return task.ErrNotFound
	}
	return nil
}

func dueDateValue(t *task.Task) any {
	if t.DueDate == nil {
		return nil
	}
	return t.DueDate.Format(dateLayout)
}

func dueTimeValue(t *task.Task) any {
	if t.DueTime == nil {
		return nil
	}
	return t.DueTime.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var (
		t       task.Task
		status  string
		dueDate sql.NullString
		dueTime sql.NullString
	)
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &dueDate, &dueTime, &t.Rrule, &status, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.Status = task.Status(status)

	if dueDate.Valid {
		date, err := time.Parse(dateLayout, dueDate.String)
		if err != nil {
			return nil, fmt.Errorf("parse due date %q: %w", dueDate.String, err)
		}
		t.DueDate = &date
	}
	if dueTime.Valid {
		clock, err := time.Parse(timeLayout, dueTime.String)
		if err != nil {
			return nil, fmt.Errorf("parse due time %q: %w", dueTime.String, err)
		}
		t.DueTime = &task.DayTime{Hour: clock.Hour(), Minute: clock.Minute()}
	}
	return &t, nil
}

func scanTasks(rows *sql.Rows) ([]*task.Task, error) {
	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}
