package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/desiigner101/stunotes/core"
	"github.com/desiigner101/stunotes/core/task"
)

type taskRow struct {
	ID          string       `db:"id"`
	UserID      string       `db:"user_id"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	Subject     string       `db:"subject"`
	DueDate     sql.NullTime `db:"due_date"`
	Priority    string       `db:"priority"`
	Status      string       `db:"status"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

func (r taskRow) unmap() task.Task {
	t := task.Task{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Subject:     r.Subject,
		Priority:    r.Priority,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.DueDate.Valid {
		due := r.DueDate.Time
		t.DueDate = &due
	}
	return t
}

func nullDue(t task.Task) sql.NullTime {
	if t.DueDate == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.DueDate.UTC(), Valid: true}
}

const taskColumns = `id, user_id, title, description, subject, due_date, priority, status, created_at, updated_at`

type taskRepository struct {
	exec core.DBExecutor
}

var _ task.Repository = (*taskRepository)(nil)

func NewTaskRepository(exec core.DBExecutor) task.Repository {
	return &taskRepository{exec: exec}
}

func (repo taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	t.ID = uuid.New().String()
	const query = `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.exec.ExecContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Description, t.Subject, nullDue(t),
		t.Priority, t.Status, t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "inserting task")
	}
	return t, nil
}

func (repo taskRepository) GetTaskByID(ctx context.Context, id string) (task.Task, error) {
	var row taskRow
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	if err := repo.exec.GetContext(ctx, &row, query, id); err != nil {
		return task.Task{}, trapNoRowsErr(err, task.ErrNotFound, "getting task")
	}
	return row.unmap(), nil
}

// taskWhere builds the WHERE clause shared by FilterTasks and CountTasks.
func taskWhere(filter task.QueryFilter) (string, []interface{}) {
	where := []string{"TRUE"}
	args := make([]interface{}, 0, 8)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != "" {
		where = append(where, "user_id = "+arg(filter.UserID))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %[1]s OR description ILIKE %[1]s)", p))
	}
	if len(filter.Statuses) > 0 {
		where = append(where, "status = ANY("+arg(pq.Array(filter.Statuses))+")")
	}
	if filter.Priority != "" {
		where = append(where, "priority = "+arg(filter.Priority))
	}
	if !filter.DueFrom.IsZero() {
		where = append(where, "due_date >= "+arg(filter.DueFrom.UTC()))
	}
	// DueTo is an exclusive bound (start of the next local day)
	if !filter.DueTo.IsZero() {
		where = append(where, "due_date < "+arg(filter.DueTo.UTC()))
	}
	if !filter.CreatedFrom.IsZero() {
		where = append(where, "created_at >= "+arg(filter.CreatedFrom.UTC()))
	}
	if !filter.CreatedTo.IsZero() {
		where = append(where, "created_at <= "+arg(filter.CreatedTo.UTC()))
	}
	if !filter.OverdueAt.IsZero() {
		where = append(where, "due_date < "+arg(filter.OverdueAt.UTC())+" AND status <> 'completed'")
	}
	return strings.Join(where, " AND "), args
}

func (repo taskRepository) FilterTasks(ctx context.Context, filter task.QueryFilter) ([]task.Task, error) {
	filter.Clean()
	where, args := taskWhere(filter)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var rows []taskRow
	if err := repo.exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering tasks")
	}
	tasks := make([]task.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.unmap())
	}
	return tasks, nil
}

func (repo taskRepository) CountTasks(ctx context.Context, filter task.QueryFilter) (int, error) {
	filter.Clean()
	where, args := taskWhere(filter)

	var count int
	query := `SELECT COUNT(*) FROM tasks WHERE ` + where
	if err := repo.exec.GetContext(ctx, &count, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting tasks")
	}
	return count, nil
}

func (repo taskRepository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	const query = `
		UPDATE tasks
		SET title = $1, description = $2, subject = $3, due_date = $4, priority = $5, status = $6, updated_at = $7
		WHERE id = $8 RETURNING ` + taskColumns
	var row taskRow
	err := repo.exec.GetContext(ctx, &row, query,
		t.Title, t.Description, t.Subject, nullDue(t), t.Priority, t.Status, t.UpdatedAt.UTC(), t.ID,
	)
	if err != nil {
		return task.Task{}, trapNoRowsErr(err, task.ErrNotFound, "updating task")
	}
	return row.unmap(), nil
}

func (repo taskRepository) DeleteTasksByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM tasks WHERE id = ANY($1)`
	if _, err := repo.exec.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting tasks")
	}
	return nil
}

type reminderRow struct {
	ID         string    `db:"id"`
	TaskID     string    `db:"task_id"`
	RemindTime time.Time `db:"remind_time"`
	IsSent     bool      `db:"is_sent"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r reminderRow) unmap() task.Reminder {
	return task.Reminder{
		ID:         r.ID,
		TaskID:     r.TaskID,
		RemindTime: r.RemindTime,
		IsSent:     r.IsSent,
		CreatedAt:  r.CreatedAt,
	}
}

const reminderColumns = `id, task_id, remind_time, is_sent, created_at`

func (repo taskRepository) CreateReminder(ctx context.Context, r task.Reminder) (task.Reminder, error) {
	r.ID = uuid.New().String()
	const query = `
		INSERT INTO reminders (` + reminderColumns + `)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := repo.exec.ExecContext(ctx, query, r.ID, r.TaskID, r.RemindTime.UTC(), r.IsSent, r.CreatedAt.UTC())
	if err != nil {
		return task.Reminder{}, errors.Wrap(err, "inserting reminder")
	}
	return r, nil
}

func (repo taskRepository) GetReminderByID(ctx context.Context, id string) (task.Reminder, error) {
	var row reminderRow
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1`
	if err := repo.exec.GetContext(ctx, &row, query, id); err != nil {
		return task.Reminder{}, trapNoRowsErr(err, task.ErrReminderNotFound, "getting reminder")
	}
	return row.unmap(), nil
}

func (repo taskRepository) FilterReminders(ctx context.Context, filter task.ReminderFilter) ([]task.Reminder, error) {
	where := []string{"TRUE"}
	args := make([]interface{}, 0, 4)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != "" {
		where = append(where, "r.task_id IN (SELECT id FROM tasks WHERE user_id = "+arg(filter.UserID)+")")
	}
	if filter.TaskID != "" {
		where = append(where, "r.task_id = "+arg(filter.TaskID))
	}
	if !filter.From.IsZero() {
		where = append(where, "r.remind_time >= "+arg(filter.From.UTC()))
	}
	if !filter.To.IsZero() {
		where = append(where, "r.remind_time <= "+arg(filter.To.UTC()))
	}
	if filter.UnsentOnly {
		where = append(where, "NOT r.is_sent")
	}

	query := `SELECT r.id, r.task_id, r.remind_time, r.is_sent, r.created_at FROM reminders r WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY r.remind_time ASC`

	var rows []reminderRow
	if err := repo.exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering reminders")
	}
	reminders := make([]task.Reminder, 0, len(rows))
	for _, r := range rows {
		reminders = append(reminders, r.unmap())
	}
	return reminders, nil
}

func (repo taskRepository) DeleteRemindersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM reminders WHERE id = ANY($1)`
	if _, err := repo.exec.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting reminders")
	}
	return nil
}
