package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/desiigner101/stunotes/core/task"
)

type taskRepository struct {
	db *DB
}

var _ task.Repository = (*taskRepository)(nil)

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) query() []task.Task {
	tasks := make([]task.Task, 0, len(repo.db.tasks))
	for _, t := range repo.db.tasks {
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	return tasks
}

func (repo *taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t.ID = uuid.New().String()
	repo.db.tasks[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) GetTaskByID(ctx context.Context, id string) (task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.tasks[id]; ok {
		return *t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func matchTask(t task.Task, filter task.QueryFilter) bool {
	if filter.UserID != "" && t.UserID != filter.UserID {
		return false
	}
	if filter.Search != "" {
		s := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(t.Title), s) &&
			!strings.Contains(strings.ToLower(t.Description), s) &&
			!strings.Contains(strings.ToLower(t.Subject), s) {
			return false
		}
	}
	if len(filter.Statuses) > 0 {
		var found bool
		for _, st := range filter.Statuses {
			if t.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Priority != "" && t.Priority != filter.Priority {
		return false
	}
	if !filter.DueFrom.IsZero() && (t.DueDate == nil || t.DueDate.Before(filter.DueFrom)) {
		return false
	}
	if !filter.DueTo.IsZero() && (t.DueDate == nil || !t.DueDate.Before(filter.DueTo)) {
		return false
	}
	if !filter.CreatedFrom.IsZero() && t.CreatedAt.Before(filter.CreatedFrom) {
		return false
	}
	if !filter.CreatedTo.IsZero() && t.CreatedAt.After(filter.CreatedTo) {
		return false
	}
	if !filter.OverdueAt.IsZero() {
		if t.DueDate == nil || !t.DueDate.Before(filter.OverdueAt) || t.Status == task.StatusCompleted {
			return false
		}
	}
	return true
}

func (repo *taskRepository) FilterTasks(ctx context.Context, filter task.QueryFilter) ([]task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tasks := make([]task.Task, 0)
	for _, t := range repo.query() {
		if !matchTask(t, filter) {
			continue
		}
		tasks = append(tasks, t)
		if filter.Limit > 0 && len(tasks) == filter.Limit {
			break
		}
	}
	return tasks, nil
}

func (repo *taskRepository) CountTasks(ctx context.Context, filter task.QueryFilter) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, t := range repo.db.tasks {
		if matchTask(*t, filter) {
			count++
		}
	}
	return count, nil
}

func (repo *taskRepository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.tasks[t.ID]; !ok {
		return task.Task{}, task.ErrNotFound
	}
	repo.db.tasks[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) DeleteTasksByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.tasks, id)
		for rid, r := range repo.db.reminders {
			if r.TaskID == id {
				delete(repo.db.reminders, rid)
			}
		}
	}
	return nil
}

func (repo *taskRepository) CreateReminder(ctx context.Context, r task.Reminder) (task.Reminder, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	r.ID = uuid.New().String()
	repo.db.reminders[r.ID] = &r
	return r, nil
}

func (repo *taskRepository) GetReminderByID(ctx context.Context, id string) (task.Reminder, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.reminders[id]; ok {
		return *r, nil
	}
	return task.Reminder{}, task.ErrReminderNotFound
}

func (repo *taskRepository) FilterReminders(ctx context.Context, filter task.ReminderFilter) ([]task.Reminder, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	reminders := make([]task.Reminder, 0)
	for _, r := range repo.db.reminders {
		if filter.TaskID != "" && r.TaskID != filter.TaskID {
			continue
		}
		if filter.UserID != "" {
			t, ok := repo.db.tasks[r.TaskID]
			if !ok || t.UserID != filter.UserID {
				continue
			}
		}
		if !filter.From.IsZero() && r.RemindTime.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && r.RemindTime.After(filter.To) {
			continue
		}
		if filter.UnsentOnly && r.IsSent {
			continue
		}
		reminders = append(reminders, *r)
	}
	sort.Slice(reminders, func(i, j int) bool { return reminders[i].RemindTime.Before(reminders[j].RemindTime) })
	return reminders, nil
}

func (repo *taskRepository) DeleteRemindersByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.reminders, id)
	}
	return nil
}
