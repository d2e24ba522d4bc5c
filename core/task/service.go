package task

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("task not found")

// ErrReminderNotFound covers both a missing reminder and one attached to a
// task the caller does not own.
var ErrReminderNotFound = errors.New("reminder not found")

type (
	Repository interface {
		CreateTask(ctx context.Context, t Task) (Task, error)
		GetTaskByID(ctx context.Context, id string) (Task, error)
		FilterTasks(ctx context.Context, filter QueryFilter) ([]Task, error)
		CountTasks(ctx context.Context, filter QueryFilter) (int, error)
		UpdateTask(ctx context.Context, t Task) (Task, error)
		DeleteTasksByID(ctx context.Context, ids ...string) error

		CreateReminder(ctx context.Context, r Reminder) (Reminder, error)
		GetReminderByID(ctx context.Context, id string) (Reminder, error)
		FilterReminders(ctx context.Context, filter ReminderFilter) ([]Reminder, error)
		DeleteRemindersByID(ctx context.Context, ids ...string) error
	}

	// Service scopes every read and mutation to the owning principal;
	// a foreign task id surfaces as ErrNotFound, never as someone else's data.
	Service interface {
		Create(ctx context.Context, ownerID string, nt NewTask) (Task, error)
		Get(ctx context.Context, ownerID, id string) (Task, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Task, error)
		Count(ctx context.Context, filter QueryFilter) (int, error)
		Update(ctx context.Context, ownerID, id string, ut UpdateTask) (Task, error)
		// ToggleStatus flips completed <-> pending.
		ToggleStatus(ctx context.Context, ownerID, id string) (Task, error)
		Delete(ctx context.Context, ownerID, id string) error

		AddReminder(ctx context.Context, ownerID, taskID string, nr NewReminder) (Reminder, error)
		QueryReminders(ctx context.Context, ownerID, taskID string) ([]Reminder, error)
		DeleteReminder(ctx context.Context, ownerID, taskID, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ownerID string, nt NewTask) (Task, error) {
	now := time.Now().UTC()
	t := Task{
		UserID:      ownerID,
		Title:       nt.Title,
		Description: nt.Description,
		Subject:     nt.Subject,
		DueDate:     nt.DueDate,
		Priority:    nt.Priority,
		Status:      nt.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateTask(ctx, t)
}

// get fetches a task and enforces ownership.
func (svc *service) get(ctx context.Context, ownerID, id string) (Task, error) {
	t, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if t.UserID != ownerID {
		return Task{}, ErrNotFound
	}
	return t, nil
}

func (svc *service) Get(ctx context.Context, ownerID, id string) (Task, error) {
	return svc.get(ctx, ownerID, id)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]Task, error) {
	filter.Clean()
	return svc.repo.FilterTasks(ctx, filter)
}

func (svc *service) Count(ctx context.Context, filter QueryFilter) (int, error) {
	return svc.repo.CountTasks(ctx, filter)
}

func (svc *service) Update(ctx context.Context, ownerID, id string, ut UpdateTask) (Task, error) {
	t, err := svc.get(ctx, ownerID, id)
	if err != nil {
		return Task{}, err
	}
	t.Title = ut.Title
	if ut.Description != nil {
		t.Description = *ut.Description
	}
	if ut.Subject != nil {
		t.Subject = *ut.Subject
	}
	if ut.ClearDue {
		t.DueDate = nil
	} else if ut.DueDate != nil {
		t.DueDate = ut.DueDate
	}
	t.Priority = ut.Priority
	t.Status = ut.Status
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTask(ctx, t)
}

func (svc *service) ToggleStatus(ctx context.Context, ownerID, id string) (Task, error) {
	t, err := svc.get(ctx, ownerID, id)
	if err != nil {
		return Task{}, err
	}
	if t.Status == StatusCompleted {
		t.Status = StatusPending
	} else {
		t.Status = StatusCompleted
	}
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTask(ctx, t)
}

func (svc *service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := svc.get(ctx, ownerID, id); err != nil {
		return err
	}
	return svc.repo.DeleteTasksByID(ctx, id)
}

func (svc *service) AddReminder(ctx context.Context, ownerID, taskID string, nr NewReminder) (Reminder, error) {
	if _, err := svc.get(ctx, ownerID, taskID); err != nil {
		return Reminder{}, err
	}
	r := Reminder{
		TaskID:     taskID,
		RemindTime: nr.RemindTime.UTC(),
		CreatedAt:  time.Now().UTC(),
	}
	return svc.repo.CreateReminder(ctx, r)
}

func (svc *service) QueryReminders(ctx context.Context, ownerID, taskID string) ([]Reminder, error) {
	if _, err := svc.get(ctx, ownerID, taskID); err != nil {
		return nil, err
	}
	return svc.repo.FilterReminders(ctx, ReminderFilter{TaskID: taskID})
}

func (svc *service) DeleteReminder(ctx context.Context, ownerID, taskID, id string) error {
	if _, err := svc.get(ctx, ownerID, taskID); err != nil {
		return err
	}
	r, err := svc.repo.GetReminderByID(ctx, id)
	if err != nil {
		return err
	}
	if r.TaskID != taskID {
		return ErrReminderNotFound
	}
	return svc.repo.DeleteRemindersByID(ctx, id)
}
