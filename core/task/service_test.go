package task_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desiigner101/stunotes/core/task"
	inmemdb "github.com/desiigner101/stunotes/storage/database/inmem"
)

func setup(t *testing.T) task.Service {
	t.Helper()

	db, err := inmemdb.Open()
	require.NoError(t, err)
	return task.NewService(inmemdb.NewTaskRepository(db))
}

func timePtr(t time.Time) *time.Time { return &t }

func TestTask_IsOverdue(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		task task.Task
		want bool
	}{
		{name: "no due date", task: task.Task{Status: task.StatusPending}},
		{name: "due in the future", task: task.Task{DueDate: &future, Status: task.StatusPending}},
		{name: "past due, pending", task: task.Task{DueDate: &past, Status: task.StatusPending}, want: true},
		{name: "past due, in progress", task: task.Task{DueDate: &past, Status: task.StatusInProgress}, want: true},
		{name: "past due, completed", task: task.Task{DueDate: &past, Status: task.StatusCompleted}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.IsOverdue(now))
		})
	}
}

func TestService_ownershipScoping(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", task.NewTask{Title: "Revise algebra", Priority: task.PriorityHigh, Status: task.StatusPending})
	require.NoError(t, err)

	// owner sees it
	got, err := svc.Get(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// anyone else gets not-found, never someone else's data
	_, err = svc.Get(ctx, "eve", created.ID)
	assert.Equal(t, task.ErrNotFound, err)
	_, err = svc.Update(ctx, "eve", created.ID, task.UpdateTask{Title: "hijack", Priority: created.Priority, Status: created.Status})
	assert.Equal(t, task.ErrNotFound, err)
	assert.Equal(t, task.ErrNotFound, svc.Delete(ctx, "eve", created.ID))
}

func TestService_ToggleStatus(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", task.NewTask{Title: "Read chapter 4", Priority: task.PriorityMedium, Status: task.StatusPending})
	require.NoError(t, err)

	toggled, err := svc.ToggleStatus(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, toggled.Status)

	toggled, err = svc.ToggleStatus(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, toggled.Status)

	// in_progress completes too
	_, err = svc.Update(ctx, "alice", created.ID, task.UpdateTask{Title: created.Title, Priority: created.Priority, Status: task.StatusInProgress})
	require.NoError(t, err)
	toggled, err = svc.ToggleStatus(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, toggled.Status)
}

func TestService_Update_clearDue(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	due := time.Now().UTC().Add(24 * time.Hour)
	created, err := svc.Create(ctx, "alice", task.NewTask{Title: "Lab report", DueDate: timePtr(due), Priority: task.PriorityLow, Status: task.StatusPending})
	require.NoError(t, err)
	require.NotNil(t, created.DueDate)

	// absent due date leaves it untouched
	updated, err := svc.Update(ctx, "alice", created.ID, task.UpdateTask{Title: created.Title, Priority: created.Priority, Status: created.Status})
	require.NoError(t, err)
	require.NotNil(t, updated.DueDate)

	updated, err = svc.Update(ctx, "alice", created.ID, task.UpdateTask{Title: created.Title, ClearDue: true, Priority: created.Priority, Status: created.Status})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
}

func TestService_reminders(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", task.NewTask{Title: "Submit essay", Priority: task.PriorityHigh, Status: task.StatusPending})
	require.NoError(t, err)
	other, err := svc.Create(ctx, "alice", task.NewTask{Title: "Other", Priority: task.PriorityLow, Status: task.StatusPending})
	require.NoError(t, err)

	remindAt := time.Now().UTC().Add(time.Hour)
	r, err := svc.AddReminder(ctx, "alice", created.ID, task.NewReminder{RemindTime: remindAt})
	require.NoError(t, err)
	assert.Equal(t, created.ID, r.TaskID)
	assert.False(t, r.IsSent)

	// scoped through task ownership
	_, err = svc.AddReminder(ctx, "eve", created.ID, task.NewReminder{RemindTime: remindAt})
	assert.Equal(t, task.ErrNotFound, err)
	_, err = svc.QueryReminders(ctx, "eve", created.ID)
	assert.Equal(t, task.ErrNotFound, err)

	reminders, err := svc.QueryReminders(ctx, "alice", created.ID)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, r.ID, reminders[0].ID)

	// reminder must belong to the addressed task
	err = svc.DeleteReminder(ctx, "alice", other.ID, r.ID)
	assert.Equal(t, task.ErrReminderNotFound, err)

	require.NoError(t, svc.DeleteReminder(ctx, "alice", created.ID, r.ID))
	reminders, err = svc.QueryReminders(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestReminder_IsDue(t *testing.T) {
	now := time.Now().UTC()

	assert.True(t, task.Reminder{RemindTime: now.Add(-time.Minute)}.IsDue(now))
	assert.True(t, task.Reminder{RemindTime: now}.IsDue(now))
	assert.False(t, task.Reminder{RemindTime: now.Add(time.Minute)}.IsDue(now))
	assert.False(t, task.Reminder{RemindTime: now.Add(-time.Minute), IsSent: true}.IsDue(now))
}
