package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desiigner101/stunotes/core/adminreq"
	"github.com/desiigner101/stunotes/core/dashboard"
	"github.com/desiigner101/stunotes/core/note"
	"github.com/desiigner101/stunotes/core/task"
	"github.com/desiigner101/stunotes/core/user"
	inmemdb "github.com/desiigner101/stunotes/storage/database/inmem"
)

type repos struct {
	usr  user.Repository
	task task.Repository
	note note.Repository
	req  adminreq.Repository
}

func setup(t *testing.T) (dashboard.Service, repos) {
	t.Helper()

	db, err := inmemdb.Open()
	require.NoError(t, err)
	r := repos{
		usr:  inmemdb.NewUserRepository(db),
		task: inmemdb.NewTaskRepository(db),
		note: inmemdb.NewNoteRepository(db),
		req:  inmemdb.NewAdminRequestRepository(db),
	}
	return dashboard.NewService(r.usr, r.task, r.note, r.req), r
}

func createUser(t *testing.T, repo user.Repository, uname string, isAdmin bool, createdAt time.Time) user.User {
	t.Helper()

	usr, err := repo.CreateUser(context.Background(), user.User{
		Name:      uname,
		Username:  uname,
		Email:     uname + "@test.cd",
		IsActive:  true,
		IsAdmin:   isAdmin,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	})
	require.NoError(t, err)
	return usr
}

func createTask(t *testing.T, repo task.Repository, userID, title, status string, due *time.Time, createdAt time.Time) task.Task {
	t.Helper()

	tsk, err := repo.CreateTask(context.Background(), task.Task{
		UserID:    userID,
		Title:     title,
		Priority:  task.PriorityMedium,
		Status:    status,
		DueDate:   due,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	})
	require.NoError(t, err)
	return tsk
}

func createNote(t *testing.T, repo note.Repository, userID, title string, createdAt time.Time) note.Note {
	t.Helper()

	n, err := repo.CreateNote(context.Background(), note.Note{
		UserID:    userID,
		Title:     title,
		Content:   "content",
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	})
	require.NoError(t, err)
	return n
}

func timePtr(t time.Time) *time.Time { return &t }

// The trend buckets by the viewer's local calendar day: items one second
// apart straddling local midnight land in different buckets.
func TestService_ForUser_localDayBoundary(t *testing.T) {
	svc, r := setup(t)
	ctx := context.Background()

	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	usr := createUser(t, r.usr, "alice", false, now.Add(-time.Hour))

	// 23:59:59 and 00:00:01 local, two seconds apart in UTC
	createTask(t, r.task, usr.ID, "late", task.StatusPending, nil,
		time.Date(2026, time.March, 9, 21, 59, 59, 0, time.UTC))
	createNote(t, r.note, usr.ID, "early",
		time.Date(2026, time.March, 9, 22, 0, 1, 0, time.UTC))

	data, err := svc.ForUser(ctx, usr, now, loc)
	require.NoError(t, err)

	require.Len(t, data.Trend, 7)
	byDate := make(map[string]dashboard.TrendPoint, len(data.Trend))
	for _, p := range data.Trend {
		byDate[p.Date] = p
	}
	assert.Equal(t, 1, byDate["2026-03-09"].Tasks)
	assert.Equal(t, 0, byDate["2026-03-09"].Notes)
	assert.Equal(t, 0, byDate["2026-03-10"].Tasks)
	assert.Equal(t, 1, byDate["2026-03-10"].Notes)
}

func TestService_ForUser_scopedToPrincipal(t *testing.T) {
	svc, r := setup(t)
	ctx := context.Background()

	now := time.Now().UTC()
	alice := createUser(t, r.usr, "alice", false, now.Add(-48*time.Hour))
	bob := createUser(t, r.usr, "bob", false, now.Add(-48*time.Hour))

	createTask(t, r.task, alice.ID, "done", task.StatusCompleted, nil, now.Add(-time.Hour))
	overdue := createTask(t, r.task, alice.ID, "overdue", task.StatusPending, timePtr(now.Add(-30*time.Hour)), now.Add(-24*time.Hour))
	createTask(t, r.task, alice.ID, "due today", task.StatusInProgress, timePtr(now), now.Add(-time.Hour))
	createTask(t, r.task, bob.ID, "bobs", task.StatusPending, nil, now.Add(-time.Hour))
	createNote(t, r.note, bob.ID, "bobs note", now)

	_, err := r.task.CreateReminder(ctx, task.Reminder{TaskID: overdue.ID, RemindTime: now.Add(-time.Minute), CreatedAt: now})
	require.NoError(t, err)
	_, err = r.task.CreateReminder(ctx, task.Reminder{TaskID: overdue.ID, RemindTime: now.Add(-time.Minute), IsSent: true, CreatedAt: now})
	require.NoError(t, err)

	data, err := svc.ForUser(ctx, alice, now, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, user.UserDashboard, data.Mode)
	assert.Equal(t, dashboard.TaskStats{Total: 3, Completed: 1, Pending: 1, InProgress: 1, Overdue: 1}, data.Stats)
	assert.Zero(t, data.TotalNotes)

	// active only, bob's excluded
	require.Len(t, data.RecentTasks, 2)
	for _, tsk := range data.RecentTasks {
		assert.Equal(t, alice.ID, tsk.UserID)
		assert.NotEqual(t, task.StatusCompleted, tsk.Status)
	}

	require.Len(t, data.TodayTasks, 1)
	assert.Equal(t, "due today", data.TodayTasks[0].Title)

	// unsent only
	require.Len(t, data.DueReminders, 1)
	assert.False(t, data.DueReminders[0].IsSent)
}

func TestService_ForAdmin_spansAllUsers(t *testing.T) {
	svc, r := setup(t)
	ctx := context.Background()

	now := time.Now().UTC()
	alice := createUser(t, r.usr, "alice", false, now.Add(-3*time.Hour))
	bob := createUser(t, r.usr, "bob", true, now.Add(-2*time.Hour))

	createTask(t, r.task, alice.ID, "a", task.StatusPending, nil, now.Add(-time.Hour))
	createTask(t, r.task, bob.ID, "b", task.StatusCompleted, nil, now.Add(-time.Hour))
	createNote(t, r.note, alice.ID, "n", now)

	_, err := r.req.CreateRequest(ctx, adminreq.AdminRequest{
		RequesterID: alice.ID, Reason: "please", Status: adminreq.StatusPending, CreatedAt: now,
	})
	require.NoError(t, err)

	data, err := svc.ForAdmin(ctx, now, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, user.AdminDashboard, data.Mode)
	assert.Equal(t, 2, data.TotalUsers)
	assert.Equal(t, 2, data.Stats.Total)
	assert.Equal(t, 1, data.TotalNotes)
	assert.Equal(t, 1, data.PendingRequests)

	// newest first
	require.Len(t, data.RecentUsers, 2)
	assert.Equal(t, bob.ID, data.RecentUsers[0].ID)
	assert.Equal(t, alice.ID, data.RecentUsers[1].ID)
}

func TestService_Month(t *testing.T) {
	svc, r := setup(t)
	ctx := context.Background()

	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	usr := createUser(t, r.usr, "alice", false, now.Add(-time.Hour))

	due5 := time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC)
	due20 := time.Date(2026, time.March, 20, 15, 0, 0, 0, time.UTC)
	t5 := createTask(t, r.task, usr.ID, "due 5th", task.StatusPending, timePtr(due5), now.Add(-time.Hour))
	createTask(t, r.task, usr.ID, "due 20th", task.StatusPending, timePtr(due20), now.Add(-time.Hour))
	// in the grid but not in March: excluded from the timeline
	createTask(t, r.task, usr.ID, "february", task.StatusPending,
		timePtr(time.Date(2026, time.February, 25, 10, 0, 0, 0, time.UTC)), now.Add(-time.Hour))

	remindAt := time.Date(2026, time.March, 5, 8, 0, 0, 0, time.UTC)
	_, err := r.task.CreateReminder(ctx, task.Reminder{TaskID: t5.ID, RemindTime: remindAt, CreatedAt: now})
	require.NoError(t, err)

	data, err := svc.Month(ctx, usr, 2026, time.March, now, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, 2026, data.Year)
	assert.Equal(t, time.March, data.Month)

	// Monday-first grid covering the whole month (Mar 1 2026 is a Sunday)
	require.NotEmpty(t, data.Weeks)
	assert.Equal(t, "2026-02-23", data.Weeks[0][0].Date)
	for _, week := range data.Weeks {
		require.Len(t, week, 7)
	}
	last := data.Weeks[len(data.Weeks)-1]
	assert.Equal(t, "2026-04-05", last[6].Date)

	var today, fifth *dashboard.Day
	for wi := range data.Weeks {
		for di := range data.Weeks[wi] {
			d := &data.Weeks[wi][di]
			if d.Date == "2026-03-10" {
				today = d
			}
			if d.Date == "2026-03-05" {
				fifth = d
			}
		}
	}
	require.NotNil(t, today)
	assert.True(t, today.IsToday)
	require.NotNil(t, fifth)
	assert.True(t, fifth.InMonth)
	assert.Len(t, fifth.Tasks, 1)
	assert.Len(t, fifth.Reminders, 1)

	// merged timeline, ascending, March only
	require.Len(t, data.Timeline, 3)
	assert.Equal(t, "reminder", data.Timeline[0].Kind)
	assert.True(t, data.Timeline[0].Time.Equal(remindAt))
	assert.Equal(t, "task", data.Timeline[1].Kind)
	assert.True(t, data.Timeline[1].Time.Equal(due5))
	assert.True(t, data.Timeline[2].Time.Equal(due20))
}
