package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/desiigner101/stunotes/core/adminreq"
	"github.com/desiigner101/stunotes/core/note"
	"github.com/desiigner101/stunotes/core/task"
	"github.com/desiigner101/stunotes/core/user"
)

const (
	recentTaskCount = 10
	recentNoteCount = 5
	recentUserCount = 5
	trendDays       = 7
)

// dayKey buckets a timestamp into the viewer's local calendar day. Local day
// boundaries, not UTC ones: a task created at 23:59:59 and one at 00:00:01
// local time land in different buckets regardless of their UTC values.
func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

type TaskStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Overdue    int `json:"overdue"`
}

// TrendPoint is one local calendar day of created-counts for the trend chart.
type TrendPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD, viewer-local
	Tasks int    `json:"tasks"`
	Notes int    `json:"notes"`
}

// UserData is the personal dashboard: every read is scoped to the principal.
type UserData struct {
	Mode         user.DashboardMode `json:"mode"`
	Stats        TaskStats          `json:"stats"`
	TotalNotes   int                `json:"total_notes"`
	RecentTasks  []task.Task        `json:"recent_tasks"` // active only, newest first
	RecentNotes  []note.Note        `json:"recent_notes"` // newest first
	TodayTasks   []task.Task        `json:"today_tasks"`  // due on the viewer-local day
	DueReminders []task.Reminder    `json:"due_reminders"`
	Trend        []TrendPoint       `json:"trend"`
}

// AdminData is the admin dashboard: reads span all principals.
type AdminData struct {
	Mode            user.DashboardMode `json:"mode"`
	TotalUsers      int                `json:"total_users"`
	Stats           TaskStats          `json:"stats"`
	TotalNotes      int                `json:"total_notes"`
	PendingRequests int                `json:"pending_requests"`
	RecentUsers     []user.User        `json:"recent_users"`
	Trend           []TrendPoint       `json:"trend"`
}

// Day is one cell of the month grid.
type Day struct {
	Date      string          `json:"date"` // YYYY-MM-DD, viewer-local
	InMonth   bool            `json:"in_month"`
	IsToday   bool            `json:"is_today"`
	Tasks     []task.Task     `json:"tasks,omitempty"`
	Reminders []task.Reminder `json:"reminders,omitempty"`
}

// TimelineEntry is one item of the merged due-task/reminder timeline.
type TimelineEntry struct {
	Time     time.Time      `json:"time"`
	Kind     string         `json:"kind"` // "task" | "reminder"
	Task     *task.Task     `json:"task,omitempty"`
	Reminder *task.Reminder `json:"reminder,omitempty"`
}

// MonthData is the calendar view: a Monday-first grid of viewer-local days
// plus the month's due tasks and reminders merged into a sorted timeline.
type MonthData struct {
	Year     int             `json:"year"`
	Month    time.Month      `json:"month"`
	Weeks    [][]Day         `json:"weeks"`
	Timeline []TimelineEntry `json:"timeline"`
}

type Service interface {
	ForUser(ctx context.Context, usr user.User, now time.Time, loc *time.Location) (UserData, error)
	ForAdmin(ctx context.Context, now time.Time, loc *time.Location) (AdminData, error)
	Month(ctx context.Context, usr user.User, year int, month time.Month, now time.Time, loc *time.Location) (MonthData, error)
}

type service struct {
	usrRepo  user.Repository
	taskRepo task.Repository
	noteRepo note.Repository
	reqRepo  adminreq.Repository
}

var _ Service = (*service)(nil)

func NewService(usrRepo user.Repository, taskRepo task.Repository, noteRepo note.Repository, reqRepo adminreq.Repository) Service {
	return &service{usrRepo: usrRepo, taskRepo: taskRepo, noteRepo: noteRepo, reqRepo: reqRepo}
}

// taskStats runs the status counters for one scope. userID "" spans all users.
func (svc *service) taskStats(ctx context.Context, userID string, now time.Time) (TaskStats, error) {
	var stats TaskStats
	var err error

	if stats.Total, err = svc.taskRepo.CountTasks(ctx, task.QueryFilter{UserID: userID}); err != nil {
		return stats, errors.Wrap(err, "counting tasks")
	}
	if stats.Completed, err = svc.taskRepo.CountTasks(ctx, task.QueryFilter{UserID: userID, Statuses: []string{task.StatusCompleted}}); err != nil {
		return stats, errors.Wrap(err, "counting completed tasks")
	}
	if stats.Pending, err = svc.taskRepo.CountTasks(ctx, task.QueryFilter{UserID: userID, Statuses: []string{task.StatusPending}}); err != nil {
		return stats, errors.Wrap(err, "counting pending tasks")
	}
	if stats.InProgress, err = svc.taskRepo.CountTasks(ctx, task.QueryFilter{UserID: userID, Statuses: []string{task.StatusInProgress}}); err != nil {
		return stats, errors.Wrap(err, "counting in-progress tasks")
	}
	if stats.Overdue, err = svc.taskRepo.CountTasks(ctx, task.QueryFilter{UserID: userID, OverdueAt: now}); err != nil {
		return stats, errors.Wrap(err, "counting overdue tasks")
	}
	return stats, nil
}

// trend buckets the last trendDays local calendar days of created tasks/notes.
func (svc *service) trend(ctx context.Context, userID string, now time.Time, loc *time.Location) ([]TrendPoint, error) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -(trendDays - 1))

	tasks, err := svc.taskRepo.FilterTasks(ctx, task.QueryFilter{UserID: userID, CreatedFrom: start.UTC()})
	if err != nil {
		return nil, errors.Wrap(err, "filtering tasks for trend")
	}
	notes, err := svc.noteRepo.FilterNotes(ctx, note.QueryFilter{UserID: userID, CreatedFrom: start.UTC()})
	if err != nil {
		return nil, errors.Wrap(err, "filtering notes for trend")
	}

	taskCounts := make(map[string]int, trendDays)
	for _, t := range tasks {
		taskCounts[dayKey(t.CreatedAt, loc)]++
	}
	noteCounts := make(map[string]int, trendDays)
	for _, n := range notes {
		noteCounts[dayKey(n.CreatedAt, loc)]++
	}

	points := make([]TrendPoint, 0, trendDays)
	for i := 0; i < trendDays; i++ {
		key := start.AddDate(0, 0, i).Format("2006-01-02")
		points = append(points, TrendPoint{Date: key, Tasks: taskCounts[key], Notes: noteCounts[key]})
	}
	return points, nil
}

func (svc *service) ForUser(ctx context.Context, usr user.User, now time.Time, loc *time.Location) (UserData, error) {
	data := UserData{Mode: user.UserDashboard}
	var err error

	if data.Stats, err = svc.taskStats(ctx, usr.ID, now); err != nil {
		return UserData{}, err
	}
	if data.TotalNotes, err = svc.noteRepo.CountNotes(ctx, note.QueryFilter{UserID: usr.ID}); err != nil {
		return UserData{}, errors.Wrap(err, "counting notes")
	}
	if data.RecentTasks, err = svc.taskRepo.FilterTasks(ctx, task.QueryFilter{
		UserID: usr.ID, Statuses: task.ActiveStatuses, Limit: recentTaskCount,
	}); err != nil {
		return UserData{}, errors.Wrap(err, "filtering recent tasks")
	}
	if data.RecentNotes, err = svc.noteRepo.FilterNotes(ctx, note.QueryFilter{
		UserID: usr.ID, Limit: recentNoteCount,
	}); err != nil {
		return UserData{}, errors.Wrap(err, "filtering recent notes")
	}

	local := now.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if data.TodayTasks, err = svc.taskRepo.FilterTasks(ctx, task.QueryFilter{
		UserID: usr.ID, DueFrom: dayStart.UTC(), DueTo: dayStart.AddDate(0, 0, 1).UTC(),
	}); err != nil {
		return UserData{}, errors.Wrap(err, "filtering today's tasks")
	}
	if data.DueReminders, err = svc.taskRepo.FilterReminders(ctx, task.ReminderFilter{
		UserID: usr.ID, To: now, UnsentOnly: true,
	}); err != nil {
		return UserData{}, errors.Wrap(err, "filtering due reminders")
	}
	if data.Trend, err = svc.trend(ctx, usr.ID, now, loc); err != nil {
		return UserData{}, err
	}
	return data, nil
}

func (svc *service) ForAdmin(ctx context.Context, now time.Time, loc *time.Location) (AdminData, error) {
	data := AdminData{Mode: user.AdminDashboard}
	var err error

	if data.TotalUsers, err = svc.usrRepo.CountUsers(ctx); err != nil {
		return AdminData{}, errors.Wrap(err, "counting users")
	}
	if data.Stats, err = svc.taskStats(ctx, "", now); err != nil {
		return AdminData{}, err
	}
	if data.TotalNotes, err = svc.noteRepo.CountNotes(ctx, note.QueryFilter{}); err != nil {
		return AdminData{}, errors.Wrap(err, "counting notes")
	}
	if data.PendingRequests, err = svc.reqRepo.CountPendingRequests(ctx); err != nil {
		return AdminData{}, errors.Wrap(err, "counting pending requests")
	}

	users, err := svc.usrRepo.QueryAllUsers(ctx)
	if err != nil {
		return AdminData{}, errors.Wrap(err, "querying users")
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	if len(users) > recentUserCount {
		users = users[:recentUserCount]
	}
	data.RecentUsers = users

	if data.Trend, err = svc.trend(ctx, "", now, loc); err != nil {
		return AdminData{}, err
	}
	return data, nil
}

func (svc *service) Month(ctx context.Context, usr user.User, year int, month time.Month, now time.Time, loc *time.Location) (MonthData, error) {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	nextMonth := firstOfMonth.AddDate(0, 1, 0)

	// Monday-first grid covering the whole month
	gridStart := firstOfMonth
	for gridStart.Weekday() != time.Monday {
		gridStart = gridStart.AddDate(0, 0, -1)
	}
	gridEnd := nextMonth
	for gridEnd.Weekday() != time.Monday {
		gridEnd = gridEnd.AddDate(0, 0, 1)
	}

	tasks, err := svc.taskRepo.FilterTasks(ctx, task.QueryFilter{
		UserID: usr.ID, DueFrom: gridStart.UTC(), DueTo: gridEnd.UTC(),
	})
	if err != nil {
		return MonthData{}, errors.Wrap(err, "filtering due tasks")
	}
	reminders, err := svc.taskRepo.FilterReminders(ctx, task.ReminderFilter{
		UserID: usr.ID, From: gridStart.UTC(), To: gridEnd.UTC(),
	})
	if err != nil {
		return MonthData{}, errors.Wrap(err, "filtering reminders")
	}

	tasksByDay := make(map[string][]task.Task)
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		key := dayKey(*t.DueDate, loc)
		tasksByDay[key] = append(tasksByDay[key], t)
	}
	remindersByDay := make(map[string][]task.Reminder)
	for _, r := range reminders {
		key := dayKey(r.RemindTime, loc)
		remindersByDay[key] = append(remindersByDay[key], r)
	}

	data := MonthData{Year: year, Month: month}
	todayKey := dayKey(now, loc)
	for ws := gridStart; ws.Before(gridEnd); ws = ws.AddDate(0, 0, 7) {
		week := make([]Day, 0, 7)
		for i := 0; i < 7; i++ {
			d := ws.AddDate(0, 0, i)
			key := d.Format("2006-01-02")
			week = append(week, Day{
				Date:      key,
				InMonth:   d.Month() == month,
				IsToday:   key == todayKey,
				Tasks:     tasksByDay[key],
				Reminders: remindersByDay[key],
			})
		}
		data.Weeks = append(data.Weeks, week)
	}

	// merged timeline, ascending; scoped to the requested month itself
	for i := range tasks {
		t := tasks[i]
		if t.DueDate == nil || t.DueDate.Before(firstOfMonth) || !t.DueDate.Before(nextMonth) {
			continue
		}
		data.Timeline = append(data.Timeline, TimelineEntry{Time: *t.DueDate, Kind: "task", Task: &tasks[i]})
	}
	for i := range reminders {
		r := reminders[i]
		if r.RemindTime.Before(firstOfMonth) || !r.RemindTime.Before(nextMonth) {
			continue
		}
		data.Timeline = append(data.Timeline, TimelineEntry{Time: r.RemindTime, Kind: "reminder", Reminder: &reminders[i]})
	}
	sort.SliceStable(data.Timeline, func(i, j int) bool { return data.Timeline[i].Time.Before(data.Timeline[j].Time) })

	return data, nil
}
