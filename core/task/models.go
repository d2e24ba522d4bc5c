package task

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/desiigner101/stunotes/core"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Statuses; StatusCompleted is terminal for overdue purposes.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// ActiveStatuses are the statuses an overdue task can be in.
var ActiveStatuses = []string{StatusPending, StatusInProgress}

type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Subject     string     `json:"subject,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"` // UTC
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"` // UTC
	UpdatedAt   time.Time  `json:"updated_at"` // UTC
}

// IsOverdue reports whether the task is past due and not completed.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	return now.After(*t.DueDate)
}

// Reminder is a notification attached to a task.
type Reminder struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"task_id"`
	RemindTime time.Time `json:"remind_time"` // UTC
	IsSent     bool      `json:"is_sent"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// IsDue reports whether the reminder time has passed and it hasn't been sent.
func (r Reminder) IsDue(now time.Time) bool {
	return !now.Before(r.RemindTime) && !r.IsSent
}

type NewTask struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description"`
	Subject     string     `json:"subject" validate:"max=100"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      string     `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Subject = core.CleanString(nt.Subject)
	if nt.Priority == "" {
		nt.Priority = PriorityMedium
	}
	if nt.Status == "" {
		nt.Status = StatusPending
	}
	return validate.Struct(nt)
}

type UpdateTask struct {
	Title       string     `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description"`
	Subject     *string    `json:"subject"`
	DueDate     *time.Time `json:"due_date"`
	ClearDue    bool       `json:"clear_due_date"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      string     `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
}

func (ut *UpdateTask) Validate(validate *validator.Validate, orig Task) error {
	if title := core.CleanString(ut.Title); title != "" {
		ut.Title = title
	} else {
		ut.Title = orig.Title
	}
	if ut.Priority == "" {
		ut.Priority = orig.Priority
	}
	if ut.Status == "" {
		ut.Status = orig.Status
	}
	return validate.Struct(ut)
}

type NewReminder struct {
	RemindTime time.Time `json:"remind_time" validate:"required"`
}

func (nr NewReminder) Validate(validate *validator.Validate) error {
	return validate.Struct(nr)
}

// QueryFilter filters task listings; fields combine with AND. An empty UserID
// spans all users (admin statistics only).
type QueryFilter struct {
	UserID      string
	Search      string   `query:"search"`
	Statuses    []string `query:"status"`
	Priority    string   `query:"priority"`
	DueFrom     time.Time
	DueTo       time.Time
	CreatedFrom time.Time
	CreatedTo   time.Time
	OverdueAt   time.Time // when set: due before this AND status not completed
	Limit       int
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// ReminderFilter scopes reminder reads. UserID scopes through task ownership.
type ReminderFilter struct {
	UserID     string
	TaskID     string
	From       time.Time
	To         time.Time
	UnsentOnly bool
}
