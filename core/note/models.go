package note

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/desiigner101/stunotes/core"
)

type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Subject   string    `json:"subject,omitempty"`
	Tags      string    `json:"tags,omitempty"` // comma-separated
	CreatedAt time.Time `json:"created_at"`     // UTC
	UpdatedAt time.Time `json:"updated_at"`     // UTC
}

// TagList splits the comma-separated tags, trimming whitespace.
func (n Note) TagList() []string {
	if n.Tags == "" {
		return nil
	}
	parts := strings.Split(n.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if tag := strings.TrimSpace(p); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

type NewNote struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
	Subject string `json:"subject" validate:"max=100"`
	Tags    string `json:"tags" validate:"max=255"`
}

func (nn *NewNote) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	nn.Subject = core.CleanString(nn.Subject)
	nn.Tags = core.CleanString(nn.Tags)
	return validate.Struct(nn)
}

type UpdateNote struct {
	Title   string  `json:"title" validate:"omitempty,max=200"`
	Content *string `json:"content"`
	Subject *string `json:"subject"`
	Tags    *string `json:"tags"`
}

func (un *UpdateNote) Validate(validate *validator.Validate, orig Note) error {
	if title := core.CleanString(un.Title); title != "" {
		un.Title = title
	} else {
		un.Title = orig.Title
	}
	return validate.Struct(un)
}

// QueryFilter filters note listings; fields combine with AND. An empty UserID
// spans all users (admin statistics only).
type QueryFilter struct {
	UserID      string
	Search      string `query:"search"` // matches title or content
	Subject     string `query:"subject"`
	Tag         string `query:"tag"`
	CreatedFrom time.Time
	CreatedTo   time.Time
	Limit       int
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Subject = core.CleanString(qf.Subject)
	qf.Tag = core.CleanString(qf.Tag)
}
