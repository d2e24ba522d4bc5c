package note

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("note not found")

type (
	Repository interface {
		CreateNote(ctx context.Context, n Note) (Note, error)
		GetNoteByID(ctx context.Context, id string) (Note, error)
		FilterNotes(ctx context.Context, filter QueryFilter) ([]Note, error)
		CountNotes(ctx context.Context, filter QueryFilter) (int, error)
		UpdateNote(ctx context.Context, n Note) (Note, error)
		DeleteNotesByID(ctx context.Context, ids ...string) error
	}

	// Service scopes every read and mutation to the owning principal.
	Service interface {
		Create(ctx context.Context, ownerID string, nn NewNote) (Note, error)
		Get(ctx context.Context, ownerID, id string) (Note, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Note, error)
		Count(ctx context.Context, filter QueryFilter) (int, error)
		Update(ctx context.Context, ownerID, id string, un UpdateNote) (Note, error)
		Delete(ctx context.Context, ownerID, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ownerID string, nn NewNote) (Note, error) {
	now := time.Now().UTC()
	n := Note{
		UserID:    ownerID,
		Title:     nn.Title,
		Content:   nn.Content,
		Subject:   nn.Subject,
		Tags:      nn.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateNote(ctx, n)
}

func (svc *service) get(ctx context.Context, ownerID, id string) (Note, error) {
	n, err := svc.repo.GetNoteByID(ctx, id)
	if err != nil {
		return Note{}, err
	}
	if n.UserID != ownerID {
		return Note{}, ErrNotFound
	}
	return n, nil
}

func (svc *service) Get(ctx context.Context, ownerID, id string) (Note, error) {
	return svc.get(ctx, ownerID, id)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]Note, error) {
	filter.Clean()
	return svc.repo.FilterNotes(ctx, filter)
}

func (svc *service) Count(ctx context.Context, filter QueryFilter) (int, error) {
	return svc.repo.CountNotes(ctx, filter)
}

func (svc *service) Update(ctx context.Context, ownerID, id string, un UpdateNote) (Note, error) {
	n, err := svc.get(ctx, ownerID, id)
	if err != nil {
		return Note{}, err
	}
	n.Title = un.Title
	if un.Content != nil {
		n.Content = *un.Content
	}
	if un.Subject != nil {
		n.Subject = *un.Subject
	}
	if un.Tags != nil {
		n.Tags = *un.Tags
	}
	n.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateNote(ctx, n)
}

func (svc *service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := svc.get(ctx, ownerID, id); err != nil {
		return err
	}
	return svc.repo.DeleteNotesByID(ctx, id)
}
