package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/desiigner101/stunotes/core/note"
)

type noteRepository struct {
	db *DB
}

var _ note.Repository = (*noteRepository)(nil)

func NewNoteRepository(db *DB) note.Repository {
	return &noteRepository{db: db}
}

func (repo *noteRepository) query() []note.Note {
	notes := make([]note.Note, 0, len(repo.db.notes))
	for _, n := range repo.db.notes {
		notes = append(notes, *n)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].CreatedAt.After(notes[j].CreatedAt) })
	return notes
}

func (repo *noteRepository) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	n.ID = uuid.New().String()
	repo.db.notes[n.ID] = &n
	return n, nil
}

func (repo *noteRepository) GetNoteByID(ctx context.Context, id string) (note.Note, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if n, ok := repo.db.notes[id]; ok {
		return *n, nil
	}
	return note.Note{}, note.ErrNotFound
}

func matchNote(n note.Note, filter note.QueryFilter) bool {
	if filter.UserID != "" && n.UserID != filter.UserID {
		return false
	}
	if filter.Search != "" {
		s := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(n.Title), s) &&
			!strings.Contains(strings.ToLower(n.Content), s) {
			return false
		}
	}
	if filter.Subject != "" && !strings.EqualFold(n.Subject, filter.Subject) {
		return false
	}
	if filter.Tag != "" {
		var found bool
		for _, tag := range n.TagList() {
			if strings.EqualFold(tag, filter.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !filter.CreatedFrom.IsZero() && n.CreatedAt.Before(filter.CreatedFrom) {
		return false
	}
	if !filter.CreatedTo.IsZero() && n.CreatedAt.After(filter.CreatedTo) {
		return false
	}
	return true
}

func (repo *noteRepository) FilterNotes(ctx context.Context, filter note.QueryFilter) ([]note.Note, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	notes := make([]note.Note, 0)
	for _, n := range repo.query() {
		if !matchNote(n, filter) {
			continue
		}
		notes = append(notes, n)
		if filter.Limit > 0 && len(notes) == filter.Limit {
			break
		}
	}
	return notes, nil
}

func (repo *noteRepository) CountNotes(ctx context.Context, filter note.QueryFilter) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, n := range repo.db.notes {
		if matchNote(*n, filter) {
			count++
		}
	}
	return count, nil
}

func (repo *noteRepository) UpdateNote(ctx context.Context, n note.Note) (note.Note, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.notes[n.ID]; !ok {
		return note.Note{}, note.ErrNotFound
	}
	repo.db.notes[n.ID] = &n
	return n, nil
}

func (repo *noteRepository) DeleteNotesByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.notes, id)
	}
	return nil
}
