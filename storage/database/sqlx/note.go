package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/desiigner101/stunotes/core"
	"github.com/desiigner101/stunotes/core/note"
)

type noteRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	Subject   string    `db:"subject"`
	Tags      string    `db:"tags"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r noteRow) unmap() note.Note {
	return note.Note{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Content:   r.Content,
		Subject:   r.Subject,
		Tags:      r.Tags,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

const noteColumns = `id, user_id, title, content, subject, tags, created_at, updated_at`

type noteRepository struct {
	exec core.DBExecutor
}

var _ note.Repository = (*noteRepository)(nil)

func NewNoteRepository(exec core.DBExecutor) note.Repository {
	return &noteRepository{exec: exec}
}

func (repo noteRepository) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	n.ID = uuid.New().String()
	const query = `
		INSERT INTO notes (` + noteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.exec.ExecContext(ctx, query,
		n.ID, n.UserID, n.Title, n.Content, n.Subject, n.Tags, n.CreatedAt.UTC(), n.UpdatedAt.UTC(),
	)
	if err != nil {
		return note.Note{}, errors.Wrap(err, "inserting note")
	}
	return n, nil
}

func (repo noteRepository) GetNoteByID(ctx context.Context, id string) (note.Note, error) {
	var row noteRow
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`
	if err := repo.exec.GetContext(ctx, &row, query, id); err != nil {
		return note.Note{}, trapNoRowsErr(err, note.ErrNotFound, "getting note")
	}
	return row.unmap(), nil
}

func noteWhere(filter note.QueryFilter) (string, []interface{}) {
	where := []string{"TRUE"}
	args := make([]interface{}, 0, 6)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != "" {
		where = append(where, "user_id = "+arg(filter.UserID))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %[1]s OR content ILIKE %[1]s)", p))
	}
	if filter.Subject != "" {
		where = append(where, "subject = "+arg(filter.Subject))
	}
	if filter.Tag != "" {
		// tags is a comma-separated list
		p := arg(filter.Tag)
		where = append(where, fmt.Sprintf("%[1]s = ANY(string_to_array(tags, ','))", p))
	}
	if !filter.CreatedFrom.IsZero() {
		where = append(where, "created_at >= "+arg(filter.CreatedFrom.UTC()))
	}
	if !filter.CreatedTo.IsZero() {
		where = append(where, "created_at <= "+arg(filter.CreatedTo.UTC()))
	}
	return strings.Join(where, " AND "), args
}

func (repo noteRepository) FilterNotes(ctx context.Context, filter note.QueryFilter) ([]note.Note, error) {
	filter.Clean()
	where, args := noteWhere(filter)

	query := `SELECT ` + noteColumns + ` FROM notes WHERE ` + where + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var rows []noteRow
	if err := repo.exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering notes")
	}
	notes := make([]note.Note, 0, len(rows))
	for _, r := range rows {
		notes = append(notes, r.unmap())
	}
	return notes, nil
}

func (repo noteRepository) CountNotes(ctx context.Context, filter note.QueryFilter) (int, error) {
	filter.Clean()
	where, args := noteWhere(filter)

	var count int
	query := `SELECT COUNT(*) FROM notes WHERE ` + where
	if err := repo.exec.GetContext(ctx, &count, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting notes")
	}
	return count, nil
}

func (repo noteRepository) UpdateNote(ctx context.Context, n note.Note) (note.Note, error) {
	const query = `
		UPDATE notes
		SET title = $1, content = $2, subject = $3, tags = $4, updated_at = $5
		WHERE id = $6 RETURNING ` + noteColumns
	var row noteRow
	err := repo.exec.GetContext(ctx, &row, query,
		n.Title, n.Content, n.Subject, n.Tags, n.UpdatedAt.UTC(), n.ID,
	)
	if err != nil {
		return note.Note{}, trapNoRowsErr(err, note.ErrNotFound, "updating note")
	}
	return row.unmap(), nil
}

func (repo noteRepository) DeleteNotesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM notes WHERE id = ANY($1)`
	if _, err := repo.exec.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting notes")
	}
	return nil
}
