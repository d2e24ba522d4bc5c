package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/desiigner101/stunotes/core"
	"github.com/desiigner101/stunotes/core/adminreq"
)

type adminReqRow struct {
	ID          string         `db:"id"`
	RequesterID string         `db:"requester_id"`
	Reason      string         `db:"reason"`
	Status      string         `db:"status"`
	ReviewerID  sql.NullString `db:"reviewer_id"`
	DecidedAt   sql.NullTime   `db:"decided_at"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r adminReqRow) unmap() adminreq.AdminRequest {
	req := adminreq.AdminRequest{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		Reason:      r.Reason,
		Status:      adminreq.Status(r.Status),
		CreatedAt:   r.CreatedAt,
	}
	if r.ReviewerID.Valid {
		req.ReviewerID = r.ReviewerID.String
	}
	if r.DecidedAt.Valid {
		req.DecidedAt = r.DecidedAt.Time
	}
	return req
}

const adminReqColumns = `id, requester_id, reason, status, reviewer_id, decided_at, created_at`

type adminReqRepository struct {
	exec core.DBExecutor
}

var _ adminreq.Repository = (*adminReqRepository)(nil)

func NewAdminRequestRepository(exec core.DBExecutor) adminreq.Repository {
	return &adminReqRepository{exec: exec}
}

func (repo adminReqRepository) CreateRequest(ctx context.Context, req adminreq.AdminRequest) (adminreq.AdminRequest, error) {
	req.ID = uuid.New().String()
	const query = `
		INSERT INTO admin_requests (id, requester_id, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := repo.exec.ExecContext(ctx, query,
		req.ID, req.RequesterID, req.Reason, string(req.Status), req.CreatedAt.UTC(),
	)
	if err != nil {
		return adminreq.AdminRequest{}, errors.Wrap(err, "inserting admin request")
	}
	return req, nil
}

func (repo adminReqRepository) GetRequestByID(ctx context.Context, id string) (adminreq.AdminRequest, error) {
	var row adminReqRow
	query := `SELECT ` + adminReqColumns + ` FROM admin_requests WHERE id = $1`
	if err := repo.exec.GetContext(ctx, &row, query, id); err != nil {
		return adminreq.AdminRequest{}, trapNoRowsErr(err, adminreq.ErrNotFound, "getting admin request")
	}
	return row.unmap(), nil
}

// QueryPendingRequests returns the review queue oldest-first, with the
// requester loaded for display.
func (repo adminReqRepository) QueryPendingRequests(ctx context.Context) ([]adminreq.AdminRequest, error) {
	type joinedRow struct {
		adminReqRow
		Requester userRow `db:"requester"`
	}

	const query = `
		SELECT r.id, r.requester_id, r.reason, r.status, r.reviewer_id, r.decided_at, r.created_at,
		       u.id "requester.id", u.name "requester.name", u.username "requester.username",
		       u.email "requester.email", u.is_active "requester.is_active",
		       u.is_admin "requester.is_admin", u.is_admin_only "requester.is_admin_only",
		       u.password_hash "requester.password_hash", u.created_at "requester.created_at",
		       u.updated_at "requester.updated_at", u.last_login "requester.last_login"
		FROM admin_requests r
		JOIN users u ON u.id = r.requester_id
		WHERE r.status = 'pending'
		ORDER BY r.created_at ASC`

	var rows []joinedRow
	if err := repo.exec.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying pending admin requests")
	}
	reqs := make([]adminreq.AdminRequest, 0, len(rows))
	for _, r := range rows {
		req := r.adminReqRow.unmap()
		req.Requester = r.Requester.unmap()
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func (repo adminReqRepository) CountPendingRequests(ctx context.Context) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM admin_requests WHERE status = 'pending'`
	if err := repo.exec.GetContext(ctx, &count, query); err != nil {
		return 0, errors.Wrap(err, "counting pending admin requests")
	}
	return count, nil
}

func (repo adminReqRepository) UpdateRequest(ctx context.Context, req adminreq.AdminRequest) (adminreq.AdminRequest, error) {
	var reviewerID sql.NullString
	if req.ReviewerID != "" {
		reviewerID = sql.NullString{String: req.ReviewerID, Valid: true}
	}
	var decidedAt sql.NullTime
	if !req.DecidedAt.IsZero() {
		decidedAt = sql.NullTime{Time: req.DecidedAt.UTC(), Valid: true}
	}

	const query = `
		UPDATE admin_requests
		SET status = $1, reviewer_id = $2, decided_at = $3
		WHERE id = $4 RETURNING ` + adminReqColumns
	var row adminReqRow
	err := repo.exec.GetContext(ctx, &row, query, string(req.Status), reviewerID, decidedAt, req.ID)
	if err != nil {
		return adminreq.AdminRequest{}, trapNoRowsErr(err, adminreq.ErrNotFound, "updating admin request")
	}
	return row.unmap(), nil
}
