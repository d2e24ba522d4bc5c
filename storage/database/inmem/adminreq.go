package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/desiigner101/stunotes/core/adminreq"
)

type adminReqRepository struct {
	db *DB
}

var _ adminreq.Repository = (*adminReqRepository)(nil)

func NewAdminRequestRepository(db *DB) adminreq.Repository {
	return &adminReqRepository{db: db}
}

func (repo *adminReqRepository) CreateRequest(ctx context.Context, req adminreq.AdminRequest) (adminreq.AdminRequest, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	req.ID = uuid.New().String()
	repo.db.requests[req.ID] = &req
	return req, nil
}

func (repo *adminReqRepository) GetRequestByID(ctx context.Context, id string) (adminreq.AdminRequest, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if req, ok := repo.db.requests[id]; ok {
		return *req, nil
	}
	return adminreq.AdminRequest{}, adminreq.ErrNotFound
}

func (repo *adminReqRepository) QueryPendingRequests(ctx context.Context) ([]adminreq.AdminRequest, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	reqs := make([]adminreq.AdminRequest, 0)
	for _, req := range repo.db.requests {
		if req.Status == adminreq.StatusPending {
			r := *req
			if usr, ok := repo.db.users[r.RequesterID]; ok {
				r.Requester = *usr
			}
			reqs = append(reqs, r)
		}
	}
	// FIFO review queue
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt.Before(reqs[j].CreatedAt) })
	return reqs, nil
}

func (repo *adminReqRepository) CountPendingRequests(ctx context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, req := range repo.db.requests {
		if req.Status == adminreq.StatusPending {
			count++
		}
	}
	return count, nil
}

func (repo *adminReqRepository) UpdateRequest(ctx context.Context, req adminreq.AdminRequest) (adminreq.AdminRequest, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.requests[req.ID]; !ok {
		return adminreq.AdminRequest{}, adminreq.ErrNotFound
	}
	repo.db.requests[req.ID] = &req
	return req, nil
}
