package adminreq

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/desiigner101/stunotes/core"
	"github.com/desiigner101/stunotes/core/user"
)

var (
	ErrNotFound         = errors.New("admin request not found")
	ErrAlreadyAdmin     = errors.New("requester is already an admin")
	ErrInvalidReason    = errors.New("a reason is required")
	ErrAlreadyProcessed = errors.New("request has already been processed")
	ErrNotAnAdmin       = errors.New("reviewer is not an admin")
)

type (
	Repository interface {
		CreateRequest(ctx context.Context, req AdminRequest) (AdminRequest, error)
		GetRequestByID(ctx context.Context, id string) (AdminRequest, error)
		// QueryPendingRequests returns the review queue, oldest first.
		QueryPendingRequests(ctx context.Context) ([]AdminRequest, error)
		CountPendingRequests(ctx context.Context) (int, error)
		UpdateRequest(ctx context.Context, req AdminRequest) (AdminRequest, error)
	}

	Service interface {
		Submit(ctx context.Context, requester user.User, nr NewAdminRequest) (AdminRequest, error)
		Approve(ctx context.Context, id string, reviewer user.User) (AdminRequest, error)
		Reject(ctx context.Context, id string, reviewer user.User) (AdminRequest, error)
		ListPending(ctx context.Context) ([]AdminRequest, error)
		CountPending(ctx context.Context) (int, error)
	}

	service struct {
		repo    Repository
		usrSvc  user.Service
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service, mailSvc core.EmailService) Service {
	return &service{repo: repo, usrSvc: usrSvc, mailSvc: mailSvc}
}

func (svc *service) Submit(ctx context.Context, requester user.User, nr NewAdminRequest) (AdminRequest, error) {
	if requester.IsAdmin {
		return AdminRequest{}, ErrAlreadyAdmin
	}
	if core.CleanString(nr.Reason) == "" {
		return AdminRequest{}, ErrInvalidReason
	}
	req := AdminRequest{
		RequesterID: requester.ID,
		Requester:   requester,
		Reason:      core.CleanString(nr.Reason),
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateRequest(ctx, req)
}

func (svc *service) Approve(ctx context.Context, id string, reviewer user.User) (AdminRequest, error) {
	req, err := svc.decide(ctx, id, reviewer, StatusApproved)
	if err != nil {
		return AdminRequest{}, err
	}

	// approval always grants a dual-capable admin; the admin-only opt-in
	// exists on the self-upgrade path only
	requester, err := svc.usrSvc.Promote(ctx, req.RequesterID)
	if err != nil {
		return AdminRequest{}, errors.Wrap(err, "promoting requester")
	}
	req.Requester = requester

	svc.sendDecisionEmail(requester, req)
	return req, nil
}

func (svc *service) Reject(ctx context.Context, id string, reviewer user.User) (AdminRequest, error) {
	req, err := svc.decide(ctx, id, reviewer, StatusRejected)
	if err != nil {
		return AdminRequest{}, err
	}
	if requester, gerr := svc.usrSvc.GetByID(ctx, req.RequesterID); gerr == nil {
		req.Requester = requester
		svc.sendDecisionEmail(requester, req)
	}
	return req, nil
}

// decide performs the single terminal transition of the workflow.
func (svc *service) decide(ctx context.Context, id string, reviewer user.User, status Status) (AdminRequest, error) {
	if !reviewer.IsAdmin {
		return AdminRequest{}, ErrNotAnAdmin
	}
	req, err := svc.repo.GetRequestByID(ctx, id)
	if err != nil {
		return AdminRequest{}, err
	}
	if req.Processed() {
		return AdminRequest{}, ErrAlreadyProcessed
	}
	req.Status = status
	req.ReviewerID = reviewer.ID
	req.DecidedAt = time.Now().UTC()
	return svc.repo.UpdateRequest(ctx, req)
}

func (svc *service) ListPending(ctx context.Context) ([]AdminRequest, error) {
	return svc.repo.QueryPendingRequests(ctx)
}

func (svc *service) CountPending(ctx context.Context) (int, error) {
	return svc.repo.CountPendingRequests(ctx)
}

func (svc *service) sendDecisionEmail(requester user.User, req AdminRequest) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: requester.Name, Address: requester.Email}},
		Subject:      fmt.Sprintf("Your admin access request was %s", req.Status),
		TemplateName: "admin-request-decision",
		TemplateData: struct {
			Name     string
			Reason   string
			Status   Status
			Approved bool
		}{requester.Name, req.Reason, req.Status, req.Status == StatusApproved},
	})
}
