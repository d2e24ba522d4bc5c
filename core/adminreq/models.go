package adminreq

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/desiigner101/stunotes/core"
	"github.com/desiigner101/stunotes/core/user"
)

// Status of an AdminRequest. Pending is the only non-terminal state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// AdminRequest is a user-initiated, admin-reviewed request to be promoted to
// the admin role. Exactly one terminal transition (approve or reject) is ever
// performed; the record is immutable afterwards.
type AdminRequest struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requester_id"`
	Requester   user.User `json:"requester,omitempty"`
	Reason      string    `json:"reason"`
	Status      Status    `json:"status"`
	ReviewerID  string    `json:"reviewer_id,omitempty"`
	DecidedAt   time.Time `json:"decided_at,omitempty"` // UTC; zero until decided
	CreatedAt   time.Time `json:"created_at"`           // UTC
}

// Processed reports whether the request reached a terminal state.
func (r AdminRequest) Processed() bool { return r.Status != StatusPending }

// NewAdminRequest is the submission payload.
type NewAdminRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (nr *NewAdminRequest) Validate(validate *validator.Validate) error {
	nr.Reason = core.CleanString(nr.Reason)
	if err := validate.Struct(nr); err != nil {
		return err
	}
	return nil
}
