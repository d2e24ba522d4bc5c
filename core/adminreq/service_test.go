package adminreq_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desiigner101/stunotes/core"
	"github.com/desiigner101/stunotes/core/adminreq"
	"github.com/desiigner101/stunotes/core/user"
	inmemdb "github.com/desiigner101/stunotes/storage/database/inmem"
)

type mailRecorder struct {
	mu   sync.Mutex
	sent []core.EmailMessage
}

func (m *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range messages {
		m.sent = append(m.sent, *msg)
	}
}

func setup(t *testing.T) (adminreq.Service, user.Service, user.Repository, *mailRecorder) {
	t.Helper()

	db, err := inmemdb.Open()
	require.NoError(t, err)

	mailSvc := &mailRecorder{}
	usrRepo := inmemdb.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc)
	svc := adminreq.NewService(inmemdb.NewAdminRequestRepository(db), usrSvc, mailSvc)
	return svc, usrSvc, usrRepo, mailSvc
}

func createUser(t *testing.T, repo user.Repository, name, uname string, isAdmin, isAdminOnly bool) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr, err := repo.CreateUser(context.Background(), user.User{
		Name:        name,
		Username:    uname,
		Email:       uname + "@test.cd",
		IsActive:    true,
		IsAdmin:     isAdmin,
		IsAdminOnly: isAdminOnly,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	return usr
}

func TestService_Submit(t *testing.T) {
	svc, _, usrRepo, _ := setup(t)
	ctx := context.Background()

	alice := createUser(t, usrRepo, "Alice", "alice", false, false)
	bob := createUser(t, usrRepo, "Bob", "bob", true, false)

	t.Run("admin cannot submit", func(t *testing.T) {
		_, err := svc.Submit(ctx, bob, adminreq.NewAdminRequest{Reason: "more power"})
		assert.Equal(t, adminreq.ErrAlreadyAdmin, err)
	})

	t.Run("reason is required", func(t *testing.T) {
		_, err := svc.Submit(ctx, alice, adminreq.NewAdminRequest{Reason: "   "})
		assert.Equal(t, adminreq.ErrInvalidReason, err)
	})

	t.Run("ok", func(t *testing.T) {
		req, err := svc.Submit(ctx, alice, adminreq.NewAdminRequest{Reason: "I run the study group"})
		require.NoError(t, err)
		assert.NotEmpty(t, req.ID)
		assert.Equal(t, alice.ID, req.RequesterID)
		assert.Equal(t, adminreq.StatusPending, req.Status)
		assert.False(t, req.Processed())

		count, err := svc.CountPending(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestService_Approve(t *testing.T) {
	svc, usrSvc, usrRepo, mailSvc := setup(t)
	ctx := context.Background()

	alice := createUser(t, usrRepo, "Alice", "alice", false, false)
	bob := createUser(t, usrRepo, "Bob", "bob", true, false)

	req, err := svc.Submit(ctx, alice, adminreq.NewAdminRequest{Reason: "I run the study group"})
	require.NoError(t, err)

	t.Run("reviewer must be admin", func(t *testing.T) {
		_, err := svc.Approve(ctx, req.ID, alice)
		assert.Equal(t, adminreq.ErrNotAnAdmin, err)
	})

	t.Run("unknown request", func(t *testing.T) {
		_, err := svc.Approve(ctx, "nope", bob)
		assert.Equal(t, adminreq.ErrNotFound, err)
	})

	t.Run("ok, promotes dual-capable", func(t *testing.T) {
		approved, err := svc.Approve(ctx, req.ID, bob)
		require.NoError(t, err)
		assert.Equal(t, adminreq.StatusApproved, approved.Status)
		assert.Equal(t, bob.ID, approved.ReviewerID)
		assert.False(t, approved.DecidedAt.IsZero())

		// requester keeps the personal features
		promoted, err := usrSvc.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.True(t, promoted.IsAdmin)
		assert.False(t, promoted.IsAdminOnly)
		assert.True(t, promoted.CanUseUserFeatures())

		require.Len(t, mailSvc.sent, 1)
		assert.Contains(t, mailSvc.sent[0].Subject, "approved")
	})

	t.Run("terminal state is immutable", func(t *testing.T) {
		_, err := svc.Approve(ctx, req.ID, bob)
		assert.Equal(t, adminreq.ErrAlreadyProcessed, err)
		_, err = svc.Reject(ctx, req.ID, bob)
		assert.Equal(t, adminreq.ErrAlreadyProcessed, err)
	})
}

func TestService_Reject(t *testing.T) {
	svc, usrSvc, usrRepo, mailSvc := setup(t)
	ctx := context.Background()

	carol := createUser(t, usrRepo, "Carol", "carol", false, false)
	bob := createUser(t, usrRepo, "Bob", "bob", true, false)

	req, err := svc.Submit(ctx, carol, adminreq.NewAdminRequest{Reason: "why not"})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, req.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, adminreq.StatusRejected, rejected.Status)
	assert.Equal(t, bob.ID, rejected.ReviewerID)

	// no role change on rejection
	usr, err := usrSvc.GetByID(ctx, carol.ID)
	require.NoError(t, err)
	assert.False(t, usr.IsAdmin)

	require.Len(t, mailSvc.sent, 1)
	assert.Contains(t, mailSvc.sent[0].Subject, "rejected")

	count, err := svc.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestService_ListPending(t *testing.T) {
	svc, _, usrRepo, _ := setup(t)
	ctx := context.Background()

	alice := createUser(t, usrRepo, "Alice", "alice", false, false)
	carol := createUser(t, usrRepo, "Carol", "carol", false, false)
	bob := createUser(t, usrRepo, "Bob", "bob", true, false)

	req1, err := svc.Submit(ctx, alice, adminreq.NewAdminRequest{Reason: "first"})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	req2, err := svc.Submit(ctx, carol, adminreq.NewAdminRequest{Reason: "second"})
	require.NoError(t, err)

	// oldest first, requester loaded
	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, req1.ID, pending[0].ID)
	assert.Equal(t, alice.Username, pending[0].Requester.Username)
	assert.Equal(t, req2.ID, pending[1].ID)

	_, err = svc.Approve(ctx, req1.ID, bob)
	require.NoError(t, err)

	pending, err = svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, req2.ID, pending[0].ID)
}
