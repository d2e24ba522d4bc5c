package user_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desiigner101/stunotes/core"
	"github.com/desiigner101/stunotes/core/user"
	inmemdb "github.com/desiigner101/stunotes/storage/database/inmem"
)

type mailRecorder struct {
	mu       sync.Mutex
	messages []core.EmailMessage
}

func (r *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range messages {
		r.messages = append(r.messages, *m)
	}
}

func setup(t *testing.T) (user.Service, *mailRecorder) {
	t.Helper()

	db, err := inmemdb.Open()
	require.NoError(t, err)
	mail := &mailRecorder{}
	return user.NewService(inmemdb.NewUserRepository(db), mail), mail
}

func TestService_Register(t *testing.T) {
	svc, mail := setup(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, user.NewUser{
		Name:     "Alice W",
		Username: "alicew1",
		Email:    "alice@test.cd",
		Password: "s3cr3t-pw",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, usr.ID)
	assert.True(t, usr.IsActive)
	assert.False(t, usr.IsAdmin)
	require.NoError(t, usr.CheckPassword("s3cr3t-pw"))
	assert.Error(t, usr.CheckPassword("wrong"))

	require.Len(t, mail.messages, 1)
	assert.Contains(t, mail.messages[0].Subject, "Welcome")
	assert.Equal(t, usr.Email, mail.messages[0].To[0].Address)
}

func TestService_CheckUniqueness(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, user.NewUser{
		Name: "Alice", Username: "alicew1", Email: "alice@test.cd", Password: "pw",
	})
	require.NoError(t, err)

	// taken username and taken email both surface as field errors
	err = svc.CheckUniqueness(ctx, "alicew1", "other@test.cd")
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "username", vErr.Fields[0].Field)

	err = svc.CheckUniqueness(ctx, "someone1", "alice@test.cd")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Fields[0].Field)

	// the owner is excluded when updating their own account
	assert.NoError(t, svc.CheckUniqueness(ctx, "alicew1", "alice@test.cd", usr))
}

func TestService_roleChanges(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, user.NewUser{
		Name: "Alice", Username: "alicew1", Email: "alice@test.cd", Password: "pw",
	})
	require.NoError(t, err)

	t.Run("upgrade honors the admin-only opt-in", func(t *testing.T) {
		upgraded, err := svc.Upgrade(ctx, usr, user.UpgradeUser{AdminOnly: true})
		require.NoError(t, err)
		assert.True(t, upgraded.IsAdmin)
		assert.True(t, upgraded.IsAdminOnly)
		assert.False(t, upgraded.CanUseUserFeatures())
	})

	t.Run("promote always grants a dual-capable admin", func(t *testing.T) {
		promoted, err := svc.Promote(ctx, usr.ID)
		require.NoError(t, err)
		assert.True(t, promoted.IsAdmin)
		assert.False(t, promoted.IsAdminOnly)
		assert.True(t, promoted.CanUseUserFeatures())
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Promote(ctx, "nope")
		assert.Equal(t, user.ErrNotFound, err)
	})
}
