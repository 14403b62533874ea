package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bengalmatrimony/backend/internal/models"
)

// grantFailingUsers refuses to grant premium, simulating a store outage
// halfway through the workflow.
type grantFailingUsers struct {
	UserStore
	err error
}

func (u *grantFailingUsers) SetPremiumByEmail(ctx context.Context, email string, premium bool) (*models.User, error) {
	if premium {
		return nil, u.err
	}
	return u.UserStore.SetPremiumByEmail(ctx, email, premium)
}

// revokeFailingUsers refuses to revoke premium.
type revokeFailingUsers struct {
	UserStore
	err error
}

func (u *revokeFailingUsers) SetPremiumByEmail(ctx context.Context, email string, premium bool) (*models.User, error) {
	if !premium {
		return nil, u.err
	}
	return u.UserStore.SetPremiumByEmail(ctx, email, premium)
}

// deleteFailingRequests keeps every request it is asked to delete.
type deleteFailingRequests struct {
	PremiumRequestStore
	err error
}

func (r *deleteFailingRequests) Delete(ctx context.Context, id string) (*models.PremiumRequest, error) {
	return nil, r.err
}

// premiumFailingBiodatas cannot mirror the premium flag.
type premiumFailingBiodatas struct {
	BiodataStore
	err error
}

func (b *premiumFailingBiodatas) SetPremiumByEmail(ctx context.Context, email string, premium bool) error {
	return b.err
}

type workflowFixture struct {
	users    *UserService
	biodatas *BiodataService
	requests *PremiumRequestService
}

func newWorkflowFixture(t *testing.T, emails ...string) *workflowFixture {
	t.Helper()
	ctx := context.Background()
	f := &workflowFixture{
		users:    NewUserService(),
		biodatas: NewBiodataService(),
		requests: NewPremiumRequestService(),
	}
	for _, e := range emails {
		_, err := f.users.Create(ctx, &models.User{Email: e})
		require.NoError(t, err)
		_, err = f.biodatas.Create(ctx, e, newBiodataInput("N", "Female", 25))
		require.NoError(t, err)
	}
	return f
}

func (f *workflowFixture) premium(t *testing.T, email string) (bool, bool) {
	t.Helper()
	ctx := context.Background()
	u, err := f.users.GetByEmail(ctx, email)
	require.NoError(t, err)
	list, err := f.biodatas.ListByEmail(ctx, email)
	require.NoError(t, err)
	require.Len(t, list, 1)
	return bool(u.Premium), bool(list[0].Premium)
}

func TestPremiumSubmitConflict(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t, "u@example.com")
	wf := NewPremiumWorkflow(f.requests, f.users, f.biodatas, nil)

	req, err := wf.Submit(ctx, "u@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.PremiumPending, req.Status)

	_, err = wf.Submit(ctx, "u@example.com")
	assert.ErrorIs(t, err, ErrPremiumRequestExists)

	_, err = wf.SetStatus(ctx, req.ID, models.PremiumApproved)
	require.NoError(t, err)
	_, err = wf.Submit(ctx, "u@example.com")
	assert.ErrorIs(t, err, ErrPremiumRequestExists)

	list, err := wf.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPremiumApproveThenRevert(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t, "u@example.com")
	wf := NewPremiumWorkflow(f.requests, f.users, f.biodatas, NoopTransactor{})

	req, err := wf.Submit(ctx, "u@example.com")
	require.NoError(t, err)

	updated, err := wf.SetStatus(ctx, req.ID, models.PremiumApproved)
	require.NoError(t, err)
	assert.Equal(t, models.PremiumApproved, updated.Status)
	user, biodata := f.premium(t, "u@example.com")
	assert.True(t, user)
	assert.True(t, biodata)

	_, err = wf.SetStatus(ctx, req.ID, models.PremiumPending)
	require.NoError(t, err)
	user, biodata = f.premium(t, "u@example.com")
	assert.False(t, user)
	assert.False(t, biodata)
}

func TestPremiumSetStatusValidation(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t, "u@example.com")
	wf := NewPremiumWorkflow(f.requests, f.users, f.biodatas, nil)

	_, err := wf.SetStatus(ctx, "whatever", "rejected")
	assert.ErrorIs(t, err, ErrInvalidPremiumStatus)

	_, err = wf.SetStatus(ctx, "000000000000000000000000", models.PremiumApproved)
	assert.ErrorIs(t, err, ErrPremiumRequestNotFound)
}

func TestPremiumSyncFailureRestoresRequest(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t, "u@example.com")
	cause := errors.New("users unavailable")
	wf := NewPremiumWorkflow(f.requests, &grantFailingUsers{UserStore: f.users, err: cause}, f.biodatas, nil)

	req, err := wf.Submit(ctx, "u@example.com")
	require.NoError(t, err)

	_, err = wf.SetStatus(ctx, req.ID, models.PremiumApproved)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPremiumSyncFailed)
	assert.ErrorIs(t, err, cause)

	stored, err := f.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PremiumPending, stored.Status)
	user, biodata := f.premium(t, "u@example.com")
	assert.False(t, user)
	assert.False(t, biodata)
}

func TestPremiumDeleteRevokeFailureKeepsRequest(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t, "u@example.com")
	approver := NewPremiumWorkflow(f.requests, f.users, f.biodatas, NoopTransactor{})

	req, err := approver.Submit(ctx, "u@example.com")
	require.NoError(t, err)
	_, err = approver.SetStatus(ctx, req.ID, models.PremiumApproved)
	require.NoError(t, err)

	cause := errors.New("store down")
	wf := NewPremiumWorkflow(f.requests, &revokeFailingUsers{UserStore: f.users, err: cause}, f.biodatas, NoopTransactor{})
	_, err = wf.Delete(ctx, req.ID)
	assert.ErrorIs(t, err, ErrPremiumSyncFailed)
	assert.ErrorIs(t, err, cause)

	stored, err := f.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PremiumApproved, stored.Status)
	user, biodata := f.premium(t, "u@example.com")
	assert.True(t, user)
	assert.True(t, biodata)
}

func TestPremiumDeleteStoreFailureRegrants(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t, "u@example.com")
	approver := NewPremiumWorkflow(f.requests, f.users, f.biodatas, NoopTransactor{})

	req, err := approver.Submit(ctx, "u@example.com")
	require.NoError(t, err)
	_, err = approver.SetStatus(ctx, req.ID, models.PremiumApproved)
	require.NoError(t, err)

	cause := errors.New("requests unavailable")
	wf := NewPremiumWorkflow(&deleteFailingRequests{PremiumRequestStore: f.requests, err: cause}, f.users, f.biodatas, NoopTransactor{})
	_, err = wf.Delete(ctx, req.ID)
	assert.ErrorIs(t, err, cause)

	_, err = f.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	user, biodata := f.premium(t, "u@example.com")
	assert.True(t, user)
	assert.True(t, biodata)
}

func TestPremiumMissingUserLeavesRequestPending(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	wf := NewPremiumWorkflow(f.requests, f.users, f.biodatas, nil)

	req, err := wf.Submit(ctx, "ghost@example.com")
	require.NoError(t, err)

	_, err = wf.SetStatus(ctx, req.ID, models.PremiumApproved)
	assert.ErrorIs(t, err, ErrUserNotFound)

	stored, err := f.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PremiumPending, stored.Status)
}

func TestPremiumDeleteRevokes(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t, "u@example.com")
	wf := NewPremiumWorkflow(f.requests, f.users, f.biodatas, nil)

	req, err := wf.Submit(ctx, "u@example.com")
	require.NoError(t, err)
	_, err = wf.SetStatus(ctx, req.ID, models.PremiumApproved)
	require.NoError(t, err)

	deleted, err := wf.Delete(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "u@example.com", deleted.Email)

	user, biodata := f.premium(t, "u@example.com")
	assert.False(t, user)
	assert.False(t, biodata)

	_, err = wf.GetByEmail(ctx, "u@example.com")
	assert.ErrorIs(t, err, ErrPremiumRequestNotFound)
}

func TestAdminPremiumToggleMirrorsBiodata(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t, "u@example.com")
	wf := NewPremiumWorkflow(f.requests, f.users, f.biodatas, NoopTransactor{})

	u, err := f.users.GetByEmail(ctx, "u@example.com")
	require.NoError(t, err)

	updated, err := wf.SetUserPremium(ctx, u.ID, true)
	require.NoError(t, err)
	assert.True(t, bool(updated.Premium))
	user, biodata := f.premium(t, "u@example.com")
	assert.True(t, user)
	assert.True(t, biodata)

	_, err = wf.SetUserPremiumByEmail(ctx, "U@example.com", false)
	require.NoError(t, err)
	user, biodata = f.premium(t, "u@example.com")
	assert.False(t, user)
	assert.False(t, biodata)

	_, err = wf.SetUserPremium(ctx, "000000000000000000000000", true)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminPremiumToggleMirrorFailureRestoresUser(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t, "u@example.com")
	cause := errors.New("biodata store down")
	wf := NewPremiumWorkflow(f.requests, f.users, &premiumFailingBiodatas{BiodataStore: f.biodatas, err: cause}, NoopTransactor{})

	_, err := wf.SetUserPremiumByEmail(ctx, "u@example.com", true)
	assert.ErrorIs(t, err, ErrPremiumSyncFailed)
	assert.ErrorIs(t, err, cause)

	user, biodata := f.premium(t, "u@example.com")
	assert.False(t, user)
	assert.False(t, biodata)
}
