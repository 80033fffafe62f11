package services

import (
	"context"
	"errors"
	"testing"

	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requestFixture struct {
	requests *fakeRequestRepo
	notifier *fakeNotifier
	svc      RequestService
	admin    *models.User
	rosa     *models.User
	luis     *models.User
}

func newRequestFixture() *requestFixture {
	users := newFakeUserRepo()
	requests := newFakeRequestRepo(users)
	notifier := &fakeNotifier{}
	return &requestFixture{
		requests: requests,
		notifier: notifier,
		svc:      NewRequestService(requests, notifier, newFakeStorage().URL, testLogger),
		admin:    users.add("admin", models.RoleAdmin, "", true),
		rosa:     users.add("rosa", models.RoleResident, "", true),
		luis:     users.add("luis", models.RoleResident, "", true),
	}
}

func (f *requestFixture) submit(t *testing.T, caller *models.User, title string) *dto.RequestResponse {
	t.Helper()
	r, err := f.svc.Submit(context.Background(), caller, &dto.SubmitRequestRequest{
		Type: string(models.RequestTypeComplaint), Title: title, Description: "details",
	})
	require.NoError(t, err)
	return r
}

func TestSubmitStartsPending(t *testing.T) {
	f := newRequestFixture()

	r := f.submit(t, f.rosa, "  Noise  ")
	assert.Equal(t, "Noise", r.Title)
	assert.Equal(t, string(models.RequestStatusPending), r.Status)
	assert.Nil(t, r.AdminResponse)
	require.NotNil(t, r.Submitter)
	assert.Equal(t, f.rosa.ID, r.Submitter.ID)
}

func TestSubmitValidation(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.rosa, &dto.SubmitRequestRequest{Type: "favor", Title: "x", Description: "y"})
	assert.Equal(t, "type", apperrors.FieldOf(err))

	_, err = f.svc.Submit(ctx, f.rosa, &dto.SubmitRequestRequest{Type: "queja", Title: "x", Description: "  "})
	assert.Equal(t, "description", apperrors.FieldOf(err))
}

func TestResolveApprovesAndNotifies(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()
	noise := f.submit(t, f.rosa, "Noise")

	resolved, err := f.svc.Resolve(ctx, f.admin, noise.ID, &dto.ResolveRequestRequest{
		Status: "aprobada", Response: "Hablamos con el vecino",
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.RequestStatusApproved), resolved.Status)
	require.NotNil(t, resolved.AdminResponse)
	assert.Equal(t, "Hablamos con el vecino", *resolved.AdminResponse)
	require.NotNil(t, resolved.Submitter)
	assert.Equal(t, f.rosa.ID, resolved.Submitter.ID)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "rosa@example.com", f.notifier.sent[0].to)
	assert.Equal(t, "resolved:aprobada", f.notifier.sent[0].subject)

	pending, err := f.svc.PendingCount(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestResolveAllowsAnyTransition(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()
	r := f.submit(t, f.rosa, "Noise")

	_, err := f.svc.Resolve(ctx, f.admin, r.ID, &dto.ResolveRequestRequest{Status: "rechazada"})
	require.NoError(t, err)
	back, err := f.svc.Resolve(ctx, f.admin, r.ID, &dto.ResolveRequestRequest{Status: "pendiente", Response: "   "})
	require.NoError(t, err)
	assert.Equal(t, "pendiente", back.Status)
	assert.Nil(t, back.AdminResponse)
}

func TestResolveRejections(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()
	r := f.submit(t, f.rosa, "Noise")

	_, err := f.svc.Resolve(ctx, f.rosa, r.ID, &dto.ResolveRequestRequest{Status: "aprobada"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.svc.Resolve(ctx, f.admin, r.ID, &dto.ResolveRequestRequest{Status: "cerrada"})
	assert.Equal(t, "status", apperrors.FieldOf(err))

	_, err = f.svc.Resolve(ctx, f.admin, 999, &dto.ResolveRequestRequest{Status: "aprobada"})
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)

	stored, _ := f.requests.GetByID(ctx, r.ID)
	assert.Equal(t, models.RequestStatusPending, stored.Status)
}

func TestResolveSurvivesMailFailure(t *testing.T) {
	f := newRequestFixture()
	f.notifier.fail = errors.New("smtp down")
	r := f.submit(t, f.rosa, "Noise")

	_, err := f.svc.Resolve(context.Background(), f.admin, r.ID, &dto.ResolveRequestRequest{Status: "en_proceso"})
	assert.NoError(t, err)
}

func TestListScopesByRole(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()
	first := f.submit(t, f.rosa, "Primera")
	f.submit(t, f.luis, "De Luis")
	second := f.submit(t, f.rosa, "Segunda")
	_, err := f.svc.Resolve(ctx, f.admin, first.ID, &dto.ResolveRequestRequest{Status: "aprobada"})
	require.NoError(t, err)

	own, err := f.svc.List(ctx, f.rosa, &dto.RequestFilter{})
	require.NoError(t, err)
	require.Len(t, own.Requests, 2)
	assert.Equal(t, second.ID, own.Requests[0].ID)
	assert.Equal(t, 1, own.PendingCount)

	all, err := f.svc.List(ctx, f.admin, &dto.RequestFilter{Status: "pendiente"})
	require.NoError(t, err)
	assert.Len(t, all.Requests, 2)
	assert.Equal(t, 2, all.PendingCount)

	_, err = f.svc.List(ctx, f.admin, &dto.RequestFilter{Status: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestGetAndDeleteAreOwnerOrAdmin(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()
	r := f.submit(t, f.rosa, "Noise")

	_, err := f.svc.Get(ctx, f.luis, r.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.luis, r.ID), apperrors.ErrPermissionDenied)

	_, err = f.svc.Get(ctx, f.admin, r.ID)
	assert.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, f.rosa, r.ID))

	_, err = f.svc.Get(ctx, f.rosa, r.ID)
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
}
