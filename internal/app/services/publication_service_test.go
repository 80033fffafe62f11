package services

import (
	"context"
	"testing"

	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publicationFixture struct {
	pubs    *fakePublicationRepo
	storage *fakeStorage
	svc     PublicationService
	admin   *models.User
	rosa    *models.User
}

func newPublicationFixture() *publicationFixture {
	users := newFakeUserRepo()
	pubs, storage := newFakePublicationRepo(), newFakeStorage()
	return &publicationFixture{
		pubs:    pubs,
		storage: storage,
		svc:     NewPublicationService(pubs, storage, testLogger),
		admin:   users.add("admin", models.RoleAdmin, "", true),
		rosa:    users.add("rosa", models.RoleResident, "", true),
	}
}

func strPtr(s string) *string { return &s }

func TestCreatePublicationIsAdministratorOnly(t *testing.T) {
	f := newPublicationFixture()
	req := &dto.CreatePublicationRequest{Title: "Corte de agua", Body: "Martes 9h", Type: "anuncio"}

	_, err := f.svc.Create(context.Background(), f.rosa, req, Attachments{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	pub, err := f.svc.Create(context.Background(), f.admin, req, Attachments{
		Image:    upload("foto.png"),
		Document: upload("acta.pdf"),
	})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/publications/images/file-1", pub.ImageURL)
	assert.Equal(t, "/uploads/publications/documents/file-2", pub.DocumentURL)
	require.NotNil(t, pub.Author)
	assert.Equal(t, f.admin.ID, pub.Author.ID)
}

func TestCreatePublicationValidation(t *testing.T) {
	f := newPublicationFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.admin, &dto.CreatePublicationRequest{Title: "x", Body: "y", Type: "rumor"}, Attachments{})
	assert.Equal(t, "type", apperrors.FieldOf(err))

	_, err = f.svc.Create(ctx, f.admin, &dto.CreatePublicationRequest{Title: "x", Body: " ", Type: "anuncio"}, Attachments{})
	assert.Equal(t, "body", apperrors.FieldOf(err))

	f.storage.reject = true
	_, err = f.svc.Create(ctx, f.admin, &dto.CreatePublicationRequest{Title: "x", Body: "y", Type: "anuncio"}, Attachments{Document: upload("a.txt")})
	assert.Equal(t, "document", apperrors.FieldOf(err))
}

func TestUpdatePublicationIsPartial(t *testing.T) {
	f := newPublicationFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.admin, &dto.CreatePublicationRequest{
		Title: "Balance", Body: "Enero", Type: "finanzas",
	}, Attachments{Document: upload("enero.pdf")})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, f.admin, created.ID, &dto.UpdatePublicationRequest{Body: strPtr("Enero y febrero")}, Attachments{})
	require.NoError(t, err)
	assert.Equal(t, "Balance", updated.Title)
	assert.Equal(t, "Enero y febrero", updated.Body)
	assert.Equal(t, "finanzas", updated.Type)
	assert.Equal(t, created.DocumentURL, updated.DocumentURL)
	assert.Empty(t, f.storage.deleted)

	updated, err = f.svc.Update(ctx, f.admin, created.ID, &dto.UpdatePublicationRequest{}, Attachments{Document: upload("febrero.pdf")})
	require.NoError(t, err)
	assert.NotEqual(t, created.DocumentURL, updated.DocumentURL)
	assert.Equal(t, []string{"publications/documents/file-1"}, f.storage.deleted)

	_, err = f.svc.Update(ctx, f.admin, created.ID, &dto.UpdatePublicationRequest{Title: strPtr("  ")}, Attachments{})
	assert.Equal(t, "title", apperrors.FieldOf(err))

	_, err = f.svc.Update(ctx, f.rosa, created.ID, &dto.UpdatePublicationRequest{Title: strPtr("Hack")}, Attachments{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestDeletePublicationRemovesFiles(t *testing.T) {
	f := newPublicationFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.admin, &dto.CreatePublicationRequest{Title: "x", Body: "y", Type: "noticia"},
		Attachments{Image: upload("a.png")})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.rosa, created.ID), apperrors.ErrPermissionDenied)
	require.NoError(t, f.svc.Delete(ctx, f.admin, created.ID))
	assert.Equal(t, []string{"publications/images/file-1"}, f.storage.deleted)

	_, err = f.svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrPublicationNotFound)
}

func TestListPublicationsNewestFirst(t *testing.T) {
	f := newPublicationFixture()
	ctx := context.Background()
	for _, title := range []string{"Primera", "Segunda", "Tercera"} {
		pubType := "noticia"
		if title == "Segunda" {
			pubType = "anuncio"
		}
		_, err := f.svc.Create(ctx, f.admin, &dto.CreatePublicationRequest{Title: title, Body: "b", Type: pubType}, Attachments{})
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, &dto.PublicationFilter{Page: 1, Size: 2})
	require.NoError(t, err)
	require.Len(t, page.Publications, 2)
	assert.Equal(t, "Tercera", page.Publications[0].Title)
	assert.Equal(t, "Segunda", page.Publications[1].Title)
	assert.EqualValues(t, 3, page.Pagination.TotalItems)

	news, err := f.svc.List(ctx, &dto.PublicationFilter{Type: "noticia"})
	require.NoError(t, err)
	assert.Len(t, news.Publications, 2)
}
