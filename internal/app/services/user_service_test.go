package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/selvaalegre/portal/internal/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	users    *fakeUserRepo
	tokens   *fakeTokenRepo
	storage  *fakeStorage
	notifier *fakeNotifier
	svc      UserService
	admin    *models.User
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:    newFakeUserRepo(),
		tokens:   newFakeTokenRepo(),
		storage:  newFakeStorage(),
		notifier: &fakeNotifier{},
	}
	f.svc = NewUserService(f.users, f.tokens, f.storage, f.notifier, testLogger)
	f.admin = f.users.add("admin", models.RoleAdmin, "secreto123", true)
	return f
}

func TestCreateUserDefaultsAndWelcomeEmail(t *testing.T) {
	f := newUserFixture()

	resp, err := f.svc.CreateUser(context.Background(), f.admin, &dto.CreateUserRequest{
		Username: "rosa.mena",
		Email:    "rosa@example.com",
		Password: "secreto123",
		Unit:     " Casa 7 ",
		Phone:    "0991234567",
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleResident), resp.Role)
	assert.Equal(t, "Casa 7", resp.Unit)
	assert.True(t, resp.IsActive)
	assert.Equal(t, "0991234567", resp.Phone)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "rosa@example.com", f.notifier.sent[0].to)

	stored, err := f.users.GetByUsername(context.Background(), "rosa.mena")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(stored.Password, "secreto123"))
}

func TestCreateUserSurvivesMailFailure(t *testing.T) {
	f := newUserFixture()
	f.notifier.fail = errors.New("smtp down")

	_, err := f.svc.CreateUser(context.Background(), f.admin, &dto.CreateUserRequest{
		Username: "rosa", Email: "rosa@example.com", Password: "secreto123", Unit: "Casa 7",
	})
	assert.NoError(t, err)
}

func TestCreateUserValidation(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	tests := []struct {
		name  string
		req   dto.CreateUserRequest
		field string
	}{
		{"bad username", dto.CreateUserRequest{Username: "rosa mena", Email: "r@example.com", Password: "secreto123", Unit: "Casa 7"}, "username"},
		{"bad email", dto.CreateUserRequest{Username: "rosa", Email: "nope", Password: "secreto123", Unit: "Casa 7"}, "email"},
		{"short password", dto.CreateUserRequest{Username: "rosa", Email: "r@example.com", Password: "short", Unit: "Casa 7"}, "password"},
		{"missing unit", dto.CreateUserRequest{Username: "rosa", Email: "r@example.com", Password: "secreto123"}, "unit"},
		{"bad phone", dto.CreateUserRequest{Username: "rosa", Email: "r@example.com", Password: "secreto123", Unit: "Casa 7", Phone: "099-123"}, "phone"},
		{"bad role", dto.CreateUserRequest{Username: "rosa", Email: "r@example.com", Password: "secreto123", Unit: "Casa 7", Role: "guard"}, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateUser(ctx, f.admin, &tt.req)
			require.ErrorIs(t, err, apperrors.ErrValidationFailed)
			assert.Equal(t, tt.field, apperrors.FieldOf(err))
		})
	}
}

func TestCreateUserRequiresAdministrator(t *testing.T) {
	f := newUserFixture()
	rosa := f.users.add("rosa", models.RoleResident, "secreto123", true)

	_, err := f.svc.CreateUser(context.Background(), rosa, &dto.CreateUserRequest{
		Username: "luis", Email: "luis@example.com", Password: "secreto123", Unit: "Casa 8",
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.svc.ListUsers(context.Background(), rosa, &dto.UserFilter{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	f := newUserFixture()
	f.users.add("rosa", models.RoleResident, "secreto123", true)

	_, err := f.svc.CreateUser(context.Background(), f.admin, &dto.CreateUserRequest{
		Username: "rosa", Email: "other@example.com", Password: "secreto123", Unit: "Casa 9",
	})
	assert.ErrorIs(t, err, apperrors.ErrUsernameAlreadyExists)
}

func TestListUsersFiltersAndPaginates(t *testing.T) {
	f := newUserFixture()
	f.users.add("ana", models.RoleResident, "", true)
	f.users.add("beto", models.RoleResident, "", false)
	f.users.add("carla", models.RoleResident, "", true)

	active := true
	resp, err := f.svc.ListUsers(context.Background(), f.admin, &dto.UserFilter{Role: "vecino", IsActive: &active, Page: 1, Size: 1})
	require.NoError(t, err)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "ana", resp.Users[0].Username)
	assert.EqualValues(t, 2, resp.Pagination.TotalItems)

	resp, err = f.svc.ListUsers(context.Background(), f.admin, &dto.UserFilter{Search: "BETO"})
	require.NoError(t, err)
	require.Len(t, resp.Users, 1)
	assert.False(t, resp.Users[0].IsActive)
}

func TestAdministratorCannotLockThemselvesOut(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	err := f.svc.DeleteUser(ctx, f.admin, f.admin.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.SetActive(ctx, f.admin, f.admin.ID, false)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.UpdateUser(ctx, f.admin, f.admin.ID, &dto.UpdateUserRequest{
		Username: "admin", Email: "admin@example.com", Unit: "Casa admin", Role: "vecino", IsActive: boolPtr(true),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestDisablingUserRevokesSessions(t *testing.T) {
	f := newUserFixture()
	rosa := f.users.add("rosa", models.RoleResident, "secreto123", true)
	ctx := context.Background()
	require.NoError(t, f.tokens.CreateToken(ctx, "rt-1", rosa.ID, time.Now().Add(time.Hour)))

	resp, err := f.svc.SetActive(ctx, f.admin, rosa.ID, false)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
	assert.Equal(t, 0, f.tokens.live(rosa.ID))
}

func TestUpdateUserKeepsPasswordWhenEmpty(t *testing.T) {
	f := newUserFixture()
	rosa := f.users.add("rosa", models.RoleResident, "secreto123", true)
	ctx := context.Background()

	resp, err := f.svc.UpdateUser(ctx, f.admin, rosa.ID, &dto.UpdateUserRequest{
		Username: "rosa", Email: "rosa@example.org", FirstName: "Rosa", LastName: "Mena",
		Unit: "Casa 12", Role: "admin", IsActive: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Casa 12", resp.Unit)
	assert.True(t, resp.IsAdministrator)

	stored, _ := f.users.GetByID(ctx, rosa.ID)
	assert.True(t, auth.CheckPassword(stored.Password, "secreto123"))
}

func boolPtr(b bool) *bool { return &b }

func TestUpdateUserRequiresActiveFlag(t *testing.T) {
	f := newUserFixture()
	rosa := f.users.add("rosa", models.RoleResident, "secreto123", true)
	ctx := context.Background()
	require.NoError(t, f.tokens.CreateToken(ctx, "rt-1", rosa.ID, time.Now().Add(time.Hour)))

	_, err := f.svc.UpdateUser(ctx, f.admin, rosa.ID, &dto.UpdateUserRequest{
		Username: "rosa", Email: "rosa@example.org", Unit: "Casa 12", Role: "vecino",
	})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	stored, _ := f.users.GetByID(ctx, rosa.ID)
	assert.True(t, stored.IsActive)
	assert.Equal(t, 1, f.tokens.live(rosa.ID))
}

func TestDeleteUserRemovesPhoto(t *testing.T) {
	f := newUserFixture()
	rosa := f.users.add("rosa", models.RoleResident, "secreto123", true)
	ctx := context.Background()

	_, err := f.svc.UpdateProfilePhoto(ctx, rosa, upload("me.png"))
	require.NoError(t, err)
	stored, _ := f.users.GetByID(ctx, rosa.ID)
	require.NotNil(t, stored.ProfilePhotoURL)

	require.NoError(t, f.svc.DeleteUser(ctx, f.admin, rosa.ID))
	assert.Contains(t, f.storage.deleted, *stored.ProfilePhotoURL)

	_, err = f.svc.GetUser(ctx, f.admin, rosa.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	f := newUserFixture()
	rosa := f.users.add("rosa", models.RoleResident, "secreto123", true)
	ctx := context.Background()
	require.NoError(t, f.tokens.CreateToken(ctx, "rt-1", rosa.ID, time.Now().Add(time.Hour)))

	err := f.svc.ChangePassword(ctx, rosa, &dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "nuevo12345"})
	assert.Equal(t, "currentPassword", apperrors.FieldOf(err))

	require.NoError(t, f.svc.ChangePassword(ctx, rosa, &dto.ChangePasswordRequest{CurrentPassword: "secreto123", NewPassword: "nuevo12345"}))
	stored, _ := f.users.GetByID(ctx, rosa.ID)
	assert.True(t, auth.CheckPassword(stored.Password, "nuevo12345"))
	assert.Equal(t, 0, f.tokens.live(rosa.ID))
}

func TestUpdateProfilePhotoReplacesPrevious(t *testing.T) {
	f := newUserFixture()
	rosa := f.users.add("rosa", models.RoleResident, "", true)
	ctx := context.Background()

	first, err := f.svc.UpdateProfilePhoto(ctx, rosa, upload("a.png"))
	require.NoError(t, err)
	second, err := f.svc.UpdateProfilePhoto(ctx, rosa, upload("b.png"))
	require.NoError(t, err)

	assert.NotEqual(t, first.ProfilePhotoURL, second.ProfilePhotoURL)
	assert.Equal(t, []string{"profiles/file-1"}, f.storage.deleted)

	f.storage.reject = true
	_, err = f.svc.UpdateProfilePhoto(ctx, rosa, upload("notes.txt"))
	assert.Equal(t, "photo", apperrors.FieldOf(err))
}

func TestUpdateProfile(t *testing.T) {
	f := newUserFixture()
	rosa := f.users.add("rosa", models.RoleResident, "", true)

	resp, err := f.svc.UpdateProfile(context.Background(), rosa, &dto.UpdateProfileRequest{Email: "new@example.com", Phone: "0987654321"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.Email)
	assert.Equal(t, "0987654321", resp.Phone)

	_, err = f.svc.UpdateProfile(context.Background(), rosa, &dto.UpdateProfileRequest{Email: "broken"})
	assert.Equal(t, "email", apperrors.FieldOf(err))
}

func TestListNeighborsExcludesCallerAndInactive(t *testing.T) {
	f := newUserFixture()
	rosa := f.users.add("rosa", models.RoleResident, "", true)
	f.users.add("luis", models.RoleResident, "", false)

	neighbors, err := f.svc.ListNeighbors(context.Background(), rosa)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, f.admin.ID, neighbors[0].ID)
}

func TestCreateSuperuser(t *testing.T) {
	f := newUserFixture()

	user, err := f.svc.CreateSuperuser(context.Background(), "root", "root@example.com", "secreto123", "Admin")
	require.NoError(t, err)
	assert.True(t, user.IsSuperuser)
	assert.True(t, user.IsActive)
	assert.Equal(t, models.RoleAdmin, user.Role)

	exists, err := f.users.SuperuserExists(context.Background())
	require.NoError(t, err)
	assert.True(t, exists)
}
