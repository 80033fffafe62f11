package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/selvaalegre/portal/internal/app/auth"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/app/repositories"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	pwd "github.com/selvaalegre/portal/internal/pkg/auth"
	"github.com/selvaalegre/portal/internal/pkg/email"
	"github.com/selvaalegre/portal/internal/pkg/filestorage"
	"github.com/selvaalegre/portal/internal/pkg/helpers"
	"github.com/selvaalegre/portal/internal/pkg/validation"
)

// UserService defines the interface for user operations
type UserService interface {
	CreateUser(ctx context.Context, caller *models.User, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, caller *models.User, filter *dto.UserFilter) (*dto.UserListResponse, error)
	GetUser(ctx context.Context, caller *models.User, id int64) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, caller *models.User, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, caller *models.User, id int64) error
	SetActive(ctx context.Context, caller *models.User, id int64, active bool) (*dto.UserResponse, error)

	GetProfile(ctx context.Context, caller *models.User) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, caller *models.User, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, caller *models.User, req *dto.ChangePasswordRequest) error
	UpdateProfilePhoto(ctx context.Context, caller *models.User, file *multipart.FileHeader) (*dto.UserResponse, error)
	ListNeighbors(ctx context.Context, caller *models.User) ([]*dto.UserBasicResponse, error)

	// CreateSuperuser provisions an active administrator with the superuser flag; used at bootstrap and by the CLI.
	CreateSuperuser(ctx context.Context, username, emailAddr, password, unit string) (*models.User, error)
}

type userServiceImpl struct {
	userRepo  repositories.IUserRepository
	tokenRepo repositories.ITokenRepository
	storage   filestorage.Storage
	notifier  email.Notifier
	validate  *validator.Validate
	logger    zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	storage filestorage.Storage,
	notifier email.Notifier,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		storage:   storage,
		notifier:  notifier,
		validate:  validator.New(),
		logger:    logger,
	}
}

// accountFields is the normalised form shared by create, update and bootstrap.
type accountFields struct {
	username, email, firstName, lastName, unit string
	phone                                      *string
	role                                       models.Role
}

func (s *userServiceImpl) normalizeAccount(username, emailAddr, firstName, lastName, unit, phone, role string) (*accountFields, error) {
	f := &accountFields{}

	if !validation.NewStringValidation(username).
		WithMaxLength(validation.UsernameMaxLength).
		WithPattern(validation.CompiledPatterns.Username).
		Validate() {
		return nil, apperrors.NewValidationError("username", "username is required and may only contain letters, digits and @.+-_")
	}
	f.username = strings.TrimSpace(username)

	f.email = strings.TrimSpace(emailAddr)
	if err := s.validate.Var(f.email, "required,email"); err != nil {
		return nil, apperrors.NewValidationError("email", "a valid email is required")
	}

	var err error
	if f.firstName, err = optionalText("firstName", firstName, 150); err != nil {
		return nil, err
	}
	if f.lastName, err = optionalText("lastName", lastName, 150); err != nil {
		return nil, err
	}
	if f.unit, err = requiredText("unit", unit, validation.UnitMaxLength); err != nil {
		return nil, err
	}

	if !validation.NewStringValidation(phone).WithRequired(false).WithPattern(validation.CompiledPatterns.Phone).Validate() {
		return nil, apperrors.NewValidationError("phone", "phone may only contain up to 10 digits")
	}
	if p := strings.TrimSpace(phone); p != "" {
		f.phone = &p
	}

	f.role = models.Role(strings.TrimSpace(role))
	if f.role == "" {
		f.role = models.RoleResident
	}
	if !f.role.Valid() {
		return nil, apperrors.NewValidationError("role", "role must be admin or vecino")
	}
	return f, nil
}

func validatePassword(field, password string) error {
	if len([]rune(password)) < validation.PasswordMinLength {
		return apperrors.NewValidationError(field, fmt.Sprintf("password must be at least %d characters", validation.PasswordMinLength))
	}
	return nil
}

// CreateUser provisions an account (administrators only)
func (s *userServiceImpl) CreateUser(ctx context.Context, caller *models.User, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := auth.RequireAdministrator(caller); err != nil {
		return nil, err
	}

	f, err := s.normalizeAccount(req.Username, req.Email, req.FirstName, req.LastName, req.Unit, req.Phone, req.Role)
	if err != nil {
		return nil, err
	}
	if err := validatePassword("password", req.Password); err != nil {
		return nil, err
	}
	hash, err := pwd.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:  f.username,
		Email:     f.email,
		Password:  hash,
		FirstName: f.firstName,
		LastName:  f.lastName,
		Unit:      f.unit,
		Role:      f.role,
		Phone:     f.phone,
		IsActive:  req.IsActive == nil || *req.IsActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Int64("createdBy", caller.ID).Str("role", string(user.Role)).Msg("User provisioned")
	if err := s.notifier.SendWelcomeEmail(user.Email, user.FullName(), user.Username); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to send welcome email")
	}
	return dto.NewUserResponse(user, s.storage.URL), nil
}

// ListUsers lists accounts ordered by unit and last name (administrators only)
func (s *userServiceImpl) ListUsers(ctx context.Context, caller *models.User, filter *dto.UserFilter) (*dto.UserListResponse, error) {
	if err := auth.RequireAdministrator(caller); err != nil {
		return nil, err
	}

	role := models.Role(filter.Role)
	if role != "" && !role.Valid() {
		return nil, apperrors.NewValidationError("role", "role must be admin or vecino")
	}
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
	users, total, err := s.userRepo.List(ctx, repositories.UserListFilter{
		Role:     role,
		IsActive: filter.IsActive,
		Search:   filter.Search,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.UserListResponse{
		Users:      make([]*dto.UserResponse, 0, len(users)),
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.Size),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, dto.NewUserResponse(u, s.storage.URL))
	}
	return resp, nil
}

// GetUser returns any account (administrators only)
func (s *userServiceImpl) GetUser(ctx context.Context, caller *models.User, id int64) (*dto.UserResponse, error) {
	if err := auth.RequireAdministrator(caller); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user, s.storage.URL), nil
}

// UpdateUser replaces every editable field of an account (administrators only).
// An empty password keeps the current one.
func (s *userServiceImpl) UpdateUser(ctx context.Context, caller *models.User, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := auth.RequireAdministrator(caller); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.IsActive == nil {
		return nil, apperrors.NewValidationError("isActive", "isActive is required")
	}
	f, err := s.normalizeAccount(req.Username, req.Email, req.FirstName, req.LastName, req.Unit, req.Phone, req.Role)
	if err != nil {
		return nil, err
	}
	if caller.ID == id && (!*req.IsActive || (f.role != models.RoleAdmin && !user.IsSuperuser)) {
		return nil, apperrors.NewValidationError("role", "you cannot remove your own administrator access")
	}

	passwordChanged := req.Password != ""
	if passwordChanged {
		if err := validatePassword("password", req.Password); err != nil {
			return nil, err
		}
		if user.Password, err = pwd.HashPassword(req.Password); err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
	}

	wasActive := user.IsActive
	user.Username, user.Email = f.username, f.email
	user.FirstName, user.LastName = f.firstName, f.lastName
	user.Unit, user.Phone, user.Role = f.unit, f.phone, f.role
	user.IsActive = *req.IsActive

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if passwordChanged || (wasActive && !user.IsActive) {
		s.revokeSessions(ctx, user.ID)
	}
	return dto.NewUserResponse(user, s.storage.URL), nil
}

// DeleteUser removes an account and, through the schema, everything it owns.
func (s *userServiceImpl) DeleteUser(ctx context.Context, caller *models.User, id int64) error {
	if err := auth.RequireAdministrator(caller); err != nil {
		return err
	}
	if caller.ID == id {
		return apperrors.NewValidationError("id", "you cannot delete your own account")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	removeFile(s.storage, user.ProfilePhotoURL, s.logger)
	s.logger.Info().Int64("userID", id).Int64("deletedBy", caller.ID).Msg("User deleted")
	return nil
}

// SetActive enables or disables an account. Disabling ends its sessions.
func (s *userServiceImpl) SetActive(ctx context.Context, caller *models.User, id int64, active bool) (*dto.UserResponse, error) {
	if err := auth.RequireAdministrator(caller); err != nil {
		return nil, err
	}
	if caller.ID == id && !active {
		return nil, apperrors.NewValidationError("isActive", "you cannot disable your own account")
	}

	if err := s.userRepo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	if !active {
		s.revokeSessions(ctx, id)
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user, s.storage.URL), nil
}

func (s *userServiceImpl) GetProfile(ctx context.Context, caller *models.User) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user, s.storage.URL), nil
}

// UpdateProfile lets a user change their own email and phone.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, caller *models.User, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	emailAddr := strings.TrimSpace(req.Email)
	if err := s.validate.Var(emailAddr, "required,email"); err != nil {
		return nil, apperrors.NewValidationError("email", "a valid email is required")
	}
	if !validation.NewStringValidation(req.Phone).WithRequired(false).WithPattern(validation.CompiledPatterns.Phone).Validate() {
		return nil, apperrors.NewValidationError("phone", "phone may only contain up to 10 digits")
	}
	var phone *string
	if p := strings.TrimSpace(req.Phone); p != "" {
		phone = &p
	}

	if err := s.userRepo.UpdateProfile(ctx, caller.ID, emailAddr, phone); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, caller)
}

// ChangePassword verifies the current password before storing the new one.
func (s *userServiceImpl) ChangePassword(ctx context.Context, caller *models.User, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, caller.ID)
	if err != nil {
		return err
	}
	if !pwd.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.NewValidationError("currentPassword", "current password is incorrect")
	}
	if err := validatePassword("newPassword", req.NewPassword); err != nil {
		return err
	}

	hash, err := pwd.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, caller.ID, hash); err != nil {
		return err
	}
	s.revokeSessions(ctx, caller.ID)
	return nil
}

// UpdateProfilePhoto stores a new photo and removes the previous one.
func (s *userServiceImpl) UpdateProfilePhoto(ctx context.Context, caller *models.User, file *multipart.FileHeader) (*dto.UserResponse, error) {
	if file == nil {
		return nil, apperrors.NewValidationError("photo", "photo is required")
	}
	user, err := s.userRepo.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	ref, err := storeUpload(s.storage, "photo", file, "profiles", filestorage.KindImage)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateProfilePhoto(ctx, user.ID, ref); err != nil {
		removeFile(s.storage, ref, s.logger)
		return nil, err
	}
	removeFile(s.storage, user.ProfilePhotoURL, s.logger)

	user.ProfilePhotoURL = ref
	return dto.NewUserResponse(user, s.storage.URL), nil
}

// ListNeighbors returns every other active user ordered by unit and last name.
func (s *userServiceImpl) ListNeighbors(ctx context.Context, caller *models.User) ([]*dto.UserBasicResponse, error) {
	users, err := s.userRepo.ListNeighbors(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.UserBasicResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewUserBasicResponse(u, s.storage.URL))
	}
	return out, nil
}

func (s *userServiceImpl) CreateSuperuser(ctx context.Context, username, emailAddr, password, unit string) (*models.User, error) {
	f, err := s.normalizeAccount(username, emailAddr, "", "", unit, "", string(models.RoleAdmin))
	if err != nil {
		return nil, err
	}
	if err := validatePassword("password", password); err != nil {
		return nil, err
	}
	hash, err := pwd.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:    f.username,
		Email:       f.email,
		Password:    hash,
		Unit:        f.unit,
		Role:        models.RoleAdmin,
		IsActive:    true,
		IsSuperuser: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", user.ID).Str("username", user.Username).Msg("Superuser created")
	return user, nil
}

func (s *userServiceImpl) revokeSessions(ctx context.Context, userID int64) {
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil && !errors.Is(err, apperrors.ErrTokenNotFound) {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to revoke sessions")
	}
}
