package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"civicfix/internal/config"
	domainUser "civicfix/internal/domain/user"
	"civicfix/internal/logger"
	appErrors "civicfix/pkg/errors"
	"civicfix/pkg/utils"
)

// Service implements the identity and session-guard use cases: registration,
// login (token issuing) and credential rotation. Sessions are stateless JWTs;
// there is no server-side session table.
type Service struct {
	userRepo domainUser.Repository
	config   *config.Config
}

func NewService(userRepo domainUser.Repository, cfg *config.Config) *Service {
	return &Service{
		userRepo: userRepo,
		config:   cfg,
	}
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, err.Error(), appErrors.ErrWeakPassword)
	}

	// Handle, email and phone must all be unique.
	if err := s.checkDuplicate(ctx, req); err != nil {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domainUser.User{
		Handle:         req.Handle,
		Email:          req.Email,
		Phone:          req.Phone,
		PasswordHashed: hashedPassword,
		Role:           domainUser.RoleMember,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainUser.ErrDuplicateHandle) ||
			errors.Is(err, domainUser.ErrDuplicateEmail) ||
			errors.Is(err, domainUser.ErrDuplicatePhone) {
			return nil, appErrors.NewAppError(appErrors.CodeConflict, err.Error(), err)
		}
		return nil, err
	}

	token, err := utils.GenerateToken(user.ID, string(user.Role), s.config.JWT.Secret, s.config.JWT.ExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("handle", user.Handle),
		zap.String("event", "user_registered"),
	)

	return &AuthResponse{
		User:        ToUserResponse(user),
		AccessToken: token,
		ExpiresAt:   time.Now().Add(time.Duration(s.config.JWT.ExpiryHours) * time.Hour).Unix(),
	}, nil
}

func (s *Service) checkDuplicate(ctx context.Context, req *RegisterRequest) error {
	if _, err := s.userRepo.GetByHandle(ctx, req.Handle); err == nil {
		return appErrors.NewAppError(appErrors.CodeConflict, "handle already taken", domainUser.ErrDuplicateHandle)
	} else if !errors.Is(err, domainUser.ErrUserNotFound) {
		return fmt.Errorf("failed to check handle: %w", err)
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return appErrors.NewAppError(appErrors.CodeConflict, "email already registered", domainUser.ErrDuplicateEmail)
	} else if !errors.Is(err, domainUser.ErrUserNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	if _, err := s.userRepo.GetByPhone(ctx, req.Phone); err == nil {
		return appErrors.NewAppError(appErrors.CodeConflict, "phone number already registered", domainUser.ErrDuplicatePhone)
	} else if !errors.Is(err, domainUser.ErrUserNotFound) {
		return fmt.Errorf("failed to check phone: %w", err)
	}

	return nil
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	user, err := s.lookupPrincipal(ctx, req.Handle)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Warn("Login attempt with unknown handle",
				zap.String("handle", req.Handle),
				zap.String("event", "login_failed_unknown_handle"),
			)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(user.PasswordHashed, req.Password) {
		logger.Warn("Login attempt with invalid password",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "login_failed_invalid_password"),
		)
		return nil, appErrors.ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, string(user.Role), s.config.JWT.Secret, s.config.JWT.ExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.String("event", "login_success"),
	)

	return &AuthResponse{
		User:        ToUserResponse(user),
		AccessToken: token,
		ExpiresAt:   time.Now().Add(time.Duration(s.config.JWT.ExpiryHours) * time.Hour).Unix(),
	}, nil
}

// lookupPrincipal resolves a login identifier that may be a handle or an
// email address.
func (s *Service) lookupPrincipal(ctx context.Context, identifier string) (*domainUser.User, error) {
	if strings.Contains(identifier, "@") {
		return s.userRepo.GetByEmail(ctx, identifier)
	}
	return s.userRepo.GetByHandle(ctx, identifier)
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.NewAppError(appErrors.CodeNotFound, "user not found", err)
		}
		return nil, err
	}

	return ToUserResponse(user), nil
}

// UpdateProfile rotates the user's contact details. Handle and role are
// immutable.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*UserResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	if other, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil && other.ID != userID {
		return nil, appErrors.NewAppError(appErrors.CodeConflict, "email already registered", domainUser.ErrDuplicateEmail)
	} else if err != nil && !errors.Is(err, domainUser.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if other, err := s.userRepo.GetByPhone(ctx, req.Phone); err == nil && other.ID != userID {
		return nil, appErrors.NewAppError(appErrors.CodeConflict, "phone number already registered", domainUser.ErrDuplicatePhone)
	} else if err != nil && !errors.Is(err, domainUser.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}

	if err := s.userRepo.UpdateContact(ctx, userID, req.Email, req.Phone); err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.NewAppError(appErrors.CodeNotFound, "user not found", err)
		}
		return nil, err
	}

	logger.Info("User profile updated",
		zap.String("user_id", userID.String()),
		zap.String("event", "profile_updated"),
	)

	return s.GetProfile(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		return appErrors.NewAppError(appErrors.CodeValidation, err.Error(), appErrors.ErrWeakPassword)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(user.PasswordHashed, req.OldPassword) {
		return appErrors.ErrInvalidCredentials
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return err
	}

	logger.Info("User rotated credential",
		zap.String("user_id", userID.String()),
		zap.String("event", "password_changed"),
	)

	return nil
}

// GetAllUsers is the moderator-only user listing.
func (s *Service) GetAllUsers(ctx context.Context, actor domainUser.Principal) ([]*UserResponse, error) {
	if !actor.IsModerator() {
		return nil, appErrors.NewAppError(appErrors.CodeForbidden,
			"listing users requires the moderator role", appErrors.ErrInsufficientPermissions)
	}

	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(u))
	}

	return responses, nil
}
