package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainUser "civicfix/internal/domain/user"
	"civicfix/internal/infrastructure/database/postgres/models"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domainUser.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Role == "" {
		u.Role = domainUser.RoleMember
	}

	dbModel := toUserModel(u)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainUser.ErrDuplicateHandle
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	u.ID = dbModel.ID

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*domainUser.User, error) {
	return r.getOne(ctx, "id = ?", userID)
}

func (r *UserRepository) GetByHandle(ctx context.Context, handle string) (*domainUser.User, error) {
	return r.getOne(ctx, "handle = ?", handle)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domainUser.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*domainUser.User, error) {
	return r.getOne(ctx, "phone = ?", phone)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*domainUser.User, error) {
	var dbModel models.UserModel
	err := r.db.DB.WithContext(ctx).
		Where(query, arg).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainUser.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&dbModel), nil
}

func (r *UserRepository) GetAll(ctx context.Context) ([]*domainUser.User, error) {
	var dbModels []models.UserModel
	err := r.db.DB.WithContext(ctx).
		Order("created_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*domainUser.User, 0, len(dbModels))
	for i := range dbModels {
		users = append(users, toUserEntity(&dbModels[i]))
	}

	return users, nil
}

func (r *UserRepository) UpdateContact(ctx context.Context, userID uuid.UUID, email, phone string) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"email":      email,
			"phone":      phone,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domainUser.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update contact details: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainUser.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_hashed": passwordHash,
			"updated_at":      time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainUser.ErrUserNotFound
	}

	return nil
}

func toUserModel(u *domainUser.User) *models.UserModel {
	return &models.UserModel{
		ID:             u.ID,
		Handle:         u.Handle,
		Email:          u.Email,
		Phone:          u.Phone,
		PasswordHashed: u.PasswordHashed,
		Role:           string(u.Role),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func toUserEntity(m *models.UserModel) *domainUser.User {
	return &domainUser.User{
		ID:             m.ID,
		Handle:         m.Handle,
		Email:          m.Email,
		Phone:          m.Phone,
		PasswordHashed: m.PasswordHashed,
		Role:           domainUser.Role(m.Role),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
